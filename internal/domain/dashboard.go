package domain

import "time"

// DashboardLayout stores a user's widget arrangement as an opaque JSON
// document; the server only round-trips it.
type DashboardLayout struct {
	UserID    string
	Layout    map[string]any
	UpdatedAt time.Time
}
