package dto

import "time"

// DashboardLayoutRequest payload; the layout document is opaque to the server.
type DashboardLayoutRequest struct {
	Layout map[string]any `json:"layout"`
}

// DashboardLayoutResponse representation.
type DashboardLayoutResponse struct {
	Layout    map[string]any `json:"layout"`
	UpdatedAt time.Time      `json:"updated_at"`
}
