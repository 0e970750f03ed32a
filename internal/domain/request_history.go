package domain

import "time"

// RequestChangeType captures what changed in a history entry.
type RequestChangeType string

const (
	ChangeTypeStage    RequestChangeType = "STAGE_CHANGE"
	ChangeTypeEstimate RequestChangeType = "ESTIMATE_CHANGE"
	ChangeTypeConvert  RequestChangeType = "CONVERTED"
	ChangeTypeCancel   RequestChangeType = "CANCELLED"
	ChangeTypeAssignPm RequestChangeType = "PM_ASSIGNED"
	ChangeTypePriority RequestChangeType = "PRIORITY_CHANGE"
)

// RequestHistory is an immutable audit trail entry for a request.
type RequestHistory struct {
	ID          string
	RequestID   string
	ChangedByID *string
	ChangeType  RequestChangeType
	OldValue    map[string]any
	NewValue    map[string]any
	CreatedAt   time.Time
}

// RequestComment is a note on a request thread. Internal comments are hidden
// from client accounts.
type RequestComment struct {
	ID         string
	RequestID  string
	AuthorID   string
	Body       string
	IsInternal bool
	CreatedAt  time.Time
}
