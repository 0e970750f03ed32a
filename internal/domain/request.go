package domain

import "time"

// RequestStage enumerates intake pipeline stages.
type RequestStage string

const (
	StageInTreatment RequestStage = "in_treatment"
	StageOnHold      RequestStage = "on_hold"
	StageEstimation  RequestStage = "estimation"
	StageReady       RequestStage = "ready"
)

// RequestType classifies the incoming work.
type RequestType string

const (
	RequestTypeBug           RequestType = "bug"
	RequestTypeFeature       RequestType = "feature"
	RequestTypeEnhancement   RequestType = "enhancement"
	RequestTypeChangeRequest RequestType = "change_request"
	RequestTypeSupport       RequestType = "support"
	RequestTypeOther         RequestType = "other"
)

// RequestPriority enumerates urgency.
type RequestPriority string

const (
	RequestPriorityLow      RequestPriority = "low"
	RequestPriorityMedium   RequestPriority = "medium"
	RequestPriorityHigh     RequestPriority = "high"
	RequestPriorityCritical RequestPriority = "critical"
)

// EstimateConfidence qualifies a story-point estimate.
type EstimateConfidence string

const (
	ConfidenceLow    EstimateConfidence = "low"
	ConfidenceMedium EstimateConfidence = "medium"
	ConfidenceHigh   EstimateConfidence = "high"
)

// RoutingDestination is the recommended conversion target for a request.
type RoutingDestination string

const (
	RouteToTicket  RoutingDestination = "ticket"
	RouteToProject RoutingDestination = "project"
)

// Request is the aggregate for intake items moving through the pipeline.
// StageEnteredAt changes only together with Stage; aging is always computed
// from it at read time.
type Request struct {
	ID               string
	RequestNumber    string
	Title            string
	Description      string
	Type             RequestType
	Priority         RequestPriority
	Stage            RequestStage
	StageEnteredAt   time.Time
	HoldReason       *string
	StoryPoints      *int
	Confidence       *EstimateConfidence
	EstimationNotes  *string
	EstimatedAt      *time.Time
	ClientID         *string
	RelatedProjectID *string
	AssignedPmID     *string
	IsConverted      bool
	IsCancelled      bool
	ConvertedTo      *RoutingDestination
	CreatedByID      string
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// Terminal reports whether the request accepts further stage transitions.
func (r *Request) Terminal() bool {
	return r.IsConverted || r.IsCancelled
}
