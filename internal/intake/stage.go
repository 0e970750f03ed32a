package intake

import (
	"time"

	"github.com/spec-kit/intake-service/internal/domain"
	apperrors "github.com/spec-kit/intake-service/pkg/util/errorutil"
)

var allowedTransitions = map[domain.RequestStage][]domain.RequestStage{
	domain.StageInTreatment: {domain.StageOnHold, domain.StageEstimation},
	domain.StageOnHold:      {domain.StageInTreatment, domain.StageEstimation},
	domain.StageEstimation:  {domain.StageInTreatment, domain.StageOnHold, domain.StageReady},
	domain.StageReady:       {domain.StageInTreatment, domain.StageOnHold, domain.StageEstimation},
}

// CanTransition reports whether the transition table permits moving from
// current to next.
func CanTransition(current, next domain.RequestStage) bool {
	for _, candidate := range allowedTransitions[current] {
		if candidate == next {
			return true
		}
	}
	return false
}

// ValidateTransition checks a stage change against the transition table and
// the request's terminal flags. Entering ready additionally requires a
// recorded estimate.
func ValidateTransition(request *domain.Request, target domain.RequestStage) error {
	if request.Terminal() {
		return apperrors.NewInvalidTransition(request.Stage, target, "request is converted or cancelled")
	}
	if !CanTransition(request.Stage, target) {
		return apperrors.NewInvalidTransition(request.Stage, target, "")
	}
	if target == domain.StageReady && request.StoryPoints == nil {
		return apperrors.NewInvalidTransition(request.Stage, target, "request has no estimate")
	}
	return nil
}

// AgingLevel grades how long a request has sat in its current stage.
type AgingLevel string

const (
	AgingNormal   AgingLevel = "normal"
	AgingWarning  AgingLevel = "warning"
	AgingCritical AgingLevel = "critical"
)

type agingThreshold struct {
	warning  time.Duration
	critical time.Duration
}

var agingThresholds = map[domain.RequestStage]agingThreshold{
	domain.StageInTreatment: {warning: 24 * time.Hour, critical: 48 * time.Hour},
	domain.StageOnHold:      {warning: 72 * time.Hour, critical: 168 * time.Hour},
	domain.StageEstimation:  {warning: 12 * time.Hour, critical: 24 * time.Hour},
	domain.StageReady:       {warning: 6 * time.Hour, critical: 12 * time.Hour},
}

// AgingStatus grades elapsed time in stage against the per-stage thresholds.
// Computed on every read; never persisted.
func AgingStatus(stage domain.RequestStage, stageEnteredAt, now time.Time) AgingLevel {
	threshold, ok := agingThresholds[stage]
	if !ok {
		return AgingNormal
	}
	elapsed := now.Sub(stageEnteredAt)
	switch {
	case elapsed >= threshold.critical:
		return AgingCritical
	case elapsed >= threshold.warning:
		return AgingWarning
	default:
		return AgingNormal
	}
}
