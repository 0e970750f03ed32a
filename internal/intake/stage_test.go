package intake

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/spec-kit/intake-service/internal/domain"
	apperrors "github.com/spec-kit/intake-service/pkg/util/errorutil"
)

func TestCanTransitionTable(t *testing.T) {
	stages := []domain.RequestStage{
		domain.StageInTreatment,
		domain.StageOnHold,
		domain.StageEstimation,
		domain.StageReady,
	}
	allowed := map[domain.RequestStage]map[domain.RequestStage]bool{
		domain.StageInTreatment: {domain.StageOnHold: true, domain.StageEstimation: true},
		domain.StageOnHold:      {domain.StageInTreatment: true, domain.StageEstimation: true},
		domain.StageEstimation:  {domain.StageInTreatment: true, domain.StageOnHold: true, domain.StageReady: true},
		domain.StageReady:       {domain.StageInTreatment: true, domain.StageOnHold: true, domain.StageEstimation: true},
	}

	for _, from := range stages {
		for _, to := range stages {
			got := CanTransition(from, to)
			require.Equalf(t, allowed[from][to], got, "transition %s -> %s", from, to)
		}
	}
}

func TestCanTransitionUnknownStage(t *testing.T) {
	require.False(t, CanTransition(domain.RequestStage("archived"), domain.StageInTreatment))
	require.False(t, CanTransition(domain.StageInTreatment, domain.RequestStage("archived")))
}

func TestValidateTransitionTerminalFlags(t *testing.T) {
	points := 5
	tests := []struct {
		name    string
		request domain.Request
	}{
		{"converted", domain.Request{Stage: domain.StageReady, StoryPoints: &points, IsConverted: true}},
		{"cancelled", domain.Request{Stage: domain.StageInTreatment, IsCancelled: true}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := ValidateTransition(&tc.request, domain.StageEstimation)
			require.Error(t, err)
			domainErr := apperrors.ToDomainError(err)
			require.Equal(t, "INVALID_TRANSITION", domainErr.Code)
		})
	}
}

func TestValidateTransitionReadyNeedsEstimate(t *testing.T) {
	request := &domain.Request{Stage: domain.StageEstimation}
	err := ValidateTransition(request, domain.StageReady)
	require.Error(t, err)

	points := 3
	request.StoryPoints = &points
	require.NoError(t, ValidateTransition(request, domain.StageReady))
}

func TestValidateTransitionRejectsSelf(t *testing.T) {
	request := &domain.Request{Stage: domain.StageInTreatment}
	require.Error(t, ValidateTransition(request, domain.StageInTreatment))
}

func TestAgingStatus(t *testing.T) {
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	tests := []struct {
		name    string
		stage   domain.RequestStage
		elapsed time.Duration
		want    AgingLevel
	}{
		{"treatment fresh", domain.StageInTreatment, time.Hour, AgingNormal},
		{"treatment warning", domain.StageInTreatment, 30 * time.Hour, AgingWarning},
		{"treatment critical", domain.StageInTreatment, 50 * time.Hour, AgingCritical},
		{"treatment warning boundary", domain.StageInTreatment, 24 * time.Hour, AgingWarning},
		{"hold tolerates longer", domain.StageOnHold, 50 * time.Hour, AgingNormal},
		{"hold warning", domain.StageOnHold, 80 * time.Hour, AgingWarning},
		{"hold critical", domain.StageOnHold, 168 * time.Hour, AgingCritical},
		{"estimation warning", domain.StageEstimation, 13 * time.Hour, AgingWarning},
		{"estimation critical", domain.StageEstimation, 25 * time.Hour, AgingCritical},
		{"ready warning", domain.StageReady, 7 * time.Hour, AgingWarning},
		{"ready critical", domain.StageReady, 12 * time.Hour, AgingCritical},
		{"unknown stage", domain.RequestStage("archived"), 1000 * time.Hour, AgingNormal},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := AgingStatus(tc.stage, now.Add(-tc.elapsed), now)
			require.Equal(t, tc.want, got)
		})
	}
}
