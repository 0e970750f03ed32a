package intake

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/spec-kit/intake-service/internal/domain"
)

func intPtr(v int) *int { return &v }

func TestRecommendRouting(t *testing.T) {
	tests := []struct {
		name        string
		storyPoints *int
		requestType domain.RequestType
		want        domain.RoutingDestination
	}{
		{"nil estimate defaults to ticket", nil, domain.RequestTypeFeature, domain.RouteToTicket},
		{"zero points to ticket", intPtr(0), domain.RequestTypeFeature, domain.RouteToTicket},
		{"small to ticket", intPtr(5), domain.RequestTypeBug, domain.RouteToTicket},
		{"ceiling to ticket", intPtr(8), domain.RequestTypeFeature, domain.RouteToTicket},
		{"above ceiling to project", intPtr(9), domain.RequestTypeFeature, domain.RouteToProject},
		{"large to project", intPtr(100), domain.RequestTypeEnhancement, domain.RouteToProject},
		{"change request always ticket", intPtr(50), domain.RequestTypeChangeRequest, domain.RouteToTicket},
		{"unestimated change request", nil, domain.RequestTypeChangeRequest, domain.RouteToTicket},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := RecommendRouting(tc.storyPoints, tc.requestType)
			require.Equal(t, tc.want, got)
		})
	}
}

func TestValidateEstimate(t *testing.T) {
	tests := []struct {
		name        string
		storyPoints int
		confidence  domain.EstimateConfidence
		wantErr     bool
	}{
		{"minimum", 1, domain.ConfidenceLow, false},
		{"maximum", 100, domain.ConfidenceHigh, false},
		{"zero", 0, domain.ConfidenceMedium, true},
		{"negative", -4, domain.ConfidenceMedium, true},
		{"too large", 101, domain.ConfidenceMedium, true},
		{"bad confidence", 5, domain.EstimateConfidence("sure"), true},
		{"empty confidence", 5, domain.EstimateConfidence(""), true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := ValidateEstimate(tc.storyPoints, tc.confidence)
			if tc.wantErr {
				require.Error(t, err)
			} else {
				require.NoError(t, err)
			}
		})
	}
}
