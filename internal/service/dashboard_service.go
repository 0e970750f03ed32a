package service

import (
	"context"

	"github.com/spec-kit/intake-service/internal/domain"
	"github.com/spec-kit/intake-service/internal/repository"
	apperrors "github.com/spec-kit/intake-service/pkg/util/errorutil"
)

// DashboardService round-trips per-user widget layouts.
type DashboardService struct {
	layouts repository.DashboardRepository
}

// NewDashboardService constructs the service.
func NewDashboardService(layouts repository.DashboardRepository) *DashboardService {
	return &DashboardService{layouts: layouts}
}

// GetLayout returns the caller's saved layout, or an empty one.
func (s *DashboardService) GetLayout(ctx context.Context, userID string) (*domain.DashboardLayout, error) {
	layout, err := s.layouts.Get(ctx, userID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return layout, nil
}

// SaveLayout replaces the caller's layout document.
func (s *DashboardService) SaveLayout(ctx context.Context, userID string, layout map[string]any) (*domain.DashboardLayout, error) {
	if layout == nil {
		return nil, apperrors.NewValidationError("layout required", nil)
	}
	saved := &domain.DashboardLayout{UserID: userID, Layout: layout}
	if err := s.layouts.Save(ctx, saved); err != nil {
		return nil, apperrors.MapError(err)
	}
	return saved, nil
}
