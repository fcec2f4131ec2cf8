package services

import (
	"context"
	"fmt"

	"districtevents/internal/domain"
)

type overviewService struct {
	overviewRepo domain.OverviewRepository
}

// NewOverviewService creates an OverviewService.
func NewOverviewService(overviewRepo domain.OverviewRepository) domain.OverviewService {
	return &overviewService{overviewRepo: overviewRepo}
}

// Stats returns district-wide totals for a county admin and totals of the
// managed churches for a church admin.
func (s *overviewService) Stats(ctx context.Context, p *domain.Principal) (*domain.OverviewStats, error) {
	if p == nil {
		return nil, domain.ErrForbidden
	}
	churchIDs := p.ManagedChurchIDs()
	if churchIDs != nil && len(churchIDs) == 0 {
		return nil, domain.ErrForbidden
	}
	stats, err := s.overviewRepo.Stats(ctx, churchIDs)
	if err != nil {
		return nil, fmt.Errorf("overview stats: %w", err)
	}
	return stats, nil
}
