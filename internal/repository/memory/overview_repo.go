package memory

import (
	"context"

	"districtevents/internal/domain"
)

type overviewRepository struct {
	s *Store
}

func NewOverviewRepository(s *Store) domain.OverviewRepository {
	return &overviewRepository{s: s}
}

func (r *overviewRepository) Stats(_ context.Context, churchIDs []string) (*domain.OverviewStats, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	allowed := churchSet(churchIDs)
	in := func(churchID string) bool {
		if allowed == nil {
			return true
		}
		_, ok := allowed[churchID]
		return ok
	}

	stats := &domain.OverviewStats{}
	for id := range r.s.churches {
		if in(id) {
			stats.TotalChurches++
		}
	}
	for _, e := range r.s.events {
		if !in(e.ChurchID) {
			continue
		}
		stats.TotalEvents++
		if e.IsPublished {
			stats.PublishedEvents++
		}
	}
	var cents int64
	for _, reg := range r.s.registrations {
		e, ok := r.s.events[reg.EventID]
		if !ok || !in(e.ChurchID) || reg.RegistrationStatus == domain.RegistrationCancelled {
			continue
		}
		stats.TotalRegistrations++
		stats.TotalTickets += reg.NumTickets
		cents += domain.Cents(reg.TotalAmount)
	}
	stats.TotalRevenue = float64(cents) / 100
	return stats, nil
}
