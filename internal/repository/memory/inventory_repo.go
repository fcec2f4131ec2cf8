package memory

import (
	"context"

	"districtevents/internal/domain"
)

type inventoryRepository struct {
	s *Store
}

func NewInventoryRepository(s *Store) domain.SpotInventory {
	return &inventoryRepository{s: s}
}

func (r *inventoryRepository) ReserveSpots(_ context.Context, eventID string, n int) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	e, ok := r.s.events[eventID]
	if !ok {
		return false, domain.ErrNotFound
	}
	if e.HasUnlimitedCapacity {
		return true, nil
	}
	if e.SpotsRemaining < n {
		return false, nil
	}
	e.SpotsRemaining -= n
	e.UpdatedAt = r.s.now()
	return true, nil
}

func (r *inventoryRepository) ReleaseSpots(_ context.Context, eventID string, n int) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	e, ok := r.s.events[eventID]
	if !ok {
		return domain.ErrNotFound
	}
	r.s.release(e, n)
	return nil
}

// release returns n spots to e, clamped at capacity. Caller holds mu.
func (s *Store) release(e *domain.Event, n int) {
	if e.HasUnlimitedCapacity {
		return
	}
	e.SpotsRemaining = min(e.Capacity, e.SpotsRemaining+n)
	e.UpdatedAt = s.now()
}

func (r *inventoryRepository) CancelRegistration(_ context.Context, registrationID string, filter domain.CancelFilter) (*domain.Registration, bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	reg, ok := r.s.registrations[registrationID]
	if !ok {
		return nil, false, nil
	}
	if filter.HoldExpiredBefore != nil {
		if reg.RegistrationStatus != domain.RegistrationPending || reg.HoldExpiresAt == nil || !reg.HoldExpiresAt.Before(*filter.HoldExpiredBefore) {
			return nil, false, nil
		}
	} else if reg.RegistrationStatus == domain.RegistrationCancelled {
		return nil, false, nil
	}
	reg.RegistrationStatus = domain.RegistrationCancelled
	reg.HoldExpiresAt = nil
	reg.UpdatedAt = r.s.now()
	if e, ok := r.s.events[reg.EventID]; ok {
		r.s.release(e, reg.NumTickets)
	}
	return copyRegistration(reg), true, nil
}
