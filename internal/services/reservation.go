package services

import (
	"context"
	"errors"
	"fmt"

	"districtevents/internal/domain"
)

type reservationService struct {
	inventory domain.SpotInventory
}

// NewReservationService returns a ReservationService backed by the given inventory.
func NewReservationService(inventory domain.SpotInventory) domain.ReservationService {
	return &reservationService{inventory: inventory}
}

// Reserve holds tickets spots on the event if that many remain. It reports
// false, with no error, when the event is sold out.
func (s *reservationService) Reserve(ctx context.Context, eventID string, tickets int) (bool, error) {
	if tickets < 1 {
		return false, fmt.Errorf("%w: tickets must be at least 1", domain.ErrInvalidArgument)
	}
	granted, err := s.inventory.ReserveSpots(ctx, eventID, tickets)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return false, domain.ErrNotFound
		}
		return false, fmt.Errorf("reserve spots: %w", err)
	}
	return granted, nil
}

// Release returns tickets spots to the event, never exceeding its capacity.
func (s *reservationService) Release(ctx context.Context, eventID string, tickets int) error {
	if tickets < 1 {
		return fmt.Errorf("%w: tickets must be at least 1", domain.ErrInvalidArgument)
	}
	if err := s.inventory.ReleaseSpots(ctx, eventID, tickets); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("release spots: %w", err)
	}
	return nil
}
