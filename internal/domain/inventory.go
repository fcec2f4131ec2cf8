package domain

import (
	"context"
	"time"
)

// CancelFilter narrows which registrations SpotInventory.CancelRegistration may cancel.
type CancelFilter struct {
	// HoldExpiredBefore, when set, restricts cancellation to pending registrations
	// whose hold_expires_at is before this instant. When nil, any pending or
	// confirmed registration may be cancelled.
	HoldExpiredBefore *time.Time
}

// SpotInventory is the storage port for spots_remaining. It is the only writer
// of that column and every method is a single atomic unit in the store.
type SpotInventory interface {
	// ReserveSpots decrements spots_remaining by n if at least n remain. Unlimited
	// events are always granted and never decremented. Unknown events return ErrNotFound.
	ReserveSpots(ctx context.Context, eventID string, n int) (bool, error)
	// ReleaseSpots adds n back, clamped at capacity. Unlimited events are untouched.
	ReleaseSpots(ctx context.Context, eventID string, n int) error
	// CancelRegistration marks a registration cancelled and releases its tickets
	// together. It returns false when the registration did not match the filter
	// (already cancelled, hold not expired, or not found), in which case nothing changed.
	CancelRegistration(ctx context.Context, registrationID string, filter CancelFilter) (*Registration, bool, error)
}

// ReservationService validates and forwards reserve/release calls to the inventory.
type ReservationService interface {
	Reserve(ctx context.Context, eventID string, tickets int) (bool, error)
	Release(ctx context.Context, eventID string, tickets int) error
}

// HoldSweeper reclaims spots from expired holds.
type HoldSweeper interface {
	SweepExpiredHolds(ctx context.Context) (int, error)
}
