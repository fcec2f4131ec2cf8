package services

import (
	"context"
	"fmt"
	"time"

	"districtevents/internal/domain"
)

// DefaultHoldTTL is how long a priced registration holds its spots before the sweeper reclaims them.
const DefaultHoldTTL = 15 * time.Minute

type ledgerService struct {
	registrationRepo domain.RegistrationRepository
	holdTTL          time.Duration
}

// NewLedgerService returns a RegistrationLedger that writes to registrationRepo.
// A non-positive holdTTL falls back to DefaultHoldTTL.
func NewLedgerService(registrationRepo domain.RegistrationRepository, holdTTL time.Duration) domain.RegistrationLedger {
	if holdTTL <= 0 {
		holdTTL = DefaultHoldTTL
	}
	return &ledgerService{registrationRepo: registrationRepo, holdTTL: holdTTL}
}

// CreateRegistration inserts the registration for in. Free events are
// confirmed immediately; priced events start as a pending hold.
func (s *ledgerService) CreateRegistration(ctx context.Context, event *domain.Event, in domain.RegistrationInput, now time.Time) (*domain.Registration, error) {
	reg := &domain.Registration{
		EventID:       event.ID,
		AttendeeName:  in.AttendeeName,
		AttendeeEmail: in.AttendeeEmail,
		AttendeePhone: in.AttendeePhone,
		NumTickets:    in.NumTickets,
		TotalAmount:   event.TotalFor(in.NumTickets),
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if event.IsFree {
		reg.RegistrationStatus = domain.RegistrationConfirmed
		reg.PaymentStatus = domain.PaymentFree
	} else {
		hold := now.Add(s.holdTTL)
		reg.RegistrationStatus = domain.RegistrationPending
		reg.PaymentStatus = domain.PaymentPending
		reg.HoldExpiresAt = &hold
	}
	if err := s.registrationRepo.Create(ctx, reg); err != nil {
		return nil, fmt.Errorf("create registration: %w", err)
	}
	return reg, nil
}
