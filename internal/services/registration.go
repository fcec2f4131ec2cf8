package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"districtevents/internal/domain"
)

// compensationTimeout bounds the release issued after a failed insert.
const compensationTimeout = 10 * time.Second

type registrationService struct {
	eventRepo        domain.EventRepository
	registrationRepo domain.RegistrationRepository
	inventory        domain.SpotInventory
	reservations     domain.ReservationService
	ledger           domain.RegistrationLedger
	emailService     domain.EmailService
	logger           *slog.Logger
	now              func() time.Time
}

// NewRegistrationService wires the public registration workflow and the admin ledger operations.
// emailService may be nil, in which case no confirmations are sent.
func NewRegistrationService(
	eventRepo domain.EventRepository,
	registrationRepo domain.RegistrationRepository,
	inventory domain.SpotInventory,
	reservations domain.ReservationService,
	ledger domain.RegistrationLedger,
	emailService domain.EmailService,
	logger *slog.Logger,
) domain.RegistrationService {
	return &registrationService{
		eventRepo:        eventRepo,
		registrationRepo: registrationRepo,
		inventory:        inventory,
		reservations:     reservations,
		ledger:           ledger,
		emailService:     emailService,
		logger:           logger,
		now:              time.Now,
	}
}

// Register runs validate, reserve, persist and notify for one attendee. If the
// insert fails after spots were reserved, the spots are released before the
// error is returned.
func (s *registrationService) Register(ctx context.Context, eventID string, in domain.RegistrationInput) (*domain.Registration, error) {
	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}
	now := s.now()
	if event.UsesExternalRegistration() {
		return nil, domain.ErrExternalRegistration
	}
	if !event.OpenForRegistration(now) {
		return nil, domain.ErrEventClosed
	}

	in.Normalize()
	if verrs := in.Validate(); verrs != nil {
		return nil, verrs
	}

	granted, err := s.reservations.Reserve(ctx, event.ID, in.NumTickets)
	if err != nil {
		return nil, err
	}
	if !granted {
		return nil, domain.ErrCapacityExhausted
	}

	reg, err := s.ledger.CreateRegistration(ctx, event, in, now)
	if err != nil {
		s.compensate(ctx, event.ID, in.NumTickets)
		return nil, fmt.Errorf("%w: %w", domain.ErrPersistenceFailure, err)
	}

	s.notify(ctx, event, reg)
	return reg, nil
}

// compensate releases spots held for a registration that was never stored.
// It runs detached from ctx so a cancelled request still gives the spots back.
func (s *registrationService) compensate(ctx context.Context, eventID string, tickets int) {
	releaseCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), compensationTimeout)
	defer cancel()
	if err := s.reservations.Release(releaseCtx, eventID, tickets); err != nil {
		s.logger.Error("compensating release failed",
			"event_id", eventID,
			"tickets", tickets,
			"error", err,
		)
	}
}

func (s *registrationService) notify(ctx context.Context, event *domain.Event, reg *domain.Registration) {
	if s.emailService == nil {
		return
	}
	data := &domain.RegistrationConfirmationEmailData{
		AttendeeName:     reg.AttendeeName,
		AttendeeEmail:    reg.AttendeeEmail,
		EventTitle:       event.Title,
		EventDate:        event.EventDate.Format("Monday, January 2, 2006 at 3:04 PM"),
		EventLocation:    event.Location,
		NumTickets:       reg.NumTickets,
		TotalPrice:       reg.TotalAmount,
		ConfirmationCode: reg.ConfirmationCode(),
		RegistrationID:   reg.ID,
	}
	if err := s.emailService.SendRegistrationConfirmation(ctx, data); err != nil {
		s.logger.Warn("registration confirmation not sent",
			"registration_id", reg.ID,
			"error", err,
		)
		return
	}
	if err := s.registrationRepo.MarkConfirmationSent(ctx, reg.ID); err != nil {
		s.logger.Warn("failed to record confirmation sent",
			"registration_id", reg.ID,
			"error", err,
		)
		return
	}
	reg.ConfirmationSent = true
}

// authorizeEvent loads eventID and checks that p manages its church.
func (s *registrationService) authorizeEvent(ctx context.Context, p *domain.Principal, eventID string) (*domain.Event, error) {
	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}
	if !p.CanManageChurch(event.ChurchID) {
		return nil, domain.ErrForbidden
	}
	return event, nil
}

func (s *registrationService) getAuthorized(ctx context.Context, p *domain.Principal, id string) (*domain.Registration, error) {
	reg, err := s.registrationRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get registration: %w", err)
	}
	if _, err := s.authorizeEvent(ctx, p, reg.EventID); err != nil {
		return nil, err
	}
	return reg, nil
}

func (s *registrationService) Get(ctx context.Context, p *domain.Principal, id string) (*domain.Registration, error) {
	return s.getAuthorized(ctx, p, id)
}

func (s *registrationService) ListByEvent(ctx context.Context, p *domain.Principal, eventID string, page domain.PaginationParams) ([]*domain.Registration, int, error) {
	if _, err := s.authorizeEvent(ctx, p, eventID); err != nil {
		return nil, 0, err
	}
	regs, total, err := s.registrationRepo.ListByEventID(ctx, eventID, page)
	if err != nil {
		return nil, 0, fmt.Errorf("list registrations: %w", err)
	}
	return regs, total, nil
}

// ListManaged lists registrations across every event the principal manages.
// search matches attendee name, email, or phone.
func (s *registrationService) ListManaged(ctx context.Context, p *domain.Principal, search string, page domain.PaginationParams) ([]*domain.ManagedRegistration, int, error) {
	if p == nil {
		return nil, 0, domain.ErrForbidden
	}
	churchIDs := p.ManagedChurchIDs()
	if churchIDs != nil && len(churchIDs) == 0 {
		return []*domain.ManagedRegistration{}, 0, nil
	}
	filter := domain.RegistrationFilter{ChurchIDs: churchIDs, Search: strings.TrimSpace(search)}
	items, total, err := s.registrationRepo.ListManaged(ctx, filter, page)
	if err != nil {
		return nil, 0, fmt.Errorf("list managed registrations: %w", err)
	}
	return items, total, nil
}

func (s *registrationService) CheckIn(ctx context.Context, p *domain.Principal, id string, checkedIn bool) (*domain.Registration, error) {
	reg, err := s.getAuthorized(ctx, p, id)
	if err != nil {
		return nil, err
	}
	if checkedIn && reg.RegistrationStatus == domain.RegistrationCancelled {
		return nil, domain.ErrAlreadyCancelled
	}
	updated, err := s.registrationRepo.SetCheckedIn(ctx, id, checkedIn, s.now())
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("set checked in: %w", err)
	}
	return updated, nil
}

// Cancel cancels a pending or confirmed registration and returns its spots.
func (s *registrationService) Cancel(ctx context.Context, p *domain.Principal, id string) (*domain.Registration, error) {
	if _, err := s.getAuthorized(ctx, p, id); err != nil {
		return nil, err
	}
	reg, cancelled, err := s.inventory.CancelRegistration(ctx, id, domain.CancelFilter{})
	if err != nil {
		return nil, fmt.Errorf("cancel registration: %w", err)
	}
	if !cancelled {
		return nil, domain.ErrAlreadyCancelled
	}
	s.logger.Info("registration cancelled",
		"registration_id", reg.ID,
		"event_id", reg.EventID,
		"tickets", reg.NumTickets,
	)
	return reg, nil
}
