package services

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"districtevents/internal/domain"
)

const (
	maxEventTitleLen    = 200
	maxEventLocationLen = 300
)

type eventService struct {
	eventRepo      domain.EventRepository
	churchRepo     domain.ChurchRepository
	contextTimeout time.Duration
	now            func() time.Time
}

// NewEventService creates an EventService. Repository calls are bounded by timeout.
func NewEventService(eventRepo domain.EventRepository, churchRepo domain.ChurchRepository, timeout time.Duration) domain.EventService {
	return &eventService{
		eventRepo:      eventRepo,
		churchRepo:     churchRepo,
		contextTimeout: timeout,
		now:            time.Now,
	}
}

func (s *eventService) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.contextTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.contextTimeout)
}

func (s *eventService) ListUpcoming(ctx context.Context, page domain.PaginationParams) ([]*domain.Event, int, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	events, total, err := s.eventRepo.ListPublishedUpcoming(ctx, s.now(), page)
	if err != nil {
		return nil, 0, fmt.Errorf("list upcoming events: %w", err)
	}
	return events, total, nil
}

// GetPublic returns a published event. Drafts are reported as not found.
func (s *eventService) GetPublic(ctx context.Context, id string) (*domain.Event, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	event, err := s.getEvent(ctx, id)
	if err != nil {
		return nil, err
	}
	if !event.IsPublished {
		return nil, domain.ErrNotFound
	}
	return event, nil
}

func (s *eventService) Create(ctx context.Context, p *domain.Principal, in domain.CreateEventInput) (*domain.Event, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	in.Title = strings.TrimSpace(in.Title)
	in.Location = strings.TrimSpace(in.Location)
	errs := domain.ValidationErrors{}
	validateEventFields(errs, &in.Title, &in.Location, in.EndDate, &in.EventDate, &in.IsFree, in.Price, in.ExternalRegistrationURL)
	if in.ChurchID == "" {
		errs["church_id"] = "church is required"
	}
	if in.Capacity < 0 {
		errs["capacity"] = "capacity must not be negative"
	}
	if len(errs) > 0 {
		return nil, errs
	}
	if !p.CanManageChurch(in.ChurchID) {
		return nil, domain.ErrForbidden
	}
	if _, err := s.churchRepo.GetByID(ctx, in.ChurchID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ValidationErrors{"church_id": "church does not exist"}
		}
		return nil, fmt.Errorf("get church: %w", err)
	}

	event := domain.NewEvent(in.ChurchID, in.Title, in.Location, in.EventDate, in.Capacity, in.HasUnlimitedCapacity, s.now())
	event.Description = in.Description
	event.EndDate = in.EndDate
	event.ImageURL = in.ImageURL
	event.IsFree = in.IsFree
	if !in.IsFree {
		event.Price = in.Price
	}
	event.IsPublished = in.IsPublished
	if in.ExternalRegistrationURL != nil && *in.ExternalRegistrationURL != "" {
		event.ExternalRegistrationURL = in.ExternalRegistrationURL
	}
	if err := s.eventRepo.Create(ctx, event); err != nil {
		return nil, fmt.Errorf("create event: %w", err)
	}
	return event, nil
}

// validateEventFields checks the fields shared by create and update. Nil pointers are skipped.
func validateEventFields(errs domain.ValidationErrors, title, location *string, endDate, eventDate *time.Time, isFree *bool, price *float64, externalURL *string) {
	if title != nil {
		switch {
		case strings.TrimSpace(*title) == "":
			errs["title"] = "title is required"
		case len(*title) > maxEventTitleLen:
			errs["title"] = fmt.Sprintf("title must be at most %d characters", maxEventTitleLen)
		}
	}
	if location != nil {
		switch {
		case strings.TrimSpace(*location) == "":
			errs["location"] = "location is required"
		case len(*location) > maxEventLocationLen:
			errs["location"] = fmt.Sprintf("location must be at most %d characters", maxEventLocationLen)
		}
	}
	if eventDate != nil && eventDate.IsZero() {
		errs["event_date"] = "event date is required"
	}
	if endDate != nil && eventDate != nil && endDate.Before(*eventDate) {
		errs["end_date"] = "end date must not be before the event date"
	}
	if isFree != nil && !*isFree && (price == nil || *price <= 0) {
		errs["price"] = "price is required for paid events"
	}
	if price != nil {
		switch {
		case *price < 0:
			errs["price"] = "price must not be negative"
		case *price > domain.MaxPrice:
			errs["price"] = "price is too large"
		case !domain.IsWholeCents(*price):
			errs["price"] = "price must have at most two decimal places"
		}
	}
	if externalURL != nil && *externalURL != "" {
		u, err := url.Parse(*externalURL)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			errs["external_registration_url"] = "must be an http or https URL"
		}
	}
}

func (s *eventService) getEvent(ctx context.Context, id string) (*domain.Event, error) {
	event, err := s.eventRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}
	return event, nil
}

func (s *eventService) authorize(ctx context.Context, p *domain.Principal, id string) (*domain.Event, error) {
	event, err := s.getEvent(ctx, id)
	if err != nil {
		return nil, err
	}
	if !p.CanManageChurch(event.ChurchID) {
		return nil, domain.ErrForbidden
	}
	return event, nil
}

func (s *eventService) Get(ctx context.Context, p *domain.Principal, id string) (*domain.Event, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	return s.authorize(ctx, p, id)
}

func (s *eventService) Update(ctx context.Context, p *domain.Principal, id string, upd domain.EventUpdate) (*domain.Event, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	event, err := s.authorize(ctx, p, id)
	if err != nil {
		return nil, err
	}
	if upd.Title != nil {
		t := strings.TrimSpace(*upd.Title)
		upd.Title = &t
	}
	if upd.Location != nil {
		l := strings.TrimSpace(*upd.Location)
		upd.Location = &l
	}
	// Validate against the merged view so a paid event cannot lose its price.
	eventDate := event.EventDate
	if upd.EventDate != nil {
		eventDate = *upd.EventDate
	}
	endDate := event.EndDate
	if upd.EndDate != nil {
		endDate = upd.EndDate
	}
	isFree := event.IsFree
	if upd.IsFree != nil {
		isFree = *upd.IsFree
	}
	price := event.Price
	if upd.Price != nil {
		price = upd.Price
	}
	errs := domain.ValidationErrors{}
	validateEventFields(errs, upd.Title, upd.Location, endDate, &eventDate, &isFree, price, upd.ExternalRegistrationURL)
	if len(errs) > 0 {
		return nil, errs
	}

	updated, err := s.eventRepo.Update(ctx, id, upd)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("update event: %w", err)
	}
	return updated, nil
}

// UpdateCapacity changes the event's capacity. It fails with ErrCapacityBelowReserved
// rather than leave more spots held than the new capacity allows.
func (s *eventService) UpdateCapacity(ctx context.Context, p *domain.Principal, id string, capacity int, unlimited bool) (*domain.Event, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	if capacity < 0 {
		return nil, domain.ValidationErrors{"capacity": "capacity must not be negative"}
	}
	if _, err := s.authorize(ctx, p, id); err != nil {
		return nil, err
	}
	event, err := s.eventRepo.UpdateCapacity(ctx, id, capacity, unlimited)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) || errors.Is(err, domain.ErrCapacityBelowReserved) {
			return nil, err
		}
		return nil, fmt.Errorf("update capacity: %w", err)
	}
	return event, nil
}

func (s *eventService) Delete(ctx context.Context, p *domain.Principal, id string) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	if _, err := s.authorize(ctx, p, id); err != nil {
		return err
	}
	if err := s.eventRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("delete event: %w", err)
	}
	return nil
}

// ListManaged returns every event for a county admin, or the events of the
// churches a church admin manages.
func (s *eventService) ListManaged(ctx context.Context, p *domain.Principal, page domain.PaginationParams) ([]*domain.Event, int, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	if p == nil {
		return nil, 0, domain.ErrForbidden
	}
	churchIDs := p.ManagedChurchIDs()
	if churchIDs != nil && len(churchIDs) == 0 {
		return []*domain.Event{}, 0, nil
	}
	events, total, err := s.eventRepo.ListByChurchIDs(ctx, churchIDs, page)
	if err != nil {
		return nil, 0, fmt.Errorf("list events: %w", err)
	}
	return events, total, nil
}
