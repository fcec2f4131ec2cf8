package memory

import (
	"context"
	"time"

	"districtevents/internal/domain"
)

type eventRepository struct {
	s *Store
}

func NewEventRepository(s *Store) domain.EventRepository {
	return &eventRepository{s: s}
}

func (r *eventRepository) Create(_ context.Context, e *domain.Event) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.churches[e.ChurchID]; !ok {
		return domain.ErrNotFound
	}
	e.ID = newID()
	r.s.events[e.ID] = copyEvent(e)
	return nil
}

func (r *eventRepository) GetByID(_ context.Context, id string) (*domain.Event, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	e, ok := r.s.events[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return copyEvent(e), nil
}

func (r *eventRepository) Update(_ context.Context, id string, upd domain.EventUpdate) (*domain.Event, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	e, ok := r.s.events[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	if upd.Title != nil {
		e.Title = *upd.Title
	}
	if upd.Description != nil {
		d := *upd.Description
		e.Description = &d
	}
	if upd.Location != nil {
		e.Location = *upd.Location
	}
	if upd.EventDate != nil {
		e.EventDate = *upd.EventDate
	}
	if upd.EndDate != nil {
		d := *upd.EndDate
		e.EndDate = &d
	}
	if upd.ImageURL != nil {
		u := *upd.ImageURL
		e.ImageURL = &u
	}
	if upd.IsFree != nil {
		e.IsFree = *upd.IsFree
	}
	if upd.Price != nil {
		p := *upd.Price
		e.Price = &p
	}
	if upd.IsPublished != nil {
		e.IsPublished = *upd.IsPublished
	}
	if upd.ExternalRegistrationURL != nil {
		if *upd.ExternalRegistrationURL == "" {
			e.ExternalRegistrationURL = nil
		} else {
			u := *upd.ExternalRegistrationURL
			e.ExternalRegistrationURL = &u
		}
	}
	e.UpdatedAt = r.s.now()
	return copyEvent(e), nil
}

func (r *eventRepository) UpdateCapacity(_ context.Context, id string, capacity int, unlimited bool) (*domain.Event, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	e, ok := r.s.events[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	if unlimited {
		e.Capacity = capacity
		e.SpotsRemaining = min(e.SpotsRemaining, capacity)
		e.HasUnlimitedCapacity = true
		e.UpdatedAt = r.s.now()
		return copyEvent(e), nil
	}
	var remaining int
	if e.HasUnlimitedCapacity {
		remaining = capacity - r.s.activeTickets(id)
	} else {
		remaining = e.SpotsRemaining + (capacity - e.Capacity)
	}
	if remaining < 0 {
		return nil, domain.ErrCapacityBelowReserved
	}
	e.Capacity = capacity
	e.SpotsRemaining = remaining
	e.HasUnlimitedCapacity = false
	e.UpdatedAt = r.s.now()
	return copyEvent(e), nil
}

// activeTickets sums tickets of pending and confirmed registrations. Caller holds mu.
func (s *Store) activeTickets(eventID string) int {
	total := 0
	for _, reg := range s.registrations {
		if reg.EventID == eventID && reg.RegistrationStatus != domain.RegistrationCancelled {
			total += reg.NumTickets
		}
	}
	return total
}

func (r *eventRepository) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.events[id]; !ok {
		return domain.ErrNotFound
	}
	delete(r.s.events, id)
	for regID, reg := range r.s.registrations {
		if reg.EventID == id {
			delete(r.s.registrations, regID)
		}
	}
	return nil
}

func (r *eventRepository) ListPublishedUpcoming(_ context.Context, now time.Time, page domain.PaginationParams) ([]*domain.Event, int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var events []*domain.Event
	for _, e := range r.s.events {
		if e.IsPublished && !e.EventDate.Before(now) {
			events = append(events, copyEvent(e))
		}
	}
	sortEvents(events, true)
	return paginate(events, page), len(events), nil
}

func (r *eventRepository) ListByChurchIDs(_ context.Context, churchIDs []string, page domain.PaginationParams) ([]*domain.Event, int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	allowed := churchSet(churchIDs)
	events := []*domain.Event{}
	for _, e := range r.s.events {
		if allowed != nil {
			if _, ok := allowed[e.ChurchID]; !ok {
				continue
			}
		}
		events = append(events, copyEvent(e))
	}
	sortEvents(events, false)
	return paginate(events, page), len(events), nil
}
