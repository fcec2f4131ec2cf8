package domain

import (
	"context"
	"math"
	"time"
)

// Event is a church event with a fixed or unlimited number of spots.
// swagger:model Event
type Event struct {
	ID                      string     `json:"id"`
	ChurchID                string     `json:"church_id"`
	Title                   string     `json:"title"`
	Description             *string    `json:"description,omitempty"`
	Location                string     `json:"location"`
	EventDate               time.Time  `json:"event_date"`
	EndDate                 *time.Time `json:"end_date,omitempty"`
	ImageURL                *string    `json:"image_url,omitempty"`
	Capacity                int        `json:"capacity"`
	SpotsRemaining          int        `json:"spots_remaining"`
	HasUnlimitedCapacity    bool       `json:"has_unlimited_capacity"`
	IsFree                  bool       `json:"is_free"`
	Price                   *float64   `json:"price,omitempty"`
	IsPublished             bool       `json:"is_published"`
	ExternalRegistrationURL *string    `json:"external_registration_url,omitempty"`
	CreatedAt               time.Time  `json:"created_at"`
	UpdatedAt               time.Time  `json:"updated_at"`
}

// NewEvent returns an Event with every spot available. ID is set by the repository on create.
func NewEvent(churchID, title, location string, eventDate time.Time, capacity int, unlimited bool, createdAt time.Time) *Event {
	return &Event{
		ChurchID:             churchID,
		Title:                title,
		Location:             location,
		EventDate:            eventDate,
		Capacity:             capacity,
		SpotsRemaining:       capacity,
		HasUnlimitedCapacity: unlimited,
		IsFree:               true,
		CreatedAt:            createdAt,
		UpdatedAt:            createdAt,
	}
}

// MaxPrice is the largest amount a NUMERIC(10,2) column holds.
const MaxPrice = 99_999_999.99

// Cents converts a currency amount to whole cents, rounding half away from zero.
func Cents(amount float64) int64 {
	return int64(math.Round(amount * 100))
}

// IsWholeCents reports whether amount has no more than two decimal places.
func IsWholeCents(amount float64) bool {
	return math.Abs(float64(Cents(amount))/100-amount) < 1e-9
}

// UnitPrice returns the per-ticket price, 0 for free events.
func (e *Event) UnitPrice() float64 {
	if e.IsFree || e.Price == nil {
		return 0
	}
	return *e.Price
}

// TotalFor returns the price of tickets seats, computed in cents so the result
// matches what a NUMERIC(10,2) column stores.
func (e *Event) TotalFor(tickets int) float64 {
	return float64(Cents(e.UnitPrice())*int64(tickets)) / 100
}

// UsesExternalRegistration reports whether signups happen on another site.
func (e *Event) UsesExternalRegistration() bool {
	return e.ExternalRegistrationURL != nil && *e.ExternalRegistrationURL != ""
}

// OpenForRegistration reports whether the public registration flow may run for this event at now.
func (e *Event) OpenForRegistration(now time.Time) bool {
	return e.IsPublished && !e.EventDate.Before(now)
}

// EventUpdate holds the optional non-capacity fields an admin may change.
// Capacity changes go through EventRepository.UpdateCapacity.
type EventUpdate struct {
	Title                   *string
	Description             *string
	Location                *string
	EventDate               *time.Time
	EndDate                 *time.Time
	ImageURL                *string
	IsFree                  *bool
	Price                   *float64
	IsPublished             *bool
	ExternalRegistrationURL *string
}

// EventRepository defines the interface for event storage.
type EventRepository interface {
	Create(ctx context.Context, event *Event) error
	GetByID(ctx context.Context, id string) (*Event, error)
	Update(ctx context.Context, id string, upd EventUpdate) (*Event, error)
	// UpdateCapacity changes capacity and reconciles spots_remaining. It returns
	// ErrCapacityBelowReserved when the new capacity cannot cover spots already held.
	UpdateCapacity(ctx context.Context, id string, capacity int, unlimited bool) (*Event, error)
	Delete(ctx context.Context, id string) error
	// ListPublishedUpcoming returns published events with event_date >= now, soonest first.
	ListPublishedUpcoming(ctx context.Context, now time.Time, page PaginationParams) ([]*Event, int, error)
	// ListByChurchIDs returns events for the given churches; a nil slice means all churches.
	ListByChurchIDs(ctx context.Context, churchIDs []string, page PaginationParams) ([]*Event, int, error)
}

// CreateEventInput is the admin payload for a new event.
type CreateEventInput struct {
	ChurchID                string
	Title                   string
	Description             *string
	Location                string
	EventDate               time.Time
	EndDate                 *time.Time
	ImageURL                *string
	Capacity                int
	HasUnlimitedCapacity    bool
	IsFree                  bool
	Price                   *float64
	IsPublished             bool
	ExternalRegistrationURL *string
}

// EventService defines public and admin operations on events.
type EventService interface {
	ListUpcoming(ctx context.Context, page PaginationParams) ([]*Event, int, error)
	GetPublic(ctx context.Context, id string) (*Event, error)
	Create(ctx context.Context, p *Principal, in CreateEventInput) (*Event, error)
	Get(ctx context.Context, p *Principal, id string) (*Event, error)
	Update(ctx context.Context, p *Principal, id string, upd EventUpdate) (*Event, error)
	UpdateCapacity(ctx context.Context, p *Principal, id string, capacity int, unlimited bool) (*Event, error)
	Delete(ctx context.Context, p *Principal, id string) error
	ListManaged(ctx context.Context, p *Principal, page PaginationParams) ([]*Event, int, error)
}
