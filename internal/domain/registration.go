package domain

import (
	"context"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"
)

// RegistrationStatus tracks a registration's hold on capacity.
type RegistrationStatus string

const (
	RegistrationPending   RegistrationStatus = "pending"
	RegistrationConfirmed RegistrationStatus = "confirmed"
	RegistrationCancelled RegistrationStatus = "cancelled"
)

// PaymentStatus tracks payment independently of capacity.
type PaymentStatus string

const (
	PaymentFree    PaymentStatus = "free"
	PaymentPending PaymentStatus = "pending"
	PaymentPaid    PaymentStatus = "paid"
	PaymentFailed  PaymentStatus = "failed"
)

// Attendee field limits.
const (
	MaxAttendeeNameLen  = 100
	MaxAttendeeEmailLen = 255
	MaxAttendeePhoneLen = 20
	MaxTicketsPerOrder  = 10
)

var (
	attendeeEmailRegexp = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
	attendeePhoneRegexp = regexp.MustCompile(`^[0-9+()\-.\s]*$`)
)

// Registration is one attendee's claim on an event's spots.
// swagger:model Registration
type Registration struct {
	ID                 string             `json:"id"`
	EventID            string             `json:"event_id"`
	AttendeeName       string             `json:"attendee_name"`
	AttendeeEmail      string             `json:"attendee_email"`
	AttendeePhone      *string            `json:"attendee_phone,omitempty"`
	NumTickets         int                `json:"num_tickets"`
	TotalAmount        float64            `json:"total_amount"`
	RegistrationStatus RegistrationStatus `json:"registration_status"`
	PaymentStatus      PaymentStatus      `json:"payment_status"`
	HoldExpiresAt      *time.Time         `json:"hold_expires_at,omitempty"`
	CheckedIn          bool               `json:"checked_in"`
	CheckedInAt        *time.Time         `json:"checked_in_at,omitempty"`
	ConfirmationSent   bool               `json:"confirmation_sent"`
	CreatedAt          time.Time          `json:"created_at"`
	UpdatedAt          time.Time          `json:"updated_at"`
}

// ConfirmationCode is the short id shown to attendees.
func (r *Registration) ConfirmationCode() string {
	code := r.ID
	if len(code) > 8 {
		code = code[:8]
	}
	return strings.ToUpper(code)
}

// RegistrationInput is the attendee-supplied part of a registration.
type RegistrationInput struct {
	AttendeeName  string
	AttendeeEmail string
	AttendeePhone *string
	NumTickets    int
}

// Normalize trims whitespace, lower-cases the email, and drops an empty phone.
func (in *RegistrationInput) Normalize() {
	in.AttendeeName = strings.TrimSpace(in.AttendeeName)
	in.AttendeeEmail = strings.ToLower(strings.TrimSpace(in.AttendeeEmail))
	if in.AttendeePhone != nil {
		p := strings.TrimSpace(*in.AttendeePhone)
		if p == "" {
			in.AttendeePhone = nil
		} else {
			in.AttendeePhone = &p
		}
	}
}

// Validate returns per-field errors, or nil when the input is acceptable.
// Call Normalize first.
func (in *RegistrationInput) Validate() ValidationErrors {
	errs := ValidationErrors{}
	switch {
	case in.AttendeeName == "":
		errs["attendee_name"] = "name is required"
	case utf8.RuneCountInString(in.AttendeeName) > MaxAttendeeNameLen:
		errs["attendee_name"] = "name must be at most 100 characters"
	}
	switch {
	case in.AttendeeEmail == "":
		errs["attendee_email"] = "email is required"
	case len(in.AttendeeEmail) > MaxAttendeeEmailLen:
		errs["attendee_email"] = "email must be at most 255 characters"
	case !attendeeEmailRegexp.MatchString(in.AttendeeEmail):
		errs["attendee_email"] = "invalid email format"
	}
	if in.AttendeePhone != nil {
		switch {
		case len(*in.AttendeePhone) > MaxAttendeePhoneLen:
			errs["attendee_phone"] = "phone must be at most 20 characters"
		case !attendeePhoneRegexp.MatchString(*in.AttendeePhone):
			errs["attendee_phone"] = "phone contains invalid characters"
		}
	}
	if in.NumTickets < 1 || in.NumTickets > MaxTicketsPerOrder {
		errs["num_tickets"] = "tickets must be between 1 and 10"
	}
	if len(errs) == 0 {
		return nil
	}
	return errs
}

// ManagedRegistration is a registration listed with the event it belongs to.
// swagger:model ManagedRegistration
type ManagedRegistration struct {
	Registration
	EventTitle string    `json:"event_title"`
	EventDate  time.Time `json:"event_date"`
	ChurchID   string    `json:"church_id"`
}

// RegistrationFilter narrows a cross-event registration listing.
type RegistrationFilter struct {
	// ChurchIDs limits results to events of these churches. Nil means every church.
	ChurchIDs []string
	// Search matches attendee name, email, or phone, case-insensitively.
	Search string
}

// RegistrationRepository is the durable ledger of registrations. It never touches capacity.
type RegistrationRepository interface {
	Create(ctx context.Context, reg *Registration) error
	GetByID(ctx context.Context, id string) (*Registration, error)
	ListByEventID(ctx context.Context, eventID string, page PaginationParams) ([]*Registration, int, error)
	// ListManaged lists registrations across events, newest first.
	ListManaged(ctx context.Context, filter RegistrationFilter, page PaginationParams) ([]*ManagedRegistration, int, error)
	// ListExpiredHolds returns pending registrations whose hold expired before now, oldest first.
	ListExpiredHolds(ctx context.Context, now time.Time, limit int) ([]*Registration, error)
	MarkConfirmationSent(ctx context.Context, id string) error
	SetCheckedIn(ctx context.Context, id string, checkedIn bool, at time.Time) (*Registration, error)
}

// RegistrationLedger records a registration once its spots are held. It never touches capacity.
type RegistrationLedger interface {
	CreateRegistration(ctx context.Context, event *Event, in RegistrationInput, now time.Time) (*Registration, error)
}

// RegistrationService is the public registration workflow plus admin ledger operations.
type RegistrationService interface {
	Register(ctx context.Context, eventID string, in RegistrationInput) (*Registration, error)
	Get(ctx context.Context, p *Principal, id string) (*Registration, error)
	ListByEvent(ctx context.Context, p *Principal, eventID string, page PaginationParams) ([]*Registration, int, error)
	ListManaged(ctx context.Context, p *Principal, search string, page PaginationParams) ([]*ManagedRegistration, int, error)
	CheckIn(ctx context.Context, p *Principal, id string, checkedIn bool) (*Registration, error)
	Cancel(ctx context.Context, p *Principal, id string) (*Registration, error)
}
