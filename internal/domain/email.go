package domain

import "context"

// Mailer defines the contract for sending emails (infrastructure port).
type Mailer interface {
	Send(ctx context.Context, to, subject, html, text string) error
}

// EmailTemplateRenderer renders email content from a named template with the given data.
type EmailTemplateRenderer interface {
	Render(templateName string, data any) (subject, htmlBody, textBody string, err error)
}

// RegistrationConfirmationEmailData holds data for the registration confirmation email.
type RegistrationConfirmationEmailData struct {
	AttendeeName     string
	AttendeeEmail    string
	EventTitle       string
	EventDate        string
	EventLocation    string
	NumTickets       int
	TotalPrice       float64
	ConfirmationCode string
	RegistrationID   string
}

// UserInviteEmailData holds data for the admin invitation email.
type UserInviteEmailData struct {
	Email      string
	FullName   string
	RoleName   string
	ChurchName string
	InviteURL  string
	ExpiresIn  string
}

// EmailService defines the contract for sending domain-level emails.
type EmailService interface {
	SendRegistrationConfirmation(ctx context.Context, data *RegistrationConfirmationEmailData) error
	SendUserInvite(ctx context.Context, data *UserInviteEmailData) error
}
