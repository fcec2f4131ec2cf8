package services

import (
	"context"
	"fmt"
	"log/slog"

	"districtevents/internal/domain"
)

type emailService struct {
	mailer   domain.Mailer
	renderer domain.EmailTemplateRenderer
	logger   *slog.Logger
}

// NewEmailService returns an EmailService that uses the given Mailer and template renderer.
func NewEmailService(mailer domain.Mailer, renderer domain.EmailTemplateRenderer, logger *slog.Logger) domain.EmailService {
	return &emailService{mailer: mailer, renderer: renderer, logger: logger}
}

// SendRegistrationConfirmation sends the "registration_confirmation" template to the attendee.
func (s *emailService) SendRegistrationConfirmation(ctx context.Context, data *domain.RegistrationConfirmationEmailData) error {
	if data == nil {
		return fmt.Errorf("registration confirmation data is nil")
	}
	if err := s.send(ctx, "registration_confirmation", data.AttendeeEmail, data); err != nil {
		return err
	}
	s.logger.Info("registration confirmation sent", "registration_id", data.RegistrationID)
	return nil
}

// SendUserInvite sends the "user_invite" template to the invited address.
func (s *emailService) SendUserInvite(ctx context.Context, data *domain.UserInviteEmailData) error {
	if data == nil {
		return fmt.Errorf("user invite data is nil")
	}
	if err := s.send(ctx, "user_invite", data.Email, data); err != nil {
		return err
	}
	s.logger.Info("user invite sent", "email", data.Email)
	return nil
}

func (s *emailService) send(ctx context.Context, templateName, to string, data any) error {
	subject, htmlBody, textBody, err := s.renderer.Render(templateName, data)
	if err != nil {
		return fmt.Errorf("failed to render %s template: %w", templateName, err)
	}
	if err := s.mailer.Send(ctx, to, subject, htmlBody, textBody); err != nil {
		return fmt.Errorf("failed to send %s email: %w", templateName, err)
	}
	return nil
}
