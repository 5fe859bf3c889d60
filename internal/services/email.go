package services

import (
	"context"
	"fmt"
	"log/slog"

	"eventmanager/internal/domain"
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

// SendEventAccepted tells an event owner that their event was accepted, using the "event_accepted" template.
func (s *emailService) SendEventAccepted(ctx context.Context, data *domain.EventAcceptedEmailData) error {
	if data == nil {
		return fmt.Errorf("event accepted data is nil")
	}
	if data.Email == "" {
		return fmt.Errorf("event accepted email: recipient is empty")
	}
	subject, htmlBody, textBody, err := s.renderer.Render("event_accepted", data)
	if err != nil {
		return fmt.Errorf("failed to render event_accepted template: %w", err)
	}
	if err := s.mailer.Send(ctx, data.Email, subject, htmlBody, textBody); err != nil {
		return fmt.Errorf("failed to send event accepted email: %w", err)
	}
	s.logger.InfoContext(ctx, "event accepted email sent", "to", data.Email)
	return nil
}
