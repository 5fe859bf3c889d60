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

// EventAcceptedEmailData holds data for the event accepted email.
type EventAcceptedEmailData struct {
	Email     string
	Name      string
	EventName string
	EventDate string
	City      string
	Street    string
	Number    int
}

// EmailService defines the contract for sending domain-level emails.
type EmailService interface {
	SendEventAccepted(ctx context.Context, data *EventAcceptedEmailData) error
}
