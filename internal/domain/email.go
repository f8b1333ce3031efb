package domain

import "context"

// Mailer defines the contract for sending emails (infrastructure port).
type Mailer interface {
	Send(to, subject, html, text string) error
}

// EmailTemplateRenderer renders email content from a named template with the given data.
type EmailTemplateRenderer interface {
	Render(templateName string, data any) (subject, htmlBody, textBody string, err error)
}

// VerificationEmailData holds data for the registration verification email.
type VerificationEmailData struct {
	Name             string `json:"name"`
	Email            string `json:"email"`
	AttendeeCode     string `json:"attendee_code"`
	VerificationLink string `json:"verification_link"`
}

// EmailService defines the contract for sending domain-level emails.
type EmailService interface {
	SendVerification(ctx context.Context, data *VerificationEmailData) error
}

// EmailDispatcher hands a verification email off for delivery. The broker
// implementation publishes a job consumed by a worker; the direct
// implementation sends inline.
type EmailDispatcher interface {
	Dispatch(ctx context.Context, data *VerificationEmailData) error
}
