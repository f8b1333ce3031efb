package services

import (
	"context"
	"fmt"

	"speakerqueue/internal/domain"
)

type emailService struct {
	mailer   domain.Mailer
	renderer domain.EmailTemplateRenderer
}

// NewEmailService returns an EmailService that uses the given Mailer and template renderer.
func NewEmailService(mailer domain.Mailer, renderer domain.EmailTemplateRenderer) domain.EmailService {
	return &emailService{mailer: mailer, renderer: renderer}
}

// SendVerification sends the registration verification email using the
// "verification" template and the given data.
func (s *emailService) SendVerification(ctx context.Context, data *domain.VerificationEmailData) error {
	if data == nil {
		return fmt.Errorf("verification email data is nil")
	}
	subject, htmlBody, textBody, err := s.renderer.Render("verification", data)
	if err != nil {
		return fmt.Errorf("failed to render verification template: %w", err)
	}
	if err := s.mailer.Send(data.Email, subject, htmlBody, textBody); err != nil {
		return fmt.Errorf("failed to send verification email: %w", err)
	}
	return nil
}

type directDispatcher struct {
	emails domain.EmailService
}

// NewDirectDispatcher returns an EmailDispatcher that sends inline, for
// deployments without a message broker.
func NewDirectDispatcher(emails domain.EmailService) domain.EmailDispatcher {
	return &directDispatcher{emails: emails}
}

func (d *directDispatcher) Dispatch(ctx context.Context, data *domain.VerificationEmailData) error {
	return d.emails.SendVerification(ctx, data)
}
