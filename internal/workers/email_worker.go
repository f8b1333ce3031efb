// Package workers holds the background consumers fed by the message broker.
package workers

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"speakerqueue/internal/adapters/rabbit"
	"speakerqueue/internal/domain"
)

const sendTimeout = 30 * time.Second

// EmailWorker consumes verification email jobs and sends them through the
// EmailService. A job that fails to send is requeued by the broker client.
type EmailWorker struct {
	client *rabbit.Client
	emails domain.EmailService
	logger *slog.Logger
}

func NewEmailWorker(client *rabbit.Client, emails domain.EmailService, logger *slog.Logger) *EmailWorker {
	return &EmailWorker{client: client, emails: emails, logger: logger}
}

// Start begins consuming from the verification email queue.
func (w *EmailWorker) Start() error {
	return w.client.Consume(w.handle)
}

func (w *EmailWorker) handle(body []byte) error {
	var data domain.VerificationEmailData
	if err := json.Unmarshal(body, &data); err != nil {
		// A malformed job will never succeed; log and ack it away.
		w.logger.Error("discarding malformed email job", "error", err)
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), sendTimeout)
	defer cancel()

	if err := w.emails.SendVerification(ctx, &data); err != nil {
		return fmt.Errorf("send verification email to %s: %w", data.Email, err)
	}
	w.logger.Info("verification email sent", "email", data.Email)
	return nil
}
