package workers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"

	"speakerqueue/internal/domain"
)

type fakeEmailService struct {
	err  error
	sent []*domain.VerificationEmailData
}

func (f *fakeEmailService) SendVerification(ctx context.Context, data *domain.VerificationEmailData) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, data)
	return nil
}

var testLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

func TestEmailWorker_handle(t *testing.T) {
	emails := &fakeEmailService{}
	w := &EmailWorker{emails: emails, logger: testLogger}

	body, _ := json.Marshal(&domain.VerificationEmailData{
		Name:         "Bob",
		Email:        "bob@example.com",
		AttendeeCode: "EVT2026-123456",
	})
	if err := w.handle(body); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(emails.sent) != 1 || emails.sent[0].Email != "bob@example.com" {
		t.Fatalf("expected one sent email, got %v", emails.sent)
	}
}

func TestEmailWorker_handle_send_failure_requeues(t *testing.T) {
	w := &EmailWorker{emails: &fakeEmailService{err: errors.New("ses down")}, logger: testLogger}

	body, _ := json.Marshal(&domain.VerificationEmailData{Email: "bob@example.com"})
	if err := w.handle(body); err == nil {
		t.Fatal("expected error so the broker requeues the job")
	}
}

func TestEmailWorker_handle_malformed_job_is_dropped(t *testing.T) {
	emails := &fakeEmailService{}
	w := &EmailWorker{emails: emails, logger: testLogger}

	if err := w.handle([]byte("not json")); err != nil {
		t.Fatalf("malformed jobs must not be requeued, got %v", err)
	}
	if len(emails.sent) != 0 {
		t.Fatal("no email expected for malformed job")
	}
}
