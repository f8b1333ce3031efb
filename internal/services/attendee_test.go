package services

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"regexp"
	"strings"
	"testing"

	"speakerqueue/internal/domain"
)

var testLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

var attendeeCodePattern = regexp.MustCompile(`^EVT\d{4}-\d{6}$`)

func TestAttendeeService_Register(t *testing.T) {
	repo := &fakeAttendeeRepo{}
	dispatcher := &fakeDispatcher{}
	svc := NewAttendeeService(repo, &fakeEventRepo{}, &fakeRequestRepo{}, dispatcher, &fakePublisher{}, "https://queue.example.com/", testLogger)

	attendee, err := svc.Register(context.Background(), "Bob", "Bob@Example.com")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if attendee.Email != "bob@example.com" {
		t.Errorf("expected lowercased email, got %q", attendee.Email)
	}
	if !attendeeCodePattern.MatchString(attendee.AttendeeCode) {
		t.Errorf("unexpected attendee code format: %q", attendee.AttendeeCode)
	}
	if attendee.IsVerified {
		t.Error("new attendee must start unverified")
	}
	if len(dispatcher.sent) != 1 {
		t.Fatalf("expected one dispatched email, got %d", len(dispatcher.sent))
	}
	link := dispatcher.sent[0].VerificationLink
	if !strings.HasPrefix(link, "https://queue.example.com/verify-email?") {
		t.Errorf("unexpected verification link: %q", link)
	}
	if !strings.Contains(link, "token="+attendee.VerificationToken) {
		t.Errorf("verification link missing token: %q", link)
	}
}

func TestAttendeeService_Register_dispatch_failure_does_not_fail_registration(t *testing.T) {
	repo := &fakeAttendeeRepo{}
	dispatcher := &fakeDispatcher{err: errors.New("broker down")}
	svc := NewAttendeeService(repo, &fakeEventRepo{}, &fakeRequestRepo{}, dispatcher, &fakePublisher{}, "https://queue.example.com", testLogger)

	attendee, err := svc.Register(context.Background(), "Bob", "bob@example.com")
	if err != nil {
		t.Fatalf("registration must survive a failed dispatch, got %v", err)
	}
	if attendee.ID == "" {
		t.Error("expected attendee to be created")
	}
}

func TestAttendeeService_Register_duplicate_email(t *testing.T) {
	repo := &fakeAttendeeRepo{createErr: domain.ErrDuplicateEmail}
	svc := NewAttendeeService(repo, &fakeEventRepo{}, &fakeRequestRepo{}, &fakeDispatcher{}, &fakePublisher{}, "https://queue.example.com", testLogger)

	_, err := svc.Register(context.Background(), "Bob", "bob@example.com")
	if !errors.Is(err, domain.ErrDuplicateEmail) {
		t.Fatalf("expected ErrDuplicateEmail, got %v", err)
	}
}

func TestAttendeeService_SubmitRequest(t *testing.T) {
	verified := &domain.Attendee{ID: "att-1", Name: "Bob", AttendeeCode: "EVT2026-123456", IsVerified: true}
	event := &domain.Event{ID: "e1", EventCode: "AB12CD", IsActive: true, AcceptingRequests: true}

	tests := []struct {
		name         string
		attendeeCode string
		wantErr      error
	}{
		{name: "verified attendee submits", attendeeCode: "EVT2026-123456"},
		{name: "unknown attendee code", attendeeCode: "EVT2026-000000", wantErr: domain.ErrNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := NewAttendeeService(
				&fakeAttendeeRepo{byCode: map[string]*domain.Attendee{"EVT2026-123456": verified}},
				&fakeEventRepo{eventsByCode: map[string]*domain.Event{"AB12CD": event}},
				&fakeRequestRepo{},
				&fakeDispatcher{},
				&fakePublisher{},
				"https://queue.example.com",
				testLogger,
			)

			result, err := svc.SubmitRequest(context.Background(), tt.attendeeCode, "AB12CD", "What about X?")
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("expected %v, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if result.Request.AttendeeName != "Bob" {
				t.Errorf("expected request under attendee's name, got %q", result.Request.AttendeeName)
			}
			if result.Request.AttendeeCode != "EVT2026-123456" {
				t.Errorf("expected request linked to attendee code, got %q", result.Request.AttendeeCode)
			}
		})
	}
}

func TestAttendeeService_ListRequests_requires_verified_attendee(t *testing.T) {
	svc := NewAttendeeService(
		&fakeAttendeeRepo{},
		&fakeEventRepo{},
		&fakeRequestRepo{},
		&fakeDispatcher{},
		&fakePublisher{},
		"https://queue.example.com",
		testLogger,
	)

	_, _, err := svc.ListRequests(context.Background(), "EVT2026-000000", domain.PaginationParams{Page: 1, PageSize: 10})
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
