package services

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"log/slog"
	"math/big"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"speakerqueue/internal/domain"
)

type attendeeService struct {
	attendeeRepo domain.AttendeeRepository
	eventRepo    domain.EventRepository
	requestRepo  domain.RequestRepository
	dispatcher   domain.EmailDispatcher
	changes      domain.ChangePublisher
	baseURL      string
	logger       *slog.Logger
}

// NewAttendeeService creates an AttendeeService. baseURL is the public origin
// used to build verification links.
func NewAttendeeService(
	attendeeRepo domain.AttendeeRepository,
	eventRepo domain.EventRepository,
	requestRepo domain.RequestRepository,
	dispatcher domain.EmailDispatcher,
	changes domain.ChangePublisher,
	baseURL string,
	logger *slog.Logger,
) domain.AttendeeService {
	return &attendeeService{
		attendeeRepo: attendeeRepo,
		eventRepo:    eventRepo,
		requestRepo:  requestRepo,
		dispatcher:   dispatcher,
		changes:      changes,
		baseURL:      strings.TrimRight(baseURL, "/"),
		logger:       logger,
	}
}

// generateAttendeeCode builds a human-readable code like EVT2026-482913.
func generateAttendeeCode(now time.Time) (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1_000_000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("EVT%d-%06d", now.Year(), n.Int64()), nil
}

func (s *attendeeService) Register(ctx context.Context, name, email string) (*domain.Attendee, error) {
	name = strings.TrimSpace(name)
	email = strings.TrimSpace(strings.ToLower(email))
	if name == "" {
		return nil, fmt.Errorf("name is required")
	}
	if !emailRegexp.MatchString(email) {
		return nil, fmt.Errorf("invalid email format")
	}

	now := time.Now()
	code, err := generateAttendeeCode(now)
	if err != nil {
		return nil, fmt.Errorf("generate attendee code: %w", err)
	}
	token := uuid.NewString()

	attendee := domain.NewAttendee(name, email, code, token, now, now)
	if err := s.attendeeRepo.Create(ctx, attendee); err != nil {
		if errors.Is(err, domain.ErrDuplicateEmail) {
			return nil, domain.ErrDuplicateEmail
		}
		return nil, fmt.Errorf("create attendee: %w", err)
	}

	link := fmt.Sprintf("%s/verify-email?token=%s&code=%s",
		s.baseURL, url.QueryEscape(token), url.QueryEscape(code))
	data := &domain.VerificationEmailData{
		Name:             attendee.Name,
		Email:            attendee.Email,
		AttendeeCode:     attendee.AttendeeCode,
		VerificationLink: link,
	}
	// Registration already succeeded; a failed dispatch is logged and the
	// attendee can request the email again later.
	if err := s.dispatcher.Dispatch(ctx, data); err != nil {
		s.logger.Error("dispatch verification email", "email", attendee.Email, "error", err)
	}

	return attendee, nil
}

func (s *attendeeService) VerifyEmail(ctx context.Context, token, attendeeCode string) (*domain.Attendee, error) {
	attendee, err := s.attendeeRepo.VerifyEmail(ctx, strings.TrimSpace(token), strings.TrimSpace(attendeeCode))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("verify email: %w", err)
	}
	return attendee, nil
}

func (s *attendeeService) VerifyID(ctx context.Context, attendeeCode string) (*domain.Attendee, error) {
	attendee, err := s.attendeeRepo.GetVerifiedByCode(ctx, strings.TrimSpace(attendeeCode))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get attendee by code: %w", err)
	}
	return attendee, nil
}

func (s *attendeeService) ListRequests(ctx context.Context, attendeeCode string, params domain.PaginationParams) ([]*domain.SpeakingRequest, int, error) {
	if _, err := s.VerifyID(ctx, attendeeCode); err != nil {
		return nil, 0, err
	}
	requests, total, err := s.requestRepo.ListByAttendeeCode(ctx, attendeeCode, params)
	if err != nil {
		return nil, 0, fmt.Errorf("list requests: %w", err)
	}
	if requests == nil {
		requests = []*domain.SpeakingRequest{}
	}
	return requests, total, nil
}

func (s *attendeeService) SubmitRequest(ctx context.Context, attendeeCode, eventCode, question string) (*domain.SubmissionResult, error) {
	attendee, err := s.VerifyID(ctx, attendeeCode)
	if err != nil {
		return nil, err
	}
	return submitRequest(ctx, s.eventRepo, s.requestRepo, s.changes, eventCode, attendee.Name, attendee.AttendeeCode, question)
}
