package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"speakerqueue/internal/domain"
)

type sessionService struct {
	eventRepo   domain.EventRepository
	requestRepo domain.RequestRepository
	changes     domain.ChangePublisher
}

// NewSessionService creates a SessionService with the given repositories and
// change publisher.
func NewSessionService(eventRepo domain.EventRepository, requestRepo domain.RequestRepository, changes domain.ChangePublisher) domain.SessionService {
	return &sessionService{
		eventRepo:   eventRepo,
		requestRepo: requestRepo,
		changes:     changes,
	}
}

func (s *sessionService) GetEvent(ctx context.Context, eventCode string) (*domain.Event, error) {
	return s.eventRepo.GetByEventCode(ctx, eventCode)
}

// submitRequest is the shared submission path: it enforces the event guards,
// inserts the pending row, announces it, and computes the advisory position.
func submitRequest(ctx context.Context, eventRepo domain.EventRepository, requestRepo domain.RequestRepository, changes domain.ChangePublisher, eventCode, attendeeName, attendeeCode, question string) (*domain.SubmissionResult, error) {
	attendeeName = strings.TrimSpace(attendeeName)
	question = strings.TrimSpace(question)
	if attendeeName == "" {
		return nil, fmt.Errorf("attendee name is required")
	}
	if question == "" {
		return nil, fmt.Errorf("question is required")
	}

	event, err := eventRepo.GetByEventCode(ctx, eventCode)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get event by code: %w", err)
	}
	if !event.IsActive {
		return nil, domain.ErrEventEnded
	}
	if !event.AcceptingRequests {
		return nil, domain.ErrQueueClosed
	}

	now := time.Now()
	req := domain.NewSpeakingRequest(event.ID, attendeeName, question, now, now)
	req.AttendeeCode = attendeeCode
	if err := requestRepo.Create(ctx, req); err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	changes.Publish(domain.ChangeEvent{
		Table:   domain.TableRequests,
		Type:    domain.ChangeInsert,
		EventID: event.ID,
		Payload: req,
	})

	// The advisory position is the request's place in the pending list at
	// submission time. Queue positions can carry gaps after dismissals, so it
	// is counted from the list rather than read off the stored position.
	position := 0
	all, err := requestRepo.ListByEvent(ctx, event.ID)
	if err != nil {
		return nil, fmt.Errorf("list requests: %w", err)
	}
	for _, r := range all {
		if r.Status != domain.RequestPending {
			continue
		}
		position++
		if r.ID == req.ID {
			break
		}
	}

	return &domain.SubmissionResult{Request: req, QueuePosition: position}, nil
}

func (s *sessionService) SubmitRequest(ctx context.Context, eventCode, attendeeName, question string) (*domain.SubmissionResult, error) {
	return submitRequest(ctx, s.eventRepo, s.requestRepo, s.changes, eventCode, attendeeName, "", question)
}

func (s *sessionService) GetState(ctx context.Context, eventCode, requestID string) (*domain.SessionView, error) {
	event, err := s.eventRepo.GetByEventCode(ctx, eventCode)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get event by code: %w", err)
	}

	var request *domain.SpeakingRequest
	if requestID != "" {
		request, err = s.requestRepo.GetByID(ctx, requestID)
		if err != nil {
			if !errors.Is(err, domain.ErrNotFound) {
				return nil, fmt.Errorf("get request: %w", err)
			}
			request = nil
		} else if request.EventID != event.ID {
			// A request ID from another event says nothing about this session.
			request = nil
		}
	}

	return &domain.SessionView{
		Event:   event,
		Request: request,
		State:   domain.ResolveSessionState(event, request),
	}, nil
}
