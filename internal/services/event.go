package services

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"speakerqueue/internal/domain"
)

const (
	eventCodeLength = 6
	// How many fresh codes to try before giving up on a unique-constraint
	// collision streak.
	maxCodeAttempts = 5
)

var eventCodeAlphabet = []rune("ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789")

func generateEventCode() (string, error) {
	b := make([]rune, eventCodeLength)
	max := big.NewInt(int64(len(eventCodeAlphabet)))
	for i := 0; i < eventCodeLength; i++ {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		b[i] = eventCodeAlphabet[n.Int64()]
	}
	return string(b), nil
}

type eventService struct {
	eventRepo      domain.EventRepository
	changes        domain.ChangePublisher
	contextTimeout time.Duration
}

// NewEventService creates an EventService with the given repository and
// change publisher.
func NewEventService(eventRepo domain.EventRepository, changes domain.ChangePublisher, timeout time.Duration) domain.EventService {
	return &eventService{
		eventRepo:      eventRepo,
		changes:        changes,
		contextTimeout: timeout,
	}
}

func (s *eventService) Create(ctx context.Context, moderatorID, title string, eventDate *time.Time) (*domain.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	title = strings.TrimSpace(title)
	if title == "" {
		return nil, fmt.Errorf("event title is required")
	}

	now := time.Now()
	event := domain.NewEvent(title, eventDate, moderatorID, now, now)

	// Join codes are random, so a collision is possible. Retry with a fresh
	// code instead of surfacing the constraint violation to the caller.
	for attempt := 0; attempt < maxCodeAttempts; attempt++ {
		code, err := generateEventCode()
		if err != nil {
			return nil, fmt.Errorf("generate event code: %w", err)
		}
		event.EventCode = code

		err = s.eventRepo.Create(ctx, event)
		if err == nil {
			s.changes.Publish(domain.ChangeEvent{
				Table:   domain.TableEvents,
				Type:    domain.ChangeInsert,
				EventID: event.ID,
				Payload: event,
			})
			return event, nil
		}
		if !errors.Is(err, domain.ErrDuplicateEventCode) {
			return nil, fmt.Errorf("create event: %w", err)
		}
	}
	return nil, fmt.Errorf("create event: %w", domain.ErrDuplicateEventCode)
}

// getOwnedEvent loads an event and verifies the caller moderates it.
func (s *eventService) getOwnedEvent(ctx context.Context, moderatorID, eventID string) (*domain.Event, error) {
	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}
	if event.ModeratorID != moderatorID {
		return nil, domain.ErrForbidden
	}
	return event, nil
}

func (s *eventService) GetByID(ctx context.Context, moderatorID, eventID string) (*domain.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()
	return s.getOwnedEvent(ctx, moderatorID, eventID)
}

func (s *eventService) GetCurrent(ctx context.Context, moderatorID string) (*domain.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()
	return s.eventRepo.GetCurrentByModerator(ctx, moderatorID)
}

func (s *eventService) SetAccepting(ctx context.Context, moderatorID, eventID string, accepting bool) (*domain.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if _, err := s.getOwnedEvent(ctx, moderatorID, eventID); err != nil {
		return nil, err
	}
	updated, err := s.eventRepo.SetAcceptingRequests(ctx, eventID, accepting)
	if err != nil {
		return nil, fmt.Errorf("set accepting requests: %w", err)
	}
	s.changes.Publish(domain.ChangeEvent{
		Table:   domain.TableEvents,
		Type:    domain.ChangeUpdate,
		EventID: updated.ID,
		Payload: updated,
	})
	return updated, nil
}

func (s *eventService) End(ctx context.Context, moderatorID, eventID string) (*domain.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if _, err := s.getOwnedEvent(ctx, moderatorID, eventID); err != nil {
		return nil, err
	}
	ended, err := s.eventRepo.EndSession(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("end session: %w", err)
	}
	s.changes.Publish(domain.ChangeEvent{
		Table:   domain.TableEvents,
		Type:    domain.ChangeUpdate,
		EventID: ended.ID,
		Payload: ended,
	})
	return ended, nil
}

func (s *eventService) GetByCode(ctx context.Context, eventCode string) (*domain.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()
	return s.eventRepo.GetByEventCode(ctx, eventCode)
}
