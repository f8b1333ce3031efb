package domain

import (
	"context"
	"time"
)

// Event represents one moderated Q&A session instance, identified by a short
// join code that attendees enter or scan.
// swagger:model Event
type Event struct {
	ID                string     `json:"id"`
	Title             string     `json:"title"`
	EventCode         string     `json:"event_code"`
	EventDate         *time.Time `json:"event_date,omitempty"`
	AcceptingRequests bool       `json:"accepting_requests"`
	IsActive          bool       `json:"is_active"`
	ModeratorID       string     `json:"moderator_id"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"`
}

// NewEvent returns a new Event. ID and EventCode are set server-side; a fresh
// event is active and accepting requests.
func NewEvent(title string, eventDate *time.Time, moderatorID string, createdAt, updatedAt time.Time) *Event {
	return &Event{
		Title:             title,
		EventDate:         eventDate,
		AcceptingRequests: true,
		IsActive:          true,
		ModeratorID:       moderatorID,
		CreatedAt:         createdAt,
		UpdatedAt:         updatedAt,
	}
}

// EventRepository defines the interface for event storage.
type EventRepository interface {
	Create(ctx context.Context, event *Event) error
	GetByID(ctx context.Context, id string) (*Event, error)
	GetByEventCode(ctx context.Context, eventCode string) (*Event, error)
	// GetCurrentByModerator returns the most recently created active event
	// owned by the moderator, or ErrNotFound.
	GetCurrentByModerator(ctx context.Context, moderatorID string) (*Event, error)
	SetAcceptingRequests(ctx context.Context, id string, accepting bool) (*Event, error)
	// EndSession sets is_active to false. The transition is terminal and the
	// update is idempotent: ending an already-ended event returns the row
	// unchanged with no error.
	EndSession(ctx context.Context, id string) (*Event, error)
}

// EventService defines moderator-facing event lifecycle operations.
type EventService interface {
	Create(ctx context.Context, moderatorID, title string, eventDate *time.Time) (*Event, error)
	GetByID(ctx context.Context, moderatorID, eventID string) (*Event, error)
	// GetCurrent resolves the moderator's current event the way the dashboard
	// does: the most recent active event they own.
	GetCurrent(ctx context.Context, moderatorID string) (*Event, error)
	SetAccepting(ctx context.Context, moderatorID, eventID string, accepting bool) (*Event, error)
	End(ctx context.Context, moderatorID, eventID string) (*Event, error)
	// GetByCode is the public join-code lookup used by attendees.
	GetByCode(ctx context.Context, eventCode string) (*Event, error)
}
