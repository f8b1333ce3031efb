package domain

import (
	"context"
	"time"
)

// Speaking request statuses. A request is created pending; moderators move it
// to approved, dismissed, or completed. Rejected exists in stored data from an
// earlier flow and is recognized but never written by any current path.
const (
	RequestPending   = "pending"
	RequestApproved  = "approved"
	RequestDismissed = "dismissed"
	RequestCompleted = "completed"
	RequestRejected  = "rejected"
)

// SpeakingRequest is one attendee's ask-to-speak submission.
// swagger:model SpeakingRequest
type SpeakingRequest struct {
	ID            string    `json:"id"`
	EventID       string    `json:"event_id"`
	AttendeeName  string    `json:"attendee_name"`
	AttendeeCode  string    `json:"attendee_code,omitempty"`
	Question      string    `json:"question"`
	Status        string    `json:"status"`
	QueuePosition int       `json:"queue_position"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// NewSpeakingRequest returns a pending request. ID and QueuePosition are set
// by the repository on create.
func NewSpeakingRequest(eventID, attendeeName, question string, createdAt, updatedAt time.Time) *SpeakingRequest {
	return &SpeakingRequest{
		EventID:      eventID,
		AttendeeName: attendeeName,
		Question:     question,
		Status:       RequestPending,
		CreatedAt:    createdAt,
		UpdatedAt:    updatedAt,
	}
}

// Queue is the moderator's partitioned view of an event's requests: the
// ordered pending list plus the single approved row, if any.
type Queue struct {
	Pending  []*SpeakingRequest `json:"pending"`
	Speaking *SpeakingRequest   `json:"speaking"`
}

// RequestRepository defines storage operations for speaking requests.
type RequestRepository interface {
	// Create inserts a pending request and assigns it the next queue position
	// for its event.
	Create(ctx context.Context, r *SpeakingRequest) error
	GetByID(ctx context.Context, id string) (*SpeakingRequest, error)
	// ListByEvent returns all requests for the event ordered by queue
	// position ascending, then creation time ascending.
	ListByEvent(ctx context.Context, eventID string) ([]*SpeakingRequest, error)
	ListByAttendeeCode(ctx context.Context, attendeeCode string, params PaginationParams) ([]*SpeakingRequest, int, error)
	// Dismiss marks a pending request dismissed; ErrNotFound if the request
	// is missing or no longer pending.
	Dismiss(ctx context.Context, eventID, requestID string) (*SpeakingRequest, error)
	// Approve runs the complete-then-approve sequence in one transaction:
	// the event's currently approved row (if any) becomes completed, then the
	// target pending row becomes approved. Returns the approved request and
	// the completed one (nil when nobody was speaking).
	Approve(ctx context.Context, eventID, requestID string) (approved, completed *SpeakingRequest, err error)
	// CompleteCurrent marks the event's approved row completed; ErrNotFound
	// when nobody is speaking.
	CompleteCurrent(ctx context.Context, eventID string) (*SpeakingRequest, error)
	// ReorderPending moves the pending request at sourceIndex to destIndex
	// and rewrites queue positions for the whole pending set in one
	// transaction. Returns the new pending order.
	ReorderPending(ctx context.Context, eventID string, sourceIndex, destIndex int) ([]*SpeakingRequest, error)
}

// QueueService defines the moderator's queue operations.
type QueueService interface {
	Load(ctx context.Context, moderatorID, eventID string) (*Queue, error)
	Approve(ctx context.Context, moderatorID, eventID, requestID string) (*SpeakingRequest, error)
	Dismiss(ctx context.Context, moderatorID, eventID, requestID string) error
	EndTurn(ctx context.Context, moderatorID, eventID string) (*SpeakingRequest, error)
	Reorder(ctx context.Context, moderatorID, eventID string, sourceIndex, destIndex int) ([]*SpeakingRequest, error)
}
