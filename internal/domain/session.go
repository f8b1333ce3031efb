package domain

import "context"

// SessionState is an attendee's position in the session flow.
type SessionState string

const (
	// StateDefault: no active request.
	StateDefault SessionState = "default"
	// StateSubmitting: composing a request. Purely a client-side state; the
	// server never derives it but recognizes it on the wire.
	StateSubmitting SessionState = "submitting"
	// StateQueued: request submitted and pending.
	StateQueued SessionState = "queued"
	// StateSpeaking: request approved.
	StateSpeaking SessionState = "speaking"
	// StateEnded: event deactivated. Terminal; no transition leaves it.
	StateEnded SessionState = "ended"
)

// ResolveSessionState derives an attendee's session state from the event
// flags and their own request row. An inactive event is ended regardless of
// any prior state.
func ResolveSessionState(event *Event, request *SpeakingRequest) SessionState {
	if event == nil || !event.IsActive {
		return StateEnded
	}
	if request == nil {
		return StateDefault
	}
	switch request.Status {
	case RequestPending:
		return StateQueued
	case RequestApproved:
		return StateSpeaking
	default:
		// dismissed, completed, rejected: back to no active request
		return StateDefault
	}
}

// SessionView is what an attendee sees for their session: the event, their
// request (if any), and the derived state.
type SessionView struct {
	Event   *Event           `json:"event"`
	Request *SpeakingRequest `json:"request,omitempty"`
	State   SessionState     `json:"state"`
}

// SubmissionResult is the response to a successful speaking request: the new
// row plus its advisory queue position, computed once at submission time and
// never recomputed afterwards.
type SubmissionResult struct {
	Request       *SpeakingRequest `json:"request"`
	QueuePosition int              `json:"queue_position"`
}

// SessionService defines the attendee-facing session operations.
type SessionService interface {
	GetEvent(ctx context.Context, eventCode string) (*Event, error)
	// SubmitRequest creates a pending request for the event. It fails with
	// ErrEventEnded when the event is inactive and ErrQueueClosed when the
	// event is not accepting requests.
	SubmitRequest(ctx context.Context, eventCode, attendeeName, question string) (*SubmissionResult, error)
	GetState(ctx context.Context, eventCode, requestID string) (*SessionView, error)
}
