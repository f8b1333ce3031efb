package domain

import (
	"context"
	"time"
)

// Attendee represents a registered attendee in the email-verification flow.
// swagger:model Attendee
type Attendee struct {
	ID                string    `json:"id"`
	Name              string    `json:"name"`
	Email             string    `json:"email"`
	AttendeeCode      string    `json:"attendee_code"`
	VerificationToken string    `json:"-"`
	IsVerified        bool      `json:"is_verified"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// NewAttendee returns an unverified Attendee. ID is set by the repository on create.
func NewAttendee(name, email, attendeeCode, verificationToken string, createdAt, updatedAt time.Time) *Attendee {
	return &Attendee{
		Name:              name,
		Email:             email,
		AttendeeCode:      attendeeCode,
		VerificationToken: verificationToken,
		CreatedAt:         createdAt,
		UpdatedAt:         updatedAt,
	}
}

// AttendeeRepository defines the interface for attendee storage.
type AttendeeRepository interface {
	Create(ctx context.Context, a *Attendee) error
	// VerifyEmail marks the unverified row matching both token and attendee
	// code as verified, in one conditional update. ErrNotFound when no row
	// matches.
	VerifyEmail(ctx context.Context, token, attendeeCode string) (*Attendee, error)
	GetVerifiedByCode(ctx context.Context, attendeeCode string) (*Attendee, error)
}

// AttendeeService defines the registration and verification flow plus the
// attendee dashboard operations.
type AttendeeService interface {
	// Register creates an unverified attendee and dispatches a verification
	// email. Email dispatch failures are logged, not returned: registration
	// already succeeded.
	Register(ctx context.Context, name, email string) (*Attendee, error)
	VerifyEmail(ctx context.Context, token, attendeeCode string) (*Attendee, error)
	VerifyID(ctx context.Context, attendeeCode string) (*Attendee, error)
	ListRequests(ctx context.Context, attendeeCode string, params PaginationParams) ([]*SpeakingRequest, int, error)
	// SubmitRequest creates a pending request on behalf of a verified
	// attendee for the event identified by code.
	SubmitRequest(ctx context.Context, attendeeCode, eventCode, question string) (*SubmissionResult, error)
}
