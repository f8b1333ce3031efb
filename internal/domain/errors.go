package domain

import "errors"

// Sentinel errors shared across services and repositories.
var (
	ErrNotFound           = errors.New("not found")
	ErrForbidden          = errors.New("forbidden")
	ErrDuplicateEmail     = errors.New("email already in use")
	ErrDuplicateEventCode = errors.New("event code already in use")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrEventEnded         = errors.New("event has ended")
	ErrQueueClosed        = errors.New("event is not accepting requests")
)
