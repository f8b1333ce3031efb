package domain

import (
	"context"
	"time"
)

// Moderator represents a registered event moderator.
// swagger:model Moderator
type Moderator struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Salt         string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// NewModerator returns a new Moderator. ID is set by the repository on create.
func NewModerator(name, email, passwordHash, salt string, createdAt, updatedAt time.Time) *Moderator {
	return &Moderator{
		Name:         name,
		Email:        email,
		PasswordHash: passwordHash,
		Salt:         salt,
		CreatedAt:    createdAt,
		UpdatedAt:    updatedAt,
	}
}

// PasswordHasher handles salt generation, hashing, and verification.
// Implementations may use bcrypt, argon2, etc.
type PasswordHasher interface {
	GenerateSalt() (string, error)
	Hash(salt, password string) (hash string, err error)
	Compare(hash, salt, password string) error
}

// TokenIssuer issues tokens (e.g. JWT) for an authenticated moderator.
type TokenIssuer interface {
	Issue(moderatorID, email string, expiry time.Duration) (string, error)
}

// TokenVerifier verifies a token and returns the authenticated moderator ID.
type TokenVerifier interface {
	Verify(token string) (moderatorID string, err error)
}

// ModeratorRepository defines the interface for moderator storage.
type ModeratorRepository interface {
	Create(ctx context.Context, m *Moderator) error
	GetByEmail(ctx context.Context, email string) (*Moderator, error)
	GetByID(ctx context.Context, id string) (*Moderator, error)
}

// AuthService defines moderator signup and login.
type AuthService interface {
	SignUp(ctx context.Context, name, email, password string) (*Moderator, error)
	Login(ctx context.Context, email, password string) (token string, moderator *Moderator, err error)
}
