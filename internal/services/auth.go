package services

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"speakerqueue/internal/domain"
)

const minPasswordLen = 8

var emailRegexp = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

type authService struct {
	moderatorRepo domain.ModeratorRepository
	hasher        domain.PasswordHasher
	tokens        domain.TokenIssuer
	tokenExpiry   time.Duration
}

// NewAuthService creates an AuthService with the given repository, hasher, and token issuer.
func NewAuthService(moderatorRepo domain.ModeratorRepository, hasher domain.PasswordHasher, tokens domain.TokenIssuer, tokenExpiry time.Duration) domain.AuthService {
	return &authService{
		moderatorRepo: moderatorRepo,
		hasher:        hasher,
		tokens:        tokens,
		tokenExpiry:   tokenExpiry,
	}
}

func (s *authService) SignUp(ctx context.Context, name, email, password string) (*domain.Moderator, error) {
	name = strings.TrimSpace(name)
	email = strings.TrimSpace(strings.ToLower(email))
	if name == "" {
		return nil, fmt.Errorf("name is required")
	}
	if !emailRegexp.MatchString(email) {
		return nil, fmt.Errorf("invalid email format")
	}
	if len(password) < minPasswordLen {
		return nil, fmt.Errorf("password must be at least %d characters", minPasswordLen)
	}

	salt, err := s.hasher.GenerateSalt()
	if err != nil {
		return nil, fmt.Errorf("generate salt: %w", err)
	}
	hash, err := s.hasher.Hash(salt, password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	now := time.Now()
	moderator := domain.NewModerator(name, email, hash, salt, now, now)
	if err := s.moderatorRepo.Create(ctx, moderator); err != nil {
		if errors.Is(err, domain.ErrDuplicateEmail) {
			return nil, domain.ErrDuplicateEmail
		}
		return nil, fmt.Errorf("create moderator: %w", err)
	}
	return moderator, nil
}

func (s *authService) Login(ctx context.Context, email, password string) (string, *domain.Moderator, error) {
	// Any failure collapses to ErrInvalidCredentials so a caller cannot
	// distinguish an unknown email from a wrong password.
	moderator, err := s.moderatorRepo.GetByEmail(ctx, strings.TrimSpace(strings.ToLower(email)))
	if err != nil {
		return "", nil, domain.ErrInvalidCredentials
	}
	if err := s.hasher.Compare(moderator.PasswordHash, moderator.Salt, password); err != nil {
		return "", nil, domain.ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(moderator.ID, moderator.Email, s.tokenExpiry)
	if err != nil {
		return "", nil, fmt.Errorf("issue token: %w", err)
	}
	return token, moderator, nil
}
