package postgres

import (
	"context"
	"database/sql"
	"errors"

	"speakerqueue/internal/domain"
)

const attendeeColumns = `id, name, email, attendee_code, verification_token, is_verified, created_at, updated_at`

type attendeeRepository struct {
	DB *sql.DB
}

func NewAttendeeRepository(db *sql.DB) domain.AttendeeRepository {
	return &attendeeRepository{DB: db}
}

func scanAttendee(row interface {
	Scan(dest ...any) error
}) (*domain.Attendee, error) {
	a := &domain.Attendee{}
	err := row.Scan(
		&a.ID, &a.Name, &a.Email, &a.AttendeeCode, &a.VerificationToken,
		&a.IsVerified, &a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return a, nil
}

func (r *attendeeRepository) Create(ctx context.Context, a *domain.Attendee) error {
	query := `
		INSERT INTO attendees (name, email, attendee_code, verification_token, is_verified, created_at, updated_at)
		VALUES ($1, $2, $3, $4, false, $5, $6)
		RETURNING id
	`
	err := r.DB.QueryRowContext(ctx, query,
		a.Name, a.Email, a.AttendeeCode, a.VerificationToken, a.CreatedAt, a.UpdatedAt,
	).Scan(&a.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicateEmail
		}
		return err
	}
	return nil
}

func (r *attendeeRepository) VerifyEmail(ctx context.Context, token, attendeeCode string) (*domain.Attendee, error) {
	// One conditional update: both the token and the code must match the same
	// unverified row.
	query := `
		UPDATE attendees SET is_verified = true, updated_at = NOW()
		WHERE verification_token = $1 AND attendee_code = $2 AND is_verified = false
		RETURNING ` + attendeeColumns
	a, err := scanAttendee(r.DB.QueryRowContext(ctx, query, token, attendeeCode))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return a, nil
}

func (r *attendeeRepository) GetVerifiedByCode(ctx context.Context, attendeeCode string) (*domain.Attendee, error) {
	query := `SELECT ` + attendeeColumns + ` FROM attendees WHERE attendee_code = $1 AND is_verified = true`
	a, err := scanAttendee(r.DB.QueryRowContext(ctx, query, attendeeCode))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return a, nil
}
