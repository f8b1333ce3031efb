package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/lib/pq"
	"speakerqueue/internal/domain"
)

// uniqueViolation is the Postgres error code for unique constraint violations.
const uniqueViolation = "23505"

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == uniqueViolation
}

type moderatorRepository struct {
	DB *sql.DB
}

func NewModeratorRepository(db *sql.DB) domain.ModeratorRepository {
	return &moderatorRepository{DB: db}
}

func (r *moderatorRepository) Create(ctx context.Context, m *domain.Moderator) error {
	query := `
		INSERT INTO moderators (name, email, password_hash, salt, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`
	err := r.DB.QueryRowContext(ctx, query, m.Name, m.Email, m.PasswordHash, m.Salt, m.CreatedAt, m.UpdatedAt).Scan(&m.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicateEmail
		}
		return err
	}
	return nil
}

func (r *moderatorRepository) GetByEmail(ctx context.Context, email string) (*domain.Moderator, error) {
	query := `
		SELECT id, name, email, password_hash, salt, created_at, updated_at
		FROM moderators
		WHERE email = $1
	`
	m := &domain.Moderator{}
	err := r.DB.QueryRowContext(ctx, query, email).Scan(
		&m.ID, &m.Name, &m.Email, &m.PasswordHash, &m.Salt, &m.CreatedAt, &m.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return m, nil
}

func (r *moderatorRepository) GetByID(ctx context.Context, id string) (*domain.Moderator, error) {
	query := `
		SELECT id, name, email, password_hash, salt, created_at, updated_at
		FROM moderators
		WHERE id = $1
	`
	m := &domain.Moderator{}
	err := r.DB.QueryRowContext(ctx, query, id).Scan(
		&m.ID, &m.Name, &m.Email, &m.PasswordHash, &m.Salt, &m.CreatedAt, &m.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return m, nil
}
