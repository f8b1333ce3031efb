package postgres

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"speakerqueue/internal/domain"
)

const eventColumns = `id, title, event_code, event_date, accepting_requests, is_active, moderator_id, created_at, updated_at`

type eventRepository struct {
	DB *sql.DB
}

func NewEventRepository(db *sql.DB) domain.EventRepository {
	return &eventRepository{DB: db}
}

func scanEvent(row interface {
	Scan(dest ...any) error
}) (*domain.Event, error) {
	e := &domain.Event{}
	var dateNull sql.NullTime
	err := row.Scan(
		&e.ID, &e.Title, &e.EventCode, &dateNull, &e.AcceptingRequests, &e.IsActive,
		&e.ModeratorID, &e.CreatedAt, &e.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if dateNull.Valid {
		e.EventDate = &dateNull.Time
	}
	return e, nil
}

func (r *eventRepository) Create(ctx context.Context, e *domain.Event) error {
	query := `
		INSERT INTO events (title, event_code, event_date, accepting_requests, is_active, moderator_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id
	`
	var date any
	if e.EventDate != nil {
		date = *e.EventDate
	}
	err := r.DB.QueryRowContext(ctx, query,
		e.Title, e.EventCode, date, e.AcceptingRequests, e.IsActive, e.ModeratorID, e.CreatedAt, e.UpdatedAt,
	).Scan(&e.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicateEventCode
		}
		return err
	}
	return nil
}

func (r *eventRepository) GetByID(ctx context.Context, id string) (*domain.Event, error) {
	query := `SELECT ` + eventColumns + ` FROM events WHERE id = $1`
	e, err := scanEvent(r.DB.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return e, nil
}

func (r *eventRepository) GetByEventCode(ctx context.Context, eventCode string) (*domain.Event, error) {
	code := strings.ToUpper(strings.TrimSpace(eventCode))
	query := `SELECT ` + eventColumns + ` FROM events WHERE event_code = $1`
	e, err := scanEvent(r.DB.QueryRowContext(ctx, query, code))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return e, nil
}

func (r *eventRepository) GetCurrentByModerator(ctx context.Context, moderatorID string) (*domain.Event, error) {
	query := `
		SELECT ` + eventColumns + `
		FROM events
		WHERE moderator_id = $1 AND is_active = true
		ORDER BY created_at DESC
		LIMIT 1
	`
	e, err := scanEvent(r.DB.QueryRowContext(ctx, query, moderatorID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return e, nil
}

func (r *eventRepository) SetAcceptingRequests(ctx context.Context, id string, accepting bool) (*domain.Event, error) {
	query := `
		UPDATE events SET accepting_requests = $1, updated_at = NOW()
		WHERE id = $2
		RETURNING ` + eventColumns
	e, err := scanEvent(r.DB.QueryRowContext(ctx, query, accepting, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return e, nil
}

func (r *eventRepository) EndSession(ctx context.Context, id string) (*domain.Event, error) {
	// Idempotent: ending an already inactive event returns the row unchanged,
	// including its updated_at.
	query := `
		UPDATE events
		SET updated_at = CASE WHEN is_active THEN NOW() ELSE updated_at END,
		    is_active = false
		WHERE id = $1
		RETURNING ` + eventColumns
	e, err := scanEvent(r.DB.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return e, nil
}
