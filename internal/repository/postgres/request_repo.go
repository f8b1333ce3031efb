package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"speakerqueue/internal/domain"
)

const requestColumns = `id, event_id, attendee_name, attendee_code, question, status, queue_position, created_at, updated_at`

type requestRepository struct {
	DB *sql.DB
}

func NewRequestRepository(db *sql.DB) domain.RequestRepository {
	return &requestRepository{DB: db}
}

func scanRequest(row interface {
	Scan(dest ...any) error
}) (*domain.SpeakingRequest, error) {
	r := &domain.SpeakingRequest{}
	err := row.Scan(
		&r.ID, &r.EventID, &r.AttendeeName, &r.AttendeeCode, &r.Question,
		&r.Status, &r.QueuePosition, &r.CreatedAt, &r.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return r, nil
}

func (r *requestRepository) Create(ctx context.Context, req *domain.SpeakingRequest) error {
	// New requests take the next queue position after the current pending
	// tail, so a persisted reorder stays in effect as submissions arrive.
	query := `
		INSERT INTO speaking_requests (event_id, attendee_name, attendee_code, question, status, queue_position, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5,
			(SELECT COALESCE(MAX(queue_position), 0) + 1 FROM speaking_requests WHERE event_id = $1 AND status = 'pending'),
			$6, $7)
		RETURNING id, queue_position
	`
	return r.DB.QueryRowContext(ctx, query,
		req.EventID, req.AttendeeName, req.AttendeeCode, req.Question, req.Status, req.CreatedAt, req.UpdatedAt,
	).Scan(&req.ID, &req.QueuePosition)
}

func (r *requestRepository) GetByID(ctx context.Context, id string) (*domain.SpeakingRequest, error) {
	query := `SELECT ` + requestColumns + ` FROM speaking_requests WHERE id = $1`
	req, err := scanRequest(r.DB.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return req, nil
}

func (r *requestRepository) ListByEvent(ctx context.Context, eventID string) ([]*domain.SpeakingRequest, error) {
	query := `
		SELECT ` + requestColumns + `
		FROM speaking_requests
		WHERE event_id = $1
		ORDER BY queue_position ASC, created_at ASC
	`
	rows, err := r.DB.QueryContext(ctx, query, eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	requests := make([]*domain.SpeakingRequest, 0)
	for rows.Next() {
		req, err := scanRequest(rows)
		if err != nil {
			return nil, err
		}
		requests = append(requests, req)
	}
	return requests, rows.Err()
}

func (r *requestRepository) ListByAttendeeCode(ctx context.Context, attendeeCode string, params domain.PaginationParams) ([]*domain.SpeakingRequest, int, error) {
	var total int
	countQuery := `SELECT COUNT(*) FROM speaking_requests WHERE attendee_code = $1`
	if err := r.DB.QueryRowContext(ctx, countQuery, attendeeCode).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `
		SELECT ` + requestColumns + `
		FROM speaking_requests
		WHERE attendee_code = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`
	rows, err := r.DB.QueryContext(ctx, query, attendeeCode, params.PageSize, params.Offset())
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	requests := make([]*domain.SpeakingRequest, 0)
	for rows.Next() {
		req, err := scanRequest(rows)
		if err != nil {
			return nil, 0, err
		}
		requests = append(requests, req)
	}
	return requests, total, rows.Err()
}

func (r *requestRepository) Dismiss(ctx context.Context, eventID, requestID string) (*domain.SpeakingRequest, error) {
	query := `
		UPDATE speaking_requests SET status = 'dismissed', updated_at = NOW()
		WHERE id = $1 AND event_id = $2 AND status = 'pending'
		RETURNING ` + requestColumns
	req, err := scanRequest(r.DB.QueryRowContext(ctx, query, requestID, eventID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return req, nil
}

// Approve completes the event's current speaker (if any) and approves the
// target pending request in one transaction, closing the race window a
// two-call sequence would leave: the event can never commit with two approved
// rows, or with the old speaker completed but the new one not approved.
func (r *requestRepository) Approve(ctx context.Context, eventID, requestID string) (*domain.SpeakingRequest, *domain.SpeakingRequest, error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return nil, nil, err
	}
	defer tx.Rollback()

	var completed *domain.SpeakingRequest
	completeQuery := `
		UPDATE speaking_requests SET status = 'completed', updated_at = NOW()
		WHERE event_id = $1 AND status = 'approved'
		RETURNING ` + requestColumns
	completed, err = scanRequest(tx.QueryRowContext(ctx, completeQuery, eventID))
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			return nil, nil, err
		}
		completed = nil // nobody was speaking
	}

	approveQuery := `
		UPDATE speaking_requests SET status = 'approved', updated_at = NOW()
		WHERE id = $1 AND event_id = $2 AND status = 'pending'
		RETURNING ` + requestColumns
	approved, err := scanRequest(tx.QueryRowContext(ctx, approveQuery, requestID, eventID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil, domain.ErrNotFound
		}
		return nil, nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, nil, err
	}
	return approved, completed, nil
}

func (r *requestRepository) CompleteCurrent(ctx context.Context, eventID string) (*domain.SpeakingRequest, error) {
	query := `
		UPDATE speaking_requests SET status = 'completed', updated_at = NOW()
		WHERE event_id = $1 AND status = 'approved'
		RETURNING ` + requestColumns
	req, err := scanRequest(r.DB.QueryRowContext(ctx, query, eventID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return req, nil
}

func (r *requestRepository) ReorderPending(ctx context.Context, eventID string, sourceIndex, destIndex int) ([]*domain.SpeakingRequest, error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	listQuery := `
		SELECT ` + requestColumns + `
		FROM speaking_requests
		WHERE event_id = $1 AND status = 'pending'
		ORDER BY queue_position ASC, created_at ASC
		FOR UPDATE
	`
	rows, err := tx.QueryContext(ctx, listQuery, eventID)
	if err != nil {
		return nil, err
	}
	pending := make([]*domain.SpeakingRequest, 0)
	for rows.Next() {
		req, err := scanRequest(rows)
		if err != nil {
			rows.Close()
			return nil, err
		}
		pending = append(pending, req)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, err
	}
	rows.Close()

	if sourceIndex < 0 || sourceIndex >= len(pending) || destIndex < 0 || destIndex >= len(pending) {
		return nil, fmt.Errorf("reorder index out of range: %w", domain.ErrNotFound)
	}

	moved := pending[sourceIndex]
	pending = append(pending[:sourceIndex], pending[sourceIndex+1:]...)
	pending = append(pending[:destIndex], append([]*domain.SpeakingRequest{moved}, pending[destIndex:]...)...)

	updateQuery := `UPDATE speaking_requests SET queue_position = $1, updated_at = NOW() WHERE id = $2`
	for i, req := range pending {
		if _, err := tx.ExecContext(ctx, updateQuery, i+1, req.ID); err != nil {
			return nil, err
		}
		req.QueuePosition = i + 1
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return pending, nil
}
