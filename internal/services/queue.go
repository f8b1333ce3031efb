package services

import (
	"context"
	"errors"
	"fmt"

	"speakerqueue/internal/domain"
)

type queueService struct {
	eventRepo   domain.EventRepository
	requestRepo domain.RequestRepository
	changes     domain.ChangePublisher
}

// NewQueueService creates a QueueService with the given repositories and
// change publisher.
func NewQueueService(eventRepo domain.EventRepository, requestRepo domain.RequestRepository, changes domain.ChangePublisher) domain.QueueService {
	return &queueService{
		eventRepo:   eventRepo,
		requestRepo: requestRepo,
		changes:     changes,
	}
}

// checkOwnership verifies the moderator owns the event before any queue
// operation touches it.
func (s *queueService) checkOwnership(ctx context.Context, moderatorID, eventID string) error {
	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("get event: %w", err)
	}
	if event.ModeratorID != moderatorID {
		return domain.ErrForbidden
	}
	return nil
}

func (s *queueService) publishRequestUpdate(req *domain.SpeakingRequest) {
	s.changes.Publish(domain.ChangeEvent{
		Table:   domain.TableRequests,
		Type:    domain.ChangeUpdate,
		EventID: req.EventID,
		Payload: req,
	})
}

func (s *queueService) Load(ctx context.Context, moderatorID, eventID string) (*domain.Queue, error) {
	if err := s.checkOwnership(ctx, moderatorID, eventID); err != nil {
		return nil, err
	}

	requests, err := s.requestRepo.ListByEvent(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("list requests: %w", err)
	}

	queue := &domain.Queue{Pending: []*domain.SpeakingRequest{}}
	for _, req := range requests {
		switch req.Status {
		case domain.RequestPending:
			queue.Pending = append(queue.Pending, req)
		case domain.RequestApproved:
			queue.Speaking = req
		}
	}
	return queue, nil
}

func (s *queueService) Approve(ctx context.Context, moderatorID, eventID, requestID string) (*domain.SpeakingRequest, error) {
	if err := s.checkOwnership(ctx, moderatorID, eventID); err != nil {
		return nil, err
	}

	approved, completed, err := s.requestRepo.Approve(ctx, eventID, requestID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("approve request: %w", err)
	}
	if completed != nil {
		s.publishRequestUpdate(completed)
	}
	s.publishRequestUpdate(approved)
	return approved, nil
}

func (s *queueService) Dismiss(ctx context.Context, moderatorID, eventID, requestID string) error {
	if err := s.checkOwnership(ctx, moderatorID, eventID); err != nil {
		return err
	}

	dismissed, err := s.requestRepo.Dismiss(ctx, eventID, requestID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("dismiss request: %w", err)
	}
	s.publishRequestUpdate(dismissed)
	return nil
}

func (s *queueService) EndTurn(ctx context.Context, moderatorID, eventID string) (*domain.SpeakingRequest, error) {
	if err := s.checkOwnership(ctx, moderatorID, eventID); err != nil {
		return nil, err
	}

	completed, err := s.requestRepo.CompleteCurrent(ctx, eventID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("complete current speaker: %w", err)
	}
	s.publishRequestUpdate(completed)
	return completed, nil
}

func (s *queueService) Reorder(ctx context.Context, moderatorID, eventID string, sourceIndex, destIndex int) ([]*domain.SpeakingRequest, error) {
	if err := s.checkOwnership(ctx, moderatorID, eventID); err != nil {
		return nil, err
	}

	pending, err := s.requestRepo.ReorderPending(ctx, eventID, sourceIndex, destIndex)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("reorder pending: %w", err)
	}
	for _, req := range pending {
		s.publishRequestUpdate(req)
	}
	return pending, nil
}
