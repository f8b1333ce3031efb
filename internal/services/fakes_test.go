package services

import (
	"context"
	"fmt"
	"time"

	"speakerqueue/internal/domain"
)

type fakeEventRepo struct {
	events       map[string]*domain.Event
	eventsByCode map[string]*domain.Event
	current      *domain.Event
	createErr    error
	dupRemaining int // Create fails with ErrDuplicateEventCode this many times
	created      []*domain.Event
}

func (f *fakeEventRepo) Create(ctx context.Context, event *domain.Event) error {
	if f.dupRemaining > 0 {
		f.dupRemaining--
		return domain.ErrDuplicateEventCode
	}
	if f.createErr != nil {
		return f.createErr
	}
	event.ID = fmt.Sprintf("ev-%d", len(f.created)+1)
	f.created = append(f.created, event)
	return nil
}

func (f *fakeEventRepo) GetByID(ctx context.Context, id string) (*domain.Event, error) {
	ev, ok := f.events[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return ev, nil
}

func (f *fakeEventRepo) GetByEventCode(ctx context.Context, eventCode string) (*domain.Event, error) {
	ev, ok := f.eventsByCode[eventCode]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return ev, nil
}

func (f *fakeEventRepo) GetCurrentByModerator(ctx context.Context, moderatorID string) (*domain.Event, error) {
	if f.current == nil {
		return nil, domain.ErrNotFound
	}
	return f.current, nil
}

func (f *fakeEventRepo) SetAcceptingRequests(ctx context.Context, id string, accepting bool) (*domain.Event, error) {
	ev, ok := f.events[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	ev.AcceptingRequests = accepting
	return ev, nil
}

func (f *fakeEventRepo) EndSession(ctx context.Context, id string) (*domain.Event, error) {
	ev, ok := f.events[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	ev.IsActive = false
	return ev, nil
}

type fakeRequestRepo struct {
	byID        map[string]*domain.SpeakingRequest
	byEvent     map[string][]*domain.SpeakingRequest
	byCode      []*domain.SpeakingRequest
	total       int
	createErr   error
	approved    *domain.SpeakingRequest
	completed   *domain.SpeakingRequest
	approveErr  error
	completeErr error
	dismissErr  error
	reordered   []*domain.SpeakingRequest
	reorderErr  error
}

func (f *fakeRequestRepo) Create(ctx context.Context, r *domain.SpeakingRequest) error {
	if f.createErr != nil {
		return f.createErr
	}
	r.ID = fmt.Sprintf("req-%d", len(f.byEvent[r.EventID])+1)
	r.QueuePosition = len(f.byEvent[r.EventID]) + 1
	if f.byEvent == nil {
		f.byEvent = map[string][]*domain.SpeakingRequest{}
	}
	f.byEvent[r.EventID] = append(f.byEvent[r.EventID], r)
	return nil
}

func (f *fakeRequestRepo) GetByID(ctx context.Context, id string) (*domain.SpeakingRequest, error) {
	r, ok := f.byID[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return r, nil
}

func (f *fakeRequestRepo) ListByEvent(ctx context.Context, eventID string) ([]*domain.SpeakingRequest, error) {
	return f.byEvent[eventID], nil
}

func (f *fakeRequestRepo) ListByAttendeeCode(ctx context.Context, attendeeCode string, params domain.PaginationParams) ([]*domain.SpeakingRequest, int, error) {
	return f.byCode, f.total, nil
}

func (f *fakeRequestRepo) Dismiss(ctx context.Context, eventID, requestID string) (*domain.SpeakingRequest, error) {
	if f.dismissErr != nil {
		return nil, f.dismissErr
	}
	r, ok := f.byID[requestID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	r.Status = domain.RequestDismissed
	return r, nil
}

func (f *fakeRequestRepo) Approve(ctx context.Context, eventID, requestID string) (*domain.SpeakingRequest, *domain.SpeakingRequest, error) {
	if f.approveErr != nil {
		return nil, nil, f.approveErr
	}
	return f.approved, f.completed, nil
}

func (f *fakeRequestRepo) CompleteCurrent(ctx context.Context, eventID string) (*domain.SpeakingRequest, error) {
	if f.completeErr != nil {
		return nil, f.completeErr
	}
	return f.completed, nil
}

func (f *fakeRequestRepo) ReorderPending(ctx context.Context, eventID string, sourceIndex, destIndex int) ([]*domain.SpeakingRequest, error) {
	if f.reorderErr != nil {
		return nil, f.reorderErr
	}
	return f.reordered, nil
}

type fakeAttendeeRepo struct {
	byCode    map[string]*domain.Attendee
	createErr error
	verified  *domain.Attendee
	verifyErr error
	created   []*domain.Attendee
}

func (f *fakeAttendeeRepo) Create(ctx context.Context, a *domain.Attendee) error {
	if f.createErr != nil {
		return f.createErr
	}
	a.ID = fmt.Sprintf("att-%d", len(f.created)+1)
	f.created = append(f.created, a)
	return nil
}

func (f *fakeAttendeeRepo) VerifyEmail(ctx context.Context, token, attendeeCode string) (*domain.Attendee, error) {
	if f.verifyErr != nil {
		return nil, f.verifyErr
	}
	return f.verified, nil
}

func (f *fakeAttendeeRepo) GetVerifiedByCode(ctx context.Context, attendeeCode string) (*domain.Attendee, error) {
	a, ok := f.byCode[attendeeCode]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return a, nil
}

type fakePublisher struct {
	events []domain.ChangeEvent
}

func (f *fakePublisher) Publish(ev domain.ChangeEvent) {
	f.events = append(f.events, ev)
}

type fakeDispatcher struct {
	err  error
	sent []*domain.VerificationEmailData
}

func (f *fakeDispatcher) Dispatch(ctx context.Context, data *domain.VerificationEmailData) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, data)
	return nil
}

type fakeHasher struct {
	compareErr error
}

func (f *fakeHasher) GenerateSalt() (string, error) { return "salt", nil }

func (f *fakeHasher) Hash(salt, password string) (string, error) {
	return "hashed:" + salt + ":" + password, nil
}

func (f *fakeHasher) Compare(hash, salt, password string) error {
	return f.compareErr
}

type fakeTokenIssuer struct {
	err error
}

func (f *fakeTokenIssuer) Issue(moderatorID, email string, expiry time.Duration) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return "token-" + moderatorID, nil
}

type fakeModeratorRepo struct {
	byEmail   map[string]*domain.Moderator
	createErr error
	created   []*domain.Moderator
}

func (f *fakeModeratorRepo) Create(ctx context.Context, m *domain.Moderator) error {
	if f.createErr != nil {
		return f.createErr
	}
	m.ID = fmt.Sprintf("mod-%d", len(f.created)+1)
	f.created = append(f.created, m)
	return nil
}

func (f *fakeModeratorRepo) GetByEmail(ctx context.Context, email string) (*domain.Moderator, error) {
	m, ok := f.byEmail[email]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return m, nil
}

func (f *fakeModeratorRepo) GetByID(ctx context.Context, id string) (*domain.Moderator, error) {
	return nil, domain.ErrNotFound
}
