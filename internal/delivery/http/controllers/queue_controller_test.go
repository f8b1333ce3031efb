package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"speakerqueue/internal/delivery/http/helpers"
	"speakerqueue/internal/delivery/http/middleware"
	"speakerqueue/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeQueueService implements domain.QueueService for handler tests.
type fakeQueueService struct {
	loadErr       error
	loadResult    *domain.Queue
	approveErr    error
	approveResult *domain.SpeakingRequest
	dismissErr    error
	endTurnErr    error
	endTurnResult *domain.SpeakingRequest
	reorderErr    error
	reorderResult []*domain.SpeakingRequest

	lastModeratorID string
	lastEventID     string
	lastRequestID   string
	lastSource      int
	lastDest        int
}

func (f *fakeQueueService) Load(ctx context.Context, moderatorID, eventID string) (*domain.Queue, error) {
	f.lastModeratorID = moderatorID
	f.lastEventID = eventID
	if f.loadErr != nil {
		return nil, f.loadErr
	}
	if f.loadResult != nil {
		return f.loadResult, nil
	}
	return &domain.Queue{Pending: []*domain.SpeakingRequest{}}, nil
}

func (f *fakeQueueService) Approve(ctx context.Context, moderatorID, eventID, requestID string) (*domain.SpeakingRequest, error) {
	f.lastModeratorID = moderatorID
	f.lastEventID = eventID
	f.lastRequestID = requestID
	if f.approveErr != nil {
		return nil, f.approveErr
	}
	return f.approveResult, nil
}

func (f *fakeQueueService) Dismiss(ctx context.Context, moderatorID, eventID, requestID string) error {
	f.lastModeratorID = moderatorID
	f.lastEventID = eventID
	f.lastRequestID = requestID
	return f.dismissErr
}

func (f *fakeQueueService) EndTurn(ctx context.Context, moderatorID, eventID string) (*domain.SpeakingRequest, error) {
	f.lastModeratorID = moderatorID
	f.lastEventID = eventID
	if f.endTurnErr != nil {
		return nil, f.endTurnErr
	}
	return f.endTurnResult, nil
}

func (f *fakeQueueService) Reorder(ctx context.Context, moderatorID, eventID string, sourceIndex, destIndex int) ([]*domain.SpeakingRequest, error) {
	f.lastModeratorID = moderatorID
	f.lastEventID = eventID
	f.lastSource = sourceIndex
	f.lastDest = destIndex
	if f.reorderErr != nil {
		return nil, f.reorderErr
	}
	return f.reorderResult, nil
}

func TestQueueController_LoadQueue(t *testing.T) {
	tests := []struct {
		name           string
		eventID        string
		noModerator    bool
		fakeErr        error
		fakeResult     *domain.Queue
		wantStatus     int
		wantBodySubstr string
		checkQueue     func(t *testing.T, q domain.Queue)
	}{
		{
			name:    "success with speaker",
			eventID: "ev-1",
			fakeResult: &domain.Queue{
				Pending: []*domain.SpeakingRequest{
					{ID: "req-2", Status: domain.RequestPending, QueuePosition: 1},
					{ID: "req-3", Status: domain.RequestPending, QueuePosition: 2},
				},
				Speaking: &domain.SpeakingRequest{ID: "req-1", Status: domain.RequestApproved},
			},
			wantStatus: http.StatusOK,
			checkQueue: func(t *testing.T, q domain.Queue) {
				require.Len(t, q.Pending, 2)
				assert.Equal(t, "req-2", q.Pending[0].ID)
				require.NotNil(t, q.Speaking)
				assert.Equal(t, "req-1", q.Speaking.ID)
			},
		},
		{
			name:       "success empty",
			eventID:    "ev-1",
			wantStatus: http.StatusOK,
			checkQueue: func(t *testing.T, q domain.Queue) {
				assert.Len(t, q.Pending, 0)
				assert.Nil(t, q.Speaking)
			},
		},
		{
			name:           "missing eventID",
			eventID:        "",
			wantStatus:     http.StatusBadRequest,
			wantBodySubstr: "missing eventID",
		},
		{
			name:           "no moderator in context",
			eventID:        "ev-1",
			noModerator:    true,
			wantStatus:     http.StatusUnauthorized,
			wantBodySubstr: "unauthorized",
		},
		{
			name:           "forbidden",
			eventID:        "ev-1",
			fakeErr:        domain.ErrForbidden,
			wantStatus:     http.StatusForbidden,
			wantBodySubstr: "forbidden",
		},
		{
			name:           "event not found",
			eventID:        "ev-missing",
			fakeErr:        domain.ErrNotFound,
			wantStatus:     http.StatusNotFound,
			wantBodySubstr: "event not found",
		},
		{
			name:           "service error",
			eventID:        "ev-1",
			fakeErr:        errors.New("db error"),
			wantStatus:     http.StatusInternalServerError,
			wantBodySubstr: "db error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := &fakeQueueService{loadErr: tt.fakeErr, loadResult: tt.fakeResult}
			ctrl := NewQueueController(testLogger, fake)
			req := httptest.NewRequest(http.MethodGet, "http://test/events/"+tt.eventID+"/queue", nil)
			if tt.eventID != "" {
				req.SetPathValue("eventID", tt.eventID)
			}
			if !tt.noModerator {
				req = req.WithContext(middleware.SetModeratorID(req.Context(), "mod-123"))
			}
			rr := httptest.NewRecorder()
			ctrl.LoadQueue(rr, req)

			require.Equal(t, tt.wantStatus, rr.Code, "status code")
			var envelope helpers.APIResponse
			require.NoError(t, json.NewDecoder(rr.Body).Decode(&envelope))
			if tt.wantStatus == http.StatusOK && tt.checkQueue != nil {
				require.Nil(t, envelope.Error)
				dataBytes, err := json.Marshal(envelope.Data)
				require.NoError(t, err)
				var q domain.Queue
				require.NoError(t, json.Unmarshal(dataBytes, &q))
				tt.checkQueue(t, q)
				assert.Equal(t, "mod-123", fake.lastModeratorID)
				assert.Equal(t, tt.eventID, fake.lastEventID)
			}
			if tt.wantBodySubstr != "" && envelope.Error != nil {
				assert.Contains(t, envelope.Error.Message, tt.wantBodySubstr)
			}
		})
	}
}

func TestQueueController_ApproveRequest(t *testing.T) {
	tests := []struct {
		name           string
		eventID        string
		requestID      string
		fakeErr        error
		fakeResult     *domain.SpeakingRequest
		wantStatus     int
		wantBodySubstr string
	}{
		{
			name:       "success",
			eventID:    "ev-1",
			requestID:  "req-1",
			fakeResult: &domain.SpeakingRequest{ID: "req-1", Status: domain.RequestApproved},
			wantStatus: http.StatusOK,
		},
		{
			name:           "missing requestID",
			eventID:        "ev-1",
			requestID:      "",
			wantStatus:     http.StatusBadRequest,
			wantBodySubstr: "missing eventID or requestID",
		},
		{
			name:           "not pending anymore",
			eventID:        "ev-1",
			requestID:      "req-gone",
			fakeErr:        domain.ErrNotFound,
			wantStatus:     http.StatusNotFound,
			wantBodySubstr: "request not found or no longer pending",
		},
		{
			name:           "forbidden",
			eventID:        "ev-1",
			requestID:      "req-1",
			fakeErr:        domain.ErrForbidden,
			wantStatus:     http.StatusForbidden,
			wantBodySubstr: "forbidden",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := &fakeQueueService{approveErr: tt.fakeErr, approveResult: tt.fakeResult}
			ctrl := NewQueueController(testLogger, fake)
			req := httptest.NewRequest(http.MethodPost, "http://test/events/"+tt.eventID+"/queue/"+tt.requestID+"/approve", nil)
			if tt.eventID != "" {
				req.SetPathValue("eventID", tt.eventID)
			}
			if tt.requestID != "" {
				req.SetPathValue("requestID", tt.requestID)
			}
			req = req.WithContext(middleware.SetModeratorID(req.Context(), "mod-123"))
			rr := httptest.NewRecorder()
			ctrl.ApproveRequest(rr, req)

			require.Equal(t, tt.wantStatus, rr.Code, "status code")
			var envelope helpers.APIResponse
			require.NoError(t, json.NewDecoder(rr.Body).Decode(&envelope))
			if tt.wantStatus == http.StatusOK {
				require.Nil(t, envelope.Error)
				dataBytes, err := json.Marshal(envelope.Data)
				require.NoError(t, err)
				var approved domain.SpeakingRequest
				require.NoError(t, json.Unmarshal(dataBytes, &approved))
				assert.Equal(t, domain.RequestApproved, approved.Status)
				assert.Equal(t, "req-1", fake.lastRequestID)
			} else if tt.wantBodySubstr != "" {
				require.NotNil(t, envelope.Error)
				assert.Contains(t, envelope.Error.Message, tt.wantBodySubstr)
			}
		})
	}
}

func TestQueueController_DismissRequest(t *testing.T) {
	tests := []struct {
		name           string
		fakeErr        error
		wantStatus     int
		wantBodySubstr string
	}{
		{name: "success", wantStatus: http.StatusOK},
		{name: "not found", fakeErr: domain.ErrNotFound, wantStatus: http.StatusNotFound, wantBodySubstr: "request not found or no longer pending"},
		{name: "forbidden", fakeErr: domain.ErrForbidden, wantStatus: http.StatusForbidden, wantBodySubstr: "forbidden"},
		{name: "service error", fakeErr: errors.New("db error"), wantStatus: http.StatusInternalServerError, wantBodySubstr: "db error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := &fakeQueueService{dismissErr: tt.fakeErr}
			ctrl := NewQueueController(testLogger, fake)
			req := httptest.NewRequest(http.MethodPost, "http://test/events/ev-1/queue/req-1/dismiss", nil)
			req.SetPathValue("eventID", "ev-1")
			req.SetPathValue("requestID", "req-1")
			req = req.WithContext(middleware.SetModeratorID(req.Context(), "mod-123"))
			rr := httptest.NewRecorder()
			ctrl.DismissRequest(rr, req)

			require.Equal(t, tt.wantStatus, rr.Code, "status code")
			var envelope helpers.APIResponse
			require.NoError(t, json.NewDecoder(rr.Body).Decode(&envelope))
			if tt.wantStatus == http.StatusOK {
				require.Nil(t, envelope.Error)
				dataMap, ok := envelope.Data.(map[string]interface{})
				require.True(t, ok, "data must be object")
				assert.Equal(t, "dismissed", dataMap["status"])
			} else if tt.wantBodySubstr != "" {
				require.NotNil(t, envelope.Error)
				assert.Contains(t, envelope.Error.Message, tt.wantBodySubstr)
			}
		})
	}
}

func TestQueueController_EndTurn(t *testing.T) {
	tests := []struct {
		name           string
		fakeErr        error
		fakeResult     *domain.SpeakingRequest
		wantStatus     int
		wantBodySubstr string
	}{
		{
			name:       "success",
			fakeResult: &domain.SpeakingRequest{ID: "req-1", Status: domain.RequestCompleted},
			wantStatus: http.StatusOK,
		},
		{
			name:           "nobody speaking",
			fakeErr:        domain.ErrNotFound,
			wantStatus:     http.StatusNotFound,
			wantBodySubstr: "nobody is speaking",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := &fakeQueueService{endTurnErr: tt.fakeErr, endTurnResult: tt.fakeResult}
			ctrl := NewQueueController(testLogger, fake)
			req := httptest.NewRequest(http.MethodPost, "http://test/events/ev-1/queue/end-turn", nil)
			req.SetPathValue("eventID", "ev-1")
			req = req.WithContext(middleware.SetModeratorID(req.Context(), "mod-123"))
			rr := httptest.NewRecorder()
			ctrl.EndTurn(rr, req)

			require.Equal(t, tt.wantStatus, rr.Code, "status code")
			var envelope helpers.APIResponse
			require.NoError(t, json.NewDecoder(rr.Body).Decode(&envelope))
			if tt.wantStatus == http.StatusOK {
				require.Nil(t, envelope.Error)
				dataBytes, err := json.Marshal(envelope.Data)
				require.NoError(t, err)
				var completed domain.SpeakingRequest
				require.NoError(t, json.Unmarshal(dataBytes, &completed))
				assert.Equal(t, domain.RequestCompleted, completed.Status)
			} else if tt.wantBodySubstr != "" {
				require.NotNil(t, envelope.Error)
				assert.Contains(t, envelope.Error.Message, tt.wantBodySubstr)
			}
		})
	}
}

func TestQueueController_Reorder(t *testing.T) {
	tests := []struct {
		name           string
		body           string
		fakeErr        error
		fakeResult     []*domain.SpeakingRequest
		wantStatus     int
		wantBodySubstr string
		wantSource     int
		wantDest       int
	}{
		{
			name: "success",
			body: `{"source_index":2,"dest_index":0}`,
			fakeResult: []*domain.SpeakingRequest{
				{ID: "req-3", QueuePosition: 1},
				{ID: "req-1", QueuePosition: 2},
				{ID: "req-2", QueuePosition: 3},
			},
			wantStatus: http.StatusOK,
			wantSource: 2,
			wantDest:   0,
		},
		{
			name:           "missing source_index",
			body:           `{"dest_index":0}`,
			wantStatus:     http.StatusBadRequest,
			wantBodySubstr: "source_index is required",
		},
		{
			name:           "negative dest_index",
			body:           `{"source_index":0,"dest_index":-1}`,
			wantStatus:     http.StatusBadRequest,
			wantBodySubstr: "dest_index must be non-negative",
		},
		{
			name:           "index out of range",
			body:           `{"source_index":9,"dest_index":0}`,
			fakeErr:        domain.ErrNotFound,
			wantStatus:     http.StatusNotFound,
			wantBodySubstr: "index out of range",
		},
		{
			name:           "forbidden",
			body:           `{"source_index":0,"dest_index":1}`,
			fakeErr:        domain.ErrForbidden,
			wantStatus:     http.StatusForbidden,
			wantBodySubstr: "forbidden",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := &fakeQueueService{reorderErr: tt.fakeErr, reorderResult: tt.fakeResult}
			ctrl := NewQueueController(testLogger, fake)
			req := httptest.NewRequest(http.MethodPost, "http://test/events/ev-1/queue/reorder", bytes.NewBufferString(tt.body))
			req.Header.Set("Content-Type", "application/json")
			req.SetPathValue("eventID", "ev-1")
			req = req.WithContext(middleware.SetModeratorID(req.Context(), "mod-123"))
			rr := httptest.NewRecorder()
			ctrl.Reorder(rr, req)

			require.Equal(t, tt.wantStatus, rr.Code, "status code")
			var envelope helpers.APIResponse
			require.NoError(t, json.NewDecoder(rr.Body).Decode(&envelope))
			if tt.wantStatus == http.StatusOK {
				require.Nil(t, envelope.Error)
				assert.Equal(t, tt.wantSource, fake.lastSource)
				assert.Equal(t, tt.wantDest, fake.lastDest)
				dataBytes, err := json.Marshal(envelope.Data)
				require.NoError(t, err)
				var pending []domain.SpeakingRequest
				require.NoError(t, json.Unmarshal(dataBytes, &pending))
				require.Len(t, pending, 3)
				assert.Equal(t, "req-3", pending[0].ID)
			} else if tt.wantBodySubstr != "" {
				require.NotNil(t, envelope.Error)
				assert.Contains(t, envelope.Error.Message, tt.wantBodySubstr)
			}
		})
	}
}
