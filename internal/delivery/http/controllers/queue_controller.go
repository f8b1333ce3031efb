package controllers

import (
	"errors"
	"log/slog"
	"net/http"

	"speakerqueue/internal/delivery/http/helpers"
	"speakerqueue/internal/delivery/http/middleware"
	"speakerqueue/internal/domain"
)

type QueueController struct {
	Logger  *slog.Logger
	Service domain.QueueService
}

func NewQueueController(logger *slog.Logger, svc domain.QueueService) *QueueController {
	return &QueueController{
		Logger:  logger,
		Service: svc,
	}
}

// QueueSuccessResponse is the success response envelope for GET /events/{eventID}/queue (200).
type QueueSuccessResponse struct {
	Data  *domain.Queue     `json:"data"`
	Error *helpers.APIError `json:"error"`
}

// LoadQueue godoc
// @Summary Load the event's queue
// @Description Returns the ordered pending requests and the current speaker, if any. Only the owning moderator can load.
// @Tags queue
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID (UUID)"
// @Success 200 {object} controllers.QueueSuccessResponse "data contains pending list and current speaker"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden (not owner)"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/{eventID}/queue [get]
func (c *QueueController) LoadQueue(w http.ResponseWriter, r *http.Request) {
	eventID := r.PathValue("eventID")
	if eventID == "" {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "missing eventID")
		return
	}
	moderatorID, ok := middleware.ModeratorIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	queue, err := c.Service.Load(r.Context(), moderatorID, eventID)
	if err != nil {
		c.writeQueueError(w, r, err, "event not found")
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, queue)
}

// RequestSuccessResponse is the success response envelope for endpoints returning a single speaking request.
type RequestSuccessResponse struct {
	Data  *domain.SpeakingRequest `json:"data"`
	Error *helpers.APIError       `json:"error"`
}

// ApproveRequest godoc
// @Summary Approve a pending request
// @Description Moves the pending request to the speaking slot. If someone is already speaking, their turn is completed in the same transaction.
// @Tags queue
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID (UUID)"
// @Param requestID path string true "Request ID (UUID)"
// @Success 200 {object} controllers.RequestSuccessResponse "data contains the approved request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden (not owner)"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found (request missing or no longer pending)"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/{eventID}/queue/{requestID}/approve [post]
func (c *QueueController) ApproveRequest(w http.ResponseWriter, r *http.Request) {
	eventID := r.PathValue("eventID")
	requestID := r.PathValue("requestID")
	if eventID == "" || requestID == "" {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "missing eventID or requestID")
		return
	}
	moderatorID, ok := middleware.ModeratorIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	approved, err := c.Service.Approve(r.Context(), moderatorID, eventID, requestID)
	if err != nil {
		c.writeQueueError(w, r, err, "request not found or no longer pending")
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, approved)
}

// DismissResponse is the data payload for POST /events/{eventID}/queue/{requestID}/dismiss (200).
type DismissResponse struct {
	Status string `json:"status"`
}

// DismissSuccessResponse is the success response envelope for POST /events/{eventID}/queue/{requestID}/dismiss (200).
type DismissSuccessResponse struct {
	Data  DismissResponse   `json:"data"`
	Error *helpers.APIError `json:"error"`
}

// DismissRequest godoc
// @Summary Dismiss a pending request
// @Description Removes a pending request from the queue without giving it the floor.
// @Tags queue
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID (UUID)"
// @Param requestID path string true "Request ID (UUID)"
// @Success 200 {object} controllers.DismissSuccessResponse "data contains status"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden (not owner)"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found (request missing or no longer pending)"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/{eventID}/queue/{requestID}/dismiss [post]
func (c *QueueController) DismissRequest(w http.ResponseWriter, r *http.Request) {
	eventID := r.PathValue("eventID")
	requestID := r.PathValue("requestID")
	if eventID == "" || requestID == "" {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "missing eventID or requestID")
		return
	}
	moderatorID, ok := middleware.ModeratorIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	if err := c.Service.Dismiss(r.Context(), moderatorID, eventID, requestID); err != nil {
		c.writeQueueError(w, r, err, "request not found or no longer pending")
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, DismissResponse{Status: "dismissed"})
}

// EndTurn godoc
// @Summary End the current speaker's turn
// @Description Completes the current speaker without approving anyone else. 404 when nobody is speaking.
// @Tags queue
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID (UUID)"
// @Success 200 {object} controllers.RequestSuccessResponse "data contains the completed request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden (not owner)"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found (nobody speaking)"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/{eventID}/queue/end-turn [post]
func (c *QueueController) EndTurn(w http.ResponseWriter, r *http.Request) {
	eventID := r.PathValue("eventID")
	if eventID == "" {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "missing eventID")
		return
	}
	moderatorID, ok := middleware.ModeratorIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	completed, err := c.Service.EndTurn(r.Context(), moderatorID, eventID)
	if err != nil {
		c.writeQueueError(w, r, err, "nobody is speaking")
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, completed)
}

// ReorderRequest is the request body for POST /events/{eventID}/queue/reorder.
type ReorderRequest struct {
	SourceIndex *int `json:"source_index"`
	DestIndex   *int `json:"dest_index"`
}

// Validate implements Validator.
func (rr ReorderRequest) Validate() []string {
	var errs []string
	if rr.SourceIndex == nil {
		errs = append(errs, "source_index is required")
	} else if *rr.SourceIndex < 0 {
		errs = append(errs, "source_index must be non-negative")
	}
	if rr.DestIndex == nil {
		errs = append(errs, "dest_index is required")
	} else if *rr.DestIndex < 0 {
		errs = append(errs, "dest_index must be non-negative")
	}
	return errs
}

// ReorderSuccessResponse is the success response envelope for POST /events/{eventID}/queue/reorder (200).
type ReorderSuccessResponse struct {
	Data  []*domain.SpeakingRequest `json:"data"`
	Error *helpers.APIError         `json:"error"`
}

// Reorder godoc
// @Summary Reorder the pending queue
// @Description Moves the pending request at source_index to dest_index. The new order is persisted and survives restarts.
// @Tags queue
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID (UUID)"
// @Param body body ReorderRequest true "Zero-based source and destination indexes"
// @Success 200 {object} controllers.ReorderSuccessResponse "data is the pending list in its new order"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden (not owner)"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found (index out of range)"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/{eventID}/queue/reorder [post]
func (c *QueueController) Reorder(w http.ResponseWriter, r *http.Request) {
	eventID := r.PathValue("eventID")
	if eventID == "" {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "missing eventID")
		return
	}
	var req ReorderRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	moderatorID, ok := middleware.ModeratorIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	pending, err := c.Service.Reorder(r.Context(), moderatorID, eventID, *req.SourceIndex, *req.DestIndex)
	if err != nil {
		c.writeQueueError(w, r, err, "index out of range")
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, pending)
}

func (c *QueueController) writeQueueError(w http.ResponseWriter, r *http.Request, err error, notFoundMsg string) {
	if errors.Is(err, domain.ErrNotFound) {
		helpers.WriteJSONError(w, http.StatusNotFound, helpers.ErrCodeNotFound, notFoundMsg)
		return
	}
	if errors.Is(err, domain.ErrForbidden) {
		helpers.WriteJSONError(w, http.StatusForbidden, helpers.ErrCodeForbidden, "forbidden")
		return
	}
	c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
	helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, err.Error())
}
