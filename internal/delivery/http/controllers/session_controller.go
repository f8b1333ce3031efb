package controllers

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"speakerqueue/internal/delivery/http/helpers"
	"speakerqueue/internal/domain"
)

// SessionController serves the attendee-facing session endpoints. They are
// public: attendees identify themselves by event code and request ID, not by
// an account.
type SessionController struct {
	Logger  *slog.Logger
	Service domain.SessionService
}

func NewSessionController(logger *slog.Logger, svc domain.SessionService) *SessionController {
	return &SessionController{
		Logger:  logger,
		Service: svc,
	}
}

// GetSessionEvent godoc
// @Summary Look up an event by join code
// @Description Returns the event for a join code. Codes are case-insensitive. Ended events are still returned so the client can show the ended screen.
// @Tags sessions
// @Produce json
// @Param eventCode path string true "Event join code"
// @Success 200 {object} controllers.EventSuccessResponse "data contains the event"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /sessions/{eventCode} [get]
func (c *SessionController) GetSessionEvent(w http.ResponseWriter, r *http.Request) {
	eventCode := r.PathValue("eventCode")
	if eventCode == "" {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "missing eventCode")
		return
	}
	event, err := c.Service.GetEvent(r.Context(), eventCode)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			helpers.WriteJSONError(w, http.StatusNotFound, helpers.ErrCodeNotFound, "event not found")
			return
		}
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, err.Error())
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, event)
}

// SubmitRequestRequest is the request body for POST /sessions/{eventCode}/requests.
type SubmitRequestRequest struct {
	AttendeeName string `json:"attendee_name"`
	Question     string `json:"question"`
}

// Validate implements Validator.
func (s SubmitRequestRequest) Validate() []string {
	var errs []string
	if strings.TrimSpace(s.AttendeeName) == "" {
		errs = append(errs, "attendee_name is required")
	}
	if strings.TrimSpace(s.Question) == "" {
		errs = append(errs, "question is required")
	}
	return errs
}

// SubmissionSuccessResponse is the success response envelope for request submission endpoints (201).
type SubmissionSuccessResponse struct {
	Data  *domain.SubmissionResult `json:"data"`
	Error *helpers.APIError        `json:"error"`
}

// SubmitRequest godoc
// @Summary Submit a speaking request
// @Description Adds a pending request to the event's queue and returns it with an advisory queue position, computed once at submission time.
// @Tags sessions
// @Accept json
// @Produce json
// @Param eventCode path string true "Event join code"
// @Param body body SubmitRequestRequest true "Attendee name and question"
// @Success 201 {object} controllers.SubmissionSuccessResponse "data contains the request and its advisory position"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict (queue closed)"
// @Failure 410 {object} helpers.APIResponse "error.code: gone (event ended)"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /sessions/{eventCode}/requests [post]
func (c *SessionController) SubmitRequest(w http.ResponseWriter, r *http.Request) {
	eventCode := r.PathValue("eventCode")
	if eventCode == "" {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "missing eventCode")
		return
	}
	var req SubmitRequestRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	result, err := c.Service.SubmitRequest(r.Context(), eventCode, req.AttendeeName, req.Question)
	if err != nil {
		writeSubmissionError(c.Logger, w, r, err, "event not found")
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusCreated, result)
}

// SessionStateSuccessResponse is the success response envelope for GET /sessions/{eventCode}/state (200).
type SessionStateSuccessResponse struct {
	Data  *domain.SessionView `json:"data"`
	Error *helpers.APIError   `json:"error"`
}

// GetSessionState godoc
// @Summary Get the attendee's session state
// @Description Derives the session state (default, queued, speaking, ended) from the event and the attendee's request, identified by the request_id query parameter.
// @Tags sessions
// @Produce json
// @Param eventCode path string true "Event join code"
// @Param request_id query string false "The attendee's request ID"
// @Success 200 {object} controllers.SessionStateSuccessResponse "data contains event, request, and derived state"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /sessions/{eventCode}/state [get]
func (c *SessionController) GetSessionState(w http.ResponseWriter, r *http.Request) {
	eventCode := r.PathValue("eventCode")
	if eventCode == "" {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "missing eventCode")
		return
	}
	requestID := strings.TrimSpace(r.URL.Query().Get("request_id"))
	view, err := c.Service.GetState(r.Context(), eventCode, requestID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			helpers.WriteJSONError(w, http.StatusNotFound, helpers.ErrCodeNotFound, "event not found")
			return
		}
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, err.Error())
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, view)
}

// writeSubmissionError maps the submission guard errors shared by the session
// and attendee submission endpoints.
func writeSubmissionError(logger *slog.Logger, w http.ResponseWriter, r *http.Request, err error, notFoundMsg string) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		helpers.WriteJSONError(w, http.StatusNotFound, helpers.ErrCodeNotFound, notFoundMsg)
	case errors.Is(err, domain.ErrEventEnded):
		helpers.WriteJSONError(w, http.StatusGone, helpers.ErrCodeGone, "event has ended")
	case errors.Is(err, domain.ErrQueueClosed):
		helpers.WriteJSONError(w, http.StatusConflict, helpers.ErrCodeConflict, "event is not accepting requests")
	default:
		logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, err.Error())
	}
}
