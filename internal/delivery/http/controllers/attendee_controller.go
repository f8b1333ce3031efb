package controllers

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"speakerqueue/internal/delivery/http/helpers"
	"speakerqueue/internal/domain"
)

type AttendeeController struct {
	Logger  *slog.Logger
	Service domain.AttendeeService
}

func NewAttendeeController(logger *slog.Logger, svc domain.AttendeeService) *AttendeeController {
	return &AttendeeController{
		Logger:  logger,
		Service: svc,
	}
}

// RegisterAttendeeRequest is the request body for POST /attendees.
type RegisterAttendeeRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Validate implements Validator.
func (a RegisterAttendeeRequest) Validate() []string {
	var errs []string
	if strings.TrimSpace(a.Name) == "" {
		errs = append(errs, "name is required")
	}
	if a.Email == "" {
		errs = append(errs, "email is required")
	} else if !emailRegex.MatchString(strings.TrimSpace(a.Email)) {
		errs = append(errs, "email must be a valid email address")
	}
	return errs
}

// AttendeeSuccessResponse is the success response envelope for endpoints returning a single attendee.
type AttendeeSuccessResponse struct {
	Data  *domain.Attendee  `json:"data"`
	Error *helpers.APIError `json:"error"`
}

// Register godoc
// @Summary Register an attendee
// @Description Creates an unverified attendee and sends a verification email with their attendee code. Registration succeeds even if the email cannot be dispatched.
// @Tags attendees
// @Accept json
// @Produce json
// @Param body body RegisterAttendeeRequest true "Attendee name and email"
// @Success 201 {object} controllers.AttendeeSuccessResponse "data contains the created attendee"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict (email already registered)"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /attendees [post]
func (c *AttendeeController) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterAttendeeRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	attendee, err := c.Service.Register(r.Context(), req.Name, req.Email)
	if err != nil {
		if errors.Is(err, domain.ErrDuplicateEmail) {
			helpers.WriteJSONError(w, http.StatusConflict, helpers.ErrCodeConflict, "email already registered")
			return
		}
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, err.Error())
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusCreated, attendee)
}

// VerifyEmailRequest is the request body for POST /attendees/verify-email.
type VerifyEmailRequest struct {
	Token string `json:"token"`
	Code  string `json:"code"`
}

// Validate implements Validator.
func (v VerifyEmailRequest) Validate() []string {
	var errs []string
	if strings.TrimSpace(v.Token) == "" {
		errs = append(errs, "token is required")
	}
	if strings.TrimSpace(v.Code) == "" {
		errs = append(errs, "code is required")
	}
	return errs
}

// VerifyEmail godoc
// @Summary Verify an attendee's email
// @Description Marks the attendee verified when both the emailed token and attendee code match an unverified record.
// @Tags attendees
// @Accept json
// @Produce json
// @Param body body VerifyEmailRequest true "Verification token and attendee code"
// @Success 200 {object} controllers.AttendeeSuccessResponse "data contains the verified attendee"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found (no matching unverified record)"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /attendees/verify-email [post]
func (c *AttendeeController) VerifyEmail(w http.ResponseWriter, r *http.Request) {
	var req VerifyEmailRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	attendee, err := c.Service.VerifyEmail(r.Context(), req.Token, req.Code)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			helpers.WriteJSONError(w, http.StatusNotFound, helpers.ErrCodeNotFound, "no matching unverified attendee")
			return
		}
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, err.Error())
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, attendee)
}

// VerifyID godoc
// @Summary Look up a verified attendee by code
// @Description Returns the attendee for the code if the attendee exists and is verified. Used by attendee clients to restore their identity.
// @Tags attendees
// @Produce json
// @Param attendeeCode path string true "Attendee code"
// @Success 200 {object} controllers.AttendeeSuccessResponse "data contains the attendee"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found (unknown or unverified code)"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /attendees/{attendeeCode} [get]
func (c *AttendeeController) VerifyID(w http.ResponseWriter, r *http.Request) {
	attendeeCode := r.PathValue("attendeeCode")
	if attendeeCode == "" {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "missing attendeeCode")
		return
	}
	attendee, err := c.Service.VerifyID(r.Context(), attendeeCode)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			helpers.WriteJSONError(w, http.StatusNotFound, helpers.ErrCodeNotFound, "attendee not found")
			return
		}
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, err.Error())
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, attendee)
}

// ListRequestsResponse is the data payload for GET /attendees/{attendeeCode}/requests (200).
type ListRequestsResponse struct {
	Items      []*domain.SpeakingRequest `json:"items"`
	Pagination helpers.PaginationMeta    `json:"pagination"`
}

// ListRequestsSuccessResponse is the success response envelope for GET /attendees/{attendeeCode}/requests (200).
type ListRequestsSuccessResponse struct {
	Data  ListRequestsResponse `json:"data"`
	Error *helpers.APIError    `json:"error"`
}

// ListRequests godoc
// @Summary List an attendee's speaking requests
// @Description Returns a paginated history of the attendee's requests across events, newest first. Use page and page_size query params.
// @Tags attendees
// @Produce json
// @Param attendeeCode path string true "Attendee code"
// @Param page query int false "Page number (default 1)"
// @Param page_size query int false "Page size (default 20, max 100)"
// @Success 200 {object} controllers.ListRequestsSuccessResponse "data contains items and pagination"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found (unknown or unverified code)"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /attendees/{attendeeCode}/requests [get]
func (c *AttendeeController) ListRequests(w http.ResponseWriter, r *http.Request) {
	attendeeCode := r.PathValue("attendeeCode")
	if attendeeCode == "" {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "missing attendeeCode")
		return
	}
	params := helpers.ParsePagination(r)
	requests, total, err := c.Service.ListRequests(r.Context(), attendeeCode, params)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			helpers.WriteJSONError(w, http.StatusNotFound, helpers.ErrCodeNotFound, "attendee not found")
			return
		}
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, err.Error())
		return
	}
	meta := helpers.NewPaginationMeta(params.Page, params.PageSize, total)
	helpers.WriteJSONSuccess(w, http.StatusOK, ListRequestsResponse{Items: requests, Pagination: meta})
}

// AttendeeSubmitRequest is the request body for POST /attendees/{attendeeCode}/requests.
type AttendeeSubmitRequest struct {
	EventCode string `json:"event_code"`
	Question  string `json:"question"`
}

// Validate implements Validator.
func (a AttendeeSubmitRequest) Validate() []string {
	var errs []string
	if strings.TrimSpace(a.EventCode) == "" {
		errs = append(errs, "event_code is required")
	}
	if strings.TrimSpace(a.Question) == "" {
		errs = append(errs, "question is required")
	}
	return errs
}

// SubmitRequest godoc
// @Summary Submit a speaking request as a registered attendee
// @Description Creates a pending request on the event's queue under the attendee's registered name, linked to their attendee code.
// @Tags attendees
// @Accept json
// @Produce json
// @Param attendeeCode path string true "Attendee code"
// @Param body body AttendeeSubmitRequest true "Event code and question"
// @Success 201 {object} controllers.SubmissionSuccessResponse "data contains the request and its advisory position"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found (attendee or event)"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict (queue closed)"
// @Failure 410 {object} helpers.APIResponse "error.code: gone (event ended)"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /attendees/{attendeeCode}/requests [post]
func (c *AttendeeController) SubmitRequest(w http.ResponseWriter, r *http.Request) {
	attendeeCode := r.PathValue("attendeeCode")
	if attendeeCode == "" {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "missing attendeeCode")
		return
	}
	var req AttendeeSubmitRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	result, err := c.Service.SubmitRequest(r.Context(), attendeeCode, req.EventCode, req.Question)
	if err != nil {
		writeSubmissionError(c.Logger, w, r, err, "attendee or event not found")
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusCreated, result)
}
