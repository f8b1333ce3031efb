package controllers

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"speakerqueue/internal/adapters/qrcode"
	"speakerqueue/internal/delivery/http/helpers"
	"speakerqueue/internal/delivery/http/middleware"
	"speakerqueue/internal/domain"
)

// maxQRUploadBytes bounds uploaded QR images. A phone camera frame re-encoded
// as JPEG stays well under this.
const maxQRUploadBytes = 4 << 20

// QRController serves QR image generation for moderators and QR image
// decoding for attendee clients without camera-side decoding support.
type QRController struct {
	Logger  *slog.Logger
	Service domain.EventService
	BaseURL string
}

func NewQRController(logger *slog.Logger, svc domain.EventService, baseURL string) *QRController {
	return &QRController{
		Logger:  logger,
		Service: svc,
		BaseURL: strings.TrimRight(baseURL, "/"),
	}
}

// GetEventQR godoc
// @Summary Get the event's join QR code
// @Description Renders the event's join URL as a PNG QR image. The size query parameter is clamped to the supported pixel range. Only the owning moderator can fetch it.
// @Tags qr
// @Produce png
// @Security BearerAuth
// @Param eventID path string true "Event ID (UUID)"
// @Param size query int false "Image size in pixels (default 256)"
// @Success 200 {file} binary "PNG image"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden (not owner)"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/{eventID}/qr [get]
func (c *QRController) GetEventQR(w http.ResponseWriter, r *http.Request) {
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
	event, err := c.Service.GetByID(r.Context(), moderatorID, eventID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			helpers.WriteJSONError(w, http.StatusNotFound, helpers.ErrCodeNotFound, "event not found")
			return
		}
		if errors.Is(err, domain.ErrForbidden) {
			helpers.WriteJSONError(w, http.StatusForbidden, helpers.ErrCodeForbidden, "forbidden")
			return
		}
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, err.Error())
		return
	}

	size := qrcode.DefaultSize
	if s := r.URL.Query().Get("size"); s != "" {
		if n, err := strconv.Atoi(s); err == nil {
			size = qrcode.ClampSize(n)
		}
	}

	joinURL := fmt.Sprintf("%s/session/%s", c.BaseURL, event.EventCode)
	png, err := qrcode.Encode(joinURL, size)
	if err != nil {
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, err.Error())
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Content-Length", strconv.Itoa(len(png)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(png)
}

// DecodeResponse is the data payload for POST /qr/decode (200).
type DecodeResponse struct {
	Content string `json:"content"`
}

// DecodeSuccessResponse is the success response envelope for POST /qr/decode (200).
type DecodeSuccessResponse struct {
	Data  DecodeResponse    `json:"data"`
	Error *helpers.APIError `json:"error"`
}

// DecodeQR godoc
// @Summary Decode an uploaded QR image
// @Description Extracts the text content from a PNG or JPEG image of a QR code. The raw image bytes are the request body.
// @Tags qr
// @Accept octet-stream
// @Produce json
// @Param body body string true "Raw PNG or JPEG image bytes"
// @Success 200 {object} controllers.DecodeSuccessResponse "data contains the decoded content"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request (unreadable image or no QR code)"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /qr/decode [post]
func (c *QRController) DecodeQR(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxQRUploadBytes))
	if err != nil {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "could not read image body")
		return
	}
	if len(body) == 0 {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "empty image body")
		return
	}
	content, err := qrcode.Decode(body)
	if err != nil {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, err.Error())
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, DecodeResponse{Content: content})
}
