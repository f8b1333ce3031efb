package controllers

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"speakerqueue/internal/delivery/http/helpers"
	"speakerqueue/internal/delivery/http/middleware"
	"speakerqueue/internal/domain"
)

// heartbeatInterval keeps idle SSE connections alive through proxies that
// close quiet streams.
const heartbeatInterval = 25 * time.Second

// StreamController serves the server-sent-events change feeds. Moderators
// stream by event ID; attendees stream by join code without authentication.
type StreamController struct {
	Logger   *slog.Logger
	Events   domain.EventService
	Sessions domain.SessionService
	Changes  domain.ChangeSubscriber
}

func NewStreamController(logger *slog.Logger, events domain.EventService, sessions domain.SessionService, changes domain.ChangeSubscriber) *StreamController {
	return &StreamController{
		Logger:   logger,
		Events:   events,
		Sessions: sessions,
		Changes:  changes,
	}
}

// StreamEvent godoc
// @Summary Stream changes for an owned event
// @Description Opens a server-sent-events stream of row changes for the event. Each message is a JSON change with table, type, event_id, and payload. EventSource clients pass the Bearer token as the access_token query parameter.
// @Tags stream
// @Produce text/event-stream
// @Security BearerAuth
// @Param eventID path string true "Event ID (UUID)"
// @Param access_token query string false "Bearer token for EventSource clients"
// @Success 200 {string} string "SSE stream"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden (not owner)"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /events/{eventID}/stream [get]
func (c *StreamController) StreamEvent(w http.ResponseWriter, r *http.Request) {
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
	event, err := c.Events.GetByID(r.Context(), moderatorID, eventID)
	if err != nil {
		c.writeStreamError(w, r, err)
		return
	}
	c.serve(w, r, event.ID)
}

// StreamSession godoc
// @Summary Stream changes for a session by join code
// @Description Opens a public server-sent-events stream of row changes for the event behind the join code. Attendee clients use this to follow queue and event updates.
// @Tags stream
// @Produce text/event-stream
// @Param eventCode path string true "Event join code"
// @Success 200 {string} string "SSE stream"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /sessions/{eventCode}/stream [get]
func (c *StreamController) StreamSession(w http.ResponseWriter, r *http.Request) {
	eventCode := r.PathValue("eventCode")
	if eventCode == "" {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "missing eventCode")
		return
	}
	event, err := c.Sessions.GetEvent(r.Context(), eventCode)
	if err != nil {
		c.writeStreamError(w, r, err)
		return
	}
	c.serve(w, r, event.ID)
}

// serve subscribes to the event's change feed and writes SSE frames until the
// client disconnects.
func (c *StreamController) serve(w http.ResponseWriter, r *http.Request, eventID string) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, "streaming unsupported")
		return
	}

	changes, cancel := c.Changes.Subscribe(eventID)
	defer cancel()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)

	// An initial comment confirms the stream is open before any change lands.
	fmt.Fprint(w, ": connected\n\n")
	flusher.Flush()

	heartbeat := time.NewTicker(heartbeatInterval)
	defer heartbeat.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case <-heartbeat.C:
			fmt.Fprint(w, ": heartbeat\n\n")
			flusher.Flush()
		case ev, ok := <-changes:
			if !ok {
				return
			}
			data, err := json.Marshal(ev)
			if err != nil {
				c.Logger.ErrorContext(r.Context(), "failed to encode change event",
					"event_id", eventID, "table", ev.Table, "err", err)
				continue
			}
			fmt.Fprintf(w, "event: change\ndata: %s\n\n", data)
			flusher.Flush()
		}
	}
}

func (c *StreamController) writeStreamError(w http.ResponseWriter, r *http.Request, err error) {
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
}
