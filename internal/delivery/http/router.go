package http

import (
	"net/http"

	httpSwagger "github.com/swaggo/http-swagger"

	"speakerqueue/internal/delivery/http/controllers"
)

// Controllers bundles the handlers the router mounts.
type Controllers struct {
	Auth     *controllers.AuthController
	Event    *controllers.EventController
	Queue    *controllers.QueueController
	Session  *controllers.SessionController
	Attendee *controllers.AttendeeController
	QR       *controllers.QRController
	Stream   *controllers.StreamController
}

// NewRouter initializes the HTTP router with all application routes.
// Moderator routes require a Bearer token; session, attendee, and QR decode
// routes are public.
func NewRouter(c Controllers, requireAuth func(http.HandlerFunc) http.HandlerFunc) *http.ServeMux {
	mux := http.NewServeMux()

	// Auth
	mux.HandleFunc("POST /auth/signup", c.Auth.SignUp)
	mux.HandleFunc("POST /auth/login", c.Auth.Login)

	// Events (moderator)
	mux.HandleFunc("POST /events", requireAuth(c.Event.CreateEvent))
	mux.HandleFunc("GET /events/current", requireAuth(c.Event.GetCurrentEvent))
	mux.HandleFunc("GET /events/{eventID}", requireAuth(c.Event.GetEventByID))
	mux.HandleFunc("PATCH /events/{eventID}/accepting", requireAuth(c.Event.SetAccepting))
	mux.HandleFunc("POST /events/{eventID}/end", requireAuth(c.Event.EndEvent))
	mux.HandleFunc("GET /events/{eventID}/qr", requireAuth(c.QR.GetEventQR))
	mux.HandleFunc("GET /events/{eventID}/stream", requireAuth(c.Stream.StreamEvent))

	// Queue (moderator)
	mux.HandleFunc("GET /events/{eventID}/queue", requireAuth(c.Queue.LoadQueue))
	mux.HandleFunc("POST /events/{eventID}/queue/reorder", requireAuth(c.Queue.Reorder))
	mux.HandleFunc("POST /events/{eventID}/queue/end-turn", requireAuth(c.Queue.EndTurn))
	mux.HandleFunc("POST /events/{eventID}/queue/{requestID}/approve", requireAuth(c.Queue.ApproveRequest))
	mux.HandleFunc("POST /events/{eventID}/queue/{requestID}/dismiss", requireAuth(c.Queue.DismissRequest))

	// Sessions (public, attendee-facing)
	mux.HandleFunc("GET /sessions/{eventCode}", c.Session.GetSessionEvent)
	mux.HandleFunc("POST /sessions/{eventCode}/requests", c.Session.SubmitRequest)
	mux.HandleFunc("GET /sessions/{eventCode}/state", c.Session.GetSessionState)
	mux.HandleFunc("GET /sessions/{eventCode}/stream", c.Stream.StreamSession)

	// Attendees (public)
	mux.HandleFunc("POST /attendees", c.Attendee.Register)
	mux.HandleFunc("POST /attendees/verify-email", c.Attendee.VerifyEmail)
	mux.HandleFunc("GET /attendees/{attendeeCode}", c.Attendee.VerifyID)
	mux.HandleFunc("GET /attendees/{attendeeCode}/requests", c.Attendee.ListRequests)
	mux.HandleFunc("POST /attendees/{attendeeCode}/requests", c.Attendee.SubmitRequest)

	// QR decode (public)
	mux.HandleFunc("POST /qr/decode", c.QR.DecodeQR)

	// Swagger
	mux.Handle("/swagger/", httpSwagger.WrapHandler)

	return mux
}
