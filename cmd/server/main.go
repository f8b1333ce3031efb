package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"

	"speakerqueue/config"
	"speakerqueue/internal/adapters/auth"
	"speakerqueue/internal/adapters/email"
	"speakerqueue/internal/adapters/rabbit"
	delivery "speakerqueue/internal/delivery/http"
	"speakerqueue/internal/delivery/http/controllers"
	"speakerqueue/internal/delivery/http/middleware"
	"speakerqueue/internal/realtime"
	"speakerqueue/internal/repository/postgres"
	"speakerqueue/internal/services"
	"speakerqueue/internal/workers"

	"golang.org/x/crypto/bcrypt"
)

const (
	readHeaderTimeout = 5 * time.Second
	shutdownTimeout   = 10 * time.Second
	eventTimeout      = 5 * time.Second
)

// @title Speaker Queue API
// @version 1.0
// @description Moderated speaker queues for live Q&A events: moderators run events, attendees join by code or QR and ask to speak.
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	logger := config.NewLogger()

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load config", "err", err)
		os.Exit(1)
	}

	db, err := sql.Open("postgres", cfg.DBUrl)
	if err != nil {
		logger.Error("failed to open database", "err", err)
		os.Exit(1)
	}
	defer db.Close()
	if err := db.Ping(); err != nil {
		logger.Error("failed to ping database", "err", err)
		os.Exit(1)
	}

	moderatorRepo := postgres.NewModeratorRepository(db)
	eventRepo := postgres.NewEventRepository(db)
	requestRepo := postgres.NewRequestRepository(db)
	attendeeRepo := postgres.NewAttendeeRepository(db)

	hub := realtime.NewHub(logger)
	hasher := auth.NewBcryptHasher(bcrypt.DefaultCost)
	tokens := auth.NewJWTCodec(cfg.JWTSecret)

	mailer, err := email.NewMailer(cfg.Mailer)
	if err != nil {
		logger.Error("failed to configure mailer", "err", err)
		os.Exit(1)
	}
	emailService := services.NewEmailService(mailer, email.NewTemplateRenderer())

	// With a broker configured, verification emails go through the queue and
	// a consumer worker. Without one they are sent inline.
	dispatcher := services.NewDirectDispatcher(emailService)
	var rabbitClient *rabbit.Client
	if cfg.Rabbit.URL != "" {
		rabbitClient, err = rabbit.New(cfg.Rabbit.URL, cfg.Rabbit.Exchange, cfg.Rabbit.Queue, logger)
		if err != nil {
			logger.Error("failed to connect to rabbitmq", "err", err)
			os.Exit(1)
		}
		defer rabbitClient.Close()
		dispatcher = rabbit.NewDispatcher(rabbitClient)

		worker := workers.NewEmailWorker(rabbitClient, emailService, logger)
		if err := worker.Start(); err != nil {
			logger.Error("failed to start email worker", "err", err)
			os.Exit(1)
		}
	}

	authService := services.NewAuthService(moderatorRepo, hasher, tokens, cfg.TokenExpiry)
	eventService := services.NewEventService(eventRepo, hub, eventTimeout)
	queueService := services.NewQueueService(eventRepo, requestRepo, hub)
	sessionService := services.NewSessionService(eventRepo, requestRepo, hub)
	attendeeService := services.NewAttendeeService(attendeeRepo, eventRepo, requestRepo, dispatcher, hub, cfg.PublicBaseURL, logger)

	requireAuth := middleware.RequireAuth(tokens, logger)
	mux := delivery.NewRouter(delivery.Controllers{
		Auth:     controllers.NewAuthController(logger, authService),
		Event:    controllers.NewEventController(logger, eventService),
		Queue:    controllers.NewQueueController(logger, queueService),
		Session:  controllers.NewSessionController(logger, sessionService),
		Attendee: controllers.NewAttendeeController(logger, attendeeService),
		QR:       controllers.NewQRController(logger, eventService, cfg.PublicBaseURL),
		Stream:   controllers.NewStreamController(logger, eventService, sessionService, hub),
	}, requireAuth)

	handler := middleware.CORS(cfg.AllowedOrigins, middleware.LoggingMiddleware(logger, mux))

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handler,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		logger.Info("server listening", "port", cfg.Port, "env", cfg.Environment)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", "err", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", "err", err)
	}
}
