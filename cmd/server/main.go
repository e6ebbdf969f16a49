package main

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-redis/redis/v8"
	h "github.com/gorilla/handlers"
	"github.com/rs/zerolog"

	"github.com/eventerx/eventerx-api/internal/authz"
	"github.com/eventerx/eventerx-api/internal/config"
	"github.com/eventerx/eventerx-api/internal/handlers"
	"github.com/eventerx/eventerx-api/internal/invitation"
	"github.com/eventerx/eventerx-api/internal/middleware"
	"github.com/eventerx/eventerx-api/internal/migration"
	"github.com/eventerx/eventerx-api/internal/notification"
	"github.com/eventerx/eventerx-api/internal/registration"
	"github.com/eventerx/eventerx-api/internal/repository"
	"github.com/eventerx/eventerx-api/internal/routes"

	_ "github.com/lib/pq" // PostgreSQL driver
)

type application struct {
	config *config.Config
	db     *sql.DB
	redis  *redis.Client
	logger zerolog.Logger
}

func main() {
	// Set up structured, level-based logging.
	consoleWriter := zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.Kitchen}
	logger := zerolog.New(consoleWriter).With().Timestamp().Logger()

	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	log.SetFlags(0)
	log.SetOutput(logger)

	// Load configuration.
	cfg := config.Load()

	// Initialize database connection.
	db, err := sql.Open("postgres", cfg.DatabaseURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to connect to the database")
	}
	defer db.Close()
	if err := db.Ping(); err != nil {
		logger.Fatal().Err(err).Msg("Failed to ping database")
	}

	// Run database migrations.
	migration.RunMigrations(cfg.DatabaseURL, logger)

	// Redis backs the logout token blacklist.
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer redisClient.Close()
	if err := redisClient.Ping(context.Background()).Err(); err != nil {
		logger.Fatal().Err(err).Msg("Failed to ping redis")
	}

	app := &application{
		config: cfg,
		db:     db,
		redis:  redisClient,
		logger: logger,
	}

	// Initialize the HTTP router and middleware.
	router := app.initRouter(logger)
	loggedRouter := middleware.LoggingMiddleware(app.logger)(router)
	corsHandler := h.CORS(
		h.AllowedOrigins([]string{"http://localhost:3000"}),
		h.AllowedMethods([]string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}),
		h.AllowedHeaders([]string{"Content-Type", "Authorization"}),
		h.AllowCredentials(),
	)(loggedRouter)

	// Start the HTTP server and handle graceful shutdown.
	app.startServer(corsHandler, logger)

	logger.Info().Msg("Application terminated.")
}

// initRouter sets up all HTTP handlers and returns the router.
func (app *application) initRouter(logger zerolog.Logger) http.Handler {
	// Repositories
	userRepo := repository.NewUserRepository(app.db)
	schoolRepo := repository.NewSchoolRepository(app.db)
	staffRepo := repository.NewStaffRepository(app.db)
	studentRepo := repository.NewStudentRepository(app.db)
	accountRepo := repository.NewAccountRepository(app.db)
	inviteRepo := repository.NewInvitationRepository(app.db)
	eventRepo := repository.NewEventRepository(app.db)
	teamRepo := repository.NewTeamRepository(app.db)
	commissionRepo := repository.NewCommissionRepository(app.db)

	// Core services
	authority := invitation.NewAuthority(inviteRepo)
	resolver := authz.NewScopeResolver(schoolRepo, staffRepo, studentRepo)
	registrationSvc := registration.NewService(authority, userRepo, studentRepo, schoolRepo, accountRepo)

	// Mailer for invite links
	var mailer notification.InviteMailer
	if m, err := notification.NewSMTPInviteMailer(app.config.Email); err != nil {
		logger.Warn().Err(err).Msg("invite mailer not configured; invite emails disabled")
	} else {
		mailer = m
	}

	urlTpl := app.config.Email.InviteURLTemplate

	// Handlers
	authHandler := handlers.NewAuthHandler(userRepo, resolver, app.redis, app.config.JWTSecret, logger)
	schoolHandler := handlers.NewSchoolHandler(registrationSvc, schoolRepo, logger)
	inviteHandler := handlers.NewInviteHandler(authority, schoolRepo, mailer, urlTpl, logger)
	registrationHandler := handlers.NewRegistrationHandler(registrationSvc, logger)
	staffHandler := handlers.NewStaffHandler(staffRepo, userRepo, authority, urlTpl, logger)
	studentHandler := handlers.NewStudentHandler(studentRepo, userRepo, authority, urlTpl, logger)
	eventHandler := handlers.NewEventHandler(eventRepo, logger)
	commissionHandler := handlers.NewCommissionHandler(commissionRepo, eventRepo, logger)
	teamHandler := handlers.NewTeamHandler(teamRepo, staffRepo, commissionRepo, logger)

	return routes.NewRouter(
		authHandler,
		schoolHandler,
		inviteHandler,
		registrationHandler,
		staffHandler,
		studentHandler,
		eventHandler,
		commissionHandler,
		teamHandler,
	)
}

// startServer launches the HTTP server and handles graceful shutdown.
func (app *application) startServer(handler http.Handler, logger zerolog.Logger) {
	server := &http.Server{
		Addr:    ":" + app.config.ServerPort,
		Handler: handler,
	}

	// Channel to listen for server errors
	serverErrCh := make(chan error, 1)
	go func() {
		logger.Info().Msgf("Server listening on %s", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErrCh <- err
		}
	}()

	// Wait for an interrupt signal or a server error.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	select {
	case sig := <-quit:
		logger.Info().Msgf("Received signal: %s. Shutting down...", sig)
	case err := <-serverErrCh:
		logger.Error().Err(err).Msg("Server error occurred")
	}

	// Gracefully shut down the HTTP server.
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.Error().Err(err).Msg("HTTP server shutdown error")
	} else {
		logger.Info().Msg("HTTP server shutdown complete.")
	}
}
