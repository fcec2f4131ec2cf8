// Command api serves the district events HTTP API and runs the hold sweeper.
//
// @title District Events API
// @version 1.0
// @description Event listings, capacity-bounded registration, and admin tools for a church district.
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and the JWT.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"districtevents/config"
	_ "districtevents/docs"
	"districtevents/internal/adapters/auth"
	"districtevents/internal/adapters/email"
	delivery "districtevents/internal/delivery/http"
	"districtevents/internal/delivery/http/controllers"
	"districtevents/internal/delivery/http/middleware"
	"districtevents/internal/domain"
	"districtevents/internal/repository/memory"
	"districtevents/internal/repository/postgres"
	"districtevents/internal/services"

	"golang.org/x/crypto/bcrypt"
)

// repositories is the storage backend chosen by STORE.
type repositories struct {
	events        domain.EventRepository
	registrations domain.RegistrationRepository
	inventory     domain.SpotInventory
	churches      domain.ChurchRepository
	users         domain.UserRepository
	invitations   domain.InvitationRepository
	overview      domain.OverviewRepository
	close         func() error
}

func openRepositories(ctx context.Context, cfg *config.Config) (*repositories, error) {
	if cfg.Store == config.StoreMemory {
		s := memory.NewStore()
		return &repositories{
			events:        memory.NewEventRepository(s),
			registrations: memory.NewRegistrationRepository(s),
			inventory:     memory.NewInventoryRepository(s),
			churches:      memory.NewChurchRepository(s),
			users:         memory.NewUserRepository(s),
			invitations:   memory.NewInvitationRepository(s),
			overview:      memory.NewOverviewRepository(s),
			close:         func() error { return nil },
		}, nil
	}
	db, err := postgres.Open(ctx, cfg.DBUrl)
	if err != nil {
		return nil, err
	}
	return &repositories{
		events:        postgres.NewEventRepository(db),
		registrations: postgres.NewRegistrationRepository(db),
		inventory:     postgres.NewInventoryRepository(db),
		churches:      postgres.NewChurchRepository(db),
		users:         postgres.NewUserRepository(db),
		invitations:   postgres.NewInvitationRepository(db),
		overview:      postgres.NewOverviewRepository(db),
		close:         db.Close,
	}, nil
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	logger := config.NewLogger()
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	repos, err := openRepositories(ctx, cfg)
	if err != nil {
		logger.Error("failed to open store", "store", cfg.Store, "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := repos.close(); err != nil {
			logger.Error("failed to close store", "error", err)
		}
	}()
	logger.Info("store ready", "store", cfg.Store)

	mailer, err := email.NewMailer(email.MailerConfig{
		Provider:    cfg.EmailProvider,
		FromAddress: cfg.EmailFromAddress,
		FromName:    cfg.EmailFromName,
		SES: email.SESConfig{
			Region:             cfg.SESRegion,
			AccessKeyID:        cfg.SESAccessKeyID,
			SecretAccessKey:    cfg.SESSecretKey,
			InsecureSkipVerify: cfg.SESInsecureTLS,
		},
	}, logger)
	if err != nil {
		logger.Error("failed to create mailer", "error", err)
		os.Exit(1)
	}
	emailService := services.NewEmailService(mailer, email.NewTemplateRenderer(), logger)

	hasher := auth.NewBcryptHasher(bcrypt.DefaultCost)
	tokenIssuer := auth.NewJWTIssuer(cfg.JWTSecret)
	tokenVerifier := auth.NewJWTVerifier(cfg.JWTSecret)

	if cfg.BootstrapAdminEmail != "" {
		created, err := services.BootstrapCountyAdmin(ctx, repos.users, hasher, cfg.BootstrapAdminEmail, cfg.BootstrapAdminPassword, cfg.BootstrapAdminName)
		if err != nil {
			logger.Error("failed to bootstrap county admin", "error", err)
			os.Exit(1)
		}
		logger.Info("county admin ready", "email", cfg.BootstrapAdminEmail, "created", created)
	}

	eventService := services.NewEventService(repos.events, repos.churches, cfg.RequestTimeout)
	registrationService := services.NewRegistrationService(
		repos.events,
		repos.registrations,
		repos.inventory,
		services.NewReservationService(repos.inventory),
		services.NewLedgerService(repos.registrations, cfg.HoldTTL),
		emailService,
		logger,
	)
	invitationService := services.NewInvitationService(
		repos.invitations,
		repos.users,
		repos.churches,
		auth.NewInviteTokenGenerator(),
		hasher,
		emailService,
		services.InvitationConfig{InviteTTL: cfg.InviteTTL, AppBaseURL: cfg.AppBaseURL},
		logger,
	)
	authService := services.NewAuthService(repos.users, hasher, tokenIssuer, cfg.JWTExpiry)
	churchService := services.NewChurchService(repos.churches)
	userService := services.NewUserService(repos.users, repos.churches, logger)
	overviewService := services.NewOverviewService(repos.overview)

	router := delivery.NewRouter(delivery.Controllers{
		Events:        controllers.NewEventController(logger, eventService),
		Registrations: controllers.NewRegistrationController(logger, registrationService),
		Churches:      controllers.NewChurchController(logger, churchService),
		Invitations:   controllers.NewInvitationController(logger, invitationService),
		Auth:          controllers.NewAuthController(logger, authService),
		Users:         controllers.NewUserController(logger, userService),
		Overview:      controllers.NewOverviewController(logger, overviewService),
	}, tokenVerifier, logger)

	var handler http.Handler = router
	handler = middleware.LoggingMiddleware(logger, handler)
	if len(cfg.CORSAllowedOrigins) > 0 {
		handler = middleware.CORS(cfg.CORSAllowedOrigins, handler)
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	var wg sync.WaitGroup
	sweeper := services.NewHoldSweeper(repos.registrations, repos.inventory, cfg.SweepInterval, cfg.SweepBatchSize, logger)
	wg.Add(1)
	go func() {
		defer wg.Done()
		sweeper.Run(ctx)
	}()

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("server listening", "port", cfg.Port, "env", cfg.Environment)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutting down")
	case err := <-serverErr:
		if err != nil {
			logger.Error("server error", "error", err)
		}
		stop()
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", "error", err)
	}
	wg.Wait()
	logger.Info("server stopped")
}
