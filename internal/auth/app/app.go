package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/Flamchu/Slack-like-backend/internal/auth/activity"
	httpapi "github.com/Flamchu/Slack-like-backend/internal/auth/http"
	"github.com/Flamchu/Slack-like-backend/internal/auth/revocation"
	"github.com/Flamchu/Slack-like-backend/internal/auth/service"
	"github.com/Flamchu/Slack-like-backend/internal/auth/store"
	"github.com/Flamchu/Slack-like-backend/internal/auth/store/drivers/postgres"
	"github.com/Flamchu/Slack-like-backend/internal/auth/store/drivers/sqlite"
	"github.com/Flamchu/Slack-like-backend/pkg/cryptox"
	"github.com/Flamchu/Slack-like-backend/pkg/slogx"
)

const (
	// BuildVersion should be set at build time via ldflags. Later problem
	BuildVersion = "v0.1.0"
)

// Application encapsulates the auth service application with all its dependencies
type Application struct {
	cfg    Config
	logger *slog.Logger

	// Core dependencies
	db              store.Store
	revocationCache revocation.Cache
	memoryCache     *revocation.MemoryCache // nil with the database backend
	recorder        activity.Recorder
	asyncRecorder   *activity.AsyncRecorder // nil when activity logging is off
	mqttClient      mqtt.Client

	// Services
	tokenService        *service.TokenService
	userService         *service.UserService
	membershipService   *service.MembershipService
	invitationService   *service.InvitationService
	teamService         *service.TeamService
	housekeepingService *service.HousekeepingService

	// HTTP server
	server *http.Server
	router *httpapi.Router
}

// New creates a new Application instance with all dependencies initialized
func New(cfg Config) (*Application, error) {
	app := &Application{
		cfg: cfg,
		logger: slogx.New(slogx.Config{
			Service: "auth-service",
			Version: BuildVersion,
			Env:     cfg.Env,
			Level:   cfg.LogLevel,
			Format:  cfg.LogFormat,
		}),
	}

	if err := app.initDatabase(); err != nil {
		return nil, err
	}

	if err := app.initActivity(); err != nil {
		_ = app.db.Close()
		return nil, err
	}

	if err := app.initServices(); err != nil {
		app.closeResources()
		return nil, err
	}
	app.initHTTP()

	return app, nil
}

// Handler exposes the HTTP handler, mainly for in-process tests.
func (app *Application) Handler() http.Handler {
	return app.router
}

// Run starts the application and blocks until shutdown is requested
func (app *Application) Run() error {
	app.Start()

	app.logger.Info("auth service starting", "port", app.cfg.Port, "version", BuildVersion)

	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- app.server.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			app.closeResources()
			return fmt.Errorf("server failed: %w", err)
		}
	case sig := <-shutdown:
		app.logger.Info("shutdown signal received", "signal", sig)

		if err := app.Shutdown(); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
	}

	return nil
}

// Start launches the background workers without binding a port.
func (app *Application) Start() {
	if app.asyncRecorder != nil {
		app.asyncRecorder.Start()
	}
	app.housekeepingService.Start()
}

// Shutdown gracefully shuts down the application
func (app *Application) Shutdown() error {
	app.logger.Info("shutting down auth service...")

	ctx, cancel := context.WithTimeout(context.Background(), app.cfg.ShutdownGracePeriod)
	defer cancel()

	if err := app.server.Shutdown(ctx); err != nil {
		app.logger.Error("graceful server shutdown failed", "error", err)
		if err := app.server.Close(); err != nil {
			app.logger.Error("error closing server", "error", err)
		}
	}

	app.housekeepingService.Stop()

	if err := app.closeResources(); err != nil {
		return err
	}

	app.logger.Info("auth service stopped")
	return nil
}

// closeResources drains activity, then disconnects MQTT and the database.
func (app *Application) closeResources() error {
	if app.asyncRecorder != nil {
		app.asyncRecorder.Stop()
	}
	activity.DisconnectMQTT(app.mqttClient)

	if err := app.db.Close(); err != nil {
		app.logger.Error("error closing database", "error", err)
		return err
	}
	return nil
}

// initDatabase opens the configured driver and applies migrations
func (app *Application) initDatabase() error {
	var (
		db  store.Store
		err error
	)
	switch app.cfg.DatabaseDriver {
	case DriverPostgres:
		db, err = postgres.NewStore(app.cfg.DatabaseURL)
	default:
		db, err = sqlite.NewStore(sqlite.FileDSN(app.cfg.DatabaseFile))
	}
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	app.db = db

	if err := db.ApplyMigrations(); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to apply database migrations: %w", err)
	}

	app.logger.Info("database migrations applied successfully", "driver", app.cfg.DatabaseDriver)
	return nil
}

// initActivity builds the recorder and its sinks. The MQTT sink is optional
// and a broker that cannot be reached only disables it.
func (app *Application) initActivity() error {
	if !app.cfg.ActivityLogEnabled {
		app.recorder = activity.Nop{}
		app.logger.Info("activity logging disabled")
		return nil
	}

	sinks := []activity.Sink{activity.StoreSink{Repo: app.db.ActivityLogs()}}

	if app.cfg.MQTTBrokerURL != "" {
		client, err := activity.ConnectMQTT(app.cfg.MQTTBrokerURL, app.cfg.MQTTClientID)
		if err != nil {
			app.logger.Warn("mqtt unavailable, activity will not be published",
				"broker", app.cfg.MQTTBrokerURL, "error", err)
		} else {
			app.mqttClient = client
			sinks = append(sinks, activity.MQTTSink{Client: client, Prefix: app.cfg.MQTTTopicPrefix, QoS: 1})
			app.logger.Info("publishing activity to mqtt", "broker", app.cfg.MQTTBrokerURL, "prefix", app.cfg.MQTTTopicPrefix)
		}
	}

	app.asyncRecorder = activity.NewAsyncRecorder(app.logger, app.cfg.ActivityLogBuffer, sinks...)
	app.recorder = app.asyncRecorder
	return nil
}

// initServices initializes all business logic services
func (app *Application) initServices() error {
	secret, err := LoadSigningSecret(app.cfg, app.logger)
	if err != nil {
		return err
	}
	signer, verifier, err := newTokenKeys(app.cfg, secret)
	if err != nil {
		return fmt.Errorf("failed to initialize JWT keys: %w", err)
	}

	pepper, err := cryptox.LoadOrCreatePepper(app.cfg.PepperFile)
	if err != nil {
		return fmt.Errorf("failed to load pepper: %w", err)
	}

	switch app.cfg.RevocationBackend {
	case RevocationMemory:
		app.memoryCache = revocation.NewMemoryCache()
		app.revocationCache = app.memoryCache
		app.logger.Warn("in-memory revocation: revoked tokens become valid again after a restart")
	default:
		app.revocationCache = revocation.NewStoreCache(app.db.RevokedTokens())
	}
	policy := revocation.FailOpen
	if app.cfg.RevocationFailClosed {
		policy = revocation.FailClosed
	}

	app.tokenService = &service.TokenService{
		Signer:        signer,
		Verifier:      verifier,
		Store:         app.db,
		Revocations:   revocation.NewStore(app.revocationCache, policy),
		Recorder:      app.recorder,
		Issuer:        app.cfg.Issuer,
		AccessTTL:     app.cfg.AccessTTL,
		RefreshWindow: app.cfg.RefreshWindow,
	}

	app.userService = &service.UserService{
		Store:    app.db,
		Hasher:   cryptox.NewHasher(pepper),
		Recorder: app.recorder,
	}

	app.membershipService = &service.MembershipService{
		Store:      app.db,
		Recorder:   app.recorder,
		MaxMembers: app.cfg.TeamMaxMembers,
	}
	app.invitationService = &service.InvitationService{
		Store:      app.db,
		Members:    app.membershipService,
		Recorder:   app.recorder,
		TTL:        app.cfg.InvitationTTL,
		MaxPending: app.cfg.InvitationMaxPending,
	}
	app.teamService = &service.TeamService{
		Store:    app.db,
		Members:  app.membershipService,
		Recorder: app.recorder,
	}

	app.housekeepingService = service.NewHousekeepingService(
		app.db,
		app.logger,
		app.cfg.HousekeepingInterval,
	)
	app.housekeepingService.ActivityRetention = app.cfg.ActivityLogRetention
	if app.memoryCache != nil {
		app.housekeepingService.Cache = app.memoryCache
	}

	app.logger.Info("token service configured",
		"algorithm", signer.Alg(),
		"issuer", app.cfg.Issuer,
		"access_ttl", app.cfg.AccessTTL,
		"refresh_window", app.cfg.RefreshWindow,
		"revocation", app.cfg.RevocationBackend,
		"revocation_policy", policy.String(),
	)
	return nil
}

// initHTTP initializes the HTTP router and server
func (app *Application) initHTTP() {
	router := httpapi.NewRouter(BuildVersion, app.db, app.logger)

	router.RevocationCache = app.revocationCache
	router.TokenService = app.tokenService
	router.UserService = app.userService
	router.TeamService = app.teamService
	router.MembershipService = app.membershipService
	router.InvitationService = app.invitationService
	router.ApplyRoutes()

	app.router = router

	app.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", app.cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 3 * time.Second,
	}
}
