package entrypoint

import (
	"context"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/bookworm/internal/auth"
	"github.com/mrlokans/bookworm/internal/config"
	httpapi "github.com/mrlokans/bookworm/internal/http"
	"github.com/mrlokans/bookworm/internal/metadata"
	"github.com/mrlokans/bookworm/internal/scheduler"
	"github.com/mrlokans/bookworm/internal/tasks"
)

// auditCleanupSchedule runs retention cleanup daily at 03:30.
const auditCleanupSchedule = "30 3 * * *"

// ShutdownFunc is called during graceful shutdown to clean up resources.
type ShutdownFunc func(ctx context.Context)

// Serve runs the HTTP server until SIGINT or SIGTERM, then shuts down gracefully.
func Serve(router *gin.Engine, cfg *config.Config, onShutdown ShutdownFunc) error {
	timeout := time.Duration(cfg.Global.ShutdownTimeoutInSeconds) * time.Second

	srv := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("Starting server", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-errCh:
		return fmt.Errorf("listen: %w", err)
	case <-quit:
	}
	slog.Info("Shutting down server", "timeout", timeout)

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	// Background work stops first so no task writes after the store closes.
	if onShutdown != nil {
		onShutdown(ctx)
	}

	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}
	slog.Info("Server exiting")
	return nil
}

// Run wires every component and serves the HTTP API.
func Run(cfg *config.Config, version string) error {
	slog.Info("Starting BookWorm", "version", version)

	app, err := NewApp(cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := app.Close(); err != nil {
			slog.Error("Error closing database", "error", err)
		}
	}()

	bgCtx, cancelBackground := context.WithCancel(context.Background())
	defer cancelBackground()

	var enricher *metadata.Enricher
	if cfg.Metadata.Enabled {
		client := metadata.NewOpenLibraryClient(cfg.Metadata.OpenLibraryBaseURL, cfg.Metadata.RequestsPerSecond)
		enricher = metadata.NewEnricher(client, app.Books, app.Audit)
	}

	var taskClient *tasks.Client
	if cfg.Tasks.Enabled {
		mainPath := cfg.Database.Path
		if !app.DB.IsSQLite() {
			mainPath = config.DefaultDatabasePath
		}
		taskClient, err = tasks.NewClient(tasks.DatabasePath(mainPath, cfg.Tasks.DatabasePath), tasks.ConfigFrom(cfg.Tasks, cfg.Audit))
		if err != nil {
			return fmt.Errorf("failed to initialize task queue: %w", err)
		}
		defer func() {
			if err := taskClient.Close(); err != nil {
				slog.Error("Error closing task client", "error", err)
			}
		}()

		var bookEnricher tasks.BookEnricher
		if enricher != nil {
			bookEnricher = enricher
		}
		taskClient.RegisterDefaults(bookEnricher, app.Audit)
		go taskClient.Start(bgCtx)
	}

	exportScheduler := scheduler.NewExportScheduler(app.Books, app.Settings, app.Audit)
	retentionDays := tasks.ConfigFrom(cfg.Tasks, cfg.Audit).AuditRetentionDays
	err = exportScheduler.AddMaintenanceJob(auditCleanupSchedule, "audit_cleanup", func() {
		if taskClient != nil {
			if _, err := taskClient.Enqueue(bgCtx, tasks.CleanupAuditEventsTask{RetentionDays: retentionDays}); err != nil {
				slog.Error("Failed to enqueue audit cleanup", "error", err)
			}
			return
		}
		removed, err := app.Audit.DeleteOldEvents(tasks.AuditRetention(retentionDays))
		if err != nil {
			slog.Error("Audit cleanup failed", "error", err)
			return
		}
		slog.Info("Audit cleanup finished", "removed", removed)
	})
	if err != nil {
		return err
	}
	if err := exportScheduler.Start(bgCtx); err != nil {
		return fmt.Errorf("failed to start export scheduler: %w", err)
	}

	routerCfg := httpapi.RouterConfig{
		Library:        app.Library,
		ImportPipeline: app.ImportPipeline(),
		Health:         app.DB,
		Audit:          app.Audit,
		ExportSettings: app.Settings,
		ExportRunner:   exportScheduler,
		AuthConfig:     cfg.Auth,
		SecureCookies:  cfg.Auth.SecureCookies,
		Version:        version,
	}
	if enricher != nil {
		routerCfg.Enricher = enricher
	}
	if taskClient != nil {
		routerCfg.TaskQueue = taskClient
	}

	if err := configureAuth(app, &routerCfg); err != nil {
		return err
	}
	rateLimiter := routerCfg.RateLimiter

	router := httpapi.NewRouter(routerCfg)

	onShutdown := func(ctx context.Context) {
		exportScheduler.Stop()
		if taskClient != nil {
			taskClient.Stop(ctx)
		}
		if rateLimiter != nil {
			rateLimiter.Stop()
		}
		cancelBackground()
	}

	return Serve(router, cfg, onShutdown)
}

// configureAuth fills the auth fields of routerCfg. In "none" mode only the
// service is set so GET /api/session can report the mode.
func configureAuth(app *App, routerCfg *httpapi.RouterConfig) error {
	cfg := app.Config.Auth
	service := app.AuthService()
	routerCfg.AuthService = service

	if !service.IsAuthEnabled() {
		slog.Info("Authentication mode: none (no authentication required)")
		return nil
	}
	slog.Info("Authentication mode: local")

	// Sessions live in the SQLite file; other stores keep them in memory.
	var sqlDB *sql.DB
	if app.DB.IsSQLite() {
		db, err := app.DB.SQLDB()
		if err != nil {
			return fmt.Errorf("failed to get SQL DB for sessions: %w", err)
		}
		sqlDB = db
	}
	sessionManager, err := auth.NewSessionManager(sqlDB, cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize session manager: %w", err)
	}
	routerCfg.SessionManager = sessionManager
	routerCfg.AuthMiddleware = auth.NewMiddleware(service, sessionManager, cfg)
	routerCfg.RateLimiter = auth.NewRateLimiter(cfg)

	secret, err := csrfSecret(cfg.SessionSecret)
	if err != nil {
		return err
	}
	routerCfg.CSRFSecret = secret

	if !service.IsSetUp() {
		slog.Warn("No owner password set. POST /setup or run 'bookworm set-password' to create one.")
	}
	return nil
}

// csrfSecret decodes a hex secret, uses a non-hex value as raw bytes, or
// generates a fresh one. Generated secrets invalidate tokens on restart.
func csrfSecret(configured string) ([]byte, error) {
	if configured != "" {
		if secret, err := hex.DecodeString(configured); err == nil && len(secret) >= 32 {
			return secret, nil
		}
		return []byte(configured), nil
	}

	generated, err := auth.GenerateSessionSecret()
	if err != nil {
		return nil, fmt.Errorf("failed to generate CSRF secret: %w", err)
	}
	slog.Info("Generated session secret (set AUTH_SESSION_SECRET to persist)")
	return hex.DecodeString(generated)
}
