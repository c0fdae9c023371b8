package entrypoint

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/mrlokans/bookshelf/internal/audit"
	"github.com/mrlokans/bookshelf/internal/auth"
	"github.com/mrlokans/bookshelf/internal/catalog"
	"github.com/mrlokans/bookshelf/internal/config"
	"github.com/mrlokans/bookshelf/internal/database"
	auditrepo "github.com/mrlokans/bookshelf/internal/database/audit"
	http_controllers "github.com/mrlokans/bookshelf/internal/http"
	"github.com/mrlokans/bookshelf/internal/scheduler"
	"github.com/mrlokans/bookshelf/internal/tasks"
)

// ShutdownFunc is called during graceful shutdown to clean up resources.
type ShutdownFunc func(ctx context.Context)

// Serve listens until ctx is cancelled or the process receives SIGINT or
// SIGTERM, then shuts the server down within the configured timeout.
func Serve(ctx context.Context, handler http.Handler, cfg *config.Config, onShutdown ShutdownFunc) error {
	timeout := time.Duration(cfg.Global.ShutdownTimeoutInSeconds) * time.Second

	srv := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	serveErr := make(chan error, 1)
	go func() {
		log.Info().Str("addr", srv.Addr).Msg("starting server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err, ok := <-serveErr:
		if ok {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info().Dur("timeout", timeout).Msg("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	// Stop background work first so nothing writes after the server is gone.
	if onShutdown != nil {
		onShutdown(shutdownCtx)
	}

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	log.Info().Msg("server exited")
	return nil
}

// Run wires the catalog, authentication, task queue and integrity sweep
// into the HTTP router and serves it.
func Run(ctx context.Context, cfg *config.Config, version string) error {
	log.Info().Str("version", version).Str("auth_mode", string(cfg.Auth.Mode)).Msg("starting bookshelf")

	db, err := database.NewDatabase(cfg.Database.Path)
	if err != nil {
		return err
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error().Err(err).Msg("error closing database")
		}
	}()

	reader := catalog.NewReader(db.DB)
	maintainer := catalog.NewMaintainer(db.DB)
	integrity := catalog.NewIntegrity(db.DB)
	auditService := audit.NewService(auditrepo.NewRepository(db.DB))

	sqlDB, err := db.DB.DB()
	if err != nil {
		return fmt.Errorf("failed to get SQL DB for sessions: %w", err)
	}
	sessionManager, err := auth.NewSessionManager(sqlDB, cfg.Auth)
	if err != nil {
		return fmt.Errorf("failed to initialize session manager: %w", err)
	}

	routerCfg := http_controllers.RouterConfig{
		Reader:         reader,
		Writer:         maintainer,
		Integrity:      integrity,
		Database:       db,
		Auditor:        auditService,
		AuditLog:       auditService,
		AuthConfig:     cfg.Auth,
		SessionManager: sessionManager,
		Version:        version,
	}

	switch cfg.Auth.Mode {
	case config.AuthModeNone:
		log.Warn().Str("host", cfg.HTTP.Host).Msg("authentication disabled: every visitor may edit the catalog")
		if cfg.HTTP.Host != config.LoopbackHost && cfg.HTTP.Host != "localhost" {
			log.Warn().Msg("AUTH_MODE=none is listening beyond loopback; set AUTH_MODE=local or github before exposing the server")
		}
	case config.AuthModeLocal:
		if cfg.Auth.MaintainerPasswordHash == "" {
			log.Warn().Msg("AUTH_MAINTAINER_PASSWORD_HASH is not set, nobody can log in. Generate one with 'bookshelf hash-password'")
		}
	case config.AuthModeGitHub:
		if cfg.GitHub.ClientID == "" || cfg.GitHub.ClientSecret == "" {
			return errors.New("github auth mode requires GITHUB_CLIENT_ID and GITHUB_CLIENT_SECRET")
		}
		routerCfg.GitHub = auth.NewGitHubProvider(cfg.GitHub)
		if len(cfg.GitHub.AllowedLogins) == 0 {
			log.Warn().Msg("GITHUB_ALLOWED_LOGINS is empty: any GitHub account may maintain the catalog")
		}
	default:
		return fmt.Errorf("unknown auth mode %q", cfg.Auth.Mode)
	}

	if cfg.Auth.Mode != config.AuthModeNone {
		routerCfg.CSRFSecret, err = csrfSecret(cfg.Auth.SessionSecret)
		if err != nil {
			return err
		}
	}

	var (
		taskClient *tasks.Client
		sweep      *scheduler.IntegritySweep
	)
	taskCtx, taskCancel := context.WithCancel(ctx)
	defer taskCancel()

	if cfg.Tasks.Enabled {
		taskClient, err = tasks.NewClient(cfg.Database.Path, tasks.Config{
			Workers:         cfg.Tasks.Workers,
			ReleaseAfter:    cfg.Tasks.ReleaseAfter,
			CleanupInterval: cfg.Tasks.CleanupInterval,
		})
		if err != nil {
			return fmt.Errorf("failed to initialize task queue: %w", err)
		}
		defer func() {
			if err := taskClient.Close(); err != nil {
				log.Error().Err(err).Msg("error closing task client")
			}
		}()

		taskClient.Register(
			tasks.NewIntegrityQueue(integrity, auditService),
			tasks.NewPruneAuditQueue(auditService),
		)
		taskClient.Start(taskCtx)
		routerCfg.TaskQueue = taskClient

		if cfg.IntegritySweep.Enabled {
			sweep = scheduler.NewIntegritySweep(taskClient, scheduler.SweepConfig{
				Schedule:           cfg.IntegritySweep.Schedule,
				Repair:             cfg.IntegritySweep.Repair,
				AuditRetentionDays: cfg.Audit.RetentionDays,
			})
			if err := sweep.Start(taskCtx); err != nil {
				return err
			}
			routerCfg.Sweep = sweep
		}
	} else if cfg.IntegritySweep.Enabled {
		log.Warn().Msg("integrity sweep needs the task queue; set TASKS_ENABLED=true to schedule it")
	}

	router, stopRouter, err := http_controllers.NewRouter(routerCfg)
	if err != nil {
		return fmt.Errorf("failed to build router: %w", err)
	}

	onShutdown := func(ctx context.Context) {
		stopRouter()
		if sweep != nil {
			sweep.Stop()
		}
		if taskClient != nil {
			taskClient.Stop(ctx)
		}
		taskCancel()
	}

	return Serve(ctx, router, cfg, onShutdown)
}

// csrfSecret decodes the configured session secret, hex or raw, or
// generates one for this process.
func csrfSecret(configured string) ([]byte, error) {
	if configured != "" {
		if secret, err := hex.DecodeString(configured); err == nil {
			return secret, nil
		}
		return []byte(configured), nil
	}

	secret, err := auth.GenerateSessionSecret()
	if err != nil {
		return nil, fmt.Errorf("failed to generate CSRF secret: %w", err)
	}
	log.Warn().Msg("generated a session secret; set AUTH_SESSION_SECRET to keep forms valid across restarts")
	return hex.DecodeString(secret)
}
