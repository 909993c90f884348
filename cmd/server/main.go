package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/JonMunkholm/crefinex/internal/auth"
	"github.com/JonMunkholm/crefinex/internal/config"
	"github.com/JonMunkholm/crefinex/internal/core"
	_ "github.com/JonMunkholm/crefinex/internal/core/resources" // Register all resources
	"github.com/JonMunkholm/crefinex/internal/database"
	"github.com/JonMunkholm/crefinex/internal/logging"
	"github.com/JonMunkholm/crefinex/internal/web"
	"github.com/joho/godotenv"
)

func main() {
	// Load .env file if it exists (Overload overwrites existing env vars)
	if err := godotenv.Overload(); err != nil {
		slog.Info("no .env file found, using environment variables")
	} else {
		slog.Info("loaded .env file (overwriting existing env vars)")
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	closeLogs := logging.Setup(logging.Options{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		SeqURL: cfg.Logging.SeqURL,
	})
	defer closeLogs()

	slog.Info("configuration loaded",
		"port", cfg.Server.Port,
		"db_max_conns", cfg.Database.MaxConns,
		"mutation_max_concurrent", cfg.Mutation.MaxConcurrent,
		"rate_limit_enabled", cfg.Rate.Enabled,
	)

	ctx := context.Background()
	pool, err := database.Connect(ctx, cfg.Database)
	if err != nil {
		slog.Error("database unavailable", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	service := core.NewService(pool, core.Options{
		MaxIDs:        cfg.Mutation.MaxIDs,
		DeleteTimeout: cfg.Mutation.Timeout,
		Limiter:       core.NewMutationLimiter(cfg.Mutation.MaxConcurrent, cfg.Mutation.MaxWaitTime),
	})

	slog.Info("resources registered",
		"count", core.Registered(),
		"groups", len(core.Groups()),
	)
	for _, group := range core.Groups() {
		slog.Debug("resource group", "group", group, "resources", len(core.ByGroup(group)))
	}

	// Cancelled on shutdown; stops the pruner and the rate limiter sweeps.
	jobCtx, cancelJobs := context.WithCancel(context.Background())
	defer cancelJobs()

	authn := auth.NewAuthenticator(auth.NewPGUserStore(pool))
	server := web.NewServer(jobCtx, cfg, service, authn)

	go service.StartAuditPruner(jobCtx, core.PruneConfig{
		RetentionDays: cfg.Audit.RetentionDays,
		BatchSize:     cfg.Audit.BatchSize,
		Interval:      cfg.Audit.PruneInterval,
	})

	// Graceful shutdown
	done := make(chan struct{})
	go func() {
		defer close(done)
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh

		slog.Info("shutting down...")
		cancelJobs()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		// Wait for active bulk deletes to complete (with timeout)
		limiter := service.Limiter()
		if active := limiter.ActiveCount(); active > 0 {
			slog.Info("waiting for deletes to complete", "active", active)
			if err := limiter.WaitForDrain(shutdownCtx); err != nil {
				slog.Warn("deletes did not complete in time", "error", err)
			} else {
				slog.Info("all deletes completed")
			}
		}

		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("shutdown error", "error", err)
		}
	}()

	slog.Info("server starting", "addr", cfg.Server.Addr())
	if err := server.Start(); !errors.Is(err, http.ErrServerClosed) {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
	<-done
	slog.Info("server stopped")
}
