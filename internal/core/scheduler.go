package core

// scheduler.go runs background maintenance for the audit log.
//
// The pruner is long-running and context-aware for graceful shutdown. It logs
// failures but never stops the application because a single run failed.

import (
	"context"
	"log/slog"
	"time"
)

// PruneConfig holds configuration for the audit pruner.
type PruneConfig struct {
	RetentionDays int           // Days to keep entries (default: 365)
	BatchSize     int           // Rows per delete batch (default: 5000)
	Interval      time.Duration // How often to run (default: 24h)
}

func (c PruneConfig) withDefaults() PruneConfig {
	if c.RetentionDays <= 0 {
		c.RetentionDays = 365
	}
	if c.BatchSize <= 0 {
		c.BatchSize = 5000
	}
	if c.Interval <= 0 {
		c.Interval = 24 * time.Hour
	}
	return c
}

// StartAuditPruner periodically removes expired audit entries. It runs once
// immediately, then every Interval, and returns when ctx is cancelled.
func (s *Service) StartAuditPruner(ctx context.Context, cfg PruneConfig) {
	cfg = cfg.withDefaults()
	slog.Info("audit pruner started",
		"retention_days", cfg.RetentionDays,
		"batch_size", cfg.BatchSize,
		"interval", cfg.Interval,
	)

	s.runPruneJob(ctx, cfg)

	ticker := time.NewTicker(cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("audit pruner stopped")
			return
		case <-ticker.C:
			s.runPruneJob(ctx, cfg)
		}
	}
}

// runPruneJob performs one prune cycle.
func (s *Service) runPruneJob(ctx context.Context, cfg PruneConfig) {
	start := time.Now()
	pruned, err := s.PruneAudit(ctx, cfg.RetentionDays, cfg.BatchSize)
	if err != nil {
		slog.Error("audit prune failed", "error", err, "entries_pruned", pruned)
		return
	}
	slog.Info("audit prune completed",
		"entries_pruned", pruned,
		"duration_ms", time.Since(start).Milliseconds(),
	)
}
