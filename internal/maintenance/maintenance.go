// Package maintenance runs scheduled housekeeping jobs.
package maintenance

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/deeptattoo/deeptattoo-api/internal/config"
	"github.com/deeptattoo/deeptattoo-api/internal/domain"
	"github.com/deeptattoo/deeptattoo-api/internal/store"
	"github.com/robfig/cron/v3"
)

// UsagePruner deletes quota counters older than the retention period.
type UsagePruner struct {
	usage         store.UsageStore
	retentionDays int
	now           func() time.Time
	logger        *slog.Logger
}

// NewUsagePruner creates a pruner keeping retentionDays days of counters.
func NewUsagePruner(usage store.UsageStore, retentionDays int, logger *slog.Logger) *UsagePruner {
	return &UsagePruner{
		usage:         usage,
		retentionDays: retentionDays,
		now:           time.Now,
		logger:        logger.With("component", "usage_pruner"),
	}
}

// Run removes counters for calendar days before today minus the retention
// period.
func (p *UsagePruner) Run(ctx context.Context) (int64, error) {
	cutoff := domain.UsageDay(p.now()).AddDate(0, 0, -p.retentionDays)

	removed, err := p.usage.DeleteBefore(ctx, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to prune usage counters: %w", err)
	}

	p.logger.Info("pruned usage counters",
		slog.Int64("removed", removed),
		slog.Time("cutoff", cutoff))
	return removed, nil
}

// Scheduler runs maintenance jobs on a cron schedule.
type Scheduler struct {
	cron   *cron.Cron
	ctx    context.Context
	cancel context.CancelFunc
	logger *slog.Logger
}

// NewScheduler registers the usage pruner on cfg.Schedule, which accepts
// standard five-field cron specs and descriptors such as "@daily".
func NewScheduler(cfg config.MaintenanceConfig, usage store.UsageStore, logger *slog.Logger) (*Scheduler, error) {
	logger = logger.With("component", "maintenance")
	cronLog := cronLogger{logger: logger}

	s := &Scheduler{
		cron: cron.New(
			cron.WithLogger(cronLog),
			cron.WithChain(cron.Recover(cronLog), cron.SkipIfStillRunning(cronLog)),
		),
		logger: logger,
	}
	s.ctx, s.cancel = context.WithCancel(context.Background())

	pruner := NewUsagePruner(usage, cfg.UsageRetentionDays, logger)
	if _, err := s.cron.AddFunc(cfg.Schedule, func() {
		if _, err := pruner.Run(s.ctx); err != nil {
			logger.Error("usage pruning failed", "error", err)
		}
	}); err != nil {
		s.cancel()
		return nil, fmt.Errorf("invalid maintenance schedule %q: %w", cfg.Schedule, err)
	}

	return s, nil
}

// Start runs the scheduler in its own goroutine.
func (s *Scheduler) Start() {
	s.cron.Start()
	s.logger.Info("maintenance scheduler started", "jobs", len(s.cron.Entries()))
}

// Stop prevents new runs, cancels running jobs and waits for them until ctx
// is done.
func (s *Scheduler) Stop(ctx context.Context) {
	done := s.cron.Stop().Done()
	s.cancel()

	select {
	case <-done:
	case <-ctx.Done():
		s.logger.Warn("maintenance jobs still running at shutdown")
	}
}

// cronLogger adapts slog to the cron.Logger interface.
type cronLogger struct {
	logger *slog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Debug(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.logger.Error(msg, append(keysAndValues, "error", err)...)
}
