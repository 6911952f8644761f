package accesslog

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"stagehand-hq/stagehand/pkg/config"
)

// Pruner deletes journal entries older than the retention window, on a
// cron schedule.
type Pruner struct {
	store         *Store
	retentionDays int
	schedule      string

	cron    *cron.Cron
	mu      sync.Mutex
	running bool
	logger  *slog.Logger
}

// NewPruner creates a pruner for the given store.
func NewPruner(store *Store, cfg *config.AccessLogConfig) *Pruner {
	return &Pruner{
		store:         store,
		retentionDays: cfg.RetentionDays,
		schedule:      cfg.PruneSchedule,
		cron:          cron.New(),
		logger:        slog.Default().With("component", "accesslog.pruner"),
	}
}

// Prune deletes records older than the retention window and returns how
// many were removed. A retention of 0 days disables pruning.
func (p *Pruner) Prune(ctx context.Context) (int64, error) {
	if p.retentionDays <= 0 {
		return 0, nil
	}

	cutoff := time.Now().AddDate(0, 0, -p.retentionDays)
	return p.store.DeleteBefore(ctx, cutoff)
}

// Start begins scheduled pruning. If the schedule is empty, the pruner
// does nothing.
//
// Common cron expressions:
//   - "0 3 * * *"   - Daily at 3 AM
//   - "0 */6 * * *" - Every 6 hours
func (p *Pruner) Start(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.schedule == "" || p.retentionDays <= 0 {
		p.logger.Info("access log pruning not configured, skipping scheduler")
		return nil
	}

	if _, err := cron.ParseStandard(p.schedule); err != nil {
		return fmt.Errorf("invalid cron schedule %q: %w", p.schedule, err)
	}

	if _, err := p.cron.AddFunc(p.schedule, func() {
		p.runPruning(ctx)
	}); err != nil {
		return fmt.Errorf("failed to schedule pruning: %w", err)
	}

	p.cron.Start()
	p.running = true

	p.logger.Info("access log pruning scheduled",
		"schedule", p.schedule,
		"retention_days", p.retentionDays,
	)

	go func() {
		<-ctx.Done()
		p.Stop()
	}()

	return nil
}

// runPruning executes a pruning cycle.
func (p *Pruner) runPruning(ctx context.Context) {
	deleted, err := p.Prune(ctx)
	if err != nil {
		p.logger.Error("scheduled pruning failed", "error", err)
		return
	}

	if deleted > 0 {
		p.logger.Info("pruned expired access log records", "deleted_count", deleted)
	} else {
		p.logger.Debug("scheduled pruning completed, no records deleted")
	}
}

// Stop stops the scheduler and waits for any running job to complete.
func (p *Pruner) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.cron != nil && p.running {
		ctx := p.cron.Stop()
		<-ctx.Done()
		p.running = false
		p.logger.Info("access log pruning stopped")
	}
}

// IsRunning returns true if the scheduler is running.
func (p *Pruner) IsRunning() bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.running
}
