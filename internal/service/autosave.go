package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

const autosaveJob = "autosave"

// AutosaveOptions configures an Autosaver.
type AutosaveOptions struct {
	Schedule    string        // cron spec with a seconds field
	IdleTimeout time.Duration // 0 keeps idle pages open
}

// Autosaver periodically flushes dirty pages and closes idle ones. A tick
// that fires while the previous one is still running is skipped.
type Autosaver struct {
	editor *EditorService
	opts   AutosaveOptions
	logger *zap.Logger

	mu    sync.Mutex
	cron  *cron.Cron
	guard runningJobsGuard
}

func NewAutosaver(editor *EditorService, opts AutosaveOptions, logger *zap.Logger) *Autosaver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Autosaver{editor: editor, opts: opts, logger: logger}
}

// Start schedules RunOnce. Calling Start again replaces the schedule.
func (a *Autosaver) Start(ctx context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.cron != nil {
		a.cron.Stop()
	}
	c := cron.New(cron.WithSeconds())
	if _, err := c.AddFunc(a.opts.Schedule, func() { a.RunOnce(ctx) }); err != nil {
		return fmt.Errorf("autosave: invalid schedule %q: %w", a.opts.Schedule, err)
	}
	c.Start()
	a.cron = c
	a.logger.Info("autosave scheduled", zap.String("schedule", a.opts.Schedule), zap.Duration("idle_timeout", a.opts.IdleTimeout))
	return nil
}

// RunOnce flushes dirty pages and evicts idle ones. It reports false when
// another run was already in progress.
func (a *Autosaver) RunOnce(ctx context.Context) bool {
	if !a.guard.TryLock(autosaveJob) {
		autosaveRunsTotal.WithLabelValues("skipped").Inc()
		running, _ := a.guard.Elapsed(autosaveJob)
		a.logger.Debug("autosave still running, skipping tick", zap.Duration("running_for", running))
		return false
	}

	var (
		saved   int
		evicted []string
	)
	defer func() {
		took := a.guard.Unlock(autosaveJob)
		autosaveDuration.Observe(took.Seconds())
		if saved > 0 || len(evicted) > 0 {
			a.logger.Info("autosave", zap.Int("saved", saved), zap.Strings("evicted", evicted), zap.Duration("took", took))
		}
	}()

	saved, err := a.editor.FlushDirty(ctx)
	if err != nil {
		a.logger.Warn("autosave flush failed", zap.Error(err))
	}
	if a.opts.IdleTimeout > 0 {
		evicted, err = a.editor.EvictIdle(ctx, a.opts.IdleTimeout)
		if err != nil {
			a.logger.Warn("autosave eviction failed", zap.Error(err))
		}
	}
	autosaveRunsTotal.WithLabelValues("ran").Inc()
	return true
}

// Stop halts the schedule and waits for a running tick, bounded by ctx.
func (a *Autosaver) Stop(ctx context.Context) {
	a.mu.Lock()
	c := a.cron
	a.cron = nil
	a.mu.Unlock()
	if c != nil {
		select {
		case <-c.Stop().Done():
		case <-ctx.Done():
		}
	}
	a.guard.WaitAll(ctx)
}
