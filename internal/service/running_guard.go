package service

import (
	"context"
	"sync"
	"time"
)

// ExportedRunningGuard is an exported alias so _test packages can test the guard.
type ExportedRunningGuard = runningJobsGuard

// ─────────────────────────────────────────────────────────────
// runningJobsGuard — one run per job key, with its start time
// ─────────────────────────────────────────────────────────────

// runningJobsGuard lets a single run of each job key proceed at a time and
// remembers when that run started. The zero value is ready to use.
type runningJobsGuard struct {
	mu      sync.Mutex
	started map[string]time.Time
	wg      sync.WaitGroup
}

// TryLock starts a run of key. It returns false if one is already running.
func (g *runningJobsGuard) TryLock(key string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if _, ok := g.started[key]; ok {
		return false
	}
	if g.started == nil {
		g.started = make(map[string]time.Time)
	}
	g.started[key] = time.Now()
	g.wg.Add(1)
	return true
}

// Unlock ends the run of key and returns how long it held the key. Must only
// follow a successful TryLock.
func (g *runningJobsGuard) Unlock(key string) time.Duration {
	g.mu.Lock()
	defer g.mu.Unlock()
	start := g.started[key]
	delete(g.started, key)
	g.wg.Done()
	return time.Since(start)
}

// Elapsed reports how long the current run of key has been going.
func (g *runningJobsGuard) Elapsed(key string) (time.Duration, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	start, ok := g.started[key]
	if !ok {
		return 0, false
	}
	return time.Since(start), true
}

// WaitAll blocks until every run has ended or ctx is done.
func (g *runningJobsGuard) WaitAll(ctx context.Context) {
	done := make(chan struct{})
	go func() {
		g.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-ctx.Done():
	}
}
