// Package refresh reloads application records on a cron schedule and keeps
// the latest good snapshot for readers.
package refresh

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/robfig/cron/v3"

	appLog "jobcal/internal/log"
	"jobcal/internal/model"
	"jobcal/internal/store"
)

// Snapshot is an immutable view of the records at LoadedAt.
type Snapshot struct {
	Records  []model.ApplicationRecord
	LoadedAt time.Time
}

// Hook runs after every successful refresh.
type Hook func(ctx context.Context, snap Snapshot)

// Runner owns the refresh schedule. Readers call Snapshot at any time; a
// failed reload keeps the previous snapshot.
type Runner struct {
	src  store.Source
	spec string
	loc  *time.Location
	now  func() time.Time

	snap atomic.Pointer[Snapshot]

	mu    sync.Mutex
	hooks []Hook
	cron  *cron.Cron
	done  chan struct{}
}

// New builds a Runner reading from src on the 5-field cron spec, evaluated
// in loc.
func New(src store.Source, spec string, loc *time.Location) *Runner {
	if loc == nil {
		loc = time.Local
	}
	r := &Runner{src: src, spec: spec, loc: loc, now: time.Now}
	r.snap.Store(&Snapshot{Records: []model.ApplicationRecord{}})
	return r
}

// OnRefresh registers a hook.
func (r *Runner) OnRefresh(h Hook) {
	r.mu.Lock()
	r.hooks = append(r.hooks, h)
	r.mu.Unlock()
}

// Snapshot returns the latest good snapshot. Before the first successful
// refresh it holds no records.
func (r *Runner) Snapshot() Snapshot {
	return *r.snap.Load()
}

// Refresh loads records now.
func (r *Runner) Refresh(ctx context.Context) error {
	started := r.now()
	records, err := r.src.Applications(ctx)
	if err != nil {
		appLog.Error("refresh failed; keeping previous snapshot", err,
			"previous_count", len(r.Snapshot().Records))
		return err
	}
	if records == nil {
		records = []model.ApplicationRecord{}
	}

	snap := Snapshot{Records: records, LoadedAt: r.now()}
	r.snap.Store(&snap)
	appLog.Info("refresh completed", "records", len(records), "took", snap.LoadedAt.Sub(started).String())

	r.mu.Lock()
	hooks := append([]Hook(nil), r.hooks...)
	r.mu.Unlock()
	for _, h := range hooks {
		h(ctx, snap)
	}
	return nil
}

// Start performs an initial refresh and schedules the rest. The schedule
// stops when ctx is canceled or Stop is called.
func (r *Runner) Start(ctx context.Context) error {
	if _, err := cron.ParseStandard(r.spec); err != nil {
		return fmt.Errorf("refresh: invalid cron spec %q: %w", r.spec, err)
	}

	if err := r.Refresh(ctx); err != nil && !errors.Is(err, context.Canceled) {
		appLog.Error("initial refresh failed; serving empty calendar until next run", err)
	}

	c := cron.New(cron.WithLocation(r.loc))
	if _, err := c.AddFunc(r.spec, func() {
		_ = r.Refresh(ctx)
	}); err != nil {
		return err
	}

	done := make(chan struct{})
	r.mu.Lock()
	r.cron = c
	r.done = done
	r.mu.Unlock()

	c.Start()
	appLog.Info("refresh scheduled", "cron", r.spec, "timezone", r.loc.String())

	go func() {
		select {
		case <-ctx.Done():
			r.Stop()
		case <-done:
		}
	}()
	return nil
}

// Stop halts the schedule and waits for a running refresh to finish.
func (r *Runner) Stop() {
	r.mu.Lock()
	c, done := r.cron, r.done
	r.cron, r.done = nil, nil
	r.mu.Unlock()
	if c == nil {
		return
	}
	close(done)
	<-c.Stop().Done()
}
