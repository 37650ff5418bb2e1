package sync

import (
	"context"
	"log/slog"
	"time"

	"github.com/jonboulle/clockwork"
)

// Flusher rate-limits explicit commit calls during a long walk. Commits
// are costly relative to per-file operations, so at most one is issued
// per interval no matter how many uploads tick it; the engine's phase
// boundaries guarantee final consistency regardless.
type Flusher struct {
	store    Store
	path     string
	interval time.Duration
	clock    clockwork.Clock
	deadline time.Time
	flushes  int
}

// NewFlusher creates a scheduler flushing path at most once per
// interval. A non-positive interval disables ticking entirely. A nil
// clock means wall time.
func NewFlusher(store Store, path string, interval time.Duration, clock clockwork.Clock) *Flusher {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Flusher{
		store:    store,
		path:     path,
		interval: interval,
		clock:    clock,
		deadline: clock.Now(),
	}
}

// Tick is called after every upload. It flushes when the current
// deadline has passed and arms the next one.
func (f *Flusher) Tick(ctx context.Context) error {
	if f.interval <= 0 {
		return nil
	}

	now := f.clock.Now()
	if !now.After(f.deadline) {
		return nil
	}

	if _, err := f.store.Flush(ctx, f.path); err != nil {
		return err
	}
	f.flushes++
	f.deadline = now.Add(f.interval)
	slog.Debug("interval flush", "path", f.path, "count", f.flushes)
	return nil
}

// Flushes returns the number of interval flushes issued so far.
func (f *Flusher) Flushes() int {
	return f.flushes
}
