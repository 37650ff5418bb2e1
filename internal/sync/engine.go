package sync

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jonboulle/clockwork"
)

// Result is the terminal report of one run.
type Result struct {
	// RootHash is the content hash of the destination directory after
	// the final flush.
	RootHash string

	// Errors is the number of entries that failed without stopping the
	// walk.
	Errors int
}

// Engine mirrors one local directory tree onto an MFS path. A run is
// one-shot and strictly sequential: tree walk, flush, symlink pass,
// flush, report. The destination subtree is assumed exclusively owned by
// the run for its duration.
type Engine struct {
	store   Store
	cfg     *Config
	flusher *Flusher
	errs    *Tally
}

// NewEngine validates cfg and builds an engine around store. A nil clock
// means wall time; tests inject a fake one.
func NewEngine(store Store, cfg *Config, clock clockwork.Clock) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	var interval time.Duration
	if cfg.FlushEvery != nil {
		interval = *cfg.FlushEvery
	}

	return &Engine{
		store:   store,
		cfg:     cfg,
		flusher: NewFlusher(store, cfg.DestPath, interval, clock),
		errs:    &Tally{},
	}, nil
}

// Run executes the full sync and returns the resulting root hash along
// with the count of entries that failed. A non-nil error means the run
// could not complete at all and no result was produced.
func (e *Engine) Run(ctx context.Context) (*Result, error) {
	start := time.Now()

	deferred := e.reconcileDir(ctx, e.cfg.SourceDir, e.cfg.DestPath)

	// Commit the whole walk before touching symlinks, so every genuine
	// path has reached its final state for this run.
	if _, err := e.store.Flush(ctx, e.cfg.DestPath); err != nil {
		return nil, fmt.Errorf("flush after walk: %w", err)
	}

	e.resolveSymlinks(ctx, deferred)

	rootHash, err := e.store.Flush(ctx, e.cfg.DestPath)
	if err != nil {
		return nil, fmt.Errorf("final flush: %w", err)
	}
	if rootHash == "" {
		// Older daemons don't return the CID from flush.
		stat, err := e.store.Stat(ctx, e.cfg.DestPath)
		if err != nil {
			return nil, fmt.Errorf("stat destination root: %w", err)
		}
		rootHash = stat.Hash
	}

	slog.Info("sync finished",
		"root", rootHash,
		"errors", e.errs.Count(),
		"symlinks", len(deferred),
		"intervalFlushes", e.flusher.Flushes(),
		"took", time.Since(start),
	)

	return &Result{RootHash: rootHash, Errors: e.errs.Count()}, nil
}

// Err returns the aggregated per-entry errors of the run, nil if clean.
func (e *Engine) Err() error {
	return e.errs.Err()
}
