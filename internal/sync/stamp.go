package sync

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/gofrs/flock"

	"github.com/jcaesar/ipfs-sync/internal/utils"
)

// StampFile persists the change-time threshold between runs as ASCII
// unix seconds. Reads fall back to the zero time (full resync) instead
// of failing the run; writes go through a temp file and rename, under an
// advisory lock so concurrent runs sharing the file cannot interleave.
type StampFile struct {
	path string
	lock *flock.Flock
}

func NewStampFile(path string) *StampFile {
	return &StampFile{
		path: path,
		lock: flock.New(path + ".lock"),
	}
}

// Lock takes the advisory lock for the duration of a run.
func (s *StampFile) Lock() error {
	if err := utils.EnsureParent(s.path); err != nil {
		return fmt.Errorf("stamp dir: %w", err)
	}
	return s.lock.Lock()
}

func (s *StampFile) Unlock() error {
	return s.lock.Unlock()
}

// Read returns the persisted threshold. A missing or malformed file is a
// warning, not an error: the zero threshold forces a full resync.
func (s *StampFile) Read() time.Time {
	raw, err := os.ReadFile(s.path)
	if err != nil {
		slog.Warn("sync-from stamp unreadable, forcing full resync", "path", s.path, "error", err)
		return time.Unix(0, 0)
	}

	secs, err := strconv.ParseInt(strings.TrimSpace(string(raw)), 10, 64)
	if err != nil {
		slog.Warn("sync-from stamp malformed, forcing full resync", "path", s.path, "error", err)
		return time.Unix(0, 0)
	}

	return time.Unix(secs, 0)
}

// Write persists t atomically via a temp file in the same directory.
func (s *StampFile) Write(t time.Time) error {
	tmp, err := os.CreateTemp(filepath.Dir(s.path), filepath.Base(s.path)+".tmp.*")
	if err != nil {
		return fmt.Errorf("create temp stamp: %w", err)
	}
	tmpPath := tmp.Name()

	success := false
	defer func() {
		if !success {
			tmp.Close()
			os.Remove(tmpPath)
		}
	}()

	if _, err := fmt.Fprintf(tmp, "%d\n", t.Unix()); err != nil {
		return fmt.Errorf("write temp stamp: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("sync temp stamp: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp stamp: %w", err)
	}
	if err := os.Rename(tmpPath, s.path); err != nil {
		return fmt.Errorf("rename stamp: %w", err)
	}

	success = true
	return nil
}
