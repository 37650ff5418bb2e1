package sync

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jcaesar/ipfs-sync/internal/utils"
)

// Config carries the knobs for one sync run.
type Config struct {
	// SourceDir is the absolute local directory to mirror.
	SourceDir string

	// DestPath is the MFS directory to mirror into.
	DestPath string

	// NoCopy adds files by filestore reference instead of streaming
	// their bytes to the daemon.
	NoCopy bool

	// SyncFrom, when non-nil, switches the change filter to change-time
	// mode: files whose ctime is at or below the threshold are presumed
	// unchanged.
	SyncFrom *time.Time

	// FlushEvery bounds commit frequency during the walk. Nil means the
	// engine flushes only at phase boundaries.
	FlushEvery *time.Duration
}

func (c *Config) Validate() error {
	if c.SourceDir == "" {
		return errors.New("source directory is required")
	}
	if !utils.DirExists(c.SourceDir) {
		return fmt.Errorf("source directory %q does not exist", c.SourceDir)
	}
	if c.DestPath == "" || !strings.HasPrefix(c.DestPath, "/") {
		return fmt.Errorf("destination %q must be an absolute MFS path", c.DestPath)
	}
	if c.FlushEvery != nil && *c.FlushEvery <= 0 {
		return errors.New("flush interval must be positive")
	}
	return nil
}
