package sync

import (
	"fmt"
	"log/slog"

	"github.com/hashicorp/go-multierror"
)

// Tally counts per-entry failures without stopping the walk. It is
// threaded by reference through the recursion; a single entry's failure
// never propagates past its own processing.
type Tally struct {
	count int
	errs  *multierror.Error
}

// Record logs a failure with the identity of the entry it belongs to and
// adds it to the aggregate.
func (t *Tally) Record(subject string, err error) {
	t.count++
	t.errs = multierror.Append(t.errs, fmt.Errorf("%s: %w", subject, err))
	slog.Error("entry failed", "entry", subject, "error", err)
}

// Count returns the number of recorded failures.
func (t *Tally) Count() int {
	return t.count
}

// Err returns the combined error, or nil when the run was clean.
func (t *Tally) Err() error {
	return t.errs.ErrorOrNil()
}
