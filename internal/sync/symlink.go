package sync

import (
	"context"
	"fmt"
	"log/slog"
	"path"
	"path/filepath"
)

// SymlinkTask records a symlink seen during the walk. Resolving it
// against the store during the walk could reference a target not yet
// synced in the same run, so materialization is deferred to a second
// pass over the then-consistent tree. The cost of that choice: links are
// represented remotely as plain copies and get re-checked every run.
type SymlinkTask struct {
	// Source is the symlink's location relative to the sync root.
	Source string

	// TargetRel is the path from the symlink's location to its resolved
	// filesystem target.
	TargetRel string
}

// deferSymlink resolves the link target on the local filesystem and
// records where the remote copy will have to point. No store calls
// happen here.
func (e *Engine) deferSymlink(localPath string) (SymlinkTask, error) {
	target, err := filepath.EvalSymlinks(localPath)
	if err != nil {
		return SymlinkTask{}, fmt.Errorf("resolve symlink: %w", err)
	}

	source, err := filepath.Rel(e.cfg.SourceDir, localPath)
	if err != nil {
		return SymlinkTask{}, err
	}

	// The target is fully canonical, so the base it is relativized
	// against must be too. The sync root itself may sit behind a
	// symlinked path component even though everything below it is a real
	// directory.
	dir, err := filepath.EvalSymlinks(filepath.Dir(localPath))
	if err != nil {
		return SymlinkTask{}, fmt.Errorf("resolve symlink parent: %w", err)
	}

	targetRel, err := filepath.Rel(dir, target)
	if err != nil {
		return SymlinkTask{}, err
	}

	return SymlinkTask{
		Source:    filepath.ToSlash(source),
		TargetRel: filepath.ToSlash(targetRel),
	}, nil
}

// resolveSymlinks materializes deferred symlinks as copies of their
// target's current remote state. Runs strictly after the walk has been
// flushed. A failing symlink is counted and skipped, never fatal.
func (e *Engine) resolveSymlinks(ctx context.Context, tasks []SymlinkTask) {
	for _, task := range tasks {
		if err := e.resolveSymlink(ctx, task); err != nil {
			e.errs.Record(task.Source, err)
		}
	}
}

func (e *Engine) resolveSymlink(ctx context.Context, task SymlinkTask) error {
	src := path.Join(e.cfg.DestPath, task.Source)
	target := path.Join(path.Dir(src), task.TargetRel)

	targetStat, err := e.store.Stat(ctx, target)
	if err != nil {
		return fmt.Errorf("stat link target %s: %w", target, err)
	}

	// Idempotent: repeat runs with an unchanged target copy nothing.
	if cur, err := e.store.Stat(ctx, src); err == nil && cur.Hash == targetStat.Hash {
		slog.Debug("symlink up to date", "path", src, "hash", cur.Hash)
		return nil
	}

	if err := e.store.CopyHash(ctx, targetStat.Hash, src); err != nil {
		return fmt.Errorf("copy %s: %w", targetStat.Hash, err)
	}
	slog.Info("copied", "hash", targetStat.Hash, "path", src)
	return nil
}
