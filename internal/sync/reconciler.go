package sync

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path"

	"github.com/dustin/go-humanize"

	"github.com/jcaesar/ipfs-sync/internal/utils"
)

// reconcileDir mirrors localDir into the remote directory at remotePath
// and recurses into subdirectories. Remote children are tracked as a
// name set seeded from the listing and depleted as local entries claim
// their names; whatever remains afterwards is stale and removed. This is
// set reconciliation, so correctness does not depend on the order the
// filesystem yields entries in.
//
// Symlinks are not resolved against the store here; they are returned as
// deferred tasks for the second pass.
func (e *Engine) reconcileDir(ctx context.Context, localDir, remotePath string) []SymlinkTask {
	slog.Debug("entering directory", "path", remotePath)

	remote, err := e.remoteChildren(ctx, remotePath)
	if err != nil {
		e.errs.Record(remotePath, err)
		return nil
	}

	dents, err := os.ReadDir(localDir)
	if err != nil {
		e.errs.Record(localDir, err)
		return nil
	}

	var deferred []SymlinkTask
	for _, dent := range dents {
		tasks, err := e.processEntry(ctx, localDir, remotePath, dent, remote)
		if err != nil {
			e.errs.Record(path.Join(remotePath, dent.Name()), err)
			continue
		}
		deferred = append(deferred, tasks...)
	}

	// Every name no local entry claimed is stale. Remote subtrees of
	// locally deleted directories can be non-empty, hence recursive.
	for name := range remote {
		stale := path.Join(remotePath, name)
		if err := e.store.Remove(ctx, stale, true); err != nil {
			e.errs.Record(stale, err)
			continue
		}
		slog.Info("removed stale entry", "path", stale)
	}

	return deferred
}

// processEntry handles a single directory child. Failures are returned
// to the caller to be counted; they never stop sibling processing.
func (e *Engine) processEntry(ctx context.Context, localDir, remotePath string, dent os.DirEntry, remote map[string]RemoteEntry) ([]SymlinkTask, error) {
	name := dent.Name()
	prior, existed := remote[name]
	delete(remote, name)

	entry, err := readLocalEntry(localDir, dent)
	if err != nil {
		return nil, err
	}

	switch entry.Kind {
	case kindDir:
		return e.reconcileDir(ctx, entry.Path, path.Join(remotePath, name)), nil

	case kindSymlink:
		task, err := e.deferSymlink(entry.Path)
		if err != nil {
			return nil, err
		}
		slog.Debug("postponed symlink", "path", task.Source, "target", task.TargetRel)
		return []SymlinkTask{task}, nil

	default:
		var priorEnt *RemoteEntry
		if existed {
			priorEnt = &prior
		}
		return nil, e.uploadFile(ctx, entry, path.Join(remotePath, name), priorEnt)
	}
}

// uploadFile adds the file's content to the store and points the remote
// path at the resulting hash, unless the change filter rules it
// unchanged.
func (e *Engine) uploadFile(ctx context.Context, entry *localEntry, dst string, prior *RemoteEntry) error {
	if !shouldUpload(e.cfg, entry, prior) {
		slog.Debug("unchanged", "path", dst)
		return nil
	}

	hash, err := e.store.Add(ctx, entry.Path, e.cfg.NoCopy)
	if err != nil {
		return fmt.Errorf("add: %w", err)
	}

	if err := e.store.CopyHash(ctx, hash, dst); err != nil {
		return fmt.Errorf("copy %s: %w", hash, err)
	}
	slog.Info("copied", "hash", hash, "path", dst, "size", humanize.Bytes(uint64(entry.Size)))

	if err := e.flusher.Tick(ctx); err != nil {
		return fmt.Errorf("flush: %w", err)
	}
	return nil
}

// remoteChildren lists the remote directory, creating it fresh when the
// path is missing or a file is squatting on it. The squatter check goes
// through stat, not the listing call: listing a file succeeds and
// reports the file itself.
func (e *Engine) remoteChildren(ctx context.Context, remotePath string) (map[string]RemoteEntry, error) {
	stat, err := e.store.Stat(ctx, remotePath)
	if err == nil && stat.IsDir {
		entries, err := e.store.List(ctx, remotePath)
		if err != nil {
			return nil, fmt.Errorf("ls: %w", err)
		}
		children := make(map[string]RemoteEntry, len(entries))
		for _, ent := range entries {
			children[ent.Name] = ent
		}
		return children, nil
	}
	if err != nil {
		slog.Log(ctx, utils.LevelTrace, "stat failed", "path", remotePath, "error", err)
	}

	// Best effort: clear whatever is at the path, then recreate.
	_ = e.store.Remove(ctx, remotePath, true)
	if err := e.store.Mkdir(ctx, remotePath); err != nil {
		return nil, fmt.Errorf("mkdir: %w", err)
	}
	if stat, err := e.store.Stat(ctx, remotePath); err == nil {
		slog.Info("created directory", "hash", stat.Hash, "path", remotePath)
	}
	return map[string]RemoteEntry{}, nil
}
