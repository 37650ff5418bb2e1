package sync

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"
	"unicode/utf8"
)

type entryKind int

const (
	kindFile entryKind = iota
	kindDir
	kindSymlink
)

var errBadName = errors.New("file name is not valid unicode")

// localEntry is per-visit metadata for one directory child, read fresh
// from the filesystem on every run.
type localEntry struct {
	Name       string
	Path       string
	Kind       entryKind
	Size       int64
	ChangeTime time.Time
}

func readLocalEntry(dir string, dent os.DirEntry) (*localEntry, error) {
	name := dent.Name()
	if !utf8.ValidString(name) {
		return nil, fmt.Errorf("%q: %w", name, errBadName)
	}

	localPath := filepath.Join(dir, name)

	// Lstat so symlinks report as symlinks, not as their targets.
	info, err := os.Lstat(localPath)
	if err != nil {
		return nil, err
	}

	kind := kindFile
	switch {
	case info.Mode()&os.ModeSymlink != 0:
		kind = kindSymlink
	case info.IsDir():
		kind = kindDir
	case !info.Mode().IsRegular():
		return nil, fmt.Errorf("unsupported file type %v", info.Mode().Type())
	}

	return &localEntry{
		Name:       name,
		Path:       localPath,
		Kind:       kind,
		Size:       info.Size(),
		ChangeTime: changeTime(info),
	}, nil
}
