package sync

import (
	"context"

	"github.com/jcaesar/ipfs-sync/internal/ipfsapi"
)

// RemoteEntry is one child of a remote directory as reported by a listing.
type RemoteEntry struct {
	Name string
	Size int64
	Hash string
}

// RemoteStat is hash, size and type information for a single remote path.
type RemoteStat struct {
	Hash  string
	Size  int64
	IsDir bool
}

// Store is the content-store surface the engine needs. Every call is a
// blocking round trip to the daemon.
type Store interface {
	List(ctx context.Context, path string) ([]RemoteEntry, error)
	Mkdir(ctx context.Context, path string) error
	Remove(ctx context.Context, path string, recursive bool) error
	Stat(ctx context.Context, path string) (RemoteStat, error)
	Add(ctx context.Context, localPath string, nocopy bool) (string, error)
	CopyHash(ctx context.Context, hash string, dst string) error
	Flush(ctx context.Context, path string) (string, error)
}

type ipfsStore struct {
	api *ipfsapi.Client
}

// NewIPFSStore adapts an ipfsapi client to the Store interface.
func NewIPFSStore(api *ipfsapi.Client) Store {
	return &ipfsStore{api: api}
}

func (s *ipfsStore) List(ctx context.Context, path string) ([]RemoteEntry, error) {
	entries, err := s.api.Files.List(ctx, path)
	if err != nil {
		return nil, err
	}
	out := make([]RemoteEntry, 0, len(entries))
	for _, ent := range entries {
		out = append(out, RemoteEntry{Name: ent.Name, Size: ent.Size, Hash: ent.Hash})
	}
	return out, nil
}

func (s *ipfsStore) Mkdir(ctx context.Context, path string) error {
	return s.api.Files.Mkdir(ctx, path)
}

func (s *ipfsStore) Remove(ctx context.Context, path string, recursive bool) error {
	return s.api.Files.Remove(ctx, path, recursive)
}

func (s *ipfsStore) Stat(ctx context.Context, path string) (RemoteStat, error) {
	stat, err := s.api.Files.Stat(ctx, path)
	if err != nil {
		return RemoteStat{}, err
	}
	return RemoteStat{Hash: stat.Hash, Size: stat.Size, IsDir: stat.Type == "directory"}, nil
}

func (s *ipfsStore) Add(ctx context.Context, localPath string, nocopy bool) (string, error) {
	return s.api.Unixfs.Add(ctx, localPath, nocopy)
}

func (s *ipfsStore) CopyHash(ctx context.Context, hash string, dst string) error {
	return s.api.Files.CopyHash(ctx, hash, dst)
}

func (s *ipfsStore) Flush(ctx context.Context, path string) (string, error) {
	return s.api.Files.Flush(ctx, path)
}
