package sync

import (
	"context"
	"crypto/sha1"
	"fmt"
	"os"
	"sort"
	"strings"
)

// fakeStore is an in-memory MFS stand-in. Hashes are content-derived so
// idempotence checks can compare root hashes across runs.
type fakeStore struct {
	root  *fakeNode
	blobs map[string][]byte

	adds    int
	copies  int
	removes int
	flushes int
}

type fakeNode struct {
	dir      bool
	children map[string]*fakeNode
	content  []byte
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		root:  newFakeDir(),
		blobs: make(map[string][]byte),
	}
}

func newFakeDir() *fakeNode {
	return &fakeNode{dir: true, children: map[string]*fakeNode{}}
}

func (n *fakeNode) hash() string {
	h := sha1.New()
	if n.dir {
		names := make([]string, 0, len(n.children))
		for name := range n.children {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			fmt.Fprintf(h, "%s=%s;", name, n.children[name].hash())
		}
	} else {
		h.Write(n.content)
	}
	return fmt.Sprintf("Qm%x", h.Sum(nil))
}

func splitMFSPath(p string) []string {
	var parts []string
	for _, part := range strings.Split(p, "/") {
		if part != "" && part != "." {
			parts = append(parts, part)
		}
	}
	return parts
}

func (s *fakeStore) lookup(p string) *fakeNode {
	node := s.root
	for _, part := range splitMFSPath(p) {
		if node == nil || !node.dir {
			return nil
		}
		node = node.children[part]
	}
	return node
}

// lookupParent returns the parent directory and final name of p.
func (s *fakeStore) lookupParent(p string) (*fakeNode, string) {
	parts := splitMFSPath(p)
	if len(parts) == 0 {
		return nil, ""
	}
	node := s.root
	for _, part := range parts[:len(parts)-1] {
		if node == nil || !node.dir {
			return nil, ""
		}
		node = node.children[part]
	}
	if node == nil || !node.dir {
		return nil, ""
	}
	return node, parts[len(parts)-1]
}

func (s *fakeStore) List(_ context.Context, p string) ([]RemoteEntry, error) {
	node := s.lookup(p)
	if node == nil {
		return nil, fmt.Errorf("file does not exist: %s", p)
	}
	if !node.dir {
		// kubo lists a file as itself rather than failing
		parts := splitMFSPath(p)
		name := parts[len(parts)-1]
		return []RemoteEntry{{Name: name, Size: int64(len(node.content)), Hash: node.hash()}}, nil
	}
	var out []RemoteEntry
	for name, child := range node.children {
		size := int64(0)
		if !child.dir {
			size = int64(len(child.content))
		}
		out = append(out, RemoteEntry{Name: name, Size: size, Hash: child.hash()})
	}
	return out, nil
}

func (s *fakeStore) Mkdir(_ context.Context, p string) error {
	node := s.root
	for _, part := range splitMFSPath(p) {
		if !node.dir {
			return fmt.Errorf("%s is not a directory", p)
		}
		child, ok := node.children[part]
		if !ok {
			child = newFakeDir()
			node.children[part] = child
		}
		node = child
	}
	return nil
}

func (s *fakeStore) Remove(_ context.Context, p string, recursive bool) error {
	parent, name := s.lookupParent(p)
	if parent == nil {
		return nil // force semantics
	}
	node, ok := parent.children[name]
	if !ok {
		return nil
	}
	if node.dir && len(node.children) > 0 && !recursive {
		return fmt.Errorf("%s is a directory, use -r to remove directories", p)
	}
	delete(parent.children, name)
	s.removes++
	return nil
}

func (s *fakeStore) Stat(_ context.Context, p string) (RemoteStat, error) {
	node := s.lookup(p)
	if node == nil {
		return RemoteStat{}, fmt.Errorf("file does not exist: %s", p)
	}
	return RemoteStat{Hash: node.hash(), Size: int64(len(node.content)), IsDir: node.dir}, nil
}

func (s *fakeStore) Add(_ context.Context, localPath string, _ bool) (string, error) {
	content, err := os.ReadFile(localPath)
	if err != nil {
		return "", err
	}
	node := &fakeNode{content: content}
	hash := node.hash()
	s.blobs[hash] = content
	s.adds++
	return hash, nil
}

func (s *fakeStore) CopyHash(_ context.Context, hash string, dst string) error {
	content, ok := s.blobs[hash]
	if !ok {
		return fmt.Errorf("block not found locally: %s", hash)
	}
	parent, name := s.lookupParent(dst)
	if parent == nil {
		return fmt.Errorf("file does not exist: %s", dst)
	}
	parent.children[name] = &fakeNode{content: content}
	s.copies++
	return nil
}

func (s *fakeStore) Flush(_ context.Context, p string) (string, error) {
	node := s.lookup(p)
	if node == nil {
		return "", fmt.Errorf("file does not exist: %s", p)
	}
	s.flushes++
	return node.hash(), nil
}

// fileContent returns the bytes stored at an MFS path, or nil.
func (s *fakeStore) fileContent(p string) []byte {
	node := s.lookup(p)
	if node == nil || node.dir {
		return nil
	}
	return node.content
}

// childNames returns the sorted child names of an MFS directory.
func (s *fakeStore) childNames(p string) []string {
	node := s.lookup(p)
	if node == nil || !node.dir {
		return nil
	}
	names := make([]string, 0, len(node.children))
	for name := range node.children {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
