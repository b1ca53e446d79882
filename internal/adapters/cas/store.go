// Package cas implements the content-addressed blob store shared by the file
// and function caches. Blobs are keyed by the 64-bit hash that produced them;
// under the non-collision assumption an existing blob already holds the right
// bytes, so writes never overwrite.
package cas

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"go.trai.ch/minic/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.BlobStore = (*Store)(nil)

// Store is a sharded on-disk blob store. The hash is formatted as 16 lowercase
// hex digits; the first two become the shard directory, the rest the filename.
type Store struct {
	root string
}

// NewStore creates a Store rooted at the given directory.
func NewStore(root string) *Store {
	return &Store{root: filepath.Clean(root)}
}

// Put writes data under hash. If the blob already exists it is left untouched;
// create-if-absent is the only coordination needed even if several processes
// ever share the directory.
func (s *Store) Put(hash uint64, data []byte) error {
	dir, name := s.shard(hash)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return zerr.Wrap(err, "failed to create blob shard directory")
	}

	path := filepath.Join(dir, name)
	//nolint:gosec // Path is derived from the hash, not user input
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		if errors.Is(err, fs.ErrExist) {
			return nil
		}
		return zerr.With(zerr.Wrap(err, "failed to create blob"), "path", path)
	}

	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		return zerr.With(zerr.Wrap(err, "failed to write blob"), "path", path)
	}
	if err := f.Close(); err != nil {
		return zerr.With(zerr.Wrap(err, "failed to close blob"), "path", path)
	}
	return nil
}

// Get returns the blob stored under hash, or ok=false if it is absent.
func (s *Store) Get(hash uint64) ([]byte, bool, error) {
	dir, name := s.shard(hash)
	path := filepath.Join(dir, name)

	//nolint:gosec // Path is derived from the hash, not user input
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, false, nil
		}
		return nil, false, zerr.With(zerr.Wrap(err, "failed to read blob"), "path", path)
	}
	return data, true, nil
}

func (s *Store) shard(hash uint64) (dir, name string) {
	hex := fmt.Sprintf("%016x", hash)
	return filepath.Join(s.root, hex[:2]), hex[2:]
}
