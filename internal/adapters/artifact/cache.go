// Package artifact implements the blob-backed artifact caches: the file-level
// cache keyed by path and combined hash, and the function-level cache keyed by
// "path:function" and semantic IR hash. Both share one implementation; only
// the key scheme and on-disk location differ.
package artifact

import (
	"bytes"
	"encoding/binary"
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"slices"

	"go.trai.ch/minic/internal/core/domain"
	"go.trai.ch/minic/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.ArtifactCache = (*Cache)(nil)

// Cache maps string keys to artifact blobs via an in-memory index persisted as
// a flat binary list. The index alone answers "is this cached?"; blob I/O only
// happens on Get and Put.
type Cache struct {
	indexPath string
	store     ports.BlobStore
	index     map[string]uint64
	dirty     bool
}

// NewCache creates a Cache with the given index file and blob store.
func NewCache(indexPath string, store ports.BlobStore) *Cache {
	return &Cache{
		indexPath: filepath.Clean(indexPath),
		store:     store,
		index:     make(map[string]uint64),
	}
}

// HasMatch reports whether key is cached with exactly hash. No I/O.
func (c *Cache) HasMatch(key string, hash uint64) bool {
	h, ok := c.index[key]
	return ok && h == hash
}

// Get returns the cached artifact for (key, hash). An index hit whose blob is
// missing is a corrupted cache and degrades to a miss, never an error.
func (c *Cache) Get(key string, hash uint64) ([]byte, bool, error) {
	if !c.HasMatch(key, hash) {
		return nil, false, nil
	}
	data, ok, err := c.store.Get(hash)
	if err != nil {
		return nil, false, err
	}
	if !ok {
		return nil, false, nil
	}
	return data, true, nil
}

// Put records (key, hash) in the index and writes the artifact blob.
func (c *Cache) Put(key string, hash uint64, data []byte) error {
	if err := c.store.Put(hash, data); err != nil {
		return err
	}
	if h, ok := c.index[key]; !ok || h != hash {
		c.index[key] = hash
		c.dirty = true
	}
	return nil
}

// Load restores the persisted index. Missing means empty; garbled means empty
// plus an ErrCorruptIndex the caller may log.
func (c *Cache) Load() error {
	//nolint:gosec // Path is cleaned and provided by trusted caller
	data, err := os.ReadFile(c.indexPath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return zerr.Wrap(err, "failed to read cache index")
	}

	index, err := decodeIndex(data)
	if err != nil {
		return zerr.With(zerr.Wrap(domain.ErrCorruptIndex, "failed to decode cache index"), "path", c.indexPath)
	}
	c.index = index
	c.dirty = false
	return nil
}

// Save persists the index when dirty.
func (c *Cache) Save() error {
	if !c.dirty {
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(c.indexPath), 0o750); err != nil {
		return zerr.Wrap(err, "failed to create directory for cache index")
	}

	//nolint:gosec // Path is cleaned and provided by trusted caller
	if err := os.WriteFile(c.indexPath, encodeIndex(c.index), 0o644); err != nil {
		return zerr.Wrap(err, "failed to write cache index")
	}
	c.dirty = false
	return nil
}

// Len returns the number of indexed entries.
func (c *Cache) Len() int {
	return len(c.index)
}

// The index file is a little-endian entry list:
//
//	u32 count
//	per entry: u32 keyLen, key, u64 hash
func encodeIndex(index map[string]uint64) []byte {
	var buf bytes.Buffer

	keys := make([]string, 0, len(index))
	for k := range index {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	_ = binary.Write(&buf, binary.LittleEndian, uint32(len(index)))
	for _, k := range keys {
		_ = binary.Write(&buf, binary.LittleEndian, uint32(len(k)))
		_, _ = buf.WriteString(k)
		_ = binary.Write(&buf, binary.LittleEndian, index[k])
	}
	return buf.Bytes()
}

func decodeIndex(data []byte) (map[string]uint64, error) {
	r := bytes.NewReader(data)

	var count uint32
	if err := binary.Read(r, binary.LittleEndian, &count); err != nil {
		return nil, err
	}
	// Each entry occupies at least 12 bytes (keyLen + hash). A count that
	// cannot fit in the remaining input is garbage; reject it before it is
	// used to size the map.
	if uint64(count)*12 > uint64(r.Len()) {
		return nil, io.ErrUnexpectedEOF
	}

	index := make(map[string]uint64, count)
	for range count {
		var keyLen uint32
		if err := binary.Read(r, binary.LittleEndian, &keyLen); err != nil {
			return nil, err
		}
		if uint64(keyLen) > uint64(r.Len()) {
			return nil, io.ErrUnexpectedEOF
		}
		key := make([]byte, keyLen)
		if _, err := io.ReadFull(r, key); err != nil {
			return nil, err
		}
		var hash uint64
		if err := binary.Read(r, binary.LittleEndian, &hash); err != nil {
			return nil, err
		}
		index[string(key)] = hash
	}
	return index, nil
}
