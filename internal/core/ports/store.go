package ports

// BlobStore is a content-addressed binary object store. Blobs are immutable:
// writing a hash that already exists is a no-op.
//
//go:generate go run go.uber.org/mock/mockgen -source=store.go -destination=mocks/mock_store.go -package=mocks
type BlobStore interface {
	// Put stores data under hash, creating the shard directory on demand.
	// Existing blobs are never rewritten.
	Put(hash uint64, data []byte) error

	// Get returns the blob for hash, or ok=false if absent.
	Get(hash uint64) (data []byte, ok bool, err error)
}

// ArtifactCache maps a string key plus expected hash to a stored compiled
// artifact. The in-memory index answers HasMatch without touching the blob
// store; a matching index entry with a missing blob degrades to a miss.
type ArtifactCache interface {
	// HasMatch reports whether key is cached with exactly hash. No I/O.
	HasMatch(key string, hash uint64) bool

	// Get returns the cached artifact for (key, hash), or ok=false on any
	// miss, including a corrupted (index-hit, blob-absent) state.
	Get(key string, hash uint64) (data []byte, ok bool, err error)

	// Put records (key, hash) in the index and writes the artifact blob.
	Put(key string, hash uint64, data []byte) error

	// Load restores the persisted index. A missing index file is not an error.
	Load() error

	// Save persists the index when dirty.
	Save() error
}
