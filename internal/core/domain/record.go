// Package domain contains the core domain models for the incremental
// compilation cache: per-file change records, the lowered function IR, and the
// sections of a combined output artifact.
package domain

import "time"

// FileRecord is the tracked state of one source file: its last observed
// modification time, the xxhash of its content, and the import paths extracted
// from it. A record is superseded in place when the file changes; it is never
// deleted.
type FileRecord struct {
	// Path is the path of the file as first observed.
	Path string
	// MTime is the modification time at the last content read. If the current
	// mtime equals this value, ContentHash and Imports are trusted without
	// re-reading the file.
	MTime time.Time
	// ContentHash is the 64-bit non-cryptographic hash of the raw file bytes.
	ContentHash uint64
	// Imports holds the quoted import paths in declaration order.
	Imports []string
}

// FileState pairs a file path with its current combined hash (content plus all
// transitive imports). It is the unit the surgical patcher diffs against
// cached sections.
type FileState struct {
	Path string
	Hash uint64
}
