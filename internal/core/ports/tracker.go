package ports

import "go.trai.ch/minic/internal/core/domain"

// Tracker observes source files and answers "has this changed?" cheaply.
//
//go:generate go run go.uber.org/mock/mockgen -source=tracker.go -destination=mocks/mock_tracker.go -package=mocks
type Tracker interface {
	// Ensure returns the current record for path. If the file's mtime matches
	// the last observation the record is returned without reading the file;
	// otherwise the file is re-read, re-hashed and re-scanned for imports.
	Ensure(path string) (*domain.FileRecord, error)

	// ImportsOf returns the import paths of path in declaration order.
	ImportsOf(path string) ([]string, error)

	// Load restores persisted records. A missing state file is not an error.
	Load() error

	// Save persists records. It is a no-op when nothing changed since the
	// last save.
	Save() error
}
