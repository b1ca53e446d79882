// Package deps computes combined hashes over the import graph: each file's
// content hash folded with the content hashes of everything it transitively
// imports.
package deps

import (
	"encoding/binary"
	"path/filepath"

	"github.com/cespare/xxhash/v2"
	"go.trai.ch/minic/internal/core/domain"
	"go.trai.ch/minic/internal/core/ports"
)

// CombinedHash folds the content hash of entryPath and every transitively
// imported file into one 64-bit value. The traversal keeps an explicit visited
// set, so each file contributes exactly once and import cycles terminate
// instead of recursing forever. Folding per-file hashes rather than raw bytes
// reuses the tracker's cached hashes and avoids re-reading anything.
func CombinedHash(t ports.Tracker, entryPath, baseDir string) (uint64, error) {
	d := xxhash.New()
	visited := make(map[string]struct{})
	if err := fold(t, d, resolvePath(entryPath, baseDir), visited); err != nil {
		return 0, err
	}
	return d.Sum64(), nil
}

func fold(t ports.Tracker, d *xxhash.Digest, path string, visited map[string]struct{}) error {
	if _, ok := visited[path]; ok {
		return nil
	}
	visited[path] = struct{}{}

	rec, err := t.Ensure(path)
	if err != nil {
		return err
	}
	_ = binary.Write(d, binary.LittleEndian, rec.ContentHash)

	dir := filepath.Dir(path)
	for _, imp := range rec.Imports {
		if err := fold(t, d, resolvePath(imp, dir), visited); err != nil {
			return err
		}
	}
	return nil
}

// Resolve walks the import graph depth-first from entryPath and returns every
// reachable file in traversal order (entry first, imports in declaration
// order), each paired with its own combined hash.
func Resolve(t ports.Tracker, entryPath, baseDir string) ([]domain.FileState, error) {
	var order []string
	visited := make(map[string]struct{})
	if err := collect(t, resolvePath(entryPath, baseDir), visited, &order); err != nil {
		return nil, err
	}

	files := make([]domain.FileState, 0, len(order))
	for _, path := range order {
		// Each file gets its own traversal with a fresh visited set; hashes
		// stay cheap because the tracker already holds every content hash.
		hash, err := CombinedHash(t, path, "")
		if err != nil {
			return nil, err
		}
		files = append(files, domain.FileState{Path: path, Hash: hash})
	}
	return files, nil
}

func collect(t ports.Tracker, path string, visited map[string]struct{}, order *[]string) error {
	if _, ok := visited[path]; ok {
		return nil
	}
	visited[path] = struct{}{}
	*order = append(*order, path)

	imports, err := t.ImportsOf(path)
	if err != nil {
		return err
	}
	dir := filepath.Dir(path)
	for _, imp := range imports {
		if err := collect(t, resolvePath(imp, dir), visited, order); err != nil {
			return err
		}
	}
	return nil
}

// resolvePath resolves a relative import against the directory of the
// importing file, not the project root.
func resolvePath(path, dir string) string {
	if filepath.IsAbs(path) || dir == "" {
		return filepath.Clean(path)
	}
	return filepath.Clean(filepath.Join(dir, path))
}
