// Package tracker implements the per-file change tracker: mtime observation,
// content hashing and import extraction, persisted between builds.
package tracker

import (
	"bytes"
	"encoding/binary"
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"time"

	"github.com/cespare/xxhash/v2"
	"go.trai.ch/minic/internal/core/domain"
	"go.trai.ch/minic/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.Tracker = (*Tracker)(nil)

// Tracker implements ports.Tracker backed by a flat binary state file.
type Tracker struct {
	path    string
	records map[string]*domain.FileRecord
	dirty   bool
}

// New creates a Tracker persisting to the given state file path.
func New(path string) *Tracker {
	return &Tracker{
		path:    filepath.Clean(path),
		records: make(map[string]*domain.FileRecord),
	}
}

// Ensure returns the current record for path, re-reading the file only when
// its mtime differs from the last observation.
func (t *Tracker) Ensure(path string) (*domain.FileRecord, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, "failed to stat source file"), "path", path)
	}

	if rec, ok := t.records[path]; ok && info.ModTime().Equal(rec.MTime) {
		return rec, nil
	}

	//nolint:gosec // Path comes from the tracked project
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, "failed to read source file"), "path", path)
	}

	rec := &domain.FileRecord{
		Path:        path,
		MTime:       info.ModTime(),
		ContentHash: xxhash.Sum64(data),
		Imports:     ExtractImports(data),
	}
	t.records[path] = rec
	t.dirty = true
	return rec, nil
}

// ImportsOf returns the import paths of path in declaration order.
func (t *Tracker) ImportsOf(path string) ([]string, error) {
	rec, err := t.Ensure(path)
	if err != nil {
		return nil, err
	}
	return rec.Imports, nil
}

// Load restores the persisted records. A missing state file leaves the
// tracker empty; a truncated or garbled one is reported but also leaves it
// empty, so the worst case is a cold start.
func (t *Tracker) Load() error {
	//nolint:gosec // Path is cleaned and provided by trusted caller
	data, err := os.ReadFile(t.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return zerr.Wrap(err, "failed to read change tracker state")
	}

	records, err := decodeRecords(data)
	if err != nil {
		return zerr.With(zerr.Wrap(domain.ErrCorruptIndex, "failed to decode change tracker state"), "path", t.path)
	}
	t.records = records
	t.dirty = false
	return nil
}

// Save persists the records when any was added or mutated since the last save.
func (t *Tracker) Save() error {
	if !t.dirty {
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(t.path), 0o750); err != nil {
		return zerr.Wrap(err, "failed to create directory for change tracker state")
	}

	//nolint:gosec // Path is cleaned and provided by trusted caller
	if err := os.WriteFile(t.path, encodeRecords(t.records), 0o644); err != nil {
		return zerr.Wrap(err, "failed to write change tracker state")
	}
	t.dirty = false
	return nil
}

// The state file is a little-endian record list:
//
//	u64 count
//	per record: u32 pathLen, path, i128 mtime (ns), u64 hash,
//	            u32 importCount, { u32 importLen, import }*
//
// The mtime field is two u64 words, low word first, the high word being the
// sign extension of the nanosecond timestamp.
func encodeRecords(records map[string]*domain.FileRecord) []byte {
	var buf bytes.Buffer

	// Deterministic output keeps the file stable across no-op rebuilds.
	paths := make([]string, 0, len(records))
	for p := range records {
		paths = append(paths, p)
	}
	slices.Sort(paths)

	writeU64(&buf, uint64(len(records)))
	for _, p := range paths {
		rec := records[p]
		writeString(&buf, rec.Path)

		ns := rec.MTime.UnixNano()
		writeU64(&buf, uint64(ns))
		var hi uint64
		if ns < 0 {
			hi = ^uint64(0)
		}
		writeU64(&buf, hi)

		writeU64(&buf, rec.ContentHash)
		writeU32(&buf, uint32(len(rec.Imports)))
		for _, imp := range rec.Imports {
			writeString(&buf, imp)
		}
	}
	return buf.Bytes()
}

func decodeRecords(data []byte) (map[string]*domain.FileRecord, error) {
	r := bytes.NewReader(data)

	count, err := readU64(r)
	if err != nil {
		return nil, err
	}
	// Each record occupies at least 32 bytes (pathLen + mtime + hash +
	// importCount). A count that cannot fit in the remaining input is
	// garbage; reject it before it is used to size the map.
	if count > uint64(r.Len())/32 {
		return nil, io.ErrUnexpectedEOF
	}

	records := make(map[string]*domain.FileRecord, count)
	for range count {
		path, err := readString(r)
		if err != nil {
			return nil, err
		}
		lo, err := readU64(r)
		if err != nil {
			return nil, err
		}
		if _, err := readU64(r); err != nil { // high mtime word
			return nil, err
		}
		hash, err := readU64(r)
		if err != nil {
			return nil, err
		}
		importCount, err := readU32(r)
		if err != nil {
			return nil, err
		}
		// Same guard: every import needs at least its 4-byte length prefix.
		if uint64(importCount)*4 > uint64(r.Len()) {
			return nil, io.ErrUnexpectedEOF
		}
		imports := make([]string, 0, importCount)
		for range importCount {
			imp, err := readString(r)
			if err != nil {
				return nil, err
			}
			imports = append(imports, imp)
		}
		records[path] = &domain.FileRecord{
			Path:        path,
			MTime:       time.Unix(0, int64(lo)),
			ContentHash: hash,
			Imports:     imports,
		}
	}
	return records, nil
}

func writeU32(buf *bytes.Buffer, v uint32) {
	_ = binary.Write(buf, binary.LittleEndian, v)
}

func writeU64(buf *bytes.Buffer, v uint64) {
	_ = binary.Write(buf, binary.LittleEndian, v)
}

func writeString(buf *bytes.Buffer, s string) {
	writeU32(buf, uint32(len(s)))
	_, _ = buf.WriteString(s)
}

func readU32(r *bytes.Reader) (uint32, error) {
	var v uint32
	err := binary.Read(r, binary.LittleEndian, &v)
	return v, err
}

func readU64(r *bytes.Reader) (uint64, error) {
	var v uint64
	err := binary.Read(r, binary.LittleEndian, &v)
	return v, err
}

func readString(r *bytes.Reader) (string, error) {
	n, err := readU32(r)
	if err != nil {
		return "", err
	}
	if uint64(n) > uint64(r.Len()) {
		return "", io.ErrUnexpectedEOF
	}
	b := make([]byte, n)
	if _, err := io.ReadFull(r, b); err != nil {
		return "", err
	}
	return string(b), nil
}
