package tracker_test

import (
	"encoding/binary"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/cespare/xxhash/v2"
	"go.trai.ch/minic/internal/adapters/tracker"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}
	return path
}

func TestTracker_Ensure(t *testing.T) {
	tmpDir := t.TempDir()
	src := writeFile(t, tmpDir, "main.mini", `import "lib.mini"`+"\nfn main() {}\n")

	trk := tracker.New(filepath.Join(tmpDir, "state.bin"))

	rec, err := trk.Ensure(src)
	if err != nil {
		t.Fatalf("Ensure failed: %v", err)
	}
	if rec.Path != src {
		t.Errorf("expected path %q, got %q", src, rec.Path)
	}
	if rec.ContentHash == 0 {
		t.Error("expected non-zero content hash")
	}
	if len(rec.Imports) != 1 || rec.Imports[0] != "lib.mini" {
		t.Errorf("expected imports [lib.mini], got %v", rec.Imports)
	}
}

func TestTracker_Ensure_MTimeShortCircuit(t *testing.T) {
	tmpDir := t.TempDir()
	src := writeFile(t, tmpDir, "main.mini", "fn main() {}\n")

	trk := tracker.New(filepath.Join(tmpDir, "state.bin"))

	rec1, err := trk.Ensure(src)
	if err != nil {
		t.Fatalf("Ensure 1 failed: %v", err)
	}

	// Rewrite the content but restore the original mtime. The tracker must
	// trust the timestamp and keep the stale record without re-reading.
	if err := os.WriteFile(src, []byte("fn other() {}\n"), 0o644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}
	if err := os.Chtimes(src, rec1.MTime, rec1.MTime); err != nil {
		t.Fatalf("Chtimes failed: %v", err)
	}

	rec2, err := trk.Ensure(src)
	if err != nil {
		t.Fatalf("Ensure 2 failed: %v", err)
	}
	if rec2.ContentHash != rec1.ContentHash {
		t.Error("expected short-circuit to keep the previous hash")
	}

	// Bump the mtime; now the new content must be observed.
	future := rec1.MTime.Add(2 * time.Second)
	if err := os.Chtimes(src, future, future); err != nil {
		t.Fatalf("Chtimes failed: %v", err)
	}

	rec3, err := trk.Ensure(src)
	if err != nil {
		t.Fatalf("Ensure 3 failed: %v", err)
	}
	if rec3.ContentHash == rec1.ContentHash {
		t.Error("expected changed mtime to trigger a re-read")
	}
}

func TestTracker_Ensure_Missing(t *testing.T) {
	tmpDir := t.TempDir()
	trk := tracker.New(filepath.Join(tmpDir, "state.bin"))

	if _, err := trk.Ensure(filepath.Join(tmpDir, "nope.mini")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestTracker_Persistence(t *testing.T) {
	tmpDir := t.TempDir()
	statePath := filepath.Join(tmpDir, "cache", "state.bin")
	src := writeFile(t, tmpDir, "main.mini", `import "a.mini"`+"\n"+`import "b.mini"`+"\n")

	trk1 := tracker.New(statePath)
	rec1, err := trk1.Ensure(src)
	if err != nil {
		t.Fatalf("Ensure failed: %v", err)
	}
	if err := trk1.Save(); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	trk2 := tracker.New(statePath)
	if err := trk2.Load(); err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	rec2, err := trk2.Ensure(src)
	if err != nil {
		t.Fatalf("Ensure after Load failed: %v", err)
	}
	if rec2.ContentHash != rec1.ContentHash {
		t.Errorf("expected hash %x, got %x", rec1.ContentHash, rec2.ContentHash)
	}
	if len(rec2.Imports) != 2 || rec2.Imports[0] != "a.mini" || rec2.Imports[1] != "b.mini" {
		t.Errorf("expected imports [a.mini b.mini], got %v", rec2.Imports)
	}
}

func TestTracker_Load_MissingState(t *testing.T) {
	trk := tracker.New(filepath.Join(t.TempDir(), "state.bin"))
	if err := trk.Load(); err != nil {
		t.Fatalf("Load of missing state should succeed, got %v", err)
	}
}

func TestTracker_Load_CorruptState(t *testing.T) {
	tmpDir := t.TempDir()
	statePath := writeFile(t, tmpDir, "state.bin", "definitely not a record list")

	trk := tracker.New(statePath)
	if err := trk.Load(); err == nil {
		t.Fatal("expected error for corrupt state")
	}

	// A corrupt load leaves the tracker usable, just cold.
	src := writeFile(t, tmpDir, "main.mini", "fn main() {}\n")
	if _, err := trk.Ensure(src); err != nil {
		t.Fatalf("Ensure after corrupt load failed: %v", err)
	}
}

func TestTracker_Load_OversizedCounts(t *testing.T) {
	tests := []struct {
		name  string
		state []byte
	}{
		{
			// Record count claiming 2^30 records in an 8-byte file.
			name:  "record count beyond input",
			state: binary.LittleEndian.AppendUint64(nil, 1<<30),
		},
		{
			// One valid-looking record header whose import count claims
			// another billion entries.
			name: "import count beyond input",
			state: func() []byte {
				b := binary.LittleEndian.AppendUint64(nil, 1) // record count
				b = binary.LittleEndian.AppendUint32(b, 1)    // path length
				b = append(b, 'a')                            // path
				b = binary.LittleEndian.AppendUint64(b, 0)    // mtime lo
				b = binary.LittleEndian.AppendUint64(b, 0)    // mtime hi
				b = binary.LittleEndian.AppendUint64(b, 0)    // hash
				return binary.LittleEndian.AppendUint32(b, 1<<30)
			}(),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tmpDir := t.TempDir()
			statePath := filepath.Join(tmpDir, "state.bin")
			if err := os.WriteFile(statePath, tt.state, 0o644); err != nil {
				t.Fatalf("WriteFile failed: %v", err)
			}

			trk := tracker.New(statePath)

			// Decoding must reject the bogus count without attempting to
			// allocate for it.
			done := make(chan error, 1)
			go func() { done <- trk.Load() }()
			select {
			case err := <-done:
				if err == nil {
					t.Fatal("expected error for oversized count")
				}
			case <-time.After(5 * time.Second):
				t.Fatal("Load did not reject the oversized count promptly")
			}
		})
	}
}

func TestContentHash_DistinctSmallInputs(t *testing.T) {
	// Many small, nearly identical sources must hash to distinct values;
	// one collision here would silently serve a stale artifact.
	const n = 10000
	seen := make(map[uint64]string, n)
	for i := range n {
		src := fmt.Sprintf("fn f%d() -> int { return %d }\n", i, i)
		h := xxhash.Sum64([]byte(src))
		if prev, ok := seen[h]; ok {
			t.Fatalf("hash collision between %q and %q", prev, src)
		}
		seen[h] = src
	}
}

func TestTracker_Save_NotDirty(t *testing.T) {
	tmpDir := t.TempDir()
	statePath := filepath.Join(tmpDir, "state.bin")

	trk := tracker.New(statePath)
	if err := trk.Save(); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if _, err := os.Stat(statePath); !os.IsNotExist(err) {
		t.Error("Save without changes should not write the state file")
	}
}
