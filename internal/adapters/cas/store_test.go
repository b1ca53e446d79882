package cas_test

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"go.trai.ch/minic/internal/adapters/cas"
)

func TestStore_PutAndGet(t *testing.T) {
	store := cas.NewStore(filepath.Join(t.TempDir(), "blobs"))

	data := []byte("define i64 @main() {\n}\n")
	if err := store.Put(0xdeadbeef, data); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	got, ok, err := store.Get(0xdeadbeef)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if !ok {
		t.Fatal("expected blob to exist")
	}
	if !bytes.Equal(got, data) {
		t.Errorf("expected %q, got %q", data, got)
	}
}

func TestStore_Get_Absent(t *testing.T) {
	store := cas.NewStore(filepath.Join(t.TempDir(), "blobs"))

	got, ok, err := store.Get(42)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if ok || got != nil {
		t.Error("expected a clean miss for an absent blob")
	}
}

func TestStore_Put_Idempotent(t *testing.T) {
	root := filepath.Join(t.TempDir(), "blobs")
	store := cas.NewStore(root)

	if err := store.Put(7, []byte("first")); err != nil {
		t.Fatalf("Put 1 failed: %v", err)
	}
	// Same hash means same content; the second write must not touch the blob.
	if err := store.Put(7, []byte("second")); err != nil {
		t.Fatalf("Put 2 failed: %v", err)
	}

	got, ok, err := store.Get(7)
	if err != nil || !ok {
		t.Fatalf("Get failed: ok=%v err=%v", ok, err)
	}
	if string(got) != "first" {
		t.Errorf("expected first write to win, got %q", got)
	}
}

func TestStore_ShardLayout(t *testing.T) {
	root := filepath.Join(t.TempDir(), "blobs")
	store := cas.NewStore(root)

	// 0x0123456789abcdef shards to 01/23456789abcdef.
	if err := store.Put(0x0123456789abcdef, []byte("x")); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	if _, err := os.Stat(filepath.Join(root, "01", "23456789abcdef")); err != nil {
		t.Errorf("expected sharded blob path: %v", err)
	}
}
