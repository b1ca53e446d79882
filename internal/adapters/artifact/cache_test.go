package artifact_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/minic/internal/adapters/artifact"
	"go.trai.ch/minic/internal/adapters/cas"
	"go.trai.ch/minic/internal/core/domain"
)

func newCache(t *testing.T) (*artifact.Cache, string) {
	t.Helper()
	dir := t.TempDir()
	store := cas.NewStore(filepath.Join(dir, "blobs"))
	return artifact.NewCache(filepath.Join(dir, "index.bin"), store), dir
}

func TestCache_PutAndGet(t *testing.T) {
	c, _ := newCache(t)

	require.NoError(t, c.Put("src/main.mini", 0x1111, []byte("main artifact")))
	require.NoError(t, c.Put("src/lib.mini", 0x2222, []byte("lib artifact")))

	data, ok, err := c.Get("src/main.mini", 0x1111)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, []byte("main artifact"), data)

	assert.Equal(t, 2, c.Len())
}

func TestCache_Get_HashMismatch(t *testing.T) {
	c, _ := newCache(t)

	require.NoError(t, c.Put("src/main.mini", 0x1111, []byte("stale")))

	_, ok, err := c.Get("src/main.mini", 0x9999)
	require.NoError(t, err)
	assert.False(t, ok, "a different hash is a miss")
}

func TestCache_HasMatch(t *testing.T) {
	c, _ := newCache(t)

	require.NoError(t, c.Put("a", 1, []byte("x")))

	assert.True(t, c.HasMatch("a", 1))
	assert.False(t, c.HasMatch("a", 2))
	assert.False(t, c.HasMatch("b", 1))
}

func TestCache_Get_MissingBlobDegradesToMiss(t *testing.T) {
	dir := t.TempDir()
	blobRoot := filepath.Join(dir, "blobs")
	c := artifact.NewCache(filepath.Join(dir, "index.bin"), cas.NewStore(blobRoot))

	require.NoError(t, c.Put("a", 0xabcdef, []byte("x")))
	require.NoError(t, os.RemoveAll(blobRoot))

	data, ok, err := c.Get("a", 0xabcdef)
	require.NoError(t, err, "an index hit with a missing blob must not be an error")
	assert.False(t, ok)
	assert.Nil(t, data)
}

func TestCache_Persistence(t *testing.T) {
	dir := t.TempDir()
	indexPath := filepath.Join(dir, "index.bin")
	store := cas.NewStore(filepath.Join(dir, "blobs"))

	c1 := artifact.NewCache(indexPath, store)
	require.NoError(t, c1.Put("src/main.mini", 0xfeed, []byte("artifact")))
	require.NoError(t, c1.Save())

	c2 := artifact.NewCache(indexPath, store)
	require.NoError(t, c2.Load())

	data, ok, err := c2.Get("src/main.mini", 0xfeed)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, []byte("artifact"), data)
}

func TestCache_Load_Missing(t *testing.T) {
	c, _ := newCache(t)
	require.NoError(t, c.Load())
	assert.Equal(t, 0, c.Len())
}

func TestCache_Load_Corrupt(t *testing.T) {
	dir := t.TempDir()
	indexPath := filepath.Join(dir, "index.bin")
	require.NoError(t, os.WriteFile(indexPath, []byte("garbage"), 0o644))

	c := artifact.NewCache(indexPath, cas.NewStore(filepath.Join(dir, "blobs")))
	err := c.Load()
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrCorruptIndex))
	assert.Equal(t, 0, c.Len(), "a corrupt index starts empty")
}

func TestCache_Load_OversizedCount(t *testing.T) {
	dir := t.TempDir()
	indexPath := filepath.Join(dir, "index.bin")

	// A count field claiming ~1.6 billion entries in a 7-byte file. Decoding
	// must reject it outright instead of sizing a map from it.
	garbage := []byte{0x67, 0x61, 0x72, 0x62, 0x61, 0x67, 0x65} // "garbage"
	require.NoError(t, os.WriteFile(indexPath, garbage, 0o644))

	c := artifact.NewCache(indexPath, cas.NewStore(filepath.Join(dir, "blobs")))

	done := make(chan error, 1)
	go func() { done <- c.Load() }()
	select {
	case err := <-done:
		require.Error(t, err)
		assert.True(t, errors.Is(err, domain.ErrCorruptIndex))
	case <-time.After(5 * time.Second):
		t.Fatal("Load did not reject the oversized count promptly")
	}
	assert.Equal(t, 0, c.Len())
}

func TestCache_Save_NotDirty(t *testing.T) {
	dir := t.TempDir()
	indexPath := filepath.Join(dir, "index.bin")
	c := artifact.NewCache(indexPath, cas.NewStore(filepath.Join(dir, "blobs")))

	require.NoError(t, c.Save())
	_, err := os.Stat(indexPath)
	assert.True(t, os.IsNotExist(err), "Save without changes should not write the index")
}
