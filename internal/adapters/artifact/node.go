package artifact

import (
	"context"
	"path/filepath"

	"github.com/grindlemire/graft"
	"go.trai.ch/minic/internal/adapters/cas"
	"go.trai.ch/minic/internal/adapters/config"
	"go.trai.ch/minic/internal/core/domain"
	"go.trai.ch/minic/internal/core/ports"
)

const (
	// FileCacheNodeID is the unique identifier for the file cache Graft node.
	FileCacheNodeID graft.ID = "adapter.cache.file"
	// FunctionCacheNodeID is the unique identifier for the function cache Graft node.
	FunctionCacheNodeID graft.ID = "adapter.cache.function"
)

// On-disk layout inside the cache directory.
const (
	FileIndexName     = "zir_index.bin"
	FileBlobDir       = "zir"
	FunctionIndexName = "air_index.bin"
	FunctionBlobDir   = "objects"
)

// FileCache is the file-level cache: path keyed by combined hash.
type FileCache struct {
	*Cache
}

// FunctionCache is the function-level cache: "path:function" keyed by
// semantic IR hash.
type FunctionCache struct {
	*Cache
}

// NewFileCache creates the file cache rooted in cacheDir.
func NewFileCache(cacheDir string) *FileCache {
	store := cas.NewStore(filepath.Join(cacheDir, FileBlobDir))
	return &FileCache{Cache: NewCache(filepath.Join(cacheDir, FileIndexName), store)}
}

// NewFunctionCache creates the function cache rooted in cacheDir.
func NewFunctionCache(cacheDir string) *FunctionCache {
	store := cas.NewStore(filepath.Join(cacheDir, FunctionBlobDir))
	return &FunctionCache{Cache: NewCache(filepath.Join(cacheDir, FunctionIndexName), store)}
}

func init() {
	graft.Register(graft.Node[*FileCache]{
		ID:        FileCacheNodeID,
		Cacheable: true,
		DependsOn: []graft.ID{config.NodeID},
		Run: func(ctx context.Context) (*FileCache, error) {
			cfg, err := graft.Dep[*domain.Config](ctx)
			if err != nil {
				return nil, err
			}
			return NewFileCache(cfg.CacheDir), nil
		},
	})

	graft.Register(graft.Node[*FunctionCache]{
		ID:        FunctionCacheNodeID,
		Cacheable: true,
		DependsOn: []graft.ID{config.NodeID},
		Run: func(ctx context.Context) (*FunctionCache, error) {
			cfg, err := graft.Dep[*domain.Config](ctx)
			if err != nil {
				return nil, err
			}
			return NewFunctionCache(cfg.CacheDir), nil
		},
	})
}

var (
	_ ports.ArtifactCache = (*FileCache)(nil)
	_ ports.ArtifactCache = (*FunctionCache)(nil)
)
