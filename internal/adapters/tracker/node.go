package tracker

import (
	"context"
	"path/filepath"

	"github.com/grindlemire/graft"
	"go.trai.ch/minic/internal/adapters/config"
	"go.trai.ch/minic/internal/core/domain"
	"go.trai.ch/minic/internal/core/ports"
)

// NodeID is the unique identifier for the change tracker Graft node.
const NodeID graft.ID = "adapter.tracker"

// StateFile is the tracker state file name inside the cache directory.
const StateFile = "file_hashes.bin"

func init() {
	graft.Register(graft.Node[ports.Tracker]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{config.NodeID},
		Run: func(ctx context.Context) (ports.Tracker, error) {
			cfg, err := graft.Dep[*domain.Config](ctx)
			if err != nil {
				return nil, err
			}
			return New(filepath.Join(cfg.CacheDir, StateFile)), nil
		},
	})
}
