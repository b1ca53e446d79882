package patcher

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/minic/internal/adapters/config"
	"go.trai.ch/minic/internal/core/domain"
)

// NodeID is the unique identifier for the patcher Graft node.
const NodeID graft.ID = "adapter.patcher"

func init() {
	graft.Register(graft.Node[*Patcher]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{config.NodeID},
		Run: func(ctx context.Context) (*Patcher, error) {
			cfg, err := graft.Dep[*domain.Config](ctx)
			if err != nil {
				return nil, err
			}
			return New(cfg.Patch), nil
		},
	})
}
