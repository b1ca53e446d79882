package config

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/minic/internal/core/domain"
)

// NodeID is the unique identifier for the config Graft node.
const NodeID graft.ID = "adapter.config"

func init() {
	graft.Register(graft.Node[*domain.Config]{
		ID:        NodeID,
		Cacheable: true,
		Run: func(ctx context.Context) (*domain.Config, error) {
			loader := &FileConfigLoader{Filename: Filename}
			return loader.Load(".")
		},
	})
}
