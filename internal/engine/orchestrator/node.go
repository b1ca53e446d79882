package orchestrator

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/minic/internal/adapters/artifact"
	"go.trai.ch/minic/internal/adapters/compiler"
	"go.trai.ch/minic/internal/adapters/config"
	"go.trai.ch/minic/internal/adapters/logger"
	"go.trai.ch/minic/internal/adapters/patcher"
	progrocktel "go.trai.ch/minic/internal/adapters/telemetry/progrock"
	"go.trai.ch/minic/internal/adapters/tracker"
	"go.trai.ch/minic/internal/core/domain"
	"go.trai.ch/minic/internal/core/ports"
)

// NodeID is the unique identifier for the orchestrator Graft node.
const NodeID graft.ID = "engine.orchestrator"

func init() {
	graft.Register(graft.Node[*Orchestrator]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{
			config.NodeID,
			tracker.NodeID,
			artifact.FileCacheNodeID,
			artifact.FunctionCacheNodeID,
			compiler.NodeID,
			patcher.NodeID,
			progrocktel.NodeID,
			logger.NodeID,
		},
		Run: func(ctx context.Context) (*Orchestrator, error) {
			cfg, err := graft.Dep[*domain.Config](ctx)
			if err != nil {
				return nil, err
			}
			trk, err := graft.Dep[ports.Tracker](ctx)
			if err != nil {
				return nil, err
			}
			fileCache, err := graft.Dep[*artifact.FileCache](ctx)
			if err != nil {
				return nil, err
			}
			funcCache, err := graft.Dep[*artifact.FunctionCache](ctx)
			if err != nil {
				return nil, err
			}
			comp, err := graft.Dep[ports.Compiler](ctx)
			if err != nil {
				return nil, err
			}
			p, err := graft.Dep[*patcher.Patcher](ctx)
			if err != nil {
				return nil, err
			}
			tel, err := graft.Dep[ports.Telemetry](ctx)
			if err != nil {
				return nil, err
			}
			log, err := graft.Dep[ports.Logger](ctx)
			if err != nil {
				return nil, err
			}
			return New(trk, fileCache, funcCache, comp, p, tel, log, cfg.CacheDir), nil
		},
	})
}
