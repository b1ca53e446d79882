// Package wiring registers all Graft nodes for the application.
package wiring

import (
	// Register adapter nodes.
	_ "go.trai.ch/minic/internal/adapters/artifact"
	_ "go.trai.ch/minic/internal/adapters/compiler"
	_ "go.trai.ch/minic/internal/adapters/config"
	_ "go.trai.ch/minic/internal/adapters/logger"
	_ "go.trai.ch/minic/internal/adapters/patcher"
	_ "go.trai.ch/minic/internal/adapters/telemetry"
	_ "go.trai.ch/minic/internal/adapters/telemetry/progrock"
	_ "go.trai.ch/minic/internal/adapters/tracker"
	// Register app and engine nodes.
	_ "go.trai.ch/minic/internal/app"
	_ "go.trai.ch/minic/internal/engine/orchestrator"
)
