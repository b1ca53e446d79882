package ports

import "context"

// Telemetry records per-file build progress as vertices.
//
//go:generate go run go.uber.org/mock/mockgen -source=telemetry.go -destination=mocks/mock_telemetry.go -package=mocks
type Telemetry interface {
	// Record starts recording a new vertex for one unit of work.
	Record(ctx context.Context, name string) (context.Context, Vertex)

	// Close flushes and closes the recording session.
	Close() error
}

// Vertex represents one recorded unit of work.
type Vertex interface {
	// Log attaches a progress message to the vertex.
	Log(msg string)

	// Cached marks the vertex as satisfied from cache.
	Cached()

	// Complete marks the vertex as finished, successfully or with an error.
	Complete(err error)
}
