package domain

import "go.trai.ch/zerr"

var (
	// ErrNoEntrypoint is returned when a build is requested without an entry file.
	ErrNoEntrypoint = zerr.New("no entry file specified")

	// ErrCorruptIndex is returned when a persisted cache index fails to decode.
	// Callers treat it as "cache empty", never as a fatal condition.
	ErrCorruptIndex = zerr.New("corrupt cache index")

	// ErrMalformedMarker is returned when a combined artifact contains a marker
	// line that does not parse. The patch path is abandoned in favor of a full
	// rebuild.
	ErrMalformedMarker = zerr.New("malformed section marker")

	// ErrBuildFailed wraps compilation failures surfaced to the CLI.
	ErrBuildFailed = zerr.New("build failed")
)
