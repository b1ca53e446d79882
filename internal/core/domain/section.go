package domain

// Section is one file's slice of a combined output artifact, reconstructed
// from the marker line that introduced it.
type Section struct {
	// Path is the source file path encoded in the marker.
	Path string
	// Hash is the combined hash encoded in the marker.
	Hash uint64
	// Content is the section body verbatim, marker line excluded.
	Content []byte
}

// ChangeSet is the result of diffing cached sections against the current file
// set. Cached sections whose file no longer appears are dropped silently.
type ChangeSet struct {
	// Unchanged lists current files whose cached section hash still matches.
	Unchanged []string
	// Changed lists current files present in the cache with a different hash.
	Changed []string
	// New lists current files with no cached section at all.
	New []string
}
