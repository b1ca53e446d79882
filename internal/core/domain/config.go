package domain

// DefaultCacheDir is the cache directory used when no project configuration
// overrides it.
const DefaultCacheDir = ".minic-cache"

// PatchPolicy holds the thresholds deciding whether a build goes through the
// surgical patch path or falls back to a full rebuild.
type PatchPolicy struct {
	// MaxRecompile is the largest changed+new file count still worth patching.
	MaxRecompile int
	// MinCoverage is the minimum fraction of current files that must have a
	// cached section.
	MinCoverage float64
	// MaxChangedRatio is the maximum fraction of current files that may be
	// changed or new.
	MaxChangedRatio float64
}

// DefaultPatchPolicy returns the stock thresholds.
func DefaultPatchPolicy() PatchPolicy {
	return PatchPolicy{
		MaxRecompile:    100,
		MinCoverage:     0.5,
		MaxChangedRatio: 0.5,
	}
}

// Config is the loaded project configuration.
type Config struct {
	// CacheDir is the root of all on-disk cache state.
	CacheDir string
	// Patch holds the surgical patch thresholds.
	Patch PatchPolicy
}

// DefaultConfig returns the configuration used when no minic.yaml exists.
func DefaultConfig() *Config {
	return &Config{
		CacheDir: DefaultCacheDir,
		Patch:    DefaultPatchPolicy(),
	}
}
