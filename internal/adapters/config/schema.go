package config

// Minifile represents the structure of the minic.yaml configuration file.
// Threshold fields are pointers so that an explicit zero can be told apart
// from "not set, use the default".
type Minifile struct {
	Version  string   `yaml:"version"`
	CacheDir string   `yaml:"cache_dir"`
	Patch    PatchDTO `yaml:"patch"`
}

// PatchDTO holds the surgical patch thresholds in the configuration file.
type PatchDTO struct {
	MaxRecompile    *int     `yaml:"max_recompile"`
	MinCoverage     *float64 `yaml:"min_coverage"`
	MaxChangedRatio *float64 `yaml:"max_changed_ratio"`
}
