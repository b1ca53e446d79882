// Package config provides the project configuration loader for minic.
package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"go.trai.ch/minic/internal/core/domain"
	"go.trai.ch/minic/internal/core/ports"
	"go.trai.ch/zerr"
	"gopkg.in/yaml.v3"
)

// Filename is the project configuration file name.
const Filename = "minic.yaml"

var _ ports.ConfigLoader = (*FileConfigLoader)(nil)

// FileConfigLoader implements ports.ConfigLoader using a YAML file.
type FileConfigLoader struct {
	Filename string
}

// Load reads the configuration from the given working directory. A missing
// file yields the defaults.
func (l *FileConfigLoader) Load(cwd string) (*domain.Config, error) {
	name := l.Filename
	if name == "" {
		name = Filename
	}
	return Load(filepath.Join(cwd, name))
}

// Load reads a configuration file from the given path.
func Load(path string) (*domain.Config, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path is provided by user
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return domain.DefaultConfig(), nil
		}
		return nil, zerr.Wrap(err, "failed to read config file")
	}

	var file Minifile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, zerr.Wrap(err, "failed to parse config file")
	}

	cfg := domain.DefaultConfig()
	if file.CacheDir != "" {
		cfg.CacheDir = file.CacheDir
	}
	if file.Patch.MaxRecompile != nil {
		cfg.Patch.MaxRecompile = *file.Patch.MaxRecompile
	}
	if file.Patch.MinCoverage != nil {
		cfg.Patch.MinCoverage = *file.Patch.MinCoverage
	}
	if file.Patch.MaxChangedRatio != nil {
		cfg.Patch.MaxChangedRatio = *file.Patch.MaxChangedRatio
	}

	if cfg.Patch.MinCoverage < 0 || cfg.Patch.MinCoverage > 1 {
		return nil, zerr.With(zerr.New("min_coverage out of range"), "min_coverage", cfg.Patch.MinCoverage)
	}
	if cfg.Patch.MaxChangedRatio < 0 || cfg.Patch.MaxChangedRatio > 1 {
		return nil, zerr.With(zerr.New("max_changed_ratio out of range"), "max_changed_ratio", cfg.Patch.MaxChangedRatio)
	}

	return cfg, nil
}
