// Package config loads gist-crawler settings from layered YAML files,
// GIST_CRAWLER_* environment variables and command-line flags.
package config

import (
	"path/filepath"
	"time"
)

// Config holds all gist-crawler settings.
type Config struct {
	Jobs      string          `mapstructure:"jobs"`
	DataDir   string          `mapstructure:"data_dir"`
	StateFile string          `mapstructure:"state_file"`
	Git       GitConfig       `mapstructure:"git"`
	Generator GeneratorConfig `mapstructure:"generator"`
	Logging   LoggingConfig   `mapstructure:"logging"`
}

// GitConfig controls the git subprocesses that maintain mirrors.
type GitConfig struct {
	Binary  string        `mapstructure:"binary"`
	Timeout time.Duration `mapstructure:"timeout"`
	Depth   int           `mapstructure:"depth"`
}

// GeneratorConfig selects and configures the digest generator.
type GeneratorConfig struct {
	Type     string        `mapstructure:"type"` // "command", "http", "none"
	Command  []string      `mapstructure:"command"`
	Endpoint string        `mapstructure:"endpoint"`
	Timeout  time.Duration `mapstructure:"timeout"`
	MaxSize  string        `mapstructure:"max_size"` // e.g. "50MB"
}

// LoggingConfig holds logging-specific configuration.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Generator types.
const (
	GeneratorCommand = "command"
	GeneratorHTTP    = "http"
	GeneratorNone    = "none"
)

// StatePath returns the state file location, resolving a relative
// state_file against the data directory.
func (c *Config) StatePath() string {
	if c.StateFile == "" || filepath.IsAbs(c.StateFile) {
		return c.StateFile
	}
	return filepath.Join(c.DataDir, c.StateFile)
}
