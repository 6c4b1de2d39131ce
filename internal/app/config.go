package app

import (
	"fmt"

	"gomake/internal/loader"
)

// Config holds everything an App instance needs for one invocation.
type Config struct {
	// File is the build file, or a directory of .hcl build files.
	File string
	// Directory, if set, is changed into before loading anything.
	Directory string

	Parallel bool
	Jobs     int
	Force    bool
	Quiet    bool

	VarsFile string
	Vars     []string

	LogFormat string
	LogLevel  string
}

// NewConfig validates and normalizes a config.
func NewConfig(cfg Config) (*Config, error) {
	if cfg.File == "" {
		cfg.File = loader.DefaultFile
	}
	if cfg.LogFormat == "" {
		cfg.LogFormat = "text"
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "warn"
	}

	switch cfg.LogFormat {
	case "text", "json":
	default:
		return nil, fmt.Errorf("invalid log-format %q: must be 'text' or 'json'", cfg.LogFormat)
	}
	switch cfg.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return nil, fmt.Errorf("invalid log-level %q: must be 'debug', 'info', 'warn', or 'error'", cfg.LogLevel)
	}
	return &cfg, nil
}
