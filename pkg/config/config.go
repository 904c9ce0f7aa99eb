// Package config loads boxdiff.toml settings and TOML layout documents.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

// FileName is the name of the settings file looked up by Find.
const FileName = "boxdiff.toml"

// Config represents a boxdiff.toml file.
type Config struct {
	Log      LogConfig      `toml:"log"`
	Render   RenderConfig   `toml:"render"`
	Terminal TerminalConfig `toml:"terminal"`
}

// LogConfig controls the slog handler.
type LogConfig struct {
	// Level is one of debug, info, warn or error.
	Level string `toml:"level,omitempty"`

	// File receives log output. Logs are discarded while the screen is
	// live unless this is set.
	File string `toml:"file,omitempty"`

	Color bool `toml:"color,omitempty"`
}

type RenderConfig struct {
	// DebugLog is a path that receives one JSON record of render
	// statistics per pass.
	DebugLog string `toml:"debug_log,omitempty"`

	// Interval is how often the demo updates its clock.
	Interval time.Duration `toml:"interval,omitempty"`
}

// TerminalConfig sets the dimensions assumed when the output is not a
// terminal.
type TerminalConfig struct {
	Columns int `toml:"columns,omitempty"`
	Rows    int `toml:"rows,omitempty"`
}

// Default returns the settings used when no file is found.
func Default() *Config {
	return &Config{
		Log:    LogConfig{Level: "info"},
		Render: RenderConfig{Interval: time.Second},
	}
}

// Load loads a boxdiff.toml file from the given path. Unset fields keep
// their defaults.
func Load(path string) (*Config, error) {
	config := Default()
	md, err := toml.DecodeFile(path, config)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	for _, key := range md.Undecoded() {
		slog.Warn("unknown config key", "file", path, "key", key.String())
	}
	if config.Render.Interval <= 0 {
		return nil, fmt.Errorf("parsing %s: render.interval must be positive", path)
	}
	return config, nil
}

// Find searches for a boxdiff.toml file starting from dir and walking up
// to parent directories. The search stops at a directory containing .git.
// Returns the path and the parsed config, or ("", nil, nil) if not found.
func Find(dir string) (string, *Config, error) {
	dir, err := filepath.Abs(dir)
	if err != nil {
		return "", nil, err
	}
	for {
		path := filepath.Join(dir, FileName)
		if _, err := os.Stat(path); err == nil {
			config, err := Load(path)
			if err != nil {
				return "", nil, err
			}
			return path, config, nil
		}

		// Stop at .git boundary
		if _, err := os.Stat(filepath.Join(dir, ".git")); err == nil {
			return "", nil, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", nil, nil
		}
		dir = parent
	}
}

// SlogLevel parses the configured level. An empty level means info.
func (c LogConfig) SlogLevel() (slog.Level, error) {
	var level slog.Level
	if c.Level == "" {
		return slog.LevelInfo, nil
	}
	if err := level.UnmarshalText([]byte(strings.ToUpper(c.Level))); err != nil {
		return 0, fmt.Errorf("log level %q: %w", c.Level, err)
	}
	return level, nil
}
