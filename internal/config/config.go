// Package config loads the demo player configuration from TOML files.
package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

type Config struct {
	PlaybackRate   float64 `koanf:"playback_rate"`    // frame-duration divisor (default: 1.0)
	MaxBufferBytes uint64  `koanf:"max_buffer_bytes"` // decoded-frame budget, 0 = auto from system memory
	TickIntervalMS int     `koanf:"tick_interval_ms"` // display refresh period (default: ~16ms, 60 Hz)
	LogLevel       string  `koanf:"log_level"`        // logrus level name (default: "info")
}

// Load reads configuration files in priority order (last wins) and
// applies defaults for anything left unset.
func Load() (*Config, error) {
	k := koanf.New(".")

	for _, path := range getConfigPaths() {
		if _, err := os.Stat(path); err == nil {
			if err := k.Load(file.Provider(path), toml.Parser()); err != nil {
				return nil, err
			}
		}
	}

	cfg := &Config{
		PlaybackRate: 1.0,
		LogLevel:     "info",
	}

	if err := k.Unmarshal("", cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// TickInterval returns the configured refresh period, or 0 to let the
// engine pick its default.
func (c *Config) TickInterval() time.Duration {
	if c.TickIntervalMS <= 0 {
		return 0
	}
	return time.Duration(c.TickIntervalMS) * time.Millisecond
}

func getConfigPaths() []string {
	paths := []string{}

	// 1. ~/.config/flipbook/config.toml
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".config", "flipbook", "config.toml"))
	}

	// 2. ./config.toml (pwd, highest priority)
	paths = append(paths, "config.toml")

	return paths
}
