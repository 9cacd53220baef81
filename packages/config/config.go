// Package config loads tool defaults from .httpc.yaml. Command-line
// flags always win over file values.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds the tool-wide defaults.
type Config struct {
	UserAgent string `yaml:"user_agent,omitempty"`
	// TimeoutMS bounds each round trip in milliseconds. 0 keeps the
	// historical behavior of blocking indefinitely on a hung peer.
	TimeoutMS     int    `yaml:"timeout,omitempty"`
	CacheDir      string `yaml:"cache_dir,omitempty"`
	LogFile       string `yaml:"log_file,omitempty"`
	LogMaxSize    int64  `yaml:"log_max_size,omitempty"` // bytes
	MetricsFile   string `yaml:"metrics_file,omitempty"`
	HistoryDB     string `yaml:"history_db,omitempty"`
	MaxConcurrent int    `yaml:"max_concurrent,omitempty"`
	NoColor       *bool  `yaml:"no_color,omitempty"`
}

// ConfigFilenames contains the config file names searched in order.
var ConfigFilenames = []string{
	".httpc.yaml",
	".httpc.yml",
	"httpc.yaml",
}

func Default() *Config {
	return &Config{
		TimeoutMS:     0,
		CacheDir:      ".httpc-cache",
		LogFile:       "httpc.log",
		LogMaxSize:    1 << 20,
		MetricsFile:   "httpc-metrics.log",
		HistoryDB:     ".httpc-history.db",
		MaxConcurrent: 16,
	}
}

// Load reads configuration from path, or, when path is empty, searches
// the current directory and then the home directory. Missing files are
// not an error; defaults apply.
func Load(path string) (*Config, error) {
	if path != "" {
		return loadFile(path)
	}

	dirs := []string{"."}
	if home, err := os.UserHomeDir(); err == nil {
		dirs = append(dirs, home)
	}
	for _, dir := range dirs {
		for _, name := range ConfigFilenames {
			p := filepath.Join(dir, name)
			if _, err := os.Stat(p); err == nil {
				return loadFile(p)
			}
		}
	}

	return Default(), nil
}

func loadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

// Timeout returns the round-trip timeout as a duration.
func (c *Config) Timeout() time.Duration {
	return time.Duration(c.TimeoutMS) * time.Millisecond
}

// GetNoColor returns the no_color setting, defaulting to false.
func (c *Config) GetNoColor() bool {
	if c.NoColor == nil {
		return false
	}
	return *c.NoColor
}
