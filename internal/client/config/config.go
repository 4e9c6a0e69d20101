// Package config loads runtime configuration for the storypin binaries.
//
// Sources and precedence: built-in defaults, then an optional YAML file
// (environment variables are expanded inside it, with .env loaded first),
// then command-line flags handled by the cobra layer.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	API      APIConfig      `yaml:"api"`
	Database DatabaseConfig `yaml:"database"`
	Sync     SyncConfig     `yaml:"sync"`
	Cache    CacheConfig    `yaml:"cache"`
	LogLevel string         `yaml:"log_level"`
}

type APIConfig struct {
	BaseURL string        `yaml:"base_url"`
	Timeout time.Duration `yaml:"timeout"`
	Retry   RetryConfig   `yaml:"retry"`
}

type RetryConfig struct {
	MaxAttempts    int           `yaml:"max_attempts"`
	InitialBackoff time.Duration `yaml:"initial_backoff"`
}

// DatabaseConfig locates the local SQLite database backing the offline
// store.
type DatabaseConfig struct {
	Path string `yaml:"path"`
}

func (d DatabaseConfig) DSN() string { return d.Path }

type SyncConfig struct {
	Interval time.Duration `yaml:"interval"`
}

// CacheConfig configures the cacheworker proxy.
type CacheConfig struct {
	ListenAddr string `yaml:"listen_addr"`
	Name       string `yaml:"name"`
	Path       string `yaml:"path"`

	// Precache lists the request paths fetched and stored on install.
	Precache []string `yaml:"precache"`

	// ShellPath is the path served when a navigation request cannot be
	// satisfied from network or cache.
	ShellPath string `yaml:"shell_path"`

	// PushURL is the websocket endpoint streaming push payloads.
	PushURL string `yaml:"push_url"`
}

// Load reads an optional YAML config file. A missing file is not an error:
// the defaults stand on their own. Values inside the file may reference
// environment variables ($VAR), with .env loaded beforehand.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			expanded := os.ExpandEnv(string(data))
			if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
				return nil, fmt.Errorf("parse config: %w", err)
			}
		case os.IsNotExist(err):
			// fall through to defaults
		default:
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	cfg.setDefaults()
	return &cfg, nil
}

func (c *Config) setDefaults() {
	if c.API.BaseURL == "" {
		c.API.BaseURL = "https://story-api.dicoding.dev/v1"
	}
	if c.API.Timeout == 0 {
		c.API.Timeout = 30 * time.Second
	}
	if c.API.Retry.MaxAttempts == 0 {
		c.API.Retry.MaxAttempts = 2
	}
	if c.API.Retry.InitialBackoff == 0 {
		c.API.Retry.InitialBackoff = 500 * time.Millisecond
	}
	if c.Database.Path == "" {
		c.Database.Path = defaultDatabasePath()
	}
	if c.Sync.Interval == 0 {
		c.Sync.Interval = 30 * time.Second
	}
	if c.Cache.ListenAddr == "" {
		c.Cache.ListenAddr = "127.0.0.1:8974"
	}
	if c.Cache.Name == "" {
		c.Cache.Name = "storypin-v1"
	}
	if c.Cache.Path == "" {
		c.Cache.Path = "cacheworker.db"
	}
	if c.Cache.ShellPath == "" {
		c.Cache.ShellPath = "/index.html"
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
}

func defaultDatabasePath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "storypin.db"
	}
	return filepath.Join(dir, "storypin", "storypin.db")
}
