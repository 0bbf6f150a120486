// Package config handles configuration loading and validation for roomchat.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Document store backends.
const (
	BackendJSONFile = "jsonfile"
	BackendBadger   = "badger"
	BackendSQLite   = "sqlite"
	BackendRedis    = "redis"
)

// Config holds the application configuration.
type Config struct {
	Store   StoreConfig `yaml:"store"`
	Chat    ChatConfig  `yaml:"chat"`
	Auth    AuthConfig  `yaml:"auth"`
	DataDir string      `yaml:"-"` // set by caller, not from config file
}

// StoreConfig addresses the document store holding chat messages.
type StoreConfig struct {
	Backend      string `yaml:"backend"`
	DatabaseID   string `yaml:"database_id"`
	CollectionID string `yaml:"collection_id"`
	Path         string `yaml:"path"`       // backend data path, defaults under DataDir
	RedisAddr    string `yaml:"redis_addr"` // redis backend only
}

// ChatConfig tunes the chat client.
type ChatConfig struct {
	// ReconcileDelay is how long to wait after a successful send before
	// re-fetching the room.
	ReconcileDelay time.Duration `yaml:"reconcile_delay"`
	// RequestTimeout bounds a single store call.
	RequestTimeout time.Duration `yaml:"request_timeout"`
	// RenderMarkdown renders message text as markdown in the TUI.
	RenderMarkdown bool `yaml:"render_markdown"`
}

// AuthConfig holds session settings.
type AuthConfig struct {
	TokenTTL time.Duration `yaml:"token_ttl"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Store: StoreConfig{
			Backend: BackendJSONFile,
		},
		Chat: ChatConfig{
			ReconcileDelay: 300 * time.Millisecond,
			RequestTimeout: 5 * time.Second,
		},
		Auth: AuthConfig{
			TokenTTL: 30 * 24 * time.Hour,
		},
	}
}

// Load reads configuration from the given path and sets the data directory.
// If configPath is empty or doesn't exist, returns defaults with the provided dataDir.
func Load(configPath, dataDir string) (*Config, error) {
	cfg := DefaultConfig()
	cfg.DataDir = dataDir

	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			data, err := os.ReadFile(configPath)
			if err != nil {
				return nil, fmt.Errorf("read config file: %w", err)
			}

			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return nil, fmt.Errorf("parse config file: %w", err)
			}

			// Re-set dataDir since Unmarshal may have cleared it
			cfg.DataDir = dataDir
		}
	}

	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

// applyDefaults sets default values for any unset configuration options.
func (c *Config) applyDefaults() {
	defaults := DefaultConfig()
	if c.Store.Backend == "" {
		c.Store.Backend = defaults.Store.Backend
	}
	if c.Chat.ReconcileDelay == 0 {
		c.Chat.ReconcileDelay = defaults.Chat.ReconcileDelay
	}
	if c.Chat.RequestTimeout == 0 {
		c.Chat.RequestTimeout = defaults.Chat.RequestTimeout
	}
	if c.Auth.TokenTTL == 0 {
		c.Auth.TokenTTL = defaults.Auth.TokenTTL
	}
}

// StorePath returns the on-disk location for file backed stores.
func (c *Config) StorePath() string {
	if c.Store.Path != "" {
		return c.Store.Path
	}
	switch c.Store.Backend {
	case BackendBadger:
		return filepath.Join(c.DataDir, "badger")
	case BackendSQLite:
		return filepath.Join(c.DataDir, "roomchat.db")
	default:
		return filepath.Join(c.DataDir, "documents")
	}
}

// AccountsFile returns the path to the accounts JSON file.
func (c *Config) AccountsFile() string {
	return filepath.Join(c.DataDir, "accounts.json")
}

// SessionFile returns the path to the file holding the current session token.
func (c *Config) SessionFile() string {
	return filepath.Join(c.DataDir, "session.json")
}

// SecretFile returns the path to the key used to sign session tokens.
func (c *Config) SecretFile() string {
	return filepath.Join(c.DataDir, "secret.key")
}
