// Package config manages application-level configuration.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/i978sukhoi/nbwin/internal/publicip"
)

const (
	// AppName is the application identifier used for XDG paths.
	AppName = "nbwin"
	// ConfigFileName is the name of the main configuration file.
	ConfigFileName = "config.yaml"
	// LogFileName is the name of the log file written in TUI mode.
	LogFileName = "nbwin.log"
)

// validSources are the accepted counter source names. The empty string is
// treated as auto.
var validSources = map[string]bool{
	"":         true,
	"auto":     true,
	"gopsutil": true,
	"procfs":   true,
}

// PublicIPConfig controls the public address resolver.
type PublicIPConfig struct {
	Enabled         bool     `yaml:"enabled"`
	CacheTTLSeconds int      `yaml:"cache_ttl_seconds"`
	TimeoutSeconds  int      `yaml:"timeout_seconds"`
	Services        []string `yaml:"services"`
}

// CacheTTL returns the cache lifetime as a duration.
func (p *PublicIPConfig) CacheTTL() time.Duration {
	return time.Duration(p.CacheTTLSeconds) * time.Second
}

// Timeout returns the per-request timeout as a duration.
func (p *PublicIPConfig) Timeout() time.Duration {
	return time.Duration(p.TimeoutSeconds) * time.Second
}

// Config represents the application configuration.
type Config struct {
	UpdateIntervalMs int            `yaml:"update_interval_ms"`
	PollIntervalMs   int            `yaml:"poll_interval_ms"`
	HistorySize      int            `yaml:"history_size"`
	ScaleFloorBytes  int            `yaml:"scale_floor_bytes"`
	ScaleHeadroom    float64        `yaml:"scale_headroom"`
	Source           string         `yaml:"source"`
	PublicIP         PublicIPConfig `yaml:"public_ip"`
}

// DefaultConfig returns a configuration with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		UpdateIntervalMs: 1000,
		PollIntervalMs:   100,
		HistorySize:      60,
		ScaleFloorBytes:  1024 * 1024,
		ScaleHeadroom:    1.1,
		Source:           "auto",
		PublicIP: PublicIPConfig{
			Enabled:         true,
			CacheTTLSeconds: 300,
			TimeoutSeconds:  3,
			Services:        publicip.DefaultServices(),
		},
	}
}

// UpdateInterval returns the tick cadence as a duration.
func (c *Config) UpdateInterval() time.Duration {
	return time.Duration(c.UpdateIntervalMs) * time.Millisecond
}

// PollInterval returns the driver loop granularity as a duration.
func (c *Config) PollInterval() time.Duration {
	return time.Duration(c.PollIntervalMs) * time.Millisecond
}

// clone returns a deep copy so callers cannot alias the services slice.
func (c *Config) clone() *Config {
	clone := *c
	clone.PublicIP.Services = append([]string(nil), c.PublicIP.Services...)
	return &clone
}

// Paths holds the resolved configuration and state directories.
type Paths struct {
	ConfigDir  string
	ConfigFile string
	StateDir   string
	LogFile    string
}

// GetPaths returns the configuration paths following XDG Base Directory spec.
func GetPaths() (*Paths, error) {
	configHome := os.Getenv("XDG_CONFIG_HOME")
	stateHome := os.Getenv("XDG_STATE_HOME")

	if configHome == "" || stateHome == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get home directory: %w", err)
		}
		if configHome == "" {
			configHome = filepath.Join(homeDir, ".config")
		}
		if stateHome == "" {
			stateHome = filepath.Join(homeDir, ".local", "state")
		}
	}

	configDir := filepath.Join(configHome, AppName)
	stateDir := filepath.Join(stateHome, AppName)

	return &Paths{
		ConfigDir:  configDir,
		ConfigFile: filepath.Join(configDir, ConfigFileName),
		StateDir:   stateDir,
		LogFile:    filepath.Join(stateDir, LogFileName),
	}, nil
}

// EnsurePaths creates all necessary directories.
func (p *Paths) EnsurePaths() error {
	if err := os.MkdirAll(p.ConfigDir, 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := os.MkdirAll(p.StateDir, 0700); err != nil {
		return fmt.Errorf("failed to create state directory: %w", err)
	}
	return nil
}

// Load reads the configuration from disk. A missing file yields the defaults;
// a present file is decoded over them, so partial files are fine.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path) // #nosec G304 -- path comes from XDG resolution or an explicit flag
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultConfig(), nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return cfg, nil
}

// Save writes the configuration to disk atomically.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := atomicWrite(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// atomicWrite writes data using a write-rename pattern so the target file is
// never in a partially-written state. The temp file name is unique to avoid
// collisions with concurrent writes.
func atomicWrite(path string, data []byte, perm os.FileMode) error {
	dir := filepath.Dir(path)
	pattern := filepath.Base(path) + ".tmp.*"

	tmpFile, err := os.CreateTemp(dir, pattern)
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	success := false
	defer func() {
		if !success {
			_ = os.Remove(tmpPath)
		}
	}()

	if _, err := tmpFile.Write(data); err != nil {
		_ = tmpFile.Close()
		return fmt.Errorf("write temp file: %w", err)
	}

	// Sync to ensure durability before rename
	if err := tmpFile.Sync(); err != nil {
		_ = tmpFile.Close()
		return fmt.Errorf("sync temp file: %w", err)
	}

	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}

	// CreateTemp uses 0600 by default
	if err := os.Chmod(tmpPath, perm); err != nil {
		return fmt.Errorf("chmod temp file: %w", err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("rename to final path: %w", err)
	}

	success = true
	return nil
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.UpdateIntervalMs <= 0 {
		return fmt.Errorf("update interval must be positive")
	}
	if c.PollIntervalMs <= 0 {
		return fmt.Errorf("poll interval must be positive")
	}
	if c.PollIntervalMs > c.UpdateIntervalMs {
		return fmt.Errorf("poll interval must not exceed the update interval")
	}
	if c.HistorySize <= 0 {
		return fmt.Errorf("history size must be positive")
	}
	if c.ScaleFloorBytes < 0 {
		return fmt.Errorf("scale floor must be non-negative")
	}
	if c.ScaleHeadroom < 1 {
		return fmt.Errorf("scale headroom must be at least 1")
	}
	if !validSources[c.Source] {
		return fmt.Errorf("counter source must be one of auto, gopsutil, procfs")
	}

	if c.PublicIP.Enabled {
		if c.PublicIP.CacheTTLSeconds <= 0 {
			return fmt.Errorf("public IP cache TTL must be positive")
		}
		if c.PublicIP.TimeoutSeconds <= 0 {
			return fmt.Errorf("public IP timeout must be positive")
		}
		if len(c.PublicIP.Services) == 0 {
			return fmt.Errorf("public IP services must not be empty")
		}
	}

	return nil
}

// Manager provides high-level configuration management.
// It is safe for concurrent use from multiple goroutines.
type Manager struct {
	paths  *Paths       // Immutable after construction
	config *Config      // Protected by mu
	mu     sync.RWMutex // Protects config only
}

// NewManager creates a new configuration manager. It ensures all necessary
// directories exist, loads and validates the configuration, and writes the
// defaults on first run so users have a file to edit.
func NewManager() (*Manager, error) {
	paths, err := GetPaths()
	if err != nil {
		return nil, fmt.Errorf("failed to get config paths: %w", err)
	}

	if err := paths.EnsurePaths(); err != nil {
		return nil, fmt.Errorf("failed to create config directories: %w", err)
	}

	cfg, err := Load(paths.ConfigFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config at %s: %w", paths.ConfigFile, err)
	}

	if _, err := os.Stat(paths.ConfigFile); os.IsNotExist(err) {
		if err := Save(paths.ConfigFile, cfg); err != nil {
			slog.Warn("Failed to write default config", "path", paths.ConfigFile, "error", err)
		}
	}

	return &Manager{
		paths:  paths,
		config: cfg,
	}, nil
}

// GetConfig returns a copy of the current configuration.
// The returned copy is safe to read without holding locks.
func (m *Manager) GetConfig() *Config {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.config.clone()
}

// GetConfigDir returns the path to the configuration directory.
func (m *Manager) GetConfigDir() string {
	return m.paths.ConfigDir
}

// GetLogFile returns the path of the log file written in TUI mode.
func (m *Manager) GetLogFile() string {
	return m.paths.LogFile
}

// SaveConfig saves the current configuration to disk.
func (m *Manager) SaveConfig() error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return Save(m.paths.ConfigFile, m.config)
}
