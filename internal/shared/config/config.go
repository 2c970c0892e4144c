// Package config provides configuration management
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"gopkg.in/yaml.v3"
)

// ServerConfig represents server mode configuration
type ServerConfig struct {
	APIKey         string `yaml:"api-key"`
	Listen         string `yaml:"listen"`
	StateDir       string `yaml:"state-dir"`
	ReadTimeout    int    `yaml:"read-timeout"`
	WriteTimeout   int    `yaml:"write-timeout"`
	CommandTimeout int    `yaml:"command-timeout"`
	RateLimit      int    `yaml:"rate-limit"`
}

// DefaultServerConfig returns the default server configuration
func DefaultServerConfig() *ServerConfig {
	return &ServerConfig{
		Listen:         "127.0.0.1:9321",
		StateDir:       GetDefaultStateDir(),
		ReadTimeout:    30,
		WriteTimeout:   60,
		CommandTimeout: 10,
		RateLimit:      30,
	}
}

// LoadFile overlays settings from a YAML config file onto c. Missing file is
// not an error when the path was not explicitly requested.
func (c *ServerConfig) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return nil
}

// GetDefaultStateDir returns the default state directory.
// On Windows the snapshot and journal live under %LOCALAPPDATA%\wintune so
// they survive next to other per-machine app data; elsewhere the usual XDG
// layout applies.
func GetDefaultStateDir() string {
	if runtime.GOOS == "windows" {
		if localAppData := os.Getenv("LOCALAPPDATA"); localAppData != "" {
			return filepath.Join(localAppData, "wintune")
		}
	}

	if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
		return filepath.Join(xdgConfig, "wintune")
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "/var/lib/wintune"
	}

	return filepath.Join(homeDir, ".config", "wintune")
}

// GetHistoryDir returns the history directory path
func (c *ServerConfig) GetHistoryDir() string {
	return filepath.Join(c.StateDir, "history")
}

// GetSnapshotPath returns the path of the single snapshot document
func (c *ServerConfig) GetSnapshotPath() string {
	return filepath.Join(c.StateDir, "snapshot.json")
}

// GetLockPath returns the path of the cross-process state lock
func (c *ServerConfig) GetLockPath() string {
	return filepath.Join(c.StateDir, ".lock")
}
