// Package config handles configuration loading and management for Maestro.
// It supports XDG config paths, project-level overrides, and environment
// variables.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
	"go.yaml.in/yaml/v3"
)

// Config holds all configuration for Maestro.
type Config struct {
	Defaults DefaultsConfig `mapstructure:"defaults"`
	Paths    PathsConfig    `mapstructure:"paths"`
	Recovery RecoveryConfig `mapstructure:"recovery"`
}

// DefaultsConfig holds default values for new group chats.
type DefaultsConfig struct {
	// ModeratorAgent is the agent type id used for new chat moderators.
	ModeratorAgent string `mapstructure:"moderator_agent"`
	// WorkDir is the working directory for participants spawned fresh from
	// an agent type mention.
	WorkDir string `mapstructure:"work_dir"`
	// ReadOnly routes all messages in read-only mode when set.
	ReadOnly bool `mapstructure:"read_only"`
}

// PathsConfig holds filesystem locations.
type PathsConfig struct {
	// DataDir is where chats, logs, and history are persisted.
	DataDir string `mapstructure:"data_dir"`
	// AgentsFile is an optional YAML file defining custom agent profiles.
	AgentsFile string `mapstructure:"agents_file"`
}

// RecoveryConfig holds session-recovery tuning.
type RecoveryConfig struct {
	// ContextMessages is how many trailing log entries a recovery context
	// includes.
	ContextMessages int `mapstructure:"context_messages"`
}

// Load loads configuration from XDG paths, project overrides, and
// environment variables.
// Precedence (highest to lowest):
// 1. Environment variables (MAESTRO_*)
// 2. Project config (.maestro.yaml in current directory or a parent)
// 3. User config (~/.config/maestro/config.yaml)
// 4. Built-in defaults
func Load() (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(getUserConfigDir())

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading user config: %w", err)
		}
	}

	if projectConfig := findProjectConfig(); projectConfig != "" {
		projectViper := viper.New()
		projectViper.SetConfigFile(projectConfig)
		if err := projectViper.ReadInConfig(); err == nil {
			if err := v.MergeConfigMap(projectViper.AllSettings()); err != nil {
				return nil, fmt.Errorf("merging project config: %w", err)
			}
		}
	}

	v.SetEnvPrefix("MAESTRO")
	v.AutomaticEnv()
	v.BindEnv("paths.data_dir", "MAESTRO_DATA_DIR")
	v.BindEnv("defaults.moderator_agent", "MAESTRO_MODERATOR_AGENT")

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}
	return cfg, nil
}

// LoadFromPath loads configuration from a specific path (for testing).
func LoadFromPath(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("reading config from %s: %w", path, err)
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}
	return cfg, nil
}

// Save writes the configuration to the user config file, creating the
// config directory when needed.
func Save(c *Config) error {
	dir := getUserConfigDir()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config dir: %w", err)
	}

	data, err := yaml.Marshal(c.asMap())
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// asMap renders the config with the same keys Load reads.
func (c *Config) asMap() map[string]any {
	return map[string]any{
		"defaults": map[string]any{
			"moderator_agent": c.Defaults.ModeratorAgent,
			"work_dir":        c.Defaults.WorkDir,
			"read_only":       c.Defaults.ReadOnly,
		},
		"paths": map[string]any{
			"data_dir":    c.Paths.DataDir,
			"agents_file": c.Paths.AgentsFile,
		},
		"recovery": map[string]any{
			"context_messages": c.Recovery.ContextMessages,
		},
	}
}

// GetUserConfigPath returns the path to the user config file.
func GetUserConfigPath() string {
	return filepath.Join(getUserConfigDir(), "config.yaml")
}

// setDefaults configures default values.
func setDefaults(v *viper.Viper) {
	v.SetDefault("defaults.moderator_agent", "claude-code")
	v.SetDefault("defaults.work_dir", "")
	v.SetDefault("defaults.read_only", false)
	v.SetDefault("paths.data_dir", getDefaultDataDir())
	v.SetDefault("paths.agents_file", filepath.Join(getUserConfigDir(), "agents.yaml"))
	v.SetDefault("recovery.context_messages", 30)
}

// getUserConfigDir returns the XDG config directory for Maestro.
func getUserConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "maestro")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".maestro"
	}
	return filepath.Join(home, ".config", "maestro")
}

// getDefaultDataDir returns the XDG data directory for Maestro.
func getDefaultDataDir() string {
	if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
		return filepath.Join(xdg, "maestro")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".maestro-data"
	}
	return filepath.Join(home, ".local", "share", "maestro")
}

// findProjectConfig walks up from the working directory looking for a
// .maestro.yaml override.
func findProjectConfig() string {
	dir, err := os.Getwd()
	if err != nil {
		return ""
	}
	for {
		candidate := filepath.Join(dir, ".maestro.yaml")
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}
