// Package config handles global configuration and local data paths.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// GlobalConfig represents configuration stored in ~/.config/mmpulse/config.yml.
// Environment variables take priority over every file value.
type GlobalConfig struct {
	ServerURL      string              `yaml:"server_url,omitempty"`
	Token          string              `yaml:"token,omitempty"`
	OpenAIAPIKey   string              `yaml:"openai_api_key,omitempty"`
	DefaultChannel string              `yaml:"default_channel,omitempty"`
	Categories     map[string][]string `yaml:"categories,omitempty"`
}

const (
	// GlobalConfigDir is the directory name under XDG_CONFIG_HOME.
	GlobalConfigDir = "mmpulse"
	// GlobalConfigFile is the config file name.
	GlobalConfigFile = "config.yml"
)

// Environment variables consulted before the config file.
const (
	EnvServerURL = "MATTERMOST_SERVER_URL"
	EnvToken     = "MATTERMOST_TOKEN"
	EnvOpenAIKey = "OPENAI_API_KEY"
)

// globalConfigCache caches the loaded global config.
var globalConfigCache *GlobalConfig

// GlobalConfigPath returns the path to the global config file.
// Respects XDG_CONFIG_HOME, defaults to ~/.config/mmpulse/config.yml.
func GlobalConfigPath() string {
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		configHome = filepath.Join(home, ".config")
	}
	return filepath.Join(configHome, GlobalConfigDir, GlobalConfigFile)
}

// LoadGlobalConfig loads the global configuration file.
// Returns an empty config (not an error) if the file doesn't exist.
func LoadGlobalConfig() (*GlobalConfig, error) {
	if globalConfigCache != nil {
		return globalConfigCache, nil
	}

	path := GlobalConfigPath()
	if path == "" {
		return &GlobalConfig{}, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &GlobalConfig{}, nil
		}
		return nil, fmt.Errorf("reading global config: %w", err)
	}

	var cfg GlobalConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing global config: %w", err)
	}

	globalConfigCache = &cfg
	return &cfg, nil
}

// SaveGlobalConfig writes the global configuration file, creating the
// config directory if needed, and refreshes the cache.
func SaveGlobalConfig(cfg *GlobalConfig) error {
	path := GlobalConfigPath()
	if path == "" {
		return fmt.Errorf("cannot determine config path")
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("encoding global config: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	// The file holds access tokens, so keep it owner-only.
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("writing global config: %w", err)
	}

	globalConfigCache = cfg
	return nil
}

// ResetGlobalConfigCache clears the cached global config.
// Useful for testing.
func ResetGlobalConfigCache() {
	globalConfigCache = nil
}

// GetServerURL returns the Mattermost server URL, preferring the
// MATTERMOST_SERVER_URL environment variable over the config file.
func GetServerURL() string {
	if v := os.Getenv(EnvServerURL); v != "" {
		return v
	}
	cfg, _ := LoadGlobalConfig()
	return cfg.ServerURL
}

// GetToken returns the Mattermost access token, preferring the
// MATTERMOST_TOKEN environment variable over the config file.
func GetToken() string {
	if v := os.Getenv(EnvToken); v != "" {
		return v
	}
	cfg, _ := LoadGlobalConfig()
	return cfg.Token
}

// GetOpenAIKey returns the OpenAI API key, preferring the
// OPENAI_API_KEY environment variable over the config file.
func GetOpenAIKey() string {
	if v := os.Getenv(EnvOpenAIKey); v != "" {
		return v
	}
	cfg, _ := LoadGlobalConfig()
	return cfg.OpenAIAPIKey
}

// GetDefaultChannel returns the configured default channel id, if any.
func GetDefaultChannel() string {
	cfg, _ := LoadGlobalConfig()
	return cfg.DefaultChannel
}

// GetCategories returns the configured category-to-emoji assignment, or
// nil when the user has not overridden the defaults.
func GetCategories() map[string][]string {
	cfg, _ := LoadGlobalConfig()
	return cfg.Categories
}

// HelpfulConfigMessage returns setup guidance for a missing connection.
func HelpfulConfigMessage() string {
	configPath := GlobalConfigPath()
	return fmt.Sprintf(`No Mattermost connection configured.

Tip: Store the server and token in %s:
  mmpulse config server-url https://mattermost.example.com
  mmpulse config token <personal-access-token>

Or export %s and %s in your environment.`,
		configPath,
		EnvServerURL,
		EnvToken)
}
