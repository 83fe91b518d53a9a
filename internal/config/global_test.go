package config

import (
	"os"
	"path/filepath"
	"testing"

	"gopkg.in/yaml.v3"
)

func TestGlobalConfigPath(t *testing.T) {
	// Save and restore XDG_CONFIG_HOME
	orig := os.Getenv("XDG_CONFIG_HOME")
	defer os.Setenv("XDG_CONFIG_HOME", orig)

	// Test with custom XDG_CONFIG_HOME
	os.Setenv("XDG_CONFIG_HOME", "/custom/config")
	path := GlobalConfigPath()
	want := "/custom/config/mmpulse/config.yml"
	if path != want {
		t.Errorf("GlobalConfigPath() = %q, want %q", path, want)
	}

	// Test with empty XDG_CONFIG_HOME (should use ~/.config)
	os.Setenv("XDG_CONFIG_HOME", "")
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("Cannot get home directory")
	}
	path = GlobalConfigPath()
	want = filepath.Join(home, ".config", "mmpulse", "config.yml")
	if path != want {
		t.Errorf("GlobalConfigPath() = %q, want %q", path, want)
	}
}

func TestLoadGlobalConfig_NotFound(t *testing.T) {
	ResetGlobalConfigCache()
	defer ResetGlobalConfigCache()

	orig := os.Getenv("XDG_CONFIG_HOME")
	defer os.Setenv("XDG_CONFIG_HOME", orig)

	// Point to a non-existent directory
	tmpDir := t.TempDir()
	os.Setenv("XDG_CONFIG_HOME", tmpDir)

	cfg, err := LoadGlobalConfig()
	if err != nil {
		t.Fatalf("LoadGlobalConfig() error = %v", err)
	}
	if cfg == nil {
		t.Fatal("LoadGlobalConfig() returned nil")
	}
	if cfg.ServerURL != "" {
		t.Errorf("ServerURL = %q, want empty", cfg.ServerURL)
	}
}

func TestLoadGlobalConfig_Valid(t *testing.T) {
	ResetGlobalConfigCache()
	defer ResetGlobalConfigCache()

	orig := os.Getenv("XDG_CONFIG_HOME")
	defer os.Setenv("XDG_CONFIG_HOME", orig)

	tmpDir := t.TempDir()
	configDir := filepath.Join(tmpDir, "mmpulse")
	if err := os.MkdirAll(configDir, 0755); err != nil {
		t.Fatal(err)
	}

	cfgData := GlobalConfig{
		ServerURL:      "https://chat.example.com",
		Token:          "test-token",
		OpenAIAPIKey:   "sk-test",
		DefaultChannel: "chan123",
		Categories: map[string][]string{
			"Done": {"leaves", "ice_cube"},
		},
	}
	data, _ := yaml.Marshal(cfgData)
	configFile := filepath.Join(configDir, "config.yml")
	if err := os.WriteFile(configFile, data, 0644); err != nil {
		t.Fatal(err)
	}

	os.Setenv("XDG_CONFIG_HOME", tmpDir)

	cfg, err := LoadGlobalConfig()
	if err != nil {
		t.Fatalf("LoadGlobalConfig() error = %v", err)
	}

	if cfg.ServerURL != "https://chat.example.com" {
		t.Errorf("ServerURL = %q, want https://chat.example.com", cfg.ServerURL)
	}
	if cfg.Token != "test-token" {
		t.Errorf("Token = %q, want test-token", cfg.Token)
	}
	if cfg.OpenAIAPIKey != "sk-test" {
		t.Errorf("OpenAIAPIKey = %q, want sk-test", cfg.OpenAIAPIKey)
	}
	if cfg.DefaultChannel != "chan123" {
		t.Errorf("DefaultChannel = %q, want chan123", cfg.DefaultChannel)
	}
	if len(cfg.Categories["Done"]) != 2 {
		t.Errorf("Categories[Done] = %v, want two emojis", cfg.Categories["Done"])
	}
}

func TestLoadGlobalConfig_InvalidYAML(t *testing.T) {
	ResetGlobalConfigCache()
	defer ResetGlobalConfigCache()

	orig := os.Getenv("XDG_CONFIG_HOME")
	defer os.Setenv("XDG_CONFIG_HOME", orig)

	tmpDir := t.TempDir()
	configDir := filepath.Join(tmpDir, "mmpulse")
	if err := os.MkdirAll(configDir, 0755); err != nil {
		t.Fatal(err)
	}
	configFile := filepath.Join(configDir, "config.yml")
	if err := os.WriteFile(configFile, []byte("{not yaml: ["), 0644); err != nil {
		t.Fatal(err)
	}

	os.Setenv("XDG_CONFIG_HOME", tmpDir)

	if _, err := LoadGlobalConfig(); err == nil {
		t.Error("LoadGlobalConfig() should return error for invalid YAML")
	}
}

func TestSaveGlobalConfigRoundTrip(t *testing.T) {
	ResetGlobalConfigCache()
	defer ResetGlobalConfigCache()

	orig := os.Getenv("XDG_CONFIG_HOME")
	defer os.Setenv("XDG_CONFIG_HOME", orig)

	tmpDir := t.TempDir()
	os.Setenv("XDG_CONFIG_HOME", tmpDir)

	cfg := &GlobalConfig{ServerURL: "https://chat.example.com", Token: "tok"}
	if err := SaveGlobalConfig(cfg); err != nil {
		t.Fatalf("SaveGlobalConfig() error = %v", err)
	}

	ResetGlobalConfigCache()
	loaded, err := LoadGlobalConfig()
	if err != nil {
		t.Fatalf("LoadGlobalConfig() error = %v", err)
	}
	if loaded.ServerURL != cfg.ServerURL || loaded.Token != cfg.Token {
		t.Errorf("loaded = %+v, want %+v", loaded, cfg)
	}

	// The file holds a token and must not be group/world readable.
	info, err := os.Stat(GlobalConfigPath())
	if err != nil {
		t.Fatal(err)
	}
	if perm := info.Mode().Perm(); perm != 0600 {
		t.Errorf("config file mode = %o, want 600", perm)
	}
}

func TestGetTokenEnvPriority(t *testing.T) {
	ResetGlobalConfigCache()
	defer ResetGlobalConfigCache()

	origToken := os.Getenv(EnvToken)
	origXDG := os.Getenv("XDG_CONFIG_HOME")
	defer func() {
		os.Setenv(EnvToken, origToken)
		os.Setenv("XDG_CONFIG_HOME", origXDG)
	}()

	tmpDir := t.TempDir()
	os.Setenv("XDG_CONFIG_HOME", tmpDir)

	configDir := filepath.Join(tmpDir, "mmpulse")
	os.MkdirAll(configDir, 0755)
	data, _ := yaml.Marshal(GlobalConfig{Token: "config-token"})
	os.WriteFile(filepath.Join(configDir, "config.yml"), data, 0644)

	// Env var takes priority
	os.Setenv(EnvToken, "env-token")
	if got := GetToken(); got != "env-token" {
		t.Errorf("GetToken() = %q, want env-token", got)
	}

	// Without env var, falls back to config
	os.Setenv(EnvToken, "")
	ResetGlobalConfigCache()
	if got := GetToken(); got != "config-token" {
		t.Errorf("GetToken() = %q, want config-token", got)
	}
}

func TestGlobalConfigCache(t *testing.T) {
	ResetGlobalConfigCache()
	defer ResetGlobalConfigCache()

	orig := os.Getenv("XDG_CONFIG_HOME")
	defer os.Setenv("XDG_CONFIG_HOME", orig)

	tmpDir := t.TempDir()
	configDir := filepath.Join(tmpDir, "mmpulse")
	os.MkdirAll(configDir, 0755)
	configFile := filepath.Join(configDir, "config.yml")
	data, _ := yaml.Marshal(GlobalConfig{ServerURL: "https://first.example.com"})
	os.WriteFile(configFile, data, 0644)

	os.Setenv("XDG_CONFIG_HOME", tmpDir)

	cfg1, _ := LoadGlobalConfig()
	if cfg1.ServerURL != "https://first.example.com" {
		t.Errorf("First load: ServerURL = %q", cfg1.ServerURL)
	}

	// Modify file; second load should return the cached value
	data, _ = yaml.Marshal(GlobalConfig{ServerURL: "https://second.example.com"})
	os.WriteFile(configFile, data, 0644)

	cfg2, _ := LoadGlobalConfig()
	if cfg2.ServerURL != "https://first.example.com" {
		t.Errorf("Second load: ServerURL = %q, want cached value", cfg2.ServerURL)
	}

	// After reset, the modified file is read
	ResetGlobalConfigCache()
	cfg3, _ := LoadGlobalConfig()
	if cfg3.ServerURL != "https://second.example.com" {
		t.Errorf("Third load: ServerURL = %q, want modified value", cfg3.ServerURL)
	}
}

func TestHelpfulConfigMessage(t *testing.T) {
	msg := HelpfulConfigMessage()
	if msg == "" {
		t.Error("HelpfulConfigMessage() returned empty string")
	}
	if len(msg) < 50 {
		t.Error("HelpfulConfigMessage() seems too short")
	}
}
