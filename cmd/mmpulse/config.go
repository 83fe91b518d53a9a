package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"mmpulse/internal/config"
)

func init() {
	rootCmd.AddCommand(configCmd)
}

var configCmd = &cobra.Command{
	Use:   "config [key] [value]",
	Short: "Get or set configuration values",
	Long: `Get or set configuration values.

Values are stored in $XDG_CONFIG_HOME/mmpulse/config.yml. The
MATTERMOST_SERVER_URL, MATTERMOST_TOKEN, and OPENAI_API_KEY environment
variables (or a .env file) take priority over stored values.

Usage:
  mmpulse config                                    # Show all config
  mmpulse config server-url                         # Get specific value
  mmpulse config server-url https://mm.example.com  # Set value
  mmpulse config token <personal-access-token>      # Set API token
  mmpulse config default-channel jx7q...            # Set default channel

Keys:
  server-url       Mattermost server base URL
  token            Personal access token for the Mattermost API
  openai-api-key   OpenAI API key for summarize / improve
  default-channel  Channel used when a command gets no channel argument

Reaction categories can be adjusted by editing the categories mapping
in the config file directly, or per run with --categories.`,
	Args: cobra.MaximumNArgs(2),
	RunE: runConfig,
}

func runConfig(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadGlobalConfig()
	if err != nil {
		exitWithError(ExitConfigError, "loading config: %v", err)
	}

	// No args: show all config
	if len(args) == 0 {
		if humanOutput {
			fmt.Printf("server-url:      %s\n", cfg.ServerURL)
			fmt.Printf("default-channel: %s\n", cfg.DefaultChannel)
			fmt.Printf("token:           %s\n", setOrUnset(cfg.Token))
			fmt.Printf("openai-api-key:  %s\n", setOrUnset(cfg.OpenAIAPIKey))
		} else {
			outputJSON(ConfigResponse{
				ServerURL:       cfg.ServerURL,
				DefaultChannel:  cfg.DefaultChannel,
				TokenSet:        cfg.Token != "",
				OpenAIAPIKeySet: cfg.OpenAIAPIKey != "",
			})
		}
		return nil
	}

	key := args[0]
	normalizedKey := normalizeKey(key)

	// One arg: get specific value
	if len(args) == 1 {
		value, ok := configValue(cfg, normalizedKey)
		if !ok {
			exitWithError(ExitError, "unknown configuration key: %s", key)
		}
		if humanOutput {
			fmt.Println(value)
		} else {
			jsonKey := strings.ReplaceAll(normalizedKey, "-", "_")
			outputJSON(map[string]string{jsonKey: value})
		}
		return nil
	}

	// Two args: set value
	value := strings.TrimSpace(args[1])

	switch normalizedKey {
	case "server-url":
		cfg.ServerURL = strings.TrimRight(value, "/")
	case "token":
		cfg.Token = value
	case "openai-api-key":
		cfg.OpenAIAPIKey = value
	case "default-channel":
		cfg.DefaultChannel = value
	default:
		exitWithError(ExitError, "unknown configuration key: %s", key)
	}

	if err := config.SaveGlobalConfig(cfg); err != nil {
		exitWithError(ExitError, "saving config: %v", err)
	}

	if humanOutput {
		fmt.Printf("Updated %s\n", normalizedKey)
	} else {
		outputJSON(UpdateResponse{
			Status: "updated",
			Key:    normalizedKey,
			Value:  value,
		})
	}

	return nil
}

// configValue returns the stored value for a normalized key.
func configValue(cfg *config.GlobalConfig, key string) (string, bool) {
	switch key {
	case "server-url":
		return cfg.ServerURL, true
	case "token":
		return cfg.Token, true
	case "openai-api-key":
		return cfg.OpenAIAPIKey, true
	case "default-channel":
		return cfg.DefaultChannel, true
	}
	return "", false
}

func setOrUnset(value string) string {
	if value == "" {
		return "(not set)"
	}
	return "(set)"
}

// normalizeKey converts key formats (server_url, SERVER-URL) to a consistent format
func normalizeKey(key string) string {
	key = strings.ToLower(key)
	key = strings.ReplaceAll(key, "_", "-")
	return key
}
