// Package main provides the mmpulse CLI entry point.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"mmpulse/internal/config"
	"mmpulse/internal/mattermost"
	"mmpulse/internal/session"
)

// Version is set at build time via ldflags
var Version = "dev"

// humanOutput controls whether to use human-readable output
var humanOutput bool

// verboseOutput enables debug diagnostics on stderr
var verboseOutput bool

func main() {
	if err := rootCmd.Execute(); err != nil {
		// Print the error since we have SilenceErrors: true
		// This ensures Cobra errors (like missing required flags) are visible
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(ExitError)
	}
}

var rootCmd = &cobra.Command{
	Use:   "mmpulse",
	Short: "Mattermost channel activity CLI",
	Long: `mmpulse reviews activity in Mattermost channels.

Core features:
  - Fetch channel posts for a date range, with thread-reaction merging
  - Partition posts into Done / In Progress / Control by reaction emoji
  - Thread reaction breakdowns, post previews, and permalinks
  - Member tables and CSV export, bulk adds, direct-message broadcasts
  - AI channel summaries and message polishing via OpenAI

Fetched posts are snapshotted in a local SQLite file so the analysis
commands work offline. Credentials come from MATTERMOST_SERVER_URL and
MATTERMOST_TOKEN (environment, .env file, or 'mmpulse config').

All commands output JSON by default for script consumption.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	// Load .env file if present (for MATTERMOST_TOKEN and OPENAI_API_KEY)
	_ = godotenv.Load()

	rootCmd.PersistentFlags().BoolVar(&humanOutput, "human", false, "Use human-readable output instead of JSON")
	rootCmd.PersistentFlags().BoolVar(&verboseOutput, "verbose", false, "Log API requests and progress to stderr")
	rootCmd.Version = Version
}

// buildLogger returns the diagnostics logger: debug-level development
// output with --verbose, a no-op logger otherwise.
func buildLogger() *zap.Logger {
	if !verboseOutput {
		return zap.NewNop()
	}
	logger, err := zap.NewDevelopment()
	if err != nil {
		return zap.NewNop()
	}
	return logger
}

// mustClient builds the Mattermost client from configuration, exits with
// a setup hint when the server URL or token is missing.
func mustClient() *mattermost.Client {
	client := optionalClient()
	if client == nil {
		fmt.Fprintln(os.Stderr, config.HelpfulConfigMessage())
		os.Exit(ExitConfigError)
	}
	return client
}

// optionalClient builds the Mattermost client, or returns nil when the
// server URL or token is not configured. Commands that analyze a
// snapshot offline use it so missing credentials only degrade name
// resolution instead of failing the command.
func optionalClient() *mattermost.Client {
	serverURL := config.GetServerURL()
	token := config.GetToken()
	if serverURL == "" || token == "" {
		return nil
	}
	return mattermost.NewClient(serverURL, token, mattermost.WithLogger(buildLogger()))
}

// mustOpenSessionStore opens the snapshot database, exits on error.
// The caller is responsible for calling Close() on the returned store.
func mustOpenSessionStore() *session.Store {
	path, err := config.SessionDBPath()
	if err != nil {
		exitWithError(ExitError, "locating session database: %v", err)
	}
	store, err := session.Open(path)
	if err != nil {
		exitWithError(ExitError, "opening session database: %v", err)
	}
	return store
}

// mustLoadSnapshot loads the newest snapshot for the channel (or the
// newest overall for an empty channel id), exits with a hint when none
// is stored.
func mustLoadSnapshot(store *session.Store, channelID string) (*session.Meta, []mattermost.Post) {
	meta, posts, err := store.LatestSnapshot(channelID)
	if err != nil {
		exitWithError(ExitError, "loading snapshot: %v", err)
	}
	if meta == nil {
		exitWithError(ExitDataError, "no snapshot found\n\nRun 'mmpulse channel fetch <channel>' first.")
	}
	return meta, posts
}

// loadUserCache loads the on-disk user cache. A broken cache file is
// reported as a warning and rebuilt on the next save.
func loadUserCache() *mattermost.UserCache {
	path, err := config.UserCachePath()
	if err != nil {
		exitWithError(ExitError, "locating user cache: %v", err)
	}
	uc, err := mattermost.LoadUserCache(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not load user cache: %v\n", err)
	}
	return uc
}

// saveUserCache persists the user cache; failures are non-fatal.
func saveUserCache(uc *mattermost.UserCache) {
	if err := uc.Save(); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not save user cache: %v\n", err)
	}
}

// userDirectory builds the cache-backed user resolver. Lookups fall
// back to the API only when credentials are configured.
func userDirectory(uc *mattermost.UserCache) *mattermost.UserDirectory {
	if c := optionalClient(); c != nil {
		return mattermost.NewUserDirectory(c, uc)
	}
	return mattermost.NewUserDirectory(nil, uc)
}

// snapshotChannelID resolves which channel's snapshot a command should
// load: the positional argument when present, the configured default
// channel otherwise, or empty for the newest snapshot overall.
func snapshotChannelID(args []string) string {
	if len(args) > 0 {
		return mattermost.ExtractChannelID(args[0])
	}
	if def := config.GetDefaultChannel(); def != "" {
		return mattermost.ExtractChannelID(def)
	}
	return ""
}
