package main

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"mmpulse/internal/mattermost"
)

// Constants for output formatting.
const (
	DefaultDisplayLimit = 50 // Default row cap for post listings

	HumanErrorMaxLen = 120 // Error truncation in per-item human output
)

// outputJSON writes a value as formatted JSON to stdout.
func outputJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// exitWithError outputs an error in the appropriate format (human or JSON) and exits.
func exitWithError(code int, format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	if humanOutput {
		fmt.Fprintf(os.Stderr, "error: %s\n", msg)
	} else {
		outputJSON(ErrorResponse{Error: msg})
	}
	os.Exit(code)
}

// exitCodeForAPIError maps client errors to exit codes: credential and
// access failures are configuration problems, everything else is a
// general error.
func exitCodeForAPIError(err error) int {
	if mattermost.IsAuthError(err) {
		return ExitConfigError
	}
	return ExitError
}

// ErrorResponse is a JSON error response.
type ErrorResponse struct {
	Error string `json:"error"`
}

// ConfigResponse is the response for config show. Secrets are reported
// as set/unset, never echoed.
type ConfigResponse struct {
	ServerURL       string `json:"server_url,omitempty"`
	DefaultChannel  string `json:"default_channel,omitempty"`
	TokenSet        bool   `json:"token_set"`
	OpenAIAPIKeySet bool   `json:"openai_api_key_set"`
}

// UpdateResponse is the response for config set commands.
type UpdateResponse struct {
	Status string `json:"status"`
	Key    string `json:"key"`
	Value  string `json:"value"`
}

// Period is a date range rendered as YYYY-MM-DD bounds.
type Period struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// periodFromMs renders snapshot bounds as a Period.
func periodFromMs(startMs, endMs int64) Period {
	return Period{Start: formatMsDate(startMs), End: formatMsDate(endMs)}
}

// formatMsDate renders a milliseconds-epoch timestamp as YYYY-MM-DD.
func formatMsDate(ms int64) string {
	return time.UnixMilli(ms).Format("2006-01-02")
}

// formatMsDateTime renders a milliseconds-epoch timestamp with time of day.
func formatMsDateTime(ms int64) string {
	return time.UnixMilli(ms).Format("2006-01-02 15:04")
}

// truncateString truncates a string to maxLen, adding "..." if truncated.
func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}
