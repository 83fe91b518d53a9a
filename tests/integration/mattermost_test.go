package integration

import (
	"encoding/json"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
)

// requireServerEnv skips the test unless Mattermost credentials are in
// the environment (not in CI without secrets).
func requireServerEnv(t *testing.T) {
	t.Helper()
	if os.Getenv("MATTERMOST_SERVER_URL") == "" || os.Getenv("MATTERMOST_TOKEN") == "" {
		t.Skip("MATTERMOST_SERVER_URL or MATTERMOST_TOKEN not set, skipping live server test")
	}
}

// requireTestChannel returns the channel to fetch in live tests.
func requireTestChannel(t *testing.T) string {
	t.Helper()
	requireServerEnv(t)
	channel := os.Getenv("MMPULSE_TEST_CHANNEL")
	if channel == "" {
		t.Skip("MMPULSE_TEST_CHANNEL not set, skipping live server test")
	}
	return channel
}

// runMMLive executes mmpulse with an isolated home directory but keeps
// the Mattermost credentials from the environment.
func runMMLive(t *testing.T, home string, args ...string) (string, error) {
	t.Helper()
	bin := getMMBinary(t)
	cmd := exec.Command(bin, args...)
	cmd.Dir = home
	env := filterEnv(os.Environ(), "HOME", "XDG_CONFIG_HOME")
	cmd.Env = append(env,
		"HOME="+home,
		"XDG_CONFIG_HOME="+filepath.Join(home, "config"))
	output, err := cmd.Output()
	return string(output), err
}

// TestChannelFetchJSONFormat verifies the fetch output shape against a
// real server and that the stored snapshot is immediately usable by the
// offline analysis commands.
func TestChannelFetchJSONFormat(t *testing.T) {
	channel := requireTestChannel(t)
	home := t.TempDir()

	output, err := runMMLive(t, home, "channel", "fetch", channel, "--days", "7")
	if err != nil {
		t.Fatalf("command failed: %v\nStderr: %s", err, stderrOf(err))
	}

	var result struct {
		SnapshotID int64  `json:"snapshot_id"`
		ChannelID  string `json:"channel_id"`
		Period     struct {
			Start string `json:"start"`
			End   string `json:"end"`
		} `json:"period"`
		Fetched      int      `json:"fetched"`
		UserPosts    int      `json:"user_posts"`
		RootPosts    int      `json:"root_posts"`
		UniqueEmojis []string `json:"unique_emojis"`
	}
	if err := json.Unmarshal([]byte(output), &result); err != nil {
		t.Fatalf("failed to parse JSON output: %v\nOutput: %s", err, output)
	}

	if result.SnapshotID == 0 {
		t.Error("snapshot_id is zero")
	}
	if result.ChannelID == "" {
		t.Error("channel_id field is empty")
	}
	if result.Period.Start == "" {
		t.Error("period.start field is empty")
	}
	if result.Period.End == "" {
		t.Error("period.end field is empty")
	}
	if result.UserPosts > result.Fetched {
		t.Errorf("user_posts %d exceeds fetched %d", result.UserPosts, result.Fetched)
	}
	if result.RootPosts > result.UserPosts {
		t.Errorf("root_posts %d exceeds user_posts %d", result.RootPosts, result.UserPosts)
	}
	// The unique list always carries the category defaults
	if len(result.UniqueEmojis) < 6 {
		t.Errorf("unique_emojis has %d entries, want at least the 6 defaults", len(result.UniqueEmojis))
	}

	// Stats must work offline from the snapshot just stored
	output, err = runMM(t, home, "channel", "stats")
	if err != nil {
		t.Fatalf("channel stats after fetch failed: %v\nStderr: %s", err, stderrOf(err))
	}
	var stats struct {
		SnapshotID int64 `json:"snapshot_id"`
		Categories []struct {
			Name string `json:"name"`
		} `json:"categories"`
	}
	if err := json.Unmarshal([]byte(output), &stats); err != nil {
		t.Fatalf("failed to parse stats output: %v\nOutput: %s", err, output)
	}
	if stats.SnapshotID != result.SnapshotID {
		t.Errorf("stats read snapshot %d, fetch stored %d", stats.SnapshotID, result.SnapshotID)
	}
	if len(stats.Categories) != 3 {
		t.Errorf("expected 3 categories, got %d", len(stats.Categories))
	}
}

// TestChannelFetchUnknownChannel verifies error handling for a channel
// id the server does not know.
func TestChannelFetchUnknownChannel(t *testing.T) {
	requireServerEnv(t)
	home := t.TempDir()

	_, err := runMMLive(t, home, "channel", "fetch", strings.Repeat("z", 26))
	if err == nil {
		t.Fatal("expected error for unknown channel, got success")
	}
	if code := exitCode(err); code != 1 {
		t.Errorf("expected exit code 1 (channel not found), got %d", code)
	}
}

// TestChannelFetchMissingToken verifies the configuration exit code
// when only the server URL is present.
func TestChannelFetchMissingToken(t *testing.T) {
	requireServerEnv(t)
	home := t.TempDir()

	bin := getMMBinary(t)
	cmd := exec.Command(bin, "channel", "fetch", strings.Repeat("z", 26))
	cmd.Dir = home
	env := filterEnv(os.Environ(), "HOME", "XDG_CONFIG_HOME", "MATTERMOST_TOKEN")
	cmd.Env = append(env,
		"HOME="+home,
		"XDG_CONFIG_HOME="+filepath.Join(home, "config"))

	err := cmd.Run()
	if err == nil {
		t.Fatal("expected error for missing token, got success")
	}
	if code := exitCode(err); code != 2 {
		t.Errorf("expected exit code 2 (configuration), got %d", code)
	}
}
