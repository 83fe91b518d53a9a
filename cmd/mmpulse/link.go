package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"mmpulse/internal/clipboard"
	"mmpulse/internal/mattermost"
)

// clipboardUnavailableMsg is the standard warning when clipboard is not available.
const clipboardUnavailableMsg = "clipboard unavailable (install wl-clipboard, xclip, or xsel on Linux)"

var linkCopyFlag bool

var linkCmd = &cobra.Command{
	Use:   "link <post>",
	Short: "Get the permalink for a post",
	Long: `Get the permalink for a post.

Accepts a post id or an existing permalink; the post's channel and team
are looked up to build the canonical URL.

Examples:
  mmpulse link 8fn9aqxzojfrmcg5pk6xwfdj3c
  mmpulse link 8fn9aqxzojfrmcg5pk6xwfdj3c --copy`,
	Args: cobra.ExactArgs(1),
	RunE: runLink,
}

func init() {
	rootCmd.AddCommand(linkCmd)
	linkCmd.Flags().BoolVar(&linkCopyFlag, "copy", false, "Copy the permalink to the system clipboard")
}

// LinkResult is the JSON output for link.
type LinkResult struct {
	URL    string `json:"url"`
	PostID string `json:"post_id"`
	Copied bool   `json:"copied"` // true if --copy succeeded; false if --copy not used or failed
}

func runLink(cmd *cobra.Command, args []string) error {
	postID := mattermost.ExtractPostID(args[0])
	client := mustClient()
	ctx := context.Background()

	post, err := client.GetPost(ctx, postID)
	if err != nil {
		exitWithError(exitCodeForAPIError(err), "post %s: %v", postID, err)
	}

	url := mattermost.PostLink(client.ServerURL(), lookupTeamName(ctx, client, post.ChannelID), post.ID)

	copied := false
	var clipboardWarning string
	if linkCopyFlag {
		if err := clipboard.Copy(url); err != nil {
			if errors.Is(err, clipboard.ErrClipboardUnavailable) {
				clipboardWarning = clipboardUnavailableMsg
			} else {
				clipboardWarning = fmt.Sprintf("clipboard error: %v", err)
			}
		} else {
			copied = true
		}
	}

	if humanOutput {
		// URL to stdout
		fmt.Println(url)
		// Messages to stderr
		if copied {
			fmt.Fprintln(os.Stderr, "Copied to clipboard")
		} else if clipboardWarning != "" {
			fmt.Fprintf(os.Stderr, "Warning: %s\n", clipboardWarning)
		}
	} else {
		outputJSON(LinkResult{
			URL:    url,
			PostID: post.ID,
			Copied: copied,
		})
	}

	return nil
}

// lookupTeamName resolves a channel to its team's URL slug, falling
// back to a generic slug for direct channels and failed lookups. The
// server redirects permalinks to the right team either way.
func lookupTeamName(ctx context.Context, client *mattermost.Client, channelID string) string {
	if channelID == "" {
		return "team"
	}
	channel, err := client.GetChannel(ctx, channelID)
	if err != nil || channel.TeamID == "" {
		return "team"
	}
	team, err := client.GetTeam(ctx, channel.TeamID)
	if err != nil {
		return "team"
	}
	return team.Name
}
