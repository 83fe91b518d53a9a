package main

import (
	"github.com/spf13/cobra"
)

var channelCmd = &cobra.Command{
	Use:   "channel",
	Short: "Fetch and analyze channel activity",
	Long: `Commands for reviewing activity in a Mattermost channel.

fetch pulls posts for a date range and snapshots them locally; stats,
emojis, and posts then analyze the latest snapshot offline without
re-fetching.

Channels may be given as a channel id or a full channel URL.

All commands output JSON by default for script consumption.
Use --human flag for human-readable output.`,
}

func init() {
	rootCmd.AddCommand(channelCmd)
}
