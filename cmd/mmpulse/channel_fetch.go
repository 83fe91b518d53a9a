package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"mmpulse/internal/analyze"
	"mmpulse/internal/mattermost"
	"mmpulse/internal/session"
	"mmpulse/internal/timeutil"
)

var (
	fetchFrom     string
	fetchTo       string
	fetchDays     int
	fetchPageSize int
	fetchThreads  bool
)

var channelFetchCmd = &cobra.Command{
	Use:   "fetch <channel>",
	Short: "Fetch channel posts for a date range into a snapshot",
	Long: `Fetch posts from a channel and store them as the channel's latest
snapshot.

System messages are dropped and only thread roots are kept. With
--threads, each root's reactions are merged with the reactions of every
reply in its thread, so reactions left deep in a discussion still count.

Examples:
  mmpulse channel fetch jx7qz9wb3jf3dr7nqe5kkqr1wh
  mmpulse channel fetch https://mm.example.com/team/channels/jx7qz9wb3jf3dr7nqe5kkqr1wh
  mmpulse channel fetch jx7qz9wb3jf3dr7nqe5kkqr1wh --days 14
  mmpulse channel fetch jx7qz9wb3jf3dr7nqe5kkqr1wh --from 2026-08-01 --to 2026-08-15
  mmpulse channel fetch jx7qz9wb3jf3dr7nqe5kkqr1wh --threads`,
	Args: cobra.ExactArgs(1),
	RunE: runChannelFetch,
}

func init() {
	channelCmd.AddCommand(channelFetchCmd)
	channelFetchCmd.Flags().StringVar(&fetchFrom, "from", "", "Start date (YYYY-MM-DD), overrides --days")
	channelFetchCmd.Flags().StringVar(&fetchTo, "to", "", "End date (YYYY-MM-DD), defaults to today")
	channelFetchCmd.Flags().IntVar(&fetchDays, "days", 7, "Number of days to fetch when --from is not given")
	channelFetchCmd.Flags().IntVar(&fetchPageSize, "page-size", mattermost.DefaultPageSize, "Posts per page (max 200)")
	channelFetchCmd.Flags().BoolVar(&fetchThreads, "threads", false, "Merge thread reply reactions into each root post")
}

// FetchResult is the JSON output for channel fetch.
type FetchResult struct {
	SnapshotID   int64    `json:"snapshot_id"`
	ChannelID    string   `json:"channel_id"`
	ChannelName  string   `json:"channel_name,omitempty"`
	TeamName     string   `json:"team_name,omitempty"`
	Period       Period   `json:"period"`
	Fetched      int      `json:"fetched"`
	UserPosts    int      `json:"user_posts"`
	RootPosts    int      `json:"root_posts"`
	Enriched     bool     `json:"enriched"`
	UniqueEmojis []string `json:"unique_emojis"`
}

func runChannelFetch(cmd *cobra.Command, args []string) error {
	channelID := mattermost.ExtractChannelID(args[0])

	dateRange, err := timeutil.ParseDateRange(fetchFrom, fetchTo, fetchDays)
	if err != nil {
		exitWithError(ExitError, "%v", err)
	}

	client := mustClient()
	ctx := context.Background()

	channel, err := client.GetChannel(ctx, channelID)
	if err != nil {
		exitWithError(exitCodeForAPIError(err), "channel %s: %v", channelID, err)
	}

	// Team name is only needed for permalinks; direct channels have none.
	teamName := "team"
	if channel.TeamID != "" {
		if team, err := client.GetTeam(ctx, channel.TeamID); err == nil {
			teamName = team.Name
		}
	}

	posts, err := client.FetchChannelPosts(ctx, channelID, dateRange.Start, dateRange.End, fetchPageSize)
	if err != nil {
		exitWithError(exitCodeForAPIError(err), "fetching posts: %v", err)
	}

	fetched := len(posts)
	posts = analyze.FilterSystemMessages(posts)
	userPosts := len(posts)
	roots := analyze.FilterRootPostsOnly(posts)

	if fetchThreads {
		roots = mattermost.EnrichWithThreadReactions(ctx, client, roots, buildLogger())
	}

	store := mustOpenSessionStore()
	defer store.Close()

	meta, err := store.SaveSnapshot(session.Meta{
		ChannelID:   channelID,
		ChannelName: channelDisplayName(channel),
		TeamName:    teamName,
		ServerURL:   client.ServerURL(),
		StartMs:     dateRange.Start.UnixMilli(),
		EndMs:       dateRange.End.UnixMilli(),
		Enriched:    fetchThreads,
	}, roots)
	if err != nil {
		exitWithError(ExitError, "saving snapshot: %v", err)
	}

	result := FetchResult{
		SnapshotID:   meta.ID,
		ChannelID:    channelID,
		ChannelName:  meta.ChannelName,
		TeamName:     teamName,
		Period:       periodFromMs(meta.StartMs, meta.EndMs),
		Fetched:      fetched,
		UserPosts:    userPosts,
		RootPosts:    len(roots),
		Enriched:     fetchThreads,
		UniqueEmojis: analyze.CollectUniqueEmojis(roots),
	}

	if humanOutput {
		fmt.Printf("Channel: %s (%s)\n", result.ChannelName, channelID)
		fmt.Printf("Period: %s to %s\n", result.Period.Start, result.Period.End)
		fmt.Printf("Fetched posts: %d\n", fetched)
		fmt.Printf("After dropping system messages: %d\n", userPosts)
		fmt.Printf("Root posts kept: %d\n", len(roots))
		if fetchThreads {
			fmt.Println("Thread reply reactions merged in")
		}
		fmt.Printf("Unique emojis: %d\n", len(result.UniqueEmojis))
		fmt.Printf("Snapshot #%d saved\n", meta.ID)
		return nil
	}
	return outputJSON(result)
}

// channelDisplayName prefers the display name over the URL slug.
func channelDisplayName(ch *mattermost.Channel) string {
	if ch.DisplayName != "" {
		return ch.DisplayName
	}
	return ch.Name
}
