package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"mmpulse/internal/ai"
	"mmpulse/internal/config"
)

var summarizeMaxPosts int

var summarizeCmd = &cobra.Command{
	Use:   "summarize [channel]",
	Short: "Summarize the latest snapshot with OpenAI",
	Long: `Generate a short activity summary of the latest snapshot.

Posts are rendered as dated one-line entries with author names from the
user cache and sent to OpenAI. Requires OPENAI_API_KEY (environment,
.env file, or 'mmpulse config openai-api-key').

Examples:
  mmpulse summarize
  mmpulse summarize jx7qz9wb3jf3dr7nqe5kkqr1wh
  mmpulse summarize --max-posts 50`,
	Args: cobra.MaximumNArgs(1),
	RunE: runSummarize,
}

func init() {
	rootCmd.AddCommand(summarizeCmd)
	summarizeCmd.Flags().IntVar(&summarizeMaxPosts, "max-posts", ai.SummaryPostCap, "Maximum posts fed into the summary")
}

// SummaryResult is the JSON output for summarize.
type SummaryResult struct {
	ChannelID   string `json:"channel_id"`
	ChannelName string `json:"channel_name,omitempty"`
	Period      Period `json:"period"`
	PostsUsed   int    `json:"posts_used"`
	Summary     string `json:"summary"`
}

func runSummarize(cmd *cobra.Command, args []string) error {
	apiKey := config.GetOpenAIKey()
	if apiKey == "" {
		exitWithError(ExitConfigError, "OPENAI_API_KEY is not set\n\nSet the environment variable or run 'mmpulse config openai-api-key <key>'.")
	}

	store := mustOpenSessionStore()
	defer store.Close()

	meta, posts := mustLoadSnapshot(store, snapshotChannelID(args))

	uc := loadUserCache()
	dir := userDirectory(uc)
	ctx := context.Background()

	// DisplayName degrades to the raw id; report that as unresolved so
	// the digest gets a stable short label instead.
	authorName := func(userID string) string {
		if name := dir.DisplayName(ctx, userID); name != userID {
			return name
		}
		return ""
	}

	digest := ai.BuildChannelDigest(posts, authorName, summarizeMaxPosts)
	if digest == "" {
		exitWithError(ExitDataError, "snapshot has no post text to summarize")
	}

	saveUserCache(uc)

	period := periodFromMs(meta.StartMs, meta.EndMs)
	assistant := ai.NewAssistant(apiKey, buildLogger())
	summary, err := assistant.SummarizeChannel(ctx, meta.ChannelName, period.Start+" to "+period.End, digest)
	if err != nil {
		exitWithError(ExitError, "summarizing: %v", err)
	}

	result := SummaryResult{
		ChannelID:   meta.ChannelID,
		ChannelName: meta.ChannelName,
		Period:      period,
		PostsUsed:   strings.Count(digest, "\n"),
		Summary:     summary,
	}

	if humanOutput {
		name := result.ChannelName
		if name == "" {
			name = result.ChannelID
		}
		fmt.Printf("# %s (%s to %s)\n\n", name, period.Start, period.End)
		fmt.Println(summary)
		return nil
	}
	return outputJSON(result)
}
