package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"mmpulse/internal/analyze"
	"mmpulse/internal/mattermost"
)

var (
	threadSeparate bool
	threadMessages bool
	threadEmojis   []string
)

var threadCmd = &cobra.Command{
	Use:   "thread <post>",
	Short: "Show reactions across a post's thread",
	Long: `Fetch a post's thread and group its reactions by emoji.

By default root and reply reactions are merged into one breakdown; with
--separate the root's reactions and the replies' reactions are reported
side by side, and with --messages every post in the thread is listed
with its author and its own reactions. --emojis restricts any view to
the named emojis. Accepts a post id or a permalink. Each emoji lists
who reacted (email, falling back to username, then user id).

Examples:
  mmpulse thread 8fn9aqxzojfrmcg5pk6xwfdj3c
  mmpulse thread https://mm.example.com/team/pl/8fn9aqxzojfrmcg5pk6xwfdj3c
  mmpulse thread 8fn9aqxzojfrmcg5pk6xwfdj3c --separate
  mmpulse thread 8fn9aqxzojfrmcg5pk6xwfdj3c --messages
  mmpulse thread 8fn9aqxzojfrmcg5pk6xwfdj3c --emojis eyes,loading`,
	Args: cobra.ExactArgs(1),
	RunE: runThread,
}

func init() {
	rootCmd.AddCommand(threadCmd)
	threadCmd.Flags().BoolVar(&threadSeparate, "separate", false, "Report root and reply reactions separately")
	threadCmd.Flags().BoolVar(&threadMessages, "messages", false, "Report each thread post with its own reactions")
	threadCmd.Flags().StringSliceVar(&threadEmojis, "emojis", nil, "Only count these emojis (comma-separated)")
}

// ThreadMessage is one thread post with its own reaction breakdown.
type ThreadMessage struct {
	PostID    string                  `json:"post_id"`
	Author    string                  `json:"author"`
	IsRoot    bool                    `json:"is_root,omitempty"`
	Preview   string                  `json:"preview"`
	Reactions []analyze.ReactionGroup `json:"reactions,omitempty"`
}

// ThreadResult is the JSON output for thread.
type ThreadResult struct {
	PostID         string                  `json:"post_id"`
	RootPreview    string                  `json:"root_preview"`
	ReplyCount     int                     `json:"reply_count"`
	Reactions      []analyze.ReactionGroup `json:"reactions,omitempty"`
	RootReactions  []analyze.ReactionGroup `json:"root_reactions,omitempty"`
	ReplyReactions []analyze.ReactionGroup `json:"reply_reactions,omitempty"`
	Messages       []ThreadMessage         `json:"messages,omitempty"`
}

func runThread(cmd *cobra.Command, args []string) error {
	if threadSeparate && threadMessages {
		exitWithError(ExitError, "use either --separate or --messages, not both")
	}

	postID := mattermost.ExtractPostID(args[0])
	client := mustClient()
	ctx := context.Background()

	thread, err := client.GetThread(ctx, postID)
	if err != nil {
		exitWithError(exitCodeForAPIError(err), "thread %s: %v", postID, err)
	}

	uc := loadUserCache()
	dir := mattermost.NewUserDirectory(client, uc)
	resolve := func(userID string) string {
		return dir.Identifier(ctx, userID)
	}

	var filter []string
	if len(threadEmojis) > 0 {
		filter = threadEmojis
	}

	result := ThreadResult{
		PostID:      thread.Root.ID,
		RootPreview: analyze.FormatPostPreview(thread.Root.Message, analyze.DefaultPreviewLength),
		ReplyCount:  len(thread.Replies),
	}

	switch {
	case threadMessages:
		result.Messages = append(result.Messages, threadMessage(ctx, dir, resolve, filter, thread.Root, true))
		for _, reply := range thread.Replies {
			result.Messages = append(result.Messages, threadMessage(ctx, dir, resolve, filter, reply, false))
		}
	case threadSeparate:
		result.RootReactions = analyze.GroupReactionsByEmoji(thread.Root.Reactions, resolve, filter)
		result.ReplyReactions = analyze.GroupReactionsByEmoji(thread.ReplyReactions(), resolve, filter)
	default:
		result.Reactions = analyze.GroupReactionsByEmoji(thread.AllReactions(), resolve, filter)
	}

	saveUserCache(uc)

	if humanOutput {
		fmt.Printf("Thread: %s\n", result.RootPreview)
		fmt.Printf("Replies: %d\n\n", result.ReplyCount)
		switch {
		case threadMessages:
			for i, m := range result.Messages {
				marker := "reply"
				if m.IsRoot {
					marker = "root"
				}
				fmt.Printf("%d. [%s] %s\n   %s\n", i+1, marker, m.Author, m.Preview)
				printReactionGroups(m.Reactions)
				fmt.Println()
			}
		case threadSeparate:
			fmt.Println("Root reactions:")
			printReactionGroups(result.RootReactions)
			fmt.Println("\nReply reactions:")
			printReactionGroups(result.ReplyReactions)
		default:
			printReactionGroups(result.Reactions)
		}
		return nil
	}
	return outputJSON(result)
}

// threadMessage renders one thread post for the per-message view.
func threadMessage(ctx context.Context, dir *mattermost.UserDirectory, resolve func(string) string, filter []string, p mattermost.Post, isRoot bool) ThreadMessage {
	return ThreadMessage{
		PostID:    p.ID,
		Author:    dir.DisplayName(ctx, p.UserID),
		IsRoot:    isRoot,
		Preview:   analyze.FormatPostPreview(p.Message, analyze.DefaultPreviewLength),
		Reactions: analyze.GroupReactionsByEmoji(p.Reactions, resolve, filter),
	}
}

func printReactionGroups(groups []analyze.ReactionGroup) {
	if len(groups) == 0 {
		fmt.Println("  (none)")
		return
	}
	for _, g := range groups {
		fmt.Printf("  :%s: %d  %s\n", g.EmojiName, g.Count, strings.Join(g.Users, ", "))
	}
}
