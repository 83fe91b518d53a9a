package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"mmpulse/internal/analyze"
	"mmpulse/internal/export"
	"mmpulse/internal/mattermost"
	"mmpulse/internal/session"
)

var (
	postsEmoji string
	postsBare  bool
	postsLimit int
	postsCSV   string
)

var channelPostsCmd = &cobra.Command{
	Use:   "posts [channel]",
	Short: "List posts from the latest snapshot",
	Long: `List posts from the latest snapshot with author, date, preview, and
permalink.

--emoji keeps only posts carrying that reaction and reports how often
it appears on each; --bare keeps only posts without any reactions
(useful for finding updates nobody has triaged). Author names resolve
through the user cache, falling back to the API when credentials are
configured.

--csv writes the listed rows as CSV to a file ('-' for stdout) instead
of the normal output; the active filter and --limit still apply.

Examples:
  mmpulse channel posts
  mmpulse channel posts --emoji eyes
  mmpulse channel posts --bare
  mmpulse channel posts --limit 0 --csv posts.csv`,
	Args: cobra.MaximumNArgs(1),
	RunE: runChannelPosts,
}

func init() {
	channelCmd.AddCommand(channelPostsCmd)
	channelPostsCmd.Flags().StringVar(&postsEmoji, "emoji", "", "Only posts reacted to with this emoji")
	channelPostsCmd.Flags().BoolVar(&postsBare, "bare", false, "Only posts without any reactions")
	channelPostsCmd.Flags().IntVar(&postsLimit, "limit", DefaultDisplayLimit, "Maximum rows to show (0 = all)")
	channelPostsCmd.Flags().StringVar(&postsCSV, "csv", "", "Write rows as CSV to this file ('-' for stdout)")
}

// PostView is one row of the posts listing.
type PostView struct {
	ID         string `json:"id"`
	Author     string `json:"author"`
	Date       string `json:"date"`
	Preview    string `json:"preview"`
	Reactions  int    `json:"reactions"`
	EmojiCount int    `json:"emoji_count,omitempty"`
	Link       string `json:"link,omitempty"`
}

// PostsResult is the JSON output for channel posts.
type PostsResult struct {
	SnapshotID int64      `json:"snapshot_id"`
	ChannelID  string     `json:"channel_id"`
	Filter     string     `json:"filter,omitempty"`
	Total      int        `json:"total"`
	Shown      int        `json:"shown"`
	Posts      []PostView `json:"posts"`
}

func runChannelPosts(cmd *cobra.Command, args []string) error {
	if postsEmoji != "" && postsBare {
		exitWithError(ExitError, "use either --emoji or --bare, not both")
	}

	store := mustOpenSessionStore()
	defer store.Close()

	meta, posts := mustLoadSnapshot(store, snapshotChannelID(args))

	uc := loadUserCache()
	dir := userDirectory(uc)
	ctx := context.Background()

	var views []PostView
	filter := ""
	switch {
	case postsEmoji != "":
		filter = "emoji:" + postsEmoji
		for _, ep := range analyze.PostsByEmoji(posts, postsEmoji) {
			view := postView(ctx, dir, meta, ep.Post)
			view.EmojiCount = ep.EmojiCount
			views = append(views, view)
		}
	case postsBare:
		filter = "without_reactions"
		for _, p := range analyze.PostsWithoutReactions(posts) {
			views = append(views, postView(ctx, dir, meta, p))
		}
	default:
		for _, p := range posts {
			views = append(views, postView(ctx, dir, meta, p))
		}
	}

	saveUserCache(uc)

	total := len(views)
	if postsLimit > 0 && total > postsLimit {
		views = views[:postsLimit]
	}

	if postsCSV != "" {
		return writePostsCSV(postsCSV, views)
	}

	result := PostsResult{
		SnapshotID: meta.ID,
		ChannelID:  meta.ChannelID,
		Filter:     filter,
		Total:      total,
		Shown:      len(views),
		Posts:      views,
	}

	if humanOutput {
		for i, v := range result.Posts {
			fmt.Printf("%d. [%s] %s (%d reactions)\n", i+1, v.Date, v.Author, v.Reactions)
			fmt.Printf("   %s\n", v.Preview)
			if v.Link != "" {
				fmt.Printf("   %s\n", v.Link)
			}
			fmt.Println()
		}
		if result.Shown < result.Total {
			fmt.Printf("Total: %d posts (showing first %d)\n", result.Total, result.Shown)
		} else {
			fmt.Printf("Total: %d posts\n", result.Total)
		}
		return nil
	}
	return outputJSON(result)
}

// writePostsCSV exports the listed rows as CSV to path, or stdout for "-".
func writePostsCSV(path string, views []PostView) error {
	rows := make([]export.PostRow, 0, len(views))
	for _, v := range views {
		rows = append(rows, export.PostRow{
			Date:      v.Date,
			Author:    v.Author,
			Message:   v.Preview,
			Reactions: v.Reactions,
			Link:      v.Link,
		})
	}

	var w io.Writer = os.Stdout
	if path != "-" {
		f, err := os.Create(path)
		if err != nil {
			exitWithError(ExitError, "creating %s: %v", path, err)
		}
		defer f.Close()
		w = f
	}

	if err := export.WritePostsCSV(w, rows); err != nil {
		exitWithError(ExitError, "writing CSV: %v", err)
	}
	if path != "-" {
		fmt.Fprintf(os.Stderr, "Wrote %d posts to %s\n", len(rows), path)
	}
	return nil
}

// postView renders one snapshot post as a listing row.
func postView(ctx context.Context, dir *mattermost.UserDirectory, meta *session.Meta, p mattermost.Post) PostView {
	view := PostView{
		ID:        p.ID,
		Author:    dir.DisplayName(ctx, p.UserID),
		Date:      formatMsDateTime(p.CreateAt),
		Preview:   analyze.FormatPostPreview(p.Message, analyze.DefaultPreviewLength),
		Reactions: len(p.Reactions),
	}
	if meta.ServerURL != "" && meta.TeamName != "" {
		view.Link = mattermost.PostLink(meta.ServerURL, meta.TeamName, p.ID)
	}
	return view
}
