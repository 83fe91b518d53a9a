// Package analyze contains the pure, in-memory half of the channel
// pipeline: post filters, emoji classification, category partitioning,
// and reaction grouping. Nothing here performs I/O; every function takes
// already-fetched data and returns new values without mutating input.
package analyze

import "mmpulse/internal/mattermost"

// FilterRootPostsOnly keeps posts that start a thread (empty root_id).
func FilterRootPostsOnly(posts []mattermost.Post) []mattermost.Post {
	var roots []mattermost.Post
	for _, p := range posts {
		if p.IsRoot() {
			roots = append(roots, p)
		}
	}
	return roots
}

// FilterSystemMessages drops join/leave and other system posts
// (non-empty type), keeping only user content.
func FilterSystemMessages(posts []mattermost.Post) []mattermost.Post {
	var kept []mattermost.Post
	for _, p := range posts {
		if !p.IsSystem() {
			kept = append(kept, p)
		}
	}
	return kept
}

// PostsWithoutReactions returns the posts nobody reacted to.
func PostsWithoutReactions(posts []mattermost.Post) []mattermost.Post {
	var bare []mattermost.Post
	for _, p := range posts {
		if len(p.Reactions) == 0 {
			bare = append(bare, p)
		}
	}
	return bare
}

// EmojiPost is a post annotated with how many times one specific emoji
// was used on it.
type EmojiPost struct {
	mattermost.Post
	EmojiCount int `json:"emoji_count"`
}

// PostsByEmoji filters to posts carrying at least one reaction with the
// given emoji, annotating each with the count of that emoji alone (not
// the post's total reaction count).
func PostsByEmoji(posts []mattermost.Post, emojiName string) []EmojiPost {
	var matched []EmojiPost
	for _, p := range posts {
		count := 0
		for _, r := range p.Reactions {
			if r.EmojiName == emojiName {
				count++
			}
		}
		if count > 0 {
			matched = append(matched, EmojiPost{Post: p, EmojiCount: count})
		}
	}
	return matched
}
