package mattermost

import (
	"context"

	"go.uber.org/zap"
)

// ThreadFetcher fetches a post's full thread. *Client implements it.
type ThreadFetcher interface {
	GetThread(ctx context.Context, postID string) (*Thread, error)
}

// EnrichResult is the outcome of enriching one root post. When Err is
// non-nil the thread fetch failed and Post carries the original,
// unenriched value.
type EnrichResult struct {
	Post Post
	Err  error
}

// EnrichResults fetches each root post's thread sequentially and replaces
// the post's reactions with the thread's full reaction set (root plus
// every reply, duplicates preserved). One post's thread failure never
// aborts the rest: the failed post is passed through unchanged with its
// error recorded. Inputs are not mutated.
func EnrichResults(ctx context.Context, fetcher ThreadFetcher, roots []Post) []EnrichResult {
	results := make([]EnrichResult, 0, len(roots))
	for _, post := range roots {
		thread, err := fetcher.GetThread(ctx, post.ID)
		if err != nil {
			results = append(results, EnrichResult{Post: post, Err: err})
			continue
		}

		enriched := post
		enriched.Reactions = thread.AllReactions()
		results = append(results, EnrichResult{Post: enriched})
	}
	return results
}

// EnrichWithThreadReactions reduces EnrichResults to the posts alone,
// using the enriched value where the thread fetch succeeded and the
// original where it did not. Failures are logged and swallowed.
func EnrichWithThreadReactions(ctx context.Context, fetcher ThreadFetcher, roots []Post, logger *zap.Logger) []Post {
	if logger == nil {
		logger = zap.NewNop()
	}

	results := EnrichResults(ctx, fetcher, roots)
	posts := make([]Post, len(results))
	for i, r := range results {
		if r.Err != nil {
			logger.Debug("thread enrichment failed, keeping original reactions",
				zap.String("post_id", r.Post.ID),
				zap.Error(r.Err))
		}
		posts[i] = r.Post
	}
	return posts
}
