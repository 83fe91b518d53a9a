package mattermost

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"go.uber.org/zap"
)

// FetchChannelPosts pages through a channel's posts and returns those whose
// create_at falls within [start, end] inclusive. The caller is expected to
// normalize end to 23:59:59.999 of its calendar day for end-of-day
// inclusive semantics (see timeutil.EndOfDay).
//
// The server returns posts newest-first, so the first post older than start
// ends the whole fetch: nothing on later pages can be in range. A zero or
// negative pageSize uses DefaultPageSize; a pageSize above MaxPageSize is
// rejected before any request is made. Any transport failure aborts the
// fetch with no partial result.
func (c *Client) FetchChannelPosts(ctx context.Context, channelID string, start, end time.Time, pageSize int) ([]Post, error) {
	if channelID == "" {
		return nil, fmt.Errorf("%w: channel id is required", ErrValidation)
	}
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	if pageSize > MaxPageSize {
		return nil, fmt.Errorf("%w: page size %d exceeds the maximum of %d", ErrValidation, pageSize, MaxPageSize)
	}
	if end.Before(start) {
		return nil, fmt.Errorf("%w: end of range is before its start", ErrValidation)
	}

	startMs := start.UnixMilli()
	endMs := end.UnixMilli()

	var collected []Post
	for page := 0; ; page++ {
		query := url.Values{
			"page":     {strconv.Itoa(page)},
			"per_page": {strconv.Itoa(pageSize)},
		}

		var pl postList
		if err := c.get(ctx, "/channels/"+url.PathEscape(channelID)+"/posts", query, listTimeout, &pl); err != nil {
			return nil, err
		}

		c.logger.Debug("fetched posts page",
			zap.String("channel_id", channelID),
			zap.Int("page", page),
			zap.Int("posts", len(pl.Order)))

		if len(pl.Order) == 0 {
			break
		}

		for _, post := range pl.inOrder() {
			if post.CreateAt < startMs {
				// Newest-first ordering: no later page can be in range.
				return collected, nil
			}
			if post.CreateAt <= endMs {
				collected = append(collected, post)
			}
		}

		if len(pl.Order) < pageSize {
			break
		}
	}

	return collected, nil
}
