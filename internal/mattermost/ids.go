package mattermost

import (
	"fmt"
	"regexp"
	"strings"
)

// Boundary parsing: channel and post identifiers may arrive as bare ids or
// as full Mattermost URLs. These helpers normalize the input before any
// API call.
var (
	postLinkPattern    = regexp.MustCompile(`/pl/([a-z0-9]+)`)
	channelLinkPattern = regexp.MustCompile(`/channels/([a-z0-9]+)`)
)

// ExtractPostID pulls the post id out of a permalink
// ({server}/{team}/pl/{postId}); anything else is returned trimmed.
func ExtractPostID(input string) string {
	input = strings.TrimSpace(input)
	if m := postLinkPattern.FindStringSubmatch(input); m != nil {
		return m[1]
	}
	return input
}

// ExtractChannelID pulls the channel id out of a channel URL
// ({server}/{team}/channels/{channelId}); anything else is returned trimmed.
func ExtractChannelID(input string) string {
	input = strings.TrimSpace(input)
	if m := channelLinkPattern.FindStringSubmatch(input); m != nil {
		return m[1]
	}
	return input
}

// PostLink builds the human-facing permalink for a post.
func PostLink(serverURL, teamName, postID string) string {
	return fmt.Sprintf("%s/%s/pl/%s", strings.TrimRight(serverURL, "/"), teamName, postID)
}
