package mattermost

import (
	"encoding/json"
	"strings"
)

// Post is a single channel post. A post with an empty RootID starts a
// thread; a non-empty Type marks a system message (join/leave notices).
type Post struct {
	ID        string     `json:"id"`
	UserID    string     `json:"user_id"`
	ChannelID string     `json:"channel_id,omitempty"`
	Message   string     `json:"message"`
	CreateAt  int64      `json:"create_at"` // Milliseconds since epoch
	RootID    string     `json:"root_id,omitempty"`
	Type      string     `json:"type,omitempty"`
	Reactions []Reaction `json:"reactions,omitempty"`
}

// UnmarshalJSON flattens the server's metadata.reactions nesting so the
// rest of the code only ever sees Post.Reactions.
func (p *Post) UnmarshalJSON(data []byte) error {
	type alias Post
	aux := struct {
		*alias
		Metadata struct {
			Reactions []Reaction `json:"reactions"`
		} `json:"metadata"`
	}{alias: (*alias)(p)}

	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	if len(p.Reactions) == 0 && len(aux.Metadata.Reactions) > 0 {
		p.Reactions = aux.Metadata.Reactions
	}
	return nil
}

// IsRoot reports whether the post starts a thread.
func (p Post) IsRoot() bool {
	return p.RootID == ""
}

// IsSystem reports whether the post is a system message rather than user content.
func (p Post) IsSystem() bool {
	return p.Type != ""
}

// Reaction is one (user, emoji) pairing on a post. The server guarantees
// uniqueness of (post, user, emoji); it is not re-validated here.
type Reaction struct {
	UserID    string `json:"user_id"`
	PostID    string `json:"post_id,omitempty"`
	EmojiName string `json:"emoji_name"`
}

// Thread is a root post plus its replies in server order.
type Thread struct {
	Root    Post   `json:"root"`
	Replies []Post `json:"replies"`
}

// AllReactions returns the root's reactions followed by every reply's
// reactions. Duplicates are preserved: a user reacting to both the root
// and a reply with the same emoji counts twice.
func (t *Thread) AllReactions() []Reaction {
	all := make([]Reaction, 0, len(t.Root.Reactions))
	all = append(all, t.Root.Reactions...)
	all = append(all, t.ReplyReactions()...)
	return all
}

// ReplyReactions returns the reactions of the replies only, in reply order.
func (t *Thread) ReplyReactions() []Reaction {
	var reactions []Reaction
	for _, reply := range t.Replies {
		reactions = append(reactions, reply.Reactions...)
	}
	return reactions
}

// User is a Mattermost user profile.
type User struct {
	ID        string `json:"id"`
	Username  string `json:"username"`
	Email     string `json:"email,omitempty"`
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
	Nickname  string `json:"nickname,omitempty"`
	Position  string `json:"position,omitempty"`
}

// FullName returns "First Last", falling back to username, then email.
func (u User) FullName() string {
	name := strings.TrimSpace(strings.TrimSpace(u.FirstName) + " " + strings.TrimSpace(u.LastName))
	if name != "" {
		return name
	}
	if u.Username != "" {
		return u.Username
	}
	return u.Email
}

// DisplayName returns the username, falling back to email, then id.
// Used when naming post authors.
func (u User) DisplayName() string {
	if u.Username != "" {
		return u.Username
	}
	if u.Email != "" {
		return u.Email
	}
	return u.ID
}

// Identifier returns the email, falling back to username, then id.
// Used when listing who reacted with an emoji.
func (u User) Identifier() string {
	if u.Email != "" {
		return u.Email
	}
	if u.Username != "" {
		return u.Username
	}
	return u.ID
}

// Channel is the channel metadata used for headers and permalinks.
type Channel struct {
	ID          string `json:"id"`
	TeamID      string `json:"team_id"`
	Type        string `json:"type"`
	Name        string `json:"name"`
	DisplayName string `json:"display_name"`
}

// Team is the team metadata used for building permalinks.
type Team struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	DisplayName string `json:"display_name"`
}

// ChannelMember is one membership row from the channel members endpoint.
type ChannelMember struct {
	ChannelID string `json:"channel_id"`
	UserID    string `json:"user_id"`
}

// postList is the wire shape of paged post and thread responses:
// a map of posts keyed by id plus the server-defined order.
type postList struct {
	Order []string        `json:"order"`
	Posts map[string]Post `json:"posts"`
}

// inOrder returns the posts in the server-defined order, skipping ids
// missing from the map.
func (pl *postList) inOrder() []Post {
	posts := make([]Post, 0, len(pl.Order))
	for _, id := range pl.Order {
		if p, ok := pl.Posts[id]; ok {
			posts = append(posts, p)
		}
	}
	return posts
}
