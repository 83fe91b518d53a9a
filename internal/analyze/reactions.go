package analyze

import (
	"sort"

	"mmpulse/internal/mattermost"
)

// ReactionGroup lists who used one emoji, with user ids already resolved
// to display identifiers.
type ReactionGroup struct {
	EmojiName string   `json:"emoji_name"`
	Users     []string `json:"users"`
	Count     int      `json:"count"`
}

// GroupReactionsByEmoji groups reactions per emoji into sorted unique
// user lists. resolve maps a user id to its display identifier; passing
// nil keeps raw ids. A non-nil filter restricts output to the named
// emojis. Reactions with an empty user id are skipped. Groups are
// returned sorted by emoji name.
func GroupReactionsByEmoji(reactions []mattermost.Reaction, resolve func(userID string) string, filter []string) []ReactionGroup {
	var wanted map[string]struct{}
	if filter != nil {
		wanted = make(map[string]struct{}, len(filter))
		for _, name := range filter {
			wanted[name] = struct{}{}
		}
	}

	byEmoji := make(map[string]map[string]struct{})
	for _, r := range reactions {
		if r.UserID == "" {
			continue
		}
		if wanted != nil {
			if _, ok := wanted[r.EmojiName]; !ok {
				continue
			}
		}

		identifier := r.UserID
		if resolve != nil {
			identifier = resolve(r.UserID)
		}
		if byEmoji[r.EmojiName] == nil {
			byEmoji[r.EmojiName] = make(map[string]struct{})
		}
		byEmoji[r.EmojiName][identifier] = struct{}{}
	}

	groups := make([]ReactionGroup, 0, len(byEmoji))
	for emoji, users := range byEmoji {
		names := make([]string, 0, len(users))
		for u := range users {
			names = append(names, u)
		}
		sort.Strings(names)
		groups = append(groups, ReactionGroup{EmojiName: emoji, Users: names, Count: len(names)})
	}
	sort.Slice(groups, func(i, j int) bool { return groups[i].EmojiName < groups[j].EmojiName })
	return groups
}
