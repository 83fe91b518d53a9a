package analyze

import (
	"sort"

	"mmpulse/internal/mattermost"
)

// DefaultEmojis is the fixed set always offered for category assignment,
// whether or not anyone has used them in the channel yet.
var DefaultEmojis = []string{
	"ballot_box_with_check",
	"leaves",
	"ice_cube",
	"hammer_and_wrench",
	"loading",
	"eyes",
}

// CollectUniqueEmojis returns every emoji name seen in the posts'
// reactions merged with DefaultEmojis, sorted ascending.
func CollectUniqueEmojis(posts []mattermost.Post) []string {
	seen := make(map[string]struct{})
	for _, name := range DefaultEmojis {
		seen[name] = struct{}{}
	}
	for _, p := range posts {
		for _, r := range p.Reactions {
			if r.EmojiName != "" {
				seen[r.EmojiName] = struct{}{}
			}
		}
	}

	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// EmojiCount pairs an emoji name with its total occurrence count across
// a post set.
type EmojiCount struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// CountEmojis tallies every reaction across the posts, returned sorted
// by count descending, then name ascending for equal counts.
func CountEmojis(posts []mattermost.Post) []EmojiCount {
	counts := make(map[string]int)
	for _, p := range posts {
		for _, r := range p.Reactions {
			if r.EmojiName != "" {
				counts[r.EmojiName]++
			}
		}
	}

	result := make([]EmojiCount, 0, len(counts))
	for name, count := range counts {
		result = append(result, EmojiCount{Name: name, Count: count})
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Count != result[j].Count {
			return result[i].Count > result[j].Count
		}
		return result[i].Name < result[j].Name
	})
	return result
}
