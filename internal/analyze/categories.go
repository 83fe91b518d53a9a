package analyze

import (
	"sort"

	"mmpulse/internal/mattermost"
)

// Fixed category names, always evaluated in this order.
const (
	CategoryDone       = "Done"
	CategoryInProgress = "In Progress"
	CategoryControl    = "Control"
)

// Category maps a workflow status name to the emoji names that mark it.
type Category struct {
	Name   string   `json:"name"`
	Emojis []string `json:"emojis"`
}

// CategoryStats is the derived per-category summary. It is recomputed on
// every request and never stored.
type CategoryStats struct {
	Category           string   `json:"category"`
	UniquePostIDs      []string `json:"unique_post_ids"`
	PostCount          int      `json:"post_count"`
	TotalReactionCount int      `json:"total_reaction_count"`
}

// DefaultCategories returns the stock Done / In Progress / Control
// assignment of the default emoji set.
func DefaultCategories() []Category {
	return []Category{
		{Name: CategoryDone, Emojis: []string{"leaves", "ice_cube", "ballot_box_with_check"}},
		{Name: CategoryInProgress, Emojis: []string{"hammer_and_wrench"}},
		{Name: CategoryControl, Emojis: []string{"loading", "eyes"}},
	}
}

// PartitionByCategory computes per-category membership over the posts.
// Categories are evaluated in the given order; each emoji in a category
// contributes every post carrying at least one matching reaction to the
// category's unique-post set, and that emoji's occurrence count to the
// category's reaction total. Overlapping category sets are accepted: a
// post whose emojis span two categories appears in both. The result maps
// category name to its stats, with UniquePostIDs sorted for stable
// output.
func PartitionByCategory(posts []mattermost.Post, categories []Category) map[string]CategoryStats {
	result := make(map[string]CategoryStats, len(categories))

	for _, cat := range categories {
		memberIDs := make(map[string]struct{})
		reactionTotal := 0

		for _, emoji := range cat.Emojis {
			for _, ep := range PostsByEmoji(posts, emoji) {
				memberIDs[ep.ID] = struct{}{}
				reactionTotal += ep.EmojiCount
			}
		}

		ids := make([]string, 0, len(memberIDs))
		for id := range memberIDs {
			ids = append(ids, id)
		}
		sort.Strings(ids)

		result[cat.Name] = CategoryStats{
			Category:           cat.Name,
			UniquePostIDs:      ids,
			PostCount:          len(ids),
			TotalReactionCount: reactionTotal,
		}
	}

	return result
}

// AvailableEmojiOptions builds the offered emoji choices for the category
// at categoryIndex: from the full emoji universe it withholds later
// categories' default emojis (reserved so they stay selectable there) and
// removes emojis already picked for earlier categories. This is input
// disambiguation only; PartitionByCategory itself accepts overlapping
// sets as-is. Order of all is preserved.
func AvailableEmojiOptions(all []string, categoryIndex int, selections, defaults [][]string) []string {
	excluded := make(map[string]struct{})
	for i := categoryIndex + 1; i < len(defaults); i++ {
		for _, e := range defaults[i] {
			excluded[e] = struct{}{}
		}
	}
	for i := 0; i < categoryIndex && i < len(selections); i++ {
		for _, e := range selections[i] {
			excluded[e] = struct{}{}
		}
	}

	var available []string
	for _, e := range all {
		if _, ok := excluded[e]; !ok {
			available = append(available, e)
		}
	}
	return available
}
