package analyze

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"mmpulse/internal/mattermost"
)

func TestPartitionByCategoryDisjointSets(t *testing.T) {
	posts := []mattermost.Post{
		{ID: "done1", Reactions: []mattermost.Reaction{{EmojiName: "leaves", UserID: "u1"}}},
		{ID: "done2", Reactions: []mattermost.Reaction{
			{EmojiName: "ice_cube", UserID: "u1"},
			{EmojiName: "leaves", UserID: "u2"},
		}},
		{ID: "wip1", Reactions: []mattermost.Reaction{{EmojiName: "hammer_and_wrench", UserID: "u1"}}},
		{ID: "none1"},
	}

	stats := PartitionByCategory(posts, DefaultCategories())

	done := stats[CategoryDone]
	if diff := cmp.Diff([]string{"done1", "done2"}, done.UniquePostIDs); diff != "" {
		t.Errorf("Done post ids mismatch (-want +got):\n%s", diff)
	}
	if done.PostCount != 2 || done.TotalReactionCount != 3 {
		t.Errorf("Done = %+v, want 2 posts, 3 reactions", done)
	}

	wip := stats[CategoryInProgress]
	if wip.PostCount != 1 || wip.TotalReactionCount != 1 {
		t.Errorf("In Progress = %+v, want 1 post, 1 reaction", wip)
	}

	control := stats[CategoryControl]
	if control.PostCount != 0 || len(control.UniquePostIDs) != 0 {
		t.Errorf("Control = %+v, want empty", control)
	}

	// With pairwise-disjoint sets no category count can exceed the post
	// total, and their sum stays within it here since no post matches
	// two categories.
	sum := done.PostCount + wip.PostCount + control.PostCount
	if sum > len(posts) {
		t.Errorf("category counts sum to %d, exceeding %d posts", sum, len(posts))
	}
}

func TestPartitionByCategoryAcceptsOverlap(t *testing.T) {
	posts := []mattermost.Post{
		{ID: "p1", Reactions: []mattermost.Reaction{{EmojiName: "eyes", UserID: "u1"}}},
	}
	overlapping := []Category{
		{Name: CategoryDone, Emojis: []string{"eyes"}},
		{Name: CategoryInProgress, Emojis: []string{"hammer_and_wrench"}},
		{Name: CategoryControl, Emojis: []string{"eyes"}},
	}

	stats := PartitionByCategory(posts, overlapping)

	if stats[CategoryDone].PostCount != 1 {
		t.Errorf("Done = %+v, want the overlapping post counted", stats[CategoryDone])
	}
	if stats[CategoryControl].PostCount != 1 {
		t.Errorf("Control = %+v, want the overlapping post counted", stats[CategoryControl])
	}
}

func TestPartitionByCategoryDedupsWithinCategory(t *testing.T) {
	// One post matching two emojis of the same category counts once but
	// contributes both emojis' reactions to the total.
	posts := []mattermost.Post{
		{ID: "p1", Reactions: []mattermost.Reaction{
			{EmojiName: "leaves", UserID: "u1"},
			{EmojiName: "ice_cube", UserID: "u1"},
		}},
	}

	stats := PartitionByCategory(posts, DefaultCategories())
	done := stats[CategoryDone]
	if done.PostCount != 1 {
		t.Errorf("PostCount = %d, want 1 (post deduped)", done.PostCount)
	}
	if done.TotalReactionCount != 2 {
		t.Errorf("TotalReactionCount = %d, want 2", done.TotalReactionCount)
	}
}

func TestAvailableEmojiOptions(t *testing.T) {
	all := []string{"leaves", "ice_cube", "ballot_box_with_check", "hammer_and_wrench", "loading", "eyes", "rocket"}
	defaults := [][]string{
		{"leaves", "ice_cube", "ballot_box_with_check"},
		{"hammer_and_wrench"},
		{"loading", "eyes"},
	}

	t.Run("first category withholds later defaults", func(t *testing.T) {
		got := AvailableEmojiOptions(all, 0, nil, defaults)
		want := []string{"leaves", "ice_cube", "ballot_box_with_check", "rocket"}
		if diff := cmp.Diff(want, got); diff != "" {
			t.Errorf("options mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("middle category drops earlier picks and later defaults", func(t *testing.T) {
		selections := [][]string{{"leaves", "rocket"}}
		got := AvailableEmojiOptions(all, 1, selections, defaults)
		want := []string{"ice_cube", "ballot_box_with_check", "hammer_and_wrench"}
		if diff := cmp.Diff(want, got); diff != "" {
			t.Errorf("options mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("last category drops all earlier picks", func(t *testing.T) {
		selections := [][]string{
			{"leaves", "ice_cube"},
			{"hammer_and_wrench"},
		}
		got := AvailableEmojiOptions(all, 2, selections, defaults)
		want := []string{"ballot_box_with_check", "loading", "eyes", "rocket"}
		if diff := cmp.Diff(want, got); diff != "" {
			t.Errorf("options mismatch (-want +got):\n%s", diff)
		}
	})
}
