package analyze

import (
	"sort"
	"testing"

	"github.com/google/go-cmp/cmp"

	"mmpulse/internal/mattermost"
)

func TestCollectUniqueEmojisAlwaysIncludesDefaults(t *testing.T) {
	tests := []struct {
		name  string
		posts []mattermost.Post
	}{
		{"no posts", nil},
		{"posts without reactions", []mattermost.Post{{ID: "a"}, {ID: "b"}}},
		{"posts with extra emojis", []mattermost.Post{
			{ID: "a", Reactions: []mattermost.Reaction{
				{EmojiName: "rocket", UserID: "u1"},
				{EmojiName: "eyes", UserID: "u2"},
			}},
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CollectUniqueEmojis(tt.posts)

			if !sort.StringsAreSorted(got) {
				t.Errorf("CollectUniqueEmojis() = %v, want sorted ascending", got)
			}
			inResult := make(map[string]bool, len(got))
			for _, name := range got {
				inResult[name] = true
			}
			for _, name := range DefaultEmojis {
				if !inResult[name] {
					t.Errorf("CollectUniqueEmojis() missing default %q", name)
				}
			}
		})
	}
}

func TestCollectUniqueEmojisMergesObserved(t *testing.T) {
	posts := []mattermost.Post{
		{ID: "a", Reactions: []mattermost.Reaction{
			{EmojiName: "rocket", UserID: "u1"},
			{EmojiName: "rocket", UserID: "u2"},
		}},
	}

	got := CollectUniqueEmojis(posts)
	found := false
	for _, name := range got {
		if name == "rocket" {
			found = true
		}
	}
	if !found {
		t.Errorf("CollectUniqueEmojis() = %v, want rocket included", got)
	}
	if len(got) != len(DefaultEmojis)+1 {
		t.Errorf("len = %d, want defaults plus one (duplicates collapsed)", len(got))
	}
}

func TestCountEmojis(t *testing.T) {
	posts := []mattermost.Post{
		{ID: "a", Reactions: []mattermost.Reaction{
			{EmojiName: "eyes", UserID: "u1"},
			{EmojiName: "eyes", UserID: "u2"},
			{EmojiName: "leaves", UserID: "u1"},
		}},
		{ID: "b", Reactions: []mattermost.Reaction{
			{EmojiName: "eyes", UserID: "u3"},
			{EmojiName: "ant", UserID: "u1"},
		}},
	}

	got := CountEmojis(posts)
	want := []EmojiCount{
		{Name: "eyes", Count: 3},
		{Name: "ant", Count: 1},
		{Name: "leaves", Count: 1},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("CountEmojis() mismatch (-want +got):\n%s", diff)
	}
}
