package mattermost

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

// servePostPages serves the given pages of posts (each newest-first, as the
// server would) and records which page indices were requested.
func servePostPages(t *testing.T, pages [][]Post) (*Client, *[]int) {
	t.Helper()

	requested := &[]int{}
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		page, err := strconv.Atoi(r.URL.Query().Get("page"))
		if err != nil {
			t.Errorf("bad page parameter: %v", err)
		}
		*requested = append(*requested, page)

		pl := postList{Posts: map[string]Post{}}
		if page < len(pages) {
			for _, p := range pages[page] {
				pl.Order = append(pl.Order, p.ID)
				pl.Posts[p.ID] = p
			}
		}
		json.NewEncoder(w).Encode(pl)
	})

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(srv.URL, "test-token", WithRateLimit(10000)), requested
}

func postIDs(posts []Post) []string {
	ids := make([]string, len(posts))
	for i, p := range posts {
		ids[i] = p.ID
	}
	return ids
}

func TestFetchChannelPostsKeepsRange(t *testing.T) {
	// Newest-first within the page; boundaries are inclusive.
	client, _ := servePostPages(t, [][]Post{{
		{ID: "after", CreateAt: 500},
		{ID: "at-end", CreateAt: 400},
		{ID: "inside", CreateAt: 300},
		{ID: "at-start", CreateAt: 200},
	}})

	posts, err := client.FetchChannelPosts(context.Background(), "c1",
		time.UnixMilli(200), time.UnixMilli(400), 10)
	if err != nil {
		t.Fatalf("FetchChannelPosts() error = %v", err)
	}

	want := []string{"at-end", "inside", "at-start"}
	if diff := cmp.Diff(want, postIDs(posts)); diff != "" {
		t.Errorf("kept posts mismatch (-want +got):\n%s", diff)
	}
}

func TestFetchChannelPostsEarlyExit(t *testing.T) {
	// The post older than start sits mid-page; everything after it on the
	// same page and all later pages must be skipped.
	pageSize := 3
	client, requested := servePostPages(t, [][]Post{
		{
			{ID: "in-range-1", CreateAt: 900},
			{ID: "too-old", CreateAt: 100},
			{ID: "never-seen", CreateAt: 950},
		},
		{
			{ID: "next-page", CreateAt: 800},
		},
	})

	posts, err := client.FetchChannelPosts(context.Background(), "c1",
		time.UnixMilli(500), time.UnixMilli(1000), pageSize)
	if err != nil {
		t.Fatalf("FetchChannelPosts() error = %v", err)
	}

	want := []string{"in-range-1"}
	if diff := cmp.Diff(want, postIDs(posts)); diff != "" {
		t.Errorf("early-exit result mismatch (-want +got):\n%s", diff)
	}
	if len(*requested) != 1 {
		t.Errorf("pages requested = %v, want exactly one", *requested)
	}
}

func TestFetchChannelPostsWalksFullPages(t *testing.T) {
	client, requested := servePostPages(t, [][]Post{
		{
			{ID: "p1", CreateAt: 600},
			{ID: "p2", CreateAt: 500},
		},
		{
			{ID: "p3", CreateAt: 400},
		},
	})

	posts, err := client.FetchChannelPosts(context.Background(), "c1",
		time.UnixMilli(100), time.UnixMilli(1000), 2)
	if err != nil {
		t.Fatalf("FetchChannelPosts() error = %v", err)
	}

	want := []string{"p1", "p2", "p3"}
	if diff := cmp.Diff(want, postIDs(posts)); diff != "" {
		t.Errorf("collected posts mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]int{0, 1}, *requested); diff != "" {
		t.Errorf("requested pages mismatch (-want +got):\n%s", diff)
	}
}

func TestFetchChannelPostsEmptyChannel(t *testing.T) {
	client, requested := servePostPages(t, nil)

	posts, err := client.FetchChannelPosts(context.Background(), "c1",
		time.UnixMilli(0), time.UnixMilli(1000), 10)
	if err != nil {
		t.Fatalf("FetchChannelPosts() error = %v", err)
	}
	if len(posts) != 0 {
		t.Errorf("posts = %v, want none", posts)
	}
	if len(*requested) != 1 {
		t.Errorf("pages requested = %v, want just page 0", *requested)
	}
}

func TestFetchChannelPostsValidation(t *testing.T) {
	client, requested := servePostPages(t, nil)
	ctx := context.Background()

	if _, err := client.FetchChannelPosts(ctx, "", time.UnixMilli(0), time.UnixMilli(1), 10); !IsValidation(err) {
		t.Errorf("empty channel id: error = %v, want validation error", err)
	}
	if _, err := client.FetchChannelPosts(ctx, "c1", time.UnixMilli(0), time.UnixMilli(1), MaxPageSize+1); !IsValidation(err) {
		t.Errorf("oversize page: error = %v, want validation error", err)
	}
	if _, err := client.FetchChannelPosts(ctx, "c1", time.UnixMilli(100), time.UnixMilli(50), 10); !IsValidation(err) {
		t.Errorf("inverted range: error = %v, want validation error", err)
	}
	if len(*requested) != 0 {
		t.Errorf("pages requested = %v, want none before validation passes", *requested)
	}
}

func TestFetchChannelPostsDefaultPageSize(t *testing.T) {
	var gotPerPage string
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPerPage = r.URL.Query().Get("per_page")
		json.NewEncoder(w).Encode(postList{})
	})
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	client := NewClient(srv.URL, "test-token", WithRateLimit(10000))

	if _, err := client.FetchChannelPosts(context.Background(), "c1",
		time.UnixMilli(0), time.UnixMilli(1), 0); err != nil {
		t.Fatalf("FetchChannelPosts() error = %v", err)
	}
	if gotPerPage != strconv.Itoa(DefaultPageSize) {
		t.Errorf("per_page = %q, want %d", gotPerPage, DefaultPageSize)
	}
}

func TestFetchChannelPostsPropagatesPageFailure(t *testing.T) {
	// First page is full, second page fails: the whole fetch fails with no
	// partial result.
	page := 0
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if page > 0 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		page++
		pl := postList{
			Order: []string{"p1", "p2"},
			Posts: map[string]Post{
				"p1": {ID: "p1", CreateAt: 600},
				"p2": {ID: "p2", CreateAt: 500},
			},
		}
		json.NewEncoder(w).Encode(pl)
	})
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	client := NewClient(srv.URL, "test-token", WithRateLimit(10000))

	posts, err := client.FetchChannelPosts(context.Background(), "c1",
		time.UnixMilli(100), time.UnixMilli(1000), 2)
	if err == nil {
		t.Fatal("FetchChannelPosts() expected error, got nil")
	}
	if posts != nil {
		t.Errorf("posts = %v, want nil on failure", posts)
	}
}

func TestFetchChannelPostsScenario(t *testing.T) {
	// Two posts, newest first: b at 200 with no reactions, a at 100 with
	// one eyes reaction. Range [50, 150] keeps only a.
	client, _ := servePostPages(t, [][]Post{{
		{ID: "b", CreateAt: 200},
		{ID: "a", CreateAt: 100, Reactions: []Reaction{{UserID: "u1", EmojiName: "eyes"}}},
	}})

	posts, err := client.FetchChannelPosts(context.Background(), "c1",
		time.UnixMilli(50), time.UnixMilli(150), 10)
	if err != nil {
		t.Fatalf("FetchChannelPosts() error = %v", err)
	}

	if len(posts) != 1 || posts[0].ID != "a" {
		t.Fatalf("posts = %v, want only post a", postIDs(posts))
	}
	if len(posts[0].Reactions) != 1 || posts[0].Reactions[0].EmojiName != "eyes" {
		t.Errorf("post a reactions = %+v, want the eyes reaction preserved", posts[0].Reactions)
	}
}
