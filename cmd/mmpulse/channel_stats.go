package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"mmpulse/internal/analyze"
	"mmpulse/internal/config"
)

var statsCategoriesFile string

var channelStatsCmd = &cobra.Command{
	Use:   "stats [channel]",
	Short: "Category statistics for the latest snapshot",
	Long: `Compute Done / In Progress / Control statistics from the latest
snapshot.

Each category is a set of reaction emojis; every post carrying at least
one matching reaction joins the category. Categories may overlap, so a
post whose reactions span two categories is counted in both. Stats are
recomputed from the stored posts on every run.

Without a channel argument the configured default channel is used, or
the newest snapshot overall.

Examples:
  mmpulse channel stats
  mmpulse channel stats jx7qz9wb3jf3dr7nqe5kkqr1wh
  mmpulse channel stats --categories sprint.yml`,
	Args: cobra.MaximumNArgs(1),
	RunE: runChannelStats,
}

func init() {
	channelCmd.AddCommand(channelStatsCmd)
	channelStatsCmd.Flags().StringVar(&statsCategoriesFile, "categories", "", "YAML file with ordered category definitions")
}

// CategoryReport is one category's share of the snapshot.
type CategoryReport struct {
	Name           string   `json:"name"`
	Emojis         []string `json:"emojis"`
	PostCount      int      `json:"post_count"`
	TotalReactions int      `json:"total_reactions"`
	PostIDs        []string `json:"post_ids,omitempty"`
}

// StatsResult is the JSON output for channel stats.
type StatsResult struct {
	SnapshotID       int64            `json:"snapshot_id"`
	ChannelID        string           `json:"channel_id"`
	ChannelName      string           `json:"channel_name,omitempty"`
	Period           Period           `json:"period"`
	FetchedAt        string           `json:"fetched_at"`
	Enriched         bool             `json:"enriched"`
	PostCount        int              `json:"post_count"`
	Categories       []CategoryReport `json:"categories"`
	WithoutReactions int              `json:"without_reactions"`
}

func runChannelStats(cmd *cobra.Command, args []string) error {
	store := mustOpenSessionStore()
	defer store.Close()

	meta, posts := mustLoadSnapshot(store, snapshotChannelID(args))

	categories, err := resolveCategories(statsCategoriesFile)
	if err != nil {
		exitWithError(ExitDataError, "%v", err)
	}

	stats := analyze.PartitionByCategory(posts, categories)

	reports := make([]CategoryReport, 0, len(categories))
	for _, cat := range categories {
		cs := stats[cat.Name]
		reports = append(reports, CategoryReport{
			Name:           cat.Name,
			Emojis:         cat.Emojis,
			PostCount:      cs.PostCount,
			TotalReactions: cs.TotalReactionCount,
			PostIDs:        cs.UniquePostIDs,
		})
	}

	result := StatsResult{
		SnapshotID:       meta.ID,
		ChannelID:        meta.ChannelID,
		ChannelName:      meta.ChannelName,
		Period:           periodFromMs(meta.StartMs, meta.EndMs),
		FetchedAt:        formatMsDateTime(meta.FetchedAt.UnixMilli()),
		Enriched:         meta.Enriched,
		PostCount:        meta.PostCount,
		Categories:       reports,
		WithoutReactions: len(analyze.PostsWithoutReactions(posts)),
	}

	if humanOutput {
		fmt.Printf("Channel: %s (%s)\n", result.ChannelName, result.ChannelID)
		fmt.Printf("Period: %s to %s (fetched %s)\n", result.Period.Start, result.Period.End, result.FetchedAt)
		fmt.Printf("Posts: %d, without reactions: %d\n\n", result.PostCount, result.WithoutReactions)
		for _, r := range result.Categories {
			fmt.Printf("  %-12s %3d posts  %3d reactions  [%s]\n",
				r.Name, r.PostCount, r.TotalReactions, strings.Join(r.Emojis, ", "))
		}
		return nil
	}
	return outputJSON(result)
}

// resolveCategories returns the category definitions to partition with:
// the --categories YAML file when given, otherwise the built-in order
// with per-category emoji overrides from the global config applied.
func resolveCategories(path string) ([]analyze.Category, error) {
	if path != "" {
		return loadCategoriesFile(path)
	}
	return categoriesFromConfig(config.GetCategories()), nil
}

// loadCategoriesFile reads an ordered category list:
//
//	- name: Done
//	  emojis: [leaves, ice_cube, ballot_box_with_check]
//	- name: In Progress
//	  emojis: [hammer_and_wrench]
func loadCategoriesFile(path string) ([]analyze.Category, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading categories file: %w", err)
	}

	var categories []analyze.Category
	if err := yaml.Unmarshal(data, &categories); err != nil {
		return nil, fmt.Errorf("parsing categories file: %w", err)
	}
	if len(categories) == 0 {
		return nil, fmt.Errorf("categories file %s defines no categories", path)
	}
	for _, c := range categories {
		if c.Name == "" {
			return nil, fmt.Errorf("categories file %s has a category without a name", path)
		}
	}
	return categories, nil
}

// categoriesFromConfig applies per-category emoji overrides from the
// global config onto the default category order.
func categoriesFromConfig(overrides map[string][]string) []analyze.Category {
	categories := analyze.DefaultCategories()
	for i, cat := range categories {
		if emojis, ok := overrides[cat.Name]; ok && len(emojis) > 0 {
			categories[i].Emojis = emojis
		}
	}
	return categories
}
