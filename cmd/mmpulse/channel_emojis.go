package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"mmpulse/internal/analyze"
)

var (
	emojisCategoriesFile string
	emojisAvailableFor   string
)

var channelEmojisCmd = &cobra.Command{
	Use:   "emojis [channel]",
	Short: "Reaction emojis seen in the latest snapshot",
	Long: `List the reaction emojis of the latest snapshot.

The unique list always includes the default category emojis, so they
stay assignable even before anyone has used them. --available-for shows
which emojis may still be assigned to one category: later categories'
defaults are withheld and earlier categories' picks are removed.

Examples:
  mmpulse channel emojis
  mmpulse channel emojis jx7qz9wb3jf3dr7nqe5kkqr1wh
  mmpulse channel emojis --available-for "In Progress"`,
	Args: cobra.MaximumNArgs(1),
	RunE: runChannelEmojis,
}

func init() {
	channelCmd.AddCommand(channelEmojisCmd)
	channelEmojisCmd.Flags().StringVar(&emojisCategoriesFile, "categories", "", "YAML file with ordered category definitions")
	channelEmojisCmd.Flags().StringVar(&emojisAvailableFor, "available-for", "", "Show emojis assignable to this category")
}

// AvailableOptions lists the emojis still assignable to one category.
type AvailableOptions struct {
	Category string   `json:"category"`
	Options  []string `json:"options"`
}

// EmojisResult is the JSON output for channel emojis.
type EmojisResult struct {
	SnapshotID   int64                `json:"snapshot_id"`
	ChannelID    string               `json:"channel_id"`
	UniqueEmojis []string             `json:"unique_emojis"`
	Counts       []analyze.EmojiCount `json:"counts"`
	Available    *AvailableOptions    `json:"available,omitempty"`
}

func runChannelEmojis(cmd *cobra.Command, args []string) error {
	store := mustOpenSessionStore()
	defer store.Close()

	meta, posts := mustLoadSnapshot(store, snapshotChannelID(args))

	result := EmojisResult{
		SnapshotID:   meta.ID,
		ChannelID:    meta.ChannelID,
		UniqueEmojis: analyze.CollectUniqueEmojis(posts),
		Counts:       analyze.CountEmojis(posts),
	}

	if emojisAvailableFor != "" {
		categories, err := resolveCategories(emojisCategoriesFile)
		if err != nil {
			exitWithError(ExitDataError, "%v", err)
		}
		options, err := availableOptionsFor(result.UniqueEmojis, categories, emojisAvailableFor)
		if err != nil {
			exitWithError(ExitError, "%v", err)
		}
		result.Available = options
	}

	if humanOutput {
		fmt.Printf("Unique emojis (%d): %s\n", len(result.UniqueEmojis), strings.Join(result.UniqueEmojis, ", "))
		if len(result.Counts) > 0 {
			fmt.Println("\nUsage:")
			for _, c := range result.Counts {
				fmt.Printf("  %4d  :%s:\n", c.Count, c.Name)
			}
		}
		if result.Available != nil {
			fmt.Printf("\nAssignable to %s: %s\n", result.Available.Category, strings.Join(result.Available.Options, ", "))
		}
		return nil
	}
	return outputJSON(result)
}

// availableOptionsFor computes the emoji choices still open to the
// named category under the current category assignment.
func availableOptionsFor(all []string, categories []analyze.Category, name string) (*AvailableOptions, error) {
	idx := -1
	for i, c := range categories {
		if strings.EqualFold(c.Name, name) {
			idx = i
			break
		}
	}
	if idx < 0 {
		known := make([]string, 0, len(categories))
		for _, c := range categories {
			known = append(known, c.Name)
		}
		return nil, fmt.Errorf("unknown category %q (have: %s)", name, strings.Join(known, ", "))
	}

	selections := make([][]string, len(categories))
	for i, c := range categories {
		selections[i] = c.Emojis
	}
	defaultCategories := analyze.DefaultCategories()
	defaults := make([][]string, len(defaultCategories))
	for i, c := range defaultCategories {
		defaults[i] = c.Emojis
	}

	return &AvailableOptions{
		Category: categories[idx].Name,
		Options:  analyze.AvailableEmojiOptions(all, idx, selections, defaults),
	}, nil
}
