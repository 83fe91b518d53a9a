package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"mmpulse/internal/export"
	"mmpulse/internal/mattermost"
)

var membersCmd = &cobra.Command{
	Use:   "members",
	Short: "Channel membership commands",
	Long: `Commands for working with a channel's member list.

list and export render each member's email, full name, and position;
add resolves an email list to users and adds them to the channel.

All commands output JSON by default for script consumption.
Use --human flag for human-readable output.`,
}

var membersListCmd = &cobra.Command{
	Use:   "list <channel>",
	Short: "List channel members",
	Long: `List every member of a channel with email, full name, and position.

Full name falls back to the username, then the email, when the profile
has no first/last name set.

Examples:
  mmpulse members list jx7qz9wb3jf3dr7nqe5kkqr1wh
  mmpulse members list jx7qz9wb3jf3dr7nqe5kkqr1wh --human`,
	Args: cobra.ExactArgs(1),
	RunE: runMembersList,
}

func init() {
	rootCmd.AddCommand(membersCmd)
	membersCmd.AddCommand(membersListCmd)
}

// MembersResult is the JSON output for members list.
type MembersResult struct {
	ChannelID string             `json:"channel_id"`
	Total     int                `json:"total"`
	Members   []export.MemberRow `json:"members"`
}

func runMembersList(cmd *cobra.Command, args []string) error {
	rows, channelID := fetchMemberRows(args[0])

	if humanOutput {
		for i, r := range rows {
			fmt.Printf("%3d  %-35s %-25s %s\n", i+1, r.Email, r.FullName, r.Position)
		}
		fmt.Printf("\nTotal: %d members\n", len(rows))
		return nil
	}
	return outputJSON(MembersResult{
		ChannelID: channelID,
		Total:     len(rows),
		Members:   rows,
	})
}

// fetchMemberRows fetches the channel's members, refreshes the user
// cache with their profiles, and renders the member table rows.
func fetchMemberRows(channelArg string) ([]export.MemberRow, string) {
	channelID := mattermost.ExtractChannelID(channelArg)
	client := mustClient()

	users, err := client.GetChannelMembers(context.Background(), channelID)
	if err != nil {
		exitWithError(exitCodeForAPIError(err), "members of %s: %v", channelID, err)
	}

	uc := loadUserCache()
	for _, u := range users {
		uc.Put(u)
	}
	saveUserCache(uc)

	return export.MemberRowsFromUsers(users), channelID
}
