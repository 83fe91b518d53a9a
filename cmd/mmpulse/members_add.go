package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"mmpulse/internal/mattermost"
)

var membersAddEmailsFile string

var membersAddCmd = &cobra.Command{
	Use:   "add <channel>",
	Short: "Add members to a channel by email",
	Long: `Add users to a channel from an email list.

The --emails file may be plain text (one email per line, blank lines
and # comments ignored) or a JSON array, or a JSON object mapping group
names to email arrays:

  {"backend": ["ada@example.com"], "qa": ["grace@example.com"]}

Duplicates collapse case-insensitively. Every email is processed even
when earlier ones fail; the result reports added, already_member, and
failed per email.

Examples:
  mmpulse members add jx7qz9wb3jf3dr7nqe5kkqr1wh --emails team.txt
  mmpulse members add jx7qz9wb3jf3dr7nqe5kkqr1wh --emails groups.json`,
	Args: cobra.ExactArgs(1),
	RunE: runMembersAdd,
}

func init() {
	membersCmd.AddCommand(membersAddCmd)
	membersAddCmd.Flags().StringVar(&membersAddEmailsFile, "emails", "", "File with emails (lines, JSON array, or JSON object of arrays)")
	membersAddCmd.MarkFlagRequired("emails")
}

// Per-email outcome statuses.
const (
	AddStatusAdded         = "added"
	AddStatusAlreadyMember = "already_member"
	AddStatusFailed        = "failed"
)

// AddMemberOutcome is one email's result.
type AddMemberOutcome struct {
	Email  string `json:"email"`
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

// AddMembersResult is the JSON output for members add.
type AddMembersResult struct {
	ChannelID     string             `json:"channel_id"`
	Total         int                `json:"total"`
	Added         int                `json:"added"`
	AlreadyMember int                `json:"already_member"`
	Failed        int                `json:"failed"`
	Results       []AddMemberOutcome `json:"results"`
}

func runMembersAdd(cmd *cobra.Command, args []string) error {
	channelID := mattermost.ExtractChannelID(args[0])

	data, err := os.ReadFile(membersAddEmailsFile)
	if err != nil {
		exitWithError(ExitDataError, "reading emails file: %v", err)
	}
	emails := ParseEmailList(data)
	if len(emails) == 0 {
		exitWithError(ExitDataError, "no emails found in %s", membersAddEmailsFile)
	}

	client := mustClient()
	ctx := context.Background()

	result := AddMembersResult{ChannelID: channelID, Total: len(emails)}
	for _, email := range emails {
		outcome := addMemberByEmail(ctx, client, channelID, email)
		switch outcome.Status {
		case AddStatusAdded:
			result.Added++
		case AddStatusAlreadyMember:
			result.AlreadyMember++
		default:
			result.Failed++
		}
		result.Results = append(result.Results, outcome)
	}

	if humanOutput {
		for _, r := range result.Results {
			switch r.Status {
			case AddStatusAdded:
				fmt.Printf("[added]   %s\n", r.Email)
			case AddStatusAlreadyMember:
				fmt.Printf("[member]  %s\n", r.Email)
			default:
				fmt.Printf("[failed]  %s: %s\n", r.Email, truncateString(r.Error, HumanErrorMaxLen))
			}
		}
		fmt.Printf("\nAdded %d, already members %d, failed %d (of %d)\n",
			result.Added, result.AlreadyMember, result.Failed, result.Total)
		return nil
	}
	return outputJSON(result)
}

// addMemberByEmail resolves one email to a user and adds them to the
// channel, classifying the outcome.
func addMemberByEmail(ctx context.Context, client *mattermost.Client, channelID, email string) AddMemberOutcome {
	user, err := client.GetUserByEmail(ctx, email)
	if err != nil {
		if mattermost.IsNotFound(err) {
			return AddMemberOutcome{Email: email, Status: AddStatusFailed, Error: "no user with this email"}
		}
		return AddMemberOutcome{Email: email, Status: AddStatusFailed, Error: err.Error()}
	}

	_, err = client.GetChannelMember(ctx, channelID, user.ID)
	if err == nil {
		return AddMemberOutcome{Email: email, Status: AddStatusAlreadyMember}
	}
	if !mattermost.IsNotFound(err) {
		return AddMemberOutcome{Email: email, Status: AddStatusFailed, Error: err.Error()}
	}

	if err := client.AddChannelMember(ctx, channelID, user.ID); err != nil {
		return AddMemberOutcome{Email: email, Status: AddStatusFailed, Error: err.Error()}
	}
	return AddMemberOutcome{Email: email, Status: AddStatusAdded}
}

// ParseEmailList extracts emails from raw file content: a JSON array, a
// JSON object mapping group names to email arrays, or plain lines with
// # comments. Duplicates collapse case-insensitively, keeping the first
// spelling seen.
func ParseEmailList(data []byte) []string {
	var list []string
	if err := json.Unmarshal(data, &list); err == nil {
		return dedupeFold(list)
	}

	var groups map[string][]string
	if err := json.Unmarshal(data, &groups); err == nil {
		// Stable order: group names sorted, file order within a group.
		names := make([]string, 0, len(groups))
		for name := range groups {
			names = append(names, name)
		}
		sort.Strings(names)

		var all []string
		for _, name := range names {
			all = append(all, groups[name]...)
		}
		return dedupeFold(all)
	}

	return dedupeFold(splitLines(data))
}

// splitLines returns trimmed non-empty lines, skipping # comments.
func splitLines(data []byte) []string {
	var out []string
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		out = append(out, line)
	}
	return out
}

// dedupeFold removes case-insensitive duplicates, preserving order and
// the first spelling seen. Entries are trimmed; empties are dropped.
func dedupeFold(values []string) []string {
	seen := make(map[string]bool, len(values))
	var out []string
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		key := strings.ToLower(v)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, v)
	}
	return out
}
