package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"mmpulse/internal/mattermost"
)

var (
	broadcastMessage        string
	broadcastMessageFile    string
	broadcastRecipientsFile string
	broadcastTo             []string
)

var broadcastCmd = &cobra.Command{
	Use:   "broadcast",
	Short: "Send a direct message to multiple users",
	Long: `Send the same direct message to a list of users.

Recipients are usernames (with or without a leading @) or email
addresses, from --to flags and/or a --recipients file (one per line or
a JSON array). The message comes from --message or --file. A direct
channel is opened from the token's user to each recipient; one failure
never stops the rest.

Examples:
  mmpulse broadcast --to ada --to grace@example.com --message "standup in 5"
  mmpulse broadcast --recipients team.txt --file announcement.md`,
	RunE: runBroadcast,
}

func init() {
	rootCmd.AddCommand(broadcastCmd)
	broadcastCmd.Flags().StringVarP(&broadcastMessage, "message", "m", "", "Message text")
	broadcastCmd.Flags().StringVar(&broadcastMessageFile, "file", "", "Read message text from file")
	broadcastCmd.Flags().StringVar(&broadcastRecipientsFile, "recipients", "", "File with recipients (lines or JSON array)")
	broadcastCmd.Flags().StringArrayVar(&broadcastTo, "to", nil, "Recipient username or email (repeatable)")
}

// BroadcastOutcome is one recipient's delivery result.
type BroadcastOutcome struct {
	Recipient string `json:"recipient"`
	UserID    string `json:"user_id,omitempty"`
	Success   bool   `json:"success"`
	Error     string `json:"error,omitempty"`
}

// BroadcastResult is the JSON output for broadcast.
type BroadcastResult struct {
	Total      int                `json:"total"`
	Successful int                `json:"successful"`
	Failed     int                `json:"failed"`
	Results    []BroadcastOutcome `json:"results"`
}

func runBroadcast(cmd *cobra.Command, args []string) error {
	message, err := broadcastMessageText()
	if err != nil {
		exitWithError(ExitError, "%v", err)
	}

	recipients, err := broadcastRecipients()
	if err != nil {
		exitWithError(ExitDataError, "%v", err)
	}
	if len(recipients) == 0 {
		exitWithError(ExitError, "no recipients given; use --to or --recipients")
	}

	client := mustClient()
	ctx := context.Background()

	me, err := client.GetMe(ctx)
	if err != nil {
		exitWithError(exitCodeForAPIError(err), "resolving own user: %v", err)
	}

	result := BroadcastResult{Total: len(recipients)}
	for _, recipient := range recipients {
		outcome := sendDirectMessage(ctx, client, me.ID, recipient, message)
		if outcome.Success {
			result.Successful++
		} else {
			result.Failed++
		}
		result.Results = append(result.Results, outcome)
	}

	if humanOutput {
		for _, r := range result.Results {
			if r.Success {
				fmt.Printf("[ok]      %s\n", r.Recipient)
			} else {
				fmt.Printf("[failed]  %s: %s\n", r.Recipient, truncateString(r.Error, HumanErrorMaxLen))
			}
		}
		fmt.Printf("\nDelivered %d of %d\n", result.Successful, result.Total)
		return nil
	}
	return outputJSON(result)
}

// broadcastMessageText reads the message from --message or --file.
func broadcastMessageText() (string, error) {
	if broadcastMessage != "" && broadcastMessageFile != "" {
		return "", fmt.Errorf("use either --message or --file, not both")
	}
	if broadcastMessageFile != "" {
		data, err := os.ReadFile(broadcastMessageFile)
		if err != nil {
			return "", fmt.Errorf("reading message file: %w", err)
		}
		return strings.TrimRight(string(data), "\n"), nil
	}
	if strings.TrimSpace(broadcastMessage) == "" {
		return "", fmt.Errorf("no message given; use --message or --file")
	}
	return broadcastMessage, nil
}

// broadcastRecipients merges --to values with the --recipients file and
// dedups the combined list.
func broadcastRecipients() ([]string, error) {
	all := normalizeRecipients(broadcastTo)
	if broadcastRecipientsFile != "" {
		data, err := os.ReadFile(broadcastRecipientsFile)
		if err != nil {
			return nil, fmt.Errorf("reading recipients file: %w", err)
		}
		all = append(all, ParseRecipientList(data)...)
	}
	return dedupeFold(all), nil
}

// ParseRecipientList extracts recipients from raw file content: a JSON
// array or plain lines with # comments.
func ParseRecipientList(data []byte) []string {
	var list []string
	if err := json.Unmarshal(data, &list); err == nil {
		return normalizeRecipients(list)
	}
	return normalizeRecipients(splitLines(data))
}

// normalizeRecipients trims entries and drops the leading @ usernames
// are often pasted with.
func normalizeRecipients(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		v = strings.TrimPrefix(strings.TrimSpace(v), "@")
		if v == "" {
			continue
		}
		out = append(out, v)
	}
	return out
}

// sendDirectMessage resolves one recipient, opens the direct channel,
// and posts the message.
func sendDirectMessage(ctx context.Context, client *mattermost.Client, senderID, recipient, message string) BroadcastOutcome {
	user, err := resolveRecipient(ctx, client, recipient)
	if err != nil {
		if mattermost.IsNotFound(err) {
			return BroadcastOutcome{Recipient: recipient, Error: "user not found"}
		}
		return BroadcastOutcome{Recipient: recipient, Error: err.Error()}
	}

	dm, err := client.CreateDirectChannel(ctx, senderID, user.ID)
	if err != nil {
		return BroadcastOutcome{Recipient: recipient, UserID: user.ID, Error: fmt.Sprintf("opening direct channel: %v", err)}
	}

	if _, err := client.CreatePost(ctx, dm.ID, message); err != nil {
		return BroadcastOutcome{Recipient: recipient, UserID: user.ID, Error: fmt.Sprintf("posting message: %v", err)}
	}
	return BroadcastOutcome{Recipient: recipient, UserID: user.ID, Success: true}
}

// resolveRecipient looks a recipient up by email when it contains @,
// by username otherwise.
func resolveRecipient(ctx context.Context, client *mattermost.Client, recipient string) (*mattermost.User, error) {
	if strings.Contains(recipient, "@") {
		return client.GetUserByEmail(ctx, recipient)
	}
	return client.GetUserByUsername(ctx, recipient)
}
