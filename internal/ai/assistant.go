// Package ai wraps OpenAI chat completions for the text workflows:
// channel summaries and message improvement.
package ai

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"mmpulse/internal/analyze"
	"mmpulse/internal/mattermost"
)

const (
	completionModel       = openai.GPT3Dot5Turbo
	completionTemperature = 0.7
	completionMaxTokens   = 1000

	// SummaryPostCap bounds how many posts feed one summary prompt.
	SummaryPostCap = 100
	// digestPreviewLength caps each post line inside the prompt.
	digestPreviewLength = 200
)

// Assistant issues chat completion requests.
type Assistant struct {
	client *openai.Client
	logger *zap.Logger
}

// NewAssistant creates an assistant for the given API key.
func NewAssistant(apiKey string, logger *zap.Logger) *Assistant {
	return NewAssistantWithClient(openai.NewClient(apiKey), logger)
}

// NewAssistantWithClient creates an assistant over an existing client.
// Useful for testing against a stub server.
func NewAssistantWithClient(client *openai.Client, logger *zap.Logger) *Assistant {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Assistant{client: client, logger: logger}
}

// ImproveText rewrites a draft message to be clearer and more
// professional while keeping its meaning and tone.
func (a *Assistant) ImproveText(ctx context.Context, text string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("nothing to improve: empty message")
	}

	prompt := fmt.Sprintf(`Improve the following message, making it clearer, more professional, and easier to read.
Keep the original meaning and tone. Fix grammar and improve structure and wording.
Do not add information that was not in the original.

Original message:
%s

Improved message:`, text)

	return a.complete(ctx,
		"You are a professional text editor who helps polish business messages.",
		prompt)
}

// SummarizeChannel produces a summary of channel activity from a
// pre-built post digest covering the given period.
func (a *Assistant) SummarizeChannel(ctx context.Context, channelName, period, digest string) (string, error) {
	if strings.TrimSpace(digest) == "" {
		return "", fmt.Errorf("nothing to summarize: no posts in the snapshot")
	}

	name := channelName
	if name == "" {
		name = "the channel"
	}
	prompt := fmt.Sprintf(`Summarize the activity in %s for the period %s.
Highlight the main topics, decisions made, and open questions. Keep it concise.

Posts:
%s

Summary:`, name, period, digest)

	return a.complete(ctx,
		"You are an assistant that summarizes team chat activity.",
		prompt)
}

func (a *Assistant) complete(ctx context.Context, system, prompt string) (string, error) {
	start := time.Now()
	resp, err := a.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: completionModel,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		Temperature: completionTemperature,
		MaxTokens:   completionMaxTokens,
	})
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}

	a.logger.Debug("chat completion",
		zap.String("model", completionModel),
		zap.Duration("elapsed", time.Since(start)))

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("chat completion returned no choices")
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

// BuildChannelDigest renders posts as dated one-line entries for the
// summary prompt, capped at maxPosts. authorName resolves a user id to
// a display name; an empty result falls back to ShortUserLabel.
func BuildChannelDigest(posts []mattermost.Post, authorName func(userID string) string, maxPosts int) string {
	if maxPosts <= 0 {
		maxPosts = SummaryPostCap
	}

	var b strings.Builder
	count := 0
	for _, p := range posts {
		if count >= maxPosts {
			break
		}
		if strings.TrimSpace(p.Message) == "" {
			continue
		}

		name := ""
		if authorName != nil {
			name = authorName(p.UserID)
		}
		if name == "" {
			name = ShortUserLabel(p.UserID)
		}

		date := time.UnixMilli(p.CreateAt).Format("2006-01-02")
		fmt.Fprintf(&b, "[%s] %s: %s\n", date, name, analyze.FormatPostPreview(p.Message, digestPreviewLength))
		count++
	}
	return b.String()
}

// ShortUserLabel renders an anonymous-but-stable label for a user id
// whose profile could not be resolved.
func ShortUserLabel(userID string) string {
	if userID == "" {
		return "User-unknown"
	}
	runes := []rune(userID)
	if len(runes) > 8 {
		runes = runes[:8]
	}
	return "User-" + string(runes)
}
