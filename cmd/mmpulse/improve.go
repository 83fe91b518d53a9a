package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"mmpulse/internal/ai"
	"mmpulse/internal/config"
)

var improveFile string

var improveCmd = &cobra.Command{
	Use:   "improve [text]",
	Short: "Polish a draft message with OpenAI",
	Long: `Rewrite a draft message to be clear and professional without
changing its meaning.

The draft comes from the argument, from --file, or from stdin when the
argument is '-'. Requires OPENAI_API_KEY.

Examples:
  mmpulse improve "pls fix teh deploy asap"
  mmpulse improve --file draft.txt
  cat draft.txt | mmpulse improve -`,
	Args: cobra.MaximumNArgs(1),
	RunE: runImprove,
}

func init() {
	rootCmd.AddCommand(improveCmd)
	improveCmd.Flags().StringVar(&improveFile, "file", "", "Read the draft from file")
}

// ImproveResult is the JSON output for improve.
type ImproveResult struct {
	Improved string `json:"improved"`
}

func runImprove(cmd *cobra.Command, args []string) error {
	apiKey := config.GetOpenAIKey()
	if apiKey == "" {
		exitWithError(ExitConfigError, "OPENAI_API_KEY is not set\n\nSet the environment variable or run 'mmpulse config openai-api-key <key>'.")
	}

	text, err := improveInputText(args)
	if err != nil {
		exitWithError(ExitError, "%v", err)
	}

	assistant := ai.NewAssistant(apiKey, buildLogger())
	improved, err := assistant.ImproveText(context.Background(), text)
	if err != nil {
		exitWithError(ExitError, "improving text: %v", err)
	}

	if humanOutput {
		fmt.Println(improved)
		return nil
	}
	return outputJSON(ImproveResult{Improved: improved})
}

// improveInputText reads the draft from the argument, --file, or stdin
// for the '-' argument.
func improveInputText(args []string) (string, error) {
	if improveFile != "" {
		if len(args) > 0 {
			return "", fmt.Errorf("use either --file or a text argument, not both")
		}
		data, err := os.ReadFile(improveFile)
		if err != nil {
			return "", fmt.Errorf("reading draft: %w", err)
		}
		return string(data), nil
	}
	if len(args) == 0 {
		return "", fmt.Errorf("no draft given; pass text, --file, or '-' for stdin")
	}
	if args[0] == "-" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return "", fmt.Errorf("reading stdin: %w", err)
		}
		return string(data), nil
	}
	return args[0], nil
}
