package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"mmpulse/internal/export"
)

var membersExportOutput string

var membersExportCmd = &cobra.Command{
	Use:   "export <channel>",
	Short: "Export the member table as CSV",
	Long: `Write the channel member table as CSV with numbered rows.

Columns: #, Email, Full Name, Position. Output goes to stdout unless
--output names a file.

Examples:
  mmpulse members export jx7qz9wb3jf3dr7nqe5kkqr1wh
  mmpulse members export jx7qz9wb3jf3dr7nqe5kkqr1wh --output members.csv`,
	Args: cobra.ExactArgs(1),
	RunE: runMembersExport,
}

func init() {
	membersCmd.AddCommand(membersExportCmd)
	membersExportCmd.Flags().StringVarP(&membersExportOutput, "output", "o", "", "Write CSV to this file instead of stdout")
}

func runMembersExport(cmd *cobra.Command, args []string) error {
	rows, _ := fetchMemberRows(args[0])

	var w io.Writer = os.Stdout
	if membersExportOutput != "" {
		f, err := os.Create(membersExportOutput)
		if err != nil {
			exitWithError(ExitError, "creating %s: %v", membersExportOutput, err)
		}
		defer f.Close()
		w = f
	}

	if err := export.WriteMembersCSV(w, rows); err != nil {
		exitWithError(ExitError, "writing CSV: %v", err)
	}

	if membersExportOutput != "" {
		fmt.Fprintf(os.Stderr, "Wrote %d members to %s\n", len(rows), membersExportOutput)
	}
	return nil
}
