// Package export renders fetched channel data into interchange formats.
package export

import (
	"encoding/csv"
	"fmt"
	"io"

	"mmpulse/internal/mattermost"
)

// MemberRow is one line of the channel member table.
type MemberRow struct {
	Email    string `json:"email"`
	FullName string `json:"full_name"`
	Position string `json:"position"`
}

// MemberRowsFromUsers builds the member table in API order. The full
// name falls back to username, then email, when the profile carries no
// name.
func MemberRowsFromUsers(users []mattermost.User) []MemberRow {
	rows := make([]MemberRow, 0, len(users))
	for _, u := range users {
		rows = append(rows, MemberRow{
			Email:    u.Email,
			FullName: u.FullName(),
			Position: u.Position,
		})
	}
	return rows
}

// WriteMembersCSV writes the member table as CSV with a header row and
// 1-based row numbers.
func WriteMembersCSV(w io.Writer, rows []MemberRow) error {
	cw := csv.NewWriter(w)

	if err := cw.Write([]string{"#", "Email", "Full Name", "Position"}); err != nil {
		return fmt.Errorf("writing CSV header: %w", err)
	}
	for i, row := range rows {
		record := []string{fmt.Sprintf("%d", i+1), row.Email, row.FullName, row.Position}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("writing CSV row %d: %w", i+1, err)
		}
	}

	cw.Flush()
	return cw.Error()
}
