package export

import (
	"encoding/csv"
	"fmt"
	"io"
)

// PostRow is one line of the post listing table.
type PostRow struct {
	Date      string
	Author    string
	Message   string
	Reactions int
	Link      string
}

// WritePostsCSV writes the post table as CSV with a header row and
// 1-based row numbers.
func WritePostsCSV(w io.Writer, rows []PostRow) error {
	cw := csv.NewWriter(w)

	if err := cw.Write([]string{"#", "Date", "Author", "Message", "Reactions", "Link"}); err != nil {
		return fmt.Errorf("writing CSV header: %w", err)
	}
	for i, row := range rows {
		record := []string{
			fmt.Sprintf("%d", i+1), row.Date, row.Author,
			row.Message, fmt.Sprintf("%d", row.Reactions), row.Link,
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("writing CSV row %d: %w", i+1, err)
		}
	}

	cw.Flush()
	return cw.Error()
}
