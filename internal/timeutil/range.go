// Package timeutil builds the inclusive day-granular date windows used
// by channel fetches.
package timeutil

import (
	"fmt"
	"time"
)

const dateLayout = "2006-01-02"

// DateRange bounds a fetch window. Start is midnight opening the first
// day; End is the last millisecond of the final day, so both boundary
// days are fully included.
type DateRange struct {
	Start time.Time
	End   time.Time
}

// StartOfDay returns midnight at the beginning of t's calendar day.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// EndOfDay returns 23:59:59.999 of t's calendar day.
func EndOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 23, 59, 59, int(999*time.Millisecond), t.Location())
}

// ParseDateRange builds the window from --from/--to date strings with
// --days as the fallback width. An empty to means today; an empty from
// means days before the end day. Dates use YYYY-MM-DD in local time.
func ParseDateRange(from, to string, days int) (DateRange, error) {
	endDay := time.Now()
	if to != "" {
		t, err := time.ParseInLocation(dateLayout, to, time.Local)
		if err != nil {
			return DateRange{}, fmt.Errorf("invalid end date %q; use YYYY-MM-DD", to)
		}
		endDay = t
	}

	startDay := endDay.AddDate(0, 0, -days)
	if from != "" {
		t, err := time.ParseInLocation(dateLayout, from, time.Local)
		if err != nil {
			return DateRange{}, fmt.Errorf("invalid start date %q; use YYYY-MM-DD", from)
		}
		startDay = t
	}

	r := DateRange{Start: StartOfDay(startDay), End: EndOfDay(endDay)}
	if r.End.Before(r.Start) {
		return DateRange{}, fmt.Errorf("start date %s is after end date %s",
			r.Start.Format(dateLayout), r.End.Format(dateLayout))
	}
	return r, nil
}

// String renders the window as "2024-01-02 .. 2024-01-08".
func (r DateRange) String() string {
	return r.Start.Format(dateLayout) + " .. " + r.End.Format(dateLayout)
}
