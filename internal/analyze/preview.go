package analyze

import "strings"

// DefaultPreviewLength is the preview cap used by post listings.
const DefaultPreviewLength = 100

// FormatPostPreview renders a post message as a single display line:
// every whitespace run (newlines included) collapses to one space, and
// text longer than maxLength is cut there with a "..." suffix. Truncation
// counts runes, so multibyte text is never split mid-character. A
// maxLength below 1 falls back to DefaultPreviewLength.
func FormatPostPreview(message string, maxLength int) string {
	if maxLength < 1 {
		maxLength = DefaultPreviewLength
	}

	cleaned := strings.Join(strings.Fields(message), " ")
	runes := []rune(cleaned)
	if len(runes) <= maxLength {
		return cleaned
	}
	return string(runes[:maxLength]) + "..."
}
