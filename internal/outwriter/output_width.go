// Package outwriter has output and writer logic.
package outwriter

import (
	"os"

	"golang.org/x/term"

	"github.com/huangsam/queuetrace/internal/contract"
)

// GetMaxNoteWidth calculates the maximum width for anchor notes in table
// output based on terminal width.
func GetMaxNoteWidth(cfg *contract.Config) int {
	var termWidth int

	// Check for absolute width override from flag/env
	if cfg.Width > 0 {
		termWidth = cfg.Width
	}

	if termWidth == 0 { // Not set by override
		// Get terminal width
		detectedWidth, _, err := term.GetSize(int(os.Stdout.Fd()))
		if err != nil || detectedWidth <= 0 {
			// Fallback to conservative default if terminal size can't be detected
			termWidth = 80 // Conservative default for narrow terminals and CI
		} else {
			termWidth = detectedWidth
		}
	}

	// Reserve space for the fixed columns (ID, date, backlog, created) plus
	// table borders, separators, and padding
	baseWidth := 60

	available := termWidth - baseWidth
	if available < 15 {
		// Minimum reasonable note width
		return 15
	}
	if available > 70 {
		// Maximum note width to prevent overly long notes
		return 70
	}
	return available
}

// TruncateNote shortens a note to fit a table column, marking the cut with
// an ellipsis.
func TruncateNote(note string, maxWidth int) string {
	if len(note) <= maxWidth {
		return note
	}
	if maxWidth <= 3 {
		return note[:maxWidth]
	}
	return note[:maxWidth-3] + "..."
}
