package ui

import (
	"fmt"

	"github.com/bamsammich/doopie/internal/stats"
)

// CompletionSummary builds a final summary line from a snapshot.
// Format: done ✓  files 48,917  size 2.1 GiB  hashed 1,204 (310 MiB)  time 3m 17s  skipped 0
func CompletionSummary(snap stats.Snapshot) string {
	icon := "✓"
	if snap.FilesSkipped > 0 || snap.DirsUnreadable > 0 {
		icon = "!"
	}

	base := fmt.Sprintf("done %s  files %s  size %s  hashed %s (%s)  time %s  skipped %s",
		icon,
		FormatCount(snap.FilesSeen),
		FormatBytes(snap.BytesSeen),
		FormatCount(snap.FilesHashed),
		FormatBytes(snap.BytesHashed),
		FormatDuration(snap.Elapsed),
		FormatCount(snap.FilesSkipped),
	)

	if snap.DirsUnreadable > 0 {
		base += fmt.Sprintf("  unreadable dirs %s", FormatCount(snap.DirsUnreadable))
	}
	return base
}
