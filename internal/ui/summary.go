package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/bamsammich/doopie/internal/dupes"
)

// Summary table rows as numbered by the table StyleFunc. Row 0 is the
// header.
const (
	rowHeader = iota
	rowTotal
	rowUnique
	rowDuplicate
	rowReclaimable
	rowSkipped
)

// SummaryTable renders the end-of-scan report: a title line, a table of
// file counts and sizes per class, and a footnote with set and timing
// details.
func SummaryTable(r dupes.ScanReport) string {
	rows := [][]string{
		{"Total", FormatCount(r.FilesSeen), FormatBytes(r.BytesSeen)},
		{"Unique", FormatCount(r.UniqueFiles), FormatBytes(r.UniqueBytes)},
		{"Duplicate", FormatCount(r.DuplicateFiles), FormatBytes(r.DuplicateBytes)},
		{"Reclaimable", FormatCount(r.DuplicateFiles - r.DuplicateSets), FormatBytes(r.ReclaimableBytes)},
		{"Skipped", FormatCount(r.FilesSkipped), "-"},
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(styleBorder).
		Headers("", "Files", "Size").
		Rows(rows...).
		StyleFunc(summaryCellStyle)

	var b strings.Builder
	b.WriteString(styleTitle.Render("Report of scanning " + r.Root))
	b.WriteByte('\n')
	b.WriteString(t.String())
	b.WriteByte('\n')
	b.WriteString(styleFootnote.Render(footnote(r)))
	b.WriteByte('\n')
	return b.String()
}

func summaryCellStyle(row, col int) lipgloss.Style {
	switch {
	case row == rowHeader:
		return styleHeader
	case col == 0:
		return styleLabel
	case row == rowUnique:
		return styleUnique
	case row == rowDuplicate, row == rowReclaimable:
		return styleDuplicate
	default:
		return styleValue
	}
}

func footnote(r dupes.ScanReport) string {
	s := fmt.Sprintf("%s duplicate sets  hashed %s files (%s) with %s  time %s",
		FormatCount(r.DuplicateSets),
		FormatCount(r.FilesHashed),
		FormatBytes(r.BytesHashed),
		r.Algorithm,
		FormatDuration(r.Elapsed),
	)
	if r.DirsUnreadable > 0 {
		s += fmt.Sprintf("  unreadable dirs %s", FormatCount(r.DirsUnreadable))
	}
	return s
}
