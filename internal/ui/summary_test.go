package ui

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/bamsammich/doopie/internal/config"
	"github.com/bamsammich/doopie/internal/dupes"
)

func TestSummaryTable(t *testing.T) {
	r := dupes.ScanReport{
		Root:             "/data/photos",
		Algorithm:        dupes.BLAKE3,
		FilesSeen:        1234,
		BytesSeen:        10 * 1024 * 1024,
		UniqueFiles:      1200,
		UniqueBytes:      8 * 1024 * 1024,
		DuplicateFiles:   30,
		DuplicateBytes:   2 * 1024 * 1024,
		DuplicateSets:    12,
		ReclaimableBytes: 1024 * 1024,
		FilesSkipped:     4,
		FilesHashed:      60,
		BytesHashed:      4 * 1024 * 1024,
		Elapsed:          2 * time.Second,
	}

	s := SummaryTable(r)

	assert.Contains(t, s, "Report of scanning /data/photos")
	for _, want := range []string{
		"Total", "Unique", "Duplicate", "Reclaimable", "Skipped",
		"1,234", "10 MiB", "1,200", "8.0 MiB", "2.0 MiB", "1.0 MiB",
		"12 duplicate sets", "hashed 60 files (4.0 MiB) with blake3", "time 2s",
	} {
		assert.Contains(t, s, want)
	}
	// Reclaimable files: one copy of each set is kept.
	assert.Contains(t, s, "18")
	assert.NotContains(t, s, "unreadable dirs")
}

func TestSummaryCellStyle(t *testing.T) {
	assert.Equal(t, styleHeader, summaryCellStyle(0, 1))
	assert.Equal(t, styleLabel, summaryCellStyle(rowUnique, 0))
	assert.Equal(t, styleValue, summaryCellStyle(rowTotal, 1))
	assert.Equal(t, styleUnique, summaryCellStyle(rowUnique, 1))
	assert.Equal(t, styleDuplicate, summaryCellStyle(rowDuplicate, 2))
	assert.Equal(t, styleDuplicate, summaryCellStyle(rowReclaimable, 1))
	assert.Equal(t, styleValue, summaryCellStyle(rowSkipped, 1))

	// Data rows follow the header in table order.
	assert.Equal(t, 1, rowTotal)
	assert.Equal(t, 2, rowUnique)
}

func TestSummaryTableUnreadableDirs(t *testing.T) {
	s := SummaryTable(dupes.ScanReport{Root: "/r", DirsUnreadable: 3})
	assert.Contains(t, s, "unreadable dirs 3")
}

func TestApplyTheme(t *testing.T) {
	orig := ColorUnique
	t.Cleanup(func() {
		ColorUnique = orig
		rebuildStyles()
	})

	c := "#000000"
	ApplyTheme(config.ThemeConfig{Unique: &c})
	assert.Equal(t, "#000000", string(ColorUnique))
	assert.Equal(t, "#cdd6f4", string(ColorValue))
}
