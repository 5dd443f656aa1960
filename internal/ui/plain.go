package ui

import (
	"fmt"
	"io"
	"time"

	"github.com/bamsammich/doopie/internal/stats"
)

// plainPresenter writes one line per stage boundary, and periodic hashing
// progress, for non-TTY output.
type plainPresenter struct {
	w       io.Writer
	stats   stats.ReadTicker
	root    string
	verbose bool
}

func (p *plainPresenter) Run(events <-chan Event) error {
	ticker := time.NewTicker(5 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case ev, ok := <-events:
			if !ok {
				return nil
			}
			p.handleEvent(ev)
		case <-ticker.C:
			p.stats.Tick()
			p.printProgress()
		}
	}
}

func (p *plainPresenter) handleEvent(ev Event) {
	switch ev.Type {
	case ScanStarted:
		fmt.Fprintf(p.w, "scanning %s\n", ev.Path)
	case EnumerateComplete:
		fmt.Fprintf(p.w, "found %s files (%s)\n", FormatCount(ev.Total), FormatBytes(ev.TotalSize))
	case BucketsComplete:
		if ev.Total == 0 {
			fmt.Fprintln(p.w, "no two files share a size, nothing to hash")
		}
	case HashStarted:
		fmt.Fprintf(p.w, "hashing %s files (%s)\n", FormatCount(ev.Total), FormatBytes(ev.TotalSize))
	case HashComplete:
		fmt.Fprintf(p.w, "hashed %s files (%s)\n", FormatCount(ev.Total), FormatBytes(ev.TotalSize))
	case FileSkipped:
		if p.verbose {
			fmt.Fprintf(p.w, "%s  skipped  %s\n", RelPath(p.root, ev.Path), ev.Reason)
		}
	case FileHashed, ScanComplete, ReportWritten:
		// counted by the collector; the caller reports written artifacts
	}
}

func (p *plainPresenter) printProgress() {
	snap := p.stats.Snapshot()
	if snap.HashBytesTotal > 0 {
		pct := float64(snap.BytesHashed) / float64(snap.HashBytesTotal) * 100
		fmt.Fprintf(p.w, "progress: %.0f%% %s/%s %s/%s files %s eta %s\n",
			pct,
			FormatBytes(snap.BytesHashed), FormatBytes(snap.HashBytesTotal),
			FormatCount(snap.FilesHashed), FormatCount(snap.HashFilesTotal),
			FormatRate(p.stats.RollingSpeed(10)),
			FormatETA(p.stats.ETA()),
		)
		return
	}
	fmt.Fprintf(p.w, "progress: %s files seen (%s)\n",
		FormatCount(snap.FilesSeen),
		FormatBytes(snap.BytesSeen),
	)
}

func (p *plainPresenter) Summary() string {
	return CompletionSummary(p.stats.Snapshot())
}
