package ui

import (
	"fmt"
	"io"
	"time"

	"github.com/schollz/progressbar/v3"

	"github.com/bamsammich/doopie/internal/event"
	"github.com/bamsammich/doopie/internal/stats"
)

// progressPresenter draws a spinner while the tree is enumerated and a
// byte progress bar while candidate files are hashed. Bars are refreshed
// from the stats collector, since per-file events may be dropped.
type progressPresenter struct {
	w     io.Writer
	stats stats.ReadTicker

	bar   *progressbar.ProgressBar
	stage event.Type
}

const progressRefresh = 100 * time.Millisecond

func (p *progressPresenter) Run(events <-chan Event) error {
	refresh := time.NewTicker(progressRefresh)
	defer refresh.Stop()
	secTicker := time.NewTicker(time.Second)
	defer secTicker.Stop()

	for {
		select {
		case ev, ok := <-events:
			if !ok {
				p.finishBar()
				return nil
			}
			p.handleEvent(ev)
		case <-refresh.C:
			p.refresh()
		case <-secTicker.C:
			p.stats.Tick()
		}
	}
}

func (p *progressPresenter) handleEvent(ev Event) {
	switch ev.Type {
	case ScanStarted:
		p.finishBar()
		p.stage = ScanStarted
		p.bar = progressbar.NewOptions64(-1,
			progressbar.OptionSetWriter(p.w),
			progressbar.OptionSetDescription("scanning"),
			progressbar.OptionShowCount(),
			progressbar.OptionShowIts(),
			progressbar.OptionSetItsString("files"),
			progressbar.OptionSpinnerType(14),
			progressbar.OptionThrottle(65*time.Millisecond),
			progressbar.OptionClearOnFinish(),
		)
	case EnumerateComplete, HashComplete:
		p.refresh()
		p.finishBar()
	case HashStarted:
		p.finishBar()
		p.stage = HashStarted
		p.bar = progressbar.NewOptions64(ev.TotalSize,
			progressbar.OptionSetWriter(p.w),
			progressbar.OptionSetDescription(fmt.Sprintf("hashing %s files", FormatCount(ev.Total))),
			progressbar.OptionShowBytes(true),
			progressbar.OptionSetPredictTime(true),
			progressbar.OptionThrottle(65*time.Millisecond),
			progressbar.OptionFullWidth(),
			progressbar.OptionClearOnFinish(),
		)
	}
}

func (p *progressPresenter) refresh() {
	if p.bar == nil {
		return
	}
	snap := p.stats.Snapshot()
	switch p.stage {
	case ScanStarted:
		_ = p.bar.Set64(snap.FilesSeen)
	case HashStarted:
		_ = p.bar.Set64(snap.BytesHashed)
	}
}

func (p *progressPresenter) finishBar() {
	if p.bar == nil {
		return
	}
	_ = p.bar.Finish()
	p.bar = nil
	p.stage = 0
}

func (p *progressPresenter) Summary() string {
	return CompletionSummary(p.stats.Snapshot())
}
