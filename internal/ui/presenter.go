package ui

import (
	"io"

	"github.com/bamsammich/doopie/internal/stats"
)

// Presenter renders scan progress from the event stream. Run must drain
// the channel until it is closed; stage events are sent blocking.
type Presenter interface {
	Run(events <-chan Event) error
	// Summary returns the one-line completion summary, or "" for none.
	Summary() string
}

// Config configures a Presenter.
type Config struct {
	Writer     io.Writer
	ErrWriter  io.Writer
	Stats      stats.ReadTicker
	Root       string
	IsTTY      bool
	Quiet      bool
	Verbose    bool
	NoProgress bool
}

// NewPresenter picks a presenter: silent for -q, line output when stderr
// is not a terminal or progress is disabled, progress bars otherwise.
//
//nolint:ireturn // factory
func NewPresenter(cfg Config) Presenter {
	if cfg.Quiet {
		return quietPresenter{}
	}
	if !cfg.IsTTY || cfg.NoProgress {
		return &plainPresenter{
			w:       cfg.ErrWriter,
			stats:   cfg.Stats,
			root:    cfg.Root,
			verbose: cfg.Verbose,
		}
	}
	return &progressPresenter{
		w:     cfg.ErrWriter, // bars render to stderr (the TTY)
		stats: cfg.Stats,
	}
}
