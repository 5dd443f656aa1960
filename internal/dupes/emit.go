package dupes

import (
	"context"
	"time"

	"github.com/bamsammich/doopie/internal/event"
)

// emitEvent sends a per-file event without blocking; presenters may miss
// some under load and read totals from the stats collector instead.
func emitEvent(ch chan<- event.Event, e event.Event) {
	if ch == nil {
		return
	}
	e.Timestamp = time.Now()
	select {
	case ch <- e:
	default:
	}
}

// emitStage sends a stage boundary event, blocking until it is delivered
// or ctx is done.
func emitStage(ctx context.Context, ch chan<- event.Event, e event.Event) {
	if ch == nil {
		return
	}
	e.Timestamp = time.Now()
	select {
	case ch <- e:
	case <-ctx.Done():
	}
}
