package engine

import (
	"context"

	"github.com/roach88/masterylens/internal/combatlog"
)

// Feed serializes events from concurrent producers into one Engine.
//
// Events are dispatched in enqueue order. Producers that fetch log pages in
// parallel must enqueue them in log order; the engine cannot
// reorder events sharing a target's health trajectory.
type Feed struct {
	engine *Engine
	queue  *eventQueue
}

// NewFeed creates a feed delivering into e. The caller must not call
// e.Dispatch directly while Run is active.
func NewFeed(e *Engine) *Feed {
	return &Feed{engine: e, queue: newEventQueue()}
}

// Enqueue adds an event. Safe from any goroutine. Returns false after Stop.
func (f *Feed) Enqueue(ev combatlog.Event) bool {
	return f.queue.Enqueue(ev)
}

// Len returns the number of events waiting for dispatch.
func (f *Feed) Len() int {
	return f.queue.Len()
}

// Stop closes the feed. Run dispatches what is already queued, then returns.
func (f *Feed) Stop() {
	f.queue.Close()
}

// Run dispatches queued events until Stop has been called and the queue is
// drained, or ctx is cancelled. Summarize is valid once Run returns.
func (f *Feed) Run(ctx context.Context) error {
	log := f.engine.logger
	log.Debug("feed starting", "actor", f.engine.actor.ID)

	for {
		if ctx.Err() != nil {
			return f.cancelled(ctx)
		}
		if ev, ok := f.queue.TryDequeue(); ok {
			f.engine.Dispatch(ev)
			continue
		}

		select {
		case <-ctx.Done():
			return f.cancelled(ctx)

		case <-f.queue.Wait():
			if f.queue.Drained() {
				log.Debug("feed stopping: drained", "seq", f.engine.Seq())
				return nil
			}
		}
	}
}

func (f *Feed) cancelled(ctx context.Context) error {
	f.engine.logger.Info("feed stopping: context cancelled", "seq", f.engine.Seq())
	f.queue.Close()
	return ctx.Err()
}
