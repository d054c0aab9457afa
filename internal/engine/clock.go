package engine

import "sync/atomic"

// Clock hands out the logical sequence numbers stamped on dispatched events.
//
// Seq values identify events in diagnostics independent of log timestamps,
// which repeat within the same millisecond.
//
// Only the dispatching goroutine calls Next; Current may be read from any
// goroutine, for example to report progress while a Feed drains.
type Clock struct {
	seq atomic.Int64
}

// NewClock creates a clock starting at 0. The first Next returns 1.
func NewClock() *Clock {
	return &Clock{}
}

// NewClockAt creates a clock resuming after start. Used when an analysis
// continues from an archived offset so seq values line up with the archive.
func NewClockAt(start int64) *Clock {
	c := &Clock{}
	c.seq.Store(start)
	return c
}

// Next returns the next sequence number.
func (c *Clock) Next() int64 {
	return c.seq.Add(1)
}

// Current returns the last issued sequence number.
func (c *Clock) Current() int64 {
	return c.seq.Load()
}
