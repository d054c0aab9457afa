package engine

import (
	"sync"

	"github.com/roach88/masterylens/internal/combatlog"
)

// eventQueue is an unbounded FIFO of combat-log events.
//
// Producers (page fetchers, readers) enqueue from any goroutine; a single
// consumer drains it. signal is buffered with size 1 so repeated enqueues
// coalesce into one wakeup, and it is closed by Close to wake the consumer.
type eventQueue struct {
	mu     sync.Mutex
	events []combatlog.Event
	closed bool
	signal chan struct{}
}

func newEventQueue() *eventQueue {
	return &eventQueue{
		events: make([]combatlog.Event, 0, 256),
		signal: make(chan struct{}, 1),
	}
}

// Enqueue appends ev. Returns false if the queue is closed.
func (q *eventQueue) Enqueue(ev combatlog.Event) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return false
	}
	q.events = append(q.events, ev)

	select {
	case q.signal <- struct{}{}:
	default:
	}
	return true
}

// TryDequeue removes the front event without blocking.
func (q *eventQueue) TryDequeue() (combatlog.Event, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.events) == 0 {
		return combatlog.Event{}, false
	}

	ev := q.events[0]
	// Clear the slot so the backing array does not pin the event's pointers.
	q.events[0] = combatlog.Event{}
	if len(q.events) == 1 {
		q.events = q.events[:0]
	} else {
		q.events = q.events[1:]
	}
	return ev, true
}

// Wait returns a channel that fires when events may be available or the
// queue was closed.
func (q *eventQueue) Wait() <-chan struct{} {
	return q.signal
}

// Len returns the number of queued events.
func (q *eventQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.events)
}

// Drained reports whether the queue is closed and empty.
func (q *eventQueue) Drained() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.closed && len(q.events) == 0
}

// Close stops further enqueues and wakes the consumer. Idempotent.
func (q *eventQueue) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return
	}
	q.closed = true
	close(q.signal)
}
