package engine

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/masterylens/internal/combatlog"
)

func tsEvent(ts int64) combatlog.Event {
	return combatlog.Event{Timestamp: ts, Type: combatlog.TypeHeal}
}

func TestEventQueue_FIFO(t *testing.T) {
	q := newEventQueue()
	for i := int64(1); i <= 3; i++ {
		require.True(t, q.Enqueue(tsEvent(i)))
	}
	assert.Equal(t, 3, q.Len())

	for i := int64(1); i <= 3; i++ {
		ev, ok := q.TryDequeue()
		require.True(t, ok)
		assert.Equal(t, i, ev.Timestamp)
	}

	_, ok := q.TryDequeue()
	assert.False(t, ok)
}

func TestEventQueue_Close(t *testing.T) {
	q := newEventQueue()
	q.Enqueue(tsEvent(1))
	q.Close()
	q.Close()

	assert.False(t, q.Enqueue(tsEvent(2)), "enqueue after close fails")
	assert.False(t, q.Drained(), "queued events survive close")

	_, ok := q.TryDequeue()
	require.True(t, ok)
	assert.True(t, q.Drained())

	select {
	case <-q.Wait():
	case <-time.After(time.Second):
		t.Fatal("closed queue should wake waiters")
	}
}

func TestEventQueue_SignalCoalesces(t *testing.T) {
	q := newEventQueue()
	for i := int64(0); i < 10; i++ {
		q.Enqueue(tsEvent(i))
	}

	<-q.Wait()
	select {
	case <-q.Wait():
		t.Fatal("multiple enqueues should produce one pending signal")
	default:
	}
	assert.Equal(t, 10, q.Len())
}

func TestEventQueue_ConcurrentProducers(t *testing.T) {
	q := newEventQueue()
	const producers = 8
	const perProducer = 250

	var wg sync.WaitGroup
	for p := 0; p < producers; p++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < perProducer; i++ {
				q.Enqueue(tsEvent(int64(i)))
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, producers*perProducer, q.Len())
}
