package match

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInboxDrainsInArrivalOrder(t *testing.T) {
	t.Parallel()

	q := newInbox(4)
	require.NoError(t, q.push(Event{Kind: EventJoin, Player: "a"}))
	require.NoError(t, q.push(Event{Kind: EventInput, Player: "a"}))
	require.NoError(t, q.push(Event{Kind: EventLeave, Player: "a"}))

	events := q.drain()
	require.Len(t, events, 3)
	assert.Equal(t, []EventKind{EventJoin, EventInput, EventLeave},
		[]EventKind{events[0].Kind, events[1].Kind, events[2].Kind})
	assert.Nil(t, q.drain())
	assert.Zero(t, q.len())
}

func TestInboxFull(t *testing.T) {
	t.Parallel()

	q := newInbox(1)
	require.NoError(t, q.push(Event{Kind: EventJoin, Player: "a"}))
	require.ErrorIs(t, q.push(Event{Kind: EventJoin, Player: "b"}), ErrInboxFull)

	q.drain()
	require.NoError(t, q.push(Event{Kind: EventJoin, Player: "b"}))
}

func TestInboxConcurrentProducers(t *testing.T) {
	t.Parallel()

	q := newInbox(1000)
	var wg sync.WaitGroup
	for range 10 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range 100 {
				_ = q.push(Event{Kind: EventInput})
			}
		}()
	}
	wg.Wait()
	assert.Len(t, q.drain(), 1000)
}

func TestEventKindString(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "button", EventButton.String())
	assert.Equal(t, "unknown", EventKind(0).String())
}
