package match

import (
	"sync"

	"github.com/rotisserie/eris"

	"github.com/argus-labs/arena/pkg/physics"
)

var ErrInboxFull = eris.New("match inbox is full")

type EventKind uint8

const (
	EventJoin EventKind = iota + 1
	EventLeave
	EventInput
	EventButton
)

func (k EventKind) String() string {
	switch k {
	case EventJoin:
		return "join"
	case EventLeave:
		return "leave"
	case EventInput:
		return "input"
	case EventButton:
		return "button"
	default:
		return "unknown"
	}
}

// Event is a player action waiting for the next tick.
type Event struct {
	Kind    EventKind
	Player  string
	Name    string
	Control physics.ControlState
	Button  string
}

// inbox is a bounded FIFO shared between producers and the tick loop.
type inbox struct {
	mu       sync.Mutex
	events   []Event
	capacity int
}

func newInbox(capacity int) *inbox {
	return &inbox{events: make([]Event, 0, capacity), capacity: capacity}
}

func (q *inbox) push(ev Event) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.events) >= q.capacity {
		return eris.Wrapf(ErrInboxFull, "dropping %s from %q", ev.Kind, ev.Player)
	}
	q.events = append(q.events, ev)
	return nil
}

// drain returns the queued events in arrival order and empties the queue.
func (q *inbox) drain() []Event {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.events) == 0 {
		return nil
	}
	out := make([]Event, len(q.events))
	copy(out, q.events)
	q.events = q.events[:0]
	return out
}

func (q *inbox) len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.events)
}
