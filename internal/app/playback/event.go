package playback

import "sync"

// EventType represents a playback event type.
type EventType int

const (
	EventStateChanged EventType = iota // Play/pause, loading, duration or volume changed
	EventVerseChanged                  // Active chapter verse changed
	EventEnded                         // Chapter reached end of media
	EventLoaded                        // Chapter metadata loaded
	EventModeChanged                   // Switcher selection changed
)

// String returns the string representation of the event type.
func (e EventType) String() string {
	switch e {
	case EventStateChanged:
		return "state_changed"
	case EventVerseChanged:
		return "verse_changed"
	case EventEnded:
		return "ended"
	case EventLoaded:
		return "loaded"
	case EventModeChanged:
		return "mode_changed"
	default:
		return "unknown"
	}
}

// Event represents a playback event.
type Event struct {
	Type  EventType
	State State // Timeline snapshot (zero for switcher events)
	Verse int   // Active verse for timeline events, selected verse for switcher events
}

const eventBufferSize = 32

// emitter delivers events on a buffered channel without blocking.
type emitter struct {
	mu     sync.Mutex
	ch     chan Event
	closed bool
}

func newEmitter() *emitter {
	return &emitter{ch: make(chan Event, eventBufferSize)}
}

// send sends an event without blocking. Events are dropped when the buffer
// is full or the emitter is closed.
func (e *emitter) send(ev Event) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return
	}
	select {
	case e.ch <- ev:
	default:
	}
}

func (e *emitter) close() {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.closed {
		e.closed = true
		close(e.ch)
	}
}
