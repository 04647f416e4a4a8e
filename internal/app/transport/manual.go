package transport

import (
	"context"
	"sync"

	"github.com/cockroachdb/errors"
)

// ErrNoSource is returned by Play when no source has been loaded.
var ErrNoSource = errors.New("no source loaded")

// Manual is an in-memory transport driven explicitly by its owner.
// Time only moves when Advance or SetPosition is called. It backs headless
// hosts and tests.
type Manual struct {
	hub *Hub

	mu       sync.Mutex
	source   string
	position float64
	duration float64
	volume   float64
	paused   bool
	playErr  error
	loadErr  error

	plays int
	seeks []float64
}

// NewManual creates a paused manual transport with full volume.
func NewManual() *Manual {
	return &Manual{
		hub:    NewHub(),
		volume: 1,
		paused: true,
	}
}

// Subscribe implements Transport.
func (m *Manual) Subscribe(l Listener) *Subscription {
	return m.hub.Subscribe(l)
}

// Load implements Transport. Metadata is not reported until FinishLoading.
func (m *Manual) Load(_ context.Context, source string) error {
	m.Pause()

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.loadErr != nil {
		return errors.Wrapf(m.loadErr, "failed to load %s", source)
	}
	m.source = source
	m.position = 0
	m.duration = 0
	return nil
}

// FinishLoading reports the media duration, as a decoder would once the
// header has been read.
func (m *Manual) FinishLoading(duration float64) {
	m.mu.Lock()
	m.duration = duration
	m.mu.Unlock()

	m.hub.Dispatch(Event{Type: EventMetadataLoaded, Duration: duration})
}

// Play implements Transport. Playing after the end restarts from zero.
func (m *Manual) Play(_ context.Context) error {
	m.mu.Lock()
	if m.playErr != nil {
		err := m.playErr
		m.mu.Unlock()
		return errors.Wrap(err, "play refused")
	}
	if m.source == "" {
		m.mu.Unlock()
		return ErrNoSource
	}
	if !m.paused {
		m.mu.Unlock()
		return nil
	}
	if m.duration > 0 && m.position >= m.duration {
		m.position = 0
	}
	m.paused = false
	m.plays++
	e := m.eventLocked(EventPlay)
	m.mu.Unlock()

	m.hub.Dispatch(e)
	return nil
}

// Pause implements Transport.
func (m *Manual) Pause() {
	m.mu.Lock()
	if m.paused {
		m.mu.Unlock()
		return
	}
	m.paused = true
	e := m.eventLocked(EventPause)
	m.mu.Unlock()

	m.hub.Dispatch(e)
}

// Seek implements Transport.
func (m *Manual) Seek(seconds float64) {
	m.mu.Lock()
	m.position = seconds
	m.seeks = append(m.seeks, seconds)
	e := m.eventLocked(EventTimeUpdate)
	m.mu.Unlock()

	m.hub.Dispatch(e)
}

// SetVolume implements Transport.
func (m *Manual) SetVolume(volume float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.volume = volume
}

// Paused implements Transport.
func (m *Manual) Paused() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.paused
}

// Source implements Transport.
func (m *Manual) Source() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.source
}

// Advance moves a playing transport forward and reports the new position.
// Reaching the duration pauses the transport and reports the end of media.
func (m *Manual) Advance(seconds float64) {
	m.mu.Lock()
	if m.paused {
		m.mu.Unlock()
		return
	}
	m.position += seconds
	ended := m.duration > 0 && m.position >= m.duration
	if ended {
		m.position = m.duration
		m.paused = true
	}
	update := m.eventLocked(EventTimeUpdate)
	end := m.eventLocked(EventEnded)
	m.mu.Unlock()

	m.hub.Dispatch(update)
	if ended {
		m.hub.Dispatch(end)
	}
}

// SetPosition reports an arbitrary position without changing play state.
func (m *Manual) SetPosition(seconds float64) {
	m.mu.Lock()
	m.position = seconds
	e := m.eventLocked(EventTimeUpdate)
	m.mu.Unlock()

	m.hub.Dispatch(e)
}

// RejectPlay makes subsequent Play calls fail with err. Nil accepts again.
func (m *Manual) RejectPlay(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.playErr = err
}

// FailLoad makes subsequent Load calls fail with err. Nil accepts again.
func (m *Manual) FailLoad(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.loadErr = err
}

// Position returns the current position in seconds.
func (m *Manual) Position() float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.position
}

// Volume returns the last volume set.
func (m *Manual) Volume() float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.volume
}

// PlayCount returns how many times playback actually started.
func (m *Manual) PlayCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.plays
}

// Seeks returns every seek target in order.
func (m *Manual) Seeks() []float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]float64, len(m.seeks))
	copy(out, m.seeks)
	return out
}

func (m *Manual) eventLocked(t EventType) Event {
	return Event{Type: t, Position: m.position, Duration: m.duration}
}
