// Package transport defines the audio transport contract used by the playback
// core: a playback primitive with play/pause/seek/volume controls and
// time/metadata/ended/play/pause events.
package transport

import "context"

// EventType represents a transport event type.
type EventType int

const (
	EventTimeUpdate     EventType = iota // Playback position advanced (or was seeked)
	EventMetadataLoaded                  // Source loaded, duration known
	EventEnded                           // Reached end of media
	EventPlay                            // Playback started
	EventPause                           // Playback paused
)

// String returns the string representation of the event type.
func (e EventType) String() string {
	switch e {
	case EventTimeUpdate:
		return "time_update"
	case EventMetadataLoaded:
		return "metadata_loaded"
	case EventEnded:
		return "ended"
	case EventPlay:
		return "play"
	case EventPause:
		return "pause"
	default:
		return "unknown"
	}
}

// Event is emitted by a transport.
type Event struct {
	Type     EventType
	Position float64 // Playback position in seconds
	Duration float64 // Media duration in seconds (0 until metadata is loaded)
}

// Listener receives transport events.
type Listener func(Event)

// Transport is an audio playback primitive.
//
// Events are dispatched synchronously to subscribers in subscription order.
// Pause dispatches EventPause before returning when the transport was playing,
// and Play dispatches EventPlay before returning nil. Implementations never
// hold internal locks while dispatching.
type Transport interface {
	// Load replaces the media source. Any current playback is paused.
	Load(ctx context.Context, source string) error
	// Play starts or resumes playback. A refusal (no source, device
	// unavailable) is returned as an error and leaves the transport paused.
	Play(ctx context.Context) error
	// Pause pauses playback. Safe to call when already paused.
	Pause()
	// Seek moves the playback position to seconds.
	Seek(seconds float64)
	// SetVolume sets the output volume in [0, 1].
	SetVolume(volume float64)
	// Paused reports whether the transport is not producing sound.
	Paused() bool
	// Source returns the current media source, empty if none.
	Source() string
	// Subscribe registers a listener until the returned subscription is closed.
	Subscribe(l Listener) *Subscription
}
