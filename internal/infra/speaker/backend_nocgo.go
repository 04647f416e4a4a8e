//go:build !((linux && cgo) || windows || darwin)

package speaker

import "time"

// Available indicates whether audio playback is supported in this build.
const Available = false

// silentBackend refuses every source.
type silentBackend struct{}

func newBackend() backend {
	return silentBackend{}
}

func (silentBackend) load([]byte, func()) (time.Duration, error) {
	return 0, ErrAudioUnavailable
}

func (silentBackend) setPaused(bool) error { return ErrAudioUnavailable }

func (silentBackend) seek(time.Duration) error { return nil }

func (silentBackend) position() time.Duration { return 0 }

func (silentBackend) setVolume(float64) {}

func (silentBackend) close() {}
