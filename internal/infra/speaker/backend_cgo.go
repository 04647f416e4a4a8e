//go:build (linux && cgo) || windows || darwin

package speaker

import (
	"bytes"
	"math"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/effects"
	"github.com/gopxl/beep/v2/mp3"
	"github.com/gopxl/beep/v2/speaker"
)

// Available indicates whether audio playback is supported in this build.
const Available = true

const outputSampleRate = beep.SampleRate(44100)

// The device is process-wide and shared by every transport.
var (
	speakerOnce sync.Once
	speakerErr  error
)

func initSpeaker() error {
	speakerOnce.Do(func() {
		speakerErr = speaker.Init(outputSampleRate, outputSampleRate.N(time.Second/10))
	})
	return speakerErr
}

// detachable is removed from the mixer once detached.
type detachable struct {
	streamer beep.Streamer
	detached bool
}

func (d *detachable) Stream(samples [][2]float64) (int, bool) {
	if d.detached {
		return 0, false
	}
	return d.streamer.Stream(samples)
}

func (d *detachable) Err() error {
	return d.streamer.Err()
}

// beepBackend plays one MP3 stream through the shared speaker.
type beepBackend struct {
	streamer beep.StreamSeekCloser
	format   beep.Format
	ctrl     *beep.Ctrl
	volume   *effects.Volume
	output   *detachable
	level    float64
}

func newBackend() backend {
	return &beepBackend{level: 1}
}

func (b *beepBackend) load(data []byte, onEnd func()) (time.Duration, error) {
	if err := initSpeaker(); err != nil {
		return 0, errors.Mark(errors.Wrap(err, "failed to initialize speaker"), ErrAudioUnavailable)
	}
	b.close()

	streamer, format, err := mp3.Decode(nopCloser{bytes.NewReader(data)})
	if err != nil {
		return 0, errors.Wrap(err, "failed to decode mp3")
	}

	b.streamer = streamer
	b.format = format
	b.ctrl = &beep.Ctrl{
		Streamer: beep.Resample(4, format.SampleRate, outputSampleRate, streamer),
		Paused:   true,
	}
	b.volume = &effects.Volume{Streamer: b.ctrl, Base: 2}
	b.applyVolume()
	b.output = &detachable{streamer: beep.Seq(b.volume, beep.Callback(onEnd))}

	speaker.Play(b.output)
	return format.SampleRate.D(streamer.Len()), nil
}

func (b *beepBackend) setPaused(paused bool) error {
	if b.ctrl == nil {
		return nil
	}
	speaker.Lock()
	b.ctrl.Paused = paused
	speaker.Unlock()
	return nil
}

func (b *beepBackend) seek(d time.Duration) error {
	if b.streamer == nil {
		return nil
	}
	speaker.Lock()
	defer speaker.Unlock()

	n := b.format.SampleRate.N(d)
	if n >= b.streamer.Len() {
		n = b.streamer.Len() - 1
	}
	if n < 0 {
		n = 0
	}
	return b.streamer.Seek(n)
}

func (b *beepBackend) position() time.Duration {
	if b.streamer == nil {
		return 0
	}
	speaker.Lock()
	pos := b.streamer.Position()
	speaker.Unlock()
	return b.format.SampleRate.D(pos)
}

func (b *beepBackend) setVolume(v float64) {
	b.level = v
	if b.volume == nil {
		return
	}
	speaker.Lock()
	b.applyVolume()
	speaker.Unlock()
}

// applyVolume maps the linear level onto the exponential volume effect.
func (b *beepBackend) applyVolume() {
	if b.level <= 0 {
		b.volume.Silent = true
		return
	}
	b.volume.Silent = false
	b.volume.Volume = math.Log2(b.level)
}

func (b *beepBackend) close() {
	if b.output != nil {
		speaker.Lock()
		b.output.detached = true
		if b.ctrl != nil {
			b.ctrl.Paused = true
		}
		speaker.Unlock()
	}
	if b.streamer != nil {
		_ = b.streamer.Close()
	}
	b.streamer = nil
	b.ctrl = nil
	b.volume = nil
	b.output = nil
}

// nopCloser wraps a bytes.Reader to implement io.ReadCloser while keeping
// it seekable for the decoder.
type nopCloser struct {
	*bytes.Reader
}

func (nopCloser) Close() error { return nil }
