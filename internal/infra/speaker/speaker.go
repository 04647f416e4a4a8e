// Package speaker provides an audio transport that plays MP3 sources on the
// system audio device.
package speaker

import (
	"context"
	"io"
	"net/http"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	zlog "github.com/rs/zerolog/log"

	"github.com/BadrElyatim/quran-app/internal/app/transport"
)

// ErrAudioUnavailable is returned when the build or the host has no audio
// output.
var ErrAudioUnavailable = errors.New("audio output unavailable")

const defaultTimeUpdateInterval = 250 * time.Millisecond

// backend decodes and outputs one source at a time.
type backend interface {
	// load replaces the current source with data and returns its duration.
	// The source starts paused. onEnd runs when the source finishes.
	load(data []byte, onEnd func()) (time.Duration, error)
	setPaused(paused bool) error
	seek(d time.Duration) error
	position() time.Duration
	setVolume(v float64)
	close()
}

// Config holds speaker transport configuration.
type Config struct {
	HTTPClient         *http.Client
	TimeUpdateInterval time.Duration
}

// Transport plays MP3 sources and reports time updates while playing.
// It implements transport.Transport.
type Transport struct {
	hub        *transport.Hub
	httpClient *http.Client
	interval   time.Duration

	mu         sync.Mutex
	backend    backend
	data       []byte
	source     string
	duration   time.Duration
	paused     bool
	ended      bool
	generation int
	stopTick   chan struct{}
}

// New creates a speaker transport.
func New(cfg Config) *Transport {
	return newWithBackend(cfg, newBackend())
}

func newWithBackend(cfg Config, b backend) *Transport {
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = &http.Client{Timeout: 60 * time.Second}
	}
	if cfg.TimeUpdateInterval <= 0 {
		cfg.TimeUpdateInterval = defaultTimeUpdateInterval
	}
	return &Transport{
		hub:        transport.NewHub(),
		httpClient: cfg.HTTPClient,
		interval:   cfg.TimeUpdateInterval,
		backend:    b,
		paused:     true,
	}
}

// Subscribe implements transport.Transport.
func (t *Transport) Subscribe(l transport.Listener) *transport.Subscription {
	return t.hub.Subscribe(l)
}

// Load implements transport.Transport. The source is an http(s) URL or a
// local file path.
func (t *Transport) Load(ctx context.Context, source string) error {
	t.Pause()

	data, err := t.fetch(ctx, source)
	if err != nil {
		return err
	}

	t.mu.Lock()
	t.data = data
	duration, err := t.reloadLocked()
	if err != nil {
		t.data = nil
		t.source = ""
		t.duration = 0
		t.mu.Unlock()
		return errors.Wrapf(err, "failed to decode %s", source)
	}
	t.source = source
	t.duration = duration
	t.mu.Unlock()

	zlog.Debug().Msgf("speaker: loaded %s (%s)", source, duration)
	t.hub.Dispatch(transport.Event{
		Type:     transport.EventMetadataLoaded,
		Duration: duration.Seconds(),
	})
	return nil
}

// reloadLocked hands the current data to the backend under a new generation.
// Must be called with lock held.
func (t *Transport) reloadLocked() (time.Duration, error) {
	t.generation++
	gen := t.generation
	t.ended = false
	return t.backend.load(t.data, func() {
		// Runs on the audio goroutine; must not block it.
		go t.handleEnd(gen)
	})
}

func (t *Transport) fetch(ctx context.Context, source string) ([]byte, error) {
	if !strings.HasPrefix(source, "http://") && !strings.HasPrefix(source, "https://") {
		data, err := os.ReadFile(source)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to read %s", source)
		}
		return data, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, source, nil)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create request")
	}
	resp, err := t.httpClient.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "failed to send request")
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, errors.Newf("GET %s: unexpected status %d", source, resp.StatusCode)
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read response body")
	}
	return data, nil
}

// Play implements transport.Transport. Playing after the end restarts.
func (t *Transport) Play(_ context.Context) error {
	t.mu.Lock()
	if t.source == "" {
		t.mu.Unlock()
		return transport.ErrNoSource
	}
	if !t.paused {
		t.mu.Unlock()
		return nil
	}
	if t.ended {
		if _, err := t.reloadLocked(); err != nil {
			t.mu.Unlock()
			return errors.Wrap(err, "failed to rewind")
		}
	}
	if err := t.backend.setPaused(false); err != nil {
		t.mu.Unlock()
		return err
	}
	t.paused = false
	t.startTickerLocked()
	e := t.eventLocked(transport.EventPlay)
	t.mu.Unlock()

	t.hub.Dispatch(e)
	return nil
}

// Pause implements transport.Transport.
func (t *Transport) Pause() {
	t.mu.Lock()
	if t.paused {
		t.mu.Unlock()
		return
	}
	if err := t.backend.setPaused(true); err != nil {
		zlog.Warn().Err(err).Msg("speaker: failed to pause")
	}
	t.paused = true
	t.stopTickerLocked()
	e := t.eventLocked(transport.EventPause)
	t.mu.Unlock()

	t.hub.Dispatch(e)
}

// Seek implements transport.Transport.
func (t *Transport) Seek(seconds float64) {
	t.mu.Lock()
	if t.source == "" {
		t.mu.Unlock()
		return
	}
	d := time.Duration(seconds * float64(time.Second))
	if d < 0 {
		d = 0
	}
	if d > t.duration {
		d = t.duration
	}
	if t.ended {
		if _, err := t.reloadLocked(); err != nil {
			zlog.Warn().Err(err).Msg("speaker: failed to reload ended source")
		}
	}
	if err := t.backend.seek(d); err != nil {
		zlog.Warn().Err(err).Msgf("speaker: failed to seek to %s", d)
	}
	e := t.eventLocked(transport.EventTimeUpdate)
	t.mu.Unlock()

	t.hub.Dispatch(e)
}

// SetVolume implements transport.Transport.
func (t *Transport) SetVolume(volume float64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.backend.setVolume(volume)
}

// Paused implements transport.Transport.
func (t *Transport) Paused() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.paused
}

// Source implements transport.Transport.
func (t *Transport) Source() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.source
}

// Close stops playback and releases the audio source.
func (t *Transport) Close() {
	t.Pause()

	t.mu.Lock()
	t.generation++
	t.backend.close()
	t.data = nil
	t.source = ""
	t.mu.Unlock()

	t.hub.Close()
}

func (t *Transport) handleEnd(gen int) {
	t.mu.Lock()
	if gen != t.generation || t.ended {
		t.mu.Unlock()
		return
	}
	t.paused = true
	t.ended = true
	t.stopTickerLocked()
	update := transport.Event{
		Type:     transport.EventTimeUpdate,
		Position: t.duration.Seconds(),
		Duration: t.duration.Seconds(),
	}
	end := update
	end.Type = transport.EventEnded
	t.mu.Unlock()

	t.hub.Dispatch(update)
	t.hub.Dispatch(end)
}

// startTickerLocked must be called with lock held.
func (t *Transport) startTickerLocked() {
	t.stopTickerLocked()
	stop := make(chan struct{})
	t.stopTick = stop
	go t.tick(stop)
}

// stopTickerLocked must be called with lock held.
func (t *Transport) stopTickerLocked() {
	if t.stopTick != nil {
		close(t.stopTick)
		t.stopTick = nil
	}
}

func (t *Transport) tick(stop <-chan struct{}) {
	ticker := time.NewTicker(t.interval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			t.mu.Lock()
			select {
			case <-stop:
				t.mu.Unlock()
				return
			default:
			}
			e := t.eventLocked(transport.EventTimeUpdate)
			t.mu.Unlock()

			t.hub.Dispatch(e)
		}
	}
}

// eventLocked must be called with lock held.
func (t *Transport) eventLocked(typ transport.EventType) transport.Event {
	return transport.Event{
		Type:     typ,
		Position: t.backend.position().Seconds(),
		Duration: t.duration.Seconds(),
	}
}
