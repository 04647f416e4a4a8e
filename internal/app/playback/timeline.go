package playback

import (
	"context"
	"sync"

	"github.com/BadrElyatim/quran-app/internal/app/transport"
	"github.com/BadrElyatim/quran-app/internal/domain/verse"
	"github.com/cockroachdb/errors"
	zlog "github.com/rs/zerolog/log"
)

// TimelineConfig holds timeline configuration.
type TimelineConfig struct {
	Volume float64 // Initial volume, clamped to [0, 1]
}

// Timeline tracks the time state of the chapter transport and derives the
// active verse from the verse timestamp table.
type Timeline struct {
	mu sync.RWMutex

	tr  transport.Transport
	sub *transport.Subscription

	table     verse.TimestampTable
	state     State
	hasSource bool

	// Called before the transport is asked to play.
	onPlayRequested func()

	events     *emitter
	ownsEvents bool
	closeOnce  sync.Once
}

// NewTimeline creates a timeline that owns tr.
func NewTimeline(tr transport.Transport, config TimelineConfig) *Timeline {
	t := newTimeline(tr, config, newEmitter())
	t.ownsEvents = true
	return t
}

func newTimeline(tr transport.Transport, config TimelineConfig, events *emitter) *Timeline {
	volume := clamp(config.Volume, 0, 1)
	t := &Timeline{
		tr:     tr,
		state:  State{Volume: volume},
		events: events,
	}
	tr.SetVolume(volume)
	t.sub = tr.Subscribe(t.handleTransportEvent)
	return t
}

// Events returns the event channel.
func (t *Timeline) Events() <-chan Event {
	return t.events.ch
}

// SetPlayRequestHook registers fn to run before every play request.
func (t *Timeline) SetPlayRequestHook(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onPlayRequested = fn
}

func (t *Timeline) handleTransportEvent(e transport.Event) {
	switch e.Type {
	case transport.EventTimeUpdate:
		t.OnTimeAdvance(e.Position)
	case transport.EventMetadataLoaded:
		t.OnMetadataLoaded(e.Duration)
	case transport.EventEnded:
		t.OnPlaybackEnded()
	case transport.EventPlay:
		t.OnExternalPlay()
	case transport.EventPause:
		t.OnExternalPause()
	}
}

// OnTimeAdvance records a new playback position and recomputes the active
// verse. The position is ignored while a seek drag is in progress.
func (t *Timeline) OnTimeAdvance(seconds float64) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if seconds < 0 {
		seconds = 0
	}
	if !t.state.Dragging {
		t.state.CurrentTime = seconds
	}

	active, ok := t.table.ActiveVerse(seconds)
	if !ok {
		active = 0
	}
	if active != t.state.ActiveVerse {
		t.state.ActiveVerse = active
		t.sendEventLocked(EventVerseChanged)
	}
}

// OnMetadataLoaded records the media duration and clears the loading flag.
func (t *Timeline) OnMetadataLoaded(duration float64) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if duration < 0 {
		duration = 0
	}
	t.state.Duration = duration
	t.state.IsLoading = false
	t.sendEventLocked(EventLoaded)
}

// OnPlaybackEnded rewinds the timeline to the start.
func (t *Timeline) OnPlaybackEnded() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.state.CurrentTime = 0
	t.state.IsPlaying = false
	t.state.ActiveVerse = 0
	t.sendEventLocked(EventEnded)
}

// OnExternalPlay syncs the playing flag with the transport.
func (t *Timeline) OnExternalPlay() {
	t.setPlaying(true)
}

// OnExternalPause syncs the playing flag with the transport.
func (t *Timeline) OnExternalPause() {
	t.setPlaying(false)
}

func (t *Timeline) setPlaying(playing bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.state.IsPlaying == playing {
		return
	}
	t.state.IsPlaying = playing
	t.sendEventLocked(EventStateChanged)
}

// BeginSeekDrag starts a drag gesture at the current position.
func (t *Timeline) BeginSeekDrag() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.state.Dragging = true
	t.state.Preview = t.state.CurrentTime
}

// UpdateSeekDrag moves the drag preview, clamped to [0, duration].
// Ignored when no drag is in progress.
func (t *Timeline) UpdateSeekDrag(position float64) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.state.Dragging {
		return
	}
	t.state.Preview = clamp(position, 0, t.state.Duration)
}

// CommitSeekDrag seeks the transport to the drag preview and ends the drag.
// It is a no-op when no drag is in progress.
func (t *Timeline) CommitSeekDrag() {
	t.mu.Lock()
	if !t.state.Dragging {
		t.mu.Unlock()
		return
	}
	target := t.state.Preview
	t.state.Dragging = false
	t.state.Preview = 0
	t.state.CurrentTime = target
	t.mu.Unlock()

	t.tr.Seek(target)
}

// CancelSeekDrag ends the drag without seeking.
func (t *Timeline) CancelSeekDrag() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.state.Dragging = false
	t.state.Preview = 0
}

// SetVolume clamps v to [0, 1], applies it to the transport and returns it.
func (t *Timeline) SetVolume(v float64) float64 {
	v = clamp(v, 0, 1)

	t.mu.Lock()
	t.state.Volume = v
	t.sendEventLocked(EventStateChanged)
	t.mu.Unlock()

	t.tr.SetVolume(v)
	return v
}

// TogglePlayPause pauses when playing and requests playback otherwise.
// The playing flag is only set once the transport confirms with a play event.
func (t *Timeline) TogglePlayPause(ctx context.Context) error {
	t.mu.RLock()
	ready := t.hasSource && !t.state.IsLoading
	playing := t.state.IsPlaying
	hook := t.onPlayRequested
	t.mu.RUnlock()

	if !ready {
		return ErrNotReady
	}

	if playing {
		t.Pause()
		return nil
	}

	if hook != nil {
		hook()
	}

	if err := t.tr.Play(ctx); err != nil {
		zlog.Warn().Err(err).Msg("timeline: transport refused to play")
		t.setPlaying(false)
		return errors.Mark(errors.Wrap(err, "failed to start chapter playback"), ErrPlaybackRejected)
	}
	return nil
}

// Pause pauses the transport.
func (t *Timeline) Pause() {
	t.tr.Pause()
	t.setPlaying(false)
}

// IsPlaying reports whether the chapter is playing.
func (t *Timeline) IsPlaying() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.state.IsPlaying
}

// BeginLoading marks remote data as in flight. Playback is paused and
// controls are disabled until Load or AbortLoading.
func (t *Timeline) BeginLoading() {
	t.tr.Pause()

	t.mu.Lock()
	defer t.mu.Unlock()
	t.state.IsPlaying = false
	t.state.IsLoading = true
	t.sendEventLocked(EventStateChanged)
}

// AbortLoading clears the loading flag after a failed fetch and leaves the
// timeline without a source.
func (t *Timeline) AbortLoading() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.state.IsLoading = false
	t.hasSource = false
	t.table = verse.TimestampTable{}
	t.state.Duration = 0
	t.state.CurrentTime = 0
	t.state.ActiveVerse = 0
	t.sendEventLocked(EventStateChanged)
}

// Load replaces the chapter source and its timestamp table. The timeline is
// reset and stays loading until the transport reports metadata.
func (t *Timeline) Load(ctx context.Context, url string, table verse.TimestampTable) error {
	t.tr.Pause()

	t.mu.Lock()
	t.table = table
	t.hasSource = false
	t.state = State{Volume: t.state.Volume, IsLoading: true}
	t.sendEventLocked(EventStateChanged)
	t.mu.Unlock()

	if err := t.tr.Load(ctx, url); err != nil {
		t.AbortLoading()
		return errors.Wrapf(err, "failed to load chapter audio %s", url)
	}

	t.mu.Lock()
	t.hasSource = true
	t.mu.Unlock()

	zlog.Debug().Msgf("timeline: loaded source=%s verses=%d", url, table.Len())
	return nil
}

// State returns a snapshot of the timeline.
func (t *Timeline) State() State {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.state
}

// DisplayPosition returns the position a seek bar should show.
func (t *Timeline) DisplayPosition() float64 {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.state.DisplayPosition()
}

// VerseStart returns the start offset of a chapter verse.
func (t *Timeline) VerseStart(verseNumber int) (float64, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.table.StartOf(verseNumber)
}

// Close unsubscribes from the transport and pauses it.
func (t *Timeline) Close() {
	t.closeOnce.Do(func() {
		t.sub.Unsubscribe()
		t.tr.Pause()
		if t.ownsEvents {
			t.events.close()
		}
	})
}

// sendEventLocked sends an event without blocking.
// Must be called with lock held.
func (t *Timeline) sendEventLocked(typ EventType) {
	t.events.send(Event{
		Type:  typ,
		State: t.state,
		Verse: t.state.ActiveVerse,
	})
}
