package playback

import (
	"context"
	"sync"

	"github.com/BadrElyatim/quran-app/internal/app/transport"
	"github.com/BadrElyatim/quran-app/internal/domain/verse"
)

// Config holds player configuration.
type Config struct {
	Volume float64 // Initial volume for both transports
}

// Player owns the chapter and verse transports and wires a timeline and a
// switcher over them.
type Player struct {
	// Serializes user gestures so a chapter play request and a verse play
	// request never interleave.
	mu sync.Mutex

	timeline *Timeline
	switcher *Switcher
	events   *emitter

	closeOnce sync.Once
}

// NewPlayer creates a player. Both transports are owned by the player from
// now on and must not be commanded elsewhere.
func NewPlayer(chapterTr, verseTr transport.Transport, source URLSource, config Config) *Player {
	events := newEmitter()
	timeline := newTimeline(chapterTr, TimelineConfig{Volume: config.Volume}, events)
	switcher := newSwitcher(verseTr, timeline, source, events)
	switcher.SetVolume(timeline.State().Volume)

	timeline.SetPlayRequestHook(switcher.NotifyChapterPlayRequested)

	return &Player{
		timeline: timeline,
		switcher: switcher,
		events:   events,
	}
}

// Events returns the merged timeline and switcher event channel.
func (p *Player) Events() <-chan Event {
	return p.events.ch
}

// Timeline returns the chapter timeline.
func (p *Player) Timeline() *Timeline {
	return p.timeline
}

// Switcher returns the verse switcher.
func (p *Player) Switcher() *Switcher {
	return p.switcher
}

// TogglePlayPause toggles chapter playback. Starting the chapter stops any
// single verse first.
func (p *Player) TogglePlayPause(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.timeline.TogglePlayPause(ctx)
}

// PlayVerse plays a single verse, pausing the chapter first.
func (p *Player) PlayVerse(ctx context.Context, verseNumber int) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.switcher.PlayVerse(ctx, verseNumber)
}

// StopVerse stops single-verse playback.
func (p *Player) StopVerse() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.switcher.StopVerse()
}

// Pause pauses whatever is playing.
func (p *Player) Pause() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.switcher.StopVerse()
	p.timeline.Pause()
}

// SetVolume sets the volume of both transports and returns the clamped value.
func (p *Player) SetVolume(v float64) float64 {
	v = p.timeline.SetVolume(v)
	p.switcher.SetVolume(v)
	return v
}

// Seek seeks the chapter to seconds through a complete drag gesture.
func (p *Player) Seek(seconds float64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.timeline.BeginSeekDrag()
	p.timeline.UpdateSeekDrag(seconds)
	p.timeline.CommitSeekDrag()
}

// SeekToVerse seeks the chapter to the start of a verse.
func (p *Player) SeekToVerse(verseNumber int) bool {
	start, ok := p.timeline.VerseStart(verseNumber)
	if !ok {
		return false
	}
	p.Seek(start)
	return true
}

// SetSelection forwards a chapter or reciter change to the switcher.
func (p *Player) SetSelection(chapter, reciterID int) {
	p.switcher.SetSelection(chapter, reciterID)
}

// LoadChapter stops everything and loads new chapter audio.
func (p *Player) LoadChapter(ctx context.Context, url string, table verse.TimestampTable) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.switcher.StopVerse()
	return p.timeline.Load(ctx, url, table)
}

// Mode returns which transport is audibly active.
func (p *Player) Mode() Mode {
	return p.switcher.Mode()
}

// Close tears down both components and closes the event channel.
func (p *Player) Close() {
	p.closeOnce.Do(func() {
		p.switcher.Close()
		p.timeline.Close()
		p.events.close()
	})
}
