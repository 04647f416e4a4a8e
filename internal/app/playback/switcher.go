package playback

import (
	"context"
	"maps"
	"sync"

	"github.com/BadrElyatim/quran-app/internal/app/transport"
	"github.com/cockroachdb/errors"
	zlog "github.com/rs/zerolog/log"
)

// URLSource resolves verse numbers to audio URLs for a chapter recitation.
type URLSource interface {
	VerseURLs(ctx context.Context, chapter, reciterID int) (map[int]string, error)
}

// ChapterController is the chapter side of the switcher.
type ChapterController interface {
	IsPlaying() bool
	Pause()
}

// Switcher keeps whole-chapter and single-verse playback mutually exclusive
// and resolves verse numbers through a lazily filled URL cache.
type Switcher struct {
	// Serializes operations that command transports.
	opMu sync.Mutex

	mu sync.RWMutex

	tr      transport.Transport
	sub     *transport.Subscription
	chapter ChapterController
	source  URLSource

	// Current selection. The URL cache always belongs to it.
	chapterNumber int
	reciterID     int
	cache         map[int]string
	selected      int // Verse playing in isolation, 0 when none

	events     *emitter
	ownsEvents bool
	closeOnce  sync.Once
}

// NewSwitcher creates a switcher that owns the verse transport tr.
func NewSwitcher(tr transport.Transport, chapter ChapterController, source URLSource) *Switcher {
	s := newSwitcher(tr, chapter, source, newEmitter())
	s.ownsEvents = true
	return s
}

func newSwitcher(tr transport.Transport, chapter ChapterController, source URLSource, events *emitter) *Switcher {
	s := &Switcher{
		tr:      tr,
		chapter: chapter,
		source:  source,
		cache:   make(map[int]string),
		events:  events,
	}
	s.sub = tr.Subscribe(s.handleTransportEvent)
	return s
}

// Events returns the event channel.
func (s *Switcher) Events() <-chan Event {
	return s.events.ch
}

func (s *Switcher) handleTransportEvent(e transport.Event) {
	if e.Type != transport.EventEnded {
		return
	}
	zlog.Debug().Msg("switcher: verse playback ended")
	s.setSelected(0)
}

// SetSelection records the current chapter and reciter. A change clears the
// URL cache and stops single-verse playback.
func (s *Switcher) SetSelection(chapter, reciterID int) {
	s.mu.Lock()
	changed := chapter != s.chapterNumber || reciterID != s.reciterID
	if changed {
		s.chapterNumber = chapter
		s.reciterID = reciterID
		s.cache = make(map[int]string)
	}
	s.mu.Unlock()

	if changed {
		s.StopVerse()
	}
}

// Selection returns the current chapter and reciter.
func (s *Switcher) Selection() (chapter, reciterID int) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.chapterNumber, s.reciterID
}

// PlayVerse plays a single verse. The chapter is paused first. Requesting
// the verse that is already playing stops it instead.
// A cache miss triggers one refresh followed by one more lookup.
func (s *Switcher) PlayVerse(ctx context.Context, verseNumber int) error {
	s.opMu.Lock()
	defer s.opMu.Unlock()

	if s.chapter.IsPlaying() {
		s.chapter.Pause()
	}

	s.mu.RLock()
	current := s.selected
	chapter, reciterID := s.chapterNumber, s.reciterID
	s.mu.RUnlock()

	if current == verseNumber {
		s.stopVerseLocked()
		return nil
	}

	url, ok := s.CachedURL(verseNumber)
	if !ok {
		if err := s.RefreshURLCache(ctx, chapter, reciterID); err != nil {
			return err
		}
		url, ok = s.CachedURL(verseNumber)
		if !ok {
			return errors.Wrapf(ErrVerseNotFound, "verse %d:%d", chapter, verseNumber)
		}
	}

	if err := s.tr.Load(ctx, url); err != nil {
		s.setSelected(0)
		return errors.Mark(errors.Wrapf(err, "failed to load verse %d", verseNumber), ErrPlaybackRejected)
	}

	s.setSelected(verseNumber)
	if err := s.tr.Play(ctx); err != nil {
		zlog.Warn().Err(err).Msgf("switcher: transport refused to play verse %d", verseNumber)
		s.setSelected(0)
		return errors.Mark(errors.Wrapf(err, "failed to play verse %d", verseNumber), ErrPlaybackRejected)
	}

	zlog.Debug().Msgf("switcher: playing verse %d:%d", chapter, verseNumber)
	return nil
}

// StopVerse pauses the verse transport and clears the selection.
// Safe to call when nothing is playing.
func (s *Switcher) StopVerse() {
	s.opMu.Lock()
	defer s.opMu.Unlock()
	s.stopVerseLocked()
}

// stopVerseLocked must be called with opMu held.
func (s *Switcher) stopVerseLocked() {
	s.tr.Pause()
	s.setSelected(0)
}

// NotifyChapterPlayRequested stops single-verse playback before the chapter
// starts.
func (s *Switcher) NotifyChapterPlayRequested() {
	s.StopVerse()
}

// RefreshURLCache replaces the URL cache for the given chapter and reciter.
// On failure the previous cache is kept. Results for a selection that
// changed while the fetch was in flight are discarded.
func (s *Switcher) RefreshURLCache(ctx context.Context, chapter, reciterID int) error {
	urls, err := s.source.VerseURLs(ctx, chapter, reciterID)
	if err != nil {
		zlog.Warn().Err(err).Msgf("switcher: failed to refresh verse urls: chapter=%d reciter=%d", chapter, reciterID)
		return errors.Mark(
			errors.Wrapf(err, "failed to refresh verse urls for chapter %d reciter %d", chapter, reciterID),
			ErrCacheRefreshFailed,
		)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if chapter != s.chapterNumber || reciterID != s.reciterID {
		zlog.Debug().Msgf("switcher: discarding verse urls for chapter=%d reciter=%d (current chapter=%d reciter=%d)",
			chapter, reciterID, s.chapterNumber, s.reciterID)
		return errors.Wrapf(ErrStaleResult, "verse urls for chapter %d reciter %d", chapter, reciterID)
	}

	s.cache = maps.Clone(urls)
	if s.cache == nil {
		s.cache = make(map[int]string)
	}
	return nil
}

// CachedURL returns the cached URL of a verse.
func (s *Switcher) CachedURL(verseNumber int) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	url, ok := s.cache[verseNumber]
	return url, ok
}

// CacheSize returns the number of cached verse URLs.
func (s *Switcher) CacheSize() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.cache)
}

// Selected returns the verse playing in isolation.
func (s *Switcher) Selected() (int, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.selected, s.selected != 0
}

// Mode returns which transport is audibly active.
func (s *Switcher) Mode() Mode {
	if _, ok := s.Selected(); ok {
		return ModeVersePlaying
	}
	if s.chapter.IsPlaying() {
		return ModeChapterPlaying
	}
	return ModeIdle
}

// SetVolume applies the volume to the verse transport.
func (s *Switcher) SetVolume(v float64) {
	s.tr.SetVolume(clamp(v, 0, 1))
}

// Close unsubscribes from the verse transport and pauses it.
func (s *Switcher) Close() {
	s.closeOnce.Do(func() {
		s.sub.Unsubscribe()
		s.tr.Pause()
		if s.ownsEvents {
			s.events.close()
		}
	})
}

func (s *Switcher) setSelected(verseNumber int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.selected == verseNumber {
		return
	}
	s.selected = verseNumber
	s.events.send(Event{Type: EventModeChanged, Verse: verseNumber})
}
