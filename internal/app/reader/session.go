// Package reader provides the reader session: chapter, reciter and
// translation selection, page loading and chapter audio loading.
package reader

import (
	"context"
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/rs/zerolog"

	"github.com/BadrElyatim/quran-app/internal/app/playback"
	"github.com/BadrElyatim/quran-app/internal/domain/tajweed"
	"github.com/BadrElyatim/quran-app/internal/domain/verse"
	"github.com/BadrElyatim/quran-app/internal/infra/config"
	"github.com/BadrElyatim/quran-app/internal/infra/logger"
	"github.com/BadrElyatim/quran-app/internal/infra/quran"
)

// ErrInvalidChapter is returned when navigating outside the chapter range.
var ErrInvalidChapter = errors.New("chapter out of range")

// API is the subset of the Quran.com client the session uses.
type API interface {
	Chapter(ctx context.Context, chapter int) (verse.Chapter, error)
	VerseCount(ctx context.Context, chapter int) (int, error)
	TajweedText(ctx context.Context, chapter int) ([]quran.TajweedVerse, error)
	Translation(ctx context.Context, translationID, chapter int) ([]quran.Translation, error)
	ChapterAudioURL(ctx context.Context, reciterID, chapter int) (string, error)
	VerseAudio(ctx context.Context, reciterID, chapter int) ([]quran.VerseAudio, error)
	Reciters(ctx context.Context) ([]quran.Reciter, error)
	Translations(ctx context.Context) ([]quran.TranslationResource, error)
}

// Config holds the initial selection and tajweed settings.
type Config struct {
	Selection Selection
	Tajweed   *tajweed.Settings
}

// ConfigFrom builds a session configuration from the application config.
func ConfigFrom(cfg *config.Config) (Config, error) {
	settings, err := cfg.TajweedSettings()
	if err != nil {
		return Config{}, err
	}
	return Config{
		Selection: Selection{
			Chapter:         cfg.Reader.DefaultChapter,
			ReciterID:       cfg.Reader.DefaultReciterID,
			TranslationID:   cfg.Reader.DefaultTranslationID,
			ShowTranslation: cfg.Reader.TranslationShown(),
		},
		Tajweed: settings,
	}, nil
}

// Session owns the reader selection and keeps the page and the player in
// step with it.
type Session struct {
	mu sync.RWMutex

	api     API
	player  *playback.Player
	tajweed *tajweed.Settings
	log     zerolog.Logger

	selection Selection
	page      *verse.Page

	// Bumped whenever the selection part a load depends on changes; results
	// carrying an older generation are dropped.
	pageGen  uint64
	audioGen uint64
}

// NewSession creates a reader session.
func NewSession(api API, player *playback.Player, cfg Config) *Session {
	sel := cfg.Selection
	sel.Chapter = verse.ClampChapter(sel.Chapter)
	settings := cfg.Tajweed
	if settings == nil {
		settings = tajweed.NewSettings(tajweed.DefaultRules())
	}
	s := &Session{
		api:       api,
		player:    player,
		tajweed:   settings,
		log:       logger.Component("reader"),
		selection: sel,
	}
	player.SetSelection(sel.Chapter, sel.ReciterID)
	return s
}

// Selection returns the current selection.
func (s *Session) Selection() Selection {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.selection
}

// Page returns the last loaded page.
func (s *Session) Page() (*verse.Page, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.page, s.page != nil
}

// Player returns the session's player.
func (s *Session) Player() *playback.Player {
	return s.player
}

// Tajweed returns the tajweed rule settings.
func (s *Session) Tajweed() *tajweed.Settings {
	return s.tajweed
}

// Next selects the following chapter. It returns false at the last chapter.
func (s *Session) Next() bool {
	s.mu.Lock()
	if !s.selection.HasNext() {
		s.mu.Unlock()
		return false
	}
	key, changed := s.setChapterLocked(s.selection.Chapter + 1)
	s.mu.Unlock()

	s.applyAudioKey(key, changed)
	return true
}

// Previous selects the preceding chapter. It returns false at the first
// chapter.
func (s *Session) Previous() bool {
	s.mu.Lock()
	if !s.selection.HasPrevious() {
		s.mu.Unlock()
		return false
	}
	key, changed := s.setChapterLocked(s.selection.Chapter - 1)
	s.mu.Unlock()

	s.applyAudioKey(key, changed)
	return true
}

// GoTo selects a chapter.
func (s *Session) GoTo(chapter int) error {
	if !verse.IsValidChapter(chapter) {
		return errors.Mark(errors.Newf("chapter %d is not in 1-%d", chapter, verse.TotalChapters), ErrInvalidChapter)
	}
	s.mu.Lock()
	key, changed := s.setChapterLocked(chapter)
	s.mu.Unlock()

	s.applyAudioKey(key, changed)
	return nil
}

// setChapterLocked must be called with lock held.
func (s *Session) setChapterLocked(chapter int) (audioKey, bool) {
	if chapter == s.selection.Chapter {
		return s.selection.audioKey(), false
	}
	s.selection.Chapter = chapter
	s.pageGen++
	s.audioGen++
	return s.selection.audioKey(), true
}

// SetReciter selects a reciter.
func (s *Session) SetReciter(reciterID int) {
	s.mu.Lock()
	if reciterID == s.selection.ReciterID {
		s.mu.Unlock()
		return
	}
	s.selection.ReciterID = reciterID
	s.audioGen++
	key := s.selection.audioKey()
	s.mu.Unlock()

	s.applyAudioKey(key, true)
}

// applyAudioKey points the switcher at a new chapter or reciter, which
// stops the playing verse and empties the verse URL cache.
func (s *Session) applyAudioKey(key audioKey, changed bool) {
	if !changed {
		return
	}
	s.log.Debug().Msgf("selection changed: chapter=%d reciter=%d", key.chapter, key.reciterID)
	s.player.SetSelection(key.chapter, key.reciterID)
}

// SetTranslation selects a translation resource.
func (s *Session) SetTranslation(translationID int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if translationID == s.selection.TranslationID {
		return
	}
	s.selection.TranslationID = translationID
	s.pageGen++
}

// SetShowTranslation shows or hides translations.
func (s *Session) SetShowTranslation(show bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if show == s.selection.ShowTranslation {
		return
	}
	s.selection.ShowTranslation = show
	s.pageGen++
}

// LoadPage fetches the page for the current selection. On failure the
// previous page is kept. A page for a selection that changed meanwhile is
// dropped with playback.ErrStaleResult.
func (s *Session) LoadPage(ctx context.Context) (*verse.Page, error) {
	s.mu.RLock()
	sel := s.selection
	gen := s.pageGen
	s.mu.RUnlock()

	page, err := buildPage(ctx, s.api, sel, s.log)
	if err != nil {
		s.log.Error().Err(err).Msgf("failed to load page: chapter=%d", sel.Chapter)
		return nil, err
	}
	if sel.ShowTranslation && page.TranslatedCount() == 0 && len(page.Verses) > 0 {
		s.log.Warn().Msgf("page built without translation: chapter=%d translation=%d", sel.Chapter, sel.TranslationID)
	}

	s.mu.Lock()
	if gen != s.pageGen {
		current := s.selection.Chapter
		s.mu.Unlock()
		s.log.Debug().Msgf("dropping page: chapter=%d current=%d", sel.Chapter, current)
		return nil, errors.Mark(errors.Newf("page for chapter %d is outdated", sel.Chapter), playback.ErrStaleResult)
	}
	s.page = page
	key := s.selection.audioKey()
	s.mu.Unlock()

	s.log.Info().Msgf("page loaded: chapter=%d verses=%d translated=%d", sel.Chapter, len(page.Verses), page.TranslatedCount())
	s.refreshVerseURLs(ctx, key)
	return page, nil
}

// BuildPage fetches chapter info, tajweed text, the verse count and,
// when shown, the translation, and combines them. A translation failure is
// logged and the page is built without translations.
func BuildPage(ctx context.Context, api API, sel Selection) (*verse.Page, error) {
	return buildPage(ctx, api, sel, logger.Component("reader"))
}

func buildPage(ctx context.Context, api API, sel Selection, log zerolog.Logger) (*verse.Page, error) {
	info, err := api.Chapter(ctx, sel.Chapter)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to fetch chapter %d", sel.Chapter)
	}
	text, err := api.TajweedText(ctx, sel.Chapter)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to fetch tajweed text for chapter %d", sel.Chapter)
	}
	count, err := api.VerseCount(ctx, sel.Chapter)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to fetch verse count for chapter %d", sel.Chapter)
	}
	if count > 0 {
		info.VerseCount = count
	}

	var translations []quran.Translation
	if sel.ShowTranslation {
		translations, err = api.Translation(ctx, sel.TranslationID, sel.Chapter)
		if err != nil {
			log.Warn().Err(err).Msgf("failed to fetch translation: chapter=%d translation=%d", sel.Chapter, sel.TranslationID)
			translations = nil
		}
	}

	verses := make([]verse.Verse, 0, len(text))
	for _, tv := range text {
		key := tv.Key
		markup, err := tajweed.ToSpanMarkup(tv.Markup)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to convert tajweed markup of %s", tv.Key)
		}
		v := verse.Verse{
			Number:      key.Verse,
			Key:         key.String(),
			TajweedHTML: markup,
		}
		if tr, ok := quran.TranslationFor(translations, sel.TranslationID, key.Verse); ok {
			v.Translation = tr
		}
		verses = append(verses, v)
	}

	return &verse.Page{Chapter: info, Verses: verses}, nil
}

// LoadAudio loads the chapter recitation and its verse timestamps into the
// player. The timeline stays loading until the transport reports metadata.
func (s *Session) LoadAudio(ctx context.Context) error {
	s.mu.RLock()
	key := s.selection.audioKey()
	gen := s.audioGen
	s.mu.RUnlock()

	timeline := s.player.Timeline()
	timeline.BeginLoading()

	url, table, err := s.fetchAudio(ctx, key)
	if err != nil {
		if s.isCurrentAudio(gen) {
			timeline.AbortLoading()
		}
		s.log.Error().Err(err).Msgf("failed to load audio: chapter=%d reciter=%d", key.chapter, key.reciterID)
		return err
	}
	if !s.isCurrentAudio(gen) {
		s.log.Debug().Msgf("dropping audio: chapter=%d reciter=%d", key.chapter, key.reciterID)
		return errors.Mark(errors.Newf("audio for chapter %d reciter %d is outdated", key.chapter, key.reciterID), playback.ErrStaleResult)
	}

	if err := s.player.LoadChapter(ctx, url, table); err != nil {
		s.log.Error().Err(err).Msgf("failed to load audio source: chapter=%d reciter=%d", key.chapter, key.reciterID)
		return err
	}

	s.log.Info().Msgf("audio loaded: chapter=%d reciter=%d verses=%d", key.chapter, key.reciterID, table.Len())
	s.refreshVerseURLs(ctx, key)
	return nil
}

func (s *Session) fetchAudio(ctx context.Context, key audioKey) (string, verse.TimestampTable, error) {
	url, err := s.api.ChapterAudioURL(ctx, key.reciterID, key.chapter)
	if err != nil {
		return "", verse.TimestampTable{}, errors.Wrap(err, "failed to fetch chapter audio url")
	}
	audio, err := s.api.VerseAudio(ctx, key.reciterID, key.chapter)
	if err != nil {
		return "", verse.TimestampTable{}, errors.Wrap(err, "failed to fetch verse timestamps")
	}
	table, err := quran.TimestampTable(audio)
	if err != nil {
		// The chapter still plays without verse tracking.
		s.log.Warn().Err(err).Msgf("ignoring verse timestamps: chapter=%d reciter=%d", key.chapter, key.reciterID)
		table = verse.TimestampTable{}
	}
	return url, table, nil
}

func (s *Session) isCurrentAudio(gen uint64) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return gen == s.audioGen
}

// refreshVerseURLs refills the switcher cache for key unless it is already
// filled. Nothing is done once the selection has moved past key.
func (s *Session) refreshVerseURLs(ctx context.Context, key audioKey) {
	switcher := s.player.Switcher()
	chapter, reciterID := switcher.Selection()
	if chapter != key.chapter || reciterID != key.reciterID {
		s.log.Debug().Msgf("skipping verse urls: chapter=%d reciter=%d (current chapter=%d reciter=%d)",
			key.chapter, key.reciterID, chapter, reciterID)
		return
	}
	if switcher.CacheSize() > 0 {
		return
	}
	if err := switcher.RefreshURLCache(ctx, key.chapter, key.reciterID); err != nil {
		s.log.Warn().Err(err).Msgf("verse audio unavailable: chapter=%d reciter=%d", key.chapter, key.reciterID)
	}
}

// ToggleRule flips one tajweed rule.
func (s *Session) ToggleRule(id string) bool {
	return s.tajweed.Toggle(id)
}

// SetAllRules enables or disables every tajweed rule.
func (s *Session) SetAllRules(enabled bool) {
	s.tajweed.SetAll(enabled)
}

// Stylesheet returns the tajweed stylesheet for the current settings.
func (s *Session) Stylesheet() string {
	return s.tajweed.Stylesheet()
}

// Reciters returns the reciter catalogue.
func (s *Session) Reciters(ctx context.Context) ([]quran.Reciter, error) {
	return s.api.Reciters(ctx)
}

// Translations returns the translation catalogue.
func (s *Session) Translations(ctx context.Context) ([]quran.TranslationResource, error) {
	return s.api.Translations(ctx)
}

// ReciterName returns the label of the selected reciter, or an empty string
// when the catalogue is unavailable.
func (s *Session) ReciterName(ctx context.Context) string {
	reciters, err := s.api.Reciters(ctx)
	if err != nil {
		return ""
	}
	id := s.Selection().ReciterID
	for _, r := range reciters {
		if r.ID == id {
			return r.Label()
		}
	}
	return ""
}
