package reader

import (
	"github.com/BadrElyatim/quran-app/internal/domain/verse"
)

// Selection is what the reader currently shows.
type Selection struct {
	Chapter         int
	ReciterID       int
	TranslationID   int
	ShowTranslation bool
}

// audioKey is the part of the selection chapter audio depends on.
type audioKey struct {
	chapter   int
	reciterID int
}

func (s Selection) audioKey() audioKey {
	return audioKey{chapter: s.Chapter, reciterID: s.ReciterID}
}

// HasPrevious reports whether a chapter precedes the selected one.
func (s Selection) HasPrevious() bool {
	return s.Chapter > 1
}

// HasNext reports whether a chapter follows the selected one.
func (s Selection) HasNext() bool {
	return s.Chapter < verse.TotalChapters
}

// ShowsBismillah reports whether the selected chapter opens with the
// bismillah line.
func (s Selection) ShowsBismillah() bool {
	return verse.ShowsBismillah(s.Chapter)
}
