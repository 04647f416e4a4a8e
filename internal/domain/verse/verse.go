// Package verse provides the chapter and verse domain entities.
package verse

import (
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"
)

// TotalChapters is the number of chapters (surahs) in the Quran.
const TotalChapters = 114

// ErrInvalidKey is returned when a verse key is not in "chapter:verse" form.
var ErrInvalidKey = errors.New("invalid verse key")

// Chapter represents chapter metadata retrieved from the remote API.
type Chapter struct {
	Number         int    // Chapter number (1-114)
	NameArabic     string // Arabic name
	NameTranslated string // Translated name (e.g. "The Opener")
	VerseCount     int    // Number of verses
}

// Verse represents a single verse ready for display.
type Verse struct {
	Number      int    // Verse number within the chapter (1-based)
	Key         string // Verse key ("chapter:verse")
	TajweedHTML string // Arabic text with tajweed span markup
	Translation string // Translation text (empty if not loaded)
}

// HasTranslation reports whether a translation is attached to the verse.
func (v *Verse) HasTranslation() bool {
	return v.Translation != ""
}

// Key is a parsed "chapter:verse" reference.
type Key struct {
	Chapter int
	Verse   int
}

// String returns the "chapter:verse" form.
func (k Key) String() string {
	return strconv.Itoa(k.Chapter) + ":" + strconv.Itoa(k.Verse)
}

// ParseKey parses a verse key such as "2:255".
func ParseKey(s string) (Key, error) {
	chapterPart, versePart, ok := strings.Cut(strings.TrimSpace(s), ":")
	if !ok {
		return Key{}, errors.Wrapf(ErrInvalidKey, "%q", s)
	}

	chapter, err := strconv.Atoi(chapterPart)
	if err != nil || !IsValidChapter(chapter) {
		return Key{}, errors.Wrapf(ErrInvalidKey, "%q: bad chapter", s)
	}
	verse, err := strconv.Atoi(versePart)
	if err != nil || verse < 1 {
		return Key{}, errors.Wrapf(ErrInvalidKey, "%q: bad verse", s)
	}

	return Key{Chapter: chapter, Verse: verse}, nil
}

// IsValidChapter reports whether n is a chapter number in [1, TotalChapters].
func IsValidChapter(n int) bool {
	return n >= 1 && n <= TotalChapters
}

// ClampChapter bounds n to [1, TotalChapters].
func ClampChapter(n int) int {
	if n < 1 {
		return 1
	}
	if n > TotalChapters {
		return TotalChapters
	}
	return n
}

// ShowsBismillah reports whether the opening formula is displayed above the
// chapter text. Chapter 1 carries it as its first verse and chapter 9 has none.
func ShowsBismillah(chapter int) bool {
	return chapter != 1 && chapter != 9
}
