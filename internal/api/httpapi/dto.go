package httpapi

import (
	"github.com/BadrElyatim/quran-app/internal/domain/verse"
	"github.com/BadrElyatim/quran-app/internal/infra/quran"
)

type chapterResponse struct {
	Number         int    `json:"number"`
	NameArabic     string `json:"name_arabic"`
	NameTranslated string `json:"name_translated"`
	VerseCount     int    `json:"verse_count"`
	ShowsBismillah bool   `json:"shows_bismillah"`
}

type verseResponse struct {
	Number       int    `json:"number"`
	NumberArabic string `json:"number_arabic"`
	Key          string `json:"key"`
	TajweedHTML  string `json:"tajweed_html"`
	Translation  string `json:"translation,omitempty"`
}

type pageResponse struct {
	Chapter chapterResponse `json:"chapter"`
	Verses  []verseResponse `json:"verses"`
}

func newPageResponse(page *verse.Page) pageResponse {
	verses := make([]verseResponse, 0, len(page.Verses))
	for _, v := range page.Verses {
		verses = append(verses, verseResponse{
			Number:       v.Number,
			NumberArabic: verse.ArabicNumerals(v.Number),
			Key:          v.Key,
			TajweedHTML:  v.TajweedHTML,
			Translation:  v.Translation,
		})
	}
	return pageResponse{
		Chapter: chapterResponse{
			Number:         page.Chapter.Number,
			NameArabic:     page.Chapter.NameArabic,
			NameTranslated: page.Chapter.NameTranslated,
			VerseCount:     page.Chapter.VerseCount,
			ShowsBismillah: verse.ShowsBismillah(page.Chapter.Number),
		},
		Verses: verses,
	}
}

type verseAudioResponse struct {
	Number int      `json:"number"`
	Key    string   `json:"key"`
	URL    string   `json:"url"`
	Start  *float64 `json:"start,omitempty"` // Seconds into the chapter recitation
}

type audioResponse struct {
	Chapter         int                  `json:"chapter"`
	ReciterID       int                  `json:"reciter_id"`
	URL             string               `json:"url"`
	TimestampsValid bool                 `json:"timestamps_valid"`
	Verses          []verseAudioResponse `json:"verses"`
}

func newAudioResponse(chapter, reciterID int, url string, audio []quran.VerseAudio, timestampsValid bool) audioResponse {
	verses := make([]verseAudioResponse, 0, len(audio))
	for _, a := range audio {
		v := verseAudioResponse{
			Number: a.Key.Verse,
			Key:    a.Key.String(),
			URL:    a.URL,
		}
		if timestampsValid {
			start := a.Start
			v.Start = &start
		}
		verses = append(verses, v)
	}
	return audioResponse{
		Chapter:         chapter,
		ReciterID:       reciterID,
		URL:             url,
		TimestampsValid: timestampsValid,
		Verses:          verses,
	}
}

type reciterResponse struct {
	ID    int    `json:"id"`
	Name  string `json:"name"`
	Style string `json:"style,omitempty"`
	Label string `json:"label"`
}

type translationResponse struct {
	ID           int    `json:"id"`
	Name         string `json:"name"`
	AuthorName   string `json:"author_name,omitempty"`
	LanguageName string `json:"language_name,omitempty"`
}

type ruleResponse struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Color   string `json:"color"`
	Enabled bool   `json:"enabled"`
}
