package quran

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/BadrElyatim/quran-app/internal/domain/verse"
	"github.com/cockroachdb/errors"
)

// TajweedVerse is a verse in the remote tajweed markup.
type TajweedVerse struct {
	Key    verse.Key
	Markup string
}

// Translation is one translated verse. Entries are positional: index i holds
// verse i+1.
type Translation struct {
	ResourceID int
	Text       string
}

type chapterResponse struct {
	Chapter *struct {
		ID             int    `json:"id"`
		NameArabic     string `json:"name_arabic"`
		VersesCount    int    `json:"verses_count"`
		TranslatedName struct {
			Name string `json:"name"`
		} `json:"translated_name"`
	} `json:"chapter"`
}

type versesByChapterResponse struct {
	Pagination *struct {
		TotalRecords int `json:"total_records"`
	} `json:"pagination"`
}

type tajweedResponse struct {
	Verses *[]struct {
		VerseKey           string `json:"verse_key"`
		TextUthmaniTajweed string `json:"text_uthmani_tajweed"`
	} `json:"verses"`
}

type translationResponse struct {
	Translations *[]struct {
		ResourceID int    `json:"resource_id"`
		Text       string `json:"text"`
	} `json:"translations"`
}

// Chapter returns chapter metadata.
func (c *Client) Chapter(ctx context.Context, chapter int) (verse.Chapter, error) {
	path := fmt.Sprintf("/chapters/%d", chapter)
	params := url.Values{}
	params.Set("language", c.language)

	var response chapterResponse
	if err := c.getJSON(ctx, path, params, &response); err != nil {
		return verse.Chapter{}, err
	}
	if response.Chapter == nil {
		return verse.Chapter{}, missingField(path, "chapter")
	}

	ch := response.Chapter
	number := ch.ID
	if number == 0 {
		number = chapter
	}
	return verse.Chapter{
		Number:         number,
		NameArabic:     ch.NameArabic,
		NameTranslated: ch.TranslatedName.Name,
		VerseCount:     ch.VersesCount,
	}, nil
}

// VerseCount returns the number of verses in a chapter.
func (c *Client) VerseCount(ctx context.Context, chapter int) (int, error) {
	path := fmt.Sprintf("/verses/by_chapter/%d", chapter)
	params := url.Values{}
	params.Set("language", c.language)
	params.Set("fields", "verse_number")
	params.Set("page", "1")
	params.Set("per_page", strconv.Itoa(perPage))

	var response versesByChapterResponse
	if err := c.getJSON(ctx, path, params, &response); err != nil {
		return 0, err
	}
	if response.Pagination == nil {
		return 0, missingField(path, "pagination.total_records")
	}
	return response.Pagination.TotalRecords, nil
}

// TajweedText returns the tajweed markup of every verse of a chapter.
func (c *Client) TajweedText(ctx context.Context, chapter int) ([]TajweedVerse, error) {
	path := "/quran/verses/uthmani_tajweed"
	params := url.Values{}
	params.Set("chapter_number", strconv.Itoa(chapter))

	var response tajweedResponse
	if err := c.getJSON(ctx, path, params, &response); err != nil {
		return nil, err
	}
	if response.Verses == nil {
		return nil, missingField(path, "verses")
	}

	verses := make([]TajweedVerse, 0, len(*response.Verses))
	for _, v := range *response.Verses {
		key, err := verse.ParseKey(v.VerseKey)
		if err != nil {
			return nil, fetchFailed(errors.Wrapf(err, "GET %s", path))
		}
		verses = append(verses, TajweedVerse{Key: key, Markup: v.TextUthmaniTajweed})
	}
	return verses, nil
}

// Translation returns the translated verses of a chapter.
func (c *Client) Translation(ctx context.Context, translationID, chapter int) ([]Translation, error) {
	path := fmt.Sprintf("/quran/translations/%d", translationID)
	params := url.Values{}
	params.Set("chapter_number", strconv.Itoa(chapter))

	var response translationResponse
	if err := c.getJSON(ctx, path, params, &response); err != nil {
		return nil, err
	}
	if response.Translations == nil {
		return nil, missingField(path, "translations")
	}

	translations := make([]Translation, 0, len(*response.Translations))
	for _, t := range *response.Translations {
		translations = append(translations, Translation{ResourceID: t.ResourceID, Text: t.Text})
	}
	return translations, nil
}

// TranslationFor returns the translation of a verse by position. The entry
// must belong to translationID.
func TranslationFor(translations []Translation, translationID, verseNumber int) (string, bool) {
	i := verseNumber - 1
	if i < 0 || i >= len(translations) {
		return "", false
	}
	t := translations[i]
	if t.ResourceID != translationID {
		return "", false
	}
	return t.Text, true
}
