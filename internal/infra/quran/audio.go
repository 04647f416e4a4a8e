package quran

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/BadrElyatim/quran-app/internal/domain/verse"
	"github.com/cockroachdb/errors"
	zlog "github.com/rs/zerolog/log"
)

// VerseAudio is one entry of a chapter's per-verse audio listing.
type VerseAudio struct {
	Key          verse.Key
	RelativeURL  string
	URL          string  // Absolute URL
	Start        float64 // Start offset in the chapter recitation, seconds
	HasTimestamp bool
}

type chapterRecitationResponse struct {
	AudioFile *struct {
		AudioURL string `json:"audio_url"`
	} `json:"audio_file"`
}

type verseRecitationsResponse struct {
	AudioFiles *[]struct {
		VerseKey      string   `json:"verse_key"`
		URL           string   `json:"url"`
		TimestampFrom *float64 `json:"timestamp_from"` // Milliseconds
	} `json:"audio_files"`
}

// ChapterAudioURL returns the full-chapter recitation URL.
func (c *Client) ChapterAudioURL(ctx context.Context, reciterID, chapter int) (string, error) {
	path := fmt.Sprintf("/chapter_recitations/%d/%d", reciterID, chapter)

	var response chapterRecitationResponse
	if err := c.getJSON(ctx, path, nil, &response); err != nil {
		return "", err
	}
	if response.AudioFile == nil || response.AudioFile.AudioURL == "" {
		return "", missingField(path, "audio_file.audio_url")
	}
	return response.AudioFile.AudioURL, nil
}

// VerseAudio returns the per-verse audio listing of a chapter, in verse order
// as reported by the API.
func (c *Client) VerseAudio(ctx context.Context, reciterID, chapter int) ([]VerseAudio, error) {
	path := fmt.Sprintf("/recitations/%d/by_chapter/%d", reciterID, chapter)
	params := url.Values{}
	params.Set("per_page", strconv.Itoa(perPage))

	var response verseRecitationsResponse
	if err := c.getJSON(ctx, path, params, &response); err != nil {
		return nil, err
	}
	if response.AudioFiles == nil {
		return nil, missingField(path, "audio_files")
	}

	audio := make([]VerseAudio, 0, len(*response.AudioFiles))
	for _, f := range *response.AudioFiles {
		key, err := verse.ParseKey(f.VerseKey)
		if err != nil {
			return nil, fetchFailed(errors.Wrapf(err, "GET %s", path))
		}
		if f.URL == "" {
			return nil, missingField(path, "audio_files[].url for "+f.VerseKey)
		}

		a := VerseAudio{
			Key:         key,
			RelativeURL: f.URL,
			URL:         c.AudioURL(f.URL),
		}
		if f.TimestampFrom != nil {
			a.Start = *f.TimestampFrom / 1000
			a.HasTimestamp = true
		}
		audio = append(audio, a)
	}
	return audio, nil
}

// VerseURLs returns the absolute audio URL of every verse of a chapter,
// keyed by verse number.
func (c *Client) VerseURLs(ctx context.Context, chapter, reciterID int) (map[int]string, error) {
	audio, err := c.VerseAudio(ctx, reciterID, chapter)
	if err != nil {
		return nil, err
	}

	urls := make(map[int]string, len(audio))
	for _, a := range audio {
		urls[a.Key.Verse] = a.URL
	}
	zlog.Debug().Msgf("quran: loaded %d verse urls for chapter=%d reciter=%d", len(urls), chapter, reciterID)
	return urls, nil
}

// TimestampTable builds the verse start table from an audio listing.
// A listing without timestamps yields an empty table.
func TimestampTable(audio []VerseAudio) (verse.TimestampTable, error) {
	offsets := make([]float64, 0, len(audio))
	for _, a := range audio {
		if !a.HasTimestamp {
			return verse.TimestampTable{}, nil
		}
		offsets = append(offsets, a.Start)
	}
	return verse.NewTimestampTable(offsets)
}
