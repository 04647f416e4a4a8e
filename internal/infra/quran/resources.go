package quran

import (
	"context"
	"net/url"

	zlog "github.com/rs/zerolog/log"
)

// Reciter is an available recitation.
type Reciter struct {
	ID    int
	Name  string
	Style string // Optional, e.g. "Murattal"
}

// Label returns the reciter name with its style, if any.
func (r Reciter) Label() string {
	if r.Style == "" {
		return r.Name
	}
	return r.Name + " (" + r.Style + ")"
}

// TranslationResource is an available translation.
type TranslationResource struct {
	ID           int
	Name         string
	AuthorName   string
	LanguageName string
}

type recitationsResponse struct {
	Recitations *[]struct {
		ID          int     `json:"id"`
		ReciterName string  `json:"reciter_name"`
		Style       *string `json:"style"`
	} `json:"recitations"`
}

type translationResourcesResponse struct {
	Translations *[]struct {
		ID           int    `json:"id"`
		Name         string `json:"name"`
		AuthorName   string `json:"author_name"`
		LanguageName string `json:"language_name"`
	} `json:"translations"`
}

// Reciters returns the available recitations. The result is cached for the
// lifetime of the client.
func (c *Client) Reciters(ctx context.Context) ([]Reciter, error) {
	c.cacheMu.RLock()
	if c.reciters != nil {
		cached := c.reciters
		c.cacheMu.RUnlock()
		zlog.Debug().Msg("quran: using cached reciters")
		return cached, nil
	}
	c.cacheMu.RUnlock()

	path := "/resources/recitations"
	params := url.Values{}
	params.Set("language", c.language)

	var response recitationsResponse
	if err := c.getJSON(ctx, path, params, &response); err != nil {
		return nil, err
	}
	if response.Recitations == nil {
		return nil, missingField(path, "recitations")
	}

	reciters := make([]Reciter, 0, len(*response.Recitations))
	for _, r := range *response.Recitations {
		reciter := Reciter{ID: r.ID, Name: r.ReciterName}
		if r.Style != nil {
			reciter.Style = *r.Style
		}
		reciters = append(reciters, reciter)
	}

	c.cacheMu.Lock()
	c.reciters = reciters
	c.cacheMu.Unlock()
	zlog.Debug().Msgf("quran: cached reciters (count: %d)", len(reciters))

	return reciters, nil
}

// Translations returns the available translations. The result is cached for
// the lifetime of the client.
func (c *Client) Translations(ctx context.Context) ([]TranslationResource, error) {
	c.cacheMu.RLock()
	if c.translations != nil {
		cached := c.translations
		c.cacheMu.RUnlock()
		zlog.Debug().Msg("quran: using cached translations")
		return cached, nil
	}
	c.cacheMu.RUnlock()

	path := "/resources/translations"

	var response translationResourcesResponse
	if err := c.getJSON(ctx, path, nil, &response); err != nil {
		return nil, err
	}
	if response.Translations == nil {
		return nil, missingField(path, "translations")
	}

	translations := make([]TranslationResource, 0, len(*response.Translations))
	for _, t := range *response.Translations {
		translations = append(translations, TranslationResource{
			ID:           t.ID,
			Name:         t.Name,
			AuthorName:   t.AuthorName,
			LanguageName: t.LanguageName,
		})
	}

	c.cacheMu.Lock()
	c.translations = translations
	c.cacheMu.Unlock()
	zlog.Debug().Msgf("quran: cached translations (count: %d)", len(translations))

	return translations, nil
}
