// Package quran provides a client for the Quran.com v4 API.
package quran

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	zlog "github.com/rs/zerolog/log"
	"golang.org/x/time/rate"
)

const (
	DefaultBaseURL      = "https://api.quran.com/api/v4"
	DefaultAudioBaseURL = "https://verses.quran.com/"

	defaultTimeout  = 10 * time.Second
	defaultRPS      = 5
	defaultBurst    = 10
	defaultLanguage = "en"

	// Large enough for the longest chapter (286 verses) in one page.
	perPage = 300
)

// ErrFetchFailed marks every failure to obtain or decode a response:
// transport errors, non-2xx status, malformed JSON and missing fields.
var ErrFetchFailed = errors.New("quran api fetch failed")

// Config represents Quran.com client configuration.
type Config struct {
	BaseURL           string
	AudioBaseURL      string
	Timeout           time.Duration
	RequestsPerSecond float64
	Burst             int
	Language          string
}

// Client is a Quran.com API client.
type Client struct {
	baseURL      string
	audioBaseURL string
	language     string
	httpClient   *http.Client
	rateLimiter  *rate.Limiter

	// Session caches for the resource catalogues
	reciters     []Reciter
	translations []TranslationResource

	// Mutex for cache access
	cacheMu sync.RWMutex
}

// New creates a new Quran.com client. Zero config fields take defaults.
func New(cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.AudioBaseURL == "" {
		cfg.AudioBaseURL = DefaultAudioBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	if cfg.RequestsPerSecond <= 0 {
		cfg.RequestsPerSecond = defaultRPS
	}
	if cfg.Burst <= 0 {
		cfg.Burst = defaultBurst
	}
	if cfg.Language == "" {
		cfg.Language = defaultLanguage
	}

	return &Client{
		baseURL:      strings.TrimSuffix(cfg.BaseURL, "/"),
		audioBaseURL: cfg.AudioBaseURL,
		language:     cfg.Language,
		httpClient:   &http.Client{Timeout: cfg.Timeout},
		rateLimiter:  rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), cfg.Burst),
	}
}

// getJSON performs a rate-limited GET of path and decodes the body into out.
func (c *Client) getJSON(ctx context.Context, path string, params url.Values, out any) error {
	if err := c.rateLimiter.Wait(ctx); err != nil {
		return fetchFailed(errors.Wrap(err, "rate limiter wait"))
	}

	reqURL := c.baseURL + path
	if len(params) > 0 {
		reqURL += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return fetchFailed(errors.Wrap(err, "failed to create request"))
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fetchFailed(errors.Wrap(err, "failed to send request"))
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fetchFailed(errors.Wrap(err, "failed to read response body"))
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fetchFailed(errors.Newf("GET %s: unexpected status %d", path, resp.StatusCode))
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fetchFailed(errors.Wrapf(err, "failed to parse response of %s", path))
	}

	zlog.Debug().Msgf("quran: GET %s (%d bytes)", path, len(body))
	return nil
}

// AudioURL turns a relative verse audio path into an absolute URL.
func (c *Client) AudioURL(relative string) string {
	switch {
	case strings.HasPrefix(relative, "http://"), strings.HasPrefix(relative, "https://"):
		return relative
	case strings.HasPrefix(relative, "//"):
		return "https:" + relative
	default:
		return c.audioBaseURL + strings.TrimPrefix(relative, "/")
	}
}

func fetchFailed(err error) error {
	return errors.Mark(err, ErrFetchFailed)
}

func missingField(path, field string) error {
	return fetchFailed(errors.Newf("GET %s: response is missing %s", path, field))
}
