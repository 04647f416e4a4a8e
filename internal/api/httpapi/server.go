// Package httpapi provides the read-only HTTP JSON API over the Quran.com
// client: chapter pages, chapter audio with verse timestamps, catalogues and
// the tajweed stylesheet.
package httpapi

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"
	"github.com/samber/lo"

	"github.com/BadrElyatim/quran-app/internal/app/reader"
	"github.com/BadrElyatim/quran-app/internal/domain/tajweed"
	"github.com/BadrElyatim/quran-app/internal/domain/verse"
	"github.com/BadrElyatim/quran-app/internal/infra/logger"
	"github.com/BadrElyatim/quran-app/internal/infra/quran"
)

// Config holds HTTP API configuration.
type Config struct {
	AllowedOrigins []string
	Defaults       reader.Selection // Reciter and translation used when a query omits them
	Rules          []tajweed.Rule   // Base tajweed rules
}

// Server routes API requests.
type Server struct {
	router   *chi.Mux
	api      reader.API
	defaults reader.Selection
	rules    []tajweed.Rule
	log      zerolog.Logger
}

// NewServer creates the API server.
func NewServer(api reader.API, cfg Config) *Server {
	rules := cfg.Rules
	if len(rules) == 0 {
		rules = tajweed.DefaultRules()
	}
	s := &Server{
		router:   chi.NewRouter(),
		api:      api,
		defaults: cfg.Defaults,
		rules:    rules,
		log:      logger.Component("httpapi"),
	}
	s.setupMiddleware(cfg.AllowedOrigins)
	s.setupRoutes()
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) setupMiddleware(origins []string) {
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(s.requestLogger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))
}

func (s *Server) setupRoutes() {
	s.router.Get("/health", s.handleHealthCheck)

	s.router.Route("/api/v1", func(r chi.Router) {
		r.Route("/chapters/{chapter}", func(r chi.Router) {
			r.Get("/", s.handleGetChapter)
			r.Get("/audio", s.handleGetChapterAudio)
		})
		r.Get("/reciters", s.handleListReciters)
		r.Get("/translations", s.handleListTranslations)
		r.Get("/tajweed/rules", s.handleListRules)
		r.Get("/tajweed.css", s.handleStylesheet)
	})
}

// requestLogger logs one line per request through zerolog.
func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.log.Debug().
			Str("request_id", middleware.GetReqID(r.Context())).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Int("bytes", ww.BytesWritten()).
			Dur("elapsed", time.Since(start)).
			Msg("request")
	})
}

// handleHealthCheck returns server health status.
func (s *Server) handleHealthCheck(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"}, s.log)
}

// handleGetChapter returns a chapter page.
func (s *Server) handleGetChapter(w http.ResponseWriter, r *http.Request) {
	chapter, err := chapterParam(r)
	if err != nil {
		handleError(w, err, s.log)
		return
	}

	sel := s.defaults
	sel.Chapter = chapter
	if sel.TranslationID, err = intQuery(r, "translation", sel.TranslationID); err != nil {
		writeError(w, http.StatusBadRequest, err.Error(), s.log)
		return
	}
	if sel.ShowTranslation, err = boolQuery(r, "show_translation", sel.ShowTranslation); err != nil {
		writeError(w, http.StatusBadRequest, err.Error(), s.log)
		return
	}

	page, err := reader.BuildPage(r.Context(), s.api, sel)
	if err != nil {
		handleError(w, err, s.log)
		return
	}
	writeJSON(w, http.StatusOK, newPageResponse(page), s.log)
}

// handleGetChapterAudio returns the chapter recitation URL with the verse
// audio listing.
func (s *Server) handleGetChapterAudio(w http.ResponseWriter, r *http.Request) {
	chapter, err := chapterParam(r)
	if err != nil {
		handleError(w, err, s.log)
		return
	}
	reciterID, err := intQuery(r, "reciter", s.defaults.ReciterID)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error(), s.log)
		return
	}

	ctx := r.Context()
	url, err := s.api.ChapterAudioURL(ctx, reciterID, chapter)
	if err != nil {
		handleError(w, err, s.log)
		return
	}
	audio, err := s.api.VerseAudio(ctx, reciterID, chapter)
	if err != nil {
		handleError(w, err, s.log)
		return
	}
	table, err := quran.TimestampTable(audio)
	if err != nil {
		s.log.Warn().Err(err).Msgf("ignoring verse timestamps: chapter=%d reciter=%d", chapter, reciterID)
	}

	writeJSON(w, http.StatusOK, newAudioResponse(chapter, reciterID, url, audio, !table.IsEmpty()), s.log)
}

// handleListReciters returns the reciter catalogue.
func (s *Server) handleListReciters(w http.ResponseWriter, r *http.Request) {
	reciters, err := s.api.Reciters(r.Context())
	if err != nil {
		handleError(w, err, s.log)
		return
	}
	writeJSON(w, http.StatusOK, lo.Map(reciters, func(rc quran.Reciter, _ int) reciterResponse {
		return reciterResponse{ID: rc.ID, Name: rc.Name, Style: rc.Style, Label: rc.Label()}
	}), s.log)
}

// handleListTranslations returns the translation catalogue.
func (s *Server) handleListTranslations(w http.ResponseWriter, r *http.Request) {
	translations, err := s.api.Translations(r.Context())
	if err != nil {
		handleError(w, err, s.log)
		return
	}
	writeJSON(w, http.StatusOK, lo.Map(translations, func(t quran.TranslationResource, _ int) translationResponse {
		return translationResponse{ID: t.ID, Name: t.Name, AuthorName: t.AuthorName, LanguageName: t.LanguageName}
	}), s.log)
}

// handleListRules returns the tajweed rule catalogue.
func (s *Server) handleListRules(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, lo.Map(s.rules, func(rule tajweed.Rule, _ int) ruleResponse {
		return ruleResponse{ID: rule.ID, Name: rule.Name, Color: rule.Color, Enabled: rule.Enabled}
	}), s.log)
}

// handleStylesheet renders the tajweed stylesheet. Rules listed in the
// comma separated "disabled" query are rendered disabled.
func (s *Server) handleStylesheet(w http.ResponseWriter, r *http.Request) {
	settings := tajweed.NewSettings(s.rules)
	for _, id := range splitList(r.URL.Query().Get("disabled")) {
		if !settings.SetEnabled(id, false) {
			writeError(w, http.StatusBadRequest, "unknown tajweed rule: "+id, s.log)
			return
		}
	}

	w.Header().Set("Content-Type", "text/css; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte(settings.Stylesheet() + "\n")); err != nil {
		s.log.Error().Err(err).Msg("failed to write stylesheet")
	}
}

func chapterParam(r *http.Request) (int, error) {
	raw := chi.URLParam(r, "chapter")
	n, err := strconv.Atoi(raw)
	if err != nil || !verse.IsValidChapter(n) {
		return 0, errors.Mark(errors.Newf("invalid chapter %q: must be 1-%d", raw, verse.TotalChapters), reader.ErrInvalidChapter)
	}
	return n, nil
}

func intQuery(r *http.Request, name string, fallback int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return 0, errors.Newf("invalid %s %q", name, raw)
	}
	return n, nil
}

func boolQuery(r *http.Request, name string, fallback bool) (bool, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback, nil
	}
	b, err := strconv.ParseBool(raw)
	if err != nil {
		return false, errors.Newf("invalid %s %q", name, raw)
	}
	return b, nil
}

func splitList(raw string) []string {
	parts := lo.Map(strings.Split(raw, ","), func(p string, _ int) string {
		return strings.TrimSpace(p)
	})
	return lo.Compact(parts)
}
