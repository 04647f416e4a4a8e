package httpapi

import (
	"encoding/json"
	"net/http"

	"github.com/cockroachdb/errors"
	"github.com/rs/zerolog"

	"github.com/BadrElyatim/quran-app/internal/app/reader"
	"github.com/BadrElyatim/quran-app/internal/infra/quran"
)

// Envelope is the JSON body of every API response.
type Envelope struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, data any, log zerolog.Logger) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(Envelope{Success: status < 400, Data: data}); err != nil {
		log.Error().Err(err).Msg("failed to encode response")
	}
}

func writeError(w http.ResponseWriter, status int, message string, log zerolog.Logger) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(Envelope{Success: false, Error: message}); err != nil {
		log.Error().Err(err).Msg("failed to encode error response")
	}
}

// handleError maps an error to its status. Upstream API failures are 502,
// anything unknown is 500.
func handleError(w http.ResponseWriter, err error, log zerolog.Logger) {
	switch {
	case errors.Is(err, reader.ErrInvalidChapter):
		writeError(w, http.StatusBadRequest, err.Error(), log)
	case errors.Is(err, quran.ErrFetchFailed):
		log.Warn().Err(err).Msg("upstream request failed")
		writeError(w, http.StatusBadGateway, "upstream request failed", log)
	default:
		log.Error().Err(err).Msg("unhandled error")
		writeError(w, http.StatusInternalServerError, "internal server error", log)
	}
}
