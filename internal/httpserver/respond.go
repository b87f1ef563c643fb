package httpserver

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/wordle/apps/activity-server/internal/game"
	"github.com/robalobadob/wordle/apps/activity-server/internal/store"
)

const maxBody = 64 << 10

var (
	errBadRequest = errors.New("bad request")
	errEmptyBody  = errors.New("empty body")
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// decode reads a strict JSON body into v and runs validator tags on it.
// An empty body yields errEmptyBody so callers with optional payloads can accept it.
func (s *Server) decode(r *http.Request, v any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBody))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return errEmptyBody
		}
		return fmt.Errorf("%w: %v", errBadRequest, err)
	}
	if err := s.validate.Struct(v); err != nil {
		return fmt.Errorf("%w: %v", errBadRequest, err)
	}
	return nil
}

// fail maps domain and storage errors onto HTTP responses.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, errBadRequest), errors.Is(err, errEmptyBody):
		status = http.StatusBadRequest
	case errors.Is(err, game.ErrIncompleteGuess), errors.Is(err, game.ErrNotInWordList):
		status = http.StatusUnprocessableEntity
	case errors.Is(err, game.ErrGameOver), errors.Is(err, game.ErrGameInProgress),
		errors.Is(err, game.ErrHintLimit), errors.Is(err, game.ErrHintTooEarly):
		status = http.StatusConflict
	case errors.Is(err, game.ErrNoHints):
		status = http.StatusBadRequest
	case errors.Is(err, store.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, store.ErrUnavailable):
		status = http.StatusServiceUnavailable
		s.metrics.StorageErrors.Inc()
	}
	if status >= http.StatusInternalServerError {
		log.Error().Err(err).Str("path", r.URL.Path).Msg("request failed")
	}
	writeError(w, status, err.Error())
}
