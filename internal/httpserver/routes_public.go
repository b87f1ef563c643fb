// internal/httpserver/routes_public.go
//
// Unauthenticated endpoints used by the activity client before (or instead of)
// keeping a server-side session:
//   POST /api/token                -> Discord code exchange + session token
//   GET  /api/word/{instanceId}    -> { wordIndex, totalWords }
//   POST /api/validate             -> score a guess without touching any session
//   POST /api/hint                 -> pick a hint from client-reported rows

package httpserver

import (
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/wordle/apps/activity-server/internal/discord"
	"github.com/robalobadob/wordle/apps/activity-server/internal/game"
)

type tokenReq struct {
	Code string `json:"code" validate:"required"`
}

type validateReq struct {
	Guess      string `json:"guess" validate:"required"`
	InstanceID string `json:"instanceId" validate:"required"`
}

type hintReq struct {
	InstanceID string           `json:"instanceId" validate:"required"`
	Results    [][]game.Verdict `json:"results" validate:"dive,len=5,dive,oneof=correct present absent"`
}

func (s *Server) mountPublic(r chi.Router) {
	r.Post("/token", s.handleToken)
	r.Get("/word/{instanceId}", s.handleWord)
	r.Post("/validate", s.handleValidate)
	r.Post("/hint", s.handleStatelessHint)
}

func (s *Server) handleToken(w http.ResponseWriter, r *http.Request) {
	var req tokenReq
	if err := s.decode(r, &req); err != nil {
		s.fail(w, r, err)
		return
	}
	if s.discord == nil {
		writeError(w, http.StatusServiceUnavailable, "discord login not configured")
		return
	}
	access, err := s.discord.ExchangeCode(r.Context(), req.Code)
	if err != nil {
		log.Warn().Err(err).Msg("discord token exchange failed")
		msg := "Token exchange failed"
		if !errors.Is(err, discord.ErrExchange) {
			writeError(w, http.StatusBadGateway, msg)
			return
		}
		writeError(w, http.StatusBadRequest, msg)
		return
	}
	user, err := s.discord.CurrentUser(r.Context(), access)
	if err != nil {
		log.Warn().Err(err).Msg("discord user lookup failed")
		writeError(w, http.StatusBadGateway, "user lookup failed")
		return
	}
	session, exp, err := s.signJWT(user.ID, user.DisplayName())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.setAuthCookie(w, session, exp)
	writeJSON(w, http.StatusOK, map[string]any{
		"access_token":  access,
		"session_token": session,
		"user":          map[string]string{"id": user.ID, "username": user.DisplayName()},
	})
}

func (s *Server) handleWord(w http.ResponseWriter, r *http.Request) {
	idx, word := s.words.Select(s.engine.Selector, chi.URLParam(r, "instanceId"))
	if word == "" {
		s.fail(w, r, game.ErrNoWords)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"wordIndex": idx, "totalWords": len(s.words.Answers())})
}

func (s *Server) handleValidate(w http.ResponseWriter, r *http.Request) {
	var req validateReq
	if err := s.decode(r, &req); err != nil {
		s.fail(w, r, err)
		return
	}
	guess := strings.ToLower(strings.TrimSpace(req.Guess))
	if !s.words.IsAllowed(guess) {
		s.metrics.GuessesRejected.WithLabelValues("not_in_list").Inc()
		writeJSON(w, http.StatusOK, map[string]any{"valid": false, "error": "Not a valid word"})
		return
	}
	target, err := s.engine.Target(req.InstanceID)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.metrics.GuessesScored.Inc()
	writeJSON(w, http.StatusOK, map[string]any{
		"valid":   true,
		"result":  game.Score(guess, target),
		"correct": guess == target,
	})
}

func (s *Server) handleStatelessHint(w http.ResponseWriter, r *http.Request) {
	var req hintReq
	if err := s.decode(r, &req); err != nil {
		s.fail(w, r, err)
		return
	}
	target, err := s.engine.Target(req.InstanceID)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	rows := make([]game.Row, len(req.Results))
	for i, row := range req.Results {
		rows[i] = game.Row(row)
	}
	h, err := s.engine.Hints.Pick(target, rows)
	if err != nil {
		writeError(w, http.StatusBadRequest, "No hints available")
		return
	}
	s.metrics.HintsIssued.Inc()
	writeJSON(w, http.StatusOK, h)
}
