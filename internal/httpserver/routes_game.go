// internal/httpserver/routes_game.go
//
// Per-player session endpoints (all require auth):
//   GET  /api/game/{instanceId}            -> session view (created on first access)
//   POST /api/game/{instanceId}/hard-mode  { enabled }
//   POST /api/game/{instanceId}/key        { key }   a-z or "backspace"
//   POST /api/game/{instanceId}/guess      { letters? }  letters for the unlocked slots
//   POST /api/game/{instanceId}/hint
//   POST /api/game/{instanceId}/reset      -> fresh attempt once the game is over, keeps hard mode
//   GET  /api/reveal/{instanceId}          -> { word } once the caller's session is over
//
// Every handler loads the record, applies one engine operation and writes the record
// back only if the operation changed it. The secret word is never part of a response.

package httpserver

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/wordle/apps/activity-server/internal/achievements"
	"github.com/robalobadob/wordle/apps/activity-server/internal/game"
	"github.com/robalobadob/wordle/apps/activity-server/internal/leaderboard"
	"github.com/robalobadob/wordle/apps/activity-server/internal/store"
)

type hardModeReq struct {
	Enabled *bool `json:"enabled" validate:"required"`
}

type keyReq struct {
	Key string `json:"key" validate:"required,max=9"`
}

type guessReq struct {
	Letters string `json:"letters" validate:"omitempty,alpha,max=5"`
}

// sessionView is the client-facing form of a session.
type sessionView struct {
	*game.State
	Status        string                  `json:"status"`
	Keyboard      map[string]game.Verdict `json:"keyboard"`
	HintAvailable bool                    `json:"hintAvailable"`
}

// outcomeView reports what a finished game changed.
type outcomeView struct {
	NewlyUnlocked []achievements.Achievement `json:"newlyUnlocked"`
	Rank          int                        `json:"rank,omitempty"`
}

func (s *Server) mountGame(r chi.Router) {
	r.Route("/game/{instanceId}", func(r chi.Router) {
		r.Use(s.requireAuth)
		r.Get("/", s.handleGetSession)
		r.Post("/hard-mode", s.handleHardMode)
		r.Post("/key", s.handleKey)
		r.Post("/guess", s.handleGuess)
		r.Post("/hint", s.handleSessionHint)
		r.Post("/reset", s.handleReset)
	})
	r.With(s.requireAuth).Get("/reveal/{instanceId}", s.handleReveal)
}

func (s *Server) view(st *game.State) sessionView {
	return sessionView{
		State:    st,
		Status:   st.Status(),
		Keyboard: game.KeyboardSummary(st),
		HintAvailable: !st.GameOver && !st.HintUsedForCurrentTry &&
			len(st.Guesses) >= s.engine.MinGuessesForHint,
	}
}

// loadOrCreate returns the caller's session for the instance, creating (but not
// saving) a new one when none exists.
func (s *Server) loadOrCreate(ctx context.Context, instanceID, userID string) (*game.State, bool, error) {
	st, err := s.repo.LoadSession(ctx, instanceID, userID)
	if errors.Is(err, store.ErrNotFound) {
		return s.engine.NewState(instanceID, userID), true, nil
	}
	if err != nil {
		return nil, false, err
	}
	return st, false, nil
}

// withSession runs op against the caller's session and persists the record when op
// reports a change (or the session is new).
func (s *Server) withSession(w http.ResponseWriter, r *http.Request, op func(st *game.State) (bool, error)) (*game.State, bool) {
	u, err := currentUser(r)
	if err != nil {
		http.Error(w, `{"error":"Unauthorized"}`, http.StatusUnauthorized)
		return nil, false
	}
	st, created, err := s.loadOrCreate(r.Context(), chi.URLParam(r, "instanceId"), u.ID)
	if err != nil {
		s.fail(w, r, err)
		return nil, false
	}
	changed, err := op(st)
	if err != nil {
		s.fail(w, r, err)
		return nil, false
	}
	if changed || created {
		if err := s.repo.SaveSession(r.Context(), st); err != nil {
			s.fail(w, r, err)
			return nil, false
		}
	}
	return st, true
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	st, ok := s.withSession(w, r, func(*game.State) (bool, error) { return false, nil })
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, s.view(st))
}

func (s *Server) handleHardMode(w http.ResponseWriter, r *http.Request) {
	var req hardModeReq
	if err := s.decode(r, &req); err != nil {
		s.fail(w, r, err)
		return
	}
	st, ok := s.withSession(w, r, func(st *game.State) (bool, error) {
		return s.engine.SetHardMode(st, *req.Enabled), nil
	})
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, s.view(st))
}

func (s *Server) handleKey(w http.ResponseWriter, r *http.Request) {
	var req keyReq
	if err := s.decode(r, &req); err != nil {
		s.fail(w, r, err)
		return
	}
	st, ok := s.withSession(w, r, func(st *game.State) (bool, error) {
		if req.Key == "backspace" {
			return s.engine.RemoveLetter(st), nil
		}
		return s.engine.AddLetter(st, req.Key), nil
	})
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, s.view(st))
}

func (s *Server) handleGuess(w http.ResponseWriter, r *http.Request) {
	var req guessReq
	if err := s.decode(r, &req); err != nil && !errors.Is(err, errEmptyBody) {
		s.fail(w, r, err)
		return
	}
	var res game.GuessResult
	st, ok := s.withSession(w, r, func(st *game.State) (bool, error) {
		if req.Letters != "" && !st.GameOver {
			// letters fill the unlocked slots only.
			if free := game.WordLength - st.LockedCount(); len(req.Letters) > free {
				return false, fmt.Errorf("%w: %d letters for %d free slots", errBadRequest, len(req.Letters), free)
			}
			st.CurrentInput = ""
			for _, c := range req.Letters {
				s.engine.AddLetter(st, string(c))
			}
		}
		var err error
		res, err = s.engine.SubmitGuess(st)
		if err != nil {
			s.rejected(err)
			return false, err
		}
		return true, nil
	})
	if !ok {
		return
	}
	s.metrics.GuessesScored.Inc()

	resp := map[string]any{
		"result":   res.Row,
		"correct":  res.Won,
		"gameOver": res.GameOver,
		"state":    s.view(st),
	}
	if res.GameOver {
		s.metrics.GameFinished(res.Won)
		u, _ := currentUser(r)
		out, err := s.recordOutcome(r.Context(), st, u)
		if err != nil {
			// The guess itself is saved; the client may resubmit through the
			// leaderboard and achievement endpoints.
			log.Error().Err(err).Str("instanceId", st.InstanceID).Str("userId", st.UserID).Msg("record outcome failed")
			s.metrics.StorageErrors.Inc()
		} else {
			resp["outcome"] = out
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) rejected(err error) {
	switch {
	case errors.Is(err, game.ErrNotInWordList):
		s.metrics.GuessesRejected.WithLabelValues("not_in_list").Inc()
	case errors.Is(err, game.ErrIncompleteGuess):
		s.metrics.GuessesRejected.WithLabelValues("incomplete").Inc()
	case errors.Is(err, game.ErrGameOver):
		s.metrics.GuessesRejected.WithLabelValues("game_over").Inc()
	}
}

func (s *Server) handleSessionHint(w http.ResponseWriter, r *http.Request) {
	var res game.HintResult
	st, ok := s.withSession(w, r, func(st *game.State) (bool, error) {
		var err error
		res, err = s.engine.GetHint(st)
		return res.Applied, err
	})
	if !ok {
		return
	}
	if res.Applied {
		s.metrics.HintsIssued.Inc()
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"letter":   res.Letter,
		"position": res.Position,
		"applied":  res.Applied,
		"state":    s.view(st),
	})
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	st, ok := s.withSession(w, r, func(st *game.State) (bool, error) {
		if err := s.engine.Reset(st); err != nil {
			return false, err
		}
		return true, nil
	})
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, s.view(st))
}

// handleReveal returns the answer, but only to a player whose own session in the
// instance is finished.
func (s *Server) handleReveal(w http.ResponseWriter, r *http.Request) {
	u, err := currentUser(r)
	if err != nil {
		http.Error(w, `{"error":"Unauthorized"}`, http.StatusUnauthorized)
		return
	}
	instanceID := chi.URLParam(r, "instanceId")
	st, err := s.repo.LoadSession(r.Context(), instanceID, u.ID)
	switch {
	case errors.Is(err, store.ErrNotFound):
		s.fail(w, r, game.ErrGameInProgress)
		return
	case err != nil:
		s.fail(w, r, err)
		return
	case !st.GameOver:
		s.fail(w, r, game.ErrGameInProgress)
		return
	}
	word, err := s.engine.Target(instanceID)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"word": word})
}

// recordOutcome evaluates achievements for a finished session and, on a win, merges
// the result into the instance leaderboard.
func (s *Server) recordOutcome(ctx context.Context, st *game.State, u *authUser) (outcomeView, error) {
	out, ok := st.Outcome()
	if !ok {
		return outcomeView{}, nil
	}
	view := outcomeView{NewlyUnlocked: []achievements.Achievement{}}

	unlocked, err := s.applyAchievements(ctx, st.UserID, out)
	if err != nil {
		return view, err
	}
	view.NewlyUnlocked = achievements.Details(unlocked)

	if out.Won {
		rank, err := s.submitEntry(ctx, st.InstanceID, leaderboard.Entry{
			UserID:    st.UserID,
			Username:  u.Username,
			Guesses:   out.AttemptsUsed,
			TimeMs:    out.TimeMs,
			HintsUsed: out.HintsUsed,
		})
		if err != nil {
			return view, err
		}
		view.Rank = rank
	}
	return view, nil
}
