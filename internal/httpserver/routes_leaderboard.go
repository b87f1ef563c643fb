// internal/httpserver/routes_leaderboard.go
//
// Leaderboard and achievement endpoints:
//   GET  /api/leaderboard/{instanceId}  -> { entries }
//   POST /api/leaderboard/submit        (auth) merge a result into the instance board
//   GET  /api/achievements/{userId}     -> record with catalog details
//   POST /api/achievements/update       (auth) evaluate a finished game
//
// The submit/update endpoints serve clients that track game state themselves.
// Sessions played through /api/game record their outcome automatically.

package httpserver

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/robalobadob/wordle/apps/activity-server/internal/achievements"
	"github.com/robalobadob/wordle/apps/activity-server/internal/game"
	"github.com/robalobadob/wordle/apps/activity-server/internal/leaderboard"
	"github.com/robalobadob/wordle/apps/activity-server/internal/store"
)

type submitReq struct {
	InstanceID string `json:"instanceId" validate:"required"`
	Guesses    int    `json:"guesses" validate:"gte=0,lte=6"`
	TimeMs     int64  `json:"timeMs" validate:"gte=0"`
	HintsUsed  *int   `json:"hintsUsed" validate:"omitempty,gte=0"`
}

type updateReq struct {
	Won     bool             `json:"won"`
	Guesses int              `json:"guesses" validate:"gte=0,lte=6"`
	TimeMs  int64            `json:"timeMs" validate:"gte=0"`
	Results [][]game.Verdict `json:"results" validate:"max=6,dive,len=5,dive,oneof=correct present absent"`
}

// achievementsView is a record with unlocked ids expanded to catalog entries.
type achievementsView struct {
	UserID           string                     `json:"userId"`
	Unlocked         []achievements.Achievement `json:"unlocked"`
	WinStreak        int                        `json:"winStreak"`
	DayStreak        int                        `json:"dayStreak"`
	LastWinTimestamp int64                      `json:"lastWinTimestamp"`
	TotalWins        int                        `json:"totalWins"`
}

func (s *Server) mountLeaderboard(r chi.Router) {
	r.Route("/leaderboard", func(r chi.Router) {
		r.With(s.requireAuth).Post("/submit", s.handleSubmit)
		r.Get("/{instanceId}", s.handleLeaderboard)
	})
}

func (s *Server) mountAchievements(r chi.Router) {
	r.Route("/achievements", func(r chi.Router) {
		r.With(s.requireAuth).Post("/update", s.handleAchievementsUpdate)
		r.Get("/{userId}", s.handleAchievements)
	})
}

func (s *Server) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	entries, err := s.repo.LoadLeaderboard(r.Context(), chi.URLParam(r, "instanceId"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"entries": entries})
}

func (s *Server) handleSubmit(w http.ResponseWriter, r *http.Request) {
	u, err := currentUser(r)
	if err != nil {
		http.Error(w, `{"error":"Unauthorized"}`, http.StatusUnauthorized)
		return
	}
	var req submitReq
	if err := s.decode(r, &req); err != nil {
		s.fail(w, r, err)
		return
	}

	// The server-side session is the trusted source for hint counts.
	hints := 0
	if req.HintsUsed != nil {
		hints = *req.HintsUsed
	}
	st, err := s.repo.LoadSession(r.Context(), req.InstanceID, u.ID)
	switch {
	case err == nil:
		hints = st.HintsUsed
	case !errors.Is(err, store.ErrNotFound):
		s.fail(w, r, err)
		return
	}

	rank, err := s.submitEntry(r.Context(), req.InstanceID, leaderboard.Entry{
		UserID:    u.ID,
		Username:  u.Username,
		Guesses:   req.Guesses,
		TimeMs:    req.TimeMs,
		HintsUsed: hints,
	})
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "rank": rank})
}

// submitEntry merges e into the instance leaderboard and returns the user's rank
// (0 when the entry fell off the board).
func (s *Server) submitEntry(ctx context.Context, instanceID string, e leaderboard.Entry) (int, error) {
	if e.Timestamp == 0 {
		e.Timestamp = time.Now().UnixMilli()
	}
	if err := s.validate.Struct(e); err != nil {
		return 0, errors.Join(errBadRequest, err)
	}
	entries, err := s.repo.LoadLeaderboard(ctx, instanceID)
	if err != nil {
		return 0, err
	}
	entries = leaderboard.Submit(entries, e, s.opts.LeaderboardLimit)
	if err := s.repo.SaveLeaderboard(ctx, instanceID, entries); err != nil {
		return 0, err
	}
	return leaderboard.Rank(entries, e.UserID), nil
}

func (s *Server) handleAchievements(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userId")
	rec, err := s.repo.LoadAchievements(r.Context(), userID)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if rec == nil {
		rec = &achievements.Record{UserID: userID}
	}
	writeJSON(w, http.StatusOK, achievementsView{
		UserID:           userID,
		Unlocked:         achievements.Details(rec.Unlocked),
		WinStreak:        rec.WinStreak,
		DayStreak:        rec.DayStreak,
		LastWinTimestamp: rec.LastWinTimestamp,
		TotalWins:        rec.TotalWins,
	})
}

func (s *Server) handleAchievementsUpdate(w http.ResponseWriter, r *http.Request) {
	u, err := currentUser(r)
	if err != nil {
		http.Error(w, `{"error":"Unauthorized"}`, http.StatusUnauthorized)
		return
	}
	var req updateReq
	if err := s.decode(r, &req); err != nil {
		s.fail(w, r, err)
		return
	}
	rows := make([]game.Row, len(req.Results))
	for i, row := range req.Results {
		rows[i] = game.Row(row)
	}
	unlocked, err := s.applyAchievements(r.Context(), u.ID, game.Outcome{
		Won:          req.Won,
		AttemptsUsed: req.Guesses,
		TimeMs:       req.TimeMs,
		Rows:         rows,
	})
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"newlyUnlocked": achievements.Details(unlocked)})
}

// applyAchievements runs one outcome through the achievement engine and persists
// the updated record.
func (s *Server) applyAchievements(ctx context.Context, userID string, out game.Outcome) ([]achievements.ID, error) {
	prior, err := s.repo.LoadAchievements(ctx, userID)
	if err != nil {
		return nil, err
	}
	rec, unlocked := s.ach.Evaluate(out, prior)
	rec.UserID = userID
	if err := s.repo.SaveAchievements(ctx, rec); err != nil {
		return nil, err
	}
	for _, id := range unlocked {
		s.metrics.AchievementsUnlocked.WithLabelValues(string(id)).Inc()
	}
	return unlocked, nil
}
