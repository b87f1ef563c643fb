// internal/achievements/achievements.go
//
// Per-user achievement and streak bookkeeping.
//
// Evaluate takes a finished game's outcome and the user's previous record and returns
// the next record plus the achievements unlocked by that game. It performs no I/O;
// the store package persists records under achievements:{userId}.
//
// Unlocks are permanent: breaking a streak resets the counter but never removes an
// achievement already earned.

package achievements

import (
	"slices"
	"time"

	"github.com/robalobadob/wordle/apps/activity-server/internal/game"
)

// ID identifies an achievement.
type ID string

const (
	FirstWin     ID = "FIRST_WIN"
	Streak3      ID = "STREAK_3"
	Streak5      ID = "STREAK_5"
	QuickSolver  ID = "QUICK_SOLVER"
	PerfectGuess ID = "PERFECT_GUESS"
	FlawlessGame ID = "FLAWLESS_GAME"
)

// QuickSolveLimit is the elapsed time under which a win unlocks QUICK_SOLVER.
const QuickSolveLimit = 30 * time.Second

// Record is the persisted per-user achievement state.
type Record struct {
	UserID           string `json:"userId"`
	Unlocked         []ID   `json:"unlocked"`
	WinStreak        int    `json:"winStreak"`
	DayStreak        int    `json:"dayStreak"`
	LastWinTimestamp int64  `json:"lastWinTimestamp"` // unix ms, 0 = never
	TotalWins        int    `json:"totalWins"`
}

// Has reports whether id is already unlocked.
func (r *Record) Has(id ID) bool { return slices.Contains(r.Unlocked, id) }

// Engine evaluates outcomes against records.
// Calendar days are computed in Location (UTC when nil).
type Engine struct {
	Now      func() time.Time
	Location *time.Location
}

// NewEngine returns an engine using the wall clock and loc.
func NewEngine(loc *time.Location) *Engine {
	return &Engine{Now: time.Now, Location: loc}
}

// Evaluate applies one finished game to prior (nil for a user with no record yet).
// prior is never modified.
//
// On a loss only the win streak resets. On a win the counters and day streak are
// updated first, then each achievement is checked independently in a fixed order.
// The returned slice holds only the IDs unlocked by this call.
func (e *Engine) Evaluate(out game.Outcome, prior *Record) (Record, []ID) {
	var rec Record
	if prior != nil {
		rec = *prior
		rec.Unlocked = slices.Clone(prior.Unlocked)
	}
	if rec.Unlocked == nil {
		rec.Unlocked = []ID{}
	}

	if !out.Won {
		rec.WinStreak = 0
		return rec, []ID{}
	}

	now := e.now()
	rec.WinStreak++
	rec.TotalWins++

	if rec.LastWinTimestamp > 0 {
		last := time.UnixMilli(rec.LastWinTimestamp)
		switch {
		case e.consecutiveDays(last, now):
			rec.DayStreak++
		case !e.sameDay(last, now):
			rec.DayStreak = 1
		}
	} else {
		rec.DayStreak = 1
	}
	rec.LastWinTimestamp = now.UnixMilli()

	checks := []struct {
		id ID
		ok bool
	}{
		{FirstWin, rec.TotalWins == 1},
		{Streak3, rec.WinStreak >= 3},
		{Streak5, rec.WinStreak >= 5},
		{QuickSolver, out.TimeMs < QuickSolveLimit.Milliseconds()},
		{PerfectGuess, out.AttemptsUsed == 2},
		{FlawlessGame, !hasAbsent(out.Rows)},
	}
	unlocked := []ID{}
	for _, c := range checks {
		if c.ok && !rec.Has(c.id) {
			unlocked = append(unlocked, c.id)
			rec.Unlocked = append(rec.Unlocked, c.id)
		}
	}
	return rec, unlocked
}

func (e *Engine) now() time.Time {
	if e.Now == nil {
		return time.Now()
	}
	return e.Now()
}

func (e *Engine) day(t time.Time) time.Time {
	loc := e.Location
	if loc == nil {
		loc = time.UTC
	}
	y, m, d := t.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func (e *Engine) sameDay(a, b time.Time) bool {
	return e.day(a).Equal(e.day(b))
}

// consecutiveDays reports whether b falls on the calendar day after a.
func (e *Engine) consecutiveDays(a, b time.Time) bool {
	return e.day(a).AddDate(0, 0, 1).Equal(e.day(b))
}

func hasAbsent(rows []game.Row) bool {
	for _, row := range rows {
		if slices.Contains(row, game.Absent) {
			return true
		}
	}
	return false
}
