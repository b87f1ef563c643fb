// internal/game/types.go
//
// Core type definitions for the game engine.
// Defines:
//   - Verdict: per-letter result of a guess (correct/present/absent).
//   - Row: one verdict per letter of a submitted guess.
//   - State: the persisted per-player, per-instance session record.
//   - Outcome: the summary handed to achievements and the leaderboard.

package game

import "github.com/robalobadob/wordle/apps/activity-server/internal/words"

// Verdict represents the evaluation result for a single letter in a guess.
// Possible values:
//   - "correct": letter is in the answer at this position.
//   - "present": letter is in the answer at another position.
//   - "absent":  letter has no unmatched occurrence left in the answer.
type Verdict string

const (
	Correct Verdict = "correct"
	Present Verdict = "present"
	Absent  Verdict = "absent"
)

// rank orders verdicts for the keyboard summary.
func (v Verdict) rank() int {
	switch v {
	case Correct:
		return 3
	case Present:
		return 2
	case Absent:
		return 1
	}
	return 0
}

// Row is the verdict row produced for one submitted guess.
type Row []Verdict

// Solved reports whether every verdict in the row is Correct.
func (r Row) Solved() bool {
	if len(r) == 0 {
		return false
	}
	for _, v := range r {
		if v != Correct {
			return false
		}
	}
	return true
}

const (
	// MaxAttempts is the number of guesses allowed per session.
	MaxAttempts = 6
	// WordLength mirrors words.WordLength for callers that only import game.
	WordLength = words.WordLength
)

// State holds one player's session inside one instance.
// The secret word is never part of the record; it is recomputed from InstanceID.
type State struct {
	InstanceID            string             `json:"instanceId"`
	UserID                string             `json:"userId"`
	Guesses               []string           `json:"guesses"`
	Results               []Row              `json:"results"`
	CurrentInput          string             `json:"currentInput"`
	HardMode              bool               `json:"hardMode"`
	LockedLetters         [WordLength]string `json:"lockedLetters"`
	HintsUsed             int                `json:"hintsUsed"`
	HintUsedForCurrentTry bool               `json:"hintUsedForCurrentTry"`
	GameOver              bool               `json:"gameOver"`
	Won                   bool               `json:"won"`
	StartTime             int64              `json:"startTime"` // unix ms
	EndTime               int64              `json:"endTime,omitempty"`
}

// LockedCount returns the number of pinned positions.
func (s *State) LockedCount() int {
	n := 0
	for _, l := range s.LockedLetters {
		if l != "" {
			n++
		}
	}
	return n
}

// Status reports a coarse string representation of the session.
func (s *State) Status() string {
	if s.GameOver {
		if s.Won {
			return "won"
		}
		return "lost"
	}
	return "playing"
}

// Outcome summarizes a finished session.
type Outcome struct {
	Won          bool  `json:"won"`
	AttemptsUsed int   `json:"guesses"`
	TimeMs       int64 `json:"timeMs"`
	HintsUsed    int   `json:"hintsUsed"`
	Rows         []Row `json:"results"`
}

// Outcome returns the session summary. ok is false while the game is still running.
func (s *State) Outcome() (out Outcome, ok bool) {
	if !s.GameOver {
		return Outcome{}, false
	}
	elapsed := s.EndTime - s.StartTime
	if elapsed < 0 {
		elapsed = 0
	}
	return Outcome{
		Won:          s.Won,
		AttemptsUsed: len(s.Guesses),
		TimeMs:       elapsed,
		HintsUsed:    s.HintsUsed,
		Rows:         s.Results,
	}, true
}
