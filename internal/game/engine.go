// internal/game/engine.go
//
// Game engine for per-player sessions inside an instance.
// Responsibilities:
//   - Resolve the instance's secret word through the deterministic selector.
//   - Apply keyboard input, hard-mode toggles, guesses and hints to a State record.
//   - Track state transitions: playing → won/lost.
//
// Notes:
//   - The engine holds no per-session data. Every operation receives the current
//     record and mutates it only when it succeeds, so callers can load a record from
//     storage, apply one operation and write it back.
//   - Randomness (hints) and time are injected so tests can pin both.
package game

import (
	"errors"
	"strings"
	"time"

	"github.com/robalobadob/wordle/apps/activity-server/internal/words"
)

// DefaultMinGuessesForHint is how many guesses a player must make before hints unlock.
const DefaultMinGuessesForHint = 3

var (
	ErrGameOver        = errors.New("game finished")
	ErrGameInProgress  = errors.New("game still in progress")
	ErrIncompleteGuess = errors.New("guess must have 5 letters")
	ErrNotInWordList   = errors.New("not a valid word")
	ErrHintLimit       = errors.New("only one hint per attempt")
	ErrHintTooEarly    = errors.New("hints unlock after more guesses")
	ErrNoHints         = errors.New("no hints available")
	ErrNoWords         = errors.New("no answer words loaded")
)

// WordSource is the read-only word store the engine scores against.
// *words.List satisfies it.
type WordSource interface {
	Select(sel words.Selector, instanceID string) (int, string)
	IsAllowed(w string) bool
}

// Engine applies game rules to session records.
type Engine struct {
	Words             WordSource
	Selector          words.Selector
	Hints             HintPicker
	Clock             func() time.Time
	MinGuessesForHint int
}

// NewEngine returns an engine with the default selector, hint randomness and clock.
func NewEngine(ws WordSource) *Engine {
	return &Engine{
		Words:             ws,
		Selector:          words.DefaultSelector,
		Clock:             time.Now,
		MinGuessesForHint: DefaultMinGuessesForHint,
	}
}

func (e *Engine) now() int64 {
	if e.Clock == nil {
		return time.Now().UnixMilli()
	}
	return e.Clock().UnixMilli()
}

// Target returns the secret word for an instance.
func (e *Engine) Target(instanceID string) (string, error) {
	_, w := e.Words.Select(e.Selector, instanceID)
	if w == "" {
		return "", ErrNoWords
	}
	return w, nil
}

// NewState creates an empty session and stamps its start time.
func (e *Engine) NewState(instanceID, userID string) *State {
	return &State{
		InstanceID: instanceID,
		UserID:     userID,
		Guesses:    []string{},
		Results:    []Row{},
		StartTime:  e.now(),
	}
}

// SetHardMode toggles hard mode. It is a silent no-op once a guess exists.
// Enabling clears any locked letters. Reports whether the record changed.
func (e *Engine) SetHardMode(st *State, on bool) bool {
	if len(st.Guesses) > 0 || st.GameOver || st.HardMode == on {
		return false
	}
	st.HardMode = on
	if on {
		st.LockedLetters = [WordLength]string{}
	}
	return true
}

// AddLetter appends one letter to the in-progress attempt.
// Non-letters and input beyond the free (unlocked) slots are ignored.
func (e *Engine) AddLetter(st *State, letter string) bool {
	letter = strings.ToLower(strings.TrimSpace(letter))
	if st.GameOver || len(letter) != 1 || !isAlpha(letter) {
		return false
	}
	if len(st.CurrentInput) >= WordLength-st.LockedCount() {
		return false
	}
	st.CurrentInput += letter
	return true
}

// RemoveLetter drops the last typed letter.
func (e *Engine) RemoveLetter(st *State) bool {
	if st.GameOver || st.CurrentInput == "" {
		return false
	}
	st.CurrentInput = st.CurrentInput[:len(st.CurrentInput)-1]
	return true
}

// Reset starts a new attempt for the same instance and player once the current one
// is finished. The hard-mode preference carries over.
func (e *Engine) Reset(st *State) error {
	if !st.GameOver {
		return ErrGameInProgress
	}
	fresh := e.NewState(st.InstanceID, st.UserID)
	fresh.HardMode = st.HardMode
	*st = *fresh
	return nil
}

// GuessResult is returned by a successful SubmitGuess.
type GuessResult struct {
	Guess    string `json:"guess"`
	Row      Row    `json:"result"`
	Won      bool   `json:"correct"`
	GameOver bool   `json:"gameOver"`
}

// SubmitGuess assembles locked letters and typed input into a word, validates it and
// scores it against the instance's target.
//
// Validation rules (all leave the record untouched):
//   - Game must not be finished.
//   - The assembled word must have exactly WordLength letters.
//   - The word must be in the valid list.
//
// State transitions:
//   - Hard mode pins every Correct letter for the rest of the session.
//   - An all-Correct row wins; otherwise the game is lost after MaxAttempts guesses.
func (e *Engine) SubmitGuess(st *State) (GuessResult, error) {
	if st.GameOver {
		return GuessResult{}, ErrGameOver
	}
	guess, ok := assemble(st.LockedLetters, st.CurrentInput)
	if !ok {
		return GuessResult{}, ErrIncompleteGuess
	}
	if !isAlpha(guess) || !e.Words.IsAllowed(guess) {
		return GuessResult{}, ErrNotInWordList
	}
	target, err := e.Target(st.InstanceID)
	if err != nil {
		return GuessResult{}, err
	}

	row := Score(guess, target)
	st.Guesses = append(st.Guesses, guess)
	st.Results = append(st.Results, row)

	if st.HardMode {
		for i, v := range row {
			if v == Correct && st.LockedLetters[i] == "" {
				st.LockedLetters[i] = string(guess[i])
			}
		}
	}

	st.Won = guess == target
	st.GameOver = st.Won || len(st.Guesses) >= MaxAttempts
	if st.GameOver {
		st.EndTime = e.now()
	}
	st.CurrentInput = ""
	st.HintUsedForCurrentTry = false

	return GuessResult{Guess: guess, Row: row, Won: st.Won, GameOver: st.GameOver}, nil
}

// assemble interleaves locked letters into their slots and input into the rest.
// ok is false unless the input fills the free slots exactly.
func assemble(locked [WordLength]string, input string) (string, bool) {
	var b strings.Builder
	j := 0
	for i := 0; i < WordLength; i++ {
		if locked[i] != "" {
			b.WriteString(locked[i])
			continue
		}
		if j >= len(input) {
			return "", false
		}
		b.WriteByte(input[j])
		j++
	}
	if j != len(input) {
		return "", false
	}
	return b.String(), true
}

// HintResult reports a revealed letter. Applied is false when the revealed slot was
// already locked, in which case nothing is counted.
type HintResult struct {
	Hint
	Applied bool `json:"applied"`
}

// GetHint reveals one not-yet-confirmed letter and pins it into its slot.
func (e *Engine) GetHint(st *State) (HintResult, error) {
	if st.GameOver {
		return HintResult{}, ErrGameOver
	}
	if st.HintUsedForCurrentTry {
		return HintResult{}, ErrHintLimit
	}
	if len(st.Guesses) < e.MinGuessesForHint {
		return HintResult{}, ErrHintTooEarly
	}
	target, err := e.Target(st.InstanceID)
	if err != nil {
		return HintResult{}, err
	}
	h, err := e.Hints.Pick(target, st.Results)
	if err != nil {
		return HintResult{}, err
	}
	if st.LockedLetters[h.Position] != "" {
		return HintResult{Hint: h}, nil
	}

	// A pinned slot is no longer typed, so drop overflowing input.
	st.LockedLetters[h.Position] = h.Letter
	if free := WordLength - st.LockedCount(); len(st.CurrentInput) > free {
		st.CurrentInput = st.CurrentInput[:free]
	}
	st.HintsUsed++
	st.HintUsedForCurrentTry = true
	return HintResult{Hint: h, Applied: true}, nil
}

// KeyboardSummary returns the best known verdict for every guessed letter,
// with Correct over Present over Absent.
func KeyboardSummary(st *State) map[string]Verdict {
	out := make(map[string]Verdict)
	for i, guess := range st.Guesses {
		if i >= len(st.Results) {
			break
		}
		row := st.Results[i]
		for j := 0; j < len(guess) && j < len(row); j++ {
			l := string(guess[j])
			if row[j].rank() > out[l].rank() {
				out[l] = row[j]
			}
		}
	}
	return out
}
