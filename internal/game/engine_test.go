package game

import (
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/robalobadob/wordle/apps/activity-server/internal/words"
)

// fixedRand always picks the n-th candidate (modulo the candidate count).
type fixedRand struct{ n int }

func (f fixedRand) IntN(n int) int { return f.n % n }

// testClock advances only when told to.
type testClock struct{ t time.Time }

func (c *testClock) Now() time.Time { return c.t }
func (c *testClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

var valid = []string{"crate", "piano", "apple", "zebra", "extra", "crank", "trace"}

// newTestEngine builds an engine whose every instance resolves to answer.
func newTestEngine(answer string) (*Engine, *testClock) {
	clock := &testClock{t: time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)}
	e := NewEngine(words.NewList([]string{answer}, valid))
	e.Selector = words.Selector{Hash: func(string) int32 { return 0 }}
	e.Hints = HintPicker{Rand: fixedRand{}}
	e.Clock = clock.Now
	return e, clock
}

func typeWord(t *testing.T, e *Engine, st *State, w string) {
	t.Helper()
	for _, r := range w {
		if !e.AddLetter(st, string(r)) {
			t.Fatalf("AddLetter(%q) rejected with input %q", r, st.CurrentInput)
		}
	}
}

func guess(t *testing.T, e *Engine, st *State, w string) GuessResult {
	t.Helper()
	typeWord(t, e, st, w)
	res, err := e.SubmitGuess(st)
	if err != nil {
		t.Fatalf("SubmitGuess(%q): %v", w, err)
	}
	return res
}

func cloneState(st *State) State {
	c := *st
	c.Guesses = append([]string(nil), st.Guesses...)
	c.Results = append([]Row(nil), st.Results...)
	return c
}

func TestNewStateStampsStart(t *testing.T) {
	e, clock := newTestEngine("crane")
	st := e.NewState("inst", "u1")
	if st.StartTime != clock.t.UnixMilli() {
		t.Fatalf("StartTime = %d, want %d", st.StartTime, clock.t.UnixMilli())
	}
	if st.Status() != "playing" {
		t.Fatalf("Status = %q, want playing", st.Status())
	}
}

func TestSubmitGuessWin(t *testing.T) {
	e, clock := newTestEngine("crane")
	st := e.NewState("inst", "u1")

	guess(t, e, st, "crate")
	clock.Advance(12 * time.Second)
	res := guess(t, e, st, "crane")

	if !res.Won || !res.GameOver || !st.Won || !st.GameOver {
		t.Fatalf("expected a win, got %+v / %+v", res, st)
	}
	out, ok := st.Outcome()
	if !ok {
		t.Fatal("Outcome should be available once the game is over")
	}
	if out.AttemptsUsed != 2 || out.TimeMs != 12000 || !out.Won {
		t.Fatalf("unexpected outcome %+v", out)
	}
	if st.CurrentInput != "" || st.HintUsedForCurrentTry {
		t.Fatal("input and hint flag should reset after a guess")
	}
}

func TestSixFailedGuessesLose(t *testing.T) {
	e, _ := newTestEngine("crane")
	st := e.NewState("inst", "u1")
	for i := 0; i < MaxAttempts; i++ {
		res := guess(t, e, st, "apple")
		if want := i == MaxAttempts-1; res.GameOver != want {
			t.Fatalf("guess %d: GameOver = %v, want %v", i+1, res.GameOver, want)
		}
	}
	if !st.GameOver || st.Won || st.Status() != "lost" {
		t.Fatalf("expected a loss, got %+v", st)
	}

	before := cloneState(st)
	if e.AddLetter(st, "a") {
		t.Fatal("AddLetter should be rejected after game over")
	}
	if e.RemoveLetter(st) {
		t.Fatal("RemoveLetter should be rejected after game over")
	}
	if _, err := e.SubmitGuess(st); !errors.Is(err, ErrGameOver) {
		t.Fatalf("7th SubmitGuess err = %v, want ErrGameOver", err)
	}
	if !reflect.DeepEqual(before, cloneState(st)) {
		t.Fatal("state mutated after game over")
	}
}

func TestSubmitGuessRejectsWithoutConsumingAttempt(t *testing.T) {
	e, _ := newTestEngine("crane")
	st := e.NewState("inst", "u1")

	typeWord(t, e, st, "cra")
	if _, err := e.SubmitGuess(st); !errors.Is(err, ErrIncompleteGuess) {
		t.Fatalf("short guess err = %v, want ErrIncompleteGuess", err)
	}
	typeWord(t, e, st, "zz")
	before := cloneState(st)
	if _, err := e.SubmitGuess(st); !errors.Is(err, ErrNotInWordList) {
		t.Fatalf("unknown word err = %v, want ErrNotInWordList", err)
	}
	if !reflect.DeepEqual(before, cloneState(st)) {
		t.Fatal("invalid guess mutated state")
	}
	if len(st.Guesses) != 0 {
		t.Fatalf("invalid guess consumed an attempt: %v", st.Guesses)
	}
}

func TestAddAndRemoveLetter(t *testing.T) {
	e, _ := newTestEngine("crane")
	st := e.NewState("inst", "u1")

	if e.AddLetter(st, "1") || e.AddLetter(st, "ab") {
		t.Fatal("non-letters should be ignored")
	}
	typeWord(t, e, st, "ABCDE")
	if st.CurrentInput != "abcde" {
		t.Fatalf("CurrentInput = %q, want lowercase abcde", st.CurrentInput)
	}
	if e.AddLetter(st, "f") {
		t.Fatal("AddLetter should stop at 5 letters")
	}
	for i := 0; i < 5; i++ {
		if !e.RemoveLetter(st) {
			t.Fatalf("RemoveLetter %d rejected", i)
		}
	}
	if e.RemoveLetter(st) {
		t.Fatal("RemoveLetter on empty input should be rejected")
	}
}

func TestHardModeLocksCorrectLetters(t *testing.T) {
	e, _ := newTestEngine("crane")
	st := e.NewState("inst", "u1")
	if !e.SetHardMode(st, true) {
		t.Fatal("SetHardMode should apply before the first guess")
	}

	guess(t, e, st, "crate")
	want := [WordLength]string{"c", "r", "a", "", "e"}
	if st.LockedLetters != want {
		t.Fatalf("LockedLetters = %v, want %v", st.LockedLetters, want)
	}

	if !e.AddLetter(st, "x") {
		t.Fatal("one free slot should accept a letter")
	}
	if e.AddLetter(st, "y") {
		t.Fatal("input should be capped at the free slot count")
	}
	e.RemoveLetter(st)
	res := guess(t, e, st, "n")
	if res.Guess != "crane" || !res.Won {
		t.Fatalf("assembled guess = %q, won=%v", res.Guess, res.Won)
	}
}

func TestHardModeLocksAreMonotonic(t *testing.T) {
	e, _ := newTestEngine("crane")
	st := e.NewState("inst", "u1")
	e.SetHardMode(st, true)

	guess(t, e, st, "crate")
	locked := st.LockedLetters
	res := guess(t, e, st, "t")
	if res.Guess != "crate" {
		t.Fatalf("assembled %q, want crate", res.Guess)
	}
	if st.LockedLetters != locked {
		t.Fatalf("locks changed from %v to %v", locked, st.LockedLetters)
	}

	guess(t, e, st, "n")
	if !st.Won {
		t.Fatalf("expected win after filling last slot, guesses %v", st.Guesses)
	}
	for i, l := range []string{"c", "r", "a", "n", "e"} {
		if st.LockedLetters[i] != l {
			t.Fatalf("slot %d = %q, want %q", i, st.LockedLetters[i], l)
		}
	}
}

func TestSetHardModeAfterGuessIsNoop(t *testing.T) {
	e, _ := newTestEngine("crane")
	st := e.NewState("inst", "u1")
	guess(t, e, st, "apple")
	if e.SetHardMode(st, true) || st.HardMode {
		t.Fatal("hard mode must not change once guesses exist")
	}
}

func TestSetHardModeResetsLocks(t *testing.T) {
	e, _ := newTestEngine("crane")
	st := e.NewState("inst", "u1")
	st.LockedLetters[2] = "a"
	e.SetHardMode(st, true)
	if st.LockedCount() != 0 {
		t.Fatalf("enabling hard mode should clear locks, got %v", st.LockedLetters)
	}
}

func TestGetHint(t *testing.T) {
	e, _ := newTestEngine("crane")
	st := e.NewState("inst", "u1")

	if _, err := e.GetHint(st); !errors.Is(err, ErrHintTooEarly) {
		t.Fatalf("hint before guesses err = %v, want ErrHintTooEarly", err)
	}
	guess(t, e, st, "crate") // c r a _ e correct
	guess(t, e, st, "apple")
	guess(t, e, st, "zebra")

	res, err := e.GetHint(st)
	if err != nil {
		t.Fatalf("GetHint: %v", err)
	}
	if !res.Applied || res.Position != 3 || res.Letter != "n" {
		t.Fatalf("hint = %+v, want n at 3", res)
	}
	if st.LockedLetters[3] != "n" || st.HintsUsed != 1 || !st.HintUsedForCurrentTry {
		t.Fatalf("hint not recorded: %+v", st)
	}

	before := cloneState(st)
	if _, err := e.GetHint(st); !errors.Is(err, ErrHintLimit) {
		t.Fatalf("second hint err = %v, want ErrHintLimit", err)
	}
	if !reflect.DeepEqual(before, cloneState(st)) {
		t.Fatal("rejected hint mutated state")
	}

	// The hinted slot is pre-filled for the next attempt.
	res2 := guess(t, e, st, "crae")
	if res2.Guess != "crane" {
		t.Fatalf("assembled %q, want crane", res2.Guess)
	}
}

func TestGetHintTruncatesOverflowingInput(t *testing.T) {
	e, _ := newTestEngine("crane")
	e.MinGuessesForHint = 0
	st := e.NewState("inst", "u1")
	typeWord(t, e, st, "abcde")
	if _, err := e.GetHint(st); err != nil {
		t.Fatalf("GetHint: %v", err)
	}
	if len(st.CurrentInput) != 4 {
		t.Fatalf("CurrentInput = %q, want 4 letters", st.CurrentInput)
	}
}

func TestGetHintNoneAvailable(t *testing.T) {
	e, _ := newTestEngine("crane")
	st := e.NewState("inst", "u1")
	guess(t, e, st, "crate") // positions 0,1,2,4 correct
	guess(t, e, st, "piano") // position 3 correct
	guess(t, e, st, "apple")

	before := cloneState(st)
	if _, err := e.GetHint(st); !errors.Is(err, ErrNoHints) {
		t.Fatalf("err = %v, want ErrNoHints", err)
	}
	if !reflect.DeepEqual(before, cloneState(st)) {
		t.Fatal("failed hint mutated state")
	}
}

func TestKeyboardSummary(t *testing.T) {
	st := &State{
		Guesses: []string{"trace", "extra"},
		Results: []Row{
			{Absent, Present, Present, Absent, Absent},
			{Present, Absent, Absent, Correct, Correct},
		},
	}
	got := KeyboardSummary(st)
	want := map[string]Verdict{
		"t": Absent,
		"r": Correct,
		"a": Correct,
		"c": Absent,
		"e": Present,
		"x": Absent,
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("KeyboardSummary = %v, want %v", got, want)
	}
}

func TestResetOnlyAfterGameOver(t *testing.T) {
	e, _ := newTestEngine("apple")
	st := e.NewState("i-1", "u1")
	st.HardMode = true
	guess(t, e, st, "crate")

	before := cloneState(st)
	if err := e.Reset(st); !errors.Is(err, ErrGameInProgress) {
		t.Fatalf("Reset mid-game err = %v, want ErrGameInProgress", err)
	}
	if !reflect.DeepEqual(cloneState(st), before) {
		t.Fatalf("rejected reset changed the record: %+v", st)
	}

	guess(t, e, st, "appl") // e is locked in slot 4
	if err := e.Reset(st); err != nil {
		t.Fatalf("Reset after win: %v", err)
	}
	if len(st.Guesses) != 0 || st.GameOver || st.Won || !st.HardMode || st.UserID != "u1" {
		t.Fatalf("reset state = %+v", st)
	}
}
