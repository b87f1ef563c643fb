package achievements

import (
	"reflect"
	"testing"
	"time"

	"github.com/robalobadob/wordle/apps/activity-server/internal/game"
)

var (
	flawless = []game.Row{{game.Present, game.Correct, game.Present, game.Correct, game.Correct}, {game.Correct, game.Correct, game.Correct, game.Correct, game.Correct}}
	withMiss = []game.Row{{game.Absent, game.Correct, game.Absent, game.Absent, game.Absent}, {game.Correct, game.Correct, game.Correct, game.Correct, game.Correct}}
)

func engineAt(t time.Time) *Engine {
	return &Engine{Now: func() time.Time { return t }, Location: time.UTC}
}

func win(attempts int, timeMs int64, rows []game.Row) game.Outcome {
	return game.Outcome{Won: true, AttemptsUsed: attempts, TimeMs: timeMs, Rows: rows}
}

var day1 = time.Date(2025, 3, 1, 20, 0, 0, 0, time.UTC)

func TestFirstWinUnlocksEverythingApplicable(t *testing.T) {
	rec, got := engineAt(day1).Evaluate(win(2, 12_000, flawless), nil)

	want := []ID{FirstWin, QuickSolver, PerfectGuess, FlawlessGame}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("unlocked = %v, want %v", got, want)
	}
	if rec.WinStreak != 1 || rec.TotalWins != 1 || rec.DayStreak != 1 {
		t.Fatalf("counters = %+v", rec)
	}
	if rec.LastWinTimestamp != day1.UnixMilli() {
		t.Fatalf("LastWinTimestamp = %d, want %d", rec.LastWinTimestamp, day1.UnixMilli())
	}
	if !reflect.DeepEqual(rec.Unlocked, want) {
		t.Fatalf("Unlocked = %v, want %v", rec.Unlocked, want)
	}
}

func TestSlowWinWithMissesUnlocksOnlyFirstWin(t *testing.T) {
	_, got := engineAt(day1).Evaluate(win(4, 95_000, withMiss), nil)
	if !reflect.DeepEqual(got, []ID{FirstWin}) {
		t.Fatalf("unlocked = %v, want [FIRST_WIN]", got)
	}
}

func TestLossResetsWinStreakOnly(t *testing.T) {
	prior := &Record{
		UserID:           "u1",
		Unlocked:         []ID{FirstWin, Streak3},
		WinStreak:        4,
		DayStreak:        3,
		LastWinTimestamp: day1.UnixMilli(),
		TotalWins:        9,
	}
	rec, got := engineAt(day1.Add(time.Hour)).Evaluate(game.Outcome{Won: false, AttemptsUsed: 6}, prior)

	if len(got) != 0 {
		t.Fatalf("a loss unlocked %v", got)
	}
	if rec.WinStreak != 0 {
		t.Fatalf("WinStreak = %d, want 0", rec.WinStreak)
	}
	if rec.DayStreak != 3 || rec.TotalWins != 9 || rec.LastWinTimestamp != day1.UnixMilli() {
		t.Fatalf("loss touched other counters: %+v", rec)
	}
	if !rec.Has(Streak3) {
		t.Fatal("STREAK_3 must stay unlocked after the streak breaks")
	}
	if prior.WinStreak != 4 {
		t.Fatal("prior record was modified")
	}
}

func TestStreakAchievements(t *testing.T) {
	var rec *Record
	var all []ID
	for i := 0; i < 5; i++ {
		next, got := engineAt(day1.AddDate(0, 0, i)).Evaluate(win(4, 60_000, withMiss), rec)
		rec = &next
		all = append(all, got...)
	}
	want := []ID{FirstWin, Streak3, Streak5}
	if !reflect.DeepEqual(all, want) {
		t.Fatalf("unlocked across games = %v, want %v", all, want)
	}
	if rec.WinStreak != 5 || rec.DayStreak != 5 {
		t.Fatalf("streaks = %d/%d, want 5/5", rec.WinStreak, rec.DayStreak)
	}
}

func TestDayStreak(t *testing.T) {
	base := &Record{WinStreak: 1, DayStreak: 2, TotalWins: 1, LastWinTimestamp: day1.UnixMilli(), Unlocked: []ID{FirstWin}}
	tests := []struct {
		name string
		at   time.Time
		want int
	}{
		{"same day", day1.Add(2 * time.Hour), 2},
		{"next day just after midnight", time.Date(2025, 3, 2, 0, 5, 0, 0, time.UTC), 3},
		{"next day late", time.Date(2025, 3, 2, 23, 59, 0, 0, time.UTC), 3},
		{"gap of two days", time.Date(2025, 3, 3, 8, 0, 0, 0, time.UTC), 1},
		{"month boundary", time.Date(2025, 3, 31, 8, 0, 0, 0, time.UTC), 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, _ := engineAt(tt.at).Evaluate(win(4, 60_000, withMiss), base)
			if rec.DayStreak != tt.want {
				t.Fatalf("DayStreak = %d, want %d", rec.DayStreak, tt.want)
			}
		})
	}
}

func TestDayStreakUsesConfiguredLocation(t *testing.T) {
	loc := time.FixedZone("UTC-5", -5*3600)
	// 03:00 UTC on Mar 2 is still Mar 1 in UTC-5.
	last := time.Date(2025, 3, 1, 15, 0, 0, 0, time.UTC)
	now := time.Date(2025, 3, 2, 3, 0, 0, 0, time.UTC)
	prior := &Record{DayStreak: 4, TotalWins: 3, LastWinTimestamp: last.UnixMilli()}

	e := &Engine{Now: func() time.Time { return now }, Location: loc}
	rec, _ := e.Evaluate(win(4, 60_000, withMiss), prior)
	if rec.DayStreak != 4 {
		t.Fatalf("DayStreak = %d, want 4 (same local day)", rec.DayStreak)
	}
}

func TestTwoWinsSameDayCountOnce(t *testing.T) {
	e := engineAt(day1)
	first, _ := e.Evaluate(win(4, 60_000, withMiss), nil)
	second, _ := engineAt(day1.Add(time.Hour)).Evaluate(win(4, 60_000, withMiss), &first)
	if second.DayStreak != 1 {
		t.Fatalf("DayStreak = %d, want 1", second.DayStreak)
	}
}

func TestFirstWinIsIdempotent(t *testing.T) {
	// A replayed submission against a record that already holds FIRST_WIN but whose
	// counters were never persisted still computes totalWins == 1.
	prior := &Record{Unlocked: []ID{FirstWin}}
	rec, got := engineAt(day1).Evaluate(win(4, 60_000, withMiss), prior)
	if len(got) != 0 {
		t.Fatalf("unlocked %v, want none", got)
	}
	n := 0
	for _, id := range rec.Unlocked {
		if id == FirstWin {
			n++
		}
	}
	if n != 1 {
		t.Fatalf("FIRST_WIN appears %d times in %v", n, rec.Unlocked)
	}
}

func TestDetails(t *testing.T) {
	got := Details([]ID{Streak5, "UNKNOWN", FirstWin})
	if len(got) != 2 || got[0].ID != Streak5 || got[1].ID != FirstWin {
		t.Fatalf("Details = %+v", got)
	}
	if got[0].Name == "" || got[0].Description == "" {
		t.Fatal("catalog entries should carry display text")
	}
}
