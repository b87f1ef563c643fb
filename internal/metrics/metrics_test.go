package metrics

import (
	"net/http/httptest"
	"strings"
	"testing"
)

func TestHandlerExposesCounters(t *testing.T) {
	m := New("wordle")
	m.GuessesScored.Inc()
	m.GameFinished(true)
	m.GameFinished(false)
	m.GuessesRejected.WithLabelValues("not_in_list").Inc()

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body := rec.Body.String()

	for _, want := range []string{
		"wordle_guesses_scored_total 1",
		`wordle_games_finished_total{result="won"} 1`,
		`wordle_games_finished_total{result="lost"} 1`,
		`wordle_guesses_rejected_total{reason="not_in_list"} 1`,
		"go_goroutines",
	} {
		if !strings.Contains(body, want) {
			t.Errorf("metrics output missing %q", want)
		}
	}
}

func TestRegistriesAreIndependent(t *testing.T) {
	// Two instances must not collide on registration.
	New("a")
	New("a")
}
