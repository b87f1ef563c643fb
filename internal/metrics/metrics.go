// internal/metrics/metrics.go
//
// Prometheus instrumentation for the activity server.

package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Metrics struct {
	GuessesScored        prometheus.Counter
	GuessesRejected      *prometheus.CounterVec
	GamesFinished        *prometheus.CounterVec
	HintsIssued          prometheus.Counter
	AchievementsUnlocked *prometheus.CounterVec
	StorageErrors        prometheus.Counter

	registry *prometheus.Registry
}

// New creates the collectors on a fresh registry.
func New(namespace string) *Metrics {
	m := &Metrics{
		GuessesScored: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "guesses_scored_total",
			Help:      "Guesses accepted and scored",
		}),
		GuessesRejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "guesses_rejected_total",
			Help:      "Guesses rejected before scoring",
		}, []string{"reason"}),
		GamesFinished: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "games_finished_total",
			Help:      "Sessions that reached a terminal state",
		}, []string{"result"}),
		HintsIssued: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "hints_issued_total",
			Help:      "Hints revealed to players",
		}),
		AchievementsUnlocked: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "achievements_unlocked_total",
			Help:      "Achievements unlocked, by id",
		}, []string{"id"}),
		StorageErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "storage_errors_total",
			Help:      "Failed reads or writes against the key-value store",
		}),
		registry: prometheus.NewRegistry(),
	}

	m.registry.MustRegister(
		m.GuessesScored,
		m.GuessesRejected,
		m.GamesFinished,
		m.HintsIssued,
		m.AchievementsUnlocked,
		m.StorageErrors,
		collectors.NewGoCollector(),
	)
	return m
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// GameFinished records a terminal session.
func (m *Metrics) GameFinished(won bool) {
	result := "lost"
	if won {
		result = "won"
	}
	m.GamesFinished.WithLabelValues(result).Inc()
}
