package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
)

// GameMetrics tracks rounds and guesses.
type GameMetrics struct {
	Rounds          *prometheus.CounterVec
	Guesses         *prometheus.CounterVec
	DistractorDraws prometheus.Histogram
	registry        *prometheus.Registry
}

// NewGameMetrics creates and registers game metrics.
func NewGameMetrics(registry *prometheus.Registry) (*GameMetrics, error) {
	m := &GameMetrics{registry: registry}

	m.Rounds = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "game_rounds_total",
		Help: "Total number of rounds generated by result.",
	}, []string{"result"})

	m.Guesses = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "game_guesses_total",
		Help: "Total number of checked guesses by outcome.",
	}, []string{"outcome"}) // correct, wrong, error

	m.DistractorDraws = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "game_distractor_draws",
		Help:    "Number of random draws needed to collect the distractors of a round.",
		Buckets: []float64{3, 4, 5, 6, 8, 12, 20, 50, 100, 200},
	})

	if err := registry.Register(m); err != nil {
		return nil, fmt.Errorf("failed to register game metrics: %w", err)
	}
	return m, nil
}

// RecordRound counts a generated round and the draws it took.
func (m *GameMetrics) RecordRound(draws int, err error) {
	if m == nil {
		return
	}
	if err != nil {
		m.Rounds.WithLabelValues(ResultError).Inc()
		return
	}
	m.Rounds.WithLabelValues(ResultSuccess).Inc()
	m.DistractorDraws.Observe(float64(draws))
}

// RecordGuess counts a guess outcome: "correct", "wrong" or "error".
func (m *GameMetrics) RecordGuess(outcome string) {
	if m == nil {
		return
	}
	m.Guesses.WithLabelValues(outcome).Inc()
}

// Collect implements the prometheus.Collector interface.
func (m *GameMetrics) Collect(ch chan<- prometheus.Metric) {
	m.Rounds.Collect(ch)
	m.Guesses.Collect(ch)
	ch <- m.DistractorDraws
}

// Describe implements the prometheus.Collector interface.
func (m *GameMetrics) Describe(ch chan<- *prometheus.Desc) {
	m.Rounds.Describe(ch)
	m.Guesses.Describe(ch)
	ch <- m.DistractorDraws.Desc()
}
