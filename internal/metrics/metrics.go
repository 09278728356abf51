// Package metrics holds the Prometheus collectors for the service. They
// register with the default registry and are served on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	QuizzesStarted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "quiz_sessions_started_total",
			Help: "Quiz sessions started, by catalog version and owner kind.",
		},
		[]string{"catalog", "owner"}, // owner: anonymous/user
	)

	AnswersSaved = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "quiz_answers_saved_total",
			Help: "Answer writes, by outcome.",
		},
		[]string{"status"}, // status: ok/invalid/conflict/error
	)

	QuizzesCompleted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "quiz_sessions_completed_total",
			Help: "Quiz sessions that reached completion.",
		},
		[]string{"catalog"},
	)

	RateLimited = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "quiz_rate_limited_total",
			Help: "Requests rejected by the rate limiter.",
		},
		[]string{"action"},
	)

	MatchDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "program_match_duration_seconds",
			Help:    "Time spent running the program matcher.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"status"}, // status: success/failure
	)

	ProgramsEvaluated = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "program_match_candidates",
			Help:    "Candidate programs left after filtering, per match.",
			Buckets: []float64{0, 1, 3, 10, 25, 50, 100, 250},
		},
	)

	JobsProcessed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "result_jobs_processed_total",
			Help: "Result pipeline jobs, by outcome.",
		},
		[]string{"status"}, // status: ready/retry/failed
	)

	JobsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "result_jobs_in_flight",
			Help: "Result pipeline jobs currently running.",
		},
	)
)

// MatchStatus is the label value for a matcher outcome.
func MatchStatus(success bool) string {
	if success {
		return "success"
	}
	return "failure"
}
