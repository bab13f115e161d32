// Package metrics holds the prometheus collectors of the service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Outcome label values.
const (
	OutcomeRain        = "rain"
	OutcomeNoRain      = "no_rain"
	OutcomeInvalid     = "invalid_request"
	OutcomeUnavailable = "weather_unavailable"
	OutcomeInference   = "inference_error"
	OutcomeError       = "error"
)

var (
	Predictions = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "rainfall",
		Name:      "predictions_total",
		Help:      "Prediction requests by outcome.",
	}, []string{"outcome"})

	PredictionDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "rainfall",
		Name:      "prediction_duration_seconds",
		Help:      "End-to-end prediction latency including the upstream weather call.",
		Buckets:   prometheus.DefBuckets,
	})

	RainProbability = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "rainfall",
		Name:      "probability",
		Help:      "Distribution of predicted rainfall probabilities.",
		Buckets:   prometheus.LinearBuckets(0.1, 0.1, 9),
	})

	WatchRuns = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "rainfall",
		Name:      "watch_runs_total",
		Help:      "Scheduled watch-location predictions by result.",
	}, []string{"result"})
)
