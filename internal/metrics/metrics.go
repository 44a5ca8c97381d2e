// Package metrics holds the Prometheus collectors for the extraction pipeline.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	StrategyAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recipe_strategy_attempts_total",
			Help: "Extraction strategy attempts by method and outcome",
		},
		[]string{"method", "outcome"},
	)

	Extractions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recipe_extractions_total",
			Help: "Extraction requests by final HTTP status",
		},
		[]string{"status"},
	)

	FetchDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "recipe_fetch_duration_seconds",
			Help:    "Page fetch duration in seconds",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 20, 30},
		},
		[]string{"renderer", "result"},
	)

	CacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recipe_cache_lookups_total",
			Help: "Extraction cache lookups by result",
		},
		[]string{"result"},
	)

	BatchJobs = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recipe_batch_jobs_total",
			Help: "Batch extraction jobs processed by the worker pool",
		},
		[]string{"status"},
	)
)

// ObserveFetch records one page fetch.
func ObserveFetch(renderer string, started time.Time, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	FetchDuration.WithLabelValues(renderer, result).Observe(time.Since(started).Seconds())
}

// Handler serves the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
