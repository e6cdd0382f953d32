// Package metrics registers the process-wide prometheus collectors
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// ExtractionsTotal counts measurement extraction attempts by outcome
	ExtractionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "pedecg",
		Name:      "extractions_total",
		Help:      "Measurement extraction attempts partitioned by outcome.",
	}, []string{"outcome"})

	// DelineationFailures counts signals where no lead yielded enough beats
	DelineationFailures = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "pedecg",
		Name:      "delineation_failures_total",
		Help:      "Signals rejected because beat delineation failed on every lead.",
	})

	// InterpretDuration observes end-to-end interpretation latency
	InterpretDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "pedecg",
		Name:      "interpret_duration_seconds",
		Help:      "Wall time for a full interpret call (extract, classify, vectorize).",
		Buckets:   prometheus.ExponentialBuckets(0.001, 2, 12),
	})

	// PredictionsTotal counts rule engine evaluations by primary label
	PredictionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "pedecg",
		Name:      "predictions_total",
		Help:      "Rule engine evaluations partitioned by abnormality bucket.",
	}, []string{"bucket"})

	// CacheHits counts interpretation cache lookups by result
	CacheHits = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "pedecg",
		Name:      "cache_lookups_total",
		Help:      "Interpretation cache lookups partitioned by result.",
	}, []string{"result"})

	// BatchRowsProcessed counts records handled by the batch vectorizer
	BatchRowsProcessed = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "pedecg",
		Name:      "batch_rows_processed_total",
		Help:      "Records processed by the batch vectorizer partitioned by outcome.",
	}, []string{"outcome"})
)

// Outcome label values shared by the counters above
const (
	OutcomeOK     = "ok"
	OutcomeFailed = "failed"
	ResultHit     = "hit"
	ResultMiss    = "miss"
)

// ObservePrediction picks the bucket label for a prediction score
func ObservePrediction(abnormalScore float64) {
	bucket := "normal"
	switch {
	case abnormalScore >= 0.8:
		bucket = "high"
	case abnormalScore >= 0.5:
		bucket = "moderate"
	case abnormalScore > 0:
		bucket = "low"
	}
	PredictionsTotal.WithLabelValues(bucket).Inc()
}

// Handler serves the prometheus scrape endpoint
func Handler() http.Handler { return promhttp.Handler() }
