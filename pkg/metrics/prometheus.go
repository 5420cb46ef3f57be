package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"MarketPulse/internal/domain/models"
)

// Recorder implements domain repository.Metrics using Prometheus.
type Recorder struct {
	patternsTotal        *prometheus.CounterVec
	skipsTotal           *prometheus.CounterVec
	errorsTotal          *prometheus.CounterVec
	recommendationsTotal *prometheus.CounterVec
	latency              *prometheus.HistogramVec
}

// New creates a new Prometheus metrics recorder.
func New() *Recorder {
	return &Recorder{
		patternsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "marketpulse_patterns_total",
				Help: "Correlation patterns discovered or updated",
			},
			[]string{"action", "category"},
		),
		skipsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "marketpulse_skips_total",
				Help: "Items skipped for missing data",
			},
			[]string{"reason"},
		),
		errorsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "marketpulse_errors_total",
				Help: "Total number of errors encountered",
			},
			[]string{"type"},
		),
		recommendationsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "marketpulse_recommendations_total",
				Help: "Recommendations generated by action",
			},
			[]string{"symbol", "action"},
		),
		latency: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "marketpulse_operation_duration_seconds",
				Help:    "Duration of engine operations in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
	}
}

// RecordPattern records a pattern upsert outcome.
func (r *Recorder) RecordPattern(action string, category models.EventCategory) {
	r.patternsTotal.WithLabelValues(action, string(category)).Inc()
}

// RecordSkip records a skipped item.
func (r *Recorder) RecordSkip(reason string) {
	r.skipsTotal.WithLabelValues(reason).Inc()
}

// RecordError records an error occurrence.
func (r *Recorder) RecordError(kind string) {
	r.errorsTotal.WithLabelValues(kind).Inc()
}

// RecordRecommendation records a generated recommendation.
func (r *Recorder) RecordRecommendation(symbol string, action models.Action) {
	r.recommendationsTotal.WithLabelValues(symbol, string(action)).Inc()
}

// RecordLatency records operation latency in seconds.
func (r *Recorder) RecordLatency(op string, seconds float64) {
	r.latency.WithLabelValues(op).Observe(seconds)
}
