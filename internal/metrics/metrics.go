// Package metrics holds the engine's Prometheus collectors.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Fusion and cache metrics
var (
	// CacheLookups tracks sentiment cache lookups by result (hit/miss/error)
	CacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sentio_cache_lookups_total",
			Help: "Sentiment cache lookups by result",
		},
		[]string{"result"},
	)

	// AnalyzeDuration tracks end-to-end fusion latency, labelled by cached (true/false)
	AnalyzeDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "sentio_analyze_duration_seconds",
			Help:    "Fusion analyze duration in seconds",
			Buckets: []float64{.0005, .001, .005, .01, .05, .1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"cached"},
	)

	// ScorerFailures counts scorer calls that produced no usable score
	ScorerFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sentio_scorer_failures_total",
			Help: "Scorer failures by scorer (lexicon/learned)",
		},
		[]string{"scorer"},
	)

	// FusionTotalFailures counts analyses where both scorers failed
	FusionTotalFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "sentio_fusion_total_failures_total",
			Help: "Analyses that degraded to a zero-confidence neutral item",
		},
	)
)

// Learned scorer metrics
var (
	// LearnedScorerDegraded is 1 once the learned model is permanently degraded
	LearnedScorerDegraded = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "sentio_learned_scorer_degraded",
			Help: "1 when the learned scorer is permanently degraded",
		},
	)

	// LearnedFallbacks counts calls answered by the fallback heuristic, by reason (degraded/call_error)
	LearnedFallbacks = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sentio_learned_fallbacks_total",
			Help: "Learned scorer calls answered by the fallback heuristic",
		},
		[]string{"reason"},
	)
)

// Batch and alert metrics
var (
	// BatchItems counts processed batch items by outcome (scored/failed)
	BatchItems = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sentio_batch_items_total",
			Help: "Batch items by outcome",
		},
		[]string{"outcome"},
	)

	// AlertsRaised counts raised alerts by type and priority
	AlertsRaised = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sentio_alerts_raised_total",
			Help: "Alerts raised by type and priority",
		},
		[]string{"type", "priority"},
	)

	// AlertPublishErrors counts failed alert publications
	AlertPublishErrors = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "sentio_alert_publish_errors_total",
			Help: "Alert events that could not be published",
		},
	)
)
