// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	QueriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "router_queries_total",
			Help: "Total number of queries routed, by topic",
		},
		[]string{"topic"},
	)

	DecisionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "router_decisions_total",
			Help: "Total number of routing decisions, by path",
		},
		[]string{"path"},
	)

	AdapterRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "router_adapter_requests_total",
			Help: "Total number of source adapter queries",
		},
		[]string{"source"},
	)

	AdapterFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "router_adapter_failures_total",
			Help: "Total number of source adapter failures",
		},
		[]string{"source", "error_code"},
	)

	AdapterDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "router_adapter_duration_seconds",
			Help: "Duration of source adapter queries in seconds",
		},
		[]string{"source"},
	)

	CorrectionsApplied = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "router_corrections_applied_total",
			Help: "Total number of learned corrections applied to answers",
		},
		[]string{"fact_shape"},
	)

	FeedbackReceived = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "router_feedback_received_total",
			Help: "Total number of feedback submissions, by rating",
		},
		[]string{"rating"},
	)

	AnswerCacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "router_answer_cache_total",
			Help: "Answer cache lookups, by outcome",
		},
		[]string{"outcome"},
	)
)
