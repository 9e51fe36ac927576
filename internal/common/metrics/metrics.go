// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ClassificationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "decision_classifications_total",
			Help: "Total number of intent classifications by intent and detection method",
		},
		[]string{"intent", "method"},
	)

	LLMCallsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "decision_llm_calls_total",
			Help: "Total number of LLM collaborator calls by kind and outcome",
		},
		[]string{"kind", "status"},
	)

	ChainValidationFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "decision_chain_validation_failures_total",
			Help: "Total number of contract chains collapsed to CLARIFY by rule",
		},
		[]string{"rule"},
	)

	ChainsBuilt = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "decision_chains_built_total",
			Help: "Total number of contract chains built by selection method",
		},
		[]string{"selection_method"},
	)

	DecisionDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "decision_duration_seconds",
			Help: "Duration of decision stages in seconds",
		},
		[]string{"stage"},
	)

	EntitySnapshotSize = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "decision_entity_snapshot_companies",
			Help: "Number of companies in the current entity registry snapshot",
		},
	)
)
