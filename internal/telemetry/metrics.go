// Package telemetry exposes prometheus instrumentation for the orchestration
// pipeline. A nil *Metrics is a valid no-op receiver so callers never need to
// guard instrumentation sites.
package telemetry

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the pipeline collectors.
type Metrics struct {
	pipelineRuns  *prometheus.CounterVec
	stageDuration *prometheus.HistogramVec
	agentFailures *prometheus.CounterVec
	pagesFetched  prometheus.Counter
	conflicts     prometheus.Counter
}

// NewMetrics registers the pipeline collectors with the given registerer.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		pipelineRuns: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "advisor_pipeline_runs_total",
			Help: "Orchestration pipeline runs by outcome.",
		}, []string{"outcome"}),
		stageDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "advisor_stage_duration_seconds",
			Help:    "Wall-clock duration of each pipeline stage.",
			Buckets: prometheus.DefBuckets,
		}, []string{"stage"}),
		agentFailures: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "advisor_agent_failures_total",
			Help: "Agent invocations that ended in an error placeholder.",
		}, []string{"agent"}),
		pagesFetched: factory.NewCounter(prometheus.CounterOpts{
			Name: "advisor_pages_fetched_total",
			Help: "Evidence pages successfully fetched and extracted.",
		}),
		conflicts: factory.NewCounter(prometheus.CounterOpts{
			Name: "advisor_conflicts_total",
			Help: "Cross-agent conflicts detected.",
		}),
	}
}

// RecordRun counts one pipeline run with the given outcome ("ok" or "error").
func (m *Metrics) RecordRun(outcome string) {
	if m == nil {
		return
	}
	m.pipelineRuns.WithLabelValues(outcome).Inc()
}

// ObserveStage records the duration of one pipeline stage.
func (m *Metrics) ObserveStage(stage string, d time.Duration) {
	if m == nil {
		return
	}
	m.stageDuration.WithLabelValues(stage).Observe(d.Seconds())
}

// RecordAgentFailure counts an agent run replaced by an error placeholder.
func (m *Metrics) RecordAgentFailure(agent string) {
	if m == nil {
		return
	}
	m.agentFailures.WithLabelValues(agent).Inc()
}

// AddPagesFetched counts successfully fetched evidence pages.
func (m *Metrics) AddPagesFetched(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.pagesFetched.Add(float64(n))
}

// AddConflicts counts detected cross-agent conflicts.
func (m *Metrics) AddConflicts(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.conflicts.Add(float64(n))
}
