// Package metrics exposes the engine's Prometheus instrumentation.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics bundles the collectors the orchestrator updates per transition.
type Metrics struct {
	TransitionsTotal   *prometheus.CounterVec
	TransitionDuration *prometheus.HistogramVec
	ActionFailures     *prometheus.CounterVec
	ConditionRejects   *prometheus.CounterVec
}

// New registers the engine collectors on the given registerer.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		TransitionsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "haldesk",
			Subsystem: "workflow",
			Name:      "transitions_total",
			Help:      "Transition attempts by workflow type and outcome.",
		}, []string{"workflow_type", "result"}),
		TransitionDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "haldesk",
			Subsystem: "workflow",
			Name:      "transition_duration_seconds",
			Help:      "Wall-clock duration of transition execution.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"workflow_type"}),
		ActionFailures: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "haldesk",
			Subsystem: "workflow",
			Name:      "action_failures_total",
			Help:      "Failed actions by action type.",
		}, []string{"action_type"}),
		ConditionRejects: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "haldesk",
			Subsystem: "workflow",
			Name:      "condition_rejects_total",
			Help:      "Transitions rejected by guard conditions, per workflow type.",
		}, []string{"workflow_type"}),
	}
}

// NewDefault registers on the default Prometheus registry.
func NewDefault() *Metrics {
	return New(prometheus.DefaultRegisterer)
}
