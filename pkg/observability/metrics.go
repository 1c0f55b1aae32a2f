// Package observability wires Prometheus metrics onto the engine's
// lifecycle hooks.
package observability

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/dunehq/dune/pkg/domain"
)

// Metrics holds the collectors for the conversation engine and gateway.
type Metrics struct {
	NodeVisits   *prometheus.CounterVec
	PolicyBlocks *prometheus.CounterVec
	ToolCalls    *prometheus.CounterVec
}

// New creates and registers the collectors on the given registerer.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		NodeVisits: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "dune_node_visits_total",
				Help: "Total number of conversation stage visits",
			},
			[]string{"node_id"},
		),
		PolicyBlocks: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "dune_policy_blocks_total",
				Help: "Total number of stage replies blocked by policy",
			},
			[]string{"node_id"},
		),
		ToolCalls: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "dune_tool_calls_total",
				Help: "Total number of gateway dispatches by outcome",
			},
			[]string{"tool", "status"},
		),
	}
	reg.MustRegister(m.NodeVisits, m.PolicyBlocks, m.ToolCalls)
	return m
}

// Hooks returns lifecycle hooks that feed the collectors.
func (m *Metrics) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnNodeEnter: func(ctx context.Context, e *domain.NodeEvent) {
			m.NodeVisits.WithLabelValues(e.NodeID).Inc()
		},
		OnPolicyBlock: func(ctx context.Context, e *domain.PolicyEvent) {
			m.PolicyBlocks.WithLabelValues(e.NodeID).Inc()
		},
		OnToolReturn: func(ctx context.Context, e *domain.ToolEvent) {
			status := "ok"
			if e.IsError {
				status = "error"
			}
			m.ToolCalls.WithLabelValues(e.Tool, status).Inc()
		},
	}
}
