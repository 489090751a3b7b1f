package observability

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/aretw0/espalier/pkg/domain"
)

// Metrics holds prometheus collectors for scene activity. Obtain the hooks
// with Hooks and pass them to the scene; every counter then follows the
// lifecycle events.
type Metrics struct {
	nodesCreated       prometheus.Counter
	nodesRemoved       prometheus.Counter
	connectionsCreated prometheus.Counter
	connectionsDeleted prometheus.Counter
	rejections         *prometheus.CounterVec
}

// NewMetrics creates the collectors and registers them on reg. Pass
// prometheus.DefaultRegisterer to share the process-wide registry.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		nodesCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "espalier",
			Name:      "nodes_created_total",
			Help:      "Total number of nodes created in the scene",
		}),
		nodesRemoved: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "espalier",
			Name:      "nodes_removed_total",
			Help:      "Total number of nodes removed from the scene",
		}),
		connectionsCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "espalier",
			Name:      "connections_created_total",
			Help:      "Total number of connections completed",
		}),
		connectionsDeleted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "espalier",
			Name:      "connections_deleted_total",
			Help:      "Total number of connections deleted",
		}),
		rejections: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "espalier",
			Name:      "connection_rejections_total",
			Help:      "Total number of refused connection attempts by reason",
		}, []string{"reason"}),
	}

	reg.MustRegister(
		m.nodesCreated,
		m.nodesRemoved,
		m.connectionsCreated,
		m.connectionsDeleted,
		m.rejections,
	)
	return m
}

// Hooks returns lifecycle hooks that record every event on the counters.
func (m *Metrics) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnNodeCreated: func(domain.NodeEvent) {
			m.nodesCreated.Inc()
		},
		OnNodeRemoved: func(domain.NodeEvent) {
			m.nodesRemoved.Inc()
		},
		OnConnectionCreated: func(domain.ConnectionEvent) {
			m.connectionsCreated.Inc()
		},
		OnConnectionDeleted: func(domain.ConnectionEvent) {
			m.connectionsDeleted.Inc()
		},
		OnConnectionRejected: func(err error) {
			m.rejections.WithLabelValues(domain.RejectionCode(err)).Inc()
		},
	}
}
