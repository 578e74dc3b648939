package observability

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics groups the editor collectors.
type Metrics struct {
	registry *prometheus.Registry

	saves          *prometheus.CounterVec
	saveDuration   prometheus.Histogram
	rejectedEdges  prometheus.Counter
	notices        *prometheus.CounterVec
	desync         prometheus.Counter
	nodes          prometheus.Gauge
	edges          prometheus.Gauge
	simulatorTurns *prometheus.CounterVec
	storageTier    *prometheus.CounterVec
}

// New creates and registers the collectors.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		saves: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "flowbuilder_saves_total",
				Help: "Total number of flow snapshot writes",
			},
			[]string{"result"},
		),
		saveDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "flowbuilder_save_duration_seconds",
			Help:    "Duration of flow snapshot writes",
			Buckets: prometheus.DefBuckets,
		}),
		rejectedEdges: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "flowbuilder_rejected_edges_total",
			Help: "Total number of connections rejected by the port direction rule",
		}),
		notices: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "flowbuilder_notices_total",
				Help: "Total number of user notices by kind",
			},
			[]string{"kind"},
		),
		desync: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "flowbuilder_desync_recoveries_total",
			Help: "Total number of forced re-renders after a scene desync",
		}),
		nodes: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "flowbuilder_nodes",
			Help: "Number of nodes in the current flow",
		}),
		edges: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "flowbuilder_edges",
			Help: "Number of edges in the current flow",
		}),
		simulatorTurns: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "flowbuilder_simulator_replies_total",
				Help: "Total number of simulator replies by category",
			},
			[]string{"category"},
		),
		storageTier: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "flowbuilder_storage_writes_total",
				Help: "Writes of the storage helper by the tier that accepted them",
			},
			[]string{"tier"},
		),
	}
	m.registry.MustRegister(
		m.saves, m.saveDuration, m.rejectedEdges, m.notices, m.desync,
		m.nodes, m.edges, m.simulatorTurns, m.storageTier,
		collectors.NewGoCollector(),
	)
	return m
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry exposes the underlying registry (tests, extra collectors).
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// ObserveSave records one snapshot write.
func (m *Metrics) ObserveSave(d time.Duration, err error) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.saves.WithLabelValues(result).Inc()
	m.saveDuration.Observe(d.Seconds())
}

// EdgeRejected counts a rejected connection.
func (m *Metrics) EdgeRejected() {
	if m == nil {
		return
	}
	m.rejectedEdges.Inc()
}

// Notice counts a notice by kind.
func (m *Metrics) Notice(kind string) {
	if m == nil {
		return
	}
	m.notices.WithLabelValues(kind).Inc()
}

// DesyncRecovered counts a forced re-render.
func (m *Metrics) DesyncRecovered() {
	if m == nil {
		return
	}
	m.desync.Inc()
}

// GraphSize sets the node and edge gauges.
func (m *Metrics) GraphSize(nodes, edges int) {
	if m == nil {
		return
	}
	m.nodes.Set(float64(nodes))
	m.edges.Set(float64(edges))
}

// SimulatorReply counts a simulator reply by category.
func (m *Metrics) SimulatorReply(category string) {
	if m == nil {
		return
	}
	m.simulatorTurns.WithLabelValues(category).Inc()
}

// StorageWrite counts a storage helper write by the accepting tier.
func (m *Metrics) StorageWrite(tier string) {
	if m == nil {
		return
	}
	m.storageTier.WithLabelValues(tier).Inc()
}
