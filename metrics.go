package incremental

import "github.com/prometheus/client_golang/prometheus"

// Metrics is optional Prometheus instrumentation for the graph. It is
// disabled by default (SetMetrics is never called), in which case every
// call site that would touch it is a single nil check — enabling it does
// not change the single-threaded algorithm in any way, it only counts
// events the algorithm already produces.
type Metrics struct {
	Recomputations prometheus.Counter
	EdgesPruned    prometheus.Counter
	CyclesDetected prometheus.Counter
	LiveEdges      prometheus.Gauge
}

// NewMetrics builds and registers the counters against reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Recomputations: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "incremental",
			Name:      "recomputations_total",
			Help:      "Number of ComputedNode recomputations performed.",
		}),
		EdgesPruned: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "incremental",
			Name:      "edges_pruned_total",
			Help:      "Number of dead producer/consumer edges pruned lazily.",
		}),
		CyclesDetected: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "incremental",
			Name:      "cycles_detected_total",
			Help:      "Number of times a node re-entered its own calculate().",
		}),
		LiveEdges: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "incremental",
			Name:      "live_edges",
			Help:      "Number of producer/consumer edges currently recorded in the graph.",
		}),
	}
	reg.MustRegister(m.Recomputations, m.EdgesPruned, m.CyclesDetected, m.LiveEdges)
	return m
}

// globalMetrics is nil until SetMetrics is called. It is process-wide
// rather than per-node because it is an observability concern, not a
// correctness one — every node in a process typically reports to the same
// registry.
var globalMetrics *Metrics

// SetMetrics opts the package into Prometheus instrumentation. Pass nil
// to disable it again.
func SetMetrics(m *Metrics) {
	globalMetrics = m
}
