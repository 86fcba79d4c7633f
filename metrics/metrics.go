// Package metrics exposes the runtime's Prometheus instrumentation:
// per-worker queue depth and drain time, service counts, and runcmd
// outcomes.
package metrics

import "github.com/prometheus/client_golang/prometheus"

// The collectors below are registered by MustRegister. Tests register
// them against their own prometheus.NewRegistry() so they don't
// collide with the process-wide default registry.
var (
	QueueDepth = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "actorkit",
			Subsystem: "worker",
			Name:      "queue_depth",
			Help:      "Number of messages delivered in a worker's most recent drain.",
		},
		[]string{"worker"},
	)

	ServiceCount = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "actorkit",
			Subsystem: "worker",
			Name:      "service_count",
			Help:      "Number of live services currently owned by a worker.",
		},
		[]string{"worker"},
	)

	DrainSeconds = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "actorkit",
			Subsystem: "worker",
			Name:      "drain_seconds",
			Help:      "Time spent delivering one inbound message batch.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"worker"},
	)

	ServicesCrashed = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "actorkit",
			Subsystem: "service",
			Name:      "crashed_total",
			Help:      "Number of services removed due to a recovered panic.",
		},
		[]string{"worker"},
	)

	RunCmdTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "actorkit",
			Subsystem: "runcmd",
			Name:      "total",
			Help:      "Number of runcmd dispatches, partitioned by outcome.",
		},
		[]string{"target", "outcome"},
	)
)

// MustRegister registers every collector in this package against reg.
// Call it once, against the default registry (runtime.Runtime.Start
// does this when metrics are enabled) or against a fresh
// prometheus.NewRegistry() in tests.
func MustRegister(reg prometheus.Registerer) {
	reg.MustRegister(QueueDepth, ServiceCount, DrainSeconds, ServicesCrashed, RunCmdTotal)
}
