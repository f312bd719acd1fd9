// Package metrics exposes Prometheus counters for the chase loop and its
// external tool wrappers, on a custom registry to avoid the default Go
// collector noise on the operator endpoint.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var registry = prometheus.NewRegistry()

// Registry returns the registry backing the /metrics endpoint.
func Registry() *prometheus.Registry {
	return registry
}

var (
	SweepsTotal = promauto.With(registry).NewCounter(prometheus.CounterOpts{
		Namespace: "ghostbuster",
		Name:      "sweeps_total",
		Help:      "Wide-band sweeps completed successfully.",
	})

	SweepFailures = promauto.With(registry).NewCounter(prometheus.CounterOpts{
		Namespace: "ghostbuster",
		Name:      "sweep_failures_total",
		Help:      "Sweep invocations that failed or timed out.",
	})

	MeasurementFailures = promauto.With(registry).NewCounter(prometheus.CounterOpts{
		Namespace: "ghostbuster",
		Name:      "measurement_failures_total",
		Help:      "Power measurements that degraded to the sentinel value.",
	})

	SamplesRecorded = promauto.With(registry).NewCounter(prometheus.CounterOpts{
		Namespace: "ghostbuster",
		Name:      "samples_recorded_total",
		Help:      "Track samples appended to the session log.",
	})

	CandidateBands = promauto.With(registry).NewGauge(prometheus.GaugeOpts{
		Namespace: "ghostbuster",
		Name:      "candidate_bands",
		Help:      "Distinct frequency bands currently in the candidate set.",
	})

	LastPower = promauto.With(registry).NewGauge(prometheus.GaugeOpts{
		Namespace: "ghostbuster",
		Name:      "last_power_dbm",
		Help:      "Power of the most recent track sample in dBm.",
	})
)
