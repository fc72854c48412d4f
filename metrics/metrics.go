// Package metrics exposes Prometheus instrumentation for cache operations.
// Collectors are instance-scoped and registered on a caller-supplied
// registerer, so a process can run several independently measured caches.
package metrics

import "github.com/prometheus/client_golang/prometheus"

// Metrics holds the cache's Prometheus collectors.
type Metrics struct {
	Hits         prometheus.Counter
	Misses       prometheus.Counter
	Saves        prometheus.Counter
	Deletes      prometheus.Counter
	SweepRemoved prometheus.Counter
	SweepFailed  prometheus.Counter
}

// New creates the collectors and registers them with reg. The namespace
// label distinguishes multiple caches sharing one registry.
func New(reg prometheus.Registerer, namespace string) *Metrics {
	labels := prometheus.Labels{"namespace": namespace}
	m := &Metrics{
		Hits: prometheus.NewCounter(prometheus.CounterOpts{
			Name:        "fucache_hits_total",
			Help:        "Loads that returned a live entry.",
			ConstLabels: labels,
		}),
		Misses: prometheus.NewCounter(prometheus.CounterOpts{
			Name:        "fucache_misses_total",
			Help:        "Loads that found no live entry (absent or expired).",
			ConstLabels: labels,
		}),
		Saves: prometheus.NewCounter(prometheus.CounterOpts{
			Name:        "fucache_saves_total",
			Help:        "Entries written.",
			ConstLabels: labels,
		}),
		Deletes: prometheus.NewCounter(prometheus.CounterOpts{
			Name:        "fucache_deletes_total",
			Help:        "Single-entry delete operations.",
			ConstLabels: labels,
		}),
		SweepRemoved: prometheus.NewCounter(prometheus.CounterOpts{
			Name:        "fucache_sweep_removed_total",
			Help:        "Entries removed by cleanup sweeps.",
			ConstLabels: labels,
		}),
		SweepFailed: prometheus.NewCounter(prometheus.CounterOpts{
			Name:        "fucache_sweep_failed_total",
			Help:        "Entries a cleanup sweep failed to remove.",
			ConstLabels: labels,
		}),
	}
	reg.MustRegister(m.Hits, m.Misses, m.Saves, m.Deletes, m.SweepRemoved, m.SweepFailed)
	return m
}
