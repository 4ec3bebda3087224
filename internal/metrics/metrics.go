// Package metrics exposes in-process Prometheus collectors for the
// interceptor's decision path. There is no HTTP listener here — scraping
// an endpoint would be a network surface, which the interceptor
// deliberately doesn't have. A caller that wants these numbers pulls
// them from the registry directly (e.g. to log a periodic summary).
package metrics

import (
	dto "github.com/prometheus/client_model/go"

	"github.com/prometheus/client_golang/prometheus"
)

// Registry groups the interceptor's collectors behind a private
// prometheus.Registry rather than the global DefaultRegisterer, so
// multiple Interceptor instances in the same test binary don't collide
// on duplicate registration.
type Registry struct {
	registry *prometheus.Registry

	DecisionsTotal   *prometheus.CounterVec
	ClassifyDuration prometheus.Histogram
	AuditFailures    prometheus.Counter
}

// New builds and registers the collectors.
func New() *Registry {
	reg := prometheus.NewRegistry()

	r := &Registry{
		registry: reg,
		DecisionsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "mcpgov",
			Subsystem: "interceptor",
			Name:      "decisions_total",
			Help:      "Tool calls decided, partitioned by status.",
		}, []string{"status"}),
		ClassifyDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "mcpgov",
			Subsystem: "interceptor",
			Name:      "classify_duration_seconds",
			Help:      "Time spent classifying and deciding a tools/call, in seconds.",
			Buckets:   prometheus.ExponentialBuckets(1e-6, 4, 10),
		}),
		AuditFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "mcpgov",
			Subsystem: "interceptor",
			Name:      "audit_failures_total",
			Help:      "Audit records that failed to write to the sink.",
		}),
	}

	reg.MustRegister(r.DecisionsTotal, r.ClassifyDuration, r.AuditFailures)
	return r
}

// Gather returns the current metric families, for a caller that wants to
// log or otherwise inspect them without a scrape endpoint.
func (r *Registry) Gather() ([]*dto.MetricFamily, error) {
	return r.registry.Gather()
}

// Registerer exposes the underlying registry for callers that need to
// add further collectors (e.g. in tests).
func (r *Registry) Registerer() prometheus.Registerer {
	return r.registry
}
