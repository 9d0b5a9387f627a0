package compliance

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds Prometheus metrics for compliance audit publishing.
type Metrics struct {
	EventsEmitted   prometheus.Counter
	PersistFailures prometheus.Counter
	PersistDuration prometheus.Histogram
}

// NewMetrics registers compliance audit metrics with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		EventsEmitted: factory.NewCounter(prometheus.CounterOpts{
			Name: "auditlink_audit_compliance_emitted_total",
			Help: "Total number of compliance audit events persisted",
		}),
		PersistFailures: factory.NewCounter(prometheus.CounterOpts{
			Name: "auditlink_audit_compliance_persist_failures_total",
			Help: "Total number of compliance audit persistence failures",
		}),
		PersistDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "auditlink_audit_compliance_persist_duration_seconds",
			Help:    "Time spent persisting a compliance audit event",
			Buckets: prometheus.DefBuckets,
		}),
	}
}

// IncEventsEmitted increments the emitted counter.
func (m *Metrics) IncEventsEmitted() {
	m.EventsEmitted.Inc()
}

// IncPersistFailures increments the persistence failure counter.
func (m *Metrics) IncPersistFailures() {
	m.PersistFailures.Inc()
}

// ObservePersistDuration records the time spent writing one event.
func (m *Metrics) ObservePersistDuration(seconds float64) {
	m.PersistDuration.Observe(seconds)
}
