package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	dErrors "auditlink/pkg/domain-errors"
)

const outcomeOK = "ok"

// Metrics provides observability for the claim ledger.
type Metrics struct {
	Operations                 *prometheus.CounterVec
	OperationDuration          *prometheus.HistogramVec
	NotificationAppendFailures prometheus.Counter
	PaymentFailures            prometheus.Counter
}

// New registers ledger metrics with reg.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		Operations: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "auditlink_ledger_operations_total",
			Help: "Ledger operations by name and outcome (ok or error code)",
		}, []string{"operation", "outcome"}),
		OperationDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "auditlink_ledger_operation_duration_seconds",
			Help:    "Duration of ledger operations including the unit of work",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}, []string{"operation"}),
		NotificationAppendFailures: factory.NewCounter(prometheus.CounterOpts{
			Name: "auditlink_notification_append_failures_total",
			Help: "Notifications that could not be appended after a successful transition",
		}),
		PaymentFailures: factory.NewCounter(prometheus.CounterOpts{
			Name: "auditlink_payment_initiation_failures_total",
			Help: "Approvals aborted because payment initiation failed",
		}),
	}
}

// ObserveOperation records one operation outcome and its duration.
// Call with time.Now() taken at the start of the operation.
func (m *Metrics) ObserveOperation(operation string, start time.Time, err error) {
	outcome := outcomeOK
	if err != nil {
		outcome = string(dErrors.CodeOf(err))
	}
	m.Operations.WithLabelValues(operation, outcome).Inc()
	m.OperationDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
}

func (m *Metrics) IncNotificationAppendFailure() {
	m.NotificationAppendFailures.Inc()
}

func (m *Metrics) IncPaymentFailure() {
	m.PaymentFailures.Inc()
}
