package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the custody module.
type Metrics struct {
	RecordsCreated     prometheus.Counter
	HandoversLogged    prometheus.Counter
	ConditionsRecorded prometheus.Counter
	// PurchasabilityChecks counts verdict computations by outcome
	// ("valid" or "rejected").
	PurchasabilityChecks *prometheus.CounterVec
}

// New creates a Metrics instance with all custody module metrics registered.
func New() *Metrics {
	return &Metrics{
		RecordsCreated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "custodia_records_created_total",
			Help: "Total number of custody records created",
		}),
		HandoversLogged: promauto.NewCounter(prometheus.CounterOpts{
			Name: "custodia_handovers_logged_total",
			Help: "Total number of handover events appended",
		}),
		ConditionsRecorded: promauto.NewCounter(prometheus.CounterOpts{
			Name: "custodia_transit_conditions_recorded_total",
			Help: "Total number of transit condition readings attached",
		}),
		PurchasabilityChecks: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "custodia_purchasability_checks_total",
			Help: "Total number of purchasability verdicts computed, by outcome",
		}, []string{"outcome"}),
	}
}

// IncrementRecordsCreated records a successful record creation.
func (m *Metrics) IncrementRecordsCreated() {
	m.RecordsCreated.Inc()
}

// IncrementHandoversLogged records a successful handover append.
func (m *Metrics) IncrementHandoversLogged() {
	m.HandoversLogged.Inc()
}

// IncrementConditionsRecorded records a successful condition attachment.
func (m *Metrics) IncrementConditionsRecorded() {
	m.ConditionsRecorded.Inc()
}

// ObservePurchasability records a computed verdict outcome.
func (m *Metrics) ObservePurchasability(valid bool) {
	outcome := "rejected"
	if valid {
		outcome = "valid"
	}
	m.PurchasabilityChecks.WithLabelValues(outcome).Inc()
}
