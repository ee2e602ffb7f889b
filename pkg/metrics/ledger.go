package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// LedgerMetrics counts inventory and transaction actions as they are logged.
type LedgerMetrics struct {
	actions *prometheus.CounterVec
	units   *prometheus.CounterVec
}

// NewLedgerMetrics registers the ledger metrics on the provided registerer.
func NewLedgerMetrics(reg prometheus.Registerer) *LedgerMetrics {
	if reg == nil {
		return &LedgerMetrics{}
	}
	actions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "ledger_actions_total",
		Help: "Ledger entries written, by action.",
	}, []string{"action"})
	units := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "ledger_units_total",
		Help: "Units moved per ledger action.",
	}, []string{"action"})
	reg.MustRegister(actions, units)
	return &LedgerMetrics{
		actions: actions,
		units:   units,
	}
}

// IncAction records one ledger entry and the units it moved.
func (l *LedgerMetrics) IncAction(action string, quantity int) {
	if l == nil || l.actions == nil {
		return
	}
	l.actions.WithLabelValues(normalizeLabel(action)).Inc()
	if quantity > 0 {
		l.units.WithLabelValues(normalizeLabel(action)).Add(float64(quantity))
	}
}
