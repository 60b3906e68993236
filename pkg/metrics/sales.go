package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// SaleMetrics records checkout and receipt spool outcomes.
type SaleMetrics struct {
	completed *prometheus.CounterVec
	failed    *prometheus.CounterVec
	amount    *prometheus.HistogramVec
	receipts  *prometheus.CounterVec
}

// NewSaleMetrics registers the sale metrics on the provided registerer.
func NewSaleMetrics(reg prometheus.Registerer) *SaleMetrics {
	if reg == nil {
		return &SaleMetrics{}
	}
	completed := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "sales_completed_total",
		Help: "Finalized sales persisted successfully.",
	}, []string{"register"})
	failed := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "sales_failed_total",
		Help: "Checkout attempts that did not persist.",
	}, []string{"register", "reason"})
	amount := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "sale_grand_total_amount",
		Help:    "Grand total of finalized sales.",
		Buckets: []float64{10, 50, 100, 250, 500, 1000, 2500, 5000},
	}, []string{"register"})
	receipts := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "receipts_spooled_total",
		Help: "Receipt payloads handed to the printer transport.",
	}, []string{"register", "outcome"})
	reg.MustRegister(completed, failed, amount, receipts)
	return &SaleMetrics{
		completed: completed,
		failed:    failed,
		amount:    amount,
		receipts:  receipts,
	}
}

// IncCompleted increments the completed counter for the register.
func (m *SaleMetrics) IncCompleted(register string) {
	if m == nil || m.completed == nil {
		return
	}
	m.completed.WithLabelValues(normalizeLabel(register)).Inc()
}

// IncFailed increments the failed counter for the register with a reason.
func (m *SaleMetrics) IncFailed(register, reason string) {
	if m == nil || m.failed == nil {
		return
	}
	m.failed.WithLabelValues(normalizeLabel(register), normalizeLabel(reason)).Inc()
}

// ObserveAmount records a finalized grand total.
func (m *SaleMetrics) ObserveAmount(register string, amount float64) {
	if m == nil || m.amount == nil {
		return
	}
	m.amount.WithLabelValues(normalizeLabel(register)).Observe(amount)
}

// IncReceipt records a receipt spool attempt outcome.
func (m *SaleMetrics) IncReceipt(register, outcome string) {
	if m == nil || m.receipts == nil {
		return
	}
	m.receipts.WithLabelValues(normalizeLabel(register), normalizeLabel(outcome)).Inc()
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
