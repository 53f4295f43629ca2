package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// TransactionMetrics records counters and timings for ledger mutations.
type TransactionMetrics struct {
	recorded        *prometheus.CounterVec
	rejected        *prometheus.CounterVec
	resolveDuration *prometheus.HistogramVec
	lowStockItems   prometheus.Gauge
}

// NewTransactionMetrics registers the transaction metrics on the provided registerer.
func NewTransactionMetrics(reg prometheus.Registerer) *TransactionMetrics {
	if reg == nil {
		return &TransactionMetrics{}
	}
	recorded := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "transactions_recorded_total",
		Help: "Ledger entries written, by transaction type.",
	}, []string{"type"})
	rejected := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "transactions_rejected_total",
		Help: "Rejected mutations, by error code.",
	}, []string{"code"})
	resolveDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "request_resolve_duration_seconds",
		Help:    "Duration of stock resolution including transfers.",
		Buckets: prometheus.DefBuckets,
	}, []string{"outcome"})
	lowStockItems := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "low_stock_items",
		Help: "Items currently below their minimum count.",
	})
	reg.MustRegister(recorded, rejected, resolveDuration, lowStockItems)
	return &TransactionMetrics{
		recorded:        recorded,
		rejected:        rejected,
		resolveDuration: resolveDuration,
		lowStockItems:   lowStockItems,
	}
}

// IncRecorded counts one committed ledger entry of the given type.
func (m *TransactionMetrics) IncRecorded(txType string) {
	if m == nil || m.recorded == nil {
		return
	}
	m.recorded.WithLabelValues(normalizeLabel(txType)).Inc()
}

// IncRejected counts one rejected mutation by error code.
func (m *TransactionMetrics) IncRejected(code string) {
	if m == nil || m.rejected == nil {
		return
	}
	m.rejected.WithLabelValues(normalizeLabel(code)).Inc()
}

// ObserveResolveDuration records how long a request resolution took.
func (m *TransactionMetrics) ObserveResolveDuration(outcome string, duration time.Duration) {
	if m == nil || m.resolveDuration == nil {
		return
	}
	m.resolveDuration.WithLabelValues(normalizeLabel(outcome)).Observe(duration.Seconds())
}

// SetLowStockItems publishes the current low-stock item count.
func (m *TransactionMetrics) SetLowStockItems(count int) {
	if m == nil || m.lowStockItems == nil {
		return
	}
	m.lowStockItems.Set(float64(count))
}
