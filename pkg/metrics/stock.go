package metrics

import "github.com/prometheus/client_golang/prometheus"

// StockMetrics counts inventory mutations, including the attempts rejected
// because they would have driven stock negative or lost a concurrent write.
type StockMetrics struct {
	mutations *prometheus.CounterVec
	rejected  *prometheus.CounterVec
}

// NewStockMetrics registers the stock mutation metrics on the provided registerer.
func NewStockMetrics(reg prometheus.Registerer) *StockMetrics {
	if reg == nil {
		return &StockMetrics{}
	}
	mutations := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "stock_mutations_total",
		Help: "Applied stock mutations, partitioned by operation.",
	}, []string{"operation"})
	rejected := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "stock_mutations_rejected_total",
		Help: "Stock mutations rejected, partitioned by reason.",
	}, []string{"reason"})
	reg.MustRegister(mutations, rejected)
	return &StockMetrics{
		mutations: mutations,
		rejected:  rejected,
	}
}

// IncApplied increments the applied counter for the named operation.
func (s *StockMetrics) IncApplied(operation string) {
	if s == nil || s.mutations == nil {
		return
	}
	s.mutations.WithLabelValues(normalizeLabel(operation)).Inc()
}

// IncRejected increments the rejected counter for the named reason.
func (s *StockMetrics) IncRejected(reason string) {
	if s == nil || s.rejected == nil {
		return
	}
	s.rejected.WithLabelValues(normalizeLabel(reason)).Inc()
}
