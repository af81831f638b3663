// internal/runner/metrics.go
package runner

import (
	"github.com/prometheus/client_golang/prometheus"
)

type Metrics struct {
	orders *prometheus.CounterVec
}

// NewMetrics registers the order collectors on reg. Nil leaves them unregistered.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	orders := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "auctioneer_orders_total",
		Help: "Execute sale orders by final status",
	}, []string{"status"})

	if reg != nil {
		reg.MustRegister(orders)
	}
	return &Metrics{orders: orders}
}

func (m *Metrics) Order(status string) {
	m.orders.WithLabelValues(status).Inc()
}
