// internal/blockchain/solbc/transaction/metrics.go
package transaction

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

type Metrics struct {
	successCounter    prometheus.Counter
	failureCounter    *prometheus.CounterVec
	durationHistogram prometheus.Histogram
}

// NewMetrics creates the transaction collectors and registers them on reg.
// A nil registerer leaves them unregistered, which keeps tests isolated.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	successCounter := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "solana_tx_success_total",
		Help: "Total number of successful transactions",
	})
	failureCounter := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "solana_tx_failure_total",
		Help: "Total number of failed transactions",
	}, []string{"stage"})
	durationHistogram := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "solana_tx_duration_seconds",
		Help:    "Transaction duration in seconds",
		Buckets: prometheus.ExponentialBuckets(0.1, 2, 10),
	})

	if reg != nil {
		reg.MustRegister(successCounter, failureCounter, durationHistogram)
	}

	return &Metrics{
		successCounter:    successCounter,
		failureCounter:    failureCounter,
		durationHistogram: durationHistogram,
	}
}

func (tm *Metrics) TrackTransaction(start time.Time) {
	tm.durationHistogram.Observe(time.Since(start).Seconds())
}

func (tm *Metrics) Success() {
	tm.successCounter.Inc()
}

func (tm *Metrics) Failure(stage string) {
	tm.failureCounter.WithLabelValues(stage).Inc()
}
