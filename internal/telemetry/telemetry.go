package telemetry

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics tracks run outcomes and wait times across the service. A nil
// *Metrics is valid and records nothing, so tests can pass nil.
type Metrics struct {
	runsTotal *prometheus.CounterVec
	runWait   prometheus.Histogram
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		runsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "coach",
			Name:      "assistant_runs_total",
			Help:      "Assistant runs by terminal outcome.",
		}, []string{"outcome"}),
		runWait: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "coach",
			Name:      "assistant_run_wait_seconds",
			Help:      "Wall-clock time spent waiting for assistant runs.",
			Buckets:   prometheus.ExponentialBuckets(0.5, 2, 8),
		}),
	}
	reg.MustRegister(m.runsTotal, m.runWait)
	return m
}

// ObserveRun records one awaited run with its terminal outcome.
func (m *Metrics) ObserveRun(outcome string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.runsTotal.WithLabelValues(outcome).Inc()
	m.runWait.Observe(elapsed.Seconds())
}
