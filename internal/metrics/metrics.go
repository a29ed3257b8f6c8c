package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"renkobt/internal"
	"renkobt/internal/renko"
)

var (
	RenkoRowsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "renko_rows_total", Help: "Rows produced by the renko pipeline"},
		[]string{"strategy", "mode"},
	)
	SignalsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "signals_total", Help: "Trading signals emitted"},
		[]string{"strategy", "side"},
	)
	RunDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "backtest_run_duration_seconds",
			Help:    "Wall time of a single strategy run including optimization",
			Buckets: prometheus.ExponentialBuckets(0.001, 4, 10),
		},
		[]string{"strategy"},
	)
)

func init() {
	prometheus.MustRegister(RenkoRowsTotal, SignalsTotal, RunDuration)
}

func ObserveRows(strategy string, mode renko.Mode, rows []renko.Row) {
	RenkoRowsTotal.WithLabelValues(strategy, mode.String()).Add(float64(len(rows)))
}

// ObserveSignals считает только BUY и SELL, HOLD не интересен.
func ObserveSignals(strategy string, signals []internal.SignalType) {
	for _, s := range signals {
		if s == internal.HOLD {
			continue
		}
		SignalsTotal.WithLabelValues(strategy, s.String()).Inc()
	}
}

func ObserveRun(strategy string, d time.Duration) {
	RunDuration.WithLabelValues(strategy).Observe(d.Seconds())
}

func Handler() http.Handler {
	return promhttp.Handler()
}
