package oracle

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	oracleRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "oracle_requests_total",
			Help: "Pricing oracle calls by operation and outcome",
		},
		[]string{"op", "outcome"},
	)

	oracleDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "oracle_request_duration_ms",
			Help:    "Duration of pricing oracle calls in ms",
			Buckets: []float64{10, 25, 50, 100, 200, 400, 800, 1600, 3200},
		},
		[]string{"op"},
	)
)

func outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case IsRejected(err):
		return "rejected"
	case IsTransport(err):
		return "unavailable"
	default:
		return "error"
	}
}

func observe(op string, start time.Time, err error) {
	oracleRequests.WithLabelValues(op, outcome(err)).Inc()
	oracleDuration.WithLabelValues(op).Observe(float64(time.Since(start).Milliseconds()))
}
