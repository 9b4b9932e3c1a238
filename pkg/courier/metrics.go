package courier

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	exchangesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "courier_exchanges_total",
			Help: "Total number of HTTP exchanges",
		},
		[]string{"method", "status"},
	)

	exchangeDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "courier_exchange_duration_seconds",
			Help:    "HTTP exchange duration in seconds, request write to response end",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "status"},
	)

	exchangesInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "courier_exchanges_in_flight",
			Help: "Current number of HTTP exchanges awaiting a response",
		},
	)

	responseSize = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "courier_response_size_bytes",
			Help:    "HTTP response body size in bytes",
			Buckets: []float64{100, 1000, 10000, 100000, 1000000},
		},
	)
)

// observeExchange records the outcome of one exchange. Failed exchanges are
// counted under the "error" status label.
func observeExchange(method string, start time.Time, resp *Response, err error) {
	status := "error"
	if err == nil {
		status = strconv.Itoa(resp.Status())
		responseSize.Observe(float64(len(resp.Body)))
	}
	exchangesTotal.WithLabelValues(method, status).Inc()
	exchangeDuration.WithLabelValues(method, status).Observe(time.Since(start).Seconds())
}
