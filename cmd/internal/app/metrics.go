package app

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the server's Prometheus instruments on a private registry,
// so tests can build isolated instances without collector name collisions.
type Metrics struct {
	registry *prometheus.Registry

	RequestsTotal   prometheus.Counter
	ResponsesTotal  *prometheus.CounterVec
	RequestDuration prometheus.Histogram

	TokensPurgedTotal prometheus.Counter
}

func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	f := promauto.With(reg)
	return &Metrics{
		registry: reg,

		RequestsTotal: f.NewCounter(prometheus.CounterOpts{
			Name: "placemate_requests_total",
			Help: "The total number of HTTP requests",
		}),
		ResponsesTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name: "placemate_responses_total",
			Help: "The total number of HTTP responses by status code",
		}, []string{"status"}),
		RequestDuration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "placemate_request_duration_seconds",
			Help:    "The request duration in seconds",
			Buckets: prometheus.DefBuckets,
		}),

		TokensPurgedTotal: f.NewCounter(prometheus.CounterOpts{
			Name: "placemate_refresh_tokens_purged_total",
			Help: "The total number of expired refresh tokens removed by the sweeper",
		}),
	}
}

// Handler serves the /metrics scrape endpoint.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// WithMetrics instruments request counts, statuses and latency.
func WithMetrics(next http.Handler, m *Metrics) http.Handler {
	if m == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		m.RequestsTotal.Inc()

		lrw := &loggingResponseWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(lrw, r)

		m.ResponsesTotal.WithLabelValues(strconv.Itoa(lrw.status)).Inc()
		m.RequestDuration.Observe(time.Since(start).Seconds())
	})
}
