package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds all application metrics.
type Metrics struct {
	// HTTP metrics
	HTTPRequestsTotal    *prometheus.CounterVec
	HTTPRequestDuration  *prometheus.HistogramVec
	HTTPRequestsInFlight prometheus.Gauge

	// Generation metrics
	SubmitsTotal     *prometheus.CounterVec
	PollsTotal       *prometheus.CounterVec
	GalleryEntries   prometheus.Gauge
	TokenExchanges   *prometheus.CounterVec
}

// New creates a new Metrics instance registered on its own registry.
// Returns the metrics and the registry to expose on /metrics.
func New(namespace string) (*Metrics, *prometheus.Registry) {
	if namespace == "" {
		namespace = "veoflow"
	}

	reg := prometheus.NewRegistry()
	factory := func(c prometheus.Collector) prometheus.Collector {
		reg.MustRegister(c)
		return c
	}

	m := &Metrics{
		HTTPRequestsTotal: factory(prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "http",
				Name:      "requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		)).(*prometheus.CounterVec),
		HTTPRequestDuration: factory(prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "http",
				Name:      "request_duration_seconds",
				Help:      "HTTP request duration in seconds",
				Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
			},
			[]string{"method", "path"},
		)).(*prometheus.HistogramVec),
		HTTPRequestsInFlight: factory(prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: "http",
				Name:      "requests_in_flight",
				Help:      "Current number of HTTP requests being processed",
			},
		)).(prometheus.Gauge),

		SubmitsTotal: factory(prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "generation",
				Name:      "submits_total",
				Help:      "Total number of generation submissions",
			},
			[]string{"model", "mode", "status"},
		)).(*prometheus.CounterVec),
		PollsTotal: factory(prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "generation",
				Name:      "polls_total",
				Help:      "Total number of operation polls",
			},
			[]string{"result"}, // pending, done, error
		)).(*prometheus.CounterVec),
		GalleryEntries: factory(prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: "gallery",
				Name:      "entries",
				Help:      "Current number of gallery entries",
			},
		)).(prometheus.Gauge),
		TokenExchanges: factory(prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "auth",
				Name:      "token_exchanges_total",
				Help:      "Total number of credential resolutions",
			},
			[]string{"strategy", "status"},
		)).(*prometheus.CounterVec),
	}

	return m, reg
}

// RecordHTTPRequest records a completed HTTP request.
func (m *Metrics) RecordHTTPRequest(method, path string, status int, duration time.Duration) {
	m.HTTPRequestsTotal.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

// RecordSubmit records a generation submission outcome.
func (m *Metrics) RecordSubmit(model, mode, status string) {
	m.SubmitsTotal.WithLabelValues(model, mode, status).Inc()
}

// RecordPoll records a poll outcome.
func (m *Metrics) RecordPoll(result string) {
	m.PollsTotal.WithLabelValues(result).Inc()
}

// RecordTokenExchange records a credential resolution outcome.
func (m *Metrics) RecordTokenExchange(strategy, status string) {
	m.TokenExchanges.WithLabelValues(strategy, status).Inc()
}
