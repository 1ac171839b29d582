package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics. A nil *Metrics is valid and records nothing.
type Metrics struct {
	// HTTP metrics
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	// Chain RPC metrics
	RPCRequestsTotal   *prometheus.CounterVec
	RPCRequestDuration *prometheus.HistogramVec
	RateLimitWaits     prometheus.Counter
	RateLimitWaitTime  prometheus.Histogram
	BreakerState       *prometheus.GaugeVec

	// Event history metrics
	EventPagesFetched *prometheus.CounterVec
	EventRecords      *prometheus.CounterVec

	// Wallet metrics
	TransactionsSubmitted *prometheus.CounterVec

	// Cache metrics
	CacheHits   *prometheus.CounterVec
	CacheMisses *prometheus.CounterVec

	// Error metrics
	ErrorsTotal     *prometheus.CounterVec
	PanicsRecovered prometheus.Counter

	gatherer prometheus.Gatherer
}

// NewMetrics creates all metrics and registers them on reg. A nil reg uses
// the default Prometheus registry.
func NewMetrics(namespace, service string, reg prometheus.Registerer) *Metrics {
	var gatherer prometheus.Gatherer = prometheus.DefaultGatherer
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	} else if g, ok := reg.(prometheus.Gatherer); ok {
		gatherer = g
	}
	f := promauto.With(reg)

	return &Metrics{
		HTTPRequestsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: service,
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"method", "endpoint", "status"},
		),
		HTTPRequestDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: service,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request latencies in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "endpoint"},
		),

		RPCRequestsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: service,
				Name:      "rpc_requests_total",
				Help:      "Chain RPC requests by endpoint and outcome",
			},
			[]string{"endpoint", "status"},
		),
		RPCRequestDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: service,
				Name:      "rpc_request_duration_seconds",
				Help:      "Chain RPC latencies in seconds",
				Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
			},
			[]string{"endpoint"},
		),
		RateLimitWaits: f.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: service,
				Name:      "rpc_rate_limit_waits_total",
				Help:      "RPC requests delayed by the client-side rate limiter",
			},
		),
		RateLimitWaitTime: f.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: service,
				Name:      "rpc_rate_limit_wait_seconds",
				Help:      "Time spent waiting on the client-side rate limiter",
				Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 5},
			},
		),
		BreakerState: f.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: service,
				Name:      "rpc_circuit_breaker_state",
				Help:      "Circuit breaker state (0 closed, 1 open, 2 half-open)",
			},
			[]string{"breaker"},
		),

		EventPagesFetched: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: service,
				Name:      "event_pages_fetched_total",
				Help:      "Event pages fetched by event name",
			},
			[]string{"event"},
		),
		EventRecords: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: service,
				Name:      "event_records_total",
				Help:      "Event rows kept after account filtering",
			},
			[]string{"event"},
		),

		TransactionsSubmitted: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: service,
				Name:      "transactions_submitted_total",
				Help:      "Transactions handed to the wallet provider",
			},
			[]string{"function", "status"},
		),

		CacheHits: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: service,
				Name:      "cache_hits_total",
				Help:      "View cache hits",
			},
			[]string{"function"},
		),
		CacheMisses: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: service,
				Name:      "cache_misses_total",
				Help:      "View cache misses",
			},
			[]string{"function"},
		),

		ErrorsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: service,
				Name:      "errors_total",
				Help:      "Errors by type",
			},
			[]string{"type"},
		),
		PanicsRecovered: f.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: service,
				Name:      "panics_recovered_total",
				Help:      "Total number of recovered panics",
			},
		),

		gatherer: gatherer,
	}
}

// RecordRPC records one chain RPC round trip.
func (m *Metrics) RecordRPC(endpoint, status string, duration time.Duration) {
	if m == nil {
		return
	}
	m.RPCRequestsTotal.WithLabelValues(endpoint, status).Inc()
	m.RPCRequestDuration.WithLabelValues(endpoint).Observe(duration.Seconds())
}

func (m *Metrics) RecordRateLimitWait(wait time.Duration) {
	if m == nil || wait <= 0 {
		return
	}
	m.RateLimitWaits.Inc()
	m.RateLimitWaitTime.Observe(wait.Seconds())
}

func (m *Metrics) RecordBreakerState(name string, state int) {
	if m == nil {
		return
	}
	m.BreakerState.WithLabelValues(name).Set(float64(state))
}

// RecordPage records one fetched event page and how many rows matched.
func (m *Metrics) RecordPage(event string, matched int) {
	if m == nil {
		return
	}
	m.EventPagesFetched.WithLabelValues(event).Inc()
	m.EventRecords.WithLabelValues(event).Add(float64(matched))
}

func (m *Metrics) RecordTransaction(function string, err error) {
	if m == nil {
		return
	}
	status := "ok"
	if err != nil {
		status = "error"
	}
	m.TransactionsSubmitted.WithLabelValues(function, status).Inc()
}

func (m *Metrics) RecordCache(function string, hit bool) {
	if m == nil {
		return
	}
	if hit {
		m.CacheHits.WithLabelValues(function).Inc()
	} else {
		m.CacheMisses.WithLabelValues(function).Inc()
	}
}

func (m *Metrics) RecordError(errorType string) {
	if m == nil {
		return
	}
	m.ErrorsTotal.WithLabelValues(errorType).Inc()
}

func (m *Metrics) RecordPanic() {
	if m == nil {
		return
	}
	m.PanicsRecovered.Inc()
}

// GinMiddleware records request count and latency per route template.
func (m *Metrics) GinMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if m == nil {
			c.Next()
			return
		}
		start := time.Now()
		c.Next()

		endpoint := c.FullPath()
		if endpoint == "" {
			endpoint = "unmatched"
		}
		m.HTTPRequestsTotal.WithLabelValues(c.Request.Method, endpoint, strconv.Itoa(c.Writer.Status())).Inc()
		m.HTTPRequestDuration.WithLabelValues(c.Request.Method, endpoint).Observe(time.Since(start).Seconds())
	}
}

// Handler returns the Prometheus scrape handler for the registry these metrics live in.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}
