package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"stagehand-hq/stagehand/pkg/config"
)

// Resolution sources recorded on request metrics. Every request resolves to
// exactly one of these.
const (
	SourceLocal = "local"
	SourceProxy = "proxy"
	SourceMiss  = "miss"
)

// Collector manages all Prometheus metrics for the dev proxy. It registers
// its metrics against a single registry and provides a unified interface
// for recording them from the request handler and the file watcher.
type Collector struct {
	config   *config.MetricsConfig
	registry *prometheus.Registry

	// requestsTotal counts requests by method, resolution source, and status.
	requestsTotal *prometheus.CounterVec

	// requestDuration observes end-to-end request latency per source.
	requestDuration *prometheus.HistogramVec

	// responseSize observes response body sizes per source.
	responseSize *prometheus.HistogramVec

	// upstreamFailures counts proxy fallback failures by reason.
	upstreamFailures *prometheus.CounterVec

	// watcherEvents counts file change events seen by the live reload watcher.
	watcherEvents prometheus.Counter

	// reloadClients tracks the number of connected live reload clients.
	reloadClients prometheus.Gauge
}

// NewCollector creates a metrics collector with the specified configuration
// and Prometheus registry. If registry is nil, a fresh registry is used.
func NewCollector(cfg *config.MetricsConfig, registry *prometheus.Registry) *Collector {
	if registry == nil {
		registry = prometheus.NewRegistry()
	}

	ns := cfg.Namespace
	if ns == "" {
		ns = "stagehand"
	}

	c := &Collector{
		config:   cfg,
		registry: registry,

		requestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: ns,
				Name:      "requests_total",
				Help:      "Total number of requests served, by resolution source",
			},
			[]string{"method", "source", "status"},
		),

		requestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: ns,
				Name:      "request_duration_seconds",
				Help:      "End-to-end request duration in seconds",
				// Local hits land well under 10ms; proxied fetches can take
				// as long as the configured upstream timeout.
				Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0},
			},
			[]string{"source"},
		),

		responseSize: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: ns,
				Name:      "response_size_bytes",
				Help:      "Size of response bodies in bytes",
				Buckets:   prometheus.ExponentialBuckets(256, 4, 10), // 256B to 64MB
			},
			[]string{"source"},
		),

		upstreamFailures: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: ns,
				Name:      "upstream_failures_total",
				Help:      "Total number of failed upstream fetches, by reason",
			},
			[]string{"reason"},
		),

		watcherEvents: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: ns,
				Name:      "watcher_events_total",
				Help:      "Total number of file change events observed under the content root",
			},
		),

		reloadClients: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: ns,
				Name:      "reload_clients",
				Help:      "Number of connected live reload clients",
			},
		),
	}

	registry.MustRegister(
		c.requestsTotal,
		c.requestDuration,
		c.responseSize,
		c.upstreamFailures,
		c.watcherEvents,
		c.reloadClients,
	)

	return c
}

// RecordRequest records metrics for a completed request.
//
// Parameters:
//   - method: HTTP method
//   - source: resolution source (SourceLocal, SourceProxy, SourceMiss)
//   - status: HTTP status code written to the client
//   - duration: end-to-end request duration
//   - bytes: response body size
func (c *Collector) RecordRequest(method, source string, status int, duration time.Duration, bytes int) {
	if c == nil || !c.config.Enabled {
		return
	}

	c.requestsTotal.WithLabelValues(method, source, statusLabel(status)).Inc()
	c.requestDuration.WithLabelValues(source).Observe(duration.Seconds())
	if bytes > 0 {
		c.responseSize.WithLabelValues(source).Observe(float64(bytes))
	}
}

// RecordUpstreamFailure records a failed upstream fetch.
// Reason is "status" for non-2xx responses and "network" for transport errors.
func (c *Collector) RecordUpstreamFailure(reason string) {
	if c == nil || !c.config.Enabled {
		return
	}
	c.upstreamFailures.WithLabelValues(reason).Inc()
}

// RecordWatcherEvent records a file change event from the content watcher.
func (c *Collector) RecordWatcherEvent() {
	if c == nil || !c.config.Enabled {
		return
	}
	c.watcherEvents.Inc()
}

// SetReloadClients updates the connected live reload client count.
func (c *Collector) SetReloadClients(n int) {
	if c == nil || !c.config.Enabled {
		return
	}
	c.reloadClients.Set(float64(n))
}

// Registry returns the Prometheus registry used by this collector.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// statusLabel buckets status codes into their class to keep cardinality low.
func statusLabel(status int) string {
	switch {
	case status >= 500:
		return "5xx"
	case status >= 400:
		return "4xx"
	case status >= 300:
		return "3xx"
	default:
		return "2xx"
	}
}
