package monitoring

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	registry *prometheus.Registry

	// HTTP metrics
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec

	// Terminal session metrics
	SessionsActive  prometheus.Gauge
	SessionsCreated prometheus.Counter
	SessionsKilled  prometheus.Counter
	TerminalReads   prometheus.Counter
	TerminalWrites  prometheus.Counter
	BytesRead       prometheus.Counter
	BytesWritten    prometheus.Counter
	ReadTimeouts    prometheus.Counter

	// WebSocket metrics
	WSConnections prometheus.Gauge

	// System metrics
	Uptime    prometheus.Gauge
	startTime time.Time
}

// NewMetrics creates a new metrics collector
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	m := &Metrics{
		registry:  reg,
		startTime: time.Now(),

		RequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "lovcode_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		RequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "lovcode_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
			},
			[]string{"method", "path"},
		),

		SessionsActive: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "lovcode_terminal_sessions_active",
				Help: "Number of registered terminal sessions",
			},
		),
		SessionsCreated: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "lovcode_terminal_sessions_created_total",
				Help: "Total number of terminal sessions created",
			},
		),
		SessionsKilled: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "lovcode_terminal_sessions_killed_total",
				Help: "Total number of terminal sessions killed",
			},
		),
		TerminalReads: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "lovcode_terminal_reads_total",
				Help: "Total number of terminal read operations",
			},
		),
		TerminalWrites: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "lovcode_terminal_writes_total",
				Help: "Total number of terminal write operations",
			},
		),
		BytesRead: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "lovcode_terminal_bytes_read_total",
				Help: "Total bytes read from terminal sessions",
			},
		),
		BytesWritten: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "lovcode_terminal_bytes_written_total",
				Help: "Total bytes written to terminal sessions",
			},
		),
		ReadTimeouts: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "lovcode_terminal_read_timeouts_total",
				Help: "Total number of reads that timed out with no data",
			},
		),

		WSConnections: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "lovcode_ws_connections",
				Help: "Number of active WebSocket connections",
			},
		),

		Uptime: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "lovcode_uptime_seconds",
				Help: "Backend uptime in seconds",
			},
		),
	}

	// Start uptime updater
	go m.updateUptime()

	return m
}

// updateUptime continuously updates the uptime metric
func (m *Metrics) updateUptime() {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for range ticker.C {
		m.Uptime.Set(time.Since(m.startTime).Seconds())
	}
}

// Handler returns the Prometheus exposition handler for this collector
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// RecordHTTPRequest records an HTTP request
func (m *Metrics) RecordHTTPRequest(method, path, status string, duration time.Duration) {
	m.RequestsTotal.WithLabelValues(method, path, status).Inc()
	m.RequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

// SetSessionsActive sets the number of registered terminal sessions
func (m *Metrics) SetSessionsActive(count int) {
	m.SessionsActive.Set(float64(count))
}

// IncSessionsCreated increments the sessions created counter
func (m *Metrics) IncSessionsCreated() {
	m.SessionsCreated.Inc()
}

// IncSessionsKilled increments the sessions killed counter
func (m *Metrics) IncSessionsKilled() {
	m.SessionsKilled.Inc()
}

// AddTerminalBytesRead records bytes drained from a session PTY
func (m *Metrics) AddTerminalBytesRead(n int) {
	m.TerminalReads.Inc()
	m.BytesRead.Add(float64(n))
}

// AddTerminalBytesWritten records bytes written to a session PTY
func (m *Metrics) AddTerminalBytesWritten(n int) {
	m.TerminalWrites.Inc()
	m.BytesWritten.Add(float64(n))
}

// IncTerminalReadTimeouts increments the read timeout counter
func (m *Metrics) IncTerminalReadTimeouts() {
	m.ReadTimeouts.Inc()
}

// IncWSConnections increments WebSocket connections
func (m *Metrics) IncWSConnections() {
	m.WSConnections.Inc()
}

// DecWSConnections decrements WebSocket connections
func (m *Metrics) DecWSConnections() {
	m.WSConnections.Dec()
}
