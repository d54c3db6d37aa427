// Package metrics holds the Prometheus instruments of the service.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics is safe to use through a nil pointer; every method is then a no-op.
//
// Metrics:
//   - goalforge_http_requests_total{method,route,status}
//   - goalforge_http_request_duration_seconds{method,route}
//   - goalforge_notifications_created_total{type}
//   - goalforge_deadline_runs_total
//   - goalforge_deadline_notifications_total
//   - goalforge_ws_connections
type Metrics struct {
	gatherer prometheus.Gatherer

	httpRequests          *prometheus.CounterVec
	httpDuration          *prometheus.HistogramVec
	notificationsCreated  *prometheus.CounterVec
	deadlineRuns          prometheus.Counter
	deadlineNotifications prometheus.Counter
	wsConnections         prometheus.Gauge
}

// New registers the instruments on a fresh registry together with the Go
// runtime and process collectors.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	f := promauto.With(reg)

	return &Metrics{
		gatherer: reg,
		httpRequests: f.NewCounterVec(prometheus.CounterOpts{
			Name: "goalforge_http_requests_total",
			Help: "HTTP requests by route and status.",
		}, []string{"method", "route", "status"}),
		httpDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "goalforge_http_request_duration_seconds",
			Help:    "HTTP request latency.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
		notificationsCreated: f.NewCounterVec(prometheus.CounterOpts{
			Name: "goalforge_notifications_created_total",
			Help: "Notifications written to user inboxes.",
		}, []string{"type"}),
		deadlineRuns: f.NewCounter(prometheus.CounterOpts{
			Name: "goalforge_deadline_runs_total",
			Help: "Completed deadline check passes.",
		}),
		deadlineNotifications: f.NewCounter(prometheus.CounterOpts{
			Name: "goalforge_deadline_notifications_total",
			Help: "Overdue and due-soon notifications created by deadline checks.",
		}),
		wsConnections: f.NewGauge(prometheus.GaugeOpts{
			Name: "goalforge_ws_connections",
			Help: "Open websocket subscriptions.",
		}),
	}
}

func (m *Metrics) ObserveRequest(method, route string, status int, d time.Duration) {
	if m == nil {
		return
	}
	m.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.httpDuration.WithLabelValues(method, route).Observe(d.Seconds())
}

func (m *Metrics) NotificationCreated(typ string) {
	if m == nil {
		return
	}
	m.notificationsCreated.WithLabelValues(typ).Inc()
}

// DeadlineRun records one pass and how many notifications it created.
func (m *Metrics) DeadlineRun(created int) {
	if m == nil {
		return
	}
	m.deadlineRuns.Inc()
	m.deadlineNotifications.Add(float64(created))
}

func (m *Metrics) WSOpened() {
	if m != nil {
		m.wsConnections.Inc()
	}
}

func (m *Metrics) WSClosed() {
	if m != nil {
		m.wsConnections.Dec()
	}
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}
