// Package metrics exposes Prometheus collectors for the share wall.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the collectors registered on its own registry.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	SharesSubmitted   prometheus.Counter
	ModerationActions *prometheus.CounterVec
	ImageCleanupFails prometheus.Counter
	ContactsSubmitted prometheus.Counter
	LoginAttempts     *prometheus.CounterVec
	HTTPRequests      *prometheus.CounterVec
	HTTPDuration      *prometheus.HistogramVec
}

// New creates and registers all collectors, plus the Go runtime and process collectors.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		SharesSubmitted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "sharewall_shares_submitted_total",
			Help: "Shares accepted from visitors.",
		}),
		ModerationActions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "sharewall_moderation_actions_total",
			Help: "Admin moderation actions by action and result.",
		}, []string{"action", "result"}),
		ImageCleanupFails: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "sharewall_image_cleanup_failures_total",
			Help: "Images left in storage because deletion failed.",
		}),
		ContactsSubmitted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "sharewall_contacts_submitted_total",
			Help: "Contact inquiries accepted from visitors.",
		}),
		LoginAttempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "sharewall_admin_login_attempts_total",
			Help: "Admin login attempts by result.",
		}, []string{"result"}),
		HTTPRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "sharewall_http_requests_total",
			Help: "HTTP requests by method and status code.",
		}, []string{"method", "code"}),
		HTTPDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "sharewall_http_request_duration_seconds",
			Help:    "HTTP request latency.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method"}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.SharesSubmitted,
		m.ModerationActions,
		m.ImageCleanupFails,
		m.ContactsSubmitted,
		m.LoginAttempts,
		m.HTTPRequests,
		m.HTTPDuration,
	)
	return m
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) ShareSubmitted() {
	if m == nil {
		return
	}
	m.SharesSubmitted.Inc()
}

// Moderation records one publish/unpublish/delete outcome.
func (m *Metrics) Moderation(action string, err error) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.ModerationActions.WithLabelValues(action, result).Inc()
}

func (m *Metrics) ImageCleanupFailed() {
	if m == nil {
		return
	}
	m.ImageCleanupFails.Inc()
}

func (m *Metrics) ContactSubmitted() {
	if m == nil {
		return
	}
	m.ContactsSubmitted.Inc()
}

func (m *Metrics) Login(ok bool) {
	if m == nil {
		return
	}
	result := "failure"
	if ok {
		result = "success"
	}
	m.LoginAttempts.WithLabelValues(result).Inc()
}

// ObserveRequest records a finished HTTP request.
func (m *Metrics) ObserveRequest(method string, status int, d time.Duration) {
	if m == nil {
		return
	}
	m.HTTPRequests.WithLabelValues(method, strconv.Itoa(status)).Inc()
	m.HTTPDuration.WithLabelValues(method).Observe(d.Seconds())
}
