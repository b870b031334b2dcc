// Package metrics holds the Prometheus collectors exported on /metrics.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics contains the application collectors
type Metrics struct {
	registry *prometheus.Registry

	SessionScopes  *prometheus.CounterVec
	HTTPRequests   *prometheus.CounterVec
	HTTPDuration   *prometheus.HistogramVec
	LoginAttempts  *prometheus.CounterVec
	PlayersCreated prometheus.Counter
	PlayersDeleted prometheus.Counter
}

// New creates a registry with the Go and process collectors plus the
// application metrics.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())
	reg.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	m := &Metrics{
		registry: reg,
		SessionScopes: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "flaskfactor_session_scopes_total",
				Help: "Unit-of-work scopes by outcome",
			},
			[]string{"outcome"},
		),
		HTTPRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "flaskfactor_http_requests_total",
				Help: "HTTP requests by surface, method and status",
			},
			[]string{"surface", "method", "status"},
		),
		HTTPDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "flaskfactor_http_request_duration_seconds",
				Help:    "HTTP request latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"surface", "method"},
		),
		LoginAttempts: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "flaskfactor_login_attempts_total",
				Help: "Login attempts by result",
			},
			[]string{"result"},
		),
		PlayersCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "flaskfactor_players_created_total",
			Help: "Players added to the directory",
		}),
		PlayersDeleted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "flaskfactor_players_deleted_total",
			Help: "Players removed from the directory",
		}),
	}

	reg.MustRegister(m.SessionScopes, m.HTTPRequests, m.HTTPDuration,
		m.LoginAttempts, m.PlayersCreated, m.PlayersDeleted)
	return m
}

// Registry exposes the underlying registry for gathering
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{EnableOpenMetrics: true})
}

// ObserveRequest records one HTTP request. Safe on a nil receiver.
func (m *Metrics) ObserveRequest(surface, method, status string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.HTTPRequests.WithLabelValues(surface, method, status).Inc()
	m.HTTPDuration.WithLabelValues(surface, method).Observe(elapsed.Seconds())
}

// ObserveLogin records a login result. Safe on a nil receiver.
func (m *Metrics) ObserveLogin(result string) {
	if m == nil {
		return
	}
	m.LoginAttempts.WithLabelValues(result).Inc()
}
