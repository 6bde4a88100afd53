// Package metrics collects and exposes Prometheus metrics.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Outcome labels
const (
	OutcomeSuccess   = "success"
	OutcomeInvalid   = "invalid"
	OutcomeDuplicate = "duplicate"
	OutcomeConflict  = "conflict"
	OutcomeError     = "error"
)

// Login method labels
const (
	MethodPassword = "password"
	MethodGoogle   = "google"
)

// AuthRecorder is what the auth service reports to.
type AuthRecorder interface {
	RecordRegistration(outcome string)
	RecordLogin(method, outcome string)
}

// HTTPRecorder is what the request middleware reports to.
type HTTPRecorder interface {
	RecordRequest(method, route string, status int, duration time.Duration)
}

// Collector implements AuthRecorder and HTTPRecorder on Prometheus vectors
type Collector struct {
	registrations   *prometheus.CounterVec
	logins          *prometheus.CounterVec
	requests        *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
}

var (
	_ AuthRecorder = (*Collector)(nil)
	_ HTTPRecorder = (*Collector)(nil)
)

// NewCollector creates the storefront metrics and registers them with reg.
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		registrations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "storefront_auth_registrations_total",
			Help: "Local registration attempts by outcome",
		}, []string{"outcome"}),
		logins: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "storefront_auth_logins_total",
			Help: "Login attempts by method and outcome",
		}, []string{"method", "outcome"}),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "storefront_http_requests_total",
			Help: "HTTP requests by method, route and status",
		}, []string{"method", "route", "status"}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "storefront_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}

	reg.MustRegister(c.registrations, c.logins, c.requests, c.requestDuration)
	return c
}

func (c *Collector) RecordRegistration(outcome string) {
	c.registrations.WithLabelValues(outcome).Inc()
}

func (c *Collector) RecordLogin(method, outcome string) {
	c.logins.WithLabelValues(method, outcome).Inc()
}

func (c *Collector) RecordRequest(method, route string, status int, duration time.Duration) {
	c.requests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	c.requestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

// Handler serves the gatherer in the Prometheus exposition format.
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

// Nop discards everything. Used when metrics are not wired.
type Nop struct{}

func (Nop) RecordRegistration(string)                        {}
func (Nop) RecordLogin(string, string)                       {}
func (Nop) RecordRequest(string, string, int, time.Duration) {}
