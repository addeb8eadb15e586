// Package metrics collects Prometheus counters for authentication and HTTP
// traffic and exposes them for scraping.
package metrics

import (
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// AuthRecorder is what the auth layer reports to.
type AuthRecorder interface {
	LoginSucceeded()
	LoginFailed()
	SessionCreated()
	SessionExpired()
	SessionDestroyed()
	SessionsSwept(n int64)
}

// HTTPRecorder is what the request logging middleware reports to.
type HTTPRecorder interface {
	RecordHTTPStatus(code int)
}

// Collector implements AuthRecorder and HTTPRecorder on Prometheus.
type Collector struct {
	logins     *prometheus.CounterVec
	sessions   *prometheus.CounterVec
	httpStatus *prometheus.CounterVec
}

func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		logins: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "clinic_logins_total",
			Help: "Login attempts by outcome.",
		}, []string{"outcome"}),
		sessions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "clinic_sessions_total",
			Help: "Session lifecycle events.",
		}, []string{"event"}),
		httpStatus: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "clinic_http_responses_total",
			Help: "HTTP responses by status code.",
		}, []string{"status_code"}),
	}
	reg.MustRegister(c.logins, c.sessions, c.httpStatus)
	return c
}

func (c *Collector) LoginSucceeded() { c.logins.WithLabelValues("success").Inc() }
func (c *Collector) LoginFailed() { c.logins.WithLabelValues("failure").Inc() }
func (c *Collector) SessionCreated() { c.sessions.WithLabelValues("created").Inc() }
func (c *Collector) SessionExpired() { c.sessions.WithLabelValues("expired").Inc() }
func (c *Collector) SessionDestroyed() { c.sessions.WithLabelValues("destroyed").Inc() }

func (c *Collector) SessionsSwept(n int64) {
	c.sessions.WithLabelValues("swept").Add(float64(n))
}

func (c *Collector) RecordHTTPStatus(code int) {
	c.httpStatus.WithLabelValues(strconv.Itoa(code)).Inc()
}

// Nop discards everything.
type Nop struct{}

func (Nop) LoginSucceeded() {}
func (Nop) LoginFailed() {}
func (Nop) SessionCreated() {}
func (Nop) SessionExpired() {}
func (Nop) SessionDestroyed() {}
func (Nop) SessionsSwept(int64) {}
func (Nop) RecordHTTPStatus(int) {}

// Handler serves the registry in the Prometheus text format.
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}
