// Package metrics exposes chat and login counters to Prometheus.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/pelusa-v/tidbid/internal/view"
)

const namespace = "tidbid"

// Metrics owns a private registry so tests can build as many as they like.
type Metrics struct {
	reg *prometheus.Registry

	messagesSent   *prometheus.CounterVec
	repliesShown   *prometheus.CounterVec
	threadsCleared *prometheus.CounterVec
	logins         *prometheus.CounterVec
	registrations  prometheus.Counter
	limited        *prometheus.CounterVec
	sessions       prometheus.Gauge
	sockets        prometheus.Gauge
}

func New() *Metrics {
	m := &Metrics{
		reg: prometheus.NewRegistry(),
		messagesSent: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "messages_sent_total",
			Help:      "Messages sent by users.",
		}, []string{"surface"}),
		repliesShown: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "replies_delivered_total",
			Help:      "Simulated replies appended to a thread, by whether the thread was on screen.",
		}, []string{"surface", "visible"}),
		threadsCleared: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "threads_cleared_total",
			Help:      "Threads reset to the greeting.",
		}, []string{"surface"}),
		logins: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "logins_total",
			Help:      "Login attempts by role and result.",
		}, []string{"role", "result"}),
		registrations: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "registrations_total",
			Help:      "Clients registered.",
		}),
		limited: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rate_limited_total",
			Help:      "Requests refused by a rate limiter.",
		}, []string{"limiter"}),
		sessions: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "sessions_active",
			Help:      "Live browser sessions.",
		}),
		sockets: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "websockets_active",
			Help:      "Open websocket connections.",
		}),
	}
	m.reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.messagesSent, m.repliesShown, m.threadsCleared,
		m.logins, m.registrations, m.limited,
		m.sessions, m.sockets,
	)
	return m
}

func (m *Metrics) Registry() *prometheus.Registry { return m.reg }

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.reg, promhttp.HandlerOpts{})
}

func (m *Metrics) MessageSent(s view.Surface) {
	m.messagesSent.WithLabelValues(string(s)).Inc()
}

func (m *Metrics) ReplyDelivered(s view.Surface, visible bool) {
	v := "false"
	if visible {
		v = "true"
	}
	m.repliesShown.WithLabelValues(string(s), v).Inc()
}

func (m *Metrics) ThreadCleared(s view.Surface) {
	m.threadsCleared.WithLabelValues(string(s)).Inc()
}

// Login records a login attempt; role is "admin" or "client".
func (m *Metrics) Login(role string, ok bool) {
	result := "failure"
	if ok {
		result = "success"
	}
	m.logins.WithLabelValues(role, result).Inc()
}

func (m *Metrics) Registered() { m.registrations.Inc() }

func (m *Metrics) Limited(limiter string) { m.limited.WithLabelValues(limiter).Inc() }

func (m *Metrics) SessionOpened() { m.sessions.Inc() }

func (m *Metrics) SessionClosed() { m.sessions.Dec() }

func (m *Metrics) SocketOpened() { m.sockets.Inc() }

func (m *Metrics) SocketClosed() { m.sockets.Dec() }
