// Package metrics exposes Prometheus counters for the authentication flow and
// an HTTP server publishing them together with a health probe.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Status label values.
const (
	StatusOK       = "ok"
	StatusConflict = "conflict"
	StatusInvalid  = "invalid"
	StatusNotFound = "not_found"
	StatusError    = "error"
)

// Metrics holds the service counters. A nil *Metrics is valid and records
// nothing, which keeps components usable without a registry in tests.
type Metrics struct {
	Registrations      *prometheus.CounterVec
	Logins             *prometheus.CounterVec
	SessionsSuperseded prometheus.Counter
	TokenValidations   *prometheus.CounterVec
}

// New creates the counters and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Registrations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "gophauth_registrations_total",
				Help: "Total number of registration attempts by status",
			},
			[]string{"status"},
		),
		Logins: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "gophauth_logins_total",
				Help: "Total number of login attempts by status",
			},
			[]string{"status"},
		),
		SessionsSuperseded: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "gophauth_sessions_superseded_total",
				Help: "Total number of live tokens replaced by a newer login",
			},
		),
		TokenValidations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "gophauth_token_validations_total",
				Help: "Total number of bearer token validations by result",
			},
			[]string{"result"},
		),
	}

	reg.MustRegister(m.Registrations, m.Logins, m.SessionsSuperseded, m.TokenValidations)
	return m
}

func (m *Metrics) Registration(status string) {
	if m == nil {
		return
	}
	m.Registrations.WithLabelValues(status).Inc()
}

func (m *Metrics) Login(status string) {
	if m == nil {
		return
	}
	m.Logins.WithLabelValues(status).Inc()
}

func (m *Metrics) Superseded() {
	if m == nil {
		return
	}
	m.SessionsSuperseded.Inc()
}

func (m *Metrics) TokenValidation(result string) {
	if m == nil {
		return
	}
	m.TokenValidations.WithLabelValues(result).Inc()
}
