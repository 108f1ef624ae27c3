package core

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics collects auth counters. A nil *Metrics is valid and records
// nothing, so tests can skip registration.
type Metrics struct {
	registrations prometheus.Counter
	loginSuccess  prometheus.Counter
	loginFailure  prometheus.Counter
	verifyFailure *prometheus.CounterVec
}

// NewMetrics creates the collector and registers it with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		registrations: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "shoestore_registrations_total",
			Help: "Total successful account registrations",
		}),
		loginSuccess: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "shoestore_login_success_total",
			Help: "Total successful logins",
		}),
		loginFailure: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "shoestore_login_failure_total",
			Help: "Total rejected login attempts",
		}),
		verifyFailure: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "shoestore_auth_verify_failure_total",
			Help: "Artifact verification failures by reason",
		}, []string{"reason"}),
	}

	reg.MustRegister(m.registrations, m.loginSuccess, m.loginFailure, m.verifyFailure)
	return m
}

func (m *Metrics) RecordRegistration() {
	if m != nil {
		m.registrations.Inc()
	}
}

func (m *Metrics) RecordLoginSuccess() {
	if m != nil {
		m.loginSuccess.Inc()
	}
}

func (m *Metrics) RecordLoginFailure() {
	if m != nil {
		m.loginFailure.Inc()
	}
}

func (m *Metrics) RecordVerifyFailure(reason string) {
	if m != nil {
		m.verifyFailure.WithLabelValues(reason).Inc()
	}
}
