package accounts

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	loginAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "accounts",
			Subsystem: "auth",
			Name:      "login_attempts_total",
			Help:      "Login attempts by result",
		},
		[]string{"result"},
	)

	tokensIssued = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "accounts",
			Subsystem: "auth",
			Name:      "tokens_issued_total",
			Help:      "Access tokens issued by role",
		},
		[]string{"role"},
	)

	registrationsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "accounts",
			Subsystem: "users",
			Name:      "registrations_total",
			Help:      "Successfully registered users",
		},
	)
)
