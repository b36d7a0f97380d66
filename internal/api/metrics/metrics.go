// Package metrics defines and registers the custom Prometheus metrics of the
// reporting system. It is the single source of truth for metric names,
// labels, and help strings.
//
// Metrics are registered with the default registry on package init through
// promauto; the /metrics endpoint exposes them next to the HTTP metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "reporting"

// ── Authentication metrics ────────────────────────────────────────────────────

// LoginAttemptsTotal counts login attempts.
// Label:
//   - result: "success", "invalid_credentials" or "error"
var LoginAttemptsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "login_attempts_total",
		Help:      "Total number of login attempts, by result.",
	},
	[]string{"result"},
)

// AuthenticationsTotal counts authentication pipeline outcomes.
// Label:
//   - result: "ok", "unauthenticated" or "error" (storage failure)
var AuthenticationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "authentications_total",
		Help:      "Total number of request authentications, by outcome.",
	},
	[]string{"result"},
)

// GuardDenialsTotal counts requests stopped by an authorization guard.
// Label:
//   - guard: "authenticated" or "role"
var GuardDenialsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "guard_denials_total",
		Help:      "Total number of requests denied by an authorization guard.",
	},
	[]string{"guard"},
)

// ── Session metrics ───────────────────────────────────────────────────────────

// SessionsRevokedTotal counts sessions removed before their expiry.
// Label:
//   - reason: "logout", "logout_all", "password_change", "deactivation" or "forced"
var SessionsRevokedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "sessions_revoked_total",
		Help:      "Total number of sessions revoked, by reason.",
	},
	[]string{"reason"},
)

// SessionsSweptTotal counts expired sessions removed by a sweep.
var SessionsSweptTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "sessions_swept_total",
		Help:      "Total number of expired sessions removed by sweeps.",
	},
)

// SessionStoreDuration measures session store calls.
// Labels:
//   - op: store method (e.g. "find_live", "create")
//   - outcome: "ok" or "error"
var SessionStoreDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "session_store_duration_seconds",
		Help:      "Duration of session store operations.",
		Buckets:   prometheus.DefBuckets,
	},
	[]string{"op", "outcome"},
)

// ── Report metrics ────────────────────────────────────────────────────────────

// ReportsCreatedTotal counts daily reports filed.
// Label:
//   - role: role of the author
var ReportsCreatedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "reports_created_total",
		Help:      "Total number of daily reports created, by author role.",
	},
	[]string{"role"},
)
