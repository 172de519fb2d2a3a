// Package metrics defines the Prometheus metrics of the marketplace console.
// Metrics register with the default registry on import and are served by
// promhttp on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "marketplace"

// ── Backend calls ─────────────────────────────────────────────────────────────

// APIRequestsTotal counts calls to the marketplace backend.
// Labels:
//   - endpoint: logical operation (e.g. "list_orders", "login")
//   - code: HTTP status, or "error" when no response arrived
var APIRequestsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "api_requests_total",
		Help:      "Total number of requests sent to the marketplace backend.",
	},
	[]string{"endpoint", "code"},
)

// APIRequestDuration measures backend round trips, rate limiter wait included.
var APIRequestDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "api_request_duration_seconds",
		Help:      "Duration of marketplace backend requests.",
		Buckets:   prometheus.DefBuckets,
	},
	[]string{"endpoint"},
)

// ── Session ───────────────────────────────────────────────────────────────────

// GuardDecisionsTotal counts route guard outcomes.
// Labels:
//   - route: the route path pattern
//   - outcome: render, wait, redirect_login or redirect_default
var GuardDecisionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "guard_decisions_total",
		Help:      "Total number of route guard decisions, by route and outcome.",
	},
	[]string{"route", "outcome"},
)

// SessionEventsTotal counts session transitions such as login, logout and
// the bootstrap result.
var SessionEventsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "session_events_total",
		Help:      "Total number of session transitions, by event.",
	},
	[]string{"event"},
)

// NotificationsTotal counts toasts pushed to the user, by level.
var NotificationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "notifications_total",
		Help:      "Total number of user notifications, by level.",
	},
	[]string{"level"},
)

// ── Realtime ──────────────────────────────────────────────────────────────────

var RealtimeEventsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "realtime_events_total",
		Help:      "Total number of realtime order events received, by type.",
	},
	[]string{"type"},
)

// RealtimeConnected is 1 while the order events socket is open.
var RealtimeConnected = promauto.NewGauge(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "realtime_connected",
		Help:      "Whether the realtime order events socket is connected.",
	},
)
