// Package metrics defines and registers all custom Prometheus metrics for the
// Student Material Hub API. It is the single source of truth for metric names,
// labels, and help strings.
//
// Metrics register with the default Prometheus registry at init time via
// promauto; the /metrics route is exposed by the router.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "studenthub"

// ── Auth metrics ──────────────────────────────────────────────────────────────

// RegistrationsTotal counts completed registrations.
var RegistrationsTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "registrations_total",
		Help:      "Total number of accounts registered.",
	},
)

// LoginsTotal counts login attempts by outcome.
// Label:
//   - result: "success", "invalid_credentials", "locked", "unverified", "suspended"
var LoginsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "logins_total",
		Help:      "Total number of login attempts, labelled by outcome.",
	},
	[]string{"result"},
)

// LockoutsTotal counts accounts entering the locked state.
var LockoutsTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "lockouts_total",
		Help:      "Total number of accounts locked after repeated failed logins.",
	},
)

// EmailsSentTotal counts mail handed to the delivery adapter.
// Labels:
//   - kind: "verification", "reset", "welcome"
//   - result: "ok" or "error"
var EmailsSentTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "emails_sent_total",
		Help:      "Total number of emails sent, labelled by kind and result.",
	},
	[]string{"kind", "result"},
)

// ── Content metrics ───────────────────────────────────────────────────────────

// MaterialsUploadedTotal counts uploaded materials by type.
// Label:
//   - material_type: "notes", "assignment", "question-paper", "presentation", "book", "other"
var MaterialsUploadedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "materials_uploaded_total",
		Help:      "Total number of materials uploaded, by material type.",
	},
	[]string{"material_type"},
)

// MaterialDownloadsTotal counts recorded downloads.
var MaterialDownloadsTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "material_downloads_total",
		Help:      "Total number of material downloads recorded.",
	},
)

// QuestionsAskedTotal counts forum questions created.
var QuestionsAskedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "questions_asked_total",
		Help:      "Total number of forum questions asked.",
	},
)

// RateLimitedTotal counts requests rejected by the rate limiter.
var RateLimitedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "rate_limited_total",
		Help:      "Total number of requests rejected with 429.",
	},
)
