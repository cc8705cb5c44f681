// Package metrics defines and registers all custom Prometheus metrics for the
// business planner service. It is the single source of truth for metric names,
// labels, and help strings.
//
// Metrics are registered with the default Prometheus registry on import.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "planner"

// ── Persistence gateway ───────────────────────────────────────────────────────

// GatewayFallbackTotal counts operations served by the local store instead of the remote backend.
// Labels:
//   - entity: gateway namespace (e.g. "plans", "drafts")
//   - op: "save", "list", "get" or "delete"
//   - reason: "unconfigured", "owner_shape" or "remote_error"
var GatewayFallbackTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "gateway_fallback_total",
		Help:      "Total number of gateway operations that fell back to local storage.",
	},
	[]string{"entity", "op", "reason"},
)

// ── Wizard ────────────────────────────────────────────────────────────────────

// GenerationsTotal counts plan generation attempts.
// Label:
//   - outcome: "success", "error", "quota_exceeded" or "discarded"
var GenerationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "generations_total",
		Help:      "Total number of plan generation attempts, by outcome.",
	},
	[]string{"outcome"},
)

// GenerationDuration measures how long the generation collaborator takes.
var GenerationDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "generation_duration_seconds",
		Help:      "Duration of plan generation calls.",
		Buckets:   []float64{.5, 1, 2.5, 5, 10, 20, 40, 80},
	},
	[]string{"model_tier"},
)

// DraftWritesTotal counts autosave writes that reached the gateway.
// Label:
//   - result: "saved", "cleared" or "failed"
var DraftWritesTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "draft_writes_total",
		Help:      "Total number of debounced draft writes.",
	},
	[]string{"result"},
)

// ── Content ───────────────────────────────────────────────────────────────────

// BlogGenerationsTotal counts automated blog generation decisions.
// Label:
//   - result: "created", "limited" or "failed"
var BlogGenerationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "blog_generations_total",
		Help:      "Total number of automated blog generation attempts, by result.",
	},
	[]string{"result"},
)

// TestimonialsModeratedTotal counts moderation outcomes.
var TestimonialsModeratedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "testimonials_moderated_total",
		Help:      "Total number of moderated testimonial submissions.",
	},
	[]string{"outcome"},
)

// ── Accounts ──────────────────────────────────────────────────────────────────

// PlanChangesTotal counts tier changes.
// Labels:
//   - change: "upgrade", "downgrade" or "unchanged"
//   - status: "confirmed" or "applied_locally"
var PlanChangesTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "plan_changes_total",
		Help:      "Total number of subscription tier changes.",
	},
	[]string{"change", "status"},
)

// ActiveSessions tracks the number of client sessions held in memory.
var ActiveSessions = promauto.NewGauge(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "active_sessions",
		Help:      "Current number of client sessions held by the registry.",
	},
)
