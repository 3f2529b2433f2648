// Package telemetry holds padnav's Prometheus metrics and OpenTelemetry tracing.
package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Search strategies reported in the moves metric.
const (
	StrategyOverride = "override"
	StrategyCapture  = "capture"
	StrategyRaycast  = "raycast"
	StrategyBoundary = "boundary"
	StrategyDefault  = "default"
	StrategyRequest  = "request"
)

var (
	// Input metrics
	DirectionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "padnav",
			Subsystem: "input",
			Name:      "directions_total",
			Help:      "Directions emitted by the input normalizer",
		},
		[]string{"direction", "source"},
	)

	KeysSuppressedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "padnav",
			Subsystem: "input",
			Name:      "form_suppressed_total",
			Help:      "Key presses left to a form control instead of navigating",
		},
	)

	GamepadsConnected = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "padnav",
			Subsystem: "input",
			Name:      "gamepads_connected",
			Help:      "Number of gamepads currently being polled",
		},
	)

	// Navigation metrics
	MovesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "padnav",
			Subsystem: "nav",
			Name:      "moves_total",
			Help:      "Committed selection changes by resolution strategy",
		},
		[]string{"strategy"},
	)

	SearchMissesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "padnav",
			Subsystem: "nav",
			Name:      "search_misses_total",
			Help:      "Directional moves that found no candidate",
		},
		[]string{"direction"},
	)

	EventsPreventedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "padnav",
			Subsystem: "nav",
			Name:      "events_prevented_total",
			Help:      "Navigation events whose default action was prevented by a handler",
		},
		[]string{"direction"},
	)

	SearchDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "padnav",
			Subsystem: "nav",
			Name:      "search_seconds",
			Help:      "Candidate search latency in seconds",
			Buckets:   prometheus.ExponentialBuckets(0.00001, 2, 12), // 10us to ~20ms
		},
		[]string{"strategy"},
	)

	TrapDepth = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "padnav",
			Subsystem: "nav",
			Name:      "trap_depth",
			Help:      "Number of active focus traps",
		},
	)

	RegisteredRecords = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "padnav",
			Subsystem: "nav",
			Name:      "registered_records",
			Help:      "Focusable records currently in the registry",
		},
	)

	// Remote control metrics
	RemoteCommandsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "padnav",
			Subsystem: "remote",
			Name:      "commands_total",
			Help:      "Remote direction commands by transport and outcome",
		},
		[]string{"transport", "result"},
	)
)
