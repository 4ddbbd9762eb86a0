// Package metrics provides Prometheus metrics for the rotation engine.
package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager owns the engine's Prometheus collectors.
type Manager struct {
	namespace string
	enabled   bool
	registry  prometheus.Registerer

	// Offline optimizer.
	solveDuration prometheus.Histogram
	solvesExact   prometheus.Counter
	solvesHeur    prometheus.Counter
	slotsUnfilled prometheus.Counter

	// Live dispatcher.
	commits            prometheus.Counter
	undos              prometheus.Counter
	fairnessViolations prometheus.Counter
	debtOutstanding    prometheus.Gauge
	sessionsActive     prometheus.Gauge
}

var (
	globalManager *Manager //nolint:gochecknoglobals // singleton metrics manager
	initOnce      sync.Once
)

// Option applies a configuration option to the Manager.
type Option func(*Manager)

// WithNamespace sets the namespace for all metrics.
func WithNamespace(namespace string) Option {
	return func(m *Manager) {
		if namespace != "" {
			m.namespace = namespace
		}
	}
}

// WithEnabled enables or disables metrics collection.
func WithEnabled(enabled bool) Option {
	return func(m *Manager) {
		m.enabled = enabled
	}
}

// WithRegistry sets a custom registerer, mainly for tests.
func WithRegistry(reg prometheus.Registerer) Option {
	return func(m *Manager) {
		if reg != nil {
			m.registry = reg
		}
	}
}

// NewManager creates a Manager and registers its collectors.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace: "rotation",
		enabled:   true,
		registry:  prometheus.DefaultRegisterer,
	}
	for _, opt := range opts {
		opt(m)
	}
	if !m.enabled {
		return m
	}
	factory := promauto.With(m.registry)

	m.solveDuration = factory.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: "solver",
		Name:      "solve_duration_seconds",
		Help:      "Wall time of offline plan solves.",
		Buckets:   prometheus.DefBuckets,
	})
	m.solvesExact = factory.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: "solver",
		Name:      "solves_exact_total",
		Help:      "Plans produced by the exact strategy.",
	})
	m.solvesHeur = factory.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: "solver",
		Name:      "solves_heuristic_total",
		Help:      "Plans produced by the greedy fallback.",
	})
	m.slotsUnfilled = factory.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: "solver",
		Name:      "slots_unfilled_total",
		Help:      "Slots left empty for lack of eligible candidates.",
	})
	m.commits = factory.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: "session",
		Name:      "commits_total",
		Help:      "Committed live turns.",
	})
	m.undos = factory.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: "session",
		Name:      "undos_total",
		Help:      "Undone live turns.",
	})
	m.fairnessViolations = factory.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: "session",
		Name:      "fairness_violations_total",
		Help:      "Committed picks that violated the +1 lead rule.",
	})
	m.debtOutstanding = factory.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: "session",
		Name:      "fairness_debt_outstanding",
		Help:      "Total carried fairness debt across all categories.",
	})
	m.sessionsActive = factory.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: "session",
		Name:      "active",
		Help:      "Sessions currently active.",
	})
	return m
}

// Init sets up the global manager. Safe to call more than once.
func Init(opts ...Option) {
	initOnce.Do(func() {
		globalManager = NewManager(opts...)
	})
}

func get() *Manager {
	if globalManager == nil {
		Init()
	}
	return globalManager
}

// Package-level helpers; no-ops when metrics are disabled.

// ObserveSolveDuration records one solve's wall time in seconds.
func ObserveSolveDuration(seconds float64) {
	if m := get(); m.enabled {
		m.solveDuration.Observe(seconds)
	}
}

// IncSolveExact counts an exact-strategy solve.
func IncSolveExact() {
	if m := get(); m.enabled {
		m.solvesExact.Inc()
	}
}

// IncSolveFallback counts a heuristic-fallback solve.
func IncSolveFallback() {
	if m := get(); m.enabled {
		m.solvesHeur.Inc()
	}
}

// AddUnfilledSlots counts slots left empty by a solve.
func AddUnfilledSlots(n int) {
	if m := get(); m.enabled && n > 0 {
		m.slotsUnfilled.Add(float64(n))
	}
}

// IncCommit counts a committed turn.
func IncCommit() {
	if m := get(); m.enabled {
		m.commits.Inc()
	}
}

// IncUndo counts an undone turn.
func IncUndo() {
	if m := get(); m.enabled {
		m.undos.Inc()
	}
}

// AddFairnessViolations counts committed picks that violated the rule.
func AddFairnessViolations(n int) {
	if m := get(); m.enabled && n > 0 {
		m.fairnessViolations.Add(float64(n))
	}
}

// SetDebtOutstanding publishes the carried debt total after a commit or undo.
func SetDebtOutstanding(total int) {
	if m := get(); m.enabled {
		m.debtOutstanding.Set(float64(total))
	}
}

// SessionStarted and SessionEnded track the active-session gauge.
func SessionStarted() {
	if m := get(); m.enabled {
		m.sessionsActive.Inc()
	}
}

// SessionEnded decrements the active-session gauge.
func SessionEnded() {
	if m := get(); m.enabled {
		m.sessionsActive.Dec()
	}
}
