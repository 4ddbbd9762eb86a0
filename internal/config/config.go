// Package config defines engine configuration structures and loading hooks.
//
// Conventions:
// - Provide New(...) to build a Config with defaults.
// - Load layers defaults, an optional YAML file, and env vars.
// - External errors must be wrapped via this package's error helpers.
package config

import (
	"context"
)

// Config contains process configuration. Extend as needed.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// MetricsAddr exposes Prometheus metrics when non-empty, e.g. ":9090".
	MetricsAddr string `koanf:"metrics_addr"`

	// Variant selects the formation: offense, defense-53, defense-44.
	Variant string `koanf:"variant"`

	// TotalSeries is the number of series the offline plan covers.
	TotalSeries int `koanf:"total_series"`

	// EvennessCapEnabled and EvennessCapValue widen the appearance bounds
	// around the mean load. Disabling the cap leaves the raw floor/ceil.
	EvennessCapEnabled bool `koanf:"evenness_cap_enabled"`
	EvennessCapValue   int  `koanf:"evenness_cap_value"`

	// LimitedPenalty tightens the upper bound for flagged limited players.
	LimitedPenalty float64 `koanf:"limited_penalty"`

	// LimitedDefault is how a roster without a limited attribute reads:
	// false means absence is "not limited".
	LimitedDefault bool `koanf:"limited_default"`

	// PreferenceWeights is the weight table for ranks 1..n, strictly
	// decreasing.
	PreferenceWeights []float64 `koanf:"preference_weights"`

	// MismatchPenalty is the objective deduction for lower-preference
	// placements.
	MismatchPenalty float64 `koanf:"mismatch_penalty"`

	// GreedyFairness is the per-appearance score deduction in the heuristic
	// fallback.
	GreedyFairness float64 `koanf:"greedy_fairness"`

	// RandomSeed seeds the deterministic tie-break jitter.
	RandomSeed int64 `koanf:"random_seed"`

	// SolverStepBudget bounds the exact strategy's work before falling back.
	SolverStepBudget int `koanf:"solver_step_budget"`
}

// New creates a Config with defaults. Context is accepted first to satisfy
// the project-wide convention; it is reserved for future use.
func New(_ context.Context) *Config {
	return &Config{
		LogLevel:           "info",
		MetricsAddr:        "",
		Variant:            "offense",
		TotalSeries:        8,
		EvennessCapEnabled: true,
		EvennessCapValue:   1,
		LimitedPenalty:     0.3,
		LimitedDefault:     false,
		PreferenceWeights:  []float64{4, 3, 2, 1},
		MismatchPenalty:    1.0,
		GreedyFairness:     1.0,
		RandomSeed:         42,
		SolverStepBudget:   4_000_000,
	}
}
