package solver

import (
	"github.com/snapwise/rotation/internal/domain/scoring"
	"github.com/snapwise/rotation/pkg/logger"
)

// Option applies a configuration option to the Solver.
type Option func(*Solver)

// WithScoring sets the suitability engine used to score candidates.
func WithScoring(engine *scoring.Engine) Option {
	return func(s *Solver) {
		if engine != nil {
			s.scorer = engine
		}
	}
}

// WithEvennessCap widens the appearance bounds by cap around the mean load.
// A negative cap disables the evenness constraint entirely.
func WithEvennessCap(cap int) Option {
	return func(s *Solver) {
		s.capEnabled = cap >= 0
		if cap >= 0 {
			s.capValue = cap
		}
	}
}

// WithLimitedPenalty tightens the upper bound for flagged limited players.
func WithLimitedPenalty(penalty float64) Option {
	return func(s *Solver) {
		if penalty >= 0 {
			s.limitedPenalty = penalty
		}
	}
}

// WithMismatchPenalty sets the objective penalty multiplier for
// lower-preference placements.
func WithMismatchPenalty(mu float64) Option {
	return func(s *Solver) {
		if mu >= 0 {
			s.mismatchPenalty = mu
		}
	}
}

// WithGreedyFairness sets the per-appearance score deduction used by the
// heuristic fallback to steer toward underused players.
func WithGreedyFairness(k float64) Option {
	return func(s *Solver) {
		if k >= 0 {
			s.greedyFairness = k
		}
	}
}

// WithSeed seeds the deterministic tie-break jitter.
func WithSeed(seed int64) Option {
	return func(s *Solver) {
		s.seed = seed
	}
}

// WithStepBudget bounds the exact strategy's work; exceeding it triggers the
// heuristic fallback instead of a hang.
func WithStepBudget(steps int) Option {
	return func(s *Solver) {
		if steps > 0 {
			s.stepBudget = steps
		}
	}
}

// WithLogger sets a custom logger for the solver.
func WithLogger(log logger.Logger) Option {
	return func(s *Solver) {
		if log != nil {
			s.log = log
		}
	}
}
