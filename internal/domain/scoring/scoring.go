// Package scoring computes player eligibility and suitability for positions.
//
// The strength index is a small integer ranking derived from two independent
// ratings; it is never a probability. Preference rank is the sole eligibility
// predicate used anywhere in the engine.
package scoring

import (
	"github.com/snapwise/rotation/internal/domain/formation"
	"github.com/snapwise/rotation/internal/domain/model"
)

// Rating scores for the two independent player ratings.
var (
	roleScore = map[string]int{
		model.RoleExplorer:  1,
		model.RoleConnector: 2,
		model.RoleDriver:    3,
	}
	energyScore = map[string]int{
		model.EnergyLow:    0,
		model.EnergyMedium: 1,
		model.EnergyHigh:   2,
	}
)

// DefaultWeights is the preference weight table for ranks 1..4.
var DefaultWeights = []float64{4, 3, 2, 1}

// StrengthIndex combines the two ratings into a single ranking integer.
// Unknown labels contribute zero.
func StrengthIndex(p model.Player) int {
	return roleScore[p.Role]*10 + energyScore[p.Energy]
}

// PreferenceRank returns the 1-based rank of pos in the player's preference
// list for side, or false if the player is ineligible for the position.
func PreferenceRank(p model.Player, pos string, side formation.Side) (int, bool) {
	prefs := p.Offense
	if side == formation.Defense {
		prefs = p.Defense
	}
	for i, pref := range prefs {
		if pref != "" && pref == pos {
			return i + 1, true
		}
	}
	return 0, false
}

// Option applies a configuration option to the Engine.
type Option func(*Engine)

// WithWeights sets the preference weight table, indexed by rank-1.
func WithWeights(weights []float64) Option {
	return func(e *Engine) {
		if len(weights) > 0 {
			e.weights = append([]float64(nil), weights...)
		}
	}
}

// Engine scores (player, position, side) triples with a configurable
// preference weight table.
type Engine struct {
	weights []float64
}

// New creates an Engine with the default weight table.
func New(opts ...Option) (*Engine, error) {
	e := &Engine{weights: DefaultWeights}
	for _, opt := range opts {
		opt(e)
	}
	if err := validateWeights(e.weights); err != nil {
		return nil, err
	}
	return e, nil
}

// validateWeights rejects tables that are empty, non-positive, or not
// strictly decreasing. Equal adjacent weights would stop discouraging
// lower-preference placements, so they are rejected too.
func validateWeights(weights []float64) error {
	if len(weights) == 0 {
		return ErrInvalidWeights
	}
	prev := weights[0]
	for i, w := range weights {
		if w <= 0 {
			return ErrInvalidWeights
		}
		if i > 0 && w >= prev {
			return ErrInvalidWeights
		}
		prev = w
	}
	return nil
}

// Weight returns the weight for a 1-based preference rank. Ranks beyond the
// table reuse the last (smallest) weight.
func (e *Engine) Weight(rank int) float64 {
	if rank < 1 {
		return 0
	}
	if rank > len(e.weights) {
		return e.weights[len(e.weights)-1]
	}
	return e.weights[rank-1]
}

// Suitability scores a player for a position. Ineligible pairs score zero and
// must never be selected.
func (e *Engine) Suitability(p model.Player, pos string, side formation.Side) float64 {
	rank, ok := PreferenceRank(p, pos, side)
	if !ok {
		return 0
	}
	return float64(StrengthIndex(p)) * e.Weight(rank)
}

// Mismatch returns the objective penalty factor (1 - weight(rank)) normalized
// against the rank-1 weight, so lower-preference placements are measurably
// discouraged even when they are the only feasible choice.
func (e *Engine) Mismatch(rank int) float64 {
	top := e.weights[0]
	return 1 - e.Weight(rank)/top
}
