package solver

import (
	"math/rand"

	"github.com/snapwise/rotation/internal/domain/formation"
	"github.com/snapwise/rotation/internal/domain/model"
	"github.com/snapwise/rotation/internal/domain/scoring"
)

// greedy is the two-phase heuristic fallback. Series 0 honors pins and then
// fills by highest suitability among unused eligible players; later series
// deduct greedyFairness per appearance so underused players bubble up. A
// small seeded jitter breaks ties deterministically. It never fails: slots
// with no candidates are left empty and reported.
func (s *Solver) greedy(req Request, active []model.Player) (model.Plan, []Slot) {
	positions := req.Variant.Positions
	side := req.Variant.Side
	rng := rand.New(rand.NewSource(s.seed)) //nolint:gosec // deterministic jitter for reproducible plans

	appearances := make(map[string]int, len(active))
	plan := model.Plan{Variant: req.Variant.Name}
	var unfilled []Slot

	// Series 0: pins first, then best-suitability fill.
	used := make(map[string]bool)
	opener := make(model.Lineup, len(positions))
	for _, pos := range positions {
		pid := req.Pins[pos]
		if pid != "" && !used[pid] {
			opener[pos] = pid
			used[pid] = true
			appearances[pid]++
			continue
		}
		opener[pos] = ""
	}
	for _, pos := range positions {
		if opener[pos] != "" {
			continue
		}
		best, found := s.bestCandidate(active, pos, side, used, appearances, 0, rng)
		if !found {
			unfilled = append(unfilled, Slot{Series: 0, Position: pos})
			continue
		}
		opener[pos] = best
		used[best] = true
		appearances[best]++
	}
	plan.Series = append(plan.Series, opener)

	// Subsequent series: suitability minus appearance deduction.
	for series := 1; series < req.Series; series++ {
		used = make(map[string]bool)
		lineup := make(model.Lineup, len(positions))
		for _, pos := range positions {
			best, found := s.bestCandidate(active, pos, side, used, appearances, s.greedyFairness, rng)
			if !found {
				lineup[pos] = ""
				unfilled = append(unfilled, Slot{Series: series, Position: pos})
				continue
			}
			lineup[pos] = best
			used[best] = true
			appearances[best]++
		}
		plan.Series = append(plan.Series, lineup)
	}
	return plan, unfilled
}

// bestCandidate scans active players in roster order and returns the id with
// the highest jittered score, or false when nobody is eligible and unused.
func (s *Solver) bestCandidate(active []model.Player, pos string, side formation.Side, used map[string]bool, appearances map[string]int, fairness float64, rng *rand.Rand) (string, bool) {
	best := ""
	bestScore := 0.0
	for _, p := range active {
		if used[p.ID] {
			continue
		}
		rank, ok := scoring.PreferenceRank(p, pos, side)
		if !ok {
			continue
		}
		score := float64(scoring.StrengthIndex(p))*s.scorer.Weight(rank) -
			fairness*float64(appearances[p.ID]) +
			rng.Float64()*jitterScale
		if best == "" || score > bestScore {
			best = p.ID
			bestScore = score
		}
	}
	return best, best != ""
}
