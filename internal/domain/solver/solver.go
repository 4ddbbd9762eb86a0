// Package solver produces offline rotation plans across N series, honoring
// per-series uniqueness, series-0 pins, and global appearance bounds.
//
// Two strategies share one entry point: an exact per-series assignment solve
// under bound masking, and a two-phase greedy fallback that can always
// degrade to partial output. Which one produced the plan is reported as a
// tagged Result, never inferred.
package solver

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"time"

	"github.com/snapwise/rotation/internal/domain/formation"
	"github.com/snapwise/rotation/internal/domain/model"
	"github.com/snapwise/rotation/internal/domain/scoring"
	"github.com/snapwise/rotation/pkg/logger"
	"github.com/snapwise/rotation/pkg/metrics"
)

// Default solver configuration constants.
const (
	defaultCapValue        = 1
	defaultLimitedPenalty  = 0.3
	defaultMismatchPenalty = 1.0
	defaultGreedyFairness  = 1.0
	defaultSeed            = 42
	defaultStepBudget      = 4_000_000
	jitterScale            = 0.01
	lowerBoundPressure     = 1000.0 // dominates suitability so bound deficits win ties
)

// Strategy tags which solve path produced a Result.
type Strategy string

// Solve strategies.
const (
	StrategyExact     Strategy = "exact"
	StrategyHeuristic Strategy = "heuristic"
)

// Slot identifies one unfillable (series, position) assignment.
type Slot struct {
	Series   int
	Position string
}

// Result is the tagged outcome of a solve. A non-empty Warning accompanies
// partial plans and fallbacks; it is advisory, never a failure.
type Result struct {
	Plan     model.Plan
	Strategy Strategy
	Unfilled []Slot
	Warning  string
}

// Request carries the plain inputs for one solve. Solves are independent:
// concurrent callers must pass independent copies.
type Request struct {
	Roster   []model.Player
	Variant  formation.Variant
	Series   int
	Pins     model.Lineup    // series-0 hard equalities, position -> player id
	Excluded map[string]bool // player ids removed from consideration
}

// Solver builds rotation plans. Configure once, solve many times.
type Solver struct {
	scorer          *scoring.Engine
	capEnabled      bool
	capValue        int
	limitedPenalty  float64
	mismatchPenalty float64
	greedyFairness  float64
	seed            int64
	stepBudget      int
	log             logger.Logger
}

// New constructs a Solver with default configuration.
func New(opts ...Option) *Solver {
	engine, _ := scoring.New() // default table is always valid
	s := &Solver{
		scorer:          engine,
		capEnabled:      true,
		capValue:        defaultCapValue,
		limitedPenalty:  defaultLimitedPenalty,
		mismatchPenalty: defaultMismatchPenalty,
		greedyFairness:  defaultGreedyFairness,
		seed:            defaultSeed,
		stepBudget:      defaultStepBudget,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Bounds computes the [lower, upper] appearance bounds for one player:
// floor/ceil of the mean load, widened by the evenness cap, with the upper
// bound tightened for limited players.
func Bounds(positionsCount, series, activePlayers int, capEnabled bool, capValue int, limited bool, limitedPenalty float64) (lb, ub int) {
	if activePlayers <= 0 {
		return 0, 0
	}
	mean := float64(positionsCount*series) / float64(activePlayers)
	lb = int(math.Floor(mean))
	ub = int(math.Ceil(mean))
	if capEnabled {
		lb -= capValue
		ub += capValue
	}
	if lb < 0 {
		lb = 0
	}
	if limited && limitedPenalty > 0 {
		tightened := int(math.Floor(float64(ub) - limitedPenalty))
		if tightened < lb {
			tightened = lb
		}
		ub = tightened
	}
	return lb, ub
}

// Solve produces a rotation plan for the request. The only errors are
// configuration errors (bad series count, invalid pins); infeasible slots and
// strategy fallback are reported inside the Result.
func (s *Solver) Solve(ctx context.Context, req Request) (Result, error) {
	start := time.Now()
	if req.Series < 1 {
		return Result{}, fmt.Errorf("%w: got %d", ErrInvalidSeriesCount, req.Series)
	}
	active := s.activePlayers(req)
	if err := s.validatePins(req, active); err != nil {
		return Result{}, err
	}
	defer func() {
		metrics.ObserveSolveDuration(time.Since(start).Seconds())
	}()

	if plan, unfilled, ok := s.exact(ctx, req, active); ok {
		metrics.IncSolveExact()
		metrics.AddUnfilledSlots(len(unfilled))
		res := Result{Plan: plan, Strategy: StrategyExact, Unfilled: unfilled}
		if len(unfilled) > 0 {
			res.Warning = fmt.Sprintf("%d slot(s) have no eligible candidates and were left empty", len(unfilled))
		}
		return res, nil
	}
	if err := ctx.Err(); err != nil {
		return Result{}, fmt.Errorf("solve cancelled: %w", err)
	}
	if s.log != nil {
		s.log.Warn(ctx, "exact solve unavailable, using heuristic fallback",
			logger.Int("series", req.Series), logger.Int("players", len(active)))
	}

	plan, unfilled := s.greedy(req, active)
	metrics.IncSolveFallback()
	metrics.AddUnfilledSlots(len(unfilled))
	res := Result{
		Plan:     plan,
		Strategy: StrategyHeuristic,
		Unfilled: unfilled,
		Warning:  "exact solve unavailable; heuristic fallback used",
	}
	if len(unfilled) > 0 {
		res.Warning = fmt.Sprintf("heuristic fallback used; %d slot(s) left empty due to eligibility limits", len(unfilled))
	}
	return res, nil
}

// activePlayers filters the roster to present, non-excluded players,
// preserving roster order.
func (s *Solver) activePlayers(req Request) []model.Player {
	var out []model.Player
	for _, p := range req.Roster {
		if !p.Present {
			continue
		}
		if req.Excluded[p.ID] {
			continue
		}
		out = append(out, p)
	}
	return out
}

// validatePins rejects pins referencing unknown players, ineligible
// positions, or the same player twice. These are configuration errors and
// block solving.
func (s *Solver) validatePins(req Request, active []model.Player) error {
	seen := make(map[string]string) // pid -> position already pinned at
	for _, pos := range req.Variant.Positions {
		pid := req.Pins[pos]
		if pid == "" {
			continue
		}
		var pinned *model.Player
		for i := range active {
			if active[i].ID == pid {
				pinned = &active[i]
				break
			}
		}
		if pinned == nil {
			return fmt.Errorf("%w: player %q at %s", ErrUnknownPin, pid, pos)
		}
		if _, ok := scoring.PreferenceRank(*pinned, pos, req.Variant.Side); !ok {
			return fmt.Errorf("%w: player %q at %s", ErrIneligiblePin, pid, pos)
		}
		if prev, dup := seen[pid]; dup {
			return fmt.Errorf("%w: player %q at %s and %s", ErrDuplicatePin, pid, prev, pos)
		}
		seen[pid] = pos
	}
	return nil
}

// exact runs one bound-masked assignment solve per series. It reports
// ok=false when the step budget runs out or when a slot with eligible
// candidates cannot be filled under the appearance bounds; both cases hand
// over to the greedy fallback.
func (s *Solver) exact(ctx context.Context, req Request, active []model.Player) (model.Plan, []Slot, bool) {
	positions := req.Variant.Positions
	side := req.Variant.Side
	rng := rand.New(rand.NewSource(s.seed)) //nolint:gosec // deterministic jitter for reproducible plans

	bounds := make(map[string][2]int, len(active))
	for _, p := range active {
		lb, ub := Bounds(len(positions), req.Series, len(active), s.capEnabled, s.capValue, p.Limited, s.limitedPenalty)
		bounds[p.ID] = [2]int{lb, ub}
	}
	eligCount := make(map[string]int, len(positions))
	for _, pos := range positions {
		for _, p := range active {
			if _, ok := scoring.PreferenceRank(p, pos, side); ok {
				eligCount[pos]++
			}
		}
	}

	appearances := make(map[string]int, len(active))
	steps := s.stepBudget
	plan := model.Plan{Variant: req.Variant.Name}
	var unfilled []Slot

	cols := len(active)
	if cols < len(positions) {
		cols = len(positions) // pad with dummy columns so rows <= cols
	}

	for series := 0; series < req.Series; series++ {
		if ctx.Err() != nil {
			return model.Plan{}, nil, false
		}
		cost := make([][]float64, len(positions))
		for i, pos := range positions {
			row := make([]float64, cols)
			for j := range row {
				row[j] = blockedCost
			}
			pinned := ""
			if series == 0 {
				pinned = req.Pins[pos]
			}
			for j, p := range active {
				if pinned != "" {
					if p.ID == pinned {
						row[j] = 0 // hard equality: the pin is free, everything else blocked
					}
					continue
				}
				rank, ok := scoring.PreferenceRank(p, pos, side)
				if !ok {
					continue
				}
				if appearances[p.ID] >= bounds[p.ID][1] {
					continue // at the upper bound this series
				}
				score := float64(scoring.StrengthIndex(p))*s.scorer.Weight(rank) -
					s.mismatchPenalty*s.scorer.Mismatch(rank)
				if deficit := bounds[p.ID][0] - appearances[p.ID]; deficit > 0 {
					score += lowerBoundPressure * float64(deficit)
				}
				score += rng.Float64() * jitterScale
				row[j] = -score
			}
			cost[i] = row
		}

		assign, ok := assignMin(cost, &steps)
		if !ok {
			return model.Plan{}, nil, false
		}

		lineup := make(model.Lineup, len(positions))
		for i, pos := range positions {
			j := assign[i]
			if j < 0 || j >= len(active) || cost[i][j] >= blockedCost/2 {
				if eligCount[pos] > 0 {
					return model.Plan{}, nil, false // feasible slot blocked by bounds
				}
				lineup[pos] = ""
				unfilled = append(unfilled, Slot{Series: series, Position: pos})
				continue
			}
			pid := active[j].ID
			lineup[pos] = pid
			appearances[pid]++
		}
		plan.Series = append(plan.Series, lineup)
	}
	return plan, unfilled, true
}

// PlayerLoad summarizes one player's assigned load against their bounds, for
// dashboarding a solved plan.
type PlayerLoad struct {
	PlayerID    string
	Name        string
	Assigned    int
	LowerBound  int
	UpperBound  int
	Limited     bool
	OutOfBounds bool
}

// Dashboard computes per-player appearance totals and bound flags for a plan
// produced from the same request.
func (s *Solver) Dashboard(req Request, plan model.Plan) []PlayerLoad {
	active := s.activePlayers(req)
	counts := make(map[string]int, len(active))
	for _, lineup := range plan.Series {
		used := make(map[string]bool, len(lineup))
		for _, pid := range lineup {
			if pid == "" || used[pid] {
				continue
			}
			used[pid] = true
			counts[pid]++
		}
	}
	out := make([]PlayerLoad, 0, len(active))
	for _, p := range active {
		lb, ub := Bounds(len(req.Variant.Positions), req.Series, len(active), s.capEnabled, s.capValue, p.Limited, s.limitedPenalty)
		load := PlayerLoad{
			PlayerID:   p.ID,
			Name:       p.Name,
			Assigned:   counts[p.ID],
			LowerBound: lb,
			UpperBound: ub,
			Limited:    p.Limited,
		}
		load.OutOfBounds = load.Assigned < lb || load.Assigned > ub
		out = append(out, load)
	}
	return out
}
