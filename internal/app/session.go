// Package app owns the live session: rotation cycles per position, the
// three-pass dispatch (manual, planned, cyclic) that produces one effective
// lineup per turn, and the commit/preview/undo lifecycle around it.
//
// A Session is the single writer of all live state. Every mutation happens
// under one mutex and is applied atomically: the lineup is computed against a
// cloned snapshot first, and state is only touched once the whole turn is
// known.
package app

import (
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/snapwise/rotation/internal/domain/fairness"
	"github.com/snapwise/rotation/internal/domain/formation"
	"github.com/snapwise/rotation/internal/domain/model"
	"github.com/snapwise/rotation/internal/domain/scoring"
	"github.com/snapwise/rotation/pkg/logger"
	"github.com/snapwise/rotation/pkg/metrics"
)

// Turn is one computed effective lineup with its diagnostics: which pass
// filled each slot and whether the pick violates the +1 lead rule.
type Turn struct {
	Number  int
	Lineup  model.Lineup
	Flags   map[string]bool
	Sources map[string]model.PickSource
}

// Summary reports a session's totals for dashboarding and export.
type Summary struct {
	SessionID      string
	Turns          int
	Appearances    map[string]int
	CategorySpread map[string]int // category -> max-min effective count
}

// Session dispatches live turns for one roster and formation variant.
type Session struct {
	mu sync.Mutex

	id      string
	log     logger.Logger
	roster  []model.Player
	variant formation.Variant
	scorer  *scoring.Engine
	plan    model.Plan

	active    bool
	turn      int
	planIdx   int
	tracker   *fairness.Tracker
	totals    map[string]int
	cycles    map[string][]string
	cycleIdx  map[string]int
	overrides map[int]map[string]string
	history   []turnRecord
}

// turnRecord pairs the immutable history entry with the pointer snapshot
// needed to reverse the commit.
type turnRecord struct {
	entry        model.HistoryEntry
	prevCycleIdx map[string]int
	prevPlanIdx  int
}

// Option applies a configuration option to the Session.
type Option func(*Session)

// WithPlan supplies an offline rotation plan for the planned pass. Without
// one, turns are filled by overrides and cycles alone.
func WithPlan(plan model.Plan) Option {
	return func(s *Session) {
		s.plan = plan
	}
}

// WithScoring sets the suitability engine used for cycle ordering and opener
// suggestions.
func WithScoring(engine *scoring.Engine) Option {
	return func(s *Session) {
		if engine != nil {
			s.scorer = engine
		}
	}
}

// WithLogger sets a custom logger for the session.
func WithLogger(log logger.Logger) Option {
	return func(s *Session) {
		if log != nil {
			s.log = log
		}
	}
}

// New starts a session for the roster on the variant. All counters, cycles,
// and history start empty; they live until End.
func New(roster []model.Player, variant formation.Variant, opts ...Option) (*Session, error) {
	engine, err := scoring.New()
	if err != nil {
		return nil, err
	}
	s := &Session{
		id:      uuid.NewString(),
		roster:  roster,
		variant: variant,
		scorer:  engine,
		active:  true,
		turn:    1,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.tracker = fairness.NewTracker(roster, variant.Side)
	s.totals = make(map[string]int)
	s.cycles = s.buildCycles()
	s.cycleIdx = make(map[string]int, len(s.cycles))
	for pos := range s.cycles {
		s.cycleIdx[pos] = 0
	}
	s.overrides = make(map[int]map[string]string)
	metrics.SessionStarted()
	return s, nil
}

// ID returns the session identifier.
func (s *Session) ID() string { return s.id }

// buildCycles orders each position's eligible players deterministically:
// better preference rank first, then higher strength, then name.
func (s *Session) buildCycles() map[string][]string {
	cycles := make(map[string][]string, len(s.variant.Positions))
	for _, pos := range s.variant.Positions {
		cands := fairness.EligibleForPosition(s.roster, pos, s.variant.Side)
		sort.SliceStable(cands, func(i, j int) bool {
			ri, _ := scoring.PreferenceRank(cands[i], pos, s.variant.Side)
			rj, _ := scoring.PreferenceRank(cands[j], pos, s.variant.Side)
			if ri != rj {
				return ri < rj
			}
			si, sj := scoring.StrengthIndex(cands[i]), scoring.StrengthIndex(cands[j])
			if si != sj {
				return si > sj
			}
			return cands[i].Name < cands[j].Name
		})
		ids := make([]string, len(cands))
		for i, p := range cands {
			ids[i] = p.ID
		}
		cycles[pos] = ids
	}
	return cycles
}

// SetOverride pins a player to a position for one future (or current) turn.
// Applying the same override twice is a no-op. The pin bypasses scoring but
// not eligibility; an ineligible pin is ignored at dispatch time.
func (s *Session) SetOverride(turn int, pos, pid string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if turn < s.turn || pid == "" {
		return
	}
	if s.overrides[turn] == nil {
		s.overrides[turn] = make(map[string]string)
	}
	s.overrides[turn][pos] = pid
}

// ClearOverride removes a previously set override.
func (s *Session) ClearOverride(turn int, pos string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if m, ok := s.overrides[turn]; ok {
		delete(m, pos)
		if len(m) == 0 {
			delete(s.overrides, turn)
		}
	}
}

// plannedFor returns the plan lineup consulted at a given plan index, or nil
// without a plan.
func (s *Session) plannedFor(planIdx int) model.Lineup {
	if len(s.plan.Series) == 0 {
		return nil
	}
	return s.plan.Series[planIdx%len(s.plan.Series)]
}

// dispatch runs the three passes against the supplied working state. The
// tracker is mutated as picks are accepted so later slots see earlier picks;
// callers pass a clone when previewing.
func (s *Session) dispatch(work *fairness.Tracker, cycleIdx map[string]int, planned model.Lineup, overrides map[string]string) (model.Lineup, map[string]bool, map[string]model.PickSource) {
	lineup := make(model.Lineup, len(s.variant.Positions))
	flags := make(map[string]bool, len(s.variant.Positions))
	sources := make(map[string]model.PickSource, len(s.variant.Positions))
	used := make(map[string]bool)

	accept := func(pos, pid string, src model.PickSource, violated bool) {
		lineup[pos] = pid
		flags[pos] = violated
		sources[pos] = src
		used[pid] = true
		work.Record(pos, pid)
	}

	// Manual pass: overrides bypass scoring but not eligibility.
	for _, pos := range s.variant.Positions {
		pid := overrides[pos]
		if pid == "" || used[pid] {
			continue
		}
		if !s.eligible(pid, pos) {
			continue // falls through to planned/cyclic passes
		}
		accept(pos, pid, model.PickManual, !work.Allowed(pos, pid))
	}

	// Planned pass: accept the plan's choice unless used or rule-violating.
	for _, pos := range s.variant.Positions {
		if _, done := lineup[pos]; done {
			continue
		}
		pid := ""
		if planned != nil {
			pid = planned[pos]
		}
		if pid == "" || used[pid] || !s.eligible(pid, pos) {
			continue
		}
		if !work.Allowed(pos, pid) {
			continue // skip, no error; the cyclic pass takes over
		}
		accept(pos, pid, model.PickPlanned, false)
	}

	// Cyclic pass: first fair unused candidate, else first merely unused
	// (recorded as debt), else empty.
	for _, pos := range s.variant.Positions {
		if _, done := lineup[pos]; done {
			continue
		}
		cycle := s.cycles[pos]
		if len(cycle) == 0 {
			lineup[pos] = ""
			flags[pos] = false
			sources[pos] = model.PickEmpty
			continue
		}
		start := cycleIdx[pos] % len(cycle)
		picked := ""
		for step := 0; step < len(cycle); step++ {
			pid := cycle[(start+step)%len(cycle)]
			if used[pid] {
				continue
			}
			if work.Allowed(pos, pid) {
				picked = pid
				break
			}
		}
		if picked != "" {
			accept(pos, picked, model.PickCycle, false)
			continue
		}
		for step := 0; step < len(cycle); step++ {
			pid := cycle[(start+step)%len(cycle)]
			if used[pid] {
				continue
			}
			picked = pid
			break
		}
		if picked != "" {
			accept(pos, picked, model.PickCycleDebt, true)
			continue
		}
		lineup[pos] = ""
		flags[pos] = false
		sources[pos] = model.PickEmpty
	}
	return lineup, flags, sources
}

func (s *Session) eligible(pid, pos string) bool {
	for _, p := range s.roster {
		if p.ID == pid && p.Present {
			_, ok := scoring.PreferenceRank(p, pos, s.variant.Side)
			return ok
		}
	}
	return false
}

// Preview computes the current turn's effective lineup without mutating any
// state. It is side-effect-free and may be called repeatedly.
func (s *Session) Preview() (Turn, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.active {
		return Turn{}, ErrSessionEnded
	}
	lineup, flags, sources := s.dispatch(
		s.tracker.Clone(),
		s.cycleIdx,
		s.plannedFor(s.planIdx),
		s.overrides[s.turn],
	)
	return Turn{Number: s.turn, Lineup: lineup, Flags: flags, Sources: sources}, nil
}

// Next previews the turn after the current one, assuming the current turn
// commits with its present overrides. All work happens on snapshots.
func (s *Session) Next() (Turn, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.active {
		return Turn{}, ErrSessionEnded
	}
	work := s.tracker.Clone()
	idx := cloneIdx(s.cycleIdx)

	// Hypothetically commit the current turn on the snapshots.
	current, _, _ := s.dispatch(work, idx, s.plannedFor(s.planIdx), s.overrides[s.turn])
	work.RecomputeDebt()
	for _, pos := range s.variant.Positions {
		s.advancePointer(idx, pos, current[pos])
	}

	lineup, flags, sources := s.dispatch(work, idx, s.plannedFor(s.planIdx+1), s.overrides[s.turn+1])
	return Turn{Number: s.turn + 1, Lineup: lineup, Flags: flags, Sources: sources}, nil
}

// Commit finalizes the current turn: applies the effective lineup to the
// counters, advances cycle pointers past the used players, recomputes the
// debt ledger, appends a history entry, clears this turn's overrides, and
// increments the turn counter. The whole update is atomic.
func (s *Session) Commit() (model.HistoryEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.active {
		return model.HistoryEntry{}, ErrSessionEnded
	}

	planned := s.plannedFor(s.planIdx)
	overrides := s.overrides[s.turn]
	lineup, flags, sources := s.dispatch(s.tracker.Clone(), s.cycleIdx, planned, overrides)

	prevIdx := cloneIdx(s.cycleIdx)
	violations := 0
	for _, pos := range s.variant.Positions {
		pid := lineup[pos]
		if pid == "" {
			continue
		}
		s.totals[pid]++
		s.tracker.Record(pos, pid)
		s.advancePointer(s.cycleIdx, pos, pid)
		if flags[pos] {
			violations++
		}
	}
	s.tracker.RecomputeDebt()

	entry := model.HistoryEntry{
		Turn:      s.turn,
		Planned:   cloneLineup(planned),
		Overrides: cloneOverrides(overrides),
		Effective: lineup.Clone(),
		Flags:     cloneFlags(flags),
		Sources:   cloneSources(sources),
	}
	s.history = append(s.history, turnRecord{
		entry:        entry,
		prevCycleIdx: prevIdx,
		prevPlanIdx:  s.planIdx,
	})

	delete(s.overrides, s.turn) // future-turn overrides persist
	s.turn++
	if len(s.plan.Series) > 0 {
		s.planIdx = (s.planIdx + 1) % len(s.plan.Series)
	}

	metrics.IncCommit()
	metrics.AddFairnessViolations(violations)
	metrics.SetDebtOutstanding(s.tracker.TotalDebt())
	return entry, nil
}

// Undo reverses the most recent commit: counters decremented, cycle pointers
// and plan index restored, debt recomputed, turn counter decremented, and the
// undone turn's overrides reinstated. Undo of an empty history is a no-op.
func (s *Session) Undo() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.active || len(s.history) == 0 {
		return false
	}
	rec := s.history[len(s.history)-1]
	s.history = s.history[:len(s.history)-1]

	for _, pos := range s.variant.Positions {
		pid := rec.entry.Effective[pos]
		if pid == "" {
			continue
		}
		if s.totals[pid] > 0 {
			s.totals[pid]--
		}
		s.tracker.Unrecord(pos, pid)
	}
	s.cycleIdx = cloneIdx(rec.prevCycleIdx)
	s.planIdx = rec.prevPlanIdx
	s.tracker.RecomputeDebt()
	s.turn = rec.entry.Turn
	if len(rec.entry.Overrides) > 0 {
		s.overrides[rec.entry.Turn] = cloneOverrides(rec.entry.Overrides)
	}

	metrics.IncUndo()
	metrics.SetDebtOutstanding(s.tracker.TotalDebt())
	return true
}

// advancePointer moves a position's cycle pointer to just past the used
// player. Advancement is a pure function of the committed id and cycle order.
func (s *Session) advancePointer(idx map[string]int, pos, pid string) {
	if pid == "" {
		return
	}
	cycle := s.cycles[pos]
	for i, id := range cycle {
		if id == pid {
			idx[pos] = (i + 1) % len(cycle)
			return
		}
	}
}

// History returns copies of the committed entries, oldest first.
func (s *Session) History() []model.HistoryEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.HistoryEntry, len(s.history))
	for i, rec := range s.history {
		out[i] = rec.entry
	}
	return out
}

// Summary reports appearance totals and the per-category effective spread.
func (s *Session) Summary() Summary {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.summaryLocked()
}

func (s *Session) summaryLocked() Summary {
	spread := make(map[string]int)
	for _, cat := range s.tracker.Categories() {
		lo, hi := s.tracker.Spread(cat)
		spread[cat] = hi - lo
	}
	totals := make(map[string]int, len(s.totals))
	for pid, n := range s.totals {
		totals[pid] = n
	}
	return Summary{
		SessionID:      s.id,
		Turns:          s.turn - 1,
		Appearances:    totals,
		CategorySpread: spread,
	}
}

// End deactivates the session and returns its final summary. Live state is
// discarded by dropping the Session; export first via History.
func (s *Session) End() Summary {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.active {
		s.active = false
		metrics.SessionEnded()
	}
	return s.summaryLocked()
}

// SuggestOpener builds a best-suitability starting lineup from scratch,
// usable to seed pins when no offline plan exists.
func (s *Session) SuggestOpener() model.Lineup {
	s.mu.Lock()
	defer s.mu.Unlock()
	used := make(map[string]bool)
	lineup := make(model.Lineup, len(s.variant.Positions))
	for _, pos := range s.variant.Positions {
		best := ""
		bestScore := -1.0
		for _, p := range fairness.EligibleForPosition(s.roster, pos, s.variant.Side) {
			if used[p.ID] {
				continue
			}
			score := s.scorer.Suitability(p, pos, s.variant.Side)
			if score > bestScore {
				best = p.ID
				bestScore = score
			}
		}
		lineup[pos] = best
		if best != "" {
			used[best] = true
		}
	}
	return lineup
}

func cloneIdx(in map[string]int) map[string]int {
	out := make(map[string]int, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

func cloneLineup(in model.Lineup) model.Lineup {
	if in == nil {
		return nil
	}
	return in.Clone()
}

func cloneOverrides(in map[string]string) map[string]string {
	out := make(map[string]string, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

func cloneFlags(in map[string]bool) map[string]bool {
	out := make(map[string]bool, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

func cloneSources(in map[string]model.PickSource) map[string]model.PickSource {
	out := make(map[string]model.PickSource, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
