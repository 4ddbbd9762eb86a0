// Package fairness tracks per-category appearance counts and enforces the
// "+1 lead" rule: a pick is disallowed when it would put a player two or more
// appearances ahead of the category's current minimum. The rule is advisory;
// callers may accept a disallowed pick, and the excess is carried as
// non-negative debt that de-prioritizes the player until the category
// catches up.
package fairness

import (
	"sort"

	"github.com/snapwise/rotation/internal/domain/formation"
	"github.com/snapwise/rotation/internal/domain/model"
	"github.com/snapwise/rotation/internal/domain/scoring"
)

// Tracker owns the per-category, per-player counters and the debt ledger for
// one session. It is not safe for concurrent use; the owning session
// serializes access.
type Tracker struct {
	side     formation.Side
	counts   map[string]map[string]int // category -> player -> appearances
	debt     map[string]map[string]int // category -> player -> carried excess
	eligible map[string][]string       // category -> player ids, sorted
}

// NewTracker builds a tracker for the roster's eligibility on one side.
// A player is eligible in a category when any of their ranked preferences
// falls in it, regardless of which position is being filled.
func NewTracker(roster []model.Player, side formation.Side) *Tracker {
	t := &Tracker{
		side:     side,
		counts:   make(map[string]map[string]int),
		debt:     make(map[string]map[string]int),
		eligible: make(map[string][]string),
	}
	for _, p := range roster {
		if !p.Present {
			continue
		}
		prefs := p.Offense
		if side == formation.Defense {
			prefs = p.Defense
		}
		seen := make(map[string]bool)
		for _, pos := range prefs {
			cat, ok := formation.CategoryOf(pos)
			if !ok || seen[cat] {
				continue
			}
			seen[cat] = true
			t.eligible[cat] = append(t.eligible[cat], p.ID)
			if t.counts[cat] == nil {
				t.counts[cat] = make(map[string]int)
				t.debt[cat] = make(map[string]int)
			}
			t.counts[cat][p.ID] = 0
		}
	}
	for cat := range t.eligible {
		sort.Strings(t.eligible[cat])
	}
	return t
}

// Clone returns an independent snapshot for side-effect-free previews.
func (t *Tracker) Clone() *Tracker {
	out := &Tracker{
		side:     t.side,
		counts:   cloneNested(t.counts),
		debt:     cloneNested(t.debt),
		eligible: t.eligible, // immutable after construction
	}
	return out
}

func cloneNested(in map[string]map[string]int) map[string]map[string]int {
	out := make(map[string]map[string]int, len(in))
	for k, m := range in {
		c := make(map[string]int, len(m))
		for pid, n := range m {
			c[pid] = n
		}
		out[k] = c
	}
	return out
}

// Eligible returns the player ids eligible anywhere in the category.
func (t *Tracker) Eligible(cat string) []string {
	return t.eligible[cat]
}

// Count returns the raw appearance count for a player in a category.
func (t *Tracker) Count(cat, pid string) int {
	return t.counts[cat][pid]
}

// Debt returns the carried excess for a player in a category.
func (t *Tracker) Debt(cat, pid string) int {
	return t.debt[cat][pid]
}

// Effective is the count used by rule checks: raw count plus carried debt.
func (t *Tracker) Effective(cat, pid string) int {
	return t.counts[cat][pid] + t.debt[cat][pid]
}

// Allowed applies the +1 lead rule for placing pid at pos. Positions without
// a category, and players outside the category's eligible set, are not
// constrained by the rule.
func (t *Tracker) Allowed(pos, pid string) bool {
	cat, ok := formation.CategoryOf(pos)
	if !ok {
		return true
	}
	elig := t.eligible[cat]
	if len(elig) == 0 || !containsID(elig, pid) {
		return true
	}
	m := t.minEffective(cat)
	return t.Effective(cat, pid)+1 <= m+1
}

// Record counts one appearance of pid at pos.
func (t *Tracker) Record(pos, pid string) {
	cat, ok := formation.CategoryOf(pos)
	if !ok {
		return
	}
	if t.counts[cat] == nil {
		t.counts[cat] = make(map[string]int)
		t.debt[cat] = make(map[string]int)
	}
	t.counts[cat][pid]++
}

// Unrecord reverses one appearance, flooring at zero.
func (t *Tracker) Unrecord(pos, pid string) {
	cat, ok := formation.CategoryOf(pos)
	if !ok {
		return
	}
	if t.counts[cat][pid] > 0 {
		t.counts[cat][pid]--
	}
}

// RecomputeDebt rebuilds the whole debt ledger from raw counts:
// debt = max(0, count - (min+1)) per category and player, where min is the
// category's minimum raw count over eligible players. Debt is recomputed,
// never incremented, so it drains as the category catches up.
func (t *Tracker) RecomputeDebt() {
	for cat, elig := range t.eligible {
		minCount := 0
		for i, pid := range elig {
			c := t.counts[cat][pid]
			if i == 0 || c < minCount {
				minCount = c
			}
		}
		for _, pid := range elig {
			excess := t.counts[cat][pid] - (minCount + 1)
			if excess < 0 {
				excess = 0
			}
			t.debt[cat][pid] = excess
		}
	}
}

// Spread returns the min and max effective counts over the category's
// eligible players. Both are zero for an empty category.
func (t *Tracker) Spread(cat string) (minCount, maxCount int) {
	elig := t.eligible[cat]
	for i, pid := range elig {
		e := t.Effective(cat, pid)
		if i == 0 {
			minCount, maxCount = e, e
			continue
		}
		if e < minCount {
			minCount = e
		}
		if e > maxCount {
			maxCount = e
		}
	}
	return minCount, maxCount
}

// Categories lists the categories with at least one eligible player, sorted.
func (t *Tracker) Categories() []string {
	out := make([]string, 0, len(t.eligible))
	for cat := range t.eligible {
		out = append(out, cat)
	}
	sort.Strings(out)
	return out
}

// TotalDebt sums all outstanding debt, for observability.
func (t *Tracker) TotalDebt() int {
	total := 0
	for _, m := range t.debt {
		for _, d := range m {
			total += d
		}
	}
	return total
}

func (t *Tracker) minEffective(cat string) int {
	elig := t.eligible[cat]
	minVal := 0
	for i, pid := range elig {
		e := t.Effective(cat, pid)
		if i == 0 || e < minVal {
			minVal = e
		}
	}
	return minVal
}

func containsID(list []string, id string) bool {
	i := sort.SearchStrings(list, id)
	return i < len(list) && list[i] == id
}

// EligibleForPosition returns the roster players eligible at a canonical
// position on the tracker's side, preserving roster order.
func EligibleForPosition(roster []model.Player, pos string, side formation.Side) []model.Player {
	var out []model.Player
	for _, p := range roster {
		if !p.Present {
			continue
		}
		if _, ok := scoring.PreferenceRank(p, pos, side); ok {
			out = append(out, p)
		}
	}
	return out
}
