// Package model contains the plain data structures passed between layers.
// Nothing here carries behavior beyond small accessors; the engine exchanges
// these values with import/export collaborators as-is.
package model

// Role and energy labels accepted on a Player. Anything else scores zero.
const (
	RoleExplorer  = "Explorer"
	RoleConnector = "Connector"
	RoleDriver    = "Driver"

	EnergyLow    = "Low"
	EnergyMedium = "Medium"
	EnergyHigh   = "High"
)

// Player is one roster entry. Preference slices hold canonical position keys
// in rank order (index 0 is rank 1); a position absent from the slice means
// the player is ineligible for it.
type Player struct {
	ID      string
	Name    string
	Role    string
	Energy  string
	Offense []string // up to four ranked offensive positions
	Defense []string // up to four ranked defensive positions
	Limited bool     // flagged players get a tightened appearance upper bound
	Present bool     // absent players are invisible to the engine
}

// Lineup maps every position of the active variant to a player id, or "" for
// an unfilled slot. No player id may appear twice in one Lineup.
type Lineup map[string]string

// Clone returns an independent copy.
func (l Lineup) Clone() Lineup {
	out := make(Lineup, len(l))
	for pos, pid := range l {
		out[pos] = pid
	}
	return out
}

// Players returns the set of non-empty player ids in the lineup.
func (l Lineup) Players() map[string]bool {
	out := make(map[string]bool, len(l))
	for _, pid := range l {
		if pid != "" {
			out[pid] = true
		}
	}
	return out
}

// Plan is an offline rotation plan: one Lineup per series, index 0 being the
// pinned starting lineup.
type Plan struct {
	Variant string
	Series  []Lineup
}

// PickSource records which dispatch pass produced a slot's assignment.
type PickSource string

// Dispatch outcomes per slot.
const (
	PickManual    PickSource = "manual"     // operator override
	PickPlanned   PickSource = "planned"    // offline plan choice
	PickCycle     PickSource = "cycle"      // rotation cycle, fairness respected
	PickCycleDebt PickSource = "cycle-debt" // rotation cycle, fairness violated
	PickEmpty     PickSource = "empty"      // no eligible candidate at all
)

// HistoryEntry is the immutable record of one committed turn.
type HistoryEntry struct {
	Turn      int
	Planned   Lineup            // plan snapshot consulted for this turn (nil without a plan)
	Overrides map[string]string // overrides that were scoped to this turn
	Effective Lineup
	Flags     map[string]bool       // position -> pick violated the +1 lead rule
	Sources   map[string]PickSource // position -> dispatch pass that filled it
}
