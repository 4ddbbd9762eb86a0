// Package formation defines the canonical position keys, the formation
// variants a lineup can be built against, and the category tables used for
// fairness accounting. All position strings entering the engine must pass
// through Normalize first; every other package assumes canonical keys.
package formation

import "strings"

// Side identifies which half of the roster preferences apply.
type Side string

// Sides of the ball.
const (
	Offense Side = "offense"
	Defense Side = "defense"
)

// Canonical position lists per variant. Order matters: it is the order
// lineups are filled and rendered in.
var (
	offensePositions   = []string{"QB", "AB", "HB", "WR", "Slot", "C", "LG", "LT", "RG", "RT", "TE"}
	defense53Positions = []string{"NT", "LDT", "RDT", "LDE", "RDE", "MLB", "LLB", "RLB", "LC", "RC", "S"}
	defense44Positions = []string{"LDT", "RDT", "LDE", "RDE", "LLB", "MLB", "RLB", "LC", "RC", "S"}
)

// legacyAliases maps alternate 4-4 linebacker labels onto canonical keys.
var legacyAliases = map[string]string{
	"RILB": "MLB",
	"LILB": "MLB",
	"RMLB": "MLB",
	"LMLB": "MLB",
	"ROLB": "RLB",
	"LOLB": "LLB",
}

// categoryByPosition assigns every canonical position to exactly one
// fairness category.
var categoryByPosition = map[string]string{
	// Offense
	"QB":   "QB",
	"AB":   "Backfield",
	"HB":   "Backfield",
	"WR":   "Wide",
	"Slot": "Wide",
	"TE":   "TE",
	"C":    "Interior Line",
	"LG":   "Interior Line",
	"LT":   "Interior Line",
	"RG":   "Interior Line",
	"RT":   "Interior Line",

	// Defense
	"NT":  "DLine",
	"LDT": "DLine",
	"RDT": "DLine",
	"LDE": "DE",
	"RDE": "DE",
	"MLB": "Linebacker",
	"LLB": "Linebacker",
	"RLB": "Linebacker",
	"LC":  "Secondary",
	"RC":  "Secondary",
	"S":   "Secondary",
}

// canonicalCase restores the mixed-case spelling of keys that are not fully
// uppercase ("Slot" is the only one).
var canonicalCase = map[string]string{
	"SLOT": "Slot",
}

// Variant is a fixed ordered set of positions for one side of the ball.
type Variant struct {
	Name      string
	Side      Side
	Positions []string
}

// Built-in variants.
var (
	Offense11 = Variant{Name: "offense", Side: Offense, Positions: offensePositions}
	Defense53 = Variant{Name: "defense-53", Side: Defense, Positions: defense53Positions}
	Defense44 = Variant{Name: "defense-44", Side: Defense, Positions: defense44Positions}
)

// VariantByName resolves a variant by its configured name.
func VariantByName(name string) (Variant, bool) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case Offense11.Name, "offense-11":
		return Offense11, true
	case Defense53.Name, "5-3":
		return Defense53, true
	case Defense44.Name, "4-4":
		return Defense44, true
	}
	return Variant{}, false
}

// Normalize maps a raw position label to its canonical key: trims, uppercases,
// and folds legacy 4-4 labels onto the core set. Empty input stays empty.
// It is a pure function and is applied once, at ingestion.
func Normalize(pos string) string {
	p := strings.ToUpper(strings.TrimSpace(pos))
	if p == "" {
		return ""
	}
	if canon, ok := legacyAliases[p]; ok {
		return canon
	}
	if mixed, ok := canonicalCase[p]; ok {
		return mixed
	}
	return p
}

// Known reports whether pos is a canonical position on any variant.
func Known(pos string) bool {
	_, ok := categoryByPosition[pos]
	return ok
}

// CategoryOf returns the fairness category for a canonical position.
func CategoryOf(pos string) (string, bool) {
	cat, ok := categoryByPosition[pos]
	return cat, ok
}

// CategoryPositions returns the canonical positions belonging to a category.
func CategoryPositions(cat string) []string {
	var out []string
	for _, pos := range append(append(append([]string{}, offensePositions...), defense53Positions...), defense44Positions...) {
		if categoryByPosition[pos] == cat && !contains(out, pos) {
			out = append(out, pos)
		}
	}
	return out
}

// Categories returns the distinct category names for a side, in the order
// their positions appear on the side's primary variant.
func Categories(side Side) []string {
	src := offensePositions
	if side == Defense {
		src = defense53Positions
	}
	var out []string
	for _, pos := range src {
		if cat, ok := categoryByPosition[pos]; ok && !contains(out, cat) {
			out = append(out, cat)
		}
	}
	return out
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
