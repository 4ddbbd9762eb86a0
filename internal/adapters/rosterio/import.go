// Package rosterio imports rosters from CSV and exports plans and history
// back to CSV. Header aliasing and position normalization happen here, at the
// ingestion boundary; everything past this package sees canonical keys only.
package rosterio

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/snapwise/rotation/internal/domain/formation"
	"github.com/snapwise/rotation/internal/domain/model"
)

// Canonical roster columns.
var canonicalHeaders = []string{
	"Name",
	"Off1", "Off2", "Off3", "Off4",
	"Def1", "Def2", "Def3", "Def4",
	"Role", "Energy", "Limited", "Present",
}

// headerAliases maps canonical columns to the lowercase spellings seen in the
// wild. Matching is case-insensitive; unknown columns are reported and
// ignored.
var headerAliases = map[string][]string{
	"Name":    {"name", "player", "full name"},
	"Off1":    {"off1", "offense1", "offense 1", "primary offense", "offense 1st", "off_pos_1"},
	"Off2":    {"off2", "offense2", "offense 2", "secondary offense", "offense 2nd", "off_pos_2"},
	"Off3":    {"off3", "offense3", "offense 3", "third offense", "offense 3rd", "off_pos_3"},
	"Off4":    {"off4", "offense4", "offense 4", "fourth offense", "offense 4th", "off_pos_4"},
	"Def1":    {"def1", "defense1", "defense 1", "primary defense", "defense 1st", "def_pos_1"},
	"Def2":    {"def2", "defense2", "defense 2", "secondary defense", "defense 2nd", "def_pos_2"},
	"Def3":    {"def3", "defense3", "defense 3", "third defense", "defense 3rd", "def_pos_3"},
	"Def4":    {"def4", "defense4", "defense 4", "fourth defense", "defense 4th", "def_pos_4"},
	"Role":    {"role", "roletoday", "role today", "position role", "role_today"},
	"Energy":  {"energy", "energytoday", "energy today", "energy level", "energy_today"},
	"Limited": {"limited", "varsity", "varsity_minutes_recent", "varsity minutes"},
	"Present": {"present", "ispresent", "available"},
}

// idNamespace seeds name-based player ids so the same roster always imports
// to the same identifiers.
var idNamespace = uuid.NewSHA1(uuid.NameSpaceOID, []byte("rotation/roster"))

// Report collects non-fatal findings from an import.
type Report struct {
	ColumnMapping  map[string]string // input column -> canonical column ("" = unknown)
	Findings       []string
	RowsImported   int
	RowsSkipped    int
	LimitedDefault bool
}

// Importer parses roster CSVs.
type Importer struct {
	limitedDefault bool
}

// ImportOption applies a configuration option to the Importer.
type ImportOption func(*Importer)

// WithLimitedDefault controls how a missing Limited attribute reads: false
// (the default) treats absence as "not limited".
func WithLimitedDefault(limited bool) ImportOption {
	return func(i *Importer) {
		i.limitedDefault = limited
	}
}

// NewImporter creates an Importer.
func NewImporter(opts ...ImportOption) *Importer {
	i := &Importer{}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

// Import reads a roster CSV. Malformed rows and unknown labels are reported,
// not fatal; only an unreadable stream or a header without a Name column is
// an error.
func (im *Importer) Import(r io.Reader) ([]model.Player, Report, error) {
	rep := Report{ColumnMapping: make(map[string]string), LimitedDefault: im.limitedDefault}

	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		return nil, rep, fmt.Errorf("%w: %v", ErrUnreadableInput, err)
	}
	colFor := make(map[int]string, len(header))
	for i, col := range header {
		canon := canonicalFor(col)
		rep.ColumnMapping[col] = canon
		if canon != "" {
			colFor[i] = canon
		}
	}
	if !mapsToName(colFor) {
		return nil, rep, ErrMissingNameColumn
	}

	var players []model.Player
	idCounts := make(map[string]int)
	line := 1
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			rep.RowsSkipped++
			rep.Findings = append(rep.Findings, fmt.Sprintf("row %d: %v", line, err))
			continue
		}
		row := make(map[string]string, len(record))
		for i, val := range record {
			if canon, ok := colFor[i]; ok {
				row[canon] = val
			}
		}
		name := normalizeName(row["Name"])
		if name == "" {
			rep.RowsSkipped++
			continue
		}
		p := model.Player{
			ID:      deterministicID(name, idCounts),
			Name:    name,
			Role:    parseLabel(row["Role"], model.RoleConnector, []string{model.RoleExplorer, model.RoleConnector, model.RoleDriver}, &rep, line, "role"),
			Energy:  parseLabel(row["Energy"], model.EnergyMedium, []string{model.EnergyLow, model.EnergyMedium, model.EnergyHigh}, &rep, line, "energy"),
			Limited: parseFlag(row, "Limited", im.limitedDefault),
			Present: parseFlag(row, "Present", true),
		}
		p.Offense = parsePrefs(row, "Off", &rep, line)
		p.Defense = parsePrefs(row, "Def", &rep, line)
		players = append(players, p)
		rep.RowsImported++
	}
	return players, rep, nil
}

// Validate reports structural problems with an imported roster: duplicate
// ids and players eligible for nothing on either side.
func Validate(players []model.Player) []string {
	var findings []string
	seen := make(map[string]bool, len(players))
	for _, p := range players {
		if seen[p.ID] {
			findings = append(findings, fmt.Sprintf("duplicate player id %q (%s)", p.ID, p.Name))
		}
		seen[p.ID] = true
		if len(p.Offense) == 0 && len(p.Defense) == 0 {
			findings = append(findings, fmt.Sprintf("player %q has no position preferences on either side", p.Name))
		}
	}
	return findings
}

func canonicalFor(col string) string {
	lc := strings.ToLower(strings.TrimSpace(col))
	for canon, aliases := range headerAliases {
		if lc == strings.ToLower(canon) {
			return canon
		}
		for _, a := range aliases {
			if lc == a {
				return canon
			}
		}
	}
	return ""
}

func mapsToName(colFor map[int]string) bool {
	for _, canon := range colFor {
		if canon == "Name" {
			return true
		}
	}
	return false
}

// normalizeName trims, collapses whitespace, and title-cases each word.
func normalizeName(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		r, size := utf8.DecodeRuneInString(w)
		words[i] = string(unicode.ToUpper(r)) + strings.ToLower(w[size:])
	}
	return strings.Join(words, " ")
}

// deterministicID derives a stable id from the normalized name; duplicate
// names get a per-occurrence suffix folded into the hash input.
func deterministicID(name string, idCounts map[string]int) string {
	key := strings.ToLower(name)
	n := idCounts[key]
	idCounts[key] = n + 1
	if n > 0 {
		key = fmt.Sprintf("%s#%d", key, n)
	}
	return uuid.NewSHA1(idNamespace, []byte(key)).String()
}

func parseLabel(raw, fallback string, allowed []string, rep *Report, line int, what string) string {
	v := strings.TrimSpace(raw)
	if v == "" {
		return fallback
	}
	for _, a := range allowed {
		if strings.EqualFold(v, a) {
			return a
		}
	}
	rep.Findings = append(rep.Findings, fmt.Sprintf("row %d: unknown %s %q, using %s", line, what, v, fallback))
	return fallback
}

func parseFlag(row map[string]string, col string, fallback bool) bool {
	raw, ok := row[col]
	if !ok || strings.TrimSpace(raw) == "" {
		return fallback
	}
	v := strings.ToLower(strings.TrimSpace(raw))
	if n, err := strconv.Atoi(v); err == nil {
		return n > 0
	}
	if b, err := strconv.ParseBool(v); err == nil {
		return b
	}
	return fallback
}

func parsePrefs(row map[string]string, prefix string, rep *Report, line int) []string {
	var out []string
	for i := 1; i <= 4; i++ {
		raw := row[fmt.Sprintf("%s%d", prefix, i)]
		pos := formation.Normalize(raw)
		if pos == "" {
			continue
		}
		if !formation.Known(pos) {
			rep.Findings = append(rep.Findings, fmt.Sprintf("row %d: unknown position %q dropped", line, strings.TrimSpace(raw)))
			continue
		}
		out = append(out, pos)
	}
	return out
}
