package rosterio

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/snapwise/rotation/internal/domain/formation"
	"github.com/snapwise/rotation/internal/domain/model"
	"github.com/snapwise/rotation/internal/domain/scoring"
)

// lowPreferenceRank marks plan cells filled beyond a player's top choices.
const lowPreferenceRank = 3

// ExportHistory writes committed turns as CSV: a "Series N" row, a
// Position,Player header, one row per position in formation order, then a
// blank separator per turn.
func ExportHistory(w io.Writer, variant formation.Variant, entries []model.HistoryEntry, roster []model.Player) error {
	names := nameIndex(roster)
	cw := csv.NewWriter(w)
	for _, entry := range entries {
		if err := cw.Write([]string{fmt.Sprintf("Series %d", entry.Turn)}); err != nil {
			return err
		}
		if err := cw.Write([]string{"Position", "Player"}); err != nil {
			return err
		}
		for _, pos := range variant.Positions {
			if err := cw.Write([]string{pos, names.display(entry.Effective[pos])}); err != nil {
				return err
			}
		}
		cw.Flush()
		if err := cw.Error(); err != nil {
			return err
		}
		if _, err := io.WriteString(w, "\n"); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// ExportPlan writes a rotation plan as a grid: positions as rows, one column
// per series. Cells filled beyond a player's top preferences carry a "!"
// marker for coach review.
func ExportPlan(w io.Writer, variant formation.Variant, plan model.Plan, roster []model.Player) error {
	names := nameIndex(roster)
	byID := make(map[string]model.Player, len(roster))
	for _, p := range roster {
		byID[p.ID] = p
	}

	cw := csv.NewWriter(w)
	header := make([]string, 0, len(plan.Series)+1)
	header = append(header, "Position")
	for i := range plan.Series {
		header = append(header, fmt.Sprintf("Series %d", i+1))
	}
	if err := cw.Write(header); err != nil {
		return err
	}
	for _, pos := range variant.Positions {
		row := make([]string, 0, len(plan.Series)+1)
		row = append(row, pos)
		for _, lineup := range plan.Series {
			pid := lineup[pos]
			cell := names.display(pid)
			if p, ok := byID[pid]; ok {
				if rank, elig := scoring.PreferenceRank(p, pos, variant.Side); elig && rank >= lowPreferenceRank {
					cell += " !"
				}
			}
			row = append(row, cell)
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

type nameLookup map[string]string

func nameIndex(roster []model.Player) nameLookup {
	idx := make(nameLookup, len(roster))
	for _, p := range roster {
		idx[p.ID] = p.Name
	}
	return idx
}

// display resolves an id to a name; empty slots render empty and unknown ids
// fall back to the raw id.
func (n nameLookup) display(pid string) string {
	if pid == "" {
		return ""
	}
	if name, ok := n[pid]; ok {
		return name
	}
	return pid
}
