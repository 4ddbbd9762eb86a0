package app_test

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/snapwise/rotation/internal/app"
	"github.com/snapwise/rotation/internal/domain/formation"
	"github.com/snapwise/rotation/internal/domain/model"
)

// miniSecondary keeps tests small: three Secondary positions, dispatched in
// this order.
var miniSecondary = formation.Variant{
	Name:      "secondary",
	Side:      formation.Defense,
	Positions: []string{"LC", "RC", "S"},
}

// secondaryRoster's cycle orders are fixed by rank, strength, name:
// LC [a b c d], RC [c a d b], S [d b a c].
func secondaryRoster() []model.Player {
	return []model.Player{
		{ID: "a", Name: "Avery", Role: model.RoleDriver, Energy: model.EnergyHigh, Defense: []string{"LC", "RC", "S"}, Present: true},
		{ID: "b", Name: "Blake", Role: model.RoleDriver, Energy: model.EnergyMedium, Defense: []string{"LC", "S", "RC"}, Present: true},
		{ID: "c", Name: "Casey", Role: model.RoleConnector, Energy: model.EnergyHigh, Defense: []string{"RC", "LC", "S"}, Present: true},
		{ID: "d", Name: "Drew", Role: model.RoleConnector, Energy: model.EnergyMedium, Defense: []string{"S", "RC", "LC"}, Present: true},
	}
}

func TestCyclicDispatch(t *testing.T) {
	Convey("Given a fresh session without a plan", t, func() {
		s, err := app.New(secondaryRoster(), miniSecondary)
		So(err, ShouldBeNil)

		Convey("Then turn 1 fills every slot from the cycle heads", func() {
			turn, err := s.Preview()
			So(err, ShouldBeNil)
			So(turn.Number, ShouldEqual, 1)
			So(turn.Lineup, ShouldResemble, model.Lineup{"LC": "a", "RC": "c", "S": "d"})
			for _, pos := range miniSecondary.Positions {
				So(turn.Sources[pos], ShouldEqual, model.PickCycle)
				So(turn.Flags[pos], ShouldBeFalse)
			}
		})

		Convey("When turn 1 commits, turn 2 resumes each cycle past the used player", func() {
			_, err := s.Commit()
			So(err, ShouldBeNil)

			turn, err := s.Preview()
			So(err, ShouldBeNil)
			So(turn.Number, ShouldEqual, 2)
			So(turn.Lineup, ShouldResemble, model.Lineup{"LC": "b", "RC": "a", "S": "c"})
		})

		Convey("Then repeated commits keep the category spread within one", func() {
			for i := 0; i < 5; i++ {
				_, err := s.Commit()
				So(err, ShouldBeNil)
				So(s.Summary().CategorySpread["Secondary"], ShouldBeLessThanOrEqualTo, 1)
			}
		})
	})
}

func TestPreviewIsSideEffectFree(t *testing.T) {
	Convey("Given a session", t, func() {
		s, err := app.New(secondaryRoster(), miniSecondary)
		So(err, ShouldBeNil)

		Convey("When previewed repeatedly", func() {
			first, err := s.Preview()
			So(err, ShouldBeNil)
			again, err := s.Preview()
			So(err, ShouldBeNil)

			Convey("Then the result is identical and nothing advanced", func() {
				So(again, ShouldResemble, first)
				So(s.Summary().Turns, ShouldEqual, 0)
				So(s.Summary().Appearances, ShouldBeEmpty)
			})
		})

		Convey("When the next turn is previewed", func() {
			next, err := s.Next()
			So(err, ShouldBeNil)

			Convey("Then current state is untouched", func() {
				So(s.Summary().Turns, ShouldEqual, 0)
				current, err := s.Preview()
				So(err, ShouldBeNil)
				So(current.Number, ShouldEqual, 1)
			})

			Convey("And committing makes the forecast the current turn", func() {
				_, err := s.Commit()
				So(err, ShouldBeNil)
				current, err := s.Preview()
				So(err, ShouldBeNil)
				So(current.Lineup, ShouldResemble, next.Lineup)
			})
		})
	})
}

func TestOverrides(t *testing.T) {
	Convey("Given a session", t, func() {
		roster := append(secondaryRoster(), model.Player{
			ID: "e", Name: "Ellis",
			Role: model.RoleDriver, Energy: model.EnergyHigh,
			Offense: []string{"QB"}, Present: true,
		})
		s, err := app.New(roster, miniSecondary)
		So(err, ShouldBeNil)

		Convey("When an eligible player is pinned", func() {
			s.SetOverride(1, "LC", "d")
			turn, err := s.Preview()
			So(err, ShouldBeNil)

			Convey("Then the pin wins its slot and later slots adjust", func() {
				So(turn.Lineup["LC"], ShouldEqual, "d")
				So(turn.Sources["LC"], ShouldEqual, model.PickManual)
				So(turn.Lineup["S"], ShouldEqual, "b") // d is taken
			})
		})

		Convey("When an ineligible player is pinned", func() {
			s.SetOverride(1, "LC", "e")
			turn, err := s.Preview()
			So(err, ShouldBeNil)

			Convey("Then the slot falls through to the cyclic pass", func() {
				So(turn.Lineup["LC"], ShouldEqual, "a")
				So(turn.Sources["LC"], ShouldEqual, model.PickCycle)
			})
		})

		Convey("When an override is cleared", func() {
			s.SetOverride(1, "LC", "d")
			s.ClearOverride(1, "LC")
			turn, err := s.Preview()
			So(err, ShouldBeNil)
			So(turn.Lineup["LC"], ShouldEqual, "a")
		})

		Convey("When an override targets an already committed turn", func() {
			_, err := s.Commit()
			So(err, ShouldBeNil)
			s.SetOverride(1, "LC", "d")
			turn, err := s.Preview()
			So(err, ShouldBeNil)
			So(turn.Number, ShouldEqual, 2)
			So(turn.Lineup["LC"], ShouldEqual, "b")
		})

		Convey("When an override is set for a later turn", func() {
			s.SetOverride(2, "LC", "d")
			_, err := s.Commit()
			So(err, ShouldBeNil)

			Convey("Then it survives the intervening commit and applies on its turn", func() {
				turn, err := s.Preview()
				So(err, ShouldBeNil)
				So(turn.Number, ShouldEqual, 2)
				So(turn.Lineup["LC"], ShouldEqual, "d")
				So(turn.Sources["LC"], ShouldEqual, model.PickManual)
			})
		})
	})
}

func TestPlannedPass(t *testing.T) {
	Convey("Given a session with a one-series plan", t, func() {
		plan := model.Plan{
			Variant: miniSecondary.Name,
			Series:  []model.Lineup{{"LC": "d", "RC": "b", "S": "a"}},
		}
		s, err := app.New(secondaryRoster(), miniSecondary, app.WithPlan(plan))
		So(err, ShouldBeNil)

		Convey("Then turn 1 follows the plan", func() {
			turn, err := s.Preview()
			So(err, ShouldBeNil)
			So(turn.Lineup, ShouldResemble, model.Lineup{"LC": "d", "RC": "b", "S": "a"})
			for _, pos := range miniSecondary.Positions {
				So(turn.Sources[pos], ShouldEqual, model.PickPlanned)
			}
		})

		Convey("When the plan wraps and its pick would break the lead rule", func() {
			_, err := s.Commit()
			So(err, ShouldBeNil)

			turn, err := s.Preview()
			So(err, ShouldBeNil)

			Convey("Then the slot silently falls to the cyclic pass", func() {
				// d, b, a each lead c by one, so the planned repeat is skipped.
				So(turn.Lineup["LC"], ShouldEqual, "c")
				So(turn.Sources["LC"], ShouldEqual, model.PickCycle)
				So(turn.Flags["LC"], ShouldBeFalse)
			})
		})
	})
}

func TestDebtAndEmptyPicks(t *testing.T) {
	Convey("Given two players on two positions", t, func() {
		roster := []model.Player{
			{ID: "x", Name: "Xen", Role: model.RoleDriver, Energy: model.EnergyHigh, Defense: []string{"LC", "RC"}, Present: true},
			{ID: "y", Name: "Yael", Role: model.RoleConnector, Energy: model.EnergyMedium, Defense: []string{"RC"}, Present: true},
		}
		variant := formation.Variant{Name: "corners", Side: formation.Defense, Positions: []string{"LC", "RC"}}
		s, err := app.New(roster, variant)
		So(err, ShouldBeNil)

		Convey("When an override drains the only candidate for a slot", func() {
			s.SetOverride(1, "RC", "x")
			turn, err := s.Commit()
			So(err, ShouldBeNil)

			Convey("Then the starved slot is empty, not an error", func() {
				So(turn.Effective["RC"], ShouldEqual, "x")
				So(turn.Effective["LC"], ShouldEqual, "")
				So(turn.Sources["LC"], ShouldEqual, model.PickEmpty)
			})

			Convey("And the next turn takes the leader on as flagged debt", func() {
				next, err := s.Preview()
				So(err, ShouldBeNil)
				// x leads y, but x is LC's only candidate.
				So(next.Lineup["LC"], ShouldEqual, "x")
				So(next.Sources["LC"], ShouldEqual, model.PickCycleDebt)
				So(next.Flags["LC"], ShouldBeTrue)
				So(next.Lineup["RC"], ShouldEqual, "y")
			})
		})
	})
}

func TestCommitUndo(t *testing.T) {
	Convey("Given a session with one override", t, func() {
		s, err := app.New(secondaryRoster(), miniSecondary)
		So(err, ShouldBeNil)
		s.SetOverride(1, "S", "b")

		before, err := s.Preview()
		So(err, ShouldBeNil)

		Convey("When a commit is undone", func() {
			entry, err := s.Commit()
			So(err, ShouldBeNil)
			So(entry.Turn, ShouldEqual, 1)
			So(entry.Overrides, ShouldResemble, map[string]string{"S": "b"})
			So(len(s.History()), ShouldEqual, 1)

			So(s.Undo(), ShouldBeTrue)

			Convey("Then counters, history, and the turn number roll back", func() {
				sum := s.Summary()
				So(sum.Turns, ShouldEqual, 0)
				So(sum.Appearances, ShouldBeEmpty)
				So(s.History(), ShouldBeEmpty)
			})

			Convey("Then the undone turn's override is reinstated", func() {
				turn, err := s.Preview()
				So(err, ShouldBeNil)
				So(turn, ShouldResemble, before)
				So(turn.Lineup["S"], ShouldEqual, "b")
			})

			Convey("And recommitting reproduces the undone entry", func() {
				again, err := s.Commit()
				So(err, ShouldBeNil)
				So(again, ShouldResemble, entry)
			})
		})

		Convey("When there is nothing to undo", func() {
			So(s.Undo(), ShouldBeFalse)
		})
	})
}

func TestHistoryAndSummary(t *testing.T) {
	Convey("Given three committed turns", t, func() {
		s, err := app.New(secondaryRoster(), miniSecondary)
		So(err, ShouldBeNil)
		for i := 0; i < 3; i++ {
			_, err := s.Commit()
			So(err, ShouldBeNil)
		}

		Convey("Then history holds the entries oldest first", func() {
			hist := s.History()
			So(len(hist), ShouldEqual, 3)
			So(hist[0].Turn, ShouldEqual, 1)
			So(hist[2].Turn, ShouldEqual, 3)
			So(hist[0].Effective, ShouldResemble, model.Lineup{"LC": "a", "RC": "c", "S": "d"})
		})

		Convey("Then the summary totals match the lineups", func() {
			sum := s.Summary()
			So(sum.Turns, ShouldEqual, 3)
			So(sum.SessionID, ShouldEqual, s.ID())
			total := 0
			for _, n := range sum.Appearances {
				total += n
			}
			So(total, ShouldEqual, 9)
		})
	})
}

func TestSessionEnd(t *testing.T) {
	Convey("Given a session with a committed turn", t, func() {
		s, err := app.New(secondaryRoster(), miniSecondary)
		So(err, ShouldBeNil)
		_, err = s.Commit()
		So(err, ShouldBeNil)

		Convey("When ended", func() {
			sum := s.End()

			Convey("Then the final summary is returned", func() {
				So(sum.Turns, ShouldEqual, 1)
			})

			Convey("Then further turns are refused", func() {
				_, err := s.Preview()
				So(err, ShouldEqual, app.ErrSessionEnded)
				_, err = s.Commit()
				So(err, ShouldEqual, app.ErrSessionEnded)
				So(s.Undo(), ShouldBeFalse)
			})
		})
	})
}

func TestSuggestOpener(t *testing.T) {
	Convey("Given a session without a plan", t, func() {
		s, err := app.New(secondaryRoster(), miniSecondary)
		So(err, ShouldBeNil)

		Convey("Then the suggested opener takes best suitability per slot", func() {
			opener := s.SuggestOpener()
			So(opener, ShouldResemble, model.Lineup{"LC": "a", "RC": "c", "S": "b"})
		})
	})
}
