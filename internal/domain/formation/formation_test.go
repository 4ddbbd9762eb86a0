package formation_test

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/snapwise/rotation/internal/domain/formation"
)

func TestNormalize(t *testing.T) {
	Convey("Given raw position labels", t, func() {
		Convey("Then canonical keys pass through unchanged", func() {
			So(formation.Normalize("QB"), ShouldEqual, "QB")
			So(formation.Normalize("Slot"), ShouldEqual, "Slot")
			So(formation.Normalize("MLB"), ShouldEqual, "MLB")
		})

		Convey("Then casing and whitespace are folded", func() {
			So(formation.Normalize(" qb "), ShouldEqual, "QB")
			So(formation.Normalize("slot"), ShouldEqual, "Slot")
			So(formation.Normalize("SLOT"), ShouldEqual, "Slot")
		})

		Convey("Then legacy 4-4 labels map onto the core set", func() {
			So(formation.Normalize("RILB"), ShouldEqual, "MLB")
			So(formation.Normalize("LILB"), ShouldEqual, "MLB")
			So(formation.Normalize("RMLB"), ShouldEqual, "MLB")
			So(formation.Normalize("LMLB"), ShouldEqual, "MLB")
			So(formation.Normalize("ROLB"), ShouldEqual, "RLB")
			So(formation.Normalize("lolb"), ShouldEqual, "LLB")
		})

		Convey("Then empty input stays empty", func() {
			So(formation.Normalize(""), ShouldEqual, "")
			So(formation.Normalize("   "), ShouldEqual, "")
		})
	})
}

func TestVariants(t *testing.T) {
	Convey("Given the built-in variants", t, func() {
		Convey("Then each resolves by name", func() {
			v, ok := formation.VariantByName("offense")
			So(ok, ShouldBeTrue)
			So(v.Side, ShouldEqual, formation.Offense)
			So(len(v.Positions), ShouldEqual, 11)

			v, ok = formation.VariantByName("5-3")
			So(ok, ShouldBeTrue)
			So(len(v.Positions), ShouldEqual, 11)

			v, ok = formation.VariantByName("defense-44")
			So(ok, ShouldBeTrue)
			So(len(v.Positions), ShouldEqual, 10)
		})

		Convey("Then unknown names fail the lookup", func() {
			_, ok := formation.VariantByName("wishbone")
			So(ok, ShouldBeFalse)
		})

		Convey("Then every variant position has exactly one category", func() {
			for _, v := range []formation.Variant{formation.Offense11, formation.Defense53, formation.Defense44} {
				for _, pos := range v.Positions {
					cat, ok := formation.CategoryOf(pos)
					So(ok, ShouldBeTrue)
					So(cat, ShouldNotBeEmpty)
				}
			}
		})
	})
}

func TestCategories(t *testing.T) {
	Convey("Given the category tables", t, func() {
		Convey("Then interior line holds all five line positions", func() {
			So(formation.CategoryPositions("Interior Line"), ShouldResemble, []string{"C", "LG", "LT", "RG", "RT"})
		})

		Convey("Then the secondary holds both corners and the safety", func() {
			So(formation.CategoryPositions("Secondary"), ShouldResemble, []string{"LC", "RC", "S"})
		})

		Convey("Then offense and defense have distinct category sets", func() {
			off := formation.Categories(formation.Offense)
			def := formation.Categories(formation.Defense)
			So(off, ShouldContain, "Backfield")
			So(off, ShouldNotContain, "DLine")
			So(def, ShouldContain, "Linebacker")
			So(def, ShouldNotContain, "Wide")
		})
	})
}
