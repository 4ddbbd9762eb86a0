package solver

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestAssignMin(t *testing.T) {
	Convey("Given small cost matrices", t, func() {
		Convey("Then a square matrix gets its optimal assignment", func() {
			steps := 1_000_000
			cost := [][]float64{
				{4, 1, 3},
				{2, 0, 5},
				{3, 2, 2},
			}
			assign, ok := assignMin(cost, &steps)
			So(ok, ShouldBeTrue)
			// Optimal total is 5: rows take columns 1, 0, 2.
			So(assign, ShouldResemble, []int{1, 0, 2})
		})

		Convey("Then a wide matrix leaves surplus columns unassigned", func() {
			steps := 1_000_000
			cost := [][]float64{
				{10, 1, 10, 10},
				{1, 10, 10, 10},
			}
			assign, ok := assignMin(cost, &steps)
			So(ok, ShouldBeTrue)
			So(assign[0], ShouldEqual, 1)
			So(assign[1], ShouldEqual, 0)
		})

		Convey("Then more rows than columns is rejected", func() {
			steps := 1_000_000
			cost := [][]float64{{1}, {2}}
			_, ok := assignMin(cost, &steps)
			So(ok, ShouldBeFalse)
		})

		Convey("Then an exhausted step budget aborts instead of hanging", func() {
			steps := 1
			cost := [][]float64{
				{4, 1, 3},
				{2, 0, 5},
				{3, 2, 2},
			}
			_, ok := assignMin(cost, &steps)
			So(ok, ShouldBeFalse)
		})

		Convey("Then an empty matrix is trivially solved", func() {
			steps := 10
			assign, ok := assignMin(nil, &steps)
			So(ok, ShouldBeTrue)
			So(assign, ShouldBeNil)
		})
	})
}
