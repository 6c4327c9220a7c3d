package types_test

import (
	"testing"

	types "github.com/okian/juicerank/internal/domain/types"
	. "github.com/smartystreets/goconvey/convey"
)

func TestBefore(t *testing.T) {
	Convey("Given two leaderboard rows", t, func() {
		Convey("When stars differ", func() {
			Convey("Then the harder map ranks first", func() {
				So(types.Before(5.1, "b", 4.9, "a"), ShouldBeTrue)
				So(types.Before(4.9, "a", 5.1, "b"), ShouldBeFalse)
			})
		})

		Convey("When stars tie", func() {
			Convey("Then the smaller id ranks first", func() {
				So(types.Before(3, "a", 3, "b"), ShouldBeTrue)
				So(types.Before(3, "b", 3, "a"), ShouldBeFalse)
			})
		})

		Convey("When comparing a row with itself", func() {
			Convey("Then it is not before itself", func() {
				So(types.Before(3, "a", 3, "a"), ShouldBeFalse)
			})
		})
	})
}
