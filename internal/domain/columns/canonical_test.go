package columns_test

import (
	"testing"

	"github.com/SFDataHub/scanpipe/internal/domain/columns"
	"github.com/SFDataHub/scanpipe/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func TestResolve(t *testing.T) {
	Convey("Given a row with localized and oddly cased headers", t, func() {
		row := model.NewRawRow()
		row.Set("guild_identifier", "g-1")
		row.Set("SERVER ", "EU1")
		row.Set("Time Stamp", "1700000000")

		Convey("When resolving canonical names", func() {
			Convey("Then folding ignores case, whitespace, and underscores", func() {
				v, ok := columns.Resolve(row, columns.FieldGuildIdentifier)
				So(ok, ShouldBeTrue)
				So(v, ShouldEqual, "g-1")

				v, ok = columns.Resolve(row, columns.FieldServer)
				So(ok, ShouldBeTrue)
				So(v, ShouldEqual, "EU1")

				v, ok = columns.Resolve(row, columns.FieldTimestamp)
				So(ok, ShouldBeTrue)
				So(v, ShouldEqual, "1700000000")
			})

			Convey("Then an absent field reports not found", func() {
				_, ok := columns.Resolve(row, columns.FieldName)
				So(ok, ShouldBeFalse)
			})
		})
	})
}

func TestIsMaxAggregated(t *testing.T) {
	Convey("Given the max-aggregated classification", t, func() {
		Convey("Then the attribute fields aggregate by maximum", func() {
			So(columns.IsMaxAggregated("Strength"), ShouldBeTrue)
			So(columns.IsMaxAggregated("constitution"), ShouldBeTrue)
			So(columns.IsMaxAggregated("LUCK"), ShouldBeTrue)
		})

		Convey("Then any header containing equipment aggregates by maximum", func() {
			So(columns.IsMaxAggregated("Equipment Bonus"), ShouldBeTrue)
			So(columns.IsMaxAggregated("weapon_equipment_score"), ShouldBeTrue)
		})

		Convey("Then ordinary headers aggregate last-wins", func() {
			So(columns.IsMaxAggregated("Name"), ShouldBeFalse)
			So(columns.IsMaxAggregated("Guild Member Count"), ShouldBeFalse)
		})
	})
}

func TestLenientNumber(t *testing.T) {
	Convey("Given the lenient numeric parse", t, func() {
		Convey("Then plain numbers parse", func() {
			n, ok := columns.LenientNumber("19")
			So(ok, ShouldBeTrue)
			So(n, ShouldEqual, 19)
		})

		Convey("Then units and stray characters are stripped first", func() {
			n, ok := columns.LenientNumber(" 1 234 pts")
			So(ok, ShouldBeTrue)
			So(n, ShouldEqual, 1234)
		})

		Convey("Then non-numeric values report false", func() {
			_, ok := columns.LenientNumber("abc")
			So(ok, ShouldBeFalse)
			_, ok = columns.LenientNumber("")
			So(ok, ShouldBeFalse)
		})
	})
}
