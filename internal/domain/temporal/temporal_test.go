package temporal_test

import (
	"testing"
	"time"

	"github.com/SFDataHub/scanpipe/internal/domain/temporal"
	. "github.com/smartystreets/goconvey/convey"
)

func TestParseTimestamp(t *testing.T) {
	Convey("Given the timestamp parser", t, func() {
		Convey("Then 13-digit epoch millis parse to seconds", func() {
			sec, ok := temporal.ParseTimestamp("1700000000123")
			So(ok, ShouldBeTrue)
			So(sec, ShouldEqual, 1700000000)
		})

		Convey("Then 10-digit epoch seconds parse as-is", func() {
			sec, ok := temporal.ParseTimestamp("1700000000")
			So(ok, ShouldBeTrue)
			So(sec, ShouldEqual, 1700000000)
		})

		Convey("Then dotted European date-times parse as UTC", func() {
			sec, ok := temporal.ParseTimestamp("14.11.2023 22:13:20")
			So(ok, ShouldBeTrue)
			So(sec, ShouldEqual, time.Date(2023, 11, 14, 22, 13, 20, 0, time.UTC).Unix())

			sec, ok = temporal.ParseTimestamp("14.11.2023 22:13")
			So(ok, ShouldBeTrue)
			So(sec, ShouldEqual, time.Date(2023, 11, 14, 22, 13, 0, 0, time.UTC).Unix())
		})

		Convey("Then generic layouts are accepted", func() {
			sec, ok := temporal.ParseTimestamp("2023-11-14 22:13:20")
			So(ok, ShouldBeTrue)
			So(sec, ShouldEqual, time.Date(2023, 11, 14, 22, 13, 20, 0, time.UTC).Unix())
		})

		Convey("Then garbage is rejected, never guessed", func() {
			_, ok := temporal.ParseTimestamp("soon")
			So(ok, ShouldBeFalse)
			_, ok = temporal.ParseTimestamp("")
			So(ok, ShouldBeFalse)
			_, ok = temporal.ParseTimestamp("123456")
			So(ok, ShouldBeFalse)
		})
	})
}

func TestWeekKey(t *testing.T) {
	Convey("Given ISO week bucketing", t, func() {
		// 2024-01-01 is a Monday and belongs to ISO week 2024-W01.
		monday := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

		Convey("When keying an instant mid-week", func() {
			k := temporal.WeekKeyOf(monday.Unix() + 3*temporal.SecondsPerDay)

			Convey("Then the key and bounds are Monday-anchored", func() {
				So(k.String(), ShouldEqual, "2024-W01")
				start, end := k.Bounds()
				So(start, ShouldEqual, monday.Unix())
				So(end, ShouldEqual, monday.AddDate(0, 0, 7).Unix()-1)
			})
		})

		Convey("When keying a Sunday", func() {
			k := temporal.WeekKeyOf(monday.Unix() + 6*temporal.SecondsPerDay)

			Convey("Then it stays in the same ISO week", func() {
				So(k.String(), ShouldEqual, "2024-W01")
			})
		})

		Convey("When the year starts mid-week", func() {
			// 2023-01-01 is a Sunday, part of ISO week 2022-W52.
			k := temporal.WeekKeyOf(time.Date(2023, 1, 1, 12, 0, 0, 0, time.UTC).Unix())

			Convey("Then the ISO year differs from the calendar year", func() {
				So(k.String(), ShouldEqual, "2022-W52")
			})
		})
	})
}

func TestMonthKey(t *testing.T) {
	Convey("Given calendar month bucketing", t, func() {
		sec := time.Date(2024, 2, 15, 8, 0, 0, 0, time.UTC).Unix()
		k := temporal.MonthKeyOf(sec)

		Convey("Then the key renders year-month", func() {
			So(k.String(), ShouldEqual, "2024-02")
			So(k.Label(), ShouldEqual, "February 2024")
		})

		Convey("Then bounds span the whole month, leap day included", func() {
			start, end := k.Bounds()
			So(start, ShouldEqual, time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC).Unix())
			So(end, ShouldEqual, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC).Unix()-1)
		})

		Convey("Then month keys round-trip through parsing", func() {
			parsed, err := temporal.ParseMonthKey("2024-02")
			So(err, ShouldBeNil)
			So(parsed, ShouldResemble, k)
		})
	})
}

func TestDaysBetween(t *testing.T) {
	Convey("Given the day span helper", t, func() {
		Convey("Then spans floor to whole days", func() {
			So(temporal.DaysBetween(0, 40*temporal.SecondsPerDay), ShouldEqual, 40)
			So(temporal.DaysBetween(0, 40*temporal.SecondsPerDay+86399), ShouldEqual, 40)
			So(temporal.DaysBetween(0, 41*temporal.SecondsPerDay), ShouldEqual, 41)
		})

		Convey("Then order does not matter", func() {
			So(temporal.DaysBetween(10*temporal.SecondsPerDay, 0), ShouldEqual, 10)
		})
	})
}
