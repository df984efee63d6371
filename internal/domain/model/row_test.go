package model_test

import (
	"testing"

	"github.com/SFDataHub/scanpipe/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func TestRawRow(t *testing.T) {
	Convey("Given an ordered row", t, func() {
		row := model.NewRawRow()
		row.Set("Name", "Ragnar")
		row.Set("Server", "EU1")
		row.Set("Name", "Loki")

		Convey("Then keys keep insertion order and Set overwrites", func() {
			So(row.Keys(), ShouldResemble, []string{"Name", "Server"})
			v, ok := row.Get("Name")
			So(ok, ShouldBeTrue)
			So(v, ShouldEqual, "Loki")
			So(row.Len(), ShouldEqual, 2)
		})

		Convey("Then clones are independent", func() {
			c := row.Clone()
			c.Set("Server", "EU2")
			v, _ := row.Get("Server")
			So(v, ShouldEqual, "EU1")
		})

		Convey("Then blankness ignores whitespace", func() {
			blank := model.NewRawRow()
			blank.Set("a", "  ")
			blank.Set("b", "")
			So(blank.IsBlank(), ShouldBeTrue)
			So(row.IsBlank(), ShouldBeFalse)
		})

		Convey("Then map round-trips preserve the given key order", func() {
			back := model.FromMap(row.Map(), []string{"Server", "Name"})
			So(back.Keys(), ShouldResemble, []string{"Server", "Name"})
		})
	})
}
