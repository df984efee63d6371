package importer_test

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/SFDataHub/scanpipe/internal/adapters/docstore"
	"github.com/SFDataHub/scanpipe/internal/domain/model"
	"github.com/SFDataHub/scanpipe/internal/importer"
	"github.com/SFDataHub/scanpipe/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func initLogger(t *testing.T) {
	t.Helper()
	if err := logger.Init(); err != nil {
		t.Fatalf("failed to initialize logger: %v", err)
	}
}

func newImporter(store docstore.Store, opts ...importer.Option) *importer.Importer {
	base := []importer.Option{importer.WithBatchPause(0)}
	return importer.New(store, append(base, opts...)...)
}

func TestRunPlayers(t *testing.T) {
	initLogger(t)

	Convey("Given a player export spanning two weeks of one month", t, func() {
		ctx := context.Background()
		store := docstore.NewMemoryStore()

		// 1704067200 = 2024-01-01 (Monday), 1704931200 = 2024-01-11.
		text := "ID,Name,Server,Guild Identifier,Timestamp,Strength\n" +
			"p1,Ragnar,EU1,g1,1704067200,100\n" +
			"p1,Ragnar,EU1,g1,1704931200,140\n" +
			"p2,Loki,EU1,g1,1704067200,90\n"

		Convey("When importing", func() {
			report, err := newImporter(store).Run(ctx, model.KindPlayers, text)

			Convey("Then the report counts every record class", func() {
				So(err, ShouldBeNil)
				So(report.DetectedType, ShouldEqual, "players")
				So(report.Counts.WrittenScans, ShouldEqual, 3)
				So(report.Counts.WrittenLatest, ShouldEqual, 2)
				So(report.Counts.WrittenWeekly, ShouldEqual, 3) // p1 in W01+W02, p2 in W01
				So(report.Counts.WrittenMonthly, ShouldEqual, 2)
				So(report.Counts.WrittenRosters, ShouldEqual, 1)
				So(report.RunID, ShouldNotBeEmpty)
			})

			Convey("Then each scan is addressable by entity and timestamp", func() {
				var scan model.ScanDoc
				found, err := store.Get(ctx, docstore.ScanPath("players", "p1"), "1704931200", &scan)
				So(err, ShouldBeNil)
				So(found, ShouldBeTrue)
				So(scan.Values["Strength"], ShouldEqual, "140")
			})

			Convey("Then the latest record carries the newest row", func() {
				var latest model.LatestDoc
				found, err := store.Get(ctx, docstore.LatestPath("players"), "p1", &latest)
				So(err, ShouldBeNil)
				So(found, ShouldBeTrue)
				So(latest.Timestamp, ShouldEqual, 1704931200)
				So(latest.Values["Strength"], ShouldEqual, "140")
			})

			Convey("Then the monthly aggregate keeps the maximum strength", func() {
				var agg model.AggregateDoc
				found, err := store.Get(ctx, docstore.MonthlyPath("players", "p1"), "2024-01", &agg)
				So(err, ShouldBeNil)
				So(found, ShouldBeTrue)
				So(agg.Values["Strength"], ShouldEqual, "140")
				So(agg.LastScanAt, ShouldEqual, 1704931200)
			})

			Convey("Then the guild roster is derived from the players", func() {
				var latest model.LatestDoc
				found, err := store.Get(ctx, docstore.LatestPath("guilds"), "g1", &latest)
				So(err, ShouldBeNil)
				So(found, ShouldBeTrue)
				So(latest.Members, ShouldHaveLength, 2)
			})

			Convey("Then the guild month baseline exists", func() {
				var base model.BaselineDoc
				found, err := store.Get(ctx, docstore.BaselinePath("g1"), "2024-01", &base)
				So(err, ShouldBeNil)
				So(found, ShouldBeTrue)
			})
		})

		Convey("When importing the identical file twice", func() {
			first, err := newImporter(store).Run(ctx, model.KindPlayers, text)
			So(err, ShouldBeNil)
			docsAfterFirst := store.Len()

			second, err := newImporter(store).Run(ctx, model.KindPlayers, text)

			Convey("Then the second run is byte-for-byte idempotent", func() {
				So(err, ShouldBeNil)
				So(store.Len(), ShouldEqual, docsAfterFirst)
				So(second.Counts, ShouldResemble, first.Counts)
			})
		})
	})
}

func TestRunSkipAccounting(t *testing.T) {
	initLogger(t)

	Convey("Given a 10-row file where 3 rows lack a server", t, func() {
		ctx := context.Background()
		store := docstore.NewMemoryStore()

		var b strings.Builder
		b.WriteString("ID,Server,Timestamp\n")
		for i := 0; i < 7; i++ {
			fmt.Fprintf(&b, "p%d,EU1,%d\n", i, 1704067200+i*3600)
		}
		for i := 7; i < 10; i++ {
			fmt.Fprintf(&b, "p%d,,%d\n", i, 1704067200+i*3600)
		}

		Convey("When importing without a fallback server", func() {
			report, err := newImporter(store).Run(ctx, model.KindPlayers, b.String())

			Convey("Then exactly the defective rows are skipped and counted", func() {
				So(err, ShouldBeNil)
				So(report.Counts.SkippedMissingServer, ShouldEqual, 3)
				So(report.Counts.WrittenScans, ShouldEqual, 7)
				So(report.Warnings, ShouldHaveLength, 1)
			})
		})

		Convey("When importing with a fallback server", func() {
			report, err := newImporter(store, importer.WithDefaultServer("EU9")).Run(ctx, model.KindPlayers, b.String())

			Convey("Then every row survives", func() {
				So(err, ShouldBeNil)
				So(report.Counts.SkippedMissingServer, ShouldEqual, 0)
				So(report.Counts.WrittenScans, ShouldEqual, 10)
			})
		})
	})
}

func TestRunProgressCallback(t *testing.T) {
	initLogger(t)

	Convey("Given an import with a progress callback", t, func() {
		ctx := context.Background()
		store := docstore.NewMemoryStore()

		var b strings.Builder
		b.WriteString("ID,Server,Timestamp\n")
		for i := 0; i < 250; i++ {
			fmt.Fprintf(&b, "p%d,EU1,%d\n", i, 1704067200+i*3600)
		}

		var updates []importer.Update
		im := newImporter(store,
			importer.WithScanBatchSize(100),
			importer.WithProgress(func(u importer.Update) {
				updates = append(updates, u)
			}),
		)

		Convey("When importing", func() {
			_, err := im.Run(ctx, model.KindPlayers, b.String())
			So(err, ShouldBeNil)

			Convey("Then each pass runs prepare, write chunks, done", func() {
				var scans []importer.Update
				for _, u := range updates {
					if u.Pass == importer.PassScans {
						scans = append(scans, u)
					}
				}
				So(scans[0].Phase, ShouldEqual, importer.PhasePrepare)
				So(scans[len(scans)-1].Phase, ShouldEqual, importer.PhaseDone)
				// 250 docs at chunk 100: three write updates.
				So(scans, ShouldHaveLength, 5)
			})

			Convey("And current is monotonically non-decreasing with a fixed total", func() {
				var prev int
				for _, u := range updates {
					if u.Pass != importer.PassScans {
						continue
					}
					So(u.Total, ShouldEqual, 250)
					So(u.Current, ShouldBeGreaterThanOrEqualTo, prev)
					prev = u.Current
				}
			})
		})

		Convey("When the callback panics", func() {
			panicky := newImporter(store, importer.WithProgress(func(importer.Update) {
				panic("listener went away")
			}))
			_, err := panicky.Run(ctx, model.KindPlayers, "ID,Server,Timestamp\np1,EU1,1704067200\n")

			Convey("Then the import still succeeds", func() {
				So(err, ShouldBeNil)
			})
		})
	})
}

func TestRunConfigurationErrors(t *testing.T) {
	initLogger(t)

	Convey("Given an importer", t, func() {
		ctx := context.Background()
		im := newImporter(docstore.NewMemoryStore())

		Convey("When the kind is unknown", func() {
			_, err := im.Run(ctx, model.Kind("npcs"), "ID\n1\n")

			Convey("Then it fails before processing", func() {
				So(errors.Is(err, importer.ErrUnknownKind), ShouldBeTrue)
			})
		})

		Convey("When no input is supplied", func() {
			_, err := im.Run(ctx, model.KindPlayers, "  \n")

			Convey("Then it fails with ErrNoInput", func() {
				So(errors.Is(err, importer.ErrNoInput), ShouldBeTrue)
			})
		})
	})
}

func TestRunGuilds(t *testing.T) {
	initLogger(t)

	Convey("Given a guild export with a retroactive second import", t, func() {
		ctx := context.Background()
		store := docstore.NewMemoryStore()

		// 1704931200 = 2024-01-11; 1704067200 = 2024-01-01.
		later := "Guild Identifier,Server,Timestamp,Guild Member Count\n" +
			"g1,EU1,1704931200,25\n"
		earlier := "Guild Identifier,Server,Timestamp,Guild Member Count\n" +
			"g1,EU1,1704067200,23\n"

		Convey("When the later snapshot arrives first", func() {
			_, err := newImporter(store).Run(ctx, model.KindGuilds, later)
			So(err, ShouldBeNil)

			var base model.BaselineDoc
			found, err := store.Get(ctx, docstore.BaselinePath("g1"), "2024-01", &base)
			So(err, ShouldBeNil)
			So(found, ShouldBeTrue)
			So(base.Timestamp, ShouldEqual, 1704931200)

			Convey("And the earlier snapshot arrives afterwards", func() {
				_, err := newImporter(store).Run(ctx, model.KindGuilds, earlier)
				So(err, ShouldBeNil)

				Convey("Then the baseline moves backward to the earlier observation", func() {
					found, err := store.Get(ctx, docstore.BaselinePath("g1"), "2024-01", &base)
					So(err, ShouldBeNil)
					So(found, ShouldBeTrue)
					So(base.Timestamp, ShouldEqual, 1704067200)
					So(base.Values["Guild Member Count"], ShouldEqual, "23")
				})

				Convey("Then the latest record is never regressed by the older scan", func() {
					var latest model.LatestDoc
					found, err := store.Get(ctx, docstore.LatestPath("guilds"), "g1", &latest)
					So(err, ShouldBeNil)
					So(found, ShouldBeTrue)
					So(latest.Timestamp, ShouldEqual, 1704931200)
				})
			})
		})
	})
}
