// Package reduce groups decoded rows into per-entity chronological histories
// and collapses the rows of one period into a single aggregate row using
// deterministic per-field policies.
package reduce

import (
	"sort"

	"github.com/SFDataHub/scanpipe/internal/domain/columns"
	"github.com/SFDataHub/scanpipe/internal/domain/model"
	"github.com/SFDataHub/scanpipe/internal/domain/tabular"
	"github.com/SFDataHub/scanpipe/internal/domain/temporal"
)

// TimedRow pairs a decoded row with its resolved instant and the verbatim
// timestamp field it was resolved from.
type TimedRow struct {
	Row   model.RawRow
	At    int64
	RawTS string
}

// History is one entity's chronologically ordered observations within a
// single import.
type History struct {
	ID     string
	Server string
	Rows   []TimedRow
}

// Latest returns the most recent row of the history.
func (h *History) Latest() TimedRow {
	return h.Rows[len(h.Rows)-1]
}

// SkipCounts records why rows were excluded from an import. Exclusion is a
// hard rule: a skipped row is neither aggregated nor written.
type SkipCounts struct {
	MissingID     int
	BadTimestamp  int
	MissingServer int
}

// Total returns the sum of all skip reasons.
func (s SkipCounts) Total() int {
	return s.MissingID + s.BadTimestamp + s.MissingServer
}

// Grouping is the result of bucketing a decoded table by entity.
type Grouping struct {
	// Entities maps entity id to history.
	Entities map[string]*History
	// Order lists entity ids by first appearance in the source file.
	Order []string
	// Skips counts excluded rows by reason.
	Skips SkipCounts
}

// Group buckets a table's rows by resolved entity identifier. Players resolve
// through the ID field, falling back to Identifier; guilds resolve through
// Guild Identifier. Rows lacking an identifier, a parseable timestamp, or a
// non-empty server are counted and dropped; defaultServer fills an absent
// server when provided. Each history comes back sorted by instant, with the
// original file order preserved between equal timestamps.
func Group(t *tabular.Table, kind model.Kind, defaultServer string) *Grouping {
	g := &Grouping{Entities: make(map[string]*History)}

	for _, row := range t.Rows {
		id := resolveID(row, kind)
		if id == "" {
			g.Skips.MissingID++
			continue
		}

		rawTS, ok := columns.Resolve(row, columns.FieldTimestamp)
		if !ok {
			g.Skips.BadTimestamp++
			continue
		}
		at, ok := temporal.ParseTimestamp(rawTS)
		if !ok {
			g.Skips.BadTimestamp++
			continue
		}

		server, _ := columns.Resolve(row, columns.FieldServer)
		if server == "" {
			server = defaultServer
		}
		if server == "" {
			g.Skips.MissingServer++
			continue
		}

		h, ok := g.Entities[id]
		if !ok {
			h = &History{ID: id, Server: server}
			g.Entities[id] = h
			g.Order = append(g.Order, id)
		}
		h.Rows = append(h.Rows, TimedRow{Row: row, At: at, RawTS: rawTS})
	}

	for _, h := range g.Entities {
		rows := h.Rows
		sort.SliceStable(rows, func(i, j int) bool { return rows[i].At < rows[j].At })
	}
	return g
}

func resolveID(row model.RawRow, kind model.Kind) string {
	if kind == model.KindGuilds {
		id, _ := columns.Resolve(row, columns.FieldGuildIdentifier)
		return id
	}
	if id, ok := columns.Resolve(row, columns.FieldID); ok && id != "" {
		return id
	}
	id, _ := columns.Resolve(row, columns.FieldIdentifier)
	return id
}

// PartitionWeeks splits a chronological history into ISO-week buckets,
// returned in chronological bucket order.
func PartitionWeeks(rows []TimedRow) ([]temporal.WeekKey, map[temporal.WeekKey][]TimedRow) {
	buckets := make(map[temporal.WeekKey][]TimedRow)
	var order []temporal.WeekKey
	for _, r := range rows {
		k := temporal.WeekKeyOf(r.At)
		if _, ok := buckets[k]; !ok {
			order = append(order, k)
		}
		buckets[k] = append(buckets[k], r)
	}
	return order, buckets
}

// PartitionMonths splits a chronological history into calendar-month buckets,
// returned in chronological bucket order.
func PartitionMonths(rows []TimedRow) ([]temporal.MonthKey, map[temporal.MonthKey][]TimedRow) {
	buckets := make(map[temporal.MonthKey][]TimedRow)
	var order []temporal.MonthKey
	for _, r := range rows {
		k := temporal.MonthKeyOf(r.At)
		if _, ok := buckets[k]; !ok {
			order = append(order, k)
		}
		buckets[k] = append(buckets[k], r)
	}
	return order, buckets
}
