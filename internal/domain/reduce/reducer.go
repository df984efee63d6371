package reduce

import (
	"github.com/SFDataHub/scanpipe/internal/domain/columns"
	"github.com/SFDataHub/scanpipe/internal/domain/model"
)

// Aggregate collapses the chronologically ordered rows of one period into a
// single row covering allHeaders, the union of every header seen in the
// import batch. Using the batch-wide union keeps aggregate rows
// shape-complete even when individual scans lack a column.
//
// Per-field policy:
//   - max-aggregated fields keep the value achieving the numeric maximum
//     across the period (lenient parse; ties keep the first seen; no
//     parseable number means empty),
//   - every other field takes the most recent non-empty value, walking the
//     period newest to oldest (all empty means empty).
//
// The returned instant is the timestamp of the period's last scan, the one
// that supplies last-wins values.
func Aggregate(periodRows []TimedRow, allHeaders []string) (model.RawRow, int64) {
	out := model.NewRawRow()
	if len(periodRows) == 0 {
		for _, h := range allHeaders {
			out.Set(h, "")
		}
		return out, 0
	}

	for _, header := range allHeaders {
		if columns.IsMaxAggregated(header) {
			out.Set(header, maxOfPeriod(periodRows, header))
		} else {
			out.Set(header, lastNonEmpty(periodRows, header))
		}
	}
	return out, periodRows[len(periodRows)-1].At
}

func maxOfPeriod(rows []TimedRow, header string) string {
	best := ""
	bestNum := 0.0
	found := false
	for _, r := range rows {
		v, ok := r.Row.Get(header)
		if !ok {
			continue
		}
		n, ok := columns.LenientNumber(v)
		if !ok {
			continue
		}
		if !found || n > bestNum {
			best = v
			bestNum = n
			found = true
		}
	}
	return best
}

func lastNonEmpty(rows []TimedRow, header string) string {
	for i := len(rows) - 1; i >= 0; i-- {
		if v, ok := rows[i].Row.Get(header); ok && v != "" {
			return v
		}
	}
	return ""
}
