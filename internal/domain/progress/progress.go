// Package progress computes month-over-month guild progress reports: per
// member deltas between a month's baseline and latest member lists, ranked
// into capped leaderboards, gated by a maximum baseline-to-latest span.
package progress

import (
	"sort"

	"github.com/SFDataHub/scanpipe/internal/domain/model"
	"github.com/SFDataHub/scanpipe/internal/domain/temporal"
)

// Default report limits.
const (
	// MaxListEntries caps every ranked list.
	MaxListEntries = 50
	// MaxSpanDays is the widest baseline-to-latest span a report may trust.
	MaxSpanDays = 40
)

// memberDelta joins one latest member to its baseline counterpart. A member
// with no baseline counterpart carries zero deltas rather than a "new
// member" marker; the ranking semantics inherit that simplification.
type memberDelta struct {
	member    model.MemberStats
	baseDelta int64
	mainDelta int64
}

// Build computes the progress document for one guild month from the stored
// baseline and the latest member list. With no baseline, or a span over
// MaxSpanDays, the document carries metadata and a reason code only and no
// ranked lists are computed.
func Build(base *model.BaselineDoc, latestMembers []model.MemberStats, latestTS int64, month temporal.MonthKey) *model.ProgressDoc {
	doc := &model.ProgressDoc{
		Month: month.String(),
		Label: month.Label(),
		To:    latestTS,
	}

	if base == nil {
		doc.Status = model.ProgressStatus{Available: false, Reason: model.ReasonInsufficientData}
		return doc
	}

	doc.EntityID = base.EntityID
	doc.From = base.Timestamp
	doc.DaysSpan = temporal.DaysBetween(base.Timestamp, latestTS)
	if doc.DaysSpan > MaxSpanDays {
		doc.Status = model.ProgressStatus{Available: false, Reason: model.ReasonSpanTooLarge}
		return doc
	}
	doc.Status = model.ProgressStatus{Available: true}

	byID := make(map[string]model.MemberStats, len(base.Members))
	for _, m := range base.Members {
		byID[m.ID] = m
	}

	deltas := make([]memberDelta, 0, len(latestMembers))
	for _, m := range latestMembers {
		d := memberDelta{member: m}
		if b, ok := byID[m.ID]; ok {
			d.baseDelta = m.BaseStats - b.BaseStats
			d.mainDelta = m.MainStat - b.MainStat
		}
		deltas = append(deltas, d)
	}

	doc.MostBaseGained = rank(deltas, func(d memberDelta) int64 { return d.baseDelta })
	doc.SumBaseStats = rank(deltas, func(d memberDelta) int64 { return abs(d.member.BaseStats) })
	doc.HighestBaseStats = rank(deltas, func(d memberDelta) int64 { return d.member.BaseStats })
	doc.HighestTotal = rank(deltas, func(d memberDelta) int64 { return d.member.TotalStats })
	doc.MainAndCon = rank(deltas, func(d memberDelta) int64 { return d.member.MainStat })
	return doc
}

// rank sorts descending by key, keeping the latest-member-list order between
// equal keys, and truncates to MaxListEntries.
func rank(deltas []memberDelta, key func(memberDelta) int64) []model.ProgressEntry {
	ordered := make([]memberDelta, len(deltas))
	copy(ordered, deltas)
	sort.SliceStable(ordered, func(i, j int) bool {
		return key(ordered[i]) > key(ordered[j])
	})
	if len(ordered) > MaxListEntries {
		ordered = ordered[:MaxListEntries]
	}
	out := make([]model.ProgressEntry, len(ordered))
	for i, d := range ordered {
		out[i] = model.ProgressEntry{
			MemberID: d.member.ID,
			Name:     d.member.Name,
			Value:    key(d),
		}
	}
	return out
}

func abs(v int64) int64 {
	if v < 0 {
		return -v
	}
	return v
}
