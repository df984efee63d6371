// Package importer sequences the import pipeline: decode, resolve, group,
// write scans, reduce weekly and monthly aggregates, maintain guild
// baselines, and flush everything to the document store in throttled
// batches. One Run is one synchronous unit of work; partial progress already
// committed is never rolled back.
package importer

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/SFDataHub/scanpipe/internal/adapters/docstore"
	"github.com/SFDataHub/scanpipe/internal/domain/baseline"
	"github.com/SFDataHub/scanpipe/internal/domain/columns"
	"github.com/SFDataHub/scanpipe/internal/domain/model"
	"github.com/SFDataHub/scanpipe/internal/domain/progress"
	"github.com/SFDataHub/scanpipe/internal/domain/reduce"
	"github.com/SFDataHub/scanpipe/internal/domain/tabular"
	"github.com/SFDataHub/scanpipe/internal/domain/temporal"
	"github.com/SFDataHub/scanpipe/pkg/logger"
	"github.com/SFDataHub/scanpipe/pkg/metrics"
)

// Skip reason labels, shared with metrics.
const (
	reasonMissingIdentifier = "missing_identifier"
	reasonInvalidTimestamp  = "invalid_timestamp"
	reasonMissingServer     = "missing_server"
)

// Importer runs whole-file batch imports against a document store.
type Importer struct {
	store docstore.Store

	defaultServer    string
	scanBatchSize    int
	latestBatchSize  int
	historyBatchSize int
	batchPause       time.Duration
	onProgress       Callback

	log logger.Logger
	now func() time.Time
}

// New creates an Importer with configuration options.
func New(store docstore.Store, opts ...Option) *Importer {
	im := &Importer{
		store:            store,
		scanBatchSize:    defaultScanBatchSize,
		latestBatchSize:  defaultLatestBatchSize,
		historyBatchSize: defaultHistoryBatchSize,
		batchPause:       defaultBatchPause,
		log:              logger.Get().Named("importer"),
		now:              time.Now,
	}
	for _, opt := range opts {
		opt(im)
	}
	return im
}

// Run imports one file. Malformed rows are counted and skipped, never fatal;
// configuration problems fail before any processing; a storage failure
// during a batch commit aborts the remaining flushes and propagates.
func (im *Importer) Run(ctx context.Context, kind model.Kind, text string) (*Report, error) {
	if !kind.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}
	if strings.TrimSpace(text) == "" {
		return nil, ErrNoInput
	}

	began := im.now()
	report := &Report{
		RunID:        uuid.NewString(),
		DetectedType: string(kind),
		Errors:       []string{},
		Warnings:     []string{},
	}

	run, err := im.run(ctx, kind, text, report)
	elapsed := im.now().Sub(began)
	report.DurationMs = elapsed.Milliseconds()

	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	metrics.RecordImportRun(string(kind), outcome, elapsed.Seconds())
	if err != nil {
		return nil, err
	}

	im.log.Info(ctx, "import finished",
		logger.String("run", report.RunID),
		logger.String("kind", string(kind)),
		logger.Int("scans", report.Counts.WrittenScans),
		logger.Int("entities", run.entities),
		logger.Int("skipped", run.skipped),
		logger.Int("durationMs", int(report.DurationMs)),
	)
	return report, nil
}

// runState carries totals across the orchestration steps.
type runState struct {
	entities int
	skipped  int
}

func (im *Importer) run(ctx context.Context, kind model.Kind, text string, report *Report) (*runState, error) {
	collection := kind.Collection()

	table, err := tabular.Decode(text)
	if err != nil {
		return nil, fmt.Errorf("decoding input: %w", err)
	}
	metrics.RecordRowsDecoded(len(table.Rows))

	grouping := reduce.Group(table, kind, im.defaultServer)
	im.recordSkips(grouping.Skips, report)

	state := &runState{
		entities: len(grouping.Order),
		skipped:  grouping.Skips.Total(),
	}

	// Scan ingestion completes fully before any aggregation: the reducers
	// need each entity's complete chronological list.
	var scanDocs []doc
	writtenAt := im.now().Unix()
	for _, id := range grouping.Order {
		h := grouping.Entities[id]
		for _, r := range h.Rows {
			scanDocs = append(scanDocs, doc{
				path: docstore.ScanPath(collection, id),
				key:  strconv.FormatInt(r.At, 10),
				body: &model.ScanDoc{
					EntityID:     id,
					Server:       h.Server,
					Timestamp:    r.At,
					RawTimestamp: r.RawTS,
					Values:       r.Row.Map(),
					WrittenAt:    writtenAt,
				},
			})
		}
	}

	w := &writer{store: im.store, pause: im.batchPause, emit: im.onProgress, log: im.log}
	if err := w.flush(ctx, PassScans, scanDocs, im.scanBatchSize); err != nil {
		return nil, err
	}
	report.Counts.WrittenScans = len(scanDocs)
	metrics.RecordDocsWritten("scan", len(scanDocs))

	cache := baseline.NewCache()
	baselines := baseline.NewManager(im.store, cache, baseline.WithLogger(im.log))

	var latestDocs, historyDocs []doc
	for _, id := range grouping.Order {
		h := grouping.Entities[id]
		last := h.Latest()

		// A retroactive import must never regress the latest record: its
		// timestamp stays >= every scan ever written for the entity.
		var stored model.LatestDoc
		found, err := im.store.Get(ctx, docstore.LatestPath(collection), id, &stored)
		if err != nil {
			return nil, fmt.Errorf("reading latest record %s: %w", id, err)
		}
		if !found || last.At >= stored.Timestamp {
			latestDocs = append(latestDocs, doc{
				path: docstore.LatestPath(collection),
				key:  id,
				body: &model.LatestDoc{
					EntityID:     id,
					Server:       h.Server,
					Timestamp:    last.At,
					RawTimestamp: last.RawTS,
					Values:       last.Row.Map(),
					WrittenAt:    writtenAt,
				},
			})
		}

		weekly, monthly := im.reduceHistory(collection, id, h, table.Headers, writtenAt)
		historyDocs = append(historyDocs, weekly...)
		historyDocs = append(historyDocs, monthly...)
		report.Counts.WrittenWeekly += len(weekly)
		report.Counts.WrittenMonthly += len(monthly)

		if kind == model.KindGuilds {
			if err := im.ensureGuildBaselines(ctx, baselines, id, h); err != nil {
				return nil, err
			}
		}
	}
	report.Counts.WrittenLatest = len(latestDocs)

	if kind == model.KindPlayers {
		rosterDocs, err := im.guildRosters(ctx, baselines, grouping, writtenAt)
		if err != nil {
			return nil, err
		}
		report.Counts.WrittenRosters = len(rosterDocs)
		latestDocs = append(latestDocs, rosterDocs...)
	}

	if err := w.flush(ctx, PassLatest, latestDocs, im.latestBatchSize); err != nil {
		return nil, err
	}
	metrics.RecordDocsWritten("latest", report.Counts.WrittenLatest)
	metrics.RecordDocsWritten("roster", report.Counts.WrittenRosters)

	if err := w.flush(ctx, PassHistory, historyDocs, im.historyBatchSize); err != nil {
		return nil, err
	}
	metrics.RecordDocsWritten("weekly", report.Counts.WrittenWeekly)
	metrics.RecordDocsWritten("monthly", report.Counts.WrittenMonthly)

	return state, nil
}

// reduceHistory partitions one entity's history into week and month buckets
// and reduces each bucket over the import-wide header union.
func (im *Importer) reduceHistory(collection, id string, h *reduce.History, headers []string, writtenAt int64) (weekly, monthly []doc) {
	weekOrder, weekBuckets := reduce.PartitionWeeks(h.Rows)
	for _, wk := range weekOrder {
		values, lastAt := reduce.Aggregate(weekBuckets[wk], headers)
		from, to := wk.Bounds()
		weekly = append(weekly, doc{
			path: docstore.WeeklyPath(collection, id),
			key:  wk.String(),
			body: &model.AggregateDoc{
				EntityID:   id,
				Server:     h.Server,
				PeriodKey:  wk.String(),
				PeriodFrom: from,
				PeriodTo:   to,
				LastScanAt: lastAt,
				Values:     values.Map(),
				WrittenAt:  writtenAt,
			},
		})
	}

	monthOrder, monthBuckets := reduce.PartitionMonths(h.Rows)
	for _, mk := range monthOrder {
		values, lastAt := reduce.Aggregate(monthBuckets[mk], headers)
		from, to := mk.Bounds()
		monthly = append(monthly, doc{
			path: docstore.MonthlyPath(collection, id),
			key:  mk.String(),
			body: &model.AggregateDoc{
				EntityID:   id,
				Server:     h.Server,
				PeriodKey:  mk.String(),
				PeriodFrom: from,
				PeriodTo:   to,
				LastScanAt: lastAt,
				Values:     values.Map(),
				WrittenAt:  writtenAt,
			},
		})
	}
	return weekly, monthly
}

// ensureGuildBaselines feeds each month bucket's earliest observation to the
// baseline manager, creating missing baselines and correcting backward when
// a retroactive import predates the stored one.
func (im *Importer) ensureGuildBaselines(ctx context.Context, baselines *baseline.Manager, id string, h *reduce.History) error {
	monthOrder, monthBuckets := reduce.PartitionMonths(h.Rows)
	for _, mk := range monthOrder {
		first := monthBuckets[mk][0]
		if _, err := baselines.Ensure(ctx, id, mk, first.Row, nil, first.At); err != nil {
			return err
		}
	}
	return nil
}

// guildRosters derives each guild's member list from the imported players'
// latest rows, patches it onto the guild latest document, and seeds the
// guild's month baseline so progress reports have a comparison point.
func (im *Importer) guildRosters(ctx context.Context, baselines *baseline.Manager, grouping *reduce.Grouping, writtenAt int64) ([]doc, error) {
	rosters := make(map[string][]model.MemberStats)
	newest := make(map[string]int64)
	var order []string

	for _, id := range grouping.Order {
		h := grouping.Entities[id]
		last := h.Latest()
		guildID, ok := columns.Resolve(last.Row, columns.FieldGuildIdentifier)
		if !ok || guildID == "" {
			continue
		}
		if _, seen := rosters[guildID]; !seen {
			order = append(order, guildID)
		}
		rosters[guildID] = append(rosters[guildID], progress.StatsFromRow(id, last.Row))
		if last.At > newest[guildID] {
			newest[guildID] = last.At
		}
	}

	var docs []doc
	for _, guildID := range order {
		members := rosters[guildID]
		ts := newest[guildID]

		patch := map[string]any{
			"entityId":  guildID,
			"members":   members,
			"writtenAt": writtenAt,
		}
		var stored model.LatestDoc
		found, err := im.store.Get(ctx, docstore.LatestPath(model.KindGuilds.Collection()), guildID, &stored)
		if err != nil {
			return nil, fmt.Errorf("reading guild latest %s: %w", guildID, err)
		}
		if !found || ts > stored.Timestamp {
			patch["timestamp"] = ts
		}
		docs = append(docs, doc{
			path: docstore.LatestPath(model.KindGuilds.Collection()),
			key:  guildID,
			body: patch,
		})

		month := temporal.MonthKeyOf(ts)
		if _, err := baselines.Ensure(ctx, guildID, month, model.NewRawRow(), members, ts); err != nil {
			return nil, err
		}
	}
	return docs, nil
}

// recordSkips folds grouping skip counts into the report, metrics, and
// warning list.
func (im *Importer) recordSkips(skips reduce.SkipCounts, report *Report) {
	report.Counts.SkippedMissingIdentifier = skips.MissingID
	report.Counts.SkippedInvalidTimestamp = skips.BadTimestamp
	report.Counts.SkippedMissingServer = skips.MissingServer

	for i := 0; i < skips.MissingID; i++ {
		metrics.RecordRowSkipped(reasonMissingIdentifier)
	}
	for i := 0; i < skips.BadTimestamp; i++ {
		metrics.RecordRowSkipped(reasonInvalidTimestamp)
	}
	for i := 0; i < skips.MissingServer; i++ {
		metrics.RecordRowSkipped(reasonMissingServer)
	}

	if skips.MissingID > 0 {
		report.Warnings = append(report.Warnings, fmt.Sprintf("skipped %d rows without a resolvable identifier", skips.MissingID))
	}
	if skips.BadTimestamp > 0 {
		report.Warnings = append(report.Warnings, fmt.Sprintf("skipped %d rows without a parseable timestamp", skips.BadTimestamp))
	}
	if skips.MissingServer > 0 {
		report.Warnings = append(report.Warnings, fmt.Sprintf("skipped %d rows without a server", skips.MissingServer))
	}
}
