package progress

import (
	"context"
	"fmt"

	"github.com/SFDataHub/scanpipe/internal/adapters/docstore"
	"github.com/SFDataHub/scanpipe/internal/domain/baseline"
	"github.com/SFDataHub/scanpipe/internal/domain/model"
	"github.com/SFDataHub/scanpipe/internal/domain/temporal"
	"github.com/SFDataHub/scanpipe/pkg/logger"
	"github.com/SFDataHub/scanpipe/pkg/metrics"
)

// Store is the slice of the document store the reporter needs.
type Store interface {
	Set(ctx context.Context, path, key string, doc any) error
	Get(ctx context.Context, path, key string, out any) (bool, error)
}

// Reporter materializes monthly progress documents on demand from a guild's
// baseline and latest records. Documents are recomputed wholesale on every
// request and merge-written back, so the stored copy is only ever a cache of
// the newest computation.
type Reporter struct {
	store     Store
	baselines *baseline.Manager
	log       logger.Logger
}

// Option applies a configuration option to the Reporter.
type Option func(*Reporter)

// WithLogger sets a custom logger for the reporter.
func WithLogger(log logger.Logger) Option {
	return func(r *Reporter) {
		if log != nil {
			r.log = log
		}
	}
}

// NewReporter creates a Reporter reading through store and baselines.
func NewReporter(store Store, baselines *baseline.Manager, opts ...Option) *Reporter {
	r := &Reporter{
		store:     store,
		baselines: baselines,
		log:       logger.Get().Named("progress"),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Monthly computes, persists, and returns the progress document for one
// guild and month. A missing baseline or latest record yields an unavailable
// document rather than an error; availability is status, not failure.
func (r *Reporter) Monthly(ctx context.Context, guildID string, month temporal.MonthKey) (*model.ProgressDoc, error) {
	base, err := r.baselines.Lookup(ctx, guildID, month)
	if err != nil {
		return nil, err
	}

	var latest model.LatestDoc
	found, err := r.store.Get(ctx, docstore.LatestPath(model.KindGuilds.Collection()), guildID, &latest)
	if err != nil {
		return nil, fmt.Errorf("reading latest record for %s: %w", guildID, err)
	}

	var doc *model.ProgressDoc
	if !found {
		doc = Build(nil, nil, 0, month)
	} else {
		doc = Build(base, latest.Members, latest.Timestamp, month)
	}
	doc.EntityID = guildID

	if err := r.store.Set(ctx, docstore.ProgressPath(guildID), month.String(), doc); err != nil {
		return nil, fmt.Errorf("writing progress document %s/%s: %w", guildID, month, err)
	}
	metrics.RecordProgressReport(doc.Status.Available)

	r.log.Debug(ctx, "computed monthly progress",
		logger.String("guild", guildID),
		logger.String("month", month.String()),
		logger.Any("available", doc.Status.Available),
	)
	return doc, nil
}
