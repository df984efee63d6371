// Package baseline maintains the per-guild, per-month "first observed"
// snapshot that progress reports compare against. A baseline is created by
// the first import touching a month and afterwards only ever moves backward
// in time: an import supplying an earlier observation replaces it, a later
// one never does.
package baseline

import (
	"context"
	"fmt"
	"time"

	"github.com/SFDataHub/scanpipe/internal/adapters/docstore"
	"github.com/SFDataHub/scanpipe/internal/domain/model"
	"github.com/SFDataHub/scanpipe/internal/domain/temporal"
	"github.com/SFDataHub/scanpipe/pkg/logger"
)

// Store is the slice of the document store the manager needs.
type Store interface {
	Set(ctx context.Context, path, key string, doc any) error
	Get(ctx context.Context, path, key string, out any) (bool, error)
}

// Manager reads and corrects month baselines through a session-scoped cache,
// so repeated Ensure calls within one import hit the store once per month.
type Manager struct {
	store Store
	cache *Cache
	log   logger.Logger
	now   func() time.Time
}

// Option applies a configuration option to the Manager.
type Option func(*Manager)

// WithLogger sets a custom logger for the manager.
func WithLogger(log logger.Logger) Option {
	return func(m *Manager) {
		if log != nil {
			m.log = log
		}
	}
}

// WithClock overrides the wall clock, for tests.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) {
		if now != nil {
			m.now = now
		}
	}
}

// NewManager creates a Manager backed by store and cache. The cache must be
// scoped to one import or reporting session; the manager never creates a
// process-wide one.
func NewManager(store Store, cache *Cache, opts ...Option) *Manager {
	m := &Manager{
		store: store,
		cache: cache,
		log:   logger.Get().Named("baseline"),
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Ensure returns the baseline for (entityID, month), creating it from row/ts
// when none exists and correcting it backward when ts predates the stored
// observation. The returned document is the one progress reports should
// compare against after this call.
func (m *Manager) Ensure(ctx context.Context, entityID string, month temporal.MonthKey, row model.RawRow, members []model.MemberStats, ts int64) (*model.BaselineDoc, error) {
	existing, err := m.Lookup(ctx, entityID, month)
	if err != nil {
		return nil, err
	}
	if existing != nil && ts >= existing.Timestamp {
		return existing, nil
	}

	doc := &model.BaselineDoc{
		EntityID:  entityID,
		Month:     month.String(),
		Timestamp: ts,
		Values:    row.Map(),
		Members:   members,
		WrittenAt: m.now().Unix(),
	}
	if existing != nil {
		// A correction moves the observation backward; parts the earlier
		// observation does not carry survive from the stored document, so the
		// written, cached, and returned copies stay identical.
		if row.Len() == 0 {
			doc.Values = existing.Values
		}
		if len(members) == 0 {
			doc.Members = existing.Members
		}
	}
	if err := m.store.Set(ctx, docstore.BaselinePath(entityID), month.String(), doc); err != nil {
		return nil, fmt.Errorf("writing baseline %s/%s: %w", entityID, month, err)
	}
	m.cache.Put(cacheKey(entityID, month), doc)

	if existing != nil {
		m.log.Info(ctx, "corrected baseline backward",
			logger.String("entity", entityID),
			logger.String("month", month.String()),
			logger.Int("from", int(existing.Timestamp)),
			logger.Int("to", int(ts)),
		)
	}
	return doc, nil
}

// Lookup returns the stored baseline for (entityID, month), or nil when none
// exists, consulting the session cache first.
func (m *Manager) Lookup(ctx context.Context, entityID string, month temporal.MonthKey) (*model.BaselineDoc, error) {
	key := cacheKey(entityID, month)
	if doc, ok := m.cache.Get(key); ok {
		return doc, nil
	}

	var doc model.BaselineDoc
	found, err := m.store.Get(ctx, docstore.BaselinePath(entityID), month.String(), &doc)
	if err != nil {
		return nil, fmt.Errorf("reading baseline %s/%s: %w", entityID, month, err)
	}
	if !found {
		return nil, nil
	}
	m.cache.Put(key, &doc)
	return &doc, nil
}

func cacheKey(entityID string, month temporal.MonthKey) string {
	return entityID + "|" + month.String()
}
