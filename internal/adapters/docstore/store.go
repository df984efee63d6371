// Package docstore defines the document store port the pipeline writes
// through, plus the in-memory and sqlite-backed implementations. The port is
// deliberately narrow: merge point-writes, point reads, and an atomic batch
// abstraction. Everything richer (queries, listeners) belongs to the
// dashboard, not the importer.
package docstore

import "context"

// Store provides merge-write and point-read access to documents addressed by
// (collection path, key).
type Store interface {
	// Set merge-writes doc at (path, key): top-level fields of doc overwrite
	// the stored document's fields, fields absent from doc survive.
	Set(ctx context.Context, path, key string, doc any) error

	// Get reads the document at (path, key) into out.
	// Returns false when no document exists.
	Get(ctx context.Context, path, key string, out any) (bool, error)

	// Batch returns a new atomic batch of merge-writes.
	Batch() Batch

	// Close releases underlying resources.
	Close() error
}

// Batch groups merge-writes into one atomic unit. Set never fails; errors
// surface on Commit.
type Batch interface {
	Set(path, key string, doc any)
	Len() int
	Commit(ctx context.Context) error
}

// ScanPath returns the scan subcollection path for an entity.
func ScanPath(collection, entityID string) string {
	return collection + "/" + entityID + "/scans"
}

// LatestPath returns the collection path holding per-entity latest documents.
func LatestPath(collection string) string {
	return collection + "/latest"
}

// WeeklyPath returns the weekly aggregate subcollection path for an entity.
func WeeklyPath(collection, entityID string) string {
	return collection + "/" + entityID + "/history/weekly"
}

// MonthlyPath returns the monthly aggregate subcollection path for an entity.
func MonthlyPath(collection, entityID string) string {
	return collection + "/" + entityID + "/history/monthly"
}

// BaselinePath returns the month-baseline subcollection path for a guild.
func BaselinePath(entityID string) string {
	return "guilds/" + entityID + "/baselines"
}

// ProgressPath returns the monthly-progress subcollection path for a guild.
func ProgressPath(entityID string) string {
	return "guilds/" + entityID + "/progress"
}
