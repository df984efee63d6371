package docstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite" // registers the "sqlite" database/sql driver
)

const schema = `
CREATE TABLE IF NOT EXISTS documents (
	path       TEXT NOT NULL,
	key        TEXT NOT NULL,
	body       TEXT NOT NULL,
	updated_at INTEGER NOT NULL,
	PRIMARY KEY (path, key)
);`

// SQLiteStore implements Store on a local sqlite database with one
// documents table keyed by (path, key). Merge-writes read the stored body,
// overlay the incoming top-level fields, and upsert the result inside the
// surrounding transaction, so batches stay atomic.
type SQLiteStore struct {
	db *sql.DB
}

// OpenSQLite opens (creating if needed) the database at dsn, e.g. a file
// path or ":memory:".
func OpenSQLite(ctx context.Context, dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite database: %w", err)
	}
	// sqlite allows a single writer; serialize access through one conn.
	db.SetMaxOpenConns(1)
	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating documents table: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

// Set merge-writes doc at (path, key) in its own transaction.
func (s *SQLiteStore) Set(ctx context.Context, path, key string, doc any) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning write: %w", err)
	}
	if err := setInTx(ctx, tx, path, key, doc); err != nil {
		tx.Rollback()
		return err
	}
	return tx.Commit()
}

// Get reads the document at (path, key) into out.
func (s *SQLiteStore) Get(ctx context.Context, path, key string, out any) (bool, error) {
	var body string
	err := s.db.QueryRowContext(ctx,
		`SELECT body FROM documents WHERE path = ? AND key = ?`, path, key,
	).Scan(&body)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("reading document %s/%s: %w", path, key, err)
	}
	if err := json.Unmarshal([]byte(body), out); err != nil {
		return false, fmt.Errorf("decoding document %s/%s: %w", path, key, err)
	}
	return true, nil
}

// Batch returns a batch committed as one sqlite transaction.
func (s *SQLiteStore) Batch() Batch {
	return &sqliteBatch{store: s}
}

// Close closes the underlying database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func setInTx(ctx context.Context, tx *sql.Tx, path, key string, doc any) error {
	var stored sql.NullString
	err := tx.QueryRowContext(ctx,
		`SELECT body FROM documents WHERE path = ? AND key = ?`, path, key,
	).Scan(&stored)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("reading document %s/%s: %w", path, key, err)
	}

	var base json.RawMessage
	if stored.Valid {
		base = json.RawMessage(stored.String)
	}
	merged, err := mergeJSON(base, doc)
	if err != nil {
		return fmt.Errorf("merging document %s/%s: %w", path, key, err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO documents (path, key, body, updated_at) VALUES (?, ?, ?, ?)
		ON CONFLICT (path, key) DO UPDATE SET body = excluded.body, updated_at = excluded.updated_at`,
		path, key, string(merged), time.Now().Unix())
	if err != nil {
		return fmt.Errorf("writing document %s/%s: %w", path, key, err)
	}
	return nil
}

type sqliteBatch struct {
	store *SQLiteStore
	ops   []writeOp
}

func (b *sqliteBatch) Set(path, key string, doc any) {
	b.ops = append(b.ops, writeOp{path: path, key: key, doc: doc})
}

func (b *sqliteBatch) Len() int {
	return len(b.ops)
}

func (b *sqliteBatch) Commit(ctx context.Context) error {
	tx, err := b.store.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning batch: %w", err)
	}
	for _, op := range b.ops {
		if err := setInTx(ctx, tx, op.path, op.key, op.doc); err != nil {
			tx.Rollback()
			return err
		}
	}
	return tx.Commit()
}
