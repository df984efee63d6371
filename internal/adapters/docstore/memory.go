package docstore

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
)

// MemoryStore implements Store with an in-process map. It backs tests and
// dry runs; documents are held as JSON so merge semantics match the sqlite
// implementation exactly.
type MemoryStore struct {
	mu     sync.RWMutex
	docs   map[string]json.RawMessage
	closed bool
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{docs: make(map[string]json.RawMessage)}
}

func memKey(path, key string) string {
	return path + "\x00" + key
}

// Set merge-writes doc at (path, key).
func (s *MemoryStore) Set(ctx context.Context, path, key string, doc any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	return s.setLocked(path, key, doc)
}

func (s *MemoryStore) setLocked(path, key string, doc any) error {
	merged, err := mergeJSON(s.docs[memKey(path, key)], doc)
	if err != nil {
		return fmt.Errorf("merging document %s/%s: %w", path, key, err)
	}
	s.docs[memKey(path, key)] = merged
	return nil
}

// Get reads the document at (path, key) into out.
func (s *MemoryStore) Get(ctx context.Context, path, key string, out any) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return false, ErrClosed
	}
	raw, ok := s.docs[memKey(path, key)]
	if !ok {
		return false, nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return false, fmt.Errorf("decoding document %s/%s: %w", path, key, err)
	}
	return true, nil
}

// Len returns the number of stored documents.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.docs)
}

// Batch returns an atomic batch applied under one lock on Commit.
func (s *MemoryStore) Batch() Batch {
	return &memoryBatch{store: s}
}

// Close marks the store closed; further operations fail with ErrClosed.
func (s *MemoryStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

type writeOp struct {
	path string
	key  string
	doc  any
}

type memoryBatch struct {
	store *MemoryStore
	ops   []writeOp
}

func (b *memoryBatch) Set(path, key string, doc any) {
	b.ops = append(b.ops, writeOp{path: path, key: key, doc: doc})
}

func (b *memoryBatch) Len() int {
	return len(b.ops)
}

func (b *memoryBatch) Commit(ctx context.Context) error {
	b.store.mu.Lock()
	defer b.store.mu.Unlock()
	if b.store.closed {
		return ErrClosed
	}
	for _, op := range b.ops {
		if err := b.store.setLocked(op.path, op.key, op.doc); err != nil {
			return err
		}
	}
	return nil
}

// mergeJSON overlays doc's top-level fields onto the stored JSON object.
func mergeJSON(stored json.RawMessage, doc any) (json.RawMessage, error) {
	incoming, err := json.Marshal(doc)
	if err != nil {
		return nil, err
	}
	if len(stored) == 0 {
		return incoming, nil
	}

	var base map[string]json.RawMessage
	if err := json.Unmarshal(stored, &base); err != nil {
		return nil, err
	}
	var overlay map[string]json.RawMessage
	if err := json.Unmarshal(incoming, &overlay); err != nil {
		return nil, err
	}
	for k, v := range overlay {
		base[k] = v
	}
	return json.Marshal(base)
}
