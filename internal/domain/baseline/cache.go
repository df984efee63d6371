package baseline

import (
	"sync"

	"github.com/SFDataHub/scanpipe/internal/domain/model"
)

// Cache is an explicit month-document cache keyed by entity and month. The
// original dashboard kept this as a process-wide mutable map; here one Cache
// is created per import or reporting session and passed in, so sessions never
// see each other's state.
type Cache struct {
	mu   sync.RWMutex
	docs map[string]*model.BaselineDoc
}

// NewCache creates an empty session cache.
func NewCache() *Cache {
	return &Cache{docs: make(map[string]*model.BaselineDoc)}
}

// Get returns the cached document for key, if any.
func (c *Cache) Get(key string) (*model.BaselineDoc, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	doc, ok := c.docs[key]
	return doc, ok
}

// Put stores doc under key, replacing any previous entry.
func (c *Cache) Put(key string, doc *model.BaselineDoc) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.docs[key] = doc
}

// Len returns the number of cached documents.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.docs)
}
