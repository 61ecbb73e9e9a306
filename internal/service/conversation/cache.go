package conversation

import (
	"sync"
	"time"

	model "github.com/arunalab/aruna/backend/internal/model/conversation"
)

// sessionCache is the in-memory side of the cache-aside pattern: filled on
// miss from the store, written through on every mutation. Entries older than
// the TTL are evicted opportunistically on access; there is no background
// sweeper.
//
// Each entry carries its own mutex so that turns for the same session id are
// serialized while sessions stay fully parallel across ids.
type sessionCache struct {
	mu      sync.Mutex
	ttl     time.Duration
	entries map[string]*cacheEntry
}

type cacheEntry struct {
	mu         sync.Mutex
	sess       *model.Session
	lastAccess time.Time
}

func newSessionCache(ttl time.Duration) *sessionCache {
	return &sessionCache{
		ttl:     ttl,
		entries: make(map[string]*cacheEntry),
	}
}

// acquire returns the locked entry for a session id, creating an empty one
// on first access. The caller must release it when the turn is done.
func (c *sessionCache) acquire(id string) *cacheEntry {
	c.mu.Lock()
	c.evictStale()
	e, ok := c.entries[id]
	if !ok {
		e = &cacheEntry{}
		c.entries[id] = e
	}
	e.lastAccess = time.Now()
	c.mu.Unlock()

	e.mu.Lock()
	return e
}

func (e *cacheEntry) release() {
	e.mu.Unlock()
}

// evictStale drops entries idle past the TTL. Entries whose lock is held by
// an in-flight turn are skipped. Caller holds c.mu.
func (c *sessionCache) evictStale() {
	if c.ttl <= 0 {
		return
	}
	cutoff := time.Now().Add(-c.ttl)
	for id, e := range c.entries {
		if e.lastAccess.After(cutoff) {
			continue
		}
		if !e.mu.TryLock() {
			continue
		}
		e.mu.Unlock()
		delete(c.entries, id)
	}
}

// drop removes a session from the cache, e.g. once it is terminal.
func (c *sessionCache) drop(id string) {
	c.mu.Lock()
	delete(c.entries, id)
	c.mu.Unlock()
}
