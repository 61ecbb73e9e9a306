package conversation

import (
	"testing"
	"time"

	model "github.com/arunalab/aruna/backend/internal/model/conversation"
)

func TestCacheKeepsSessionAcrossAcquires(t *testing.T) {
	c := newSessionCache(time.Minute)

	e := c.acquire("s1")
	e.sess = model.NewSession("u", "en")
	e.release()

	e = c.acquire("s1")
	defer e.release()
	if e.sess == nil {
		t.Fatal("cached session lost between acquires")
	}
}

func TestCacheEvictsStaleEntries(t *testing.T) {
	c := newSessionCache(10 * time.Millisecond)

	e := c.acquire("s1")
	e.sess = model.NewSession("u", "en")
	e.release()

	time.Sleep(20 * time.Millisecond)

	// Touching another id triggers the opportunistic sweep.
	e2 := c.acquire("s2")
	e2.release()

	e = c.acquire("s1")
	defer e.release()
	if e.sess != nil {
		t.Fatal("stale entry survived eviction")
	}
}

func TestCacheSkipsHeldEntriesOnEviction(t *testing.T) {
	c := newSessionCache(time.Nanosecond)

	held := c.acquire("busy")
	held.sess = model.NewSession("u", "en")

	time.Sleep(time.Millisecond)
	e2 := c.acquire("other")
	e2.release()

	c.mu.Lock()
	_, ok := c.entries["busy"]
	c.mu.Unlock()
	held.release()

	if !ok {
		t.Fatal("held entry was evicted mid-turn")
	}
}

func TestCacheDrop(t *testing.T) {
	c := newSessionCache(time.Minute)

	e := c.acquire("s1")
	e.sess = model.NewSession("u", "en")
	e.release()

	c.drop("s1")

	e = c.acquire("s1")
	defer e.release()
	if e.sess != nil {
		t.Fatal("dropped entry still cached")
	}
}
