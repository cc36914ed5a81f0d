// Package cache provides a bounded LRU cache for availability decisions,
// keyed by a hash of the subject and moment that produced them.
package cache

import (
	"strconv"
	"strings"
	"time"

	"github.com/cespare/xxhash/v2"
)

// lruEntry is a doubly-linked list node for the LRU cache.
type lruEntry struct {
	key      uint64
	decision bool
	prev     *lruEntry
	next     *lruEntry
}

// DecisionCache provides bounded LRU caching of availability decisions.
// It does no locking of its own and is not safe for concurrent use; the
// engine does not add any locking around it either, so callers that share
// one across goroutines must serialize access themselves.
type DecisionCache struct {
	entries map[uint64]*lruEntry
	head    *lruEntry
	tail    *lruEntry
	maxSize int
}

// New creates a DecisionCache holding at most maxSize entries. maxSize <= 0
// disables caching: Get always misses and Put is a no-op.
func New(maxSize int) *DecisionCache {
	return &DecisionCache{
		entries: make(map[uint64]*lruEntry, maxOf(maxSize, 0)),
		maxSize: maxSize,
	}
}

func maxOf(a, b int) int {
	if a > b {
		return a
	}
	return b
}

// Get retrieves a cached decision. Returns (decision, true) on hit, and
// promotes the entry to most-recently-used.
func (c *DecisionCache) Get(key uint64) (bool, bool) {
	if c.maxSize <= 0 {
		return false, false
	}
	if e, ok := c.entries[key]; ok {
		c.moveToHead(e)
		return e.decision, true
	}
	return false, false
}

// Put stores a decision, evicting the least recently used entry if at
// capacity.
func (c *DecisionCache) Put(key uint64, decision bool) {
	if c.maxSize <= 0 {
		return
	}
	if e, ok := c.entries[key]; ok {
		e.decision = decision
		c.moveToHead(e)
		return
	}

	if len(c.entries) >= c.maxSize {
		c.evictTail()
	}

	e := &lruEntry{key: key, decision: decision}
	c.entries[key] = e
	c.pushHead(e)
}

// Clear empties the cache. Callers should clear whenever a subject's rule
// set changes, since a stale cache entry would silently outlive the rule
// that produced it.
func (c *DecisionCache) Clear() {
	c.entries = make(map[uint64]*lruEntry, maxOf(c.maxSize, 0))
	c.head = nil
	c.tail = nil
}

// Size returns the current number of cached entries.
func (c *DecisionCache) Size() int { return len(c.entries) }

func (c *DecisionCache) moveToHead(e *lruEntry) {
	if c.head == e {
		return
	}
	c.unlink(e)
	c.pushHead(e)
}

func (c *DecisionCache) pushHead(e *lruEntry) {
	e.prev = nil
	e.next = c.head
	if c.head != nil {
		c.head.prev = e
	}
	c.head = e
	if c.tail == nil {
		c.tail = e
	}
}

func (c *DecisionCache) unlink(e *lruEntry) {
	if e.prev != nil {
		e.prev.next = e.next
	} else {
		c.head = e.next
	}
	if e.next != nil {
		e.next.prev = e.prev
	} else {
		c.tail = e.prev
	}
	e.prev = nil
	e.next = nil
}

func (c *DecisionCache) evictTail() {
	if c.tail == nil {
		return
	}
	delete(c.entries, c.tail.key)
	c.unlink(c.tail)
}

// Key hashes a subject identity and evaluation moment into a cache key.
// The moment is truncated to the second: sub-second precision never changes
// which rules apply, so including it would defeat caching entirely.
func Key(subjectID string, class string, ruleVersion int, moment time.Time) uint64 {
	h := xxhash.New()
	_, _ = h.WriteString(class)
	_, _ = h.Write([]byte{0})
	_, _ = h.WriteString(subjectID)
	_, _ = h.Write([]byte{0})
	_, _ = h.WriteString(strconv.Itoa(ruleVersion))
	_, _ = h.Write([]byte{0})
	_, _ = h.WriteString(moment.UTC().Truncate(time.Second).Format(time.RFC3339))
	return h.Sum64()
}

// KeyWithZone is Key plus the zone name the subject resolved to, for hosts
// that want zone changes to invalidate cached decisions without bumping
// ruleVersion.
func KeyWithZone(subjectID, class string, ruleVersion int, moment time.Time, zone string) uint64 {
	parts := []string{class, subjectID, strconv.Itoa(ruleVersion), moment.UTC().Truncate(time.Second).Format(time.RFC3339), zone}
	return xxhash.Sum64String(strings.Join(parts, "\x00"))
}
