package compliance

import (
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/mkarlsen/schengen-planner/internal/domain"
	"github.com/mkarlsen/schengen-planner/internal/timewindow"
)

// DefaultCacheCapacity bounds the memoization cache when no capacity is
// configured.
const DefaultCacheCapacity = 50

// Cache is a bounded memoization cache for compliance snapshots. It is owned
// by whoever constructs it (the service layer, in this repository) and passed
// in explicitly — there is no package-level instance.
//
// The cache never detects staleness on its own: callers must Invalidate after
// every trip mutation. Entries are evicted oldest-first once the capacity is
// reached. Concurrent use is safe; writes for the same key are last-writer-
// wins, which is harmless because identical keys map to identical snapshots.
type Cache struct {
	mu       sync.Mutex
	capacity int
	entries  map[string]domain.ComplianceInfo
	order    []string // insertion order, oldest first
}

// NewCache constructs a Cache holding at most capacity entries.
// Non-positive capacities fall back to DefaultCacheCapacity.
func NewCache(capacity int) *Cache {
	if capacity <= 0 {
		capacity = DefaultCacheCapacity
	}
	return &Cache{
		capacity: capacity,
		entries:  make(map[string]domain.ComplianceInfo),
	}
}

// Get returns the cached snapshot for key, if present.
func (c *Cache) Get(key string) (domain.ComplianceInfo, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	info, ok := c.entries[key]
	return info, ok
}

// Put stores a snapshot under key, evicting the oldest entry when full.
func (c *Cache) Put(key string, info domain.ComplianceInfo) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, exists := c.entries[key]; exists {
		c.entries[key] = info
		return
	}
	if len(c.order) >= c.capacity {
		oldest := c.order[0]
		c.order = c.order[1:]
		delete(c.entries, oldest)
	}
	c.entries[key] = info
	c.order = append(c.order, key)
}

// Invalidate drops all entries. Call after any trip create/update/delete.
func (c *Cache) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]domain.ComplianceInfo)
	c.order = nil
}

// Len returns the number of cached entries.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Key builds a deterministic cache key from the trip set, the rule, and the
// reference date. Per-trip fragments are sorted so value-equal trip sets
// produce the same key regardless of slice order.
func Key(trips []domain.Trip, referenceDate time.Time, rule Rule) string {
	frags := make([]string, 0, len(trips))
	for _, t := range trips {
		frags = append(frags, t.ID.String()+":"+dayString(t.StartDate)+":"+dayString(t.EndDate))
	}
	sort.Strings(frags)

	var b strings.Builder
	b.WriteString(dayString(referenceDate))
	b.WriteByte('|')
	b.WriteString(ruleString(rule))
	for _, f := range frags {
		b.WriteByte('|')
		b.WriteString(f)
	}
	return b.String()
}

func dayString(t time.Time) string {
	return timewindow.Normalize(t).Format("2006-01-02")
}

func ruleString(r Rule) string {
	return strconv.Itoa(r.Limit) + "/" + strconv.Itoa(r.Window)
}
