package rset

import (
	"crypto/sha256"
	"fmt"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/cyp0633/librecur/recur"
)

// cacheEntry represents a memoized query result
type cacheEntry struct {
	result     []time.Time
	expiresAt  time.Time // zero = never
	accessedAt time.Time
}

// queryCache memoizes query results of one set. It never invalidates on
// mutation of the set; entries only leave through TTL or MaxEntries.
type queryCache struct {
	entries    map[string]*cacheEntry
	mutex      sync.Mutex
	ttl        time.Duration
	maxEntries int
	now        func() time.Time
	hits       int
	misses     int
}

// CacheStats provides information about cache performance
type CacheStats struct {
	TotalEntries   int
	ExpiredEntries int
	ActiveEntries  int
	Hits           int
	Misses         int
}

func newQueryCache(config CacheConfig) *queryCache {
	return &queryCache{
		entries:    make(map[string]*cacheEntry),
		ttl:        config.TTL,
		maxEntries: config.MaxEntries,
		now:        time.Now,
	}
}

// generateCacheKey creates a unique key for the exact query argument tuple
func generateCacheKey(q recur.Query) string {
	hasher := sha256.New()

	hasher.Write([]byte(q.Kind.String()))
	hasher.Write([]byte(q.After.Format(time.RFC3339Nano)))
	hasher.Write([]byte(q.Before.Format(time.RFC3339Nano)))
	hasher.Write([]byte(strconv.FormatBool(q.Inc)))
	hasher.Write([]byte(strconv.Itoa(q.Limit)))

	return fmt.Sprintf("%x", hasher.Sum(nil))
}

func (c *queryCache) expired(entry *cacheEntry, now time.Time) bool {
	return !entry.expiresAt.IsZero() && now.After(entry.expiresAt)
}

// get returns a copy of the memoized result for q
func (c *queryCache) get(q recur.Query) ([]time.Time, bool) {
	key := generateCacheKey(q)

	c.mutex.Lock()
	defer c.mutex.Unlock()

	entry, exists := c.entries[key]
	now := c.now()
	if !exists || c.expired(entry, now) {
		if exists {
			delete(c.entries, key)
		}
		c.misses++
		return nil, false
	}

	c.hits++
	entry.accessedAt = now
	return cloneTimes(entry.result), true
}

// set stores a copy of result for q
func (c *queryCache) set(q recur.Query, result []time.Time) {
	key := generateCacheKey(q)
	now := c.now()

	entry := &cacheEntry{
		result:     cloneTimes(result),
		accessedAt: now,
	}
	if c.ttl > 0 {
		entry.expiresAt = now.Add(c.ttl)
	}

	c.mutex.Lock()
	defer c.mutex.Unlock()

	c.entries[key] = entry

	if c.maxEntries > 0 && len(c.entries) > c.maxEntries {
		c.cleanup(now)
	}
}

// cleanup removes expired entries and then least recently accessed ones
// until the cache is within its limit
func (c *queryCache) cleanup(now time.Time) {
	for key, entry := range c.entries {
		if c.expired(entry, now) {
			delete(c.entries, key)
		}
	}

	if len(c.entries) <= c.maxEntries {
		return
	}

	keys := make([]string, 0, len(c.entries))
	for key := range c.entries {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool {
		return c.entries[keys[i]].accessedAt.Before(c.entries[keys[j]].accessedAt)
	})

	for _, key := range keys[:len(c.entries)-c.maxEntries] {
		delete(c.entries, key)
	}
}

func (c *queryCache) stats() CacheStats {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	now := c.now()
	expiredCount := 0
	for _, entry := range c.entries {
		if c.expired(entry, now) {
			expiredCount++
		}
	}

	return CacheStats{
		TotalEntries:   len(c.entries),
		ExpiredEntries: expiredCount,
		ActiveEntries:  len(c.entries) - expiredCount,
		Hits:           c.hits,
		Misses:         c.misses,
	}
}
