package rset

import (
	"time"
)

// CacheConfig holds configuration for the per-set query cache.
type CacheConfig struct {
	TTL        time.Duration // How long entries stay valid, 0 = forever
	MaxEntries int           // Maximum number of entries before eviction, 0 = unbounded
}

// Config holds configuration options for a recurrence set
type Config struct {
	// Memoize Between results for trivial sets
	CacheEnabled bool
	Cache        CacheConfig

	// Maximum candidate occurrences a single query may evaluate
	MaxIterations int
}

// DefaultMaxIterations bounds queries over rules with neither COUNT nor UNTIL.
const DefaultMaxIterations = 1_000_000

// DefaultConfig memoizes every distinct Between query for the lifetime of
// the set, so each argument tuple is computed at most once.
var DefaultConfig = Config{
	CacheEnabled:  true,
	Cache:         CacheConfig{},
	MaxIterations: DefaultMaxIterations,
}

// HighPerformanceConfig fails runaway queries early
var HighPerformanceConfig = Config{
	CacheEnabled:  true,
	Cache:         CacheConfig{},
	MaxIterations: 50_000,
}

// LowMemoryConfig is optimized for long-lived sets queried with many
// different windows
var LowMemoryConfig = Config{
	CacheEnabled: true,
	Cache: CacheConfig{
		TTL:        5 * time.Minute,
		MaxEntries: 100,
	},
	MaxIterations: DefaultMaxIterations,
}

// DisabledCacheConfig turns off caching entirely
var DisabledCacheConfig = Config{
	CacheEnabled:  false,
	Cache:         CacheConfig{}, // Not used
	MaxIterations: DefaultMaxIterations,
}
