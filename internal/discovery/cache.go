package discovery

import (
	"fmt"
	"time"

	"github.com/xmwMing/daily-stock-analysis/internal/contracts"
)

// RankingKind identifies one of the three market-activity rankings.
type RankingKind string

const (
	RankingGainers  RankingKind = "gainers"  // sorted by percentage change
	RankingAmount   RankingKind = "amount"   // sorted by traded value
	RankingTurnover RankingKind = "turnover" // sorted by turnover rate
)

// DefaultCacheTTL is the validity window of a cached ranking.
const DefaultCacheTTL = 30 * time.Minute

type cacheEntry struct {
	rows      []contracts.QuoteRow
	fetchedAt time.Time
}

// RankingCache memoizes ranking fetches within a validity window. The key
// embeds the calendar day, so an entry never silently crosses a day
// boundary. Growth is unbounded but the key space is tiny (three kinds,
// one day granularity). Not synchronized; the finder runs its fetches
// from a single goroutine.
type RankingCache struct {
	ttl     time.Duration
	entries map[string]cacheEntry
	now     func() time.Time
}

// NewRankingCache creates a cache with the given TTL. A non-positive TTL
// falls back to DefaultCacheTTL.
func NewRankingCache(ttl time.Duration) *RankingCache {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &RankingCache{
		ttl:     ttl,
		entries: make(map[string]cacheEntry),
		now:     time.Now,
	}
}

func (c *RankingCache) key(kind RankingKind, count int) string {
	return fmt.Sprintf("%s_%d_%s", kind, count, c.now().Format("2006-01-02"))
}

// Get returns the cached rows for (kind, count) on the current day, if
// present and still within the TTL.
func (c *RankingCache) Get(kind RankingKind, count int) ([]contracts.QuoteRow, bool) {
	entry, ok := c.entries[c.key(kind, count)]
	if !ok {
		return nil, false
	}
	if c.now().Sub(entry.fetchedAt) >= c.ttl {
		return nil, false
	}
	return entry.rows, true
}

// Put stores rows for (kind, count) on the current day, superseding any
// previous entry for the same key.
func (c *RankingCache) Put(kind RankingKind, count int, rows []contracts.QuoteRow) {
	c.entries[c.key(kind, count)] = cacheEntry{
		rows:      rows,
		fetchedAt: c.now(),
	}
}

// Clear drops all entries.
func (c *RankingCache) Clear() {
	c.entries = make(map[string]cacheEntry)
}

// Len returns the number of stored entries, expired ones included.
func (c *RankingCache) Len() int {
	return len(c.entries)
}
