package discovery

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xmwMing/daily-stock-analysis/internal/contracts"
)

func testRows(codes ...string) []contracts.QuoteRow {
	rows := make([]contracts.QuoteRow, len(codes))
	for i, code := range codes {
		rows[i] = contracts.QuoteRow{Code: code, Name: "Stock " + code}
	}
	return rows
}

func TestRankingCache_GetPut(t *testing.T) {
	cache := NewRankingCache(30 * time.Minute)

	_, ok := cache.Get(RankingGainers, 30)
	assert.False(t, ok, "empty cache should miss")

	cache.Put(RankingGainers, 30, testRows("600519", "000001"))

	rows, ok := cache.Get(RankingGainers, 30)
	require.True(t, ok)
	require.Len(t, rows, 2)
	assert.Equal(t, "600519", rows[0].Code)

	// A different kind or count is a different key.
	_, ok = cache.Get(RankingAmount, 30)
	assert.False(t, ok)
	_, ok = cache.Get(RankingGainers, 50)
	assert.False(t, ok)
}

func TestRankingCache_TTLExpiry(t *testing.T) {
	base := time.Date(2026, 8, 24, 10, 0, 0, 0, time.UTC)
	current := base

	cache := NewRankingCache(30 * time.Minute)
	cache.now = func() time.Time { return current }

	cache.Put(RankingGainers, 30, testRows("600519"))

	current = base.Add(29 * time.Minute)
	_, ok := cache.Get(RankingGainers, 30)
	assert.True(t, ok, "entry within TTL should hit")

	current = base.Add(30 * time.Minute)
	_, ok = cache.Get(RankingGainers, 30)
	assert.False(t, ok, "entry at TTL boundary should miss")
}

func TestRankingCache_DayBoundary(t *testing.T) {
	// Five minutes before midnight; the TTL still has room but the key
	// changes with the calendar day.
	base := time.Date(2026, 8, 24, 23, 55, 0, 0, time.UTC)
	current := base

	cache := NewRankingCache(30 * time.Minute)
	cache.now = func() time.Time { return current }

	cache.Put(RankingGainers, 30, testRows("600519"))

	current = base.Add(10 * time.Minute)
	_, ok := cache.Get(RankingGainers, 30)
	assert.False(t, ok, "entry must not cross the day boundary")
}

func TestRankingCache_PutSupersedes(t *testing.T) {
	cache := NewRankingCache(30 * time.Minute)

	cache.Put(RankingTurnover, 30, testRows("600519"))
	cache.Put(RankingTurnover, 30, testRows("000001", "000002"))

	rows, ok := cache.Get(RankingTurnover, 30)
	require.True(t, ok)
	require.Len(t, rows, 2)
	assert.Equal(t, "000001", rows[0].Code)
	assert.Equal(t, 1, cache.Len())
}

func TestRankingCache_Clear(t *testing.T) {
	cache := NewRankingCache(30 * time.Minute)
	cache.Put(RankingGainers, 30, testRows("600519"))
	cache.Put(RankingAmount, 30, testRows("000001"))
	require.Equal(t, 2, cache.Len())

	cache.Clear()

	assert.Equal(t, 0, cache.Len())
	_, ok := cache.Get(RankingGainers, 30)
	assert.False(t, ok)
}

func TestNewRankingCache_FallbackTTL(t *testing.T) {
	cache := NewRankingCache(0)
	assert.Equal(t, DefaultCacheTTL, cache.ttl)
}
