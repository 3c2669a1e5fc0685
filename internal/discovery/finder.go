package discovery

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/xmwMing/daily-stock-analysis/internal/contracts"
	"github.com/xmwMing/daily-stock-analysis/pkg/logger"
)

// Config defines candidate discovery parameters.
type Config struct {
	FetchCount   int     // rows taken from each ranking
	MinPrice     float64 // inclusive lower price bound
	MaxPrice     float64 // inclusive upper price bound
	MinMarketCap float64
	MinListDays  int
}

// DefaultConfig returns the default discovery configuration.
func DefaultConfig() Config {
	return Config{
		FetchCount:   30,
		MinPrice:     3.0,
		MaxPrice:     300.0,
		MinMarketCap: 5e9,
		MinListDays:  90,
	}
}

// Stats records per-stage discovery counts for reporting.
type Stats struct {
	GainersCount  int // rows fetched from the gainers ranking
	AmountCount   int // rows fetched from the traded-value ranking
	TurnoverCount int // rows fetched from the turnover ranking

	TotalBeforeFilter int
	TotalAfterFilter  int

	// Per-rule rejection counts, in filter order.
	RejectedST          int
	RejectedPriceLow    int
	RejectedPriceHigh   int
	RejectedSmallCap    int
	RejectedNewlyListed int
}

// stMarkers flag suspended / special-treatment issuers by name.
var stMarkers = []string{"ST", "*ST", "S*ST", "SST"}

// Finder discovers hot-stock candidates from the three market-activity
// rankings and applies the eligibility filter.
type Finder struct {
	source contracts.QuoteSource
	cache  *RankingCache
	config Config
	logger *logger.Logger
	now    func() time.Time
}

// NewFinder creates a new Finder.
func NewFinder(source contracts.QuoteSource, cache *RankingCache, config Config, log *logger.Logger) *Finder {
	return &Finder{
		source: source,
		cache:  cache,
		config: config,
		logger: log.WithField("module", "discovery"),
		now:    time.Now,
	}
}

// Discover fetches the three rankings, merges them with first-seen-wins
// deduplication and applies the eligibility filter. It never fails: any
// unexpected error degrades to an empty result so downstream reporting
// always runs.
func (f *Finder) Discover(ctx context.Context) (stocks []contracts.StockSnapshot, stats Stats) {
	defer func() {
		if r := recover(); r != nil {
			f.logger.WithField("panic", r).Error("Discovery failed, returning empty result")
			stocks = nil
		}
	}()

	startTime := f.now()

	gainers := f.fetchRanking(ctx, RankingGainers)
	amount := f.fetchRanking(ctx, RankingAmount)
	turnover := f.fetchRanking(ctx, RankingTurnover)

	stats.GainersCount = len(gainers)
	stats.AmountCount = len(amount)
	stats.TurnoverCount = len(turnover)

	// Merge in fixed priority order; first occurrence of a code wins.
	merged := make([]contracts.StockSnapshot, 0, len(gainers)+len(amount)+len(turnover))
	seen := make(map[string]bool)
	for _, rows := range [][]contracts.QuoteRow{gainers, amount, turnover} {
		for _, row := range rows {
			if row.Code == "" || seen[row.Code] {
				continue
			}
			snapshot, ok := f.rowToSnapshot(row)
			if !ok {
				continue
			}
			merged = append(merged, snapshot)
			seen[row.Code] = true
		}
	}
	stats.TotalBeforeFilter = len(merged)

	stocks = f.applyFilters(merged, &stats)
	stats.TotalAfterFilter = len(stocks)

	f.logger.WithFields(map[string]interface{}{
		"gainers":       stats.GainersCount,
		"amount":        stats.AmountCount,
		"turnover":      stats.TurnoverCount,
		"before_filter": stats.TotalBeforeFilter,
		"after_filter":  stats.TotalAfterFilter,
		"duration":      f.now().Sub(startTime),
	}).Info("Candidate discovery completed")

	return stocks, stats
}

// fetchRanking returns the top FetchCount rows of one ranking, using the
// cache when valid. A failed or empty fetch degrades to zero contribution
// from that ranking.
func (f *Finder) fetchRanking(ctx context.Context, kind RankingKind) []contracts.QuoteRow {
	if rows, ok := f.cache.Get(kind, f.config.FetchCount); ok {
		f.logger.WithField("ranking", kind).Debug("Ranking cache hit")
		return rows
	}

	quotes, err := f.source.FetchAllQuotes(ctx)
	if err != nil {
		f.logger.WithError(err).WithField("ranking", kind).Warn("Ranking fetch failed")
		return nil
	}
	if len(quotes) == 0 {
		f.logger.WithField("ranking", kind).Warn("Ranking fetch returned no rows")
		return nil
	}

	rows := make([]contracts.QuoteRow, len(quotes))
	copy(rows, quotes)

	switch kind {
	case RankingGainers:
		sort.SliceStable(rows, func(i, j int) bool { return rows[i].ChangePct > rows[j].ChangePct })
	case RankingAmount:
		sort.SliceStable(rows, func(i, j int) bool { return rows[i].Amount > rows[j].Amount })
	case RankingTurnover:
		sort.SliceStable(rows, func(i, j int) bool { return rows[i].TurnoverRate > rows[j].TurnoverRate })
	}

	if len(rows) > f.config.FetchCount {
		rows = rows[:f.config.FetchCount]
	}

	f.cache.Put(kind, f.config.FetchCount, rows)

	f.logger.WithFields(map[string]interface{}{
		"ranking": kind,
		"count":   len(rows),
	}).Debug("Ranking fetched")

	return rows
}

// rowToSnapshot converts a raw quote row into a StockSnapshot. A row
// missing its code or name is discarded; an unparsable listing date only
// degrades the derived list-days field to zero.
func (f *Finder) rowToSnapshot(row contracts.QuoteRow) (contracts.StockSnapshot, bool) {
	snapshot := contracts.StockSnapshot{
		Code:         row.Code,
		Name:         row.Name,
		Price:        row.Price,
		ChangePct:    row.ChangePct,
		Volume:       row.Volume,
		Amount:       row.Amount,
		TurnoverRate: row.TurnoverRate,
		MarketCap:    row.MarketCap,
		ListDays:     f.listDays(row.ListDate),
		PERatio:      row.PERatio,
	}

	if err := snapshot.Validate(); err != nil {
		f.logger.WithError(err).WithField("code", row.Code).Debug("Dropping unusable quote row")
		return contracts.StockSnapshot{}, false
	}

	return snapshot, true
}

// listDays derives days since listing from a raw listing date. Unknown or
// unparsable dates degrade to zero.
func (f *Finder) listDays(listDate string) int {
	if listDate == "" {
		return 0
	}

	var layout string
	switch len(listDate) {
	case 8:
		layout = "20060102"
	case 10:
		layout = "2006-01-02"
	default:
		return 0
	}

	listed, err := time.Parse(layout, listDate)
	if err != nil {
		return 0
	}

	days := int(f.now().Sub(listed).Hours() / 24)
	if days < 0 {
		return 0
	}
	return days
}

// applyFilters applies the five eligibility rules in order, short-circuiting
// per candidate. The first failing rule removes the candidate and is
// counted in stats.
func (f *Finder) applyFilters(stocks []contracts.StockSnapshot, stats *Stats) []contracts.StockSnapshot {
	filtered := make([]contracts.StockSnapshot, 0, len(stocks))

	for _, stock := range stocks {
		switch {
		case isSTName(stock.Name):
			stats.RejectedST++
		case stock.Price < f.config.MinPrice:
			stats.RejectedPriceLow++
		case stock.Price > f.config.MaxPrice:
			stats.RejectedPriceHigh++
		case stock.MarketCap < f.config.MinMarketCap:
			stats.RejectedSmallCap++
		case stock.ListDays > 0 && stock.ListDays < f.config.MinListDays:
			// ListDays == 0 means unknown, not newly listed.
			stats.RejectedNewlyListed++
		default:
			filtered = append(filtered, stock)
		}
	}

	f.logger.WithFields(map[string]interface{}{
		"input":        len(stocks),
		"passed":       len(filtered),
		"st":           stats.RejectedST,
		"price_low":    stats.RejectedPriceLow,
		"price_high":   stats.RejectedPriceHigh,
		"small_cap":    stats.RejectedSmallCap,
		"newly_listed": stats.RejectedNewlyListed,
	}).Info("Eligibility filter applied")

	return filtered
}

// isSTName reports whether a display name carries an ST marker.
func isSTName(name string) bool {
	if name == "" {
		return false
	}
	upper := strings.ToUpper(name)
	for _, marker := range stMarkers {
		if strings.Contains(upper, marker) {
			return true
		}
	}
	return false
}
