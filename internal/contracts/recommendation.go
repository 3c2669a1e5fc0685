package contracts

import "fmt"

// Category is the classification bucket of a recommended stock.
type Category string

const (
	CategoryStrongMomentum Category = "strong_momentum" // bullish alignment with a large daily gain
	CategoryPullback       Category = "pullback"        // bullish alignment, price between MA10 and MA5
	CategoryBreakout       Category = "breakout"        // fresh bullish alignment, price close to MA5
	CategoryValue          Category = "value"           // bullish alignment with a reasonable P/E
	CategoryPotential      Category = "potential"       // everything else above the score cutoff
)

// Valid reports whether c is a member of the fixed category set.
func (c Category) Valid() bool {
	switch c {
	case CategoryStrongMomentum, CategoryPullback, CategoryBreakout, CategoryValue, CategoryPotential:
		return true
	}
	return false
}

// RiskLevel is the three-tier risk classification.
type RiskLevel string

const (
	RiskLow    RiskLevel = "low"
	RiskMedium RiskLevel = "medium"
	RiskHigh   RiskLevel = "high"
)

// Valid reports whether r is a member of the fixed risk set.
func (r RiskLevel) Valid() bool {
	switch r {
	case RiskLow, RiskMedium, RiskHigh:
		return true
	}
	return false
}

// Escalate raises the risk one tier. High stays high.
func (r RiskLevel) Escalate() RiskLevel {
	switch r {
	case RiskLow:
		return RiskMedium
	case RiskMedium:
		return RiskHigh
	}
	return r
}

// Recommendation is one candidate that passed the scoring threshold.
// Built only by the per-stock analyzer after all scoring steps succeed;
// read-only thereafter.
type Recommendation struct {
	Stock        StockSnapshot
	Trend        TrendResult
	Score        int // composite score in [0,100]
	Category     Category
	Risk         RiskLevel
	Reasons      []string
	RiskWarnings []string
}

// NewRecommendation validates and constructs a Recommendation.
func NewRecommendation(
	stock StockSnapshot,
	trend TrendResult,
	score int,
	category Category,
	risk RiskLevel,
	reasons []string,
	riskWarnings []string,
) (*Recommendation, error) {
	if score < 0 || score > 100 {
		return nil, fmt.Errorf("score must be in [0,100]: %d", score)
	}
	if !category.Valid() {
		return nil, fmt.Errorf("invalid category: %q", category)
	}
	if !risk.Valid() {
		return nil, fmt.Errorf("invalid risk level: %q", risk)
	}

	return &Recommendation{
		Stock:        stock,
		Trend:        trend,
		Score:        score,
		Category:     category,
		Risk:         risk,
		Reasons:      reasons,
		RiskWarnings: riskWarnings,
	}, nil
}
