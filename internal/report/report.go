package report

import (
	"fmt"
	"strings"
	"time"

	"github.com/xmwMing/daily-stock-analysis/internal/contracts"
	"github.com/xmwMing/daily-stock-analysis/internal/discovery"
)

// Builder renders the daily recommendation report as Markdown.
type Builder struct {
	now func() time.Time
}

// NewBuilder creates a report builder.
func NewBuilder() *Builder {
	return &Builder{now: time.Now}
}

var categoryLabels = map[contracts.Category]string{
	contracts.CategoryStrongMomentum: "Strong momentum",
	contracts.CategoryPullback:       "Pullback",
	contracts.CategoryBreakout:       "Breakout",
	contracts.CategoryValue:          "Value",
	contracts.CategoryPotential:      "Potential",
}

var riskLabels = map[contracts.RiskLevel]string{
	contracts.RiskLow:    "Low",
	contracts.RiskMedium: "Medium",
	contracts.RiskHigh:   "High",
}

var statusLabels = map[contracts.TrendStatus]string{
	contracts.TrendStrongBull: "Strong bullish",
	contracts.TrendBull:       "Bullish",
	contracts.TrendSideways:   "Sideways",
	contracts.TrendBear:       "Bearish",
}

// Build renders the full report. An empty recommendation list produces the
// no-candidates variant instead of an empty document, so a scheduled run
// always has something to deliver.
func (b *Builder) Build(recommendations []contracts.Recommendation, stats discovery.Stats) string {
	day := b.now().Format("2006-01-02")

	if len(recommendations) == 0 {
		return b.buildEmpty(day, stats)
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "# Hot Stock Recommendations for %s\n\n", day)
	fmt.Fprintf(&sb, "> **%d** stocks recommended today\n\n", len(recommendations))

	b.writeStats(&sb, stats)
	sb.WriteString("---\n\n")

	for i, rec := range recommendations {
		b.writeCard(&sb, i+1, rec)
		sb.WriteString("\n---\n\n")
	}

	b.writeLegend(&sb)
	b.writeFooter(&sb)

	return sb.String()
}

// buildEmpty renders the report used when no candidate qualified.
func (b *Builder) buildEmpty(day string, stats discovery.Stats) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "# Hot Stock Recommendations for %s\n\n", day)
	sb.WriteString("> No suitable recommendations in the current market\n\n")

	b.writeStats(&sb, stats)

	sb.WriteString("## Market Conditions\n\n")
	sb.WriteString("No stock met the recommendation criteria today.\n\n")
	sb.WriteString("Possible reasons:\n")
	sb.WriteString("- The broader market is in a correction\n")
	sb.WriteString("- Hot stocks are overextended above their moving averages\n")
	sb.WriteString("- No bullish MA5 > MA10 > MA20 alignment has formed\n")
	sb.WriteString("- Composite scores stayed below the recommendation cutoff\n\n")
	sb.WriteString("Suggestions:\n")
	sb.WriteString("- Stay on the sidelines and wait for a better entry\n")
	sb.WriteString("- Keep monitoring existing positions\n")
	sb.WriteString("- Avoid chasing strength and control risk\n\n")

	b.writeFooter(&sb)

	return sb.String()
}

// writeStats renders the discovery statistics table.
func (b *Builder) writeStats(sb *strings.Builder, stats discovery.Stats) {
	sb.WriteString("## Discovery Statistics\n\n")
	sb.WriteString("| Stage | Count |\n")
	sb.WriteString("|-------|-------|\n")
	fmt.Fprintf(sb, "| Gainers ranking | %d |\n", stats.GainersCount)
	fmt.Fprintf(sb, "| Traded-value ranking | %d |\n", stats.AmountCount)
	fmt.Fprintf(sb, "| Turnover ranking | %d |\n", stats.TurnoverCount)
	fmt.Fprintf(sb, "| Merged and deduplicated | %d |\n", stats.TotalBeforeFilter)
	fmt.Fprintf(sb, "| Passed eligibility filter | %d |\n", stats.TotalAfterFilter)
	sb.WriteString("\n")
}

// writeCard renders one recommendation.
func (b *Builder) writeCard(sb *strings.Builder, index int, rec contracts.Recommendation) {
	stock := rec.Stock
	trend := rec.Trend

	fmt.Fprintf(sb, "## %d. %s (%s)\n\n", index, stock.Name, stock.Code)
	fmt.Fprintf(sb, "**Score**: %d | **Category**: %s | **Risk**: %s\n\n",
		rec.Score, categoryLabels[rec.Category], riskLabels[rec.Risk])

	if len(rec.Reasons) > 0 {
		sb.WriteString("### Why\n\n")
		for _, reason := range rec.Reasons {
			fmt.Fprintf(sb, "- %s\n", reason)
		}
		sb.WriteString("\n")
	}

	sb.WriteString("### Key Figures\n\n")
	sb.WriteString("| Metric | Value |\n")
	sb.WriteString("|--------|-------|\n")
	fmt.Fprintf(sb, "| Price | %.2f |\n", stock.Price)
	fmt.Fprintf(sb, "| Change | %+.2f%% |\n", stock.ChangePct)
	fmt.Fprintf(sb, "| Traded value | %.2f hundred million |\n", stock.Amount/1e8)
	fmt.Fprintf(sb, "| Turnover | %.2f%% |\n", stock.TurnoverRate)
	fmt.Fprintf(sb, "| Market cap | %.2f hundred million |\n", stock.MarketCap/1e8)
	if stock.PERatio != nil && *stock.PERatio > 0 {
		fmt.Fprintf(sb, "| P/E | %.2f |\n", *stock.PERatio)
	}
	sb.WriteString("\n")

	sb.WriteString("### Trend\n\n")
	fmt.Fprintf(sb, "**Status**: %s | **Signal score**: %d\n\n", statusLabels[trend.Status], trend.SignalScore)
	fmt.Fprintf(sb, "**Moving averages**: MA5 %.2f / MA10 %.2f / MA20 %.2f (bias %+.2f%%)\n\n",
		trend.MA5, trend.MA10, trend.MA20, trend.BiasMA5)

	if len(rec.RiskWarnings) > 0 {
		sb.WriteString("### Risk Notes\n\n")
		for _, warning := range rec.RiskWarnings {
			fmt.Fprintf(sb, "- %s\n", warning)
		}
		sb.WriteString("\n")
	}
}

// writeLegend renders the fixed explanatory footer.
func (b *Builder) writeLegend(sb *strings.Builder) {
	sb.WriteString("## Notes\n\n")
	sb.WriteString("- **Score range**: 0-100, only stocks scoring 60 or above are listed\n")
	sb.WriteString("- **Categories**:\n")
	sb.WriteString("  - Strong momentum: bullish alignment with a large daily gain\n")
	sb.WriteString("  - Pullback: bullish alignment with price retraced near the averages\n")
	sb.WriteString("  - Breakout: moving averages just formed a bullish alignment\n")
	sb.WriteString("  - Value: bullish alignment with a reasonable valuation\n")
	sb.WriteString("  - Potential: other stocks meeting the criteria\n")
	sb.WriteString("- **Risk level**: combined turnover, daily change and recent volatility\n\n")
}

func (b *Builder) writeFooter(sb *strings.Builder) {
	fmt.Fprintf(sb, "*Generated at %s*\n", b.now().Format("2006-01-02 15:04:05"))
}
