package eastmoney

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/xmwMing/daily-stock-analysis/internal/contracts"
)

// sourceLabel tags the history series with its origin.
const sourceLabel = "eastmoney"

type klineResponse struct {
	Data *struct {
		Code   string   `json:"code"`
		Klines []string `json:"klines"`
	} `json:"data"`
}

// FetchDaily downloads up to days daily forward-adjusted bars for one
// stock, oldest first. It implements contracts.HistoryProvider.
func (c *Client) FetchDaily(ctx context.Context, code string, days int) ([]contracts.DailyBar, string, error) {
	if days <= 0 {
		return nil, "", fmt.Errorf("days must be positive: %d", days)
	}

	params := url.Values{}
	params.Set("secid", secID(code))
	params.Set("fields1", "f1,f2,f3,f4,f5,f6")
	params.Set("fields2", "f51,f52,f53,f54,f55,f56")
	params.Set("klt", "101") // daily bars
	params.Set("fqt", "1")   // forward adjusted
	params.Set("end", "20500101")
	params.Set("lmt", strconv.Itoa(days))

	var resp klineResponse
	if err := c.getJSON(ctx, c.historyBaseURL, "/api/qt/stock/kline/get", params, &resp); err != nil {
		return nil, "", fmt.Errorf("fetch klines for %s: %w", code, err)
	}
	if resp.Data == nil {
		return nil, "", fmt.Errorf("no kline data for %s", code)
	}

	bars := make([]contracts.DailyBar, 0, len(resp.Data.Klines))
	for _, line := range resp.Data.Klines {
		bar, err := parseKline(line)
		if err != nil {
			return nil, "", fmt.Errorf("parse kline for %s: %w", code, err)
		}
		bars = append(bars, bar)
	}

	c.logger.WithFields(map[string]interface{}{
		"code": code,
		"days": len(bars),
	}).Debug("Daily history fetched")

	return bars, sourceLabel, nil
}

// secID builds the Eastmoney security identifier. Shanghai listings (codes
// starting with 6) carry market prefix 1, Shenzhen listings prefix 0.
func secID(code string) string {
	if strings.HasPrefix(code, "6") {
		return "1." + code
	}
	return "0." + code
}

// parseKline decodes one "date,open,close,high,low,volume,..." line.
func parseKline(line string) (contracts.DailyBar, error) {
	fields := strings.Split(line, ",")
	if len(fields) < 6 {
		return contracts.DailyBar{}, fmt.Errorf("malformed kline %q", line)
	}

	date, err := time.Parse("2006-01-02", fields[0])
	if err != nil {
		return contracts.DailyBar{}, fmt.Errorf("malformed kline date %q", fields[0])
	}

	values := make([]float64, 5)
	for i, raw := range fields[1:6] {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return contracts.DailyBar{}, fmt.Errorf("malformed kline field %q", raw)
		}
		values[i] = v
	}

	return contracts.DailyBar{
		Date:   date,
		Open:   values[0],
		Close:  values[1],
		High:   values[2],
		Low:    values[3],
		Volume: values[4],
	}, nil
}
