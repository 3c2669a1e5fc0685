package eastmoney

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/xmwMing/daily-stock-analysis/internal/contracts"
)

// quotePageSize is the rows-per-page of the spot quote endpoint.
const quotePageSize = 100

// maxQuotePages caps pagination so a wrong total cannot loop forever.
const maxQuotePages = 100

// aShareFilter selects all Shanghai and Shenzhen A-share listings.
const aShareFilter = "m:0+t:6,m:0+t:80,m:1+t:2,m:1+t:23"

// quoteFields are the spot-table columns requested per row.
const quoteFields = "f2,f3,f5,f6,f8,f9,f12,f14,f20,f26"

type quoteResponse struct {
	Data *struct {
		Total int        `json:"total"`
		Diff  []quoteRow `json:"diff"`
	} `json:"data"`
}

type quoteRow struct {
	Price     flexNum `json:"f2"`
	ChangePct flexNum `json:"f3"`
	Volume    flexNum `json:"f5"`
	Amount    flexNum `json:"f6"`
	Turnover  flexNum `json:"f8"`
	PERatio   flexNum `json:"f9"`
	Code      string  `json:"f12"`
	Name      string  `json:"f14"`
	MarketCap flexNum `json:"f20"`
	ListDate  flexNum `json:"f26"` // yyyymmdd as a number
}

// FetchAllQuotes downloads the full A-share spot quote table, paging until
// the reported total is reached. It implements contracts.QuoteSource.
func (c *Client) FetchAllQuotes(ctx context.Context) ([]contracts.QuoteRow, error) {
	var rows []contracts.QuoteRow

	for page := 1; page <= maxQuotePages; page++ {
		params := url.Values{}
		params.Set("pn", strconv.Itoa(page))
		params.Set("pz", strconv.Itoa(quotePageSize))
		params.Set("po", "1")
		params.Set("np", "1")
		params.Set("fltt", "2")
		params.Set("invt", "2")
		params.Set("fid", "f3")
		params.Set("fs", aShareFilter)
		params.Set("fields", quoteFields)

		var resp quoteResponse
		if err := c.getJSON(ctx, c.quoteBaseURL, "/api/qt/clist/get", params, &resp); err != nil {
			return nil, fmt.Errorf("fetch quote page %d: %w", page, err)
		}
		if resp.Data == nil || len(resp.Data.Diff) == 0 {
			break
		}

		for _, raw := range resp.Data.Diff {
			rows = append(rows, toQuoteRow(raw))
		}

		if len(rows) >= resp.Data.Total || len(resp.Data.Diff) < quotePageSize {
			break
		}
	}

	c.logger.WithField("count", len(rows)).Debug("Spot quote table fetched")

	return rows, nil
}

// toQuoteRow maps a raw spot row to the domain quote row. Unset numeric
// fields degrade to zero values; an unset P/E stays nil.
func toQuoteRow(raw quoteRow) contracts.QuoteRow {
	row := contracts.QuoteRow{
		Code:         raw.Code,
		Name:         raw.Name,
		Price:        raw.Price.Value,
		ChangePct:    raw.ChangePct.Value,
		Volume:       raw.Volume.Value,
		Amount:       raw.Amount.Value,
		TurnoverRate: raw.Turnover.Value,
		MarketCap:    raw.MarketCap.Value,
	}

	if raw.PERatio.Set {
		pe := raw.PERatio.Value
		row.PERatio = &pe
	}

	if raw.ListDate.Set && raw.ListDate.Value > 0 {
		row.ListDate = strconv.FormatInt(int64(raw.ListDate.Value), 10)
	}

	return row
}
