package eastmoney

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"github.com/xmwMing/daily-stock-analysis/pkg/httputil"
	"github.com/xmwMing/daily-stock-analysis/pkg/logger"
)

// Client handles communication with the Eastmoney quote endpoints.
type Client struct {
	httpClient *httputil.Client
	logger     *logger.Logger

	quoteBaseURL   string
	historyBaseURL string
}

// NewClient creates a new Eastmoney client.
func NewClient(httpClient *httputil.Client, log *logger.Logger) *Client {
	return &Client{
		httpClient:     httpClient,
		logger:         log.WithField("module", "eastmoney"),
		quoteBaseURL:   "https://push2.eastmoney.com",
		historyBaseURL: "https://push2his.eastmoney.com",
	}
}

// getJSON fetches a URL and decodes the JSON body into out.
func (c *Client) getJSON(ctx context.Context, base, path string, params url.Values, out interface{}) error {
	fullURL := fmt.Sprintf("%s%s?%s", base, path, params.Encode())

	resp, err := c.httpClient.Get(ctx, fullURL)
	if err != nil {
		return fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	return nil
}

// flexNum is a numeric field that the quote endpoints sometimes return as
// the placeholder string "-". The placeholder decodes to an unset value.
type flexNum struct {
	Value float64
	Set   bool
}

func (n *flexNum) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*n = flexNum{}
		return nil
	}

	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		if s == "" || s == "-" {
			*n = flexNum{}
			return nil
		}
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return fmt.Errorf("invalid numeric value %q", s)
		}
		*n = flexNum{Value: v, Set: true}
		return nil
	}

	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*n = flexNum{Value: v, Set: true}
	return nil
}
