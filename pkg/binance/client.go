package binance

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

// Client represents a Binance public REST API client
type Client struct {
	apiURL     string
	httpClient *http.Client
}

// NewClient creates a new Binance client
func NewClient(apiURL string) *Client {
	return &Client{
		apiURL: apiURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// GetKlines fetches candlestick data for a symbol from /api/v3/klines.
// startMS and endMS are millisecond epoch bounds; limit is capped at 1000
// by Binance.
func (c *Client) GetKlines(ctx context.Context, symbol, interval string, startMS, endMS int64, limit int) ([]Kline, error) {
	params := url.Values{}
	params.Set("symbol", symbol)
	params.Set("interval", interval)
	params.Set("startTime", strconv.FormatInt(startMS, 10))
	params.Set("endTime", strconv.FormatInt(endMS, 10))
	params.Set("limit", strconv.Itoa(limit))

	reqURL := c.apiURL + "/api/v3/klines?" + params.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("klines request failed: status=%d body=%s", resp.StatusCode, truncate(body, 256))
	}

	var klines []Kline
	if err := json.Unmarshal(body, &klines); err != nil {
		return nil, fmt.Errorf("failed to parse klines response: %w", err)
	}
	return klines, nil
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
