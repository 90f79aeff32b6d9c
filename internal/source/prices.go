package source

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
)

// apiKeyHeader carries the optional demo API key, matching the upstream
// API's expectations.
const apiKeyHeader = "x-cg-demo-api-key"

// APIError represents a non-success response from the price API.
type APIError struct {
	StatusCode int
	Message    string
	Body       []byte
}

func (e *APIError) Error() string {
	return fmt.Sprintf("price api error %d: %s", e.StatusCode, e.Message)
}

// Prices maps coin ID to price per quote currency, as returned by the
// /simple/price endpoint.
type Prices map[string]map[string]float64

// SimplePrices fetches current prices for the given coins in the given
// currency. One round trip, no internal retry; callers decide what a
// failed cycle means.
func (c *Client) SimplePrices(ctx context.Context, ids []string, currency string) (Prices, error) {
	query := url.Values{}
	query.Set("ids", strings.Join(ids, ","))
	query.Set("vs_currencies", currency)

	fullURL := c.baseURL + "/simple/price?" + query.Encode()
	c.logger.Debug("fetching prices", "url", fullURL)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set(apiKeyHeader, c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode >= 400 {
		return nil, &APIError{
			StatusCode: resp.StatusCode,
			Message:    http.StatusText(resp.StatusCode),
			Body:       body,
		}
	}

	var prices Prices
	if err := json.Unmarshal(body, &prices); err != nil {
		return nil, fmt.Errorf("unmarshal response: %w", err)
	}

	return prices, nil
}
