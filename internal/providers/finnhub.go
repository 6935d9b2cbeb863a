package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
)

const (
	finnhubBaseURL = "https://finnhub.io/api/v1"
	finnhubTimeout = 10 * time.Second
)

// FinnhubClient is the secondary equity provider. It only offers a current
// quote, so the resolver uses it to produce single-point series.
type FinnhubClient struct {
	http   *resty.Client
	apiKey string
}

// NewFinnhubClient creates a client authenticated with the given token.
func NewFinnhubClient(apiKey string) *FinnhubClient {
	return &FinnhubClient{
		http:   newHTTPClient(finnhubTimeout).SetBaseURL(finnhubBaseURL),
		apiKey: apiKey,
	}
}

// finnhubQuote mirrors the quote payload; "c" is the current price.
// A pointer distinguishes a missing field from a legitimate zero.
type finnhubQuote struct {
	Current *float64 `json:"c"`
}

// Quote returns the current price for a symbol. An HTTP 429 maps onto
// ErrRateLimited so callers can stop querying Finnhub for the rest of the
// resolution cycle.
func (c *FinnhubClient) Quote(ctx context.Context, symbol string) (float64, error) {
	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"symbol": symbol,
			"token":  c.apiKey,
		}).
		Get("/quote")
	if err != nil {
		return 0, fmt.Errorf("finnhub quote: %w", err)
	}
	if resp.IsError() {
		return 0, statusError("finnhub", resp)
	}

	var quote finnhubQuote
	if err := json.Unmarshal(resp.Body(), &quote); err != nil {
		return 0, fmt.Errorf("finnhub quote: %w: %v", ErrMalformed, err)
	}
	if quote.Current == nil {
		return 0, fmt.Errorf("finnhub quote: %w: no price returned", ErrMalformed)
	}

	return *quote.Current, nil
}
