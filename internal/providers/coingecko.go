package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
)

const coinGeckoTimeout = 15 * time.Second

// CoinGeckoClient queries the CoinGecko market-chart endpoint for
// day-granularity crypto price history.
type CoinGeckoClient struct {
	http *resty.Client
}

// NewCoinGeckoClient creates a client against the given API base URL
// (e.g. "https://api.coingecko.com/api/v3").
func NewCoinGeckoClient(baseURL string) *CoinGeckoClient {
	return &CoinGeckoClient{
		http: newHTTPClient(coinGeckoTimeout).SetBaseURL(baseURL),
	}
}

// marketChartResponse mirrors the relevant slice of the market_chart payload:
// prices is a list of [unix_ms, price] pairs.
type marketChartResponse struct {
	Prices [][]json.Number `json:"prices"`
}

// MarketChart fetches up to days of USD price history for the given coin id
// and returns it as an ascending series. Pairs that do not parse as numbers
// are dropped rather than accepted as price points.
func (c *CoinGeckoClient) MarketChart(ctx context.Context, coinID string, days int) (PriceSeries, error) {
	if days < 1 {
		days = 1
	}

	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"vs_currency": "usd",
			"days":        fmt.Sprintf("%d", days),
		}).
		SetPathParam("id", coinID).
		Get("/coins/{id}/market_chart")
	if err != nil {
		return nil, fmt.Errorf("coingecko market_chart: %w", err)
	}
	if resp.IsError() {
		return nil, statusError("coingecko", resp)
	}

	var body marketChartResponse
	if err := json.Unmarshal(resp.Body(), &body); err != nil {
		return nil, fmt.Errorf("coingecko market_chart: %w: %v", ErrMalformed, err)
	}

	series := make(PriceSeries, 0, len(body.Prices))
	for _, pair := range body.Prices {
		if len(pair) < 2 {
			continue
		}
		ms, tsErr := pair[0].Float64()
		price, priceErr := pair[1].Float64()
		if tsErr != nil || priceErr != nil {
			continue
		}
		series = append(series, PricePoint{
			At:    time.UnixMilli(int64(ms)).UTC(),
			Price: price,
		})
	}

	return sortAscending(series), nil
}
