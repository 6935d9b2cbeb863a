package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

const (
	alphaVantageBaseURL = "https://www.alphavantage.co"
	alphaVantageTimeout = 15 * time.Second
)

// AlphaVantageClient is the primary equity price provider. It exposes the
// two free endpoints the resolver uses: GLOBAL_QUOTE for a fast current
// price and TIME_SERIES_DAILY for history.
type AlphaVantageClient struct {
	http   *resty.Client
	apiKey string
}

// NewAlphaVantageClient creates a client authenticated with the given key.
func NewAlphaVantageClient(apiKey string) *AlphaVantageClient {
	return &AlphaVantageClient{
		http:   newHTTPClient(alphaVantageTimeout).SetBaseURL(alphaVantageBaseURL),
		apiKey: apiKey,
	}
}

func (c *AlphaVantageClient) query(ctx context.Context, params map[string]string) (map[string]json.RawMessage, error) {
	params["apikey"] = c.apiKey
	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParams(params).
		Get("/query")
	if err != nil {
		return nil, fmt.Errorf("alphavantage: %w", err)
	}
	if resp.IsError() {
		return nil, statusError("alphavantage", resp)
	}

	var body map[string]json.RawMessage
	if err := json.Unmarshal(resp.Body(), &body); err != nil {
		return nil, fmt.Errorf("alphavantage: %w: %v", ErrMalformed, err)
	}

	// Alpha Vantage signals throttling and bad symbols inside a 200 body.
	for _, key := range []string{"Note", "Information", "Error Message"} {
		if raw, ok := body[key]; ok {
			var msg string
			_ = json.Unmarshal(raw, &msg)
			return nil, fmt.Errorf("alphavantage: %w: %s", ErrMalformed, msg)
		}
	}

	return body, nil
}

// GlobalQuote returns the current price for a symbol.
func (c *AlphaVantageClient) GlobalQuote(ctx context.Context, symbol string) (float64, error) {
	body, err := c.query(ctx, map[string]string{
		"function": "GLOBAL_QUOTE",
		"symbol":   symbol,
	})
	if err != nil {
		return 0, err
	}

	raw, ok := body["Global Quote"]
	if !ok {
		return 0, fmt.Errorf("alphavantage global quote: %w: missing quote object", ErrMalformed)
	}

	var quote map[string]string
	if err := json.Unmarshal(raw, &quote); err != nil {
		return 0, fmt.Errorf("alphavantage global quote: %w: %v", ErrMalformed, err)
	}

	price, err := strconv.ParseFloat(quote["05. price"], 64)
	if err != nil {
		return 0, fmt.Errorf("alphavantage global quote: %w: unparsable price %q", ErrMalformed, quote["05. price"])
	}
	return price, nil
}

// DailySeries returns the daily close-price history for a symbol as an
// ascending series. Entries with unparsable dates or prices are dropped.
func (c *AlphaVantageClient) DailySeries(ctx context.Context, symbol string) (PriceSeries, error) {
	body, err := c.query(ctx, map[string]string{
		"function":   "TIME_SERIES_DAILY",
		"symbol":     symbol,
		"outputsize": "compact",
	})
	if err != nil {
		return nil, err
	}

	// The series key names the function, e.g. "Time Series (Daily)".
	var seriesRaw json.RawMessage
	for key, raw := range body {
		if strings.Contains(key, "Time Series") {
			seriesRaw = raw
			break
		}
	}
	if seriesRaw == nil {
		return nil, fmt.Errorf("alphavantage daily: %w: missing time series object", ErrMalformed)
	}

	var days map[string]map[string]string
	if err := json.Unmarshal(seriesRaw, &days); err != nil {
		return nil, fmt.Errorf("alphavantage daily: %w: %v", ErrMalformed, err)
	}

	series := make(PriceSeries, 0, len(days))
	for date, values := range days {
		at, dateErr := time.Parse("2006-01-02", date)
		price, priceErr := strconv.ParseFloat(values["4. close"], 64)
		if dateErr != nil || priceErr != nil {
			continue
		}
		series = append(series, PricePoint{At: at.UTC(), Price: price})
	}

	return sortAscending(series), nil
}
