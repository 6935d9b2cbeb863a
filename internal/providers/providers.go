// Package providers contains thin HTTP clients for the third-party data and
// inference services the pipelines consume: CoinGecko (crypto market
// charts), Alpha Vantage and Finnhub (equity quotes/history), NewsAPI
// (article search), HuggingFace (sentiment inference) and Perspective
// (toxicity scoring).
//
// Every client call is bounded by a per-call timeout and returns a wrapped
// error on failure. Two sentinel errors matter to callers: ErrRateLimited
// (the upstream answered HTTP 429 — stop calling it for this cycle) and
// ErrMalformed (the upstream answered, but not with the expected schema —
// treat it as a failed provider and fall back).
package providers

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/go-resty/resty/v2"
)

var (
	// ErrRateLimited indicates an HTTP 429 from the upstream provider.
	ErrRateLimited = errors.New("provider rate limited")
	// ErrMalformed indicates a response that does not match the expected schema.
	ErrMalformed = errors.New("malformed provider response")
)

// PricePoint is a single (timestamp, price) observation.
type PricePoint struct {
	At    time.Time `json:"t"`
	Price float64   `json:"price"`
}

// PriceSeries is an ascending sequence of price points with unique timestamps.
// Series are produced fresh on every resolution and never persisted.
type PriceSeries []PricePoint

// Last returns the final point of the series and whether one exists.
func (s PriceSeries) Last() (PricePoint, bool) {
	if len(s) == 0 {
		return PricePoint{}, false
	}
	return s[len(s)-1], true
}

// Since returns the points at or after the cutoff. When the window would be
// empty the full series is returned instead: a stale series is more useful
// to callers than no series at all.
func (s PriceSeries) Since(cutoff time.Time) PriceSeries {
	filtered := make(PriceSeries, 0, len(s))
	for _, p := range s {
		if !p.At.Before(cutoff) {
			filtered = append(filtered, p)
		}
	}
	if len(filtered) == 0 {
		return s
	}
	return filtered
}

// sortAscending orders points by timestamp and drops duplicate timestamps,
// keeping the first occurrence.
func sortAscending(points PriceSeries) PriceSeries {
	sort.Slice(points, func(i, j int) bool { return points[i].At.Before(points[j].At) })
	out := points[:0]
	var prev time.Time
	for i, p := range points {
		if i > 0 && p.At.Equal(prev) {
			continue
		}
		out = append(out, p)
		prev = p.At
	}
	return out
}

// newHTTPClient builds a resty client with the shared defaults used by all
// provider clients.
func newHTTPClient(timeout time.Duration) *resty.Client {
	return resty.New().
		SetTimeout(timeout).
		SetHeader("Accept", "application/json")
}

// statusError converts a non-2xx response into an error, mapping 429 onto
// ErrRateLimited.
func statusError(provider string, resp *resty.Response) error {
	if resp.StatusCode() == 429 {
		return fmt.Errorf("%s: %w", provider, ErrRateLimited)
	}
	return fmt.Errorf("%s: unexpected status %d", provider, resp.StatusCode())
}
