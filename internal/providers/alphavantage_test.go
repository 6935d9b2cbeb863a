package providers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func newAlphaVantageTestClient(srv *httptest.Server) *AlphaVantageClient {
	client := NewAlphaVantageClient("test-key")
	client.http.SetBaseURL(srv.URL)
	return client
}

func TestAlphaVantageGlobalQuote(t *testing.T) {
	t.Run("parses_price", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if got := r.URL.Query().Get("function"); got != "GLOBAL_QUOTE" {
				t.Errorf("unexpected function %q", got)
			}
			if got := r.URL.Query().Get("apikey"); got != "test-key" {
				t.Errorf("expected the api key forwarded, got %q", got)
			}
			w.Write([]byte(`{"Global Quote":{"01. symbol":"AAPL","05. price":"189.4100"}}`))
		}))
		defer srv.Close()

		price, err := newAlphaVantageTestClient(srv).GlobalQuote(context.Background(), "AAPL")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if price != 189.41 {
			t.Errorf("expected 189.41, got %f", price)
		}
	})

	t.Run("throttle_note_inside_200", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.Write([]byte(`{"Note":"Thank you for using Alpha Vantage! Please consider upgrading."}`))
		}))
		defer srv.Close()

		_, err := newAlphaVantageTestClient(srv).GlobalQuote(context.Background(), "AAPL")
		assertIs(t, err, ErrMalformed)
	})

	t.Run("error_message_inside_200", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.Write([]byte(`{"Error Message":"Invalid API call."}`))
		}))
		defer srv.Close()

		_, err := newAlphaVantageTestClient(srv).GlobalQuote(context.Background(), "NOPE")
		assertIs(t, err, ErrMalformed)
	})

	t.Run("unparsable_price", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.Write([]byte(`{"Global Quote":{"05. price":"n/a"}}`))
		}))
		defer srv.Close()

		_, err := newAlphaVantageTestClient(srv).GlobalQuote(context.Background(), "AAPL")
		assertIs(t, err, ErrMalformed)
	})
}

func TestAlphaVantageDailySeries(t *testing.T) {
	t.Run("parses_closes_ascending", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if got := r.URL.Query().Get("function"); got != "TIME_SERIES_DAILY" {
				t.Errorf("unexpected function %q", got)
			}
			w.Write([]byte(`{
				"Meta Data": {"2. Symbol": "AAPL"},
				"Time Series (Daily)": {
					"2026-08-28": {"1. open": "187.0", "4. close": "188.50"},
					"2026-08-27": {"1. open": "185.0", "4. close": "186.10"},
					"2026-08-26": {"1. open": "bad", "4. close": "not a number"}
				}
			}`))
		}))
		defer srv.Close()

		series, err := newAlphaVantageTestClient(srv).DailySeries(context.Background(), "AAPL")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(series) != 2 {
			t.Fatalf("expected the bad day dropped, got %d points", len(series))
		}
		if series[0].Price != 186.10 || series[1].Price != 188.50 {
			t.Errorf("expected ascending closes, got %v", series)
		}
	})

	t.Run("missing_series_object", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.Write([]byte(`{"Meta Data":{}}`))
		}))
		defer srv.Close()

		_, err := newAlphaVantageTestClient(srv).DailySeries(context.Background(), "AAPL")
		assertIs(t, err, ErrMalformed)
	})
}
