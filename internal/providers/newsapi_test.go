package providers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestNewsAPIEverything(t *testing.T) {
	since := time.Date(2026, 8, 29, 12, 0, 0, 0, time.UTC)

	t.Run("parses_articles", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			q := r.URL.Query()
			if q.Get("q") != `AAPL OR "$AAPL"` {
				t.Errorf("unexpected query %q", q.Get("q"))
			}
			if q.Get("language") != "en" || q.Get("sortBy") != "publishedAt" {
				t.Errorf("unexpected search params %v", q)
			}
			if !strings.HasPrefix(q.Get("from"), "2026-08-29T12:00:00") {
				t.Errorf("unexpected from param %q", q.Get("from"))
			}
			w.Write([]byte(`{
				"status": "ok",
				"articles": [
					{
						"source": {"name": "Reuters"},
						"title": "Apple hits new high",
						"url": "https://example.com/a1",
						"description": "Shares climbed.",
						"content": "Shares climbed in early trading.",
						"publishedAt": "2026-08-30T09:15:00Z"
					}
				]
			}`))
		}))
		defer srv.Close()

		client := NewNewsAPIClient("test-key")
		client.http.SetBaseURL(srv.URL)

		articles, err := client.Everything(context.Background(), `AAPL OR "$AAPL"`, since, 50)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(articles) != 1 {
			t.Fatalf("expected 1 article, got %d", len(articles))
		}
		a := articles[0]
		if a.Source != "Reuters" || a.Title != "Apple hits new high" {
			t.Errorf("unexpected article %+v", a)
		}
		if a.PublishedAt.IsZero() {
			t.Error("expected publishedAt parsed")
		}
	})

	t.Run("error_status_in_body", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.Write([]byte(`{"status":"error","code":"apiKeyInvalid","message":"Your API key is invalid."}`))
		}))
		defer srv.Close()

		client := NewNewsAPIClient("bad-key")
		client.http.SetBaseURL(srv.URL)

		_, err := client.Everything(context.Background(), "AAPL", since, 50)
		assertIs(t, err, ErrMalformed)
		if !strings.Contains(err.Error(), "Your API key is invalid.") {
			t.Errorf("expected the provider message in the error, got %v", err)
		}
	})

	t.Run("rate_limited", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusTooManyRequests)
		}))
		defer srv.Close()

		client := NewNewsAPIClient("test-key")
		client.http.SetBaseURL(srv.URL)

		_, err := client.Everything(context.Background(), "AAPL", since, 50)
		assertIs(t, err, ErrRateLimited)
	})
}
