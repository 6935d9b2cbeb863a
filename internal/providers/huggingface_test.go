package providers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func newHuggingFaceTestClient(srv *httptest.Server) *HuggingFaceClient {
	client := NewHuggingFaceClient("test-token")
	client.endpoint = srv.URL
	return client
}

func TestHuggingFaceClassifySentiment(t *testing.T) {
	t.Run("nested_payload", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if got := r.Header.Get("Authorization"); got != "Bearer test-token" {
				t.Errorf("expected bearer auth, got %q", got)
			}
			w.Write([]byte(`[[{"label":"POSITIVE","score":0.998},{"label":"NEGATIVE","score":0.002}]]`))
		}))
		defer srv.Close()

		label, score, err := newHuggingFaceTestClient(srv).ClassifySentiment(context.Background(), "great quarter")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if label != "POSITIVE" || score != 0.998 {
			t.Errorf("expected the top candidate, got %q/%f", label, score)
		}
	})

	t.Run("flat_payload", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.Write([]byte(`[{"label":"NEGATIVE","score":0.87}]`))
		}))
		defer srv.Close()

		label, score, err := newHuggingFaceTestClient(srv).ClassifySentiment(context.Background(), "terrible quarter")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if label != "NEGATIVE" || score != 0.87 {
			t.Errorf("unexpected result %q/%f", label, score)
		}
	})

	t.Run("empty_result", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.Write([]byte(`[[]]`))
		}))
		defer srv.Close()

		_, _, err := newHuggingFaceTestClient(srv).ClassifySentiment(context.Background(), "text")
		assertIs(t, err, ErrMalformed)
	})

	t.Run("model_loading_status", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
			w.Write([]byte(`{"error":"Model is currently loading"}`))
		}))
		defer srv.Close()

		_, _, err := newHuggingFaceTestClient(srv).ClassifySentiment(context.Background(), "text")
		if err == nil {
			t.Fatal("expected an error for a 503")
		}
	})
}
