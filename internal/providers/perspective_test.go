package providers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"unicode/utf8"
)

func newPerspectiveTestClient(srv *httptest.Server) *PerspectiveClient {
	client := NewPerspectiveClient("test-key")
	client.http.SetBaseURL(srv.URL)
	return client
}

func TestPerspectiveAnalyzeToxicity(t *testing.T) {
	t.Run("parses_summary_score", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if got := r.URL.Query().Get("key"); got != "test-key" {
				t.Errorf("expected the api key forwarded, got %q", got)
			}
			var req perspectiveRequest
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				t.Fatalf("failed to decode request: %v", err)
			}
			if !req.DoNotStore {
				t.Error("expected doNotStore set")
			}
			if _, ok := req.RequestedAttributes["TOXICITY"]; !ok {
				t.Error("expected TOXICITY requested")
			}
			w.Write([]byte(`{"attributeScores":{"TOXICITY":{"summaryScore":{"value":0.82}}}}`))
		}))
		defer srv.Close()

		score, err := newPerspectiveTestClient(srv).AnalyzeToxicity(context.Background(), "you clown")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if score != 0.82 {
			t.Errorf("expected 0.82, got %f", score)
		}
	})

	t.Run("truncates_long_text", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var req perspectiveRequest
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				t.Fatalf("failed to decode request: %v", err)
			}
			if len(req.Comment.Text) != maxCommentLength {
				t.Errorf("expected the text truncated to %d, got %d", maxCommentLength, len(req.Comment.Text))
			}
			w.Write([]byte(`{"attributeScores":{"TOXICITY":{"summaryScore":{"value":0.1}}}}`))
		}))
		defer srv.Close()

		long := strings.Repeat("a", maxCommentLength*2)
		_, err := newPerspectiveTestClient(srv).AnalyzeToxicity(context.Background(), long)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	})

	t.Run("truncates_on_rune_boundaries", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var req perspectiveRequest
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				t.Fatalf("failed to decode request: %v", err)
			}
			if !utf8.ValidString(req.Comment.Text) {
				t.Error("expected the truncated text to remain valid UTF-8")
			}
			if got := utf8.RuneCountInString(req.Comment.Text); got != maxCommentLength {
				t.Errorf("expected %d characters, got %d", maxCommentLength, got)
			}
			w.Write([]byte(`{"attributeScores":{"TOXICITY":{"summaryScore":{"value":0.1}}}}`))
		}))
		defer srv.Close()

		long := strings.Repeat("é", maxCommentLength+10)
		_, err := newPerspectiveTestClient(srv).AnalyzeToxicity(context.Background(), long)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	})

	t.Run("error_detail_surfaces", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusBadRequest)
			w.Write([]byte(`{"error":{"message":"Attribute TOXICITY does not support language: xx"}}`))
		}))
		defer srv.Close()

		_, err := newPerspectiveTestClient(srv).AnalyzeToxicity(context.Background(), "text")
		if err == nil || !strings.Contains(err.Error(), "does not support language") {
			t.Errorf("expected the provider detail in the error, got %v", err)
		}
	})

	t.Run("missing_score", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.Write([]byte(`{"attributeScores":{}}`))
		}))
		defer srv.Close()

		_, err := newPerspectiveTestClient(srv).AnalyzeToxicity(context.Background(), "text")
		assertIs(t, err, ErrMalformed)
	})
}
