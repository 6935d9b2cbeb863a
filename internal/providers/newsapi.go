package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"
)

const (
	newsAPIBaseURL = "https://newsapi.org/v2"
	newsAPITimeout = 15 * time.Second
)

// RawArticle is one candidate article as the search provider reports it,
// before any normalization or deduplication.
type RawArticle struct {
	Source      string
	Title       string
	URL         string
	Description string
	Content     string
	PublishedAt time.Time
}

// NewsAPIClient queries the NewsAPI "everything" search endpoint.
type NewsAPIClient struct {
	http   *resty.Client
	apiKey string
}

// NewNewsAPIClient creates a client authenticated with the given key.
func NewNewsAPIClient(apiKey string) *NewsAPIClient {
	return &NewsAPIClient{
		http:   newHTTPClient(newsAPITimeout).SetBaseURL(newsAPIBaseURL),
		apiKey: apiKey,
	}
}

type newsAPIResponse struct {
	Status   string `json:"status"`
	Message  string `json:"message"`
	Articles []struct {
		Source struct {
			Name string `json:"name"`
		} `json:"source"`
		Title       string    `json:"title"`
		URL         string    `json:"url"`
		Description string    `json:"description"`
		Content     string    `json:"content"`
		PublishedAt time.Time `json:"publishedAt"`
	} `json:"articles"`
}

// Everything searches English articles matching the query, published at or
// after since, capped at pageSize results sorted by publication time.
// A non-"ok" status carries the provider's own message in the error.
func (c *NewsAPIClient) Everything(ctx context.Context, query string, since time.Time, pageSize int) ([]RawArticle, error) {
	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"q":        query,
			"language": "en",
			"sortBy":   "publishedAt",
			"pageSize": strconv.Itoa(pageSize),
			"from":     since.UTC().Format(time.RFC3339),
			"apiKey":   c.apiKey,
		}).
		Get("/everything")
	if err != nil {
		return nil, fmt.Errorf("newsapi everything: %w", err)
	}
	if resp.IsError() {
		return nil, statusError("newsapi", resp)
	}

	var body newsAPIResponse
	if err := json.Unmarshal(resp.Body(), &body); err != nil {
		return nil, fmt.Errorf("newsapi everything: %w: %v", ErrMalformed, err)
	}
	if body.Status != "ok" {
		return nil, fmt.Errorf("newsapi everything: %w: status %q: %s", ErrMalformed, body.Status, body.Message)
	}

	articles := make([]RawArticle, 0, len(body.Articles))
	for _, a := range body.Articles {
		articles = append(articles, RawArticle{
			Source:      a.Source.Name,
			Title:       a.Title,
			URL:         a.URL,
			Description: a.Description,
			Content:     a.Content,
			PublishedAt: a.PublishedAt,
		})
	}
	return articles, nil
}
