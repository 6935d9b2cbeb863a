package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
)

const (
	perspectiveBaseURL = "https://commentanalyzer.googleapis.com/v1alpha1"
	perspectiveTimeout = 15 * time.Second

	// maxCommentLength is the payload bound the API accepts, in characters;
	// longer text is truncated before sending.
	maxCommentLength = 1500
)

// PerspectiveClient scores text toxicity via the Perspective comment
// analyzer API. There is no offline fallback for toxicity, so callers must
// treat errors from this client as terminal for the request.
type PerspectiveClient struct {
	http   *resty.Client
	apiKey string
}

// NewPerspectiveClient creates a client authenticated with the given key.
func NewPerspectiveClient(apiKey string) *PerspectiveClient {
	return &PerspectiveClient{
		http:   newHTTPClient(perspectiveTimeout).SetBaseURL(perspectiveBaseURL),
		apiKey: apiKey,
	}
}

type perspectiveRequest struct {
	Comment struct {
		Text string `json:"text"`
	} `json:"comment"`
	Languages           []string            `json:"languages"`
	RequestedAttributes map[string]struct{} `json:"requestedAttributes"`
	DoNotStore          bool                `json:"doNotStore"`
}

type perspectiveResponse struct {
	AttributeScores map[string]struct {
		SummaryScore struct {
			Value *float64 `json:"value"`
		} `json:"summaryScore"`
	} `json:"attributeScores"`
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}

// AnalyzeToxicity returns the summary toxicity score for the text in [0,1].
// Errors carry the provider's own error detail where the API supplies one.
func (c *PerspectiveClient) AnalyzeToxicity(ctx context.Context, text string) (float64, error) {
	if runes := []rune(text); len(runes) > maxCommentLength {
		text = string(runes[:maxCommentLength])
	}

	var req perspectiveRequest
	req.Comment.Text = text
	req.Languages = []string{"en"}
	req.RequestedAttributes = map[string]struct{}{"TOXICITY": {}}
	req.DoNotStore = true

	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetQueryParam("key", c.apiKey).
		SetBody(req).
		Post("/comments:analyze")
	if err != nil {
		return 0, fmt.Errorf("perspective analyze: %w", err)
	}

	var body perspectiveResponse
	if jsonErr := json.Unmarshal(resp.Body(), &body); jsonErr != nil && !resp.IsError() {
		return 0, fmt.Errorf("perspective analyze: %w: %v", ErrMalformed, jsonErr)
	}

	if resp.IsError() {
		if body.Error.Message != "" {
			return 0, fmt.Errorf("perspective analyze: status %d: %s", resp.StatusCode(), body.Error.Message)
		}
		return 0, statusError("perspective", resp)
	}

	attr, ok := body.AttributeScores["TOXICITY"]
	if !ok || attr.SummaryScore.Value == nil {
		return 0, fmt.Errorf("perspective analyze: %w: missing summary score", ErrMalformed)
	}

	return *attr.SummaryScore.Value, nil
}
