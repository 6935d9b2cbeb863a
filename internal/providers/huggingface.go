package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
)

const (
	huggingFaceModelURL = "https://api-inference.huggingface.co/models/distilbert-base-uncased-finetuned-sst-2-english"
	huggingFaceTimeout  = 20 * time.Second
)

// HuggingFaceClient runs remote sentiment inference against a hosted
// DistilBERT SST-2 model.
type HuggingFaceClient struct {
	http     *resty.Client
	endpoint string
	apiKey   string
}

// NewHuggingFaceClient creates a client authenticated with the given token.
func NewHuggingFaceClient(apiKey string) *HuggingFaceClient {
	return &HuggingFaceClient{
		http:     newHTTPClient(huggingFaceTimeout),
		endpoint: huggingFaceModelURL,
		apiKey:   apiKey,
	}
}

type hfCandidate struct {
	Label string   `json:"label"`
	Score *float64 `json:"score"`
}

// ClassifySentiment sends the text for inference and returns the top
// predicted label with its confidence. The inference API wraps candidates
// in either one or two levels of array depending on the model runtime, so
// both shapes are accepted.
func (c *HuggingFaceClient) ClassifySentiment(ctx context.Context, text string) (string, float64, error) {
	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader("Authorization", "Bearer "+c.apiKey).
		SetHeader("Content-Type", "application/json").
		SetBody(map[string]string{"inputs": text}).
		Post(c.endpoint)
	if err != nil {
		return "", 0, fmt.Errorf("huggingface inference: %w", err)
	}
	if resp.IsError() {
		return "", 0, statusError("huggingface", resp)
	}

	top, err := topCandidate(resp.Body())
	if err != nil {
		return "", 0, err
	}
	if top.Label == "" || top.Score == nil {
		return "", 0, fmt.Errorf("huggingface inference: %w: missing label or score", ErrMalformed)
	}

	return top.Label, *top.Score, nil
}

func topCandidate(body []byte) (hfCandidate, error) {
	var nested [][]hfCandidate
	if err := json.Unmarshal(body, &nested); err == nil {
		if len(nested) == 0 || len(nested[0]) == 0 {
			return hfCandidate{}, fmt.Errorf("huggingface inference: %w: empty result", ErrMalformed)
		}
		return nested[0][0], nil
	}

	var flat []hfCandidate
	if err := json.Unmarshal(body, &flat); err == nil {
		if len(flat) == 0 {
			return hfCandidate{}, fmt.Errorf("huggingface inference: %w: empty result", ErrMalformed)
		}
		return flat[0], nil
	}

	return hfCandidate{}, fmt.Errorf("huggingface inference: %w: unrecognized payload", ErrMalformed)
}
