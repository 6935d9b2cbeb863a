package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	apperrors "marketpulse/internal/errors"
	"marketpulse/internal/logger"
	"marketpulse/internal/models"
	"marketpulse/internal/providers"
)

const (
	defaultFromHours         = 48
	defaultMaxPerQuery       = 50
	defaultDedupeWindowHours = 7 * 24
	maxQueriesPerAsset       = 3
)

// FetchOptions bounds a single news ingestion call. Zero values fall back
// to the defaults above.
type FetchOptions struct {
	FromHours         int
	MaxPerQuery       int
	DedupeWindowHours int
}

func (o *FetchOptions) defaults() {
	if o.FromHours <= 0 {
		o.FromHours = defaultFromHours
	}
	if o.MaxPerQuery <= 0 {
		o.MaxPerQuery = defaultMaxPerQuery
	}
	if o.DedupeWindowHours <= 0 {
		o.DedupeWindowHours = defaultDedupeWindowHours
	}
}

// IngestResult aggregates the outcome of one ingestion call across all of
// its queries. Errors are informational: partial failures never abort the
// call.
type IngestResult struct {
	Saved   int                  `json:"saved"`
	Skipped int                  `json:"skipped"`
	Errors  []string             `json:"errors"`
	Items   []models.NewsArticle `json:"items"`
}

// newsService fetches, deduplicates and persists news articles per asset.
type newsService struct {
	db     *gorm.DB
	search SearchProvider // nil when no search credential is configured
}

// NewNewsService creates a new NewsServicer.
func NewNewsService(db *gorm.DB, search SearchProvider) NewsServicer {
	return &newsService{db: db, search: search}
}

// BuildAssetQueries derives up to three distinct search queries from the
// asset's symbol and name: a symbol-or-cashtag form, the quoted exact name,
// a combined form, and a bare first-two-words form for multi-word names.
// Duplicates are removed preserving order; forms whose inputs are missing
// are omitted.
func BuildAssetQueries(asset *models.Asset) []string {
	symbol := strings.TrimSpace(asset.Symbol)
	name := strings.TrimSpace(asset.Name)

	var candidates []string
	if symbol != "" {
		candidates = append(candidates, fmt.Sprintf(`%s OR "$%s"`, symbol, symbol))
	}
	if name != "" {
		candidates = append(candidates, fmt.Sprintf(`"%s"`, name))
	}
	if name != "" && symbol != "" {
		candidates = append(candidates, fmt.Sprintf(`("%s" OR %s)`, name, symbol))
	}
	if words := strings.Fields(name); len(words) > 1 {
		candidates = append(candidates, strings.Join(words[:2], " "))
	}

	seen := make(map[string]struct{}, len(candidates))
	queries := make([]string, 0, maxQueriesPerAsset)
	for _, q := range candidates {
		if _, ok := seen[q]; ok {
			continue
		}
		seen[q] = struct{}{}
		queries = append(queries, q)
		if len(queries) == maxQueriesPerAsset {
			break
		}
	}
	return queries
}

// FetchNews queries the search provider for recent articles about the
// asset, deduplicates against stored articles within the trailing dedupe
// window, and persists the survivors. Failures are isolated: a bad query or
// a bad article is recorded in the result and processing continues. Only a
// structurally invalid asset aborts the call.
func (s *newsService) FetchNews(ctx context.Context, asset *models.Asset, opts FetchOptions) (*IngestResult, error) {
	if asset == nil || asset.ID == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "Asset with identifier is required")
	}
	opts.defaults()

	result := &IngestResult{Errors: []string{}, Items: []models.NewsArticle{}}

	if s.search == nil {
		result.Errors = append(result.Errors, "news search provider not configured")
		return result, nil
	}

	log := logger.Get()
	since := time.Now().Add(-time.Duration(opts.FromHours) * time.Hour)
	dedupeCutoff := time.Now().Add(-time.Duration(opts.DedupeWindowHours) * time.Hour)

	for _, query := range BuildAssetQueries(asset) {
		articles, err := s.search.Everything(ctx, query, since, opts.MaxPerQuery)
		if err != nil {
			result.Errors = append(result.Errors, err.Error())
			if errors.Is(err, providers.ErrRateLimited) {
				// Stop hitting the provider for this asset this cycle.
				log.Warnw("news search rate limited", "asset", asset.Symbol, "query", query)
				break
			}
			log.Warnw("news search failed", "asset", asset.Symbol, "query", query, "error", err)
			continue
		}

		for _, raw := range articles {
			s.ingestCandidate(ctx, asset, raw, dedupeCutoff, result)
		}
	}

	return result, nil
}

// ingestCandidate validates, deduplicates and persists one candidate
// article, updating the running result.
func (s *newsService) ingestCandidate(ctx context.Context, asset *models.Asset, raw providers.RawArticle, dedupeCutoff time.Time, result *IngestResult) {
	if raw.Title == "" || raw.URL == "" {
		result.Skipped++
		return
	}

	// An article sharing a URL or a title with anything stored inside the
	// dedupe window is considered already seen.
	var count int64
	err := s.db.WithContext(ctx).
		Model(&models.NewsArticle{}).
		Where("(url = ? OR title = ?) AND fetched_at >= ?", raw.URL, raw.Title, dedupeCutoff).
		Count(&count).Error
	if err != nil {
		result.Errors = append(result.Errors, err.Error())
		return
	}
	if count > 0 {
		result.Skipped++
		return
	}

	article := normalizeArticle(asset.ID, raw)
	if err := s.db.WithContext(ctx).Create(&article).Error; err != nil {
		result.Errors = append(result.Errors, err.Error())
		return
	}

	result.Saved++
	result.Items = append(result.Items, article)
}

// normalizeArticle converts a raw search hit into a NewsArticle with all
// analysis fields at their unset zero values.
func normalizeArticle(assetID string, raw providers.RawArticle) models.NewsArticle {
	publishedAt := raw.PublishedAt
	if publishedAt.IsZero() {
		publishedAt = time.Now()
	}

	text := raw.Content
	if text == "" {
		text = raw.Description
	}

	return models.NewsArticle{
		AssetID:        assetID,
		PublishedAt:    publishedAt,
		Source:         raw.Source,
		Title:          raw.Title,
		URL:            raw.URL,
		Text:           text,
		SentimentLabel: models.SentimentUnset,
		FetchedAt:      time.Now(),
	}
}
