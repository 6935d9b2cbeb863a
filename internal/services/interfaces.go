package services

import (
	"context"
	"time"

	"marketpulse/internal/models"
	"marketpulse/internal/pagination"
	"marketpulse/internal/providers"
)

// MarketChartProvider supplies day-granularity crypto price history.
type MarketChartProvider interface {
	MarketChart(ctx context.Context, coinID string, days int) (providers.PriceSeries, error)
}

// EquityHistoryProvider is the primary equity source: a fast current quote
// plus full daily history.
type EquityHistoryProvider interface {
	GlobalQuote(ctx context.Context, symbol string) (float64, error)
	DailySeries(ctx context.Context, symbol string) (providers.PriceSeries, error)
}

// QuoteProvider is the secondary equity source, current quote only.
type QuoteProvider interface {
	Quote(ctx context.Context, symbol string) (float64, error)
}

// SearchProvider finds candidate news articles for a query.
type SearchProvider interface {
	Everything(ctx context.Context, query string, since time.Time, pageSize int) ([]providers.RawArticle, error)
}

// SentimentProvider runs remote sentiment inference.
type SentimentProvider interface {
	ClassifySentiment(ctx context.Context, text string) (label string, score float64, err error)
}

// ToxicityProvider scores text toxicity remotely.
type ToxicityProvider interface {
	AnalyzeToxicity(ctx context.Context, text string) (float64, error)
}

// LexiconAnalyzer is the offline sentiment fallback. Compound returns a
// score in roughly [-1, 1].
type LexiconAnalyzer interface {
	Compound(text string) (float64, error)
}

// PriceServicer defines the contract for price timeseries resolution.
type PriceServicer interface {
	Resolve(ctx context.Context, asset *models.Asset, rangeHours int) (*PriceResolution, error)
}

// NewsServicer defines the contract for news ingestion.
type NewsServicer interface {
	FetchNews(ctx context.Context, asset *models.Asset, opts FetchOptions) (*IngestResult, error)
}

// AnalysisServicer defines the contract for text scoring and ad-hoc
// article analysis.
type AnalysisServicer interface {
	ClassifySentiment(ctx context.Context, text string) AnalysisResult
	ClassifyToxicity(ctx context.Context, text string) (AnalysisResult, error)
	AnalyzeArticle(ctx context.Context, articleID string) (*models.NewsArticle, error)
}

// AssetServicer defines the contract for asset-related business logic.
type AssetServicer interface {
	CreateAsset(symbol, name string, class models.AssetClass, metadata models.AssetMetadata, lastPrice float64) (*models.Asset, error)
	GetAssetByID(id string) (*models.Asset, error)
	ListAssets(page pagination.PageRequest) (*pagination.PageResponse[models.Asset], error)
	ListAllAssets() ([]models.Asset, error)
	ListAssetNews(assetID string, page pagination.PageRequest) (*pagination.PageResponse[models.NewsArticle], error)
}

// UserServicer defines the contract for user-related business logic.
type UserServicer interface {
	CreateUser(email, password string) (*models.User, error)
	AttemptLogin(email, password string) (*models.User, error)
	GetUserByID(id string) (*models.User, error)
	StoreRefreshTokenHash(userID, tokenHash string) error
	GetRefreshTokenHash(userID string) (string, error)
}
