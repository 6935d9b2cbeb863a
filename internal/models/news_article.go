package models

import "time"

// SentimentLabel is the categorical sentiment of an article.
// The empty string means the article has not been classified yet.
type SentimentLabel string

const (
	SentimentPositive SentimentLabel = "pos"
	SentimentNegative SentimentLabel = "neg"
	SentimentNeutral  SentimentLabel = "neutral"
	SentimentUnset    SentimentLabel = ""
)

// NewsArticle represents one fetched news item tied to an asset.
// Sentiment, toxicity and relevance start at their zero values and are
// filled in by later analysis passes; each pass is idempotent and may be
// re-run at any time.
type NewsArticle struct {
	Base
	AssetID        string         `gorm:"type:uuid;not null;index" json:"asset_id"`
	PublishedAt    time.Time      `gorm:"not null" json:"published_at"`
	Source         string         `json:"source"`
	Title          string         `gorm:"not null" json:"title"`
	URL            string         `gorm:"not null" json:"url"`
	Text           string         `json:"text"`
	SentimentScore float64        `gorm:"default:0" json:"sentiment_score"`
	SentimentLabel SentimentLabel `gorm:"default:''" json:"sentiment_label"`
	Toxicity       float64        `gorm:"default:0" json:"toxicity"`
	Relevance      float64        `gorm:"default:0" json:"relevance"`
	FetchedAt      time.Time      `gorm:"not null;index" json:"fetched_at"`
	Asset          Asset          `gorm:"foreignKey:AssetID" json:"asset,omitempty"`
}
