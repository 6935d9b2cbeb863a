package services

import (
	"context"
	"errors"
	"strings"

	"github.com/jonreiter/govader"
	"gorm.io/gorm"

	apperrors "marketpulse/internal/errors"
	"marketpulse/internal/logger"
	"marketpulse/internal/models"
)

// Sentiment classification thresholds on the [0,1] scale.
const (
	positiveThreshold = 0.6
	negativeThreshold = 0.4
)

// Result source markers identify which provider in the chain produced a
// score.
const (
	SourceEmpty        = "empty"
	SourceRemote       = "huggingface"
	SourceOffline      = "offline"
	SourceOfflineError = "offline-error"
	SourceToxicity     = "perspective"
)

// AnalysisResult is the ephemeral outcome of one scoring call. It is never
// persisted as its own entity, only folded into NewsArticle fields.
type AnalysisResult struct {
	Score  float64               `json:"score"`
	Label  models.SentimentLabel `json:"label"`
	Source string                `json:"source"`
}

// analysisService chains the scoring providers: remote sentiment inference
// with an offline lexicon fallback, and a remote-only toxicity scorer.
type analysisService struct {
	db       *gorm.DB
	remote   SentimentProvider // nil when no inference credential is configured
	offline  LexiconAnalyzer
	toxicity ToxicityProvider // nil when no toxicity credential is configured
}

// NewAnalysisService creates a new AnalysisServicer. remote and toxicity
// may be nil; the sentiment path degrades to the offline analyzer and the
// toxicity path reports itself unconfigured.
func NewAnalysisService(db *gorm.DB, remote SentimentProvider, offline LexiconAnalyzer, toxicity ToxicityProvider) AnalysisServicer {
	return &analysisService{db: db, remote: remote, offline: offline, toxicity: toxicity}
}

// VaderAnalyzer adapts the govader lexicon analyzer to the LexiconAnalyzer
// contract.
type VaderAnalyzer struct {
	analyzer *govader.SentimentIntensityAnalyzer
}

// NewVaderAnalyzer creates the offline sentiment analyzer.
func NewVaderAnalyzer() *VaderAnalyzer {
	return &VaderAnalyzer{analyzer: govader.NewSentimentIntensityAnalyzer()}
}

// Compound returns the compound polarity of the text in [-1, 1].
func (v *VaderAnalyzer) Compound(text string) (float64, error) {
	return v.analyzer.PolarityScores(text).Compound, nil
}

// ClassifySentiment scores the text's sentiment. Every code path terminates
// in a usable result: empty text short-circuits, remote failures fall
// through to the offline analyzer, and an unusable offline analyzer yields
// a neutral result with an error marker.
func (s *analysisService) ClassifySentiment(ctx context.Context, text string) AnalysisResult {
	if strings.TrimSpace(text) == "" {
		return AnalysisResult{Score: 0.5, Label: models.SentimentNeutral, Source: SourceEmpty}
	}

	if s.remote != nil {
		res, err := s.classifyRemote(ctx, text)
		if err == nil {
			return res
		}
		logger.Get().Warnw("remote sentiment failed, falling back to offline", "error", err)
	}

	return s.classifyOffline(text)
}

func (s *analysisService) classifyRemote(ctx context.Context, text string) (AnalysisResult, error) {
	rawLabel, score, err := s.remote.ClassifySentiment(ctx, text)
	if err != nil {
		return AnalysisResult{}, err
	}

	label := models.SentimentNeutral
	lower := strings.ToLower(rawLabel)
	switch {
	case strings.Contains(lower, "pos"):
		label = models.SentimentPositive
	case strings.Contains(lower, "neg"):
		label = models.SentimentNegative
	}

	return AnalysisResult{Score: clamp01(score), Label: label, Source: SourceRemote}, nil
}

func (s *analysisService) classifyOffline(text string) AnalysisResult {
	neutral := AnalysisResult{Score: 0.5, Label: models.SentimentNeutral, Source: SourceOfflineError}
	if s.offline == nil {
		return neutral
	}

	compound, err := s.offline.Compound(text)
	if err != nil {
		return neutral
	}

	// Map the analyzer's [-1,1] comparative range onto [0,1].
	score := (clamp(compound, -1, 1) + 1) / 2

	label := models.SentimentNeutral
	switch {
	case score >= positiveThreshold:
		label = models.SentimentPositive
	case score < negativeThreshold:
		label = models.SentimentNegative
	}

	return AnalysisResult{Score: score, Label: label, Source: SourceOffline}
}

// ClassifyToxicity scores the text's toxicity via the remote provider.
// Unlike sentiment there is no offline fallback, so failures propagate with
// the provider's error detail attached.
func (s *analysisService) ClassifyToxicity(ctx context.Context, text string) (AnalysisResult, error) {
	// Empty text scores zero even when no provider is configured.
	if strings.TrimSpace(text) == "" {
		return AnalysisResult{Score: 0, Label: models.SentimentUnset, Source: SourceEmpty}, nil
	}

	if s.toxicity == nil {
		return AnalysisResult{}, apperrors.ErrProviderNotConfigured
	}

	score, err := s.toxicity.AnalyzeToxicity(ctx, text)
	if err != nil {
		wrapped := apperrors.Wrap(apperrors.ErrProviderUnavailable, err)
		return AnalysisResult{}, apperrors.WithMessage(wrapped, "Toxicity analysis failed: "+err.Error())
	}

	return AnalysisResult{Score: clamp01(score), Label: models.SentimentUnset, Source: SourceToxicity}, nil
}

// AnalyzeArticle runs the full on-demand scoring pass over one stored
// article: sentiment (never fails), relevance against the owning asset,
// and toxicity when a provider is configured. Scores are written back
// idempotently; re-running simply overwrites them.
func (s *analysisService) AnalyzeArticle(ctx context.Context, articleID string) (*models.NewsArticle, error) {
	var article models.NewsArticle
	if err := s.db.WithContext(ctx).First(&article, "id = ?", articleID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrArticleNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var asset models.Asset
	if err := s.db.WithContext(ctx).First(&asset, "id = ?", article.AssetID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrAssetNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	// Empty bodies fall back to the title for analysis.
	text := article.Text
	if strings.TrimSpace(text) == "" {
		text = article.Title
	}

	sentiment := s.ClassifySentiment(ctx, text)
	article.SentimentScore = sentiment.Score
	article.SentimentLabel = sentiment.Label

	article.Relevance = ComputeRelevance(&asset, &article)

	if s.toxicity != nil {
		tox, err := s.ClassifyToxicity(ctx, text)
		if err != nil {
			return nil, err
		}
		article.Toxicity = tox.Score
	}

	if err := s.db.WithContext(ctx).Save(&article).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &article, nil
}
