package handlers

import (
	"context"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"

	apperrors "marketpulse/internal/errors"
	"marketpulse/internal/models"
	"marketpulse/internal/services"
)

type mockAnalysisService struct {
	analyzeArticleFn func(ctx context.Context, articleID string) (*models.NewsArticle, error)
}

func (m *mockAnalysisService) ClassifySentiment(context.Context, string) services.AnalysisResult {
	return services.AnalysisResult{}
}

func (m *mockAnalysisService) ClassifyToxicity(context.Context, string) (services.AnalysisResult, error) {
	return services.AnalysisResult{}, nil
}

func (m *mockAnalysisService) AnalyzeArticle(ctx context.Context, articleID string) (*models.NewsArticle, error) {
	if m.analyzeArticleFn != nil {
		return m.analyzeArticleFn(ctx, articleID)
	}
	return &models.NewsArticle{}, nil
}

func setupNewsRouter(analysis *mockAnalysisService) *gin.Engine {
	h := NewNewsHandler(analysis)

	r := gin.New()
	r.POST("/news/:id/analyze", h.AnalyzeArticle)
	return r
}

func TestAnalyzeArticle(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		analysis := &mockAnalysisService{
			analyzeArticleFn: func(_ context.Context, articleID string) (*models.NewsArticle, error) {
				return &models.NewsArticle{
					Title:          "Some headline",
					SentimentScore: 0.9,
					SentimentLabel: models.SentimentPositive,
				}, nil
			},
		}
		r := setupNewsRouter(analysis)

		rec := doJSONRequest(r, http.MethodPost, "/news/article-1/analyze", "")
		if rec.Code != http.StatusOK {
			t.Errorf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
	})

	t.Run("unknown_article", func(t *testing.T) {
		analysis := &mockAnalysisService{
			analyzeArticleFn: func(context.Context, string) (*models.NewsArticle, error) {
				return nil, apperrors.ErrArticleNotFound
			},
		}
		r := setupNewsRouter(analysis)

		rec := doJSONRequest(r, http.MethodPost, "/news/missing/analyze", "")
		if rec.Code != http.StatusNotFound {
			t.Errorf("expected 404, got %d", rec.Code)
		}
	})

	t.Run("toxicity_provider_down", func(t *testing.T) {
		analysis := &mockAnalysisService{
			analyzeArticleFn: func(context.Context, string) (*models.NewsArticle, error) {
				return nil, apperrors.ErrProviderUnavailable
			},
		}
		r := setupNewsRouter(analysis)

		rec := doJSONRequest(r, http.MethodPost, "/news/article-1/analyze", "")
		if rec.Code != http.StatusBadGateway {
			t.Errorf("expected 502, got %d", rec.Code)
		}
	})
}
