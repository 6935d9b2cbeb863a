package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"marketpulse/internal/models"
	"marketpulse/internal/testutil"
)

type fakeSentimentProvider struct {
	label string
	score float64
	err   error
	calls int
}

func (f *fakeSentimentProvider) ClassifySentiment(_ context.Context, _ string) (string, float64, error) {
	f.calls++
	return f.label, f.score, f.err
}

type fakeLexicon struct {
	compound float64
	err      error
	calls    int
}

func (f *fakeLexicon) Compound(_ string) (float64, error) {
	f.calls++
	return f.compound, f.err
}

type fakeToxicityProvider struct {
	score float64
	err   error
	calls int
}

func (f *fakeToxicityProvider) AnalyzeToxicity(_ context.Context, _ string) (float64, error) {
	f.calls++
	return f.score, f.err
}

func TestAnalysisServiceClassifySentiment(t *testing.T) {
	ctx := context.Background()

	t.Run("empty_text_short_circuits", func(t *testing.T) {
		remote := &fakeSentimentProvider{}
		offline := &fakeLexicon{}
		service := NewAnalysisService(nil, remote, offline, nil)

		res := service.ClassifySentiment(ctx, "   ")
		if res.Score != 0.5 || res.Label != models.SentimentNeutral || res.Source != SourceEmpty {
			t.Errorf("unexpected result %+v", res)
		}
		if remote.calls != 0 || offline.calls != 0 {
			t.Error("expected no provider calls for empty text")
		}
	})

	t.Run("remote_label_mapping", func(t *testing.T) {
		cases := []struct {
			rawLabel string
			want     models.SentimentLabel
		}{
			{"POSITIVE", models.SentimentPositive},
			{"LABEL_positive", models.SentimentPositive},
			{"NEGATIVE", models.SentimentNegative},
			{"NEUTRAL", models.SentimentNeutral},
			{"whatever", models.SentimentNeutral},
		}
		for _, tc := range cases {
			remote := &fakeSentimentProvider{label: tc.rawLabel, score: 0.9}
			service := NewAnalysisService(nil, remote, &fakeLexicon{}, nil)

			res := service.ClassifySentiment(ctx, "great quarter")
			if res.Label != tc.want {
				t.Errorf("label %q: expected %q, got %q", tc.rawLabel, tc.want, res.Label)
			}
			if res.Source != SourceRemote {
				t.Errorf("label %q: expected remote source, got %q", tc.rawLabel, res.Source)
			}
			if res.Score != 0.9 {
				t.Errorf("label %q: expected score 0.9, got %f", tc.rawLabel, res.Score)
			}
		}
	})

	t.Run("remote_failure_falls_back_offline", func(t *testing.T) {
		remote := &fakeSentimentProvider{err: errors.New("model loading")}
		offline := &fakeLexicon{compound: 0.8}
		service := NewAnalysisService(nil, remote, offline, nil)

		res := service.ClassifySentiment(ctx, "stellar earnings beat")
		if res.Source != SourceOffline {
			t.Fatalf("expected offline source, got %q", res.Source)
		}
		if res.Score != 0.9 {
			t.Errorf("expected compound 0.8 mapped to 0.9, got %f", res.Score)
		}
		if res.Label != models.SentimentPositive {
			t.Errorf("expected positive label, got %q", res.Label)
		}
	})

	t.Run("offline_thresholds", func(t *testing.T) {
		cases := []struct {
			compound float64
			want     models.SentimentLabel
		}{
			{0.9, models.SentimentPositive},
			{0.2, models.SentimentPositive}, // maps to 0.6, at the threshold
			{0.0, models.SentimentNeutral},
			{-0.3, models.SentimentNegative},
		}
		for _, tc := range cases {
			service := NewAnalysisService(nil, nil, &fakeLexicon{compound: tc.compound}, nil)
			res := service.ClassifySentiment(ctx, "some text")
			if res.Label != tc.want {
				t.Errorf("compound %f: expected %q, got %q", tc.compound, tc.want, res.Label)
			}
			testutil.AssertInUnitRange(t, "sentiment score", res.Score)
		}
	})

	t.Run("offline_error_yields_neutral_marker", func(t *testing.T) {
		offline := &fakeLexicon{err: errors.New("lexicon broken")}
		service := NewAnalysisService(nil, nil, offline, nil)

		res := service.ClassifySentiment(ctx, "some text")
		if res.Score != 0.5 || res.Label != models.SentimentNeutral || res.Source != SourceOfflineError {
			t.Errorf("unexpected result %+v", res)
		}
	})

	t.Run("no_analyzers_at_all", func(t *testing.T) {
		service := NewAnalysisService(nil, nil, nil, nil)

		res := service.ClassifySentiment(ctx, "some text")
		if res.Score != 0.5 || res.Source != SourceOfflineError {
			t.Errorf("unexpected result %+v", res)
		}
	})
}

func TestAnalysisServiceClassifyToxicity(t *testing.T) {
	ctx := context.Background()

	t.Run("not_configured", func(t *testing.T) {
		service := NewAnalysisService(nil, nil, nil, nil)

		_, err := service.ClassifyToxicity(ctx, "some text")
		testutil.AssertAppError(t, err, "PROVIDER_NOT_CONFIGURED")
	})

	t.Run("empty_text_scores_zero_without_provider", func(t *testing.T) {
		service := NewAnalysisService(nil, nil, nil, nil)

		res, err := service.ClassifyToxicity(ctx, "   ")
		testutil.AssertNoError(t, err)
		if res.Score != 0 || res.Source != SourceEmpty {
			t.Errorf("unexpected result %+v", res)
		}
	})

	t.Run("empty_text_skips_provider", func(t *testing.T) {
		tox := &fakeToxicityProvider{}
		service := NewAnalysisService(nil, nil, nil, tox)

		res, err := service.ClassifyToxicity(ctx, "  ")
		testutil.AssertNoError(t, err)
		if res.Score != 0 || res.Source != SourceEmpty {
			t.Errorf("unexpected result %+v", res)
		}
		if tox.calls != 0 {
			t.Error("expected no provider call for empty text")
		}
	})

	t.Run("scores_via_provider", func(t *testing.T) {
		tox := &fakeToxicityProvider{score: 0.73}
		service := NewAnalysisService(nil, nil, nil, tox)

		res, err := service.ClassifyToxicity(ctx, "you absolute disgrace")
		testutil.AssertNoError(t, err)
		if res.Score != 0.73 || res.Source != SourceToxicity {
			t.Errorf("unexpected result %+v", res)
		}
	})

	t.Run("provider_failure_carries_detail", func(t *testing.T) {
		tox := &fakeToxicityProvider{err: errors.New("quota exceeded")}
		service := NewAnalysisService(nil, nil, nil, tox)

		_, err := service.ClassifyToxicity(ctx, "some text")
		testutil.AssertAppError(t, err, "PROVIDER_UNAVAILABLE")
		if got := err.Error(); got != "Toxicity analysis failed: quota exceeded" {
			t.Errorf("expected the provider detail in the message, got %q", got)
		}
	})
}

func TestAnalysisServiceAnalyzeArticle(t *testing.T) {
	ctx := context.Background()

	t.Run("unknown_article", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)

		service := NewAnalysisService(db, nil, &fakeLexicon{}, nil)
		_, err := service.AnalyzeArticle(ctx, "missing-id")
		testutil.AssertAppError(t, err, "ARTICLE_NOT_FOUND")
	})

	t.Run("scores_and_persists", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)

		asset := testutil.CreateTestAssetWith(t, db, "AAPL", models.AssetClassEquity)
		article := testutil.CreateTestArticle(t, db, asset.ID)

		remote := &fakeSentimentProvider{label: "positive", score: 0.85}
		tox := &fakeToxicityProvider{score: 0.1}
		service := NewAnalysisService(db, remote, &fakeLexicon{}, tox)

		got, err := service.AnalyzeArticle(ctx, article.ID)
		testutil.AssertNoError(t, err)
		if got.SentimentScore != 0.85 || got.SentimentLabel != models.SentimentPositive {
			t.Errorf("unexpected sentiment %f/%q", got.SentimentScore, got.SentimentLabel)
		}
		if got.Toxicity != 0.1 {
			t.Errorf("expected toxicity 0.1, got %f", got.Toxicity)
		}
		testutil.AssertInUnitRange(t, "relevance", got.Relevance)

		var stored models.NewsArticle
		testutil.AssertNoError(t, db.First(&stored, "id = ?", article.ID).Error)
		if stored.SentimentScore != 0.85 || stored.Toxicity != 0.1 {
			t.Errorf("expected scores persisted, got %f/%f", stored.SentimentScore, stored.Toxicity)
		}
	})

	t.Run("empty_body_falls_back_to_title", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)

		asset := testutil.CreateTestAssetWith(t, db, "MSFT", models.AssetClassEquity)

		article := models.NewsArticle{
			AssetID:     asset.ID,
			Title:       "A truly wonderful quarter",
			URL:         "https://example.com/empty-body",
			FetchedAt:   time.Now(),
			PublishedAt: time.Now(),
		}
		testutil.AssertNoError(t, db.Create(&article).Error)

		offline := &fakeLexicon{compound: 0.9}
		service := NewAnalysisService(db, nil, offline, nil)

		got, err := service.AnalyzeArticle(ctx, article.ID)
		testutil.AssertNoError(t, err)
		if offline.calls != 1 {
			t.Fatalf("expected the title to be analyzed, got %d calls", offline.calls)
		}
		if got.SentimentLabel != models.SentimentPositive {
			t.Errorf("expected positive sentiment from the title, got %q", got.SentimentLabel)
		}
	})

	t.Run("toxicity_failure_aborts", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)

		asset := testutil.CreateTestAsset(t, db)
		article := testutil.CreateTestArticle(t, db, asset.ID)

		tox := &fakeToxicityProvider{err: errors.New("boom")}
		service := NewAnalysisService(db, nil, &fakeLexicon{}, tox)

		_, err := service.AnalyzeArticle(ctx, article.ID)
		testutil.AssertAppError(t, err, "PROVIDER_UNAVAILABLE")
	})
}
