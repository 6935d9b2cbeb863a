// Package scheduler drives the unattended batch pipelines: a periodic price
// refresh and a periodic news refresh over every tracked asset. The two
// jobs run on independent intervals and never overlap themselves — a tick
// that fires while the previous run of the same job is still in flight is
// skipped.
package scheduler

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"marketpulse/internal/logger"
	"marketpulse/internal/models"
	"marketpulse/internal/services"
)

const priceRangeHours = 24

// Scheduler coordinates the periodic batch jobs.
type Scheduler struct {
	cron    *cron.Cron
	assets  services.AssetServicer
	prices  services.PriceServicer
	news    services.NewsServicer
	limiter *rate.Limiter
	log     *zap.SugaredLogger

	priceInterval time.Duration
	newsInterval  time.Duration
}

// Options configures scheduler intervals and pacing.
type Options struct {
	PriceInterval time.Duration
	NewsInterval  time.Duration
	// PacingRPS bounds how many assets per second a cycle touches. Tests
	// inject rate.Inf through it to run cycles without wall-clock delays.
	PacingRPS float64
}

// New creates a scheduler over the given services.
func New(assets services.AssetServicer, prices services.PriceServicer, news services.NewsServicer, opts Options) *Scheduler {
	if opts.PriceInterval <= 0 {
		opts.PriceInterval = 10 * time.Minute
	}
	if opts.NewsInterval <= 0 {
		opts.NewsInterval = 20 * time.Minute
	}
	if opts.PacingRPS <= 0 {
		opts.PacingRPS = 10
	}

	log := logger.Get()
	cronLog := &cronLogger{log: log}

	return &Scheduler{
		cron: cron.New(cron.WithChain(
			cron.SkipIfStillRunning(cronLog),
			cron.Recover(cronLog),
		)),
		assets:        assets,
		prices:        prices,
		news:          news,
		limiter:       rate.NewLimiter(rate.Limit(opts.PacingRPS), 1),
		log:           log,
		priceInterval: opts.PriceInterval,
		newsInterval:  opts.NewsInterval,
	}
}

// Start registers both jobs and begins ticking.
func (s *Scheduler) Start() error {
	if _, err := s.cron.AddFunc("@every "+s.priceInterval.String(), func() {
		s.RunPriceCycle(context.Background())
	}); err != nil {
		return err
	}
	if _, err := s.cron.AddFunc("@every "+s.newsInterval.String(), func() {
		s.RunNewsCycle(context.Background())
	}); err != nil {
		return err
	}

	s.cron.Start()
	s.log.Infow("scheduler started",
		"price_interval", s.priceInterval.String(),
		"news_interval", s.newsInterval.String(),
	)
	return nil
}

// Stop halts the timers and waits for any in-flight run to finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	s.log.Info("scheduler stopped")
}

// RunPriceCycle resolves and persists prices for every tracked asset. A
// failing asset is logged and skipped; the cycle always visits the rest.
func (s *Scheduler) RunPriceCycle(ctx context.Context) {
	started := time.Now()
	s.log.Infow("price cycle started", "at", started)

	assets, err := s.assets.ListAllAssets()
	if err != nil {
		s.log.Errorw("price cycle: listing assets failed", "error", err)
		return
	}

	updated, failed := 0, 0
	s.forEachPaced(ctx, assets, func(asset *models.Asset) {
		res, err := s.prices.Resolve(ctx, asset, priceRangeHours)
		if err != nil {
			failed++
			s.log.Warnw("price refresh failed", "symbol", asset.Symbol, "error", err)
			return
		}
		if err := res.Apply(ctx); err != nil {
			failed++
			s.log.Warnw("price persist failed", "symbol", asset.Symbol, "error", err)
			return
		}
		updated++
	})

	s.log.Infow("price cycle finished",
		"assets", len(assets),
		"updated", updated,
		"failed", failed,
		"elapsed_ms", time.Since(started).Milliseconds(),
	)
}

// RunNewsCycle ingests fresh news for every tracked asset with the same
// per-asset failure isolation as the price cycle.
func (s *Scheduler) RunNewsCycle(ctx context.Context) {
	started := time.Now()
	s.log.Infow("news cycle started", "at", started)

	assets, err := s.assets.ListAllAssets()
	if err != nil {
		s.log.Errorw("news cycle: listing assets failed", "error", err)
		return
	}

	saved, skipped, failed := 0, 0, 0
	s.forEachPaced(ctx, assets, func(asset *models.Asset) {
		res, err := s.news.FetchNews(ctx, asset, services.FetchOptions{})
		if err != nil {
			failed++
			s.log.Warnw("news fetch failed", "symbol", asset.Symbol, "error", err)
			return
		}
		saved += res.Saved
		skipped += res.Skipped
		if len(res.Errors) > 0 {
			s.log.Warnw("news fetch partial errors", "symbol", asset.Symbol, "errors", res.Errors)
		}
	})

	s.log.Infow("news cycle finished",
		"assets", len(assets),
		"saved", saved,
		"skipped", skipped,
		"failed", failed,
		"elapsed_ms", time.Since(started).Milliseconds(),
	)
}

// forEachPaced visits assets sequentially, waiting on the pacing limiter
// between items so outbound request bursts stay polite.
func (s *Scheduler) forEachPaced(ctx context.Context, assets []models.Asset, fn func(*models.Asset)) {
	for i := range assets {
		if err := s.limiter.Wait(ctx); err != nil {
			s.log.Warnw("cycle aborted", "error", err)
			return
		}
		fn(&assets[i])
	}
}

// cronLogger adapts the zap sugared logger to the cron.Logger interface.
type cronLogger struct {
	log *zap.SugaredLogger
}

func (c *cronLogger) Info(msg string, keysAndValues ...interface{}) {
	c.log.Infow("cron: "+msg, keysAndValues...)
}

func (c *cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	c.log.Errorw("cron: "+msg, append(keysAndValues, "error", err)...)
}
