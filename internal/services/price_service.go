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

// PriceResolution is the outcome of resolving one asset's price series.
// Persisting the latest point onto the asset is a deliberate, separate step:
// callers invoke Apply when they want the stored last-price updated, so the
// side effect is never hidden inside a read path.
type PriceResolution struct {
	Series    providers.PriceSeries
	LastPrice float64

	apply func(ctx context.Context) error
}

// Apply persists the resolution's last price and timestamp onto the asset.
func (r *PriceResolution) Apply(ctx context.Context) error {
	return r.apply(ctx)
}

// NewPriceResolution builds a resolution around an explicit persistence step.
func NewPriceResolution(series providers.PriceSeries, lastPrice float64, apply func(context.Context) error) *PriceResolution {
	return &PriceResolution{Series: series, LastPrice: lastPrice, apply: apply}
}

// priceService resolves normalized price timeseries from the provider
// chain appropriate to each asset class.
type priceService struct {
	db *gorm.DB

	crypto  MarketChartProvider
	equity  EquityHistoryProvider // nil when no primary credential is configured
	quoteFB QuoteProvider         // nil when no secondary credential is configured
}

// NewPriceService creates a new PriceServicer. equity and quoteFB may be nil
// when the corresponding provider credential is absent; the resolver
// degrades through the remaining tiers.
func NewPriceService(db *gorm.DB, crypto MarketChartProvider, equity EquityHistoryProvider, quoteFB QuoteProvider) PriceServicer {
	return &priceService{db: db, crypto: crypto, equity: equity, quoteFB: quoteFB}
}

// Resolve produces a price series covering roughly the trailing rangeHours
// for the asset, together with its latest price.
func (s *priceService) Resolve(ctx context.Context, asset *models.Asset, rangeHours int) (*PriceResolution, error) {
	if asset == nil || asset.ID == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "Asset with identifier is required")
	}
	if rangeHours <= 0 {
		rangeHours = 24
	}

	switch asset.AssetClass {
	case models.AssetClassCrypto:
		return s.resolveCrypto(ctx, asset, rangeHours)
	case models.AssetClassEquity:
		return s.resolveEquity(ctx, asset, rangeHours)
	default:
		return nil, apperrors.WithMessage(apperrors.ErrUnsupportedAssetClass,
			fmt.Sprintf("Unsupported asset class %q", asset.AssetClass))
	}
}

// resolveCrypto queries the market-chart provider using the asset's
// provider-specific id, falling back to the lowercased symbol.
func (s *priceService) resolveCrypto(ctx context.Context, asset *models.Asset, rangeHours int) (*PriceResolution, error) {
	if s.crypto == nil {
		return nil, apperrors.WithMessage(apperrors.ErrProviderUnavailable, "No crypto price provider configured")
	}

	coinID := asset.Metadata.ProviderID
	if coinID == "" {
		coinID = strings.ToLower(asset.Symbol)
	}
	days := (rangeHours + 23) / 24

	series, err := s.crypto.MarketChart(ctx, coinID, days)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrProviderUnavailable, err)
	}

	cutoff := time.Now().Add(-time.Duration(rangeHours) * time.Hour)
	windowed := series.Since(cutoff)

	lastPrice, at := asset.LastPrice, time.Now()
	if last, ok := windowed.Last(); ok {
		lastPrice, at = last.Price, last.At
	}

	return s.resolution(asset, windowed, lastPrice, at), nil
}

// resolveEquity walks the fallback chain: primary quote, primary daily
// history (preferred when usable), secondary quote, and finally the asset's
// stored last price. Once at least one equity provider is configured this
// path cannot fail: the terminal tier always produces a series.
func (s *priceService) resolveEquity(ctx context.Context, asset *models.Asset, rangeHours int) (*PriceResolution, error) {
	if s.equity == nil && s.quoteFB == nil {
		return nil, apperrors.WithMessage(apperrors.ErrProviderUnavailable, "No equity price provider configured")
	}

	log := logger.Get()
	symbol := strings.ToUpper(asset.Symbol)

	if s.equity != nil {
		quotePrice, haveQuote := 0.0, false
		if p, err := s.equity.GlobalQuote(ctx, symbol); err != nil {
			log.Warnw("equity quote failed", "symbol", symbol, "error", err)
		} else {
			quotePrice, haveQuote = p, true
		}

		series, err := s.equity.DailySeries(ctx, symbol)
		if err != nil {
			log.Warnw("equity daily history failed", "symbol", symbol, "error", err)
		} else if len(series) > 0 {
			cutoff := time.Now().Add(-time.Duration(rangeHours) * time.Hour)
			windowed := series.Since(cutoff)

			lastPrice, at := quotePrice, time.Now()
			if !haveQuote {
				lastPrice = asset.LastPrice
			}
			if last, ok := windowed.Last(); ok {
				lastPrice, at = last.Price, last.At
			}
			return s.resolution(asset, windowed, lastPrice, at), nil
		}

		// History unusable; a successful quote still yields a one-point series.
		if haveQuote {
			now := time.Now()
			series := providers.PriceSeries{{At: now, Price: quotePrice}}
			return s.resolution(asset, series, quotePrice, now), nil
		}
	}

	if s.quoteFB != nil {
		price, err := s.quoteFB.Quote(ctx, symbol)
		if err == nil {
			now := time.Now()
			series := providers.PriceSeries{{At: now, Price: price}}
			return s.resolution(asset, series, price, now), nil
		}
		if errors.Is(err, providers.ErrRateLimited) {
			// Do not retry within this call; the next scheduled cycle will.
			log.Warnw("secondary quote provider rate limited", "symbol", symbol)
		} else {
			log.Warnw("secondary quote failed", "symbol", symbol, "error", err)
		}
	}

	// Terminal tier: the stored last price as a single point.
	now := time.Now()
	series := providers.PriceSeries{{At: now, Price: asset.LastPrice}}
	return s.resolution(asset, series, asset.LastPrice, now), nil
}

// resolution builds the result with its deferred persistence step.
func (s *priceService) resolution(asset *models.Asset, series providers.PriceSeries, lastPrice float64, at time.Time) *PriceResolution {
	assetID := asset.ID
	return &PriceResolution{
		Series:    series,
		LastPrice: lastPrice,
		apply: func(ctx context.Context) error {
			return s.updateAssetLastPrice(ctx, assetID, lastPrice, at)
		},
	}
}

// updateAssetLastPrice writes the latest observed price onto the asset.
func (s *priceService) updateAssetLastPrice(ctx context.Context, assetID string, price float64, at time.Time) error {
	err := s.db.WithContext(ctx).
		Model(&models.Asset{}).
		Where("id = ?", assetID).
		Updates(map[string]interface{}{"last_price": price, "last_updated": at}).Error
	if err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}
