package services

import (
	"errors"
	"strings"

	"gorm.io/gorm"

	apperrors "marketpulse/internal/errors"
	"marketpulse/internal/models"
	"marketpulse/internal/pagination"
)

// assetService handles asset-related business logic.
type assetService struct {
	db *gorm.DB
}

// NewAssetService creates a new AssetServicer.
func NewAssetService(db *gorm.DB) AssetServicer {
	return &assetService{db: db}
}

// CreateAsset registers a new tracked instrument. Symbols are normalized to
// uppercase and must be unique per asset class.
func (s *assetService) CreateAsset(symbol, name string, class models.AssetClass, metadata models.AssetMetadata, lastPrice float64) (*models.Asset, error) {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	name = strings.TrimSpace(name)

	if symbol == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "Symbol is required")
	}
	if name == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "Name is required")
	}
	if class != models.AssetClassEquity && class != models.AssetClassCrypto {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "Asset class must be equity or crypto")
	}

	var count int64
	s.db.Model(&models.Asset{}).Where("symbol = ? AND asset_class = ?", symbol, class).Count(&count)
	if count > 0 {
		return nil, apperrors.ErrDuplicateAsset
	}

	asset := &models.Asset{
		Symbol:     symbol,
		AssetClass: class,
		Name:       name,
		Metadata:   metadata,
		LastPrice:  lastPrice,
	}
	if err := s.db.Create(asset).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	return asset, nil
}

// GetAssetByID returns an asset by its ID.
func (s *assetService) GetAssetByID(id string) (*models.Asset, error) {
	var asset models.Asset
	if err := s.db.First(&asset, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrAssetNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &asset, nil
}

// ListAssets returns a paginated list of assets, newest first.
func (s *assetService) ListAssets(page pagination.PageRequest) (*pagination.PageResponse[models.Asset], error) {
	page.Defaults()

	var totalItems int64
	base := s.db.Model(&models.Asset{})
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var assets []models.Asset
	if err := base.Order("created_at DESC").Scopes(pagination.Paginate(page)).Find(&assets).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(assets, page.Page, page.PageSize, totalItems)
	return &result, nil
}

// ListAllAssets returns every tracked asset without pagination. The batch
// scheduler iterates this set each cycle.
func (s *assetService) ListAllAssets() ([]models.Asset, error) {
	var assets []models.Asset
	if err := s.db.Order("symbol ASC").Find(&assets).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return assets, nil
}

// ListAssetNews returns a paginated list of the asset's articles ordered by
// publication time, newest first.
func (s *assetService) ListAssetNews(assetID string, page pagination.PageRequest) (*pagination.PageResponse[models.NewsArticle], error) {
	page.Defaults()

	var totalItems int64
	base := s.db.Model(&models.NewsArticle{}).Where("asset_id = ?", assetID)
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var articles []models.NewsArticle
	if err := base.Order("published_at DESC").Scopes(pagination.Paginate(page)).Find(&articles).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(articles, page.Page, page.PageSize, totalItems)
	return &result, nil
}
