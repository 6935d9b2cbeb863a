package handlers

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	apperrors "marketpulse/internal/errors"
	"marketpulse/internal/logger"
	"marketpulse/internal/models"
	"marketpulse/internal/pagination"
	"marketpulse/internal/services"
)

// AssetHandler handles asset-related requests.
type AssetHandler struct {
	assetService services.AssetServicer
	priceService services.PriceServicer
}

// NewAssetHandler creates a new AssetHandler.
func NewAssetHandler(assetService services.AssetServicer, priceService services.PriceServicer) *AssetHandler {
	return &AssetHandler{assetService: assetService, priceService: priceService}
}

// CreateAssetRequest represents the request payload for creating an asset.
type CreateAssetRequest struct {
	Symbol     string               `json:"symbol" binding:"required,min=1,max=20"`
	Name       string               `json:"name" binding:"required,min=1,max=200"`
	AssetClass models.AssetClass    `json:"asset_class" binding:"required,asset_class"`
	Metadata   models.AssetMetadata `json:"metadata"`
	LastPrice  float64              `json:"last_price" binding:"omitempty,gte=0"`
}

// CreateAsset handles registering a new tracked asset.
func (h *AssetHandler) CreateAsset(c *gin.Context) {
	var req CreateAssetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	asset, err := h.assetService.CreateAsset(req.Symbol, req.Name, req.AssetClass, req.Metadata, req.LastPrice)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"asset": asset})
}

// ListAssets handles listing tracked assets.
func (h *AssetHandler) ListAssets(c *gin.Context) {
	var page pagination.PageRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	result, err := h.assetService.ListAssets(page)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetAsset handles fetching one asset plus its most recent news.
func (h *AssetHandler) GetAsset(c *gin.Context) {
	asset, err := h.assetService.GetAssetByID(c.Param("id"))
	if err != nil {
		respondWithError(c, err)
		return
	}

	recent, err := h.assetService.ListAssetNews(asset.ID, pagination.PageRequest{Page: 1, PageSize: 10})
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"asset": asset, "recent_news": recent.Data})
}

// GetAssetNews handles listing an asset's articles.
func (h *AssetHandler) GetAssetNews(c *gin.Context) {
	asset, err := h.assetService.GetAssetByID(c.Param("id"))
	if err != nil {
		respondWithError(c, err)
		return
	}

	var page pagination.PageRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	result, err := h.assetService.ListAssetNews(asset.ID, page)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetAssetPrice handles resolving an asset's price series over the
// requested trailing range (hours, default 24). The stored last-price
// update runs in the background; its failure only affects the next read.
func (h *AssetHandler) GetAssetPrice(c *gin.Context) {
	asset, err := h.assetService.GetAssetByID(c.Param("id"))
	if err != nil {
		respondWithError(c, err)
		return
	}

	rangeHours := 24
	if raw := c.Query("range"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "Invalid range"))
			return
		}
		rangeHours = parsed
	}

	res, err := h.priceService.Resolve(c.Request.Context(), asset, rangeHours)
	if err != nil {
		respondWithError(c, err)
		return
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := res.Apply(ctx); err != nil {
			logger.Get().Warnw("price persist failed", "asset", asset.Symbol, "error", err)
		}
	}()

	c.JSON(http.StatusOK, gin.H{
		"asset_id":    asset.ID,
		"symbol":      asset.Symbol,
		"asset_class": asset.AssetClass,
		"timeseries":  res.Series,
		"last_price":  res.LastPrice,
	})
}
