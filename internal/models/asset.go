package models

import "time"

// AssetClass represents the category of a tracked instrument. It determines
// which price providers apply during resolution.
type AssetClass string

const (
	AssetClassEquity AssetClass = "equity"
	AssetClassCrypto AssetClass = "crypto"
)

// AssetMetadata carries optional provider-specific hints for an asset.
type AssetMetadata struct {
	// ProviderID is an external price-provider identifier (e.g. the
	// CoinGecko coin id "bitcoin" for symbol BTC).
	ProviderID string `json:"provider_id,omitempty"`
	// Aliases are extra names the asset is known by in news coverage.
	Aliases []string `json:"aliases,omitempty"`
}

// Asset represents a tracked financial instrument.
type Asset struct {
	Base
	Symbol      string        `gorm:"not null;uniqueIndex:uq_assets_symbol_class" json:"symbol"`
	AssetClass  AssetClass    `gorm:"not null;uniqueIndex:uq_assets_symbol_class" json:"asset_class"`
	Name        string        `gorm:"not null" json:"name"`
	Metadata    AssetMetadata `gorm:"serializer:json" json:"metadata"`
	LastPrice   float64       `gorm:"default:0" json:"last_price"`
	LastUpdated *time.Time    `json:"last_updated,omitempty"`
}
