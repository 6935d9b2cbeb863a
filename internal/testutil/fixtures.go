package testutil

import (
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"marketpulse/internal/models"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// counter provides unique values across fixtures within a test run.
var counter atomic.Int64

func nextID() int64 {
	return counter.Add(1)
}

// CreateTestUser creates a user with a hashed password and unique email.
func CreateTestUser(t *testing.T, db *gorm.DB) *models.User {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}

	user := &models.User{
		Email:    fmt.Sprintf("user%d@test.com", nextID()),
		Password: string(hash),
		IsActive: true,
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}
	return user
}

// CreateTestAsset creates an equity asset with a unique symbol.
func CreateTestAsset(t *testing.T, db *gorm.DB) *models.Asset {
	t.Helper()
	return CreateTestAssetWith(t, db, fmt.Sprintf("TST%d", nextID()), models.AssetClassEquity)
}

// CreateTestAssetWith creates an asset with the given symbol and class.
func CreateTestAssetWith(t *testing.T, db *gorm.DB, symbol string, class models.AssetClass) *models.Asset {
	t.Helper()

	asset := &models.Asset{
		Symbol:     symbol,
		AssetClass: class,
		Name:       fmt.Sprintf("Test Asset %d", nextID()),
	}
	if err := db.Create(asset).Error; err != nil {
		t.Fatalf("failed to create test asset: %v", err)
	}
	return asset
}

// CreateTestArticle creates an article for an asset, fetched now.
func CreateTestArticle(t *testing.T, db *gorm.DB, assetID string) *models.NewsArticle {
	t.Helper()

	n := nextID()
	article := &models.NewsArticle{
		AssetID:     assetID,
		PublishedAt: time.Now().Add(-time.Hour),
		Source:      "Test Wire",
		Title:       fmt.Sprintf("Test headline %d", n),
		URL:         fmt.Sprintf("https://example.com/articles/%d", n),
		Text:        "Some article body text.",
		FetchedAt:   time.Now(),
	}
	if err := db.Create(article).Error; err != nil {
		t.Fatalf("failed to create test article: %v", err)
	}
	return article
}
