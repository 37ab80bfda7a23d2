package catalog

import (
	"testing"
	"time"

	"crazygels/internal/database"
	"crazygels/internal/logger"
	"crazygels/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func testDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	return db
}

func seedAnon(t *testing.T, db *gorm.DB, hash, name, category string, efficacy models.JSONMap) {
	t.Helper()
	anon := models.AnonymisedProduct{
		ProductHash:     hash,
		Category:        category,
		NameClean:       name,
		BrandType:       "masstige",
		PriceTier:       "mid",
		EfficacySignals: efficacy,
		AcquisitionLead: "lead" + hash[:8],
		LastUpdated:     time.Now(),
	}
	require.NoError(t, db.Create(&anon).Error)
}

func TestPromoterPromotesNewProducts(t *testing.T) {
	db := testDB(t)
	p := NewPromoter(db, logger.New("error"))

	seedAnon(t, db, ProductHash("CeraVe", "Retinol Serum", "X1"), "Retinol Serum", "skincare-serums",
		models.JSONMap{"rating": 4.4, "review_volume": 120})

	result, err := p.Run()
	require.NoError(t, err)
	assert.Equal(t, 1, result.NewPromoted)

	var entry models.CatalogProduct
	require.NoError(t, db.First(&entry, "display_name = ?", "Retinol Serum").Error)
	assert.Equal(t, "research", entry.Status)
	assert.Equal(t, "serum", entry.ProductType)
	assert.Equal(t, "mid", entry.PriceTier)
	assert.Equal(t, "stable", entry.ReviewSignals)
	assert.Contains(t, []string(entry.KeyActives), "retinol")
	assert.Contains(t, []string(entry.SuitableFor), "aging")
	assert.Contains(t, []string(entry.Contraindications), "pregnancy")
	require.NotNil(t, entry.EfficacyScore)
	assert.Equal(t, 4.4, *entry.EfficacyScore)
	assert.Equal(t, 120, entry.ReviewVolume)
	require.NotNil(t, entry.AcquisitionLead)

	var stub models.SourceIntelligence
	require.NoError(t, db.First(&stub, "product_hash = ?", entry.ProductHash).Error)
}

func TestPromoterIsIdempotent(t *testing.T) {
	db := testDB(t)
	p := NewPromoter(db, logger.New("error"))

	seedAnon(t, db, ProductHash("Nivea", "Soft Cream", "X2"), "Soft Cream", "skincare-moisturizers", nil)

	_, err := p.Run()
	require.NoError(t, err)
	result, err := p.Run()
	require.NoError(t, err)
	assert.Equal(t, 0, result.NewPromoted)

	var count int64
	db.Model(&models.CatalogProduct{}).Count(&count)
	assert.Equal(t, int64(1), count)
}

func TestPromoterComputesTrendingSignal(t *testing.T) {
	db := testDB(t)
	p := NewPromoter(db, logger.New("error"))

	hash := ProductHash("Tatcha", "Dewy Cream", "X3")
	seedAnon(t, db, hash, "Dewy Cream", "skincare-moisturizers",
		models.JSONMap{"rating": 4.2, "review_volume": 100})

	_, err := p.Run()
	require.NoError(t, err)

	// New scrape: review volume jumped past the trending threshold.
	require.NoError(t, db.Model(&models.AnonymisedProduct{}).
		Where("product_hash = ?", hash).
		Updates(map[string]interface{}{
			"efficacy_signals": models.JSONMap{"rating": 4.3, "review_volume": 150},
			"last_updated":     time.Now(),
		}).Error)

	result, err := p.Run()
	require.NoError(t, err)
	assert.Equal(t, 1, result.SignalsComputed)

	var entry models.CatalogProduct
	require.NoError(t, db.First(&entry, "product_hash = ?", hash).Error)
	assert.Equal(t, "trending", entry.ReviewSignals)
	assert.Equal(t, 150, entry.ReviewVolume)
	require.NotNil(t, entry.EfficacyScore)
	assert.Equal(t, 4.3, *entry.EfficacyScore)
}

func TestPromoterComputesDecliningSignal(t *testing.T) {
	db := testDB(t)
	p := NewPromoter(db, logger.New("error"))

	hash := ProductHash("Fresh", "Rose Toner", "X4")
	seedAnon(t, db, hash, "Rose Toner", "skincare-toners",
		models.JSONMap{"rating": 4.6, "review_volume": 80})

	_, err := p.Run()
	require.NoError(t, err)

	require.NoError(t, db.Model(&models.AnonymisedProduct{}).
		Where("product_hash = ?", hash).
		Updates(map[string]interface{}{
			"efficacy_signals": models.JSONMap{"rating": 4.1, "review_volume": 85},
			"last_updated":     time.Now(),
		}).Error)

	result, err := p.Run()
	require.NoError(t, err)
	assert.Equal(t, 1, result.SignalsComputed)

	var entry models.CatalogProduct
	require.NoError(t, db.First(&entry, "product_hash = ?", hash).Error)
	assert.Equal(t, "declining", entry.ReviewSignals)
}

func TestReviewSignal(t *testing.T) {
	r1, r2 := 4.5, 4.5
	assert.Equal(t, "stable", reviewSignal(100, 110, &r1, &r2))
	assert.Equal(t, "trending", reviewSignal(100, 121, &r1, &r2))

	low := 4.1
	assert.Equal(t, "declining", reviewSignal(100, 105, &r1, &low))
	// Volume growth wins over a rating drop.
	assert.Equal(t, "trending", reviewSignal(100, 130, &r1, &low))
	// No prior volume means no trend baseline.
	assert.Equal(t, "stable", reviewSignal(0, 500, nil, &r2))
}
