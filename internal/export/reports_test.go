package export

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"crazygels/internal/logger"
	"crazygels/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIntelligenceReport(t *testing.T) {
	db := importerDB(t)
	r := NewReporter(db, logger.New("error"))

	require.NoError(t, db.Create(&models.AnonymisedProduct{
		ProductHash: "hash-1",
		Category:    "skincare-serums",
		NameClean:   "Niacinamide Serum",
		BrandType:   "masstige",
		PriceTier:   "mid",
		LastUpdated: time.Now(),
	}).Error)
	require.NoError(t, db.Create(&models.AnonymisedProduct{
		ProductHash: "hash-old",
		Category:    "skincare-serums",
		NameClean:   "Stale Serum",
		LastUpdated: time.Now().AddDate(0, 0, -10),
	}).Error)

	data, err := r.Intelligence()
	require.NoError(t, err)

	var report IntelligenceReport
	require.NoError(t, json.Unmarshal(data, &report))
	assert.Equal(t, "weekly", report.Period)
	assert.Equal(t, 1, report.TotalProducts, "stale rows fall out of the weekly window")
	require.Contains(t, report.Categories, "skincare-serums")
	assert.Equal(t, 1, report.Categories["skincare-serums"].BrandTypes["masstige"])
	assert.Equal(t, 1, report.Categories["skincare-serums"].PriceTiers["mid"])
}

func TestPriceTrendsCSV(t *testing.T) {
	db := importerDB(t)
	r := NewReporter(db, logger.New("error"))

	require.NoError(t, db.Create(&models.PriceAggregate{
		Source:       "de_beauty",
		Category:     "skincare-serums",
		AvgPrice:     20,
		MinPrice:     10,
		MaxPrice:     30,
		ProductCount: 2,
		ComputedAt:   time.Now(),
	}).Error)

	data, err := r.PriceTrendsCSV()
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "source,category,date,avg_price,min_price,max_price,product_count", lines[0])
	assert.Contains(t, lines[1], "de_beauty,skincare-serums")
	assert.Contains(t, lines[1], "20.00,10.00,30.00,2")
}

func TestAlertSummary(t *testing.T) {
	db := importerDB(t)
	r := NewReporter(db, logger.New("error"))

	product := models.ScrapedProduct{
		Source:     "de_beauty",
		ExternalID: "B1",
		Name:       "Gel Cleanser",
		Brand:      "CeraVe",
		Category:   "skincare-cleansers",
	}
	require.NoError(t, db.Create(&product).Error)
	require.NoError(t, db.Create(&models.PriceAlert{
		ProductID:  product.ID,
		OldPrice:   20,
		NewPrice:   15,
		ChangePct:  -0.25,
		DetectedAt: time.Now(),
	}).Error)

	data, err := r.Alerts()
	require.NoError(t, err)

	var summary AlertSummary
	require.NoError(t, json.Unmarshal(data, &summary))
	assert.Equal(t, 1, summary.TotalAlerts)
	assert.Equal(t, 1, summary.PriceDrops)
	assert.Equal(t, 0, summary.PriceIncreases)
	require.Len(t, summary.Alerts, 1)
	assert.Equal(t, "Gel Cleanser", summary.Alerts[0].ProductName)
	assert.Equal(t, "drop", summary.Alerts[0].Direction)
}
