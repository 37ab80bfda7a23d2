package export

import (
	"encoding/csv"
	"strings"
	"testing"

	"crazygels/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr[T any](v T) *T { return &v }

func sampleProducts() []models.CatalogProduct {
	return []models.CatalogProduct{
		{
			ProductHash:   "aaaa1111bbbb2222cccc",
			DisplayName:   "Niacinamide Serum",
			Brand:         ptr("CeraVe"),
			Category:      "skincare-serums",
			ProductType:   "serum",
			PriceTier:     "mid",
			RetailPrice:   ptr(24.90),
			Currency:      ptr("EUR"),
			EfficacyScore: ptr(4.4),
			ReviewSignals: "trending",
			KeyActives:    models.StringList{"niacinamide", "zinc"},
			SuitableFor:   models.StringList{"acne", "oily"},
			Status:        "sampled",
			Source:        "scraper",
		},
		{
			// No retail price: not sellable, must be skipped.
			ProductHash: "dddd3333eeee4444ffff",
			DisplayName: "Mystery Mask",
			Status:      "research",
		},
	}
}

func TestCatalogCSV(t *testing.T) {
	data, err := CatalogCSV(sampleProducts())
	require.NoError(t, err)

	rows, err := csv.NewReader(strings.NewReader(string(data))).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 2, "header plus one priced row")

	assert.Equal(t, catalogColumns, rows[0])
	assert.Equal(t, "aaaa1111bbbb2222cccc", rows[1][0])
	assert.Equal(t, "Niacinamide Serum", rows[1][1])
	assert.Equal(t, "24.90", rows[1][6])
	assert.Equal(t, "4.4", rows[1][8])
	assert.Equal(t, "niacinamide;zinc", rows[1][10])
	assert.Equal(t, "acne;oily", rows[1][11])
}

func TestShopifyCSVUsesDecisionPriceAndQuantity(t *testing.T) {
	products := sampleProducts()
	decisions := map[string]models.StockingDecision{
		"aaaa1111bbbb2222cccc": {
			ProductHash:     "aaaa1111bbbb2222cccc",
			Decision:        "stock",
			TargetPrice:     ptr(19.99),
			InitialQuantity: 50,
		},
	}

	data, err := ShopifyCSV(products, decisions)
	require.NoError(t, err)

	rows, err := csv.NewReader(strings.NewReader(string(data))).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, shopifyColumns, rows[0])
	row := rows[1]
	assert.Equal(t, "niacinamide-serum", row[0])
	assert.Equal(t, "CG-AAAA1111BBBB", row[7])
	assert.Equal(t, "19.99", row[8])
	assert.Equal(t, "50", row[9])
	assert.Equal(t, "FALSE", row[6], "imports land unpublished")
	assert.Contains(t, row[5], "concern:acne")
}

func TestShopifyCSVFallsBackToRetailPrice(t *testing.T) {
	data, err := ShopifyCSV(sampleProducts(), nil)
	require.NoError(t, err)

	rows, err := csv.NewReader(strings.NewReader(string(data))).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "24.90", rows[1][8])
	assert.Equal(t, "0", rows[1][9])
}

func TestHandleFor(t *testing.T) {
	assert.Equal(t, "niacinamide-10-zinc-1", handleFor("Niacinamide 10% + Zinc 1%"))
	assert.Equal(t, "day-night-cream", handleFor("Day & Night Cream"))
	assert.Equal(t, "serum", handleFor("  Serum!  "))
}
