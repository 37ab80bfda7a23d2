package shopify

import (
	"strings"
	"testing"

	"crazygels/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr[T any](v T) *T { return &v }

func curatedEntry() *models.CatalogProduct {
	return &models.CatalogProduct{
		ProductHash: "abcdef1234567890abcdef1234567890",
		DisplayName: "Niacinamide Serum",
		ProductType: "serum",
		PriceTier:   "mid",
		Brand:       ptr("CeraVe"),
		RetailPrice: ptr(24.90),
		KeyActives:  models.StringList{"niacinamide"},
		SuitableFor: models.StringList{"acne", "oily"},
		ImageURL:    ptr("https://cdn.example.com/serum.jpg"),
	}
}

func TestBuildListingPrefersTargetPrice(t *testing.T) {
	decision := &models.StockingDecision{
		Decision:        "stock",
		TargetPrice:     ptr(19.99),
		InitialQuantity: 40,
	}

	product, err := BuildListing(curatedEntry(), decision)
	require.NoError(t, err)

	assert.Equal(t, "Niacinamide Serum", product.Title)
	assert.Equal(t, "CeraVe", product.Vendor)
	assert.Equal(t, "draft", product.Status, "new listings stay unpublished until reviewed")
	require.Len(t, product.Variants, 1)
	assert.Equal(t, "19.99", product.Variants[0].Price)
	assert.Equal(t, "CG-ABCDEF123456", product.Variants[0].Sku)
	assert.Equal(t, 40, product.Variants[0].InventoryQuantity)
	require.Len(t, product.Images, 1)
	assert.Equal(t, "https://cdn.example.com/serum.jpg", product.Images[0].Src)

	assert.Contains(t, product.Tags, "niacinamide")
	assert.Contains(t, product.Tags, "concern:acne")
	assert.Contains(t, product.Tags, "serum")
}

func TestBuildListingFallsBackToRetailPrice(t *testing.T) {
	product, err := BuildListing(curatedEntry(), &models.StockingDecision{Decision: "stock"})
	require.NoError(t, err)
	assert.Equal(t, "24.90", product.Variants[0].Price)
}

func TestBuildListingEstimatesWhenNoPriceKnown(t *testing.T) {
	entry := curatedEntry()
	entry.RetailPrice = nil

	product, err := BuildListing(entry, nil)
	require.NoError(t, err)
	require.Len(t, product.Variants, 1)
	// Masstige mid base is 26 EUR, jitter keeps it within 10%.
	assert.NotEmpty(t, product.Variants[0].Price)
	assert.True(t, strings.Contains(product.Variants[0].Price, "."), "price is formatted with cents")
}

func TestBuildListingRequiresDisplayName(t *testing.T) {
	entry := curatedEntry()
	entry.DisplayName = ""

	_, err := BuildListing(entry, nil)
	require.Error(t, err)
}

func TestBuildListingDefaultsVendor(t *testing.T) {
	entry := curatedEntry()
	entry.Brand = nil

	product, err := BuildListing(entry, &models.StockingDecision{TargetPrice: ptr(10.0)})
	require.NoError(t, err)
	assert.Equal(t, "Crazy Gels", product.Vendor)
}
