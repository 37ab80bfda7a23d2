package shopify

import (
	"fmt"
	"strings"

	"crazygels/internal/catalog"
	"crazygels/internal/models"
)

// BuildListing converts a curated catalog product plus its stocking decision
// into a Shopify product create payload. The listing price comes from the
// decision's target price, falling back to the deterministic estimate when
// the admin left it blank.
func BuildListing(entry *models.CatalogProduct, decision *models.StockingDecision) (*NewProduct, error) {
	if entry.DisplayName == "" {
		return nil, fmt.Errorf("catalog product %s has no display name", entry.ProductHash)
	}

	price := listingPrice(entry, decision)
	if price <= 0 {
		return nil, fmt.Errorf("no price available for %s", entry.ProductHash)
	}

	vendor := "Crazy Gels"
	if entry.Brand != nil && *entry.Brand != "" {
		vendor = *entry.Brand
	}

	body := ""
	if entry.DescriptionGenerated != nil {
		body = *entry.DescriptionGenerated
	}

	quantity := 0
	if decision != nil {
		quantity = decision.InitialQuantity
	}

	product := &NewProduct{
		Title:       entry.DisplayName,
		BodyHTML:    body,
		Vendor:      vendor,
		ProductType: entry.ProductType,
		Tags:        listingTags(entry),
		Status:      "draft",
		Variants: []NewVariant{
			{
				Price:             fmt.Sprintf("%.2f", price),
				Sku:               skuFor(entry),
				InventoryQuantity: quantity,
				RequiresShipping:  true,
				Taxable:           true,
			},
		},
	}

	if entry.ImageURL != nil && *entry.ImageURL != "" {
		product.Images = []NewImage{{Src: *entry.ImageURL, Alt: entry.DisplayName}}
	}

	return product, nil
}

func listingPrice(entry *models.CatalogProduct, decision *models.StockingDecision) float64 {
	if decision != nil && decision.TargetPrice != nil && *decision.TargetPrice > 0 {
		return *decision.TargetPrice
	}
	if entry.RetailPrice != nil && *entry.RetailPrice > 0 {
		return *entry.RetailPrice
	}
	brandType := "indie"
	if entry.Brand != nil {
		brandType = catalog.ClassifyBrand(*entry.Brand)
	}
	return catalog.EstimateRetailPrice(brandType, entry.PriceTier, entry.ProductHash)
}

// listingTags flattens actives and concerns into Shopify tags so collections
// can filter on them.
func listingTags(entry *models.CatalogProduct) string {
	var tags []string
	tags = append(tags, entry.KeyActives...)
	for _, concern := range entry.SuitableFor {
		tags = append(tags, "concern:"+concern)
	}
	if entry.ProductType != "" {
		tags = append(tags, entry.ProductType)
	}
	return strings.Join(tags, ", ")
}

func skuFor(entry *models.CatalogProduct) string {
	hash := entry.ProductHash
	if len(hash) > 12 {
		hash = hash[:12]
	}
	return "CG-" + strings.ToUpper(hash)
}
