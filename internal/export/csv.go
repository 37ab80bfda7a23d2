package export

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"
	"strings"

	"crazygels/internal/models"
)

// catalogColumns is the fixed column set of the catalog CSV export.
var catalogColumns = []string{
	"product_hash", "display_name", "brand", "category", "product_type",
	"price_tier", "retail_price", "currency", "efficacy_score",
	"review_signals", "key_actives", "suitable_for", "status", "source",
}

// CatalogCSV renders catalog rows as RFC4180 CSV. Rows without a retail
// price are omitted: they are not sellable yet and break downstream pricing
// sheets.
func CatalogCSV(products []models.CatalogProduct) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write(catalogColumns); err != nil {
		return nil, fmt.Errorf("failed to write header: %w", err)
	}

	for _, p := range products {
		if p.RetailPrice == nil || *p.RetailPrice <= 0 {
			continue
		}
		row := []string{
			p.ProductHash,
			p.DisplayName,
			deref(p.Brand),
			p.Category,
			p.ProductType,
			p.PriceTier,
			strconv.FormatFloat(*p.RetailPrice, 'f', 2, 64),
			deref(p.Currency),
			formatScore(p.EfficacyScore),
			p.ReviewSignals,
			strings.Join(p.KeyActives, ";"),
			strings.Join(p.SuitableFor, ";"),
			p.Status,
			p.Source,
		}
		if err := w.Write(row); err != nil {
			return nil, fmt.Errorf("failed to write row %s: %w", p.ProductHash, err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// shopifyColumns follows the Shopify product import template.
var shopifyColumns = []string{
	"Handle", "Title", "Body (HTML)", "Vendor", "Type", "Tags", "Published",
	"Variant SKU", "Variant Price", "Variant Inventory Qty", "Image Src",
}

// ShopifyCSV renders stock-approved catalog rows in Shopify's product import
// format. The decisions map is keyed by product_hash.
func ShopifyCSV(products []models.CatalogProduct, decisions map[string]models.StockingDecision) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write(shopifyColumns); err != nil {
		return nil, fmt.Errorf("failed to write header: %w", err)
	}

	for _, p := range products {
		if p.RetailPrice == nil || *p.RetailPrice <= 0 {
			continue
		}

		price := *p.RetailPrice
		quantity := 0
		if d, ok := decisions[p.ProductHash]; ok {
			if d.TargetPrice != nil && *d.TargetPrice > 0 {
				price = *d.TargetPrice
			}
			quantity = d.InitialQuantity
		}

		var tags []string
		tags = append(tags, p.KeyActives...)
		for _, concern := range p.SuitableFor {
			tags = append(tags, "concern:"+concern)
		}

		row := []string{
			handleFor(p.DisplayName),
			p.DisplayName,
			deref(p.DescriptionGenerated),
			deref(p.Brand),
			p.ProductType,
			strings.Join(tags, ", "),
			"FALSE",
			skuFor(p.ProductHash),
			strconv.FormatFloat(price, 'f', 2, 64),
			strconv.Itoa(quantity),
			deref(p.ImageURL),
		}
		if err := w.Write(row); err != nil {
			return nil, fmt.Errorf("failed to write row %s: %w", p.ProductHash, err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func handleFor(title string) string {
	handle := strings.ToLower(title)
	var b strings.Builder
	lastDash := false
	for _, r := range handle {
		switch {
		case r >= 'a' && r <= 'z' || r >= '0' && r <= '9':
			b.WriteRune(r)
			lastDash = false
		default:
			if !lastDash && b.Len() > 0 {
				b.WriteByte('-')
				lastDash = true
			}
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}

func skuFor(productHash string) string {
	if len(productHash) > 12 {
		productHash = productHash[:12]
	}
	return "CG-" + strings.ToUpper(productHash)
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func formatScore(f *float64) string {
	if f == nil {
		return ""
	}
	return strconv.FormatFloat(*f, 'f', 1, 64)
}
