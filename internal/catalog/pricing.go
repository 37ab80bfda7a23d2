package catalog

import (
	"hash/fnv"
	"math"
	"regexp"
	"strconv"
	"strings"
)

// PriceAlertThreshold is the relative swing that triggers a price alert.
const PriceAlertThreshold = 0.15

// Fixed conversion rates; the purchasing team updates these periodically.
const (
	usdToEUR = 0.92
	gbpToEUR = 1.17
)

var luxuryBrands = map[string]bool{
	"la mer": true, "sk-ii": true, "la prairie": true, "sisley": true,
	"tom ford": true, "chanel": true, "dior": true, "guerlain": true,
	"estee lauder": true, "lancome": true, "cle de peau": true,
}

var masstigeBrands = map[string]bool{
	"clinique": true, "origins": true, "kiehl's": true, "drunk elephant": true,
	"tatcha": true, "sunday riley": true, "fresh": true, "laneige": true,
	"olay": true, "neutrogena": true, "l'oreal": true, "garnier": true,
	"nivea": true, "eucerin": true, "cerave": true, "mac": true,
	"urban decay": true, "tarte": true, "too faced": true, "benefit": true,
}

// basePrices is the static brand-type x price-tier table the estimator
// jitters around, in EUR.
var basePrices = map[string]map[string]float64{
	"luxury": {
		"budget":  24.00,
		"mid":     49.00,
		"premium": 89.00,
		"luxury":  159.00,
	},
	"masstige": {
		"budget":  12.00,
		"mid":     26.00,
		"premium": 49.00,
		"luxury":  79.00,
	},
	"indie": {
		"budget":  9.00,
		"mid":     19.00,
		"premium": 39.00,
		"luxury":  59.00,
	},
}

var (
	priceNumberRe = regexp.MustCompile(`(\d+\.?\d*)`)
	europeanCents = regexp.MustCompile(`(\d+),(\d{2})$`)
	leadingLabel  = regexp.MustCompile(`^[A-Za-z:]+`)
	ratingDecimal = regexp.MustCompile(`(\d+[.,]\d+)`)
	ratingWhole   = regexp.MustCompile(`(\d+)`)
)

// ParsePrice extracts a numeric price from scraped text like
// "29,95 EUR", "$34.00" or "Ab:8,95".
func ParsePrice(text string) float64 {
	if text == "" {
		return 0
	}
	cleaned := strings.NewReplacer("EUR", "", "$", "", " ", "").Replace(text)
	cleaned = strings.TrimSpace(cleaned)
	cleaned = europeanCents.ReplaceAllString(cleaned, "$1.$2")
	cleaned = leadingLabel.ReplaceAllString(cleaned, "")

	match := priceNumberRe.FindStringSubmatch(cleaned)
	if match == nil {
		return 0
	}
	v, _ := strconv.ParseFloat(match[1], 64)
	return v
}

// ParseRating extracts a numeric rating from text like "4.2" or
// "4,5 von 5 Sternen". Returns nil when no rating is present.
func ParseRating(text string) *float64 {
	if text == "" {
		return nil
	}
	if match := ratingDecimal.FindStringSubmatch(text); match != nil {
		v, _ := strconv.ParseFloat(strings.ReplaceAll(match[1], ",", "."), 64)
		return &v
	}
	if match := ratingWhole.FindStringSubmatch(text); match != nil {
		v, _ := strconv.ParseFloat(match[1], 64)
		if v >= 1 && v <= 5 {
			return &v
		}
	}
	return nil
}

// ClassifyBrand buckets a brand into luxury, masstige or indie.
func ClassifyBrand(brand string) string {
	lower := strings.TrimSpace(strings.ToLower(brand))
	if luxuryBrands[lower] {
		return "luxury"
	}
	if masstigeBrands[lower] {
		return "masstige"
	}
	return "indie"
}

// PriceTier buckets an EUR price.
func PriceTier(price float64) string {
	switch {
	case price <= 0:
		return "unknown"
	case price < 15:
		return "budget"
	case price < 35:
		return "mid"
	case price < 75:
		return "premium"
	default:
		return "luxury"
	}
}

// ConvertToEUR converts a price to EUR. Unknown currencies pass through.
func ConvertToEUR(price float64, currency string) float64 {
	if price <= 0 {
		return 0
	}
	switch strings.ToUpper(currency) {
	case "", "EUR":
		return round2(price)
	case "USD":
		return round2(price * usdToEUR)
	case "GBP":
		return round2(price * gbpToEUR)
	default:
		return round2(price)
	}
}

// EstimateRetailPrice derives a deterministic retail price for a catalog
// product with no scraped price: the brand-type/tier base price jittered by
// up to +-10%, stable per product_hash.
func EstimateRetailPrice(brandType, priceTier, productHash string) float64 {
	tiers, ok := basePrices[brandType]
	if !ok {
		tiers = basePrices["indie"]
	}
	base, ok := tiers[priceTier]
	if !ok {
		base = tiers["mid"]
	}

	h := fnv.New32a()
	h.Write([]byte(productHash))
	// Map the hash onto [-0.10, +0.10]
	jitter := (float64(h.Sum32()%2001) - 1000) / 10000

	return round2(base * (1 + jitter))
}

// PriceSwing returns the relative change between two prices and whether it
// crosses the alert threshold.
func PriceSwing(oldPrice, newPrice float64) (float64, bool) {
	if oldPrice <= 0 {
		return 0, false
	}
	pct := (newPrice - oldPrice) / oldPrice
	return pct, math.Abs(pct) >= PriceAlertThreshold
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
