package processors

import (
	"fmt"
	"time"

	"crazygels/internal/catalog"
	"crazygels/internal/logger"
	"crazygels/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ScrapedItem is one product observation from a scraper run.
type ScrapedItem struct {
	Source      string  `json:"source"`
	ExternalID  string  `json:"external_id"`
	Name        string  `json:"name"`
	Brand       string  `json:"brand"`
	Category    string  `json:"category"`
	URL         string  `json:"url"`
	ImageURL    string  `json:"image_url"`
	Price       string  `json:"price"`
	Rating      string  `json:"rating"`
	ReviewCount int     `json:"review_count"`
	InStock     *bool   `json:"in_stock"`
}

// IngestResult summarises one batch.
type IngestResult struct {
	Items       int `json:"items"`
	NewItems    int `json:"new_items"`
	PricePoints int `json:"price_points"`
	Alerts      int `json:"alerts"`
	Anonymised  int `json:"anonymised"`
	Skipped     int `json:"skipped"`

	// NewAlerts carries the alerts raised in this batch so the caller
	// can fan them out as events.
	NewAlerts []models.PriceAlert `json:"-"`
}

// Ingester turns raw scraper batches into tracked products, price
// history, alerts and anonymised intelligence rows.
type Ingester struct {
	db     *gorm.DB
	logger *logger.Logger
}

func NewIngester(db *gorm.DB, logger *logger.Logger) *Ingester {
	return &Ingester{
		db:     db,
		logger: logger,
	}
}

func (in *Ingester) Ingest(items []ScrapedItem) (*IngestResult, error) {
	result := &IngestResult{Items: len(items)}
	now := time.Now()

	for _, item := range items {
		if item.Source == "" || item.ExternalID == "" || item.Name == "" {
			result.Skipped++
			continue
		}

		product, created, err := in.upsertProduct(item, now)
		if err != nil {
			in.logger.Error("Failed to upsert %s/%s: %v", item.Source, item.ExternalID, err)
			result.Skipped++
			continue
		}
		if created {
			result.NewItems++
		}

		if price := catalog.ParsePrice(item.Price); price > 0 {
			priceEUR := catalog.ConvertToEUR(price, priceCurrency(item.Source))
			tracked, alert, err := in.trackPrice(product, priceEUR, item, now)
			if err != nil {
				in.logger.Error("Failed to track price for %s/%s: %v", item.Source, item.ExternalID, err)
			} else {
				if tracked {
					result.PricePoints++
				}
				if alert != nil {
					result.Alerts++
					result.NewAlerts = append(result.NewAlerts, *alert)
				}
			}
		}

		if err := in.anonymise(product, item, now); err != nil {
			in.logger.Error("Failed to anonymise %s/%s: %v", item.Source, item.ExternalID, err)
			continue
		}
		result.Anonymised++
	}

	if err := in.refreshAggregates(now); err != nil {
		in.logger.Error("Failed to refresh price aggregates: %v", err)
	}

	return result, nil
}

func (in *Ingester) upsertProduct(item ScrapedItem, now time.Time) (*models.ScrapedProduct, bool, error) {
	var product models.ScrapedProduct
	err := in.db.Where("source = ? AND external_id = ?", item.Source, item.ExternalID).First(&product).Error
	created := false

	if err == gorm.ErrRecordNotFound {
		product = models.ScrapedProduct{
			Source:      item.Source,
			ExternalID:  item.ExternalID,
			FirstSeenAt: now,
		}
		created = true
	} else if err != nil {
		return nil, false, fmt.Errorf("lookup failed: %w", err)
	}

	product.Name = item.Name
	product.Brand = item.Brand
	product.Category = item.Category
	product.URL = item.URL
	if item.ImageURL != "" {
		product.ImageURL = &item.ImageURL
	}
	if rating := catalog.ParseRating(item.Rating); rating != nil {
		product.Rating = rating
	}
	if item.ReviewCount > 0 {
		product.ReviewCount = item.ReviewCount
	}
	product.LastSeenAt = now

	if err := in.db.Save(&product).Error; err != nil {
		return nil, false, fmt.Errorf("save failed: %w", err)
	}
	return &product, created, nil
}

// trackPrice appends a price point and raises an alert on a swing past
// the threshold against the previous observation.
func (in *Ingester) trackPrice(product *models.ScrapedProduct, price float64, item ScrapedItem, now time.Time) (bool, *models.PriceAlert, error) {
	var last models.PricePoint
	err := in.db.Where("product_id = ?", product.ID).Order("scraped_at DESC").First(&last).Error
	hasPrior := err == nil
	if err != nil && err != gorm.ErrRecordNotFound {
		return false, nil, err
	}

	inStock := true
	if item.InStock != nil {
		inStock = *item.InStock
	}

	point := models.PricePoint{
		ProductID: product.ID,
		Price:     price,
		Currency:  "EUR",
		InStock:   inStock,
		ScrapedAt: now,
	}
	if err := in.db.Create(&point).Error; err != nil {
		return false, nil, err
	}

	if !hasPrior {
		return true, nil, nil
	}

	pct, swung := catalog.PriceSwing(last.Price, price)
	if !swung {
		return true, nil, nil
	}

	alert := models.PriceAlert{
		ProductID:  product.ID,
		OldPrice:   last.Price,
		NewPrice:   price,
		ChangePct:  pct,
		DetectedAt: now,
	}
	if err := in.db.Create(&alert).Error; err != nil {
		return true, nil, err
	}
	return true, &alert, nil
}

func (in *Ingester) anonymise(product *models.ScrapedProduct, item ScrapedItem, now time.Time) error {
	hash := catalog.ProductHash(product.Brand, product.Name, item.ExternalID)
	lead := catalog.AcquisitionLead(item.ExternalID, product.Brand, now)
	brandType := catalog.ClassifyBrand(product.Brand)

	tier := "unknown"
	efficacy := models.JSONMap{}
	if price := catalog.ParsePrice(item.Price); price > 0 {
		priceEUR := catalog.ConvertToEUR(price, priceCurrency(item.Source))
		tier = catalog.PriceTier(priceEUR)
	}
	if product.Rating != nil {
		efficacy["rating"] = *product.Rating
	}
	if product.ReviewCount > 0 {
		efficacy["review_volume"] = product.ReviewCount
	}

	market := models.JSONMap{
		"sources":   []string{item.Source},
		"last_seen": now.Format(time.RFC3339),
	}

	anon := models.AnonymisedProduct{
		ProductHash:     hash,
		Category:        product.Category,
		NameClean:       catalog.CleanName(product.Name),
		BrandType:       brandType,
		PriceTier:       tier,
		EfficacySignals: efficacy,
		MarketSignals:   market,
		AcquisitionLead: lead,
		LastUpdated:     now,
	}

	return in.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "product_hash"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"category", "name_clean", "brand_type", "price_tier",
			"efficacy_signals", "market_signals", "acquisition_lead", "last_updated",
		}),
	}).Create(&anon).Error
}

// refreshAggregates recomputes today's per-source/category aggregates
// from the latest price point of each product. One row per
// source/category/day: repeat batches overwrite the day's row.
func (in *Ingester) refreshAggregates(now time.Time) error {
	type row struct {
		Source   string
		Category string
		Avg      float64
		Min      float64
		Max      float64
		N        int
	}

	var rows []row
	err := in.db.Raw(`
		SELECT p.source AS source, p.category AS category,
		       AVG(ph.price) AS avg, MIN(ph.price) AS min, MAX(ph.price) AS max,
		       COUNT(DISTINCT p.id) AS n
		FROM products p
		JOIN price_history ph ON ph.product_id = p.id
		WHERE ph.scraped_at >= ? AND p.category != ''
		GROUP BY p.source, p.category`, now.Add(-24*time.Hour)).Scan(&rows).Error
	if err != nil {
		return err
	}

	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	for _, r := range rows {
		var agg models.PriceAggregate
		err := in.db.Where("source = ? AND category = ? AND computed_at >= ?",
			r.Source, r.Category, dayStart).First(&agg).Error
		if err != nil && err != gorm.ErrRecordNotFound {
			return err
		}

		agg.Source = r.Source
		agg.Category = r.Category
		agg.AvgPrice = r.Avg
		agg.MinPrice = r.Min
		agg.MaxPrice = r.Max
		agg.ProductCount = r.N
		agg.ComputedAt = now
		if err := in.db.Save(&agg).Error; err != nil {
			return err
		}
	}
	return nil
}

// priceCurrency maps a scrape source to the currency its prices quote.
func priceCurrency(source string) string {
	switch source {
	case "us_beauty", "sephora_us":
		return "USD"
	case "uk_beauty", "boots_uk":
		return "GBP"
	default:
		return "EUR"
	}
}
