package export

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"crazygels/internal/logger"
	"crazygels/internal/models"

	"gorm.io/gorm"
)

// Reporter builds the weekly intelligence exports for the purchasing team.
type Reporter struct {
	db     *gorm.DB
	logger *logger.Logger
}

func NewReporter(db *gorm.DB, logger *logger.Logger) *Reporter {
	return &Reporter{
		db:     db,
		logger: logger,
	}
}

// IntelligenceReport is the frontend-safe anonymised weekly report.
type IntelligenceReport struct {
	GeneratedAt   time.Time                  `json:"generated_at"`
	Period        string                     `json:"period"`
	TotalProducts int                        `json:"total_products"`
	Categories    map[string]CategorySummary `json:"categories"`
	Products      []models.AnonymisedProduct `json:"products"`
}

type CategorySummary struct {
	Count      int            `json:"count"`
	BrandTypes map[string]int `json:"brand_types"`
	PriceTiers map[string]int `json:"price_tiers"`
}

// Intelligence builds the anonymised product report for the past week.
func (r *Reporter) Intelligence() ([]byte, error) {
	cutoff := time.Now().AddDate(0, 0, -7)

	var products []models.AnonymisedProduct
	err := r.db.Where("last_updated >= ?", cutoff).
		Order("last_updated DESC").
		Find(&products).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load anonymised products: %w", err)
	}

	report := IntelligenceReport{
		GeneratedAt:   time.Now().UTC(),
		Period:        "weekly",
		TotalProducts: len(products),
		Categories:    map[string]CategorySummary{},
		Products:      products,
	}

	for _, p := range products {
		cat := p.Category
		if cat == "" {
			cat = "unknown"
		}
		summary, ok := report.Categories[cat]
		if !ok {
			summary = CategorySummary{BrandTypes: map[string]int{}, PriceTiers: map[string]int{}}
		}
		summary.Count++
		summary.BrandTypes[orUnknown(p.BrandType)]++
		summary.PriceTiers[orUnknown(p.PriceTier)]++
		report.Categories[cat] = summary
	}

	return json.MarshalIndent(report, "", "  ")
}

// PriceTrendsCSV renders the past 30 days of price aggregates.
func (r *Reporter) PriceTrendsCSV() ([]byte, error) {
	cutoff := time.Now().AddDate(0, 0, -30)

	var aggregates []models.PriceAggregate
	err := r.db.Where("computed_at >= ?", cutoff).
		Order("computed_at DESC, source, category").
		Find(&aggregates).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load price aggregates: %w", err)
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write([]string{"source", "category", "date", "avg_price", "min_price", "max_price", "product_count"}); err != nil {
		return nil, err
	}
	for _, agg := range aggregates {
		row := []string{
			agg.Source,
			agg.Category,
			agg.ComputedAt.Format("2006-01-02"),
			strconv.FormatFloat(agg.AvgPrice, 'f', 2, 64),
			strconv.FormatFloat(agg.MinPrice, 'f', 2, 64),
			strconv.FormatFloat(agg.MaxPrice, 'f', 2, 64),
			strconv.Itoa(agg.ProductCount),
		}
		if err := w.Write(row); err != nil {
			return nil, err
		}
	}
	w.Flush()
	return buf.Bytes(), w.Error()
}

// AlertSummary lists the past week's price alerts, largest swing first.
type AlertSummary struct {
	GeneratedAt    time.Time    `json:"generated_at"`
	Period         string       `json:"period"`
	TotalAlerts    int          `json:"total_alerts"`
	PriceDrops     int          `json:"price_drops"`
	PriceIncreases int          `json:"price_increases"`
	Alerts         []AlertEntry `json:"alerts"`
}

type AlertEntry struct {
	AlertID     uint      `json:"alert_id"`
	ProductName string    `json:"product_name"`
	Brand       string    `json:"brand"`
	Source      string    `json:"source"`
	Category    string    `json:"category"`
	OldPrice    float64   `json:"old_price"`
	NewPrice    float64   `json:"new_price"`
	ChangePct   float64   `json:"change_pct"`
	Direction   string    `json:"direction"`
	DetectedAt  time.Time `json:"detected_at"`
}

// Alerts builds the weekly alert summary for the purchasing team.
func (r *Reporter) Alerts() ([]byte, error) {
	cutoff := time.Now().AddDate(0, 0, -7)

	var alerts []models.PriceAlert
	err := r.db.Where("detected_at >= ?", cutoff).
		Order("abs(change_pct) DESC").
		Find(&alerts).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load price alerts: %w", err)
	}

	summary := AlertSummary{
		GeneratedAt: time.Now().UTC(),
		Period:      "weekly",
		TotalAlerts: len(alerts),
	}

	for _, alert := range alerts {
		var product models.ScrapedProduct
		if err := r.db.First(&product, alert.ProductID).Error; err != nil {
			r.logger.Warn("Alert %d references missing product %d", alert.ID, alert.ProductID)
			continue
		}

		direction := "increase"
		if alert.ChangePct < 0 {
			direction = "drop"
			summary.PriceDrops++
		} else {
			summary.PriceIncreases++
		}

		summary.Alerts = append(summary.Alerts, AlertEntry{
			AlertID:     alert.ID,
			ProductName: product.Name,
			Brand:       product.Brand,
			Source:      product.Source,
			Category:    product.Category,
			OldPrice:    alert.OldPrice,
			NewPrice:    alert.NewPrice,
			ChangePct:   alert.ChangePct,
			Direction:   direction,
			DetectedAt:  alert.DetectedAt,
		})
	}

	return json.MarshalIndent(summary, "", "  ")
}

func orUnknown(s string) string {
	if s == "" {
		return "unknown"
	}
	return s
}
