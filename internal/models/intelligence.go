package models

import (
	"time"
)

// ScrapedProduct is the raw competitor product as seen by the scrapers,
// unique per (source, external_id).
type ScrapedProduct struct {
	ID          uint       `json:"id" gorm:"primary_key"`
	Source      string     `json:"source" gorm:"uniqueIndex:idx_source_external;not null"`
	ExternalID  string     `json:"external_id" gorm:"uniqueIndex:idx_source_external;not null"`
	Name        string     `json:"name"`
	Brand       string     `json:"brand"`
	Category    string     `json:"category"`
	URL         string     `json:"url"`
	ImageURL    *string    `json:"image_url"`
	Rating      *float64   `json:"rating" gorm:"type:decimal(3,1)"`
	ReviewCount int        `json:"review_count"`
	FirstSeenAt time.Time  `json:"first_seen_at"`
	LastSeenAt  time.Time  `json:"last_seen_at"`
}

func (ScrapedProduct) TableName() string {
	return "products"
}

type PricePoint struct {
	ID        uint      `json:"id" gorm:"primary_key"`
	ProductID uint      `json:"product_id" gorm:"index;not null"`
	Price     float64   `json:"price" gorm:"type:decimal(10,2)"`
	Currency  string    `json:"currency" gorm:"default:EUR"`
	InStock   bool      `json:"in_stock" gorm:"default:true"`
	ScrapedAt time.Time `json:"scraped_at"`
}

func (PricePoint) TableName() string {
	return "price_history"
}

// PriceAlert records a >=15% price swing on a tracked competitor product.
type PriceAlert struct {
	ID         uint       `json:"id" gorm:"primary_key"`
	ProductID  uint       `json:"product_id" gorm:"index;not null"`
	OldPrice   float64    `json:"old_price" gorm:"type:decimal(10,2)"`
	NewPrice   float64    `json:"new_price" gorm:"type:decimal(10,2)"`
	ChangePct  float64    `json:"change_pct" gorm:"type:decimal(6,2)"`
	IsReviewed bool       `json:"is_reviewed" gorm:"default:false"`
	ReviewedAt *time.Time `json:"reviewed_at"`
	DetectedAt time.Time  `json:"detected_at"`
}

func (PriceAlert) TableName() string {
	return "price_alerts"
}

type PriceAggregate struct {
	ID           uint      `json:"id" gorm:"primary_key"`
	Source       string    `json:"source"`
	Category     string    `json:"category"`
	AvgPrice     float64   `json:"avg_price" gorm:"type:decimal(10,2)"`
	MinPrice     float64   `json:"min_price" gorm:"type:decimal(10,2)"`
	MaxPrice     float64   `json:"max_price" gorm:"type:decimal(10,2)"`
	ProductCount int       `json:"product_count"`
	ComputedAt   time.Time `json:"computed_at"`
}

func (PriceAggregate) TableName() string {
	return "price_aggregates"
}

// WebhookEvent is a log row per received Shopify webhook, used by the
// diagnostics page and to drive storefront cache revalidation.
type WebhookEvent struct {
	ID         uint      `json:"id" gorm:"primary_key"`
	Topic      string    `json:"topic" gorm:"not null"`
	ShopDomain string    `json:"shop_domain"`
	ResourceID int64     `json:"resource_id"`
	Processed  bool      `json:"processed" gorm:"default:false"`
	ReceivedAt time.Time `json:"received_at"`
}

func (WebhookEvent) TableName() string {
	return "webhook_events"
}
