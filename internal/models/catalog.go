package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CatalogProduct is one curated candidate in product_catalog, keyed by the
// anonymised product_hash from the scraping pipeline.
type CatalogProduct struct {
	ID                   string     `json:"id" gorm:"type:uuid;primary_key"`
	ProductHash          string     `json:"product_hash" gorm:"unique;not null"`
	DisplayName          string     `json:"display_name" gorm:"not null"`
	Category             string     `json:"category"`
	ProductType          string     `json:"product_type"`
	PriceTier            string     `json:"price_tier" gorm:"default:unknown"`
	EfficacyScore        *float64   `json:"efficacy_score" gorm:"type:decimal(3,1)"`
	ReviewSignals        string     `json:"review_signals" gorm:"default:stable"`
	ReviewVolume         int        `json:"review_volume"`
	KeyActives           StringList `json:"key_actives" gorm:"type:jsonb"`
	IngredientSummary    JSONMap    `json:"ingredient_summary" gorm:"type:jsonb"`
	SuitableFor          StringList `json:"suitable_for" gorm:"type:jsonb"`
	Contraindications    StringList `json:"contraindications" gorm:"type:jsonb"`
	ImageURL             *string    `json:"image_url"`
	DescriptionGenerated *string    `json:"description_generated"`
	SourceURL            *string    `json:"source_url"`
	Brand                *string    `json:"brand"`
	RetailPrice          *float64   `json:"retail_price" gorm:"type:decimal(10,2)"`
	Currency             *string    `json:"currency"`
	PriceOriginal        *float64   `json:"price_original" gorm:"type:decimal(10,2)"`
	PriceCurrency        *string    `json:"price_currency"`
	Status               string     `json:"status" gorm:"default:research"`
	AcquisitionLead      *string    `json:"acquisition_lead"`
	Source               string     `json:"source" gorm:"default:unknown"`
	ShopifyProductID     *int64     `json:"shopify_product_id"`
	ListedAt             *time.Time `json:"listed_at"`
	CreatedAt            time.Time  `json:"created_at"`
	UpdatedAt            time.Time  `json:"updated_at"`
}

func (CatalogProduct) TableName() string {
	return "product_catalog"
}

func (p *CatalogProduct) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	return nil
}

// Catalog lifecycle: research -> sampled -> listed.
type CatalogStatus string

const (
	StatusResearch CatalogStatus = "research"
	StatusSampled  CatalogStatus = "sampled"
	StatusListed   CatalogStatus = "listed"
)

func ValidCatalogStatus(s string) bool {
	switch CatalogStatus(s) {
	case StatusResearch, StatusSampled, StatusListed:
		return true
	}
	return false
}

type ReviewSignal string

const (
	SignalStable    ReviewSignal = "stable"
	SignalTrending  ReviewSignal = "trending"
	SignalDeclining ReviewSignal = "declining"
)

// AnonymisedProduct mirrors the raw scraped signal for a product_hash. It is
// written by the ingestion worker and is the input to catalog promotion.
type AnonymisedProduct struct {
	ID              string    `json:"id" gorm:"type:uuid;primary_key"`
	ProductHash     string    `json:"product_hash" gorm:"unique;not null"`
	Category        string    `json:"category"`
	NameClean       string    `json:"name_clean"`
	BrandType       string    `json:"brand_type"`
	PriceTier       string    `json:"price_tier"`
	EfficacySignals JSONMap   `json:"efficacy_signals" gorm:"type:jsonb"`
	MarketSignals   JSONMap   `json:"market_signals" gorm:"type:jsonb"`
	AcquisitionLead string    `json:"acquisition_lead"`
	LastUpdated     time.Time `json:"last_updated"`
}

func (AnonymisedProduct) TableName() string {
	return "anonymised_products"
}

func (p *AnonymisedProduct) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	return nil
}

// SourceIntelligence links an encrypted acquisition lead back to a catalog
// product for the purchasing team.
type SourceIntelligence struct {
	ID              string    `json:"id" gorm:"type:uuid;primary_key"`
	AcquisitionLead string    `json:"acquisition_lead" gorm:"unique;not null"`
	ProductHash     string    `json:"product_hash" gorm:"not null"`
	SupplierNotes   *string   `json:"supplier_notes"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

func (SourceIntelligence) TableName() string {
	return "source_intelligence"
}

func (s *SourceIntelligence) BeforeCreate(tx *gorm.DB) error {
	if s.ID == "" {
		s.ID = uuid.New().String()
	}
	return nil
}
