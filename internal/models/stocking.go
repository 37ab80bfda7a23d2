package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// StockingDecision is the admin's commercial disposition for one catalog
// product. Exactly one decision per product_hash; re-deciding overwrites it.
type StockingDecision struct {
	ID                string    `json:"id" gorm:"type:uuid;primary_key"`
	ProductHash       string    `json:"product_hash" gorm:"unique;not null"`
	Decision          string    `json:"decision" gorm:"not null"`
	TargetPrice       *float64  `json:"target_price" gorm:"type:decimal(10,2)"`
	InitialQuantity   int       `json:"initial_quantity"`
	FulfillmentMethod string    `json:"fulfillment_method" gorm:"default:warehouse"`
	Notes             *string   `json:"notes"`
	DecidedBy         string    `json:"decided_by"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

func (StockingDecision) TableName() string {
	return "stocking_decisions"
}

func (d *StockingDecision) BeforeCreate(tx *gorm.DB) error {
	if d.ID == "" {
		d.ID = uuid.New().String()
	}
	return nil
}

type Decision string

const (
	DecisionStock     Decision = "stock"
	DecisionPending   Decision = "pending"
	DecisionWatchlist Decision = "watchlist"
	DecisionReject    Decision = "reject"
)

func ValidDecision(d string) bool {
	switch Decision(d) {
	case DecisionStock, DecisionPending, DecisionWatchlist, DecisionReject:
		return true
	}
	return false
}
