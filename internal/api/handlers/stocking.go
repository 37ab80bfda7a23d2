package handlers

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"crazygels/internal/logger"
	"crazygels/internal/models"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type StockingHandler struct {
	db     *gorm.DB
	logger *logger.Logger
}

func NewStockingHandler(db *gorm.DB, logger *logger.Logger) *StockingHandler {
	return &StockingHandler{
		db:     db,
		logger: logger,
	}
}

type DecisionInput struct {
	ProductHash       string   `json:"product_hash" binding:"required"`
	Decision          string   `json:"decision" binding:"required"`
	TargetPrice       *float64 `json:"target_price"`
	InitialQuantity   int      `json:"initial_quantity"`
	FulfillmentMethod string   `json:"fulfillment_method"`
	Notes             *string  `json:"notes"`
	DecidedBy         string   `json:"decided_by"`
}

func (h *StockingHandler) List(c *gin.Context) {
	var decisions []models.StockingDecision

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}

	query := h.db.Model(&models.StockingDecision{})
	if decision := c.Query("decision"); decision != "" {
		query = query.Where("decision = ?", decision)
	}

	var total int64
	query.Count(&total)

	err := query.Order("updated_at DESC").Offset((page - 1) * limit).Limit(limit).Find(&decisions).Error
	if err != nil {
		h.logger.Error("Failed to list stocking decisions: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch decisions"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data": decisions,
		"pagination": gin.H{
			"page":  page,
			"limit": limit,
			"total": total,
		},
	})
}

func (h *StockingHandler) Get(c *gin.Context) {
	hash := c.Param("hash")

	var decision models.StockingDecision
	if err := h.db.First(&decision, "product_hash = ?", hash).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			c.JSON(http.StatusNotFound, gin.H{"error": "Decision not found"})
			return
		}
		h.logger.Error("Failed to fetch decision %s: %v", hash, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch decision"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": decision})
}

// Upsert records one stocking decision. A "stock" decision moves the
// catalog entry from research to sampled.
func (h *StockingHandler) Upsert(c *gin.Context) {
	var input DecisionInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	decision, err := h.apply(input)
	if err != nil {
		status := http.StatusInternalServerError
		if _, ok := err.(*inputError); ok {
			status = http.StatusBadRequest
		}
		if status == http.StatusInternalServerError {
			h.logger.Error("Failed to record decision for %s: %v", input.ProductHash, err)
		}
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": decision})
}

type BulkDecisionResult struct {
	Total   int            `json:"total"`
	Applied int            `json:"applied"`
	Errors  []BulkRowError `json:"errors,omitempty"`
}

type BulkRowError struct {
	Index       int    `json:"index"`
	ProductHash string `json:"product_hash,omitempty"`
	Message     string `json:"message"`
}

// BulkUpsert applies several decisions in one call. Rows fail
// independently; the response reports per-row errors.
func (h *StockingHandler) BulkUpsert(c *gin.Context) {
	var inputs []DecisionInput
	if err := c.ShouldBindJSON(&inputs); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result := BulkDecisionResult{Total: len(inputs)}
	for i, input := range inputs {
		if _, err := h.apply(input); err != nil {
			result.Errors = append(result.Errors, BulkRowError{
				Index:       i,
				ProductHash: input.ProductHash,
				Message:     err.Error(),
			})
			continue
		}
		result.Applied++
	}

	c.JSON(http.StatusOK, gin.H{"data": result})
}

type inputError struct {
	msg string
}

func (e *inputError) Error() string {
	return e.msg
}

func (h *StockingHandler) apply(input DecisionInput) (*models.StockingDecision, error) {
	if !models.ValidDecision(input.Decision) {
		return nil, &inputError{msg: "invalid decision: " + input.Decision}
	}

	var product models.CatalogProduct
	if err := h.db.First(&product, "product_hash = ?", input.ProductHash).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, &inputError{msg: "unknown product_hash: " + input.ProductHash}
		}
		return nil, fmt.Errorf("failed to look up product: %w", err)
	}

	var decision models.StockingDecision
	err := h.db.Where("product_hash = ?", input.ProductHash).First(&decision).Error
	if err != nil && err != gorm.ErrRecordNotFound {
		return nil, fmt.Errorf("failed to look up decision: %w", err)
	}

	decision.ProductHash = input.ProductHash
	decision.Decision = input.Decision
	decision.TargetPrice = input.TargetPrice
	decision.InitialQuantity = input.InitialQuantity
	if input.FulfillmentMethod != "" {
		decision.FulfillmentMethod = input.FulfillmentMethod
	}
	decision.Notes = input.Notes
	decision.DecidedBy = input.DecidedBy
	decision.UpdatedAt = time.Now()

	if err := h.db.Save(&decision).Error; err != nil {
		return nil, fmt.Errorf("failed to save decision: %w", err)
	}

	// Listed products stay listed regardless of later decisions.
	if input.Decision == string(models.DecisionStock) && product.Status == string(models.StatusResearch) {
		product.Status = string(models.StatusSampled)
		if err := h.db.Save(&product).Error; err != nil {
			return nil, fmt.Errorf("failed to advance product status: %w", err)
		}
	}

	return &decision, nil
}
