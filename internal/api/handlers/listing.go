package handlers

import (
	"net/http"
	"time"

	"crazygels/internal/events"
	"crazygels/internal/logger"
	"crazygels/internal/models"
	"crazygels/internal/services/shopify"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// ListingHandler pushes curated catalog entries onto the Shopify store.
type ListingHandler struct {
	db       *gorm.DB
	logger   *logger.Logger
	shopify  *shopify.Client
	producer *events.Producer
}

func NewListingHandler(db *gorm.DB, logger *logger.Logger, client *shopify.Client, producer *events.Producer) *ListingHandler {
	return &ListingHandler{
		db:       db,
		logger:   logger,
		shopify:  client,
		producer: producer,
	}
}

// Create lists one catalog product on Shopify as a draft and records the
// linkage. Listing requires a "stock" decision.
func (h *ListingHandler) Create(c *gin.Context) {
	hash := c.Param("hash")

	var product models.CatalogProduct
	if err := h.db.First(&product, "product_hash = ?", hash).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
			return
		}
		h.logger.Error("Failed to fetch catalog product %s: %v", hash, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch product"})
		return
	}

	if product.ShopifyProductID != nil {
		c.JSON(http.StatusConflict, gin.H{"error": "Product is already listed", "shopify_product_id": *product.ShopifyProductID})
		return
	}

	var decision models.StockingDecision
	err := h.db.First(&decision, "product_hash = ?", hash).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "No stocking decision for product"})
			return
		}
		h.logger.Error("Failed to fetch decision %s: %v", hash, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch decision"})
		return
	}
	if decision.Decision != string(models.DecisionStock) {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "Decision is " + decision.Decision + ", expected stock"})
		return
	}

	payload, err := shopify.BuildListing(&product, &decision)
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}

	created, err := h.shopify.CreateProduct(payload)
	if err != nil {
		h.logger.Error("Failed to create Shopify product for %s: %v", hash, err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "Failed to create product on Shopify"})
		return
	}

	now := time.Now()
	product.ShopifyProductID = &created.ID
	product.Status = string(models.StatusListed)
	product.ListedAt = &now
	product.UpdatedAt = now
	if err := h.db.Save(&product).Error; err != nil {
		h.logger.Error("Shopify product %d created but linkage save failed for %s: %v", created.ID, hash, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Product listed but local update failed"})
		return
	}

	h.producer.Publish(c.Request.Context(), events.Event{
		Type:        events.TypeProductListed,
		ProductHash: hash,
		Data: map[string]interface{}{
			"shopify_product_id": created.ID,
			"title":              created.Title,
		},
	})

	c.JSON(http.StatusCreated, gin.H{"data": gin.H{
		"product_hash":       hash,
		"shopify_product_id": created.ID,
		"status":             product.Status,
		"listed_at":          product.ListedAt,
	}})
}
