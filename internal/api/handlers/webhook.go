package handlers

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"time"

	"crazygels/internal/config"
	"crazygels/internal/logger"
	"crazygels/internal/models"
	"crazygels/internal/services/shopify"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type WebhookHandler struct {
	db     *gorm.DB
	logger *logger.Logger
	config *config.Config
}

func NewWebhookHandler(db *gorm.DB, logger *logger.Logger, cfg *config.Config) *WebhookHandler {
	return &WebhookHandler{
		db:     db,
		logger: logger,
		config: cfg,
	}
}

// Shopify receives product webhooks. The HMAC check runs over the raw
// body before any parsing.
func (h *WebhookHandler) Shopify(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to read body"})
		return
	}

	signature := c.GetHeader("X-Shopify-Hmac-Sha256")
	if !shopify.VerifyWebhook(body, signature, h.config.ShopifyWebhookSecret) {
		h.logger.Warn("Rejected webhook with bad HMAC from %s", c.ClientIP())
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid signature"})
		return
	}

	topic := c.GetHeader("X-Shopify-Topic")
	shopDomain := c.GetHeader("X-Shopify-Shop-Domain")

	var payload shopify.WebhookPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid payload"})
		return
	}

	event := models.WebhookEvent{
		Topic:      topic,
		ShopDomain: shopDomain,
		ResourceID: payload.ID,
		ReceivedAt: time.Now(),
	}

	processed := h.process(topic, &payload)
	event.Processed = processed
	if err := h.db.Create(&event).Error; err != nil {
		h.logger.Error("Failed to log webhook event: %v", err)
	}

	// Shopify retries non-200s; errors are already logged and a retry
	// would not help, so always acknowledge.
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *WebhookHandler) process(topic string, payload *shopify.WebhookPayload) bool {
	switch topic {
	case "products/update", "products/create":
		return h.syncCatalogLink(payload)
	case "products/delete":
		return h.clearCatalogLink(payload.ID)
	default:
		h.logger.Debug("Ignoring webhook topic %s", topic)
		return true
	}
}

// syncCatalogLink keeps the catalog row for a listed product in step
// with the store.
func (h *WebhookHandler) syncCatalogLink(payload *shopify.WebhookPayload) bool {
	var product models.CatalogProduct
	err := h.db.First(&product, "shopify_product_id = ?", payload.ID).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return true
		}
		h.logger.Error("Webhook lookup failed for shopify product %d: %v", payload.ID, err)
		return false
	}

	if len(payload.Variants) > 0 {
		if price, err := parseWebhookPrice(payload.Variants[0].Price); err == nil {
			product.RetailPrice = &price
		}
	}
	product.UpdatedAt = time.Now()

	if err := h.db.Save(&product).Error; err != nil {
		h.logger.Error("Webhook sync failed for shopify product %d: %v", payload.ID, err)
		return false
	}
	return true
}

func (h *WebhookHandler) clearCatalogLink(productID int64) bool {
	var product models.CatalogProduct
	err := h.db.First(&product, "shopify_product_id = ?", productID).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return true
		}
		h.logger.Error("Webhook lookup failed for shopify product %d: %v", productID, err)
		return false
	}

	product.ShopifyProductID = nil
	product.Status = string(models.StatusSampled)
	product.ListedAt = nil
	product.UpdatedAt = time.Now()

	if err := h.db.Save(&product).Error; err != nil {
		h.logger.Error("Webhook delete sync failed for shopify product %d: %v", productID, err)
		return false
	}
	return true
}

func parseWebhookPrice(price string) (float64, error) {
	return strconv.ParseFloat(price, 64)
}
