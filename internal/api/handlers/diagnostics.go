package handlers

import (
	"net/http"
	"time"

	"crazygels/internal/config"
	"crazygels/internal/logger"
	"crazygels/internal/models"
	"crazygels/internal/services/shopify"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type DiagnosticsHandler struct {
	db      *gorm.DB
	logger  *logger.Logger
	config  *config.Config
	shopify *shopify.Client
}

func NewDiagnosticsHandler(db *gorm.DB, logger *logger.Logger, cfg *config.Config, client *shopify.Client) *DiagnosticsHandler {
	return &DiagnosticsHandler{
		db:      db,
		logger:  logger,
		config:  cfg,
		shopify: client,
	}
}

func (h *DiagnosticsHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "time": time.Now().UTC()})
}

// Status reports connectivity and table counts for the admin
// diagnostics page.
func (h *DiagnosticsHandler) Status(c *gin.Context) {
	counts := gin.H{}
	for name, model := range map[string]interface{}{
		"product_catalog":     &models.CatalogProduct{},
		"anonymised_products": &models.AnonymisedProduct{},
		"stocking_decisions":  &models.StockingDecision{},
		"price_alerts":        &models.PriceAlert{},
		"webhook_events":      &models.WebhookEvent{},
	} {
		var n int64
		if err := h.db.Model(model).Count(&n).Error; err != nil {
			counts[name] = "error"
			continue
		}
		counts[name] = n
	}

	shopifyStatus := gin.H{"configured": h.config.ShopifyStoreDomain != "" && h.config.ShopifyAdminToken != ""}
	if h.config.ShopifyStoreDomain != "" && h.config.ShopifyAdminToken != "" {
		if shop, err := h.shopify.GetShopInfo(); err != nil {
			shopifyStatus["reachable"] = false
			shopifyStatus["error"] = err.Error()
		} else {
			shopifyStatus["reachable"] = true
			shopifyStatus["shop"] = shop.Name
			shopifyStatus["currency"] = shop.Currency
		}
	}

	var lastWebhook models.WebhookEvent
	webhookStatus := gin.H{"secret_configured": h.config.ShopifyWebhookSecret != ""}
	if err := h.db.Order("received_at DESC").First(&lastWebhook).Error; err == nil {
		webhookStatus["last_topic"] = lastWebhook.Topic
		webhookStatus["last_received_at"] = lastWebhook.ReceivedAt
	}

	c.JSON(http.StatusOK, gin.H{
		"env":      h.config.Env,
		"counts":   counts,
		"shopify":  shopifyStatus,
		"webhooks": webhookStatus,
		"klaviyo":  gin.H{"configured": h.config.KlaviyoAPIKey != ""},
		"openai":   gin.H{"configured": h.config.OpenAIAPIKey != ""},
	})
}
