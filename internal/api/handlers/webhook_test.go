package handlers

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"net/http"
	"net/http/httptest"
	"testing"

	"crazygels/internal/config"
	"crazygels/internal/logger"
	"crazygels/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

const webhookSecret = "shpss_test"

func webhookRouter(db *gorm.DB) *gin.Engine {
	h := NewWebhookHandler(db, logger.New("error"), &config.Config{ShopifyWebhookSecret: webhookSecret})
	router := gin.New()
	router.POST("/webhooks/shopify", h.Shopify)
	return router
}

func signBody(body []byte) string {
	mac := hmac.New(sha256.New, []byte(webhookSecret))
	mac.Write(body)
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

func postWebhook(router *gin.Engine, body []byte, signature, topic string) *httptest.ResponseRecorder {
	req := httptest.NewRequest("POST", "/webhooks/shopify", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Shopify-Hmac-Sha256", signature)
	req.Header.Set("X-Shopify-Topic", topic)
	req.Header.Set("X-Shopify-Shop-Domain", "crazygels.myshopify.com")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestWebhookRejectsBadSignature(t *testing.T) {
	db := handlerDB(t)
	router := webhookRouter(db)

	body := []byte(`{"id":111,"title":"Gel Kit"}`)
	w := postWebhook(router, body, "bogus", "products/update")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	var count int64
	db.Model(&models.WebhookEvent{}).Count(&count)
	assert.Equal(t, int64(0), count, "rejected webhooks are not logged as events")
}

func TestWebhookLogsAndSyncsProduct(t *testing.T) {
	db := handlerDB(t)
	router := webhookRouter(db)

	shopifyID := int64(111)
	price := 20.0
	require.NoError(t, db.Create(&models.CatalogProduct{
		ProductHash:      "hash-1",
		DisplayName:      "Gel Kit",
		Status:           "listed",
		RetailPrice:      &price,
		ShopifyProductID: &shopifyID,
	}).Error)

	body := []byte(`{"id":111,"title":"Gel Kit","variants":[{"id":1,"price":"17.50"}]}`)
	w := postWebhook(router, body, signBody(body), "products/update")
	require.Equal(t, http.StatusOK, w.Code)

	var event models.WebhookEvent
	require.NoError(t, db.First(&event).Error)
	assert.Equal(t, "products/update", event.Topic)
	assert.Equal(t, int64(111), event.ResourceID)
	assert.True(t, event.Processed)

	var entry models.CatalogProduct
	require.NoError(t, db.First(&entry, "product_hash = ?", "hash-1").Error)
	require.NotNil(t, entry.RetailPrice)
	assert.Equal(t, 17.50, *entry.RetailPrice)
}

func TestWebhookDeleteUnlistsProduct(t *testing.T) {
	db := handlerDB(t)
	router := webhookRouter(db)

	shopifyID := int64(222)
	require.NoError(t, db.Create(&models.CatalogProduct{
		ProductHash:      "hash-2",
		DisplayName:      "Gone Kit",
		Status:           "listed",
		ShopifyProductID: &shopifyID,
	}).Error)

	body := []byte(`{"id":222}`)
	w := postWebhook(router, body, signBody(body), "products/delete")
	require.Equal(t, http.StatusOK, w.Code)

	var entry models.CatalogProduct
	require.NoError(t, db.First(&entry, "product_hash = ?", "hash-2").Error)
	assert.Nil(t, entry.ShopifyProductID)
	assert.Equal(t, "sampled", entry.Status)
	assert.Nil(t, entry.ListedAt)
}

func TestWebhookIgnoresUnknownTopics(t *testing.T) {
	db := handlerDB(t)
	router := webhookRouter(db)

	body := []byte(`{"id":5}`)
	w := postWebhook(router, body, signBody(body), "orders/create")
	assert.Equal(t, http.StatusOK, w.Code)

	var event models.WebhookEvent
	require.NoError(t, db.First(&event).Error)
	assert.Equal(t, "orders/create", event.Topic)
	assert.True(t, event.Processed)
}
