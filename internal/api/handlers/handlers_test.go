package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"crazygels/internal/database"
	"crazygels/internal/events"
	"crazygels/internal/logger"
	"crazygels/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func handlerDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	return db
}

func seedCatalogProduct(t *testing.T, db *gorm.DB, hash, name, status string) {
	t.Helper()
	require.NoError(t, db.Create(&models.CatalogProduct{
		ProductHash: hash,
		DisplayName: name,
		Category:    "skincare-serums",
		ProductType: "serum",
		Status:      status,
		Source:      "scraper",
	}).Error)
}

func doJSON(router *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestCatalogListFiltersAndPaginates(t *testing.T) {
	db := handlerDB(t)
	h := NewCatalogHandler(db, logger.New("error"), events.NewProducer("", logger.New("error")))
	router := gin.New()
	router.GET("/catalog", h.List)

	seedCatalogProduct(t, db, "hash-1", "Niacinamide Serum", "research")
	seedCatalogProduct(t, db, "hash-2", "Retinol Serum", "sampled")
	seedCatalogProduct(t, db, "hash-3", "Rose Toner", "research")

	w := doJSON(router, "GET", "/catalog?status=research", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Data       []models.CatalogProduct `json:"data"`
		Pagination struct {
			Total int `json:"total"`
		} `json:"pagination"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 2, resp.Pagination.Total)
	assert.Len(t, resp.Data, 2)

	w = doJSON(router, "GET", "/catalog?search=retinol", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Data, 1)
	assert.Equal(t, "Retinol Serum", resp.Data[0].DisplayName)

	w = doJSON(router, "GET", "/catalog?page=2&limit=2", nil)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Len(t, resp.Data, 1)
	assert.Equal(t, 3, resp.Pagination.Total)
}

func TestCatalogGetAndUpdate(t *testing.T) {
	db := handlerDB(t)
	h := NewCatalogHandler(db, logger.New("error"), events.NewProducer("", logger.New("error")))
	router := gin.New()
	router.GET("/catalog/:hash", h.Get)
	router.PUT("/catalog/:hash", h.Update)

	seedCatalogProduct(t, db, "hash-1", "Niacinamide Serum", "research")

	w := doJSON(router, "GET", "/catalog/hash-1", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = doJSON(router, "GET", "/catalog/nope", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = doJSON(router, "PUT", "/catalog/hash-1", gin.H{
		"display_name": "Niacinamide 10% Serum",
		"retail_price": 21.50,
		"key_actives":  []string{"niacinamide", "zinc"},
	})
	require.Equal(t, http.StatusOK, w.Code)

	var entry models.CatalogProduct
	require.NoError(t, db.First(&entry, "product_hash = ?", "hash-1").Error)
	assert.Equal(t, "Niacinamide 10% Serum", entry.DisplayName)
	require.NotNil(t, entry.RetailPrice)
	assert.Equal(t, 21.50, *entry.RetailPrice)
	assert.Equal(t, models.StringList{"niacinamide", "zinc"}, entry.KeyActives)
	assert.Equal(t, "research", entry.Status, "untouched fields keep their value")

	w = doJSON(router, "PUT", "/catalog/hash-1", gin.H{"status": "bogus"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCatalogListFiltersByTypeAndConcern(t *testing.T) {
	db := handlerDB(t)
	h := NewCatalogHandler(db, logger.New("error"), events.NewProducer("", logger.New("error")))
	router := gin.New()
	router.GET("/catalog", h.List)

	score := 4.6
	require.NoError(t, db.Create(&models.CatalogProduct{
		ProductHash:   "hash-a",
		DisplayName:   "Acne Serum",
		Category:      "skincare-serums",
		ProductType:   "serum",
		Status:        "research",
		Source:        "scraper",
		SuitableFor:   models.StringList{"acne", "oily_skin"},
		EfficacyScore: &score,
	}).Error)
	require.NoError(t, db.Create(&models.CatalogProduct{
		ProductHash: "hash-b",
		DisplayName: "Gentle Cleanser",
		Category:    "skincare-cleansers",
		ProductType: "cleanser",
		Status:      "research",
		Source:      "scraper",
		SuitableFor: models.StringList{"sensitivity"},
	}).Error)

	var resp struct {
		Data []models.CatalogProduct `json:"data"`
	}

	w := doJSON(router, "GET", "/catalog?product_type=cleanser", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Data, 1)
	assert.Equal(t, "hash-b", resp.Data[0].ProductHash)

	w = doJSON(router, "GET", "/catalog?concern=acne", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Data, 1)
	assert.Equal(t, "hash-a", resp.Data[0].ProductHash)

	w = doJSON(router, "GET", "/catalog?sort=efficacy", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Data, 2)
	assert.Equal(t, "hash-a", resp.Data[0].ProductHash)

	// Unknown query params are ignored, never an error.
	w = doJSON(router, "GET", "/catalog?brand_type=luxury", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Len(t, resp.Data, 2)
}

func TestCatalogUpsertAndDelete(t *testing.T) {
	db := handlerDB(t)
	h := NewCatalogHandler(db, logger.New("error"), events.NewProducer("", logger.New("error")))
	router := gin.New()
	router.POST("/catalog", h.Upsert)
	router.DELETE("/catalog/:hash", h.Delete)

	w := doJSON(router, "POST", "/catalog", gin.H{
		"product_hash": "hash-new",
		"display_name": "Builder Gel",
		"category":     "nails",
		"product_type": "gel",
		"retail_price": 14.5,
	})
	require.Equal(t, http.StatusCreated, w.Code)

	var product models.CatalogProduct
	require.NoError(t, db.First(&product, "product_hash = ?", "hash-new").Error)
	assert.Equal(t, "research", product.Status)
	assert.Equal(t, "manual", product.Source)
	require.NotNil(t, product.RetailPrice)
	assert.Equal(t, 14.5, *product.RetailPrice)

	// Same hash again updates in place.
	w = doJSON(router, "POST", "/catalog", gin.H{
		"product_hash": "hash-new",
		"display_name": "Builder Gel Pro",
	})
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, db.First(&product, "product_hash = ?", "hash-new").Error)
	assert.Equal(t, "Builder Gel Pro", product.DisplayName)
	require.NotNil(t, product.RetailPrice)
	assert.Equal(t, 14.5, *product.RetailPrice)

	// New entries need a display name.
	w = doJSON(router, "POST", "/catalog", gin.H{"product_hash": "hash-blank"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	require.NoError(t, db.Create(&models.StockingDecision{
		ProductHash: "hash-new",
		Decision:    "stock",
	}).Error)

	w = doJSON(router, "DELETE", "/catalog/hash-new", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.ErrorIs(t, db.First(&models.CatalogProduct{}, "product_hash = ?", "hash-new").Error, gorm.ErrRecordNotFound)
	assert.ErrorIs(t, db.First(&models.StockingDecision{}, "product_hash = ?", "hash-new").Error, gorm.ErrRecordNotFound)

	w = doJSON(router, "DELETE", "/catalog/hash-new", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestStockingDecisionAdvancesStatus(t *testing.T) {
	db := handlerDB(t)
	h := NewStockingHandler(db, logger.New("error"))
	router := gin.New()
	router.POST("/decisions", h.Upsert)

	seedCatalogProduct(t, db, "hash-1", "Niacinamide Serum", "research")

	w := doJSON(router, "POST", "/decisions", gin.H{
		"product_hash": "hash-1",
		"decision":     "stock",
		"target_price": 18.50,
		"decided_by":   "maria",
	})
	require.Equal(t, http.StatusOK, w.Code)

	var entry models.CatalogProduct
	require.NoError(t, db.First(&entry, "product_hash = ?", "hash-1").Error)
	assert.Equal(t, "sampled", entry.Status)

	// Re-deciding overwrites, with one row per product.
	w = doJSON(router, "POST", "/decisions", gin.H{
		"product_hash": "hash-1",
		"decision":     "watchlist",
	})
	require.Equal(t, http.StatusOK, w.Code)

	var count int64
	db.Model(&models.StockingDecision{}).Count(&count)
	assert.Equal(t, int64(1), count)

	var decision models.StockingDecision
	require.NoError(t, db.First(&decision, "product_hash = ?", "hash-1").Error)
	assert.Equal(t, "watchlist", decision.Decision)

	w = doJSON(router, "POST", "/decisions", gin.H{"product_hash": "hash-1", "decision": "maybe"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(router, "POST", "/decisions", gin.H{"product_hash": "ghost", "decision": "stock"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestStockingBulkReportsRowErrors(t *testing.T) {
	db := handlerDB(t)
	h := NewStockingHandler(db, logger.New("error"))
	router := gin.New()
	router.POST("/decisions/bulk", h.BulkUpsert)

	seedCatalogProduct(t, db, "hash-1", "Serum A", "research")
	seedCatalogProduct(t, db, "hash-2", "Serum B", "research")

	w := doJSON(router, "POST", "/decisions/bulk", []gin.H{
		{"product_hash": "hash-1", "decision": "stock"},
		{"product_hash": "ghost", "decision": "stock"},
		{"product_hash": "hash-2", "decision": "reject"},
	})
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Data BulkDecisionResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 3, resp.Data.Total)
	assert.Equal(t, 2, resp.Data.Applied)
	require.Len(t, resp.Data.Errors, 1)
	assert.Equal(t, 1, resp.Data.Errors[0].Index)
	assert.Equal(t, "ghost", resp.Data.Errors[0].ProductHash)
}

func TestAlertsReview(t *testing.T) {
	db := handlerDB(t)
	h := NewAlertsHandler(db, logger.New("error"))
	router := gin.New()
	router.POST("/alerts/:id/review", h.Review)

	require.NoError(t, db.Create(&models.PriceAlert{
		ProductID: 1,
		OldPrice:  20,
		NewPrice:  15,
		ChangePct: -0.25,
	}).Error)

	w := doJSON(router, "POST", "/alerts/1/review", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var alert models.PriceAlert
	require.NoError(t, db.First(&alert, "id = ?", 1).Error)
	assert.True(t, alert.IsReviewed)
	assert.NotNil(t, alert.ReviewedAt)

	w = doJSON(router, "POST", "/alerts/999/review", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
