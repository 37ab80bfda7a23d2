package handlers

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"crazygels/internal/catalog"
	"crazygels/internal/events"
	"crazygels/internal/logger"
	"crazygels/internal/models"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type CatalogHandler struct {
	db       *gorm.DB
	logger   *logger.Logger
	producer *events.Producer
}

func NewCatalogHandler(db *gorm.DB, logger *logger.Logger, producer *events.Producer) *CatalogHandler {
	return &CatalogHandler{
		db:       db,
		logger:   logger,
		producer: producer,
	}
}

func (h *CatalogHandler) List(c *gin.Context) {
	var products []models.CatalogProduct

	// Pagination
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}
	offset := (page - 1) * limit

	// Filters
	status := c.Query("status")
	category := c.Query("category")
	productType := c.Query("product_type")
	priceTier := c.Query("price_tier")
	concern := c.Query("concern")
	search := c.Query("search")

	query := h.db.Model(&models.CatalogProduct{})

	if status != "" {
		query = query.Where("status = ?", status)
	}
	if category != "" {
		query = query.Where("category = ?", category)
	}
	if productType != "" {
		query = query.Where("product_type = ?", productType)
	}
	if priceTier != "" {
		query = query.Where("price_tier = ?", priceTier)
	}
	if concern != "" {
		query = query.Where(models.JSONTextExpr(h.db, "suitable_for")+" LIKE ?", `%"`+concern+`"%`)
	}
	if search != "" {
		query = query.Where("LOWER(display_name) LIKE ? OR LOWER(brand) LIKE ?",
			"%"+strings.ToLower(search)+"%", "%"+strings.ToLower(search)+"%")
	}

	var total int64
	query.Count(&total)

	err := query.Order(listOrder(c.Query("sort"))).Offset(offset).Limit(limit).Find(&products).Error
	if err != nil {
		h.logger.Error("Failed to list catalog products: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch catalog"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data": products,
		"pagination": gin.H{
			"page":  page,
			"limit": limit,
			"total": total,
		},
	})
}

// listOrder maps a sort key to an ORDER BY clause. NULLs sort last.
func listOrder(sort string) string {
	switch sort {
	case "efficacy":
		return "(efficacy_score IS NULL), efficacy_score DESC"
	case "price":
		return "(retail_price IS NULL), retail_price ASC"
	case "updated":
		return "updated_at DESC"
	default:
		return "created_at DESC"
	}
}

func (h *CatalogHandler) Get(c *gin.Context) {
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

	c.JSON(http.StatusOK, gin.H{"data": product})
}

// CurationUpdate carries the fields the admin UI can edit. A pointer left
// nil means "unchanged".
type CurationUpdate struct {
	DisplayName          *string  `json:"display_name"`
	DescriptionGenerated *string  `json:"description_generated"`
	ImageURL             *string  `json:"image_url"`
	RetailPrice          *float64 `json:"retail_price"`
	Status               *string  `json:"status"`
	KeyActives           []string `json:"key_actives"`
	SuitableFor          []string `json:"suitable_for"`
	Contraindications    []string `json:"contraindications"`
}

func (h *CatalogHandler) Update(c *gin.Context) {
	hash := c.Param("hash")

	var update CurationUpdate
	if err := c.ShouldBindJSON(&update); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

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

	if update.Status != nil && !models.ValidCatalogStatus(*update.Status) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid status: " + *update.Status})
		return
	}

	applyCuration(&product, &update)

	if err := h.db.Save(&product).Error; err != nil {
		h.logger.Error("Failed to update catalog product %s: %v", hash, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update product"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": product})
}

func applyCuration(product *models.CatalogProduct, update *CurationUpdate) {
	if update.DisplayName != nil {
		product.DisplayName = *update.DisplayName
	}
	if update.DescriptionGenerated != nil {
		product.DescriptionGenerated = update.DescriptionGenerated
	}
	if update.ImageURL != nil {
		product.ImageURL = update.ImageURL
	}
	if update.RetailPrice != nil {
		product.RetailPrice = update.RetailPrice
	}
	if update.Status != nil {
		product.Status = *update.Status
	}
	if update.KeyActives != nil {
		product.KeyActives = models.StringList(update.KeyActives)
	}
	if update.SuitableFor != nil {
		product.SuitableFor = models.StringList(update.SuitableFor)
	}
	if update.Contraindications != nil {
		product.Contraindications = models.StringList(update.Contraindications)
	}
	product.UpdatedAt = time.Now()
}

// CatalogUpsert is the insert-or-update payload, keyed on product_hash.
type CatalogUpsert struct {
	ProductHash string  `json:"product_hash" binding:"required"`
	Category    string  `json:"category"`
	ProductType string  `json:"product_type"`
	Brand       *string `json:"brand"`
	CurationUpdate
}

// Upsert creates a catalog entry if the hash is unknown, otherwise
// applies the payload as a curation update.
func (h *CatalogHandler) Upsert(c *gin.Context) {
	var input CatalogUpsert
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if input.Status != nil && !models.ValidCatalogStatus(*input.Status) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid status: " + *input.Status})
		return
	}

	var product models.CatalogProduct
	err := h.db.First(&product, "product_hash = ?", input.ProductHash).Error
	created := err == gorm.ErrRecordNotFound
	if err != nil && !created {
		h.logger.Error("Failed to fetch catalog product %s: %v", input.ProductHash, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to upsert product"})
		return
	}

	if created {
		product = models.CatalogProduct{
			ProductHash: input.ProductHash,
			Status:      string(models.StatusResearch),
			PriceTier:   "unknown",
			Source:      "manual",
		}
		if input.DisplayName == nil || *input.DisplayName == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "display_name is required for new products"})
			return
		}
	}

	if input.Category != "" {
		product.Category = input.Category
	}
	if input.ProductType != "" {
		product.ProductType = input.ProductType
	}
	if input.Brand != nil {
		product.Brand = input.Brand
	}
	applyCuration(&product, &input.CurationUpdate)

	if err := h.db.Save(&product).Error; err != nil {
		h.logger.Error("Failed to upsert catalog product %s: %v", input.ProductHash, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to upsert product"})
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	c.JSON(status, gin.H{"data": product})
}

// Delete removes a catalog entry and its stocking decision.
func (h *CatalogHandler) Delete(c *gin.Context) {
	hash := c.Param("hash")

	var product models.CatalogProduct
	if err := h.db.First(&product, "product_hash = ?", hash).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
			return
		}
		h.logger.Error("Failed to fetch catalog product %s: %v", hash, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete product"})
		return
	}

	if err := h.db.Delete(&product).Error; err != nil {
		h.logger.Error("Failed to delete catalog product %s: %v", hash, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete product"})
		return
	}
	h.db.Where("product_hash = ?", hash).Delete(&models.StockingDecision{})

	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}

// Promote runs the anonymised -> catalog promotion pass on demand.
func (h *CatalogHandler) Promote(c *gin.Context) {
	promoter := catalog.NewPromoter(h.db, h.logger)
	result, err := promoter.Run()
	if err != nil {
		h.logger.Error("Promotion run failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Promotion run failed"})
		return
	}

	if result.NewPromoted > 0 {
		h.producer.Publish(c.Request.Context(), events.Event{
			Type: events.TypeCatalogPromoted,
			Data: map[string]interface{}{
				"new_promoted":     result.NewPromoted,
				"efficacy_updated": result.EfficacyUpdated,
			},
		})
	}

	c.JSON(http.StatusOK, gin.H{"data": result})
}

// Anonymised serves the frontend-safe intelligence view.
func (h *CatalogHandler) Anonymised(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 200 {
		limit = 50
	}

	query := h.db.Model(&models.AnonymisedProduct{})
	if category := c.Query("category"); category != "" {
		query = query.Where("category = ?", category)
	}

	var total int64
	query.Count(&total)

	var products []models.AnonymisedProduct
	err := query.Order("last_updated DESC").Offset((page - 1) * limit).Limit(limit).Find(&products).Error
	if err != nil {
		h.logger.Error("Failed to list anonymised products: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch products"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data": products,
		"pagination": gin.H{
			"page":  page,
			"limit": limit,
			"total": total,
		},
	})
}
