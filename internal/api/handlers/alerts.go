package handlers

import (
	"net/http"
	"strconv"
	"time"

	"crazygels/internal/logger"
	"crazygels/internal/models"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// AlertsHandler exposes competitor price alerts to the purchasing team.
type AlertsHandler struct {
	db     *gorm.DB
	logger *logger.Logger
}

func NewAlertsHandler(db *gorm.DB, logger *logger.Logger) *AlertsHandler {
	return &AlertsHandler{
		db:     db,
		logger: logger,
	}
}

func (h *AlertsHandler) List(c *gin.Context) {
	var alerts []models.PriceAlert

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}

	query := h.db.Model(&models.PriceAlert{})
	if reviewed := c.Query("reviewed"); reviewed != "" {
		query = query.Where("is_reviewed = ?", reviewed == "true")
	}

	var total int64
	query.Count(&total)

	err := query.Order("detected_at DESC").Offset((page - 1) * limit).Limit(limit).Find(&alerts).Error
	if err != nil {
		h.logger.Error("Failed to list price alerts: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch alerts"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data": alerts,
		"pagination": gin.H{
			"page":  page,
			"limit": limit,
			"total": total,
		},
	})
}

func (h *AlertsHandler) Get(c *gin.Context) {
	id := c.Param("id")

	var alert models.PriceAlert
	if err := h.db.First(&alert, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			c.JSON(http.StatusNotFound, gin.H{"error": "Alert not found"})
			return
		}
		h.logger.Error("Failed to fetch alert %s: %v", id, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch alert"})
		return
	}

	var product models.ScrapedProduct
	if err := h.db.First(&product, alert.ProductID).Error; err != nil {
		c.JSON(http.StatusOK, gin.H{"data": alert})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": alert, "product": product})
}

func (h *AlertsHandler) Review(c *gin.Context) {
	id := c.Param("id")

	var alert models.PriceAlert
	if err := h.db.First(&alert, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			c.JSON(http.StatusNotFound, gin.H{"error": "Alert not found"})
			return
		}
		h.logger.Error("Failed to fetch alert %s: %v", id, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch alert"})
		return
	}

	now := time.Now()
	alert.IsReviewed = true
	alert.ReviewedAt = &now

	if err := h.db.Save(&alert).Error; err != nil {
		h.logger.Error("Failed to review alert %s: %v", id, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to review alert"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": alert})
}
