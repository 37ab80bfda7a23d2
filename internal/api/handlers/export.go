package handlers

import (
	"net/http"

	"crazygels/internal/export"
	"crazygels/internal/logger"
	"crazygels/internal/models"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type ExportHandler struct {
	db     *gorm.DB
	logger *logger.Logger
}

func NewExportHandler(db *gorm.DB, logger *logger.Logger) *ExportHandler {
	return &ExportHandler{
		db:     db,
		logger: logger,
	}
}

// CatalogCSV streams the full curation table.
func (h *ExportHandler) CatalogCSV(c *gin.Context) {
	var products []models.CatalogProduct
	if err := h.db.Order("created_at").Find(&products).Error; err != nil {
		h.logger.Error("Failed to load catalog for export: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to export catalog"})
		return
	}

	data, err := export.CatalogCSV(products)
	if err != nil {
		h.logger.Error("Failed to render catalog CSV: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to export catalog"})
		return
	}

	c.Header("Content-Disposition", `attachment; filename="catalog.csv"`)
	c.Data(http.StatusOK, "text/csv", data)
}

// ShopifyCSV streams the Shopify product import template, stock-decided
// products only.
func (h *ExportHandler) ShopifyCSV(c *gin.Context) {
	var products []models.CatalogProduct
	if err := h.db.Order("created_at").Find(&products).Error; err != nil {
		h.logger.Error("Failed to load catalog for export: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to export catalog"})
		return
	}

	var decisionRows []models.StockingDecision
	if err := h.db.Find(&decisionRows).Error; err != nil {
		h.logger.Error("Failed to load decisions for export: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to export catalog"})
		return
	}
	decisions := make(map[string]models.StockingDecision, len(decisionRows))
	for _, d := range decisionRows {
		decisions[d.ProductHash] = d
	}

	data, err := export.ShopifyCSV(products, decisions)
	if err != nil {
		h.logger.Error("Failed to render Shopify CSV: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to export catalog"})
		return
	}

	c.Header("Content-Disposition", `attachment; filename="shopify_products.csv"`)
	c.Data(http.StatusOK, "text/csv", data)
}

// ImportCatalog ingests a catalog CSV. Bad rows are reported, good rows
// are applied.
func (h *ExportHandler) ImportCatalog(c *gin.Context) {
	file, _, err := c.Request.FormFile("file")
	if err != nil {
		// Fall back to a raw CSV body.
		result, impErr := export.NewImporter(h.db, h.logger).ImportCatalog(c.Request.Body)
		if impErr != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": impErr.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"data": result})
		return
	}
	defer file.Close()

	result, err := export.NewImporter(h.db, h.logger).ImportCatalog(file)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": result})
}

// Reports

func (h *ExportHandler) IntelligenceReport(c *gin.Context) {
	data, err := export.NewReporter(h.db, h.logger).Intelligence()
	if err != nil {
		h.logger.Error("Failed to build intelligence report: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to build report"})
		return
	}
	c.Data(http.StatusOK, "application/json", data)
}

func (h *ExportHandler) PriceTrendsCSV(c *gin.Context) {
	data, err := export.NewReporter(h.db, h.logger).PriceTrendsCSV()
	if err != nil {
		h.logger.Error("Failed to build price trends report: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to build report"})
		return
	}
	c.Header("Content-Disposition", `attachment; filename="price_trends.csv"`)
	c.Data(http.StatusOK, "text/csv", data)
}

func (h *ExportHandler) AlertReport(c *gin.Context) {
	data, err := export.NewReporter(h.db, h.logger).Alerts()
	if err != nil {
		h.logger.Error("Failed to build alert report: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to build report"})
		return
	}
	c.Data(http.StatusOK, "application/json", data)
}
