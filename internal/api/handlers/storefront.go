package handlers

import (
	"net/http"
	"strconv"

	"crazygels/internal/logger"
	"crazygels/internal/services/shopify"

	"github.com/gin-gonic/gin"
)

// StorefrontHandler proxies the Storefront API for the web frontend so
// the storefront token never ships to the browser.
type StorefrontHandler struct {
	storefront *shopify.Storefront
	logger     *logger.Logger
}

func NewStorefrontHandler(storefront *shopify.Storefront, logger *logger.Logger) *StorefrontHandler {
	return &StorefrontHandler{
		storefront: storefront,
		logger:     logger,
	}
}

func (h *StorefrontHandler) Collection(c *gin.Context) {
	handle := c.Param("handle")
	first, _ := strconv.Atoi(c.DefaultQuery("first", "24"))
	if first < 1 || first > 100 {
		first = 24
	}

	collection, err := h.storefront.GetCollection(c.Request.Context(), handle, first)
	if err != nil {
		h.logger.Error("Failed to fetch collection %s: %v", handle, err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "Failed to fetch collection"})
		return
	}
	if collection == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Collection not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": collection})
}

func (h *StorefrontHandler) Product(c *gin.Context) {
	handle := c.Param("handle")

	product, err := h.storefront.GetProductByHandle(c.Request.Context(), handle)
	if err != nil {
		h.logger.Error("Failed to fetch product %s: %v", handle, err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "Failed to fetch product"})
		return
	}
	if product == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": product})
}

func (h *StorefrontHandler) CreateCart(c *gin.Context) {
	cart, err := h.storefront.CreateCart(c.Request.Context())
	if err != nil {
		h.logger.Error("Failed to create cart: %v", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "Failed to create cart"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": cart})
}

type AddLineRequest struct {
	VariantID string `json:"variant_id" binding:"required"`
	Quantity  int    `json:"quantity"`
}

func (h *StorefrontHandler) AddCartLine(c *gin.Context) {
	cartID := c.Param("id")

	var req AddLineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Quantity < 1 {
		req.Quantity = 1
	}

	cart, err := h.storefront.AddCartLines(c.Request.Context(), cartID, req.VariantID, req.Quantity)
	if err != nil {
		h.logger.Error("Failed to add cart line: %v", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "Failed to add to cart"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": cart})
}

func (h *StorefrontHandler) Cart(c *gin.Context) {
	cart, err := h.storefront.GetCart(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.logger.Error("Failed to fetch cart: %v", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "Failed to fetch cart"})
		return
	}
	if cart == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Cart not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": cart})
}
