package handlers

import (
	"net/http"
	"strings"

	"crazygels/internal/logger"
	"crazygels/internal/services/klaviyo"

	"github.com/gin-gonic/gin"
)

type NewsletterHandler struct {
	klaviyo *klaviyo.Client
	logger  *logger.Logger
}

func NewNewsletterHandler(client *klaviyo.Client, logger *logger.Logger) *NewsletterHandler {
	return &NewsletterHandler{
		klaviyo: client,
		logger:  logger,
	}
}

type SubscribeRequest struct {
	Email string `json:"email" binding:"required"`
}

func (h *NewsletterHandler) Subscribe(c *gin.Context) {
	var req SubscribeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	email := strings.TrimSpace(strings.ToLower(req.Email))
	if !strings.Contains(email, "@") {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid email"})
		return
	}

	if !h.klaviyo.Configured() {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Newsletter signup not configured"})
		return
	}

	if err := h.klaviyo.Subscribe(email); err != nil {
		h.logger.Error("Klaviyo subscribe failed: %v", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "Signup failed, please try again"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "subscribed"})
}
