package handlers

import (
	"net/http"

	"crazygels/internal/feed"
	"crazygels/internal/logger"

	"github.com/gin-gonic/gin"
)

type FeedHandler struct {
	feed   *feed.Feed
	logger *logger.Logger
}

func NewFeedHandler(f *feed.Feed, logger *logger.Logger) *FeedHandler {
	return &FeedHandler{
		feed:   f,
		logger: logger,
	}
}

// Google serves the merchant feed. Built per request; Shopify is the
// source of truth so there is nothing to invalidate.
func (h *FeedHandler) Google(c *gin.Context) {
	data, err := h.feed.Generate()
	if err != nil {
		h.logger.Error("Failed to generate merchant feed: %v", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "Failed to generate feed"})
		return
	}

	c.Data(http.StatusOK, "application/xml; charset=utf-8", data)
}
