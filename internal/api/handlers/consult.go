package handlers

import (
	"net/http"

	"crazygels/internal/consult"
	"crazygels/internal/logger"

	"github.com/gin-gonic/gin"
)

type ConsultHandler struct {
	consultant *consult.Consultant
	logger     *logger.Logger
}

func NewConsultHandler(consultant *consult.Consultant, logger *logger.Logger) *ConsultHandler {
	return &ConsultHandler{
		consultant: consultant,
		logger:     logger,
	}
}

type ConsultRequest struct {
	Messages []ConsultMessage `json:"messages" binding:"required"`
}

type ConsultMessage struct {
	Role    string `json:"role" binding:"required"`
	Content string `json:"content" binding:"required"`
}

// Chat answers one consultant turn. The client sends the whole visible
// conversation each time; there is no server-side session.
func (h *ConsultHandler) Chat(c *gin.Context) {
	if h.consultant == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Consultant not configured"})
		return
	}

	var req ConsultRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if len(req.Messages) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "messages must not be empty"})
		return
	}

	conversation := make([]consult.Message, 0, len(req.Messages))
	for _, m := range req.Messages {
		if m.Role != "user" && m.Role != "assistant" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid role: " + m.Role})
			return
		}
		conversation = append(conversation, consult.Message{Role: m.Role, Content: m.Content})
	}

	reply, recommendations, err := h.consultant.Reply(c.Request.Context(), conversation)
	if err != nil {
		h.logger.Error("Consultant reply failed: %v", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "Consultant is unavailable"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": gin.H{
		"reply":           reply,
		"recommendations": recommendations,
	}})
}
