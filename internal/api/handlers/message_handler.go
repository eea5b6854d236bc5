package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/otoworks/otowork-backend/internal/api/middleware"
	"github.com/otoworks/otowork-backend/internal/models"
	"github.com/otoworks/otowork-backend/internal/service"
)

// ============================================
// Message Handler
// ============================================

type MessageHandler struct {
	messageService service.MessageService
}

func (h *MessageHandler) Send(c *gin.Context) {
	userID, ok := middleware.RequireUserID(c)
	if !ok {
		return
	}

	var req models.SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	m, err := h.messageService.Send(c.Request.Context(), userID, req.RecipientID, req.Body)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, toMessageResponse(m))
}

func (h *MessageHandler) ListConversations(c *gin.Context) {
	userID, ok := middleware.RequireUserID(c)
	if !ok {
		return
	}

	conversations, err := h.messageService.ListConversations(c.Request.Context(), userID)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	response := make([]models.ConversationResponse, len(conversations))
	for i, conv := range conversations {
		response[i] = models.ConversationResponse{
			ConversationID: conv.ConversationID,
			PeerID:         conv.PeerID,
			LastBody:       conv.LastBody,
			LastAt:         conv.LastAt,
			UnreadCount:    conv.UnreadCount,
		}
	}
	c.JSON(http.StatusOK, response)
}

func (h *MessageHandler) GetThread(c *gin.Context) {
	userID, ok := middleware.RequireUserID(c)
	if !ok {
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))

	messages, err := h.messageService.GetThread(c.Request.Context(), userID, c.Param("peerId"), limit)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	response := make([]models.MessageResponse, len(messages))
	for i, m := range messages {
		response[i] = toMessageResponse(m)
	}
	c.JSON(http.StatusOK, response)
}

func (h *MessageHandler) MarkRead(c *gin.Context) {
	userID, ok := middleware.RequireUserID(c)
	if !ok {
		return
	}

	if err := h.messageService.MarkRead(c.Request.Context(), userID, c.Param("peerId")); err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Conversation marked as read"})
}
