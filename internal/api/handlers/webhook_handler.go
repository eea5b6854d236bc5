package handlers

import (
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/otoworks/otowork-backend/internal/db"
	"github.com/otoworks/otowork-backend/internal/models"
	"github.com/otoworks/otowork-backend/internal/service"
)

// ============================================
// Webhook Handler
// ============================================

// WebhookHandler receives payout processor callbacks. Callbacks are
// retried by the processor, so every path here must be idempotent.
type WebhookHandler struct {
	withdrawalService service.WithdrawalService
	redis             *db.RedisDB
}

func (h *WebhookHandler) PayoutCallback(c *gin.Context) {
	var req models.PayoutCallbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	// Fast duplicate drop. The conditional status update below is the
	// real guard; this just spares the DB on hot retries.
	if h.redis != nil {
		fresh, err := h.redis.MarkProcessed(c.Request.Context(), "payout:"+req.EventID, 24*time.Hour)
		if err != nil {
			log.Printf("⚠️ [Webhook] Dedupe check failed for event %s: %v", req.EventID, err)
		} else if !fresh {
			c.JSON(http.StatusOK, gin.H{"message": "Already processed"})
			return
		}
	}

	var err error
	switch req.Status {
	case "completed":
		err = h.withdrawalService.Complete(c.Request.Context(), req.WithdrawalID)
	case "failed":
		err = h.withdrawalService.Fail(c.Request.Context(), req.WithdrawalID, req.Reason)
	}

	if err != nil {
		if err == service.ErrInvalidTransition {
			// Already settled by an earlier delivery of this event.
			c.JSON(http.StatusOK, gin.H{"message": "Already processed"})
			return
		}
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Processed"})
}
