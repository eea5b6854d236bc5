package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/otoworks/otowork-backend/internal/api/middleware"
	"github.com/otoworks/otowork-backend/internal/models"
	"github.com/otoworks/otowork-backend/internal/service"
)

// ============================================
// Escrow Handler
// ============================================

type EscrowHandler struct {
	escrowService service.EscrowService
}

func (h *EscrowHandler) Get(c *gin.Context) {
	tx, err := h.escrowService.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, toEscrowResponse(tx))
}

func (h *EscrowHandler) GetByProject(c *gin.Context) {
	tx, err := h.escrowService.GetByProjectID(c.Request.Context(), c.Param("id"))
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, toEscrowResponse(tx))
}

// Quote previews the fee breakdown for an amount
func (h *EscrowHandler) Quote(c *gin.Context) {
	var req models.QuoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	fees, err := h.escrowService.Quote(req.Amount)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.QuoteResponse{
		GrossAmount:  fees.GrossAmount,
		PlatformFee:  fees.PlatformFee,
		Tax:          fees.Tax,
		TotalCharged: fees.Total,
		NetPayout:    fees.NetPayout,
	})
}

// Release settles a held transaction to the creator after delivery approval
func (h *EscrowHandler) Release(c *gin.Context) {
	userID, ok := middleware.RequireUserID(c)
	if !ok {
		return
	}

	tx, err := h.escrowService.Release(c.Request.Context(), c.Param("id"), userID)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, toEscrowResponse(tx))
}

// Refund returns a held transaction to the client and cancels the project
func (h *EscrowHandler) Refund(c *gin.Context) {
	userID, ok := middleware.RequireUserID(c)
	if !ok {
		return
	}

	var req models.RefundRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	tx, err := h.escrowService.Refund(c.Request.Context(), c.Param("id"), userID, req.Reason)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, toEscrowResponse(tx))
}
