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
// Withdrawal Handler
// ============================================

type WithdrawalHandler struct {
	withdrawalService service.WithdrawalService
}

func (h *WithdrawalHandler) Create(c *gin.Context) {
	userID, ok := middleware.RequireUserID(c)
	if !ok {
		return
	}

	var req models.CreateWithdrawalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	w, err := h.withdrawalService.Request(c.Request.Context(), userID, req.Amount, req.Method)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, toWithdrawalResponse(w))
}

func (h *WithdrawalHandler) Get(c *gin.Context) {
	userID, ok := middleware.RequireUserID(c)
	if !ok {
		return
	}

	w, err := h.withdrawalService.GetByID(c.Request.Context(), c.Param("id"), userID)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, toWithdrawalResponse(w))
}

func (h *WithdrawalHandler) List(c *gin.Context) {
	userID, ok := middleware.RequireUserID(c)
	if !ok {
		return
	}

	withdrawals, err := h.withdrawalService.ListByCreator(c.Request.Context(), userID)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	response := make([]models.WithdrawalResponse, len(withdrawals))
	for i, w := range withdrawals {
		response[i] = toWithdrawalResponse(w)
	}
	c.JSON(http.StatusOK, response)
}

func (h *WithdrawalHandler) GetBalance(c *gin.Context) {
	userID, ok := middleware.RequireUserID(c)
	if !ok {
		return
	}

	balance, err := h.withdrawalService.GetBalance(c.Request.Context(), userID)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.BalanceResponse{
		Available:   balance.Available,
		Pending:     balance.Pending,
		Withdrawn:   balance.Withdrawn,
		TotalEarned: balance.TotalEarned,
	})
}

// ============================================
// Earnings Handler
// ============================================

type EarningsHandler struct {
	earningsService service.EarningsService
}

func (h *EarningsHandler) Summary(c *gin.Context) {
	userID, ok := middleware.RequireUserID(c)
	if !ok {
		return
	}

	summary, err := h.earningsService.Summary(c.Request.Context(), userID)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.EarningsSummaryResponse{
		TotalEarnings:    summary.TotalEarnings,
		AvailableBalance: summary.AvailableBalance,
		PendingBalance:   summary.PendingBalance,
		WithdrawnAmount:  summary.WithdrawnAmount,
	})
}

func (h *EarningsHandler) History(c *gin.Context) {
	userID, ok := middleware.RequireUserID(c)
	if !ok {
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))

	entries, err := h.earningsService.History(c.Request.Context(), userID, limit)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	response := make([]models.EarningsEntryResponse, len(entries))
	for i, e := range entries {
		response[i] = models.EarningsEntryResponse{
			EscrowID:     e.EscrowID,
			ProjectID:    e.ProjectID,
			ProjectTitle: e.ProjectTitle,
			GrossAmount:  e.GrossAmount,
			Fee:          e.Fee,
			NetAmount:    e.NetAmount,
			ReleasedAt:   e.ReleasedAt,
		}
	}
	c.JSON(http.StatusOK, response)
}
