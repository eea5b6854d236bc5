package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/otoworks/otowork-backend/internal/api/middleware"
	"github.com/otoworks/otowork-backend/internal/models"
	"github.com/otoworks/otowork-backend/internal/service"
)

// ============================================
// Proposal Handler
// ============================================

type ProposalHandler struct {
	proposalService service.ProposalService
}

func (h *ProposalHandler) Submit(c *gin.Context) {
	userID, ok := middleware.RequireUserID(c)
	if !ok {
		return
	}

	var req models.SubmitProposalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	proposal, err := h.proposalService.Submit(c.Request.Context(), userID, service.SubmitProposalInput{
		ProjectID:    req.ProjectID,
		Amount:       req.Amount,
		Message:      req.Message,
		DeliveryDays: req.DeliveryDays,
	})
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, toProposalResponse(proposal))
}

func (h *ProposalHandler) Get(c *gin.Context) {
	proposal, err := h.proposalService.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, toProposalResponse(proposal))
}

// ListByProject returns all proposals on a project. Client only.
func (h *ProposalHandler) ListByProject(c *gin.Context) {
	userID, ok := middleware.RequireUserID(c)
	if !ok {
		return
	}

	proposals, err := h.proposalService.ListByProject(c.Request.Context(), c.Param("id"), userID)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	response := make([]models.ProposalResponse, len(proposals))
	for i, p := range proposals {
		response[i] = toProposalResponse(p)
	}
	c.JSON(http.StatusOK, response)
}

// ListMine returns the authenticated creator's proposals
func (h *ProposalHandler) ListMine(c *gin.Context) {
	userID, ok := middleware.RequireUserID(c)
	if !ok {
		return
	}

	proposals, err := h.proposalService.ListByCreator(c.Request.Context(), userID)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	response := make([]models.ProposalResponse, len(proposals))
	for i, p := range proposals {
		response[i] = toProposalResponse(p)
	}
	c.JSON(http.StatusOK, response)
}

func (h *ProposalHandler) Accept(c *gin.Context) {
	userID, ok := middleware.RequireUserID(c)
	if !ok {
		return
	}

	result, err := h.proposalService.Accept(c.Request.Context(), c.Param("id"), userID)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.AcceptProposalResponse{
		Proposal: toProposalResponse(result.Proposal),
		Escrow:   toEscrowResponse(result.Escrow),
	})
}

func (h *ProposalHandler) Reject(c *gin.Context) {
	userID, ok := middleware.RequireUserID(c)
	if !ok {
		return
	}

	proposal, err := h.proposalService.Reject(c.Request.Context(), c.Param("id"), userID)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, toProposalResponse(proposal))
}
