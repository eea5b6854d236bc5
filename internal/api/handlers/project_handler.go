package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/otoworks/otowork-backend/internal/api/middleware"
	"github.com/otoworks/otowork-backend/internal/models"
	"github.com/otoworks/otowork-backend/internal/repository"
	"github.com/otoworks/otowork-backend/internal/service"
)

// ============================================
// Project Handler
// ============================================

type ProjectHandler struct {
	projectService service.ProjectService
	escrowService  service.EscrowService
}

func (h *ProjectHandler) Create(c *gin.Context) {
	userID, ok := middleware.RequireUserID(c)
	if !ok {
		return
	}

	var req models.CreateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	project, err := h.projectService.Create(c.Request.Context(), userID, service.CreateProjectInput{
		Title:           req.Title,
		Category:        req.Category,
		Description:     req.Description,
		BudgetMin:       req.BudgetMin,
		BudgetMax:       req.BudgetMax,
		Deadline:        req.Deadline,
		DeliveryFormats: req.DeliveryFormats,
		MaxRevisions:    req.MaxRevisions,
		Publish:         req.Publish,
	})
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, toProjectResponse(project))
}

func (h *ProjectHandler) Get(c *gin.Context) {
	project, err := h.projectService.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, toProjectResponse(project))
}

func (h *ProjectHandler) List(c *gin.Context) {
	filter := repository.ProjectFilter{
		Status:   c.Query("status"),
		Category: c.Query("category"),
		ClientID: c.Query("clientId"),
	}
	if filter.Status == "" && filter.ClientID == "" {
		filter.Status = "open"
	}

	projects, err := h.projectService.List(c.Request.Context(), filter)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	response := make([]models.ProjectResponse, len(projects))
	for i, p := range projects {
		response[i] = toProjectResponse(p)
	}
	c.JSON(http.StatusOK, response)
}

func (h *ProjectHandler) Update(c *gin.Context) {
	userID, ok := middleware.RequireUserID(c)
	if !ok {
		return
	}

	var req models.UpdateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	project, err := h.projectService.Update(c.Request.Context(), c.Param("id"), userID, service.UpdateProjectInput{
		Title:           req.Title,
		Description:     req.Description,
		BudgetMin:       req.BudgetMin,
		BudgetMax:       req.BudgetMax,
		Deadline:        req.Deadline,
		DeliveryFormats: req.DeliveryFormats,
		MaxRevisions:    req.MaxRevisions,
	})
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, toProjectResponse(project))
}

func (h *ProjectHandler) Publish(c *gin.Context) {
	userID, ok := middleware.RequireUserID(c)
	if !ok {
		return
	}

	project, err := h.projectService.Publish(c.Request.Context(), c.Param("id"), userID)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, toProjectResponse(project))
}

// SubmitDelivery uploads a deliverable reference for an in-progress project
func (h *ProjectHandler) SubmitDelivery(c *gin.Context) {
	userID, ok := middleware.RequireUserID(c)
	if !ok {
		return
	}

	var req models.SubmitDeliveryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	deliverable, err := h.escrowService.SubmitDelivery(c.Request.Context(), c.Param("id"), userID, req.FileRef, req.Message)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, toDeliverableResponse(deliverable))
}
