package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/otoworks/otowork-backend/internal/db"
	"github.com/otoworks/otowork-backend/internal/models"
	"github.com/otoworks/otowork-backend/internal/repository"
	"github.com/otoworks/otowork-backend/internal/service"
)

// Handlers contains all HTTP handlers
type Handlers struct {
	Auth         *AuthHandler
	Project      *ProjectHandler
	Proposal     *ProposalHandler
	Escrow       *EscrowHandler
	Withdrawal   *WithdrawalHandler
	Earnings     *EarningsHandler
	Message      *MessageHandler
	Notification *NotificationHandler
	Webhook      *WebhookHandler
}

// NewHandlers creates all handlers
func NewHandlers(services *service.Services, redis *db.RedisDB) *Handlers {
	return &Handlers{
		Auth:         &AuthHandler{authService: services.Auth},
		Project:      &ProjectHandler{projectService: services.Project, escrowService: services.Escrow},
		Proposal:     &ProposalHandler{proposalService: services.Proposal},
		Escrow:       &EscrowHandler{escrowService: services.Escrow},
		Withdrawal:   &WithdrawalHandler{withdrawalService: services.Withdrawal},
		Earnings:     &EarningsHandler{earningsService: services.Earnings},
		Message:      &MessageHandler{messageService: services.Message},
		Notification: &NotificationHandler{notificationService: services.Notification},
		Webhook:      &WebhookHandler{withdrawalService: services.Withdrawal, redis: redis},
	}
}

// handleServiceError maps service sentinel errors onto HTTP statuses.
// Anything unknown is a 500 with a generic body.
func handleServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
	case errors.Is(err, service.ErrUnauthorized), errors.Is(err, service.ErrInvalidCredentials), errors.Is(err, service.ErrInvalidToken):
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": "Forbidden"})
	case errors.Is(err, service.ErrUserExists):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrAlreadyDecided), errors.Is(err, service.ErrNotHeld), errors.Is(err, service.ErrProjectNotOpen), errors.Is(err, service.ErrInvalidTransition):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrOutOfBudget), errors.Is(err, service.ErrBelowMinimum), errors.Is(err, service.ErrInvalidInput), errors.Is(err, service.ErrNothingDelivered):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrInsufficientBalance):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrPaymentDeclined):
		c.JSON(http.StatusPaymentRequired, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}

// ============================================
// Response Mappers
// ============================================

func toUserResponse(u *repository.User) models.UserResponse {
	return models.UserResponse{
		ID:        u.ID,
		Email:     u.Email,
		Name:      u.Name,
		Role:      u.Role,
		CreatedAt: u.CreatedAt,
	}
}

func toProjectResponse(p *repository.Project) models.ProjectResponse {
	return models.ProjectResponse{
		ID:              p.ID,
		ClientID:        p.ClientID,
		Title:           p.Title,
		Category:        p.Category,
		Description:     p.Description,
		Status:          p.Status,
		BudgetMin:       p.BudgetMin,
		BudgetMax:       p.BudgetMax,
		Deadline:        p.Deadline,
		DeliveryFormats: p.DeliveryFormats,
		MaxRevisions:    p.MaxRevisions,
		CreatedAt:       p.CreatedAt,
		UpdatedAt:       p.UpdatedAt,
	}
}

func toProposalResponse(p *repository.Proposal) models.ProposalResponse {
	return models.ProposalResponse{
		ID:           p.ID,
		ProjectID:    p.ProjectID,
		CreatorID:    p.CreatorID,
		Amount:       p.Amount,
		DeliveryDays: p.DeliveryDays,
		Message:      p.Message,
		Status:       p.Status,
		CreatedAt:    p.CreatedAt,
		UpdatedAt:    p.UpdatedAt,
	}
}

func toEscrowResponse(t *repository.EscrowTransaction) models.EscrowResponse {
	return models.EscrowResponse{
		ID:           t.ID,
		ProjectID:    t.ProjectID,
		ProposalID:   t.ProposalID,
		GrossAmount:  t.GrossAmount,
		PlatformFee:  t.PlatformFee,
		Tax:          t.Tax,
		TotalCharged: t.TotalCharged,
		NetPayout:    t.NetPayout,
		Status:       t.Status,
		CreatedAt:    t.CreatedAt,
		UpdatedAt:    t.UpdatedAt,
	}
}

func toDeliverableResponse(d *repository.Deliverable) models.DeliverableResponse {
	return models.DeliverableResponse{
		ID:        d.ID,
		ProjectID: d.ProjectID,
		CreatorID: d.CreatorID,
		FileRef:   d.FileRef,
		Message:   d.Message,
		CreatedAt: d.CreatedAt,
	}
}

func toWithdrawalResponse(w *repository.WithdrawalRequest) models.WithdrawalResponse {
	return models.WithdrawalResponse{
		ID:            w.ID,
		CreatorID:     w.CreatorID,
		Amount:        w.Amount,
		Fee:           w.Fee,
		Method:        w.Method,
		Status:        w.Status,
		FailureReason: w.FailureReason,
		RequestDate:   w.RequestDate,
		CompleteDate:  w.CompleteDate,
	}
}

func toMessageResponse(m *repository.Message) models.MessageResponse {
	return models.MessageResponse{
		ID:             m.ID,
		ConversationID: m.ConversationID,
		SenderID:       m.SenderID,
		RecipientID:    m.RecipientID,
		Body:           m.Body,
		Read:           m.Read,
		CreatedAt:      m.CreatedAt,
	}
}

func toNotificationResponse(n *repository.Notification) models.NotificationResponse {
	return models.NotificationResponse{
		ID:         n.ID,
		Type:       n.Type,
		Title:      n.Title,
		Message:    n.Message,
		EntityType: n.EntityType,
		EntityID:   n.EntityID,
		Read:       n.Read,
		CreatedAt:  n.CreatedAt,
	}
}
