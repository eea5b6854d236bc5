package models

import "time"

// ============================================
// Proposal DTOs
// ============================================

type SubmitProposalRequest struct {
	ProjectID    string `json:"projectId" binding:"required"`
	Amount       int64  `json:"amount" binding:"required,gt=0"`
	Message      string `json:"message"`
	DeliveryDays int    `json:"deliveryDays" binding:"required,gt=0"`
}

type ProposalResponse struct {
	ID           string    `json:"id"`
	ProjectID    string    `json:"projectId"`
	CreatorID    string    `json:"creatorId"`
	Amount       int64     `json:"amount"`
	DeliveryDays int       `json:"deliveryDays"`
	Message      string    `json:"message,omitempty"`
	Status       string    `json:"status"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

type AcceptProposalResponse struct {
	Proposal ProposalResponse `json:"proposal"`
	Escrow   EscrowResponse   `json:"escrow"`
}
