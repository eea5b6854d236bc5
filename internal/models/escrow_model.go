package models

import "time"

// ============================================
// Escrow DTOs
// ============================================

type EscrowResponse struct {
	ID           string    `json:"id"`
	ProjectID    string    `json:"projectId"`
	ProposalID   string    `json:"proposalId"`
	GrossAmount  int64     `json:"grossAmount"`
	PlatformFee  int64     `json:"platformFee"`
	Tax          int64     `json:"tax"`
	TotalCharged int64     `json:"totalCharged"`
	NetPayout    int64     `json:"netPayout"`
	Status       string    `json:"status"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

type RefundRequest struct {
	Reason string `json:"reason" binding:"required,min=3"`
}

// QuoteRequest asks for a fee breakdown without creating anything.
type QuoteRequest struct {
	Amount int64 `json:"amount" binding:"required,gt=0"`
}

type QuoteResponse struct {
	GrossAmount  int64 `json:"grossAmount"`
	PlatformFee  int64 `json:"platformFee"`
	Tax          int64 `json:"tax"`
	TotalCharged int64 `json:"totalCharged"`
	NetPayout    int64 `json:"netPayout"`
}
