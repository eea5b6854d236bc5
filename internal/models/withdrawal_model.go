package models

import "time"

// ============================================
// Withdrawal DTOs
// ============================================

type CreateWithdrawalRequest struct {
	Amount int64  `json:"amount" binding:"required,gt=0"`
	Method string `json:"method" binding:"required,oneof=bank paypal"`
}

type WithdrawalResponse struct {
	ID            string     `json:"id"`
	CreatorID     string     `json:"creatorId"`
	Amount        int64      `json:"amount"`
	Fee           int64      `json:"fee"`
	Method        string     `json:"method"`
	Status        string     `json:"status"`
	FailureReason *string    `json:"failureReason,omitempty"`
	RequestDate   time.Time  `json:"requestDate"`
	CompleteDate  *time.Time `json:"completeDate,omitempty"`
}

type BalanceResponse struct {
	Available   int64 `json:"available"`
	Pending     int64 `json:"pending"`
	Withdrawn   int64 `json:"withdrawn"`
	TotalEarned int64 `json:"totalEarned"`
}

// PayoutCallbackRequest is the payout processor webhook payload.
type PayoutCallbackRequest struct {
	EventID      string `json:"eventId" binding:"required"`
	WithdrawalID string `json:"withdrawalId" binding:"required"`
	Status       string `json:"status" binding:"required,oneof=completed failed"`
	Reason       string `json:"reason"`
}

// ============================================
// Earnings DTOs
// ============================================

type EarningsSummaryResponse struct {
	TotalEarnings    int64 `json:"totalEarnings"`
	AvailableBalance int64 `json:"availableBalance"`
	PendingBalance   int64 `json:"pendingBalance"`
	WithdrawnAmount  int64 `json:"withdrawnAmount"`
}

type EarningsEntryResponse struct {
	EscrowID     string    `json:"escrowId"`
	ProjectID    string    `json:"projectId"`
	ProjectTitle string    `json:"projectTitle"`
	GrossAmount  int64     `json:"grossAmount"`
	Fee          int64     `json:"fee"`
	NetAmount    int64     `json:"netAmount"`
	ReleasedAt   time.Time `json:"releasedAt"`
}
