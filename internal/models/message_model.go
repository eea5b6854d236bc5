package models

import "time"

// ============================================
// Message DTOs
// ============================================

type SendMessageRequest struct {
	RecipientID string `json:"recipientId" binding:"required"`
	Body        string `json:"body" binding:"required,min=1"`
}

type MessageResponse struct {
	ID             string    `json:"id"`
	ConversationID string    `json:"conversationId"`
	SenderID       string    `json:"senderId"`
	RecipientID    string    `json:"recipientId"`
	Body           string    `json:"body"`
	Read           bool      `json:"read"`
	CreatedAt      time.Time `json:"createdAt"`
}

type ConversationResponse struct {
	ConversationID string    `json:"conversationId"`
	PeerID         string    `json:"peerId"`
	LastBody       string    `json:"lastBody"`
	LastAt         time.Time `json:"lastAt"`
	UnreadCount    int       `json:"unreadCount"`
}

// ============================================
// Notification DTOs
// ============================================

type NotificationResponse struct {
	ID         string    `json:"id"`
	Type       string    `json:"type"`
	Title      string    `json:"title"`
	Message    string    `json:"message"`
	EntityType *string   `json:"entityType,omitempty"`
	EntityID   *string   `json:"entityId,omitempty"`
	Read       bool      `json:"read"`
	CreatedAt  time.Time `json:"createdAt"`
}
