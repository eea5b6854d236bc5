package models

import "time"

// ============================================
// Project DTOs
// ============================================

type CreateProjectRequest struct {
	Title           string     `json:"title" binding:"required,min=3"`
	Category        string     `json:"category" binding:"required"`
	Description     *string    `json:"description"`
	BudgetMin       int64      `json:"budgetMin" binding:"required,gt=0"`
	BudgetMax       int64      `json:"budgetMax" binding:"required,gt=0"`
	Deadline        *time.Time `json:"deadline"`
	DeliveryFormats []string   `json:"deliveryFormats"`
	MaxRevisions    int        `json:"maxRevisions"`
	Publish         bool       `json:"publish"`
}

type UpdateProjectRequest struct {
	Title           *string    `json:"title"`
	Description     *string    `json:"description"`
	BudgetMin       *int64     `json:"budgetMin"`
	BudgetMax       *int64     `json:"budgetMax"`
	Deadline        *time.Time `json:"deadline"`
	DeliveryFormats []string   `json:"deliveryFormats"`
	MaxRevisions    *int       `json:"maxRevisions"`
}

type ProjectResponse struct {
	ID              string     `json:"id"`
	ClientID        string     `json:"clientId"`
	Title           string     `json:"title"`
	Category        string     `json:"category"`
	Description     *string    `json:"description,omitempty"`
	Status          string     `json:"status"`
	BudgetMin       int64      `json:"budgetMin"`
	BudgetMax       int64      `json:"budgetMax"`
	Deadline        *time.Time `json:"deadline,omitempty"`
	DeliveryFormats []string   `json:"deliveryFormats,omitempty"`
	MaxRevisions    int        `json:"maxRevisions"`
	CreatedAt       time.Time  `json:"createdAt"`
	UpdatedAt       time.Time  `json:"updatedAt"`
}

type SubmitDeliveryRequest struct {
	FileRef string  `json:"fileRef" binding:"required"`
	Message *string `json:"message"`
}

type DeliverableResponse struct {
	ID        string    `json:"id"`
	ProjectID string    `json:"projectId"`
	CreatorID string    `json:"creatorId"`
	FileRef   string    `json:"fileRef"`
	Message   *string   `json:"message,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}
