package notification

import (
	"context"
	"fmt"
	"time"

	"github.com/otoworks/otowork-backend/internal/repository"
	"github.com/otoworks/otowork-backend/internal/socket"
)

// Notification types
const (
	TypeProposalReceived    = "PROPOSAL_RECEIVED"
	TypeProposalAccepted    = "PROPOSAL_ACCEPTED"
	TypeProposalRejected    = "PROPOSAL_REJECTED"
	TypeDeliverySubmitted   = "DELIVERY_SUBMITTED"
	TypeEscrowReleased      = "ESCROW_RELEASED"
	TypeEscrowRefunded      = "ESCROW_REFUNDED"
	TypeWithdrawalCompleted = "WITHDRAWAL_COMPLETED"
	TypeWithdrawalFailed    = "WITHDRAWAL_FAILED"
	TypeNewMessage          = "NEW_MESSAGE"
	TypeDeadlineReminder    = "DEADLINE_REMINDER"
)

// Service persists notifications and pushes them over WebSocket
type Service struct {
	notificationRepo repository.NotificationRepository
	broadcaster      *socket.Broadcaster
}

// NewService creates a new notification service
func NewService(notificationRepo repository.NotificationRepository) *Service {
	return &Service{notificationRepo: notificationRepo}
}

func (s *Service) SetBroadcaster(b *socket.Broadcaster) {
	s.broadcaster = b
}

func (s *Service) send(ctx context.Context, n *repository.Notification) error {
	if n.UserID == "" {
		return nil // Skip if no user to notify
	}
	if err := s.notificationRepo.Create(ctx, n); err != nil {
		return err
	}
	if s.broadcaster != nil {
		s.broadcaster.NotifyUser(n.UserID, map[string]interface{}{
			"id":         n.ID,
			"type":       n.Type,
			"title":      n.Title,
			"message":    n.Message,
			"entityType": n.EntityType,
			"entityId":   n.EntityID,
			"read":       n.Read,
			"createdAt":  n.CreatedAt,
		})
	}
	return nil
}

func entityRef(entityType, entityID string) (*string, *string) {
	return &entityType, &entityID
}

// SendProposalReceived notifies a client that a creator submitted a proposal
func (s *Service) SendProposalReceived(ctx context.Context, clientID, projectTitle, proposalID string) error {
	et, eid := entityRef("proposal", proposalID)
	return s.send(ctx, &repository.Notification{
		UserID:     clientID,
		Type:       TypeProposalReceived,
		Title:      "New Proposal",
		Message:    fmt.Sprintf("You received a new proposal for: %s", projectTitle),
		EntityType: et,
		EntityID:   eid,
	})
}

// SendProposalDecided notifies a creator their proposal was accepted or rejected
func (s *Service) SendProposalDecided(ctx context.Context, creatorID, projectTitle, proposalID string, accepted bool) error {
	notifType := TypeProposalRejected
	message := fmt.Sprintf("Your proposal for %s was not selected", projectTitle)
	title := "Proposal Rejected"
	if accepted {
		notifType = TypeProposalAccepted
		message = fmt.Sprintf("Your proposal for %s was accepted. The project is now in progress", projectTitle)
		title = "Proposal Accepted"
	}
	et, eid := entityRef("proposal", proposalID)
	return s.send(ctx, &repository.Notification{
		UserID:     creatorID,
		Type:       notifType,
		Title:      title,
		Message:    message,
		EntityType: et,
		EntityID:   eid,
	})
}

// SendDeliverySubmitted notifies a client that work was delivered
func (s *Service) SendDeliverySubmitted(ctx context.Context, clientID, projectTitle, projectID string) error {
	et, eid := entityRef("project", projectID)
	return s.send(ctx, &repository.Notification{
		UserID:     clientID,
		Type:       TypeDeliverySubmitted,
		Title:      "Work Delivered",
		Message:    fmt.Sprintf("A deliverable was submitted for: %s", projectTitle),
		EntityType: et,
		EntityID:   eid,
	})
}

// SendEscrowReleased notifies a creator that escrow funds were released
func (s *Service) SendEscrowReleased(ctx context.Context, creatorID, projectTitle string, netPayout int64, escrowID string) error {
	et, eid := entityRef("escrow", escrowID)
	return s.send(ctx, &repository.Notification{
		UserID:     creatorID,
		Type:       TypeEscrowReleased,
		Title:      "Payment Released",
		Message:    fmt.Sprintf("¥%d was released to your balance for: %s", netPayout, projectTitle),
		EntityType: et,
		EntityID:   eid,
	})
}

// SendEscrowRefunded notifies a creator that the project was cancelled
func (s *Service) SendEscrowRefunded(ctx context.Context, creatorID, projectTitle, escrowID string) error {
	et, eid := entityRef("escrow", escrowID)
	return s.send(ctx, &repository.Notification{
		UserID:     creatorID,
		Type:       TypeEscrowRefunded,
		Title:      "Project Cancelled",
		Message:    fmt.Sprintf("The project %s was cancelled and the client refunded", projectTitle),
		EntityType: et,
		EntityID:   eid,
	})
}

// SendWithdrawalResult notifies a creator their payout completed or failed
func (s *Service) SendWithdrawalResult(ctx context.Context, creatorID, withdrawalID string, amount int64, completed bool, reason string) error {
	notifType := TypeWithdrawalFailed
	title := "Withdrawal Failed"
	message := fmt.Sprintf("Your withdrawal of ¥%d failed and the amount was returned to your balance", amount)
	if reason != "" {
		message = fmt.Sprintf("%s (%s)", message, reason)
	}
	if completed {
		notifType = TypeWithdrawalCompleted
		title = "Withdrawal Completed"
		message = fmt.Sprintf("Your withdrawal of ¥%d was completed", amount)
	}
	et, eid := entityRef("withdrawal", withdrawalID)
	return s.send(ctx, &repository.Notification{
		UserID:     creatorID,
		Type:       notifType,
		Title:      title,
		Message:    message,
		EntityType: et,
		EntityID:   eid,
	})
}

// SendNewMessage notifies a recipient of an unread conversation message
func (s *Service) SendNewMessage(ctx context.Context, recipientID, senderName, conversationID string) error {
	et, eid := entityRef("conversation", conversationID)
	return s.send(ctx, &repository.Notification{
		UserID:     recipientID,
		Type:       TypeNewMessage,
		Title:      "New Message",
		Message:    fmt.Sprintf("New message from %s", senderName),
		EntityType: et,
		EntityID:   eid,
	})
}

// SendDeadlineReminder warns a participant that a project deadline is near
func (s *Service) SendDeadlineReminder(ctx context.Context, userID, projectTitle, projectID string, deadline time.Time) error {
	et, eid := entityRef("project", projectID)
	return s.send(ctx, &repository.Notification{
		UserID:     userID,
		Type:       TypeDeadlineReminder,
		Title:      "Deadline Approaching",
		Message:    fmt.Sprintf("\"%s\" is due on %s", projectTitle, deadline.Format("Jan 2, 2006")),
		EntityType: et,
		EntityID:   eid,
	})
}
