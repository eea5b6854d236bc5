package service

import (
	"context"
	"strings"

	"github.com/otoworks/otowork-backend/internal/notification"
	"github.com/otoworks/otowork-backend/internal/repository"
	"github.com/otoworks/otowork-backend/internal/socket"
)

// ============================================
// Message Service
// ============================================

type MessageService interface {
	Send(ctx context.Context, senderID, recipientID, body string) (*repository.Message, error)
	ListConversations(ctx context.Context, userID string) ([]*repository.Conversation, error)
	GetThread(ctx context.Context, userID, peerID string, limit int) ([]*repository.Message, error)
	MarkRead(ctx context.Context, userID, peerID string) error
}

type messageService struct {
	messageRepo repository.MessageRepository
	userRepo    repository.UserRepository
	notifSvc    *notification.Service
	broadcaster *socket.Broadcaster
}

func NewMessageService(
	messageRepo repository.MessageRepository,
	userRepo repository.UserRepository,
	notifSvc *notification.Service,
	broadcaster *socket.Broadcaster,
) MessageService {
	return &messageService{
		messageRepo: messageRepo,
		userRepo:    userRepo,
		notifSvc:    notifSvc,
		broadcaster: broadcaster,
	}
}

// ConversationID derives a stable identifier for a user pair so both
// sides address the same thread.
func ConversationID(a, b string) string {
	if a > b {
		a, b = b, a
	}
	return a + ":" + b
}

func (s *messageService) Send(ctx context.Context, senderID, recipientID, body string) (*repository.Message, error) {
	body = strings.TrimSpace(body)
	if body == "" || recipientID == "" || senderID == recipientID {
		return nil, ErrInvalidInput
	}

	recipient, err := s.userRepo.FindByID(ctx, recipientID)
	if err != nil {
		return nil, err
	}
	if recipient == nil {
		return nil, ErrNotFound
	}

	m := &repository.Message{
		ConversationID: ConversationID(senderID, recipientID),
		SenderID:       senderID,
		RecipientID:    recipientID,
		Body:           body,
	}
	if err := s.messageRepo.Create(ctx, m); err != nil {
		return nil, err
	}

	if s.broadcaster != nil {
		s.broadcaster.ChatMessage(m.ConversationID, senderID, recipientID, map[string]interface{}{
			"messageId":      m.ID,
			"conversationId": m.ConversationID,
			"senderId":       senderID,
			"body":           body,
			"createdAt":      m.CreatedAt,
		})
	}
	if s.notifSvc != nil {
		sender, err := s.userRepo.FindByID(ctx, senderID)
		if err == nil && sender != nil {
			s.notifSvc.SendNewMessage(ctx, recipientID, sender.Name, m.ConversationID)
		}
	}
	return m, nil
}

func (s *messageService) ListConversations(ctx context.Context, userID string) ([]*repository.Conversation, error) {
	return s.messageRepo.FindConversations(ctx, userID)
}

func (s *messageService) GetThread(ctx context.Context, userID, peerID string, limit int) ([]*repository.Message, error) {
	if peerID == "" {
		return nil, ErrInvalidInput
	}
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	return s.messageRepo.FindByConversationID(ctx, ConversationID(userID, peerID), limit)
}

func (s *messageService) MarkRead(ctx context.Context, userID, peerID string) error {
	if peerID == "" {
		return ErrInvalidInput
	}
	return s.messageRepo.MarkConversationRead(ctx, ConversationID(userID, peerID), userID)
}
