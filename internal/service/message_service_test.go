package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/otoworks/otowork-backend/internal/repository"
	"github.com/otoworks/otowork-backend/internal/types"
)

type memMessageRepo struct {
	mu       sync.Mutex
	messages []*repository.Message
}

func (r *memMessageRepo) Create(ctx context.Context, m *repository.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *m
	r.messages = append(r.messages, &cp)
	return nil
}

func (r *memMessageRepo) FindByConversationID(ctx context.Context, conversationID string, limit int) ([]*repository.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*repository.Message
	for _, m := range r.messages {
		if m.ConversationID == conversationID {
			cp := *m
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *memMessageRepo) FindConversations(ctx context.Context, userID string) ([]*repository.Conversation, error) {
	return nil, nil
}

func (r *memMessageRepo) MarkConversationRead(ctx context.Context, conversationID, recipientID string) error {
	return nil
}

func TestConversationIDIsSymmetric(t *testing.T) {
	if ConversationID("alice", "bob") != ConversationID("bob", "alice") {
		t.Error("conversation ID differs depending on argument order")
	}
	if ConversationID("alice", "bob") == ConversationID("alice", "carol") {
		t.Error("distinct pairs share a conversation ID")
	}
}

func TestSendValidation(t *testing.T) {
	users := newMemUserRepo()
	msgs := &memMessageRepo{}
	svc := NewMessageService(msgs, users, nil, nil)
	ctx := context.Background()

	sender := &repository.User{Email: "a@example.com", Name: "A", Role: types.RoleClient}
	recipient := &repository.User{Email: "b@example.com", Name: "B", Role: types.RoleCreator}
	users.Create(ctx, sender)
	users.Create(ctx, recipient)

	if _, err := svc.Send(ctx, sender.ID, recipient.ID, "   "); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("Send(blank) = %v, want ErrInvalidInput", err)
	}
	if _, err := svc.Send(ctx, sender.ID, sender.ID, "hi"); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("Send(to self) = %v, want ErrInvalidInput", err)
	}
	if _, err := svc.Send(ctx, sender.ID, "nope", "hi"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Send(unknown recipient) = %v, want ErrNotFound", err)
	}

	m, err := svc.Send(ctx, sender.ID, recipient.ID, "hi there")
	if err != nil {
		t.Fatalf("Send: %v", err)
	}
	if m.ConversationID != ConversationID(sender.ID, recipient.ID) {
		t.Errorf("conversation ID = %q, want %q", m.ConversationID, ConversationID(sender.ID, recipient.ID))
	}

	// Both sides read the same thread.
	thread, _ := svc.GetThread(ctx, recipient.ID, sender.ID, 0)
	if len(thread) != 1 {
		t.Errorf("thread length = %d, want 1", len(thread))
	}
}
