package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

type Message struct {
	ID             string
	ConversationID string
	SenderID       string
	RecipientID    string
	Body           string
	Read           bool
	CreatedAt      time.Time
}

// Conversation is a summary row for the inbox listing: the latest
// message per conversation a user participates in.
type Conversation struct {
	ConversationID string
	PeerID         string
	LastBody       string
	LastAt         time.Time
	UnreadCount    int
}

type MessageRepository interface {
	Create(ctx context.Context, m *Message) error
	FindByConversationID(ctx context.Context, conversationID string, limit int) ([]*Message, error)
	FindConversations(ctx context.Context, userID string) ([]*Conversation, error)
	MarkConversationRead(ctx context.Context, conversationID, recipientID string) error
}

type pgMessageRepository struct {
	pool *pgxpool.Pool
}

func NewMessageRepository(pool *pgxpool.Pool) MessageRepository {
	return &pgMessageRepository{pool: pool}
}

func (r *pgMessageRepository) Create(ctx context.Context, m *Message) error {
	query := `
		INSERT INTO messages (conversation_id, sender_id, recipient_id, body)
		VALUES ($1, $2, $3, $4)
		RETURNING id, read, created_at
	`
	return r.pool.QueryRow(ctx, query,
		m.ConversationID, m.SenderID, m.RecipientID, m.Body,
	).Scan(&m.ID, &m.Read, &m.CreatedAt)
}

func (r *pgMessageRepository) FindByConversationID(ctx context.Context, conversationID string, limit int) ([]*Message, error) {
	if limit <= 0 {
		limit = 50
	}
	query := `
		SELECT id, conversation_id, sender_id, recipient_id, body, read, created_at
		FROM messages WHERE conversation_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`
	rows, err := r.pool.Query(ctx, query, conversationID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var messages []*Message
	for rows.Next() {
		m := &Message{}
		if err := rows.Scan(&m.ID, &m.ConversationID, &m.SenderID, &m.RecipientID, &m.Body, &m.Read, &m.CreatedAt); err != nil {
			return nil, err
		}
		messages = append(messages, m)
	}
	return messages, rows.Err()
}

func (r *pgMessageRepository) FindConversations(ctx context.Context, userID string) ([]*Conversation, error) {
	query := `
		SELECT DISTINCT ON (conversation_id)
		       conversation_id,
		       CASE WHEN sender_id::text = $1 THEN recipient_id::text ELSE sender_id::text END AS peer_id,
		       body,
		       created_at,
		       (SELECT COUNT(*) FROM messages u
		        WHERE u.conversation_id = m.conversation_id
		          AND u.recipient_id::text = $1 AND NOT u.read) AS unread_count
		FROM messages m
		WHERE sender_id::text = $1 OR recipient_id::text = $1
		ORDER BY conversation_id, created_at DESC
	`
	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var conversations []*Conversation
	for rows.Next() {
		c := &Conversation{}
		if err := rows.Scan(&c.ConversationID, &c.PeerID, &c.LastBody, &c.LastAt, &c.UnreadCount); err != nil {
			return nil, err
		}
		conversations = append(conversations, c)
	}
	return conversations, rows.Err()
}

func (r *pgMessageRepository) MarkConversationRead(ctx context.Context, conversationID, recipientID string) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE messages SET read = TRUE WHERE conversation_id = $1 AND recipient_id = $2 AND NOT read`,
		conversationID, recipientID,
	)
	return err
}
