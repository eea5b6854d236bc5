// internal/socket/broadcaster.go
package socket

// Broadcaster is the typed facade services use to push marketplace
// events without knowing hub internals.
type Broadcaster struct {
	hub *Hub
}

func NewBroadcaster(hub *Hub) *Broadcaster {
	return &Broadcaster{hub: hub}
}

// NotifyUser pushes a persisted notification to the user's personal room.
func (b *Broadcaster) NotifyUser(userID string, payload map[string]interface{}) {
	b.hub.SendToUser(userID, MessageNotification, payload)
}

// ProposalReceived tells a client a creator submitted a proposal.
func (b *Broadcaster) ProposalReceived(clientID string, payload map[string]interface{}) {
	b.hub.SendToUser(clientID, MessageProposalReceived, payload)
}

// ProposalDecided tells a creator their proposal was accepted or rejected.
func (b *Broadcaster) ProposalDecided(creatorID string, accepted bool, payload map[string]interface{}) {
	msgType := MessageProposalRejected
	if accepted {
		msgType = MessageProposalAccepted
	}
	b.hub.SendToUser(creatorID, msgType, payload)
}

// ProjectStatusChanged notifies both parties of a lifecycle transition.
func (b *Broadcaster) ProjectStatusChanged(userIDs []string, payload map[string]interface{}) {
	for _, id := range userIDs {
		b.hub.SendToUser(id, MessageProjectStatusChanged, payload)
	}
}

// DeliverySubmitted tells the client a deliverable arrived.
func (b *Broadcaster) DeliverySubmitted(clientID string, payload map[string]interface{}) {
	b.hub.SendToUser(clientID, MessageDeliverySubmitted, payload)
}

// EscrowReleased tells the creator funds were released.
func (b *Broadcaster) EscrowReleased(creatorID string, payload map[string]interface{}) {
	b.hub.SendToUser(creatorID, MessageEscrowReleased, payload)
}

// EscrowRefunded tells the creator the project was cancelled and refunded.
func (b *Broadcaster) EscrowRefunded(creatorID string, payload map[string]interface{}) {
	b.hub.SendToUser(creatorID, MessageEscrowRefunded, payload)
}

// WithdrawalResult tells the creator their payout completed or failed.
func (b *Broadcaster) WithdrawalResult(creatorID string, completed bool, payload map[string]interface{}) {
	msgType := MessageWithdrawalFailed
	if completed {
		msgType = MessageWithdrawalCompleted
	}
	b.hub.SendToUser(creatorID, msgType, payload)
}

// ChatMessage delivers a conversation message to its room plus the
// recipient's personal room, so the inbox updates even when the
// recipient has not opened the thread.
func (b *Broadcaster) ChatMessage(conversationID, senderID, recipientID string, payload map[string]interface{}) {
	b.hub.SendToRoom("conversation:"+conversationID, MessageChatMessage, payload, senderID)
	if !b.hub.IsUserOnline(recipientID) {
		return
	}
	b.hub.SendToUser(recipientID, MessageChatMessage, payload)
}
