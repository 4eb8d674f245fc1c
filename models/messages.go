package models

import "time"

// MessageStatus tracks an optimistic message through confirmation
type MessageStatus string

// ChatMessage is one entry of a chat log. Entries with status "sending"
// exist only locally until a server echo replaces them.
type ChatMessage struct {
	ID         string        `json:"id"`
	MatchID    string        `json:"matchId"`
	SenderID   string        `json:"senderId"`
	ReceiverID string        `json:"receiverId"`
	Text       string        `json:"message"`
	CreatedAt  time.Time     `json:"createdAt"`
	Status     MessageStatus `json:"status,omitempty"`
}

// WireMessage is the realtime payload for sendMessage / receiveMessage
type WireMessage struct {
	ID         string    `json:"id,omitempty"`
	MatchID    string    `json:"matchId"`
	SenderID   string    `json:"senderId"`
	ReceiverID string    `json:"receiverId"`
	Message    string    `json:"message"`
	CreatedAt  time.Time `json:"createdAt"`
}

// ToChatMessage converts a server-pushed message into a confirmed log entry
func (w WireMessage) ToChatMessage() ChatMessage {
	return ChatMessage{
		ID:         w.ID,
		MatchID:    w.MatchID,
		SenderID:   w.SenderID,
		ReceiverID: w.ReceiverID,
		Text:       w.Message,
		CreatedAt:  w.CreatedAt,
		Status:     MessageStatusSent,
	}
}

// JoinRequest is emitted on "join"
type JoinRequest struct {
	UserID  string `json:"userId"`
	MatchID string `json:"matchId"`
}

// JoinAck is received on "chatJoined"
type JoinAck struct {
	MatchID string `json:"matchId"`
}

// ChatError is received on "chatError"
type ChatError struct {
	Message string `json:"message"`
}
