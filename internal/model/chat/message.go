package chat

import "time"

// Role identifies who authored a turn.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one immutable turn of a session log.
type Message struct {
	ID        string    `json:"id"`
	SessionID string    `json:"session_id"`
	Role      Role      `json:"role"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

// NewMessage builds a turn for the session. ID and Timestamp are left for the store.
func NewMessage(sessionID string, role Role, text string) *Message {
	return &Message{
		SessionID: sessionID,
		Role:      role,
		Message:   text,
	}
}
