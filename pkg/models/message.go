package models

// Role identifies who authored a message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Status is the local delivery status of a message. A message appended via
// the offline path keeps StatusOffline even after a later successful resync.
type Status string

const (
	StatusSent    Status = "sent"
	StatusOffline Status = "offline"
	StatusFailed  Status = "failed"
)

// MessageType distinguishes plain text from image references.
type MessageType string

const (
	TypeText  MessageType = "text"
	TypeImage MessageType = "image"
)

type Message struct {
	// ID is timestamp-derived (nanoseconds) and strictly increasing within
	// a process; see utils.NextMessageID.
	ID     int64  `json:"id"`
	ChatID string `json:"chat_id"`
	Role   Role   `json:"role"`
	// Content holds the text body, or an image reference when Type is image.
	Content string      `json:"content"`
	Type    MessageType `json:"type"`
	TS      int64       `json:"ts"`
	Status  Status      `json:"status,omitempty"`
	// SenderName is the display name for incoming group messages.
	SenderName string `json:"sender_name,omitempty"`
}
