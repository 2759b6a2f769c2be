package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Message struct {
	ID          uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	SenderID    int64     `json:"sender_id" gorm:"not null;index"`
	RecipientID int64     `json:"recipient_id" gorm:"not null;index:idx_messages_recipient_read"`
	Content     string    `json:"content" gorm:"type:text;not null"`
	IsRead      bool      `json:"is_read" gorm:"not null;default:false;index:idx_messages_recipient_read"`
	CreatedAt   time.Time `json:"created_at" gorm:"index"`
}

func (Message) TableName() string { return "messages" }

func (m *Message) BeforeCreate(_ *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}

// Counterpart returns the participant of m that is not userID.
func (m *Message) Counterpart(userID int64) int64 {
	if m.SenderID == userID {
		return m.RecipientID
	}
	return m.SenderID
}

// Conversation is the per-counterpart summary derived from messages.
type Conversation struct {
	UserID          int64     `json:"user_id"`
	FullName        string    `json:"full_name"`
	AvatarURL       string    `json:"avatar_url,omitempty"`
	LastMessage     string    `json:"last_message"`
	LastMessageTime time.Time `json:"last_message_time"`
	UnreadCount     int       `json:"unread_count"`
}
