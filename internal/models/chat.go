package models

import (
	"time"

	"gorm.io/gorm"
)

// Conversation represents a direct-message thread between two users.
type Conversation struct {
	ID           uint           `gorm:"primaryKey" json:"id"`
	CreatedBy    uint           `json:"created_by"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
	Participants []User         `gorm:"many2many:conversation_participants;" json:"participants,omitempty"`
	Messages     []Message      `gorm:"foreignKey:ConversationID" json:"messages,omitempty"`
}

// TableName specifies the table name for GORM.
func (Conversation) TableName() string {
	return "conversations"
}

// ConversationParticipant is the join table for conversation membership.
type ConversationParticipant struct {
	ConversationID uint      `gorm:"primaryKey" json:"conversation_id"`
	UserID         uint      `gorm:"primaryKey" json:"user_id"`
	JoinedAt       time.Time `gorm:"autoCreateTime" json:"joined_at"`
	LastReadAt     time.Time `json:"last_read_at"`
}

// TableName specifies the table name for GORM.
func (ConversationParticipant) TableName() string {
	return "conversation_participants"
}

// Message is a chat message, posted either into a community server or into
// a direct conversation. Exactly one of ServerID / ConversationID is set.
type Message struct {
	ID             uint           `gorm:"primaryKey" json:"id"`
	ServerID       *uint          `gorm:"index" json:"server_id,omitempty"`
	ConversationID *uint          `gorm:"index" json:"conversation_id,omitempty"`
	SenderID       uint           `gorm:"not null;index" json:"sender_id"`
	Sender         *User          `gorm:"foreignKey:SenderID" json:"sender,omitempty"`
	Content        string         `gorm:"type:text;not null" json:"content"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
	DeletedAt      gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName specifies the table name for GORM.
func (Message) TableName() string {
	return "messages"
}
