package models

import (
	"time"

	"gorm.io/gorm"
)

// Comment represents a comment on a trade idea.
type Comment struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	Content   string         `gorm:"not null" json:"content"`
	UserID    uint           `gorm:"not null" json:"user_id"`
	IdeaID    uint           `gorm:"not null;index" json:"idea_id"`
	User      User           `gorm:"foreignKey:UserID" json:"user"`
	Idea      TradeIdea      `gorm:"foreignKey:IdeaID" json:"idea,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName specifies the table name for GORM.
func (Comment) TableName() string {
	return "comments"
}
