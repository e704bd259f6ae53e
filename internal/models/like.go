package models

import "time"

// Like represents a user's like on a trade idea.
// The combination of UserID and IdeaID must be unique.
type Like struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_user_idea" json:"user_id"`
	IdeaID    uint      `gorm:"not null;uniqueIndex:idx_user_idea" json:"idea_id"`
	CreatedAt time.Time `json:"created_at"`

	// Relationships
	User User      `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Idea TradeIdea `gorm:"foreignKey:IdeaID" json:"idea,omitempty"`
}

// TableName specifies the table name for GORM.
func (Like) TableName() string {
	return "likes"
}
