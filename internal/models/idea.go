package models

import (
	"encoding/json"
	"time"

	"gorm.io/gorm"
)

// TradeIdea represents a user-authored analysis of a tradable instrument.
// The body ("breakdown") is an ordered sequence of text pages; every idea
// has at least one page, enforced at the service layer.
type TradeIdea struct {
	ID         uint   `gorm:"primaryKey" json:"id"`
	Title      string `gorm:"not null" json:"title"`
	Instrument string `gorm:"size:40;not null;index" json:"instrument"`
	// Tags is a JSON array of strings stored in a text column.
	Tags     string          `gorm:"type:text" json:"tags"`
	ImageURL string          `json:"image_url"`
	IsPinned bool            `gorm:"default:false;index" json:"is_pinned"`
	UserID   uint            `gorm:"not null;index" json:"user_id"`
	User     User            `gorm:"foreignKey:UserID" json:"user"`
	Pages    []BreakdownPage `gorm:"foreignKey:IdeaID;constraint:OnDelete:CASCADE" json:"pages,omitempty"`
	Media    []MediaItem     `gorm:"foreignKey:IdeaID;constraint:OnDelete:CASCADE" json:"media,omitempty"`
	// LikesCount is not persisted; computed at query time
	LikesCount int `gorm:"->" json:"likes_count"`
	// CommentsCount is not persisted; computed at query time
	CommentsCount int `gorm:"->" json:"comments_count"`
	// Liked indicates whether the current requesting user liked this idea (computed)
	Liked     bool           `gorm:"->" json:"liked"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName specifies the table name for GORM.
func (TradeIdea) TableName() string {
	return "trade_ideas"
}

// TagList decodes the Tags column. A missing or malformed column decodes
// to an empty list rather than an error.
func (i *TradeIdea) TagList() []string {
	if i.Tags == "" {
		return nil
	}
	var tags []string
	if err := json.Unmarshal([]byte(i.Tags), &tags); err != nil {
		return nil
	}
	return tags
}

// SetTagList encodes tags into the Tags column.
func (i *TradeIdea) SetTagList(tags []string) {
	if len(tags) == 0 {
		i.Tags = ""
		return
	}
	raw, err := json.Marshal(tags)
	if err != nil {
		return
	}
	i.Tags = string(raw)
}

// BreakdownPage is one page of an idea's breakdown text. Pages are ordered
// by Position starting at 0; the text may contain [MEDIA:<id>] placeholder
// tokens which round-trip through storage byte-exactly.
type BreakdownPage struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	IdeaID    uint      `gorm:"not null;uniqueIndex:idx_breakdown_idea_position" json:"idea_id"`
	Position  int       `gorm:"not null;uniqueIndex:idx_breakdown_idea_position" json:"position"`
	Content   string    `gorm:"type:text;not null" json:"content"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName specifies the table name for GORM.
func (BreakdownPage) TableName() string {
	return "breakdown_pages"
}
