package models

import (
	"time"

	"gorm.io/gorm"
)

// AffiliateLink is a partner link that is promoted in the feed as a
// synthesized pseudo-ad ("Promoted" author, negative id).
type AffiliateLink struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	Title       string         `gorm:"not null" json:"title"`
	Description string         `gorm:"type:text" json:"description"`
	URL         string         `gorm:"size:2048;not null" json:"url"`
	ImageURL    string         `gorm:"size:2048" json:"image_url"`
	IsActive    bool           `gorm:"default:true;index" json:"is_active"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName specifies the table name for GORM.
func (AffiliateLink) TableName() string {
	return "affiliate_links"
}
