package models

import "time"

// MediaType discriminates how a media item is rendered.
type MediaType string

const (
	// MediaTypeImage renders as an inline image.
	MediaTypeImage MediaType = "image"
	// MediaTypeVideo renders as a provider embed or raw video file.
	MediaTypeVideo MediaType = "video"
	// MediaTypeLink renders as an anchor with an icon.
	MediaTypeLink MediaType = "link"
)

// MediaItem is a media attachment of a trade idea. Breakdown text references
// items by Key, not by position: Key is either the decimal row id (media that
// was previously saved) or an opaque client token of the shape
// temp_<timestamp>_<random> / media_<timestamp>_<random>.
type MediaItem struct {
	ID           uint      `gorm:"primaryKey" json:"-"`
	IdeaID       uint      `gorm:"not null;uniqueIndex:idx_media_idea_key" json:"idea_id"`
	Key          string    `gorm:"size:64;not null;uniqueIndex:idx_media_idea_key" json:"id"`
	Type         MediaType `gorm:"type:varchar(10);not null" json:"type"`
	URL          string    `gorm:"size:2048;not null" json:"url"`
	Title        string    `json:"title,omitempty"`
	Description  string    `gorm:"type:text" json:"description,omitempty"`
	ThumbnailURL string    `gorm:"size:2048" json:"thumbnail_url,omitempty"`
	Position     int       `gorm:"not null;default:0" json:"position"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// TableName specifies the table name for GORM.
func (MediaItem) TableName() string {
	return "media_items"
}
