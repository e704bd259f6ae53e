package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// AdStatus defines the moderation state of an ad.
type AdStatus string

const (
	// AdStatusApproved indicates an ad participates in the feed.
	AdStatusApproved AdStatus = "approved"
	// AdStatusPending indicates an ad is newly submitted.
	AdStatusPending AdStatus = "pending"
	// AdStatusRejected indicates an ad was declined by moderation.
	AdStatusRejected AdStatus = "rejected"
	// AdStatusPendingPayment indicates an ad is awaiting payment.
	AdStatusPendingPayment AdStatus = "pending_payment"
	// AdStatusPendingApproval indicates an ad is paid and awaiting review.
	AdStatusPendingApproval AdStatus = "pending_approval"
)

// Ad represents monetized feed content submitted by an advertiser.
// Only approved ads are eligible for feed composition.
type Ad struct {
	ID        uint            `gorm:"primaryKey" json:"id"`
	Title     string          `gorm:"not null" json:"title"`
	Content   string          `gorm:"type:text" json:"content"`
	LinkURL   string          `gorm:"size:2048" json:"link_url"`
	MediaURL  string          `gorm:"size:2048" json:"media_url"`
	Status    AdStatus        `gorm:"type:varchar(20);not null;default:'pending';index" json:"status"`
	Cost      decimal.Decimal `gorm:"type:numeric(12,2)" json:"cost"`
	UserID    uint            `gorm:"not null;index" json:"user_id"`
	User      User            `gorm:"foreignKey:UserID" json:"user,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
	DeletedAt gorm.DeletedAt  `gorm:"index" json:"-"`
}

// TableName specifies the table name for GORM.
func (Ad) TableName() string {
	return "ads"
}
