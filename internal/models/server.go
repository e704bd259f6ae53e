package models

import (
	"time"

	"gorm.io/gorm"
)

// ServerRole defines a member's role inside a community server.
type ServerRole string

const (
	// ServerRoleOwner is the creator of the server.
	ServerRoleOwner ServerRole = "owner"
	// ServerRoleModerator can moderate messages and members.
	ServerRoleModerator ServerRole = "moderator"
	// ServerRoleMember is a regular participant.
	ServerRoleMember ServerRole = "member"
)

// Server is a community chat room users can join, own, and moderate.
// Domain term: unrelated to the HTTP server.
type Server struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	Name        string         `gorm:"size:120;not null" json:"name"`
	Description string         `gorm:"type:text" json:"description"`
	ImageURL    string         `gorm:"size:2048" json:"image_url"`
	OwnerID     uint           `gorm:"not null;index" json:"owner_id"`
	Owner       User           `gorm:"foreignKey:OwnerID" json:"owner,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`

	// MembersCount is not persisted; computed at query time
	MembersCount int `gorm:"->" json:"members_count"`
}

// TableName specifies the table name for GORM.
func (Server) TableName() string {
	return "servers"
}

// ServerMember tracks membership of a user in a community server.
type ServerMember struct {
	ServerID uint       `gorm:"primaryKey;autoIncrement:false" json:"server_id"`
	UserID   uint       `gorm:"primaryKey;autoIncrement:false" json:"user_id"`
	Role     ServerRole `gorm:"type:varchar(20);not null;default:'member'" json:"role"`
	JoinedAt time.Time  `gorm:"autoCreateTime" json:"joined_at"`

	User *User `gorm:"foreignKey:UserID" json:"user,omitempty"`
}

// TableName specifies the table name for GORM.
func (ServerMember) TableName() string {
	return "server_members"
}
