package repository

import (
	"context"
	"errors"

	"alphaboard/internal/cache"
	"alphaboard/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ServerRepository defines persistence operations for community servers.
type ServerRepository interface {
	Create(ctx context.Context, server *models.Server) error
	GetByID(ctx context.Context, id uint) (*models.Server, error)
	List(ctx context.Context, limit, offset int) ([]*models.Server, error)
	ListForUser(ctx context.Context, userID uint) ([]*models.Server, error)
	Update(ctx context.Context, server *models.Server) error
	Delete(ctx context.Context, id uint) error
	AddMember(ctx context.Context, serverID, userID uint, role models.ServerRole) error
	RemoveMember(ctx context.Context, serverID, userID uint) error
	GetMember(ctx context.Context, serverID, userID uint) (*models.ServerMember, error)
	ListMembers(ctx context.Context, serverID uint) ([]*models.ServerMember, error)
}

type serverRepository struct {
	db *gorm.DB
}

// NewServerRepository creates a new ServerRepository
func NewServerRepository(db *gorm.DB) ServerRepository {
	return &serverRepository{db: db}
}

// applyMemberCount adds the members_count subquery alias.
func applyMemberCount(db *gorm.DB) *gorm.DB {
	return db.Select("servers.*, " +
		"(SELECT COUNT(*) FROM server_members WHERE server_members.server_id = servers.id) as members_count")
}

func (r *serverRepository) Create(ctx context.Context, server *models.Server) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(server).Error; err != nil {
			return err
		}
		// The creator joins as owner in the same transaction.
		member := models.ServerMember{
			ServerID: server.ID,
			UserID:   server.OwnerID,
			Role:     models.ServerRoleOwner,
		}
		return tx.Create(&member).Error
	})
}

func (r *serverRepository) GetByID(ctx context.Context, id uint) (*models.Server, error) {
	var server models.Server
	err := cache.Aside(ctx, cache.ServerKey(id), &server, cache.ServerTTL, func() error {
		if err := applyMemberCount(r.db.WithContext(ctx)).
			Preload("Owner").
			First(&server, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return models.NewNotFoundError("Server", id)
			}
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &server, nil
}

func (r *serverRepository) List(ctx context.Context, limit, offset int) ([]*models.Server, error) {
	var servers []*models.Server
	err := applyMemberCount(r.db.WithContext(ctx)).
		Preload("Owner").
		Order("members_count DESC, created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&servers).Error
	return servers, err
}

func (r *serverRepository) ListForUser(ctx context.Context, userID uint) ([]*models.Server, error) {
	var servers []*models.Server
	err := applyMemberCount(r.db.WithContext(ctx)).
		Joins("JOIN server_members sm ON sm.server_id = servers.id").
		Where("sm.user_id = ?", userID).
		Order("sm.joined_at ASC").
		Find(&servers).Error
	return servers, err
}

func (r *serverRepository) Update(ctx context.Context, server *models.Server) error {
	if err := r.db.WithContext(ctx).Save(server).Error; err != nil {
		return err
	}
	cache.InvalidateServer(ctx, server.ID)
	return nil
}

func (r *serverRepository) Delete(ctx context.Context, id uint) error {
	if err := r.db.WithContext(ctx).Delete(&models.Server{}, id).Error; err != nil {
		return err
	}
	cache.InvalidateServer(ctx, id)
	return nil
}

func (r *serverRepository) AddMember(ctx context.Context, serverID, userID uint, role models.ServerRole) error {
	member := models.ServerMember{
		ServerID: serverID,
		UserID:   userID,
		Role:     role,
	}
	// Rejoining is a no-op rather than an error.
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&member).Error
	if err == nil {
		cache.InvalidateServer(ctx, serverID)
	}
	return err
}

func (r *serverRepository) RemoveMember(ctx context.Context, serverID, userID uint) error {
	err := r.db.WithContext(ctx).
		Where("server_id = ? AND user_id = ?", serverID, userID).
		Delete(&models.ServerMember{}).Error
	if err == nil {
		cache.InvalidateServer(ctx, serverID)
	}
	return err
}

func (r *serverRepository) GetMember(ctx context.Context, serverID, userID uint) (*models.ServerMember, error) {
	var member models.ServerMember
	err := r.db.WithContext(ctx).
		Where("server_id = ? AND user_id = ?", serverID, userID).
		First(&member).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &member, nil
}

func (r *serverRepository) ListMembers(ctx context.Context, serverID uint) ([]*models.ServerMember, error) {
	var members []*models.ServerMember
	err := r.db.WithContext(ctx).
		Preload("User").
		Where("server_id = ?", serverID).
		Order("joined_at ASC").
		Find(&members).Error
	return members, err
}
