package repository

import (
	"context"

	"alphaboard/internal/cache"
	"alphaboard/internal/models"

	"gorm.io/gorm"
)

// MediaRepository persists breakdown pages and the media inventory backing
// placeholder resolution.
type MediaRepository interface {
	ReplacePages(ctx context.Context, ideaID uint, pages []models.BreakdownPage) error
	PagesByIdea(ctx context.Context, ideaID uint) ([]models.BreakdownPage, error)
	AddMedia(ctx context.Context, item *models.MediaItem) error
	MediaByIdea(ctx context.Context, ideaID uint) ([]models.MediaItem, error)
	RemoveMedia(ctx context.Context, ideaID uint, key string) error
}

type mediaRepository struct {
	db *gorm.DB
}

// NewMediaRepository creates a new MediaRepository
func NewMediaRepository(db *gorm.DB) MediaRepository {
	return &mediaRepository{db: db}
}

// ReplacePages swaps the full ordered page set for an idea in one transaction.
// Positions are renumbered from 0 so the unique (idea_id, position) index
// cannot collide with stale rows.
func (r *mediaRepository) ReplacePages(ctx context.Context, ideaID uint, pages []models.BreakdownPage) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Unscoped().Where("idea_id = ?", ideaID).Delete(&models.BreakdownPage{}).Error; err != nil {
			return err
		}
		for i := range pages {
			pages[i].ID = 0
			pages[i].IdeaID = ideaID
			pages[i].Position = i
		}
		if len(pages) == 0 {
			return nil
		}
		return tx.Create(&pages).Error
	})
	if err == nil {
		cache.InvalidateIdea(ctx, ideaID)
	}
	return err
}

func (r *mediaRepository) PagesByIdea(ctx context.Context, ideaID uint) ([]models.BreakdownPage, error) {
	var pages []models.BreakdownPage
	err := r.db.WithContext(ctx).
		Where("idea_id = ?", ideaID).
		Order("position ASC").
		Find(&pages).Error
	return pages, err
}

func (r *mediaRepository) AddMedia(ctx context.Context, item *models.MediaItem) error {
	err := r.db.WithContext(ctx).Create(item).Error
	if err != nil && isUniqueViolation(err) {
		return models.NewValidationError("Media key already exists for this idea")
	}
	if err == nil {
		cache.InvalidateIdea(ctx, item.IdeaID)
	}
	return err
}

func (r *mediaRepository) MediaByIdea(ctx context.Context, ideaID uint) ([]models.MediaItem, error) {
	var items []models.MediaItem
	err := r.db.WithContext(ctx).
		Where("idea_id = ?", ideaID).
		Order("id ASC").
		Find(&items).Error
	return items, err
}

func (r *mediaRepository) RemoveMedia(ctx context.Context, ideaID uint, key string) error {
	err := r.db.WithContext(ctx).
		Where("idea_id = ? AND key = ?", ideaID, key).
		Delete(&models.MediaItem{}).Error
	if err == nil {
		cache.InvalidateIdea(ctx, ideaID)
	}
	return err
}
