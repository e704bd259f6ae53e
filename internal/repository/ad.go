package repository

import (
	"context"
	"errors"

	"alphaboard/internal/cache"
	"alphaboard/internal/models"

	"gorm.io/gorm"
)

// AdRepository defines persistence operations for sponsored ads.
type AdRepository interface {
	Create(ctx context.Context, ad *models.Ad) error
	GetByID(ctx context.Context, id uint) (*models.Ad, error)
	ListApproved(ctx context.Context) ([]models.Ad, error)
	ListByStatus(ctx context.Context, status models.AdStatus, limit, offset int) ([]models.Ad, error)
	UpdateStatus(ctx context.Context, id uint, status models.AdStatus) error
	Delete(ctx context.Context, id uint) error
}

type adRepository struct {
	db *gorm.DB
}

// NewAdRepository creates a new AdRepository
func NewAdRepository(db *gorm.DB) AdRepository {
	return &adRepository{db: db}
}

func (r *adRepository) Create(ctx context.Context, ad *models.Ad) error {
	err := r.db.WithContext(ctx).Create(ad).Error
	if err == nil {
		cache.InvalidatePromoted(ctx)
	}
	return err
}

func (r *adRepository) GetByID(ctx context.Context, id uint) (*models.Ad, error) {
	var ad models.Ad
	if err := r.db.WithContext(ctx).First(&ad, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Ad", id)
		}
		return nil, err
	}
	return &ad, nil
}

// ListApproved returns the ads eligible for feed interleaving, cached
// briefly since every feed page reads the same inventory.
func (r *adRepository) ListApproved(ctx context.Context) ([]models.Ad, error) {
	var ads []models.Ad
	err := cache.Aside(ctx, cache.ApprovedAdsKey, &ads, cache.PromotedTTL, func() error {
		return r.db.WithContext(ctx).
			Where("status = ?", models.AdStatusApproved).
			Order("created_at DESC").
			Find(&ads).Error
	})
	return ads, err
}

func (r *adRepository) ListByStatus(ctx context.Context, status models.AdStatus, limit, offset int) ([]models.Ad, error) {
	var ads []models.Ad
	err := r.db.WithContext(ctx).
		Where("status = ?", status).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&ads).Error
	return ads, err
}

func (r *adRepository) UpdateStatus(ctx context.Context, id uint, status models.AdStatus) error {
	result := r.db.WithContext(ctx).
		Model(&models.Ad{}).
		Where("id = ?", id).
		Update("status", status)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return models.NewNotFoundError("Ad", id)
	}
	cache.InvalidatePromoted(ctx)
	return nil
}

func (r *adRepository) Delete(ctx context.Context, id uint) error {
	if err := r.db.WithContext(ctx).Delete(&models.Ad{}, id).Error; err != nil {
		return err
	}
	cache.InvalidatePromoted(ctx)
	return nil
}
