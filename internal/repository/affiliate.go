package repository

import (
	"context"
	"errors"

	"alphaboard/internal/cache"
	"alphaboard/internal/models"

	"gorm.io/gorm"
)

// AffiliateRepository defines persistence operations for affiliate links.
type AffiliateRepository interface {
	Create(ctx context.Context, link *models.AffiliateLink) error
	GetByID(ctx context.Context, id uint) (*models.AffiliateLink, error)
	ListActive(ctx context.Context) ([]models.AffiliateLink, error)
	List(ctx context.Context, limit, offset int) ([]models.AffiliateLink, error)
	Update(ctx context.Context, link *models.AffiliateLink) error
	Delete(ctx context.Context, id uint) error
}

type affiliateRepository struct {
	db *gorm.DB
}

// NewAffiliateRepository creates a new AffiliateRepository
func NewAffiliateRepository(db *gorm.DB) AffiliateRepository {
	return &affiliateRepository{db: db}
}

func (r *affiliateRepository) Create(ctx context.Context, link *models.AffiliateLink) error {
	err := r.db.WithContext(ctx).Create(link).Error
	if err == nil {
		cache.InvalidatePromoted(ctx)
	}
	return err
}

func (r *affiliateRepository) GetByID(ctx context.Context, id uint) (*models.AffiliateLink, error) {
	var link models.AffiliateLink
	if err := r.db.WithContext(ctx).First(&link, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("AffiliateLink", id)
		}
		return nil, err
	}
	return &link, nil
}

// ListActive returns links eligible for promotion into the feed, ordered by
// id so pseudo-ad identity stays stable between compositions.
func (r *affiliateRepository) ListActive(ctx context.Context) ([]models.AffiliateLink, error) {
	var links []models.AffiliateLink
	err := cache.Aside(ctx, cache.ActiveAffiliateLinksKey, &links, cache.PromotedTTL, func() error {
		return r.db.WithContext(ctx).
			Where("is_active = ?", true).
			Order("id ASC").
			Find(&links).Error
	})
	return links, err
}

func (r *affiliateRepository) List(ctx context.Context, limit, offset int) ([]models.AffiliateLink, error) {
	var links []models.AffiliateLink
	err := r.db.WithContext(ctx).
		Order("id ASC").
		Limit(limit).
		Offset(offset).
		Find(&links).Error
	return links, err
}

func (r *affiliateRepository) Update(ctx context.Context, link *models.AffiliateLink) error {
	if err := r.db.WithContext(ctx).Save(link).Error; err != nil {
		return err
	}
	cache.InvalidatePromoted(ctx)
	return nil
}

func (r *affiliateRepository) Delete(ctx context.Context, id uint) error {
	if err := r.db.WithContext(ctx).Delete(&models.AffiliateLink{}, id).Error; err != nil {
		return err
	}
	cache.InvalidatePromoted(ctx)
	return nil
}
