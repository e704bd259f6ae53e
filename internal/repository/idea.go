// Package repository provides data access layer implementations for the application.
package repository

import (
	"context"
	"errors"

	"alphaboard/internal/cache"
	"alphaboard/internal/models"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// IdeaRepository defines the interface for trade idea data operations.
type IdeaRepository interface {
	Create(ctx context.Context, idea *models.TradeIdea) error
	GetByID(ctx context.Context, id uint, currentUserID uint) (*models.TradeIdea, error)
	GetByUserID(ctx context.Context, userID uint, limit, offset int, currentUserID uint) ([]*models.TradeIdea, error)
	List(ctx context.Context, limit, offset int, currentUserID uint, sort string) ([]*models.TradeIdea, error)
	Search(ctx context.Context, query string, limit, offset int, currentUserID uint) ([]*models.TradeIdea, error)
	Update(ctx context.Context, idea *models.TradeIdea) error
	Delete(ctx context.Context, id uint) error
	IsLiked(ctx context.Context, userID, ideaID uint) (bool, error)
	LikeState(ctx context.Context, userID, ideaID uint) (bool, int, error)
	Like(ctx context.Context, userID, ideaID uint) error
	Unlike(ctx context.Context, userID, ideaID uint) error
}

// ideaRepository implements IdeaRepository
type ideaRepository struct {
	db *gorm.DB
}

// NewIdeaRepository creates a new trade idea repository
func NewIdeaRepository(db *gorm.DB) IdeaRepository {
	return &ideaRepository{db: db}
}

func (r *ideaRepository) Create(ctx context.Context, idea *models.TradeIdea) error {
	err := r.db.WithContext(ctx).Create(idea).Error
	if err == nil {
		cache.InvalidateFeed(ctx)
	}
	return err
}

func (r *ideaRepository) GetByID(ctx context.Context, id uint, currentUserID uint) (*models.TradeIdea, error) {
	var idea models.TradeIdea
	key := cache.IdeaKey(id)

	var err error
	if currentUserID == 0 {
		err = cache.Aside(ctx, key, &idea, cache.IdeaTTL, func() error {
			return r.preloadIdea(r.applyIdeaDetails(r.db.WithContext(ctx), 0)).
				First(&idea, id).Error
		})
	} else {
		err = r.preloadIdea(r.applyIdeaDetails(r.db.WithContext(ctx), currentUserID)).
			First(&idea, id).Error
	}

	if err != nil {
		return nil, err
	}
	return &idea, nil
}

func (r *ideaRepository) GetByUserID(ctx context.Context, userID uint, limit, offset int, currentUserID uint) ([]*models.TradeIdea, error) {
	var ideas []*models.TradeIdea
	err := r.preloadIdea(r.applyIdeaDetails(r.db.WithContext(ctx), currentUserID)).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&ideas).Error
	return ideas, err
}

func (r *ideaRepository) List(ctx context.Context, limit, offset int, currentUserID uint, sort string) ([]*models.TradeIdea, error) {
	var ideas []*models.TradeIdea
	base := r.preloadIdea(r.applyIdeaDetails(r.db.WithContext(ctx), currentUserID))
	err := r.applySort(base, sort).
		Limit(limit).
		Offset(offset).
		Find(&ideas).Error
	return ideas, err
}

// applySort appends the ORDER BY clause for the requested sort type.
// likes_count and comments_count are SELECT aliases from applyIdeaDetails;
// PostgreSQL allows referencing them in ORDER BY within the same query level.
// Pinned ideas always float above the rest.
func (r *ideaRepository) applySort(db *gorm.DB, sort string) *gorm.DB {
	db = db.Order("is_pinned DESC")
	switch sort {
	case "hot":
		return db.Order(gorm.Expr(
			"(likes_count + comments_count * 2.0) / POWER(EXTRACT(EPOCH FROM (NOW() - trade_ideas.created_at)) / 3600.0 + 2, 1.5) DESC",
		))
	case "top":
		return db.Order("likes_count DESC, created_at DESC")
	default: // "new" and anything unrecognized
		return db.Order("created_at DESC")
	}
}

func (r *ideaRepository) Search(ctx context.Context, query string, limit, offset int, currentUserID uint) ([]*models.TradeIdea, error) {
	var ideas []*models.TradeIdea
	like := "%" + query + "%"
	err := r.preloadIdea(r.applyIdeaDetails(r.db.WithContext(ctx), currentUserID)).
		Where("title ILIKE ? OR instrument ILIKE ? OR tags ILIKE ?", like, like, like).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&ideas).Error
	return ideas, err
}

// applyIdeaDetails adds subqueries to fetch counts and liked status in a single query.
func (r *ideaRepository) applyIdeaDetails(db *gorm.DB, currentUserID uint) *gorm.DB {
	selectQuery := "trade_ideas.*, " +
		"(SELECT COUNT(*) FROM comments WHERE comments.idea_id = trade_ideas.id AND comments.deleted_at IS NULL) as comments_count, " +
		"(SELECT COUNT(*) FROM likes WHERE likes.idea_id = trade_ideas.id) as likes_count"

	if currentUserID != 0 {
		return db.Select(selectQuery+", EXISTS(SELECT 1 FROM likes WHERE likes.idea_id = trade_ideas.id AND likes.user_id = ?) as liked", currentUserID)
	}

	return db.Select(selectQuery + ", false as liked")
}

// preloadIdea loads the author plus the ordered breakdown pages and the media
// inventory the placeholder resolver substitutes against.
func (r *ideaRepository) preloadIdea(db *gorm.DB) *gorm.DB {
	return db.
		Preload("User").
		Preload("Pages", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC")
		}).
		Preload("Media")
}

func (r *ideaRepository) Update(ctx context.Context, idea *models.TradeIdea) error {
	if err := r.db.WithContext(ctx).Save(idea).Error; err != nil {
		return err
	}
	cache.InvalidateIdea(ctx, idea.ID)
	return nil
}

func (r *ideaRepository) Delete(ctx context.Context, id uint) error {
	if err := r.db.WithContext(ctx).Delete(&models.TradeIdea{}, id).Error; err != nil {
		return err
	}
	cache.InvalidateIdea(ctx, id)
	return nil
}

func (r *ideaRepository) IsLiked(ctx context.Context, userID, ideaID uint) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.Like{}).
		Where("user_id = ? AND idea_id = ?", userID, ideaID).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// LikeState returns the caller's liked flag and the idea's total like count in
// one round trip. The like coordinator uses it to reconcile after a duplicate
// insert.
func (r *ideaRepository) LikeState(ctx context.Context, userID, ideaID uint) (bool, int, error) {
	liked, err := r.IsLiked(ctx, userID, ideaID)
	if err != nil {
		return false, 0, err
	}
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.Like{}).
		Where("idea_id = ?", ideaID).
		Count(&count).Error; err != nil {
		return false, 0, err
	}
	return liked, int(count), nil
}

func (r *ideaRepository) Like(ctx context.Context, userID, ideaID uint) error {
	// INSERT ... ON CONFLICT DO NOTHING is atomic under concurrent clicks; a
	// conflicting row surfaces as zero rows affected rather than an error.
	result := r.db.WithContext(ctx).Exec(
		`INSERT INTO likes (user_id, idea_id, created_at)
		 VALUES (?, ?, NOW())
		 ON CONFLICT (user_id, idea_id) DO NOTHING`,
		userID, ideaID,
	)
	if result.Error != nil {
		if isUniqueViolation(result.Error) {
			return models.ErrAlreadyLiked
		}
		return result.Error
	}
	if result.RowsAffected == 0 {
		return models.ErrAlreadyLiked
	}
	cache.InvalidateIdea(ctx, ideaID)
	return nil
}

func (r *ideaRepository) Unlike(ctx context.Context, userID, ideaID uint) error {
	// Hard delete the like record (not soft delete)
	err := r.db.WithContext(ctx).Unscoped().Where("user_id = ? AND idea_id = ?", userID, ideaID).Delete(&models.Like{}).Error
	if err == nil {
		cache.InvalidateIdea(ctx, ideaID)
	}
	return err
}

// isUniqueViolation reports whether err is a unique constraint violation,
// either as the Postgres 23505 error code or GORM's translated sentinel.
func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
