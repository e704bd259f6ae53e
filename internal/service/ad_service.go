package service

import (
	"context"
	"net/url"

	"alphaboard/internal/models"
	"alphaboard/internal/repository"

	"github.com/shopspring/decimal"
)

// AdService handles ad submission and the admin moderation queue, plus the
// affiliate links that get promoted into the feed.
type AdService struct {
	adRepo        repository.AdRepository
	affiliateRepo repository.AffiliateRepository
}

type SubmitAdInput struct {
	UserID   uint
	Title    string
	Content  string
	LinkURL  string
	MediaURL string
	Cost     decimal.Decimal
}

type UpsertAffiliateLinkInput struct {
	ID          uint
	Title       string
	Description string
	URL         string
	ImageURL    string
	IsActive    bool
}

func NewAdService(adRepo repository.AdRepository, affiliateRepo repository.AffiliateRepository) *AdService {
	return &AdService{adRepo: adRepo, affiliateRepo: affiliateRepo}
}

// SubmitAd creates a new ad in pending state. Ads never enter the feed until
// an admin approves them.
func (s *AdService) SubmitAd(ctx context.Context, in SubmitAdInput) (*models.Ad, error) {
	if in.Title == "" {
		return nil, models.NewValidationError("Title is required")
	}
	if in.LinkURL == "" {
		return nil, models.NewValidationError("link_url is required")
	}
	if _, err := url.ParseRequestURI(in.LinkURL); err != nil {
		return nil, models.NewValidationError("link_url must be a valid URL")
	}
	if in.Cost.IsNegative() {
		return nil, models.NewValidationError("Cost cannot be negative")
	}

	ad := &models.Ad{
		Title:    in.Title,
		Content:  in.Content,
		LinkURL:  in.LinkURL,
		MediaURL: in.MediaURL,
		Cost:     in.Cost,
		Status:   models.AdStatusPending,
		UserID:   in.UserID,
	}
	if err := s.adRepo.Create(ctx, ad); err != nil {
		return nil, err
	}
	return ad, nil
}

// ListPending returns the moderation queue.
func (s *AdService) ListPending(ctx context.Context, limit, offset int) ([]models.Ad, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	return s.adRepo.ListByStatus(ctx, models.AdStatusPending, limit, offset)
}

// Approve transitions a pending ad into the feed-eligible pool.
func (s *AdService) Approve(ctx context.Context, adID uint) (*models.Ad, error) {
	return s.transition(ctx, adID, models.AdStatusApproved)
}

// Reject removes a pending ad from consideration. The row is kept for the
// submitter to see the outcome.
func (s *AdService) Reject(ctx context.Context, adID uint) (*models.Ad, error) {
	return s.transition(ctx, adID, models.AdStatusRejected)
}

func (s *AdService) transition(ctx context.Context, adID uint, to models.AdStatus) (*models.Ad, error) {
	ad, err := s.adRepo.GetByID(ctx, adID)
	if err != nil {
		return nil, err
	}
	switch ad.Status {
	case models.AdStatusPending, models.AdStatusPendingApproval, models.AdStatusPendingPayment:
		// moderatable
	default:
		return nil, models.NewValidationError("Only pending ads can be moderated")
	}
	if err := s.adRepo.UpdateStatus(ctx, adID, to); err != nil {
		return nil, err
	}
	ad.Status = to
	return ad, nil
}

// UpsertAffiliateLink creates or updates an affiliate link.
func (s *AdService) UpsertAffiliateLink(ctx context.Context, in UpsertAffiliateLinkInput) (*models.AffiliateLink, error) {
	if in.Title == "" {
		return nil, models.NewValidationError("Title is required")
	}
	if in.URL == "" {
		return nil, models.NewValidationError("url is required")
	}
	if _, err := url.ParseRequestURI(in.URL); err != nil {
		return nil, models.NewValidationError("url must be a valid URL")
	}

	if in.ID == 0 {
		link := &models.AffiliateLink{
			Title:       in.Title,
			Description: in.Description,
			URL:         in.URL,
			ImageURL:    in.ImageURL,
			IsActive:    in.IsActive,
		}
		if err := s.affiliateRepo.Create(ctx, link); err != nil {
			return nil, err
		}
		return link, nil
	}

	link, err := s.affiliateRepo.GetByID(ctx, in.ID)
	if err != nil {
		return nil, err
	}
	link.Title = in.Title
	link.Description = in.Description
	link.URL = in.URL
	link.ImageURL = in.ImageURL
	link.IsActive = in.IsActive
	if err := s.affiliateRepo.Update(ctx, link); err != nil {
		return nil, err
	}
	return link, nil
}

// ListAffiliateLinks returns all links for the admin screen.
func (s *AdService) ListAffiliateLinks(ctx context.Context, limit, offset int) ([]models.AffiliateLink, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	return s.affiliateRepo.List(ctx, limit, offset)
}

// DeleteAffiliateLink removes a link; it disappears from future feed
// compositions on the next cache refresh.
func (s *AdService) DeleteAffiliateLink(ctx context.Context, id uint) error {
	if _, err := s.affiliateRepo.GetByID(ctx, id); err != nil {
		return err
	}
	return s.affiliateRepo.Delete(ctx, id)
}
