package service

import (
	"context"
	"strconv"

	"alphaboard/internal/feed"
	"alphaboard/internal/featureflags"
	"alphaboard/internal/models"
	"alphaboard/internal/observability"
	"alphaboard/internal/repository"
)

type FeedService struct {
	ideaRepo      repository.IdeaRepository
	adRepo        repository.AdRepository
	affiliateRepo repository.AffiliateRepository
	flags         *featureflags.Manager
	interval      int
}

// FeedPage is one composed page of the home feed.
type FeedPage struct {
	Items  []feed.Item `json:"items"`
	Page   int         `json:"page"`
	Limit  int         `json:"limit"`
	HasAds bool        `json:"has_ads"`
}

func NewFeedService(
	ideaRepo repository.IdeaRepository,
	adRepo repository.AdRepository,
	affiliateRepo repository.AffiliateRepository,
	flags *featureflags.Manager,
	interval int,
) *FeedService {
	if interval <= 0 {
		interval = feed.DefaultInterval
	}
	return &FeedService{
		ideaRepo:      ideaRepo,
		adRepo:        adRepo,
		affiliateRepo: affiliateRepo,
		flags:         flags,
		interval:      interval,
	}
}

// GetFeed returns one composed feed page: ideas interleaved with approved ads
// and promoted affiliate links. Promoted content is skipped entirely when the
// flag is off for the caller.
func (s *FeedService) GetFeed(ctx context.Context, page, limit int, currentUserID uint, sort string) (*FeedPage, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}
	offset := (page - 1) * limit

	ideas, err := s.ideaRepo.List(ctx, limit, offset, currentUserID, sort)
	if err != nil {
		return nil, err
	}

	var ads []models.Ad
	var links []models.AffiliateLink
	if s.flags.EnabledDefault(featureflags.FlagPromotedContent, currentUserID, true) {
		ads, err = s.adRepo.ListApproved(ctx)
		if err != nil {
			return nil, err
		}
		links, err = s.affiliateRepo.ListActive(ctx)
		if err != nil {
			return nil, err
		}
	}

	ideaRows := make([]models.TradeIdea, len(ideas))
	for i, idea := range ideas {
		ideaRows[i] = *idea
	}
	items := feed.Compose(ideaRows, ads, links, s.interval)
	observability.FeedCompositions.WithLabelValues(strconv.Itoa(s.interval)).Inc()

	return &FeedPage{
		Items:  items,
		Page:   page,
		Limit:  limit,
		HasAds: len(items) > len(ideas),
	}, nil
}
