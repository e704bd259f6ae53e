// Package service contains the application's business logic, sitting between
// HTTP handlers and repositories.
package service

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"alphaboard/internal/breakdown"
	"alphaboard/internal/models"
	"alphaboard/internal/repository"
)

type IdeaService struct {
	ideaRepo  repository.IdeaRepository
	mediaRepo repository.MediaRepository
	isAdmin   func(ctx context.Context, userID uint) (bool, error)
}

// MediaItemInput is one media attachment in a create/update payload. Key is
// the placeholder id referenced from breakdown text.
type MediaItemInput struct {
	Key          string `json:"id"`
	Type         string `json:"type"`
	URL          string `json:"url"`
	Title        string `json:"title"`
	Description  string `json:"description"`
	ThumbnailURL string `json:"thumbnail_url"`
}

type CreateIdeaInput struct {
	UserID     uint
	Title      string
	Instrument string
	Tags       []string
	ImageURL   string
	Pages      []string
	Media      []MediaItemInput
}

type UpdateIdeaInput struct {
	UserID     uint
	IdeaID     uint
	Title      string
	Instrument string
	Tags       []string
	ImageURL   string
	Pages      []string
	Media      []MediaItemInput
}

type DeleteIdeaInput struct {
	UserID uint
	IdeaID uint
}

// IdeaView is a trade idea with its breakdown pages resolved into renderable
// node sequences. Placeholders that matched no media item are already gone.
type IdeaView struct {
	*models.TradeIdea
	ResolvedPages [][]breakdown.Node `json:"resolved_pages"`
}

func NewIdeaService(
	ideaRepo repository.IdeaRepository,
	mediaRepo repository.MediaRepository,
	isAdmin func(ctx context.Context, userID uint) (bool, error),
) *IdeaService {
	return &IdeaService{
		ideaRepo:  ideaRepo,
		mediaRepo: mediaRepo,
		isAdmin:   isAdmin,
	}
}

const (
	maxTitleLen   = 300
	maxPageLen    = 50000
	maxPagesCount = 50
	maxMediaCount = 100
)

func (s *IdeaService) validateIdeaInput(title string, pages []string, media []MediaItemInput) error {
	if title == "" {
		return models.NewValidationError("Title is required")
	}
	if len(title) > maxTitleLen {
		return models.NewValidationError("Title too long (max 300 characters)")
	}
	if len(pages) > maxPagesCount {
		return models.NewValidationError("Too many breakdown pages (max 50)")
	}
	for _, p := range pages {
		if len(p) > maxPageLen {
			return models.NewValidationError("Breakdown page too long (max 50000 characters)")
		}
	}
	if len(media) > maxMediaCount {
		return models.NewValidationError("Too many media items (max 100)")
	}
	seen := make(map[string]struct{}, len(media))
	for _, m := range media {
		if strings.TrimSpace(m.Key) == "" {
			return models.NewValidationError("Media id is required")
		}
		if _, dup := seen[m.Key]; dup {
			return models.NewValidationError("Duplicate media id: " + m.Key)
		}
		seen[m.Key] = struct{}{}
		switch models.MediaType(m.Type) {
		case models.MediaTypeImage, models.MediaTypeVideo, models.MediaTypeLink:
			// valid
		default:
			return models.NewValidationError("Invalid media type")
		}
		if m.URL == "" {
			return models.NewValidationError("Media url is required")
		}
		if _, err := url.ParseRequestURI(m.URL); err != nil {
			return models.NewValidationError("Media url must be a valid URL")
		}
	}
	return nil
}

// buildPages materializes the breakdown as ordered page rows. A breakdown is
// never empty: an idea created without pages gets one empty page.
func buildPages(pages []string) []models.BreakdownPage {
	if len(pages) == 0 {
		pages = []string{""}
	}
	out := make([]models.BreakdownPage, len(pages))
	for i, content := range pages {
		out[i] = models.BreakdownPage{Position: i, Content: content}
	}
	return out
}

func buildMedia(media []MediaItemInput) []models.MediaItem {
	out := make([]models.MediaItem, len(media))
	for i, m := range media {
		out[i] = models.MediaItem{
			Key:          m.Key,
			Type:         models.MediaType(m.Type),
			URL:          m.URL,
			Title:        m.Title,
			Description:  m.Description,
			ThumbnailURL: m.ThumbnailURL,
			Position:     i,
		}
	}
	return out
}

func (s *IdeaService) CreateIdea(ctx context.Context, in CreateIdeaInput) (*IdeaView, error) {
	if err := s.validateIdeaInput(in.Title, in.Pages, in.Media); err != nil {
		return nil, err
	}

	idea := &models.TradeIdea{
		Title:      in.Title,
		Instrument: in.Instrument,
		ImageURL:   in.ImageURL,
		UserID:     in.UserID,
		Pages:      buildPages(in.Pages),
		Media:      buildMedia(in.Media),
	}
	idea.SetTagList(in.Tags)

	if err := s.ideaRepo.Create(ctx, idea); err != nil {
		return nil, err
	}

	return s.GetIdea(ctx, idea.ID, in.UserID)
}

func (s *IdeaService) GetIdea(ctx context.Context, id uint, currentUserID uint) (*IdeaView, error) {
	idea, err := s.ideaRepo.GetByID(ctx, id, currentUserID)
	if err != nil {
		return nil, err
	}
	return s.resolve(idea), nil
}

func (s *IdeaService) ListIdeas(ctx context.Context, limit, offset int, currentUserID uint, sort string) ([]*IdeaView, error) {
	ideas, err := s.ideaRepo.List(ctx, limit, offset, currentUserID, sort)
	if err != nil {
		return nil, err
	}
	return s.resolveAll(ideas), nil
}

func (s *IdeaService) GetUserIdeas(ctx context.Context, userID uint, limit, offset int, currentUserID uint) ([]*IdeaView, error) {
	ideas, err := s.ideaRepo.GetByUserID(ctx, userID, limit, offset, currentUserID)
	if err != nil {
		return nil, err
	}
	return s.resolveAll(ideas), nil
}

func (s *IdeaService) SearchIdeas(ctx context.Context, query string, limit, offset int, currentUserID uint) ([]*IdeaView, error) {
	if query == "" {
		return nil, models.NewValidationError("Search query is required")
	}
	ideas, err := s.ideaRepo.Search(ctx, query, limit, offset, currentUserID)
	if err != nil {
		return nil, err
	}
	return s.resolveAll(ideas), nil
}

func (s *IdeaService) UpdateIdea(ctx context.Context, in UpdateIdeaInput) (*IdeaView, error) {
	idea, err := s.ideaRepo.GetByID(ctx, in.IdeaID, in.UserID)
	if err != nil {
		return nil, err
	}
	if idea.UserID != in.UserID {
		return nil, models.NewUnauthorizedError("You can only update your own ideas")
	}
	if err := s.validateIdeaInput(in.Title, in.Pages, in.Media); err != nil {
		return nil, err
	}

	idea.Title = in.Title
	idea.Instrument = in.Instrument
	idea.ImageURL = in.ImageURL
	idea.SetTagList(in.Tags)
	// Save only the scalar columns; pages are replaced wholesale below so
	// removed pages do not linger.
	idea.Pages = nil
	idea.Media = nil
	if err := s.ideaRepo.Update(ctx, idea); err != nil {
		return nil, err
	}
	if err := s.mediaRepo.ReplacePages(ctx, idea.ID, buildPages(in.Pages)); err != nil {
		return nil, err
	}
	if in.Media != nil {
		existing, err := s.mediaRepo.MediaByIdea(ctx, idea.ID)
		if err != nil {
			return nil, err
		}
		keep := make(map[string]struct{}, len(in.Media))
		for _, m := range in.Media {
			keep[m.Key] = struct{}{}
		}
		for _, item := range existing {
			if _, ok := keep[item.Key]; !ok {
				if err := s.mediaRepo.RemoveMedia(ctx, idea.ID, item.Key); err != nil {
					return nil, err
				}
			}
		}
		have := make(map[string]struct{}, len(existing))
		for _, item := range existing {
			have[item.Key] = struct{}{}
		}
		for i, m := range in.Media {
			if _, ok := have[m.Key]; ok {
				continue
			}
			item := buildMedia([]MediaItemInput{m})[0]
			item.IdeaID = idea.ID
			item.Position = i
			if err := s.mediaRepo.AddMedia(ctx, &item); err != nil {
				return nil, err
			}
		}
	}

	return s.GetIdea(ctx, idea.ID, in.UserID)
}

func (s *IdeaService) DeleteIdea(ctx context.Context, in DeleteIdeaInput) error {
	idea, err := s.ideaRepo.GetByID(ctx, in.IdeaID, 0)
	if err != nil {
		return err
	}
	if idea.UserID != in.UserID {
		if s.isAdmin == nil {
			return models.NewUnauthorizedError("You can only delete your own ideas")
		}
		admin, err := s.isAdmin(ctx, in.UserID)
		if err != nil {
			return err
		}
		if !admin {
			return models.NewUnauthorizedError("You can only delete your own ideas")
		}
	}
	return s.ideaRepo.Delete(ctx, in.IdeaID)
}

// PageView is a single rendered breakdown page plus the navigation state a
// client needs to page through the idea.
type PageView struct {
	IdeaID    uint             `json:"idea_id"`
	Page      int              `json:"page"`
	PageCount int              `json:"page_count"`
	HasPrev   bool             `json:"has_prev"`
	HasNext   bool             `json:"has_next"`
	Nodes     []breakdown.Node `json:"nodes"`
}

// GetIdeaPage returns one resolved breakdown page. Pages are 1-based in the
// API; out-of-range requests are rejected rather than clamped.
func (s *IdeaService) GetIdeaPage(ctx context.Context, id uint, page int, currentUserID uint) (*PageView, error) {
	idea, err := s.ideaRepo.GetByID(ctx, id, currentUserID)
	if err != nil {
		return nil, err
	}
	contents := make([]string, len(idea.Pages))
	for i, p := range idea.Pages {
		contents[i] = p.Content
	}
	pager := breakdown.NewPager(contents)
	count := pager.Len()
	if page < 1 || page > count {
		return nil, models.NewValidationError(fmt.Sprintf("Page must be between 1 and %d", count))
	}

	pager.GoTo(page - 1)
	index, content := pager.Current()
	return &PageView{
		IdeaID:    idea.ID,
		Page:      index + 1,
		PageCount: count,
		HasPrev:   index > 0,
		HasNext:   index < count-1,
		Nodes:     breakdown.Resolve(content, idea.Media),
	}, nil
}

// SetPinned pins or unpins an idea. Pinned ideas sort first in every feed,
// so the operation is restricted to admins.
func (s *IdeaService) SetPinned(ctx context.Context, userID, ideaID uint, pinned bool) (*IdeaView, error) {
	if s.isAdmin == nil {
		return nil, models.NewForbiddenError("Admin access required")
	}
	admin, err := s.isAdmin(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !admin {
		return nil, models.NewForbiddenError("Admin access required")
	}

	idea, err := s.ideaRepo.GetByID(ctx, ideaID, 0)
	if err != nil {
		return nil, err
	}
	idea.IsPinned = pinned
	update := *idea
	update.Pages = nil
	update.Media = nil
	if err := s.ideaRepo.Update(ctx, &update); err != nil {
		return nil, err
	}
	return s.GetIdea(ctx, ideaID, userID)
}

func (s *IdeaService) resolve(idea *models.TradeIdea) *IdeaView {
	view := &IdeaView{TradeIdea: idea}
	view.ResolvedPages = make([][]breakdown.Node, len(idea.Pages))
	for i, page := range idea.Pages {
		view.ResolvedPages[i] = breakdown.Resolve(page.Content, idea.Media)
	}
	return view
}

func (s *IdeaService) resolveAll(ideas []*models.TradeIdea) []*IdeaView {
	views := make([]*IdeaView, len(ideas))
	for i, idea := range ideas {
		views[i] = s.resolve(idea)
	}
	return views
}
