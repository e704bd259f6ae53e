package service

import (
	"context"
	"testing"

	"alphaboard/internal/breakdown"
	"alphaboard/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ideaRepoStub is a stub for repository.IdeaRepository.
type ideaRepoStub struct {
	createFn      func(context.Context, *models.TradeIdea) error
	getByIDFn     func(context.Context, uint, uint) (*models.TradeIdea, error)
	getByUserIDFn func(context.Context, uint, int, int, uint) ([]*models.TradeIdea, error)
	listFn        func(context.Context, int, int, uint, string) ([]*models.TradeIdea, error)
	searchFn      func(context.Context, string, int, int, uint) ([]*models.TradeIdea, error)
	updateFn      func(context.Context, *models.TradeIdea) error
	deleteFn      func(context.Context, uint) error
	isLikedFn     func(context.Context, uint, uint) (bool, error)
	likeStateFn   func(context.Context, uint, uint) (bool, int, error)
	likeFn        func(context.Context, uint, uint) error
	unlikeFn      func(context.Context, uint, uint) error
}

func (s *ideaRepoStub) Create(ctx context.Context, idea *models.TradeIdea) error {
	return s.createFn(ctx, idea)
}
func (s *ideaRepoStub) GetByID(ctx context.Context, id, currentUserID uint) (*models.TradeIdea, error) {
	return s.getByIDFn(ctx, id, currentUserID)
}
func (s *ideaRepoStub) GetByUserID(ctx context.Context, userID uint, limit, offset int, currentUserID uint) ([]*models.TradeIdea, error) {
	return s.getByUserIDFn(ctx, userID, limit, offset, currentUserID)
}
func (s *ideaRepoStub) List(ctx context.Context, limit, offset int, currentUserID uint, sort string) ([]*models.TradeIdea, error) {
	return s.listFn(ctx, limit, offset, currentUserID, sort)
}
func (s *ideaRepoStub) Search(ctx context.Context, query string, limit, offset int, currentUserID uint) ([]*models.TradeIdea, error) {
	return s.searchFn(ctx, query, limit, offset, currentUserID)
}
func (s *ideaRepoStub) Update(ctx context.Context, idea *models.TradeIdea) error {
	return s.updateFn(ctx, idea)
}
func (s *ideaRepoStub) Delete(ctx context.Context, id uint) error {
	return s.deleteFn(ctx, id)
}
func (s *ideaRepoStub) IsLiked(ctx context.Context, userID, ideaID uint) (bool, error) {
	return s.isLikedFn(ctx, userID, ideaID)
}
func (s *ideaRepoStub) LikeState(ctx context.Context, userID, ideaID uint) (bool, int, error) {
	return s.likeStateFn(ctx, userID, ideaID)
}
func (s *ideaRepoStub) Like(ctx context.Context, userID, ideaID uint) error {
	return s.likeFn(ctx, userID, ideaID)
}
func (s *ideaRepoStub) Unlike(ctx context.Context, userID, ideaID uint) error {
	return s.unlikeFn(ctx, userID, ideaID)
}

func noopIdeaRepo() *ideaRepoStub {
	return &ideaRepoStub{
		createFn: func(_ context.Context, _ *models.TradeIdea) error { return nil },
		getByIDFn: func(_ context.Context, _, _ uint) (*models.TradeIdea, error) {
			return &models.TradeIdea{}, nil
		},
		getByUserIDFn: func(_ context.Context, _ uint, _, _ int, _ uint) ([]*models.TradeIdea, error) {
			return nil, nil
		},
		listFn: func(_ context.Context, _, _ int, _ uint, _ string) ([]*models.TradeIdea, error) {
			return nil, nil
		},
		searchFn: func(_ context.Context, _ string, _, _ int, _ uint) ([]*models.TradeIdea, error) {
			return nil, nil
		},
		updateFn:    func(_ context.Context, _ *models.TradeIdea) error { return nil },
		deleteFn:    func(_ context.Context, _ uint) error { return nil },
		isLikedFn:   func(_ context.Context, _, _ uint) (bool, error) { return false, nil },
		likeStateFn: func(_ context.Context, _, _ uint) (bool, int, error) { return false, 0, nil },
		likeFn:      func(_ context.Context, _, _ uint) error { return nil },
		unlikeFn:    func(_ context.Context, _, _ uint) error { return nil },
	}
}

// mediaRepoStub is a stub for repository.MediaRepository.
type mediaRepoStub struct {
	replacePagesFn func(context.Context, uint, []models.BreakdownPage) error
	pagesByIdeaFn  func(context.Context, uint) ([]models.BreakdownPage, error)
	addMediaFn     func(context.Context, *models.MediaItem) error
	mediaByIdeaFn  func(context.Context, uint) ([]models.MediaItem, error)
	removeMediaFn  func(context.Context, uint, string) error
}

func (s *mediaRepoStub) ReplacePages(ctx context.Context, ideaID uint, pages []models.BreakdownPage) error {
	return s.replacePagesFn(ctx, ideaID, pages)
}
func (s *mediaRepoStub) PagesByIdea(ctx context.Context, ideaID uint) ([]models.BreakdownPage, error) {
	return s.pagesByIdeaFn(ctx, ideaID)
}
func (s *mediaRepoStub) AddMedia(ctx context.Context, item *models.MediaItem) error {
	return s.addMediaFn(ctx, item)
}
func (s *mediaRepoStub) MediaByIdea(ctx context.Context, ideaID uint) ([]models.MediaItem, error) {
	return s.mediaByIdeaFn(ctx, ideaID)
}
func (s *mediaRepoStub) RemoveMedia(ctx context.Context, ideaID uint, key string) error {
	return s.removeMediaFn(ctx, ideaID, key)
}

func noopMediaRepo() *mediaRepoStub {
	return &mediaRepoStub{
		replacePagesFn: func(_ context.Context, _ uint, _ []models.BreakdownPage) error { return nil },
		pagesByIdeaFn:  func(_ context.Context, _ uint) ([]models.BreakdownPage, error) { return nil, nil },
		addMediaFn:     func(_ context.Context, _ *models.MediaItem) error { return nil },
		mediaByIdeaFn:  func(_ context.Context, _ uint) ([]models.MediaItem, error) { return nil, nil },
		removeMediaFn:  func(_ context.Context, _ uint, _ string) error { return nil },
	}
}

func TestIdeaService_CreateIdea_DefaultsToSinglePage(t *testing.T) {
	repo := noopIdeaRepo()
	var created *models.TradeIdea
	repo.createFn = func(_ context.Context, idea *models.TradeIdea) error {
		idea.ID = 1
		created = idea
		return nil
	}
	repo.getByIDFn = func(_ context.Context, id, _ uint) (*models.TradeIdea, error) {
		return created, nil
	}

	svc := NewIdeaService(repo, noopMediaRepo(), nil)
	view, err := svc.CreateIdea(context.Background(), CreateIdeaInput{
		UserID: 1,
		Title:  "EURUSD breakout",
	})
	require.NoError(t, err)

	// A breakdown always has at least one page.
	require.Len(t, created.Pages, 1)
	assert.Equal(t, 0, created.Pages[0].Position)
	assert.Equal(t, "", created.Pages[0].Content)
	require.Len(t, view.ResolvedPages, 1)
}

func TestIdeaService_CreateIdea_Validation(t *testing.T) {
	svc := NewIdeaService(noopIdeaRepo(), noopMediaRepo(), nil)
	ctx := context.Background()

	tests := []struct {
		name string
		in   CreateIdeaInput
	}{
		{name: "missing title", in: CreateIdeaInput{UserID: 1}},
		{
			name: "invalid media type",
			in: CreateIdeaInput{
				UserID: 1, Title: "t",
				Media: []MediaItemInput{{Key: "1", Type: "gif", URL: "https://x.test/a"}},
			},
		},
		{
			name: "duplicate media keys",
			in: CreateIdeaInput{
				UserID: 1, Title: "t",
				Media: []MediaItemInput{
					{Key: "1", Type: "image", URL: "https://x.test/a"},
					{Key: "1", Type: "image", URL: "https://x.test/b"},
				},
			},
		},
		{
			name: "media missing url",
			in: CreateIdeaInput{
				UserID: 1, Title: "t",
				Media: []MediaItemInput{{Key: "1", Type: "image"}},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.CreateIdea(ctx, tt.in)
			require.Error(t, err)
			appErr, ok := err.(*models.AppError)
			require.True(t, ok)
			assert.Equal(t, "VALIDATION_ERROR", appErr.Code)
		})
	}
}

func TestIdeaService_GetIdea_ResolvesPlaceholders(t *testing.T) {
	repo := noopIdeaRepo()
	repo.getByIDFn = func(_ context.Context, id, _ uint) (*models.TradeIdea, error) {
		return &models.TradeIdea{
			ID: id,
			Pages: []models.BreakdownPage{
				{Position: 0, Content: "Entry [MEDIA:7] exit [MEDIA:missing]"},
			},
			Media: []models.MediaItem{
				{Key: "7", Type: models.MediaTypeImage, URL: "https://cdn.test/chart.png"},
			},
		}, nil
	}

	svc := NewIdeaService(repo, noopMediaRepo(), nil)
	view, err := svc.GetIdea(context.Background(), 1, 0)
	require.NoError(t, err)
	require.Len(t, view.ResolvedPages, 1)

	nodes := view.ResolvedPages[0]
	// "Entry ", the image, " exit ", and the empty tail; the unmatched
	// placeholder is dropped silently.
	require.Len(t, nodes, 4)
	assert.Equal(t, breakdown.NodeText, nodes[0].Kind)
	assert.Equal(t, breakdown.NodeImage, nodes[1].Kind)
	assert.Equal(t, "https://cdn.test/chart.png", nodes[1].Media.URL)
	assert.Equal(t, " exit ", nodes[2].Text)
	assert.Equal(t, breakdown.NodeText, nodes[3].Kind)
	assert.Equal(t, "", nodes[3].Text)
}

func TestIdeaService_GetIdeaPage_Navigation(t *testing.T) {
	repo := noopIdeaRepo()
	repo.getByIDFn = func(_ context.Context, id, _ uint) (*models.TradeIdea, error) {
		return &models.TradeIdea{
			ID: id,
			Pages: []models.BreakdownPage{
				{Position: 0, Content: "first"},
				{Position: 1, Content: "second"},
			},
		}, nil
	}

	svc := NewIdeaService(repo, noopMediaRepo(), nil)
	ctx := context.Background()

	view, err := svc.GetIdeaPage(ctx, 1, 1, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, view.Page)
	assert.Equal(t, 2, view.PageCount)
	assert.False(t, view.HasPrev)
	assert.True(t, view.HasNext)

	view, err = svc.GetIdeaPage(ctx, 1, 2, 0)
	require.NoError(t, err)
	assert.True(t, view.HasPrev)
	assert.False(t, view.HasNext)

	// Out-of-range pages are rejected, not clamped.
	_, err = svc.GetIdeaPage(ctx, 1, 3, 0)
	require.Error(t, err)
	_, err = svc.GetIdeaPage(ctx, 1, 0, 0)
	require.Error(t, err)
}

func TestIdeaService_GetIdeaPage_EmptyBreakdown(t *testing.T) {
	repo := noopIdeaRepo()
	repo.getByIDFn = func(_ context.Context, id, _ uint) (*models.TradeIdea, error) {
		return &models.TradeIdea{ID: id}, nil
	}

	svc := NewIdeaService(repo, noopMediaRepo(), nil)
	view, err := svc.GetIdeaPage(context.Background(), 1, 1, 0)
	require.NoError(t, err)

	// An idea without pages still renders as a single empty page.
	assert.Equal(t, 1, view.Page)
	assert.Equal(t, 1, view.PageCount)
	assert.False(t, view.HasPrev)
	assert.False(t, view.HasNext)
}

func TestIdeaService_DeleteIdea_Authorization(t *testing.T) {
	repo := noopIdeaRepo()
	repo.getByIDFn = func(_ context.Context, id, _ uint) (*models.TradeIdea, error) {
		return &models.TradeIdea{ID: id, UserID: 10}, nil
	}
	deleted := false
	repo.deleteFn = func(_ context.Context, _ uint) error {
		deleted = true
		return nil
	}

	t.Run("owner can delete", func(t *testing.T) {
		deleted = false
		svc := NewIdeaService(repo, noopMediaRepo(), nil)
		err := svc.DeleteIdea(context.Background(), DeleteIdeaInput{UserID: 10, IdeaID: 1})
		require.NoError(t, err)
		assert.True(t, deleted)
	})

	t.Run("stranger cannot delete", func(t *testing.T) {
		deleted = false
		svc := NewIdeaService(repo, noopMediaRepo(), func(_ context.Context, _ uint) (bool, error) {
			return false, nil
		})
		err := svc.DeleteIdea(context.Background(), DeleteIdeaInput{UserID: 99, IdeaID: 1})
		require.Error(t, err)
		assert.False(t, deleted)
	})

	t.Run("admin can delete", func(t *testing.T) {
		deleted = false
		svc := NewIdeaService(repo, noopMediaRepo(), func(_ context.Context, _ uint) (bool, error) {
			return true, nil
		})
		err := svc.DeleteIdea(context.Background(), DeleteIdeaInput{UserID: 99, IdeaID: 1})
		require.NoError(t, err)
		assert.True(t, deleted)
	})
}
