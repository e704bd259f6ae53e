package service

import (
	"context"
	"testing"

	"alphaboard/internal/likes"
	"alphaboard/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLikeService_LikeCommits(t *testing.T) {
	repo := noopIdeaRepo()
	inserts := 0
	repo.likeFn = func(_ context.Context, userID, ideaID uint) error {
		inserts++
		return nil
	}
	repo.likeStateFn = func(_ context.Context, _, _ uint) (bool, int, error) {
		return false, 3, nil
	}

	svc := NewLikeService(repo)
	res, err := svc.Like(context.Background(), 2, 1)
	require.NoError(t, err)

	assert.Equal(t, 1, inserts)
	assert.True(t, res.Liked)
	assert.Equal(t, 4, res.Count)
	assert.Equal(t, likes.StateCommitted, res.State)
}

func TestLikeService_RepeatLikeIsNoOp(t *testing.T) {
	repo := noopIdeaRepo()
	inserts := 0
	repo.likeFn = func(_ context.Context, _, _ uint) error {
		inserts++
		return nil
	}
	repo.likeStateFn = func(_ context.Context, _, _ uint) (bool, int, error) {
		// Reflects the row written by the first call.
		return inserts > 0, inserts, nil
	}

	svc := NewLikeService(repo)
	ctx := context.Background()
	_, err := svc.Like(ctx, 2, 1)
	require.NoError(t, err)
	res, err := svc.Like(ctx, 2, 1)
	require.NoError(t, err)

	// The coordinator already holds liked=true, so the second call never
	// reaches the store.
	assert.Equal(t, 1, inserts)
	assert.True(t, res.Liked)
	assert.Equal(t, 1, res.Count)
}

func TestLikeService_DuplicateRowReconciles(t *testing.T) {
	repo := noopIdeaRepo()
	repo.likeFn = func(_ context.Context, _, _ uint) error {
		return models.ErrAlreadyLiked
	}
	seeded := false
	repo.likeStateFn = func(_ context.Context, _, _ uint) (bool, int, error) {
		if !seeded {
			// First call seeds the coordinator before the like runs.
			seeded = true
			return false, 7, nil
		}
		// Reconciliation fetch: another session already inserted the row.
		return true, 8, nil
	}

	svc := NewLikeService(repo)
	res, err := svc.Like(context.Background(), 2, 1)
	require.NoError(t, err)

	assert.True(t, res.Liked)
	assert.Equal(t, 8, res.Count)
	assert.Equal(t, likes.StateCommitted, res.State)
}

func TestLikeService_StoreFailureRollsBack(t *testing.T) {
	repo := noopIdeaRepo()
	repo.likeFn = func(_ context.Context, _, _ uint) error {
		return assert.AnError
	}
	repo.likeStateFn = func(_ context.Context, _, _ uint) (bool, int, error) {
		return false, 5, nil
	}

	svc := NewLikeService(repo)
	_, err := svc.Like(context.Background(), 2, 1)
	require.Error(t, err)

	// The optimistic bump was rolled back.
	res, err := svc.Unlike(context.Background(), 2, 1)
	require.NoError(t, err)
	assert.False(t, res.Liked)
	assert.Equal(t, 5, res.Count)
}

func TestLikeService_UnlikeCommits(t *testing.T) {
	repo := noopIdeaRepo()
	removes := 0
	repo.unlikeFn = func(_ context.Context, _, _ uint) error {
		removes++
		return nil
	}
	repo.likeStateFn = func(_ context.Context, _, _ uint) (bool, int, error) {
		return true, 10, nil
	}

	svc := NewLikeService(repo)
	res, err := svc.Unlike(context.Background(), 2, 1)
	require.NoError(t, err)

	assert.Equal(t, 1, removes)
	assert.False(t, res.Liked)
	assert.Equal(t, 9, res.Count)
	assert.Equal(t, likes.StateCommitted, res.State)
}

func TestLikeService_CountTracksOtherUsers(t *testing.T) {
	// Shared row set so each user's coordinator sees likes written by the
	// other between requests.
	rows := map[uint]bool{}
	repo := noopIdeaRepo()
	repo.likeFn = func(_ context.Context, userID, _ uint) error {
		rows[userID] = true
		return nil
	}
	repo.unlikeFn = func(_ context.Context, userID, _ uint) error {
		delete(rows, userID)
		return nil
	}
	repo.likeStateFn = func(_ context.Context, userID, _ uint) (bool, int, error) {
		return rows[userID], len(rows), nil
	}

	svc := NewLikeService(repo)
	ctx := context.Background()

	res, err := svc.Like(ctx, 1, 9)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Count)

	res, err = svc.Like(ctx, 2, 9)
	require.NoError(t, err)
	assert.Equal(t, 2, res.Count)

	// User 1's cached coordinator is re-seeded before the toggle, so the
	// count reflects user 2's like instead of decrementing a stale 1.
	res, err = svc.Unlike(ctx, 1, 9)
	require.NoError(t, err)
	assert.False(t, res.Liked)
	assert.Equal(t, 1, res.Count)
}

func TestLikeService_CoordinatorCacheBounded(t *testing.T) {
	repo := noopIdeaRepo()
	repo.likeFn = func(_ context.Context, _, _ uint) error { return nil }
	repo.likeStateFn = func(_ context.Context, _, _ uint) (bool, int, error) {
		return false, 0, nil
	}

	svc := NewLikeService(repo)
	ctx := context.Background()
	for i := 0; i < maxCoordinators+10; i++ {
		_, err := svc.Like(ctx, 1, uint(i+1))
		require.NoError(t, err)
	}

	svc.mu.Lock()
	size := len(svc.coordinators)
	svc.mu.Unlock()
	assert.LessOrEqual(t, size, maxCoordinators)
}

func TestLikeService_MissingIdea(t *testing.T) {
	repo := noopIdeaRepo()
	repo.getByIDFn = func(_ context.Context, id, _ uint) (*models.TradeIdea, error) {
		return nil, models.NewNotFoundError("TradeIdea", id)
	}

	svc := NewLikeService(repo)
	_, err := svc.Like(context.Background(), 2, 99)
	require.Error(t, err)
	appErr, ok := err.(*models.AppError)
	require.True(t, ok)
	assert.Equal(t, "NOT_FOUND", appErr.Code)
}
