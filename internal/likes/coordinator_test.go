package likes

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"alphaboard/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// storeStub is a controllable Store for coordinator tests.
type storeStub struct {
	mu       sync.Mutex
	inserts  int
	removes  int
	insertFn func(ctx context.Context, userID, ideaID uint) error
	removeFn func(ctx context.Context, userID, ideaID uint) error
	fetchFn  func(ctx context.Context, userID, ideaID uint) (bool, int, error)
}

func (s *storeStub) Insert(ctx context.Context, userID, ideaID uint) error {
	s.mu.Lock()
	s.inserts++
	s.mu.Unlock()
	if s.insertFn != nil {
		return s.insertFn(ctx, userID, ideaID)
	}
	return nil
}

func (s *storeStub) Remove(ctx context.Context, userID, ideaID uint) error {
	s.mu.Lock()
	s.removes++
	s.mu.Unlock()
	if s.removeFn != nil {
		return s.removeFn(ctx, userID, ideaID)
	}
	return nil
}

func (s *storeStub) Fetch(ctx context.Context, userID, ideaID uint) (bool, int, error) {
	if s.fetchFn != nil {
		return s.fetchFn(ctx, userID, ideaID)
	}
	return false, 0, nil
}

func (s *storeStub) insertCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.inserts
}

func TestCoordinator_LikeCommits(t *testing.T) {
	store := &storeStub{}
	c := NewCoordinator(store, 1, 10, false, 3)

	require.NoError(t, c.Like(context.Background()))

	liked, count, state := c.Snapshot()
	assert.True(t, liked)
	assert.Equal(t, 4, count)
	assert.Equal(t, StateCommitted, state)
	assert.Equal(t, 1, store.insertCount())
}

func TestCoordinator_DoubleClickIsSingleFlight(t *testing.T) {
	release := make(chan struct{})
	store := &storeStub{
		insertFn: func(context.Context, uint, uint) error {
			<-release
			return nil
		},
	}
	c := NewCoordinator(store, 1, 10, false, 0)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_ = c.Like(context.Background())
	}()

	// Wait for the first call to flip the optimistic state and suspend.
	require.Eventually(t, func() bool {
		_, _, state := c.Snapshot()
		return state == StatePending
	}, time.Second, time.Millisecond)

	// Second click while the first is in flight: ignored.
	require.NoError(t, c.Like(context.Background()))

	close(release)
	wg.Wait()

	liked, count, _ := c.Snapshot()
	assert.True(t, liked)
	assert.Equal(t, 1, count, "count incremented exactly once")
	assert.Equal(t, 1, store.insertCount(), "exactly one insert issued")
}

func TestCoordinator_DuplicateRowReconciles(t *testing.T) {
	store := &storeStub{
		insertFn: func(context.Context, uint, uint) error {
			return models.ErrAlreadyLiked
		},
		fetchFn: func(context.Context, uint, uint) (bool, int, error) {
			return true, 7, nil
		},
	}
	c := NewCoordinator(store, 1, 10, false, 3)

	require.NoError(t, c.Like(context.Background()), "duplicate is not surfaced as an error")

	liked, count, state := c.Snapshot()
	assert.True(t, liked)
	assert.Equal(t, 7, count, "authoritative count wins")
	assert.Equal(t, StateCommitted, state)
}

func TestCoordinator_LikeRollsBackOnStoreError(t *testing.T) {
	boom := errors.New("connection reset")
	store := &storeStub{
		insertFn: func(context.Context, uint, uint) error { return boom },
	}
	c := NewCoordinator(store, 1, 10, false, 5)

	err := c.Like(context.Background())
	require.ErrorIs(t, err, boom)

	liked, count, state := c.Snapshot()
	assert.False(t, liked, "optimistic flip reverted")
	assert.Equal(t, 5, count, "optimistic increment reverted")
	assert.Equal(t, StateRolledBack, state)
}

func TestCoordinator_UnlikeRollsBackOnStoreError(t *testing.T) {
	boom := errors.New("timeout")
	store := &storeStub{
		removeFn: func(context.Context, uint, uint) error { return boom },
	}
	c := NewCoordinator(store, 1, 10, true, 5)

	err := c.Unlike(context.Background())
	require.ErrorIs(t, err, boom)

	liked, count, state := c.Snapshot()
	assert.True(t, liked)
	assert.Equal(t, 5, count)
	assert.Equal(t, StateRolledBack, state)
}

func TestCoordinator_LikeWhenAlreadyLikedIsNoop(t *testing.T) {
	store := &storeStub{}
	c := NewCoordinator(store, 1, 10, true, 2)

	require.NoError(t, c.Like(context.Background()))

	assert.Equal(t, 0, store.insertCount())
}

func TestCoordinator_SyncSkippedWhileInFlight(t *testing.T) {
	release := make(chan struct{})
	store := &storeStub{
		insertFn: func(context.Context, uint, uint) error {
			<-release
			return nil
		},
	}
	c := NewCoordinator(store, 1, 10, false, 0)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_ = c.Like(context.Background())
	}()

	require.Eventually(t, func() bool {
		_, _, state := c.Snapshot()
		return state == StatePending
	}, time.Second, time.Millisecond)

	// External cache refresh arrives mid-flight: ignored.
	c.Sync(false, 99)
	liked, count, _ := c.Snapshot()
	assert.True(t, liked)
	assert.Equal(t, 1, count)

	close(release)
	wg.Wait()

	// After the flight settles, an external sync wins.
	c.Sync(true, 42)
	liked, count, state := c.Snapshot()
	assert.True(t, liked)
	assert.Equal(t, 42, count)
	assert.Equal(t, StateIdle, state)
}
