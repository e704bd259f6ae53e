package cache

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type cachedIdea struct {
	ID    uint   `json:"id"`
	Title string `json:"title"`
}

func setupTestRedis(t *testing.T) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	SetClient(rdb)
	t.Cleanup(func() {
		SetClient(nil)
		_ = rdb.Close()
	})
}

func TestGetSetJSON(t *testing.T) {
	setupTestRedis(t)
	ctx := context.Background()

	var missed cachedIdea
	found, err := GetJSON(ctx, IdeaKey(1), &missed)
	require.NoError(t, err)
	assert.False(t, found)

	want := cachedIdea{ID: 1, Title: "EURUSD breakout"}
	require.NoError(t, SetJSON(ctx, IdeaKey(1), want, IdeaTTL))

	var got cachedIdea
	found, err = GetJSON(ctx, IdeaKey(1), &got)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, want, got)
}

func TestAside(t *testing.T) {
	setupTestRedis(t)
	ctx := context.Background()

	fetches := 0
	fetch := func(dest *cachedIdea) func() error {
		return func() error {
			fetches++
			*dest = cachedIdea{ID: 2, Title: "BTC range"}
			return nil
		}
	}

	var first cachedIdea
	require.NoError(t, Aside(ctx, IdeaKey(2), &first, IdeaTTL, fetch(&first)))
	assert.Equal(t, 1, fetches)
	assert.Equal(t, "BTC range", first.Title)

	// Second call is served from cache.
	var second cachedIdea
	require.NoError(t, Aside(ctx, IdeaKey(2), &second, IdeaTTL, fetch(&second)))
	assert.Equal(t, 1, fetches)
	assert.Equal(t, first, second)
}

func TestAsideNilClientFallsThrough(t *testing.T) {
	SetClient(nil)
	ctx := context.Background()

	var dest cachedIdea
	err := Aside(ctx, IdeaKey(3), &dest, IdeaTTL, func() error {
		dest = cachedIdea{ID: 3, Title: "gold swing"}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, uint(3), dest.ID)
}

func TestInvalidateFeed(t *testing.T) {
	setupTestRedis(t)
	ctx := context.Background()

	require.NoError(t, SetJSON(ctx, FeedKey(1, 20), []cachedIdea{{ID: 1}}, FeedTTL))
	require.NoError(t, SetJSON(ctx, FeedKey(2, 20), []cachedIdea{{ID: 2}}, FeedTTL))
	require.NoError(t, SetJSON(ctx, IdeaKey(9), cachedIdea{ID: 9}, IdeaTTL))

	InvalidateFeed(ctx)

	var dest []cachedIdea
	found, err := GetJSON(ctx, FeedKey(1, 20), &dest)
	require.NoError(t, err)
	assert.False(t, found)
	found, err = GetJSON(ctx, FeedKey(2, 20), &dest)
	require.NoError(t, err)
	assert.False(t, found)

	// Unrelated keys survive.
	var idea cachedIdea
	found, err = GetJSON(ctx, IdeaKey(9), &idea)
	require.NoError(t, err)
	assert.True(t, found)
}
