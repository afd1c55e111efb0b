package cache

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"socialmesh/internal/models"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupStore(t *testing.T, ttl time.Duration) (*Store, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("failed to start miniredis: %v", err)
	}
	t.Cleanup(mr.Close)

	client := NewClient(mr.Addr(), "", 0)
	t.Cleanup(func() { _ = client.Close() })

	return NewStore(client, ttl), mr
}

func samplePost() *models.Post {
	return &models.Post{
		PostID:    "P1",
		UserID:    "U1",
		Content:   "hello #x",
		Hashtags:  []string{"#x"},
		CreatedAt: time.Date(2024, 5, 1, 12, 30, 0, 0, time.UTC),
	}
}

func TestStore_CachePostRoundTrip(t *testing.T) {
	s, mr := setupStore(t, 0)
	ctx := context.Background()

	require.NoError(t, s.CachePost(ctx, samplePost()))

	// Stored as JSON text with an ISO-8601 timestamp.
	raw, err := mr.Get("post:P1")
	require.NoError(t, err)
	var wire map[string]any
	require.NoError(t, json.Unmarshal([]byte(raw), &wire))
	assert.Equal(t, "2024-05-01T12:30:00Z", wire["created_at"])
	assert.Equal(t, DefaultPostTTL, mr.TTL("post:P1"))

	got, err := s.GetCachedPost(ctx, "P1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "hello #x", got.Content)
	assert.Equal(t, []string{"#x"}, []string(got.Hashtags))
	assert.True(t, got.CreatedAt.Equal(samplePost().CreatedAt))
}

func TestStore_CachePostOverwrites(t *testing.T) {
	s, _ := setupStore(t, 0)
	ctx := context.Background()

	require.NoError(t, s.CachePost(ctx, samplePost()))
	updated := samplePost()
	updated.Content = "edited"
	require.NoError(t, s.CachePost(ctx, updated))

	got, err := s.GetCachedPost(ctx, "P1")
	require.NoError(t, err)
	assert.Equal(t, "edited", got.Content)
}

func TestStore_GetCachedPost_NeverCached(t *testing.T) {
	s, _ := setupStore(t, 0)

	got, err := s.GetCachedPost(context.Background(), "nope")
	assert.NoError(t, err)
	assert.Nil(t, got)
}

func TestStore_CachedPostExpires(t *testing.T) {
	s, mr := setupStore(t, 10*time.Minute)
	ctx := context.Background()

	require.NoError(t, s.CachePost(ctx, samplePost()))

	mr.FastForward(9 * time.Minute)
	got, err := s.GetCachedPost(ctx, "P1")
	require.NoError(t, err)
	assert.NotNil(t, got)

	mr.FastForward(2 * time.Minute)
	got, err = s.GetCachedPost(ctx, "P1")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestStore_CachePost_Nil(t *testing.T) {
	s, _ := setupStore(t, 0)
	assert.Error(t, s.CachePost(context.Background(), nil))
}

func TestStore_IncrementRanking(t *testing.T) {
	s, _ := setupStore(t, 0)
	ctx := context.Background()

	require.NoError(t, s.IncrementRanking(ctx, "P1", 0))
	top, err := s.TopRanked(ctx, 10)
	require.NoError(t, err)
	require.Len(t, top, 1)
	assert.Equal(t, models.TrendingEntry{PostID: "P1", TrendingScore: 0}, top[0])

	for i := 0; i < 3; i++ {
		require.NoError(t, s.IncrementRanking(ctx, "P1", 1))
	}
	require.NoError(t, s.IncrementRanking(ctx, "P1", -1))

	top, err = s.TopRanked(ctx, 10)
	require.NoError(t, err)
	assert.Equal(t, 2.0, top[0].TrendingScore)
}

func TestStore_TopRanked_OrderAndLimit(t *testing.T) {
	s, _ := setupStore(t, 0)
	ctx := context.Background()

	scores := map[string]float64{"P1": 5, "P2": 1, "P3": 9, "P4": 3}
	for id, score := range scores {
		require.NoError(t, s.IncrementRanking(ctx, id, score))
	}

	top, err := s.TopRanked(ctx, 3)
	require.NoError(t, err)
	assert.Equal(t, []models.TrendingEntry{
		{PostID: "P3", TrendingScore: 9},
		{PostID: "P1", TrendingScore: 5},
		{PostID: "P4", TrendingScore: 3},
	}, top)
}

func TestStore_TopRanked_TieBreakDescendingPostID(t *testing.T) {
	s, _ := setupStore(t, 0)
	ctx := context.Background()

	for _, id := range []string{"b", "a", "c"} {
		require.NoError(t, s.IncrementRanking(ctx, id, 0))
	}
	require.NoError(t, s.IncrementRanking(ctx, "z", 1))

	top, err := s.TopRanked(ctx, 10)
	require.NoError(t, err)

	ids := make([]string, 0, len(top))
	for _, e := range top {
		ids = append(ids, e.PostID)
	}
	assert.Equal(t, []string{"z", "c", "b", "a"}, ids)
}

func TestStore_TopRanked_NonPositiveN(t *testing.T) {
	s, _ := setupStore(t, 0)
	ctx := context.Background()
	require.NoError(t, s.IncrementRanking(ctx, "P1", 1))

	top, err := s.TopRanked(ctx, 0)
	require.NoError(t, err)
	assert.Empty(t, top)
}

func TestStore_Ping(t *testing.T) {
	s, mr := setupStore(t, 0)
	assert.NoError(t, s.Ping(context.Background()))

	mr.Close()
	assert.Error(t, s.Ping(context.Background()))
}
