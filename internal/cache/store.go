package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"socialmesh/internal/models"

	"github.com/redis/go-redis/v9"
)

// Store owns ephemeral post snapshots and the trending sorted set. It is safe
// for concurrent use; concurrency control is left to Redis.
type Store struct {
	client  *redis.Client
	postTTL time.Duration
}

// NewStore returns a Store using client. A non-positive postTTL selects DefaultPostTTL.
func NewStore(client *redis.Client, postTTL time.Duration) *Store {
	if postTTL <= 0 {
		postTTL = DefaultPostTTL
	}
	return &Store{client: client, postTTL: postTTL}
}

// CachePost writes a JSON snapshot of post, replacing any previous snapshot
// and restarting its expiry.
func (s *Store) CachePost(ctx context.Context, post *models.Post) error {
	if post == nil {
		return errors.New("cache post: nil post")
	}
	b, err := json.Marshal(post)
	if err != nil {
		return fmt.Errorf("encode post %s: %w", post.PostID, err)
	}
	return s.client.Set(ctx, PostKey(post.PostID), b, s.postTTL).Err()
}

// GetCachedPost returns the snapshot for postID, or nil when it was never
// cached or has expired. The two cases are indistinguishable.
func (s *Store) GetCachedPost(ctx context.Context, postID string) (*models.Post, error) {
	raw, err := s.client.Get(ctx, PostKey(postID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var post models.Post
	if err := json.Unmarshal(raw, &post); err != nil {
		return nil, fmt.Errorf("decode cached post %s: %w", postID, err)
	}
	return &post, nil
}

// IncrementRanking adds delta to the trending score of postID, creating the
// member with score delta if absent. Zero is a valid delta and seeds the entry.
func (s *Store) IncrementRanking(ctx context.Context, postID string, delta float64) error {
	return s.client.ZIncrBy(ctx, TrendingKey, delta, postID).Err()
}

// TopRanked returns up to n entries by descending trending score. Members with
// equal scores come in descending lexicographic order of post id, which is
// the native ZREVRANGE ordering.
func (s *Store) TopRanked(ctx context.Context, n int) ([]models.TrendingEntry, error) {
	if n <= 0 {
		return []models.TrendingEntry{}, nil
	}
	zs, err := s.client.ZRevRangeWithScores(ctx, TrendingKey, 0, int64(n-1)).Result()
	if err != nil {
		return nil, err
	}

	entries := make([]models.TrendingEntry, 0, len(zs))
	for _, z := range zs {
		member, ok := z.Member.(string)
		if !ok {
			member = fmt.Sprint(z.Member)
		}
		entries = append(entries, models.TrendingEntry{PostID: member, TrendingScore: z.Score})
	}
	return entries, nil
}

// Ping checks that Redis is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}
