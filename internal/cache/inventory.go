package cache

import (
	"fmt"
	"time"
)

const postKeyFormat = "post:%s"

// TrendingKey is the sorted set holding post ranking scores.
const TrendingKey = "trending_posts"

// DefaultPostTTL bounds the lifetime of a cached post snapshot.
const DefaultPostTTL = time.Hour

// PostKey returns the key under which a post snapshot is cached.
func PostKey(postID string) string {
	return fmt.Sprintf(postKeyFormat, postID)
}
