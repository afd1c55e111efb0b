package cache

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPostKey(t *testing.T) {
	assert.Equal(t, "post:P1", PostKey("P1"))
	assert.Equal(t, "trending_posts", TrendingKey)
}
