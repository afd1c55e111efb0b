package graph

import (
	"context"
	"fmt"

	"socialmesh/internal/models"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
)

const (
	mergeUserCypher = `MERGE (u:User {user_id: $user_id})
SET u.name = $name`

	// The trailing aggregate always yields one row, so linked is 0 when the
	// user node does not exist and the edge was not created.
	mergePostCypher = `MERGE (p:Post {post_id: $post_id})
SET p.content = $content, p.hashtags = $hashtags
WITH p
MATCH (u:User {user_id: $user_id})
MERGE (u)-[:POSTED]->(p)
RETURN count(u) AS linked`

	userPostsCypher = `MATCH (u:User {user_id: $user_id})-[:POSTED]->(p:Post)
RETURN p.post_id AS post_id, p.content AS content, p.hashtags AS hashtags
ORDER BY p.post_id`

	pingCypher = `RETURN 1 AS ok`
)

// Store is the graph projection adapter.
type Store struct {
	runner Runner
}

// NewStore wraps runner.
func NewStore(runner Runner) *Store {
	return &Store{runner: runner}
}

// MergeUserNode creates the user node or overwrites its name.
func (s *Store) MergeUserNode(ctx context.Context, userID, name string) error {
	_, err := s.runner.Run(ctx, mergeUserCypher, map[string]any{
		"user_id": userID,
		"name":    name,
	})
	return err
}

// MergePostNodeAndRelation upserts the post node and, when the owning user
// node exists, the POSTED edge. linked reports whether the edge exists.
func (s *Store) MergePostNodeAndRelation(ctx context.Context, post *models.Post) (bool, error) {
	hashtags := []string(post.Hashtags)
	if hashtags == nil {
		hashtags = []string{}
	}

	result, err := s.runner.Run(ctx, mergePostCypher, map[string]any{
		"post_id":  post.PostID,
		"user_id":  post.UserID,
		"content":  post.Content,
		"hashtags": hashtags,
	})
	if err != nil {
		return false, err
	}
	if len(result.Records) == 0 {
		return false, nil
	}

	linked, _, err := neo4j.GetRecordValue[int64](result.Records[0], "linked")
	if err != nil {
		return false, fmt.Errorf("read linked count: %w", err)
	}
	return linked > 0, nil
}

// UserPosts returns the posts one POSTED hop from the user node.
func (s *Store) UserPosts(ctx context.Context, userID string) ([]models.GraphPost, error) {
	result, err := s.runner.Run(ctx, userPostsCypher, map[string]any{"user_id": userID})
	if err != nil {
		return nil, err
	}

	posts := make([]models.GraphPost, 0, len(result.Records))
	for _, rec := range result.Records {
		postID, _ := rec.Get("post_id")
		content, _ := rec.Get("content")
		hashtags, _ := rec.Get("hashtags")

		p := models.GraphPost{Hashtags: toStrings(hashtags)}
		p.PostID, _ = postID.(string)
		p.Content, _ = content.(string)
		posts = append(posts, p)
	}
	return posts, nil
}

// Ping runs a trivial statement.
func (s *Store) Ping(ctx context.Context) error {
	_, err := s.runner.Run(ctx, pingCypher, nil)
	return err
}

// Lists come back from the driver as []any.
func toStrings(v any) []string {
	switch list := v.(type) {
	case []string:
		return list
	case []any:
		out := make([]string, 0, len(list))
		for _, item := range list {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	default:
		return []string{}
	}
}
