// Package seed generates fake users, posts and likes and pushes them through
// the coordinator so that every store receives them.
package seed

import (
	"context"
	"fmt"
	"strings"

	"socialmesh/internal/middleware"
	"socialmesh/internal/models"
	"socialmesh/internal/service"

	"github.com/brianvoe/gofakeit/v6"
)

// Coordinator is the write surface the seeder needs.
type Coordinator interface {
	CreateUser(ctx context.Context, in service.CreateUserInput) (*service.CreateUserResult, error)
	CreatePost(ctx context.Context, in service.CreatePostInput) (*service.CreatePostResult, error)
	LikePost(ctx context.Context, postID string) (*service.LikePostResult, error)
}

// Options configuration for the seeder
type Options struct {
	NumUsers int
	NumPosts int
	NumLikes int
}

// Report counts what a seeding run did.
type Report struct {
	Users   int
	Posts   int
	Likes   int
	Partial int
}

// Seeder drives fake data through a Coordinator.
type Seeder struct {
	coord Coordinator
	faker *gofakeit.Faker
}

// NewSeeder creates a seeder. The same seed yields the same data.
func NewSeeder(coord Coordinator, seed int64) *Seeder {
	return &Seeder{coord: coord, faker: gofakeit.New(seed)}
}

// UserInput builds a fake user.
func (s *Seeder) UserInput() service.CreateUserInput {
	return service.CreateUserInput{
		UserID: "u_" + strings.ReplaceAll(s.faker.UUID(), "-", "")[:12],
		Name:   s.faker.Name(),
	}
}

// PostInput builds a fake post owned by userID. Every hashtag also appears in
// the content.
func (s *Seeder) PostInput(userID string) service.CreatePostInput {
	n := s.faker.Number(0, 3)
	hashtags := make([]string, 0, n)
	for i := 0; i < n; i++ {
		hashtags = append(hashtags, "#"+strings.ToLower(s.faker.Word()))
	}

	content := s.faker.Sentence(8)
	if len(hashtags) > 0 {
		content += " " + strings.Join(hashtags, " ")
	}

	return service.CreatePostInput{
		PostID:   "p_" + strings.ReplaceAll(s.faker.UUID(), "-", "")[:12],
		UserID:   userID,
		Content:  content,
		Hashtags: hashtags,
	}
}

// Run creates the users first, then posts owned by random users, then likes
// on random posts. A failed commit step aborts the run.
func (s *Seeder) Run(ctx context.Context, opts Options) (*Report, error) {
	report := &Report{}
	track := func(o service.Outcome) {
		if o.Status == service.OutcomePartial {
			report.Partial++
		}
	}

	userIDs := make([]string, 0, opts.NumUsers)
	for i := 0; i < opts.NumUsers; i++ {
		res, err := s.coord.CreateUser(ctx, s.UserInput())
		if err != nil {
			return report, fmt.Errorf("seed user %d: %w", i, err)
		}
		userIDs = append(userIDs, res.User.UserID)
		report.Users++
		track(res.Outcome)
	}
	if len(userIDs) == 0 {
		return report, nil
	}

	postIDs := make([]string, 0, opts.NumPosts)
	for i := 0; i < opts.NumPosts; i++ {
		owner := userIDs[s.faker.Number(0, len(userIDs)-1)]
		res, err := s.coord.CreatePost(ctx, s.PostInput(owner))
		if err != nil {
			return report, fmt.Errorf("seed post %d: %w", i, err)
		}
		postIDs = append(postIDs, res.Post.PostID)
		report.Posts++
		track(res.Outcome)
	}
	if len(postIDs) == 0 {
		return report, nil
	}

	for i := 0; i < opts.NumLikes; i++ {
		res, err := s.coord.LikePost(ctx, postIDs[s.faker.Number(0, len(postIDs)-1)])
		if err != nil {
			return report, fmt.Errorf("seed like %d: %w", i, err)
		}
		report.Likes++
		track(res.Outcome)
	}

	middleware.Logger.InfoContext(ctx, "seeding complete",
		"users", report.Users, "posts", report.Posts, "likes", report.Likes, "partial", report.Partial)
	return report, nil
}

// Reader is the read surface used by the demo flow.
type Reader interface {
	Coordinator
	ReadTrending(ctx context.Context) ([]models.TrendingEntry, error)
	PostEvents(ctx context.Context, postID string, limit int) ([]models.PostEvent, error)
	ReadUserPosts(ctx context.Context, userID string) (*service.UserPosts, error)
}

// DemoReport is what the demo flow reads back after writing.
type DemoReport struct {
	Trending  []models.TrendingEntry `json:"trending"`
	Events    []models.PostEvent     `json:"events"`
	UserPosts *service.UserPosts     `json:"user_posts"`
}

// DemoFlow creates user U1 and post P1, likes P1 twice and reads back
// trending, the event history and the user's posts.
func DemoFlow(ctx context.Context, r Reader) (*DemoReport, error) {
	if _, err := r.CreateUser(ctx, service.CreateUserInput{UserID: "U1", Name: "Alice"}); err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	if _, err := r.CreatePost(ctx, service.CreatePostInput{
		PostID:   "P1",
		UserID:   "U1",
		Content:  "Hello world! #firstpost",
		Hashtags: []string{"#firstpost"},
	}); err != nil {
		return nil, fmt.Errorf("create post: %w", err)
	}
	for i := 0; i < 2; i++ {
		if _, err := r.LikePost(ctx, "P1"); err != nil {
			return nil, fmt.Errorf("like post: %w", err)
		}
	}

	report := &DemoReport{}
	var err error
	if report.Trending, err = r.ReadTrending(ctx); err != nil {
		return nil, fmt.Errorf("read trending: %w", err)
	}
	if report.Events, err = r.PostEvents(ctx, "P1", service.MaxEvents); err != nil {
		return nil, fmt.Errorf("read events: %w", err)
	}
	if report.UserPosts, err = r.ReadUserPosts(ctx, "U1"); err != nil {
		return nil, fmt.Errorf("read user posts: %w", err)
	}
	return report, nil
}
