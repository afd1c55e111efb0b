package seed

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"socialmesh/internal/cache"
	"socialmesh/internal/database"
	"socialmesh/internal/models"
	"socialmesh/internal/repository"
	"socialmesh/internal/service"
	"socialmesh/internal/testutil"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// coordStub records calls and fails the configured operation.
type coordStub struct {
	users   []service.CreateUserInput
	posts   []service.CreatePostInput
	likes   []string
	failOn  string
	partial bool
}

func (c *coordStub) outcome() service.Outcome {
	if c.partial {
		return service.Outcome{Status: service.OutcomePartial}
	}
	return service.Outcome{Status: service.OutcomeCompleted}
}

func (c *coordStub) CreateUser(_ context.Context, in service.CreateUserInput) (*service.CreateUserResult, error) {
	if c.failOn == "user" {
		return nil, errors.New("record store down")
	}
	c.users = append(c.users, in)
	return &service.CreateUserResult{User: &models.User{UserID: in.UserID, Name: in.Name}, Outcome: c.outcome()}, nil
}

func (c *coordStub) CreatePost(_ context.Context, in service.CreatePostInput) (*service.CreatePostResult, error) {
	if c.failOn == "post" {
		return nil, errors.New("record store down")
	}
	c.posts = append(c.posts, in)
	return &service.CreatePostResult{Post: &models.Post{PostID: in.PostID, UserID: in.UserID}, Outcome: c.outcome()}, nil
}

func (c *coordStub) LikePost(_ context.Context, postID string) (*service.LikePostResult, error) {
	c.likes = append(c.likes, postID)
	return &service.LikePostResult{PostID: postID, Outcome: c.outcome()}, nil
}

func TestSeeder_Deterministic(t *testing.T) {
	a := NewSeeder(&coordStub{}, 42)
	b := NewSeeder(&coordStub{}, 42)

	assert.Equal(t, a.UserInput(), b.UserInput())
	assert.Equal(t, a.PostInput("u1"), b.PostInput("u1"))
}

func TestSeeder_PostInput(t *testing.T) {
	s := NewSeeder(&coordStub{}, 7)
	for i := 0; i < 20; i++ {
		in := s.PostInput("u1")
		assert.True(t, strings.HasPrefix(in.PostID, "p_"))
		assert.Equal(t, "u1", in.UserID)
		assert.NotEmpty(t, in.Content)
		assert.LessOrEqual(t, len(in.Hashtags), 3)
		for _, tag := range in.Hashtags {
			assert.True(t, strings.HasPrefix(tag, "#"))
			assert.Contains(t, in.Content, tag)
		}
	}
}

func TestSeeder_Run(t *testing.T) {
	coord := &coordStub{}
	s := NewSeeder(coord, 1)

	report, err := s.Run(context.Background(), Options{NumUsers: 3, NumPosts: 5, NumLikes: 7})
	require.NoError(t, err)
	assert.Equal(t, &Report{Users: 3, Posts: 5, Likes: 7}, report)

	owners := map[string]bool{}
	for _, u := range coord.users {
		owners[u.UserID] = true
	}
	for _, p := range coord.posts {
		assert.True(t, owners[p.UserID], "post owned by unknown user %s", p.UserID)
	}
	posted := map[string]bool{}
	for _, p := range coord.posts {
		posted[p.PostID] = true
	}
	for _, id := range coord.likes {
		assert.True(t, posted[id])
	}
}

func TestSeeder_RunCountsPartial(t *testing.T) {
	s := NewSeeder(&coordStub{partial: true}, 1)

	report, err := s.Run(context.Background(), Options{NumUsers: 1, NumPosts: 1, NumLikes: 1})
	require.NoError(t, err)
	assert.Equal(t, 3, report.Partial)
}

func TestSeeder_RunStopsOnCommitFailure(t *testing.T) {
	coord := &coordStub{failOn: "post"}
	s := NewSeeder(coord, 1)

	report, err := s.Run(context.Background(), Options{NumUsers: 2, NumPosts: 2, NumLikes: 2})
	require.Error(t, err)
	assert.Equal(t, 2, report.Users)
	assert.Zero(t, report.Posts)
	assert.Empty(t, coord.likes)
}

func TestSeeder_RunWithoutUsers(t *testing.T) {
	coord := &coordStub{}
	report, err := NewSeeder(coord, 1).Run(context.Background(), Options{NumPosts: 5, NumLikes: 5})
	require.NoError(t, err)
	assert.Equal(t, &Report{}, report)
	assert.Empty(t, coord.posts)
}

func newCoordinator(t *testing.T) *service.Coordinator {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, database.Migrate(db))

	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)
	client := cache.NewClient(mr.Addr(), "", 0)
	t.Cleanup(func() { _ = client.Close() })

	return service.NewCoordinator(
		repository.NewRecordRepository(db),
		cache.NewStore(client, time.Hour),
		testutil.NewEventLogStub(),
		testutil.NewGraphStub(),
		time.Second,
	)
}

func TestDemoFlow(t *testing.T) {
	report, err := DemoFlow(context.Background(), newCoordinator(t))
	require.NoError(t, err)

	require.NotEmpty(t, report.Trending)
	assert.Equal(t, models.TrendingEntry{PostID: "P1", TrendingScore: 2}, report.Trending[0])

	require.Len(t, report.Events, 3)
	assert.Equal(t, models.EventTypeLike, report.Events[0].EventType)
	assert.Equal(t, models.EventTypeLike, report.Events[1].EventType)
	assert.Equal(t, models.EventTypeCreate, report.Events[2].EventType)

	require.Len(t, report.UserPosts.MongoPosts, 1)
	require.Len(t, report.UserPosts.GraphPosts, 1)
	assert.Equal(t, "P1", report.UserPosts.GraphPosts[0].PostID)
	assert.Equal(t, int64(2), report.UserPosts.MongoPosts[0].Likes)
}

func TestSeeder_RunThroughCoordinator(t *testing.T) {
	coord := newCoordinator(t)
	report, err := NewSeeder(coord, 99).Run(context.Background(), Options{NumUsers: 2, NumPosts: 4, NumLikes: 6})
	require.NoError(t, err)
	assert.Zero(t, report.Partial)

	trending, err := coord.ReadTrending(context.Background())
	require.NoError(t, err)
	var total float64
	for _, e := range trending {
		total += e.TrendingScore
	}
	assert.Equal(t, float64(6), total)
}
