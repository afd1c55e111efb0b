package repository

import (
	"context"
	"testing"
	"time"

	"socialmesh/internal/database"
	"socialmesh/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupSQLite(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	// Every new connection to :memory: is a fresh database.
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, database.Migrate(db))
	return db
}

func TestRecordRepository_UpsertUser_FirstNameWins(t *testing.T) {
	db := setupSQLite(t)
	repo := NewRecordRepository(db)
	ctx := context.Background()

	first, err := repo.UpsertUser(ctx, "U1", "Alice")
	require.NoError(t, err)
	assert.Equal(t, "Alice", first.Name)

	second, err := repo.UpsertUser(ctx, "U1", "Alicia")
	require.NoError(t, err)
	// The return value echoes the input even though nothing was written.
	assert.Equal(t, "Alicia", second.Name)

	stored, err := repo.GetUser(ctx, "U1")
	require.NoError(t, err)
	assert.Equal(t, "Alice", stored.Name)
}

func TestRecordRepository_GetUser_NotFound(t *testing.T) {
	repo := NewRecordRepository(setupSQLite(t))

	_, err := repo.GetUser(context.Background(), "missing")
	require.Error(t, err)
	var appErr *models.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, models.CodeNotFound, appErr.Code)
}

func TestRecordRepository_UpsertPost(t *testing.T) {
	db := setupSQLite(t)
	repo := &recordRepository{db: db, now: func() time.Time {
		return time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	}}
	ctx := context.Background()

	post, err := repo.UpsertPost(ctx, "P1", "U1", "hello #x", []string{"#x", "#y"})
	require.NoError(t, err)
	assert.Equal(t, int64(0), post.Likes)
	assert.Equal(t, time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC), post.CreatedAt)

	// A second upsert with different content does not touch the stored row.
	_, err = repo.UpsertPost(ctx, "P1", "U1", "changed", nil)
	require.NoError(t, err)

	posts, err := repo.ListPostsByUser(ctx, "U1")
	require.NoError(t, err)
	require.Len(t, posts, 1)
	assert.Equal(t, "hello #x", posts[0].Content)
	assert.Equal(t, []string{"#x", "#y"}, []string(posts[0].Hashtags))
	assert.Equal(t, int64(0), posts[0].Likes)
}

func TestRecordRepository_UpsertPost_NilHashtags(t *testing.T) {
	repo := NewRecordRepository(setupSQLite(t))

	post, err := repo.UpsertPost(context.Background(), "P1", "U1", "no tags", nil)
	require.NoError(t, err)
	assert.NotNil(t, post.Hashtags)
	assert.Empty(t, post.Hashtags)
}

func TestRecordRepository_ListPostsByUser(t *testing.T) {
	repo := NewRecordRepository(setupSQLite(t))
	ctx := context.Background()

	for _, p := range []struct{ id, user string }{{"P1", "U1"}, {"P2", "U1"}, {"P3", "U2"}} {
		_, err := repo.UpsertPost(ctx, p.id, p.user, "content", nil)
		require.NoError(t, err)
	}

	posts, err := repo.ListPostsByUser(ctx, "U1")
	require.NoError(t, err)
	ids := make([]string, 0, len(posts))
	for _, p := range posts {
		ids = append(ids, p.PostID)
	}
	assert.ElementsMatch(t, []string{"P1", "P2"}, ids)

	none, err := repo.ListPostsByUser(ctx, "nobody")
	require.NoError(t, err)
	assert.NotNil(t, none)
	assert.Empty(t, none)
}

func TestRecordRepository_IncrementLikes(t *testing.T) {
	repo := NewRecordRepository(setupSQLite(t))
	ctx := context.Background()

	_, err := repo.UpsertPost(ctx, "P1", "U1", "content", nil)
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		found, err := repo.IncrementLikes(ctx, "P1")
		require.NoError(t, err)
		assert.True(t, found)
	}

	posts, err := repo.ListPostsByUser(ctx, "U1")
	require.NoError(t, err)
	require.Len(t, posts, 1)
	assert.Equal(t, int64(3), posts[0].Likes)

	found, err := repo.IncrementLikes(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestRecordRepository_Ping(t *testing.T) {
	repo := NewRecordRepository(setupSQLite(t))
	assert.NoError(t, repo.Ping(context.Background()))
}
