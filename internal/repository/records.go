// Package repository implements the canonical record store for users and posts.
package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"socialmesh/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// RecordRepository is the authoritative store for User and Post records.
//
// Upserts are insert-if-absent: an existing row is never modified, and the
// returned value is always built from the arguments, not read back. Calling
// UpsertUser twice with different names keeps the first name in storage while
// returning the second to the caller.
type RecordRepository interface {
	UpsertUser(ctx context.Context, userID, name string) (*models.User, error)
	UpsertPost(ctx context.Context, postID, userID, content string, hashtags []string) (*models.Post, error)
	ListPostsByUser(ctx context.Context, userID string) ([]models.Post, error)
	GetUser(ctx context.Context, userID string) (*models.User, error)
	// IncrementLikes bumps the canonical like counter. found is false when
	// no post with postID exists.
	IncrementLikes(ctx context.Context, postID string) (found bool, err error)
	Ping(ctx context.Context) error
}

type recordRepository struct {
	db  *gorm.DB
	now func() time.Time
}

// NewRecordRepository returns a RecordRepository backed by db.
func NewRecordRepository(db *gorm.DB) RecordRepository {
	return &recordRepository{
		db:  db,
		now: func() time.Time { return time.Now().UTC() },
	}
}

func (r *recordRepository) UpsertUser(ctx context.Context, userID, name string) (*models.User, error) {
	user := models.User{UserID: userID, Name: name, JoinedAt: r.now()}

	row := user
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "user_id"}}, DoNothing: true}).
		Create(&row).Error
	if err != nil {
		return nil, fmt.Errorf("upsert user %s: %w", userID, err)
	}
	return &user, nil
}

func (r *recordRepository) UpsertPost(ctx context.Context, postID, userID, content string, hashtags []string) (*models.Post, error) {
	if hashtags == nil {
		hashtags = []string{}
	}
	post := models.Post{
		PostID:    postID,
		UserID:    userID,
		Content:   content,
		Hashtags:  hashtags,
		CreatedAt: r.now(),
		Likes:     0,
	}

	row := post
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "post_id"}}, DoNothing: true}).
		Create(&row).Error
	if err != nil {
		return nil, fmt.Errorf("upsert post %s: %w", postID, err)
	}
	return &post, nil
}

func (r *recordRepository) ListPostsByUser(ctx context.Context, userID string) ([]models.Post, error) {
	posts := []models.Post{}
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).Find(&posts).Error; err != nil {
		return nil, fmt.Errorf("list posts for user %s: %w", userID, err)
	}
	return posts, nil
}

func (r *recordRepository) GetUser(ctx context.Context, userID string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("User", userID)
		}
		return nil, fmt.Errorf("get user %s: %w", userID, err)
	}
	return &user, nil
}

func (r *recordRepository) IncrementLikes(ctx context.Context, postID string) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Post{}).
		Where("post_id = ?", postID).
		UpdateColumn("likes", gorm.Expr("likes + ?", 1))
	if res.Error != nil {
		return false, fmt.Errorf("increment likes for post %s: %w", postID, res.Error)
	}
	return res.RowsAffected > 0, nil
}

func (r *recordRepository) Ping(ctx context.Context) error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}
