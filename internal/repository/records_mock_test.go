package repository

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func setupMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	gormDB, err := gorm.Open(postgres.New(postgres.Config{
		Conn: db,
	}), &gorm.Config{})
	require.NoError(t, err)

	return gormDB, mock
}

func TestRecordRepository_UpsertUser_IssuesInsertIfAbsent(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewRecordRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO "users" .* ON CONFLICT .*DO NOTHING`).
		WithArgs("U1", "Alice", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	user, err := repo.UpsertUser(context.Background(), "U1", "Alice")
	require.NoError(t, err)
	assert.Equal(t, "Alice", user.Name)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRecordRepository_UpsertUser_PropagatesStoreError(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewRecordRepository(db)
	boom := errors.New("connection reset by peer")

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO "users"`).WillReturnError(boom)
	mock.ExpectRollback()

	user, err := repo.UpsertUser(context.Background(), "U1", "Alice")
	assert.Nil(t, user)
	assert.ErrorIs(t, err, boom)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRecordRepository_ListPostsByUser_PropagatesStoreError(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewRecordRepository(db)
	boom := errors.New("relation \"posts\" is unavailable")

	mock.ExpectQuery(`SELECT \* FROM "posts" WHERE user_id = \$1`).
		WithArgs("U1").
		WillReturnError(boom)

	posts, err := repo.ListPostsByUser(context.Background(), "U1")
	assert.Nil(t, posts)
	assert.ErrorIs(t, err, boom)
	assert.NoError(t, mock.ExpectationsWereMet())
}
