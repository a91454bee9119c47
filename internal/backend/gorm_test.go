package backend

import (
	"context"
	"testing"

	"focusgram/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func setupMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	gormDB, err := gorm.Open(postgres.New(postgres.Config{
		Conn: db,
	}), &gorm.Config{SkipDefaultTransaction: true})
	require.NoError(t, err)

	return gormDB, mock
}

func TestGormBackend_FetchPosts(t *testing.T) {
	db, mock := setupMockDB(t)
	b := NewGormBackend(db)

	rows := sqlmock.NewRows([]string{"id", "author_id", "caption", "likes"}).
		AddRow("p2", "u1", "second", 3).
		AddRow("p1", "u1", "first", 0)
	mock.ExpectQuery(`SELECT \* FROM "posts" ORDER BY created_at DESC`).
		WillReturnRows(rows)

	posts, err := b.FetchPosts(context.Background())
	require.NoError(t, err)
	require.Len(t, posts, 2)
	assert.Equal(t, "p2", posts[0].ID)
	assert.Equal(t, "p1", posts[1].ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormBackend_GetUserByUsernameMissing(t *testing.T) {
	db, mock := setupMockDB(t)
	b := NewGormBackend(db)

	mock.ExpectQuery(`SELECT \* FROM "users" WHERE username = \$1`).
		WithArgs("ghost", 1).
		WillReturnError(gorm.ErrRecordNotFound)

	user, err := b.GetUserByUsername(context.Background(), "ghost")
	require.NoError(t, err)
	assert.Nil(t, user)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormBackend_AdjustLikes(t *testing.T) {
	db, mock := setupMockDB(t)
	b := NewGormBackend(db)
	ctx := context.Background()

	mock.ExpectExec(`UPDATE "posts" SET "likes"=likes \+ \$1`).
		WithArgs(1, sqlmock.AnyArg(), "p1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, b.AdjustLikes(ctx, "p1", 1))

	mock.ExpectExec(`UPDATE "posts" SET "likes"=GREATEST\(likes - \$1, 0\)`).
		WithArgs(1, sqlmock.AnyArg(), "p1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, b.AdjustLikes(ctx, "p1", -1))

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormBackend_ErrorsAreBackendUnavailable(t *testing.T) {
	db, mock := setupMockDB(t)
	b := NewGormBackend(db)

	mock.ExpectQuery(`SELECT \* FROM "users"`).
		WillReturnError(assert.AnError)

	_, err := b.FetchUsers(context.Background())
	require.Error(t, err)
	assert.True(t, models.HasCode(err, models.CodeBackendUnavailable))
}
