package database

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rpupo63/portfolio-backend/errs"
	"github.com/rpupo63/portfolio-backend/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestRepo(t *testing.T) *ProjectRepo {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, models.Migrate(db))
	return New(db).ProjectRepo()
}

func TestProjectRepo_InsertAndSelectNewestFirst(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	older, err := repo.Insert(ctx, &models.ProjectRow{Title: "older", Description: "d", CreatedAt: base})
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, older.ID)

	_, err = repo.Insert(ctx, &models.ProjectRow{
		Title:       "newer",
		Description: "d",
		Tags:        datatypes.JSONSlice[string]{"Go", "SQL"},
		IsFeatured:  true,
		CreatedAt:   base.Add(time.Hour),
	})
	require.NoError(t, err)

	rows, err := repo.Select(ctx)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "newer", rows[0].Title)
	assert.Equal(t, datatypes.JSONSlice[string]{"Go", "SQL"}, rows[0].Tags)
	assert.True(t, rows[0].IsFeatured)
	assert.Equal(t, older.ID, rows[1].ID)
}

func TestProjectRepo_InsertSetsCreatedAt(t *testing.T) {
	repo := newTestRepo(t)
	row, err := repo.Insert(context.Background(), &models.ProjectRow{Title: "t", Description: "d"})
	require.NoError(t, err)
	assert.False(t, row.CreatedAt.IsZero())
}

func TestProjectRepo_Update(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	row, err := repo.Insert(ctx, &models.ProjectRow{Title: "t", Description: "d"})
	require.NoError(t, err)

	patch, err := models.ColumnPatch(map[string]any{
		models.FieldTitle:      "renamed",
		models.FieldTags:       []string{"Go"},
		models.FieldIsFeatured: true,
	})
	require.NoError(t, err)
	require.NoError(t, repo.Update(ctx, row.ID.String(), patch))

	rows, err := repo.Select(ctx)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "renamed", rows[0].Title)
	assert.Equal(t, datatypes.JSONSlice[string]{"Go"}, rows[0].Tags)
	assert.True(t, rows[0].IsFeatured)
}

func TestProjectRepo_UpdateErrors(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	err := repo.Update(ctx, "not-a-uuid", map[string]any{"title": "x"})
	assert.True(t, errs.IsBadRequest(err))

	err = repo.Update(ctx, uuid.NewString(), map[string]any{"title": "x"})
	assert.True(t, errs.IsNotFound(err))
}

func TestProjectRepo_Delete(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	row, err := repo.Insert(ctx, &models.ProjectRow{Title: "t", Description: "d"})
	require.NoError(t, err)

	require.NoError(t, repo.Delete(ctx, row.ID.String()))
	var count int64
	require.NoError(t, repo.GetDB().Model(&models.ProjectRow{}).Count(&count).Error)
	assert.Zero(t, count)

	assert.True(t, errs.IsNotFound(repo.Delete(ctx, row.ID.String())))
	assert.True(t, errs.IsBadRequest(repo.Delete(ctx, "nope")))
}

func TestOpen_RequiresHost(t *testing.T) {
	_, err := Open(ConnConfig{})
	assert.True(t, errs.IsConfigMissing(err))
}

func TestOpen_UnreachableHostIsConnectionError(t *testing.T) {
	_, err := Open(ConnConfig{Host: "127.0.0.1", Port: "1", User: "u", Name: "db"})
	require.Error(t, err)
	assert.True(t, errs.IsDatabaseConnectionError(err))
}
