package repository

import (
	"context"
	"testing"

	"inkwell/internal/models"
	"inkwell/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCategoryRepository(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	repo := NewCategoryRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, &models.Category{Name: "Travel"}))
	require.NoError(t, repo.Create(ctx, &models.Category{Name: "Art"}))

	err := repo.Create(ctx, &models.Category{Name: "Art"})
	assert.Equal(t, models.CodeConflict, models.ErrorCode(err))

	categories, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, categories, 2)
	assert.Equal(t, "Art", categories[0].Name)
	assert.Equal(t, "Travel", categories[1].Name)

	got, err := repo.GetByID(ctx, categories[1].ID)
	require.NoError(t, err)
	assert.Equal(t, "Travel", got.Name)

	_, err = repo.GetByID(ctx, 999)
	assert.Equal(t, models.CodeNotFound, models.ErrorCode(err))
}

func TestTagRepository_UpsertIsIdempotent(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	repo := NewTagRepository(db)
	ctx := context.Background()

	first, err := repo.Upsert(ctx, "go")
	require.NoError(t, err)
	again, err := repo.Upsert(ctx, "go")
	require.NoError(t, err)
	assert.Equal(t, first.ID, again.ID)

	_, err = repo.Upsert(ctx, "api")
	require.NoError(t, err)

	tags, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, tags, 2)
	assert.Equal(t, "api", tags[0].Name)
}
