package repository

import (
	"context"
	"errors"
	"path/filepath"
	"regexp"
	"sync"
	"testing"

	"inkwell/internal/database"
	"inkwell/internal/models"
	"inkwell/internal/observability"
	"inkwell/internal/testutil"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"gorm.io/gorm"
)

func createPost(t *testing.T, repo PostRepository, title, content string, categoryID uint, tags ...string) *models.Post {
	t.Helper()
	post, err := repo.Create(context.Background(), &models.Post{
		Title:      title,
		Content:    content,
		CategoryID: categoryID,
	}, tags)
	require.NoError(t, err)
	return post
}

func TestPostRepository_CreateDeduplicatesTags(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	repo := NewPostRepository(db)
	category := testutil.CreateCategory(t, db, "Tech")

	post := createPost(t, repo, "Tags", "dedup", category.ID, "go", " go", "db", "go", "")

	assert.Equal(t, "Tech", post.CategoryName)
	assert.Equal(t, []string{"db", "go"}, post.TagNames)
	assert.Equal(t, int64(2), testutil.CountRows(t, db, "post_tags"))
	assert.Equal(t, int64(2), testutil.CountRows(t, db, "tags"))

	second := createPost(t, repo, "Reuse", "existing tags", category.ID, "go", "new")
	assert.Equal(t, []string{"go", "new"}, second.TagNames)
	assert.Equal(t, int64(3), testutil.CountRows(t, db, "tags"))
}

func TestPostRepository_CreateWithoutTags(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	repo := NewPostRepository(db)
	category := testutil.CreateCategory(t, db, "Tech")

	post := createPost(t, repo, "Bare", "no tags", category.ID)
	assert.Empty(t, post.TagNames)
	assert.NotNil(t, post.TagNames)
	assert.Equal(t, 0, post.Likes)
}

func TestPostRepository_CreateRequiresExistingCategory(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	repo := NewPostRepository(db)

	_, err := repo.Create(context.Background(), &models.Post{Title: "t", Content: "c", CategoryID: 42}, []string{"go"})
	require.Error(t, err)
	assert.Equal(t, models.CodeValidation, models.ErrorCode(err))
	assert.Equal(t, int64(0), testutil.CountRows(t, db, "posts"))
	assert.Equal(t, int64(0), testutil.CountRows(t, db, "tags"))
}

func TestPostRepository_CreateRequiresExistingUser(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	repo := NewPostRepository(db)
	category := testutil.CreateCategory(t, db, "Tech")
	missing := uint(7)

	_, err := repo.Create(context.Background(), &models.Post{Title: "t", Content: "c", CategoryID: category.ID, UserID: &missing}, nil)
	assert.Equal(t, models.CodeValidation, models.ErrorCode(err))
	assert.Equal(t, int64(0), testutil.CountRows(t, db, "posts"))
}

func TestPostRepository_CreateRollsBackOnTagFailure(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewPostRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT count(*) FROM "categories"`)).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO "posts"`)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(10))
	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO "tags"`)).
		WillReturnError(errors.New("tag insert failed"))
	mock.ExpectRollback()

	_, err := repo.Create(context.Background(), &models.Post{Title: "t", Content: "c", CategoryID: 1}, []string{"go"})
	assert.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostRepository_List(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	repo := NewPostRepository(db)
	tech := testutil.CreateCategory(t, db, "Tech")
	food := testutil.CreateCategory(t, db, "Food")

	learning := createPost(t, repo, "Learning Go", "channels and goroutines", tech.ID, "go", "backend")
	pasta := createPost(t, repo, "Pasta night", "Cooking with friends", food.ID, "cooking")
	tools := createPost(t, repo, "Go kitchen tools", "gadgets", food.ID, "go")
	ecole := createPost(t, repo, "École d'été", "Über alles", tech.ID)

	ids := func(posts []*models.Post) []uint {
		out := make([]uint, 0, len(posts))
		for _, p := range posts {
			out = append(out, p.ID)
		}
		return out
	}

	tests := []struct {
		name   string
		filter models.PostFilter
		want   []uint
	}{
		{"no filter returns newest first", models.PostFilter{}, []uint{ecole.ID, tools.ID, pasta.ID, learning.ID}},
		{"text matches title or content", models.PostFilter{Text: "go"}, []uint{tools.ID, learning.ID}},
		{"text is case-insensitive", models.PostFilter{Text: "PASTA"}, []uint{pasta.ID}},
		{"text matches content", models.PostFilter{Text: "friends"}, []uint{pasta.ID}},
		{"non-ascii title lower-case", models.PostFilter{Text: "école"}, []uint{ecole.ID}},
		{"non-ascii title upper-case", models.PostFilter{Text: "ÉCOLE"}, []uint{ecole.ID}},
		{"non-ascii content lower-case", models.PostFilter{Text: "über"}, []uint{ecole.ID}},
		{"non-ascii content upper-case", models.PostFilter{Text: "ÜBER"}, []uint{ecole.ID}},
		{"like wildcards are literal", models.PostFilter{Text: "100%"}, []uint{}},
		{"category is exact", models.PostFilter{CategoryName: "Food"}, []uint{tools.ID, pasta.ID}},
		{"tag is exact", models.PostFilter{TagName: "go"}, []uint{tools.ID, learning.ID}},
		{"text and category intersect", models.PostFilter{Text: "go", CategoryName: "Food"}, []uint{tools.ID}},
		{"category and tag intersect", models.PostFilter{CategoryName: "Food", TagName: "cooking"}, []uint{pasta.ID}},
		{"all three intersect", models.PostFilter{Text: "learning", CategoryName: "Tech", TagName: "backend"}, []uint{learning.ID}},
		{"unknown category", models.PostFilter{CategoryName: "Nope"}, []uint{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			posts, err := repo.List(context.Background(), tt.filter)
			require.NoError(t, err)
			assert.Equal(t, tt.want, ids(posts))
		})
	}

	posts, err := repo.List(context.Background(), models.PostFilter{TagName: "backend"})
	require.NoError(t, err)
	require.Len(t, posts, 1)
	assert.Equal(t, "Tech", posts[0].CategoryName)
	assert.Equal(t, []string{"backend", "go"}, posts[0].TagNames)
}

func TestPostRepository_GetByIDNotFound(t *testing.T) {
	repo := NewPostRepository(testutil.NewSQLiteDB(t))

	_, err := repo.GetByID(context.Background(), 404)
	assert.Equal(t, models.CodeNotFound, models.ErrorCode(err))
}

func TestPostRepository_Update(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	repo := NewPostRepository(db)
	category := testutil.CreateCategory(t, db, "Tech")
	post := createPost(t, repo, "Old", "old body", category.ID, "go")

	updated, err := repo.Update(context.Background(), post.ID, "New", "new body")
	require.NoError(t, err)
	assert.Equal(t, "New", updated.Title)
	assert.Equal(t, "new body", updated.Content)
	assert.Equal(t, []string{"go"}, updated.TagNames)

	_, err = repo.Update(context.Background(), 999, "x", "y")
	assert.Equal(t, models.CodeNotFound, models.ErrorCode(err))
}

func TestPostRepository_DeleteCascades(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	repo := NewPostRepository(db)
	comments := NewCommentRepository(db)
	category := testutil.CreateCategory(t, db, "Tech")

	post := createPost(t, repo, "Doomed", "body", category.ID, "go", "db")
	keep := createPost(t, repo, "Keep", "body", category.ID, "go")
	for _, content := range []string{"first", "second"} {
		require.NoError(t, comments.Create(context.Background(), &models.Comment{PostID: post.ID, Content: content}))
	}
	require.NoError(t, comments.Create(context.Background(), &models.Comment{PostID: keep.ID, Content: "stays"}))

	require.NoError(t, repo.Delete(context.Background(), post.ID))

	_, err := repo.GetByID(context.Background(), post.ID)
	assert.Equal(t, models.CodeNotFound, models.ErrorCode(err))
	assert.Equal(t, int64(1), testutil.CountRows(t, db, "comments"))
	assert.Equal(t, int64(1), testutil.CountRows(t, db, "post_tags"))
	assert.Equal(t, int64(2), testutil.CountRows(t, db, "tags"))
	assert.Equal(t, int64(1), testutil.CountRows(t, db, "posts"))
}

func TestPostRepository_DeleteMissingLeavesRows(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	repo := NewPostRepository(db)
	category := testutil.CreateCategory(t, db, "Tech")
	createPost(t, repo, "One", "body", category.ID)
	createPost(t, repo, "Two", "body", category.ID)

	err := repo.Delete(context.Background(), 999)
	assert.Equal(t, models.CodeNotFound, models.ErrorCode(err))
	assert.Equal(t, int64(2), testutil.CountRows(t, db, "posts"))
}

func TestPostRepository_DeleteRollsBackWhenPostMissing(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewPostRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM "comments" WHERE post_id = $1`)).
		WithArgs(5).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM "post_tags" WHERE post_id = $1`)).
		WithArgs(5).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM "posts" WHERE id = $1`)).
		WithArgs(5).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	err := repo.Delete(context.Background(), 5)
	assert.Equal(t, models.CodeNotFound, models.ErrorCode(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostRepository_ConcurrentLikes(t *testing.T) {
	// A file database gets a real connection pool, so the likes race on separate connections.
	db, err := database.OpenSQLite(filepath.Join(t.TempDir(), "likes.db"))
	require.NoError(t, err)
	require.NoError(t, database.AutoMigrate(db))
	t.Cleanup(func() { _ = database.Close(db) })

	repo := NewPostRepository(db)
	category := testutil.CreateCategory(t, db, "Tech")
	post := createPost(t, repo, "Popular", "body", category.ID)

	const likes = 50
	var wg sync.WaitGroup
	errs := make(chan error, likes)
	for i := 0; i < likes; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := repo.Like(context.Background(), post.ID); err != nil {
				errs <- err
			}
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	got, err := repo.GetByID(context.Background(), post.ID)
	require.NoError(t, err)
	assert.Equal(t, likes, got.Likes)

	count, err := repo.Like(context.Background(), post.ID)
	require.NoError(t, err)
	assert.Equal(t, likes+1, count)
}

func TestPostRepository_LikeMissing(t *testing.T) {
	repo := NewPostRepository(testutil.NewSQLiteDB(t))

	_, err := repo.Like(context.Background(), 12)
	assert.Equal(t, models.CodeNotFound, models.ErrorCode(err))
	assert.False(t, errors.Is(err, gorm.ErrRecordNotFound))
}

func TestBuildPostFilter(t *testing.T) {
	sql, args, err := buildPostFilter(models.PostFilter{})
	require.NoError(t, err)
	assert.Empty(t, sql)
	assert.Empty(t, args)

	sql, args, err = buildPostFilter(models.PostFilter{Text: "50%_off", CategoryName: "Deals", TagName: "sale"})
	require.NoError(t, err)
	assert.Contains(t, sql, "LOWER(posts.title) LIKE ?")
	assert.Contains(t, sql, " AND ")
	assert.Equal(t, []interface{}{`%50\%\_off%`, `%50\%\_off%`, "Deals", "sale"}, args)
}

func TestPostRepository_WritesAreTraced(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	prev := observability.Tracer
	observability.Tracer = tp.Tracer("test")
	t.Cleanup(func() {
		observability.Tracer = prev
		_ = tp.Shutdown(context.Background())
	})

	db := testutil.NewSQLiteDB(t)
	repo := NewPostRepository(db)
	category := testutil.CreateCategory(t, db, "Tech")
	post := createPost(t, repo, "Traced", "body", category.ID)

	_, err := repo.Update(context.Background(), post.ID, "Traced again", "body")
	require.NoError(t, err)
	_, err = repo.Like(context.Background(), post.ID)
	require.NoError(t, err)
	_, err = repo.Like(context.Background(), 999)
	require.Error(t, err)
	require.NoError(t, repo.Delete(context.Background(), post.ID))

	var names []string
	failed := map[string]bool{}
	for _, span := range recorder.Ended() {
		names = append(names, span.Name())
		if span.Status().Code == codes.Error {
			failed[span.Name()] = true
		}
	}
	assert.Equal(t, []string{
		"repository.Create",
		"repository.Update",
		"repository.Like",
		"repository.Like",
		"repository.Delete",
	}, names)
	assert.True(t, failed["repository.Like"])
	assert.False(t, failed["repository.Update"])
}
