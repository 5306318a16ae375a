package service

import (
	"context"
	"testing"

	"inkwell/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCommentService_CreateComment(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("empty content", func(t *testing.T) {
		t.Parallel()
		svc := NewCommentService(noopCommentRepo(), noopPostRepo(), noopUserRepo())
		_, err := svc.CreateComment(ctx, CreateCommentInput{PostID: 1, Content: "  "})
		assertValidationError(t, err)
	})

	t.Run("missing post", func(t *testing.T) {
		t.Parallel()
		posts := noopPostRepo()
		posts.getByIDFn = func(_ context.Context, id uint) (*models.Post, error) {
			return nil, models.NewNotFoundError("Post", id)
		}
		svc := NewCommentService(noopCommentRepo(), posts, noopUserRepo())
		_, err := svc.CreateComment(ctx, CreateCommentInput{PostID: 9, Content: "hi"})
		assertAppError(t, err, models.CodeNotFound)
	})

	t.Run("unknown user", func(t *testing.T) {
		t.Parallel()
		users := noopUserRepo()
		users.getByIDFn = func(_ context.Context, id uint) (*models.User, error) {
			return nil, models.NewNotFoundError("User", id)
		}
		svc := NewCommentService(noopCommentRepo(), noopPostRepo(), users)
		userID := uint(3)
		_, err := svc.CreateComment(ctx, CreateCommentInput{PostID: 1, UserID: &userID, Content: "hi"})
		assertValidationError(t, err)
	})

	t.Run("success", func(t *testing.T) {
		t.Parallel()
		svc := NewCommentService(noopCommentRepo(), noopPostRepo(), noopUserRepo())
		userID := uint(3)
		comment, err := svc.CreateComment(ctx, CreateCommentInput{PostID: 1, UserID: &userID, Content: " hi "})
		require.NoError(t, err)
		assert.Equal(t, uint(1), comment.ID)
		assert.Equal(t, "hi", comment.Content)
		assert.Equal(t, uint(3), *comment.UserID)
	})
}

func TestCommentService_Reactions(t *testing.T) {
	t.Parallel()

	comments := noopCommentRepo()
	comments.likeFn = func(context.Context, uint) (int, error) { return 3, nil }
	comments.dislikeFn = func(_ context.Context, id uint) (int, error) {
		return 0, models.NewNotFoundError("Comment", id)
	}
	svc := NewCommentService(comments, noopPostRepo(), noopUserRepo())

	likes, err := svc.LikeComment(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, 3, likes)

	_, err = svc.DislikeComment(context.Background(), 2)
	assertAppError(t, err, models.CodeNotFound)

	list, err := svc.ListComments(context.Background(), 1)
	require.NoError(t, err)
	assert.Empty(t, list)

	assert.NoError(t, svc.DeleteComment(context.Background(), 1))
}
