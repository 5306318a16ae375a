package repository

import (
	"context"

	"inkwell/internal/database"
	"inkwell/internal/models"

	"gorm.io/gorm"
)

// CommentRepository defines the interface for comment and reaction operations
type CommentRepository interface {
	ListByPost(ctx context.Context, postID uint) ([]*models.Comment, error)
	Create(ctx context.Context, comment *models.Comment) error
	Delete(ctx context.Context, id uint) error
	Like(ctx context.Context, id uint) (int, error)
	Dislike(ctx context.Context, id uint) (int, error)
}

type commentRepository struct {
	db *gorm.DB
}

// NewCommentRepository creates a new comment repository
func NewCommentRepository(db *gorm.DB) CommentRepository {
	return &commentRepository{db: db}
}

func (r *commentRepository) ListByPost(ctx context.Context, postID uint) ([]*models.Comment, error) {
	comments := []*models.Comment{}
	err := r.db.WithContext(ctx).
		Where("post_id = ?", postID).
		Order("created_at DESC").
		Order("id DESC").
		Find(&comments).Error
	return comments, err
}

// Create inserts the comment. A post_id without a matching post is reported as not found.
func (r *commentRepository) Create(ctx context.Context, comment *models.Comment) error {
	err := r.db.WithContext(ctx).Omit("Post", "User").Create(comment).Error
	if database.IsForeignKeyViolation(err) {
		return models.NewNotFoundError("Post", comment.PostID)
	}
	return err
}

func (r *commentRepository) Delete(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Comment{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("Comment", id)
	}
	return nil
}

func (r *commentRepository) Like(ctx context.Context, id uint) (int, error) {
	return incrementCounter(ctx, r.db, &models.Comment{}, "Comment", "likes", id)
}

func (r *commentRepository) Dislike(ctx context.Context, id uint) (int, error) {
	return incrementCounter(ctx, r.db, &models.Comment{}, "Comment", "dislikes", id)
}
