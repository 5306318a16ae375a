// Package repository provides data access layer implementations for the application.
package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"inkwell/internal/models"
	"inkwell/internal/observability"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// PostRepository defines the interface for post data operations
type PostRepository interface {
	List(ctx context.Context, filter models.PostFilter) ([]*models.Post, error)
	GetByID(ctx context.Context, id uint) (*models.Post, error)
	Create(ctx context.Context, post *models.Post, tagNames []string) (*models.Post, error)
	Update(ctx context.Context, id uint, title, content string) (*models.Post, error)
	Delete(ctx context.Context, id uint) error
	Like(ctx context.Context, id uint) (int, error)
}

// postRepository implements PostRepository
type postRepository struct {
	db *gorm.DB
}

// NewPostRepository creates a new post repository
func NewPostRepository(db *gorm.DB) PostRepository {
	return &postRepository{db: db}
}

func (r *postRepository) withDetails(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Preload("Category").Preload("Tags")
}

// List returns posts matching filter, newest first, with category and tag names filled in.
func (r *postRepository) List(ctx context.Context, filter models.PostFilter) (posts []*models.Post, err error) {
	ctx, span := observability.StartRepositorySpan(ctx, "List", "posts")
	defer func() { observability.EndSpan(span, err) }()

	where, args, err := buildPostFilter(filter)
	if err != nil {
		return nil, fmt.Errorf("build post filter: %w", err)
	}

	q := r.withDetails(ctx)
	if where != "" {
		q = q.Where(where, args...)
	}
	if err := q.Order("posts.created_at DESC").Order("posts.id DESC").Find(&posts).Error; err != nil {
		return nil, err
	}

	for _, p := range posts {
		p.Enrich()
	}
	return posts, nil
}

func (r *postRepository) GetByID(ctx context.Context, id uint) (*models.Post, error) {
	var post models.Post
	if err := r.withDetails(ctx).First(&post, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Post", id)
		}
		return nil, err
	}
	post.Enrich()
	return &post, nil
}

// Create inserts the post and its tag associations in one transaction. Tag names are
// upserted, so existing tags are reused and duplicate names collapse to one association.
func (r *postRepository) Create(ctx context.Context, post *models.Post, tagNames []string) (_ *models.Post, err error) {
	ctx, span := observability.StartRepositorySpan(ctx, "Create", "posts")
	defer func() { observability.EndSpan(span, err) }()

	names := normalizeTagNames(tagNames)

	err = r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := requireRow(tx, &models.Category{}, post.CategoryID, "category_id"); err != nil {
			return err
		}
		if post.UserID != nil {
			if err := requireRow(tx, &models.User{}, *post.UserID, "user_id"); err != nil {
				return err
			}
		}

		if err := tx.Omit(clause.Associations).Create(post).Error; err != nil {
			return err
		}
		if len(names) == 0 {
			return nil
		}

		tags, err := upsertTags(tx, names)
		if err != nil {
			return err
		}

		links := make([]models.PostTag, 0, len(tags))
		for _, tag := range tags {
			links = append(links, models.PostTag{PostID: post.ID, TagID: tag.ID})
		}
		return tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&links).Error
	})
	if err != nil {
		return nil, err
	}

	return r.GetByID(ctx, post.ID)
}

func (r *postRepository) Update(ctx context.Context, id uint, title, content string) (_ *models.Post, err error) {
	ctx, span := observability.StartRepositorySpan(ctx, "Update", "posts")
	defer func() { observability.EndSpan(span, err) }()

	res := r.db.WithContext(ctx).Model(&models.Post{}).Where("id = ?", id).Updates(map[string]interface{}{
		"title":      title,
		"content":    content,
		"updated_at": time.Now(),
	})
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, models.NewNotFoundError("Post", id)
	}
	return r.GetByID(ctx, id)
}

// Delete removes the post's comments, its tag associations and the post itself in one
// transaction. A missing post rolls everything back.
func (r *postRepository) Delete(ctx context.Context, id uint) (err error) {
	ctx, span := observability.StartRepositorySpan(ctx, "Delete", "posts")
	defer func() { observability.EndSpan(span, err) }()

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("post_id = ?", id).Delete(&models.Comment{}).Error; err != nil {
			return err
		}
		if err := tx.Where("post_id = ?", id).Delete(&models.PostTag{}).Error; err != nil {
			return err
		}
		res := tx.Where("id = ?", id).Delete(&models.Post{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return models.NewNotFoundError("Post", id)
		}
		return nil
	})
}

// Like increments the post's like counter and returns the new value.
func (r *postRepository) Like(ctx context.Context, id uint) (_ int, err error) {
	ctx, span := observability.StartRepositorySpan(ctx, "Like", "posts")
	defer func() { observability.EndSpan(span, err) }()

	return incrementCounter(ctx, r.db, &models.Post{}, "Post", "likes", id)
}

// incrementCounter runs a single "col = col + 1" update and reads the value back in the
// same transaction.
func incrementCounter(ctx context.Context, db *gorm.DB, model interface{}, resource, column string, id uint) (int, error) {
	var value int
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(model).Where("id = ?", id).UpdateColumn(column, gorm.Expr(column+" + ?", 1))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return models.NewNotFoundError(resource, id)
		}
		return tx.Model(model).Select(column).Where("id = ?", id).Row().Scan(&value)
	})
	return value, err
}

func requireRow(tx *gorm.DB, model interface{}, id uint, field string) error {
	var count int64
	if err := tx.Model(model).Where("id = ?", id).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return models.NewValidationError(fmt.Sprintf("%s %d does not exist", field, id))
	}
	return nil
}

// upsertTags inserts any missing names and returns the stored rows for all of them.
func upsertTags(tx *gorm.DB, names []string) ([]models.Tag, error) {
	fresh := make([]models.Tag, 0, len(names))
	for _, name := range names {
		fresh = append(fresh, models.Tag{Name: name})
	}
	if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&fresh).Error; err != nil {
		return nil, err
	}

	var stored []models.Tag
	if err := tx.Where("name IN ?", names).Order("name").Find(&stored).Error; err != nil {
		return nil, err
	}
	if len(stored) != len(names) {
		return nil, fmt.Errorf("resolved %d of %d tags", len(stored), len(names))
	}
	return stored, nil
}

// normalizeTagNames trims names, drops blanks and removes duplicates, keeping first-seen order.
func normalizeTagNames(names []string) []string {
	seen := make(map[string]struct{}, len(names))
	out := make([]string, 0, len(names))
	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		out = append(out, name)
	}
	return out
}
