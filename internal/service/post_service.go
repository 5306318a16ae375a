package service

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"

	"inkwell/internal/media"
	"inkwell/internal/middleware"
	"inkwell/internal/models"
	"inkwell/internal/repository"
)

type PostService struct {
	postRepo repository.PostRepository
	store    media.Store
}

type CreatePostInput struct {
	Title      string
	Content    string
	CategoryID uint
	UserID     *uint
	Tags       []string
	Image      *media.Upload
}

type UpdatePostInput struct {
	PostID  uint
	Title   string
	Content string
}

func NewPostService(postRepo repository.PostRepository, store media.Store) *PostService {
	return &PostService{postRepo: postRepo, store: store}
}

func (s *PostService) ListPosts(ctx context.Context, filter models.PostFilter) ([]*models.Post, error) {
	return s.postRepo.List(ctx, filter)
}

func (s *PostService) GetPost(ctx context.Context, id uint) (*models.Post, error) {
	return s.postRepo.GetByID(ctx, id)
}

// CreatePost validates the input, stores the image if one was sent and creates the post
// with its tags. A stored image is removed again when the post cannot be created.
func (s *PostService) CreatePost(ctx context.Context, in CreatePostInput) (*models.Post, error) {
	title := strings.TrimSpace(in.Title)
	content := strings.TrimSpace(in.Content)
	if title == "" || content == "" {
		return nil, models.NewValidationError("Title and content are required")
	}
	if in.CategoryID == 0 {
		return nil, models.NewValidationError("category_id is required")
	}

	post := &models.Post{
		Title:      title,
		Content:    content,
		CategoryID: in.CategoryID,
		UserID:     in.UserID,
	}

	if in.Image != nil && len(in.Image.Data) > 0 {
		url, err := s.store.Save(ctx, *in.Image)
		if err != nil {
			return nil, models.NewInternalError(err)
		}
		post.ImageURL = &url
	}

	created, err := s.postRepo.Create(ctx, post, in.Tags)
	if err != nil {
		s.discardImage(ctx, post.ImageURL)
		return nil, err
	}
	return created, nil
}

func (s *PostService) discardImage(ctx context.Context, url *string) {
	if url == nil {
		return
	}
	name, ok := media.NameFromURL(*url)
	if !ok {
		return
	}
	if err := s.store.Remove(ctx, name); err != nil && !errors.Is(err, media.ErrNotFound) {
		middleware.Logger.WarnContext(ctx, "Failed to remove orphaned upload",
			slog.String("name", name),
			slog.String("error", err.Error()),
		)
	}
}

func (s *PostService) UpdatePost(ctx context.Context, in UpdatePostInput) (*models.Post, error) {
	title := strings.TrimSpace(in.Title)
	content := strings.TrimSpace(in.Content)
	if title == "" || content == "" {
		return nil, models.NewValidationError("Title and content are required")
	}
	return s.postRepo.Update(ctx, in.PostID, title, content)
}

func (s *PostService) DeletePost(ctx context.Context, id uint) error {
	return s.postRepo.Delete(ctx, id)
}

func (s *PostService) LikePost(ctx context.Context, id uint) (int, error) {
	return s.postRepo.Like(ctx, id)
}

// ParseTags flattens raw tag form values. Each value is either a JSON array of strings or a
// comma-separated list. A value that starts like a JSON array but does not parse is rejected.
func ParseTags(values []string) ([]string, error) {
	var tags []string
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		if strings.HasPrefix(v, "[") {
			var list []string
			if err := json.Unmarshal([]byte(v), &list); err != nil {
				return nil, models.NewValidationError("tags must be a JSON array of strings")
			}
			tags = append(tags, list...)
			continue
		}
		tags = append(tags, strings.Split(v, ",")...)
	}
	return tags, nil
}
