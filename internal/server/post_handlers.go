package server

import (
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"strings"

	"inkwell/internal/media"
	"inkwell/internal/models"
	"inkwell/internal/notifications"
	"inkwell/internal/service"

	"github.com/gofiber/fiber/v2"
)

// CreatePostRequest is the JSON or urlencoded body accepted by POST /api/posts.
// Multipart requests carry the same fields plus an optional image file.
type CreatePostRequest struct {
	Title      string  `json:"title" form:"title"`
	Content    string  `json:"content" form:"content"`
	CategoryID uint    `json:"category_id" form:"category_id"`
	UserID     *uint   `json:"user_id" form:"user_id"`
	Tags       TagList `json:"tags" form:"tags"`
}

// TagList holds the tags of a JSON body. An array is taken element by element as sent.
// A single string is split like a form value.
type TagList []string

func (t *TagList) UnmarshalJSON(data []byte) error {
	var one string
	if err := json.Unmarshal(data, &one); err == nil {
		tags, err := service.ParseTags([]string{one})
		if err != nil {
			return err
		}
		*t = tags
		return nil
	}
	var many []string
	if err := json.Unmarshal(data, &many); err != nil {
		return err
	}
	*t = many
	return nil
}

// UpdatePostRequest is the body accepted by PUT /api/posts/:id.
type UpdatePostRequest struct {
	Title   string `json:"title" form:"title"`
	Content string `json:"content" form:"content"`
}

// LikesResponse carries a like counter after an increment.
type LikesResponse struct {
	Likes int `json:"likes"`
}

// MessageResponse is returned by endpoints without a resource body.
type MessageResponse struct {
	Message string `json:"message"`
}

// GetPosts handles GET /api/posts
// @Summary List posts
// @Description Newest first, optionally filtered by text, category name and tag name
// @Tags posts
// @Produce json
// @Param query query string false "Case-insensitive substring of title or content"
// @Param category query string false "Exact category name"
// @Param tag query string false "Exact tag name"
// @Success 200 {array} models.Post
// @Router /posts [get]
func (s *Server) GetPosts(c *fiber.Ctx) error {
	posts, err := s.postService.ListPosts(c.UserContext(), postFilterFromQuery(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(posts)
}

// SearchPosts handles GET /api/search. It takes the same filters as GetPosts.
// @Summary Search posts
// @Tags posts
// @Produce json
// @Param query query string false "Case-insensitive substring of title or content"
// @Param category query string false "Exact category name"
// @Param tag query string false "Exact tag name"
// @Success 200 {array} models.Post
// @Router /search [get]
func (s *Server) SearchPosts(c *fiber.Ctx) error {
	return s.GetPosts(c)
}

func postFilterFromQuery(c *fiber.Ctx) models.PostFilter {
	return models.PostFilter{
		Text:         strings.TrimSpace(c.Query("query")),
		CategoryName: strings.TrimSpace(c.Query("category")),
		TagName:      strings.TrimSpace(c.Query("tag")),
	}
}

// GetPost handles GET /api/posts/:id
// @Summary Get post by ID
// @Tags posts
// @Produce json
// @Param id path int true "Post ID"
// @Success 200 {object} models.Post
// @Failure 404 {object} models.ErrorResponse
// @Router /posts/{id} [get]
func (s *Server) GetPost(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	post, err := s.postService.GetPost(c.UserContext(), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(post)
}

// CreatePost handles POST /api/posts
// @Summary Create post
// @Description Accepts multipart/form-data (with an optional image file) or JSON. Tags may be
// @Description repeated "tags"/"tags[]" fields, a comma-separated list or a JSON array.
// @Tags posts
// @Accept multipart/form-data
// @Accept json
// @Produce json
// @Param title formData string true "Title"
// @Param content formData string true "Content"
// @Param category_id formData int true "Category ID"
// @Param user_id formData int false "Author user ID"
// @Param tags formData string false "Tags"
// @Param image formData file false "Image"
// @Success 201 {object} models.Post
// @Failure 400 {object} models.ErrorResponse
// @Router /posts [post]
func (s *Server) CreatePost(c *fiber.Ctx) error {
	in, err := parseCreatePost(c)
	if err != nil {
		return respondError(c, err)
	}

	ctx := c.UserContext()
	post, err := s.postService.CreatePost(ctx, in)
	if err != nil {
		return respondError(c, err)
	}

	s.publishEvent(ctx, notifications.EventPostCreated, post)
	return c.Status(fiber.StatusCreated).JSON(post)
}

// parseCreatePost reads a multipart form when one was sent and the JSON or urlencoded body
// otherwise.
func parseCreatePost(c *fiber.Ctx) (service.CreatePostInput, error) {
	form, err := c.MultipartForm()
	if err != nil {
		var req CreatePostRequest
		if err := c.BodyParser(&req); err != nil {
			var appErr *models.AppError
			if errors.As(err, &appErr) {
				return service.CreatePostInput{}, appErr
			}
			return service.CreatePostInput{}, models.NewValidationError("Invalid request body")
		}
		tags := []string(req.Tags)
		if !c.Is("json") {
			if tags, err = service.ParseTags(tags); err != nil {
				return service.CreatePostInput{}, err
			}
		}
		return service.CreatePostInput{
			Title:      req.Title,
			Content:    req.Content,
			CategoryID: req.CategoryID,
			UserID:     req.UserID,
			Tags:       tags,
		}, nil
	}

	value := func(keys ...string) string {
		for _, k := range keys {
			if v := form.Value[k]; len(v) > 0 {
				return v[0]
			}
		}
		return ""
	}

	in := service.CreatePostInput{
		Title:   value("title"),
		Content: value("content"),
	}

	categoryID, err := parseOptionalID(value("category_id", "categoryId"), "category_id")
	if err != nil {
		return in, err
	}
	if categoryID != nil {
		in.CategoryID = *categoryID
	}
	if in.UserID, err = parseOptionalID(value("user_id", "userId"), "user_id"); err != nil {
		return in, err
	}

	rawTags := append(append([]string{}, form.Value["tags"]...), form.Value["tags[]"]...)
	if in.Tags, err = service.ParseTags(rawTags); err != nil {
		return in, err
	}

	if files := form.File["image"]; len(files) > 0 {
		upload, err := readUpload(files[0])
		if err != nil {
			return in, err
		}
		in.Image = upload
	}
	return in, nil
}

func readUpload(fh *multipart.FileHeader) (*media.Upload, error) {
	src, err := fh.Open()
	if err != nil {
		return nil, models.NewValidationError("Unable to read uploaded file")
	}
	defer func() { _ = src.Close() }()

	data, err := io.ReadAll(src)
	if err != nil {
		return nil, models.NewValidationError("Unable to read uploaded file")
	}
	return &media.Upload{
		Filename:    fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
		Data:        data,
	}, nil
}

// UpdatePost handles PUT /api/posts/:id
// @Summary Update post
// @Tags posts
// @Accept json
// @Produce json
// @Param id path int true "Post ID"
// @Param request body UpdatePostRequest true "New title and content"
// @Success 200 {object} models.Post
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /posts/{id} [put]
func (s *Server) UpdatePost(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	var req UpdatePostRequest
	if err := c.BodyParser(&req); err != nil {
		return respondError(c, models.NewValidationError("Invalid request body"))
	}

	ctx := c.UserContext()
	post, err := s.postService.UpdatePost(ctx, service.UpdatePostInput{
		PostID:  id,
		Title:   req.Title,
		Content: req.Content,
	})
	if err != nil {
		return respondError(c, err)
	}

	s.publishEvent(ctx, notifications.EventPostUpdated, post)
	return c.JSON(post)
}

// DeletePost handles DELETE /api/posts/:id. Comments and tag links go with the post.
// @Summary Delete post
// @Tags posts
// @Produce json
// @Param id path int true "Post ID"
// @Success 200 {object} MessageResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /posts/{id} [delete]
func (s *Server) DeletePost(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	ctx := c.UserContext()
	if err := s.postService.DeletePost(ctx, id); err != nil {
		return respondError(c, err)
	}

	s.publishEvent(ctx, notifications.EventPostDeleted, fiber.Map{"id": id})
	return c.JSON(MessageResponse{Message: "Post deleted successfully"})
}

// LikePost handles POST /api/posts/:id/like
// @Summary Like post
// @Tags posts
// @Produce json
// @Param id path int true "Post ID"
// @Success 200 {object} LikesResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /posts/{id}/like [post]
func (s *Server) LikePost(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	ctx := c.UserContext()
	likes, err := s.postService.LikePost(ctx, id)
	if err != nil {
		return respondError(c, err)
	}

	s.publishEvent(ctx, notifications.EventPostLiked, fiber.Map{"id": id, "likes": likes})
	return c.JSON(LikesResponse{Likes: likes})
}
