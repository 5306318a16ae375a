package server

import (
	"inkwell/internal/models"
	"inkwell/internal/notifications"
	"inkwell/internal/service"

	"github.com/gofiber/fiber/v2"
)

// CreateCommentRequest is the body accepted by POST /api/posts/:id/comments.
type CreateCommentRequest struct {
	Content string `json:"content" form:"content"`
	UserID  *uint  `json:"user_id" form:"user_id"`
}

// DislikesResponse carries a dislike counter after an increment.
type DislikesResponse struct {
	Dislikes int `json:"dislikes"`
}

// GetComments handles GET /api/posts/:id/comments
func (s *Server) GetComments(c *fiber.Ctx) error {
	postID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	comments, err := s.commentService.ListComments(c.UserContext(), postID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(comments)
}

// CreateComment handles POST /api/posts/:id/comments
func (s *Server) CreateComment(c *fiber.Ctx) error {
	postID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	var req CreateCommentRequest
	if err := c.BodyParser(&req); err != nil {
		return respondError(c, models.NewValidationError("Invalid request body"))
	}

	ctx := c.UserContext()
	comment, err := s.commentService.CreateComment(ctx, service.CreateCommentInput{
		PostID:  postID,
		UserID:  req.UserID,
		Content: req.Content,
	})
	if err != nil {
		return respondError(c, err)
	}

	s.publishEvent(ctx, notifications.EventCommentCreated, comment)
	return c.Status(fiber.StatusCreated).JSON(comment)
}

// DeleteComment handles DELETE /api/comments/:id
func (s *Server) DeleteComment(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	ctx := c.UserContext()
	if err := s.commentService.DeleteComment(ctx, id); err != nil {
		return respondError(c, err)
	}

	s.publishEvent(ctx, notifications.EventCommentDeleted, fiber.Map{"id": id})
	return c.JSON(MessageResponse{Message: "Comment deleted successfully"})
}

// LikeComment handles POST /api/comments/:id/like
func (s *Server) LikeComment(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	ctx := c.UserContext()
	likes, err := s.commentService.LikeComment(ctx, id)
	if err != nil {
		return respondError(c, err)
	}

	s.publishEvent(ctx, notifications.EventCommentReactionUpdated, fiber.Map{"id": id, "likes": likes})
	return c.JSON(LikesResponse{Likes: likes})
}

// DislikeComment handles POST /api/comments/:id/dislike
func (s *Server) DislikeComment(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	ctx := c.UserContext()
	dislikes, err := s.commentService.DislikeComment(ctx, id)
	if err != nil {
		return respondError(c, err)
	}

	s.publishEvent(ctx, notifications.EventCommentReactionUpdated, fiber.Map{"id": id, "dislikes": dislikes})
	return c.JSON(DislikesResponse{Dislikes: dislikes})
}
