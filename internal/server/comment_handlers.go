package server

import (
	"mdd/internal/models"
	"mdd/internal/service"

	"github.com/gofiber/fiber/v2"
)

// CommentRequest is the body of comment create and update.
type CommentRequest struct {
	Content   string `json:"content"`
	ArticleID uint   `json:"articleId"`
}

// GetComments handles GET /api/comments
// @Summary List comments newest first
// @Tags comments
// @Produce json
// @Success 200 {array} models.CommentResponse
// @Router /comments [get]
func (s *Server) GetComments(c *fiber.Ctx) error {
	page := parsePagination(c, 50)

	comments, err := s.commentService.ListComments(c.UserContext(), page.Limit, page.Offset)
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(models.NewCommentResponses(comments))
}

// GetComment handles GET /api/comments/:id
// @Summary Get a comment
// @Tags comments
// @Produce json
// @Param id path int true "Comment ID"
// @Success 200 {object} models.CommentResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /comments/{id} [get]
func (s *Server) GetComment(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	comment, err := s.commentService.GetComment(c.UserContext(), id)
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(models.NewCommentResponse(comment))
}

// GetArticleComments handles GET /api/comments/article/:id
// @Summary An article's comment thread, oldest first
// @Tags comments
// @Produce json
// @Param id path int true "Article ID"
// @Success 200 {array} models.CommentResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /comments/article/{id} [get]
func (s *Server) GetArticleComments(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	comments, err := s.commentService.ListByArticle(c.UserContext(), id)
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(models.NewCommentResponses(comments))
}

// GetUserComments handles GET /api/comments/user/:id
// @Summary Comments written by a user
// @Tags comments
// @Produce json
// @Param id path int true "User ID"
// @Success 200 {array} models.CommentResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /comments/user/{id} [get]
func (s *Server) GetUserComments(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	page := parsePagination(c, 50)

	comments, err := s.commentService.ListByAuthor(c.UserContext(), id, page.Limit, page.Offset)
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(models.NewCommentResponses(comments))
}

// CreateComment handles POST /api/comments
// @Summary Comment on an article
// @Tags comments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body CommentRequest true "Comment"
// @Success 201 {object} models.CommentResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /comments [post]
func (s *Server) CreateComment(c *fiber.Ctx) error {
	var req CommentRequest
	if err := parseBody(c, &req); err != nil {
		return nil
	}

	comment, err := s.commentService.CreateComment(c.UserContext(), service.CreateCommentInput{
		AuthorID:  currentUserID(c),
		ArticleID: req.ArticleID,
		Content:   req.Content,
	})
	if err != nil {
		return respondErr(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(models.NewCommentResponse(comment))
}

// UpdateComment handles PUT /api/comments/:id
// @Summary Edit one of the caller's comments
// @Tags comments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Comment ID"
// @Param request body CommentRequest true "Comment"
// @Success 200 {object} models.CommentResponse
// @Failure 403 {object} models.ErrorResponse
// @Router /comments/{id} [put]
func (s *Server) UpdateComment(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	var req CommentRequest
	if err := parseBody(c, &req); err != nil {
		return nil
	}

	comment, err := s.commentService.UpdateComment(c.UserContext(), service.UpdateCommentInput{
		CallerID:  currentUserID(c),
		CommentID: id,
		ArticleID: req.ArticleID,
		Content:   req.Content,
	})
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(models.NewCommentResponse(comment))
}

// DeleteComment handles DELETE /api/comments/:id
// @Summary Delete one of the caller's comments
// @Tags comments
// @Produce json
// @Security BearerAuth
// @Param id path int true "Comment ID"
// @Success 200 {object} models.MessageResponse
// @Failure 403 {object} models.ErrorResponse
// @Router /comments/{id} [delete]
func (s *Server) DeleteComment(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	if err := s.commentService.DeleteComment(c.UserContext(), currentUserID(c), id); err != nil {
		return respondErr(c, err)
	}
	return c.JSON(models.MessageResponse{Message: "Comment deleted successfully"})
}
