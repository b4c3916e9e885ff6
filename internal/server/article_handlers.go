package server

import (
	"mdd/internal/models"
	"mdd/internal/service"

	"github.com/gofiber/fiber/v2"
)

// ArticleRequest is the body of article create and update. On update a zero
// themeId keeps the current theme.
type ArticleRequest struct {
	Title   string `json:"title"`
	Content string `json:"content"`
	ThemeID uint   `json:"themeId"`
}

// GetArticles handles GET /api/articles
// @Summary List articles newest first
// @Tags articles
// @Produce json
// @Param limit query int false "Page size (max 100)"
// @Param offset query int false "Offset"
// @Success 200 {array} models.ArticleResponse
// @Router /articles [get]
func (s *Server) GetArticles(c *fiber.Ctx) error {
	page := parsePagination(c, 20)

	articles, err := s.articleService.ListArticles(c.UserContext(), page.Limit, page.Offset)
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(models.NewArticleResponses(articles))
}

// GetArticle handles GET /api/articles/:id
// @Summary Get an article
// @Tags articles
// @Produce json
// @Param id path int true "Article ID"
// @Success 200 {object} models.ArticleResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /articles/{id} [get]
func (s *Server) GetArticle(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	article, err := s.articleService.GetArticle(c.UserContext(), id)
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(models.NewArticleResponse(article))
}

// GetThemeArticles handles GET /api/articles/theme/:id
// @Summary Articles under a theme
// @Tags articles
// @Produce json
// @Param id path int true "Theme ID"
// @Success 200 {array} models.ArticleResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /articles/theme/{id} [get]
func (s *Server) GetThemeArticles(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	page := parsePagination(c, 20)

	articles, err := s.articleService.ListByTheme(c.UserContext(), id, page.Limit, page.Offset)
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(models.NewArticleResponses(articles))
}

// GetUserArticles handles GET /api/articles/user/:id
// @Summary Articles written by a user
// @Tags articles
// @Produce json
// @Param id path int true "User ID"
// @Success 200 {array} models.ArticleResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /articles/user/{id} [get]
func (s *Server) GetUserArticles(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	page := parsePagination(c, 20)

	articles, err := s.articleService.ListByAuthor(c.UserContext(), id, page.Limit, page.Offset)
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(models.NewArticleResponses(articles))
}

// SearchArticles handles GET /api/articles/search?title=...
// @Summary Case-insensitive title search
// @Tags articles
// @Produce json
// @Param title query string true "Title fragment"
// @Success 200 {array} models.ArticleResponse
// @Success 204 "No article matched"
// @Failure 400 {object} models.ErrorResponse
// @Router /articles/search [get]
func (s *Server) SearchArticles(c *fiber.Ctx) error {
	page := parsePagination(c, 20)

	articles, err := s.articleService.SearchByTitle(c.UserContext(), c.Query("title"), page.Limit, page.Offset)
	if err != nil {
		return respondErr(c, err)
	}
	if len(articles) == 0 {
		return c.SendStatus(fiber.StatusNoContent)
	}
	return c.JSON(models.NewArticleResponses(articles))
}

// GetFeed handles GET /api/articles/feed
// @Summary Articles from the caller's subscribed themes
// @Description Empty list when the caller follows nothing
// @Tags articles
// @Produce json
// @Security BearerAuth
// @Success 200 {array} models.ArticleResponse
// @Router /articles/feed [get]
func (s *Server) GetFeed(c *fiber.Ctx) error {
	feed, err := s.subscriptionService.FeedForUser(c.UserContext(), currentUserID(c))
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(feed)
}

// CreateArticle handles POST /api/articles
// @Summary Publish an article
// @Tags articles
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body ArticleRequest true "Article"
// @Success 201 {object} models.ArticleResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /articles [post]
func (s *Server) CreateArticle(c *fiber.Ctx) error {
	var req ArticleRequest
	if err := parseBody(c, &req); err != nil {
		return nil
	}

	article, err := s.articleService.CreateArticle(c.UserContext(), service.CreateArticleInput{
		AuthorID: currentUserID(c),
		ThemeID:  req.ThemeID,
		Title:    req.Title,
		Content:  req.Content,
	})
	if err != nil {
		return respondErr(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(models.NewArticleResponse(article))
}

// UpdateArticle handles PUT /api/articles/:id
// @Summary Edit one of the caller's articles
// @Tags articles
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Article ID"
// @Param request body ArticleRequest true "Article"
// @Success 200 {object} models.ArticleResponse
// @Failure 403 {object} models.ErrorResponse
// @Router /articles/{id} [put]
func (s *Server) UpdateArticle(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	var req ArticleRequest
	if err := parseBody(c, &req); err != nil {
		return nil
	}

	article, err := s.articleService.UpdateArticle(c.UserContext(), service.UpdateArticleInput{
		CallerID:  currentUserID(c),
		ArticleID: id,
		ThemeID:   req.ThemeID,
		Title:     req.Title,
		Content:   req.Content,
	})
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(models.NewArticleResponse(article))
}

// DeleteArticle handles DELETE /api/articles/:id
// @Summary Delete one of the caller's articles and its comments
// @Tags articles
// @Produce json
// @Security BearerAuth
// @Param id path int true "Article ID"
// @Success 200 {object} models.MessageResponse
// @Failure 403 {object} models.ErrorResponse
// @Router /articles/{id} [delete]
func (s *Server) DeleteArticle(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	if err := s.articleService.DeleteArticle(c.UserContext(), currentUserID(c), id); err != nil {
		return respondErr(c, err)
	}
	return c.JSON(models.MessageResponse{Message: "Article deleted successfully"})
}
