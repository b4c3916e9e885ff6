package server

import (
	"mdd/internal/models"
	"mdd/internal/service"

	"github.com/gofiber/fiber/v2"
)

// ThemeRequest is the body of theme create and update.
type ThemeRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// GetThemes handles GET /api/themes
// @Summary List themes
// @Description isSubscribed is set for the authenticated caller
// @Tags themes
// @Produce json
// @Success 200 {array} models.ThemeResponse
// @Router /themes [get]
func (s *Server) GetThemes(c *fiber.Ctx) error {
	themes, err := s.themeService.ListThemes(c.UserContext(), currentUserID(c))
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(themes)
}

// GetTheme handles GET /api/themes/:id
// @Summary Get a theme
// @Tags themes
// @Produce json
// @Param id path int true "Theme ID"
// @Success 200 {object} models.ThemeResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /themes/{id} [get]
func (s *Server) GetTheme(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	theme, err := s.themeService.GetTheme(c.UserContext(), id, currentUserID(c))
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(theme)
}

// CreateTheme handles POST /api/themes
// @Summary Create a theme
// @Tags themes
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body ThemeRequest true "Theme"
// @Success 201 {object} models.ThemeResponse
// @Failure 400 {object} models.ErrorResponse
// @Router /themes [post]
func (s *Server) CreateTheme(c *fiber.Ctx) error {
	var req ThemeRequest
	if err := parseBody(c, &req); err != nil {
		return nil
	}

	theme, err := s.themeService.CreateTheme(c.UserContext(), service.ThemeInput{
		Name:        req.Name,
		Description: req.Description,
	})
	if err != nil {
		return respondErr(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(models.NewThemeResponse(theme, false))
}

// UpdateTheme handles PUT /api/themes/:id
// @Summary Update a theme
// @Tags themes
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Theme ID"
// @Param request body ThemeRequest true "Theme"
// @Success 200 {object} models.ThemeResponse
// @Router /themes/{id} [put]
func (s *Server) UpdateTheme(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	var req ThemeRequest
	if err := parseBody(c, &req); err != nil {
		return nil
	}

	ctx := c.UserContext()
	theme, err := s.themeService.UpdateTheme(ctx, id, service.ThemeInput{
		Name:        req.Name,
		Description: req.Description,
	})
	if err != nil {
		return respondErr(c, err)
	}
	subscribed, err := s.subscriptionService.IsSubscribed(ctx, currentUserID(c), theme.ID)
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(models.NewThemeResponse(theme, subscribed))
}

// DeleteTheme handles DELETE /api/themes/:id
// @Summary Delete a theme
// @Description Fails with 409 while articles remain under the theme
// @Tags themes
// @Security BearerAuth
// @Param id path int true "Theme ID"
// @Success 204
// @Failure 409 {object} models.ErrorResponse
// @Router /themes/{id} [delete]
func (s *Server) DeleteTheme(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	if err := s.themeService.DeleteTheme(c.UserContext(), id); err != nil {
		return respondErr(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// Subscribe handles POST /api/themes/:id/subscribe
// @Summary Subscribe to a theme
// @Description success is false when the caller was already subscribed
// @Tags themes
// @Produce json
// @Security BearerAuth
// @Param id path int true "Theme ID"
// @Success 200 {object} models.SubscriptionResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /themes/{id}/subscribe [post]
func (s *Server) Subscribe(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	changed, err := s.subscriptionService.Subscribe(c.UserContext(), currentUserID(c), id)
	if err != nil {
		return respondErr(c, err)
	}
	msg := "Subscribed to theme"
	if !changed {
		msg = "Already subscribed to theme"
	}
	return c.JSON(models.SubscriptionResponse{Success: changed, Message: msg})
}

// Unsubscribe handles POST /api/themes/:id/unsubscribe
// @Summary Unsubscribe from a theme
// @Tags themes
// @Produce json
// @Security BearerAuth
// @Param id path int true "Theme ID"
// @Success 200 {object} models.SubscriptionResponse
// @Router /themes/{id}/unsubscribe [post]
func (s *Server) Unsubscribe(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	changed, err := s.subscriptionService.Unsubscribe(c.UserContext(), currentUserID(c), id)
	if err != nil {
		return respondErr(c, err)
	}
	msg := "Unsubscribed from theme"
	if !changed {
		msg = "Not subscribed to theme"
	}
	return c.JSON(models.SubscriptionResponse{Success: changed, Message: msg})
}

// GetSubscriptions handles GET /api/themes/subscriptions
// @Summary IDs of the themes the caller follows
// @Tags themes
// @Produce json
// @Security BearerAuth
// @Success 200 {array} int
// @Router /themes/subscriptions [get]
func (s *Server) GetSubscriptions(c *fiber.Ctx) error {
	ids, err := s.subscriptionService.SubscribedThemeIDs(c.UserContext(), currentUserID(c))
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(ids)
}
