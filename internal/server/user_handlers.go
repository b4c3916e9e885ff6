package server

import (
	"net/url"

	"mdd/internal/models"
	"mdd/internal/service"

	"github.com/gofiber/fiber/v2"
)

// UpdateUserRequest changes only the fields that are non-empty.
type UpdateUserRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// GetUsers handles GET /api/users
// @Summary List users
// @Tags users
// @Produce json
// @Success 200 {array} models.UserResponse
// @Router /users [get]
func (s *Server) GetUsers(c *fiber.Ctx) error {
	page := parsePagination(c, 50)

	users, err := s.userService.ListUsers(c.UserContext(), page.Limit, page.Offset)
	if err != nil {
		return respondErr(c, err)
	}
	out := make([]models.UserResponse, 0, len(users))
	for _, u := range users {
		out = append(out, models.NewUserResponse(u))
	}
	return c.JSON(out)
}

// GetUser handles GET /api/users/:id
// @Summary Get a user
// @Tags users
// @Produce json
// @Param id path int true "User ID"
// @Success 200 {object} models.UserResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /users/{id} [get]
func (s *Server) GetUser(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	user, err := s.userService.GetUser(c.UserContext(), id)
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(models.NewUserResponse(user))
}

// GetMyProfile handles GET /api/users/me
// @Summary The authenticated user
// @Tags users
// @Produce json
// @Security BearerAuth
// @Success 200 {object} models.UserResponse
// @Router /users/me [get]
func (s *Server) GetMyProfile(c *fiber.Ctx) error {
	user, err := s.userService.GetUser(c.UserContext(), currentUserID(c))
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(models.NewUserResponse(user))
}

// GetUserByUsername handles GET /api/users/username/:username
// @Summary Get a user by username
// @Tags users
// @Produce json
// @Param username path string true "Username"
// @Success 200 {object} models.UserResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /users/username/{username} [get]
func (s *Server) GetUserByUsername(c *fiber.Ctx) error {
	user, err := s.userService.GetUserByUsername(c.UserContext(), pathValue(c, "username"))
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(models.NewUserResponse(user))
}

// CheckUsername handles GET /api/users/check/username/:username
// @Summary Whether a username is free
// @Tags users
// @Produce json
// @Param username path string true "Username"
// @Success 200 {object} object{available=bool}
// @Router /users/check/username/{username} [get]
func (s *Server) CheckUsername(c *fiber.Ctx) error {
	available, err := s.userService.UsernameAvailable(c.UserContext(), pathValue(c, "username"))
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(fiber.Map{"available": available})
}

// CheckEmail handles GET /api/users/check/email/:email
// @Summary Whether an email is free
// @Tags users
// @Produce json
// @Param email path string true "Email"
// @Success 200 {object} object{available=bool}
// @Router /users/check/email/{email} [get]
func (s *Server) CheckEmail(c *fiber.Ctx) error {
	available, err := s.userService.EmailAvailable(c.UserContext(), pathValue(c, "email"))
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(fiber.Map{"available": available})
}

// UpdateUser handles PUT /api/users/:id
// @Summary Update the caller's own account
// @Tags users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "User ID"
// @Param request body UpdateUserRequest true "Changes"
// @Success 200 {object} models.UserResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 403 {object} models.ErrorResponse
// @Router /users/{id} [put]
func (s *Server) UpdateUser(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	var req UpdateUserRequest
	if err := parseBody(c, &req); err != nil {
		return nil
	}

	user, err := s.userService.UpdateUser(c.UserContext(), service.UpdateUserInput{
		CallerID: currentUserID(c),
		UserID:   id,
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(models.NewUserResponse(user))
}

// DeleteUser handles DELETE /api/users/:id
// @Summary Delete the caller's own account
// @Tags users
// @Produce json
// @Security BearerAuth
// @Param id path int true "User ID"
// @Success 200 {object} models.MessageResponse
// @Failure 403 {object} models.ErrorResponse
// @Failure 409 {object} models.ErrorResponse
// @Router /users/{id} [delete]
func (s *Server) DeleteUser(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	if err := s.userService.DeleteUser(c.UserContext(), currentUserID(c), id); err != nil {
		return respondErr(c, err)
	}
	return c.JSON(models.MessageResponse{Message: "User deleted successfully"})
}

// pathValue returns a decoded route parameter; fiber leaves %40 and friends escaped.
func pathValue(c *fiber.Ctx, name string) string {
	raw := c.Params(name)
	if v, err := url.PathUnescape(raw); err == nil {
		return v
	}
	return raw
}
