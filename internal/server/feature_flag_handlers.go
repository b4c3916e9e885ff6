package server

import "github.com/gofiber/fiber/v2"

// GetFeatureFlags handles GET /api/features
// @Summary Configured feature flags and their state for the caller
// @Tags features
// @Produce json
// @Security BearerAuth
// @Success 200 {object} object{raw=map[string]string,evaluated=map[string]bool}
// @Router /features [get]
func (s *Server) GetFeatureFlags(c *fiber.Ctx) error {
	// Snapshot and Raw are nil-safe.
	return c.JSON(fiber.Map{
		"raw":       s.featureFlags.Raw(),
		"evaluated": s.featureFlags.Snapshot(currentUserID(c)),
	})
}
