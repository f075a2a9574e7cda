package server

import (
	"meydan/internal/models"
	"meydan/internal/observability"

	"github.com/gofiber/fiber/v2"
)

// GetFeed handles GET /api/feed. The viewer's profile is ensured on every
// load so first-time users get a row with generated defaults, then the
// whole feed is aggregated for them in one response.
func (s *Server) GetFeed(c *fiber.Ctx) error {
	userID := c.Locals("userID").(string)
	email, _ := c.Locals("email").(string)

	profile, err := s.feedService.EnsureProfile(c.Context(), userID, email)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}

	feed, err := s.feedService.BuildFeed(c.Context(), userID)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}

	return c.JSON(fiber.Map{
		"profile": profile,
		"posts":   feed,
	})
}

// GetMyProfile handles GET /api/profile
func (s *Server) GetMyProfile(c *fiber.Ctx) error {
	userID := c.Locals("userID").(string)
	email, _ := c.Locals("email").(string)

	profile, err := s.feedService.EnsureProfile(c.Context(), userID, email)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}
	return c.JSON(profile)
}

// UpdateMyProfile handles PUT /api/profile
func (s *Server) UpdateMyProfile(c *fiber.Ctx) error {
	userID := c.Locals("userID").(string)

	var req struct {
		Name      string `json:"name"`
		AvatarURL string `json:"avatar_url"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	profile, err := s.feedService.UpdateProfile(c.Context(), userID, req.Name, req.AvatarURL)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(profile)
}

// respondServiceError maps service-layer errors onto HTTP statuses.
func respondServiceError(c *fiber.Ctx, err error) error {
	observability.RecordErrorInContext(c.UserContext(), err)
	if appErr, ok := err.(*models.AppError); ok {
		switch appErr.Code {
		case "NOT_FOUND":
			return models.RespondWithError(c, fiber.StatusNotFound, err)
		case "VALIDATION_ERROR":
			return models.RespondWithError(c, fiber.StatusBadRequest, err)
		case "FORBIDDEN":
			return models.RespondWithError(c, fiber.StatusForbidden, err)
		case "UNAUTHORIZED":
			return models.RespondWithError(c, fiber.StatusUnauthorized, err)
		}
	}
	return models.RespondWithError(c, fiber.StatusInternalServerError, err)
}
