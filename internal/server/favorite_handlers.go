package server

import (
	"thesisrepo/internal/models"

	"github.com/gofiber/fiber/v2"
)

// GetFavorites handles GET /api/favorites
func (s *Server) GetFavorites(c *fiber.Ctx) error {
	favorites, err := s.favoriteService.List(c.UserContext(), currentUserID(c))
	if err != nil {
		return respondWithAppError(c, err)
	}
	return c.JSON(favorites)
}

// AddFavorite handles POST /api/favorites
func (s *Server) AddFavorite(c *fiber.Ctx) error {
	var req struct {
		ThesisID uint `json:"thesis_id"`
	}
	if err := parseBody(c, &req); err != nil {
		return nil
	}
	if req.ThesisID == 0 {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("thesis_id is required"))
	}

	fav, err := s.favoriteService.Add(c.UserContext(), currentUserID(c), req.ThesisID)
	if err != nil {
		return respondWithAppError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fav)
}

// RemoveFavorite handles DELETE /api/favorites/:thesisId
func (s *Server) RemoveFavorite(c *fiber.Ctx) error {
	thesisID, err := s.parseID(c, "thesisId")
	if err != nil {
		return nil
	}

	if err := s.favoriteService.Remove(c.UserContext(), currentUserID(c), thesisID); err != nil {
		return respondWithAppError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Removed from favorites"})
}

// CheckFavorite handles GET /api/favorites/:thesisId/check
func (s *Server) CheckFavorite(c *fiber.Ctx) error {
	thesisID, err := s.parseID(c, "thesisId")
	if err != nil {
		return nil
	}

	ok, err := s.favoriteService.IsFavorite(c.UserContext(), currentUserID(c), thesisID)
	if err != nil {
		return respondWithAppError(c, err)
	}
	return c.JSON(fiber.Map{"is_favorite": ok})
}
