package server

import (
	"thesisrepo/internal/analytics"
	"thesisrepo/internal/service"

	"github.com/gofiber/fiber/v2"
)

// GetImpact handles GET /api/theses/:id/analytics/citations/impact
// @Summary Citation impact score
// @Description Recency-weighted citation count. Citations without a year count fully.
// @Tags analytics
// @Success 200 {object} object{impact=number}
// @Failure 404 {object} models.ErrorResponse
// @Router /theses/{id}/analytics/citations/impact [get]
func (s *Server) GetImpact(c *fiber.Ctx) error {
	thesisID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	impact, err := s.analyticsService.Impact(c.UserContext(), thesisID)
	if err != nil {
		return respondWithAppError(c, err)
	}
	return c.JSON(fiber.Map{"impact": impact})
}

// GetCitationsByYear handles GET /api/theses/:id/analytics/citations/by-year
func (s *Server) GetCitationsByYear(c *fiber.Ctx) error {
	thesisID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	series, err := s.analyticsService.CitationsByYear(c.UserContext(), thesisID)
	if err != nil {
		return respondWithAppError(c, err)
	}
	return c.JSON(series)
}

// GetCitationsByType handles GET /api/theses/:id/analytics/citations/by-type
func (s *Server) GetCitationsByType(c *fiber.Ctx) error {
	thesisID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	series, err := s.analyticsService.CitationsByType(c.UserContext(), thesisID)
	if err != nil {
		return respondWithAppError(c, err)
	}
	return c.JSON(series)
}

// RecordView handles POST /api/theses/:id/view
func (s *Server) RecordView(c *fiber.Ctx) error {
	thesisID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	if err := s.analyticsService.RecordView(c.UserContext(), thesisID); err != nil {
		return respondWithAppError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// GetDailyViews handles GET /api/theses/:id/analytics/views/daily?days=
func (s *Server) GetDailyViews(c *fiber.Ctx) error {
	return s.views(c, analytics.Day, "days")
}

// GetMonthlyViews handles GET /api/theses/:id/analytics/views/monthly?months=
func (s *Server) GetMonthlyViews(c *fiber.Ctx) error {
	return s.views(c, analytics.Month, "months")
}

func (s *Server) views(c *fiber.Ctx, g analytics.Granularity, param string) error {
	thesisID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	window, err := service.ParseWindow(g, c.Query(param))
	if err != nil {
		return respondWithAppError(c, err)
	}

	series, err := s.analyticsService.Views(c.UserContext(), thesisID, g, window)
	if err != nil {
		return respondWithAppError(c, err)
	}
	return c.JSON(series)
}
