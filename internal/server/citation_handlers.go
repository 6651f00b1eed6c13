package server

import (
	"thesisrepo/internal/service"

	"github.com/gofiber/fiber/v2"
)

// GetCitations handles GET /api/theses/:id/citations
func (s *Server) GetCitations(c *fiber.Ctx) error {
	thesisID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	citations, err := s.citationService.List(c.UserContext(), thesisID)
	if err != nil {
		return respondWithAppError(c, err)
	}
	return c.JSON(citations)
}

// CreateCitation handles POST /api/theses/:id/citations
// @Summary Add a citation
// @Tags citations
// @Security BearerAuth
// @Accept json
// @Param request body service.AddCitationInput true "Citation"
// @Success 201 {object} object{citation=models.Citation,bibliography_count=int}
// @Router /theses/{id}/citations [post]
func (s *Server) CreateCitation(c *fiber.Ctx) error {
	thesisID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	var req service.AddCitationInput
	if err := parseBody(c, &req); err != nil {
		return nil
	}
	req.ThesisID = thesisID
	req.UserID = currentUserID(c)

	citation, count, err := s.citationService.Add(c.UserContext(), req)
	if err != nil {
		return respondWithAppError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"citation":           citation,
		"bibliography_count": count,
	})
}

// UpdateCitation handles PUT /api/citations/:id
// Omitted authors and publication_type keep their values; year_published and
// citation_context are replaced, so omitting them clears them.
func (s *Server) UpdateCitation(c *fiber.Ctx) error {
	citationID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	var req struct {
		Authors         *string `json:"authors"`
		PublicationType *string `json:"publication_type"`
		YearPublished   *int    `json:"year_published"`
		CitationContext *string `json:"citation_context"`
	}
	if err := parseBody(c, &req); err != nil {
		return nil
	}

	citation, err := s.citationService.Update(c.UserContext(), service.UpdateCitationInput{
		ActorID:         currentUserID(c),
		CitationID:      citationID,
		Authors:         req.Authors,
		PublicationType: req.PublicationType,
		YearPublished:   req.YearPublished,
		CitationContext: req.CitationContext,
	})
	if err != nil {
		return respondWithAppError(c, err)
	}
	return c.JSON(citation)
}

// DeleteCitation handles DELETE /api/citations/:id
func (s *Server) DeleteCitation(c *fiber.Ctx) error {
	citationID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	if err := s.citationService.Delete(c.UserContext(), currentUserID(c), citationID); err != nil {
		return respondWithAppError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Citation deleted"})
}

// CiteThesis handles POST /api/theses/:id/cite
func (s *Server) CiteThesis(c *fiber.Ctx) error {
	thesisID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	count, err := s.citationService.Cite(c.UserContext(), thesisID, currentUserID(c))
	if err != nil {
		return respondWithAppError(c, err)
	}
	return c.JSON(fiber.Map{"bibliography_count": count})
}
