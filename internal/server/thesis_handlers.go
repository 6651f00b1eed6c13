package server

import (
	"strings"

	"thesisrepo/internal/models"
	"thesisrepo/internal/repository"
	"thesisrepo/internal/service"

	"github.com/gofiber/fiber/v2"
)

// GetTheses handles GET /api/theses
// @Summary List theses
// @Description Filter by advisor, department, faculty, year range, author and free text
// @Tags theses
// @Produce json
// @Param q query string false "Matches title, abstract and keywords"
// @Param sort query string false "views, citations or created"
// @Success 200 {array} models.ThesisSummary
// @Router /theses [get]
func (s *Server) GetTheses(c *fiber.Ctx) error {
	filter, err := parseThesisFilter(c)
	if err != nil {
		return respondWithAppError(c, err)
	}

	theses, err := s.thesisService.List(c.UserContext(), filter)
	if err != nil {
		return respondWithAppError(c, err)
	}
	return c.JSON(theses)
}

func parseThesisFilter(c *fiber.Ctx) (repository.ThesisFilter, error) {
	var (
		f   repository.ThesisFilter
		err error
	)
	if f.AdvisorID, err = queryUint(c, "advisor_id"); err != nil {
		return f, err
	}
	if f.DepartmentID, err = queryUint(c, "department_id"); err != nil {
		return f, err
	}
	if f.FacultyID, err = queryUint(c, "faculty_id"); err != nil {
		return f, err
	}
	if f.Year, err = queryInt(c, "year"); err != nil {
		return f, err
	}
	if f.YearFrom, err = queryInt(c, "year_from"); err != nil {
		return f, err
	}
	if f.YearTo, err = queryInt(c, "year_to"); err != nil {
		return f, err
	}

	f.Query = strings.TrimSpace(c.Query("q"))
	f.AuthorName = strings.TrimSpace(c.Query("author_name"))

	switch sort := strings.ToLower(strings.TrimSpace(c.Query("sort"))); sort {
	case "", repository.SortCreated, repository.SortViews, repository.SortCitations:
		f.Sort = sort
	default:
		return f, models.NewValidationError("sort must be one of views, citations, created")
	}

	page := parsePagination(c, defaultPaginationLimit)
	f.Limit, f.Offset = page.Limit, page.Offset
	return f, nil
}

// GetThesis handles GET /api/theses/:id
func (s *Server) GetThesis(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	thesis, err := s.thesisService.Get(c.UserContext(), id)
	if err != nil {
		return respondWithAppError(c, err)
	}
	return c.JSON(thesis)
}

// CreateThesis handles POST /api/theses
// @Summary Submit a thesis
// @Tags theses
// @Security BearerAuth
// @Accept json
// @Param request body service.CreateThesisInput true "Thesis"
// @Success 201 {object} models.Thesis
// @Router /theses [post]
func (s *Server) CreateThesis(c *fiber.Ctx) error {
	var req service.CreateThesisInput
	if err := parseBody(c, &req); err != nil {
		return nil
	}
	req.ActorID = currentUserID(c)

	thesis, err := s.thesisService.Create(c.UserContext(), req)
	if err != nil {
		return respondWithAppError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(thesis)
}

// UpdateThesis handles PUT /api/theses/:id
func (s *Server) UpdateThesis(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	var req struct {
		Title           *string `json:"title"`
		Abstract        *string `json:"abstract"`
		Keywords        *string `json:"keywords"`
		PublicationYear *int    `json:"publication_year"`
		DepartmentID    *uint   `json:"department_id"`
		AdvisorID       *uint   `json:"advisor_id"`
	}
	if err := parseBody(c, &req); err != nil {
		return nil
	}

	thesis, err := s.thesisService.Update(c.UserContext(), service.UpdateThesisInput{
		ActorID:         currentUserID(c),
		ThesisID:        id,
		Title:           req.Title,
		Abstract:        req.Abstract,
		Keywords:        req.Keywords,
		PublicationYear: req.PublicationYear,
		DepartmentID:    req.DepartmentID,
		AdvisorID:       req.AdvisorID,
	})
	if err != nil {
		return respondWithAppError(c, err)
	}
	return c.JSON(thesis)
}

// DeleteThesis handles DELETE /api/theses/:id (admin)
func (s *Server) DeleteThesis(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	if err := s.thesisService.Delete(c.UserContext(), id); err != nil {
		return respondWithAppError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Thesis deleted"})
}

// DownloadThesis handles POST /api/theses/:id/download
func (s *Server) DownloadThesis(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	count, err := s.thesisService.Download(c.UserContext(), id)
	if err != nil {
		return respondWithAppError(c, err)
	}
	return c.JSON(fiber.Map{"download_count": count})
}
