package server

import (
	"github.com/gofiber/fiber/v2"
)

// GetFaculties handles GET /api/faculties
func (s *Server) GetFaculties(c *fiber.Ctx) error {
	faculties, err := s.lookupService.Faculties(c.UserContext())
	if err != nil {
		return respondWithAppError(c, err)
	}
	return c.JSON(faculties)
}

// GetDepartments handles GET /api/departments?faculty_id=
func (s *Server) GetDepartments(c *fiber.Ctx) error {
	facultyID, err := queryUint(c, "faculty_id")
	if err != nil {
		return respondWithAppError(c, err)
	}
	var id uint
	if facultyID != nil {
		id = *facultyID
	}

	departments, err := s.lookupService.Departments(c.UserContext(), id)
	if err != nil {
		return respondWithAppError(c, err)
	}
	return c.JSON(departments)
}

// GetAdvisors handles GET /api/advisors
func (s *Server) GetAdvisors(c *fiber.Ctx) error {
	advisors, err := s.userService.ListAdvisors(c.UserContext())
	if err != nil {
		return respondWithAppError(c, err)
	}
	return c.JSON(advisors)
}

type lookupRequest struct {
	Name      string `json:"name"`
	FacultyID uint   `json:"faculty_id"`
}

// CreateFaculty handles POST /api/admin/faculties
func (s *Server) CreateFaculty(c *fiber.Ctx) error {
	return s.saveFaculty(c, 0)
}

// UpdateFaculty handles PUT /api/admin/faculties/:id
func (s *Server) UpdateFaculty(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	return s.saveFaculty(c, id)
}

func (s *Server) saveFaculty(c *fiber.Ctx, id uint) error {
	var req lookupRequest
	if err := parseBody(c, &req); err != nil {
		return nil
	}

	faculty, err := s.lookupService.SaveFaculty(c.UserContext(), id, req.Name)
	if err != nil {
		return respondWithAppError(c, err)
	}

	status := fiber.StatusOK
	if id == 0 {
		status = fiber.StatusCreated
	}
	return c.Status(status).JSON(faculty)
}

// CreateDepartment handles POST /api/admin/departments
func (s *Server) CreateDepartment(c *fiber.Ctx) error {
	return s.saveDepartment(c, 0)
}

// UpdateDepartment handles PUT /api/admin/departments/:id
func (s *Server) UpdateDepartment(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	return s.saveDepartment(c, id)
}

func (s *Server) saveDepartment(c *fiber.Ctx, id uint) error {
	var req lookupRequest
	if err := parseBody(c, &req); err != nil {
		return nil
	}

	dept, err := s.lookupService.SaveDepartment(c.UserContext(), id, req.Name, req.FacultyID)
	if err != nil {
		return respondWithAppError(c, err)
	}

	status := fiber.StatusOK
	if id == 0 {
		status = fiber.StatusCreated
	}
	return c.Status(status).JSON(dept)
}
