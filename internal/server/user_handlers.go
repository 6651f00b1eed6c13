package server

import (
	"context"
	"errors"
	"time"

	"thesisrepo/internal/service"

	"github.com/gofiber/fiber/v2"
)

// GetAllUsers handles GET /api/admin/users
func (s *Server) GetAllUsers(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), 5*time.Second)
	defer cancel()

	page := parsePagination(c, 100)

	users, err := s.userService.ListUsers(ctx, page.Limit, page.Offset)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return c.Status(fiber.StatusGatewayTimeout).JSON(fiber.Map{
				"error": "Request timeout",
			})
		}
		return respondWithAppError(c, err)
	}
	return c.JSON(users)
}

// UpdateUser handles PUT /api/admin/users/:id
// @Summary Update a user's role, status or affiliation
// @Tags admin
// @Security BearerAuth
// @Param request body object{role_id=int,is_active=bool,department_id=int,faculty_id=int} true "Changes"
// @Success 200 {object} models.User
// @Router /admin/users/{id} [put]
func (s *Server) UpdateUser(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	var req struct {
		RoleID       *int  `json:"role_id"`
		IsActive     *bool `json:"is_active"`
		DepartmentID *uint `json:"department_id"`
		FacultyID    *uint `json:"faculty_id"`
	}
	if err := parseBody(c, &req); err != nil {
		return nil
	}

	user, err := s.userService.UpdateUser(c.UserContext(), service.AdminUpdateUserInput{
		ActorID:      currentUserID(c),
		TargetID:     id,
		RoleID:       req.RoleID,
		IsActive:     req.IsActive,
		DepartmentID: req.DepartmentID,
		FacultyID:    req.FacultyID,
	})
	if err != nil {
		return respondWithAppError(c, err)
	}
	return c.JSON(user)
}

// DeleteUser handles DELETE /api/admin/users/:id
func (s *Server) DeleteUser(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	if err := s.userService.DeleteUser(c.UserContext(), currentUserID(c), id); err != nil {
		return respondWithAppError(c, err)
	}
	return c.JSON(fiber.Map{"message": "User deleted"})
}

// GetAdvisorStats handles GET /api/advisor/:advisorId/stats
func (s *Server) GetAdvisorStats(c *fiber.Ctx) error {
	advisorID, err := s.parseID(c, "advisorId")
	if err != nil {
		return nil
	}

	stats, err := s.thesisService.AdvisorStats(c.UserContext(), advisorID)
	if err != nil {
		return respondWithAppError(c, err)
	}
	return c.JSON(stats)
}
