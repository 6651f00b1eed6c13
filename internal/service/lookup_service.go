package service

import (
	"context"
	"strings"

	"thesisrepo/internal/models"
	"thesisrepo/internal/repository"
)

type LookupService struct {
	lookupRepo repository.LookupRepository
}

func NewLookupService(lookupRepo repository.LookupRepository) *LookupService {
	return &LookupService{lookupRepo: lookupRepo}
}

func (s *LookupService) Faculties(ctx context.Context) ([]models.Faculty, error) {
	return s.lookupRepo.ListFaculties(ctx)
}

// Departments lists departments of a faculty, or all when facultyID is 0.
func (s *LookupService) Departments(ctx context.Context, facultyID uint) ([]models.Department, error) {
	return s.lookupRepo.ListDepartments(ctx, facultyID)
}

// SaveFaculty creates the faculty when id is 0 and renames it otherwise.
func (s *LookupService) SaveFaculty(ctx context.Context, id uint, name string) (*models.Faculty, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, models.NewValidationError("name is required")
	}
	faculty := &models.Faculty{Name: name}
	if id != 0 {
		existing, err := s.lookupRepo.GetFaculty(ctx, id)
		if err != nil {
			return nil, err
		}
		faculty = existing
		faculty.Name = name
	}
	if err := s.lookupRepo.SaveFaculty(ctx, faculty); err != nil {
		return nil, err
	}
	return faculty, nil
}

// SaveDepartment creates the department when id is 0 and updates it otherwise.
func (s *LookupService) SaveDepartment(ctx context.Context, id uint, name string, facultyID uint) (*models.Department, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, models.NewValidationError("name is required")
	}
	if facultyID == 0 {
		return nil, models.NewValidationError("faculty_id is required")
	}
	if _, err := s.lookupRepo.GetFaculty(ctx, facultyID); err != nil {
		if isNotFound(err) {
			return nil, models.NewValidationError("Unknown faculty")
		}
		return nil, err
	}

	dept := &models.Department{Name: name, FacultyID: facultyID}
	if id != 0 {
		existing, err := s.lookupRepo.GetDepartment(ctx, id)
		if err != nil {
			return nil, err
		}
		dept = existing
		dept.Name = name
		dept.FacultyID = facultyID
	}
	if err := s.lookupRepo.SaveDepartment(ctx, dept); err != nil {
		return nil, err
	}
	return dept, nil
}
