package repository

import (
	"context"
	"errors"

	"thesisrepo/internal/cache"
	"thesisrepo/internal/models"

	"gorm.io/gorm"
)

// LookupRepository manages faculties and departments.
type LookupRepository interface {
	ListFaculties(ctx context.Context) ([]models.Faculty, error)
	GetFaculty(ctx context.Context, id uint) (*models.Faculty, error)
	SaveFaculty(ctx context.Context, faculty *models.Faculty) error
	ListDepartments(ctx context.Context, facultyID uint) ([]models.Department, error)
	GetDepartment(ctx context.Context, id uint) (*models.Department, error)
	SaveDepartment(ctx context.Context, dept *models.Department) error
}

type lookupRepository struct {
	db *gorm.DB
}

// NewLookupRepository creates a new LookupRepository
func NewLookupRepository(db *gorm.DB) LookupRepository {
	return &lookupRepository{db: db}
}

func (r *lookupRepository) ListFaculties(ctx context.Context) ([]models.Faculty, error) {
	faculties := []models.Faculty{}
	err := cache.Aside(ctx, cache.FacultiesKey, &faculties, cache.LookupTTL, func() error {
		return readDB(r.db).WithContext(ctx).Order("name ASC").Find(&faculties).Error
	})
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return faculties, nil
}

func (r *lookupRepository) GetFaculty(ctx context.Context, id uint) (*models.Faculty, error) {
	var faculty models.Faculty
	if err := r.db.WithContext(ctx).First(&faculty, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Faculty", id)
		}
		return nil, models.NewInternalError(err)
	}
	return &faculty, nil
}

// SaveFaculty inserts or updates by primary key.
func (r *lookupRepository) SaveFaculty(ctx context.Context, faculty *models.Faculty) error {
	if err := r.db.WithContext(ctx).Save(faculty).Error; err != nil {
		if isUniqueConstraintError(err) {
			return models.NewConflictError("Faculty already exists")
		}
		return models.NewInternalError(err)
	}
	cache.InvalidateLookups(ctx, faculty.ID)
	return nil
}

// ListDepartments lists departments of facultyID, or all when facultyID is 0.
func (r *lookupRepository) ListDepartments(ctx context.Context, facultyID uint) ([]models.Department, error) {
	depts := []models.Department{}
	err := cache.Aside(ctx, cache.DepartmentsKeyFor(facultyID), &depts, cache.LookupTTL, func() error {
		q := readDB(r.db).WithContext(ctx).Order("name ASC")
		if facultyID != 0 {
			q = q.Where("faculty_id = ?", facultyID)
		}
		return q.Find(&depts).Error
	})
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return depts, nil
}

func (r *lookupRepository) GetDepartment(ctx context.Context, id uint) (*models.Department, error) {
	var dept models.Department
	if err := r.db.WithContext(ctx).First(&dept, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Department", id)
		}
		return nil, models.NewInternalError(err)
	}
	return &dept, nil
}

func (r *lookupRepository) SaveDepartment(ctx context.Context, dept *models.Department) error {
	if err := r.db.WithContext(ctx).Omit("Faculty").Save(dept).Error; err != nil {
		if isForeignKeyError(err) {
			return models.NewValidationError("Unknown faculty")
		}
		return models.NewInternalError(err)
	}
	cache.InvalidateLookups(ctx, dept.FacultyID)
	return nil
}
