package repository

import (
	"context"
	"errors"
	"strings"

	"thesisrepo/internal/models"
	"thesisrepo/internal/observability"

	"gorm.io/gorm"
)

// Thesis list sort keys.
const (
	SortCreated   = "created"
	SortViews     = "views"
	SortCitations = "citations"
)

// ThesisFilter narrows a thesis listing. Nil and empty fields do not filter.
type ThesisFilter struct {
	AdvisorID    *uint
	DepartmentID *uint
	FacultyID    *uint
	Year         *int
	YearFrom     *int
	YearTo       *int
	AuthorName   string
	Query        string
	Sort         string
	Limit        int
	Offset       int
}

// ThesisRepository defines persistence operations for theses and their
// denormalized counters.
type ThesisRepository interface {
	List(ctx context.Context, filter ThesisFilter) ([]models.ThesisSummary, error)
	GetByID(ctx context.Context, id uint) (*models.Thesis, error)
	Exists(ctx context.Context, id uint) (bool, error)
	Create(ctx context.Context, thesis *models.Thesis) error
	Update(ctx context.Context, id uint, updates map[string]any) error
	Delete(ctx context.Context, id uint) error
	IncrementDownloads(ctx context.Context, id uint) (int64, error)
	AdvisorStats(ctx context.Context, advisorID uint) (*models.AdvisorStats, error)
	Recount(ctx context.Context, thesisID uint) (int64, error)
}

type thesisRepository struct {
	db  *gorm.DB
	log *observability.RepoLogger
}

// NewThesisRepository creates a new ThesisRepository
func NewThesisRepository(db *gorm.DB) ThesisRepository {
	return &thesisRepository{db: db, log: observability.NewRepoLogger("theses")}
}

const thesisSummaryColumns = "theses.id, theses.title, theses.abstract, theses.author_name, " +
	"theses.publication_year, theses.view_count, theses.download_count, theses.bibliography_count, " +
	"theses.advisor_id, advisors.full_name AS advisor_name, theses.department_id, " +
	"departments.name AS department_name, faculties.id AS faculty_id, faculties.name AS faculty_name, " +
	"theses.created_at"

func (r *thesisRepository) List(ctx context.Context, filter ThesisFilter) ([]models.ThesisSummary, error) {
	defer observability.TrackQuery("list", "theses")()
	ctx, span := observability.StartQuerySpan(ctx, "theses", "list")
	defer span.End()

	q := readDB(r.db).WithContext(ctx).
		Table("theses").
		Select(thesisSummaryColumns).
		Joins("LEFT JOIN users AS advisors ON advisors.id = theses.advisor_id").
		Joins("LEFT JOIN departments ON departments.id = theses.department_id").
		Joins("LEFT JOIN faculties ON faculties.id = departments.faculty_id")

	if filter.AdvisorID != nil {
		q = q.Where("theses.advisor_id = ?", *filter.AdvisorID)
	}
	if filter.DepartmentID != nil {
		q = q.Where("theses.department_id = ?", *filter.DepartmentID)
	}
	if filter.FacultyID != nil {
		q = q.Where("departments.faculty_id = ?", *filter.FacultyID)
	}
	if filter.Year != nil {
		q = q.Where("theses.publication_year = ?", *filter.Year)
	}
	if filter.YearFrom != nil {
		q = q.Where("theses.publication_year >= ?", *filter.YearFrom)
	}
	if filter.YearTo != nil {
		q = q.Where("theses.publication_year <= ?", *filter.YearTo)
	}
	if name := strings.TrimSpace(filter.AuthorName); name != "" {
		q = q.Where("LOWER(theses.author_name) LIKE ?", likePattern(name))
	}
	if term := strings.TrimSpace(filter.Query); term != "" {
		like := likePattern(term)
		q = q.Where(
			"(LOWER(theses.title) LIKE ? OR LOWER(theses.abstract) LIKE ? OR LOWER(theses.keywords) LIKE ?)",
			like, like, like,
		)
	}

	switch filter.Sort {
	case SortViews:
		q = q.Order("theses.view_count DESC").Order("theses.id DESC")
	case SortCitations:
		q = q.Order("theses.bibliography_count DESC").Order("theses.id DESC")
	default:
		q = q.Order("theses.created_at DESC").Order("theses.id DESC")
	}

	if filter.Limit > 0 {
		q = q.Limit(filter.Limit)
	}
	if filter.Offset > 0 {
		q = q.Offset(filter.Offset)
	}

	out := []models.ThesisSummary{}
	if err := q.Scan(&out).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return out, nil
}

func likePattern(term string) string {
	return "%" + strings.ToLower(term) + "%"
}

func (r *thesisRepository) GetByID(ctx context.Context, id uint) (*models.Thesis, error) {
	var thesis models.Thesis
	err := readDB(r.db).WithContext(ctx).
		Preload("Department.Faculty").
		Preload("Advisor").
		First(&thesis, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Thesis", id)
		}
		return nil, models.NewInternalError(err)
	}
	return &thesis, nil
}

func (r *thesisRepository) Exists(ctx context.Context, id uint) (bool, error) {
	var n int64
	if err := readDB(r.db).WithContext(ctx).Model(&models.Thesis{}).Where("id = ?", id).Count(&n).Error; err != nil {
		return false, models.NewInternalError(err)
	}
	return n > 0, nil
}

func (r *thesisRepository) Create(ctx context.Context, thesis *models.Thesis) error {
	if err := r.db.WithContext(ctx).Omit("Department", "Advisor", "SubmittedBy").Create(thesis).Error; err != nil {
		if isForeignKeyError(err) {
			return models.NewValidationError("Unknown department or advisor")
		}
		r.log.LogError(ctx, err, "create")
		return models.NewInternalError(err)
	}
	r.log.LogCreate(ctx, map[string]any{"thesis_id": thesis.ID})
	return nil
}

func (r *thesisRepository) Update(ctx context.Context, id uint, updates map[string]any) error {
	if len(updates) == 0 {
		return nil
	}
	res := r.db.WithContext(ctx).Model(&models.Thesis{ID: id}).Updates(updates)
	if res.Error != nil {
		if isForeignKeyError(res.Error) {
			return models.NewValidationError("Unknown department or advisor")
		}
		return models.NewInternalError(res.Error)
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("Thesis", id)
	}
	r.log.LogUpdate(ctx, map[string]any{"thesis_id": id})
	return nil
}

// Delete removes a thesis with its comments, citations, view events and
// favorites in one transaction.
func (r *thesisRepository) Delete(ctx context.Context, id uint) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, child := range []any{&models.Comment{}, &models.Citation{}, &models.ViewEvent{}, &models.Favorite{}} {
			if err := tx.Where("thesis_id = ?", id).Delete(child).Error; err != nil {
				return err
			}
		}
		res := tx.Delete(&models.Thesis{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return models.NewNotFoundError("Thesis", id)
		}
		return nil
	})
	if err != nil {
		var appErr *models.AppError
		if errors.As(err, &appErr) {
			return appErr
		}
		r.log.LogError(ctx, err, "delete")
		return models.NewInternalError(err)
	}
	r.log.LogDelete(ctx, map[string]any{"thesis_id": id})
	return nil
}

// IncrementDownloads bumps download_count and returns the new value.
func (r *thesisRepository) IncrementDownloads(ctx context.Context, id uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Thesis{}).Where("id = ?", id).
			UpdateColumn("download_count", gorm.Expr("download_count + 1"))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return models.NewNotFoundError("Thesis", id)
		}
		return tx.Model(&models.Thesis{}).Where("id = ?", id).Pluck("download_count", &count).Error
	})
	if err != nil {
		var appErr *models.AppError
		if errors.As(err, &appErr) {
			return 0, appErr
		}
		return 0, models.NewInternalError(err)
	}
	return count, nil
}

func (r *thesisRepository) AdvisorStats(ctx context.Context, advisorID uint) (*models.AdvisorStats, error) {
	var stats models.AdvisorStats
	err := readDB(r.db).WithContext(ctx).
		Model(&models.Thesis{}).
		Select("COUNT(*) AS thesis_count, "+
			"COALESCE(SUM(bibliography_count), 0) AS total_citations, "+
			"COALESCE(SUM(view_count), 0) AS total_views, "+
			"COALESCE(SUM(download_count), 0) AS total_downloads").
		Where("advisor_id = ?", advisorID).
		Scan(&stats).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return &stats, nil
}

// Recount recomputes bibliography_count and view_count from the detail rows
// for one thesis, or for every thesis when thesisID is 0. It returns the
// number of theses rewritten.
func (r *thesisRepository) Recount(ctx context.Context, thesisID uint) (int64, error) {
	q := r.db.WithContext(ctx).Model(&models.Thesis{})
	if thesisID != 0 {
		q = q.Where("id = ?", thesisID)
	} else {
		q = q.Where("1 = 1")
	}
	res := q.UpdateColumns(map[string]any{
		"bibliography_count": gorm.Expr("(SELECT COUNT(*) FROM citations WHERE citations.thesis_id = theses.id)"),
		"view_count":         gorm.Expr("(SELECT COUNT(*) FROM view_events WHERE view_events.thesis_id = theses.id)"),
	})
	if res.Error != nil {
		return 0, models.NewInternalError(res.Error)
	}
	r.log.LogUpdate(ctx, map[string]any{"recount": res.RowsAffected})
	return res.RowsAffected, nil
}
