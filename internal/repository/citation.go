package repository

import (
	"context"
	"errors"

	"thesisrepo/internal/models"
	"thesisrepo/internal/observability"

	"gorm.io/gorm"
)

// CitationRepository persists citations. Every insert and delete moves the
// thesis bibliography_count in the same transaction.
type CitationRepository interface {
	ListByThesis(ctx context.Context, thesisID uint) ([]models.Citation, error)
	GetByID(ctx context.Context, id uint) (*models.Citation, error)
	Create(ctx context.Context, citation *models.Citation) (int64, error)
	Update(ctx context.Context, citation *models.Citation) error
	Delete(ctx context.Context, id uint) error
}

type citationRepository struct {
	db  *gorm.DB
	log *observability.RepoLogger
}

// NewCitationRepository creates a new CitationRepository
func NewCitationRepository(db *gorm.DB) CitationRepository {
	return &citationRepository{db: db, log: observability.NewRepoLogger("citations")}
}

// ListByThesis returns citations newest first.
func (r *citationRepository) ListByThesis(ctx context.Context, thesisID uint) ([]models.Citation, error) {
	citations := []models.Citation{}
	err := readDB(r.db).WithContext(ctx).
		Where("thesis_id = ?", thesisID).
		Order("created_at DESC").
		Order("id DESC").
		Find(&citations).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return citations, nil
}

func (r *citationRepository) GetByID(ctx context.Context, id uint) (*models.Citation, error) {
	var citation models.Citation
	if err := r.db.WithContext(ctx).First(&citation, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Citation", id)
		}
		return nil, models.NewInternalError(err)
	}
	return &citation, nil
}

// Create inserts the citation and returns the thesis's new bibliography_count.
func (r *citationRepository) Create(ctx context.Context, citation *models.Citation) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Thesis{}).Where("id = ?", citation.ThesisID).
			UpdateColumn("bibliography_count", gorm.Expr("bibliography_count + 1"))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return models.NewNotFoundError("Thesis", citation.ThesisID)
		}
		if err := tx.Omit("User").Create(citation).Error; err != nil {
			return err
		}
		return tx.Model(&models.Thesis{}).Where("id = ?", citation.ThesisID).
			Pluck("bibliography_count", &count).Error
	})
	if err != nil {
		var appErr *models.AppError
		if errors.As(err, &appErr) {
			return 0, appErr
		}
		r.log.LogError(ctx, err, "create")
		return 0, models.NewInternalError(err)
	}
	observability.CitationEvents.WithLabelValues("added").Inc()
	r.log.LogCreate(ctx, map[string]any{"citation_id": citation.ID, "thesis_id": citation.ThesisID})
	return count, nil
}

func (r *citationRepository) Update(ctx context.Context, citation *models.Citation) error {
	err := r.db.WithContext(ctx).Model(citation).
		Select("authors", "publication_type", "year_published", "citation_context").
		Updates(citation).Error
	if err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

// Delete removes the citation and decrements the counter, never below zero.
func (r *citationRepository) Delete(ctx context.Context, id uint) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var citation models.Citation
		if err := tx.Select("id", "thesis_id").First(&citation, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return models.NewNotFoundError("Citation", id)
			}
			return err
		}
		if err := tx.Delete(&models.Citation{}, id).Error; err != nil {
			return err
		}
		return tx.Model(&models.Thesis{}).Where("id = ?", citation.ThesisID).
			UpdateColumn("bibliography_count",
				gorm.Expr("CASE WHEN bibliography_count > 0 THEN bibliography_count - 1 ELSE 0 END")).Error
	})
	if err != nil {
		var appErr *models.AppError
		if errors.As(err, &appErr) {
			return appErr
		}
		r.log.LogError(ctx, err, "delete")
		return models.NewInternalError(err)
	}
	observability.CitationEvents.WithLabelValues("removed").Inc()
	r.log.LogDelete(ctx, map[string]any{"citation_id": id})
	return nil
}
