package repository

import (
	"context"
	"errors"
	"time"

	"thesisrepo/internal/models"
	"thesisrepo/internal/observability"

	"gorm.io/gorm"
)

// ViewRepository stores view events.
type ViewRepository interface {
	Record(ctx context.Context, thesisID uint, at time.Time) error
	ListSince(ctx context.Context, thesisID uint, since time.Time) ([]models.ViewEvent, error)
}

type viewRepository struct {
	db *gorm.DB
}

// NewViewRepository creates a new ViewRepository
func NewViewRepository(db *gorm.DB) ViewRepository {
	return &viewRepository{db: db}
}

// Record bumps view_count and appends a view event in one transaction.
func (r *viewRepository) Record(ctx context.Context, thesisID uint, at time.Time) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Thesis{}).Where("id = ?", thesisID).
			UpdateColumn("view_count", gorm.Expr("view_count + 1"))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return models.NewNotFoundError("Thesis", thesisID)
		}
		return tx.Create(&models.ViewEvent{ThesisID: thesisID, ViewedAt: at.UTC()}).Error
	})
	if err != nil {
		var appErr *models.AppError
		if errors.As(err, &appErr) {
			return appErr
		}
		return models.NewInternalError(err)
	}
	observability.ViewsRecorded.Inc()
	return nil
}

// ListSince returns the thesis's view events at or after since.
func (r *viewRepository) ListSince(ctx context.Context, thesisID uint, since time.Time) ([]models.ViewEvent, error) {
	defer observability.TrackQuery("list", "view_events")()

	events := []models.ViewEvent{}
	err := readDB(r.db).WithContext(ctx).
		Where("thesis_id = ? AND viewed_at >= ?", thesisID, since.UTC()).
		Order("viewed_at ASC").
		Find(&events).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return events, nil
}
