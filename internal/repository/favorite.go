package repository

import (
	"context"

	"thesisrepo/internal/models"

	"gorm.io/gorm"
)

// FavoriteRepository manages per-user thesis bookmarks.
type FavoriteRepository interface {
	Add(ctx context.Context, userID, thesisID uint) (*models.Favorite, error)
	Remove(ctx context.Context, userID, thesisID uint) error
	Exists(ctx context.Context, userID, thesisID uint) (bool, error)
	ListByUser(ctx context.Context, userID uint) ([]models.Favorite, error)
}

type favoriteRepository struct {
	db *gorm.DB
}

// NewFavoriteRepository creates a new FavoriteRepository
func NewFavoriteRepository(db *gorm.DB) FavoriteRepository {
	return &favoriteRepository{db: db}
}

func (r *favoriteRepository) Add(ctx context.Context, userID, thesisID uint) (*models.Favorite, error) {
	fav := &models.Favorite{UserID: userID, ThesisID: thesisID}
	if err := r.db.WithContext(ctx).Omit("User", "Thesis").Create(fav).Error; err != nil {
		if isUniqueConstraintError(err) {
			return nil, models.NewConflictError("Thesis is already in favorites")
		}
		if isForeignKeyError(err) {
			return nil, models.NewNotFoundError("Thesis", thesisID)
		}
		return nil, models.NewInternalError(err)
	}
	return fav, nil
}

func (r *favoriteRepository) Remove(ctx context.Context, userID, thesisID uint) error {
	res := r.db.WithContext(ctx).
		Where("user_id = ? AND thesis_id = ?", userID, thesisID).
		Delete(&models.Favorite{})
	if res.Error != nil {
		return models.NewInternalError(res.Error)
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("Favorite", thesisID)
	}
	return nil
}

func (r *favoriteRepository) Exists(ctx context.Context, userID, thesisID uint) (bool, error) {
	var n int64
	err := readDB(r.db).WithContext(ctx).Model(&models.Favorite{}).
		Where("user_id = ? AND thesis_id = ?", userID, thesisID).
		Count(&n).Error
	if err != nil {
		return false, models.NewInternalError(err)
	}
	return n > 0, nil
}

// ListByUser returns favorites newest first with their thesis loaded.
func (r *favoriteRepository) ListByUser(ctx context.Context, userID uint) ([]models.Favorite, error) {
	favs := []models.Favorite{}
	err := readDB(r.db).WithContext(ctx).
		Preload("Thesis").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Order("id DESC").
		Find(&favs).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return favs, nil
}
