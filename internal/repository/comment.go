package repository

import (
	"context"
	"errors"

	"thesisrepo/internal/models"
	"thesisrepo/internal/observability"

	"gorm.io/gorm"
)

// CommentRepository defines interface for comment operations
type CommentRepository interface {
	Create(ctx context.Context, comment *models.Comment) error
	GetByID(ctx context.Context, id uint) (*models.Comment, error)
	ListByThesis(ctx context.Context, thesisID uint) ([]models.Comment, error)
	ListByStatus(ctx context.Context, status models.CommentStatus, limit, offset int) ([]models.Comment, error)
	UpdateStatus(ctx context.Context, id uint, status models.CommentStatus, reason *string) error
	DeleteSubtree(ctx context.Context, id uint) (int64, error)
}

type commentRepository struct {
	db  *gorm.DB
	log *observability.RepoLogger
}

// NewCommentRepository creates a new CommentRepository
func NewCommentRepository(db *gorm.DB) CommentRepository {
	return &commentRepository{db: db, log: observability.NewRepoLogger("comments")}
}

func (r *commentRepository) Create(ctx context.Context, comment *models.Comment) error {
	if err := r.db.WithContext(ctx).Omit("User", "Replies").Create(comment).Error; err != nil {
		if isForeignKeyError(err) {
			return models.NewValidationError("Unknown thesis or parent comment")
		}
		r.log.LogError(ctx, err, "create")
		return models.NewInternalError(err)
	}
	r.log.LogCreate(ctx, map[string]any{"comment_id": comment.ID, "thesis_id": comment.ThesisID})
	return nil
}

func (r *commentRepository) GetByID(ctx context.Context, id uint) (*models.Comment, error) {
	var comment models.Comment
	if err := r.db.WithContext(ctx).Preload("User").First(&comment, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Comment", id)
		}
		return nil, models.NewInternalError(err)
	}
	return &comment, nil
}

// ListByThesis returns every comment of a thesis regardless of status,
// oldest first with id as tiebreaker.
func (r *commentRepository) ListByThesis(ctx context.Context, thesisID uint) ([]models.Comment, error) {
	defer observability.TrackQuery("list", "comments")()

	comments := []models.Comment{}
	err := readDB(r.db).WithContext(ctx).
		Preload("User").
		Where("thesis_id = ?", thesisID).
		Order("created_at ASC").
		Order("id ASC").
		Find(&comments).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return comments, nil
}

// ListByStatus is the moderation queue, oldest first.
func (r *commentRepository) ListByStatus(ctx context.Context, status models.CommentStatus, limit, offset int) ([]models.Comment, error) {
	q := r.db.WithContext(ctx).
		Preload("User").
		Where("status = ?", status).
		Order("created_at ASC").
		Order("id ASC")
	if limit > 0 {
		q = q.Limit(limit).Offset(offset)
	}

	comments := []models.Comment{}
	err := q.Find(&comments).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return comments, nil
}

func (r *commentRepository) UpdateStatus(ctx context.Context, id uint, status models.CommentStatus, reason *string) error {
	res := r.db.WithContext(ctx).Model(&models.Comment{}).Where("id = ?", id).Updates(map[string]any{
		"status":          status,
		"rejected_reason": reason,
	})
	if res.Error != nil {
		return models.NewInternalError(res.Error)
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("Comment", id)
	}
	r.log.LogUpdate(ctx, map[string]any{"comment_id": id, "status": status})
	return nil
}

// DeleteSubtree removes a comment and all of its transitive replies in one
// transaction and returns the number of rows removed. Descendants are
// collected level by level and deleted deepest level first. The count is the
// size of the collected subtree, since an FK cascade may remove rows before
// the statement that names them runs.
func (r *commentRepository) DeleteSubtree(ctx context.Context, id uint) (int64, error) {
	ctx, span := observability.StartQuerySpan(ctx, "comments", "delete_subtree")
	defer span.End()

	var deleted int64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var root models.Comment
		if err := tx.Select("id").First(&root, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return models.NewNotFoundError("Comment", id)
			}
			return err
		}

		levels := [][]uint{{id}}
		seen := map[uint]bool{id: true}
		total := 1
		for frontier := levels[0]; len(frontier) > 0; {
			var children []uint
			if err := tx.Model(&models.Comment{}).
				Where("parent_comment_id IN ?", frontier).
				Pluck("id", &children).Error; err != nil {
				return err
			}
			next := make([]uint, 0, len(children))
			for _, child := range children {
				if seen[child] {
					continue
				}
				seen[child] = true
				next = append(next, child)
			}
			if len(next) > 0 {
				levels = append(levels, next)
				total += len(next)
			}
			frontier = next
		}

		for i := len(levels) - 1; i >= 0; i-- {
			if err := tx.Where("id IN ?", levels[i]).Delete(&models.Comment{}).Error; err != nil {
				return err
			}
		}
		deleted = int64(total)
		return nil
	})
	if err != nil {
		var appErr *models.AppError
		if errors.As(err, &appErr) {
			return 0, appErr
		}
		r.log.LogError(ctx, err, "delete")
		return 0, models.NewInternalError(err)
	}
	r.log.LogDelete(ctx, map[string]any{"comment_id": id, "deleted": deleted})
	return deleted, nil
}
