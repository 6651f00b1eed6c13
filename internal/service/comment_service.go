package service

import (
	"context"
	"log/slog"
	"strings"

	"thesisrepo/internal/content"
	"thesisrepo/internal/models"
	"thesisrepo/internal/notifications"
	"thesisrepo/internal/observability"
	"thesisrepo/internal/repository"
	"thesisrepo/internal/thread"

)

const maxCommentLen = 5000

type CommentService struct {
	commentRepo repository.CommentRepository
	thesisRepo  repository.ThesisRepository
	userRepo    repository.UserRepository
	events      EventPublisher
}

type SubmitCommentInput struct {
	ThesisID        uint
	UserID          uint
	Text            string
	ParentCommentID *uint
}

type DeleteCommentInput struct {
	UserID    uint
	CommentID uint
}

type ModerateCommentInput struct {
	ModeratorID uint
	CommentID   uint
	Status      models.CommentStatus
	Reason      string
}

func NewCommentService(
	commentRepo repository.CommentRepository,
	thesisRepo repository.ThesisRepository,
	userRepo repository.UserRepository,
	events EventPublisher,
) *CommentService {
	return &CommentService{
		commentRepo: commentRepo,
		thesisRepo:  thesisRepo,
		userRepo:    userRepo,
		events:      events,
	}
}

// InitialStatus is the moderation status a new comment starts with.
// Students are moderated; advisors and admins publish directly.
func InitialStatus(roleID int) models.CommentStatus {
	if roleID == models.RoleAdvisor || roleID == models.RoleAdmin {
		return models.CommentStatusApproved
	}
	return models.CommentStatusPending
}

func (s *CommentService) Submit(ctx context.Context, in SubmitCommentInput) (*models.Comment, error) {
	span, ctx := observability.StartSpan(ctx, "comments.submit",
		observability.ThesisAttr(in.ThesisID), observability.UserAttr(in.UserID))
	defer span.End()

	text := content.PlainText(in.Text)
	if text == "" {
		return nil, models.NewValidationError("Comment text is required")
	}
	if len(text) > maxCommentLen {
		return nil, models.NewValidationError("Comment too long (max 5000 characters)")
	}

	author, err := loadActor(ctx, s.userRepo, in.UserID)
	if err != nil {
		return nil, err
	}

	ok, err := s.thesisRepo.Exists(ctx, in.ThesisID)
	if err != nil {
		span.Fail(err)
		return nil, err
	}
	if !ok {
		return nil, models.NewNotFoundError("Thesis", in.ThesisID)
	}

	if in.ParentCommentID != nil {
		parent, err := s.commentRepo.GetByID(ctx, *in.ParentCommentID)
		if err != nil {
			if isNotFound(err) {
				return nil, models.NewValidationError("Parent comment not found")
			}
			return nil, err
		}
		if parent.ThesisID != in.ThesisID {
			return nil, models.NewValidationError("Parent comment belongs to another thesis")
		}
	}

	userID := author.ID
	comment := &models.Comment{
		ThesisID:        in.ThesisID,
		UserID:          &userID,
		ParentCommentID: in.ParentCommentID,
		Content:         text,
		Status:          InitialStatus(author.RoleID),
	}
	if err := s.commentRepo.Create(ctx, comment); err != nil {
		span.Fail(err)
		return nil, err
	}
	comment.User = author

	observability.CommentsSubmitted.WithLabelValues(string(comment.Status)).Inc()
	s.publish(ctx, notifications.Event{
		Type:       notifications.EventCommentSubmitted,
		ThesisID:   comment.ThesisID,
		ActorID:    author.ID,
		ResourceID: comment.ID,
		Data:       map[string]any{"status": comment.Status},
	})
	return comment, nil
}

// List returns the thread of a thesis as seen by viewerID (0 for anonymous).
func (s *CommentService) List(ctx context.Context, thesisID, viewerID uint) ([]*thread.Node, error) {
	ok, err := s.thesisRepo.Exists(ctx, thesisID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, models.NewNotFoundError("Thesis", thesisID)
	}

	comments, err := s.commentRepo.ListByThesis(ctx, thesisID)
	if err != nil {
		return nil, err
	}

	forest := thread.Build(comments)
	if len(forest.CutCycles) > 0 {
		observability.ThreadCyclesCut.Add(float64(len(forest.CutCycles)))
		observability.GlobalLogger.WarnContext(ctx, "comment reply cycle cut",
			slog.Uint64("thesis_id", uint64(thesisID)),
			slog.Any("comment_ids", forest.CutCycles),
		)
	}
	return thread.Render(forest.Roots, viewerID), nil
}

// Delete removes the comment and its replies. Admins may delete any comment,
// advisors only their own.
func (s *CommentService) Delete(ctx context.Context, in DeleteCommentInput) (int64, error) {
	span, ctx := observability.StartSpan(ctx, "comments.delete_subtree",
		observability.CommentAttr(in.CommentID), observability.UserAttr(in.UserID))
	defer span.End()

	actor, err := loadActor(ctx, s.userRepo, in.UserID)
	if err != nil {
		return 0, err
	}

	comment, err := s.commentRepo.GetByID(ctx, in.CommentID)
	if err != nil {
		return 0, err
	}

	switch {
	case actor.IsAdmin():
	case actor.IsAdvisor() && ownedBy(comment.UserID, actor.ID):
	default:
		return 0, models.NewForbiddenError("You are not allowed to delete this comment")
	}

	deleted, err := s.commentRepo.DeleteSubtree(ctx, in.CommentID)
	if err != nil {
		span.Fail(err)
		return 0, err
	}
	observability.CommentsDeleted.Add(float64(deleted))
	observability.LogServiceCall(ctx, "CommentService", "Delete", map[string]any{
		"comment_id": in.CommentID,
		"deleted":    deleted,
		"actor_id":   actor.ID,
	})
	return deleted, nil
}

// Pending is the moderation queue.
func (s *CommentService) Pending(ctx context.Context, limit, offset int) ([]models.Comment, error) {
	return s.commentRepo.ListByStatus(ctx, models.CommentStatusPending, limit, offset)
}

func (s *CommentService) Moderate(ctx context.Context, in ModerateCommentInput) (*models.Comment, error) {
	var reason *string
	switch in.Status {
	case models.CommentStatusApproved:
	case models.CommentStatusRejected:
		r := strings.TrimSpace(in.Reason)
		if r == "" {
			return nil, models.NewValidationError("A reason is required when rejecting a comment")
		}
		reason = &r
	default:
		return nil, models.NewValidationError("Status must be approved or rejected")
	}

	comment, err := s.commentRepo.GetByID(ctx, in.CommentID)
	if err != nil {
		return nil, err
	}
	if err := s.commentRepo.UpdateStatus(ctx, comment.ID, in.Status, reason); err != nil {
		return nil, err
	}
	comment.Status = in.Status
	comment.RejectedReason = reason

	observability.CommentsModerated.WithLabelValues(string(in.Status)).Inc()
	ev := notifications.Event{
		Type:       notifications.EventCommentModerated,
		ThesisID:   comment.ThesisID,
		ActorID:    in.ModeratorID,
		ResourceID: comment.ID,
		Data:       map[string]any{"status": in.Status, "rejected_reason": reason},
	}
	s.publish(ctx, ev)
	if comment.UserID != nil && s.events != nil {
		if err := s.events.PublishUser(ctx, *comment.UserID, ev); err != nil {
			observability.GlobalLogger.WarnContext(ctx, "failed to notify comment author", slog.String("error", err.Error()))
		}
	}
	return comment, nil
}

func (s *CommentService) publish(ctx context.Context, ev notifications.Event) {
	if s.events == nil {
		return
	}
	if err := s.events.PublishEvent(ctx, ev); err != nil {
		observability.GlobalLogger.WarnContext(ctx, "failed to publish event",
			slog.String("type", ev.Type),
			slog.String("error", err.Error()),
		)
	}
}
