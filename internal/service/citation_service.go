package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"thesisrepo/internal/models"
	"thesisrepo/internal/notifications"
	"thesisrepo/internal/observability"
	"thesisrepo/internal/repository"
	"thesisrepo/internal/validation"
)

// QuickCitationType is the publication type recorded by the cite action.
const QuickCitationType = "other"

type CitationService struct {
	citationRepo repository.CitationRepository
	thesisRepo   repository.ThesisRepository
	userRepo     repository.UserRepository
	events       EventPublisher
	now          clock
}

type AddCitationInput struct {
	ThesisID        uint    `json:"-"`
	UserID          uint    `json:"-"`
	Authors         string  `json:"authors" validate:"notblank,max=1000"`
	PublicationType string  `json:"publication_type" validate:"notblank,max=120"`
	YearPublished   *int    `json:"year_published"`
	CitationContext *string `json:"citation_context" validate:"omitempty,max=5000"`
}

// UpdateCitationInput keeps authors and publication_type when they are nil
// or blank; year and context are always replaced.
type UpdateCitationInput struct {
	ActorID         uint
	CitationID      uint
	Authors         *string
	PublicationType *string
	YearPublished   *int
	CitationContext *string
}

func NewCitationService(
	citationRepo repository.CitationRepository,
	thesisRepo repository.ThesisRepository,
	userRepo repository.UserRepository,
	events EventPublisher,
) *CitationService {
	return &CitationService{
		citationRepo: citationRepo,
		thesisRepo:   thesisRepo,
		userRepo:     userRepo,
		events:       events,
		now:          systemClock,
	}
}

func (s *CitationService) List(ctx context.Context, thesisID uint) ([]models.Citation, error) {
	if err := s.requireThesis(ctx, thesisID); err != nil {
		return nil, err
	}
	return s.citationRepo.ListByThesis(ctx, thesisID)
}

// Add stores a citation and returns it with the thesis's new
// bibliography_count.
func (s *CitationService) Add(ctx context.Context, in AddCitationInput) (*models.Citation, int64, error) {
	in.Authors = strings.TrimSpace(in.Authors)
	in.PublicationType = strings.TrimSpace(in.PublicationType)
	if err := validation.Struct(in); err != nil {
		return nil, 0, models.NewValidationError(err.Error())
	}
	if err := s.checkYear(in.YearPublished); err != nil {
		return nil, 0, err
	}
	if _, err := loadActor(ctx, s.userRepo, in.UserID); err != nil {
		return nil, 0, err
	}

	userID := in.UserID
	citation := &models.Citation{
		ThesisID:        in.ThesisID,
		UserID:          &userID,
		Authors:         in.Authors,
		PublicationType: in.PublicationType,
		YearPublished:   in.YearPublished,
		CitationContext: trimmedOrNil(in.CitationContext),
	}
	count, err := s.citationRepo.Create(ctx, citation)
	if err != nil {
		return nil, 0, err
	}
	s.published(ctx, citation, count)
	return citation, count, nil
}

// Cite records a quick citation attributed to the caller.
func (s *CitationService) Cite(ctx context.Context, thesisID, userID uint) (int64, error) {
	actor, err := loadActor(ctx, s.userRepo, userID)
	if err != nil {
		return 0, err
	}
	uid := actor.ID
	citation := &models.Citation{
		ThesisID:        thesisID,
		UserID:          &uid,
		Authors:         actor.FullName,
		PublicationType: QuickCitationType,
	}
	count, err := s.citationRepo.Create(ctx, citation)
	if err != nil {
		return 0, err
	}
	s.published(ctx, citation, count)
	return count, nil
}

func (s *CitationService) Update(ctx context.Context, in UpdateCitationInput) (*models.Citation, error) {
	citation, err := s.manageable(ctx, in.ActorID, in.CitationID)
	if err != nil {
		return nil, err
	}

	if in.Authors != nil {
		if a := strings.TrimSpace(*in.Authors); a != "" {
			citation.Authors = a
		}
	}
	if in.PublicationType != nil {
		if p := strings.TrimSpace(*in.PublicationType); p != "" {
			if len(p) > 120 {
				return nil, models.NewValidationError("publication_type must be at most 120")
			}
			citation.PublicationType = p
		}
	}
	if err := s.checkYear(in.YearPublished); err != nil {
		return nil, err
	}
	citation.YearPublished = in.YearPublished
	citation.CitationContext = trimmedOrNil(in.CitationContext)

	if err := s.citationRepo.Update(ctx, citation); err != nil {
		return nil, err
	}
	return citation, nil
}

func (s *CitationService) Delete(ctx context.Context, actorID, citationID uint) error {
	if _, err := s.manageable(ctx, actorID, citationID); err != nil {
		return err
	}
	return s.citationRepo.Delete(ctx, citationID)
}

// manageable loads the citation if actorID submitted it or is an admin.
func (s *CitationService) manageable(ctx context.Context, actorID, citationID uint) (*models.Citation, error) {
	actor, err := loadActor(ctx, s.userRepo, actorID)
	if err != nil {
		return nil, err
	}
	citation, err := s.citationRepo.GetByID(ctx, citationID)
	if err != nil {
		return nil, err
	}
	if !actor.IsAdmin() && !ownedBy(citation.UserID, actor.ID) {
		return nil, models.NewForbiddenError("You can only change citations you added")
	}
	return citation, nil
}

func (s *CitationService) checkYear(year *int) error {
	if year == nil {
		return nil
	}
	nowYear := s.now().Year()
	if !validYear(*year, nowYear) {
		return models.NewValidationError(fmt.Sprintf("year_published must be between %d and %d", minYear, nowYear+1))
	}
	return nil
}

func (s *CitationService) requireThesis(ctx context.Context, thesisID uint) error {
	ok, err := s.thesisRepo.Exists(ctx, thesisID)
	if err != nil {
		return err
	}
	if !ok {
		return models.NewNotFoundError("Thesis", thesisID)
	}
	return nil
}

func (s *CitationService) published(ctx context.Context, c *models.Citation, count int64) {
	if s.events == nil {
		return
	}
	err := s.events.PublishEvent(ctx, notifications.Event{
		Type:       notifications.EventCitationAdded,
		ThesisID:   c.ThesisID,
		ResourceID: c.ID,
		Data:       map[string]any{"bibliography_count": count},
	})
	if err != nil {
		observability.GlobalLogger.WarnContext(ctx, "failed to publish event",
			slog.String("type", notifications.EventCitationAdded),
			slog.String("error", err.Error()),
		)
	}
}

func trimmedOrNil(s *string) *string {
	if s == nil {
		return nil
	}
	t := strings.TrimSpace(*s)
	if t == "" {
		return nil
	}
	return &t
}
