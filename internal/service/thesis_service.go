package service

import (
	"context"
	"fmt"
	"strings"

	"thesisrepo/internal/content"
	"thesisrepo/internal/models"
	"thesisrepo/internal/repository"
	"thesisrepo/internal/validation"
)

type ThesisService struct {
	thesisRepo repository.ThesisRepository
	userRepo   repository.UserRepository
	lookupRepo repository.LookupRepository
	now        clock
}

type CreateThesisInput struct {
	ActorID         uint   `json:"-"`
	Title           string `json:"title" validate:"notblank,max=300"`
	Abstract        string `json:"abstract" validate:"notblank,max=20000"`
	Keywords        string `json:"keywords" validate:"max=1000"`
	PublicationYear int    `json:"publication_year" validate:"required"`
	DepartmentID    uint   `json:"department_id" validate:"required"`
	AdvisorID       *uint  `json:"advisor_id"`
}

type UpdateThesisInput struct {
	ActorID         uint
	ThesisID        uint
	Title           *string
	Abstract        *string
	Keywords        *string
	PublicationYear *int
	DepartmentID    *uint
	AdvisorID       *uint
}

func NewThesisService(
	thesisRepo repository.ThesisRepository,
	userRepo repository.UserRepository,
	lookupRepo repository.LookupRepository,
) *ThesisService {
	return &ThesisService{
		thesisRepo: thesisRepo,
		userRepo:   userRepo,
		lookupRepo: lookupRepo,
		now:        systemClock,
	}
}

func (s *ThesisService) List(ctx context.Context, filter repository.ThesisFilter) ([]models.ThesisSummary, error) {
	return s.thesisRepo.List(ctx, filter)
}

// Get returns the thesis with abstract_html rendered.
func (s *ThesisService) Get(ctx context.Context, id uint) (*models.Thesis, error) {
	thesis, err := s.thesisRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	thesis.AbstractHTML = content.RenderMarkdown(thesis.Abstract)
	return thesis, nil
}

// Create stores a thesis authored by the caller.
func (s *ThesisService) Create(ctx context.Context, in CreateThesisInput) (*models.Thesis, error) {
	if err := validation.Struct(in); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	if err := s.checkYear(in.PublicationYear); err != nil {
		return nil, err
	}
	author, err := loadActor(ctx, s.userRepo, in.ActorID)
	if err != nil {
		return nil, err
	}
	if _, err := s.lookupRepo.GetDepartment(ctx, in.DepartmentID); err != nil {
		if isNotFound(err) {
			return nil, models.NewValidationError("Unknown department")
		}
		return nil, err
	}
	if err := s.checkAdvisor(ctx, in.AdvisorID); err != nil {
		return nil, err
	}

	authorID := author.ID
	thesis := &models.Thesis{
		Title:           strings.TrimSpace(in.Title),
		Abstract:        strings.TrimSpace(in.Abstract),
		Keywords:        strings.TrimSpace(in.Keywords),
		AuthorName:      author.FullName,
		PublicationYear: in.PublicationYear,
		DepartmentID:    in.DepartmentID,
		AdvisorID:       in.AdvisorID,
		SubmittedByID:   &authorID,
	}
	if err := s.thesisRepo.Create(ctx, thesis); err != nil {
		return nil, err
	}
	return s.Get(ctx, thesis.ID)
}

// Update applies the non-nil fields. The author, the thesis's advisor and
// admins may edit.
func (s *ThesisService) Update(ctx context.Context, in UpdateThesisInput) (*models.Thesis, error) {
	actor, err := loadActor(ctx, s.userRepo, in.ActorID)
	if err != nil {
		return nil, err
	}
	thesis, err := s.thesisRepo.GetByID(ctx, in.ThesisID)
	if err != nil {
		return nil, err
	}
	if !actor.IsAdmin() && !ownedBy(thesis.SubmittedByID, actor.ID) && !ownedBy(thesis.AdvisorID, actor.ID) {
		return nil, models.NewForbiddenError("You are not allowed to edit this thesis")
	}

	updates := map[string]any{}
	if in.Title != nil {
		t := strings.TrimSpace(*in.Title)
		if t == "" || len(t) > 300 {
			return nil, models.NewValidationError("title must be 1-300 characters")
		}
		updates["title"] = t
	}
	if in.Abstract != nil {
		a := strings.TrimSpace(*in.Abstract)
		if a == "" {
			return nil, models.NewValidationError("abstract is required")
		}
		updates["abstract"] = a
	}
	if in.Keywords != nil {
		updates["keywords"] = strings.TrimSpace(*in.Keywords)
	}
	if in.PublicationYear != nil {
		if err := s.checkYear(*in.PublicationYear); err != nil {
			return nil, err
		}
		updates["publication_year"] = *in.PublicationYear
	}
	if in.DepartmentID != nil {
		if _, err := s.lookupRepo.GetDepartment(ctx, *in.DepartmentID); err != nil {
			if isNotFound(err) {
				return nil, models.NewValidationError("Unknown department")
			}
			return nil, err
		}
		updates["department_id"] = *in.DepartmentID
	}
	if in.AdvisorID != nil {
		if err := s.checkAdvisor(ctx, in.AdvisorID); err != nil {
			return nil, err
		}
		updates["advisor_id"] = *in.AdvisorID
	}

	if err := s.thesisRepo.Update(ctx, thesis.ID, updates); err != nil {
		return nil, err
	}
	return s.Get(ctx, thesis.ID)
}

func (s *ThesisService) Delete(ctx context.Context, id uint) error {
	return s.thesisRepo.Delete(ctx, id)
}

// Download counts a download and returns the new download_count.
func (s *ThesisService) Download(ctx context.Context, id uint) (int64, error) {
	return s.thesisRepo.IncrementDownloads(ctx, id)
}

func (s *ThesisService) AdvisorStats(ctx context.Context, advisorID uint) (*models.AdvisorStats, error) {
	if _, err := s.userRepo.GetByID(ctx, advisorID); err != nil {
		return nil, err
	}
	return s.thesisRepo.AdvisorStats(ctx, advisorID)
}

// Recount rebuilds the denormalized counters from detail rows.
func (s *ThesisService) Recount(ctx context.Context, thesisID uint) (int64, error) {
	return s.thesisRepo.Recount(ctx, thesisID)
}

func (s *ThesisService) checkYear(year int) error {
	nowYear := s.now().Year()
	if !validYear(year, nowYear) {
		return models.NewValidationError(fmt.Sprintf("publication_year must be between %d and %d", minYear, nowYear+1))
	}
	return nil
}

func (s *ThesisService) checkAdvisor(ctx context.Context, advisorID *uint) error {
	if advisorID == nil {
		return nil
	}
	advisor, err := s.userRepo.GetByID(ctx, *advisorID)
	if err != nil {
		if isNotFound(err) {
			return models.NewValidationError("Unknown advisor")
		}
		return err
	}
	if !advisor.IsAdvisor() {
		return models.NewValidationError("advisor_id must reference an advisor")
	}
	return nil
}
