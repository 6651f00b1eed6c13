package service

import (
	"context"
	"strconv"
	"strings"

	"thesisrepo/internal/analytics"
	"thesisrepo/internal/models"
	"thesisrepo/internal/observability"
	"thesisrepo/internal/repository"
)

// AnalyticsService loads rows for one thesis and hands them to the
// analytics package.
type AnalyticsService struct {
	thesisRepo   repository.ThesisRepository
	citationRepo repository.CitationRepository
	viewRepo     repository.ViewRepository
	now          clock
}

func NewAnalyticsService(
	thesisRepo repository.ThesisRepository,
	citationRepo repository.CitationRepository,
	viewRepo repository.ViewRepository,
) *AnalyticsService {
	return &AnalyticsService{
		thesisRepo:   thesisRepo,
		citationRepo: citationRepo,
		viewRepo:     viewRepo,
		now:          systemClock,
	}
}

// ParseWindow reads a window query value. Empty means the default for g;
// anything that is not an integer is rejected; integers are clamped.
func ParseWindow(g analytics.Granularity, raw string) (int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return analytics.DefaultWindow(g), nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, models.NewValidationError("window must be an integer")
	}
	return analytics.ClampWindow(g, n), nil
}

// Impact returns the unrounded impact score; display precision is up to the client.
func (s *AnalyticsService) Impact(ctx context.Context, thesisID uint) (float64, error) {
	span, ctx := observability.StartSpan(ctx, "analytics.impact", observability.ThesisAttr(thesisID))
	defer span.End()

	citations, err := s.citations(ctx, thesisID)
	if err != nil {
		return 0, err
	}
	impact := analytics.Impact(citations, s.now().Year())
	observability.ImpactScore.Observe(impact)
	return impact, nil
}

func (s *AnalyticsService) CitationsByYear(ctx context.Context, thesisID uint) ([]analytics.YearCount, error) {
	citations, err := s.citations(ctx, thesisID)
	if err != nil {
		return nil, err
	}
	return analytics.ByYear(citations), nil
}

func (s *AnalyticsService) CitationsByType(ctx context.Context, thesisID uint) ([]analytics.TypeCount, error) {
	citations, err := s.citations(ctx, thesisID)
	if err != nil {
		return nil, err
	}
	return analytics.ByType(citations), nil
}

// Views returns the bucketed view series of a thesis over window buckets
// ending now.
func (s *AnalyticsService) Views(ctx context.Context, thesisID uint, g analytics.Granularity, window int) ([]analytics.BucketCount, error) {
	span, ctx := observability.StartSpan(ctx, "analytics.views_"+g.String(),
		observability.ThesisAttr(thesisID), observability.AttrWindow.Int(window))
	defer span.End()

	if err := s.requireThesis(ctx, thesisID); err != nil {
		return nil, err
	}
	now := s.now().UTC()
	events, err := s.viewRepo.ListSince(ctx, thesisID, analytics.WindowStart(g, window, now))
	if err != nil {
		span.Fail(err)
		return nil, err
	}
	return analytics.ViewsBucketed(events, g, window, now), nil
}

// RecordView appends a view event and bumps view_count atomically.
func (s *AnalyticsService) RecordView(ctx context.Context, thesisID uint) error {
	return s.viewRepo.Record(ctx, thesisID, s.now())
}

func (s *AnalyticsService) citations(ctx context.Context, thesisID uint) ([]models.Citation, error) {
	if err := s.requireThesis(ctx, thesisID); err != nil {
		return nil, err
	}
	return s.citationRepo.ListByThesis(ctx, thesisID)
}

func (s *AnalyticsService) requireThesis(ctx context.Context, thesisID uint) error {
	ok, err := s.thesisRepo.Exists(ctx, thesisID)
	if err != nil {
		return err
	}
	if !ok {
		return models.NewNotFoundError("Thesis", thesisID)
	}
	return nil
}
