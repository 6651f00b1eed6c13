package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"thesisrepo/internal/models"
	"thesisrepo/internal/notifications"
	"thesisrepo/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// userRepoStub is a stub for repository.UserRepository.
type userRepoStub struct {
	getByIDFn      func(context.Context, uint) (*models.User, error)
	getByEmailFn   func(context.Context, string) (*models.User, error)
	createFn       func(context.Context, *models.User) error
	updateFn       func(context.Context, *models.User) error
	deleteFn       func(context.Context, uint) error
	listFn         func(context.Context, int, int) ([]models.User, error)
	listAdvisorsFn func(context.Context) ([]models.User, error)
}

func (s *userRepoStub) GetByID(ctx context.Context, id uint) (*models.User, error) {
	return s.getByIDFn(ctx, id)
}
func (s *userRepoStub) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.getByEmailFn(ctx, email)
}
func (s *userRepoStub) Create(ctx context.Context, user *models.User) error {
	return s.createFn(ctx, user)
}
func (s *userRepoStub) Update(ctx context.Context, user *models.User) error {
	return s.updateFn(ctx, user)
}
func (s *userRepoStub) Delete(ctx context.Context, id uint) error { return s.deleteFn(ctx, id) }
func (s *userRepoStub) List(ctx context.Context, limit, offset int) ([]models.User, error) {
	return s.listFn(ctx, limit, offset)
}
func (s *userRepoStub) ListAdvisors(ctx context.Context) ([]models.User, error) {
	return s.listAdvisorsFn(ctx)
}

// usersByID serves GetByID from a fixed set of users.
func usersByID(users ...models.User) *userRepoStub {
	byID := map[uint]models.User{}
	for _, u := range users {
		byID[u.ID] = u
	}
	return &userRepoStub{
		getByIDFn: func(_ context.Context, id uint) (*models.User, error) {
			u, ok := byID[id]
			if !ok {
				return nil, models.NewNotFoundError("User", id)
			}
			return &u, nil
		},
		getByEmailFn:   func(_ context.Context, _ string) (*models.User, error) { return nil, nil },
		createFn:       func(_ context.Context, _ *models.User) error { return nil },
		updateFn:       func(_ context.Context, _ *models.User) error { return nil },
		deleteFn:       func(_ context.Context, _ uint) error { return nil },
		listFn:         func(_ context.Context, _, _ int) ([]models.User, error) { return nil, nil },
		listAdvisorsFn: func(_ context.Context) ([]models.User, error) { return nil, nil },
	}
}

var (
	student  = models.User{ID: 1, FullName: "Selin Kaya", RoleID: models.RoleStudent, IsActive: true}
	advisor  = models.User{ID: 2, FullName: "Dr. Emre Aydin", RoleID: models.RoleAdvisor, IsActive: true}
	admin    = models.User{ID: 3, FullName: "Root Admin", RoleID: models.RoleAdmin, IsActive: true}
	inactive = models.User{ID: 4, FullName: "Gone", RoleID: models.RoleStudent, IsActive: false}
)

// thesisRepoStub is a stub for repository.ThesisRepository.
type thesisRepoStub struct {
	listFn         func(context.Context, repository.ThesisFilter) ([]models.ThesisSummary, error)
	getByIDFn      func(context.Context, uint) (*models.Thesis, error)
	existsFn       func(context.Context, uint) (bool, error)
	createFn       func(context.Context, *models.Thesis) error
	updateFn       func(context.Context, uint, map[string]any) error
	deleteFn       func(context.Context, uint) error
	downloadsFn    func(context.Context, uint) (int64, error)
	advisorStatsFn func(context.Context, uint) (*models.AdvisorStats, error)
	recountFn      func(context.Context, uint) (int64, error)
}

func (s *thesisRepoStub) List(ctx context.Context, f repository.ThesisFilter) ([]models.ThesisSummary, error) {
	return s.listFn(ctx, f)
}
func (s *thesisRepoStub) GetByID(ctx context.Context, id uint) (*models.Thesis, error) {
	return s.getByIDFn(ctx, id)
}
func (s *thesisRepoStub) Exists(ctx context.Context, id uint) (bool, error) { return s.existsFn(ctx, id) }
func (s *thesisRepoStub) Create(ctx context.Context, t *models.Thesis) error {
	return s.createFn(ctx, t)
}
func (s *thesisRepoStub) Update(ctx context.Context, id uint, u map[string]any) error {
	return s.updateFn(ctx, id, u)
}
func (s *thesisRepoStub) Delete(ctx context.Context, id uint) error { return s.deleteFn(ctx, id) }
func (s *thesisRepoStub) IncrementDownloads(ctx context.Context, id uint) (int64, error) {
	return s.downloadsFn(ctx, id)
}
func (s *thesisRepoStub) AdvisorStats(ctx context.Context, id uint) (*models.AdvisorStats, error) {
	return s.advisorStatsFn(ctx, id)
}
func (s *thesisRepoStub) Recount(ctx context.Context, id uint) (int64, error) {
	return s.recountFn(ctx, id)
}

// thesesWithIDs reports the given ids as existing.
func thesesWithIDs(ids ...uint) *thesisRepoStub {
	known := map[uint]bool{}
	for _, id := range ids {
		known[id] = true
	}
	return &thesisRepoStub{
		listFn: func(_ context.Context, _ repository.ThesisFilter) ([]models.ThesisSummary, error) { return nil, nil },
		getByIDFn: func(_ context.Context, id uint) (*models.Thesis, error) {
			if !known[id] {
				return nil, models.NewNotFoundError("Thesis", id)
			}
			return &models.Thesis{ID: id}, nil
		},
		existsFn:       func(_ context.Context, id uint) (bool, error) { return known[id], nil },
		createFn:       func(_ context.Context, _ *models.Thesis) error { return nil },
		updateFn:       func(_ context.Context, _ uint, _ map[string]any) error { return nil },
		deleteFn:       func(_ context.Context, _ uint) error { return nil },
		downloadsFn:    func(_ context.Context, _ uint) (int64, error) { return 1, nil },
		advisorStatsFn: func(_ context.Context, _ uint) (*models.AdvisorStats, error) { return &models.AdvisorStats{}, nil },
		recountFn:      func(_ context.Context, _ uint) (int64, error) { return 0, nil },
	}
}

// commentRepoStub is a stub for repository.CommentRepository.
type commentRepoStub struct {
	createFn        func(context.Context, *models.Comment) error
	getByIDFn       func(context.Context, uint) (*models.Comment, error)
	listByThesisFn  func(context.Context, uint) ([]models.Comment, error)
	listByStatusFn  func(context.Context, models.CommentStatus, int, int) ([]models.Comment, error)
	updateStatusFn  func(context.Context, uint, models.CommentStatus, *string) error
	deleteSubtreeFn func(context.Context, uint) (int64, error)
}

func (s *commentRepoStub) Create(ctx context.Context, c *models.Comment) error {
	return s.createFn(ctx, c)
}
func (s *commentRepoStub) GetByID(ctx context.Context, id uint) (*models.Comment, error) {
	return s.getByIDFn(ctx, id)
}
func (s *commentRepoStub) ListByThesis(ctx context.Context, id uint) ([]models.Comment, error) {
	return s.listByThesisFn(ctx, id)
}
func (s *commentRepoStub) ListByStatus(ctx context.Context, st models.CommentStatus, limit, offset int) ([]models.Comment, error) {
	return s.listByStatusFn(ctx, st, limit, offset)
}
func (s *commentRepoStub) UpdateStatus(ctx context.Context, id uint, st models.CommentStatus, reason *string) error {
	return s.updateStatusFn(ctx, id, st, reason)
}
func (s *commentRepoStub) DeleteSubtree(ctx context.Context, id uint) (int64, error) {
	return s.deleteSubtreeFn(ctx, id)
}

func noopCommentRepo() *commentRepoStub {
	return &commentRepoStub{
		createFn: func(_ context.Context, _ *models.Comment) error { return nil },
		getByIDFn: func(_ context.Context, id uint) (*models.Comment, error) {
			return nil, models.NewNotFoundError("Comment", id)
		},
		listByThesisFn: func(_ context.Context, _ uint) ([]models.Comment, error) { return nil, nil },
		listByStatusFn: func(_ context.Context, _ models.CommentStatus, _, _ int) ([]models.Comment, error) {
			return nil, nil
		},
		updateStatusFn:  func(_ context.Context, _ uint, _ models.CommentStatus, _ *string) error { return nil },
		deleteSubtreeFn: func(_ context.Context, _ uint) (int64, error) { return 1, nil },
	}
}

// citationRepoStub is a stub for repository.CitationRepository.
type citationRepoStub struct {
	listByThesisFn func(context.Context, uint) ([]models.Citation, error)
	getByIDFn      func(context.Context, uint) (*models.Citation, error)
	createFn       func(context.Context, *models.Citation) (int64, error)
	updateFn       func(context.Context, *models.Citation) error
	deleteFn       func(context.Context, uint) error
}

func (s *citationRepoStub) ListByThesis(ctx context.Context, id uint) ([]models.Citation, error) {
	return s.listByThesisFn(ctx, id)
}
func (s *citationRepoStub) GetByID(ctx context.Context, id uint) (*models.Citation, error) {
	return s.getByIDFn(ctx, id)
}
func (s *citationRepoStub) Create(ctx context.Context, c *models.Citation) (int64, error) {
	return s.createFn(ctx, c)
}
func (s *citationRepoStub) Update(ctx context.Context, c *models.Citation) error {
	return s.updateFn(ctx, c)
}
func (s *citationRepoStub) Delete(ctx context.Context, id uint) error { return s.deleteFn(ctx, id) }

func noopCitationRepo() *citationRepoStub {
	return &citationRepoStub{
		listByThesisFn: func(_ context.Context, _ uint) ([]models.Citation, error) { return nil, nil },
		getByIDFn: func(_ context.Context, id uint) (*models.Citation, error) {
			return nil, models.NewNotFoundError("Citation", id)
		},
		createFn: func(_ context.Context, c *models.Citation) (int64, error) { c.ID = 1; return 1, nil },
		updateFn: func(_ context.Context, _ *models.Citation) error { return nil },
		deleteFn: func(_ context.Context, _ uint) error { return nil },
	}
}

// viewRepoStub is a stub for repository.ViewRepository.
type viewRepoStub struct {
	recordFn    func(context.Context, uint, time.Time) error
	listSinceFn func(context.Context, uint, time.Time) ([]models.ViewEvent, error)
}

func (s *viewRepoStub) Record(ctx context.Context, id uint, at time.Time) error {
	return s.recordFn(ctx, id, at)
}
func (s *viewRepoStub) ListSince(ctx context.Context, id uint, since time.Time) ([]models.ViewEvent, error) {
	return s.listSinceFn(ctx, id, since)
}

// eventRecorder captures published events.
type eventRecorder struct {
	mu     sync.Mutex
	events []notifications.Event
	users  []uint
	err    error
}

func (r *eventRecorder) PublishEvent(_ context.Context, ev notifications.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
	return r.err
}

func (r *eventRecorder) PublishUser(_ context.Context, userID uint, ev notifications.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.users = append(r.users, userID)
	return r.err
}

func (r *eventRecorder) types() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.events))
	for _, ev := range r.events {
		out = append(out, ev.Type)
	}
	return out
}

func fixedClock(year int) clock {
	return func() time.Time { return time.Date(year, 6, 15, 12, 0, 0, 0, time.UTC) }
}

func assertAppError(t *testing.T, err error, code string) {
	t.Helper()
	require.Error(t, err)
	var appErr *models.AppError
	require.True(t, errors.As(err, &appErr), "expected AppError, got %T: %v", err, err)
	assert.Equal(t, code, appErr.Code)
}

// assertValidationError asserts that err is an AppError with code VALIDATION_ERROR.
func assertValidationError(t *testing.T, err error) {
	t.Helper()
	assertAppError(t, err, models.CodeValidation)
}

func assertForbiddenError(t *testing.T, err error) {
	t.Helper()
	assertAppError(t, err, models.CodeForbidden)
}

func uintPtr(v uint) *uint { return &v }
func intPtr(v int) *int    { return &v }
func strPtr(v string) *string {
	return &v
}

// lookupRepoStub is a stub for repository.LookupRepository.
type lookupRepoStub struct {
	faculties   map[uint]models.Faculty
	departments map[uint]models.Department
	saved       []any
}

func newLookupStub() *lookupRepoStub {
	return &lookupRepoStub{
		faculties:   map[uint]models.Faculty{1: {ID: 1, Name: "Engineering"}},
		departments: map[uint]models.Department{10: {ID: 10, Name: "Computer Engineering", FacultyID: 1}},
	}
}

func (s *lookupRepoStub) ListFaculties(_ context.Context) ([]models.Faculty, error) {
	out := []models.Faculty{}
	for _, f := range s.faculties {
		out = append(out, f)
	}
	return out, nil
}
func (s *lookupRepoStub) GetFaculty(_ context.Context, id uint) (*models.Faculty, error) {
	f, ok := s.faculties[id]
	if !ok {
		return nil, models.NewNotFoundError("Faculty", id)
	}
	return &f, nil
}
func (s *lookupRepoStub) SaveFaculty(_ context.Context, f *models.Faculty) error {
	s.saved = append(s.saved, f)
	return nil
}
func (s *lookupRepoStub) ListDepartments(_ context.Context, facultyID uint) ([]models.Department, error) {
	out := []models.Department{}
	for _, d := range s.departments {
		if facultyID == 0 || d.FacultyID == facultyID {
			out = append(out, d)
		}
	}
	return out, nil
}
func (s *lookupRepoStub) GetDepartment(_ context.Context, id uint) (*models.Department, error) {
	d, ok := s.departments[id]
	if !ok {
		return nil, models.NewNotFoundError("Department", id)
	}
	return &d, nil
}
func (s *lookupRepoStub) SaveDepartment(_ context.Context, d *models.Department) error {
	s.saved = append(s.saved, d)
	return nil
}
