package service

import (
	"context"
	"testing"

	"thesisrepo/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newThesisService(theses *thesisRepoStub) *ThesisService {
	svc := NewThesisService(theses, usersByID(student, advisor, admin), newLookupStub())
	svc.now = fixedClock(2025)
	return svc
}

func TestThesisService_Create(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	valid := func() CreateThesisInput {
		return CreateThesisInput{
			ActorID:         student.ID,
			Title:           " Caching in Graph Databases ",
			Abstract:        "We study **caching**.",
			PublicationYear: 2024,
			DepartmentID:    10,
			AdvisorID:       uintPtr(advisor.ID),
		}
	}

	t.Run("success uses caller as author and renders abstract", func(t *testing.T) {
		t.Parallel()
		var stored *models.Thesis
		theses := thesesWithIDs()
		theses.createFn = func(_ context.Context, th *models.Thesis) error {
			th.ID = 21
			stored = th
			return nil
		}
		theses.getByIDFn = func(_ context.Context, id uint) (*models.Thesis, error) {
			cp := *stored
			return &cp, nil
		}
		svc := newThesisService(theses)

		got, err := svc.Create(ctx, valid())
		require.NoError(t, err)
		assert.Equal(t, uint(21), got.ID)
		assert.Equal(t, "Caching in Graph Databases", stored.Title)
		assert.Equal(t, student.FullName, stored.AuthorName)
		require.NotNil(t, stored.SubmittedByID)
		assert.Equal(t, student.ID, *stored.SubmittedByID)
		assert.Contains(t, got.AbstractHTML, "<strong>caching</strong>")
	})

	tests := []struct {
		name   string
		mutate func(*CreateThesisInput)
	}{
		{"blank title", func(in *CreateThesisInput) { in.Title = "  " }},
		{"missing abstract", func(in *CreateThesisInput) { in.Abstract = "" }},
		{"year too old", func(in *CreateThesisInput) { in.PublicationYear = 1800 }},
		{"year in future", func(in *CreateThesisInput) { in.PublicationYear = 2030 }},
		{"unknown department", func(in *CreateThesisInput) { in.DepartmentID = 99 }},
		{"advisor is a student", func(in *CreateThesisInput) { in.AdvisorID = uintPtr(student.ID) }},
		{"unknown advisor", func(in *CreateThesisInput) { in.AdvisorID = uintPtr(404) }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			in := valid()
			tt.mutate(&in)
			_, err := newThesisService(thesesWithIDs()).Create(ctx, in)
			assertValidationError(t, err)
		})
	}
}

func TestThesisService_UpdatePermissions(t *testing.T) {
	t.Parallel()

	otherStudent := models.User{ID: 8, FullName: "Other", RoleID: models.RoleStudent, IsActive: true}
	newSvc := func(updated *map[string]any) *ThesisService {
		theses := thesesWithIDs(5)
		theses.getByIDFn = func(_ context.Context, id uint) (*models.Thesis, error) {
			return &models.Thesis{ID: id, Abstract: "a", SubmittedByID: uintPtr(student.ID), AdvisorID: uintPtr(advisor.ID)}, nil
		}
		theses.updateFn = func(_ context.Context, _ uint, u map[string]any) error {
			*updated = u
			return nil
		}
		svc := NewThesisService(theses, usersByID(student, advisor, admin, otherStudent), newLookupStub())
		svc.now = fixedClock(2025)
		return svc
	}
	ctx := context.Background()

	for _, actor := range []uint{student.ID, advisor.ID, admin.ID} {
		var updated map[string]any
		_, err := newSvc(&updated).Update(ctx, UpdateThesisInput{ActorID: actor, ThesisID: 5, Title: strPtr(" New ")})
		require.NoError(t, err, "actor %d", actor)
		assert.Equal(t, map[string]any{"title": "New"}, updated)
	}

	var updated map[string]any
	_, err := newSvc(&updated).Update(ctx, UpdateThesisInput{ActorID: otherStudent.ID, ThesisID: 5, Title: strPtr("x")})
	assertForbiddenError(t, err)
	assert.Nil(t, updated)

	_, err = newSvc(&updated).Update(ctx, UpdateThesisInput{ActorID: admin.ID, ThesisID: 5, PublicationYear: intPtr(1500)})
	assertValidationError(t, err)
}

func TestThesisService_AdvisorStatsUnknownAdvisor(t *testing.T) {
	t.Parallel()
	_, err := newThesisService(thesesWithIDs()).AdvisorStats(context.Background(), 404)
	assertAppError(t, err, models.CodeNotFound)
}
