package server

import (
	"fmt"
	"net/http"
	"testing"

	"thesisrepo/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestThesisLifecycle(t *testing.T) {
	env := newTestEnv(t)
	thesis := env.createThesis(t, env.student, "Caching in Graph Databases")
	path := fmt.Sprintf("/api/theses/%d", thesis.ID)

	assert.Equal(t, "Selin Kaya", thesis.AuthorName)
	assert.Contains(t, thesis.AbstractHTML, "<strong>Caching in Graph Databases</strong>")

	t.Run("detail", func(t *testing.T) {
		status, body := env.do(t, http.MethodGet, path, nil, "")
		require.Equal(t, http.StatusOK, status)
		got := decode[models.Thesis](t, body)
		require.NotNil(t, got.Department)
		assert.Equal(t, "Computer Engineering", got.Department.Name)
		require.NotNil(t, got.Advisor)
		assert.Equal(t, "Dr. Emre Aydin", got.Advisor.FullName)
	})

	t.Run("update by another student is forbidden", func(t *testing.T) {
		other := models.User{FullName: "Other", Email: "other@final.edu.tr", Password: "x", RoleID: models.RoleStudent, IsActive: true}
		require.NoError(t, env.db.Create(&other).Error)
		status, _ := env.do(t, http.MethodPut, path, map[string]any{"title": "Hijacked"}, env.token(t, other))
		assert.Equal(t, http.StatusForbidden, status)
	})

	t.Run("advisor may update", func(t *testing.T) {
		status, body := env.do(t, http.MethodPut, path, map[string]any{"keywords": "graphs"}, env.token(t, env.advisor))
		require.Equal(t, http.StatusOK, status, string(body))
		assert.Equal(t, "graphs", decode[models.Thesis](t, body).Keywords)
	})

	t.Run("download counter", func(t *testing.T) {
		for want := 1; want <= 2; want++ {
			status, body := env.do(t, http.MethodPost, path+"/download", nil, "")
			require.Equal(t, http.StatusOK, status)
			assert.EqualValues(t, want, decode[map[string]any](t, body)["download_count"])
		}
	})

	t.Run("delete requires admin", func(t *testing.T) {
		status, _ := env.do(t, http.MethodDelete, path, nil, env.token(t, env.student))
		assert.Equal(t, http.StatusForbidden, status)

		status, _ = env.do(t, http.MethodDelete, path, nil, env.token(t, env.admin))
		require.Equal(t, http.StatusOK, status)

		status, _ = env.do(t, http.MethodGet, path, nil, "")
		assert.Equal(t, http.StatusNotFound, status)
	})
}

func TestCreateThesis_Validation(t *testing.T) {
	env := newTestEnv(t)
	token := env.token(t, env.student)

	base := func() map[string]any {
		return map[string]any{
			"title":            "Valid",
			"abstract":         "Valid abstract",
			"publication_year": 2022,
			"department_id":    env.department.ID,
		}
	}

	tests := []struct {
		name   string
		mutate func(map[string]any)
	}{
		{"missing title", func(m map[string]any) { delete(m, "title") }},
		{"year before 1900", func(m map[string]any) { m["publication_year"] = 1850 }},
		{"unknown department", func(m map[string]any) { m["department_id"] = 999 }},
		{"advisor is not an advisor", func(m map[string]any) { m["advisor_id"] = env.student.ID }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body := base()
			tt.mutate(body)
			status, raw := env.do(t, http.MethodPost, "/api/theses", body, token)
			assert.Equal(t, http.StatusBadRequest, status, string(raw))
		})
	}

	status, _ := env.do(t, http.MethodPost, "/api/theses", base(), "")
	assert.Equal(t, http.StatusUnauthorized, status)
}

func TestGetTheses_Filters(t *testing.T) {
	env := newTestEnv(t)
	first := env.createThesis(t, env.student, "Graph Partitioning")
	env.createThesis(t, env.student, "Quantum Annealing")

	for i := 0; i < 3; i++ {
		status, _ := env.do(t, http.MethodPost, fmt.Sprintf("/api/theses/%d/view", first.ID), nil, "")
		require.Equal(t, http.StatusNoContent, status)
	}

	tests := []struct {
		name      string
		query     string
		wantCount int
		wantFirst string
	}{
		{"all", "", 2, "Quantum Annealing"},
		{"text search is case-insensitive", "?q=QUANTUM", 1, "Quantum Annealing"},
		{"sort by views", "?sort=views", 2, "Graph Partitioning"},
		{"advisor filter", fmt.Sprintf("?advisor_id=%d", env.advisor.ID), 2, ""},
		{"faculty filter", fmt.Sprintf("?faculty_id=%d", env.faculty.ID), 2, ""},
		{"year range excludes", "?year_from=2024", 0, ""},
		{"author name", "?author_name=selin", 2, ""},
		{"limit", "?limit=1", 1, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, body := env.do(t, http.MethodGet, "/api/theses"+tt.query, nil, "")
			require.Equal(t, http.StatusOK, status, string(body))
			got := decode[[]models.ThesisSummary](t, body)
			require.Len(t, got, tt.wantCount)
			if tt.wantFirst != "" {
				assert.Equal(t, tt.wantFirst, got[0].Title)
			}
		})
	}

	status, _ := env.do(t, http.MethodGet, "/api/theses?sort=random", nil, "")
	assert.Equal(t, http.StatusBadRequest, status)
	status, _ = env.do(t, http.MethodGet, "/api/theses?advisor_id=abc", nil, "")
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestAdvisorStats(t *testing.T) {
	env := newTestEnv(t)
	thesis := env.createThesis(t, env.student, "Stats")
	status, _ := env.do(t, http.MethodPost, fmt.Sprintf("/api/theses/%d/download", thesis.ID), nil, "")
	require.Equal(t, http.StatusOK, status)

	status, body := env.do(t, http.MethodGet, fmt.Sprintf("/api/advisor/%d/stats", env.advisor.ID), nil, "")
	require.Equal(t, http.StatusOK, status, string(body))
	stats := decode[models.AdvisorStats](t, body)
	assert.EqualValues(t, 1, stats.ThesisCount)
	assert.EqualValues(t, 1, stats.TotalDownloads)

	status, _ = env.do(t, http.MethodGet, "/api/advisor/9999/stats", nil, "")
	assert.Equal(t, http.StatusNotFound, status)
}
