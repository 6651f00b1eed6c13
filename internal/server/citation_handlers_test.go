package server

import (
	"fmt"
	"net/http"
	"testing"

	"thesisrepo/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type citationCreated struct {
	Citation          models.Citation `json:"citation"`
	BibliographyCount int64           `json:"bibliography_count"`
}

func TestCitations_CounterTracksRows(t *testing.T) {
	env := newTestEnv(t)
	thesis := env.createThesis(t, env.student, "Cited")
	base := fmt.Sprintf("/api/theses/%d", thesis.ID)
	advisorToken := env.token(t, env.advisor)

	status, body := env.do(t, http.MethodPost, base+"/citations", map[string]any{
		"authors":          "Knuth, D.",
		"publication_type": "Journal Article",
		"year_published":   2024,
		"citation_context": "  related work  ",
	}, advisorToken)
	require.Equal(t, http.StatusCreated, status, string(body))
	created := decode[citationCreated](t, body)
	assert.EqualValues(t, 1, created.BibliographyCount)
	require.NotNil(t, created.Citation.CitationContext)
	assert.Equal(t, "related work", *created.Citation.CitationContext)

	status, body = env.do(t, http.MethodPost, base+"/cite", nil, env.token(t, env.student))
	require.Equal(t, http.StatusOK, status, string(body))
	assert.EqualValues(t, 2, decode[map[string]any](t, body)["bibliography_count"])

	status, body = env.do(t, http.MethodGet, base+"/citations", nil, "")
	require.Equal(t, http.StatusOK, status)
	citations := decode[[]models.Citation](t, body)
	require.Len(t, citations, 2)
	assert.Equal(t, "Selin Kaya", citations[0].Authors, "newest first")
	assert.Equal(t, "other", citations[0].PublicationType)

	citationPath := fmt.Sprintf("/api/citations/%d", created.Citation.ID)

	t.Run("only submitter or admin may change", func(t *testing.T) {
		status, _ := env.do(t, http.MethodPut, citationPath, map[string]any{"authors": "X"}, env.token(t, env.student))
		assert.Equal(t, http.StatusForbidden, status)
		status, _ = env.do(t, http.MethodDelete, citationPath, nil, env.token(t, env.student))
		assert.Equal(t, http.StatusForbidden, status)
	})

	t.Run("update keeps omitted authors and clears year", func(t *testing.T) {
		status, body := env.do(t, http.MethodPut, citationPath, map[string]any{"publication_type": "Thesis"}, advisorToken)
		require.Equal(t, http.StatusOK, status, string(body))
		got := decode[models.Citation](t, body)
		assert.Equal(t, "Knuth, D.", got.Authors)
		assert.Equal(t, "Thesis", got.PublicationType)
		assert.Nil(t, got.YearPublished)
		assert.Nil(t, got.CitationContext)
	})

	t.Run("year out of range", func(t *testing.T) {
		status, _ := env.do(t, http.MethodPut, citationPath, map[string]any{"year_published": 1800}, advisorToken)
		assert.Equal(t, http.StatusBadRequest, status)
	})

	t.Run("admin delete decrements counter", func(t *testing.T) {
		status, _ := env.do(t, http.MethodDelete, citationPath, nil, env.token(t, env.admin))
		require.Equal(t, http.StatusOK, status)

		var th models.Thesis
		require.NoError(t, env.db.First(&th, thesis.ID).Error)
		assert.EqualValues(t, 1, th.BibliographyCount)
	})
}

func TestCitations_UnknownThesis(t *testing.T) {
	env := newTestEnv(t)
	token := env.token(t, env.student)

	status, _ := env.do(t, http.MethodGet, "/api/theses/9999/citations", nil, "")
	assert.Equal(t, http.StatusNotFound, status)

	status, _ = env.do(t, http.MethodPost, "/api/theses/9999/cite", nil, token)
	assert.Equal(t, http.StatusNotFound, status)

	status, _ = env.do(t, http.MethodPost, "/api/theses/9999/citations", map[string]any{
		"authors": "A", "publication_type": "Book",
	}, token)
	assert.Equal(t, http.StatusNotFound, status)
}
