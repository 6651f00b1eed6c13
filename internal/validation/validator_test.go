package validation

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sampleRequest struct {
	Authors string `json:"authors" validate:"notblank,max=500"`
	Year    *int   `json:"year_published" validate:"omitempty,gte=1900"`
	Status  string `json:"status" validate:"omitempty,comment_status"`
}

func TestStruct(t *testing.T) {
	t.Parallel()

	year := 2020
	assert.NoError(t, Struct(sampleRequest{Authors: "Knuth", Year: &year, Status: "approved"}))

	old := 1800
	err := Struct(sampleRequest{Authors: "   ", Year: &old, Status: "pending"})
	require.Error(t, err)

	var verrs Errors
	require.True(t, errors.As(err, &verrs))
	require.Len(t, verrs, 3)
	assert.Equal(t, "authors", verrs[0].Field)
	assert.Equal(t, "authors is required", verrs[0].Msg)
	assert.Equal(t, "year_published", verrs[1].Field)
	assert.Equal(t, "status must be approved or rejected", verrs[2].Msg)
	assert.Contains(t, err.Error(), "year_published must be greater than or equal to 1900")
}
