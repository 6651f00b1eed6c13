package main

import (
	"testing"

	"thesisrepo/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRole(t *testing.T) {
	tests := []struct {
		in   string
		want int
	}{
		{"admin", models.RoleAdmin},
		{" Advisor ", models.RoleAdvisor},
		{"1", models.RoleStudent},
	}
	for _, tt := range tests {
		got, err := parseRole(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got)
		assert.NotEmpty(t, roleName(got))
	}

	for _, bad := range []string{"", "root", "4", "0"} {
		_, err := parseRole(bad)
		assert.Error(t, err, bad)
	}
}
