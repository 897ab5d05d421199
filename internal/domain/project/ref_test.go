package project

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRef(t *testing.T) {
	r, err := ParseRef("SIQ-AB12CD")
	require.NoError(t, err)
	assert.Equal(t, "SIQ-AB12CD", r.Code)
	assert.Empty(t, r.ID)

	r, err = ParseRef("4B2A0F9E-1C1D-4E55-9C53-2D0F6A3B7C10")
	require.NoError(t, err)
	assert.Equal(t, "4b2a0f9e-1c1d-4e55-9c53-2d0f6a3b7c10", r.ID)

	for _, bad := range []string{"", "42", "SIQ-ab12cd", "'; DROP TABLE projects;--"} {
		_, err := ParseRef(bad)
		assert.Error(t, err, bad)
	}
}
