package identity

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeAlias(t *testing.T) {
	tests := []struct {
		name string
		a, b string
	}{
		{"case", "Shadow", "shadow"},
		{"fullwidth", "Ｓｈａｄｏｗ", "shadow"},
		{"surrounding space", "  shadow ", "shadow"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, NormalizeAlias(tt.a), NormalizeAlias(tt.b))
		})
	}

	assert.NotEqual(t, NormalizeAlias("shadow"), NormalizeAlias("shad0w"))
}

func TestValidateAlias(t *testing.T) {
	tests := []struct {
		alias   string
		wantErr bool
	}{
		{"shadow", false},
		{"user.name_1-x", false},
		{"ab", true},
		{strings.Repeat("a", MaxAliasLength+1), true},
		{"has space", true},
		{"semi;colon", true},
		{"Ünïcödé", false},
	}

	for _, tt := range tests {
		t.Run(tt.alias, func(t *testing.T) {
			err := ValidateAlias(tt.alias)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestGenerateAlias(t *testing.T) {
	alias, err := GenerateAlias()
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(alias, "User-"))
	assert.Len(t, alias, len("User-")+6)
	assert.NoError(t, ValidateAlias(alias))
}
