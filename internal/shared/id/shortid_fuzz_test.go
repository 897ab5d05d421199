package id

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewProjectCode(t *testing.T) {
	code, err := NewProjectCode("SIQ")
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(code, "SIQ-"))
	assert.Len(t, code, len("SIQ-")+ProjectCodeLength)
	assert.True(t, IsProjectCode(code))
}

func TestNewProjectCode_DefaultPrefix(t *testing.T) {
	code, err := NewProjectCode("")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(code, DefaultProjectPrefix+"-"))
}

func TestIsProjectCode(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"SIQ-ABC123", true},
		{"SIQ-abc123", false},
		{"SIQ-ABC12", false},
		{"SIQABC123", false},
		{"-ABC123", false},
		{"SIQ-ABC12!", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, IsProjectCode(tt.input))
		})
	}
}

func TestNewSortableID_Monotonic(t *testing.T) {
	prev := NewSortableID()
	for i := 0; i < 500; i++ {
		next := NewSortableID()
		require.Less(t, prev, next)
		prev = next
	}
}

func TestGenerate_Length(t *testing.T) {
	s, err := Generate(0)
	require.NoError(t, err)
	assert.Len(t, s, DefaultLength)
}

func TestIsUUID(t *testing.T) {
	assert.True(t, IsUUID(NewUUID()))
	assert.False(t, IsUUID("SIQ-ABC123"))
}

// FuzzIsProjectCode checks that accepted codes are always well formed.
func FuzzIsProjectCode(f *testing.F) {
	seeds := []string{"SIQ-ABC123", "SIQ-", "中文-测试测试测", "A-BBBBBB", strings.Repeat("A", 50)}
	for _, seed := range seeds {
		f.Add(seed)
	}

	f.Fuzz(func(t *testing.T, input string) {
		if !utf8.ValidString(input) {
			return
		}
		if IsProjectCode(input) {
			prefix, random, ok := strings.Cut(input, "-")
			if !ok || prefix == "" || len(random) != ProjectCodeLength {
				t.Errorf("IsProjectCode(%q) accepted malformed code", input)
			}
		}
	})
}
