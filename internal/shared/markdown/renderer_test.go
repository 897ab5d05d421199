package markdown

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderer_StripTags(t *testing.T) {
	r := NewRenderer()

	assert.Equal(t, "hello", r.StripTags("<b>hello</b>"))
	assert.Equal(t, "", r.StripTags("<script>alert(1)</script>"))
	assert.Equal(t, "plain text", r.StripTags("  plain text "))
}

func TestRenderer_Render(t *testing.T) {
	r := NewRenderer()

	out, err := r.Render("**bold** and [link](https://example.com)")
	require.NoError(t, err)

	assert.Contains(t, out, "<strong>bold</strong>")
	assert.Contains(t, out, `href="https://example.com"`)
	assert.Contains(t, out, `rel="nofollow`)
}

func TestRenderer_RenderDropsRawHTML(t *testing.T) {
	r := NewRenderer()

	out, err := r.Render("hi <img src=x onerror=alert(1)>")
	require.NoError(t, err)

	assert.NotContains(t, out, "onerror")
	assert.NotContains(t, out, "<script")
}
