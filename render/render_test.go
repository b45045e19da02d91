package render

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMarkdown(t *testing.T) {
	out := Markdown("## Key Strengths\n\n- Strong team\n- **Large** market\n\nSuccess Probability: 70%")
	assert.Contains(t, out, "<h2")
	assert.Contains(t, out, "Key Strengths</h2>")
	assert.Contains(t, out, "<li>Strong team</li>")
	assert.Contains(t, out, "<strong>Large</strong>")
	assert.Contains(t, out, "Success Probability: 70%")
}

func TestMarkdown_Sanitizes(t *testing.T) {
	out := Markdown("hello <script>alert(1)</script> [x](javascript:alert(1))")
	assert.NotContains(t, out, "<script>")
	assert.NotContains(t, out, "javascript:")
	assert.Contains(t, out, "hello")
}

func TestMarkdown_Fenced(t *testing.T) {
	out := Markdown("```markdown\n# Verdict\n```")
	assert.Contains(t, out, "Verdict</h1>")
	assert.NotContains(t, out, "<code>")
}

func TestMarkdown_Empty(t *testing.T) {
	assert.Equal(t, "", Markdown("   "))
}

func TestMarkdown_LinksOpenInNewTab(t *testing.T) {
	out := Markdown("See [the deck](https://example.com/deck) and [notes](/notes).")
	assert.Contains(t, out, `href="https://example.com/deck"`)
	assert.Contains(t, out, `target="_blank"`)
	assert.Contains(t, out, "noopener")
	assert.Contains(t, out, `href="/notes"`)
	assert.Equal(t, 1, strings.Count(out, `target="_blank"`), "relative links stay in the same tab")
}
