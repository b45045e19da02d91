// Package render turns model output into HTML for the editor.
package render

import (
	"strings"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"
	"github.com/microcosm-cc/bluemonday"
)

// sanitizer opens absolute links in a new tab with rel="noopener".
// UGCPolicy alone drops the target attribute the renderer writes.
var sanitizer = newSanitizer()

func newSanitizer() *bluemonday.Policy {
	p := bluemonday.UGCPolicy()
	p.AddTargetBlankToFullyQualifiedLinks(true)
	return p
}

// Markdown renders markdown text to sanitized HTML.
// A fenced ```markdown wrapper around the whole text is removed first.
func Markdown(text string) string {
	text = unwrapFence(text)
	if strings.TrimSpace(text) == "" {
		return ""
	}

	// The parser keeps state, so one is built per call.
	p := parser.NewWithExtensions(parser.CommonExtensions | parser.AutoHeadingIDs)
	doc := p.Parse([]byte(text))

	renderer := html.NewRenderer(html.RendererOptions{Flags: html.CommonFlags | html.HrefTargetBlank})
	return string(sanitizer.SanitizeBytes(markdown.Render(doc, renderer)))
}

func unwrapFence(text string) string {
	t := strings.TrimSpace(text)
	if !strings.HasPrefix(t, "```markdown") && !strings.HasPrefix(t, "```md") {
		return text
	}
	t = strings.TrimPrefix(t, "```markdown")
	t = strings.TrimPrefix(t, "```md")
	t = strings.TrimSuffix(t, "```")
	return strings.TrimSpace(t)
}
