package rag

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// blockTags start a new line. Leaf blocks are emitted whole; blocks that
// contain other blocks are walked so loose text between them is kept.
var blockTags = map[string]bool{
	"h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
	"p": true, "li": true, "td": true, "th": true, "blockquote": true,
	"pre": true, "div": true, "ul": true, "ol": true, "table": true,
	"thead": true, "tbody": true, "tfoot": true, "tr": true, "hr": true,
}

// editorSelector lists the elements the pitch editor produces. Input without
// any of them is plain text, even if it holds something tag-shaped like
// "CAC<LTV and margin>40%".
const editorSelector = "h1,h2,h3,h4,h5,h6,p,li,ul,ol,td,th,table,blockquote,pre,div,br,hr," +
	"strong,em,b,i,u,s,a,code,span,mark"

type promptLine struct {
	marker string
	text   string
}

// NormalizePrompt converts editor HTML into plain text lines. Headings keep a
// markdown marker and list items a dash so the structure survives chunking.
// Plain text is returned trimmed.
func NormalizePrompt(prompt string) string {
	lines, ok := parsePrompt(prompt)
	if !ok {
		return strings.TrimSpace(prompt)
	}
	out := make([]string, len(lines))
	for i, l := range lines {
		out[i] = l.marker + l.text
	}
	return strings.Join(out, "\n")
}

// PromptText is NormalizePrompt without the heading and list markers: only
// the text the author typed. Coverage is measured on it.
func PromptText(prompt string) string {
	lines, ok := parsePrompt(prompt)
	if !ok {
		return strings.TrimSpace(prompt)
	}
	out := make([]string, len(lines))
	for i, l := range lines {
		out[i] = l.text
	}
	return strings.Join(out, "\n")
}

// HasContent reports whether prompt carries any text once markup is removed.
func HasContent(prompt string) bool {
	return NormalizePrompt(prompt) != ""
}

// parsePrompt returns the lines of an editor document. ok is false when the
// prompt is not editor HTML and must be used verbatim.
func parsePrompt(prompt string) ([]promptLine, bool) {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" || !strings.Contains(prompt, "<") {
		return nil, false
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(prompt))
	if err != nil || doc.Find(editorSelector).Length() == 0 {
		return nil, false
	}

	w := &promptWalker{}
	w.walk(doc.Find("body"), false)
	w.flush(false)
	return w.lines, true
}

type promptWalker struct {
	lines  []promptLine
	inline strings.Builder
}

func (w *promptWalker) walk(parent *goquery.Selection, inItem bool) {
	parent.Contents().Each(func(_ int, s *goquery.Selection) {
		tag := goquery.NodeName(s)
		switch {
		case tag == "#text":
			w.inline.WriteString(s.Text())
		case tag == "br":
			w.flush(inItem)
		case !blockTags[tag]:
			w.walk(s, inItem)
		default:
			w.flush(inItem)
			item := inItem || tag == "li"
			if hasBlockChild(s) {
				w.walk(s, item)
				w.flush(item)
				return
			}
			w.add(markerFor(tag, item), s.Text())
		}
	})
}

func (w *promptWalker) flush(inItem bool) {
	text := w.inline.String()
	w.inline.Reset()
	marker := ""
	if inItem {
		marker = "- "
	}
	w.add(marker, text)
}

func (w *promptWalker) add(marker, text string) {
	if text = collapseSpace(text); text != "" {
		w.lines = append(w.lines, promptLine{marker: marker, text: text})
	}
}

func hasBlockChild(s *goquery.Selection) bool {
	found := false
	s.Find("*").EachWithBreak(func(_ int, c *goquery.Selection) bool {
		found = blockTags[goquery.NodeName(c)]
		return !found
	})
	return found
}

func markerFor(tag string, inItem bool) string {
	switch tag {
	case "h1":
		return "# "
	case "h2":
		return "## "
	case "h3", "h4", "h5", "h6":
		return "### "
	}
	if inItem {
		return "- "
	}
	return ""
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
