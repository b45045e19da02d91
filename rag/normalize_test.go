package rag

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizePrompt(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "plain text is trimmed",
			input: "  We sell shovels to miners.\n",
			want:  "We sell shovels to miners.",
		},
		{
			name:  "empty",
			input: "   ",
			want:  "",
		},
		{
			name:  "comparison operators are not markup",
			input: "churn < 2% and NPS > 60",
			want:  "churn < 2% and NPS > 60",
		},
		{
			name: "editor document",
			input: `<h2>Problem Statement</h2>
<h3>The Problem</h3>
<p>Freight   brokers  still use fax.</p>
<h3>Why Now?</h3>
<p></p>`,
			want: "## Problem Statement\n### The Problem\nFreight brokers still use fax.\n### Why Now?",
		},
		{
			name:  "list items wrapping paragraphs",
			input: `<ul><li><p>Ex-Stripe engineer</p></li><li><p>Two exits</p></li><li></li></ul>`,
			want:  "- Ex-Stripe engineer\n- Two exits",
		},
		{
			name:  "table cells",
			input: `<table><tr><th>Risk</th><th>Impact</th></tr><tr><td>Regulation</td><td>High</td></tr></table>`,
			want:  "Risk\nImpact\nRegulation\nHigh",
		},
		{
			name:  "inline only markup",
			input: `<strong>Seed</strong> round of <em>$2M</em>`,
			want:  "Seed round of $2M",
		},
		{
			name:  "tag-shaped plain text is kept verbatim",
			input: "  Our CAC<LTV and margin>40% already. ",
			want:  "Our CAC<LTV and margin>40% already.",
		},
		{
			name:  "div content",
			input: `<h1>Team</h1><div>We are three ex-Stripe engineers.</div>`,
			want:  "# Team\nWe are three ex-Stripe engineers.",
		},
		{
			name:  "loose text between blocks",
			input: `<p>Intro</p>loose text after<p>end</p>`,
			want:  "Intro\nloose text after\nend",
		},
		{
			name:  "list item with text and a nested list",
			input: `<ul><li>Channels<ul><li>Direct sales</li><li>Partners</li></ul></li></ul>`,
			want:  "- Channels\n- Direct sales\n- Partners",
		},
		{
			name:  "line breaks",
			input: `Founded 2023<br>Based in Austin`,
			want:  "Founded 2023\nBased in Austin",
		},
		{
			name:  "empty markup",
			input: `<p></p><p> </p>`,
			want:  "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizePrompt(tt.input))
		})
	}
}

func TestHasContent(t *testing.T) {
	assert.True(t, HasContent("<p>hello</p>"))
	assert.False(t, HasContent("<p></p>"))
	assert.False(t, HasContent(""))
}

func TestPromptText(t *testing.T) {
	html := `<h2>Team</h2><ul><li>Two founders</li></ul>`
	assert.Equal(t, "## Team\n- Two founders", NormalizePrompt(html))
	assert.Equal(t, "Team\nTwo founders", PromptText(html))
	assert.Equal(t, "churn < 2%", PromptText(" churn < 2% "))
}
