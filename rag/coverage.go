package rag

import (
	"strings"
	"unicode/utf8"
)

// DefaultCoverageTarget is the character count treated as a complete description.
const DefaultCoverageTarget = 10000

// Coverage describes how much of a full startup description a prompt provides.
type Coverage struct {
	Characters int `json:"char_count"`
	Words      int `json:"word_count"`
	Percentage int `json:"percentage"`
	Target     int `json:"target_chars"`
	Remaining  int `json:"remaining"`
}

// MeasureCoverage counts the characters and words of text against target.
// A non-positive target uses DefaultCoverageTarget.
func MeasureCoverage(text string, target int) Coverage {
	if target <= 0 {
		target = DefaultCoverageTarget
	}
	chars := utf8.RuneCountInString(text)

	pct := (chars*100 + target/2) / target
	if pct > 100 {
		pct = 100
	}

	return Coverage{
		Characters: chars,
		Words:      len(strings.Fields(text)),
		Percentage: pct,
		Target:     target,
		Remaining:  max(0, target-chars),
	}
}

// MeasurePromptCoverage measures the text an author typed into prompt,
// ignoring markup and the structural markers NormalizePrompt adds.
func MeasurePromptCoverage(prompt string, target int) Coverage {
	return MeasureCoverage(PromptText(prompt), target)
}
