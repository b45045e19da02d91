package analysis

import (
	"math"
	"regexp"
	"strconv"
)

var probabilityLine = regexp.MustCompile(`(?i)success\s+probability\**\s*:\**\s*(\d{1,3}(?:\.\d+)?)\s*%`)

// ParseProbability extracts the "Success Probability: N %" figure from an
// assessment. Values are rounded and clamped to 0..100.
func ParseProbability(text string) (int, bool) {
	m := probabilityLine.FindStringSubmatch(text)
	if m == nil {
		return 0, false
	}
	v, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return 0, false
	}
	return int(math.Round(math.Min(math.Max(v, 0), 100))), true
}
