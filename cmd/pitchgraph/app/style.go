package app

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/smallnest/pitchgraph/analysis"
	"github.com/smallnest/pitchgraph/rag"
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205"))
	mutedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	boxStyle   = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("63")).
			Padding(0, 1)
	scoreStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("42"))
)

func coverageLine(c rag.Coverage) string {
	return mutedStyle.Render(fmt.Sprintf("coverage %d%% (%d chars, %d words)", c.Percentage, c.Characters, c.Words))
}

func printAssessment(w io.Writer, text string, probability *int, cov rag.Coverage, id string) {
	fmt.Fprintln(w, titleStyle.Render("Startup assessment"))
	if probability != nil {
		fmt.Fprintln(w, scoreStyle.Render(fmt.Sprintf("Success probability: %d%%", *probability)))
	}
	fmt.Fprintln(w, boxStyle.Render(strings.TrimSpace(text)))
	fmt.Fprintln(w, coverageLine(cov))
	if id != "" {
		fmt.Fprintln(w, mutedStyle.Render("report "+id))
	}
}

func printPanel(w io.Writer, sections map[string]string, cov rag.Coverage, id string) {
	fmt.Fprintln(w, titleStyle.Render("Analyst panel"))
	for _, role := range analysis.Roles {
		fmt.Fprintln(w, titleStyle.Render(role.Title))
		fmt.Fprintln(w, boxStyle.Render(strings.TrimSpace(sections[role.Key])))
	}
	fmt.Fprintln(w, coverageLine(cov))
	if id != "" {
		fmt.Fprintln(w, mutedStyle.Render("report "+id))
	}
}
