package console

import (
	"charm.land/lipgloss/v2"

	"quiz-engine/internal/timing"
)

var (
	primary = lipgloss.Color("#8B5CF6")
	success = lipgloss.Color("#22C55E")
	failure = lipgloss.Color("#F43F5E")
	warning = lipgloss.Color("#EAB308")
	dim     = lipgloss.Color("#94A3B8")
)

// Styles is the console palette.
type Styles struct {
	Title    lipgloss.Style
	Heading  lipgloss.Style
	Prompt   lipgloss.Style
	Correct  lipgloss.Style
	Wrong    lipgloss.Style
	Hint     lipgloss.Style
	Calm     lipgloss.Style
	Warning  lipgloss.Style
	Critical lipgloss.Style
	Banner   lipgloss.Style
}

// DefaultStyles returns the colored palette.
func DefaultStyles() Styles {
	return Styles{
		Title: lipgloss.NewStyle().
			Bold(true).
			Foreground(primary),
		Heading: lipgloss.NewStyle().
			Bold(true),
		Prompt: lipgloss.NewStyle().
			Foreground(primary),
		Correct: lipgloss.NewStyle().
			Foreground(success).
			Bold(true),
		Wrong: lipgloss.NewStyle().
			Foreground(failure).
			Bold(true),
		Hint: lipgloss.NewStyle().
			Foreground(dim).
			Italic(true),
		Calm:     lipgloss.NewStyle().Foreground(success),
		Warning:  lipgloss.NewStyle().Foreground(warning),
		Critical: lipgloss.NewStyle().Foreground(failure).Bold(true),
		Banner: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(primary).
			Padding(0, 2),
	}
}

// band picks the countdown style.
func (s Styles) band(b timing.Band) lipgloss.Style {
	switch b {
	case timing.BandCalm:
		return s.Calm
	case timing.BandWarning:
		return s.Warning
	default:
		return s.Critical
	}
}
