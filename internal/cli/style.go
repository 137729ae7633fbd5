package cli

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/julianstephens/daystreak/internal/constants"
)

var (
	TitleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")).
			Bold(true)

	MutedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))

	badgeStyles = map[constants.DayState]lipgloss.Style{
		constants.DayUnchecked: lipgloss.NewStyle().Foreground(lipgloss.Color("252")),
		constants.DayChecked:   lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Bold(true),
		constants.DaySkipped:   lipgloss.NewStyle().Foreground(lipgloss.Color("39")),
		constants.DayHidden:    lipgloss.NewStyle().Foreground(lipgloss.Color("240")),
		constants.DayFailed:    lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true),
	}

	cells = map[constants.DayState]string{
		constants.DayUnchecked: "·",
		constants.DayChecked:   "■",
		constants.DaySkipped:   "○",
		constants.DayHidden:    " ",
		constants.DayFailed:    "✗",
	}
)

// Badge renders a day state as a colored label
func Badge(s constants.DayState) string {
	return badgeStyles[s].Render("[" + string(s) + "]")
}

// Cell renders a day state as a single colored glyph for history grids
func Cell(s constants.DayState) string {
	glyph, ok := cells[s]
	if !ok {
		glyph = "?"
	}
	return badgeStyles[s].Render(glyph)
}
