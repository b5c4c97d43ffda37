package cli

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/agbru/dcafit/internal/ui"
)

// tableStyles holds the lipgloss styles of the comparison tables.
type tableStyles struct {
	border  lipgloss.Style
	header  lipgloss.Style
	model   lipgloss.Style
	number  lipgloss.Style
	best    lipgloss.Style
	missing lipgloss.Style
	title   lipgloss.Style
}

// newTableStyles builds the styles from the current ui theme. It is called
// per rendering so that InitTheme takes effect without a package init.
func newTableStyles() tableStyles {
	t := ui.GetCurrentTableTheme()
	cell := lipgloss.NewStyle().Padding(0, 1)
	return tableStyles{
		border:  lipgloss.NewStyle().Foreground(t.Border),
		header:  cell.Bold(true).Foreground(t.Header),
		model:   cell.Foreground(t.Model),
		number:  cell.Foreground(t.Number).Align(lipgloss.Right),
		best:    cell.Bold(true).Foreground(t.Best).Align(lipgloss.Right),
		missing: cell.Foreground(t.Missing).Align(lipgloss.Right),
		title:   lipgloss.NewStyle().Bold(true).Foreground(t.Header),
	}
}
