package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/mmcdole/marquee/internal/tui/components"
	"github.com/mmcdole/marquee/internal/tui/styles"
)

// View renders the application
func (m Model) View() string {
	if !m.Ready {
		return "Loading..."
	}

	if m.State == StateHelp {
		return m.renderHelp()
	}

	layout := m.calculateColumnLayout(m.Width)
	panes := []string{m.Sidebar.View(), m.activeColumn().View()}
	if layout.inspectorWidth > 0 {
		panes = append(panes, m.Inspector.View())
	}

	return lipgloss.JoinVertical(
		lipgloss.Left,
		m.SearchBar.View(),
		lipgloss.JoinHorizontal(lipgloss.Top, panes...),
		m.renderFooter(),
	)
}

// renderFooter renders a single-line footer: loading and error state on the
// left, key hints on the right
func (m Model) renderFooter() string {
	var left string
	maxLeft := max(m.Width-2, 1)
	switch {
	case m.StatusMsg != "" && m.StatusIsErr:
		left = styles.ErrorStyle.Render(styles.Truncate(m.StatusMsg, maxLeft))
	case m.Aggregate.AnyLoading:
		text := "Loading..."
		if m.Aggregate.LoadingCount > 1 {
			text = fmt.Sprintf("Loading %d categories...", m.Aggregate.LoadingCount)
		}
		left = RenderSpinner(m.SpinnerFrame) + " " + styles.DimStyle.Render(styles.Truncate(text, maxLeft-2))
	case m.Aggregate.HasError():
		text := fmt.Sprintf("%s %s: %s", styles.ErrorChar, m.Aggregate.ErrorCategory.Title(), m.Aggregate.ErrorMessage())
		left = styles.ErrorStyle.Render(styles.Truncate(text, maxLeft))
	case m.StatusMsg != "":
		left = styles.SuccessStyle.Render(styles.Truncate(m.StatusMsg, maxLeft))
	}

	hints := []string{"/ search", "r refresh", "enter details", "? help", "q quit"}
	right := styles.DimStyle.Render(strings.Join(hints, " · "))

	gap := m.Width - lipgloss.Width(left) - lipgloss.Width(right) - 2
	if gap < 1 {
		// Narrow terminal: the status wins over the hints
		return styles.StatusBarStyle.Render(left)
	}
	return styles.StatusBarStyle.Render(left + strings.Repeat(" ", gap) + right)
}

// renderHelp renders the help screen
func (m Model) renderHelp() string {
	help := `
NAVIGATION                      SEARCH
  j/k        Up/down              /      Search all categories
  h/l        Categories/movies    Enter  Browse results
  Tab        Switch pane          Esc    Clear search
  g/G        First/last item      C-u    Clear query
  C-u/d      Scroll half page     f      Filter column

DETAILS                         OTHER
  Enter      Load details         r      Refresh category
  J/K        Scroll details       R      Refresh all
  i          Toggle inspector     q      Quit
  o          Open in browser      ?      This help

Press ? or Esc to return...
`

	return lipgloss.Place(m.Width, m.Height,
		lipgloss.Center, lipgloss.Center,
		styles.ModalStyle.Render(help))
}

// RenderSpinner renders a spinner frame
func RenderSpinner(frame int) string {
	return styles.SpinnerStyle.Render(components.SpinnerFrame(frame))
}
