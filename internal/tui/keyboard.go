package tui

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/mmcdole/marquee/internal/tui/components"
)

// handleKeyMsg handles keyboard input
func (m Model) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.State == StateHelp {
		if key.Matches(msg, Keys.Escape, Keys.Help, Keys.Quit) {
			m.State = StateBrowsing
		}
		return m, nil
	}

	// The search bar owns every key while focused
	if m.Focus == FocusSearch {
		return m.handleSearchKey(msg)
	}

	// So does a column filter being typed
	col := m.activeColumn()
	if m.Focus == FocusMovies && col.IsFilterTyping() {
		col.Update(msg)
		m.syncInspector()
		return m, nil
	}

	// Global keys
	switch {
	case key.Matches(msg, Keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, Keys.Help):
		m.State = StateHelp
		return m, nil

	case key.Matches(msg, Keys.Search):
		m.Focus = FocusSearch
		m.applyFocus()
		return m, m.SearchBar.Focus()

	case key.Matches(msg, Keys.Escape):
		if col.IsFiltering() {
			col.ClearFilter()
			m.syncInspector()
			return m, nil
		}
		if m.ShowingResults {
			m.setQuery("")
			m.applyFocus()
		}
		return m, nil

	case m.Focus == FocusMovies && !col.IsFiltering() && key.Matches(msg, components.ListColumnKeys.Filter):
		col.ToggleFilter()
		return m, nil

	case key.Matches(msg, Keys.Refresh):
		c := m.Sidebar.Selected()
		m.StatusMsg = "Refreshing " + c.Title() + "..."
		m.StatusIsErr = false
		return m, RefreshCategoryCmd(m.Orchestrator, c)

	case key.Matches(msg, Keys.RefreshAll):
		m.StatusMsg = ""
		return m, RefreshAllCmd(m.Orchestrator)

	case key.Matches(msg, Keys.ToggleInspector):
		m.ShowInspector = !m.ShowInspector
		m.updateLayout()
		return m, nil

	case key.Matches(msg, Keys.OpenInBrowser):
		movie := col.SelectedMovie()
		if movie == nil || m.Browser == nil || m.Focus != FocusMovies {
			return m, nil
		}
		return m, OpenMovieCmd(m.Browser, *movie)

	case key.Matches(msg, Keys.InspectorDown):
		m.Inspector.ScrollDown()
		return m, nil

	case key.Matches(msg, Keys.InspectorUp):
		m.Inspector.ScrollUp()
		return m, nil

	case key.Matches(msg, Keys.Tab):
		if m.Focus == FocusSidebar {
			m.Focus = FocusMovies
		} else {
			m.Focus = FocusSidebar
		}
		m.applyFocus()
		return m, nil

	case key.Matches(msg, Keys.Left):
		m.Focus = FocusSidebar
		m.applyFocus()
		return m, nil

	case key.Matches(msg, Keys.Right):
		m.Focus = FocusMovies
		m.applyFocus()
		return m, nil

	case key.Matches(msg, Keys.Enter):
		return m.handleEnter()
	}

	// Route remaining keys to the focused pane
	switch m.Focus {
	case FocusSidebar:
		var changed bool
		m.Sidebar, changed = m.Sidebar.Update(msg)
		if changed {
			if m.ShowingResults {
				// Picking a category leaves search mode
				m.setQuery("")
			}
			m.loadSelectedCategory(false)
			m.applyFocus()
		}
	case FocusMovies:
		col.Update(msg)
		m.syncInspector()
	}
	return m, nil
}

// handleSearchKey routes keys while the search bar is focused
func (m Model) handleSearchKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, components.SearchBarKeys.Escape):
		m.setQuery("")
		m.Focus = FocusSidebar
		m.applyFocus()
		return m, nil

	case key.Matches(msg, components.SearchBarKeys.Accept):
		if m.SearchBar.Query() == "" {
			m.Focus = FocusSidebar
		} else {
			m.Focus = FocusMovies
		}
		m.applyFocus()
		return m, nil
	}

	var cmd tea.Cmd
	var changed bool
	m.SearchBar, cmd, changed = m.SearchBar.Update(msg)
	if changed {
		m.setQuery(m.SearchBar.Query())
	}
	return m, cmd
}

// handleEnter opens the selected category, or loads details for the selected movie
func (m Model) handleEnter() (tea.Model, tea.Cmd) {
	if m.Focus == FocusSidebar {
		m.Focus = FocusMovies
		m.applyFocus()
		return m, nil
	}

	movie := m.activeColumn().SelectedMovie()
	if movie == nil || m.Details == nil {
		return m, nil
	}
	m.Inspector.SetMovie(movie)
	if m.Inspector.Profile() != nil {
		return m, nil
	}
	m.Inspector.SetLoading()
	if !m.ShowInspector {
		m.ShowInspector = true
		m.updateLayout()
	}
	return m, LoadProfileCmd(m.Details, movie.ID)
}
