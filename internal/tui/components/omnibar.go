package components

import (
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/mmcdole/marquee/internal/tui/styles"
)

// SearchStatus mirrors the search controller's lifecycle for display
type SearchStatus int

const (
	SearchIdle SearchStatus = iota
	SearchPending
	SearchSettled
)

// SearchBar is the always-visible query input above the columns.
// It only edits text; the owner forwards changes to the search controller.
type SearchBar struct {
	input     textinput.Model
	width     int
	status    SearchStatus
	count     int
	noResults bool
	frame     int
	prevQuery string // Track query changes between updates
}

// NewSearchBar creates a blurred search bar
func NewSearchBar() SearchBar {
	ti := textinput.New()
	ti.Placeholder = "Search all categories..."
	ti.CharLimit = 100
	ti.Prompt = "/ "
	ti.PromptStyle = styles.AccentStyle
	ti.TextStyle = lipgloss.NewStyle().Foreground(styles.White)
	ti.PlaceholderStyle = styles.DimStyle

	return SearchBar{input: ti}
}

// Focus gives the input keyboard focus
func (s *SearchBar) Focus() tea.Cmd {
	return s.input.Focus()
}

// Blur removes keyboard focus, keeping the query
func (s *SearchBar) Blur() {
	s.input.Blur()
}

// IsFocused returns true while the user is typing a query
func (s SearchBar) IsFocused() bool {
	return s.input.Focused()
}

// Query returns the current query text
func (s SearchBar) Query() string {
	return s.input.Value()
}

// Clear empties the query
func (s *SearchBar) Clear() {
	s.input.SetValue("")
	s.prevQuery = ""
	s.status = SearchIdle
	s.count = 0
	s.noResults = false
}

// SetWidth updates the component width
func (s *SearchBar) SetWidth(width int) {
	s.width = width
	s.input.Width = max(width-30, 10)
}

// SetPending marks the query as waiting for the debounce window
func (s *SearchBar) SetPending() {
	s.status = SearchPending
}

// SetSettled records the outcome of the last executed search
func (s *SearchBar) SetSettled(count int, noResults bool) {
	s.status = SearchSettled
	s.count = count
	s.noResults = noResults
}

// SetSpinnerFrame updates the spinner animation frame
func (s *SearchBar) SetSpinnerFrame(frame int) {
	s.frame = frame
}

// Status returns the displayed search status
func (s SearchBar) Status() SearchStatus {
	return s.status
}

// Update routes keys to the input. changed reports whether the query text changed.
func (s SearchBar) Update(msg tea.Msg) (bar SearchBar, cmd tea.Cmd, changed bool) {
	if !s.input.Focused() {
		return s, nil, false
	}

	if keyMsg, ok := msg.(tea.KeyMsg); ok && key.Matches(keyMsg, SearchBarKeys.Clear) {
		s.input.SetValue("")
	} else {
		s.input, cmd = s.input.Update(msg)
	}

	current := s.input.Value()
	if current != s.prevQuery {
		s.prevQuery = current
		if current == "" {
			s.status = SearchIdle
		} else {
			s.status = SearchPending
		}
		return s, cmd, true
	}
	return s, cmd, false
}

// View renders the bar on a single line
func (s SearchBar) View() string {
	var status string
	switch {
	case s.status == SearchPending:
		status = styles.SpinnerStyle.Render(SpinnerFrame(s.frame) + " searching")
	case s.status == SearchSettled && s.noResults:
		status = styles.ErrorStyle.Render("no results")
	case s.status == SearchSettled:
		status = styles.DimStyle.Render(fmt.Sprintf("%d results", s.count))
	}

	line := lipgloss.JoinHorizontal(lipgloss.Top, s.input.View(), "  ", status)
	return lipgloss.NewStyle().Width(s.width).MaxHeight(1).Render(line)
}
