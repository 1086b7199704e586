package components

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/mmcdole/marquee/internal/domain"
	"github.com/mmcdole/marquee/internal/tui/styles"
)

// Spinner frames for loading animation
var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

// SpinnerFrame returns the spinner glyph for an animation frame
func SpinnerFrame(frame int) string {
	return spinnerFrames[frame%len(spinnerFrames)]
}

// Sidebar lists the dashboard categories with their load status
type Sidebar struct {
	categories []domain.Category
	states     map[domain.Category]CategoryState
	cursor     int
	frame      int
	width      int
	height     int
	focused    bool
}

// NewSidebar creates a sidebar over every category
func NewSidebar() Sidebar {
	return Sidebar{
		categories: domain.Categories(),
		states:     make(map[domain.Category]CategoryState),
		focused:    true,
	}
}

// SetState updates the status shown for c
func (s *Sidebar) SetState(c domain.Category, st CategoryState) {
	s.states[c] = st
}

// State returns the status shown for c
func (s Sidebar) State(c domain.Category) CategoryState {
	return s.states[c]
}

// Selected returns the category under the cursor
func (s Sidebar) Selected() domain.Category {
	return s.categories[s.cursor]
}

// Select moves the cursor to c
func (s *Sidebar) Select(c domain.Category) {
	for i, cat := range s.categories {
		if cat == c {
			s.cursor = i
			return
		}
	}
}

func (s *Sidebar) SetSize(width, height int) {
	s.width = width
	s.height = height
}

func (s *Sidebar) SetFocused(focused bool) {
	s.focused = focused
}

func (s Sidebar) IsFocused() bool {
	return s.focused
}

// SetSpinnerFrame updates the spinner animation frame
func (s *Sidebar) SetSpinnerFrame(frame int) {
	s.frame = frame
}

// Update moves the cursor. It reports whether the selection changed.
func (s Sidebar) Update(msg tea.Msg) (Sidebar, bool) {
	if !s.focused {
		return s, false
	}
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return s, false
	}
	prev := s.cursor
	switch keyMsg.String() {
	case "j", "down":
		if s.cursor < len(s.categories)-1 {
			s.cursor++
		}
	case "k", "up":
		if s.cursor > 0 {
			s.cursor--
		}
	case "g", "home":
		s.cursor = 0
	case "G", "end":
		s.cursor = len(s.categories) - 1
	}
	return s, s.cursor != prev
}

func (s Sidebar) View() string {
	style := styles.InactiveBorder
	if s.focused {
		style = styles.ActiveBorder
	}
	frameW, frameH := style.GetFrameSize()

	itemWidth := s.width - BorderWidth
	if itemWidth < 10 {
		itemWidth = 10
	}

	lines := []string{styles.AccentStyle.Render(styles.Truncate("Categories", itemWidth)), " "}
	for i, c := range s.categories {
		lines = append(lines, s.renderCategory(c, i == s.cursor, itemWidth))
	}

	return style.
		Width(s.width - frameW).
		Height(s.height - frameH).
		Render(strings.Join(lines, "\n"))
}

func (s Sidebar) renderCategory(c domain.Category, selected bool, width int) string {
	st := s.states[c]

	var prefix string
	var prefixFg lipgloss.Color
	switch st.Status {
	case StatusLoading:
		prefix = SpinnerFrame(s.frame) + " "
		prefixFg = styles.MarqueeGold
	case StatusLoaded:
		prefix = styles.LoadedChar + " "
		prefixFg = styles.Green
	case StatusError:
		prefix = styles.ErrorChar + " "
		prefixFg = styles.Red
	default:
		prefix = "  "
		prefixFg = styles.DimGray
	}

	title := c.Title()
	if st.Count > 0 {
		title = fmt.Sprintf("%s (%d)", title, st.Count)
	}
	title = styles.Truncate(title, width-4)

	return styles.RenderListRow([]styles.RowPart{
		{Text: prefix, Foreground: &prefixFg},
		{Text: title},
	}, selected, width)
}
