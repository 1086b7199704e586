package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/sahilm/fuzzy"

	"github.com/mmcdole/marquee/internal/domain"
	"github.com/mmcdole/marquee/internal/tui/styles"
)

// Layout constants for list columns
const (
	// Border adds 1 char on each side (left+right for width, top+bottom for height)
	BorderWidth  = 2
	BorderHeight = 2

	// Scroll indicators ("↑ more" and "↓ more") each take 1 line
	ScrollIndicatorLines = 2
)

// MovieColumn is a scrollable, filterable list of movies
type MovieColumn struct {
	movies     []domain.MovieSummary
	columnType ColumnType
	title      string

	// Selection
	cursor     int
	offset     int
	maxVisible int

	// Dimensions
	width   int
	height  int
	focused bool

	// Loading state
	loading      bool
	spinnerFrame int

	// Shown instead of "No movies" when the list is empty
	emptyLines []string

	// Filter state
	filterActive bool
	filterInput  textinput.Model
	filterQuery  string
	filteredIdx  []int   // indices into movies
	matched      [][]int // matched rune positions per filtered row
}

// NewMovieColumn creates an empty column
func NewMovieColumn(colType ColumnType, title string) *MovieColumn {
	ti := textinput.New()
	ti.Placeholder = "type to filter..."
	ti.Prompt = "f "
	ti.PromptStyle = styles.FilterPromptStyle
	ti.TextStyle = styles.FilterStyle

	return &MovieColumn{
		columnType:  colType,
		title:       title,
		filterInput: ti,
	}
}

func (c *MovieColumn) Update(msg tea.Msg) (*MovieColumn, tea.Cmd) {
	if !c.focused {
		return c, nil
	}

	// Filter input focused: typing mode
	if c.filterActive && c.filterInput.Focused() {
		if keyMsg, ok := msg.(tea.KeyMsg); ok {
			switch {
			case key.Matches(keyMsg, ListColumnKeys.Escape):
				c.clearFilter()
				return c, nil
			case key.Matches(keyMsg, ListColumnKeys.Enter):
				c.filterInput.Blur()
				return c, nil
			case keyMsg.String() == "backspace" && c.filterInput.Value() == "":
				c.clearFilter()
				return c, nil
			}
		}

		var cmd tea.Cmd
		c.filterInput, cmd = c.filterInput.Update(msg)
		c.applyFilter()
		return c, cmd
	}

	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return c, nil
	}

	if c.filterActive {
		switch {
		case key.Matches(keyMsg, ListColumnKeys.Escape):
			c.clearFilter()
			return c, nil
		case key.Matches(keyMsg, ListColumnKeys.Filter):
			c.filterInput.Focus()
			return c, nil
		}
	}

	count := c.ItemCount()
	if count == 0 {
		return c, nil
	}

	switch {
	case key.Matches(keyMsg, ListColumnKeys.Down):
		if c.cursor < count-1 {
			c.cursor++
		}
	case key.Matches(keyMsg, ListColumnKeys.Up):
		if c.cursor > 0 {
			c.cursor--
		}
	case key.Matches(keyMsg, ListColumnKeys.Home):
		c.cursor = 0
		c.offset = 0
	case key.Matches(keyMsg, ListColumnKeys.End):
		c.cursor = count - 1
	case key.Matches(keyMsg, ListColumnKeys.HalfDown), key.Matches(keyMsg, ListColumnKeys.PageDown):
		c.cursor = min(c.cursor+max(c.maxVisible/2, 1), count-1)
	case key.Matches(keyMsg, ListColumnKeys.HalfUp), key.Matches(keyMsg, ListColumnKeys.PageUp):
		c.cursor = max(c.cursor-max(c.maxVisible/2, 1), 0)
	}
	c.ensureVisible()
	return c, nil
}

func (c *MovieColumn) View() string {
	style := styles.InactiveBorder
	if c.focused {
		style = styles.ActiveBorder
	}

	content := c.renderContent()

	// Subtract frame (border) size so total rendered size equals c.width x c.height
	frameW, frameH := style.GetFrameSize()

	return style.
		Width(c.width - frameW).
		Height(c.height - frameH).
		Render(content)
}

func (c *MovieColumn) SetSize(width, height int) {
	c.width = width
	c.height = height
	c.recalcMaxVisible()
	c.ensureVisible()
}

func (c *MovieColumn) Width() int  { return c.width }
func (c *MovieColumn) Height() int { return c.height }

func (c *MovieColumn) SetFocused(focused bool) {
	c.focused = focused
}

func (c *MovieColumn) IsFocused() bool {
	return c.focused
}

func (c *MovieColumn) Title() string {
	return c.title
}

func (c *MovieColumn) SetTitle(title string) {
	c.title = title
}

// ColumnType returns what the column is showing
func (c *MovieColumn) ColumnType() ColumnType {
	return c.columnType
}

// SetItems replaces the column's movies. When keepSelection is set the cursor
// stays on the same movie if it is still present.
func (c *MovieColumn) SetItems(movies []domain.MovieSummary, keepSelection bool) {
	selectedID := ""
	if keepSelection {
		if m := c.SelectedMovie(); m != nil {
			selectedID = m.ID
		}
	}

	c.movies = movies
	c.loading = false
	if c.filterActive {
		c.applyFilter()
	}

	c.cursor = 0
	c.offset = 0
	if selectedID != "" {
		for i := 0; i < c.ItemCount(); i++ {
			if c.movies[c.mapIndex(i)].ID == selectedID {
				c.cursor = i
				break
			}
		}
	}
	c.ensureVisible()
}

// Movies returns the unfiltered movies
func (c *MovieColumn) Movies() []domain.MovieSummary {
	return c.movies
}

// SelectedMovie returns the movie under the cursor, or nil
func (c *MovieColumn) SelectedMovie() *domain.MovieSummary {
	count := c.ItemCount()
	if count == 0 || c.cursor >= count {
		return nil
	}
	m := c.movies[c.mapIndex(c.cursor)]
	return &m
}

func (c *MovieColumn) SelectedIndex() int {
	return c.cursor
}

func (c *MovieColumn) ItemCount() int {
	if c.filteredIdx != nil {
		return len(c.filteredIdx)
	}
	return len(c.movies)
}

func (c *MovieColumn) IsEmpty() bool {
	return c.ItemCount() == 0
}

func (c *MovieColumn) SetLoading(loading bool) {
	c.loading = loading
}

func (c *MovieColumn) IsLoading() bool {
	return c.loading
}

// SetEmptyMessage sets the lines shown when the column has no movies
func (c *MovieColumn) SetEmptyMessage(lines ...string) {
	c.emptyLines = lines
}

// SetSpinnerFrame updates the spinner animation frame
func (c *MovieColumn) SetSpinnerFrame(frame int) {
	c.spinnerFrame = frame
}

// ToggleFilter activates the filter input
func (c *MovieColumn) ToggleFilter() {
	c.filterActive = true
	c.filterInput.Focus()
	c.recalcMaxVisible()
}

// IsFiltering returns true if filter mode is active
func (c *MovieColumn) IsFiltering() bool {
	return c.filterActive
}

// IsFilterTyping returns true if filter is active AND input is focused
func (c *MovieColumn) IsFilterTyping() bool {
	return c.filterActive && c.filterInput.Focused()
}

// ClearFilter deactivates the filter and shows all items
func (c *MovieColumn) ClearFilter() {
	c.clearFilter()
}

// Internal methods

func (c *MovieColumn) recalcMaxVisible() {
	// Interior height minus title line and scroll indicators
	interiorHeight := c.height - BorderHeight
	c.maxVisible = interiorHeight - ScrollIndicatorLines - 1
	if c.filterActive {
		c.maxVisible--
	}
	if c.maxVisible < 1 {
		c.maxVisible = 1
	}
}

func (c *MovieColumn) ensureVisible() {
	if c.maxVisible <= 0 {
		return
	}
	if c.cursor < c.offset {
		c.offset = c.cursor
	}
	if c.cursor >= c.offset+c.maxVisible {
		c.offset = c.cursor - c.maxVisible + 1
	}
}

func (c *MovieColumn) clearFilter() {
	c.filterActive = false
	c.filterQuery = ""
	c.filteredIdx = nil
	c.matched = nil
	c.filterInput.SetValue("")
	c.filterInput.Blur()
	c.recalcMaxVisible()
}

func (c *MovieColumn) applyFilter() {
	query := c.filterInput.Value()
	c.filterQuery = query

	if query == "" {
		c.filteredIdx = nil
		c.matched = nil
		return
	}

	lowerTitles := make([]string, len(c.movies))
	for i, m := range c.movies {
		lowerTitles[i] = strings.ToLower(m.Title)
	}

	matches := fuzzy.Find(strings.ToLower(query), lowerTitles)

	c.filteredIdx = make([]int, len(matches))
	c.matched = make([][]int, len(matches))
	for i, match := range matches {
		c.filteredIdx[i] = match.Index
		c.matched[i] = runePositions(lowerTitles[match.Index], match.MatchedIndexes)
	}

	c.cursor = 0
	c.offset = 0
}

func (c *MovieColumn) mapIndex(i int) int {
	if c.filteredIdx != nil && i < len(c.filteredIdx) {
		return c.filteredIdx[i]
	}
	return i
}

// runePositions converts byte offsets within s to rune positions
func runePositions(s string, byteOffsets []int) []int {
	if len(byteOffsets) == 0 {
		return nil
	}
	pos := make(map[int]int, len(s))
	n := 0
	for b := range s {
		pos[b] = n
		n++
	}
	out := make([]int, 0, len(byteOffsets))
	for _, b := range byteOffsets {
		if p, ok := pos[b]; ok {
			out = append(out, p)
		}
	}
	return out
}

// Rendering

func (c *MovieColumn) renderContent() string {
	itemWidth := c.width - BorderWidth
	if itemWidth < 10 {
		itemWidth = 10
	}

	titleLine := styles.AccentStyle.Render(styles.Truncate(c.title, itemWidth))

	count := c.ItemCount()
	if count == 0 {
		var body []string
		switch {
		case c.loading:
			body = []string{styles.DimStyle.Render(SpinnerFrame(c.spinnerFrame) + " Loading...")}
		case c.filterActive && c.filterQuery != "":
			body = []string{styles.DimStyle.Render("No matches")}
		case len(c.emptyLines) > 0:
			for _, l := range c.emptyLines {
				body = append(body, styles.DimStyle.Render(styles.Truncate(l, itemWidth)))
			}
		default:
			body = []string{styles.DimStyle.Render("No movies")}
		}
		content := titleLine + "\n \n" + strings.Join(body, "\n") + "\n "
		if c.filterActive {
			content += "\n" + c.renderFilterBar()
		}
		return content
	}

	end := min(c.offset+c.maxVisible, count)
	lines := make([]string, 0, end-c.offset)
	for i := c.offset; i < end; i++ {
		var matched []int
		if c.matched != nil && i < len(c.matched) {
			matched = c.matched[i]
		}
		lines = append(lines, renderMovieRow(c.movies[c.mapIndex(i)], matched, i == c.cursor, itemWidth))
	}

	// Always reserve the indicator lines to prevent layout shifts
	header := " "
	if c.offset > 0 {
		header = styles.DimStyle.Render("↑ more")
	}
	if c.loading {
		header = styles.DimStyle.Render(SpinnerFrame(c.spinnerFrame) + " refreshing")
	}
	footer := " "
	if end < count {
		footer = styles.DimStyle.Render("↓ more")
	}

	content := titleLine + "\n" + header + "\n" + strings.Join(lines, "\n") + "\n" + footer
	if c.filterActive {
		content += "\n" + c.renderFilterBar()
	}
	return content
}

func renderMovieRow(m domain.MovieSummary, matched []int, selected bool, width int) string {
	year := ""
	if y := m.Year(); y > 0 {
		year = fmt.Sprintf(" (%d)", y)
	}

	// Available space: width - rating(5) - margins(2)
	available := width - 7 - len(year)
	if available < 5 {
		available = 5
	}
	title := styles.Truncate(m.Title, available)

	ratingFg := styles.DimGray
	rating := "     "
	if m.VoteAverage > 0 {
		ratingFg = styles.MarqueeGold
		rating = fmt.Sprintf("%s%.1f ", styles.RatingChar, m.VoteAverage)
	}

	parts := []styles.RowPart{{Text: rating, Foreground: &ratingFg}}
	parts = append(parts, styles.HighlightParts(title, matched)...)
	dim := styles.DimGray
	if year != "" {
		parts = append(parts, styles.RowPart{Text: year, Foreground: &dim})
	}
	return styles.RenderListRow(parts, selected, width)
}

func (c *MovieColumn) renderFilterBar() string {
	input := c.filterInput.View()
	countStr := ""
	if c.filterQuery != "" {
		countStr = styles.DimStyle.Render(fmt.Sprintf(" [%d/%d]", c.ItemCount(), len(c.movies)))
	}
	return input + countStr
}
