package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/mmcdole/marquee/internal/domain"
	"github.com/mmcdole/marquee/internal/tui/styles"
)

// Layout constants for inspector
const (
	InspectorBorderHeight     = 2
	InspectorScrollIndicators = 2
	inspectorCastCount        = 5
)

// inspectorContent holds the three-zone layout content
type inspectorContent struct {
	header string // fixed top
	body   string // scrollable middle
	footer string // fixed bottom
}

// Inspector displays the selected movie, enriched with its profile once loaded
type Inspector struct {
	movie      *domain.MovieSummary
	profile    *domain.MovieProfile
	loading    bool
	err        error
	width      int
	height     int
	offset     int // scroll offset
	maxVisible int // max visible lines
}

// NewInspector creates a new inspector component
func NewInspector() Inspector {
	return Inspector{}
}

// SetMovie sets the movie to display, dropping a profile for a different movie
func (i *Inspector) SetMovie(m *domain.MovieSummary) {
	if m == nil || i.movie == nil || i.movie.ID != m.ID {
		i.profile = nil
		i.loading = false
		i.err = nil
		i.offset = 0
	}
	i.movie = m
}

// MovieID returns the id of the displayed movie, or ""
func (i Inspector) MovieID() string {
	if i.movie == nil {
		return ""
	}
	return i.movie.ID
}

// SetLoading marks the profile of the displayed movie as being fetched
func (i *Inspector) SetLoading() {
	i.loading = true
	i.err = nil
}

// SetProfile attaches a loaded profile if it belongs to the displayed movie
func (i *Inspector) SetProfile(p *domain.MovieProfile) {
	if p == nil || i.movie == nil || p.Details.ID != i.movie.ID {
		return
	}
	i.profile = p
	i.loading = false
	i.err = nil
}

// SetError records a failed profile load for movieID
func (i *Inspector) SetError(movieID string, err error) {
	if i.movie == nil || i.movie.ID != movieID {
		return
	}
	i.loading = false
	i.err = err
}

// Profile returns the attached profile, or nil
func (i Inspector) Profile() *domain.MovieProfile {
	return i.profile
}

// SetSize updates the component dimensions
func (i *Inspector) SetSize(width, height int) {
	i.width = width
	i.height = height
	// Reserve space for border, scroll indicators, title and blank line
	i.maxVisible = height - InspectorBorderHeight - InspectorScrollIndicators - 2
	if i.maxVisible < 1 {
		i.maxVisible = 1
	}
}

// ScrollDown scrolls the body by one line
func (i *Inspector) ScrollDown() {
	i.offset++
}

// ScrollUp scrolls the body by one line
func (i *Inspector) ScrollUp() {
	if i.offset > 0 {
		i.offset--
	}
}

// View renders the component
func (i Inspector) View() string {
	style := styles.InactiveBorder

	// Border takes 2 chars, leave 1 char safety margin
	contentWidth := max(i.width-3, 10)
	content := i.render(contentWidth)

	titleLine := styles.AccentStyle.Render(styles.Truncate("Info", contentWidth))

	headerLines := splitLines(content.header)
	footerLines := splitLines(content.footer)
	bodyLines := splitLines(content.body)

	availableForBody := max(i.maxVisible-len(headerLines)-len(footerLines), 1)

	maxOffset := max(len(bodyLines)-availableForBody, 0)
	offset := min(i.offset, maxOffset)
	end := min(offset+availableForBody, len(bodyLines))
	visibleBody := bodyLines[offset:end]

	up := " "
	if offset > 0 {
		up = styles.DimStyle.Render("↑ more")
	}
	down := " "
	if end < len(bodyLines) {
		down = styles.DimStyle.Render("↓ more")
	}

	parts := []string{titleLine, ""}
	if content.header != "" {
		parts = append(parts, headerLines...)
	}
	parts = append(parts, up)
	parts = append(parts, visibleBody...)
	for j := len(visibleBody); j < availableForBody; j++ {
		parts = append(parts, "")
	}
	parts = append(parts, down)
	if content.footer != "" {
		parts = append(parts, footerLines...)
	}

	frameW, frameH := style.GetFrameSize()
	return style.
		Width(i.width - frameW).
		Height(i.height - frameH).
		Render(strings.Join(parts, "\n"))
}

func (i Inspector) render(width int) inspectorContent {
	if i.movie == nil {
		return inspectorContent{body: styles.DimStyle.Render("No movie selected")}
	}
	return inspectorContent{
		header: renderMovieHeader(*i.movie, i.profile, width),
		body:   i.renderBody(width),
		footer: i.renderFooter(width),
	}
}

func renderMovieHeader(m domain.MovieSummary, p *domain.MovieProfile, width int) string {
	var b strings.Builder
	b.WriteString(styles.TitleStyle.Render(styles.Truncate(m.Title, width)))
	b.WriteString("\n")

	if m.OriginalTitle != "" && m.OriginalTitle != m.Title {
		b.WriteString(styles.SubtitleStyle.Render(styles.Truncate(m.OriginalTitle, width)))
		b.WriteString("\n")
	}

	// Meta line: Release date · Runtime · Genres
	var meta []string
	if m.ReleaseDate != "" {
		meta = append(meta, m.ReleaseDate)
	} else {
		meta = append(meta, "TBA")
	}
	if p != nil {
		if rt := p.Details.FormattedRuntime(); rt != "" {
			meta = append(meta, rt)
		}
		if len(p.Details.Genres) > 0 {
			meta = append(meta, strings.Join(p.Details.Genres, ", "))
		}
	}
	b.WriteString(styles.DimStyle.Render(styles.Truncate(strings.Join(meta, " · "), width)))

	if m.VoteAverage > 0 {
		var ratingStyle lipgloss.Style
		switch {
		case m.VoteAverage >= 7:
			ratingStyle = lipgloss.NewStyle().Foreground(styles.Green)
		case m.VoteAverage >= 5:
			ratingStyle = lipgloss.NewStyle().Foreground(styles.MarqueeGold)
		default:
			ratingStyle = lipgloss.NewStyle().Foreground(styles.Red)
		}
		b.WriteString("\n")
		b.WriteString(ratingStyle.Render(fmt.Sprintf("%s %.1f", styles.RatingChar, m.VoteAverage)))
		if p != nil && p.Details.VoteCount > 0 {
			b.WriteString(styles.DimStyle.Render(fmt.Sprintf("  (%d votes)", p.Details.VoteCount)))
		}
	}
	return b.String()
}

func (i Inspector) renderBody(width int) string {
	bodyWidth := min(width-2, 80)
	var sections []string

	if i.profile != nil && i.profile.Details.Tagline != "" {
		sections = append(sections, styles.AccentStyle.Render(wordWrap(i.profile.Details.Tagline, bodyWidth)))
	}
	if i.movie.Overview != "" {
		sections = append(sections, styles.SubtitleStyle.Render(wordWrap(i.movie.Overview, bodyWidth)))
	}

	switch {
	case i.err != nil:
		sections = append(sections, styles.ErrorStyle.Render(wordWrap(i.err.Error(), bodyWidth)))
	case i.loading:
		sections = append(sections, styles.DimStyle.Render("Loading details..."))
	case i.profile != nil:
		if cast := i.profile.TopCast(inspectorCastCount); len(cast) > 0 {
			lines := []string{styles.TitleStyle.Render("Cast")}
			for _, c := range cast {
				line := styles.Truncate(c.Name, width)
				if room := width - lipgloss.Width(line) - 4; c.Character != "" && room > 0 {
					line += styles.DimStyle.Render(" as " + styles.Truncate(c.Character, room))
				}
				lines = append(lines, line)
			}
			sections = append(sections, strings.Join(lines, "\n"))
		}
		if len(i.profile.Recommendations) > 0 {
			var titles []string
			for _, r := range i.profile.Recommendations {
				titles = append(titles, r.Title)
			}
			sections = append(sections, styles.TitleStyle.Render("Recommended")+"\n"+
				styles.SubtitleStyle.Render(wordWrap(strings.Join(titles, ", "), bodyWidth)))
		}
	}

	return strings.Join(sections, "\n\n")
}

func (i Inspector) renderFooter(width int) string {
	if i.profile == nil {
		return styles.DimStyle.Render("enter: load details")
	}
	var parts []string
	parts = append(parts, fmt.Sprintf("%d reviews", len(i.profile.Reviews)))
	if i.profile.Details.IMDbID != "" {
		parts = append(parts, i.profile.Details.IMDbID)
	}
	if i.profile.Details.Status != "" {
		parts = append(parts, i.profile.Details.Status)
	}
	separator := strings.Repeat("─", width)
	return styles.DimStyle.Render(separator) + "\n" +
		styles.DimStyle.Render(styles.Truncate(strings.Join(parts, " · "), width))
}

// splitLines splits a string into lines, returning empty slice for empty string
func splitLines(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(s, "\n")
}

// wordWrap wraps text to the specified width
func wordWrap(text string, width int) string {
	if width <= 0 {
		return text
	}

	var result strings.Builder
	lineLen := 0

	for i, word := range strings.Fields(text) {
		wordLen := len([]rune(word))

		if lineLen+wordLen+1 > width && lineLen > 0 {
			result.WriteString("\n")
			lineLen = 0
		}

		if i > 0 && lineLen > 0 {
			result.WriteString(" ")
			lineLen++
		}

		result.WriteString(word)
		lineLen += wordLen
	}

	return result.String()
}
