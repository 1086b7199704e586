package tui

// Layout proportions
const (
	SidebarWidth     = 26
	InspectorPercent = 45 // Share of the space right of the sidebar
	MinColumnWidth   = 20

	// Vertical layout: search bar on top, single footer line at the bottom
	ChromeHeight = 2
)

// columnLayout holds calculated column widths for the View
type columnLayout struct {
	sidebarWidth   int
	moviesWidth    int
	inspectorWidth int // 0 if not shown
}

// calculateColumnLayout computes column widths based on inspector visibility
func (m Model) calculateColumnLayout(availableWidth int) columnLayout {
	layout := columnLayout{sidebarWidth: min(SidebarWidth, availableWidth/3)}
	rest := availableWidth - layout.sidebarWidth

	if m.ShowInspector {
		layout.inspectorWidth = rest * InspectorPercent / 100
		layout.moviesWidth = max(rest-layout.inspectorWidth, MinColumnWidth)
		layout.inspectorWidth = rest - layout.moviesWidth
		if layout.inspectorWidth < MinColumnWidth {
			layout.moviesWidth = rest
			layout.inspectorWidth = 0
		}
	} else {
		layout.moviesWidth = rest
	}
	return layout
}

// updateLayout updates component sizes based on window size
func (m *Model) updateLayout() {
	if m.Width == 0 || m.Height == 0 {
		return
	}

	contentHeight := m.Height - ChromeHeight
	layout := m.calculateColumnLayout(m.Width)

	m.SearchBar.SetWidth(m.Width)
	m.Sidebar.SetSize(layout.sidebarWidth, contentHeight)
	m.Movies.SetSize(layout.moviesWidth, contentHeight)
	m.Results.SetSize(layout.moviesWidth, contentHeight)
	if layout.inspectorWidth > 0 {
		m.Inspector.SetSize(layout.inspectorWidth, contentHeight)
	}
}
