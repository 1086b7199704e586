package tui

import (
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/mmcdole/marquee/internal/dashboard"
	"github.com/mmcdole/marquee/internal/details"
	"github.com/mmcdole/marquee/internal/domain"
	"github.com/mmcdole/marquee/internal/search"
	"github.com/mmcdole/marquee/internal/tui/components"
)

// ApplicationState represents the current state of the application
type ApplicationState int

const (
	StateBrowsing ApplicationState = iota
	StateHelp
)

// MovieOpener opens a movie's web page
type MovieOpener interface {
	OpenMovie(movieID string) error
}

// Focus identifies the pane receiving navigation keys
type Focus int

const (
	FocusSidebar Focus = iota
	FocusMovies
	FocusSearch
)

const (
	tickInterval     = 100 * time.Millisecond
	statusDuration   = 3 * time.Second
	changeBufferSize = 64
)

// Model is the main Bubble Tea model for the application
type Model struct {
	// Application state
	State ApplicationState
	Ready bool
	Focus Focus

	// Services
	Orchestrator *dashboard.Orchestrator
	Store        *dashboard.CategoryStore
	Search       *search.Controller
	Details      *details.Service
	Browser      MovieOpener // optional

	changes     <-chan dashboard.Change
	unsubscribe func()
	shownQuery  string // Query of the results currently in the Results column

	// UI Components
	Sidebar   components.Sidebar
	Movies    *components.MovieColumn // Listing of the selected category
	Results   *components.MovieColumn // Cross-category search results
	SearchBar components.SearchBar
	Inspector components.Inspector

	// Dimensions
	Width  int
	Height int

	// UI state
	StatusMsg      string
	StatusIsErr    bool
	SpinnerFrame   int
	ShowInspector  bool
	ShowingResults bool // Results replace Movies while a query is active
	RefreshOnStart bool
	Aggregate      domain.AggregateStatus
}

// NewModel creates a new application model subscribed to the orchestrator's store
func NewModel(orch *dashboard.Orchestrator, ctrl *search.Controller, svc *details.Service) Model {
	store := orch.Store()
	changes, unsubscribe := store.Subscribe(changeBufferSize)

	m := Model{
		State:          StateBrowsing,
		Focus:          FocusSidebar,
		Orchestrator:   orch,
		Store:          store,
		Search:         ctrl,
		Details:        svc,
		changes:        changes,
		unsubscribe:    unsubscribe,
		Sidebar:        components.NewSidebar(),
		Movies:         components.NewMovieColumn(components.ColumnTypeCategory, ""),
		Results:        components.NewMovieColumn(components.ColumnTypeSearch, "Search"),
		SearchBar:      components.NewSearchBar(),
		Inspector:      components.NewInspector(),
		ShowInspector:  true,
		RefreshOnStart: true,
	}
	m.syncFromStore()
	m.applyFocus()
	return m
}

// Close releases the store subscription
func (m Model) Close() {
	if m.unsubscribe != nil {
		m.unsubscribe()
	}
}

// Init initializes the application
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{
		WaitForChangeCmd(m.changes),
		WaitForSearchCmd(m.Search.Updates()),
		TickCmd(tickInterval),
	}
	if m.RefreshOnStart {
		cmds = append(cmds, RefreshAllCmd(m.Orchestrator))
	}
	return tea.Batch(cmds...)
}

// Update handles all messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.Width = msg.Width
		m.Height = msg.Height
		m.Ready = true
		m.updateLayout()
		return m, nil

	case tea.KeyMsg:
		return m.handleKeyMsg(msg)

	case TickMsg:
		m.SpinnerFrame++
		m.Sidebar.SetSpinnerFrame(m.SpinnerFrame)
		m.Movies.SetSpinnerFrame(m.SpinnerFrame)
		m.Results.SetSpinnerFrame(m.SpinnerFrame)
		m.SearchBar.SetSpinnerFrame(m.SpinnerFrame)
		return m, TickCmd(tickInterval)

	case StoreChangedMsg:
		// Changes can be dropped for a slow reader, so re-read everything
		m.syncFromStore()
		return m, WaitForChangeCmd(m.changes)

	case SearchResultMsg:
		m.applySearchResult(msg.Result)
		return m, WaitForSearchCmd(m.Search.Updates())

	case RefreshDoneMsg:
		m.Aggregate = m.Store.Status()
		if msg.All {
			return m, nil
		}
		if slot := m.Store.Get(msg.Category); slot.LastError == nil {
			m.StatusMsg = fmt.Sprintf("Refreshed %s", msg.Category.Title())
			m.StatusIsErr = false
			return m, ClearStatusCmd(statusDuration)
		}
		// The footer shows the category error
		m.StatusMsg = ""
		return m, nil

	case ProfileLoadedMsg:
		m.Inspector.SetProfile(msg.Profile)
		return m, nil

	case ProfileErrMsg:
		m.Inspector.SetError(msg.MovieID, msg.Err)
		return m, nil

	case StatusMsg:
		m.StatusMsg = msg.Message
		m.StatusIsErr = msg.IsError
		return m, ClearStatusCmd(statusDuration)

	case ClearStatusMsg:
		m.StatusMsg = ""
		m.StatusIsErr = false
		return m, nil

	case ErrMsg:
		m.StatusMsg = msg.Error()
		m.StatusIsErr = true
		return m, ClearStatusCmd(statusDuration)
	}

	return m, nil
}

// syncFromStore copies every slot and the aggregate status into the view
func (m *Model) syncFromStore() {
	for _, c := range domain.Categories() {
		m.Sidebar.SetState(c, components.StateFromSlot(m.Store.Get(c)))
	}
	m.Aggregate = m.Store.Status()
	m.loadSelectedCategory(true)
}

// loadSelectedCategory shows the sidebar's category in the movie column
func (m *Model) loadSelectedCategory(keepSelection bool) {
	c := m.Sidebar.Selected()
	slot := m.Store.Get(c)

	m.Movies.SetTitle(c.Title())
	m.Movies.SetItems(slot.Items, keepSelection)
	m.Movies.SetLoading(slot.IsLoading && !slot.HasItems())
	if slot.LastError != nil {
		m.Movies.SetEmptyMessage("Failed to load "+c.Title(), slot.LastError.Error(), "", "r: retry")
	} else {
		m.Movies.SetEmptyMessage("No movies", "", "r: refresh")
	}
	m.syncInspector()
}

// applySearchResult shows a settled search in the results column
func (m *Model) applySearchResult(r search.Result) {
	if r.Query != m.SearchBar.Query() {
		// The bar has moved on; a newer result is on its way
		return
	}
	if r.Query == "" {
		m.ShowingResults = false
		m.shownQuery = ""
		m.Results.SetItems(nil, false)
		m.SearchBar.Clear()
		m.syncInspector()
		return
	}

	// A re-run of the same query (after a store change) keeps the cursor
	keep := r.Query == m.shownQuery
	m.shownQuery = r.Query

	m.ShowingResults = true
	m.Results.SetTitle(fmt.Sprintf("Search: %q", r.Query))
	m.Results.SetItems(r.Movies, keep)
	m.SearchBar.SetSettled(len(r.Movies), r.NoResults)
	if r.NoResults {
		lines := []string{fmt.Sprintf("No results for %q", r.Query)}
		if len(r.Suggestions) > 0 {
			lines = append(lines, "", "Did you mean:")
			for _, s := range r.Suggestions {
				lines = append(lines, "  "+s)
			}
		}
		m.Results.SetEmptyMessage(lines...)
	}
	m.syncInspector()
}

// setQuery forwards an edited query to the search controller
func (m *Model) setQuery(q string) {
	m.Search.SetQuery(q)
	if q == "" {
		m.ShowingResults = false
		m.shownQuery = ""
		m.Results.SetItems(nil, false)
		m.SearchBar.Clear()
		m.syncInspector()
		return
	}
	m.ShowingResults = true
	m.Results.SetTitle(fmt.Sprintf("Search: %q", q))
	m.SearchBar.SetPending()
}

// activeColumn returns the column currently shown in the movie pane
func (m Model) activeColumn() *components.MovieColumn {
	if m.ShowingResults {
		return m.Results
	}
	return m.Movies
}

// syncInspector points the inspector at the selected movie, using a cached
// profile when there is one
func (m *Model) syncInspector() {
	movie := m.activeColumn().SelectedMovie()
	m.Inspector.SetMovie(movie)
	if movie == nil || m.Details == nil || m.Inspector.Profile() != nil {
		return
	}
	if profile, ok := m.Details.Cached(movie.ID); ok {
		m.Inspector.SetProfile(profile)
	}
}

// applyFocus propagates the focus to the components
func (m *Model) applyFocus() {
	m.Sidebar.SetFocused(m.Focus == FocusSidebar)
	m.Movies.SetFocused(m.Focus == FocusMovies && !m.ShowingResults)
	m.Results.SetFocused(m.Focus == FocusMovies && m.ShowingResults)
	if m.Focus != FocusSearch {
		m.SearchBar.Blur()
	}
}
