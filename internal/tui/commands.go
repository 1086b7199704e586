package tui

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/mmcdole/marquee/internal/dashboard"
	"github.com/mmcdole/marquee/internal/details"
	"github.com/mmcdole/marquee/internal/domain"
	"github.com/mmcdole/marquee/internal/search"
)

// Command factories for async operations

const (
	refreshTimeout = 60 * time.Second
	profileTimeout = 30 * time.Second
)

// WaitForChangeCmd blocks until the store publishes a change.
// It returns nil once the subscription is closed.
func WaitForChangeCmd(changes <-chan dashboard.Change) tea.Cmd {
	return func() tea.Msg {
		change, ok := <-changes
		if !ok {
			return nil
		}
		return StoreChangedMsg{Change: change}
	}
}

// WaitForSearchCmd blocks until the search controller publishes a result
func WaitForSearchCmd(results <-chan search.Result) tea.Cmd {
	return func() tea.Msg {
		result, ok := <-results
		if !ok {
			return nil
		}
		return SearchResultMsg{Result: result}
	}
}

// RefreshAllCmd refreshes every category. Progress arrives through the store.
func RefreshAllCmd(orch *dashboard.Orchestrator) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), refreshTimeout)
		defer cancel()

		orch.RefreshAll(ctx)
		return RefreshDoneMsg{All: true}
	}
}

// RefreshCategoryCmd refreshes a single category
func RefreshCategoryCmd(orch *dashboard.Orchestrator, c domain.Category) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), refreshTimeout)
		defer cancel()

		orch.RefreshCategory(ctx, c)
		return RefreshDoneMsg{Category: c}
	}
}

// LoadProfileCmd loads the full profile of a movie
func LoadProfileCmd(svc *details.Service, movieID string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), profileTimeout)
		defer cancel()

		profile, err := svc.Load(ctx, movieID)
		if err != nil {
			return ProfileErrMsg{MovieID: movieID, Err: err}
		}
		return ProfileLoadedMsg{MovieID: movieID, Profile: profile}
	}
}

// OpenMovieCmd opens the movie's web page
func OpenMovieCmd(opener MovieOpener, movie domain.MovieSummary) tea.Cmd {
	return func() tea.Msg {
		if err := opener.OpenMovie(movie.ID); err != nil {
			return ErrMsg{Err: err, Context: "Open in browser"}
		}
		return StatusMsg{Message: "Opened " + movie.Title}
	}
}

// TickCmd returns a command that sends a tick after a delay
func TickCmd(delay time.Duration) tea.Cmd {
	return tea.Tick(delay, func(t time.Time) tea.Msg {
		return TickMsg{}
	})
}

// ClearStatusCmd returns a command that clears status after a delay
func ClearStatusCmd(delay time.Duration) tea.Cmd {
	return tea.Tick(delay, func(t time.Time) tea.Msg {
		return ClearStatusMsg{}
	})
}
