package tui

import (
	"github.com/mmcdole/marquee/internal/dashboard"
	"github.com/mmcdole/marquee/internal/domain"
	"github.com/mmcdole/marquee/internal/search"
)

// Message types for the TUI

// ErrMsg represents an error
type ErrMsg struct {
	Err     error
	Context string
}

// Error implements the error interface
func (e ErrMsg) Error() string {
	if e.Context != "" {
		return e.Context + ": " + e.Err.Error()
	}
	return e.Err.Error()
}

// StoreChangedMsg carries a category store mutation
type StoreChangedMsg struct {
	Change dashboard.Change
}

// SearchResultMsg carries a settled search published by the controller
type SearchResultMsg struct {
	Result search.Result
}

// RefreshDoneMsg signals that a refresh finished. Category is only set for
// single-category refreshes.
type RefreshDoneMsg struct {
	Category domain.Category
	All      bool
}

// ProfileLoadedMsg signals that a movie profile has been loaded
type ProfileLoadedMsg struct {
	MovieID string
	Profile *domain.MovieProfile
}

// ProfileErrMsg signals that loading a movie profile failed
type ProfileErrMsg struct {
	MovieID string
	Err     error
}

// TickMsg is sent periodically for spinner animation
type TickMsg struct{}

// StatusMsg sets a transient footer message
type StatusMsg struct {
	Message string
	IsError bool
}

// ClearStatusMsg clears the footer message
type ClearStatusMsg struct{}
