package components

import (
	"errors"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"

	"github.com/mmcdole/marquee/internal/domain"
)

func TestStateFromSlot(t *testing.T) {
	items := []domain.MovieSummary{{ID: "1"}, {ID: "2"}}
	boom := errors.New("boom")

	tests := []struct {
		name string
		slot domain.CategorySlot
		want CategoryState
	}{
		{"idle", domain.CategorySlot{}, CategoryState{Status: StatusIdle}},
		{"first load", domain.CategorySlot{IsLoading: true}, CategoryState{Status: StatusLoading}},
		{"reload", domain.CategorySlot{IsLoading: true, Items: items}, CategoryState{Status: StatusLoading, Count: 2, Stale: true}},
		{"loaded", domain.CategorySlot{Items: items, UpdatedAt: time.Now()}, CategoryState{Status: StatusLoaded, Count: 2}},
		{"loaded empty", domain.CategorySlot{UpdatedAt: time.Now()}, CategoryState{Status: StatusLoaded}},
		{"failed with items", domain.CategorySlot{Items: items, LastError: boom}, CategoryState{Status: StatusError, Count: 2, Stale: true, Error: boom}},
		{"failed", domain.CategorySlot{LastError: boom}, CategoryState{Status: StatusError, Error: boom}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, StateFromSlot(tt.slot))
		})
	}
}

func TestSidebar_Update(t *testing.T) {
	s := NewSidebar()
	assert.Equal(t, domain.CategoryNowPlaying, s.Selected())

	s, changed := s.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("k")})
	assert.False(t, changed, "already at the top")

	s, changed = s.Update(tea.KeyMsg{Type: tea.KeyDown})
	assert.True(t, changed)
	assert.Equal(t, domain.CategoryTopRated, s.Selected())

	s, _ = s.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("G")})
	assert.Equal(t, domain.CategoryTrendingWeek, s.Selected())

	s.SetFocused(false)
	_, changed = s.Update(tea.KeyMsg{Type: tea.KeyUp})
	assert.False(t, changed)
}

func TestSidebar_View(t *testing.T) {
	s := NewSidebar()
	s.SetSize(30, 12)
	s.SetState(domain.CategoryTopRated, CategoryState{Status: StatusLoaded, Count: 20})
	s.SetState(domain.CategoryUpcoming, CategoryState{Status: StatusError, Error: errors.New("timeout")})

	view := s.View()
	for _, c := range domain.Categories() {
		assert.Contains(t, view, c.Title())
	}
	assert.Equal(t, StatusError, s.State(domain.CategoryUpcoming).Status)
}
