package domain

import "time"

// CategorySnapshot is a persisted category listing
type CategorySnapshot struct {
	Category Category       `json:"category"`
	Items    []MovieSummary `json:"items"`
	SavedAt  time.Time      `json:"saved_at"`
}

// Cache persists the last good data across runs (BoltDB + memory).
// It is never the source of truth while the app runs; the dashboard store is.
type Cache interface {
	// === Categories ===
	GetCategory(c Category) (CategorySnapshot, bool)
	SaveCategory(c Category, items []MovieSummary) error

	// === Movie profiles ===
	GetProfile(movieID string) (*MovieProfile, bool)
	SaveProfile(p *MovieProfile) error

	// === Invalidation ===
	InvalidateCategory(c Category)
	InvalidateAll()

	Close() error
}
