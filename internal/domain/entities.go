package domain

import (
	"fmt"
	"time"
)

// MovieSummary is one entry of a category listing.
// Identity is ID; values are never mutated after construction.
type MovieSummary struct {
	ID            string  // Remote identifier
	Title         string  // Localized display title
	OriginalTitle string  // Title in the original language
	Overview      string  // Plot synopsis
	ReleaseDate   string  // "YYYY-MM-DD" as returned by the API, may be empty
	PosterPath    string  // Relative poster path, empty when the movie has none
	VoteAverage   float64 // Community rating (0-10)
}

// HasPoster returns true if the movie has a poster image
func (m MovieSummary) HasPoster() bool {
	return m.PosterPath != ""
}

// Year returns the release year parsed from ReleaseDate, or 0
func (m MovieSummary) Year() int {
	if len(m.ReleaseDate) < 4 {
		return 0
	}
	year := 0
	for _, c := range m.ReleaseDate[:4] {
		if c < '0' || c > '9' {
			return 0
		}
		year = year*10 + int(c-'0')
	}
	return year
}

// Description returns secondary info for list rows
func (m MovieSummary) Description() string {
	if y := m.Year(); y > 0 {
		if m.VoteAverage > 0 {
			return fmt.Sprintf("%d · ★ %.1f", y, m.VoteAverage)
		}
		return fmt.Sprintf("%d", y)
	}
	return "TBA"
}

// CategorySlot is the state of one category: its latest items plus load/error status.
// Items survive refreshes that are in progress or failed.
type CategorySlot struct {
	Category  Category
	Items     []MovieSummary
	IsLoading bool
	LastError error
	UpdatedAt time.Time // Time of the last successful result, zero if none
}

// HasItems returns true if the slot holds any movies
func (s CategorySlot) HasItems() bool {
	return len(s.Items) > 0
}

// AggregateStatus is derived from all slots after every mutation
type AggregateStatus struct {
	AnyLoading    bool
	LoadingCount  int
	LatestError   error    // Most recently set error still present in a slot
	ErrorCategory Category // Category LatestError belongs to, valid only when LatestError != nil
}

// HasError returns true if any slot currently carries an error
func (s AggregateStatus) HasError() bool {
	return s.LatestError != nil
}

// ErrorMessage returns the user-facing message for LatestError, or ""
func (s AggregateStatus) ErrorMessage() string {
	if s.LatestError == nil {
		return ""
	}
	return s.LatestError.Error()
}

// MovieDetails is the full record for a single movie
type MovieDetails struct {
	MovieSummary
	Tagline      string
	Runtime      time.Duration
	Genres       []string
	Status       string // "Released", "Post Production", ...
	Homepage     string
	IMDbID       string
	Budget       int64
	Revenue      int64
	VoteCount    int
	BackdropPath string
}

// FormattedRuntime returns the runtime in a human-readable format
func (d MovieDetails) FormattedRuntime() string {
	if d.Runtime <= 0 {
		return ""
	}
	h := int(d.Runtime.Hours())
	mins := int(d.Runtime.Minutes()) % 60
	if h > 0 {
		return fmt.Sprintf("%dh %dm", h, mins)
	}
	return fmt.Sprintf("%dm", mins)
}

// CastMember is one credited performer
type CastMember struct {
	ID          string
	Name        string
	Character   string
	ProfilePath string
	Order       int // Billing order, 0 = top billed
}

// Review is a user review of a movie
type Review struct {
	ID        string
	Author    string
	Content   string
	URL       string
	Rating    float64 // Author's rating, 0 when not given
	CreatedAt time.Time
}

// MovieProfile bundles everything the detail view shows for a movie
type MovieProfile struct {
	Details         MovieDetails
	Cast            []CastMember
	Reviews         []Review
	Recommendations []MovieSummary
	FetchedAt       time.Time
}

// TopCast returns at most n cast members in billing order
func (p MovieProfile) TopCast(n int) []CastMember {
	if n >= len(p.Cast) {
		return p.Cast
	}
	return p.Cast[:n]
}
