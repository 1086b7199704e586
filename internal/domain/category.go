package domain

import (
	"fmt"
	"strings"
)

// Category identifies one of the fixed movie listing buckets shown on the dashboard
type Category int

const (
	CategoryNowPlaying Category = iota
	CategoryTopRated
	CategoryUpcoming
	CategoryTrendingDay
	CategoryTrendingWeek

	// CategoryCount is the number of categories; it is not a category itself
	CategoryCount
)

// Categories returns every category in dashboard order.
// Flattening for search follows this order.
func Categories() []Category {
	return []Category{
		CategoryNowPlaying,
		CategoryTopRated,
		CategoryUpcoming,
		CategoryTrendingDay,
		CategoryTrendingWeek,
	}
}

// Valid reports whether c is one of the five known categories
func (c Category) Valid() bool {
	return c >= CategoryNowPlaying && c < CategoryCount
}

// String returns the stable key used in config, cache keys, logs and metrics
func (c Category) String() string {
	switch c {
	case CategoryNowPlaying:
		return "now_playing"
	case CategoryTopRated:
		return "top_rated"
	case CategoryUpcoming:
		return "upcoming"
	case CategoryTrendingDay:
		return "trending_day"
	case CategoryTrendingWeek:
		return "trending_week"
	default:
		return fmt.Sprintf("category(%d)", int(c))
	}
}

// Title returns the human-readable heading for the category
func (c Category) Title() string {
	switch c {
	case CategoryNowPlaying:
		return "Now Playing"
	case CategoryTopRated:
		return "Top Rated"
	case CategoryUpcoming:
		return "Upcoming"
	case CategoryTrendingDay:
		return "Trending Today"
	case CategoryTrendingWeek:
		return "Trending This Week"
	default:
		return "Unknown"
	}
}

// IsTrending returns true for categories whose request needs a time window
func (c Category) IsTrending() bool {
	return c == CategoryTrendingDay || c == CategoryTrendingWeek
}

// DefaultWindow returns the time window a trending category uses unless configured otherwise
func (c Category) DefaultWindow() TimeWindow {
	switch c {
	case CategoryTrendingDay:
		return TimeWindowDay
	case CategoryTrendingWeek:
		return TimeWindowWeek
	default:
		return ""
	}
}

// ParseCategory accepts the String() form, case-insensitively, with '-' or '_' separators
func ParseCategory(s string) (Category, error) {
	key := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), "-", "_")
	for _, c := range Categories() {
		if c.String() == key {
			return c, nil
		}
	}
	return 0, fmt.Errorf("unknown category %q", s)
}

// TimeWindow selects the trending period for trending categories
type TimeWindow string

const (
	TimeWindowDay  TimeWindow = "day"
	TimeWindowWeek TimeWindow = "week"
)

// Valid reports whether w is a day or week selector
func (w TimeWindow) Valid() bool {
	return w == TimeWindowDay || w == TimeWindowWeek
}

// FetchRequest is what the dashboard asks the fetch port for.
// Window is only set for trending categories.
type FetchRequest struct {
	Category Category
	Window   TimeWindow
}
