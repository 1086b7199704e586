package domain

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCategories_FixedOrder(t *testing.T) {
	cats := Categories()
	require.Len(t, cats, int(CategoryCount))
	assert.Equal(t, []Category{
		CategoryNowPlaying,
		CategoryTopRated,
		CategoryUpcoming,
		CategoryTrendingDay,
		CategoryTrendingWeek,
	}, cats)
	for _, c := range cats {
		assert.True(t, c.Valid(), c.String())
	}
	assert.False(t, CategoryCount.Valid())
	assert.False(t, Category(-1).Valid())
}

func TestParseCategory(t *testing.T) {
	tests := []struct {
		in   string
		want Category
	}{
		{"now_playing", CategoryNowPlaying},
		{"Top-Rated", CategoryTopRated},
		{" upcoming ", CategoryUpcoming},
		{"trending_day", CategoryTrendingDay},
		{"TRENDING-WEEK", CategoryTrendingWeek},
	}
	for _, tt := range tests {
		got, err := ParseCategory(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got)
	}

	_, err := ParseCategory("popular")
	assert.Error(t, err)
}

func TestTrendingWindows(t *testing.T) {
	assert.Equal(t, TimeWindowDay, CategoryTrendingDay.DefaultWindow())
	assert.Equal(t, TimeWindowWeek, CategoryTrendingWeek.DefaultWindow())
	assert.Equal(t, TimeWindow(""), CategoryUpcoming.DefaultWindow())
	assert.True(t, CategoryTrendingDay.IsTrending())
	assert.False(t, CategoryNowPlaying.IsTrending())

	assert.True(t, TimeWindowDay.Valid())
	assert.True(t, TimeWindowWeek.Valid())
	assert.False(t, TimeWindow("month").Valid())
	assert.False(t, TimeWindow("").Valid())
}

func TestMovieSummary_Year(t *testing.T) {
	assert.Equal(t, 2024, MovieSummary{ReleaseDate: "2024-03-01"}.Year())
	assert.Equal(t, 0, MovieSummary{ReleaseDate: ""}.Year())
	assert.Equal(t, 0, MovieSummary{ReleaseDate: "20x4-01-01"}.Year())
	assert.Equal(t, "TBA", MovieSummary{}.Description())
}

func TestFetchError(t *testing.T) {
	cause := errors.New("timeout")
	err := NewFetchError(CategoryTrendingDay, cause)

	assert.Equal(t, "timeout", err.Error())
	assert.ErrorIs(t, err, cause)

	empty := &FetchError{Category: CategoryUpcoming}
	assert.Equal(t, "failed to fetch Upcoming", empty.Error())
}

func TestConfigurationError(t *testing.T) {
	var err error = &ConfigurationError{
		Category: CategoryTrendingWeek,
		Field:    "time window",
		Value:    "month",
		Err:      ErrInvalidTimeWindow,
	}

	assert.ErrorIs(t, err, ErrInvalidTimeWindow)
	var cfgErr *ConfigurationError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, CategoryTrendingWeek, cfgErr.Category)
	assert.Contains(t, err.Error(), `"month"`)
}

func TestAggregateStatus_ErrorMessage(t *testing.T) {
	assert.Equal(t, "", AggregateStatus{}.ErrorMessage())
	assert.False(t, AggregateStatus{}.HasError())

	s := AggregateStatus{LatestError: errors.New("boom")}
	assert.True(t, s.HasError())
	assert.Equal(t, "boom", s.ErrorMessage())
}
