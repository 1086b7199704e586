package tmdb

import (
	"sort"
	"strconv"
	"time"

	"github.com/mmcdole/marquee/internal/domain"
)

// MapMovies converts listing results, skipping non-movie trending entries
func MapMovies(results []movieResult) []domain.MovieSummary {
	movies := make([]domain.MovieSummary, 0, len(results))
	for _, r := range results {
		if r.MediaType != "" && r.MediaType != "movie" {
			continue
		}
		movies = append(movies, MapMovie(r))
	}
	return movies
}

// MapMovie converts a single listing result
func MapMovie(r movieResult) domain.MovieSummary {
	return domain.MovieSummary{
		ID:            strconv.FormatInt(r.ID, 10),
		Title:         r.Title,
		OriginalTitle: r.OriginalTitle,
		Overview:      r.Overview,
		ReleaseDate:   r.ReleaseDate,
		PosterPath:    deref(r.PosterPath),
		VoteAverage:   r.VoteAverage,
	}
}

// MapDetails converts a /movie/{id} payload
func MapDetails(d movieDetails) *domain.MovieDetails {
	genres := make([]string, 0, len(d.Genres))
	for _, g := range d.Genres {
		genres = append(genres, g.Name)
	}
	return &domain.MovieDetails{
		MovieSummary: MapMovie(d.movieResult),
		Tagline:      d.Tagline,
		Runtime:      time.Duration(d.Runtime) * time.Minute,
		Genres:       genres,
		Status:       d.Status,
		Homepage:     d.Homepage,
		IMDbID:       deref(d.IMDbID),
		Budget:       d.Budget,
		Revenue:      d.Revenue,
		VoteCount:    d.VoteCount,
		BackdropPath: deref(d.BackdropPath),
	}
}

// MapCast converts credits to cast members in billing order
func MapCast(cast []castResult) []domain.CastMember {
	members := make([]domain.CastMember, 0, len(cast))
	for _, c := range cast {
		members = append(members, domain.CastMember{
			ID:          strconv.FormatInt(c.ID, 10),
			Name:        c.Name,
			Character:   c.Character,
			ProfilePath: deref(c.ProfilePath),
			Order:       c.Order,
		})
	}
	sort.SliceStable(members, func(i, j int) bool { return members[i].Order < members[j].Order })
	return members
}

// MapReviews converts review results
func MapReviews(results []reviewResult) []domain.Review {
	reviews := make([]domain.Review, 0, len(results))
	for _, r := range results {
		review := domain.Review{
			ID:      r.ID,
			Author:  r.Author,
			Content: r.Content,
			URL:     r.URL,
		}
		if r.AuthorDetails.Rating != nil {
			review.Rating = *r.AuthorDetails.Rating
		}
		if t, err := time.Parse(time.RFC3339, r.CreatedAt); err == nil {
			review.CreatedAt = t
		}
		reviews = append(reviews, review)
	}
	return reviews
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
