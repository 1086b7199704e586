package domain

import "context"

// MovieFetcher fetches one category listing.
// Implementations must be safe to call concurrently for distinct categories.
type MovieFetcher interface {
	FetchCategory(ctx context.Context, req FetchRequest) ([]MovieSummary, error)
}

// DetailsRepository provides per-movie data for the detail view
type DetailsRepository interface {
	GetMovieDetails(ctx context.Context, movieID string) (*MovieDetails, error)
	GetCredits(ctx context.Context, movieID string) ([]CastMember, error)
	GetReviews(ctx context.Context, movieID string) ([]Review, error)
	GetRecommendations(ctx context.Context, movieID string) ([]MovieSummary, error)
}
