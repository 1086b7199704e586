package details

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/mmcdole/marquee/internal/domain"
)

// DefaultMaxAge is how long a cached profile is served before refetching
const DefaultMaxAge = 30 * time.Minute

// Service loads the detail view for a movie: details, cast, reviews and
// recommendations, fetched concurrently and cached by movie id.
type Service struct {
	repo   domain.DetailsRepository
	cache  domain.Cache
	maxAge time.Duration
	logger *slog.Logger
	now    func() time.Time
}

// NewService creates a new details service. cache may be nil.
func NewService(repo domain.DetailsRepository, cache domain.Cache, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		repo:   repo,
		cache:  cache,
		maxAge: DefaultMaxAge,
		logger: logger,
		now:    time.Now,
	}
}

// SetMaxAge overrides DefaultMaxAge. Zero or negative disables cache reads.
func (s *Service) SetMaxAge(d time.Duration) {
	s.maxAge = d
}

// Cached returns the cached profile for movieID regardless of age
func (s *Service) Cached(movieID string) (*domain.MovieProfile, bool) {
	if s.cache == nil {
		return nil, false
	}
	return s.cache.GetProfile(movieID)
}

// Load returns the profile for movieID. Details and credits are required;
// reviews and recommendations degrade to empty lists when they fail.
func (s *Service) Load(ctx context.Context, movieID string) (*domain.MovieProfile, error) {
	movieID = strings.TrimSpace(movieID)
	if movieID == "" {
		return nil, fmt.Errorf("movie id is required: %w", domain.ErrNotFound)
	}

	if p, ok := s.Cached(movieID); ok && s.maxAge > 0 && s.now().Sub(p.FetchedAt) < s.maxAge {
		s.logger.Debug("profile cache hit", "movieID", movieID)
		return p, nil
	}

	var (
		details *domain.MovieDetails
		cast    []domain.CastMember
		reviews []domain.Review
		recs    []domain.MovieSummary
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		d, err := s.repo.GetMovieDetails(gctx, movieID)
		if err != nil {
			return fmt.Errorf("failed to load details: %w", err)
		}
		details = d
		return nil
	})
	g.Go(func() error {
		c, err := s.repo.GetCredits(gctx, movieID)
		if err != nil {
			return fmt.Errorf("failed to load cast: %w", err)
		}
		cast = c
		return nil
	})
	g.Go(func() error {
		r, err := s.repo.GetReviews(gctx, movieID)
		if err != nil {
			s.logOptional("reviews", movieID, err)
			r = nil
		}
		reviews = r
		return nil
	})
	g.Go(func() error {
		r, err := s.repo.GetRecommendations(gctx, movieID)
		if err != nil {
			s.logOptional("recommendations", movieID, err)
			r = nil
		}
		recs = r
		return nil
	})
	if err := g.Wait(); err != nil {
		s.logger.Error("failed to load movie", "movieID", movieID, "error", err)
		return nil, err
	}

	profile := &domain.MovieProfile{
		Details:         *details,
		Cast:            nonNil(cast),
		Reviews:         nonNil(reviews),
		Recommendations: nonNil(recs),
		FetchedAt:       s.now(),
	}

	if s.cache != nil {
		if err := s.cache.SaveProfile(profile); err != nil {
			s.logger.Error("failed to cache profile", "movieID", movieID, "error", err)
		}
	}
	return profile, nil
}

func (s *Service) logOptional(what, movieID string, err error) {
	// A sibling failure cancels the group; that is not worth a warning
	if errors.Is(err, context.Canceled) {
		return
	}
	s.logger.Warn("optional movie data unavailable", "part", what, "movieID", movieID, "error", err)
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
