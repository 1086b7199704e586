package details

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmcdole/marquee/internal/domain"
	"github.com/mmcdole/marquee/internal/store"
)

type fakeRepo struct {
	detailsErr error
	creditsErr error
	reviewsErr error
	recsErr    error
	calls      atomic.Int32
}

func (f *fakeRepo) GetMovieDetails(ctx context.Context, id string) (*domain.MovieDetails, error) {
	f.calls.Add(1)
	if f.detailsErr != nil {
		return nil, f.detailsErr
	}
	return &domain.MovieDetails{MovieSummary: domain.MovieSummary{ID: id, Title: "Dune"}, Runtime: 155 * time.Minute}, nil
}

func (f *fakeRepo) GetCredits(ctx context.Context, id string) ([]domain.CastMember, error) {
	if f.creditsErr != nil {
		return nil, f.creditsErr
	}
	return []domain.CastMember{{ID: "1", Name: "Timothée Chalamet"}, {ID: "2", Name: "Zendaya", Order: 1}}, nil
}

func (f *fakeRepo) GetReviews(ctx context.Context, id string) ([]domain.Review, error) {
	if f.reviewsErr != nil {
		return nil, f.reviewsErr
	}
	return []domain.Review{{ID: "r1", Author: "critic"}}, nil
}

func (f *fakeRepo) GetRecommendations(ctx context.Context, id string) ([]domain.MovieSummary, error) {
	if f.recsErr != nil {
		return nil, f.recsErr
	}
	return []domain.MovieSummary{{ID: "9", Title: "Arrival"}}, nil
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestLoad_AllParts(t *testing.T) {
	svc := NewService(&fakeRepo{}, nil, quietLogger())

	p, err := svc.Load(context.Background(), "438631")
	require.NoError(t, err)
	assert.Equal(t, "Dune", p.Details.Title)
	assert.Len(t, p.Cast, 2)
	assert.Len(t, p.Reviews, 1)
	assert.Equal(t, "Arrival", p.Recommendations[0].Title)
	assert.False(t, p.FetchedAt.IsZero())
}

func TestLoad_RequiredPartsFail(t *testing.T) {
	svc := NewService(&fakeRepo{detailsErr: domain.ErrNotFound}, nil, quietLogger())
	_, err := svc.Load(context.Background(), "1")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	svc = NewService(&fakeRepo{creditsErr: domain.ErrServerUnavailable}, nil, quietLogger())
	_, err = svc.Load(context.Background(), "1")
	assert.ErrorIs(t, err, domain.ErrServerUnavailable)
}

func TestLoad_OptionalPartsDegrade(t *testing.T) {
	svc := NewService(&fakeRepo{
		reviewsErr: errors.New("boom"),
		recsErr:    domain.ErrRateLimited,
	}, nil, quietLogger())

	p, err := svc.Load(context.Background(), "1")
	require.NoError(t, err)
	assert.NotNil(t, p.Reviews)
	assert.Empty(t, p.Reviews)
	assert.NotNil(t, p.Recommendations)
	assert.Empty(t, p.Recommendations)
	assert.Len(t, p.Cast, 2)
}

func TestLoad_EmptyID(t *testing.T) {
	svc := NewService(&fakeRepo{}, nil, quietLogger())
	_, err := svc.Load(context.Background(), "  ")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestLoad_Cache(t *testing.T) {
	cache, err := store.NewSnapshotStore("", "")
	require.NoError(t, err)
	repo := &fakeRepo{}
	svc := NewService(repo, cache, quietLogger())
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }

	_, err = svc.Load(context.Background(), "42")
	require.NoError(t, err)
	_, err = svc.Load(context.Background(), "42")
	require.NoError(t, err)
	assert.Equal(t, int32(1), repo.calls.Load(), "second load served from cache")

	cached, ok := svc.Cached("42")
	require.True(t, ok)
	assert.Equal(t, "Dune", cached.Details.Title)

	now = now.Add(DefaultMaxAge)
	_, err = svc.Load(context.Background(), "42")
	require.NoError(t, err)
	assert.Equal(t, int32(2), repo.calls.Load(), "stale profile refetched")
}
