package dashboard

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmcdole/marquee/internal/domain"
	"github.com/mmcdole/marquee/internal/store"
)

type fakeFetcher struct {
	mu       sync.Mutex
	results  map[domain.Category][]domain.MovieSummary
	errs     map[domain.Category]error
	gates    map[domain.Category]chan struct{}
	started  chan domain.Category
	calls    map[domain.Category]int
	requests []domain.FetchRequest
}

func newFakeFetcher() *fakeFetcher {
	return &fakeFetcher{
		results: make(map[domain.Category][]domain.MovieSummary),
		errs:    make(map[domain.Category]error),
		gates:   make(map[domain.Category]chan struct{}),
		calls:   make(map[domain.Category]int),
		started: make(chan domain.Category, 64),
	}
}

func (f *fakeFetcher) FetchCategory(ctx context.Context, req domain.FetchRequest) ([]domain.MovieSummary, error) {
	f.mu.Lock()
	f.calls[req.Category]++
	f.requests = append(f.requests, req)
	gate := f.gates[req.Category]
	f.mu.Unlock()

	f.started <- req.Category

	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.errs[req.Category]; err != nil {
		return nil, err
	}
	return f.results[req.Category], nil
}

func (f *fakeFetcher) callCount(c domain.Category) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[c]
}

func (f *fakeFetcher) fillAll() {
	for _, c := range domain.Categories() {
		f.results[c] = movies(c.String() + "-a")
	}
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestRefreshAll_PopulatesEveryCategory(t *testing.T) {
	f := newFakeFetcher()
	f.fillAll()
	s := NewCategoryStore()
	o := NewOrchestrator(f, s, WithLogger(quietLogger()))

	o.RefreshAll(context.Background())

	for _, c := range domain.Categories() {
		slot := s.Get(c)
		assert.Equal(t, movies(c.String()+"-a"), slot.Items, c.String())
		assert.False(t, slot.IsLoading)
		assert.Equal(t, 1, f.callCount(c))
	}
	assert.False(t, s.Status().AnyLoading)
	assert.False(t, s.Status().HasError())
}

func TestRefreshAll_TrendingRequestsCarryWindow(t *testing.T) {
	f := newFakeFetcher()
	o := NewOrchestrator(f, NewCategoryStore(), WithLogger(quietLogger()))

	o.RefreshAll(context.Background())

	windows := make(map[domain.Category]domain.TimeWindow)
	for _, req := range f.requests {
		windows[req.Category] = req.Window
	}
	assert.Equal(t, domain.TimeWindowDay, windows[domain.CategoryTrendingDay])
	assert.Equal(t, domain.TimeWindowWeek, windows[domain.CategoryTrendingWeek])
	assert.Equal(t, domain.TimeWindow(""), windows[domain.CategoryNowPlaying])
}

func TestRefreshAll_FailureIsIsolated(t *testing.T) {
	f := newFakeFetcher()
	f.results[domain.CategoryTopRated] = []domain.MovieSummary{{ID: "1", Title: "Dune"}}
	f.errs[domain.CategoryTrendingDay] = errors.New("timeout")
	s := NewCategoryStore()
	o := NewOrchestrator(f, s, WithLogger(quietLogger()))

	o.RefreshAll(context.Background())

	status := s.Status()
	assert.Equal(t, "timeout", status.ErrorMessage())
	assert.Equal(t, domain.CategoryTrendingDay, status.ErrorCategory)

	var fetchErr *domain.FetchError
	require.ErrorAs(t, s.Get(domain.CategoryTrendingDay).LastError, &fetchErr)
	assert.Equal(t, domain.CategoryTrendingDay, fetchErr.Category)
	assert.Empty(t, s.Get(domain.CategoryTrendingDay).Items)

	assert.Equal(t, "Dune", s.Get(domain.CategoryTopRated).Items[0].Title)
	assert.NoError(t, s.Get(domain.CategoryTopRated).LastError)
}

func TestRefreshAll_FailureKeepsPreviousItems(t *testing.T) {
	f := newFakeFetcher()
	f.fillAll()
	s := NewCategoryStore()
	o := NewOrchestrator(f, s, WithLogger(quietLogger()))
	o.RefreshAll(context.Background())

	f.mu.Lock()
	f.errs[domain.CategoryTrendingDay] = errors.New("timeout")
	f.mu.Unlock()
	o.RefreshAll(context.Background())

	slot := s.Get(domain.CategoryTrendingDay)
	assert.EqualError(t, slot.LastError, "timeout")
	assert.Equal(t, movies("trending_day-a"), slot.Items)
}

func TestRefreshAll_InvalidWindowNeverCallsPort(t *testing.T) {
	f := newFakeFetcher()
	f.fillAll()
	s := NewCategoryStore()
	o := NewOrchestrator(f, s,
		WithLogger(quietLogger()),
		WithTrendingWindow(domain.CategoryTrendingWeek, "month"),
	)

	o.RefreshAll(context.Background())

	assert.Equal(t, 0, f.callCount(domain.CategoryTrendingWeek))
	assert.Equal(t, 1, f.callCount(domain.CategoryTrendingDay))

	slot := s.Get(domain.CategoryTrendingWeek)
	assert.False(t, slot.IsLoading)
	var cfgErr *domain.ConfigurationError
	require.ErrorAs(t, slot.LastError, &cfgErr)
	assert.Equal(t, "month", cfgErr.Value)
	assert.ErrorIs(t, slot.LastError, domain.ErrInvalidTimeWindow)
	assert.True(t, s.Status().HasError())
}

func TestRefreshAll_PortFetchErrorIsKept(t *testing.T) {
	f := newFakeFetcher()
	original := &domain.FetchError{Category: domain.CategoryUpcoming, Message: "Upcoming is unavailable"}
	f.errs[domain.CategoryUpcoming] = original
	s := NewCategoryStore()

	NewOrchestrator(f, s, WithLogger(quietLogger())).RefreshCategory(context.Background(), domain.CategoryUpcoming)

	assert.Same(t, original, s.Get(domain.CategoryUpcoming).LastError)
}

func TestRefreshAll_Idempotent(t *testing.T) {
	once := NewCategoryStore()
	f1 := newFakeFetcher()
	f1.fillAll()
	NewOrchestrator(f1, once, WithLogger(quietLogger())).RefreshAll(context.Background())

	twice := NewCategoryStore()
	f2 := newFakeFetcher()
	f2.fillAll()
	o := NewOrchestrator(f2, twice, WithLogger(quietLogger()))

	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			o.RefreshAll(context.Background())
		}()
	}
	wg.Wait()

	for _, c := range domain.Categories() {
		a, b := once.Get(c), twice.Get(c)
		assert.Equal(t, a.Items, b.Items, c.String())
		assert.Equal(t, a.IsLoading, b.IsLoading)
		assert.Equal(t, a.LastError, b.LastError)
	}
}

func TestRefreshCategory_JoinsInFlightFetch(t *testing.T) {
	f := newFakeFetcher()
	f.results[domain.CategoryNowPlaying] = movies("1")
	gate := make(chan struct{})
	f.gates[domain.CategoryNowPlaying] = gate
	s := NewCategoryStore()
	o := NewOrchestrator(f, s, WithLogger(quietLogger()))

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		o.RefreshCategory(context.Background(), domain.CategoryNowPlaying)
	}()
	<-f.started
	assert.True(t, s.Get(domain.CategoryNowPlaying).IsLoading)

	wg.Add(1)
	go func() {
		defer wg.Done()
		o.RefreshCategory(context.Background(), domain.CategoryNowPlaying)
	}()
	time.Sleep(50 * time.Millisecond)
	close(gate)
	wg.Wait()

	assert.Equal(t, 1, f.callCount(domain.CategoryNowPlaying))
	assert.Equal(t, movies("1"), s.Get(domain.CategoryNowPlaying).Items)
}

func TestRefreshCategory_HungFetchStaysLoading(t *testing.T) {
	f := newFakeFetcher()
	f.gates[domain.CategoryUpcoming] = make(chan struct{}) // never opened
	s := NewCategoryStore()
	o := NewOrchestrator(f, s, WithLogger(quietLogger()))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		o.RefreshCategory(ctx, domain.CategoryUpcoming)
		close(done)
	}()
	<-f.started

	assert.True(t, s.Status().AnyLoading)
	assert.True(t, s.Get(domain.CategoryUpcoming).IsLoading)

	cancel()
	<-done
	slot := s.Get(domain.CategoryUpcoming)
	assert.False(t, slot.IsLoading)
	assert.ErrorIs(t, slot.LastError, context.Canceled)
}

func TestRefreshCategory_FetchTimeout(t *testing.T) {
	f := newFakeFetcher()
	f.gates[domain.CategoryUpcoming] = make(chan struct{})
	s := NewCategoryStore()
	o := NewOrchestrator(f, s, WithLogger(quietLogger()), WithFetchTimeout(20*time.Millisecond))

	o.RefreshCategory(context.Background(), domain.CategoryUpcoming)

	var fetchErr *domain.FetchError
	require.ErrorAs(t, s.Get(domain.CategoryUpcoming).LastError, &fetchErr)
	assert.ErrorIs(t, fetchErr, context.DeadlineExceeded)
}

func TestOrchestrator_CachesAndHydrates(t *testing.T) {
	cache, err := store.NewSnapshotStore("", "")
	require.NoError(t, err)

	f := newFakeFetcher()
	f.fillAll()
	NewOrchestrator(f, NewCategoryStore(), WithCache(cache), WithLogger(quietLogger())).
		RefreshAll(context.Background())

	snap, ok := cache.GetCategory(domain.CategoryUpcoming)
	require.True(t, ok)
	assert.Equal(t, movies("upcoming-a"), snap.Items)

	// a fresh process: hydrate before any network call
	fresh := NewCategoryStore()
	offline := newFakeFetcher()
	for _, c := range domain.Categories() {
		offline.errs[c] = errors.New("offline")
	}
	o := NewOrchestrator(offline, fresh, WithCache(cache), WithLogger(quietLogger()))

	assert.Equal(t, int(domain.CategoryCount), o.Hydrate())
	assert.Equal(t, movies("upcoming-a"), fresh.Get(domain.CategoryUpcoming).Items)
	assert.Equal(t, 0, o.Hydrate(), "slots with items are not overwritten")

	o.RefreshAll(context.Background())
	slot := fresh.Get(domain.CategoryUpcoming)
	assert.EqualError(t, slot.LastError, "offline")
	assert.Equal(t, movies("upcoming-a"), slot.Items)
}

func TestOrchestrator_HydrateWithoutCache(t *testing.T) {
	o := NewOrchestrator(newFakeFetcher(), NewCategoryStore(), WithLogger(quietLogger()))
	assert.Equal(t, 0, o.Hydrate())
}
