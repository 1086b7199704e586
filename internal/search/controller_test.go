package search

import (
	"context"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmcdole/marquee/internal/dashboard"
	"github.com/mmcdole/marquee/internal/domain"
)

// fakeClock fires callbacks only when advanced
type fakeClock struct {
	mu     sync.Mutex
	now    time.Duration
	timers []*fakeTimer
}

type fakeTimer struct {
	clock   *fakeClock
	at      time.Duration
	f       func()
	stopped bool
	fired   bool
}

func (t *fakeTimer) Stop() bool {
	t.clock.mu.Lock()
	defer t.clock.mu.Unlock()
	active := !t.stopped && !t.fired
	t.stopped = true
	return active
}

func (c *fakeClock) AfterFunc(d time.Duration, f func()) Timer {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := &fakeTimer{clock: c, at: c.now + d, f: f}
	c.timers = append(c.timers, t)
	return t
}

// Advance moves time forward by d, running due callbacks in deadline order
func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	target := c.now + d
	c.mu.Unlock()

	for {
		c.mu.Lock()
		var due []*fakeTimer
		for _, t := range c.timers {
			if !t.stopped && !t.fired && t.at <= target {
				due = append(due, t)
			}
		}
		if len(due) == 0 {
			c.now = target
			c.mu.Unlock()
			return
		}
		sort.SliceStable(due, func(i, j int) bool { return due[i].at < due[j].at })
		next := due[0]
		next.fired = true
		c.now = next.at
		c.mu.Unlock()

		next.f()
	}
}

func (c *fakeClock) Now() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

type searchCall struct {
	query string
	at    time.Duration
}

// recordingSearcher logs every executed search with the fake time it ran at
type recordingSearcher struct {
	mu      sync.Mutex
	clock   *fakeClock
	results map[string][]domain.MovieSummary
	calls   []searchCall
}

func (r *recordingSearcher) Search(query string) []domain.MovieSummary {
	r.mu.Lock()
	defer r.mu.Unlock()
	var at time.Duration
	if r.clock != nil {
		at = r.clock.Now()
	}
	r.calls = append(r.calls, searchCall{query: query, at: at})
	return r.results[query]
}

func (r *recordingSearcher) Suggest(query string, limit int) []string {
	return []string{"Did You Mean"}
}

func (r *recordingSearcher) searches() []searchCall {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]searchCall(nil), r.calls...)
}

func newTestController() (*Controller, *fakeClock, *recordingSearcher) {
	clock := &fakeClock{}
	searcher := &recordingSearcher{
		clock: clock,
		results: map[string][]domain.MovieSummary{
			"abc":  {{ID: "1", Title: "ABC Murders"}},
			"dune": {{ID: "2", Title: "Dune"}},
		},
	}
	return NewController(searcher, WithClock(clock)), clock, searcher
}

func TestController_DebounceFiresOnceForLastValue(t *testing.T) {
	c, clock, searcher := newTestController()

	c.SetQuery("a")
	clock.Advance(100 * time.Millisecond)
	c.SetQuery("ab")
	clock.Advance(150 * time.Millisecond)
	c.SetQuery("abc")
	assert.Equal(t, StatePending, c.State())

	clock.Advance(299 * time.Millisecond)
	assert.Empty(t, searcher.searches())

	clock.Advance(time.Millisecond)
	assert.Equal(t, []searchCall{{query: "abc", at: 550 * time.Millisecond}}, searcher.searches())
	assert.Equal(t, StateSettled, c.State())

	res := c.Results()
	assert.Equal(t, "abc", res.Query)
	assert.False(t, res.NoResults)
	require.Len(t, res.Movies, 1)
	assert.Equal(t, "ABC Murders", res.Movies[0].Title)
}

// A pause longer than the window between keystrokes lets the earlier value settle.
func TestController_PauseLetsIntermediateQuerySettle(t *testing.T) {
	c, clock, searcher := newTestController()

	c.SetQuery("a")
	clock.Advance(100 * time.Millisecond)
	c.SetQuery("ab")
	clock.Advance(400 * time.Millisecond)
	c.SetQuery("abc")
	clock.Advance(time.Second)

	assert.Equal(t, []searchCall{
		{query: "ab", at: 400 * time.Millisecond},
		{query: "abc", at: 800 * time.Millisecond},
	}, searcher.searches())
	assert.Equal(t, "abc", c.Results().Query)
}

func TestController_ClearIsImmediate(t *testing.T) {
	c, clock, searcher := newTestController()

	c.SetQuery("dune")
	clock.Advance(DefaultDebounce)
	require.Len(t, c.Results().Movies, 1)

	c.SetQuery("du")
	assert.Len(t, c.Results().Movies, 1, "settled result stands while pending")

	c.SetQuery("")
	assert.Equal(t, StateIdle, c.State())
	assert.Empty(t, c.Results().Movies)
	assert.False(t, c.Results().NoResults)

	clock.Advance(time.Second)
	assert.Len(t, searcher.searches(), 1, "pending timer was cancelled")
}

func TestController_NoResultsCarriesSuggestions(t *testing.T) {
	c, clock, _ := newTestController()

	c.SetQuery("xyz")
	clock.Advance(DefaultDebounce)

	res := c.Results()
	assert.True(t, res.NoResults)
	assert.Empty(t, res.Movies)
	assert.Equal(t, []string{"Did You Mean"}, res.Suggestions)
}

func TestController_UpdatesKeepsLatest(t *testing.T) {
	c, clock, _ := newTestController()

	c.SetQuery("dune")
	clock.Advance(DefaultDebounce)
	c.SetQuery("abc")
	clock.Advance(DefaultDebounce)

	select {
	case res := <-c.Updates():
		assert.Equal(t, "abc", res.Query)
	default:
		t.Fatal("expected a published result")
	}
	select {
	case res := <-c.Updates():
		t.Fatalf("unexpected extra result %q", res.Query)
	default:
	}
}

func TestController_ReindexOnlyWhenSettled(t *testing.T) {
	c, clock, searcher := newTestController()

	c.Reindex()
	assert.Empty(t, searcher.searches())

	c.SetQuery("dune")
	c.Reindex()
	assert.Empty(t, searcher.searches(), "pending queries wait for the timer")

	clock.Advance(DefaultDebounce)
	c.Reindex()
	calls := searcher.searches()
	require.Len(t, calls, 2)
	assert.Equal(t, "dune", calls[1].query)
	assert.Equal(t, StateSettled, c.State())
}

func TestController_WatchReindexesOnStoreChange(t *testing.T) {
	store := dashboard.NewCategoryStore()
	c := NewController(NewIndex(store), WithDebounce(10*time.Millisecond))
	defer c.Close()

	changes, cancel := store.Subscribe(8)
	defer cancel()
	ctx, stop := context.WithCancel(context.Background())
	defer stop()
	go c.Watch(ctx, changes)

	c.SetQuery("dune")
	select {
	case res := <-c.Updates():
		assert.True(t, res.NoResults)
	case <-time.After(2 * time.Second):
		t.Fatal("search never settled")
	}

	store.SetResult(domain.CategoryNowPlaying, []domain.MovieSummary{{ID: "1", Title: "Dune"}})

	require.Eventually(t, func() bool {
		res := c.Results()
		return len(res.Movies) == 1 && !res.NoResults
	}, 2*time.Second, 5*time.Millisecond)
}

func TestController_RealClockDebounce(t *testing.T) {
	searcher := &recordingSearcher{results: map[string][]domain.MovieSummary{}}
	c := NewController(searcher, WithDebounce(50*time.Millisecond))
	defer c.Close()

	c.SetQuery("a")
	c.SetQuery("ab")
	c.SetQuery("abc")

	select {
	case res := <-c.Updates():
		assert.Equal(t, "abc", res.Query)
	case <-time.After(2 * time.Second):
		t.Fatal("search never fired")
	}
	calls := searcher.searches()
	require.Len(t, calls, 1)
	assert.Equal(t, "abc", calls[0].query)
}

func TestController_CloseStopsPending(t *testing.T) {
	c, clock, searcher := newTestController()

	c.SetQuery("dune")
	c.Close()
	clock.Advance(time.Second)
	c.SetQuery("abc")
	clock.Advance(time.Second)

	assert.Empty(t, searcher.searches())
	assert.Equal(t, StatePending, c.State())
}

func TestState_String(t *testing.T) {
	assert.Equal(t, "idle", StateIdle.String())
	assert.Equal(t, "pending", StatePending.String())
	assert.Equal(t, "settled", StateSettled.String())
}
