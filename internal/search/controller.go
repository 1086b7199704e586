package search

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/mmcdole/marquee/internal/dashboard"
	"github.com/mmcdole/marquee/internal/domain"
	"github.com/mmcdole/marquee/internal/metrics"
)

// DefaultDebounce is the quiescence required on the query before a search runs
const DefaultDebounce = 300 * time.Millisecond

// MaxSuggestions caps the titles offered when a query has no results
const MaxSuggestions = 5

// State is the controller's position in the query lifecycle
type State int

const (
	// StateIdle means the query is empty and no results are published
	StateIdle State = iota
	// StatePending means a debounce window is open for the current query
	StatePending
	// StateSettled means the current query has been searched
	StateSettled
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StatePending:
		return "pending"
	case StateSettled:
		return "settled"
	default:
		return "unknown"
	}
}

// Result is a published search outcome
type Result struct {
	Query       string
	Movies      []domain.MovieSummary
	NoResults   bool
	Suggestions []string
}

// Searcher is what the controller drives once a query settles
type Searcher interface {
	Search(query string) []domain.MovieSummary
	Suggest(query string, limit int) []string
}

// Timer is a pending debounce callback
type Timer interface {
	Stop() bool
}

// Clock schedules debounce callbacks
type Clock interface {
	AfterFunc(d time.Duration, f func()) Timer
}

type realClock struct{}

func (realClock) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// Controller debounces query text and publishes search results.
//
// Every SetQuery bumps a generation counter and re-arms the timer. A timer
// callback or an in-progress search whose generation no longer matches is
// dropped, so only the latest query can ever publish.
type Controller struct {
	searcher Searcher
	clock    Clock
	window   time.Duration
	logger   *slog.Logger

	mu      sync.Mutex
	query   string
	state   State
	gen     uint64
	timer   Timer
	result  Result
	closed  bool
	updates chan Result
}

// ControllerOption configures a Controller
type ControllerOption func(*Controller)

// WithDebounce sets the quiescence window
func WithDebounce(d time.Duration) ControllerOption {
	return func(c *Controller) {
		if d > 0 {
			c.window = d
		}
	}
}

// WithClock replaces the wall clock, for tests
func WithClock(clock Clock) ControllerOption {
	return func(c *Controller) { c.clock = clock }
}

// WithControllerLogger sets the logger
func WithControllerLogger(logger *slog.Logger) ControllerOption {
	return func(c *Controller) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// NewController creates a controller in the Idle state
func NewController(searcher Searcher, opts ...ControllerOption) *Controller {
	c := &Controller{
		searcher: searcher,
		clock:    realClock{},
		window:   DefaultDebounce,
		logger:   slog.Default(),
		updates:  make(chan Result, 1),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SetQuery records a new query value. An empty query clears the results at
// once; anything else (re)starts the debounce window.
func (c *Controller) SetQuery(query string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}

	c.stopTimerLocked()
	c.gen++
	c.query = query

	if query == "" {
		c.state = StateIdle
		c.result = Result{}
		c.publishLocked()
		return
	}

	c.state = StatePending
	gen := c.gen
	c.timer = c.clock.AfterFunc(c.window, func() { c.fire(gen) })
}

// Query returns the current query text
func (c *Controller) Query() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.query
}

// State returns the current lifecycle state
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Results returns the last published result. It stays in place while a new
// query is pending.
func (c *Controller) Results() Result {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.result
}

// Updates delivers published results. Only the newest unread result is kept.
func (c *Controller) Updates() <-chan Result {
	return c.updates
}

// Reindex re-runs a settled query immediately, for when the underlying
// category data has changed. It does nothing while idle or pending.
func (c *Controller) Reindex() {
	c.mu.Lock()
	if c.closed || c.state != StateSettled {
		c.mu.Unlock()
		return
	}
	c.gen++
	gen, query := c.gen, c.query
	c.mu.Unlock()

	c.run(gen, query)
}

// Watch calls Reindex for every store change until ctx is done or changes closes
func (c *Controller) Watch(ctx context.Context, changes <-chan dashboard.Change) {
	for {
		select {
		case <-ctx.Done():
			return
		case _, ok := <-changes:
			if !ok {
				return
			}
			c.Reindex()
		}
	}
}

// Close stops any pending timer. Later calls to SetQuery are ignored.
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stopTimerLocked()
	c.closed = true
	c.gen++
}

func (c *Controller) fire(gen uint64) {
	c.mu.Lock()
	if c.closed || gen != c.gen {
		c.mu.Unlock()
		return
	}
	query := c.query
	c.timer = nil
	c.mu.Unlock()

	c.run(gen, query)
}

// run searches outside the lock and publishes only if no newer query arrived meanwhile
func (c *Controller) run(gen uint64, query string) {
	movies := c.searcher.Search(query)
	res := Result{Query: query, Movies: movies, NoResults: len(movies) == 0}
	if res.NoResults {
		res.Suggestions = c.searcher.Suggest(query, MaxSuggestions)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed || gen != c.gen {
		c.logger.Debug("dropping superseded search", "query", query)
		return
	}

	outcome := "hit"
	if res.NoResults {
		outcome = "miss"
	}
	metrics.SearchTotal.WithLabelValues(outcome).Inc()

	c.state = StateSettled
	c.result = res
	c.publishLocked()
}

func (c *Controller) stopTimerLocked() {
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
}

// publishLocked replaces any unread result with the current one. Senders
// hold c.mu, so the send after draining cannot block.
func (c *Controller) publishLocked() {
	select {
	case <-c.updates:
	default:
	}
	c.updates <- c.result
}
