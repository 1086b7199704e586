package dashboard

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/mmcdole/marquee/internal/domain"
	"github.com/mmcdole/marquee/internal/metrics"
)

// Orchestrator fetches every category concurrently and reconciles each
// completion into the CategoryStore.
type Orchestrator struct {
	fetcher domain.MovieFetcher
	store   *CategoryStore
	cache   domain.Cache
	logger  *slog.Logger

	windows      map[domain.Category]domain.TimeWindow
	fetchTimeout time.Duration

	// One in-flight fetch per category; a refresh issued while one is
	// running joins it instead of stacking a second request.
	flights singleflight.Group
}

// Option configures an Orchestrator
type Option func(*Orchestrator)

// WithCache persists successful results and enables Hydrate
func WithCache(cache domain.Cache) Option {
	return func(o *Orchestrator) { o.cache = cache }
}

// WithLogger sets the logger
func WithLogger(logger *slog.Logger) Option {
	return func(o *Orchestrator) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithTrendingWindow overrides the time window requested for a trending category
func WithTrendingWindow(c domain.Category, w domain.TimeWindow) Option {
	return func(o *Orchestrator) { o.windows[c] = w }
}

// WithFetchTimeout bounds every fetch. Zero, the default, waits for the port indefinitely.
func WithFetchTimeout(d time.Duration) Option {
	return func(o *Orchestrator) { o.fetchTimeout = d }
}

// NewOrchestrator creates an orchestrator writing into store
func NewOrchestrator(fetcher domain.MovieFetcher, store *CategoryStore, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		fetcher: fetcher,
		store:   store,
		logger:  slog.Default(),
		windows: map[domain.Category]domain.TimeWindow{
			domain.CategoryTrendingDay:  domain.CategoryTrendingDay.DefaultWindow(),
			domain.CategoryTrendingWeek: domain.CategoryTrendingWeek.DefaultWindow(),
		},
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Store returns the store the orchestrator writes into
func (o *Orchestrator) Store() *CategoryStore {
	return o.store
}

// RefreshAll refreshes every category concurrently and returns once each has
// completed. It never fails: outcomes land in the store, one slot per category.
func (o *Orchestrator) RefreshAll(ctx context.Context) {
	var g errgroup.Group
	for _, c := range domain.Categories() {
		g.Go(func() error {
			o.RefreshCategory(ctx, c)
			return nil
		})
	}
	_ = g.Wait()
	o.logger.Debug("dashboard refresh complete", "loading", o.store.Status().LoadingCount)
}

// RefreshCategory refreshes a single category with the same contract as RefreshAll.
// If a fetch for c is already in flight the call waits for it instead of issuing another.
func (o *Orchestrator) RefreshCategory(ctx context.Context, c domain.Category) {
	if !c.Valid() {
		return
	}
	_, _, shared := o.flights.Do(c.String(), func() (interface{}, error) {
		o.refresh(ctx, c)
		return nil, nil
	})
	if shared {
		o.logger.Debug("joined in-flight fetch", "category", c.String())
	}
}

func (o *Orchestrator) refresh(ctx context.Context, c domain.Category) {
	req, err := o.request(c)
	if err != nil {
		o.logger.Warn("refusing to fetch category", "category", c.String(), "error", err)
		metrics.FetchTotal.WithLabelValues(c.String(), "config_error").Inc()
		o.store.SetError(c, err)
		o.updateLoadingGauge()
		return
	}

	o.store.SetLoading(c)
	o.updateLoadingGauge()
	defer o.updateLoadingGauge()

	fetchCtx := ctx
	if o.fetchTimeout > 0 {
		var cancel context.CancelFunc
		fetchCtx, cancel = context.WithTimeout(ctx, o.fetchTimeout)
		defer cancel()
	}

	startedAt := time.Now()
	items, err := o.fetcher.FetchCategory(fetchCtx, req)
	metrics.FetchDuration.WithLabelValues(c.String()).Observe(time.Since(startedAt).Seconds())

	if err != nil {
		fetchErr := toFetchError(c, err)
		o.logger.Warn("category fetch failed", "category", c.String(), "error", err)
		metrics.FetchTotal.WithLabelValues(c.String(), "error").Inc()
		o.store.SetError(c, fetchErr)
		return
	}

	metrics.FetchTotal.WithLabelValues(c.String(), "ok").Inc()
	o.store.SetResult(c, items)
	o.logger.Debug("category fetched", "category", c.String(), "count", len(items),
		"elapsed", time.Since(startedAt))

	if o.cache != nil {
		if err := o.cache.SaveCategory(c, items); err != nil {
			o.logger.Error("failed to cache category", "category", c.String(), "error", err)
		}
	}
}

// request builds the fetch request for c, validating trending windows
func (o *Orchestrator) request(c domain.Category) (domain.FetchRequest, error) {
	req := domain.FetchRequest{Category: c}
	if !c.IsTrending() {
		return req, nil
	}
	w := o.windows[c]
	if !w.Valid() {
		return req, &domain.ConfigurationError{
			Category: c,
			Field:    "time window",
			Value:    string(w),
			Err:      domain.ErrInvalidTimeWindow,
		}
	}
	req.Window = w
	return req, nil
}

// Hydrate seeds empty slots from the cache so the last good data is visible
// before the first refresh completes. It returns the number of categories restored.
func (o *Orchestrator) Hydrate() int {
	if o.cache == nil {
		return 0
	}
	restored := 0
	for _, c := range domain.Categories() {
		snap, ok := o.cache.GetCategory(c)
		if !ok || len(snap.Items) == 0 {
			continue
		}
		if o.store.restore(c, snap.Items, snap.SavedAt) {
			restored++
		}
	}
	o.logger.Debug("hydrated dashboard from cache", "categories", restored)
	return restored
}

func (o *Orchestrator) updateLoadingGauge() {
	metrics.CategoriesLoading.Set(float64(o.store.Status().LoadingCount))
}

// toFetchError keeps FetchErrors and ConfigurationErrors as they are and wraps anything else
func toFetchError(c domain.Category, err error) error {
	var fetchErr *domain.FetchError
	if errors.As(err, &fetchErr) {
		return fetchErr
	}
	var cfgErr *domain.ConfigurationError
	if errors.As(err, &cfgErr) {
		return cfgErr
	}
	return domain.NewFetchError(c, err)
}
