package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"golang.org/x/text/language"

	"github.com/mmcdole/marquee/internal/browser"
	"github.com/mmcdole/marquee/internal/config"
	"github.com/mmcdole/marquee/internal/dashboard"
	"github.com/mmcdole/marquee/internal/details"
	"github.com/mmcdole/marquee/internal/metrics"
	"github.com/mmcdole/marquee/internal/search"
	"github.com/mmcdole/marquee/internal/store"
	"github.com/mmcdole/marquee/internal/telemetry"
	"github.com/mmcdole/marquee/internal/tmdb"
)

// services is the wired application graph shared by the TUI and the headless commands
type services struct {
	Orchestrator *dashboard.Orchestrator
	Index        *search.Index
	Search       *search.Controller
	Details      *details.Service
	Browser      *browser.Opener

	logger  *slog.Logger
	closers []func(context.Context) error
}

func newServices(ctx context.Context, cfg *config.Config, logger *slog.Logger, version string) (*services, error) {
	s := &services{logger: logger}

	shutdownTracer, err := telemetry.Init(ctx, "marquee", version)
	if err != nil {
		logger.Warn("otel init failed", "error", err)
	} else {
		s.closers = append(s.closers, shutdownTracer)
	}

	if cfg.Metrics.Listen != "" {
		s.startMetricsServer(cfg.Metrics.Listen)
	}

	snapshots, err := openSnapshots(cfg)
	if err != nil {
		s.Close()
		return nil, fmt.Errorf("failed to open cache: %w", err)
	}
	s.closers = append(s.closers, func(context.Context) error { return snapshots.Close() })

	var responseCache tmdb.ResponseCache
	if url := strings.TrimSpace(cfg.Cache.RedisURL); url != "" {
		opts, err := redis.ParseURL(url)
		if err != nil {
			s.Close()
			return nil, fmt.Errorf("invalid cache.redis_url: %w", err)
		}
		rdb := redis.NewClient(opts)
		s.closers = append(s.closers, func(context.Context) error { return rdb.Close() })
		responseCache = tmdb.NewRedisCache(rdb, logger)
	}

	client := tmdb.NewClient(tmdb.Config{
		APIKey:      cfg.TMDB.APIKey,
		AccessToken: cfg.TMDB.AccessToken,
		BaseURL:     cfg.TMDB.BaseURL,
		Language:    cfg.TMDB.Language,
		Region:      cfg.TMDB.Region,
		HTTPClient: &http.Client{
			Timeout:   cfg.TMDB.Timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		RequestsPerSecond: cfg.TMDB.RequestsPerSecond,
		Burst:             cfg.TMDB.Burst,
		Cache:             responseCache,
		CacheTTL:          cfg.Cache.TTL,
		Logger:            logger,
	})

	opts := []dashboard.Option{
		dashboard.WithCache(snapshots),
		dashboard.WithLogger(logger),
		dashboard.WithFetchTimeout(cfg.Dashboard.FetchTimeout),
	}
	for c, w := range cfg.TrendingWindows() {
		opts = append(opts, dashboard.WithTrendingWindow(c, w))
	}
	s.Orchestrator = dashboard.NewOrchestrator(client, dashboard.NewCategoryStore(), opts...)

	lang, err := language.Parse(cfg.TMDB.Language)
	if err != nil {
		logger.Warn("unknown language, searching with English collation", "language", cfg.TMDB.Language, "error", err)
		lang = language.English
	}
	s.Index = search.NewIndex(s.Orchestrator.Store(),
		search.WithLanguage(lang),
		search.WithIndexLogger(logger),
	)
	s.Search = search.NewController(s.Index,
		search.WithDebounce(cfg.Dashboard.Debounce),
		search.WithControllerLogger(logger),
	)
	s.closers = append(s.closers, func(context.Context) error {
		s.Search.Close()
		return nil
	})

	s.Details = details.NewService(client, snapshots, logger)
	s.Details.SetMaxAge(cfg.Cache.TTL)

	s.Browser = browser.NewOpener(cfg.Browser.Command, cfg.Browser.Args, cfg.Browser.WebURL, logger)

	return s, nil
}

// openSnapshots opens the snapshot cache, scoped by API endpoint and locale
// so switching either never shows listings fetched for the other
func openSnapshots(cfg *config.Config) (*store.SnapshotStore, error) {
	scope := strings.Join([]string{cfg.TMDB.BaseURL, cfg.TMDB.Language, cfg.TMDB.Region}, "|")
	return store.NewSnapshotStore(cfg.Cache.Dir, scope)
}

func (s *services) startMetricsServer(addr string) {
	reg := prometheus.NewRegistry()
	metrics.Register(reg)

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	server := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("metrics server error", "addr", addr, "error", err)
		}
	}()
	s.logger.Info("metrics server started", "addr", addr)
	s.closers = append(s.closers, server.Shutdown)
}

// Close releases everything newServices opened, newest first
func (s *services) Close() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	for i := len(s.closers) - 1; i >= 0; i-- {
		if err := s.closers[i](ctx); err != nil {
			s.logger.Warn("shutdown error", "error", err)
		}
	}
	s.closers = nil
}
