package main

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mmcdole/marquee/internal/config"
	"github.com/mmcdole/marquee/internal/domain"
	"github.com/mmcdole/marquee/internal/search"
)

func newDashboardCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "dashboard",
		Short: "Refresh every category and print the listings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.load(); err != nil {
				return err
			}
			return runDashboard(cmd.Context(), cmd.OutOrStdout(), app)
		},
	}
}

func newSearchCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "search <query>",
		Short: "Search across all categories",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.load(); err != nil {
				return err
			}
			return runSearch(cmd.Context(), cmd.OutOrStdout(), app, strings.Join(args, " "))
		},
	}
}

func newShowCmd(app *App) *cobra.Command {
	var open bool
	cmd := &cobra.Command{
		Use:   "show <movie-id>",
		Short: "Print details, cast and reviews for a movie",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.load(); err != nil {
				return err
			}
			return runShow(cmd.Context(), cmd.OutOrStdout(), app, args[0], open)
		},
	}
	cmd.Flags().BoolVar(&open, "open", false, "also open the movie's page in a browser")
	return cmd
}

func newCacheCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the local snapshot cache",
	}
	cmd.AddCommand(newCacheClearCmd(app))
	return cmd
}

func newCacheClearCmd(app *App) *cobra.Command {
	var (
		all      bool
		category string
	)
	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete cached listings and movie details",
		Long: `Delete cached listings and movie details for the configured endpoint and locale.
With --category only that listing is dropped; with --all the whole cache directory is removed.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadConfigFrom(app.ConfigPath)
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			out := cmd.OutOrStdout()

			if all {
				if err := config.ClearCache(cfg.Cache.Dir); err != nil {
					return err
				}
				fmt.Fprintf(out, "Cleared %s\n", cfg.Cache.Dir)
				return nil
			}

			var c domain.Category
			if category != "" {
				if c, err = domain.ParseCategory(category); err != nil {
					return err
				}
			}

			snapshots, err := openSnapshots(cfg)
			if err != nil {
				return fmt.Errorf("failed to open cache: %w", err)
			}
			defer snapshots.Close()

			if category != "" {
				snapshots.InvalidateCategory(c)
				fmt.Fprintf(out, "Cleared %s\n", c.Title())
				return nil
			}
			snapshots.InvalidateAll()
			fmt.Fprintln(out, "Cleared cached listings and movie details")
			return nil
		},
	}
	cmd.Flags().BoolVar(&all, "all", false, "remove the whole cache directory, every endpoint and locale")
	cmd.Flags().StringVar(&category, "category", "", "only drop one listing, e.g. now_playing")
	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "marquee %s\n", Version)
		},
	}
}

// refreshed builds the services, seeds them from the cache and runs one full refresh
func refreshed(ctx context.Context, app *App) (*services, error) {
	svc, err := newServices(ctx, app.cfg, app.logger, Version)
	if err != nil {
		return nil, err
	}
	svc.Orchestrator.Hydrate()
	svc.Orchestrator.RefreshAll(ctx)
	return svc, nil
}

func runDashboard(ctx context.Context, w io.Writer, app *App) error {
	svc, err := refreshed(ctx, app)
	if err != nil {
		return err
	}
	defer svc.Close()

	store := svc.Orchestrator.Store()
	for i, c := range domain.Categories() {
		if i > 0 {
			fmt.Fprintln(w)
		}
		writeSlot(w, store.Get(c))
	}

	status := store.Status()
	if status.HasError() {
		fmt.Fprintf(w, "\nlatest error (%s): %s\n", status.ErrorCategory.Title(), status.ErrorMessage())
	}
	return nil
}

func writeSlot(w io.Writer, slot domain.CategorySlot) {
	header := fmt.Sprintf("== %s (%d) ==", slot.Category.Title(), len(slot.Items))
	if slot.LastError != nil && slot.HasItems() {
		header += " [stale]"
	}
	fmt.Fprintln(w, header)

	if slot.LastError != nil {
		fmt.Fprintf(w, "  error: %s\n", slot.LastError)
	}
	for _, m := range slot.Items {
		writeMovieLine(w, m)
	}
}

func writeMovieLine(w io.Writer, m domain.MovieSummary) {
	date := m.ReleaseDate
	if date == "" {
		date = "TBA"
	}
	fmt.Fprintf(w, "  %-8s %s (%s)\n", m.ID, m.Title, date)
}

func runSearch(ctx context.Context, w io.Writer, app *App, query string) error {
	svc, err := refreshed(ctx, app)
	if err != nil {
		return err
	}
	defer svc.Close()

	results := svc.Index.Search(query)
	if len(results) > 0 {
		fmt.Fprintf(w, "%d results for %q\n", len(results), query)
		for _, m := range results {
			writeMovieLine(w, m)
		}
		return nil
	}

	fmt.Fprintf(w, "No results for %q\n", query)
	if suggestions := svc.Index.Suggest(query, search.MaxSuggestions); len(suggestions) > 0 {
		fmt.Fprintln(w, "Did you mean:")
		for _, s := range suggestions {
			fmt.Fprintf(w, "  %s\n", s)
		}
	}
	if status := svc.Orchestrator.Store().Status(); status.HasError() {
		fmt.Fprintf(w, "(some categories failed to load: %s)\n", status.ErrorMessage())
	}
	return nil
}

func runShow(ctx context.Context, w io.Writer, app *App, movieID string, open bool) error {
	svc, err := newServices(ctx, app.cfg, app.logger, Version)
	if err != nil {
		return err
	}
	defer svc.Close()

	p, err := svc.Details.Load(ctx, movieID)
	if err != nil {
		return err
	}
	d := p.Details

	title := d.Title
	if y := d.Year(); y > 0 {
		title = fmt.Sprintf("%s (%d)", title, y)
	}
	fmt.Fprintln(w, title)
	if d.Tagline != "" {
		fmt.Fprintf(w, "%q\n", d.Tagline)
	}

	var meta []string
	if rt := d.FormattedRuntime(); rt != "" {
		meta = append(meta, rt)
	}
	if len(d.Genres) > 0 {
		meta = append(meta, strings.Join(d.Genres, ", "))
	}
	if d.VoteAverage > 0 {
		meta = append(meta, fmt.Sprintf("★ %.1f (%d votes)", d.VoteAverage, d.VoteCount))
	}
	if len(meta) > 0 {
		fmt.Fprintln(w, strings.Join(meta, " · "))
	}
	if d.Overview != "" {
		fmt.Fprintf(w, "\n%s\n", d.Overview)
	}

	if cast := p.TopCast(5); len(cast) > 0 {
		fmt.Fprintln(w, "\nCast:")
		for _, c := range cast {
			if c.Character != "" {
				fmt.Fprintf(w, "  %s as %s\n", c.Name, c.Character)
			} else {
				fmt.Fprintf(w, "  %s\n", c.Name)
			}
		}
	}

	fmt.Fprintf(w, "\n%d reviews\n", len(p.Reviews))
	if len(p.Recommendations) > 0 {
		titles := make([]string, 0, len(p.Recommendations))
		for _, r := range p.Recommendations {
			titles = append(titles, r.Title)
		}
		fmt.Fprintf(w, "Recommended: %s\n", strings.Join(titles, ", "))
	}

	if open {
		return svc.Browser.OpenMovie(d.ID)
	}
	return nil
}
