package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/mmcdole/marquee/internal/config"
	"github.com/mmcdole/marquee/internal/log"
	"github.com/mmcdole/marquee/internal/tui"
)

// App holds the flags shared by every command
type App struct {
	ConfigPath string
	LogLevel   string

	cfg    *config.Config
	logger *slog.Logger
}

func newRootCmd() *cobra.Command {
	app := &App{}

	cmd := &cobra.Command{
		Use:           "marquee",
		Short:         "Terminal movie dashboard",
		SilenceUsage:  true,
		SilenceErrors: true,
		Example: strings.TrimSpace(`
  # Start the interactive dashboard
  marquee

  # Scriptable commands
  marquee dashboard
  marquee search "dune"
  marquee show 693134
`),
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.load(); err != nil {
				return err
			}
			// Piped output gets the plain listing instead of the TUI
			if !isTerminal(os.Stdout) {
				return runDashboard(cmd.Context(), cmd.OutOrStdout(), app)
			}
			return runTUI(cmd.Context(), app)
		},
	}

	cmd.PersistentFlags().StringVar(&app.ConfigPath, "config", "", "Path to config.yaml (default: ~/.config/marquee/config.yaml)")
	cmd.PersistentFlags().StringVar(&app.LogLevel, "log-level", "", "Override logging.level (DEBUG, INFO, WARN, ERROR)")

	cmd.AddCommand(newDashboardCmd(app))
	cmd.AddCommand(newSearchCmd(app))
	cmd.AddCommand(newShowCmd(app))
	cmd.AddCommand(newCacheCmd(app))
	cmd.AddCommand(newVersionCmd())

	return cmd
}

// load reads the configuration and sets up logging. Missing credentials
// trigger the first-run prompt when attached to a terminal.
func (a *App) load() error {
	cfg, err := config.LoadConfigFrom(a.ConfigPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if a.LogLevel != "" {
		cfg.Logging.Level = a.LogLevel
	}

	logger, err := log.SetupLogger(&cfg.Logging)
	if err != nil {
		// Fall back to null logger if file logging fails
		logger = log.NullLogger()
	}
	slog.SetDefault(logger)

	if !cfg.IsConfigured() && canPrompt() {
		if err := runSetupFlow(cfg, a.ConfigPath); err != nil {
			return err
		}
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w (set MARQUEE_TMDB_API_KEY or edit config.yaml)", err)
	}

	a.cfg = cfg
	a.logger = logger
	return nil
}

func runTUI(ctx context.Context, app *App) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	svc, err := newServices(ctx, app.cfg, app.logger, Version)
	if err != nil {
		return err
	}
	defer svc.Close()

	restored := svc.Orchestrator.Hydrate()
	app.logger.Info("starting marquee", "version", Version, "hydrated", restored)

	// Keep settled searches in step with category data
	changes, unsubscribe := svc.Orchestrator.Store().Subscribe(16)
	defer unsubscribe()
	go svc.Search.Watch(ctx, changes)

	model := tui.NewModel(svc.Orchestrator, svc.Search, svc.Details)
	model.RefreshOnStart = app.cfg.Dashboard.RefreshOnStart
	model.Browser = svc.Browser
	defer model.Close()

	p := tea.NewProgram(
		model,
		tea.WithAltScreen(),
		tea.WithContext(ctx),
	)

	if _, err := p.Run(); err != nil {
		app.logger.Error("TUI error", "error", err)
		return fmt.Errorf("TUI error: %w", err)
	}

	app.logger.Info("shutting down")
	return nil
}

// canPrompt reports whether the first-run prompt can read from the user
var canPrompt = func() bool {
	return isTerminal(os.Stdin) && isTerminal(os.Stdout)
}

func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}
