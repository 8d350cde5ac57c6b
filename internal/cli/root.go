package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"timeline-cli/internal/config"
	"timeline-cli/internal/format"
	"timeline-cli/internal/logging"
	"timeline-cli/internal/model"
	"timeline-cli/internal/registry"
	"timeline-cli/internal/store"
	"timeline-cli/internal/timeline"
	"timeline-cli/internal/tui"

	"github.com/spf13/cobra"
)

type App struct {
	ConfigPath string
	Projects   string
	PrettyJSON bool
	Format     string
	LogLevel   string

	cfg config.Config
	log *slog.Logger
}

func NewRootCmd() *cobra.Command {
	app := &App{}

	cmd := &cobra.Command{
		Use:          "timeline",
		Short:        "Portfolio timeline: bundling, connections and shareable view state",
		SilenceUsage: true,
		Example: strings.TrimSpace(`
  # Browse the timeline interactively
  timeline --projects ./projects

  # Print the display structure of every phase
  timeline show

  # Which units share the "go" tag?
  timeline connections --tags go

  # Direct project lookup (shortcut for: timeline projects show <slug>)
  timeline @my-project
`),
		RunE: func(cmd *cobra.Command, args []string) error {
			// No subcommand => interactive TUI.
			if cmd.HasSubCommands() && len(args) == 0 {
				return runTUI(cmd, app, "")
			}
			return cmd.Help()
		},
	}

	cmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(app.ConfigPath)
		if err != nil {
			return writeErr(cmd, err)
		}
		if strings.TrimSpace(app.Projects) != "" {
			cfg.Projects.Path = app.Projects
		}
		if strings.TrimSpace(app.LogLevel) != "" {
			cfg.Log.Level = app.LogLevel
		}
		app.cfg = cfg
		app.log = logging.New(cmd.ErrOrStderr(), cfg.Log.Level, cfg.Log.Format)
		return nil
	}

	cmd.PersistentFlags().StringVar(&app.ConfigPath, "config", envOr("TIMELINE_CONFIG", ""), "Config file (default: ~/.config/timeline/config.*)")
	cmd.PersistentFlags().StringVar(&app.Projects, "projects", "", "Projects directory, .json/.yaml manifest, or .sqlite file (overrides projects.path)")
	cmd.PersistentFlags().BoolVar(&app.PrettyJSON, "pretty", false, "Pretty-print JSON output")
	cmd.PersistentFlags().StringVar(&app.Format, "format", envOr("TIMELINE_FORMAT", "json"), "Output format (json|yaml)")
	cmd.PersistentFlags().StringVar(&app.LogLevel, "log-level", "", "Log level (debug|info|warn|error)")

	cmd.AddCommand(newTUICmd(app))
	cmd.AddCommand(newWebCmd(app))
	cmd.AddCommand(newPhasesCmd(app))
	cmd.AddCommand(newShowCmd(app))
	cmd.AddCommand(newConnectionsCmd(app))
	cmd.AddCommand(newURLCmd(app))
	cmd.AddCommand(newProjectsCmd(app))
	cmd.AddCommand(newTagsCmd(app))
	cmd.AddCommand(newPublishCmd(app))
	cmd.AddCommand(newDocsCmd(app))

	return cmd
}

func newTUICmd(app *App) *cobra.Command {
	var hash string
	cmd := &cobra.Command{
		Use:   "tui",
		Short: "Browse the timeline interactively",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTUI(cmd, app, hash)
		},
	}
	cmd.Flags().StringVar(&hash, "url", "", "Start from a shared link hash (e.g. '#timeline?tags=go&mode=tag')")
	return cmd
}

func runTUI(cmd *cobra.Command, app *App, hash string) error {
	recs, err := loadRecords(cmd.Context(), app)
	if err != nil {
		return writeErr(cmd, err)
	}
	bundle, err := bundleConfig(app.cfg)
	if err != nil {
		return writeErr(cmd, err)
	}
	return tui.Run(tui.Options{
		Records:  recs,
		Bundle:   bundle,
		Section:  app.cfg.URL.Section,
		Debounce: app.cfg.URL.Debounce,
		Hash:     hash,
		Logger:   logging.Component(app.log, "tui"),
	})
}

func loadRecords(ctx context.Context, app *App) ([]model.ProjectRecord, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	return store.Load(ctx, app.cfg.Projects.Path, logging.Component(app.log, "store"))
}

func bundleConfig(cfg config.Config) (registry.Config, error) {
	ref, err := cfg.ReferenceTime(time.Now())
	if err != nil {
		return registry.Config{}, err
	}
	return registry.Config{Threshold: cfg.Bundle.Threshold, Reference: ref}, nil
}

// loadSession builds a session over the configured manifest, with hash as the
// initial URL. The caller owns Close.
func loadSession(cmd *cobra.Command, app *App, hash string) (*timeline.Session, []model.ProjectRecord, error) {
	recs, err := loadRecords(cmd.Context(), app)
	if err != nil {
		return nil, nil, err
	}
	bundle, err := bundleConfig(app.cfg)
	if err != nil {
		return nil, nil, err
	}
	items, skipped := store.Items(recs)
	if skipped > 0 {
		app.log.Warn("skipped records without slug", slog.Int("count", skipped))
	}
	s := timeline.NewSession(timeline.Options{
		Bundle:      bundle,
		Section:     app.cfg.URL.Section,
		Debounce:    app.cfg.URL.Debounce,
		InitialHash: hash,
		Logger:      logging.Component(app.log, "session"),
	})
	s.Load(items)
	return s, recs, nil
}

func envOr(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

func writeOut(cmd *cobra.Command, app *App, v any) error {
	return format.Write(cmd.OutOrStdout(), v, app.Format, app.PrettyJSON)
}

func writeErr(cmd *cobra.Command, err error) error {
	fmt.Fprintln(cmd.ErrOrStderr(), err.Error())
	return err
}
