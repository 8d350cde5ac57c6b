package tui

import (
	"log/slog"
	"time"

	"timeline-cli/internal/model"
	"timeline-cli/internal/registry"
	"timeline-cli/internal/store"
	"timeline-cli/internal/timeline"
	"timeline-cli/internal/urlstate"

	tea "github.com/charmbracelet/bubbletea"
)

type Options struct {
	Records  []model.ProjectRecord
	Bundle   registry.Config
	Section  string
	Debounce time.Duration
	// Hash is a shared link to start from, e.g. "#timeline?tags=go".
	Hash      string
	Scheduler urlstate.Scheduler
	Logger    *slog.Logger
}

func Run(opts Options) error {
	applyColorProfilePreference()
	applyThemePreference()
	applyGlyphPreference()

	m := newAppModel(opts)
	defer m.sess.Close()
	_, err := tea.NewProgram(m, tea.WithAltScreen()).Run()
	return err
}

func newSession(opts Options) (*timeline.Session, *urlstate.MemoryLocation) {
	log := opts.Logger
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	loc := urlstate.NewMemoryLocation(opts.Hash)
	sess := timeline.NewSession(timeline.Options{
		Bundle:    opts.Bundle,
		Section:   opts.Section,
		Debounce:  opts.Debounce,
		Location:  loc,
		Scheduler: opts.Scheduler,
		Logger:    log,
	})
	items, skipped := store.Items(opts.Records)
	if skipped > 0 {
		log.Warn("skipped records without slug", slog.Int("count", skipped))
	}
	sess.Load(items)
	return sess, loc
}
