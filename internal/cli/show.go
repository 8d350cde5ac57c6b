package cli

import (
	"strconv"
	"strings"

	"timeline-cli/internal/model"
	"timeline-cli/internal/timeline"
	"timeline-cli/internal/urlstate"

	"github.com/spf13/cobra"
)

// selectionFlags are the view-state flags shared by commands that render the
// timeline. --url seeds them from a shared hash; explicit flags win.
type selectionFlags struct {
	tags    string
	mode    string
	group   string
	project string
	hash    string
	strict  bool
}

func (f *selectionFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.tags, "tags", "", "Comma-separated tag filter")
	cmd.Flags().StringVar(&f.mode, "mode", "", "Connection mode (none|tag|group)")
	cmd.Flags().StringVar(&f.group, "group", "", "Group to connect in group mode")
	cmd.Flags().StringVar(&f.project, "project", "", "Focused project slug")
	cmd.Flags().StringVar(&f.hash, "url", "", "Seed the selection from a shared link hash")
	cmd.Flags().BoolVar(&f.strict, "strict", false, "Fail on tags no project carries")
}

func (f *selectionFlags) apply(cmd *cobra.Command, s *timeline.Session) error {
	if strings.TrimSpace(f.hash) != "" {
		s.RestoreFromURL()
	}
	if cmd.Flags().Changed("tags") {
		tags := model.NormalizeTags(strings.Split(f.tags, ","))
		if f.strict {
			if err := checkTags(s, tags); err != nil {
				return err
			}
		}
		s.SetTags(tags, urlstate.Debounced)
	}
	if cmd.Flags().Changed("mode") {
		s.SetMode(model.ConnectionMode(strings.ToLower(strings.TrimSpace(f.mode))), urlstate.Debounced)
	}
	if cmd.Flags().Changed("group") {
		s.SetGroup(f.group, urlstate.Debounced)
	}
	if cmd.Flags().Changed("project") {
		s.SelectProject(f.project, urlstate.Debounced)
	}
	return nil
}

func newPhasesCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "phases",
		Short: "List phases with item counts (newest first)",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, _, err := loadSession(cmd, app, "")
			if err != nil {
				return writeErr(cmd, err)
			}
			defer s.Close()

			counts := map[int]int{}
			for _, it := range s.Registry().Items() {
				counts[it.PhaseID]++
			}
			out := []map[string]any{}
			for _, p := range s.Registry().Phases() {
				out = append(out, map[string]any{"phase": p, "items": counts[p]})
			}
			return writeOut(cmd, app, map[string]any{"data": out})
		},
	}
	return cmd
}

func newShowCmd(app *App) *cobra.Command {
	var sel selectionFlags

	cmd := &cobra.Command{
		Use:   "show [phase]",
		Short: "Print display structures (entries and bundles) for the current selection",
		Example: strings.TrimSpace(`
timeline show
timeline show 3 --tags go,cli
timeline show --url '#timeline?tags=web&mode=tag'
`),
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, _, err := loadSession(cmd, app, sel.hash)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer s.Close()
			if err := sel.apply(cmd, s); err != nil {
				return writeErr(cmd, err)
			}

			if len(args) == 1 {
				phase, err := strconv.Atoi(strings.TrimSpace(args[0]))
				if err != nil {
					return writeErr(cmd, errNotFound("phase", args[0]))
				}
				return writeOut(cmd, app, map[string]any{
					"data": timeline.PhaseView{Phase: phase, Units: s.PhaseUnits(phase)},
					"meta": map[string]any{"hash": s.Hash()},
				})
			}
			v := s.View()
			return writeOut(cmd, app, map[string]any{
				"data": v,
				"meta": map[string]any{"visible": v.Count(), "total": s.Registry().Len()},
			})
		},
	}
	sel.register(cmd)
	return cmd
}

func newConnectionsCmd(app *App) *cobra.Command {
	var sel selectionFlags

	cmd := &cobra.Command{
		Use:   "connections",
		Short: "Compute the tag or group connection overlay",
		Long: strings.TrimSpace(`
Compute which display units are connected by a shared tag (any bundle member
matches) or by a group (every bundle member must belong to it).

--tags implies --mode tag and --group implies --mode group unless --mode is given.
`),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, _, err := loadSession(cmd, app, sel.hash)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer s.Close()
			if err := sel.apply(cmd, s); err != nil {
				return writeErr(cmd, err)
			}
			if !cmd.Flags().Changed("mode") {
				switch {
				case cmd.Flags().Changed("group"):
					s.SetMode(model.ModeGroup, urlstate.Debounced)
				case cmd.Flags().Changed("tags"):
					s.SetMode(model.ModeTag, urlstate.Debounced)
				}
			}

			v := s.View()
			rows := []map[string]any{}
			for i, u := range v.Flat {
				info, ok := v.Connections[u.ID]
				if !ok {
					continue
				}
				rows = append(rows, map[string]any{
					"index": i,
					"unit":  u.ID,
					"kind":  u.Kind,
					"info":  info,
					"rail":  v.Rails[i],
				})
			}
			return writeOut(cmd, app, map[string]any{
				"data": rows,
				"meta": map[string]any{"mode": v.Selection.Mode, "hash": v.Hash, "units": len(v.Flat)},
			})
		},
	}
	sel.register(cmd)
	return cmd
}
