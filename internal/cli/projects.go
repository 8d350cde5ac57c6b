package cli

import (
	"strings"

	"timeline-cli/internal/model"
	"timeline-cli/internal/store"

	"github.com/spf13/cobra"
)

func newProjectsCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "projects",
		Short: "Project commands",
	}
	cmd.AddCommand(newProjectsListCmd(app))
	cmd.AddCommand(newProjectsShowCmd(app))
	cmd.AddCommand(newProjectsExportCmd(app))
	return cmd
}

func newProjectsListCmd(app *App) *cobra.Command {
	var phase int
	var tag string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List projects in timeline order",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, _, err := loadSession(cmd, app, "")
			if err != nil {
				return writeErr(cmd, err)
			}
			defer s.Close()

			tag = model.NormalizeTag(tag)
			out := []model.Item{}
			for _, it := range s.Registry().Items() {
				if cmd.Flags().Changed("phase") && it.PhaseID != phase {
					continue
				}
				if tag != "" && !it.HasAnyTag(map[string]bool{tag: true}) {
					continue
				}
				out = append(out, it)
			}
			return writeOut(cmd, app, map[string]any{"data": out})
		},
	}
	cmd.Flags().IntVar(&phase, "phase", 0, "Only this phase")
	cmd.Flags().StringVar(&tag, "tag", "", "Only projects with this tag")
	return cmd
}

func newProjectsShowCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show <slug>",
		Short: "Show one project with its bundling and display placement",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, _, err := loadSession(cmd, app, "")
			if err != nil {
				return writeErr(cmd, err)
			}
			defer s.Close()

			slug := strings.TrimPrefix(strings.TrimSpace(args[0]), "@")
			it, ok := s.Registry().Item(slug)
			if !ok {
				return writeErr(cmd, errNotFound("project", slug))
			}
			v := s.View()
			unitID := ""
			if idx, ok := v.UnitIndex(slug); ok {
				unitID = v.Flat[idx].ID
			}
			return writeOut(cmd, app, map[string]any{
				"data": it,
				"meta": map[string]any{
					"bundleable": s.Registry().Bundleable(it),
					"unit":       unitID,
				},
			})
		},
	}
	return cmd
}

func newProjectsExportCmd(app *App) *cobra.Command {
	var out string

	cmd := &cobra.Command{
		Use:     "export",
		Short:   "Export the loaded manifest into a SQLite projects table",
		Example: `timeline --projects ./projects projects export --sqlite projects.sqlite`,
		RunE: func(cmd *cobra.Command, args []string) error {
			recs, err := loadRecords(cmd.Context(), app)
			if err != nil {
				return writeErr(cmd, err)
			}
			if err := store.ExportSQLite(cmd.Context(), out, recs); err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": map[string]any{"path": out, "projects": len(recs)}})
		},
	}
	cmd.Flags().StringVar(&out, "sqlite", "", "Destination SQLite file")
	_ = cmd.MarkFlagRequired("sqlite")
	return cmd
}
