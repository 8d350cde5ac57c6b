package cli

import (
	"strings"

	"timeline-cli/internal/model"
	"timeline-cli/internal/timeline"
	"timeline-cli/internal/urlstate"

	"github.com/spf13/cobra"
)

func newURLCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "url",
		Short: "Parse and build shareable timeline link hashes",
	}
	cmd.AddCommand(newURLParseCmd(app))
	cmd.AddCommand(newURLFormatCmd(app))
	return cmd
}

func newURLParseCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:     "parse <hash>",
		Short:   "Parse a '#section?key=value' hash (unknown keys are dropped)",
		Example: `timeline url parse '#timeline?tags=go,cli&mode=tag'`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return writeOut(cmd, app, map[string]any{"data": urlstate.Parse(args[0])})
		},
	}
}

func newURLFormatCmd(app *App) *cobra.Command {
	var section string
	var tags, mode, group, project string

	cmd := &cobra.Command{
		Use:     "format",
		Short:   "Build the hash for a selection",
		Example: `timeline url format --tags go,cli --mode tag`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if strings.TrimSpace(section) == "" {
				section = app.cfg.URL.Section
			}
			if strings.TrimSpace(section) == "" {
				section = timeline.DefaultSection
			}
			st := urlstate.State{
				urlstate.KeyProject: strings.TrimSpace(project),
				urlstate.KeyTags:    urlstate.JoinTags(strings.Split(tags, ",")),
				urlstate.KeyGroup:   strings.TrimSpace(group),
			}
			if strings.TrimSpace(mode) != "" {
				m, ok := model.ParseConnectionMode(mode)
				if !ok {
					return writeErr(cmd, errNotFound("mode", mode))
				}
				st[urlstate.KeyMode] = string(m)
			}
			defaults := urlstate.State{urlstate.KeyMode: string(model.ModeNone)}
			return writeOut(cmd, app, map[string]any{"data": map[string]any{
				"hash":  urlstate.Format(section, st, defaults),
				"query": urlstate.Query(st, defaults),
			}})
		},
	}
	cmd.Flags().StringVar(&section, "section", "", "Section name (default: url.section)")
	cmd.Flags().StringVar(&tags, "tags", "", "Comma-separated tags")
	cmd.Flags().StringVar(&mode, "mode", "", "Connection mode (none|tag|group)")
	cmd.Flags().StringVar(&group, "group", "", "Group")
	cmd.Flags().StringVar(&project, "project", "", "Project slug")
	return cmd
}
