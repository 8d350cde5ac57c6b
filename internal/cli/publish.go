package cli

import (
	"strings"

	"timeline-cli/internal/publish"

	"github.com/spf13/cobra"
)

func newPublishCmd(app *App) *cobra.Command {
	var sel selectionFlags
	var to string
	var title string
	var summaries bool
	var overwrite bool

	cmd := &cobra.Command{
		Use:   "publish",
		Short: "Write the current view as static markdown (index plus one page per project)",
		Example: strings.TrimSpace(`
timeline publish --to ./site
timeline publish --to ./site --url '#timeline?tags=go&mode=tag' --overwrite
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

			res, err := publish.WriteTimeline(s.View(), to, publish.WriteOptions{
				RenderOptions: publish.RenderOptions{Title: title, IncludeSummaries: summaries},
				Overwrite:     overwrite,
			})
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{
				"data": res,
				"meta": map[string]any{"hash": s.Hash()},
			})
		},
	}
	sel.register(cmd)
	cmd.Flags().StringVar(&to, "to", "", "Output directory")
	cmd.Flags().StringVar(&title, "title", "", "Index page title (default: Timeline)")
	cmd.Flags().BoolVar(&summaries, "summaries", false, "Inline project summaries on the index page")
	cmd.Flags().BoolVar(&overwrite, "overwrite", false, "Replace existing files")
	_ = cmd.MarkFlagRequired("to")
	return cmd
}
