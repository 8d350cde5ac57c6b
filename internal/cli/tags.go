package cli

import (
	"sort"
	"strings"

	"timeline-cli/internal/model"
	"timeline-cli/internal/timeline"

	"github.com/agnivade/levenshtein"
	"github.com/spf13/cobra"
)

// maxSuggestDistance is the largest edit distance offered as a "did you mean".
const maxSuggestDistance = 2

func newTagsCmd(app *App) *cobra.Command {
	var suggest string
	var groups bool

	cmd := &cobra.Command{
		Use:   "tags",
		Short: "List tags (or groups) with item counts",
		Example: strings.TrimSpace(`
timeline tags
timeline tags --groups
timeline tags --suggest golang
`),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, _, err := loadSession(cmd, app, "")
			if err != nil {
				return writeErr(cmd, err)
			}
			defer s.Close()

			if strings.TrimSpace(suggest) != "" {
				return writeOut(cmd, app, map[string]any{"data": suggestTags(s, suggest)})
			}
			if groups {
				return writeOut(cmd, app, map[string]any{"data": s.Registry().Groups()})
			}
			return writeOut(cmd, app, map[string]any{"data": s.Registry().Tags()})
		},
	}
	cmd.Flags().StringVar(&suggest, "suggest", "", "Print known tags close to this one")
	cmd.Flags().BoolVar(&groups, "groups", false, "List groups instead of tags")
	return cmd
}

// suggestTags returns known tags within maxSuggestDistance edits of tag,
// closest first.
func suggestTags(s *timeline.Session, tag string) []string {
	tag = model.NormalizeTag(tag)
	type cand struct {
		tag  string
		dist int
	}
	var cands []cand
	for _, tc := range s.Registry().Tags() {
		d := levenshtein.ComputeDistance(tag, tc.Tag)
		if d <= maxSuggestDistance {
			cands = append(cands, cand{tag: tc.Tag, dist: d})
		}
	}
	sort.SliceStable(cands, func(i, j int) bool { return cands[i].dist < cands[j].dist })
	out := make([]string, 0, len(cands))
	for _, c := range cands {
		out = append(out, c.tag)
	}
	return out
}

// checkTags fails on the first tag no loaded item carries.
func checkTags(s *timeline.Session, tags []string) error {
	known := map[string]bool{}
	for _, tc := range s.Registry().Tags() {
		known[tc.Tag] = true
	}
	for _, t := range tags {
		if known[t] {
			continue
		}
		return unknownTagError{tag: t, suggestions: suggestTags(s, t)}
	}
	return nil
}
