package publish

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"timeline-cli/internal/connect"
	"timeline-cli/internal/model"
	"timeline-cli/internal/timeline"
)

type RenderOptions struct {
	// Title heads the index page. Defaults to "Timeline".
	Title string
	// IncludeSummaries inlines each project's summary under its index entry.
	IncludeSummaries bool
}

// RenderIndexMarkdown renders the whole view as one page: a section per
// phase, bundles as nested lists, and a connection marker on matched units.
func RenderIndexMarkdown(v timeline.View, opt RenderOptions) string {
	var buf bytes.Buffer
	writeLn := func(s string) {
		buf.WriteString(s)
		buf.WriteString("\n")
	}

	title := strings.TrimSpace(opt.Title)
	if title == "" {
		title = "Timeline"
	}
	writeLn("# " + title)
	writeLn("")

	sel := v.Selection
	var filters []string
	if len(sel.Tags) > 0 {
		filters = append(filters, "tags: "+strings.Join(sel.Tags, ", "))
	}
	if sel.Mode != model.ModeNone && sel.Mode != "" {
		filters = append(filters, "connections: "+string(sel.Mode))
	}
	if sel.Group != "" {
		filters = append(filters, "group: "+sel.Group)
	}
	if len(filters) > 0 {
		writeLn("_" + strings.Join(filters, " · ") + "_")
		writeLn("")
	}
	if len(v.Phases) == 0 {
		writeLn("No projects match.")
		return buf.String()
	}

	flat := 0
	for _, p := range v.Phases {
		writeLn("## Phase " + strconv.Itoa(p.Phase))
		writeLn("")
		for _, u := range p.Units {
			var rail connect.Rail
			if flat < len(v.Rails) {
				rail = v.Rails[flat]
			}
			flat++
			marker := railMarker(rail)

			if u.IsBundle() {
				writeLn("- " + marker + bundleTitle(u))
				for _, it := range u.Items {
					writeLn("  - " + projectLink(it))
				}
				continue
			}
			it := u.Item()
			writeLn("- " + marker + projectLink(it) + projectMeta(it))
			if opt.IncludeSummaries {
				if s := strings.TrimSpace(it.Summary); s != "" {
					for _, ln := range strings.Split(s, "\n") {
						writeLn("  " + ln)
					}
				}
			}
		}
		writeLn("")
	}
	writeLn("---")
	writeLn("")
	writeLn("View: `" + v.Hash + "`")
	return buf.String()
}

// RenderProjectMarkdown renders one project page.
func RenderProjectMarkdown(it model.Item, info model.ConnectionInfo) string {
	var buf bytes.Buffer
	writeLn := func(s string) {
		buf.WriteString(s)
		buf.WriteString("\n")
	}

	writeLn("# " + displayTitle(it))
	writeLn("")
	writeLn("## Meta")
	writeLn("")
	writeLn("- Slug: " + it.ID)
	writeLn("- Phase: " + strconv.Itoa(it.PhaseID))
	writeLn("- Size: " + string(it.Size))
	if it.Date != nil {
		writeLn("- Date: " + it.Date.Format("2006-01-02"))
	}
	if it.Group != "" {
		writeLn("- Group: " + it.Group)
	}
	if len(it.Tags) > 0 {
		writeLn("- Tags: " + strings.Join(it.Tags, ", "))
	}
	if info.Connected {
		writeLn("- Connected: true")
	}

	if s := strings.TrimSpace(it.Summary); s != "" {
		writeLn("")
		writeLn("## Summary")
		writeLn("")
		writeLn(s)
	}
	writeLn("")
	writeLn("[Back to timeline](../index.md)")
	return buf.String()
}

func railMarker(r connect.Rail) string {
	switch r {
	case connect.RailStart, connect.RailNode, connect.RailEnd, connect.RailIsolated:
		return "● "
	default:
		return ""
	}
}

func bundleTitle(u model.DisplayUnit) string {
	minY, maxY := 0, 0
	for _, it := range u.Items {
		if it.Date == nil {
			continue
		}
		y := it.Date.Year()
		if minY == 0 || y < minY {
			minY = y
		}
		if y > maxY {
			maxY = y
		}
	}
	label := fmt.Sprintf("%d smaller projects", len(u.Items))
	switch {
	case minY == 0:
		return label
	case minY == maxY:
		return fmt.Sprintf("%s (%d)", label, minY)
	default:
		return fmt.Sprintf("%s (%d-%d)", label, minY, maxY)
	}
}

func projectLink(it model.Item) string {
	return "[" + displayTitle(it) + "](projects/" + it.ID + ".md)"
}

func projectMeta(it model.Item) string {
	var parts []string
	if it.Date != nil {
		parts = append(parts, it.Date.Format("2006-01"))
	}
	if len(it.Tags) > 0 {
		parts = append(parts, "#"+strings.Join(it.Tags, " #"))
	}
	if len(parts) == 0 {
		return ""
	}
	return " · " + strings.Join(parts, " · ")
}

func displayTitle(it model.Item) string {
	if t := strings.TrimSpace(it.Title); t != "" {
		return t
	}
	return it.ID
}
