package web

import (
	"html/template"
	"strings"
	"time"

	"timeline-cli/internal/connect"
	"timeline-cli/internal/model"
	"timeline-cli/internal/timeline"
)

type linkVM struct {
	Label  string
	Href   string
	Active bool
	Count  int
}

type itemVM struct {
	ID      string
	Title   string
	Date    string
	Size    string
	Group   string
	Tags    []linkVM
	Summary template.HTML
	Href    string
	Focused bool
}

type rowVM struct {
	ID       string
	Bundle   bool
	Rail     string
	GapAbove bool
	GapBelow bool
	Items    []itemVM
}

type phaseVM struct {
	Phase int
	Rows  []rowVM
}

type pageVM struct {
	Section   string
	Hash      string
	Selection timeline.Selection
	ClearHref string
	Tags      []linkVM
	Modes     []linkVM
	Groups    []linkVM
	Phases    []phaseVM
	Visible   int
	Total     int
	LoadedAt  string
}

func hrefFor(sel timeline.Selection) string {
	q := sel.Query()
	if q == "" {
		return "/"
	}
	return "/?" + q
}

func withTagToggled(sel timeline.Selection, tag string) timeline.Selection {
	next := sel
	next.Tags = nil
	found := false
	for _, t := range sel.Tags {
		if t == tag {
			found = true
			continue
		}
		next.Tags = append(next.Tags, t)
	}
	if !found {
		next.Tags = append(next.Tags, tag)
	}
	next.Tags = model.NormalizeTags(next.Tags)
	return next
}

func buildPageVM(sess *timeline.Session, loadedAt time.Time) pageVM {
	v := sess.View()
	sel := v.Selection
	reg := sess.Registry()

	active := map[string]bool{}
	for _, t := range sel.Tags {
		active[t] = true
	}

	vm := pageVM{
		Hash:      v.Hash,
		Selection: sel,
		ClearHref: "/",
		Visible:   v.Count(),
		Total:     reg.Len(),
	}
	if !loadedAt.IsZero() {
		vm.LoadedAt = loadedAt.Format(time.RFC3339)
	}

	for _, tc := range reg.Tags() {
		vm.Tags = append(vm.Tags, linkVM{
			Label:  tc.Tag,
			Href:   hrefFor(withTagToggled(sel, tc.Tag)),
			Active: active[tc.Tag],
			Count:  tc.Count,
		})
	}
	for _, m := range []model.ConnectionMode{model.ModeNone, model.ModeTag, model.ModeGroup} {
		next := sel
		next.Mode = m
		vm.Modes = append(vm.Modes, linkVM{Label: string(m), Href: hrefFor(next), Active: sel.Mode == m})
	}
	for _, g := range reg.Groups() {
		next := sel
		next.Group = g
		next.Mode = model.ModeGroup
		vm.Groups = append(vm.Groups, linkVM{Label: g, Href: hrefFor(next), Active: sel.Group == g})
	}

	flat := 0
	for _, pv := range v.Phases {
		pvm := phaseVM{Phase: pv.Phase}
		for _, u := range pv.Units {
			info := v.Connections[u.ID]
			row := rowVM{
				ID:       u.ID,
				Bundle:   u.IsBundle(),
				Rail:     railClass(v.Rails[flat]),
				GapAbove: info.GapAbove,
				GapBelow: info.GapBelow,
			}
			flat++
			for _, it := range u.Items {
				row.Items = append(row.Items, buildItemVM(it, sel, active))
			}
			pvm.Rows = append(pvm.Rows, row)
		}
		vm.Phases = append(vm.Phases, pvm)
	}
	return vm
}

func buildItemVM(it model.Item, sel timeline.Selection, active map[string]bool) itemVM {
	focus := sel
	focus.Project = it.ID
	out := itemVM{
		ID:      it.ID,
		Title:   it.Title,
		Size:    string(it.Size),
		Group:   it.Group,
		Summary: renderMarkdownHTML(it.Summary),
		Href:    hrefFor(focus),
		Focused: sel.Project == it.ID,
	}
	if strings.TrimSpace(out.Title) == "" {
		out.Title = it.ID
	}
	if it.Date != nil {
		out.Date = it.Date.Format("2006-01-02")
	}
	for _, t := range it.Tags {
		out.Tags = append(out.Tags, linkVM{Label: t, Href: hrefFor(withTagToggled(sel, t)), Active: active[t]})
	}
	return out
}

func railClass(r connect.Rail) string {
	if r == connect.RailNone {
		return "rail-none"
	}
	return "rail-" + string(r)
}
