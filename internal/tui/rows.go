package tui

import (
	"timeline-cli/internal/connect"
	"timeline-cli/internal/model"
	"timeline-cli/internal/registry"
	"timeline-cli/internal/timeline"
)

type rowKind int

const (
	rowPhase rowKind = iota
	rowUnit
	rowMember
)

// row is one rendered line of the timeline list.
type row struct {
	kind  rowKind
	phase int

	// unit rows and member rows
	unit     model.DisplayUnit
	flat     int
	rail     connect.Rail
	item     model.Item
	expanded bool
}

func (r row) selectable() bool { return r.kind != rowPhase }

// unitKey identifies a bundle across recomputations. Bundle ids are assigned
// per pass, so the first member's id is used instead.
func unitKey(u model.DisplayUnit) string {
	if u.IsBundle() && len(u.Items) > 0 {
		return "bundle:" + u.Items[0].ID
	}
	return u.ID
}

// buildRows lays out a view: a header per phase, a row per display unit, and
// member rows under expanded bundles.
func buildRows(v timeline.View, expanded map[string]bool) []row {
	var rows []row
	flat := 0
	for _, pv := range v.Phases {
		rows = append(rows, row{kind: rowPhase, phase: pv.Phase})
		for _, u := range pv.Units {
			r := row{
				kind:  rowUnit,
				phase: pv.Phase,
				unit:  u,
				flat:  flat,
				rail:  v.Rails[flat],
				item:  u.Item(),
			}
			if u.IsBundle() {
				r.expanded = expanded[unitKey(u)]
			}
			rows = append(rows, r)
			if r.expanded {
				for _, it := range u.Items {
					rows = append(rows, row{kind: rowMember, phase: pv.Phase, unit: u, flat: flat, rail: r.rail, item: it})
				}
			}
			flat++
		}
	}
	return rows
}

// rowContainer answers element lookups for the registry attach pass. Bundle
// members resolve to their own row when expanded, otherwise to the bundle row.
type rowContainer struct {
	byItem map[string]registry.Element
}

func newRowContainer(rows []row) rowContainer {
	c := rowContainer{byItem: map[string]registry.Element{}}
	for i, r := range rows {
		switch r.kind {
		case rowUnit:
			for _, it := range r.unit.Items {
				if _, ok := c.byItem[it.ID]; !ok {
					c.byItem[it.ID] = registry.Element{Row: i, UnitID: r.unit.ID}
				}
			}
		case rowMember:
			c.byItem[r.item.ID] = registry.Element{Row: i, UnitID: r.unit.ID}
		}
	}
	return c
}

func (c rowContainer) Lookup(itemID string) (registry.Element, bool) {
	el, ok := c.byItem[itemID]
	return el, ok
}
