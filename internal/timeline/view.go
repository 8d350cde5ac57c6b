package timeline

import (
	"timeline-cli/internal/connect"
	"timeline-cli/internal/model"
)

type PhaseView struct {
	Phase int                 `json:"phase" yaml:"phase"`
	Units []model.DisplayUnit `json:"units" yaml:"units"`
}

// View is one render pass: the display structure of every phase plus the
// connection overlay over their concatenation. It is rebuilt on every change.
type View struct {
	Selection   Selection                       `json:"selection" yaml:"selection"`
	Phases      []PhaseView                     `json:"phases" yaml:"phases"`
	Flat        []model.DisplayUnit             `json:"-" yaml:"-"`
	Connections map[string]model.ConnectionInfo `json:"connections" yaml:"connections"`
	Rails       []connect.Rail                  `json:"-" yaml:"-"`
	Hash        string                          `json:"hash" yaml:"hash"`
}

// View applies the current filter and computes a fresh render pass. The
// filter always runs first, so visibility is never stale.
func (s *Session) View() View {
	s.reg.ApplyFilter(s.sel.Tags)

	v := View{Selection: s.Selection(), Hash: s.Hash()}
	for _, p := range s.reg.Phases() {
		units := s.reg.ComputeDisplayStructure(p)
		if len(units) == 0 {
			continue
		}
		v.Phases = append(v.Phases, PhaseView{Phase: p, Units: units})
		v.Flat = append(v.Flat, units...)
	}
	v.Connections = connect.Compute(s.sel.Mode, s.sel.Tags, s.sel.Group, v.Flat)
	v.Rails = connect.Rails(v.Flat, v.Connections)
	return v
}

// PhaseUnits returns one phase's display structure under the current filter.
func (s *Session) PhaseUnits(phase int) []model.DisplayUnit {
	s.reg.ApplyFilter(s.sel.Tags)
	return s.reg.ComputeDisplayStructure(phase)
}

// UnitIndex returns the flat index of the unit holding itemID.
func (v View) UnitIndex(itemID string) (int, bool) {
	for i, u := range v.Flat {
		for _, it := range u.Items {
			if it.ID == itemID {
				return i, true
			}
		}
	}
	return 0, false
}

// Count returns the number of visible items in the view.
func (v View) Count() int {
	n := 0
	for _, u := range v.Flat {
		n += len(u.Items)
	}
	return n
}
