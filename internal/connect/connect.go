// Package connect computes the connection overlay across a flattened timeline:
// which display units share a selected tag or group, and where the chain
// starts, ends, or skips over unrelated units.
package connect

import (
	"strings"

	"timeline-cli/internal/model"
)

type match struct {
	id    string
	index int
}

// ByTag connects units related to any selected tag. A bundle matches when any
// of its members carries a selected tag. An empty selection connects nothing.
func ByTag(selectedTags []string, flat []model.DisplayUnit) map[string]model.ConnectionInfo {
	selected := map[string]bool{}
	for _, t := range model.NormalizeTags(selectedTags) {
		selected[t] = true
	}
	if len(selected) == 0 {
		return map[string]model.ConnectionInfo{}
	}
	var matches []match
	for i, u := range flat {
		if unitHasAnyTag(u, selected) {
			matches = append(matches, match{id: u.ID, index: i})
		}
	}
	return annotate(matches, "")
}

// ByGroup connects units belonging to one lineage. A bundle matches only when
// every member has exactly that group; partially grouped bundles never connect.
func ByGroup(selectedGroup string, flat []model.DisplayUnit) map[string]model.ConnectionInfo {
	selectedGroup = strings.TrimSpace(selectedGroup)
	if selectedGroup == "" {
		return map[string]model.ConnectionInfo{}
	}
	var matches []match
	for i, u := range flat {
		if unitInGroup(u, selectedGroup) {
			matches = append(matches, match{id: u.ID, index: i})
		}
	}
	return annotate(matches, selectedGroup)
}

// Compute dispatches on mode. ModeNone and unknown modes connect nothing.
func Compute(mode model.ConnectionMode, tags []string, group string, flat []model.DisplayUnit) map[string]model.ConnectionInfo {
	switch mode {
	case model.ModeTag:
		return ByTag(tags, flat)
	case model.ModeGroup:
		return ByGroup(group, flat)
	default:
		return map[string]model.ConnectionInfo{}
	}
}

func unitHasAnyTag(u model.DisplayUnit, selected map[string]bool) bool {
	for _, it := range u.Items {
		if it.HasAnyTag(selected) {
			return true
		}
	}
	return false
}

func unitInGroup(u model.DisplayUnit, group string) bool {
	if len(u.Items) == 0 {
		return false
	}
	for _, it := range u.Items {
		if it.Group != group {
			return false
		}
	}
	return true
}

func annotate(matches []match, groupID string) map[string]model.ConnectionInfo {
	out := make(map[string]model.ConnectionInfo, len(matches))
	last := len(matches) - 1
	for i, m := range matches {
		info := model.ConnectionInfo{
			Connected: true,
			IsStart:   i == 0,
			IsEnd:     i == last,
			GroupID:   groupID,
		}
		if i > 0 {
			info.GapAbove = m.index-matches[i-1].index > 1
		}
		if i < last {
			info.GapBelow = matches[i+1].index-m.index > 1
		}
		out[m.id] = info
	}
	return out
}
