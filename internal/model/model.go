package model

import (
	"sort"
	"strings"
	"time"
)

type SizeClass string

const (
	SizeLarge  SizeClass = "large"
	SizeMedium SizeClass = "medium"
	SizeSmall  SizeClass = "small"
)

// ParseSizeClass maps a manifest size to a SizeClass. Unknown or empty values
// are treated as medium, which keeps the item out of bundling.
func ParseSizeClass(s string) SizeClass {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "large", "l", "lg":
		return SizeLarge
	case "small", "s", "sm":
		return SizeSmall
	default:
		return SizeMedium
	}
}

// ProjectRecord is a project as supplied by a manifest. No schema validation
// is done on it; conversion to Item tolerates missing or malformed fields.
type ProjectRecord struct {
	Slug    string   `json:"slug" yaml:"slug"`
	Title   string   `json:"title,omitempty" yaml:"title,omitempty"`
	Summary string   `json:"summary,omitempty" yaml:"summary,omitempty"`
	Tags    []string `json:"tags,omitempty" yaml:"tags,omitempty"`
	Group   string   `json:"group,omitempty" yaml:"group,omitempty"`
	Size    string   `json:"size,omitempty" yaml:"size,omitempty"`
	Date    string   `json:"date,omitempty" yaml:"date,omitempty"`
	Phase   int      `json:"phase" yaml:"phase"`
}

type Item struct {
	ID      string     `json:"id"`
	PhaseID int        `json:"phaseId"`
	Tags    []string   `json:"tags,omitempty"`
	Group   string     `json:"group,omitempty"`
	Size    SizeClass  `json:"size"`
	Date    *time.Time `json:"date,omitempty"`

	// IsVisible is owned by the registry filter pass.
	IsVisible bool `json:"isVisible"`

	Title   string `json:"title,omitempty"`
	Summary string `json:"summary,omitempty"`
}

// HasAnyTag reports whether the item carries at least one of the given tags.
func (it Item) HasAnyTag(selected map[string]bool) bool {
	for _, t := range it.Tags {
		if selected[t] {
			return true
		}
	}
	return false
}

var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02",
	"2006-01",
	"2006",
}

// ParseDate accepts the date shapes seen in project manifests.
func ParseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}

// NormalizeTag trims and lowercases a tag.
func NormalizeTag(tag string) string {
	return strings.ToLower(strings.TrimSpace(tag))
}

// NormalizeTags returns the unique, sorted, non-empty normalized tags.
func NormalizeTags(tags []string) []string {
	seen := map[string]bool{}
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		t = NormalizeTag(t)
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}

// ItemFromRecord converts a manifest record. ok is false when the record has
// no usable slug.
func ItemFromRecord(rec ProjectRecord) (Item, bool) {
	id := strings.TrimSpace(rec.Slug)
	if id == "" {
		return Item{}, false
	}
	it := Item{
		ID:        id,
		PhaseID:   rec.Phase,
		Tags:      NormalizeTags(rec.Tags),
		Group:     strings.TrimSpace(rec.Group),
		Size:      ParseSizeClass(rec.Size),
		IsVisible: true,
		Title:     strings.TrimSpace(rec.Title),
		Summary:   rec.Summary,
	}
	if d, ok := ParseDate(rec.Date); ok {
		it.Date = &d
	}
	if it.Title == "" {
		it.Title = id
	}
	return it, true
}

type UnitKind string

const (
	UnitEntry  UnitKind = "entry"
	UnitBundle UnitKind = "bundle"
)

// DisplayUnit is either a single Entry or a Bundle of two or more items.
// Entry ids are the item id; bundle ids are assigned per computation.
type DisplayUnit struct {
	Kind  UnitKind `json:"kind"`
	ID    string   `json:"id"`
	Items []Item   `json:"items"`
}

func Entry(it Item) DisplayUnit {
	return DisplayUnit{Kind: UnitEntry, ID: it.ID, Items: []Item{it}}
}

func Bundle(id string, items []Item) DisplayUnit {
	return DisplayUnit{Kind: UnitBundle, ID: id, Items: items}
}

func (u DisplayUnit) IsBundle() bool { return u.Kind == UnitBundle }

// Item returns the entry's item. For bundles it returns the first member.
func (u DisplayUnit) Item() Item {
	if len(u.Items) == 0 {
		return Item{}
	}
	return u.Items[0]
}

type ConnectionInfo struct {
	Connected bool   `json:"connected"`
	IsStart   bool   `json:"isStart"`
	IsEnd     bool   `json:"isEnd"`
	GapAbove  bool   `json:"gapAbove"`
	GapBelow  bool   `json:"gapBelow"`
	GroupID   string `json:"groupId,omitempty"`
}

// Isolated is a match with no neighbouring match; it overrides start/end display.
func (c ConnectionInfo) Isolated() bool { return c.IsStart && c.IsEnd }

type ConnectionMode string

const (
	ModeNone  ConnectionMode = "none"
	ModeTag   ConnectionMode = "tag"
	ModeGroup ConnectionMode = "group"
)

// ParseConnectionMode returns the mode and whether s named a known mode.
func ParseConnectionMode(s string) (ConnectionMode, bool) {
	switch ConnectionMode(strings.ToLower(strings.TrimSpace(s))) {
	case ModeNone:
		return ModeNone, true
	case ModeTag:
		return ModeTag, true
	case ModeGroup:
		return ModeGroup, true
	default:
		return ModeNone, false
	}
}

// Next cycles none -> tag -> group -> none.
func (m ConnectionMode) Next() ConnectionMode {
	switch m {
	case ModeTag:
		return ModeGroup
	case ModeGroup:
		return ModeNone
	default:
		return ModeTag
	}
}
