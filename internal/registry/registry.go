package registry

import (
	"fmt"
	"sort"
	"time"

	"timeline-cli/internal/model"
)

// Config controls bundling eligibility. Items are bundleable when they are
// small, dated, and older than Threshold relative to Reference.
type Config struct {
	Threshold time.Duration
	Reference time.Time
}

// Registry is the arena of timeline items keyed by id.
//
// Items are kept in stored order (phase newest first, then date newest first).
// The only mutable per-item state is IsVisible, which ApplyFilter recomputes in
// full. Registry is not safe for concurrent use.
type Registry struct {
	cfg   Config
	items []model.Item
	byID  map[string]int

	elements map[string]Element
}

func New() *Registry {
	return &Registry{byID: map[string]int{}, elements: map[string]Element{}}
}

// Initialize replaces all registry state. Later duplicates of an id are dropped.
func (r *Registry) Initialize(items []model.Item, cfg Config) {
	r.cfg = cfg
	r.items = make([]model.Item, 0, len(items))
	r.byID = make(map[string]int, len(items))
	r.elements = map[string]Element{}

	seen := make(map[string]bool, len(items))
	for _, it := range items {
		if it.ID == "" || seen[it.ID] {
			continue
		}
		seen[it.ID] = true
		it.IsVisible = true
		r.items = append(r.items, it)
	}
	sort.SliceStable(r.items, func(i, j int) bool { return storedLess(r.items[i], r.items[j]) })
	for i, it := range r.items {
		r.byID[it.ID] = i
	}
}

func storedLess(a, b model.Item) bool {
	if a.PhaseID != b.PhaseID {
		return a.PhaseID > b.PhaseID
	}
	switch {
	case a.Date != nil && b.Date != nil:
		return a.Date.After(*b.Date)
	case a.Date != nil:
		return true
	default:
		return false
	}
}

func (r *Registry) Config() Config { return r.cfg }

func (r *Registry) Len() int { return len(r.items) }

// ApplyFilter recomputes every item's visibility from the full selection:
// an empty selection shows everything, otherwise an item is visible when it
// carries at least one selected tag.
func (r *Registry) ApplyFilter(selectedTags []string) {
	selected := map[string]bool{}
	for _, t := range model.NormalizeTags(selectedTags) {
		selected[t] = true
	}
	for i := range r.items {
		r.items[i].IsVisible = len(selected) == 0 || r.items[i].HasAnyTag(selected)
	}
}

// Bundleable reports whether it is a small, dated item older than the threshold.
func (r *Registry) Bundleable(it model.Item) bool {
	if it.Size != model.SizeSmall || it.Date == nil {
		return false
	}
	return r.cfg.Reference.Sub(*it.Date) > r.cfg.Threshold
}

// ComputeDisplayStructure returns the display units for one phase.
//
// Visible bundleable items accumulate into a pending run. A visible
// non-bundleable item flushes the run and is emitted as an Entry. Invisible
// items are skipped without flushing, so hiding an item never splits a bundle.
// A run of one is emitted as an Entry. Unknown phases yield an empty list.
func (r *Registry) ComputeDisplayStructure(phaseID int) []model.DisplayUnit {
	out := []model.DisplayUnit{}
	var run []model.Item
	ordinal := 0

	flush := func() {
		switch len(run) {
		case 0:
			return
		case 1:
			out = append(out, model.Entry(run[0]))
		default:
			id := fmt.Sprintf("bundle-phase%d-%d", phaseID, ordinal)
			ordinal++
			out = append(out, model.Bundle(id, run))
		}
		run = nil
	}

	for _, it := range r.items {
		if it.PhaseID != phaseID || !it.IsVisible {
			continue
		}
		if r.Bundleable(it) {
			run = append(run, it)
			continue
		}
		flush()
		out = append(out, model.Entry(it))
	}
	flush()
	return out
}

// Phases returns the distinct phase ids, newest (highest) first.
func (r *Registry) Phases() []int {
	seen := map[int]bool{}
	var out []int
	for _, it := range r.items {
		if seen[it.PhaseID] {
			continue
		}
		seen[it.PhaseID] = true
		out = append(out, it.PhaseID)
	}
	sort.Sort(sort.Reverse(sort.IntSlice(out)))
	return out
}

// Flatten concatenates the display structures of all phases, newest phase first.
func (r *Registry) Flatten() []model.DisplayUnit {
	var out []model.DisplayUnit
	for _, p := range r.Phases() {
		out = append(out, r.ComputeDisplayStructure(p)...)
	}
	return out
}

func (r *Registry) Item(id string) (model.Item, bool) {
	i, ok := r.byID[id]
	if !ok {
		return model.Item{}, false
	}
	return r.items[i], true
}

// Items returns a copy of the items in stored order.
func (r *Registry) Items() []model.Item {
	out := make([]model.Item, len(r.items))
	copy(out, r.items)
	return out
}

type TagCount struct {
	Tag   string `json:"tag" yaml:"tag"`
	Count int    `json:"count" yaml:"count"`
}

// Tags returns every tag with its item count, most used first.
func (r *Registry) Tags() []TagCount {
	counts := map[string]int{}
	for _, it := range r.items {
		for _, t := range it.Tags {
			counts[t]++
		}
	}
	out := make([]TagCount, 0, len(counts))
	for t, n := range counts {
		out = append(out, TagCount{Tag: t, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Tag < out[j].Tag
	})
	return out
}

// Groups returns the distinct non-empty groups, sorted.
func (r *Registry) Groups() []string {
	seen := map[string]bool{}
	var out []string
	for _, it := range r.items {
		if it.Group == "" || seen[it.Group] {
			continue
		}
		seen[it.Group] = true
		out = append(out, it.Group)
	}
	sort.Strings(out)
	return out
}
