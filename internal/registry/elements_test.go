package registry

import (
	"testing"

	"timeline-cli/internal/model"
)

type mapContainer map[string]Element

func (m mapContainer) Lookup(id string) (Element, bool) {
	el, ok := m[id]
	return el, ok
}

func TestAttach_RebuildsAndSkipsMisses(t *testing.T) {
	r := New()
	r.Initialize([]model.Item{
		{ID: "a", PhaseID: 1},
		{ID: "b", PhaseID: 1},
		{ID: "c", PhaseID: 1},
	}, testConfig())

	if n := r.Attach(mapContainer{"a": {Row: 1, UnitID: "a"}, "c": {Row: 4, UnitID: "bundle-phase1-0"}}); n != 2 {
		t.Fatalf("expected 2 attached, got %d", n)
	}
	if el, ok := r.Element("c"); !ok || el.Row != 4 || el.UnitID != "bundle-phase1-0" {
		t.Fatalf("unexpected element for c: %+v ok=%v", el, ok)
	}
	if _, ok := r.Element("b"); ok {
		t.Fatalf("expected b to stay unattached")
	}

	// A later pass drops stale associations.
	r.Attach(mapContainer{"b": {Row: 0}})
	if _, ok := r.Element("a"); ok {
		t.Fatalf("expected stale association for a to be cleared")
	}
	if _, ok := r.Element("b"); !ok {
		t.Fatalf("expected b attached")
	}

	if n := r.Attach(nil); n != 0 {
		t.Fatalf("expected nil container to attach nothing, got %d", n)
	}
}
