package publish

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"timeline-cli/internal/model"
	"timeline-cli/internal/registry"
	"timeline-cli/internal/timeline"
	"timeline-cli/internal/urlstate"
)

func date(y int, m time.Month, d int) *time.Time {
	t := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return &t
}

func fixtureView(t *testing.T) timeline.View {
	t.Helper()
	s := timeline.NewSession(timeline.Options{
		Bundle: registry.Config{
			Threshold: 365 * 24 * time.Hour,
			Reference: time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
		},
		Location:  urlstate.NewMemoryLocation(""),
		Scheduler: &urlstate.ManualScheduler{},
	})
	t.Cleanup(s.Close)
	s.Load([]model.Item{
		{ID: "flagship", Title: "Flagship", PhaseID: 3, Size: model.SizeLarge, Date: date(2025, 5, 1), Tags: []string{"go", "web"}, Group: "site", Summary: "The **main** site."},
		{ID: "script-a", Title: "Script A", PhaseID: 2, Size: model.SizeSmall, Date: date(2023, 1, 10), Tags: []string{"python"}, Group: "tools"},
		{ID: "script-b", Title: "Script B", PhaseID: 2, Size: model.SizeSmall, Date: date(2022, 12, 1), Tags: []string{"go"}, Group: "tools"},
		{ID: "first", Title: "First", PhaseID: 1, Size: model.SizeLarge, Date: date(2020, 1, 1), Tags: []string{"c"}},
	})
	s.SetGroup("tools", urlstate.Immediate)
	s.SetMode(model.ModeGroup, urlstate.Immediate)
	return s.View()
}

func TestRenderIndexMarkdown(t *testing.T) {
	t.Parallel()

	md := RenderIndexMarkdown(fixtureView(t), RenderOptions{IncludeSummaries: true})
	for _, want := range []string{
		"# Timeline",
		"_connections: group · group: tools_",
		"## Phase 3",
		"- [Flagship](projects/flagship.md) · 2025-05 · #go #web",
		"  The **main** site.",
		"- ● 2 smaller projects (2022-2023)",
		"  - [Script B](projects/script-b.md)",
		"View: `#timeline?mode=group&group=tools`",
	} {
		if !strings.Contains(md, want) {
			t.Fatalf("expected index to contain %q\n%s", want, md)
		}
	}
	if strings.Index(md, "## Phase 3") > strings.Index(md, "## Phase 1") {
		t.Fatalf("expected newest phase first\n%s", md)
	}
}

func TestRenderProjectMarkdown(t *testing.T) {
	t.Parallel()

	it := model.Item{ID: "x", PhaseID: 2, Size: model.SizeSmall, Tags: []string{"go"}, Summary: "Body"}
	md := RenderProjectMarkdown(it, model.ConnectionInfo{Connected: true})
	for _, want := range []string{"# x", "- Phase: 2", "- Size: small", "- Tags: go", "- Connected: true", "## Summary\n\nBody"} {
		if !strings.Contains(md, want) {
			t.Fatalf("expected %q in\n%s", want, md)
		}
	}
	if strings.Contains(md, "- Date:") {
		t.Fatalf("expected undated project to omit the date\n%s", md)
	}
}

func TestWriteTimeline_WritesPagesAndRespectsOverwrite(t *testing.T) {
	t.Parallel()

	v := fixtureView(t)
	dir := t.TempDir()

	res, err := WriteTimeline(v, dir, WriteOptions{})
	if err != nil {
		t.Fatalf("WriteTimeline: %v", err)
	}
	if len(res.Written) != 5 {
		t.Fatalf("expected index plus 4 project pages, got %v", res.Written)
	}
	b, err := os.ReadFile(filepath.Join(dir, "projects", "script-a.md"))
	if err != nil {
		t.Fatalf("read project page: %v", err)
	}
	if !strings.Contains(string(b), "- Connected: true") {
		t.Fatalf("expected bundle member to carry the bundle's connection\n%s", b)
	}

	if _, err := WriteTimeline(v, dir, WriteOptions{}); err == nil {
		t.Fatalf("expected an error when files exist")
	}
	if _, err := WriteTimeline(v, dir, WriteOptions{Overwrite: true}); err != nil {
		t.Fatalf("overwrite: %v", err)
	}
}

func TestWriteTimeline_RejectsUnsafeSlug(t *testing.T) {
	t.Parallel()

	v := timeline.View{Flat: []model.DisplayUnit{model.Entry(model.Item{ID: "../escape"})}}
	if _, err := WriteTimeline(v, t.TempDir(), WriteOptions{}); err == nil {
		t.Fatalf("expected unsafe slug to be rejected")
	}
	if _, err := WriteTimeline(v, " ", WriteOptions{}); err == nil {
		t.Fatalf("expected missing dir to be rejected")
	}
}
