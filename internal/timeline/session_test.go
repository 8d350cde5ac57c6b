package timeline

import (
	"testing"
	"time"

	"timeline-cli/internal/connect"
	"timeline-cli/internal/model"
	"timeline-cli/internal/registry"
	"timeline-cli/internal/urlstate"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var ref = time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

func ago(days int) *time.Time {
	d := ref.AddDate(0, 0, -days)
	return &d
}

func fixtureItems() []model.Item {
	return []model.Item{
		{ID: "flagship", PhaseID: 3, Size: model.SizeLarge, Date: ago(30), Tags: []string{"go", "web"}, Group: "site"},
		{ID: "cli-tool", PhaseID: 3, Size: model.SizeMedium, Date: ago(60), Tags: []string{"go", "cli"}, Group: "tools"},
		{ID: "script-a", PhaseID: 2, Size: model.SizeSmall, Date: ago(500), Tags: []string{"python"}, Group: "tools"},
		{ID: "script-b", PhaseID: 2, Size: model.SizeSmall, Date: ago(520), Tags: []string{"go"}, Group: "tools"},
		{ID: "site-v1", PhaseID: 2, Size: model.SizeMedium, Date: ago(600), Tags: []string{"web"}, Group: "site"},
		{ID: "first", PhaseID: 1, Size: model.SizeLarge, Date: ago(1500), Tags: []string{"c"}},
	}
}

func newFixtureSession(t *testing.T, hash string) (*Session, *urlstate.MemoryLocation, *urlstate.ManualScheduler) {
	t.Helper()
	loc := urlstate.NewMemoryLocation(hash)
	sched := &urlstate.ManualScheduler{}
	s := NewSession(Options{
		Bundle:    registry.Config{Threshold: 365 * 24 * time.Hour, Reference: ref},
		Debounce:  50 * time.Millisecond,
		Location:  loc,
		Scheduler: sched,
	})
	t.Cleanup(s.Close)
	s.Load(fixtureItems())
	return s, loc, sched
}

func flatIDs(v View) []string {
	var out []string
	for _, u := range v.Flat {
		out = append(out, u.ID)
	}
	return out
}

func TestView_UnfilteredStructure(t *testing.T) {
	s, _, _ := newFixtureSession(t, "")
	v := s.View()

	require.Len(t, v.Phases, 3)
	assert.Equal(t, []int{3, 2, 1}, []int{v.Phases[0].Phase, v.Phases[1].Phase, v.Phases[2].Phase})
	assert.Equal(t, []string{"flagship", "cli-tool", "bundle-phase2-0", "site-v1", "first"}, flatIDs(v))
	assert.Empty(t, v.Connections)
	assert.Equal(t, 6, v.Count())
	assert.Equal(t, "#timeline", v.Hash)
}

func TestView_FilterAppliedBeforeStructure(t *testing.T) {
	s, _, _ := newFixtureSession(t, "")
	s.SetTags([]string{"go"}, urlstate.Debounced)

	v := s.View()
	// script-b alone is visible in phase 2, so the run of one renders as an entry.
	assert.Equal(t, []string{"flagship", "cli-tool", "script-b"}, flatIDs(v))
}

func TestView_GroupConnectionsWithGaps(t *testing.T) {
	s, _, _ := newFixtureSession(t, "")
	s.SetMode(model.ModeGroup, urlstate.Debounced)
	s.SetGroup("site", urlstate.Debounced)

	v := s.View()
	require.Len(t, v.Connections, 2)
	assert.Equal(t, model.ConnectionInfo{Connected: true, IsStart: true, GapBelow: true, GroupID: "site"}, v.Connections["flagship"])
	assert.Equal(t, model.ConnectionInfo{Connected: true, IsEnd: true, GapAbove: true, GroupID: "site"}, v.Connections["site-v1"])
	assert.Equal(t, []connect.Rail{connect.RailStart, connect.RailPass, connect.RailPass, connect.RailEnd, connect.RailNone}, v.Rails)

	s.SetGroup("tools", urlstate.Debounced)
	v = s.View()
	// The script bundle is wholly "tools", so it connects to cli-tool.
	assert.Contains(t, v.Connections, "bundle-phase2-0")
	assert.Contains(t, v.Connections, "cli-tool")
}

func TestSession_URLSyncDebouncesSelection(t *testing.T) {
	s, loc, sched := newFixtureSession(t, "")

	s.ToggleTag("Go", urlstate.Debounced)
	s.ToggleTag("web", urlstate.Debounced)
	s.ToggleTag("go", urlstate.Debounced)
	s.SetMode(model.ModeTag, urlstate.Debounced)
	s.SelectProject("flagship", urlstate.Debounced)
	assert.Equal(t, 0, loc.Writes())

	sched.Advance(50 * time.Millisecond)
	assert.Equal(t, 1, loc.Writes())
	assert.Equal(t, "#timeline?project=flagship&tags=web&mode=tag", loc.Hash())
	assert.Equal(t, loc.Hash(), s.Hash())
	assert.Equal(t, "project=flagship&tags=web&mode=tag", s.Query())

	assert.False(t, s.Flush())
	assert.Equal(t, 1, loc.Writes())
}

func TestSession_RestoreFromURL(t *testing.T) {
	s, loc, _ := newFixtureSession(t, "#timeline?tags=web&mode=group&group=site&project=site-v1")

	parsed := s.RestoreFromURL()
	assert.Equal(t, "timeline", parsed.Section)
	assert.Equal(t, Selection{Tags: []string{"web"}, Mode: model.ModeGroup, Group: "site", Project: "site-v1"}, s.Selection())

	v := s.View()
	assert.Equal(t, []string{"flagship", "site-v1"}, flatIDs(v))
	idx, ok := v.UnitIndex("site-v1")
	assert.True(t, ok)
	assert.Equal(t, 1, idx)
	assert.Equal(t, 0, loc.Writes())
}

func TestSession_RestoreIgnoresOtherSection(t *testing.T) {
	s, _, _ := newFixtureSession(t, "#about?tags=web")
	parsed := s.RestoreFromURL()
	assert.Equal(t, "about", parsed.Section)
	assert.Equal(t, Selection{Mode: model.ModeNone}, s.Selection())
}

func TestSession_SetModeRejectsUnknown(t *testing.T) {
	s, _, _ := newFixtureSession(t, "")
	s.SetMode(model.ConnectionMode("diagonal"), urlstate.Immediate)
	assert.Equal(t, model.ModeNone, s.Selection().Mode)
}

func TestSession_SetBundleConfig(t *testing.T) {
	s, _, _ := newFixtureSession(t, "")
	s.SetBundleConfig(registry.Config{Threshold: 10 * 365 * 24 * time.Hour, Reference: ref})
	assert.Equal(t, []string{"flagship", "cli-tool", "script-a", "script-b", "site-v1", "first"}, flatIDs(s.View()))
}
