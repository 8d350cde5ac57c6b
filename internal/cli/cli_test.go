package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const cliManifest = `[
  {"slug": "flagship", "title": "Flagship", "phase": 3, "size": "large", "date": "2025-05-01", "tags": ["go", "web"], "group": "site"},
  {"slug": "cli-tool", "title": "CLI tool", "phase": 3, "size": "medium", "date": "2025-04-01", "tags": ["go", "cli"], "group": "tools"},
  {"slug": "script-a", "phase": 2, "size": "small", "date": "2023-01-10", "tags": ["python"], "group": "tools"},
  {"slug": "script-b", "phase": 2, "size": "small", "date": "2022-12-01", "tags": ["go"], "group": "tools"},
  {"slug": "first", "phase": 1, "size": "large", "date": "2020-01-01", "tags": ["c"]},
  {"title": "no slug"}
]`

// setupCLI isolates config lookup and writes the manifest; it returns the
// leading args that point the CLI at it.
func setupCLI(t *testing.T) []string {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	t.Setenv("TIMELINE_CONFIG", "")
	t.Setenv("TIMELINE_FORMAT", "")
	t.Setenv("TIMELINE_BUNDLE_REFERENCE", "2025-06-01")

	p := filepath.Join(t.TempDir(), "projects.json")
	if err := os.WriteFile(p, []byte(cliManifest), 0o644); err != nil {
		t.Fatalf("write manifest: %v", err)
	}
	return []string{"--projects", p}
}

func runCLI(t *testing.T, args []string) (stdout []byte, stderr []byte, err error) {
	t.Helper()

	cmd := NewRootCmd()

	var outBuf bytes.Buffer
	var errBuf bytes.Buffer
	cmd.SetOut(&outBuf)
	cmd.SetErr(&errBuf)
	cmd.SetArgs(args)
	e := cmd.Execute()
	return outBuf.Bytes(), errBuf.Bytes(), e
}

func mustEnvelope(t *testing.T, args ...string) map[string]any {
	t.Helper()
	stdout, stderr, err := runCLI(t, args)
	if err != nil {
		t.Fatalf("command failed: timeline %v\nerr: %v\nstderr:\n%s", args, err, stderr)
	}
	var env map[string]any
	if err := json.Unmarshal(stdout, &env); err != nil {
		t.Fatalf("unmarshal stdout: %v\nstdout:\n%s", err, stdout)
	}
	if _, ok := env["data"]; !ok {
		t.Fatalf("expected data key in envelope: %s", stdout)
	}
	return env
}

func unitIDs(t *testing.T, phase any) []string {
	t.Helper()
	units, _ := phase.(map[string]any)["units"].([]any)
	var out []string
	for _, u := range units {
		out = append(out, u.(map[string]any)["id"].(string))
	}
	return out
}

func TestPhases(t *testing.T) {
	base := setupCLI(t)
	env := mustEnvelope(t, append(base, "phases")...)
	rows := env["data"].([]any)
	if len(rows) != 3 {
		t.Fatalf("expected 3 phases, got %v", rows)
	}
	first := rows[0].(map[string]any)
	if first["phase"].(float64) != 3 || first["items"].(float64) != 2 {
		t.Fatalf("unexpected first phase: %v", first)
	}
}

func TestShow_AllPhases(t *testing.T) {
	base := setupCLI(t)
	env := mustEnvelope(t, append(base, "show")...)
	phases := env["data"].(map[string]any)["phases"].([]any)
	if len(phases) != 3 {
		t.Fatalf("expected 3 phases, got %d", len(phases))
	}
	if got := strings.Join(unitIDs(t, phases[1]), ","); got != "bundle-phase2-0" {
		t.Fatalf("expected phase 2 bundled, got %s", got)
	}
	meta := env["meta"].(map[string]any)
	if meta["visible"].(float64) != 5 || meta["total"].(float64) != 5 {
		t.Fatalf("unexpected meta: %v", meta)
	}
}

func TestShow_OnePhaseWithTags(t *testing.T) {
	base := setupCLI(t)
	env := mustEnvelope(t, append(base, "show", "2", "--tags", "go")...)
	data := env["data"].(map[string]any)
	if got := strings.Join(unitIDs(t, data), ","); got != "script-b" {
		t.Fatalf("expected a lone entry, got %s", got)
	}
	if hash := env["meta"].(map[string]any)["hash"]; hash != "#timeline?tags=go" {
		t.Fatalf("unexpected hash: %v", hash)
	}
}

func TestShow_URLSeedsSelectionAndFlagsWin(t *testing.T) {
	base := setupCLI(t)
	env := mustEnvelope(t, append(base, "show", "--url", "#timeline?tags=python&mode=tag", "--mode", "none")...)
	data := env["data"].(map[string]any)
	sel := data["selection"].(map[string]any)
	if sel["mode"] != "none" {
		t.Fatalf("expected explicit --mode to win, got %v", sel["mode"])
	}
	if data["hash"] != "#timeline?tags=python" {
		t.Fatalf("unexpected hash: %v", data["hash"])
	}
}

func TestShow_StrictRejectsUnknownTagWithSuggestion(t *testing.T) {
	base := setupCLI(t)
	_, stderr, err := runCLI(t, append(base, "show", "--tags", "pyton", "--strict"))
	if err == nil {
		t.Fatalf("expected an error for an unknown tag")
	}
	if !strings.Contains(string(stderr), "did you mean [python]") {
		t.Fatalf("expected a suggestion, got %q", stderr)
	}
}

func TestConnections_TagsImplyTagMode(t *testing.T) {
	base := setupCLI(t)
	env := mustEnvelope(t, append(base, "connections", "--tags", "go")...)
	rows := env["data"].([]any)
	var units, rails []string
	for _, r := range rows {
		m := r.(map[string]any)
		units = append(units, m["unit"].(string))
		rails = append(rails, m["rail"].(string))
	}
	if strings.Join(units, ",") != "flagship,cli-tool,script-b" {
		t.Fatalf("unexpected connected units: %v", units)
	}
	if strings.Join(rails, ",") != "start,node,end" {
		t.Fatalf("unexpected rails: %v", rails)
	}
	if env["meta"].(map[string]any)["mode"] != "tag" {
		t.Fatalf("expected tag mode, got %v", env["meta"])
	}
}

func TestConnections_GroupMode(t *testing.T) {
	base := setupCLI(t)
	env := mustEnvelope(t, append(base, "connections", "--group", "tools")...)
	rows := env["data"].([]any)
	if len(rows) != 2 {
		t.Fatalf("expected cli-tool and the tools bundle, got %v", rows)
	}
	second := rows[1].(map[string]any)
	info := second["info"].(map[string]any)
	if second["unit"] != "bundle-phase2-0" || info["gapAbove"] != false || info["isEnd"] != true {
		t.Fatalf("unexpected bundle row: %v", second)
	}
}

func TestURLParseAndFormat(t *testing.T) {
	base := setupCLI(t)

	env := mustEnvelope(t, append(base, "url", "parse", "#timeline?tags=Go,CLI&mode=bogus&x=1")...)
	data := env["data"].(map[string]any)
	state := data["state"].(map[string]any)
	if data["section"] != "timeline" || state["tags"] != "cli,go" {
		t.Fatalf("unexpected parse: %v", data)
	}
	if _, ok := state["mode"]; ok {
		t.Fatalf("expected unknown mode dropped: %v", state)
	}

	env = mustEnvelope(t, append(base, "url", "format", "--tags", "web,go", "--mode", "tag", "--group", "site")...)
	data = env["data"].(map[string]any)
	if data["hash"] != "#timeline?tags=go,web&mode=tag&group=site" {
		t.Fatalf("unexpected hash: %v", data["hash"])
	}

	if _, _, err := runCLI(t, append(base, "url", "format", "--mode", "sideways")); err == nil {
		t.Fatalf("expected an error for an unknown mode")
	}
}

func TestProjects(t *testing.T) {
	base := setupCLI(t)

	env := mustEnvelope(t, append(base, "projects", "list", "--tag", "GO")...)
	if n := len(env["data"].([]any)); n != 3 {
		t.Fatalf("expected 3 go projects, got %d", n)
	}

	env = mustEnvelope(t, append(base, "projects", "show", "@script-a")...)
	meta := env["meta"].(map[string]any)
	if meta["bundleable"] != true || meta["unit"] != "bundle-phase2-0" {
		t.Fatalf("unexpected meta: %v", meta)
	}

	_, stderr, err := runCLI(t, append(base, "projects", "show", "nope"))
	if err == nil || !strings.Contains(string(stderr), "project not found: nope") {
		t.Fatalf("expected not found, err=%v stderr=%q", err, stderr)
	}
}

func TestProjectsExportRoundTripsThroughSQLite(t *testing.T) {
	base := setupCLI(t)
	db := filepath.Join(t.TempDir(), "projects.sqlite")
	mustEnvelope(t, append(base, "projects", "export", "--sqlite", db)...)

	env := mustEnvelope(t, "--projects", db, "show")
	phases := env["data"].(map[string]any)["phases"].([]any)
	if len(phases) != 3 {
		t.Fatalf("expected the exported manifest to load, got %d phases", len(phases))
	}
}

func TestTags(t *testing.T) {
	base := setupCLI(t)

	env := mustEnvelope(t, append(base, "tags")...)
	first := env["data"].([]any)[0].(map[string]any)
	if first["tag"] != "go" || first["count"].(float64) != 3 {
		t.Fatalf("expected go to be the most used tag, got %v", first)
	}

	env = mustEnvelope(t, append(base, "tags", "--groups")...)
	if got := env["data"].([]any); len(got) != 2 || got[0] != "site" {
		t.Fatalf("unexpected groups: %v", got)
	}

	env = mustEnvelope(t, append(base, "tags", "--suggest", "wbe")...)
	if got := env["data"].([]any); len(got) != 1 || got[0] != "web" {
		t.Fatalf("unexpected suggestions: %v", got)
	}
}

func TestFormatYAML(t *testing.T) {
	base := setupCLI(t)
	stdout, _, err := runCLI(t, append(base, "--format", "yaml", "phases"))
	if err != nil {
		t.Fatalf("phases: %v", err)
	}
	if !strings.Contains(string(stdout), "phase: 3") {
		t.Fatalf("expected yaml output, got:\n%s", stdout)
	}
}

func TestMissingExplicitConfigFails(t *testing.T) {
	base := setupCLI(t)
	_, _, err := runCLI(t, append(base, "--config", filepath.Join(t.TempDir(), "nope.yaml"), "phases"))
	if err == nil {
		t.Fatalf("expected an error for a missing --config file")
	}
}

func TestDocs(t *testing.T) {
	base := setupCLI(t)

	env := mustEnvelope(t, append(base, "docs")...)
	topics := env["data"].(map[string]any)["topics"].([]any)
	if len(topics) == 0 {
		t.Fatalf("expected topics")
	}

	stdout, _, err := runCLI(t, append(base, "docs", "url", "--raw"))
	if err != nil || !strings.HasPrefix(string(stdout), "# Shareable URL state") {
		t.Fatalf("expected raw markdown, err=%v out=%q", err, stdout)
	}

	if _, _, err := runCLI(t, append(base, "docs", "nope")); err == nil {
		t.Fatalf("expected an error for an unknown topic")
	}
}

func TestPublish(t *testing.T) {
	base := setupCLI(t)
	dir := t.TempDir()

	env := mustEnvelope(t, append(base, "publish", "--to", dir, "--tags", "go")...)
	written := env["data"].(map[string]any)["written"].([]any)
	if len(written) != 4 {
		t.Fatalf("expected index plus 3 go projects, got %v", written)
	}
	b, err := os.ReadFile(filepath.Join(dir, "index.md"))
	if err != nil {
		t.Fatalf("read index: %v", err)
	}
	if !strings.Contains(string(b), "_tags: go_") {
		t.Fatalf("expected the filter in the index\n%s", b)
	}
}
