package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"timeline-cli/internal/model"

	"gopkg.in/yaml.v3"
)

// SettingsFile is the per-project manifest inside a projects directory.
const SettingsFile = "settings.yaml"

// Load reads project records from path, which may be a projects directory,
// a .json manifest, or a SQLite database (.sqlite/.db).
func Load(ctx context.Context, path string, log *slog.Logger) ([]model.ProjectRecord, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, errors.New("load projects: missing path")
	}
	fi, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("load projects: %w", err)
	}
	if fi.IsDir() {
		return LoadDir(path, log)
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return LoadJSON(path)
	case ".sqlite", ".sqlite3", ".db":
		return LoadSQLite(ctx, path)
	case ".yaml", ".yml":
		return LoadYAML(path)
	default:
		return nil, fmt.Errorf("load projects: unsupported manifest type: %s", path)
	}
}

// settings mirrors a project's settings.yaml. Older manifests list
// technologies/builtWith separately from tags; they are merged into tags.
type settings struct {
	Slug         string   `yaml:"slug"`
	Title        string   `yaml:"title"`
	Summary      string   `yaml:"summary"`
	Description  string   `yaml:"description"`
	Tags         []string `yaml:"tags"`
	Technologies []string `yaml:"technologies"`
	BuiltWith    []string `yaml:"builtWith"`
	Group        string   `yaml:"group"`
	Size         string   `yaml:"size"`
	Date         string   `yaml:"date"`
	Phase        int      `yaml:"phase"`
}

func (s settings) record(dirName string) model.ProjectRecord {
	slug := strings.TrimSpace(s.Slug)
	if slug == "" {
		slug = dirName
	}
	summary := s.Summary
	if strings.TrimSpace(summary) == "" {
		summary = s.Description
	}
	tags := append([]string{}, s.Tags...)
	tags = append(tags, s.Technologies...)
	tags = append(tags, s.BuiltWith...)
	return model.ProjectRecord{
		Slug:    slug,
		Title:   s.Title,
		Summary: summary,
		Tags:    model.NormalizeTags(tags),
		Group:   s.Group,
		Size:    s.Size,
		Date:    s.Date,
		Phase:   s.Phase,
	}
}

// LoadDir reads <dir>/<slug>/settings.yaml for every project directory.
// Directories starting with "_" or "." are skipped. A settings file that does
// not parse is skipped with a warning rather than failing the load.
func LoadDir(dir string, log *slog.Logger) ([]model.ProjectRecord, error) {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read projects dir: %w", err)
	}
	var out []model.ProjectRecord
	for _, e := range entries {
		name := e.Name()
		if !e.IsDir() || strings.HasPrefix(name, "_") || strings.HasPrefix(name, ".") {
			continue
		}
		p := filepath.Join(dir, name, SettingsFile)
		b, err := os.ReadFile(p)
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				continue
			}
			return nil, fmt.Errorf("read %s: %w", p, err)
		}
		var s settings
		if err := yaml.Unmarshal(b, &s); err != nil {
			log.Warn("skipping project with unreadable settings", slog.String("path", p), slog.Any("err", err))
			continue
		}
		out = append(out, s.record(name))
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Slug < out[j].Slug })
	return out, nil
}

type manifestDoc struct {
	Projects []model.ProjectRecord `json:"projects" yaml:"projects"`
}

// LoadJSON reads either a bare array of records or {"projects": [...]}.
func LoadJSON(path string) ([]model.ProjectRecord, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}
	trimmed := strings.TrimSpace(string(b))
	if strings.HasPrefix(trimmed, "[") {
		var recs []model.ProjectRecord
		if err := json.Unmarshal(b, &recs); err != nil {
			return nil, fmt.Errorf("parse manifest %s: %w", path, err)
		}
		return recs, nil
	}
	var doc manifestDoc
	if err := json.Unmarshal(b, &doc); err != nil {
		return nil, fmt.Errorf("parse manifest %s: %w", path, err)
	}
	return doc.Projects, nil
}

// LoadYAML reads a single-file manifest with a top-level projects list.
func LoadYAML(path string) ([]model.ProjectRecord, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}
	var doc manifestDoc
	if err := yaml.Unmarshal(b, &doc); err != nil {
		return nil, fmt.Errorf("parse manifest %s: %w", path, err)
	}
	return doc.Projects, nil
}

// Items converts records to registry items. Records without a slug are
// skipped; the number skipped is returned for logging.
func Items(recs []model.ProjectRecord) ([]model.Item, int) {
	out := make([]model.Item, 0, len(recs))
	skipped := 0
	for _, rec := range recs {
		it, ok := model.ItemFromRecord(rec)
		if !ok {
			skipped++
			continue
		}
		out = append(out, it)
	}
	return out, skipped
}
