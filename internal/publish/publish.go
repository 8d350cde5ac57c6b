package publish

import (
	"errors"
	"os"
	"path/filepath"
	"strings"

	"timeline-cli/internal/timeline"
)

type WriteOptions struct {
	RenderOptions
	Overwrite bool
}

type WriteResult struct {
	Written []string `json:"written"`
}

// WriteTimeline writes <toDir>/index.md plus one page per visible project
// under <toDir>/projects/. It stops at the first error.
func WriteTimeline(v timeline.View, toDir string, opt WriteOptions) (WriteResult, error) {
	toDir = strings.TrimSpace(toDir)
	if toDir == "" {
		return WriteResult{}, errors.New("missing --to")
	}
	toDir = filepath.Clean(toDir)

	projectsDir := filepath.Join(toDir, "projects")
	if err := os.MkdirAll(projectsDir, 0o755); err != nil {
		return WriteResult{}, err
	}

	indexPath := filepath.Join(toDir, "index.md")
	if err := writeFile(indexPath, []byte(RenderIndexMarkdown(v, opt.RenderOptions)), opt.Overwrite); err != nil {
		return WriteResult{}, err
	}

	written := []string{indexPath}
	for _, u := range v.Flat {
		info := v.Connections[u.ID]
		for _, it := range u.Items {
			if !safeSlug(it.ID) {
				return WriteResult{}, errors.New("unsafe project slug for a file name: " + it.ID)
			}
			p := filepath.Join(projectsDir, it.ID+".md")
			if err := writeFile(p, []byte(RenderProjectMarkdown(it, info)), opt.Overwrite); err != nil {
				return WriteResult{}, err
			}
			written = append(written, p)
		}
	}
	return WriteResult{Written: written}, nil
}

func safeSlug(s string) bool {
	return s != "" && s != "." && s != ".." && !strings.ContainsAny(s, `/\`)
}

func writeFile(path string, b []byte, overwrite bool) error {
	if !overwrite {
		if _, err := os.Stat(path); err == nil {
			return errors.New("file exists (use --overwrite): " + path)
		}
	}
	return os.WriteFile(path, b, 0o644)
}
