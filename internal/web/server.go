package web

import (
	"context"
	"embed"
	"encoding/json"
	"errors"
	"html/template"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"timeline-cli/internal/model"
	"timeline-cli/internal/registry"
	"timeline-cli/internal/store"
	"timeline-cli/internal/timeline"
)

//go:embed templates/*.html
var assetsFS embed.FS

type ServerConfig struct {
	Addr string
	// Path is the projects directory or manifest file.
	Path    string
	Watch   bool
	Bundle  registry.Config
	Section string
	Logger  *slog.Logger
}

type Server struct {
	mu   sync.RWMutex
	cfg  ServerConfig
	tmpl *template.Template
	log  *slog.Logger

	items    []model.Item
	loadedAt time.Time
}

func NewServer(ctx context.Context, cfg ServerConfig) (*Server, error) {
	cfg.Addr = strings.TrimSpace(cfg.Addr)
	cfg.Path = strings.TrimSpace(cfg.Path)
	cfg.Section = strings.TrimSpace(cfg.Section)
	if cfg.Addr == "" {
		return nil, errors.New("web: addr is empty")
	}
	if cfg.Path == "" {
		return nil, errors.New("web: projects path is empty")
	}
	if cfg.Section == "" {
		cfg.Section = timeline.DefaultSection
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.New(slog.DiscardHandler)
	}

	tmpl, err := template.New("base").Funcs(template.FuncMap{
		"trim":     strings.TrimSpace,
		"markdown": renderMarkdownHTML,
	}).ParseFS(assetsFS, "templates/*.html")
	if err != nil {
		return nil, err
	}

	srv := &Server{cfg: cfg, tmpl: tmpl, log: cfg.Logger}
	if err := srv.Reload(ctx); err != nil {
		return nil, err
	}
	return srv, nil
}

func (s *Server) Addr() string { return s.cfg.Addr }

// Reload re-reads the manifest. On error the previous snapshot stays in place.
func (s *Server) Reload(ctx context.Context) error {
	recs, err := store.Load(ctx, s.cfg.Path, s.log)
	if err != nil {
		return err
	}
	items, skipped := store.Items(recs)
	if skipped > 0 {
		s.log.Warn("skipped records without slug", slog.Int("count", skipped))
	}
	s.mu.Lock()
	s.items = items
	s.loadedAt = time.Now()
	s.mu.Unlock()
	s.log.Info("projects loaded", slog.Int("items", len(items)), slog.String("path", s.cfg.Path))
	return nil
}

// WatchProjects reloads the snapshot whenever the projects directory changes.
// It blocks until ctx is done and is a no-op for manifest files.
func (s *Server) WatchProjects(ctx context.Context) error {
	if !s.cfg.Watch {
		return nil
	}
	fi, err := os.Stat(s.cfg.Path)
	if err != nil || !fi.IsDir() {
		return nil
	}
	return store.Watch(ctx, s.cfg.Path, 250*time.Millisecond, s.log, func() {
		if err := s.Reload(ctx); err != nil {
			s.log.Warn("reload failed", slog.Any("err", err))
		}
	})
}

func (s *Server) snapshot() ([]model.Item, time.Time) {
	s.mu.RLock()
	items := s.items
	at := s.loadedAt
	s.mu.RUnlock()
	return items, at
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /api/timeline", s.handleTimelineJSON)
	mux.HandleFunc("GET /api/phases/{phaseId}", s.handlePhaseJSON)
	mux.HandleFunc("GET /api/connections", s.handleConnectionsJSON)
	mux.HandleFunc("GET /{$}", s.handleHome)
	return mux
}

// sessionForRequest builds a throwaway session whose URL is the request query,
// restored the same way a shared link is.
func (s *Server) sessionForRequest(r *http.Request) *timeline.Session {
	items, _ := s.snapshot()
	sess := timeline.NewSession(timeline.Options{
		Bundle:      s.cfg.Bundle,
		Section:     s.cfg.Section,
		InitialHash: "#" + s.cfg.Section + "?" + r.URL.RawQuery,
		Logger:      s.log,
	})
	sess.Load(items)
	sess.RestoreFromURL()
	return sess
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok\n"))
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	_ = json.NewEncoder(w).Encode(v)
}

func (s *Server) handleTimelineJSON(w http.ResponseWriter, r *http.Request) {
	sess := s.sessionForRequest(r)
	defer sess.Close()

	v := sess.View()
	writeJSON(w, map[string]any{
		"data": v,
		"meta": map[string]any{"visible": v.Count(), "total": sess.Registry().Len()},
	})
}

func (s *Server) handlePhaseJSON(w http.ResponseWriter, r *http.Request) {
	raw := strings.TrimSpace(r.PathValue("phaseId"))
	phase, err := strconv.Atoi(raw)
	if err != nil {
		http.Error(w, "invalid phase id", http.StatusBadRequest)
		return
	}
	sess := s.sessionForRequest(r)
	defer sess.Close()

	known := false
	for _, p := range sess.Registry().Phases() {
		if p == phase {
			known = true
			break
		}
	}
	if !known {
		http.Error(w, "phase not found", http.StatusNotFound)
		return
	}
	writeJSON(w, map[string]any{
		"data": timeline.PhaseView{Phase: phase, Units: sess.PhaseUnits(phase)},
		"meta": map[string]any{"hash": sess.Hash()},
	})
}

type connectionRow struct {
	Index int                  `json:"index"`
	Unit  string               `json:"unit"`
	Kind  model.UnitKind       `json:"kind"`
	Info  model.ConnectionInfo `json:"info"`
	Rail  string               `json:"rail"`
}

func (s *Server) handleConnectionsJSON(w http.ResponseWriter, r *http.Request) {
	sess := s.sessionForRequest(r)
	defer sess.Close()

	v := sess.View()
	rows := []connectionRow{}
	for i, u := range v.Flat {
		info, ok := v.Connections[u.ID]
		if !ok {
			continue
		}
		rows = append(rows, connectionRow{Index: i, Unit: u.ID, Kind: u.Kind, Info: info, Rail: string(v.Rails[i])})
	}
	writeJSON(w, map[string]any{
		"data": rows,
		"meta": map[string]any{"mode": v.Selection.Mode, "hash": v.Hash, "units": len(v.Flat)},
	})
}

func (s *Server) handleHome(w http.ResponseWriter, r *http.Request) {
	sess := s.sessionForRequest(r)
	defer sess.Close()

	_, loadedAt := s.snapshot()
	s.writeHTMLTemplate(w, "timeline.html", buildPageVM(sess, loadedAt))
}

func (s *Server) renderTemplate(name string, data any) (string, error) {
	var b strings.Builder
	if err := s.tmpl.ExecuteTemplate(&b, name, data); err != nil {
		return "", err
	}
	return b.String(), nil
}

func (s *Server) writeHTMLTemplate(w http.ResponseWriter, name string, data any) {
	html, err := s.renderTemplate(name, data)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = io.WriteString(w, html)
}
