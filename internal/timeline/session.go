// Package timeline ties the registry, connection overlay and URL state into
// one per-page-session context object.
package timeline

import (
	"log/slog"
	"strings"
	"time"

	"timeline-cli/internal/model"
	"timeline-cli/internal/registry"
	"timeline-cli/internal/urlstate"

	"github.com/google/uuid"
)

// DefaultSection is the URL section the timeline owns.
const DefaultSection = "timeline"

type Options struct {
	Bundle   registry.Config
	Section  string
	Debounce time.Duration

	// Location receives URL writes. Nil means an in-memory location
	// starting at InitialHash.
	Location    urlstate.Location
	InitialHash string
	Scheduler   urlstate.Scheduler
	Logger      *slog.Logger
}

// Selection is the user-controlled view state mirrored into the URL.
type Selection struct {
	Tags    []string             `json:"tags,omitempty"`
	Mode    model.ConnectionMode `json:"mode"`
	Group   string               `json:"group,omitempty"`
	Project string               `json:"project,omitempty"`
}

func (s Selection) state() urlstate.State {
	mode := s.Mode
	if mode == "" {
		mode = model.ModeNone
	}
	return urlstate.State{
		urlstate.KeyProject: s.Project,
		urlstate.KeyTags:    urlstate.JoinTags(s.Tags),
		urlstate.KeyMode:    string(mode),
		urlstate.KeyGroup:   s.Group,
	}
}

// Query is the `k=v&...` form of the selection, with defaults omitted.
func (s Selection) Query() string {
	return urlstate.Query(s.state(), Selection{Mode: model.ModeNone}.state())
}

func selectionFromState(st urlstate.State) Selection {
	return Selection{
		Tags:    st.Tags(),
		Mode:    st.Mode(),
		Group:   st.Group(),
		Project: st.Project(),
	}
}

// Session is created per page session and torn down with Close. It is not
// safe for concurrent use apart from the URL flush, which the synchronizer
// serializes itself.
type Session struct {
	ID      string
	section string
	log     *slog.Logger

	reg  *registry.Registry
	sync *urlstate.Synchronizer
	loc  urlstate.Location
	sel  Selection
}

func NewSession(opts Options) *Session {
	log := opts.Logger
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	section := strings.TrimSpace(opts.Section)
	if section == "" {
		section = DefaultSection
	}
	loc := opts.Location
	if loc == nil {
		loc = urlstate.NewMemoryLocation(opts.InitialHash)
	}
	id := uuid.NewString()
	log = log.With(slog.String("session_id", id))

	s := &Session{
		ID:      id,
		section: section,
		log:     log,
		reg:     registry.New(),
		loc:     loc,
		sel:     Selection{Mode: model.ModeNone},
	}
	s.reg.Initialize(nil, opts.Bundle)
	s.sync = urlstate.New(loc, urlstate.Options{
		Debounce:  opts.Debounce,
		Scheduler: opts.Scheduler,
		Logger:    log,
	})
	s.sync.RegisterSection(section, urlstate.Section{
		Defaults:  Selection{Mode: model.ModeNone}.state(),
		OnRestore: s.restore,
	})
	return s
}

// Load replaces the session's items.
func (s *Session) Load(items []model.Item) {
	s.reg.Initialize(items, s.reg.Config())
	s.log.Info("timeline loaded", slog.Int("items", s.reg.Len()), slog.Int("phases", len(s.reg.Phases())))
}

// SetBundleConfig changes the bundling threshold/reference for later views.
func (s *Session) SetBundleConfig(cfg registry.Config) {
	s.reg.Initialize(s.reg.Items(), cfg)
}

// RestoreFromURL applies the location's hash to the selection, if it names
// this session's section. The parsed hash is returned either way.
func (s *Session) RestoreFromURL() urlstate.Parsed {
	return s.sync.InitFromURL()
}

func (s *Session) restore(st urlstate.State) {
	s.sel = selectionFromState(st)
	s.log.Debug("selection restored", slog.Any("tags", s.sel.Tags), slog.String("mode", string(s.sel.Mode)))
}

func (s *Session) Selection() Selection {
	sel := s.sel
	sel.Tags = append([]string(nil), s.sel.Tags...)
	return sel
}

// SetTags replaces the tag filter.
func (s *Session) SetTags(tags []string, policy urlstate.FlushPolicy) {
	s.sel.Tags = model.NormalizeTags(tags)
	s.publish(urlstate.State{urlstate.KeyTags: urlstate.JoinTags(s.sel.Tags)}, policy)
}

// ToggleTag adds or removes one tag from the filter.
func (s *Session) ToggleTag(tag string, policy urlstate.FlushPolicy) {
	tag = model.NormalizeTag(tag)
	if tag == "" {
		return
	}
	next := make([]string, 0, len(s.sel.Tags)+1)
	found := false
	for _, t := range s.sel.Tags {
		if t == tag {
			found = true
			continue
		}
		next = append(next, t)
	}
	if !found {
		next = append(next, tag)
	}
	s.SetTags(next, policy)
}

func (s *Session) SetMode(mode model.ConnectionMode, policy urlstate.FlushPolicy) {
	if _, ok := model.ParseConnectionMode(string(mode)); !ok {
		mode = model.ModeNone
	}
	s.sel.Mode = mode
	s.publish(urlstate.State{urlstate.KeyMode: string(mode)}, policy)
}

func (s *Session) SetGroup(group string, policy urlstate.FlushPolicy) {
	s.sel.Group = strings.TrimSpace(group)
	s.publish(urlstate.State{urlstate.KeyGroup: s.sel.Group}, policy)
}

// SelectProject records the focused project. Unknown ids are kept in the URL
// so a shared link survives a manifest that has not loaded the project yet.
func (s *Session) SelectProject(id string, policy urlstate.FlushPolicy) {
	s.sel.Project = strings.TrimSpace(id)
	s.publish(urlstate.State{urlstate.KeyProject: s.sel.Project}, policy)
}

func (s *Session) publish(partial urlstate.State, policy urlstate.FlushPolicy) {
	s.sync.UpdateSectionState(s.section, partial, policy)
}

// Activate makes this session's section own the URL again.
func (s *Session) Activate(policy urlstate.FlushPolicy) {
	s.sync.SetActiveSection(s.section, policy)
}

// Flush writes any pending URL state now.
func (s *Session) Flush() bool { return s.sync.Flush() }

// Hash is the URL hash for the current selection.
func (s *Session) Hash() string {
	return urlstate.Format(s.section, s.sel.state(), Selection{Mode: model.ModeNone}.state())
}

// Query is the `k=v&...` form of Hash, for HTTP links.
func (s *Session) Query() string { return s.sel.Query() }

func (s *Session) Location() urlstate.Location { return s.loc }

func (s *Session) Registry() *registry.Registry { return s.reg }

// Close cancels any pending URL write. The session must not be used afterwards.
func (s *Session) Close() {
	s.sync.Close()
}
