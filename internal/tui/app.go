package tui

import (
	"log/slog"
	"strings"
	"time"

	"timeline-cli/internal/model"
	"timeline-cli/internal/timeline"
	"timeline-cli/internal/urlstate"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

type hashTickMsg struct{}

type flashClearMsg struct{ seq int }

type appModel struct {
	sess *timeline.Session
	loc  urlstate.Location
	log  *slog.Logger

	width  int
	height int

	view     timeline.View
	rows     []row
	cursor   int
	expanded map[string]bool
	attached int

	filter    textinput.Model
	filtering bool

	showDetail bool

	// hash is the last URL hash seen on the location; debounced writes land
	// on a timer goroutine, so it is polled.
	hash string

	flash    string
	flashErr bool
	flashSeq int

	copy func(string) error
}

func newAppModel(opts Options) appModel {
	sess, loc := newSession(opts)
	log := opts.Logger
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}

	ti := textinput.New()
	ti.Placeholder = "go, cli, web"
	ti.Prompt = ""
	ti.CharLimit = 200

	m := appModel{
		sess:     sess,
		loc:      loc,
		log:      log,
		expanded: map[string]bool{},
		filter:   ti,
		copy:     copyToClipboard,
	}
	if strings.TrimSpace(opts.Hash) != "" {
		sess.RestoreFromURL()
	}
	m.refresh()
	m.focusSelectedProject()
	m.hash = loc.Hash()
	return m
}

func (m appModel) Init() tea.Cmd { return tickHash() }

func tickHash() tea.Cmd {
	return tea.Tick(200*time.Millisecond, func(time.Time) tea.Msg { return hashTickMsg{} })
}

func (m appModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case hashTickMsg:
		m.hash = m.loc.Hash()
		return m, tickHash()

	case flashClearMsg:
		if msg.seq == m.flashSeq {
			m.flash = ""
			m.flashErr = false
		}
		return m, nil

	case tea.KeyMsg:
		if m.filtering {
			m, cmd = m.updateFilter(msg)
		} else {
			m, cmd = m.updateList(msg)
		}
		m.hash = m.loc.Hash()
		return m, cmd
	}
	return m, nil
}

func (m appModel) updateFilter(msg tea.KeyMsg) (appModel, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		m.sess.Flush()
		return m, tea.Quit
	case "esc":
		m.filtering = false
		m.filter.Blur()
		return m, nil
	case "enter":
		m.filtering = false
		m.filter.Blur()
		m.sess.SetTags(parseTagInput(m.filter.Value()), urlstate.Immediate)
		m.refresh()
		return m, nil
	}
	var cmd tea.Cmd
	m.filter, cmd = m.filter.Update(msg)
	// Every keystroke updates the view; the URL write is debounced.
	m.sess.SetTags(parseTagInput(m.filter.Value()), urlstate.Debounced)
	m.refresh()
	return m, cmd
}

func (m appModel) updateList(msg tea.KeyMsg) (appModel, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "q":
		m.sess.Flush()
		return m, tea.Quit

	case "down", "j":
		m.moveCursor(1)
		return m, nil
	case "up", "k":
		m.moveCursor(-1)
		return m, nil

	case "enter", " ":
		r, ok := m.currentRow()
		if !ok {
			return m, nil
		}
		if r.kind == rowUnit && r.unit.IsBundle() {
			key := unitKey(r.unit)
			m.expanded[key] = !m.expanded[key]
			m.refresh()
			return m, nil
		}
		m.showDetail = !m.showDetail
		return m, nil

	case "/":
		m.filtering = true
		m.filter.SetValue(strings.Join(m.sess.Selection().Tags, ", "))
		m.filter.CursorEnd()
		cmd := m.filter.Focus()
		return m, cmd

	case "m":
		m.sess.SetMode(m.sess.Selection().Mode.Next(), urlstate.Immediate)
		m.refresh()
		return m, nil

	case "g":
		return m.cycleGroup()

	case "esc":
		if m.showDetail {
			m.showDetail = false
			return m, nil
		}
		if len(m.sess.Selection().Tags) > 0 {
			m.sess.SetTags(nil, urlstate.Immediate)
			m.filter.SetValue("")
			m.refresh()
		}
		return m, nil

	case "y":
		m.sess.Flush()
		link := m.sess.Hash()
		if err := m.copy(link); err != nil {
			m.log.Debug("clipboard copy failed", slog.Any("err", err))
			return m, m.setFlash("Copy failed: "+err.Error(), true)
		}
		return m, m.setFlash("Copied "+link, false)
	}
	return m, nil
}

func (m appModel) cycleGroup() (appModel, tea.Cmd) {
	groups := m.sess.Registry().Groups()
	if len(groups) == 0 {
		return m, m.setFlash("No groups", true)
	}
	cur := m.sess.Selection().Group
	next := groups[0]
	for i, g := range groups {
		if g == cur {
			next = groups[(i+1)%len(groups)]
			break
		}
	}
	m.sess.SetGroup(next, urlstate.Debounced)
	if m.sess.Selection().Mode != model.ModeGroup {
		m.sess.SetMode(model.ModeGroup, urlstate.Debounced)
	}
	m.refresh()
	return m, nil
}

func (m *appModel) setFlash(s string, isErr bool) tea.Cmd {
	m.flashSeq++
	m.flash = s
	m.flashErr = isErr
	seq := m.flashSeq
	return tea.Tick(2*time.Second, func(time.Time) tea.Msg { return flashClearMsg{seq: seq} })
}

// refresh recomputes the view and rows, then re-attaches items to rows.
func (m *appModel) refresh() {
	m.view = m.sess.View()
	m.rows = buildRows(m.view, m.expanded)
	m.attached = m.sess.Registry().Attach(newRowContainer(m.rows))
	m.clampCursor()
}

// focusSelectedProject moves the cursor to the project named in the
// selection, if it is on screen.
func (m *appModel) focusSelectedProject() {
	id := m.sess.Selection().Project
	if id == "" {
		return
	}
	if el, ok := m.sess.Registry().Element(id); ok {
		m.cursor = el.Row
	}
}

func (m *appModel) clampCursor() {
	if len(m.rows) == 0 {
		m.cursor = 0
		return
	}
	if m.cursor >= len(m.rows) {
		m.cursor = len(m.rows) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
	if !m.rows[m.cursor].selectable() {
		for i := m.cursor; i < len(m.rows); i++ {
			if m.rows[i].selectable() {
				m.cursor = i
				return
			}
		}
		for i := m.cursor; i >= 0; i-- {
			if m.rows[i].selectable() {
				m.cursor = i
				return
			}
		}
	}
}

func (m *appModel) moveCursor(delta int) {
	for i := m.cursor + delta; i >= 0 && i < len(m.rows); i += delta {
		if !m.rows[i].selectable() {
			continue
		}
		m.cursor = i
		m.sess.SelectProject(m.rows[i].item.ID, urlstate.Debounced)
		return
	}
}

func (m appModel) currentRow() (row, bool) {
	if m.cursor < 0 || m.cursor >= len(m.rows) || !m.rows[m.cursor].selectable() {
		return row{}, false
	}
	return m.rows[m.cursor], true
}

// parseTagInput splits on commas and whitespace.
func parseTagInput(s string) []string {
	return model.NormalizeTags(strings.FieldsFunc(s, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t'
	}))
}
