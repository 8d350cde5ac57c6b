package tui

import (
	"fmt"
	"strconv"
	"strings"

	"timeline-cli/internal/model"

	"github.com/charmbracelet/lipgloss"
)

const keyHelp = "j/k move · enter open · / tags · m mode · g group · esc clear · y copy link · q quit"

func (m appModel) View() string {
	width := m.width
	if width <= 0 {
		width = 80
	}
	height := m.height
	if height <= 0 {
		height = 24
	}

	header := m.renderHeader(width)
	footer := m.renderFooter(width)
	bodyH := height - lipgloss.Height(header) - lipgloss.Height(footer)
	if bodyH < 1 {
		bodyH = 1
	}

	var body string
	if m.showDetail {
		leftW := width / 2
		rightW := width - leftW - 1
		left := normalizePane(m.renderList(leftW, bodyH), leftW, bodyH)
		right := normalizePane(m.renderDetail(rightW), rightW, bodyH)
		sep := strings.TrimRight(strings.Repeat(styleMuted().Render("│")+"\n", bodyH), "\n")
		body = lipgloss.JoinHorizontal(lipgloss.Top, left, sep, right)
	} else {
		body = normalizePane(m.renderList(width, bodyH), width, bodyH)
	}
	return lipgloss.JoinVertical(lipgloss.Left, header, body, footer)
}

func (m appModel) renderHeader(width int) string {
	sel := m.sess.Selection()
	parts := []string{lipgloss.NewStyle().Bold(true).Render("Timeline")}
	if len(sel.Tags) > 0 {
		parts = append(parts, "tags: "+styleTag(true).Render(strings.Join(sel.Tags, ", ")))
	}
	parts = append(parts, "mode: "+string(sel.Mode))
	if sel.Group != "" {
		parts = append(parts, "group: "+sel.Group)
	}
	parts = append(parts, styleMuted().Render(fmt.Sprintf("%d/%d shown", m.view.Count(), m.sess.Registry().Len())))
	lines := []string{fitWidth(strings.Join(parts, "  "), width)}
	if m.filtering {
		lines = append(lines, renderInputLine(width, "tags: ", m.filter.View()))
	}
	return strings.Join(lines, "\n")
}

func (m appModel) renderFooter(width int) string {
	hash := m.hash
	if hash == "" {
		hash = "#"
	}
	status := styleFooter().Render(fitWidth(" "+hash, width))
	help := styleMuted().Render(fitWidth(keyHelp, width))
	if m.flash != "" {
		st := styleFooter()
		if m.flashErr {
			st = styleFlash()
		}
		help = st.Render(fitWidth(" "+m.flash, width))
	}
	return status + "\n" + help
}

// renderList draws the rows, scrolled so the cursor stays visible.
func (m appModel) renderList(width, height int) string {
	if len(m.rows) == 0 {
		return styleMuted().Render("No projects match.")
	}
	start := 0
	if m.cursor >= height {
		start = m.cursor - height + 1
	}
	end := min(start+height, len(m.rows))

	lines := make([]string, 0, end-start)
	for i := start; i < end; i++ {
		ln := m.renderRow(m.rows[i], width)
		if i == m.cursor {
			ln = styleSelected().Render(fitWidth(stripANSIEscapes(ln), width))
		}
		lines = append(lines, ln)
	}
	return strings.Join(lines, "\n")
}

func (m appModel) renderRow(r row, width int) string {
	active := map[string]bool{}
	for _, t := range m.sess.Selection().Tags {
		active[t] = true
	}
	switch r.kind {
	case rowPhase:
		label := "Phase " + strconv.Itoa(r.phase) + " "
		rule := strings.Repeat(glyphHRule(), max(width-lipgloss.Width(label), 0))
		return stylePhaseHeader().Render(label) + styleMuted().Render(rule)

	case rowMember:
		gutter := styleRail().Render(glyphRailContinue(r.rail))
		return gutter + "    " + itemLine(r.item, active)

	default:
		gutter := styleRail().Render(glyphRail(r.rail))
		if r.unit.IsBundle() {
			twisty := glyphTwistyCollapsed()
			if r.expanded {
				twisty = glyphTwistyExpanded()
			}
			return gutter + twisty + " " + styleBundle().Render(bundleLabel(r.unit))
		}
		return gutter + "  " + itemLine(r.item, active)
	}
}

func itemLine(it model.Item, active map[string]bool) string {
	title := strings.TrimSpace(it.Title)
	if title == "" {
		title = it.ID
	}
	parts := []string{title}
	if it.Date != nil {
		parts = append(parts, styleMuted().Render(it.Date.Format("2006-01")))
	}
	for _, t := range it.Tags {
		parts = append(parts, styleTag(active[t]).Render("#"+t))
	}
	return strings.Join(parts, " ")
}

// bundleLabel summarizes a bundle: member count and the year span.
func bundleLabel(u model.DisplayUnit) string {
	minY, maxY := 0, 0
	for _, it := range u.Items {
		if it.Date == nil {
			continue
		}
		y := it.Date.Year()
		if minY == 0 || y < minY {
			minY = y
		}
		if y > maxY {
			maxY = y
		}
	}
	label := fmt.Sprintf("%d smaller projects", len(u.Items))
	switch {
	case minY == 0:
		return label
	case minY == maxY:
		return fmt.Sprintf("%s (%d)", label, minY)
	default:
		return fmt.Sprintf("%s (%d-%d)", label, minY, maxY)
	}
}

func (m appModel) renderDetail(width int) string {
	r, ok := m.currentRow()
	if !ok {
		return styleMuted().Render("No project selected.")
	}
	if r.kind == rowUnit && r.unit.IsBundle() {
		var b strings.Builder
		b.WriteString(lipgloss.NewStyle().Bold(true).Render(bundleLabel(r.unit)))
		b.WriteString("\n\n")
		for _, it := range r.unit.Items {
			b.WriteString(itemLine(it, nil))
			b.WriteString("\n")
		}
		return b.String()
	}

	it := r.item
	title := strings.TrimSpace(it.Title)
	if title == "" {
		title = it.ID
	}
	lines := []string{lipgloss.NewStyle().Bold(true).Render(title), styleMuted().Render(it.ID)}
	meta := []string{"phase " + strconv.Itoa(it.PhaseID), string(it.Size)}
	if it.Date != nil {
		meta = append(meta, it.Date.Format("2006-01-02"))
	}
	if it.Group != "" {
		meta = append(meta, "group "+it.Group)
	}
	lines = append(lines, strings.Join(meta, " · "))
	if len(it.Tags) > 0 {
		lines = append(lines, "#"+strings.Join(it.Tags, " #"))
	}
	if info, ok := m.view.Connections[r.unit.ID]; ok && info.Connected {
		lines = append(lines, styleRail().Render("connected"+connectionNote(info)))
	}
	if md := renderMarkdown(it.Summary, width); md != "" {
		lines = append(lines, "", md)
	}
	return strings.Join(lines, "\n")
}

func connectionNote(info model.ConnectionInfo) string {
	var notes []string
	switch {
	case info.Isolated():
		notes = append(notes, "isolated")
	case info.IsStart:
		notes = append(notes, "first")
	case info.IsEnd:
		notes = append(notes, "last")
	}
	if info.GapAbove {
		notes = append(notes, "gap above")
	}
	if info.GapBelow {
		notes = append(notes, "gap below")
	}
	if len(notes) == 0 {
		return ""
	}
	return " (" + strings.Join(notes, ", ") + ")"
}
