package tui

import (
	"os"
	"strings"
	"sync"

	"timeline-cli/internal/connect"
)

// Terminals can't change the user's font, so the connector rails and twisties
// come in a Unicode and an ASCII set.

type glyphSet int

const (
	glyphSetUnicode glyphSet = iota
	glyphSetASCII
)

var (
	glyphsMu      sync.RWMutex
	currentGlyphs = glyphSetUnicode
)

// applyGlyphPreference reads TIMELINE_TUI_GLYPHS=unicode|ascii. Unset, it
// falls back to ASCII on consoles known to lack box-drawing glyphs.
func applyGlyphPreference() {
	switch strings.ToLower(strings.TrimSpace(os.Getenv("TIMELINE_TUI_GLYPHS"))) {
	case "unicode", "utf8":
		setGlyphs(glyphSetUnicode)
	case "ascii":
		setGlyphs(glyphSetASCII)
	case "":
		switch strings.ToLower(strings.TrimSpace(os.Getenv("TERM"))) {
		case "dumb", "linux", "vt100":
			setGlyphs(glyphSetASCII)
		default:
			setGlyphs(glyphSetUnicode)
		}
	}
}

func setGlyphs(gs glyphSet) {
	glyphsMu.Lock()
	currentGlyphs = gs
	glyphsMu.Unlock()
}

func glyphs() glyphSet {
	glyphsMu.RLock()
	gs := currentGlyphs
	glyphsMu.RUnlock()
	return gs
}

func glyphTwistyCollapsed() string {
	if glyphs() == glyphSetASCII {
		return ">"
	}
	return "▸"
}

func glyphTwistyExpanded() string {
	if glyphs() == glyphSetASCII {
		return "v"
	}
	return "▾"
}

func glyphHRule() string {
	if glyphs() == glyphSetASCII {
		return "-"
	}
	return "─"
}

// glyphRail is the two-column gutter drawn for one flattened unit.
func glyphRail(r connect.Rail) string {
	ascii := glyphs() == glyphSetASCII
	switch r {
	case connect.RailStart:
		if ascii {
			return "o "
		}
		return "┬ "
	case connect.RailNode:
		if ascii {
			return "o "
		}
		return "├ "
	case connect.RailPass:
		if ascii {
			return "| "
		}
		return "│ "
	case connect.RailEnd:
		if ascii {
			return "o "
		}
		return "┴ "
	case connect.RailIsolated:
		if ascii {
			return "* "
		}
		return "● "
	default:
		return "  "
	}
}

// glyphRailContinue is the gutter under a unit whose rail keeps going, used
// for expanded bundle members.
func glyphRailContinue(r connect.Rail) string {
	switch r {
	case connect.RailStart, connect.RailNode, connect.RailPass:
		if glyphs() == glyphSetASCII {
			return "| "
		}
		return "│ "
	default:
		return "  "
	}
}
