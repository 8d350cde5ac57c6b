package connect

import "timeline-cli/internal/model"

// Rail is the connector decoration painted beside one flattened unit.
type Rail string

const (
	RailNone     Rail = ""
	RailStart    Rail = "start"
	RailNode     Rail = "node"
	RailPass     Rail = "pass"
	RailEnd      Rail = "end"
	RailIsolated Rail = "isolated"
)

// Rails lays out the connector for every unit in flat. Units between the first
// and last match that are not connected themselves get RailPass, so the line
// visibly bridges gaps.
func Rails(flat []model.DisplayUnit, infos map[string]model.ConnectionInfo) []Rail {
	out := make([]Rail, len(flat))
	if len(infos) == 0 {
		return out
	}
	open := false
	for i, u := range flat {
		info, ok := infos[u.ID]
		if !ok || !info.Connected {
			if open {
				out[i] = RailPass
			}
			continue
		}
		switch {
		case info.Isolated():
			out[i] = RailIsolated
		case info.IsStart:
			out[i] = RailStart
			open = true
		case info.IsEnd:
			out[i] = RailEnd
			open = false
		default:
			out[i] = RailNode
		}
	}
	return out
}
