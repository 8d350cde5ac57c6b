// Package urlstate keeps a shareable `#section?key=value` hash in sync with
// per-section UI state.
package urlstate

import (
	"net/url"
	"strings"

	"timeline-cli/internal/model"
)

// Recognized keys, in the order they are written.
const (
	KeyProject = "project"
	KeyTags    = "tags"
	KeyMode    = "mode"
	KeyGroup   = "group"
)

var Keys = []string{KeyProject, KeyTags, KeyMode, KeyGroup}

// State is a section's key/value bag.
type State map[string]string

func (s State) Clone() State {
	out := make(State, len(s))
	for k, v := range s {
		out[k] = v
	}
	return out
}

// Merge returns a copy of s with partial applied on top.
func (s State) Merge(partial State) State {
	out := s.Clone()
	for k, v := range partial {
		out[k] = v
	}
	return out
}

func (s State) Project() string { return strings.TrimSpace(s[KeyProject]) }

func (s State) Group() string { return strings.TrimSpace(s[KeyGroup]) }

func (s State) Tags() []string {
	raw := strings.TrimSpace(s[KeyTags])
	if raw == "" {
		return nil
	}
	return model.NormalizeTags(strings.Split(raw, ","))
}

func (s State) Mode() model.ConnectionMode {
	m, _ := model.ParseConnectionMode(s[KeyMode])
	return m
}

// JoinTags renders a tag list as the comma-joined `tags` value.
func JoinTags(tags []string) string {
	return strings.Join(model.NormalizeTags(tags), ",")
}

// Parsed is the result of reading a hash.
type Parsed struct {
	Section string `json:"section"`
	State   State  `json:"state"`
}

// Parse reads `#section?k=v&...`. Unknown keys, undecodable values and
// unknown modes are dropped. A hash without a section yields an empty Parsed.
func Parse(hash string) Parsed {
	hash = strings.TrimPrefix(strings.TrimSpace(hash), "#")
	name, query, _ := strings.Cut(hash, "?")
	name = strings.TrimSpace(name)
	if name == "" {
		return Parsed{State: State{}}
	}
	return Parsed{Section: name, State: ParseQuery(query)}
}

// ParseQuery reads the recognized keys from a `k=v&...` string. Pairs that
// fail to decode are skipped.
func ParseQuery(query string) State {
	v, _ := url.ParseQuery(query)
	return FromValues(v)
}

// FromValues reads the recognized keys from parsed query values (for example
// an HTTP request's query string).
func FromValues(v url.Values) State {
	st := State{}
	for _, k := range Keys {
		if !v.Has(k) {
			continue
		}
		val := strings.TrimSpace(v.Get(k))
		switch k {
		case KeyTags:
			st[k] = JoinTags(strings.Split(val, ","))
		case KeyMode:
			m, ok := model.ParseConnectionMode(val)
			if !ok {
				continue
			}
			st[k] = string(m)
		default:
			st[k] = val
		}
	}
	return st
}

// Format builds the hash for a section. Values equal to the section defaults
// are omitted; keys are written in Keys order.
func Format(section string, st, defaults State) string {
	q := Query(st, defaults)
	if q == "" {
		return "#" + section
	}
	return "#" + section + "?" + q
}

// Query builds the `k=v&...` part shared by hashes and HTTP links.
func Query(st, defaults State) string {
	var parts []string
	for _, k := range Keys {
		v, ok := st[k]
		if !ok {
			continue
		}
		v = strings.TrimSpace(v)
		if v == strings.TrimSpace(defaults[k]) {
			continue
		}
		if k == KeyTags {
			parts = append(parts, k+"="+encodeTags(v))
			continue
		}
		parts = append(parts, k+"="+url.QueryEscape(v))
	}
	return strings.Join(parts, "&")
}

func encodeTags(v string) string {
	if v == "" {
		return ""
	}
	tags := strings.Split(v, ",")
	for i, t := range tags {
		tags[i] = url.QueryEscape(t)
	}
	return strings.Join(tags, ",")
}
