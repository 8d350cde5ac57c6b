package urlstate

import (
	"net/url"
	"testing"

	"timeline-cli/internal/model"
)

func TestParse(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		want Parsed
	}{
		{
			name: "empty",
			in:   "",
			want: Parsed{State: State{}},
		},
		{
			name: "bare hash",
			in:   "#",
			want: Parsed{State: State{}},
		},
		{
			name: "section only",
			in:   "#timeline",
			want: Parsed{Section: "timeline", State: State{}},
		},
		{
			name: "all keys",
			in:   "#timeline?project=alpha&tags=go,cli&mode=tag&group=tools",
			want: Parsed{Section: "timeline", State: State{
				KeyProject: "alpha", KeyTags: "cli,go", KeyMode: "tag", KeyGroup: "tools",
			}},
		},
		{
			name: "escaped values",
			in:   "#timeline?group=home+lab&tags=c%2B%2B,machine+learning",
			want: Parsed{Section: "timeline", State: State{KeyGroup: "home lab", KeyTags: "c++,machine learning"}},
		},
		{
			name: "unknown keys and bad mode dropped",
			in:   "#timeline?x=1&mode=all&project=beta",
			want: Parsed{Section: "timeline", State: State{KeyProject: "beta"}},
		},
		{
			name: "query without section",
			in:   "#?project=alpha",
			want: Parsed{State: State{}},
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := Parse(tt.in)
			if got.Section != tt.want.Section {
				t.Fatalf("section: expected %q, got %q", tt.want.Section, got.Section)
			}
			if len(got.State) != len(tt.want.State) {
				t.Fatalf("state: expected %v, got %v", tt.want.State, got.State)
			}
			for k, v := range tt.want.State {
				if got.State[k] != v {
					t.Fatalf("state[%s]: expected %q, got %q", k, v, got.State[k])
				}
			}
		})
	}
}

func TestFormat_OmitsDefaultsAndOrdersKeys(t *testing.T) {
	t.Parallel()

	st := State{KeyGroup: "home lab", KeyMode: "none", KeyTags: "c++,go", KeyProject: "", "color": "red"}
	defaults := State{KeyMode: "none"}

	got := Format("timeline", st, defaults)
	want := "#timeline?tags=c%2B%2B,go&group=home+lab"
	if got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}

	if got := Format("about", State{}, nil); got != "#about" {
		t.Fatalf("expected bare section hash, got %q", got)
	}

	// A value cleared below a non-empty default is written explicitly.
	if got := Format("timeline", State{KeyMode: ""}, State{KeyMode: "tag"}); got != "#timeline?mode=" {
		t.Fatalf("expected explicit empty mode, got %q", got)
	}
}

func TestFormatParse_RoundTrip(t *testing.T) {
	t.Parallel()

	st := State{KeyProject: "my project", KeyTags: "a&b,go", KeyMode: "group", KeyGroup: "x=y"}
	parsed := Parse(Format("timeline", st, nil))
	if parsed.Section != "timeline" {
		t.Fatalf("unexpected section %q", parsed.Section)
	}
	for _, k := range Keys {
		if parsed.State[k] != st[k] {
			t.Fatalf("%s: expected %q, got %q", k, st[k], parsed.State[k])
		}
	}
}

func TestFromValues(t *testing.T) {
	t.Parallel()

	v := url.Values{}
	v.Set("tags", " Go , web,,go")
	v.Set("mode", "GROUP")
	v.Set("group", " tools ")
	v.Set("extra", "1")

	st := FromValues(v)
	if st.Mode() != model.ModeGroup || st.Group() != "tools" {
		t.Fatalf("unexpected state: %v", st)
	}
	if got := st.Tags(); len(got) != 2 || got[0] != "go" || got[1] != "web" {
		t.Fatalf("unexpected tags: %v", got)
	}
	if _, ok := st["extra"]; ok {
		t.Fatalf("unexpected extra key")
	}
}
