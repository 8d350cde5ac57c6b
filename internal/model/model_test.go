package model

import (
	"testing"
	"time"
)

func TestParseSizeClass(t *testing.T) {
	cases := map[string]SizeClass{
		"large":  SizeLarge,
		" L ":    SizeLarge,
		"small":  SizeSmall,
		"sm":     SizeSmall,
		"medium": SizeMedium,
		"":       SizeMedium,
		"huge":   SizeMedium,
	}
	for in, want := range cases {
		if got := ParseSizeClass(in); got != want {
			t.Fatalf("ParseSizeClass(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestParseDate(t *testing.T) {
	cases := []struct {
		in   string
		want time.Time
		ok   bool
	}{
		{"2023-04-01", time.Date(2023, 4, 1, 0, 0, 0, 0, time.UTC), true},
		{"2023-04", time.Date(2023, 4, 1, 0, 0, 0, 0, time.UTC), true},
		{"2019", time.Date(2019, 1, 1, 0, 0, 0, 0, time.UTC), true},
		{"2023-04-01T10:00:00+02:00", time.Date(2023, 4, 1, 8, 0, 0, 0, time.UTC), true},
		{"April 2023", time.Time{}, false},
		{"", time.Time{}, false},
	}
	for _, tc := range cases {
		got, ok := ParseDate(tc.in)
		if ok != tc.ok || !got.Equal(tc.want) {
			t.Fatalf("ParseDate(%q) = %v, %v; want %v, %v", tc.in, got, ok, tc.want, tc.ok)
		}
	}
}

func TestItemFromRecord(t *testing.T) {
	if _, ok := ItemFromRecord(ProjectRecord{Slug: "  "}); ok {
		t.Fatalf("expected a blank slug to be rejected")
	}

	it, ok := ItemFromRecord(ProjectRecord{Slug: " site ", Tags: []string{"Go", "go", " CLI "}, Size: "tiny", Date: "someday", Phase: 2})
	if !ok {
		t.Fatalf("expected record to convert")
	}
	if it.ID != "site" || it.Title != "site" || it.Size != SizeMedium || it.Date != nil || !it.IsVisible {
		t.Fatalf("unexpected item: %+v", it)
	}
	if len(it.Tags) != 2 || it.Tags[0] != "cli" || it.Tags[1] != "go" {
		t.Fatalf("unexpected tags: %v", it.Tags)
	}
}

func TestConnectionModeNext(t *testing.T) {
	m := ModeNone
	var seen []ConnectionMode
	for range 3 {
		m = m.Next()
		seen = append(seen, m)
	}
	if seen[0] != ModeTag || seen[1] != ModeGroup || seen[2] != ModeNone {
		t.Fatalf("unexpected cycle: %v", seen)
	}
	if _, ok := ParseConnectionMode("sideways"); ok {
		t.Fatalf("expected unknown mode to be rejected")
	}
}
