package main

import (
	"reflect"
	"testing"
)

func TestRewriteDirectProjectLookupArgs(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   []string
		want []string
	}{
		{
			name: "no args",
			in:   []string{"timeline"},
			want: []string{"timeline"},
		},
		{
			name: "direct slug first token",
			in:   []string{"timeline", "@site-v2"},
			want: []string{"timeline", "projects", "show", "site-v2"},
		},
		{
			name: "direct slug after value flag",
			in:   []string{"timeline", "--projects", "./projects", "@site-v2"},
			want: []string{"timeline", "--projects", "./projects", "projects", "show", "site-v2"},
		},
		{
			name: "direct slug after equals flag",
			in:   []string{"timeline", "--projects=./projects", "@site-v2"},
			want: []string{"timeline", "--projects=./projects", "projects", "show", "site-v2"},
		},
		{
			name: "direct slug after bool flag",
			in:   []string{"timeline", "--pretty", "@site-v2", "--format", "yaml"},
			want: []string{"timeline", "--pretty", "projects", "show", "site-v2", "--format", "yaml"},
		},
		{
			name: "direct slug after double dash",
			in:   []string{"timeline", "--projects", "./p", "--", "@site-v2"},
			want: []string{"timeline", "--projects", "./p", "--", "projects", "show", "site-v2"},
		},
		{
			name: "bare at sign not rewritten",
			in:   []string{"timeline", "@"},
			want: []string{"timeline", "@"},
		},
		{
			name: "normal subcommand not rewritten",
			in:   []string{"timeline", "projects", "show", "site-v2"},
			want: []string{"timeline", "projects", "show", "site-v2"},
		},
		{
			name: "unknown command not rewritten",
			in:   []string{"timeline", "wat"},
			want: []string{"timeline", "wat"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := rewriteDirectProjectLookupArgs(tt.in)
			if !reflect.DeepEqual(got, tt.want) {
				t.Fatalf("rewriteDirectProjectLookupArgs:\n got: %#v\nwant: %#v", got, tt.want)
			}
		})
	}
}
