package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/alecthomas/kong"
	"github.com/google/go-cmp/cmp"
)

type resolverCLI struct {
	Log struct {
		Level  string `default:"info"`
		Format string `default:"json"`
		Caller bool
	} `embed:"" prefix:"log-"`

	Count int
	Ratio float64
	Tags  []string
	Mode  string `default:"auto"`
}

func parseWithConfig(t *testing.T, text string, args ...string) resolverCLI {
	t.Helper()

	path := filepath.Join(t.TempDir(), "config.nix")
	if err := os.WriteFile(path, []byte(text), 0o600); err != nil {
		t.Fatal(err)
	}

	var cli resolverCLI

	parser, err := kong.New(&cli, kong.Configuration(resolve(t.Context()), path))
	if err != nil {
		t.Fatalf("kong.New() error: %v", err)
	}

	if _, err := parser.Parse(args); err != nil {
		t.Fatalf("Parse() error: %v", err)
	}

	return cli
}

func TestResolve(t *testing.T) {
	tests := []struct {
		name string
		text string
		args []string
		want func(*resolverCLI)
	}{
		{
			name: "defaults",
			text: "{ }\n",
			want: func(*resolverCLI) {},
		},
		{
			name: "hyphenated_names",
			text: `{ log-level = "debug"; log-caller = true; }`,
			want: func(c *resolverCLI) {
				c.Log.Level = "debug"
				c.Log.Caller = true
			},
		},
		{
			name: "dotted_names",
			text: `{ log.level = "warn"; log = { format = "text"; }; }`,
			// The second binding is searched once the first one fails to
			// match.
			want: func(c *resolverCLI) {
				c.Log.Level = "warn"
				c.Log.Format = "text"
			},
		},
		{
			name: "nested_set",
			text: `{ log = { format = "text"; caller = true; }; }`,
			want: func(c *resolverCLI) {
				c.Log.Format = "text"
				c.Log.Caller = true
			},
		},
		{
			name: "numbers_and_lists",
			text: `{ count = 3; ratio = 0.5; tags = [ "a" "b" ]; }`,
			want: func(c *resolverCLI) {
				c.Count = 3
				c.Ratio = 0.5
				c.Tags = []string{"a", "b"}
			},
		},
		{
			name: "function_head",
			text: "{ config, ... }:\n{\n  mode = \"fast\";\n}\n",
			want: func(c *resolverCLI) {
				c.Mode = "fast"
			},
		},
		{
			name: "set_values_ignored",
			text: `{ mode = { x = 1; }; }`,
			want: func(*resolverCLI) {},
		},
		{
			name: "flags_override",
			text: `{ log-level = "debug"; count = 3; }`,
			args: []string{"--log-level=error"},
			want: func(c *resolverCLI) {
				c.Log.Level = "error"
				c.Count = 3
			},
		},
		{
			name: "syntax_error",
			text: `{ log-level = "debug" }`,
			want: func(*resolverCLI) {},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var want resolverCLI

			want.Log.Level = "info"
			want.Log.Format = "json"
			want.Mode = "auto"
			tt.want(&want)

			got := parseWithConfig(t, tt.text, tt.args...)
			if diff := cmp.Diff(want, got); diff != "" {
				t.Errorf("parsed flags mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestResolve_MissingFile(t *testing.T) {
	var cli resolverCLI

	path := filepath.Join(t.TempDir(), "missing.nix")

	parser, err := kong.New(&cli, kong.Configuration(resolve(t.Context()), path))
	if err != nil {
		t.Fatalf("kong.New() error: %v", err)
	}

	if _, err := parser.Parse(nil); err != nil {
		t.Fatalf("Parse() error: %v", err)
	}

	if cli.Log.Level != "info" {
		t.Errorf("Log.Level = %q, want info", cli.Log.Level)
	}
}
