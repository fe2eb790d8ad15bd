package cmd

import (
	"encoding/json"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ardnew/nixattr/nix"
)

func TestGet(t *testing.T) {
	path := writeConfig(t, testConfig, 0o644)

	tests := []struct {
		name   string
		path   string
		format string
		want   string
	}{
		{"raw_string", "networking.hostName", "raw", "\"nixos\"\n"},
		{"raw_set", "networking.firewall.allowedTCPPorts", "raw", "[ 22 80 ]\n"},
		{"json_set", "networking.firewall", "json", `{"enable":true,"allowedTCPPorts":[22,80]}` + "\n"},
		{"json_string", "networking.hostName", "json", "\"nixos\"\n"},
		{"yaml_bool", "services.openssh.enable", "yaml", "true\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := runCommand(t, Source{Path: path}, "",
				&Get{Path: tt.path, Format: tt.format})
			require.NoError(t, err)
			require.Equal(t, tt.want, out)
		})
	}

	t.Run("not_found", func(t *testing.T) {
		for _, format := range []string{"raw", "json"} {
			_, err := runCommand(t, Source{Path: path}, "",
				&Get{Path: "networking.domain", Format: format})
			require.ErrorIs(t, err, nix.ErrNotFound)
		}
	})

	t.Run("stdin", func(t *testing.T) {
		out, err := runCommand(t, Source{}, testConfig,
			&Get{Path: "networking.firewall.enable", Format: "raw"})
		require.NoError(t, err)
		require.Equal(t, "true\n", out)
	})

	t.Run("syntax_error", func(t *testing.T) {
		bad := writeConfig(t, "{\n  a = 1\n}\n", 0o644)

		out, err := runCommand(t, Source{Path: bad}, "",
			&Get{Path: "a", Format: "raw"})
		require.ErrorIs(t, err, ErrParse)
		require.ErrorIs(t, err, nix.ErrSyntax)
		require.Empty(t, out)

		msg := err.Error()
		require.Contains(t, msg, bad+`:3:1: expected ;, found "}"`)
		require.Contains(t, msg, "\n  3 | }\n      ^")

		var perr *Error
		require.ErrorAs(t, err, &perr)

		file, ok := perr.Attr("file")
		require.True(t, ok)
		require.Equal(t, bad, file.String())
	})

	t.Run("syntax_error_stdin", func(t *testing.T) {
		_, err := runCommand(t, Source{}, "{ a = 1 }",
			&Get{Path: "a", Format: "raw"})
		require.ErrorIs(t, err, ErrParse)
		require.ErrorIs(t, err, nix.ErrSyntax)
		require.Contains(t, err.Error(), "1:9: expected ;")
		require.Contains(t, err.Error(), "  1 | { a = 1 }\n")
	})
}

func TestSet(t *testing.T) {
	want := strings.Replace(testConfig, "enable = true;\n    allowed",
		"enable = false;\n    allowed", 1)

	t.Run("stdout", func(t *testing.T) {
		path := writeConfig(t, testConfig, 0o644)
		value := "false"

		out, err := runCommand(t, Source{Path: path}, "",
			&Set{Path: "networking.firewall.enable", Value: &value})
		require.NoError(t, err)
		require.Equal(t, want+"\n", out)

		data, err := os.ReadFile(path)
		require.NoError(t, err)
		require.Equal(t, testConfig, string(data), "file changed without --in-place")
	})

	t.Run("in_place", func(t *testing.T) {
		path := writeConfig(t, testConfig, 0o644)
		value := "false"

		out, err := runCommand(t, Source{Path: path, InPlace: true}, "",
			&Set{Path: "networking.firewall.enable", Value: &value})
		require.NoError(t, err)
		require.Empty(t, out)

		data, err := os.ReadFile(path)
		require.NoError(t, err)
		require.Equal(t, want, string(data))
	})

	t.Run("value_from_stdin", func(t *testing.T) {
		path := writeConfig(t, testConfig, 0o644)

		out, err := runCommand(t, Source{Path: path}, "false\r\n",
			&Set{Path: "networking.firewall.enable"})
		require.NoError(t, err)
		require.Equal(t, want+"\n", out)
	})

	t.Run("keep_eol", func(t *testing.T) {
		path := writeConfig(t, testConfig, 0o644)

		out, err := runCommand(t, Source{Path: path}, "false\n",
			&Set{Path: "networking.firewall.enable", KeepEOL: true})
		require.NoError(t, err)
		require.Contains(t, out, "enable = false\n;")
	})

	t.Run("document_from_stdin", func(t *testing.T) {
		value := `"laptop"`

		out, err := runCommand(t, Source{}, testConfig,
			&Set{Path: "networking.hostName", Value: &value})
		require.NoError(t, err)
		require.Contains(t, out, `networking.hostName = "laptop";`)
	})

	t.Run("in_place_stdin", func(t *testing.T) {
		value := "false"

		_, err := runCommand(t, Source{InPlace: true}, testConfig,
			&Set{Path: "networking.firewall.enable", Value: &value})
		require.ErrorIs(t, err, ErrInPlaceStdin)
	})

	t.Run("value_and_document_from_stdin", func(t *testing.T) {
		_, err := runCommand(t, Source{}, testConfig,
			&Set{Path: "networking.firewall.enable"})
		require.ErrorIs(t, err, ErrReadValue)
	})

	t.Run("not_found", func(t *testing.T) {
		path := writeConfig(t, testConfig, 0o644)
		value := "1"

		_, err := runCommand(t, Source{Path: path, InPlace: true}, "",
			&Set{Path: "boot.loader", Value: &value})
		require.ErrorIs(t, err, nix.ErrNotFound)

		data, err := os.ReadFile(path)
		require.NoError(t, err)
		require.Equal(t, testConfig, string(data))
	})
}

func TestTrimEOL(t *testing.T) {
	for in, want := range map[string]string{
		"x":      "x",
		"x\n":    "x",
		"x\r\n":  "x",
		"x\n\n":  "x\n",
		"x\r":    "x\r",
		"":       "",
		"a\nb\n": "a\nb",
	} {
		require.Equal(t, want, trimEOL(in), "trimEOL(%q)", in)
	}
}

func TestList(t *testing.T) {
	const config = "{\n  a = 1;\n  b.c = \"x\";\n  d = { e = true; };\n}\n"

	path := writeConfig(t, config, 0o644)

	all := []listEntry{
		{Path: "a", Kind: "value", Value: "1", Line: 2, Column: 3},
		{Path: "b.c", Kind: "value", Value: `"x"`, Line: 3, Column: 3},
		{Path: "d", Kind: "set", Value: "{ e = true; }", Line: 4, Column: 3},
		{Path: "d.e", Kind: "value", Value: "true", Line: 4, Column: 9},
	}

	tests := []struct {
		name  string
		where string
		want  []listEntry
	}{
		{"all", "", all},
		{"depth", "depth > 0", all[3:]},
		{"kind", `kind == "set"`, all[2:3]},
		{"none", `path == "z"`, []listEntry{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := runCommand(t, Source{Path: path}, "",
				&List{Where: tt.where, Format: "json"})
			require.NoError(t, err)

			var got []listEntry
			require.NoError(t, json.Unmarshal([]byte(out), &got))
			require.Equal(t, tt.want, got)
		})
	}

	t.Run("text", func(t *testing.T) {
		out, err := runCommand(t, Source{Path: path}, "",
			&List{Where: `path == "d.e"`, Format: "text"})
		require.NoError(t, err)
		require.Equal(t, "4:9  value  d.e  true\n", out)
	})

	t.Run("yaml_empty", func(t *testing.T) {
		out, err := runCommand(t, Source{Path: path}, "",
			&List{Where: "false", Format: "yaml"})
		require.NoError(t, err)
		require.Equal(t, "[]\n", out)
	})

	t.Run("invalid_filter", func(t *testing.T) {
		_, err := runCommand(t, Source{Path: path}, "",
			&List{Where: "path +", Format: "text"})
		require.ErrorIs(t, err, nix.ErrInvalidFilter)
	})
}

func TestSummary(t *testing.T) {
	require.Equal(t, "true", summary("true"))
	require.Equal(t, "{ ...", summary("{\n  a = 1;\n}"))
	require.Equal(t, strings.Repeat("x", 60)+" ...", summary(strings.Repeat("x", 70)))
}

func TestDump(t *testing.T) {
	const config = "{\n  a = 1;\n  b = [ \"x\" { c = null; } ];\n}\n"

	path := writeConfig(t, config, 0o644)

	tests := []struct {
		format string
		indent int
		want   string
	}{
		{"json", 0, `{"a":1,"b":["x",{"c":null}]}` + "\n"},
		{"json", 2, "{\n  \"a\": 1,\n  \"b\": [\n    \"x\",\n    {\n      \"c\": null\n    }\n  ]\n}\n"},
	}

	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			out, err := runCommand(t, Source{Path: path}, "",
				&Dump{Format: tt.format, Indent: tt.indent})
			require.NoError(t, err)
			require.Equal(t, tt.want, out)
		})
	}

	t.Run("tree", func(t *testing.T) {
		out, err := runCommand(t, Source{Path: path}, "", &Dump{Format: "tree"})
		require.NoError(t, err)
		require.True(t, strings.HasPrefix(out, "AttrSet "), "tree output:\n%s", out)
	})
}
