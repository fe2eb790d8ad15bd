package repl

import (
	"context"
	"slices"
	"testing"

	"github.com/ardnew/nixattr/log"
	"github.com/ardnew/nixattr/nix"
)

const sessionConfig = `{ pkgs, ... }:
{
  networking.hostName = "nixos";
  networking.firewall = {
    enable = true;
    allowedTCPPorts = [ 22 ];
  };
  services.openssh.enable = true;
  ${dynamic} = { x = 1; };
  users.users.alice.isNormalUser = true;
}
`

func parseSession(t *testing.T) *nix.Document {
	t.Helper()

	doc, err := nix.Parse(t.Context(), sessionConfig)
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}

	return doc
}

func TestWordBounds(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		cursor    int
		wantWord  string
		wantStart int
		wantEnd   int
	}{
		{"simple", "foo", 3, "foo", 0, 3},
		{"dot_separated", "bar.baz", 7, "baz", 4, 7},
		{"after_command", "get fo", 6, "fo", 4, 6},
		{"empty_at_boundary", "get ", 4, "", 4, 4},
		{"mid_word", "foobar", 3, "foobar", 0, 6},
		{"at_start", "foo", 0, "foo", 0, 3},
		{"cursor_past_end", "foo", 9, "foo", 0, 3},
		// Hyphens and quotes are part of identifiers.
		{"hyphenated", "systemd-boot", 12, "systemd-boot", 0, 12},
		{"primed", "get a.b'", 8, "b'", 6, 8},
		{"empty_after_dot", "users.", 6, "", 6, 6},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			word, start, end := wordBounds(tt.input, tt.cursor)
			if word != tt.wantWord || start != tt.wantStart || end != tt.wantEnd {
				t.Errorf("wordBounds(%q, %d) = (%q, %d, %d), want (%q, %d, %d)",
					tt.input, tt.cursor, word, start, end,
					tt.wantWord, tt.wantStart, tt.wantEnd)
			}
		})
	}
}

func TestParentPath(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		wordStart int
		want      string
	}{
		{"top_level", "fo", 0, ""},
		{"simple_chain", "bar.baz.", 8, "bar.baz"},
		{"after_command", "get bar.baz.", 12, "bar.baz"},
		{"no_chain", "get ", 4, ""},
		{"deep_chain", "a.b.c.", 6, "a.b.c"},
		{"hyphenated_chain", "boot.systemd-boot.", 18, "boot.systemd-boot"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := parentPath(tt.input, tt.wordStart)
			if got != tt.want {
				t.Errorf("parentPath(%q, %d) = %q, want %q",
					tt.input, tt.wordStart, got, tt.want)
			}
		})
	}
}

func TestChildCandidates(t *testing.T) {
	doc := parseSession(t)

	tests := []struct {
		parent string
		want   []string
	}{
		{"", []string{"networking", "services", "users"}},
		{"networking", []string{"hostName", "firewall"}},
		{"networking.firewall", []string{"enable", "allowedTCPPorts"}},
		{"users.users", []string{"alice"}},
		{"networking.hostName", nil},
		{"missing", nil},
	}

	for _, tt := range tests {
		t.Run(tt.parent, func(t *testing.T) {
			got := childCandidates(doc, tt.parent)
			if !slices.Equal(got, tt.want) {
				t.Errorf("childCandidates(%q) = %q, want %q", tt.parent, got, tt.want)
			}
		})
	}
}

func TestComputeMatches(t *testing.T) {
	doc := parseSession(t)

	tests := []struct {
		name  string
		mode  inputMode
		input string
		want  []string
	}{
		{"path_top_level", modeGet, "netw", []string{"networking"}},
		{"path_after_dot", modeGet, "networking.", []string{"hostName", "firewall"}},
		{"path_fuzzy", modeGet, "networking.fwl", []string{"firewall"}},
		{"path_empty", modeGet, "", nil},
		{"command_name", modeCtrl, "wr", []string{"write"}},
		{"command_path", modeCtrl, "get services.", []string{"openssh"}},
		{"command_value", modeCtrl, "set services.openssh.enable fa", nil},
		{"command_no_path", modeCtrl, "list ne", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := newModel(context.Background(), doc, nil, NewHistory(""), log.Logger{})
			m.mode = tt.mode
			m.input.SetValue(tt.input)
			m.input.CursorEnd()

			matches, _, _ := m.computeMatches()

			var got []string
			for _, match := range matches {
				got = append(got, match.Str)
			}

			if !slices.Equal(got, tt.want) {
				t.Errorf("computeMatches(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestPreview(t *testing.T) {
	tests := []struct {
		value string
		limit int
		want  string
	}{
		{"true", 10, "true"},
		{"{\n  a = 1;\n}", 40, "{ ..."},
		{"0123456789abc", 10, "0123456..."},
	}

	for _, tt := range tests {
		if got := preview(tt.value, tt.limit); got != tt.want {
			t.Errorf("preview(%q, %d) = %q, want %q", tt.value, tt.limit, got, tt.want)
		}
	}
}
