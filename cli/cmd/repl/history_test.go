package repl

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestHistory_Add(t *testing.T) {
	h := NewHistory("")

	for _, e := range []HistoryEntry{
		{"networking.hostName", modeGet},
		{"list", modeCtrl},
		{"  ", modeGet},
		{"list", modeCtrl},
		{"networking.hostName", modeGet},
		{"networking.hostName", modeCtrl},
	} {
		if err := h.Add(e.Line, e.Mode); err != nil {
			t.Fatalf("Add(%q) error: %v", e.Line, err)
		}
	}

	want := []HistoryEntry{
		{"list", modeCtrl},
		{"networking.hostName", modeGet},
		{"networking.hostName", modeCtrl},
	}

	if diff := cmp.Diff(want, h.Entries()); diff != "" {
		t.Errorf("Entries() mismatch (-want +got):\n%s", diff)
	}
}

func TestHistory_Persist(t *testing.T) {
	path := filepath.Join(t.TempDir(), baseHistory)

	h := NewHistory(path)
	if err := h.Load(); err != nil {
		t.Fatalf("Load() on missing file: %v", err)
	}

	_ = h.Add("services.openssh.enable", modeGet)
	_ = h.Add("set a 1", modeCtrl)
	_ = h.Add("write", modeCtrl)
	_ = h.Add("set a 1", modeCtrl) // moves to the end and rewrites

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}

	wantFile := "P:services.openssh.enable\nC:write\nC:set a 1\n"
	if string(data) != wantFile {
		t.Errorf("history file = %q, want %q", data, wantFile)
	}

	reloaded := NewHistory(path)
	if err := reloaded.Load(); err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if diff := cmp.Diff(h.Entries(), reloaded.Entries()); diff != "" {
		t.Errorf("reloaded entries mismatch (-want +got):\n%s", diff)
	}
}

func TestHistory_GetEntry(t *testing.T) {
	h := NewHistory("")
	_ = h.Add("a.b", modeGet)

	if e, err := h.GetEntry(0); err != nil || e.Line != "a.b" {
		t.Errorf("GetEntry(0) = %v, %v", e, err)
	}

	for _, i := range []int{-1, 1} {
		if _, err := h.GetEntry(i); !errors.Is(err, ErrOutOfBounds) {
			t.Errorf("GetEntry(%d) error = %v, want ErrOutOfBounds", i, err)
		}
	}
}
