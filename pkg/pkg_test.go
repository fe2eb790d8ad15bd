package pkg

import (
	"os"
	"strings"
	"testing"

	"golang.org/x/mod/semver"
)

func TestVersion(t *testing.T) {
	buf, err := os.ReadFile("VERSION")
	if err != nil {
		t.Fatalf("read VERSION: %v", err)
	}

	if want := strings.TrimSpace(string(buf)); Version != want {
		t.Errorf("Version = %q, want %q", Version, want)
	}

	if !semver.IsValid("v" + Version) {
		t.Errorf("Version %q is not a semantic version", Version)
	}
}

func TestMetadata(t *testing.T) {
	if Name != "nixattr" {
		t.Errorf("Name = %q", Name)
	}

	if Description == "" {
		t.Error("Description is empty")
	}

	if !strings.HasSuffix(DefaultFile, ".nix") {
		t.Errorf("DefaultFile = %q", DefaultFile)
	}

	for i, a := range Author {
		if a.Name == "" && a.Email == "" {
			t.Errorf("Author[%d] must define at least Name or Email", i)
		}
	}
}
