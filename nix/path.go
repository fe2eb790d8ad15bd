package nix

import (
	"log/slog"
	"slices"
	"strings"
)

// Path is a sequence of attribute names, written joined by ".".
type Path []string

// ParsePath splits s on ".". A component cannot contain a literal dot, and
// empty components (leading, trailing or doubled dots) are rejected with
// [ErrInvalidPath].
func ParsePath(s string) (Path, error) {
	p := Path(strings.Split(s, "."))

	if i := slices.Index(p, ""); i >= 0 {
		return nil, ErrNotFound.Wrap(
			ErrInvalidPath.With(
				slog.String("path", s),
				slog.Int("component", i),
			),
		)
	}

	return p, nil
}

func (p Path) String() string { return strings.Join(p, ".") }

// Equal reports whether p and q name the same components.
func (p Path) Equal(q Path) bool { return slices.Equal(p, q) }

// HasPrefix reports whether q is a prefix of p (possibly equal).
func (p Path) HasPrefix(q Path) bool {
	return len(q) <= len(p) && slices.Equal(p[:len(q)], q)
}
