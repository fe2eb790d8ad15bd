package nix

import (
	"log/slog"
	"strconv"
)

// Span is a half-open byte range [Start, End) into a source text.
type Span struct {
	Start int
	End   int
}

// Len returns the number of bytes covered by s.
func (s Span) Len() int { return s.End - s.Start }

// Empty reports whether s covers no bytes.
func (s Span) Empty() bool { return s.End <= s.Start }

// Contains reports whether offset falls inside s.
func (s Span) Contains(offset int) bool {
	return offset >= s.Start && offset < s.End
}

// Cover returns the smallest span containing both s and o.
func (s Span) Cover(o Span) Span {
	return Span{Start: min(s.Start, o.Start), End: max(s.End, o.End)}
}

// Text returns the bytes of src covered by s.
// Bounds are clamped to src so a stale span never panics.
func (s Span) Text(src string) string {
	start := min(max(s.Start, 0), len(src))
	end := min(max(s.End, start), len(src))

	return src[start:end]
}

func (s Span) String() string {
	return "[" + strconv.Itoa(s.Start) + "," + strconv.Itoa(s.End) + ")"
}

// LogValue implements [slog.LogValuer].
func (s Span) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("start", s.Start),
		slog.Int("end", s.End),
	)
}
