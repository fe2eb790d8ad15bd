package nix

import "strings"

// Replace returns source with the bytes covered by span replaced by text.
// Everything outside span is copied verbatim. Replace does not check that
// text is well-formed; span must lie within source.
func Replace(source string, span Span, text string) string {
	var b strings.Builder

	b.Grow(len(source) - span.Len() + len(text))
	b.WriteString(source[:span.Start])
	b.WriteString(text)
	b.WriteString(source[span.End:])

	return b.String()
}
