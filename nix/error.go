package nix

import (
	"errors"
	"log/slog"
	"strconv"
	"strings"

	"github.com/rivo/uniseg"
)

// Predefined errors (sentinel values).
var (
	ErrSyntax           = NewError("syntax error")
	ErrNotFound         = NewError("attribute not found")
	ErrInvalidPath      = NewError("invalid attribute path")
	ErrMaxDepthExceeded = NewError("maximum nesting depth exceeded")
	ErrReadInput        = NewError("failed to read input")
	ErrInvalidFilter    = NewError("invalid filter expression")
)

// Error represents an error with optional structured logging attributes.
// It implements both error and slog.LogValuer interfaces.
type Error struct {
	msg   string
	err   error       // Wrapped error (for errors.Unwrap)
	attrs []slog.Attr // Attributes for structured logging
	kind  *Error      // Sentinel this error was derived from
}

// NewError creates a new Error with a message.
func NewError(msg string) *Error {
	return &Error{msg: msg}
}

// WrapError wraps a standard error into an Error.
func WrapError(err error) *Error {
	ee := &Error{}
	if errors.As(err, &ee) {
		return ee
	}

	return &Error{err: err}
}

// Error implements the error interface.
func (e *Error) Error() string {
	part := make([]string, 0, 2)

	if e.msg != "" {
		part = append(part, e.msg)
	}

	if e.err != nil {
		part = append(part, e.err.Error())
	}

	return strings.Join(part, ": ")
}

// Unwrap implements error unwrapping for errors.Is/As.
func (e *Error) Unwrap() error { return e.err }

// Is reports whether target is the sentinel e was derived from via [Error.With]
// or [Error.Wrap].
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}

	return e == t || (e.kind != nil && e.kind == t)
}

// LogValue implements slog.LogValuer for rich structured logging.
func (e *Error) LogValue() slog.Value {
	attrs := make([]slog.Attr, 0, len(e.attrs)+2)

	if e.msg != "" {
		attrs = append(attrs, slog.String("error", e.msg))
	}

	if e.err != nil {
		attrs = append(attrs, slog.Any("cause", e.err))
	}

	return slog.GroupValue(append(attrs, e.attrs...)...)
}

// Wrap creates a new Error wrapping another error.
func (e *Error) Wrap(err error) *Error {
	return &Error{
		msg:   e.msg,
		err:   err,
		attrs: e.attrs, // Share attrs
		kind:  e.sentinel(),
	}
}

// With adds attributes to the error for structured logging.
// This creates a new Error instance to maintain immutability.
func (e *Error) With(attrs ...slog.Attr) *Error {
	newAttrs := make([]slog.Attr, len(e.attrs)+len(attrs))
	copy(newAttrs, e.attrs)
	copy(newAttrs[len(e.attrs):], attrs)

	return &Error{
		msg:   e.msg,
		err:   e.err,
		attrs: newAttrs,
		kind:  e.sentinel(),
	}
}

// Attr returns the value of the first attribute named key, if any.
func (e *Error) Attr(key string) (slog.Value, bool) {
	for _, a := range e.attrs {
		if a.Key == key {
			return a.Value, true
		}
	}

	return slog.Value{}, false
}

func (e *Error) sentinel() *Error {
	if e.kind != nil {
		return e.kind
	}

	return e
}

// SyntaxError reports source text that cannot be recovered into the
// structural grammar.
type SyntaxError struct {
	// File names the source, if known.
	File string
	// Expected describes what the parser was looking for.
	Expected string
	// Found describes what it saw instead.
	Found string
	// Offset is the byte offset of the offending token.
	Offset int
	// Line and Column are 1-based; Column counts display cells.
	Line   int
	Column int

	source string
}

// Error renders "file:line:col: expected X, found Y" followed by the
// [SyntaxError.Snippet] when the source is attached.
func (e *SyntaxError) Error() string {
	var b strings.Builder

	if e.File != "" {
		b.WriteString(e.File)
		b.WriteByte(':')
	}

	b.WriteString(strconv.Itoa(e.Line))
	b.WriteByte(':')
	b.WriteString(strconv.Itoa(e.Column))
	b.WriteString(": expected ")
	b.WriteString(e.Expected)

	if e.Found != "" {
		b.WriteString(", found ")
		b.WriteString(e.Found)
	}

	if snip := e.Snippet(); snip != "" {
		b.WriteByte('\n')
		b.WriteString(strings.TrimSuffix(snip, "\n"))
	}

	return b.String()
}

// Unwrap allows errors.Is(err, ErrSyntax).
func (e *SyntaxError) Unwrap() error { return ErrSyntax }

// Snippet returns the offending source line followed by a caret marking the
// error column, or "" if no source is attached.
func (e *SyntaxError) Snippet() string {
	if e.source == "" || e.Offset < 0 || e.Offset > len(e.source) {
		return ""
	}

	start := strings.LastIndexByte(e.source[:e.Offset], '\n') + 1

	end := strings.IndexByte(e.source[e.Offset:], '\n')
	if end < 0 {
		end = len(e.source)
	} else {
		end += e.Offset
	}

	line := strings.TrimRight(e.source[start:end], "\r")
	num := strconv.Itoa(e.Line)

	var b strings.Builder

	b.WriteString("  ")
	b.WriteString(num)
	b.WriteString(" | ")
	b.WriteString(line)
	b.WriteByte('\n')
	b.WriteString(strings.Repeat(" ", len(num)+5))

	// Tabs are copied so the caret lines up however the terminal expands them.
	g := uniseg.NewGraphemes(e.source[start:e.Offset])
	for g.Next() {
		if g.Str() == "\t" {
			b.WriteByte('\t')
		} else {
			b.WriteString(strings.Repeat(" ", g.Width()))
		}
	}

	b.WriteString("^\n")

	return b.String()
}

// LogValue implements slog.LogValuer.
func (e *SyntaxError) LogValue() slog.Value {
	attrs := make([]slog.Attr, 0, 7)
	attrs = append(attrs, slog.String("error", ErrSyntax.msg))

	if e.File != "" {
		attrs = append(attrs, slog.String("file", e.File))
	}

	return slog.GroupValue(append(attrs,
		slog.String("expected", e.Expected),
		slog.String("found", e.Found),
		slog.Int("offset", e.Offset),
		slog.Int("line", e.Line),
		slog.Int("column", e.Column),
	)...)
}

// Position is a location in a source text.
type Position struct {
	Offset int
	Line   int
	Column int
}

func (p Position) String() string {
	return strconv.Itoa(p.Line) + ":" + strconv.Itoa(p.Column)
}

// lineIndex holds the byte offset at which each line of a source begins.
type lineIndex []int

func newLineIndex(src string) lineIndex {
	idx := lineIndex{0}

	for i := range len(src) {
		if src[i] == '\n' {
			idx = append(idx, i+1)
		}
	}

	return idx
}

// width returns the number of display cells of s, counting a tab as one.
func width(s string) int {
	n := 0

	g := uniseg.NewGraphemes(s)
	for g.Next() {
		if g.Str() == "\t" {
			n++
		} else {
			n += g.Width()
		}
	}

	return n
}

// position converts a byte offset of src into a [Position]. Columns are
// measured in terminal display cells so that wide runes line up with carets.
func (idx lineIndex) position(src string, offset int) Position {
	offset = min(max(offset, 0), len(src))

	// Largest line start <= offset.
	lo, hi := 0, len(idx)-1
	for lo < hi {
		mid := (lo + hi + 1) / 2
		if idx[mid] <= offset {
			lo = mid
		} else {
			hi = mid - 1
		}
	}

	return Position{
		Offset: offset,
		Line:   lo + 1,
		Column: width(src[idx[lo]:offset]) + 1,
	}
}
