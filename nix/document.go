package nix

import (
	"context"
	"io"
	"iter"
	"log/slog"
	"slices"

	"github.com/klauspost/readahead"

	"github.com/ardnew/nixattr/log"
)

// Document is a parsed source text. It is immutable: [Document.Set] returns
// new text and leaves the Document unchanged.
type Document struct {
	logger log.Logger
	root   Expr
	source string
	lines  lineIndex
}

// Parse parses src into a Document.
func Parse(ctx context.Context, src string, opts ...Option) (*Document, error) {
	o := makeOptions(opts...)

	root, lines, err := parseSource(ctx, src, o)
	if err != nil {
		return nil, err
	}

	o.logger.TraceContext(ctx, "parse complete",
		slog.Int("bytes", len(src)),
		slog.Int("lines", len(lines)),
	)

	return &Document{
		logger: o.logger,
		root:   root,
		source: src,
		lines:  lines,
	}, nil
}

// ParseReader reads all of r and parses it into a Document.
func ParseReader(
	ctx context.Context,
	r io.Reader,
	opts ...Option,
) (*Document, error) {
	// Read ahead asynchronously while earlier chunks are appended.
	ra := readahead.NewReader(r)
	defer ra.Close()

	data, err := io.ReadAll(ra)
	if err != nil {
		return nil, ErrReadInput.Wrap(err)
	}

	return Parse(ctx, string(data), opts...)
}

// Source returns the text the Document was parsed from.
func (d *Document) Source() string { return d.source }

// Root returns the top-level expression.
func (d *Document) Root() Expr { return d.root }

// Body returns the body attribute set, skipping any prefixes.
func (d *Document) Body() *AttrSet { return Body(d.root) }

// Text returns the source text covered by s.
func (d *Document) Text(s Span) string { return s.Text(d.source) }

// Position converts a byte offset into a line and column.
func (d *Document) Position(offset int) Position {
	return d.lines.position(d.source, offset)
}

// Lookup returns the binding addressed by path.
func (d *Document) Lookup(path Path) (*Binding, error) {
	b, err := Lookup(d.root, path)
	if err != nil {
		return nil, err
	}

	d.logger.Trace("lookup",
		slog.String("path", path.String()),
		slog.Any("value", b.ValueSpan),
	)

	return b, nil
}

// Get returns the exact source text of the value addressed by the dotted
// path.
func (d *Document) Get(path string) (string, error) {
	b, err := d.lookup(path)
	if err != nil {
		return "", err
	}

	return d.Text(b.ValueSpan), nil
}

// Set returns the full source text with the value addressed by the dotted
// path replaced by text. The Document itself is not modified.
func (d *Document) Set(path, text string) (string, error) {
	b, err := d.lookup(path)
	if err != nil {
		return "", err
	}

	return Replace(d.source, b.ValueSpan, text), nil
}

func (d *Document) lookup(path string) (*Binding, error) {
	p, err := ParsePath(path)
	if err != nil {
		return nil, err
	}

	return d.Lookup(p)
}

// Entry describes one binding reachable from the body attribute set.
type Entry struct {
	Binding  *Binding
	Path     Path
	Value    string
	Position Position
	Depth    int
}

// Kind returns "set", "list" or "value" for the binding's value.
func (e Entry) Kind() string {
	switch e.Binding.Value.(type) {
	case *AttrSet:
		return "set"
	case *List:
		return "list"
	default:
		return "value"
	}
}

// Entries returns an iterator over every binding reachable by descending
// into attribute set values, in source order. Paths are the concatenation of
// the keys along the way. Because bindings can shadow each other, a listed
// path is not guaranteed to resolve to the same binding.
func (d *Document) Entries() iter.Seq[Entry] {
	return func(yield func(Entry) bool) {
		body := d.Body()
		if body == nil {
			return
		}

		type frame struct {
			set    *AttrSet
			prefix Path
			next   int
		}

		stack := []frame{{set: body}}

		for len(stack) > 0 {
			top := &stack[len(stack)-1]
			if top.next >= len(top.set.Bindings) {
				stack = stack[:len(stack)-1]

				continue
			}

			b := top.set.Bindings[top.next]
			top.next++

			entry := Entry{
				Binding:  b,
				Path:     slices.Concat(top.prefix, b.Key),
				Value:    d.Text(b.ValueSpan),
				Position: d.Position(b.KeySpan.Start),
				Depth:    len(stack) - 1,
			}

			if !yield(entry) {
				return
			}

			if set, ok := b.Value.(*AttrSet); ok && !b.Dynamic {
				stack = append(stack, frame{set: set, prefix: entry.Path})
			}
		}
	}
}
