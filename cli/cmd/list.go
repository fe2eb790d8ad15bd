package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"text/tabwriter"

	"github.com/goccy/go-yaml"

	"github.com/ardnew/nixattr/nix"
)

// List prints every attribute reachable from the document body.
type List struct {
	Where  string `help:"Only list entries matching this expression, e.g. 'kind == \"value\" && depth > 0'" short:"w"`
	Format string `help:"Output format (${enum})" default:"text" enum:"text,json,yaml" short:"o"`
}

// listEntry is the serialized form of a [nix.Entry].
type listEntry struct {
	Path   string `json:"path"   yaml:"path"`
	Kind   string `json:"kind"   yaml:"kind"`
	Value  string `json:"value"  yaml:"value"`
	Line   int    `json:"line"   yaml:"line"`
	Column int    `json:"column" yaml:"column"`
}

// Run executes the list command.
func (l *List) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	var filter *nix.Filter
	if l.Where != "" {
		if filter, err = nix.CompileFilter(l.Where); err != nil {
			return err
		}
	}

	doc, err := load(ctx)
	if err != nil {
		return err
	}

	var entries []listEntry

	for e := range doc.Entries() {
		if filter != nil {
			ok, err := filter.Match(e)
			if err != nil {
				return err
			}

			if !ok {
				continue
			}
		}

		entries = append(entries, listEntry{
			Path:   e.Path.String(),
			Kind:   e.Kind(),
			Value:  e.Value,
			Line:   e.Position.Line,
			Column: e.Position.Column,
		})
	}

	if err := l.write(ctx, entries); err != nil {
		return ErrFormat.With(slog.String("format", l.Format)).Wrap(err)
	}

	return nil
}

func (l *List) write(ctx context.Context, entries []listEntry) error {
	out := streamsFrom(ctx).out

	switch l.Format {
	case "json":
		if entries == nil {
			entries = []listEntry{}
		}

		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")

		return enc.Encode(entries)

	case "yaml":
		if len(entries) == 0 {
			_, err := fmt.Fprintln(out, "[]")

			return err
		}

		data, err := yaml.MarshalContext(ctx, entries)
		if err != nil {
			return err
		}

		_, err = out.Write(data)

		return err
	}

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)

	for _, e := range entries {
		if _, err := fmt.Fprintf(tw, "%d:%d\t%s\t%s\t%s\n",
			e.Line, e.Column, e.Kind, e.Path, summary(e.Value)); err != nil {
			return err
		}
	}

	return tw.Flush()
}

// summary shortens a value to its first line.
func summary(value string) string {
	const limit = 60

	for i, r := range value {
		if r == '\n' || i >= limit {
			return value[:i] + " ..."
		}
	}

	return value
}
