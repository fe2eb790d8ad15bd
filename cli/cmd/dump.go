package cmd

import (
	"context"
	"log/slog"
)

// Dump prints the whole document as an expression tree, JSON or YAML.
type Dump struct {
	Format string `arg:"" help:"Output format (${enum})" default:"tree" enum:"tree,json,yaml" optional:""`
	Indent int    `       help:"Indent width for JSON and YAML output"  default:"2"`
}

// Run executes the dump command.
func (d *Dump) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	doc, err := load(ctx)
	if err != nil {
		return err
	}

	out := streamsFrom(ctx).out

	switch d.Format {
	case "json":
		err = doc.FormatJSON(ctx, out, d.Indent)
	case "yaml":
		err = doc.FormatYAML(ctx, out, d.Indent)
	default:
		err = doc.Print(out)
	}

	if err != nil {
		return ErrFormat.With(slog.String("format", d.Format)).Wrap(err)
	}

	return nil
}
