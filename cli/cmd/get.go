package cmd

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/ardnew/nixattr/nix"
)

// Get prints the value of an attribute.
type Get struct {
	Path   string `arg:"" help:"Dotted attribute path, e.g. networking.firewall.enable"`
	Format string `       help:"Output format (${enum})" default:"raw" enum:"raw,json,yaml" short:"o"`
}

// Run executes the get command.
func (g *Get) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	doc, err := load(ctx)
	if err != nil {
		return err
	}

	out := streamsFrom(ctx).out

	if g.Format == "raw" {
		value, err := doc.Get(g.Path)
		if err != nil {
			return err
		}

		_, err = fmt.Fprintln(out, value)

		return err
	}

	path, err := nix.ParsePath(g.Path)
	if err != nil {
		return err
	}

	b, err := doc.Lookup(path)
	if err != nil {
		return err
	}

	switch g.Format {
	case "json":
		err = doc.WriteJSON(out, b.Value, 0)
	case "yaml":
		err = doc.WriteYAML(ctx, out, b.Value, 2)
	}

	if err != nil {
		return ErrFormat.With(slog.String("format", g.Format)).Wrap(err)
	}

	return nil
}
