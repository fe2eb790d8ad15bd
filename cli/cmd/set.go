package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/ardnew/nixattr/log"
)

// Set replaces the value of an attribute and prints the new document followed
// by a newline, or writes it back to the file unchanged with --in-place.
type Set struct {
	Path    string  `arg:"" help:"Dotted attribute path, e.g. networking.firewall.enable"`
	Value   *string `arg:"" help:"Replacement Nix expression; read from stdin when omitted" optional:""`
	KeepEOL bool    `       help:"Keep the trailing newline of a value read from stdin"      short:"n" name:"keep-eol"`
}

// Run executes the set command.
func (s *Set) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	src := sourceFrom(ctx)
	if src.InPlace && src.Path == stdinSource {
		return ErrInPlaceStdin
	}

	value, err := s.value(ctx)
	if err != nil {
		return err
	}

	doc, err := load(ctx)
	if err != nil {
		return err
	}

	text, err := doc.Set(s.Path, value)
	if err != nil {
		return err
	}

	log.DebugContext(ctx, "set attribute",
		slog.String("path", s.Path),
		slog.String("value", value),
		slog.Bool("in-place", src.InPlace),
	)

	if src.InPlace {
		return doc.replace(ctx, text)
	}

	_, err = fmt.Fprintln(streamsFrom(ctx).out, text)

	return err
}

// value returns the replacement text, reading it from stdin if it was not
// given as an argument.
func (s *Set) value(ctx context.Context) (string, error) {
	if s.Value != nil {
		return *s.Value, nil
	}

	if sourceFrom(ctx).Path == stdinSource {
		return "", ErrReadValue.With(slog.String("reason", "stdin already holds the document"))
	}

	data, err := io.ReadAll(streamsFrom(ctx).in)
	if err != nil {
		return "", ErrReadValue.Wrap(err)
	}

	value := string(data)
	if !s.KeepEOL {
		value = trimEOL(value)
	}

	return value, nil
}

// trimEOL removes one trailing "\n" or "\r\n".
func trimEOL(s string) string {
	if t, ok := strings.CutSuffix(s, "\n"); ok {
		return strings.TrimSuffix(t, "\r")
	}

	return s
}
