package cli

import (
	"context"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"github.com/alecthomas/kong"

	"github.com/ardnew/nixattr/log"
	"github.com/ardnew/nixattr/nix"
)

// resolve returns a [kong.ConfigurationLoader] that reads flag values from a
// Nix file.
//
// It can be used with [kong.Configuration] like this:
//
//	kong.Configuration(resolve(ctx), "/path/to/config.nix")
//
// The file must evaluate to an attribute set, optionally behind a function
// head or let block. A flag is looked up first by its name and then by its
// name with hyphens read as path separators, so both of these set
// --log-level:
//
//	{ log-level = "debug"; }
//	{ log.level = "debug"; }
//
// Values are decoded with [nix.Document.Value]; attribute sets are ignored. A file that does not parse is
// ignored. Command-line flags override config file values.
func resolve(ctx context.Context) func(r io.Reader) (kong.Resolver, error) {
	return func(r io.Reader) (kong.Resolver, error) {
		doc, err := nix.ParseReader(ctx, r, nix.WithLogger(log.Default()))
		if err != nil {
			log.WarnContext(ctx, "ignoring configuration file",
				slog.Any("error", err))

			return config{}, nil
		}

		return config{doc: doc}, nil
	}
}

// config implements [kong.Resolver] for Nix configuration files.
type config struct {
	doc *nix.Document
}

// Validate implements [kong.Resolver].
func (config) Validate(*kong.Application) error { return nil }

// Resolve implements [kong.Resolver].
func (c config) Resolve(
	_ *kong.Context,
	_ *kong.Path,
	flag *kong.Flag,
) (any, error) {
	if c.doc == nil {
		return nil, nil
	}

	for _, name := range []string{
		flag.Name,
		strings.ReplaceAll(flag.Name, "-", "."),
	} {
		value, err := c.doc.Value(name)
		if err != nil {
			continue
		}

		if _, ok := value.(map[string]any); ok {
			continue
		}

		return flagValue(value), nil
	}

	// Not found: kong uses the default.
	return nil, nil
}

// flagValue converts a decoded Nix value to one kong can parse into a flag.
// Kong requires numbers as strings for parsing.
func flagValue(value any) any {
	switch v := value.(type) {
	case int64:
		return strconv.FormatInt(v, 10)

	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)

	case []any:
		out := make([]any, len(v))
		for i, elem := range v {
			out[i] = flagValue(elem)
		}

		return out
	}

	return value
}
