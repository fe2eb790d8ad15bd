package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"slices"
	"strconv"
	"strings"

	"github.com/alecthomas/kong"

	"github.com/ardnew/nixattr/log"
	"github.com/ardnew/nixattr/nix"
	"github.com/ardnew/nixattr/profile"
)

// defaultConfigIndent is the number of spaces to use for indentation
// when generating the default configuration file.
const defaultConfigIndent = 2

// Init generates a default configuration file with current flag values.
type Init struct {
	Force bool `help:"Overwrite existing configuration file"`
}

// Run executes the init command.
func (i *Init) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	ktx := kongContextFrom(ctx)

	confPath, ok := ktx.Model.Vars()[ConfigIdentifier]
	if !ok {
		panic("internal error: config path undefined")
	}

	_, err = os.Stat(confPath)
	if err == nil && !i.Force {
		return ErrWriteConfig.
			With(slog.String("file", confPath)).
			With(slog.Bool("exists", true)).
			Wrap(ErrFileExists)
	}

	text := i.render(ktx)

	// Never write a file the resolver could not read back.
	if _, err := nix.Parse(ctx, text); err != nil {
		return ErrWriteConfig.
			With(slog.String("file", confPath)).
			Wrap(err)
	}

	if err := os.WriteFile(confPath, []byte(text), 0o600); err != nil {
		return ErrWriteConfig.
			With(slog.String("file", confPath)).
			Wrap(err)
	}

	log.DebugContext(ctx, "initialized configuration file",
		slog.String("path", confPath),
	)

	return nil
}

// render returns an attribute set binding every top-level flag to its
// current value.
func (i *Init) render(ktx *kong.Context) string {
	var b strings.Builder

	indent := strings.Repeat(" ", defaultConfigIndent)
	prefixIgnore := []string{"help", profile.Tag}

	b.WriteString("{\n")

	for _, flag := range ktx.Model.Flags {
		if flag.Hidden || slices.ContainsFunc(prefixIgnore, func(s string) bool {
			return strings.HasPrefix(flag.Name, s)
		}) {
			continue
		}

		val, ok := literal(ktx.FlagValue(flag))
		if !ok {
			continue
		}

		fmt.Fprintf(&b, "%s%s = %s;\n", indent, flag.Name, val)
	}

	b.WriteString("}\n")

	return b.String()
}

// literal renders a flag value as a Nix expression. It reports false for
// unset values.
func literal(val any) (string, bool) {
	switch v := val.(type) {
	case nil:
		return "", false

	case bool:
		return strconv.FormatBool(v), true

	case string:
		if v == "" {
			return "", false
		}

		return nix.Quote(v), true

	case fmt.Stringer:
		return literal(v.String())

	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64,
		float32, float64:
		return fmt.Sprint(v), true

	case []string:
		if len(v) == 0 {
			return "", false
		}

		elems := make([]string, len(v))
		for i, s := range v {
			elems[i] = nix.Quote(s)
		}

		return "[ " + strings.Join(elems, " ") + " ]", true
	}

	return nix.Quote(fmt.Sprint(val)), true
}
