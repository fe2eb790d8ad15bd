package nix

import (
	"log/slog"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
)

// Filter is a compiled boolean predicate over an [Entry].
//
// Predicates are expr-lang expressions over these variables:
//
//	path    string  dotted path of the entry
//	key     string  dotted key of the binding as written
//	kind    string  "set", "list" or "value"
//	value   string  source text of the value
//	depth   int     nesting depth below the body set
//	line    int     1-based line of the key
//	column  int     1-based column of the key
//
// For example: kind == "value" && path startsWith "networking."
type Filter struct {
	program *vm.Program
	source  string
}

// filterEnv is the environment a [Filter] is compiled against.
func filterEnv() map[string]any {
	return map[string]any{
		"path":   "",
		"key":    "",
		"kind":   "",
		"value":  "",
		"depth":  0,
		"line":   0,
		"column": 0,
	}
}

// CompileFilter compiles src into a Filter.
func CompileFilter(src string) (*Filter, error) {
	program, err := expr.Compile(src, expr.Env(filterEnv()), expr.AsBool())
	if err != nil {
		return nil, ErrInvalidFilter.
			With(slog.String("filter", src)).
			Wrap(err)
	}

	return &Filter{program: program, source: src}, nil
}

func (f *Filter) String() string { return f.source }

// Match evaluates the filter for e.
func (f *Filter) Match(e Entry) (bool, error) {
	env := map[string]any{
		"path":   e.Path.String(),
		"key":    e.Binding.Key.String(),
		"kind":   e.Kind(),
		"value":  e.Value,
		"depth":  e.Depth,
		"line":   e.Position.Line,
		"column": e.Position.Column,
	}

	out, err := expr.Run(f.program, env)
	if err != nil {
		return false, ErrInvalidFilter.
			With(slog.String("filter", f.source)).
			Wrap(err)
	}

	ok, _ := out.(bool)

	return ok, nil
}
