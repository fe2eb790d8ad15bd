package nix

import "log/slog"

// Resolve returns the value span of the binding addressed by query under
// root. See [Lookup] for the matching rules.
func Resolve(root Expr, query Path) (Span, error) {
	b, err := Lookup(root, query)
	if err != nil {
		return Span{}, err
	}

	return b.ValueSpan, nil
}

// Lookup finds the binding addressed by query, starting from the body
// attribute set of root.
//
// Bindings of the current set are tested in source order. A binding whose
// key equals the remaining path is the result. A binding whose key is a
// strict prefix of the remaining path, and whose value is an attribute set,
// continues the search inside that set with the rest of the path. The first
// binding satisfying either rule wins and the search never returns to the
// outer set. Bindings are never merged: with only x.y.z = 1; the path x.y is
// not found.
func Lookup(root Expr, query Path) (*Binding, error) {
	if len(query) == 0 {
		return nil, ErrNotFound.Wrap(ErrInvalidPath.With(slog.String("path", "")))
	}

	scope := Body(root)
	if scope == nil {
		return nil, notFound(query, 0)
	}

	remaining := query

	for {
		var (
			next *AttrSet
			rest Path
		)

	bindings:
		for _, b := range scope.Bindings {
			if b.Dynamic {
				continue
			}

			switch {
			case b.Key.Equal(remaining):
				return b, nil

			case len(b.Key) < len(remaining) && remaining.HasPrefix(b.Key):
				if set, ok := b.Value.(*AttrSet); ok {
					next, rest = set, remaining[len(b.Key):]

					break bindings
				}
			}
		}

		if next == nil {
			return nil, notFound(query, len(query)-len(remaining))
		}

		scope, remaining = next, rest
	}
}

func notFound(query Path, matched int) error {
	return ErrNotFound.With(
		slog.String("path", query.String()),
		slog.String("component", query[matched]),
	)
}
