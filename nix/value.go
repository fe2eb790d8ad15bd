package nix

import (
	"strconv"
	"strings"
)

// Value decodes the value addressed by the dotted path into a Go value.
//
// Literals decode to string, int64, float64, bool or nil; lists decode to
// []any; attribute sets decode to map[string]any keyed by dotted key. Any
// other expression decodes to its source text.
func (d *Document) Value(path string) (any, error) {
	b, err := d.lookup(path)
	if err != nil {
		return nil, err
	}

	return d.decode(b.Value), nil
}

func (d *Document) decode(e Expr) any {
	switch v := e.(type) {
	case *List:
		out := make([]any, 0, len(v.Elements))
		for _, elem := range v.Elements {
			out = append(out, d.decode(elem))
		}

		return out

	case *AttrSet:
		out := make(map[string]any, len(v.Bindings))
		for _, b := range v.Bindings {
			key := b.Key.String()
			if _, dup := out[key]; !dup {
				out[key] = d.decode(b.Value)
			}
		}

		return out
	}

	return Literal(d.Text(e.Span()))
}

// Literal decodes text if it is a single string, number, boolean or null
// literal. Otherwise text is returned unchanged.
func Literal(text string) any {
	var toks []Token

	for tok := range Lex(text) {
		if !tok.IsTrivia() {
			toks = append(toks, tok)
		}
	}

	sign := ""
	if len(toks) == 2 && toks[0].Text == "-" && toks[1].Kind == KindNumber {
		sign, toks = "-", toks[1:]
	}

	if len(toks) != 1 {
		return text
	}

	switch lit := toks[0]; lit.Kind {
	case KindString:
		if s, ok := lit.Unquote(); ok {
			return s
		}

	case KindNumber:
		if i, err := strconv.ParseInt(sign+lit.Text, 10, 64); err == nil {
			return i
		}

		if f, err := strconv.ParseFloat(sign+lit.Text, 64); err == nil {
			return f
		}

	case KindBool:
		return lit.Text == "true"

	case KindNull:
		return nil
	}

	return text
}

// Quote returns s as a double-quoted string literal.
func Quote(s string) string {
	var b strings.Builder

	b.Grow(len(s) + 2)
	b.WriteByte('"')

	for i := 0; i < len(s); i++ {
		switch c := s[i]; c {
		case '"', '\\':
			b.WriteByte('\\')
			b.WriteByte(c)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		case '\t':
			b.WriteString(`\t`)
		case '$':
			if i+1 < len(s) && s[i+1] == '{' {
				b.WriteString(`\$`)
			} else {
				b.WriteByte(c)
			}
		default:
			b.WriteByte(c)
		}
	}

	b.WriteByte('"')

	return b.String()
}
