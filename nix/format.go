package nix

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/goccy/go-yaml"
)

// Print writes an indented outline of the expression tree to w, one node per
// line with its kind, key and span.
func (d *Document) Print(w io.Writer) error {
	return d.print(w, d.root, 0)
}

func (d *Document) print(w io.Writer, e Expr, depth int) error {
	indent := strings.Repeat("  ", depth)

	switch v := e.(type) {
	case *Head:
		if _, err := fmt.Fprintf(w, "%sHead %s %q\n",
			indent, v.Range, d.Text(v.Params)); err != nil {
			return err
		}

		return d.print(w, v.Body, depth+1)

	case *Let:
		if _, err := fmt.Fprintf(w, "%sLet %s\n", indent, v.Range); err != nil {
			return err
		}

		for _, b := range v.Scope.Bindings {
			if err := d.printBinding(w, b, depth+1); err != nil {
				return err
			}
		}

		return d.print(w, v.Body, depth+1)

	case *With:
		if _, err := fmt.Fprintf(w, "%sWith %s %q\n",
			indent, v.Range, d.Text(v.Scope)); err != nil {
			return err
		}

		return d.print(w, v.Body, depth+1)

	case *AttrSet:
		name := "AttrSet"
		if v.Rec {
			name = "RecAttrSet"
		}

		if _, err := fmt.Fprintf(w, "%s%s %s\n", indent, name, v.Range); err != nil {
			return err
		}

		for _, inh := range v.Inherits {
			if _, err := fmt.Fprintf(w, "%s  Inherit %s %s\n",
				indent, inh.Range, strings.Join(inh.Names, " ")); err != nil {
				return err
			}
		}

		for _, b := range v.Bindings {
			if err := d.printBinding(w, b, depth+1); err != nil {
				return err
			}
		}

		return nil

	case *List:
		if _, err := fmt.Fprintf(w, "%sList %s\n", indent, v.Range); err != nil {
			return err
		}

		for _, elem := range v.Elements {
			if err := d.print(w, elem, depth+1); err != nil {
				return err
			}
		}

		return nil

	default:
		_, err := fmt.Fprintf(w, "%sOpaque %s %q\n",
			indent, e.Span(), d.Text(e.Span()))

		return err
	}
}

func (d *Document) printBinding(w io.Writer, b *Binding, depth int) error {
	_, err := fmt.Fprintf(w, "%sBinding %s %s\n",
		strings.Repeat("  ", depth), b.Key, b.FullSpan)
	if err != nil {
		return err
	}

	return d.print(w, b.Value, depth+1)
}

// FormatJSON writes the body attribute set to w as a JSON object that keeps
// source order. Sets become objects keyed by dotted key, lists become arrays
// and literals are decoded; other values are written as their source text.
func (d *Document) FormatJSON(_ context.Context, w io.Writer, indent int) error {
	return d.WriteJSON(w, d.Body(), indent)
}

// FormatYAML writes the body attribute set to w as YAML. Structure follows
// [Document.FormatJSON].
func (d *Document) FormatYAML(ctx context.Context, w io.Writer, indent int) error {
	return d.WriteYAML(ctx, w, d.Body(), indent)
}

// WriteJSON writes the expression e of d to w as JSON.
func (d *Document) WriteJSON(w io.Writer, e Expr, indent int) error {
	var (
		data []byte
		err  error
	)

	value := d.orderedValue(e)

	if indent > 0 {
		data, err = json.MarshalIndent(value, "", strings.Repeat(" ", indent))
	} else {
		data, err = json.Marshal(value)
	}

	if err != nil {
		return err
	}

	_, err = fmt.Fprintln(w, string(data))

	return err
}

// WriteYAML writes the expression e of d to w as YAML.
func (d *Document) WriteYAML(
	ctx context.Context,
	w io.Writer,
	e Expr,
	indent int,
) error {
	var opts []yaml.EncodeOption
	if indent > 0 {
		opts = append(opts, yaml.Indent(indent))
	} else {
		opts = append(opts, yaml.Flow(true))
	}

	data, err := yaml.MarshalContext(ctx, d.orderedValue(e).plain(), opts...)
	if err != nil {
		return err
	}

	_, err = w.Write(data)

	return err
}

// object is an attribute set with its source order preserved.
type object []member

type member struct {
	value orderedValue
	key   string
}

// orderedValue is an object, a []orderedValue, or a decoded literal.
type orderedValue struct{ v any }

func (d *Document) ordered(set *AttrSet) object {
	if set == nil {
		return object{}
	}

	obj := make(object, 0, len(set.Bindings))
	for _, b := range set.Bindings {
		obj = append(obj, member{key: b.Key.String(), value: d.orderedValue(b.Value)})
	}

	return obj
}

func (d *Document) orderedValue(e Expr) orderedValue {
	switch v := e.(type) {
	case nil:
		return orderedValue{object{}}

	case *AttrSet:
		return orderedValue{d.ordered(v)}

	case *List:
		list := make([]orderedValue, 0, len(v.Elements))
		for _, elem := range v.Elements {
			list = append(list, d.orderedValue(elem))
		}

		return orderedValue{list}
	}

	return orderedValue{Literal(d.Text(e.Span()))}
}

// MarshalJSON implements [json.Marshaler].
func (o object) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteByte('{')

	for i, m := range o {
		if i > 0 {
			buf.WriteByte(',')
		}

		key, err := json.Marshal(m.key)
		if err != nil {
			return nil, err
		}

		val, err := json.Marshal(m.value)
		if err != nil {
			return nil, err
		}

		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}

	buf.WriteByte('}')

	return buf.Bytes(), nil
}

// MarshalJSON implements [json.Marshaler].
func (v orderedValue) MarshalJSON() ([]byte, error) { return json.Marshal(v.v) }

func (o object) mapSlice() yaml.MapSlice {
	out := make(yaml.MapSlice, 0, len(o))
	for _, m := range o {
		out = append(out, yaml.MapItem{Key: m.key, Value: m.value.plain()})
	}

	return out
}

// plain converts v for encoders that do not know about orderedValue.
func (v orderedValue) plain() any {
	switch x := v.v.(type) {
	case object:
		return x.mapSlice()

	case []orderedValue:
		out := make([]any, 0, len(x))
		for _, elem := range x {
			out = append(out, elem.plain())
		}

		return out
	}

	return v.v
}
