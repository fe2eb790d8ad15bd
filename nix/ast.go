package nix

// Expr is a node of the expression tree. The set of implementations is
// closed: [*AttrSet], [*List], [*Opaque], [*Head], [*Let] and [*With].
type Expr interface {
	// Span returns the source range covered by the expression, excluding
	// surrounding whitespace and comments.
	Span() Span

	expr()
}

// AttrSet is an attribute set literal: { bindings } or rec { bindings }.
type AttrSet struct {
	Bindings []*Binding
	Inherits []*Inherit
	Range    Span
	Rec      bool
}

// List is a list literal. Elements are kept for their spans only; paths
// never address into a list.
type List struct {
	Elements []Expr
	Range    Span
}

// Opaque is any expression whose structure is not modeled. Its value is its
// source text.
type Opaque struct {
	Range Span
}

// Head is a function header ({ pkgs, ... }:, args:, args@{ ... }:) in front
// of the document body.
type Head struct {
	Body   Expr
	Params Span
	Range  Span
}

// Let is a let ... in prefix in front of the document body. Its bindings are
// parsed but cannot be addressed by a query path.
type Let struct {
	Scope *AttrSet
	Body  Expr
	Range Span
}

// With is a with expr; prefix in front of the document body.
type With struct {
	Body  Expr
	Scope Span
	Range Span
}

func (e *AttrSet) Span() Span { return e.Range }
func (e *List) Span() Span    { return e.Range }
func (e *Opaque) Span() Span  { return e.Range }
func (e *Head) Span() Span    { return e.Range }
func (e *Let) Span() Span     { return e.Range }
func (e *With) Span() Span    { return e.Range }

func (*AttrSet) expr() {}
func (*List) expr()    {}
func (*Opaque) expr()  {}
func (*Head) expr()    {}
func (*Let) expr()     {}
func (*With) expr()    {}

// Binding is one key = value; statement of an attribute set.
//
// Key is the dotted key exactly as written. Two bindings sharing a key
// prefix are independent; nothing merges them.
type Binding struct {
	Value Expr
	Key   Path

	// KeySpan covers the dotted key.
	KeySpan Span
	// FullSpan runs from the first key byte through the terminating ';'.
	FullSpan Span
	// ValueSpan equals Value.Span().
	ValueSpan Span

	// Dynamic is set when a key component is an interpolation or an
	// interpolated string. Such a binding never matches a query.
	Dynamic bool
}

// Inherit is an inherit a b; or inherit (from) a b; statement.
type Inherit struct {
	Names []string
	From  Span // empty without (from)
	Range Span
}

// Body returns the attribute set at the bottom of any Head, Let and With
// prefixes of root, or nil if there is none.
func Body(root Expr) *AttrSet {
	for {
		switch e := root.(type) {
		case *AttrSet:
			return e
		case *Head:
			root = e.Body
		case *Let:
			root = e.Body
		case *With:
			root = e.Body
		default:
			return nil
		}
	}
}
