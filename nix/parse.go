package nix

import (
	"context"
	"log/slog"
	"strconv"

	"github.com/ardnew/nixattr/log"
)

// parser holds the parser state.
type parser struct {
	ctx    context.Context
	logger log.Logger
	file   string
	src    string
	lines  lineIndex
	toks   []Token // without trivia
	pos    int
	depth  int
	limit  int
}

// parseSource builds the expression tree of src.
func parseSource(ctx context.Context, src string, opts options) (Expr, lineIndex, error) {
	p := &parser{
		ctx:    ctx,
		logger: opts.logger,
		file:   opts.filename,
		src:    src,
		lines:  newLineIndex(src),
		limit:  opts.maxDepth,
	}

	for tok := range Lex(src) {
		if tok.Unterminated {
			return nil, p.lines, p.unterminated(tok)
		}

		if !tok.IsTrivia() {
			p.toks = append(p.toks, tok)
		}
	}

	p.logger.TraceContext(ctx, "lex complete",
		slog.Int("tokens", len(p.toks)),
		slog.Int("bytes", len(src)),
	)

	root, err := p.parseTop()
	if err != nil {
		return nil, p.lines, err
	}

	if tok := p.peek(); tok.Kind != KindEOF {
		return nil, p.lines, p.errorf(tok, "end of input")
	}

	return root, p.lines, nil
}

// parseTop parses the document: any number of function headers, let and with
// prefixes followed by the body attribute set.
func (p *parser) parseTop() (Expr, error) {
	if err := p.enter(); err != nil {
		return nil, err
	}
	defer p.leave()

	tok := p.peek()

	switch {
	case p.isHead():
		return p.parseHead()

	case tok.Kind == KindKeyword && tok.Text == "let":
		return p.parseLet()

	case tok.Kind == KindKeyword && tok.Text == "with":
		return p.parseWith()

	case tok.Kind == KindLBrace, tok.Is("rec") && p.peekAt(1).Kind == KindLBrace:
		return p.parseAttrSet()
	}

	return nil, p.errorf(tok, "{")
}

// isHead reports whether a function header starts at the current token.
func (p *parser) isHead() bool {
	tok := p.peek()

	switch tok.Kind {
	case KindIdent:
		next := p.peekAt(1)

		return next.Kind == KindColon ||
			(next.Kind == KindAt && p.peekAt(2).Kind == KindLBrace)

	case KindLBrace:
		return p.isLambda(p.pos)
	}

	return false
}

// isLambda reports whether the brace at toks[i] opens a parameter set, that
// is, whether its matching close is followed by ':' or '@'.
func (p *parser) isLambda(i int) bool {
	j := p.matching(i)
	if j < 0 || j+1 >= len(p.toks) {
		return false
	}

	next := p.toks[j+1].Kind

	return next == KindColon || next == KindAt
}

// matching returns the index of the token closing the bracket at toks[i], or
// -1 if it is never closed.
func (p *parser) matching(i int) int {
	depth := 0

	for j := i; j < len(p.toks); j++ {
		switch p.toks[j].Kind {
		case KindLBrace, KindLBracket, KindLParen:
			depth++
		case KindRBrace, KindRBracket, KindRParen:
			depth--
			if depth == 0 {
				return j
			}
		}
	}

	return -1
}

func (p *parser) parseHead() (Expr, error) {
	first := p.peek()
	end := first.Span.End

	if first.Kind == KindIdent {
		p.next()

		if p.peek().Kind == KindAt {
			p.next()

			group, err := p.skipGroup()
			if err != nil {
				return nil, err
			}

			end = group.End
		}
	} else {
		group, err := p.skipGroup()
		if err != nil {
			return nil, err
		}

		end = group.End

		if p.peek().Kind == KindAt {
			p.next()

			name, err := p.expect(KindIdent, "identifier")
			if err != nil {
				return nil, err
			}

			end = name.Span.End
		}
	}

	if _, err := p.expect(KindColon, ":"); err != nil {
		return nil, err
	}

	params := Span{Start: first.Span.Start, End: end}

	p.logger.TraceContext(p.ctx, "parse head", slog.Any("params", params))

	body, err := p.parseTop()
	if err != nil {
		return nil, err
	}

	return &Head{
		Params: params,
		Body:   body,
		Range:  Span{Start: first.Span.Start, End: body.Span().End},
	}, nil
}

func (p *parser) parseLet() (Expr, error) {
	let := p.next()
	scope := &AttrSet{}

	for {
		tok := p.peek()
		if tok.Is("in") {
			break
		}

		if tok.Kind == KindEOF {
			return nil, p.errorf(tok, "in")
		}

		if err := p.parseMember(scope); err != nil {
			return nil, err
		}
	}

	in := p.next()
	scope.Range = Span{Start: let.Span.Start, End: in.Span.End}

	body, err := p.parseTop()
	if err != nil {
		return nil, err
	}

	return &Let{
		Scope: scope,
		Body:  body,
		Range: Span{Start: let.Span.Start, End: body.Span().End},
	}, nil
}

func (p *parser) parseWith() (Expr, error) {
	with := p.next()

	scope, err := p.parseOpaque()
	if err != nil {
		return nil, err
	}

	if _, err := p.expect(KindSemi, ";"); err != nil {
		return nil, err
	}

	body, err := p.parseTop()
	if err != nil {
		return nil, err
	}

	return &With{
		Scope: scope.Range,
		Body:  body,
		Range: Span{Start: with.Span.Start, End: body.Span().End},
	}, nil
}

// parseAttrSet parses { members } or rec { members }.
func (p *parser) parseAttrSet() (*AttrSet, error) {
	if err := p.enter(); err != nil {
		return nil, err
	}
	defer p.leave()

	set := &AttrSet{}
	start := p.peek().Span.Start

	if p.peek().Is("rec") {
		p.next()

		set.Rec = true
	}

	if _, err := p.expect(KindLBrace, "{"); err != nil {
		return nil, err
	}

	for {
		tok := p.peek()
		if tok.Kind == KindRBrace {
			break
		}

		if tok.Kind == KindEOF {
			return nil, p.errorf(tok, "}")
		}

		if err := p.parseMember(set); err != nil {
			return nil, err
		}
	}

	end := p.next()
	set.Range = Span{Start: start, End: end.Span.End}

	return set, nil
}

// parseMember parses one binding or inherit statement into set.
func (p *parser) parseMember(set *AttrSet) error {
	if p.peek().Is("inherit") {
		inh, err := p.parseInherit()
		if err != nil {
			return err
		}

		set.Inherits = append(set.Inherits, inh)

		return nil
	}

	b, err := p.parseBinding()
	if err != nil {
		return err
	}

	p.logger.TraceContext(p.ctx, "parse binding",
		slog.String("key", b.Key.String()),
		slog.Any("value", b.ValueSpan),
	)

	set.Bindings = append(set.Bindings, b)

	return nil
}

func (p *parser) parseInherit() (*Inherit, error) {
	inh := &Inherit{}
	start := p.next()

	if p.peek().Kind == KindLParen {
		from, err := p.skipGroup()
		if err != nil {
			return nil, err
		}

		inh.From = from
	}

	for {
		tok := p.peek()

		name, ok := attrName(tok)
		if !ok {
			break
		}

		p.next()

		inh.Names = append(inh.Names, name)
	}

	end, err := p.expect(KindSemi, ";")
	if err != nil {
		return nil, err
	}

	inh.Range = Span{Start: start.Span.Start, End: end.Span.End}

	return inh, nil
}

// parseBinding parses DottedKey '=' Expression ';'.
func (p *parser) parseBinding() (*Binding, error) {
	b := &Binding{}

	first := p.peek()
	last := first

	for {
		tok := p.peek()

		name, ok := attrName(tok)
		switch {
		case ok:
		case tok.Kind == KindString || tok.Kind == KindInterp:
			name = tok.Text
			b.Dynamic = true
		default:
			return nil, p.errorf(tok, "attribute name")
		}

		p.next()

		b.Key = append(b.Key, name)
		last = tok

		if p.peek().Kind != KindDot {
			break
		}

		p.next()
	}

	b.KeySpan = Span{Start: first.Span.Start, End: last.Span.End}

	if _, err := p.expect(KindAssign, "="); err != nil {
		return nil, err
	}

	value, err := p.parseValue()
	if err != nil {
		return nil, err
	}

	semi, err := p.expect(KindSemi, ";")
	if err != nil {
		return nil, err
	}

	b.Value = value
	b.ValueSpan = value.Span()
	b.FullSpan = Span{Start: first.Span.Start, End: semi.Span.End}

	return b, nil
}

// attrName returns the name a token contributes to a dotted key when it is
// static.
func attrName(tok Token) (string, bool) {
	switch tok.Kind {
	case KindIdent, KindBool, KindNull:
		return tok.Text, true

	case KindKeyword:
		// Only "or" is a valid bare attribute name among the keywords,
		// but accepting the rest does not make a valid file unparseable.
		return tok.Text, true

	case KindString:
		return tok.Unquote()
	}

	return "", false
}

// parseValue parses the right-hand side of a binding. Attribute sets and
// lists are modeled only when they make up the whole value; anything else,
// including a set followed by an operator, is captured as Opaque.
func (p *parser) parseValue() (Expr, error) {
	mark := p.pos
	tok := p.peek()

	switch {
	case tok.Kind == KindLBrace && !p.isLambda(p.pos),
		tok.Is("rec") && p.peekAt(1).Kind == KindLBrace:
		set, err := p.parseAttrSet()
		if err != nil {
			return nil, err
		}

		if p.atValueEnd() {
			return set, nil
		}

	case tok.Kind == KindLBracket:
		list, err := p.parseList()
		if err != nil {
			return nil, err
		}

		if p.atValueEnd() {
			return list, nil
		}
	}

	p.pos = mark

	return p.parseOpaque()
}

// atValueEnd reports whether the current token can follow a complete binding
// value. Anything other than ';' means the value continues; '}', 'in' and end
// of input are accepted so the missing ';' is reported by the caller.
func (p *parser) atValueEnd() bool {
	tok := p.peek()

	switch tok.Kind {
	case KindSemi, KindRBrace, KindEOF:
		return true
	}

	return tok.Is("in")
}

func (p *parser) parseList() (*List, error) {
	if err := p.enter(); err != nil {
		return nil, err
	}
	defer p.leave()

	open := p.next()
	list := &List{}

	for {
		tok := p.peek()
		if tok.Kind == KindRBracket {
			break
		}

		switch tok.Kind {
		case KindEOF, KindRBrace, KindRParen, KindSemi:
			return nil, p.errorf(tok, "]")
		}

		elem, err := p.parseElement()
		if err != nil {
			return nil, err
		}

		list.Elements = append(list.Elements, elem)
	}

	end := p.next()
	list.Range = Span{Start: open.Span.Start, End: end.Span.End}

	return list, nil
}

// parseElement parses one list element: a primary expression followed by
// any .attr selections and an optional "or" default.
func (p *parser) parseElement() (Expr, error) {
	tok := p.peek()

	var elem Expr

	switch {
	case tok.Kind == KindLBrace,
		tok.Is("rec") && p.peekAt(1).Kind == KindLBrace:
		set, err := p.parseAttrSet()
		if err != nil {
			return nil, err
		}

		elem = set

	case tok.Kind == KindLBracket:
		list, err := p.parseList()
		if err != nil {
			return nil, err
		}

		elem = list

	case tok.Kind == KindLParen:
		group, err := p.skipGroup()
		if err != nil {
			return nil, err
		}

		elem = &Opaque{Range: group}

	default:
		p.next()

		elem = &Opaque{Range: tok.Span}
	}

	end := elem.Span().End

	for p.peek().Kind == KindDot {
		p.next()

		name := p.peek()
		if _, ok := attrName(name); !ok && name.Kind != KindString &&
			name.Kind != KindInterp {
			return nil, p.errorf(name, "attribute name")
		}

		p.next()

		end = name.Span.End
	}

	if p.peek().Is("or") {
		p.next()

		def, err := p.parseElement()
		if err != nil {
			return nil, err
		}

		end = def.Span().End
	}

	if end == elem.Span().End {
		return elem, nil
	}

	return &Opaque{Range: Span{Start: tok.Span.Start, End: end}}, nil
}

// parseOpaque captures an expression without modeling it. The scan balances
// brackets and stops at the first ';' or unbalanced closer at depth zero.
// At depth zero a let pushes a frame closed by its in, and with and assert
// each consume one ';' of their own.
func (p *parser) parseOpaque() (*Opaque, error) {
	first := p.peek()
	last := first
	start := p.pos

	var (
		closers []Kind
		lets    int
		semis   int
	)

scan:
	for {
		tok := p.peek()

		switch tok.Kind {
		case KindEOF:
			if len(closers) > 0 {
				return nil, p.errorf(tok, closers[len(closers)-1].String())
			}

			break scan

		case KindLBrace:
			closers = append(closers, KindRBrace)

		case KindLBracket:
			closers = append(closers, KindRBracket)

		case KindLParen:
			closers = append(closers, KindRParen)

		case KindRBrace, KindRBracket, KindRParen:
			if len(closers) == 0 {
				break scan
			}

			if want := closers[len(closers)-1]; want != tok.Kind {
				return nil, p.errorf(tok, want.String())
			}

			closers = closers[:len(closers)-1]

		case KindSemi:
			if len(closers) == 0 && lets == 0 {
				if semis == 0 {
					break scan
				}

				semis--
			}

		case KindKeyword:
			if len(closers) == 0 {
				switch tok.Text {
				case "let":
					lets++
				case "in":
					if lets == 0 {
						break scan
					}

					lets--
				case "with", "assert":
					semis++
				}
			}
		}

		last = tok
		p.next()
	}

	if p.pos == start {
		return nil, p.errorf(first, "expression")
	}

	return &Opaque{Range: Span{Start: first.Span.Start, End: last.Span.End}}, nil
}

// skipGroup consumes a balanced bracket group starting at the current token
// and returns its span.
func (p *parser) skipGroup() (Span, error) {
	open := p.peek()

	j := p.matching(p.pos)
	if j < 0 {
		closer := map[Kind]Kind{
			KindLBrace:   KindRBrace,
			KindLBracket: KindRBracket,
			KindLParen:   KindRParen,
		}[open.Kind]

		return Span{}, p.errorf(p.eof(), closer.String())
	}

	p.pos = j + 1

	return Span{Start: open.Span.Start, End: p.toks[j].Span.End}, nil
}

// Helper methods

func (p *parser) peek() Token { return p.peekAt(0) }

func (p *parser) peekAt(n int) Token {
	if p.pos+n >= len(p.toks) {
		return p.eof()
	}

	return p.toks[p.pos+n]
}

func (p *parser) next() Token {
	tok := p.peek()
	if p.pos < len(p.toks) {
		p.pos++
	}

	return tok
}

func (p *parser) eof() Token {
	return Token{
		Kind: KindEOF,
		Span: Span{Start: len(p.src), End: len(p.src)},
	}
}

func (p *parser) expect(kind Kind, expected string) (Token, error) {
	tok := p.peek()
	if tok.Kind != kind {
		return tok, p.errorf(tok, expected)
	}

	return p.next(), nil
}

func (p *parser) enter() error {
	p.depth++
	if p.limit > 0 && p.depth > p.limit {
		return ErrMaxDepthExceeded.With(
			slog.Int("limit", p.limit),
			slog.Int("offset", p.peek().Span.Start),
		)
	}

	return nil
}

func (p *parser) leave() { p.depth-- }

// errorf returns a SyntaxError located at tok.
func (p *parser) errorf(tok Token, expected string) *SyntaxError {
	found := tok.Kind.String()
	if tok.Kind != KindEOF {
		found = strconv.Quote(tok.Text)
	}

	return p.syntaxError(tok.Span.Start, expected, found)
}

// unterminated returns the SyntaxError for a literal or comment that runs
// to end of input.
func (p *parser) unterminated(tok Token) *SyntaxError {
	var closer string

	switch tok.Kind {
	case KindString:
		closer = `"`
	case KindIndString:
		closer = `''`
	case KindInterp:
		closer = `}`
	default:
		closer = `*/`
	}

	return p.syntaxError(
		tok.Span.Start,
		"closing "+strconv.Quote(closer),
		"end of input",
	)
}

func (p *parser) syntaxError(offset int, expected, found string) *SyntaxError {
	pos := p.lines.position(p.src, offset)

	p.logger.TraceContext(p.ctx, "syntax error",
		slog.Int("offset", offset),
		slog.String("expected", expected),
		slog.String("found", found),
	)

	return &SyntaxError{
		File:     p.file,
		Offset:   offset,
		Line:     pos.Line,
		Column:   pos.Column,
		Expected: expected,
		Found:    found,
		source:   p.src,
	}
}
